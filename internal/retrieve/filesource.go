package retrieve

import (
	"context"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"reqsmith/internal/domain"
	"reqsmith/internal/port"
)

// FileKnowledgeSource is a YAML-backed KnowledgeRepository for CLI use and
// tests. The file maps field keys to one or more values:
//
//	description:
//	  - value: The system shall support password reset.
//	    rank: 1.0
//	priority:
//	  - value: Medium
type FileKnowledgeSource struct {
	mu      sync.RWMutex
	entries map[string][]domain.KnowledgeEntry
	name    string
}

type fileEntry struct {
	Value string  `yaml:"value"`
	Rank  float64 `yaml:"rank"`
}

// LoadFileKnowledgeSource reads a YAML knowledge file.
func LoadFileKnowledgeSource(path string) (*FileKnowledgeSource, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading knowledge file: %w", err)
	}

	var parsed map[string][]fileEntry
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parsing knowledge file: %w", err)
	}

	src := &FileKnowledgeSource{
		entries: make(map[string][]domain.KnowledgeEntry, len(parsed)),
		name:    path,
	}
	for key, list := range parsed {
		for _, e := range list {
			rank := e.Rank
			if rank == 0 {
				rank = 1.0
			}
			src.entries[key] = append(src.entries[key], domain.KnowledgeEntry{
				FieldKey: key,
				Value:    e.Value,
				Source:   path,
				Rank:     rank,
			})
		}
	}
	return src, nil
}

// NewEmptyFileKnowledgeSource returns a source with no entries, useful when
// no knowledge file is configured.
func NewEmptyFileKnowledgeSource() *FileKnowledgeSource {
	return &FileKnowledgeSource{entries: map[string][]domain.KnowledgeEntry{}, name: "empty"}
}

func (f *FileKnowledgeSource) Lookup(_ context.Context, fieldKey string) ([]domain.KnowledgeEntry, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	entries := f.entries[fieldKey]
	out := make([]domain.KnowledgeEntry, len(entries))
	copy(out, entries)
	return out, nil
}

func (f *FileKnowledgeSource) Upsert(_ context.Context, entry domain.KnowledgeEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[entry.FieldKey] = append(f.entries[entry.FieldKey], entry)
	return nil
}

var _ port.KnowledgeRepository = (*FileKnowledgeSource)(nil)
