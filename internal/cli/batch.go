package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"reqsmith/internal/domain"
)

var (
	batchFlags       pipelineFlags
	batchTimeout     time.Duration
	batchConcurrency int
	batchOutDir      string
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Extract requirements from every document in a directory",
	Long: `Batch runs the pipeline over all regular files in a directory with
bounded concurrency. One document's failure never affects the others;
failures are reported at the end.

Example:
  reqsmith batch ./docs --out-dir ./results --concurrency 4`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVar(&batchFlags.knowledgeFile, "knowledge", "", "YAML knowledge source for gap filling")
	batchCmd.Flags().StringVar(&batchFlags.provider, "provider", "", "gap fill generator (local, openai)")
	batchCmd.Flags().StringVar(&batchFlags.model, "model", "", "model name for the openai provider")
	batchCmd.Flags().StringVar(&batchFlags.fallback, "fallback-format", "", "format to assume when sniffing is inconclusive")
	batchCmd.Flags().BoolVar(&batchFlags.noGapFill, "no-gap-fill", false, "skip gap filling; missing fields stay missing")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 5*time.Minute, "per-document timeout")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 4, "number of documents processed in parallel")
	batchCmd.Flags().StringVar(&batchOutDir, "out-dir", ".", "directory for per-document JSON results")
}

func runBatch(cmd *cobra.Command, args []string) error {
	dir := args[0]
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		return fmt.Errorf("no files found in %s", dir)
	}
	if err := os.MkdirAll(batchOutDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", batchOutDir, err)
	}

	orch, err := buildOrchestrator(&batchFlags)
	if err != nil {
		return err
	}

	if batchConcurrency < 1 {
		batchConcurrency = 1
	}
	sem := make(chan struct{}, batchConcurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex
	failures := map[string]error{}

	for _, path := range files {
		sem <- struct{}{}
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := processFile(orch, path); err != nil {
				mu.Lock()
				failures[path] = err
				mu.Unlock()
			}
		}(path)
	}
	wg.Wait()

	fmt.Printf("Processed %d documents, %d failed\n", len(files), len(failures))
	for path, err := range failures {
		fmt.Fprintf(os.Stderr, "  %s: %v\n", path, err)
	}
	if len(failures) == len(files) {
		return fmt.Errorf("all documents failed")
	}
	return nil
}

func processFile(orch batchOrchestrator, path string) error {
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	hint := strings.TrimPrefix(filepath.Ext(path), ".")

	batch, err := orch.Run(ctx, uuid.New(), data, hint)
	if err != nil {
		return err
	}

	encoded, err := json.MarshalIndent(batch, "", "  ")
	if err != nil {
		return err
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	outPath := filepath.Join(batchOutDir, base+".json")
	if err := os.WriteFile(outPath, append(encoded, '\n'), 0o644); err != nil {
		return err
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "%s -> %s (%d requirements)\n", path, outPath, len(batch.Requirements))
	}
	return nil
}

// batchOrchestrator is the slice of the orchestrator the batch command needs;
// it keeps processFile testable with a stub.
type batchOrchestrator interface {
	Run(ctx context.Context, docID uuid.UUID, data []byte, hint string) (*domain.ExtractionBatch, error)
}
