// Package gapfill resolves missing requirement fields through retrieval and
// generation. Only fields carrying the missing sentinel are ever touched:
// concrete values, including legitimately empty ones, are left alone, and a
// field the pipeline could not resolve is marked unresolved rather than
// silently dropped or guessed.
package gapfill

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"reqsmith/internal/domain"
	"reqsmith/internal/port"
)

// Config holds settings for the gap filler.
type Config struct {
	Concurrency int
	CallTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = 30 * time.Second
	}
	return c
}

// Filler fills missing fields on an extraction batch.
type Filler struct {
	retriever port.Retriever
	generator port.Generator
	cfg       Config
}

// New creates a Filler.
func New(retriever port.Retriever, generator port.Generator, cfg Config) *Filler {
	return &Filler{
		retriever: retriever,
		generator: generator,
		cfg:       cfg.withDefaults(),
	}
}

// fillResult is the outcome for one (requirement, field) pair. A nil err with
// the unresolved sentinel means the pipeline ran but found no answer.
type fillResult struct {
	reqIndex int
	fieldKey string
	value    domain.FieldValue
	err      error
}

// FillBatch attempts to resolve every missing field in the batch. Results are
// collected first and applied only when no call failed on transport, so a
// canceled or failing run leaves the batch untouched and a later retry
// re-processes exactly the same fields. Counters on the batch are overwritten,
// not accumulated, for the same reason.
func (f *Filler) FillBatch(ctx context.Context, batch *domain.ExtractionBatch, documentText string) error {
	type task struct {
		reqIndex int
		fieldKey string
	}

	var tasks []task
	for i := range batch.Requirements {
		for _, key := range batch.Requirements[i].MissingFieldKeys() {
			tasks = append(tasks, task{reqIndex: i, fieldKey: key})
		}
	}
	if len(tasks) == 0 {
		batch.GapFillAttempted = 0
		batch.GapFillResolved = 0
		return nil
	}

	sem := make(chan struct{}, f.cfg.Concurrency)
	results := make([]fillResult, len(tasks))
	var wg sync.WaitGroup

	for i, t := range tasks {
		if ctx.Err() != nil {
			break
		}
		sem <- struct{}{} // acquire
		wg.Add(1)
		go func(slot int, t task) {
			defer wg.Done()
			defer func() { <-sem }() // release

			req := &batch.Requirements[t.reqIndex]
			results[slot] = f.fillField(ctx, t.reqIndex, t.fieldKey, req, documentText)
		}(i, t)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("gap filling canceled: %w", err)
	}
	for _, res := range results {
		if res.err != nil {
			return res.err
		}
	}

	resolved := 0
	for _, res := range results {
		batch.Requirements[res.reqIndex].SetField(res.fieldKey, res.value)
		if res.value.IsConcrete() {
			resolved++
		}
	}
	batch.GapFillAttempted = len(tasks)
	batch.GapFillResolved = resolved
	return nil
}

// fillField runs retrieve-then-generate for a single missing field. Empty
// retrieval results and ErrNoAnswer from the generator both yield the
// unresolved sentinel; transport failures propagate for the caller to retry.
func (f *Filler) fillField(ctx context.Context, reqIndex int, fieldKey string, req *domain.Requirement, documentText string) fillResult {
	callCtx, cancel := context.WithTimeout(ctx, f.cfg.CallTimeout)
	defer cancel()

	res := fillResult{reqIndex: reqIndex, fieldKey: fieldKey}

	candidates, err := f.retriever.Retrieve(callCtx, fieldKey, port.QueryContext{
		DocumentText: documentText,
		Requirement:  req,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = &domain.TransportError{Source: "retriever", Err: err}
		}
		res.err = fmt.Errorf("retrieving candidates for %q: %w", fieldKey, err)
		return res
	}
	if len(candidates) == 0 {
		log.Printf("gapfill.FillBatch: no candidates for requirement %s field %q, marking unresolved", req.ID, fieldKey)
		res.value = domain.UnresolvedValue()
		return res
	}

	value, err := f.generator.Generate(callCtx, fieldKey, candidates)
	if err != nil {
		if errors.Is(err, domain.ErrNoAnswer) {
			res.value = domain.UnresolvedValue()
			return res
		}
		if errors.Is(err, context.DeadlineExceeded) {
			err = &domain.TransportError{Source: "generator", Err: err}
		}
		res.err = fmt.Errorf("generating value for %q: %w", fieldKey, err)
		return res
	}

	if fieldKey == domain.FieldKeyPriority {
		p, ok := domain.CanonicalPriority(value)
		if !ok {
			log.Printf("gapfill.FillBatch: generator produced non-canonical priority %q, marking unresolved", value)
			res.value = domain.UnresolvedValue()
			return res
		}
		value = string(p)
	}

	res.value = domain.SetValue(value)
	return res
}
