// Package orchestrator drives one document through the extraction pipeline as
// an explicit state machine. Stages run strictly in order; a structural
// failure moves straight to the failed state, while transient gap-fill
// failures are retried with backoff before the partial batch is surfaced.
package orchestrator

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"reqsmith/internal/domain"
	"reqsmith/internal/extract"
	"reqsmith/internal/gapfill"
	"reqsmith/internal/normalize"
	"reqsmith/internal/sniff"
)

// State names a pipeline stage.
type State string

const (
	StateSniffing    State = "sniffing"
	StateExtracting  State = "extracting"
	StateNormalizing State = "normalizing"
	StateGapFilling  State = "gap_filling"
	StateValidating  State = "validating"
	StateDone        State = "done"
	StateFailed      State = "failed"
)

// Config holds settings for the orchestrator.
type Config struct {
	// MaxRetries bounds re-attempts of the gap-filling stage after a
	// transient transport failure. Structural errors are never retried.
	MaxRetries int
	// RetryBaseDelay is the first backoff delay; it doubles per attempt.
	RetryBaseDelay time.Duration
	// FallbackFormat, when non-empty, is used for documents whose format
	// cannot be determined instead of rejecting them.
	FallbackFormat domain.FormatTag
	// SkipGapFill disables the gap-filling stage entirely; missing fields
	// stay missing.
	SkipGapFill bool
}

func (c Config) withDefaults() Config {
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.RetryBaseDelay <= 0 {
		c.RetryBaseDelay = 500 * time.Millisecond
	}
	return c
}

// Orchestrator runs the extraction pipeline for single documents.
type Orchestrator struct {
	registry   *extract.Registry
	normalizer *normalize.Normalizer
	filler     *gapfill.Filler
	cfg        Config

	// onTransition, when set, observes every state change. Used by tests.
	onTransition func(from, to State)
}

// New creates an Orchestrator. filler may be nil when cfg.SkipGapFill is set.
func New(registry *extract.Registry, normalizer *normalize.Normalizer, filler *gapfill.Filler, cfg Config) *Orchestrator {
	return &Orchestrator{
		registry:   registry,
		normalizer: normalizer,
		filler:     filler,
		cfg:        cfg.withDefaults(),
	}
}

// run tracks the state of one document's pass through the pipeline.
type run struct {
	docID uuid.UUID
	state State
	orch  *Orchestrator
}

func (r *run) transition(to State) {
	from := r.state
	r.state = to
	log.Printf("orchestrator.Run: document %s %s -> %s", r.docID, from, to)
	if r.orch.onTransition != nil {
		r.orch.onTransition(from, to)
	}
}

func (r *run) fail(err error) error {
	r.transition(StateFailed)
	log.Printf("orchestrator.Run: document %s failed: %v", r.docID, err)
	return err
}

// Run processes one document and returns its extraction batch. The hint is an
// optional file extension or format name consulted only when content sniffing
// is inconclusive. On a GapFillUnavailableError the returned batch is the
// partial, pre-gap-fill result carried inside the error.
func (o *Orchestrator) Run(ctx context.Context, docID uuid.UUID, data []byte, hint string) (*domain.ExtractionBatch, error) {
	r := &run{docID: docID, state: StateSniffing, orch: o}
	log.Printf("orchestrator.Run: document %s starting (%d bytes, hint=%q)", docID, len(data), hint)

	if len(data) == 0 {
		return nil, r.fail(domain.ErrEmptyDocument)
	}

	format := sniff.Sniff(data, hint)
	if format == domain.FormatUnknown {
		if o.cfg.FallbackFormat == "" {
			return nil, r.fail(fmt.Errorf("sniffing document %s: %w", docID, domain.ErrUnsupportedFormat))
		}
		log.Printf("orchestrator.Run: document %s format unknown, falling back to %s", docID, o.cfg.FallbackFormat)
		format = o.cfg.FallbackFormat
	}

	r.transition(StateExtracting)
	extractor, err := o.registry.Get(format)
	if err != nil {
		return nil, r.fail(err)
	}
	fragments, err := extractor.Extract(ctx, data)
	if err != nil {
		return nil, r.fail(fmt.Errorf("extracting %s document %s: %w", format, docID, err))
	}

	r.transition(StateNormalizing)
	batch := &domain.ExtractionBatch{
		DocumentID:   docID,
		Format:       format,
		Requirements: o.normalizer.Normalize(docID, format, fragments),
	}

	r.transition(StateGapFilling)
	if !o.cfg.SkipGapFill && o.filler != nil {
		if err := o.fillWithRetry(ctx, batch, documentText(fragments)); err != nil {
			r.transition(StateFailed)
			log.Printf("orchestrator.Run: document %s gap filling failed: %v", docID, err)
			return batch, &domain.GapFillUnavailableError{Partial: batch, Err: err}
		}
	}

	r.transition(StateValidating)
	if err := validateBatch(batch, !o.cfg.SkipGapFill && o.filler != nil); err != nil {
		return nil, r.fail(err)
	}

	r.transition(StateDone)
	log.Printf("orchestrator.Run: document %s done (%d requirements, gap fill %d/%d)",
		docID, len(batch.Requirements), batch.GapFillResolved, batch.GapFillAttempted)
	return batch, nil
}

// fillWithRetry re-runs the gap-filling stage on transient failures with
// doubling backoff. FillBatch applies nothing on failure, so every attempt
// sees the same missing fields.
func (o *Orchestrator) fillWithRetry(ctx context.Context, batch *domain.ExtractionBatch, docText string) error {
	delay := o.cfg.RetryBaseDelay
	var lastErr error
	for attempt := 0; attempt <= o.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			log.Printf("orchestrator.fillWithRetry: document %s retrying gap fill in %s (attempt %d/%d)",
				batch.DocumentID, delay, attempt, o.cfg.MaxRetries)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		lastErr = o.filler.FillBatch(ctx, batch, docText)
		if lastErr == nil {
			return nil
		}
		if !domain.IsRetryable(lastErr) {
			return lastErr
		}
	}
	return lastErr
}

// validateBatch enforces the output invariants before the batch is released:
// stable unique ids, provenance matching the batch format, canonical priority
// values, and no field left in the missing state once gap filling has run.
func validateBatch(batch *domain.ExtractionBatch, gapFillRan bool) error {
	if batch.Requirements == nil {
		return fmt.Errorf("requirements slice is nil: %w", domain.ErrValidation)
	}
	seen := make(map[string]struct{}, len(batch.Requirements))
	for i := range batch.Requirements {
		req := &batch.Requirements[i]
		if req.ID == "" {
			return fmt.Errorf("requirement %d has empty id: %w", i, domain.ErrValidation)
		}
		if _, dup := seen[req.ID]; dup {
			return fmt.Errorf("duplicate requirement id %s: %w", req.ID, domain.ErrValidation)
		}
		seen[req.ID] = struct{}{}
		if req.Source != batch.Format {
			return fmt.Errorf("requirement %s provenance %s does not match batch format %s: %w",
				req.ID, req.Source, batch.Format, domain.ErrValidation)
		}
		if req.Priority.IsConcrete() && req.Priority.Value != "" && !domain.ValidPriority(req.Priority.Value) {
			return fmt.Errorf("requirement %s has non-canonical priority %q: %w",
				req.ID, req.Priority.Value, domain.ErrValidation)
		}
		if gapFillRan {
			if keys := req.MissingFieldKeys(); len(keys) > 0 {
				return fmt.Errorf("requirement %s still missing fields %v after gap fill: %w",
					req.ID, keys, domain.ErrValidation)
			}
		}
	}
	return nil
}

// documentText reassembles the extracted fragments into the retrieval context
// for gap filling.
func documentText(frags []domain.RawFragment) string {
	parts := make([]string, 0, len(frags))
	for _, f := range frags {
		parts = append(parts, f.Text)
	}
	return strings.Join(parts, "\n\n")
}
