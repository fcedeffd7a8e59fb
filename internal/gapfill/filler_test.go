package gapfill_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"reqsmith/internal/domain"
	"reqsmith/internal/gapfill"
	"reqsmith/internal/port"
	"reqsmith/mocks"
)

func newBatch(reqs ...domain.Requirement) *domain.ExtractionBatch {
	return &domain.ExtractionBatch{
		DocumentID:   uuid.New(),
		Format:       domain.FormatPDF,
		Requirements: reqs,
	}
}

func TestFillBatch_FillsOnlyMissingFields(t *testing.T) {
	batch := newBatch(domain.Requirement{
		ID:          "r1",
		Description: domain.SetValue(""),
		Priority:    domain.MissingValue(),
		Source:      domain.FormatPDF,
	})

	retriever := new(mocks.MockRetriever)
	retriever.On("Retrieve", mock.Anything, domain.FieldKeyPriority, mock.Anything).
		Return([]domain.KnowledgeEntry{{FieldKey: "priority", Value: "must have", Rank: 1}}, nil).Once()

	generator := new(mocks.MockGenerator)
	generator.On("Generate", mock.Anything, domain.FieldKeyPriority, mock.Anything).
		Return("must have", nil).Once()

	f := gapfill.New(retriever, generator, gapfill.Config{})
	require.NoError(t, f.FillBatch(context.Background(), batch, "doc text"))

	req := batch.Requirements[0]
	assert.Equal(t, domain.SetValue(""), req.Description)
	assert.Equal(t, domain.SetValue(string(domain.PriorityHigh)), req.Priority)
	assert.Equal(t, 1, batch.GapFillAttempted)
	assert.Equal(t, 1, batch.GapFillResolved)
	retriever.AssertExpectations(t)
	generator.AssertExpectations(t)
}

func TestFillBatch_NoCandidatesMarksUnresolvedWithoutGenerating(t *testing.T) {
	batch := newBatch(domain.Requirement{
		ID:          "r1",
		Description: domain.MissingValue(),
		Priority:    domain.SetValue("High"),
	})

	retriever := new(mocks.MockRetriever)
	retriever.On("Retrieve", mock.Anything, domain.FieldKeyDescription, mock.Anything).
		Return([]domain.KnowledgeEntry{}, nil).Once()
	generator := new(mocks.MockGenerator)

	f := gapfill.New(retriever, generator, gapfill.Config{})
	require.NoError(t, f.FillBatch(context.Background(), batch, ""))

	assert.Equal(t, domain.UnresolvedValue(), batch.Requirements[0].Description)
	assert.Equal(t, 1, batch.GapFillAttempted)
	assert.Equal(t, 0, batch.GapFillResolved)
	generator.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
}

func TestFillBatch_NoAnswerMarksUnresolved(t *testing.T) {
	batch := newBatch(domain.Requirement{
		ID:          "r1",
		Description: domain.MissingValue(),
		Priority:    domain.SetValue("Low"),
	})

	retriever := new(mocks.MockRetriever)
	retriever.On("Retrieve", mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.KnowledgeEntry{{FieldKey: "description", Value: "x", Rank: 1}}, nil)
	generator := new(mocks.MockGenerator)
	generator.On("Generate", mock.Anything, mock.Anything, mock.Anything).
		Return("", domain.ErrNoAnswer)

	f := gapfill.New(retriever, generator, gapfill.Config{})
	require.NoError(t, f.FillBatch(context.Background(), batch, ""))
	assert.Equal(t, domain.UnresolvedValue(), batch.Requirements[0].Description)
}

func TestFillBatch_NonCanonicalPriorityMarksUnresolved(t *testing.T) {
	batch := newBatch(domain.Requirement{
		ID:          "r1",
		Description: domain.SetValue("desc"),
		Priority:    domain.MissingValue(),
	})

	retriever := new(mocks.MockRetriever)
	retriever.On("Retrieve", mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.KnowledgeEntry{{FieldKey: "priority", Value: "soon", Rank: 1}}, nil)
	generator := new(mocks.MockGenerator)
	generator.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return("soonish", nil)

	f := gapfill.New(retriever, generator, gapfill.Config{})
	require.NoError(t, f.FillBatch(context.Background(), batch, ""))

	assert.Equal(t, domain.UnresolvedValue(), batch.Requirements[0].Priority)
	assert.Equal(t, 0, batch.GapFillResolved)
}

func TestFillBatch_TransportFailureLeavesBatchUntouched(t *testing.T) {
	batch := newBatch(domain.Requirement{
		ID:          "r1",
		Description: domain.MissingValue(),
		Priority:    domain.MissingValue(),
	})

	retriever := new(mocks.MockRetriever)
	retriever.On("Retrieve", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, &domain.TransportError{Source: "kb", Err: errors.New("down")})
	generator := new(mocks.MockGenerator)

	f := gapfill.New(retriever, generator, gapfill.Config{Concurrency: 1})
	err := f.FillBatch(context.Background(), batch, "")
	require.Error(t, err)
	assert.True(t, domain.IsRetryable(err))

	assert.True(t, batch.Requirements[0].Description.IsMissing())
	assert.True(t, batch.Requirements[0].Priority.IsMissing())
	assert.Equal(t, 0, batch.GapFillAttempted)
	assert.Equal(t, 0, batch.GapFillResolved)
}

func TestFillBatch_CountersOverwrittenOnRerun(t *testing.T) {
	batch := newBatch(domain.Requirement{
		ID:          "r1",
		Description: domain.MissingValue(),
		Priority:    domain.SetValue("High"),
	})

	retriever := new(mocks.MockRetriever)
	retriever.On("Retrieve", mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.KnowledgeEntry{{FieldKey: "description", Value: "The app shall sync.", Rank: 1}}, nil)
	generator := new(mocks.MockGenerator)
	generator.On("Generate", mock.Anything, mock.Anything, mock.Anything).
		Return("The app shall sync.", nil)

	f := gapfill.New(retriever, generator, gapfill.Config{})
	require.NoError(t, f.FillBatch(context.Background(), batch, ""))
	assert.Equal(t, 1, batch.GapFillAttempted)
	assert.Equal(t, 1, batch.GapFillResolved)

	// No fields are missing anymore, so a rerun attempts nothing.
	require.NoError(t, f.FillBatch(context.Background(), batch, ""))
	assert.Equal(t, 0, batch.GapFillAttempted)
	assert.Equal(t, 0, batch.GapFillResolved)
}

// jitterRetriever answers per-requirement with a small random delay so
// goroutines finish out of submission order.
type jitterRetriever struct{}

func (jitterRetriever) Retrieve(_ context.Context, fieldKey string, qc port.QueryContext) ([]domain.KnowledgeEntry, error) {
	time.Sleep(time.Duration(rand.Intn(3)) * time.Millisecond)
	switch fieldKey {
	case domain.FieldKeyDescription:
		return []domain.KnowledgeEntry{{FieldKey: fieldKey, Value: "The system shall handle case " + qc.Requirement.ID, Rank: 1}}, nil
	case domain.FieldKeyPriority:
		if qc.Requirement.Ordinal%2 == 1 {
			return []domain.KnowledgeEntry{{FieldKey: fieldKey, Value: "could have", Rank: 1}}, nil
		}
		return []domain.KnowledgeEntry{{FieldKey: fieldKey, Value: "must have", Rank: 1}}, nil
	}
	return []domain.KnowledgeEntry{}, nil
}

func TestFillBatch_ConcurrentFillKeepsFieldOrder(t *testing.T) {
	build := func() *domain.ExtractionBatch {
		reqs := make([]domain.Requirement, 16)
		for i := range reqs {
			reqs[i] = domain.Requirement{
				ID:          fmt.Sprintf("r%02d", i),
				Ordinal:     i,
				Description: domain.MissingValue(),
				Priority:    domain.MissingValue(),
				Source:      domain.FormatPDF,
			}
		}
		return newBatch(reqs...)
	}

	f := gapfill.New(jitterRetriever{}, gapfill.NewLocalGenerator(), gapfill.Config{Concurrency: 8})

	first := build()
	require.NoError(t, f.FillBatch(context.Background(), first, ""))

	for i, req := range first.Requirements {
		assert.Equal(t, domain.SetValue("The system shall handle case "+req.ID), req.Description, "requirement %d", i)
		want := domain.PriorityHigh
		if i%2 == 1 {
			want = domain.PriorityLow
		}
		assert.Equal(t, domain.SetValue(string(want)), req.Priority, "requirement %d", i)
	}
	assert.Equal(t, 32, first.GapFillAttempted)
	assert.Equal(t, 32, first.GapFillResolved)

	second := build()
	require.NoError(t, f.FillBatch(context.Background(), second, ""))
	assert.Equal(t, first.Requirements, second.Requirements)
}

func TestFillBatch_CanceledContext(t *testing.T) {
	batch := newBatch(domain.Requirement{
		ID:          "r1",
		Description: domain.MissingValue(),
		Priority:    domain.SetValue("Low"),
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	retriever := new(mocks.MockRetriever)
	retriever.On("Retrieve", mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.KnowledgeEntry{}, nil).Maybe()
	generator := new(mocks.MockGenerator)

	f := gapfill.New(retriever, generator, gapfill.Config{})
	err := f.FillBatch(ctx, batch, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, batch.Requirements[0].Description.IsMissing())
}
