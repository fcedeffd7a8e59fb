package cli

import (
	"fmt"
	"time"

	"reqsmith/internal/config"
	"reqsmith/internal/domain"
	"reqsmith/internal/extract"
	"reqsmith/internal/gapfill"
	"reqsmith/internal/normalize"
	"reqsmith/internal/ocr"
	"reqsmith/internal/orchestrator"
	"reqsmith/internal/port"
	"reqsmith/internal/retrieve"
)

// pipelineFlags are the shared pipeline flags of the extract and batch
// commands. Flags override environment configuration where set.
type pipelineFlags struct {
	knowledgeFile string
	provider      string
	model         string
	fallback      string
	noGapFill     bool
}

// buildOrchestrator assembles the extraction pipeline from environment
// configuration plus command line overrides.
func buildOrchestrator(flags *pipelineFlags) (*orchestrator.Orchestrator, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if flags.knowledgeFile != "" {
		cfg.Retrieval.KnowledgeFile = flags.knowledgeFile
	}
	if flags.provider != "" {
		cfg.GapFill.Provider = flags.provider
	}
	if flags.model != "" {
		cfg.GapFill.Model = flags.model
	}
	if flags.fallback != "" {
		cfg.Pipeline.FallbackFormat = flags.fallback
	}

	retrievers := []port.Retriever{retrieve.NewDocumentScanner()}
	if cfg.Retrieval.KnowledgeFile != "" {
		fileSource, err := retrieve.LoadFileKnowledgeSource(cfg.Retrieval.KnowledgeFile)
		if err != nil {
			return nil, fmt.Errorf("loading knowledge file: %w", err)
		}
		retrievers = append(retrievers, retrieve.NewKnowledgeBase(fileSource, "file"))
	}
	retriever := retrieve.NewCached(
		retrieve.NewChain(retrievers...),
		time.Duration(cfg.Retrieval.CacheTTLSecs)*time.Second,
	)

	var generator port.Generator
	switch cfg.GapFill.Provider {
	case "", "local":
		generator = gapfill.NewLocalGenerator()
	case "openai":
		generator, err = gapfill.NewOpenAIGenerator(gapfill.OpenAIConfig{
			APIKey:  cfg.GapFill.APIKey,
			BaseURL: cfg.GapFill.BaseURL,
			Model:   cfg.GapFill.Model,
		})
		if err != nil {
			return nil, fmt.Errorf("initializing openai generator: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown gap fill provider %q", cfg.GapFill.Provider)
	}

	filler := gapfill.New(retriever, generator, gapfill.Config{
		Concurrency: cfg.GapFill.Concurrency,
		CallTimeout: time.Duration(cfg.GapFill.CallTimeoutSecs) * time.Second,
	})

	recognizer := ocr.NewTesseractRecognizer(ocr.NewExecRunner(), cfg.OCR.Binary, cfg.OCR.Language)
	registry := extract.NewRegistry(recognizer)

	return orchestrator.New(registry, normalize.New(), filler, orchestrator.Config{
		MaxRetries:     cfg.GapFill.MaxRetries,
		RetryBaseDelay: time.Duration(cfg.GapFill.RetryBaseDelayMS) * time.Millisecond,
		FallbackFormat: domain.FormatTag(cfg.Pipeline.FallbackFormat),
		SkipGapFill:    flags.noGapFill || cfg.GapFill.Skip,
	}), nil
}
