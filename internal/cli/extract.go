package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"reqsmith/internal/domain"
	"reqsmith/internal/export"
)

var (
	extractFlags   pipelineFlags
	extractTimeout time.Duration
	outJSON        string
	outCSV         string
	outXLSX        string
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Extract requirements from a single document",
	Long: `Extract runs the full pipeline on one document: format detection,
extraction, normalization and gap filling.

Example:
  reqsmith extract requirements.pdf
  reqsmith extract spec.docx --json out.json --csv out.csv
  reqsmith extract scan.png --knowledge kb.yaml --provider openai`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVar(&extractFlags.knowledgeFile, "knowledge", "", "YAML knowledge source for gap filling")
	extractCmd.Flags().StringVar(&extractFlags.provider, "provider", "", "gap fill generator (local, openai)")
	extractCmd.Flags().StringVar(&extractFlags.model, "model", "", "model name for the openai provider")
	extractCmd.Flags().StringVar(&extractFlags.fallback, "fallback-format", "", "format to assume when sniffing is inconclusive")
	extractCmd.Flags().BoolVar(&extractFlags.noGapFill, "no-gap-fill", false, "skip gap filling; missing fields stay missing")
	extractCmd.Flags().DurationVar(&extractTimeout, "timeout", 5*time.Minute, "overall extraction timeout")
	extractCmd.Flags().StringVar(&outJSON, "json", "", "write the batch as JSON to this path (default: stdout)")
	extractCmd.Flags().StringVar(&outCSV, "csv", "", "also write the batch as CSV to this path")
	extractCmd.Flags().StringVar(&outXLSX, "xlsx", "", "also write the batch as XLSX to this path")
}

func runExtract(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), extractTimeout)
	defer cancel()

	orch, err := buildOrchestrator(&extractFlags)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	hint := strings.TrimPrefix(filepath.Ext(path), ".")

	if verbose {
		fmt.Fprintf(os.Stderr, "Extracting: %s (%d bytes, hint=%q)\n", path, len(data), hint)
	}

	batch, err := orch.Run(ctx, uuid.New(), data, hint)
	if err != nil {
		var gapErr *domain.GapFillUnavailableError
		if errors.As(err, &gapErr) {
			fmt.Fprintf(os.Stderr, "warning: gap filling unavailable, writing partial result: %v\n", gapErr.Err)
			batch = gapErr.Partial
		} else {
			return err
		}
	}

	if err := writeBatch(batch); err != nil {
		return err
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Extracted %d requirements (gap fill %d/%d)\n",
			len(batch.Requirements), batch.GapFillResolved, batch.GapFillAttempted)
	}
	return nil
}

func writeBatch(batch *domain.ExtractionBatch) error {
	encoded, err := json.MarshalIndent(batch, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding batch: %w", err)
	}
	if outJSON == "" {
		fmt.Println(string(encoded))
	} else if err := os.WriteFile(outJSON, append(encoded, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", outJSON, err)
	}

	if outCSV != "" {
		var buf bytes.Buffer
		buf.Write(export.BOM)
		w := export.NewWriter(&buf)
		if err := w.WriteBatch(batch); err != nil {
			return fmt.Errorf("writing CSV: %w", err)
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return fmt.Errorf("writing CSV: %w", err)
		}
		if err := os.WriteFile(outCSV, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", outCSV, err)
		}
	}

	if outXLSX != "" {
		var buf bytes.Buffer
		if err := export.WriteXLSX(&buf, batch); err != nil {
			return fmt.Errorf("writing XLSX: %w", err)
		}
		if err := os.WriteFile(outXLSX, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", outXLSX, err)
		}
	}
	return nil
}
