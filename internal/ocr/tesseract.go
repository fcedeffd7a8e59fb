package ocr

import (
	"context"
	"fmt"
	"strings"

	"reqsmith/internal/port"
)

// TesseractRecognizer shells out to the tesseract binary, reading the image
// from stdin and text from stdout.
type TesseractRecognizer struct {
	runner   Runner
	binary   string
	language string
}

// NewTesseractRecognizer creates a recognizer using the given binary path
// and language. Empty values fall back to "tesseract" and "eng".
func NewTesseractRecognizer(runner Runner, binary, language string) *TesseractRecognizer {
	if binary == "" {
		binary = "tesseract"
	}
	if language == "" {
		language = "eng"
	}
	return &TesseractRecognizer{runner: runner, binary: binary, language: language}
}

func (t *TesseractRecognizer) Recognize(ctx context.Context, image []byte) (port.RecognizedText, error) {
	stdout, _, err := t.runner.Run(ctx, image, t.binary, "stdin", "stdout", "-l", t.language)
	if err != nil {
		return port.RecognizedText{}, fmt.Errorf("running %s: %w", t.binary, err)
	}

	var lines []string
	for _, line := range strings.Split(string(stdout), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return port.RecognizedText{Lines: lines}, nil
}
