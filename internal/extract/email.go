package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"

	"github.com/emersion/go-mbox"
	"github.com/jhillyerd/enmime"

	"reqsmith/internal/domain"
)

// EmailExtractor extracts requirement fragments from RFC 5322 messages.
// Single messages are parsed directly; payloads starting with an mbox
// separator are iterated message by message.
type EmailExtractor struct{}

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

func (e *EmailExtractor) Format() domain.FormatTag {
	return domain.FormatEmail
}

func (e *EmailExtractor) Extract(_ context.Context, data []byte) ([]domain.RawFragment, error) {
	if len(data) == 0 {
		return nil, domain.ErrEmptyDocument
	}

	if bytes.HasPrefix(data, []byte("From ")) {
		return e.extractMbox(data)
	}

	env, err := enmime.ReadEnvelope(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: parsing message: %v", domain.ErrCorruptedDocument, err)
	}
	return e.fragmentsFromEnvelope(env, nil), nil
}

func (e *EmailExtractor) extractMbox(data []byte) ([]domain.RawFragment, error) {
	reader := mbox.NewReader(bytes.NewReader(data))
	out := []domain.RawFragment{}
	parsedAny := false
	for msgIndex := 0; ; msgIndex++ {
		msg, err := reader.NextMessage()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: reading mbox: %v", domain.ErrCorruptedDocument, err)
		}
		raw, err := io.ReadAll(msg)
		if err != nil {
			return nil, fmt.Errorf("%w: reading mbox message: %v", domain.ErrCorruptedDocument, err)
		}
		env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
		if err != nil {
			// One undecodable message does not corrupt the archive.
			continue
		}
		parsedAny = true
		out = e.fragmentsFromEnvelope(env, out)
	}
	if !parsedAny && len(out) == 0 {
		return nil, fmt.Errorf("%w: mbox contains no parseable messages", domain.ErrCorruptedDocument)
	}
	return out, nil
}

func (e *EmailExtractor) fragmentsFromEnvelope(env *enmime.Envelope, out []domain.RawFragment) []domain.RawFragment {
	if out == nil {
		out = []domain.RawFragment{}
	}
	body := env.Text
	if body == "" && env.HTML != "" {
		body = htmlTagPattern.ReplaceAllString(env.HTML, " ")
	}

	subject := env.GetHeader("Subject")
	from := env.GetHeader("From")

	// A requirement-like subject line is itself a candidate.
	if subject != "" && isRequirementLike(subject) {
		out = append(out, domain.RawFragment{
			Text:     subject,
			Ordinal:  len(out),
			Metadata: map[string]string{"part": "subject", "from": from},
		})
	}

	for _, para := range splitParagraphs(body) {
		if !isRequirementLike(para) {
			continue
		}
		meta := map[string]string{"part": "body"}
		if subject != "" {
			meta["subject"] = subject
		}
		if from != "" {
			meta["from"] = from
		}
		out = append(out, domain.RawFragment{Text: para, Ordinal: len(out), Metadata: meta})
	}
	return out
}
