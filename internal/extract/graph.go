package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"reqsmith/internal/domain"
)

// GraphExtractor extracts requirement fragments from a JSON dependency graph
// of the shape {"nodes":[{"id":...,"text":...}],"edges":[{"from":...,"to":...}]}.
// Every non-empty node is a requirement candidate; edges annotate fragments
// with the ids of related nodes.
type GraphExtractor struct{}

type graphDoc struct {
	Nodes []graphNode `json:"nodes"`
	Edges []graphEdge `json:"edges"`
}

type graphNode struct {
	ID       nodeID            `json:"id"`
	Text     string            `json:"text"`
	Label    string            `json:"label"`
	Priority string            `json:"priority"`
	Attrs    map[string]string `json:"attributes"`
}

type graphEdge struct {
	From nodeID `json:"from"`
	To   nodeID `json:"to"`
}

// nodeID accepts string and numeric identifiers; both occur in the wild.
type nodeID string

func (n *nodeID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*n = nodeID(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return fmt.Errorf("node id %s is neither string nor number", b)
	}
	*n = nodeID(num.String())
	return nil
}

func (n nodeID) String() string { return string(n) }

func (e *GraphExtractor) Format() domain.FormatTag {
	return domain.FormatGraph
}

func (e *GraphExtractor) Extract(_ context.Context, data []byte) ([]domain.RawFragment, error) {
	if len(data) == 0 {
		return nil, domain.ErrEmptyDocument
	}

	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	var doc graphDoc
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: parsing graph json: %v", domain.ErrCorruptedDocument, err)
	}

	related := map[string][]string{}
	for _, edge := range doc.Edges {
		from, to := edge.From.String(), edge.To.String()
		related[from] = append(related[from], to)
		related[to] = append(related[to], from)
	}

	out := []domain.RawFragment{}
	for _, node := range doc.Nodes {
		text := node.Text
		if text == "" {
			text = node.Label
		}
		text = strings.Join(strings.Fields(text), " ")
		if text == "" {
			continue
		}
		meta := map[string]string{"node": node.ID.String()}
		if node.Priority != "" {
			meta["priority"] = node.Priority
		}
		for k, v := range node.Attrs {
			meta[k] = v
		}
		if rel := related[node.ID.String()]; len(rel) > 0 {
			meta["related"] = strings.Join(rel, ",")
		}
		out = append(out, domain.RawFragment{Text: text, Ordinal: len(out), Metadata: meta})
	}
	return out, nil
}
