package vault

import (
	"bytes"
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// document is the in-memory form of the vault file. Iteration order is the
// order keys were first inserted.
type document = orderedmap.OrderedMap[string, Record]

func newDocument() *document {
	return orderedmap.New[string, Record]()
}

func decodeDocument(data []byte) (*document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrCorrupt)
	}
	if trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: top level is not an object", ErrCorrupt)
	}

	doc := newDocument()
	if err := json.Unmarshal(trimmed, doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return doc, nil
}

func encodeDocument(doc *document) ([]byte, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding vault: %w", err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, fmt.Errorf("indenting vault: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func documentEntries(doc *document) []Entry {
	entries := make([]Entry, 0, doc.Len())
	for pair := doc.Oldest(); pair != nil; pair = pair.Next() {
		entries = append(entries, Entry{Website: pair.Key, Record: pair.Value})
	}
	return entries
}
