package cfdi

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
)

var errEmptyDocument = errors.New("empty document")

// Parse turns raw document bytes into a namespace-qualified element tree.
// The input is a byte slice, so re-reading a previously consumed source is
// the caller's concern; Parse itself has no cursor to reset and no side
// effects. Malformed markup, unknown encodings, and empty input all fail.
func Parse(data []byte) (*Node, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errEmptyDocument
	}

	var root Node
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("malformed xml: %w", err)
	}
	return &root, nil
}
