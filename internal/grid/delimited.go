package grid

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
)

// ReadDelimited reads comma- or tab-separated text. Rows may have differing
// lengths and a leading UTF-8 byte order mark is dropped.
func ReadDelimited(r io.Reader, comma rune) (Grid, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read delimited text: %w", err)
	}

	return fromStrings(rows), nil
}
