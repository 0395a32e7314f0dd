package csvimport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Delimiter is the field separator of every upstream export.
const Delimiter = ';'

// Row maps header names to raw cell text.
type Row map[string]string

// Get returns the cell for key, or "" when the column is absent.
func (r Row) Get(key string) string {
	return r[key]
}

// ReadRows decodes the stream and parses it as semicolon-delimited CSV with a
// header line. Empty input yields no rows. Duplicate headers are last-wins;
// short records simply omit the trailing keys.
func ReadRows(r io.Reader) ([]Row, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("csvimport: reading upload: %w", err)
	}
	if len(raw) == 0 {
		return []Row{}, nil
	}
	return ParseText(Decode(raw))
}

// ParseText parses already decoded CSV text.
func ParseText(text string) ([]Row, error) {
	cr := csv.NewReader(strings.NewReader(text))
	cr.Comma = Delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []Row{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("csvimport: reading header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	rows := []Row{}
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csvimport: reading record: %w", err)
		}
		row := make(Row, len(header))
		for i, cell := range record {
			if i >= len(header) {
				break
			}
			row[header[i]] = cell
		}
		rows = append(rows, row)
	}
	return rows, nil
}
