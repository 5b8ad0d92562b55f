package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// WordColumn is the column holding the candidate replacement words.
const WordColumn = "word"

// PandasVersion is reported in the table schema, matching the model server's output.
const PandasVersion = "1.4.0"

// Field describes one column of a Table.
type Field struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Table is the tabular answer of a pipeline lookup: ordered columns and rows
// with one cell per column.
//
// It serializes using the "table" orientation without an index:
//
//	{"schema": {"fields": [...], "pandas_version": "1.4.0"}, "data": [{...}, ...]}
//
// Keys inside each row object follow the column order.
type Table struct {
	Fields []Field
	Rows   [][]any
}

// NewTable builds a table and checks every row has one cell per field.
func NewTable(fields []Field, rows ...[]any) (*Table, error) {
	for i, row := range rows {
		if len(row) != len(fields) {
			return nil, fmt.Errorf("row %d has %d cells, want %d", i, len(row), len(fields))
		}
	}
	return &Table{Fields: fields, Rows: rows}, nil
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, field := range t.Fields {
		if field.Name == name {
			return i
		}
	}
	return -1
}

// Column returns the values of the named column in row order.
func (t *Table) Column(name string) ([]any, error) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, fmt.Errorf("table has no %q column", name)
	}

	values := make([]any, 0, len(t.Rows))
	for _, row := range t.Rows {
		values = append(values, row[idx])
	}
	return values, nil
}

// ColumnJSON encodes the named column as a flat JSON array ("values" orientation).
func (t *Table) ColumnJSON(name string) ([]byte, error) {
	values, err := t.Column(name)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, v := range values {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeValue(&buf, v); err != nil {
			return nil, err
		}
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// MarshalJSON encodes the table in "table" orientation.
func (t *Table) MarshalJSON() ([]byte, error) {
	fields := t.Fields
	if fields == nil {
		fields = []Field{}
	}

	var buf bytes.Buffer
	buf.WriteString(`{"schema":{"fields":`)
	if err := writeValue(&buf, fields); err != nil {
		return nil, err
	}
	buf.WriteString(`,"pandas_version":`)
	if err := writeValue(&buf, PandasVersion); err != nil {
		return nil, err
	}
	buf.WriteString(`},"data":[`)

	for r, row := range t.Rows {
		if len(row) != len(t.Fields) {
			return nil, fmt.Errorf("row %d has %d cells, want %d", r, len(row), len(t.Fields))
		}
		if r > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for c, field := range t.Fields {
			if c > 0 {
				buf.WriteByte(',')
			}
			if err := writeValue(&buf, field.Name); err != nil {
				return nil, err
			}
			buf.WriteByte(':')
			if err := writeValue(&buf, row[c]); err != nil {
				return nil, err
			}
		}
		buf.WriteByte('}')
	}

	buf.WriteString(`]}`)
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a "table" orientation document.
//
// Column order comes from schema.fields; numbers are kept as json.Number so
// they re-encode exactly as received.
func (t *Table) UnmarshalJSON(data []byte) error {
	var doc struct {
		Schema struct {
			Fields []Field `json:"fields"`
		} `json:"schema"`
		Data []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode table: %w", err)
	}

	rows := make([][]any, 0, len(doc.Data))
	for i, raw := range doc.Data {
		var cells map[string]any
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&cells); err != nil {
			return fmt.Errorf("decode table row %d: %w", i, err)
		}

		row := make([]any, len(doc.Schema.Fields))
		for c, field := range doc.Schema.Fields {
			row[c] = cells[field.Name]
		}
		rows = append(rows, row)
	}

	t.Fields = doc.Schema.Fields
	t.Rows = rows
	return nil
}

// writeValue appends the JSON encoding of v without HTML escaping.
func writeValue(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	// Encode terminates every value with a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}
