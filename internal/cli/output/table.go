package output

import (
	"encoding/json"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
)

// Table represents tabular data.
type Table struct {
	Headers []string
	Rows    [][]string
}

// AddRow appends a row to the table.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// Render writes the table with tab-aligned columns.
func (t *Table) Render(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if len(t.Headers) > 0 {
		if _, err := io.WriteString(tw, strings.Join(t.Headers, "\t")+"\n"); err != nil {
			return err
		}
	}
	for _, row := range t.Rows {
		if _, err := io.WriteString(tw, strings.Join(row, "\t")+"\n"); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// toMaps converts rows to maps keyed by lowercased headers, for the
// structured formatters.
func (t *Table) toMaps() []map[string]string {
	out := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		m := make(map[string]string, len(row))
		for i, cell := range row {
			key := "value"
			if i < len(t.Headers) {
				key = strings.ToLower(t.Headers[i])
			}
			m[key] = cell
		}
		out = append(out, m)
	}
	return out
}

// TableFormatter formats data as an aligned text table.
type TableFormatter struct{}

// Format renders a *Table directly and map[string]string as sorted
// key/value rows. Anything else falls back to indented JSON.
func (f *TableFormatter) Format(w io.Writer, data any) error {
	switch v := data.(type) {
	case nil:
		return nil
	case *Table:
		return v.Render(w)
	case Table:
		return v.Render(w)
	case map[string]string:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		t := &Table{Headers: []string{"KEY", "VALUE"}}
		for _, k := range keys {
			t.AddRow(k, v[k])
		}
		return t.Render(w)
	default:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(data)
	}
}
