package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{FormatTable, "*output.TableFormatter"},
		{FormatJSON, "*output.JSONFormatter"},
		{FormatYAML, "*output.YAMLFormatter"},
		{Format("bogus"), "*output.TableFormatter"},
	}
	for _, tt := range tests {
		f := NewFormatter(tt.format)
		switch f.(type) {
		case *TableFormatter:
			if tt.want != "*output.TableFormatter" {
				t.Errorf("%s: got TableFormatter", tt.format)
			}
		case *JSONFormatter:
			if tt.want != "*output.JSONFormatter" {
				t.Errorf("%s: got JSONFormatter", tt.format)
			}
		case *YAMLFormatter:
			if tt.want != "*output.YAMLFormatter" {
				t.Errorf("%s: got YAMLFormatter", tt.format)
			}
		}
	}
}

func TestFormatValid(t *testing.T) {
	if !FormatJSON.Valid() || Format("csv").Valid() {
		t.Error("Valid misclassifies formats")
	}
}

func TestTableRender(t *testing.T) {
	table := &Table{Headers: []string{"HANDLE", "POSITION"}}
	table.AddRow("scfd-aaa", "0")
	table.AddRow("scfd-bbb", "12")

	var buf bytes.Buffer
	if err := table.Render(&buf); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %v", lines)
	}
	if !strings.HasPrefix(lines[0], "HANDLE") || !strings.Contains(lines[2], "12") {
		t.Errorf("render output:\n%s", buf.String())
	}
}

func TestTableFormatter_Map(t *testing.T) {
	var buf bytes.Buffer
	f := &TableFormatter{}
	err := f.Format(&buf, map[string]string{"b": "2", "a": "1"})
	if err != nil {
		t.Fatal(err)
	}
	// Keys sorted.
	if !strings.Contains(buf.String(), "a") || strings.Index(buf.String(), "a ") > strings.Index(buf.String(), "b ") {
		t.Errorf("output:\n%s", buf.String())
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := &JSONFormatter{}
	if err := f.Format(&buf, map[string]int{"count": 3}); err != nil {
		t.Fatal(err)
	}
	var decoded map[string]int
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["count"] != 3 {
		t.Errorf("decoded = %v", decoded)
	}
}

func TestYAMLFormatter_Table(t *testing.T) {
	table := &Table{Headers: []string{"ID"}}
	table.AddRow("scfd-aaa")

	var buf bytes.Buffer
	f := &YAMLFormatter{}
	if err := f.Format(&buf, table); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "id: scfd-aaa") {
		t.Errorf("output:\n%s", buf.String())
	}
}
