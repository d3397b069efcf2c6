package electrodes

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseTable(t *testing.T) {
	input := "1,5.9,5.1,-0.7,LA1\n" +
		"\n" +
		" 2 , 10.0 , 11.5 , 12 , LA2 ,extra\r\n" +
		"3,0,0,0,RH1"

	records, err := ParseTable(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseTable() error = %v", err)
	}

	want := []Record{
		{ID: 1, X: 5, Y: 5, Z: 0, Label: "LA1"},
		{ID: 2, X: 10, Y: 11, Z: 12, Label: "LA2"},
		{ID: 3, X: 0, Y: 0, Z: 0, Label: "RH1"},
	}
	if len(records) != len(want) {
		t.Fatalf("got %d records, want %d", len(records), len(want))
	}
	for i := range want {
		if records[i] != want[i] {
			t.Errorf("record %d: got %+v, want %+v", i, records[i], want[i])
		}
	}
}

func TestParseTableMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  int
	}{
		{"non-numeric coordinate", "1,5,five,5,LA1", 1},
		{"non-numeric ID", "LA1,5,5,5,1", 1},
		{"float ID", "1.5,5,5,5,LA1", 1},
		{"zero ID", "0,5,5,5,LA1", 1},
		{"missing label", "1,5,5,5\n", 1},
		{"second row bad", "1,5,5,5,LA1\n2,5,5,NaN,LA2", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTable(strings.NewReader(tt.input))
			var fe *FormatError
			if !errors.As(err, &fe) {
				t.Fatalf("expected *FormatError, got %v", err)
			}
			if fe.Line != tt.line {
				t.Errorf("line: got %d, want %d", fe.Line, tt.line)
			}
			if !strings.Contains(fe.Error(), "ID, X, Y, Z, label") {
				t.Errorf("diagnostic should describe the column layout: %s", fe.Error())
			}
		})
	}
}

func TestLoadTableNamesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "electrodes.csv")
	if err := os.WriteFile(path, []byte("1,x,2,3,LA1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadTable(path)
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FormatError, got %v", err)
	}
	if fe.File != path {
		t.Errorf("file: got %q, want %q", fe.File, path)
	}
}

func TestSetLastRecordWins(t *testing.T) {
	s := NewSet([]Record{
		{ID: 4, Label: "old"},
		{ID: 2, Label: "B"},
		{ID: 4, Label: "new"},
	})

	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
	if label, _ := s.Label(4); label != "new" {
		t.Errorf("Label(4) = %q, want %q", label, "new")
	}
	if _, ok := s.Label(9); ok {
		t.Error("Label(9) should be absent")
	}
	ids := s.IDs()
	if len(ids) != 2 || ids[0] != 2 || ids[1] != 4 {
		t.Errorf("IDs() = %v, want [2 4]", ids)
	}
}
