package electrodes

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// expectedLayout is reported with every malformed row
const expectedLayout = "ID, X, Y, Z, label (X, Y, Z as floating point values)"

// Record is one row of an electrode coordinate table
type Record struct {
	ID    int    // Positive electrode identifier; 0 is reserved for "no electrode"
	X     int    // Voxel coordinates, truncated toward zero
	Y     int
	Z     int
	Label string // e.g. "LA1"
}

// FormatError reports a row that does not follow the ID, X, Y, Z, label layout
type FormatError struct {
	File   string
	Line   int
	Row    string
	Reason string
}

func (e *FormatError) Error() string {
	src := e.File
	if src == "" {
		src = "electrode table"
	}
	return fmt.Sprintf("%s:%d: malformed electrode row %q: %s; expected columns %s",
		src, e.Line, e.Row, e.Reason, expectedLayout)
}

// LoadTable reads an electrode table from path
func LoadTable(path string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	records, err := ParseTable(file)
	if err != nil {
		var fe *FormatError
		if errors.As(err, &fe) {
			fe.File = path
		}
		return nil, err
	}
	return records, nil
}

// ParseTable parses comma-separated rows of the form "id,x,y,z,label".
// Columns past the label are ignored and blank lines are skipped. Records are
// returned in input order, which is the overwrite precedence used by Stamp.
func ParseTable(r io.Reader) ([]Record, error) {
	var records []Record

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		rec, reason := parseRow(line)
		if reason != "" {
			return nil, &FormatError{Line: lineNo, Row: line, Reason: reason}
		}
		records = append(records, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

func parseRow(line string) (Record, string) {
	fields := strings.Split(line, ",")
	if len(fields) < 5 {
		return Record{}, fmt.Sprintf("found %d columns, need at least 5", len(fields))
	}

	id, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return Record{}, fmt.Sprintf("electrode ID %q is not an integer", fields[0])
	}
	if id <= 0 {
		return Record{}, fmt.Sprintf("electrode ID %d must be positive", id)
	}

	var coords [3]int
	for i := range coords {
		tok := strings.TrimSpace(fields[i+1])
		f, err := strconv.ParseFloat(tok, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return Record{}, fmt.Sprintf("coordinate %q is not a finite number", tok)
		}
		coords[i] = int(f)
	}

	return Record{
		ID:    id,
		X:     coords[0],
		Y:     coords[1],
		Z:     coords[2],
		Label: strings.TrimSpace(fields[4]),
	}, ""
}
