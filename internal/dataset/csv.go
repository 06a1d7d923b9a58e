package dataset

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrNoColumns is returned when a delimited file has no header row
var ErrNoColumns = errors.New("no columns to parse")

const writeBufferSize = 256 * 1024

// ReadDelimited parses a delimited table whose first record is the header.
// A leading byte order mark is stripped. Rows shorter than the header are
// padded with nulls; longer rows are rejected. Repeated header names get a
// ".N" suffix so every column stays addressable.
func ReadDelimited(r io.Reader, comma rune) (*Table, error) {
	dec := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	cr := csv.NewReader(dec)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrNoColumns
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	t := New()
	for _, name := range uniqueHeader(header) {
		t.AddColumn(name)
	}

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if len(record) > len(t.columns) {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("line %d: expected %d fields, saw %d", line, len(t.columns), len(record))
		}
		row := make([]Cell, len(t.columns))
		for i, v := range record {
			if v == "" {
				continue
			}
			row[i] = String(v)
		}
		t.rows = append(t.rows, row)
	}
	return t, nil
}

func uniqueHeader(header []string) []string {
	seen := make(map[string]int, len(header))
	out := make([]string, len(header))
	for i, name := range header {
		n, dup := seen[name]
		seen[name] = n + 1
		if !dup {
			out[i] = name
			continue
		}
		candidate := name + "." + strconv.Itoa(n)
		for {
			if _, taken := seen[candidate]; !taken {
				break
			}
			n++
			candidate = name + "." + strconv.Itoa(n)
		}
		seen[candidate] = 1
		out[i] = candidate
	}
	return out
}

// ReadFile opens path and parses it with ReadDelimited. A missing file
// yields an error matching fs.ErrNotExist.
func ReadFile(path string, comma rune) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := ReadDelimited(f, comma)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// WriteCSV writes the table as comma-separated values with a header row.
// Null cells are written as empty fields.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.columns); err != nil {
		return fmt.Errorf("csv write header: %w", err)
	}
	record := make([]string, len(t.columns))
	for _, row := range t.rows {
		for i, c := range row {
			record[i] = c.Value
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("csv write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes the table to path, replacing any existing file. The
// data goes to a temporary file in the same directory first so a failed
// write never leaves a truncated dataset behind.
func WriteFile(path string, t *Table) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	f, err := os.CreateTemp(dir, ".sensorset-*.csv")
	if err != nil {
		return fmt.Errorf("csv create %s: %w", path, err)
	}
	tmp := f.Name()
	defer os.Remove(tmp)
	if err := f.Chmod(0o644); err != nil {
		f.Close()
		return fmt.Errorf("csv chmod %s: %w", path, err)
	}

	bw := bufio.NewWriterSize(f, writeBufferSize)
	if err := t.WriteCSV(bw); err != nil {
		f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("csv flush %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("csv close %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("csv rename %s: %w", path, err)
	}
	return nil
}
