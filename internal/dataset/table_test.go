package dataset

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func mustAppend(t *testing.T, tbl *Table, values ...string) {
	t.Helper()
	row := make([]Cell, len(values))
	for i, v := range values {
		row[i] = String(v)
	}
	if err := tbl.Append(row); err != nil {
		t.Fatalf("append: %v", err)
	}
}

func TestConcatUnionsColumnsAndFillsNulls(t *testing.T) {
	acc := New("Time (s)", "X (m/s^2)")
	mustAppend(t, acc, "0.1", "9.8")
	mustAppend(t, acc, "0.2", "9.7")

	light := New("Time (s)", "Illuminance (lx)")
	mustAppend(t, light, "0.15", "300")

	got := Concat(acc, nil, light)

	want := []string{"Time (s)", "X (m/s^2)", "Illuminance (lx)"}
	if strings.Join(got.Columns(), "|") != strings.Join(want, "|") {
		t.Fatalf("expected columns %v, got %v", want, got.Columns())
	}
	if got.Len() != 3 {
		t.Fatalf("expected 3 rows, got %d", got.Len())
	}
	if c, _ := got.Cell(0, "Illuminance (lx)"); c.Valid {
		t.Fatalf("expected null illuminance for accelerometer row, got %q", c.Value)
	}
	if c, _ := got.Cell(2, "X (m/s^2)"); c.Valid {
		t.Fatalf("expected null x for light row, got %q", c.Value)
	}
	if c, _ := got.Cell(2, "Illuminance (lx)"); c.Value != "300" {
		t.Fatalf("expected illuminance 300, got %q", c.Value)
	}
}

func TestConcatDoesNotAliasSources(t *testing.T) {
	src := New("a")
	mustAppend(t, src, "1")

	out := Concat(src)
	if err := out.UpdateColumn("a", func(int, Cell) (Cell, error) { return String("2"), nil }); err != nil {
		t.Fatalf("update: %v", err)
	}
	if c, _ := src.Cell(0, "a"); c.Value != "1" {
		t.Fatalf("source table changed to %q", c.Value)
	}
}

func TestConcatNoTables(t *testing.T) {
	out := Concat()
	if out.Len() != 0 || len(out.Columns()) != 0 {
		t.Fatalf("expected empty table, got %d rows %v", out.Len(), out.Columns())
	}
}

func TestAppendConstantAndAddColumn(t *testing.T) {
	tbl := New("a")
	mustAppend(t, tbl, "1")
	mustAppend(t, tbl, "2")

	tbl.AppendConstant("label", String("walk"))
	if i := tbl.AddColumn("a"); i != 0 {
		t.Fatalf("expected existing index 0, got %d", i)
	}
	col, ok := tbl.Column("label")
	if !ok {
		t.Fatal("expected label column")
	}
	for i, c := range col {
		if c.Value != "walk" || !c.Valid {
			t.Fatalf("row %d: expected walk, got %+v", i, c)
		}
	}
	if err := tbl.Append([]Cell{String("x")}); err == nil {
		t.Fatal("expected error for short row")
	}
}

func TestUpdateColumnMissing(t *testing.T) {
	tbl := New("a")
	err := tbl.UpdateColumn("b", func(int, Cell) (Cell, error) { return Null(), nil })
	if err == nil {
		t.Fatal("expected error for missing column")
	}
}

func TestUpdateColumnStopsOnError(t *testing.T) {
	tbl := New("a")
	mustAppend(t, tbl, "1")
	mustAppend(t, tbl, "2")

	boom := errors.New("boom")
	err := tbl.UpdateColumn("a", func(row int, c Cell) (Cell, error) {
		if row == 1 {
			return c, boom
		}
		return String("x"), nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestReadDelimited(t *testing.T) {
	input := "\ufeff\"Time (s)\";\"X\";\"X\"\n" +
		"\"0,5\";\"1,2\";\"3\"\n" +
		"\n" +
		"1,0;;\n" +
		"1,5\n"

	tbl, err := ReadDelimited(strings.NewReader(input), ';')
	if err != nil {
		t.Fatalf("ReadDelimited returned error: %v", err)
	}

	want := []string{"Time (s)", "X", "X.1"}
	if strings.Join(tbl.Columns(), "|") != strings.Join(want, "|") {
		t.Fatalf("expected columns %v, got %v", want, tbl.Columns())
	}
	if tbl.Len() != 3 {
		t.Fatalf("expected 3 rows, got %d", tbl.Len())
	}
	if c, _ := tbl.Cell(0, "X"); c.Value != "1,2" {
		t.Fatalf("expected raw value 1,2, got %q", c.Value)
	}
	if c, _ := tbl.Cell(1, "X"); c.Valid {
		t.Fatalf("expected null for empty field, got %q", c.Value)
	}
	if c, _ := tbl.Cell(2, "X.1"); c.Valid {
		t.Fatalf("expected null for padded field, got %q", c.Value)
	}
}

func TestReadDelimitedErrors(t *testing.T) {
	if _, err := ReadDelimited(strings.NewReader(""), ';'); !errors.Is(err, ErrNoColumns) {
		t.Fatalf("expected ErrNoColumns, got %v", err)
	}
	_, err := ReadDelimited(strings.NewReader("a;b\n1;2;3\n"), ';')
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("expected line 2 error, got %v", err)
	}

	// The quoted newline puts the long row on physical line 4
	_, err = ReadDelimited(strings.NewReader("a;b\n\"multi\nline\";2\n1;2;3\n"), ';')
	if err == nil || !strings.Contains(err.Error(), "line 4:") {
		t.Fatalf("expected line 4 error, got %v", err)
	}
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "Light.csv"), ';')
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestWriteCSV(t *testing.T) {
	tbl := New("Time (s)", "note")
	if err := tbl.Append([]Cell{String("0.5"), Null()}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := tbl.Append([]Cell{String("1"), String("a,b")}); err != nil {
		t.Fatalf("append: %v", err)
	}

	var buf bytes.Buffer
	if err := tbl.WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV returned error: %v", err)
	}
	want := "Time (s),note\n0.5,\n1,\"a,b\"\n"
	if buf.String() != want {
		t.Fatalf("expected %q, got %q", want, buf.String())
	}
}

func TestWriteFileReplacesExisting(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	path := filepath.Join(dir, "walk.csv")

	first := New("a")
	mustAppend(t, first, "1")
	if err := WriteFile(path, first); err != nil {
		t.Fatalf("WriteFile returned error: %v", err)
	}

	second := New("b")
	mustAppend(t, second, "2")
	if err := WriteFile(path, second); err != nil {
		t.Fatalf("WriteFile returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(data) != "b\n2\n" {
		t.Fatalf("expected replaced content, got %q", string(data))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the output file, got %d entries", len(entries))
	}
}
