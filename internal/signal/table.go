package signal

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// indexColumn is the required sample-position column of every run table.
const indexColumn = "index"

// Table is a run table loaded into memory: an integer index column plus one
// float column per metric or probe.
type Table struct {
	Index   []int
	names   []string
	columns map[string][]float64
}

// LoadTable reads a run table from a CSV file. The header must include the
// index column; every other column is parsed as float64.
func LoadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read %s: empty table", path)
	}

	header := records[0]
	rows := records[1:]

	idxCol := -1
	for i, name := range header {
		if name == indexColumn {
			idxCol = i
			break
		}
	}
	if idxCol < 0 {
		return nil, fmt.Errorf("read %s: missing %q column", path, indexColumn)
	}

	t := &Table{
		Index:   make([]int, len(rows)),
		columns: make(map[string][]float64, len(header)-1),
	}
	for i, name := range header {
		if i == idxCol {
			continue
		}
		t.names = append(t.names, name)
		t.columns[name] = make([]float64, len(rows))
	}

	for r, row := range rows {
		for i, cell := range row {
			if i == idxCol {
				n, err := strconv.Atoi(cell)
				if err != nil {
					return nil, fmt.Errorf("read %s: row %d: bad index %q", path, r+1, cell)
				}
				t.Index[r] = n
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("read %s: row %d: column %q: %w", path, r+1, header[i], err)
			}
			t.columns[header[i]][r] = v
		}
	}
	return t, nil
}

// Len returns the number of samples.
func (t *Table) Len() int { return len(t.Index) }

// Columns returns the non-index column names in header order.
func (t *Table) Columns() []string { return t.names }

// Column returns a value column by name.
func (t *Table) Column(name string) ([]float64, bool) {
	c, ok := t.columns[name]
	return c, ok
}
