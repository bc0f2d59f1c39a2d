/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: tabular.go
Description: Conversion of header + rows grids (CSV, spreadsheets, HTML tables) into records.
*/

package sources

import (
	"fmt"
	"strings"

	"github.com/kleascm/ontoforge/pkg/records"
)

// rowsToDataset turns the first row into field names and every following row into a record.
// Cells are parsed into int/float/bool/string; empty cells are left out of the record.
func rowsToDataset(rows [][]string) (records.Dataset, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("table has no header row")
	}
	header := headerNames(rows[0])

	ds := make(records.Dataset, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		rec := records.NewRecord()
		for i, cell := range row {
			if i >= len(header) {
				break
			}
			if v := records.ParseScalar(cell); v != nil {
				rec.Set(header[i], v)
			}
		}
		ds = append(ds, rec)
	}
	return ds, nil
}

// headerNames trims header cells, names blank columns and disambiguates duplicates
func headerNames(row []string) []string {
	names := make([]string, len(row))
	seen := make(map[string]int, len(row))
	for i, cell := range row {
		name := strings.TrimSpace(cell)
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		seen[name]++
		if n := seen[name]; n > 1 {
			name = fmt.Sprintf("%s_%d", name, n)
		}
		names[i] = name
	}
	return names
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
