/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: file_source.go
Description: Source implementation for local files. JSON files may hold a bare array of
objects, a {"results": [...]} envelope or a single object. CSV and XLSX files use their
first row as field names.
*/

package sources

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kleascm/ontoforge/pkg/records"
	"github.com/xuri/excelize/v2"
)

// FileSource reads records from a local JSON, CSV or XLSX file
type FileSource struct {
	NameStr        string
	DescriptionStr string
	Path           string
	Format         string // "json", "csv", "xlsx"; empty means use the extension
	Sheet          string // xlsx only; empty means the first sheet
}

// NewFileSource creates a new FileSource
func NewFileSource(name, path, format string) *FileSource {
	return &FileSource{
		NameStr:        name,
		DescriptionStr: fmt.Sprintf("Records from file %s", path),
		Path:           path,
		Format:         format,
	}
}

func (fs *FileSource) Name() string        { return fs.NameStr }
func (fs *FileSource) Description() string { return fs.DescriptionStr }

// Check verifies the file exists and has a readable format
func (fs *FileSource) Check(ctx context.Context) error {
	info, err := os.Stat(fs.Path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", fs.Path)
	}
	switch format := fs.format(); format {
	case "json", "csv", "xlsx":
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// LocalPath returns the file read by the source
func (fs *FileSource) LocalPath() string { return fs.Path }

// FetchRecords parses the file according to its format
func (fs *FileSource) FetchRecords(ctx context.Context) (records.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch format := fs.format(); format {
	case "json":
		file, err := os.Open(fs.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open JSON file: %w", err)
		}
		defer file.Close()
		return records.ReadJSON(file)
	case "csv":
		return fs.readCSV()
	case "xlsx":
		return fs.readExcel()
	default:
		return nil, fmt.Errorf("%w: file format %q", ErrUnsupportedFormat, format)
	}
}

func (fs *FileSource) format() string {
	if fs.Format != "" {
		return strings.ToLower(fs.Format)
	}
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(fs.Path)), ".")
}

func (fs *FileSource) readCSV() (records.Dataset, error) {
	file, err := os.Open(fs.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rowsToDataset(rows)
}

func (fs *FileSource) readExcel() (records.Dataset, error) {
	f, err := excelize.OpenFile(fs.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := fs.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	return rowsToDataset(rows)
}
