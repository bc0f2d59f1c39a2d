/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: writer.go
Description: Document persistence. Files are written to a temporary file next to the
target and renamed into place, so readers never observe a partially written document.
*/

package ontology

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DefaultOutputFile is the document name used when none is configured
const DefaultOutputFile = "mineral_rdf.ttl"

// WriteTo writes the document text to w
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, d.Text)
	return int64(n), err
}

// WriteFile atomically replaces path with the document
func WriteFile(path string, doc *Document) error {
	if doc == nil {
		return fmt.Errorf("no document to write")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := doc.WriteTo(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write document: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close document: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("failed to set document permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to move document into place: %w", err)
	}
	return nil
}
