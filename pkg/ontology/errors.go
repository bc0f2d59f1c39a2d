/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: errors.go
Description: Renderer errors. Per-record errors are collected into the document's skip list
unless the renderer runs in strict mode.
*/

package ontology

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyDataset      = errors.New("nothing to render: empty dataset or schema")
	ErrMissingIdentifier = errors.New("record has no identifier")
	ErrMissingLabel      = errors.New("record has no label")
)

// MissingIdentifierError is reported for a record lacking the identifier field
type MissingIdentifierError struct {
	Record int
	Field  string
}

func (e *MissingIdentifierError) Error() string {
	return fmt.Sprintf("record %d: missing identifier field %q", e.Record, e.Field)
}

func (e *MissingIdentifierError) Unwrap() error { return ErrMissingIdentifier }

// MissingLabelError is reported for a record lacking the label field
type MissingLabelError struct {
	Record int
	Field  string
}

func (e *MissingLabelError) Error() string {
	return fmt.Sprintf("record %d: missing label field %q", e.Record, e.Field)
}

func (e *MissingLabelError) Unwrap() error { return ErrMissingLabel }

// SkippedRecord is a record left out of the document and the reason why
type SkippedRecord struct {
	Index int
	Err   error
}
