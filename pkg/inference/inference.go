/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: inference.go
Description: Type inference engine. Collects every observed value per field across the whole
dataset, classifies each value against the candidate list and elects one canonical datatype
per field by majority vote, breaking ties by candidate priority. Confidence is the winning
count over the observed count.
*/

package inference

import (
	"github.com/kleascm/ontoforge/pkg/records"
	"github.com/sirupsen/logrus"
)

// Engine infers one datatype per field for a dataset
type Engine struct {
	candidates Candidates
	logger     logrus.FieldLogger
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger attaches a logger; inferred fields are logged at debug level
func WithLogger(logger logrus.FieldLogger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates an inference engine. An unconstructed candidate list falls back to
// DefaultCandidates.
func NewEngine(candidates Candidates, opts ...Option) *Engine {
	if !candidates.valid() {
		candidates = DefaultCandidates()
	}
	e := &Engine{candidates: candidates}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Candidates returns the engine's priority list
func (e *Engine) Candidates() Candidates {
	return e.candidates
}

// Infer builds the schema for a dataset. Nil values are missing and not counted.
// A dataset without fields, or a field without a single observed value, fails with
// *EmptyFieldError.
func (e *Engine) Infer(ds records.Dataset) (*Schema, error) {
	fields := ds.Fields()
	if len(fields) == 0 {
		return nil, &EmptyFieldError{}
	}

	values := make(map[string][]interface{}, len(fields))
	for _, rec := range ds {
		for _, field := range rec.Fields() {
			v, _ := rec.Get(field)
			if v == nil {
				continue
			}
			values[field] = append(values[field], v)
		}
	}

	schema := NewSchema()
	for _, field := range fields {
		profile, err := e.profile(field, values[field])
		if err != nil {
			return nil, err
		}
		schema.add(profile)

		if e.logger != nil {
			e.logger.WithFields(logrus.Fields{
				"field":      field,
				"datatype":   profile.Datatype.Range(),
				"confidence": profile.Confidence,
				"ratio":      profile.ConfidenceRatio(),
			}).Debug("Field type inferred")
		}
	}
	return schema, nil
}

// profile classifies the observed values of one field and elects its datatype
func (e *Engine) profile(field string, values []interface{}) (*FieldProfile, error) {
	if len(values) == 0 {
		return nil, &EmptyFieldError{Field: field}
	}

	counts := make(map[Datatype]int, len(e.candidates.order))
	for _, d := range e.candidates.order {
		counts[d] = 0
	}
	for _, v := range values {
		counts[e.candidates.Classify(v)]++
	}

	// Walk in priority order and only replace on a strictly greater count,
	// so the earliest candidate wins a tie.
	winner := e.candidates.order[0]
	for _, d := range e.candidates.order[1:] {
		if counts[d] > counts[winner] {
			winner = d
		}
	}

	return &FieldProfile{
		Name:       field,
		Datatype:   winner,
		Counts:     counts,
		Observed:   len(values),
		Confidence: float64(counts[winner]) / float64(len(values)),
		Values:     values,
	}, nil
}
