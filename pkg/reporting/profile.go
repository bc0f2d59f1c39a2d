/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: profile.go
Description: Field profile report. Summarises one run per field: the elected datatype, the
per-type vote counts, confidence, how many values coercion had to recover and, for numeric
fields, a distribution summary of the observed values.
*/

package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kleascm/ontoforge/pkg/coercion"
	"github.com/kleascm/ontoforge/pkg/inference"
	"github.com/kleascm/ontoforge/pkg/ontology"
	"github.com/kleascm/ontoforge/pkg/records"
	"github.com/montanaflynn/stats"
	"gopkg.in/yaml.v3"
)

// NumericSummary describes the numeric values observed for a field
type NumericSummary struct {
	Count  int     `json:"count" yaml:"count"`
	Min    float64 `json:"min" yaml:"min"`
	Max    float64 `json:"max" yaml:"max"`
	Mean   float64 `json:"mean" yaml:"mean"`
	Median float64 `json:"median" yaml:"median"`
	StdDev float64 `json:"stddev" yaml:"stddev"`
}

// FieldReport is the report entry for one field
type FieldReport struct {
	Name       string          `json:"name" yaml:"name"`
	Datatype   string          `json:"datatype" yaml:"datatype"`
	Range      string          `json:"range" yaml:"range"`
	Observed   int             `json:"observed" yaml:"observed"`
	Counts     map[string]int  `json:"counts" yaml:"counts"`
	Confidence float64         `json:"confidence" yaml:"confidence"`
	Ratio      string          `json:"ratio" yaml:"ratio"`
	Recovered  int             `json:"recovered" yaml:"recovered"`
	Numeric    *NumericSummary `json:"numeric,omitempty" yaml:"numeric,omitempty"`
}

// SkippedEntry is a record left out of the document
type SkippedEntry struct {
	Index  int    `json:"index" yaml:"index"`
	Reason string `json:"reason" yaml:"reason"`
}

// ProfileReport is the full per-run report
type ProfileReport struct {
	RunID       string         `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	GeneratedAt time.Time      `json:"generated_at" yaml:"generated_at"`
	Records     int            `json:"records" yaml:"records"`
	Individuals int            `json:"individuals" yaml:"individuals"`
	Recovered   int            `json:"recovered" yaml:"recovered"`
	Skipped     []SkippedEntry `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Fields      []FieldReport  `json:"fields" yaml:"fields"`
}

// BuildProfile assembles a report. The coercion report and document are optional.
func BuildProfile(runID string, ds records.Dataset, schema *inference.Schema, cr *coercion.Report, doc *ontology.Document) *ProfileReport {
	report := &ProfileReport{
		RunID:       runID,
		GeneratedAt: time.Now(),
		Records:     len(ds),
	}
	if cr != nil {
		report.Recovered = cr.Total()
	}
	if doc != nil {
		report.Individuals = doc.Individuals
		for _, s := range doc.Skipped {
			report.Skipped = append(report.Skipped, SkippedEntry{Index: s.Index, Reason: s.Err.Error()})
		}
	}
	if schema == nil {
		return report
	}

	for _, p := range schema.Profiles() {
		fr := FieldReport{
			Name:       p.Name,
			Datatype:   p.Datatype.String(),
			Range:      p.Datatype.Range(),
			Observed:   p.Observed,
			Counts:     make(map[string]int, len(p.Counts)),
			Confidence: p.Confidence,
			Ratio:      p.ConfidenceRatio(),
		}
		for d, n := range p.Counts {
			fr.Counts[d.String()] = n
		}
		if cr != nil {
			fr.Recovered = cr.Recoveries(p.Name)
		}
		if p.Datatype == inference.Integer || p.Datatype == inference.Float {
			fr.Numeric = Summarize(p.Values)
		}
		report.Fields = append(report.Fields, fr)
	}
	return report
}

// Summarize computes a numeric summary over the integer and float values in values.
// It returns nil when there are none.
func Summarize(values []interface{}) *NumericSummary {
	var data stats.Float64Data
	for _, v := range values {
		switch records.KindOf(v) {
		case records.KindInteger, records.KindFloat:
			if f, ok := coercion.Convert(v, inference.Float); ok {
				data = append(data, f.(float64))
			}
		}
	}
	if len(data) == 0 {
		return nil
	}

	summary := &NumericSummary{Count: len(data)}
	summary.Min, _ = stats.Min(data)
	summary.Max, _ = stats.Max(data)
	summary.Mean, _ = stats.Mean(data)
	summary.Median, _ = stats.Median(data)
	summary.StdDev, _ = stats.StandardDeviation(data)
	return summary
}

// WriteReport writes the report as YAML (.yaml, .yml) or JSON (.json)
func WriteReport(path string, report *ProfileReport) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err = json.MarshalIndent(report, "", "  ")
	case ".yaml", ".yml", "":
		data, err = yaml.Marshal(report)
	default:
		return fmt.Errorf("unsupported report format %q", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
