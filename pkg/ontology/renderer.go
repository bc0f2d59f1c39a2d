/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: renderer.go
Description: Ontology renderer. Turns a coerced dataset and its schema into a Turtle/OWL
document built from independent section builders: prefixes, ontology declaration, datatype
property declarations, the entity class and one named individual per record. Output is a
pure function of the inputs, so the same data always renders to the same bytes.
*/

package ontology

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kleascm/ontoforge/pkg/coercion"
	"github.com/kleascm/ontoforge/pkg/inference"
	"github.com/kleascm/ontoforge/pkg/records"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const banner = "################################################################################\n"

var standardPrefixes = []struct{ name, iri string }{
	{"rdf", "http://www.w3.org/1999/02/22-rdf-syntax-ns#"},
	{"rdfs", "http://www.w3.org/2000/01/rdf-schema#"},
	{"xsd", "http://www.w3.org/2001/XMLSchema#"},
	{"owl", "http://www.w3.org/2002/07/owl#"},
}

// Document is a rendered ontology
type Document struct {
	Text        string
	Individuals int
	Skipped     []SkippedRecord
}

// Bytes returns the document text as UTF-8 bytes
func (d *Document) Bytes() []byte {
	return []byte(d.Text)
}

// Renderer renders datasets with a fixed set of options
type Renderer struct {
	opts   Options
	logger logrus.FieldLogger
}

// RendererOption configures a Renderer
type RendererOption func(*Renderer)

// WithLogger logs skipped records at warn level
func WithLogger(logger logrus.FieldLogger) RendererOption {
	return func(r *Renderer) {
		r.logger = logger
	}
}

// NewRenderer fills unset naming options with the defaults and validates the result
func NewRenderer(opts Options, ropts ...RendererOption) (*Renderer, error) {
	opts = opts.withDefaults()
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid renderer options: %w", err)
	}
	r := &Renderer{opts: opts}
	for _, o := range ropts {
		o(r)
	}
	return r, nil
}

// Options returns the effective options
func (r *Renderer) Options() Options {
	return r.opts
}

// Render builds the document. Records missing their identifier or label are skipped and
// listed in Document.Skipped; in strict mode the first such record aborts rendering.
func (r *Renderer) Render(ds records.Dataset, schema *inference.Schema) (*Document, error) {
	if len(ds) == 0 || schema == nil || schema.Len() == 0 {
		return nil, ErrEmptyDataset
	}

	var b strings.Builder
	r.writePrefixes(&b)
	r.writeOntology(&b)
	r.writeProperties(&b, schema)
	r.writeClass(&b)

	doc := &Document{}
	b.WriteString(banner)
	b.WriteString("# Individuals\n\n")
	for i, rec := range ds {
		block, err := r.individual(i, rec, schema)
		if err != nil {
			var unknown *coercion.UnknownFieldError
			if errors.As(err, &unknown) || r.opts.Strict {
				return nil, err
			}
			doc.Skipped = append(doc.Skipped, SkippedRecord{Index: i, Err: err})
			if r.logger != nil {
				r.logger.WithFields(logrus.Fields{
					"record": i,
					"reason": err.Error(),
				}).Warn("Record skipped")
			}
			continue
		}
		b.WriteString(block)
		doc.Individuals++
	}

	doc.Text = b.String()
	return doc, nil
}

func (r *Renderer) writePrefixes(b *strings.Builder) {
	fmt.Fprintf(b, "@prefix %s: <%s> .\n", r.opts.Prefix, r.opts.Namespace)
	for _, p := range standardPrefixes {
		fmt.Fprintf(b, "@prefix %s: <%s> .\n", p.name, p.iri)
	}
	fmt.Fprintf(b, "# ontology design of %s\n\n", r.opts.EntityLabel)
}

func (r *Renderer) writeOntology(b *strings.Builder) {
	fmt.Fprintf(b, "<%s> a owl:Ontology ;\n", r.opts.OntologyIRI)
	if r.opts.OntologyComment == "" {
		fmt.Fprintf(b, "    rdfs:label %s .\n\n", StringLiteral(coercion.EscapeBackslashes(r.opts.OntologyLabel)))
		return
	}
	fmt.Fprintf(b, "    rdfs:label %s ;\n", StringLiteral(coercion.EscapeBackslashes(r.opts.OntologyLabel)))
	fmt.Fprintf(b, "    rdfs:comment %s .\n\n", StringLiteral(coercion.EscapeBackslashes(r.opts.OntologyComment)))
}

func (r *Renderer) writeProperties(b *strings.Builder, schema *inference.Schema) {
	b.WriteString(banner)
	fmt.Fprintf(b, "# data properties for %ss\n\n", r.opts.EntityLabel)
	for _, p := range schema.Profiles() {
		fmt.Fprintf(b, "%s rdf:type owl:DatatypeProperty ;\n", r.term(p.Name))
		fmt.Fprintf(b, "    rdfs:range %s .\n\n", p.Datatype.Range())
	}
}

func (r *Renderer) writeClass(b *strings.Builder) {
	title := cases.Title(language.English).String(r.opts.EntityLabel)
	b.WriteString(banner)
	b.WriteString("# Classes\n")
	fmt.Fprintf(b, "%s rdf:type owl:Class ;\n", r.term(r.opts.EntityLabel))
	fmt.Fprintf(b, "    rdfs:label %s .\n\n", StringLiteral(coercion.EscapeBackslashes(title)))
}

// individual renders one record, or reports why it cannot be rendered
func (r *Renderer) individual(index int, rec *records.Record, schema *inference.Schema) (string, error) {
	for _, field := range rec.Fields() {
		if _, ok := schema.Lookup(field); !ok {
			return "", &coercion.UnknownFieldError{Record: index, Field: field}
		}
	}

	id, ok := rec.Get(r.opts.IdentifierField)
	if !ok || id == nil || id == coercion.Recovered {
		return "", &MissingIdentifierError{Record: index, Field: r.opts.IdentifierField}
	}
	label, ok := rec.Get(r.opts.LabelField)
	if !ok || label == nil || label == coercion.Recovered {
		return "", &MissingLabelError{Record: index, Field: r.opts.LabelField}
	}

	idText, _ := coercion.Convert(id, inference.String)
	labelText, _ := coercion.Convert(label, inference.String)

	var b strings.Builder
	fmt.Fprintf(&b, "%s rdf:type owl:NamedIndividual, %s ;\n",
		r.term(r.opts.IndividualPrefix+idText.(string)), r.term(r.opts.EntityLabel))
	fmt.Fprintf(&b, "    rdfs:label %s ;\n", StringLiteral(labelText.(string)))
	for _, field := range rec.Fields() {
		if field == r.opts.LabelField {
			continue
		}
		profile, _ := schema.Lookup(field)
		value, _ := rec.Get(field)
		lit, ok := Literal(value, profile.Datatype)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "    %s %s ;\n", r.term(field), lit)
	}
	b.WriteString("    .\n\n")
	return b.String(), nil
}

// term is a prefixed name in the document namespace
func (r *Renderer) term(local string) string {
	return r.opts.Prefix + ":" + LocalName(local)
}
