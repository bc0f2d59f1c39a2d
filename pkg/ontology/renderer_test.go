/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: renderer_test.go
Description: Tests for the ontology renderer, literal formatting and document persistence.
*/

package ontology_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kleascm/ontoforge/pkg/coercion"
	"github.com/kleascm/ontoforge/pkg/inference"
	"github.com/kleascm/ontoforge/pkg/ontology"
	"github.com/kleascm/ontoforge/pkg/records"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mineralsDocument = `@prefix mindat: <http://www.mindat.org#> .
@prefix rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#> .
@prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#> .
@prefix xsd: <http://www.w3.org/2001/XMLSchema#> .
@prefix owl: <http://www.w3.org/2002/07/owl#> .
# ontology design of mineral

<http://www.mindat.org> a owl:Ontology ;
    rdfs:label "Mindat" ;
    rdfs:comment "Programmatically generated ontology for minerals from mindat.org" .

################################################################################
# data properties for minerals

mindat:id rdf:type owl:DatatypeProperty ;
    rdfs:range xsd:integer .

mindat:name rdf:type owl:DatatypeProperty ;
    rdfs:range xsd:string .

mindat:hardness rdf:type owl:DatatypeProperty ;
    rdfs:range xsd:float .

################################################################################
# Classes
mindat:mineral rdf:type owl:Class ;
    rdfs:label "Mineral" .

################################################################################
# Individuals

mindat:min1 rdf:type owl:NamedIndividual, mindat:mineral ;
    rdfs:label "Quartz" ;
    mindat:id 1 ;
    mindat:hardness 7.0 ;
    .

mindat:min2 rdf:type owl:NamedIndividual, mindat:mineral ;
    rdfs:label "Halite" ;
    mindat:id 2 ;
    .

`

func prepare(t *testing.T, ds records.Dataset) *inference.Schema {
	t.Helper()
	schema, err := inference.NewEngine(inference.DefaultCandidates()).Infer(ds)
	require.NoError(t, err)
	_, err = coercion.Apply(ds, schema)
	require.NoError(t, err)
	return schema
}

func minerals() records.Dataset {
	return records.Dataset{
		records.NewRecord().Set("id", int64(1)).Set("name", "Quartz").Set("hardness", 7.0),
		records.NewRecord().Set("id", int64(2)).Set("name", "Halite").Set("hardness", "soft"),
	}
}

func TestRenderMinerals(t *testing.T) {
	ds := minerals()
	schema := prepare(t, ds)

	r, err := ontology.NewRenderer(ontology.DefaultOptions())
	require.NoError(t, err)

	doc, err := r.Render(ds, schema)
	require.NoError(t, err)
	assert.Equal(t, mineralsDocument, doc.Text)
	assert.Equal(t, 2, doc.Individuals)
	assert.Empty(t, doc.Skipped)
}

func TestRenderIsDeterministic(t *testing.T) {
	r, err := ontology.NewRenderer(ontology.Options{})
	require.NoError(t, err)

	first := minerals()
	doc1, err := r.Render(first, prepare(t, first))
	require.NoError(t, err)

	second := minerals()
	doc2, err := r.Render(second, prepare(t, second))
	require.NoError(t, err)

	assert.Equal(t, doc1.Bytes(), doc2.Bytes())
}

func TestRenderSkipsMalformedRecords(t *testing.T) {
	ds := records.Dataset{
		records.NewRecord().Set("id", 1).Set("name", "Quartz"),
		records.NewRecord().Set("name", "Nameless id"),
		records.NewRecord().Set("id", 3),
		records.NewRecord().Set("id", 4).Set("name", "Galena"),
	}
	schema := prepare(t, ds)

	r, err := ontology.NewRenderer(ontology.DefaultOptions())
	require.NoError(t, err)

	doc, err := r.Render(ds, schema)
	require.NoError(t, err)
	assert.Equal(t, 2, doc.Individuals)
	require.Len(t, doc.Skipped, 2)

	assert.Equal(t, 1, doc.Skipped[0].Index)
	assert.True(t, errors.Is(doc.Skipped[0].Err, ontology.ErrMissingIdentifier))
	assert.Equal(t, 2, doc.Skipped[1].Index)
	var labelErr *ontology.MissingLabelError
	require.True(t, errors.As(doc.Skipped[1].Err, &labelErr))
	assert.Equal(t, "name", labelErr.Field)

	assert.Contains(t, doc.Text, "mindat:min4 rdf:type")
	assert.NotContains(t, doc.Text, "mindat:min3")
}

func TestRenderStrictAbortsOnMalformedRecord(t *testing.T) {
	ds := records.Dataset{
		records.NewRecord().Set("id", 1).Set("name", "Quartz"),
		records.NewRecord().Set("id", 2),
	}
	schema := prepare(t, ds)

	opts := ontology.DefaultOptions()
	opts.Strict = true
	r, err := ontology.NewRenderer(opts)
	require.NoError(t, err)

	_, err = r.Render(ds, schema)
	assert.True(t, errors.Is(err, ontology.ErrMissingLabel))
}

func TestRecoveredIdentifierIsMissing(t *testing.T) {
	ds := records.Dataset{
		records.NewRecord().Set("id", 1).Set("name", "a"),
		records.NewRecord().Set("id", 2).Set("name", "b"),
		records.NewRecord().Set("id", "n/a").Set("name", "c"),
	}
	schema := prepare(t, ds)

	r, err := ontology.NewRenderer(ontology.DefaultOptions())
	require.NoError(t, err)
	doc, err := r.Render(ds, schema)
	require.NoError(t, err)
	require.Len(t, doc.Skipped, 1)
	assert.True(t, errors.Is(doc.Skipped[0].Err, ontology.ErrMissingIdentifier))
}

func TestRenderEmptyInputs(t *testing.T) {
	r, err := ontology.NewRenderer(ontology.DefaultOptions())
	require.NoError(t, err)

	_, err = r.Render(nil, inference.NewSchema())
	assert.True(t, errors.Is(err, ontology.ErrEmptyDataset))

	_, err = r.Render(minerals(), nil)
	assert.True(t, errors.Is(err, ontology.ErrEmptyDataset))
}

func TestRenderRejectsFieldsOutsideSchema(t *testing.T) {
	ds := minerals()
	schema := prepare(t, ds)
	ds[0].Set("extra", "x")

	r, err := ontology.NewRenderer(ontology.DefaultOptions())
	require.NoError(t, err)
	_, err = r.Render(ds, schema)
	var unknown *coercion.UnknownFieldError
	assert.True(t, errors.As(err, &unknown))
}

func TestRenderEscapedAndMultilineStrings(t *testing.T) {
	ds := records.Dataset{
		records.NewRecord().Set("id", 1).Set("name", "Quartz").Set("path", `C:\path`).Set("note", "line one\nsaid \"hi\""),
	}
	schema := prepare(t, ds)

	r, err := ontology.NewRenderer(ontology.DefaultOptions())
	require.NoError(t, err)
	doc, err := r.Render(ds, schema)
	require.NoError(t, err)

	assert.Contains(t, doc.Text, `    mindat:path "C:\\path" ;`)
	assert.Contains(t, doc.Text, "    mindat:note \"\"\"line one\nsaid \\\"hi\\\"\"\"\" ;")
}

func TestCustomOptions(t *testing.T) {
	ds := records.Dataset{
		records.NewRecord().Set("code", "a b").Set("title", "Alpha").Set("active", true),
	}
	schema := prepare(t, ds)

	r, err := ontology.NewRenderer(ontology.Options{
		Prefix:           "ex",
		Namespace:        "http://example.org/ns#",
		OntologyIRI:      "http://example.org/ns",
		OntologyLabel:    "Example",
		EntityLabel:      "element",
		IdentifierField:  "code",
		LabelField:       "title",
		IndividualPrefix: "el",
	})
	require.NoError(t, err)

	doc, err := r.Render(ds, schema)
	require.NoError(t, err)
	assert.Contains(t, doc.Text, "@prefix ex: <http://example.org/ns#> .\n")
	assert.Contains(t, doc.Text, "    rdfs:label \"Example\" .\n")
	assert.NotContains(t, doc.Text, "rdfs:comment")
	assert.Contains(t, doc.Text, "ex:element rdf:type owl:Class ;\n    rdfs:label \"Element\" .")
	assert.Contains(t, doc.Text, "ex:ela%20b rdf:type owl:NamedIndividual, ex:element ;")
	assert.Contains(t, doc.Text, "    ex:active true ;")
}

func TestInvalidOptions(t *testing.T) {
	_, err := ontology.NewRenderer(ontology.Options{Prefix: "bad prefix"})
	assert.Error(t, err)

	_, err = ontology.NewRenderer(ontology.Options{IdentifierField: "name"})
	assert.Error(t, err)

	_, err = ontology.NewRenderer(ontology.Options{Namespace: "<nope>"})
	assert.Error(t, err)
}

func TestLiteral(t *testing.T) {
	cases := []struct {
		v    interface{}
		d    inference.Datatype
		want string
		ok   bool
	}{
		{int64(42), inference.Integer, "42", true},
		{7.0, inference.Float, "7.0", true},
		{2.5, inference.Float, "2.5", true},
		{false, inference.Boolean, "false", true},
		{"plain", inference.String, `"plain"`, true},
		{"", inference.String, "", false},
		{"", inference.Integer, "", false},
	}
	for _, tc := range cases {
		got, ok := ontology.Literal(tc.v, tc.d)
		assert.Equal(t, tc.ok, ok, "%#v", tc.v)
		assert.Equal(t, tc.want, got, "%#v", tc.v)
	}
}

func TestLocalName(t *testing.T) {
	assert.Equal(t, "min1", ontology.LocalName("min1"))
	assert.Equal(t, "crystal_system-x", ontology.LocalName("crystal_system-x"))
	assert.Equal(t, "a%2Eb%20c", ontology.LocalName("a.b c"))
	assert.Equal(t, "%C3%A9", ontology.LocalName("é"))
	assert.Equal(t, "%2Ddelta", ontology.LocalName("-delta"))
	assert.Equal(t, "%2D-", ontology.LocalName("--"))
}

func TestRenderLeadingDashFieldName(t *testing.T) {
	ds := records.Dataset{
		records.NewRecord().Set("id", 1).Set("name", "Quartz").Set("-delta", 2),
	}
	schema := prepare(t, ds)

	r, err := ontology.NewRenderer(ontology.DefaultOptions())
	require.NoError(t, err)
	doc, err := r.Render(ds, schema)
	require.NoError(t, err)

	assert.Contains(t, doc.Text, "mindat:%2Ddelta rdf:type owl:DatatypeProperty ;")
	assert.Contains(t, doc.Text, "    mindat:%2Ddelta 2 ;")
	assert.NotContains(t, doc.Text, "mindat:-delta")
}

func TestWriteFileIsAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", ontology.DefaultOutputFile)

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("old"), 0644))

	doc := &ontology.Document{Text: mineralsDocument}
	require.NoError(t, ontology.WriteFile(path, doc))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, mineralsDocument, string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	assert.Error(t, ontology.WriteFile(path, nil))
}
