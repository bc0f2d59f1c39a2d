/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: options.go
Description: Renderer options. The defaults reproduce the mindat mineral ontology: the mindat
prefix and namespace, the Mindat ontology declaration, the mineral class and min-prefixed
individuals keyed by id and labelled by name.
*/

package ontology

import (
	"fmt"
	"strings"
)

// Options controls naming and skip policy of the rendered document
type Options struct {
	Prefix           string `mapstructure:"prefix" yaml:"prefix" json:"prefix"`
	Namespace        string `mapstructure:"namespace" yaml:"namespace" json:"namespace"`
	OntologyIRI      string `mapstructure:"ontology_iri" yaml:"ontology_iri" json:"ontology_iri"`
	OntologyLabel    string `mapstructure:"ontology_label" yaml:"ontology_label" json:"ontology_label"`
	OntologyComment  string `mapstructure:"ontology_comment" yaml:"ontology_comment" json:"ontology_comment"`
	EntityLabel      string `mapstructure:"entity_label" yaml:"entity_label" json:"entity_label"`
	IdentifierField  string `mapstructure:"identifier_field" yaml:"identifier_field" json:"identifier_field"`
	LabelField       string `mapstructure:"label_field" yaml:"label_field" json:"label_field"`
	IndividualPrefix string `mapstructure:"individual_prefix" yaml:"individual_prefix" json:"individual_prefix"`
	Strict           bool   `mapstructure:"strict" yaml:"strict" json:"strict"`
}

// DefaultOptions returns the mindat mineral ontology settings
func DefaultOptions() Options {
	return Options{
		Prefix:           "mindat",
		Namespace:        "http://www.mindat.org#",
		OntologyIRI:      "http://www.mindat.org",
		OntologyLabel:    "Mindat",
		OntologyComment:  "Programmatically generated ontology for minerals from mindat.org",
		EntityLabel:      "mineral",
		IdentifierField:  "id",
		LabelField:       "name",
		IndividualPrefix: "min",
	}
}

// withDefaults fills every empty naming option from DefaultOptions.
// OntologyComment is left alone: an empty comment drops the rdfs:comment line.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Prefix == "" {
		o.Prefix = d.Prefix
	}
	if o.Namespace == "" {
		o.Namespace = d.Namespace
	}
	if o.OntologyIRI == "" {
		o.OntologyIRI = d.OntologyIRI
	}
	if o.OntologyLabel == "" {
		o.OntologyLabel = d.OntologyLabel
	}
	if o.EntityLabel == "" {
		o.EntityLabel = d.EntityLabel
	}
	if o.IdentifierField == "" {
		o.IdentifierField = d.IdentifierField
	}
	if o.LabelField == "" {
		o.LabelField = d.LabelField
	}
	if o.IndividualPrefix == "" {
		o.IndividualPrefix = d.IndividualPrefix
	}
	return o
}

// Validate checks the options can produce a well-formed document
func (o Options) Validate() error {
	if !isLocalName(o.Prefix) {
		return fmt.Errorf("invalid prefix %q: only letters, digits, '_' and '-' are allowed", o.Prefix)
	}
	if !isLocalName(o.IndividualPrefix) {
		return fmt.Errorf("invalid individual prefix %q", o.IndividualPrefix)
	}
	if strings.ContainsAny(o.Namespace, "<> \n") || !strings.Contains(o.Namespace, ":") {
		return fmt.Errorf("invalid namespace %q", o.Namespace)
	}
	if strings.ContainsAny(o.OntologyIRI, "<> \n") {
		return fmt.Errorf("invalid ontology IRI %q", o.OntologyIRI)
	}
	if o.IdentifierField == o.LabelField {
		return fmt.Errorf("identifier and label fields must differ (both %q)", o.LabelField)
	}
	return nil
}

func isLocalName(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !unreserved(s[i]) {
			return false
		}
	}
	return true
}
