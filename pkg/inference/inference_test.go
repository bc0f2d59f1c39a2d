/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: inference_test.go
Description: Tests for the type inference engine. Covers majority voting, tie-break
priority, confidence, missing values and empty-field failures.
*/

package inference_test

import (
	"errors"
	"testing"

	"github.com/kleascm/ontoforge/pkg/inference"
	"github.com/kleascm/ontoforge/pkg/records"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dataset(rows ...map[string]interface{}) records.Dataset {
	// single-key rows only: map order is random
	ds := make(records.Dataset, 0, len(rows))
	for _, row := range rows {
		rec := records.NewRecord()
		for k, v := range row {
			rec.Set(k, v)
		}
		ds = append(ds, rec)
	}
	return ds
}

func TestUniformIntegerFieldHasFullConfidence(t *testing.T) {
	ds := dataset(
		map[string]interface{}{"id": int64(1)},
		map[string]interface{}{"id": int64(2)},
		map[string]interface{}{"id": 3},
	)

	schema, err := inference.NewEngine(inference.DefaultCandidates()).Infer(ds)
	require.NoError(t, err)

	p, ok := schema.Lookup("id")
	require.True(t, ok)
	assert.Equal(t, inference.Integer, p.Datatype)
	assert.Equal(t, 1.0, p.Confidence)
	assert.Equal(t, "3/3", p.ConfidenceRatio())
}

func TestTieBreaksByCandidatePriority(t *testing.T) {
	engine := inference.NewEngine(inference.DefaultCandidates())

	schema, err := engine.Infer(dataset(
		map[string]interface{}{"x": 1},
		map[string]interface{}{"x": true},
	))
	require.NoError(t, err)
	p, _ := schema.Lookup("x")
	assert.Equal(t, inference.Integer, p.Datatype)
	assert.Equal(t, 0.5, p.Confidence)

	schema, err = engine.Infer(dataset(
		map[string]interface{}{"hardness": 7.0},
		map[string]interface{}{"hardness": "soft"},
	))
	require.NoError(t, err)
	p, _ = schema.Lookup("hardness")
	assert.Equal(t, inference.Float, p.Datatype)

	schema, err = engine.Infer(dataset(
		map[string]interface{}{"y": "a"},
		map[string]interface{}{"y": false},
	))
	require.NoError(t, err)
	p, _ = schema.Lookup("y")
	assert.Equal(t, inference.Boolean, p.Datatype)
}

func TestCustomPriorityChangesTieBreak(t *testing.T) {
	candidates, err := inference.NewCandidates(inference.String, inference.Boolean, inference.Float, inference.Integer)
	require.NoError(t, err)

	schema, err := inference.NewEngine(candidates).Infer(dataset(
		map[string]interface{}{"x": 1},
		map[string]interface{}{"x": "one"},
	))
	require.NoError(t, err)
	p, _ := schema.Lookup("x")
	assert.Equal(t, inference.String, p.Datatype)
}

func TestMajorityWins(t *testing.T) {
	schema, err := inference.NewEngine(inference.DefaultCandidates()).Infer(dataset(
		map[string]interface{}{"v": "a"},
		map[string]interface{}{"v": "b"},
		map[string]interface{}{"v": 1.5},
		map[string]interface{}{"v": []interface{}{"nested"}},
	))
	require.NoError(t, err)
	p, _ := schema.Lookup("v")
	assert.Equal(t, inference.String, p.Datatype)
	assert.Equal(t, 3, p.Count(inference.String))
	assert.Equal(t, 1, p.Count(inference.Float))
	assert.InDelta(t, 0.75, p.Confidence, 1e-9)
}

func TestCountsSumToObservedOccurrences(t *testing.T) {
	ds := records.Dataset{
		records.NewRecord().Set("id", 1).Set("name", "Quartz").Set("hardness", 7.0),
		records.NewRecord().Set("id", 2).Set("name", "Halite").Set("hardness", "soft"),
		records.NewRecord().Set("id", 3).Set("streak", nil),
		records.NewRecord().Set("id", "4").Set("streak", "white").Set("flag", true),
	}

	schema, err := inference.NewEngine(inference.DefaultCandidates()).Infer(ds)
	require.NoError(t, err)

	occurrences := map[string]int{"id": 4, "name": 2, "hardness": 2, "streak": 1, "flag": 1}
	assert.Equal(t, len(occurrences), schema.Len())
	for _, p := range schema.Profiles() {
		sum := 0
		for _, d := range inference.DefaultCandidates().Order() {
			sum += p.Count(d)
		}
		assert.Equal(t, occurrences[p.Name], sum, p.Name)
		assert.Equal(t, p.Observed, sum, p.Name)
		assert.Greater(t, p.Confidence, 0.0)
		assert.LessOrEqual(t, p.Confidence, 1.0)
	}

	names := make([]string, 0, schema.Len())
	for _, p := range schema.Profiles() {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"id", "name", "hardness", "streak", "flag"}, names)
}

func TestEmptyDatasetFails(t *testing.T) {
	engine := inference.NewEngine(inference.DefaultCandidates())

	_, err := engine.Infer(nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, inference.ErrEmptyField))

	_, err = engine.Infer(records.Dataset{records.NewRecord()})
	assert.True(t, errors.Is(err, inference.ErrEmptyField))
}

func TestAllMissingFieldFails(t *testing.T) {
	ds := records.Dataset{
		records.NewRecord().Set("id", 1).Set("ghost", nil),
		records.NewRecord().Set("id", 2).Set("ghost", nil),
	}

	_, err := inference.NewEngine(inference.DefaultCandidates()).Infer(ds)
	require.Error(t, err)

	var emptyErr *inference.EmptyFieldError
	require.True(t, errors.As(err, &emptyErr))
	assert.Equal(t, "ghost", emptyErr.Field)
}

func TestZeroValueCandidatesFallBackToDefault(t *testing.T) {
	engine := inference.NewEngine(inference.Candidates{})
	assert.Equal(t, inference.DefaultCandidates().Order(), engine.Candidates().Order())
}

func TestNewCandidatesValidation(t *testing.T) {
	_, err := inference.NewCandidates()
	assert.Error(t, err)

	_, err = inference.NewCandidates(inference.Integer, inference.Integer, inference.String)
	assert.Error(t, err)

	_, err = inference.NewCandidates(inference.Integer, inference.Float)
	assert.Error(t, err)

	_, err = inference.NewCandidates(inference.Datatype(9), inference.String)
	assert.Error(t, err)

	c, err := inference.ParseCandidates([]string{"xsd:integer", "float", "boolean", "str"})
	require.NoError(t, err)
	assert.Equal(t, inference.DefaultCandidates().Order(), c.Order())

	_, err = inference.ParseCandidates([]string{"int", "date", "str"})
	assert.Error(t, err)
}

func TestCandidatesOrderIsACopy(t *testing.T) {
	c := inference.DefaultCandidates()
	order := c.Order()
	order[0] = inference.String
	assert.Equal(t, inference.Integer, c.Order()[0])
}

func TestDatatypeRanges(t *testing.T) {
	assert.Equal(t, "xsd:integer", inference.Integer.Range())
	assert.Equal(t, "xsd:float", inference.Float.Range())
	assert.Equal(t, "xsd:boolean", inference.Boolean.Range())
	assert.Equal(t, "xsd:string", inference.String.Range())
	assert.Equal(t, "int", inference.Integer.String())
}
