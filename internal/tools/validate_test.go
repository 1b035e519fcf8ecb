package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaValidator_ValidArgs(t *testing.T) {
	v := NewSchemaValidator()

	args, err := v.Validate("add_flight", []byte(`{
		"flightNumber": "AA100",
		"originCode": "JFK",
		"destinationCode": "CDG",
		"startDatetime": "2026-06-01T09:00:00",
		"endDatetime": "2026-06-01T21:00:00"
	}`))

	require.NoError(t, err)
	assert.Equal(t, "AA100", args["flightNumber"])
}

func TestSchemaValidator_MissingRequiredField(t *testing.T) {
	v := NewSchemaValidator()

	_, err := v.Validate("add_flight", []byte(`{"flightNumber": "AA100"}`))
	assert.Error(t, err)
}

func TestSchemaValidator_InvalidEnumValue(t *testing.T) {
	v := NewSchemaValidator()

	_, err := v.Validate("add_traveler", []byte(`{"firstName": "A", "type": "ALIEN"}`))
	assert.Error(t, err)
}

func TestSchemaValidator_EmptyArgsForNoArgTool(t *testing.T) {
	v := NewSchemaValidator()

	args, err := v.Validate("get_itinerary", nil)
	require.NoError(t, err)
	assert.Empty(t, args)
}

func TestSchemaValidator_UnknownTool(t *testing.T) {
	v := NewSchemaValidator()

	_, err := v.Validate("not_a_tool", []byte(`{}`))
	assert.Error(t, err)
}

func TestSchemaValidator_InvalidJSON(t *testing.T) {
	v := NewSchemaValidator()

	_, err := v.Validate("get_itinerary", []byte(`not json`))
	assert.Error(t, err)
}

func TestSchemaValidator_CachesCompiledSchema(t *testing.T) {
	v := NewSchemaValidator()

	_, err := v.Validate("get_itinerary", nil)
	require.NoError(t, err)

	s1, err := v.schemaFor("get_itinerary")
	require.NoError(t, err)
	s2, err := v.schemaFor("get_itinerary")
	require.NoError(t, err)

	assert.Same(t, s1, s2)
}
