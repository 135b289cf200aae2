package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const upstreamUser = `{
	"id": 7,
	"firstName": "Ada",
	"lastName": "Lovelace",
	"email": "ada@x.com",
	"bloodGroup": "O+",
	"hair": {"color": "Brown"},
	"company": {"title": "Engineer", "department": "Engineering"},
	"performanceRating": 4.2
}`

func TestEmployee_ExtraRoundTrip(t *testing.T) {
	var e Employee
	require.NoError(t, json.Unmarshal([]byte(upstreamUser), &e))

	assert.Equal(t, 7, e.ID)
	assert.Equal(t, "Ada Lovelace", e.FullName())
	assert.Equal(t, "Engineering", e.Company.Department)
	require.Len(t, e.Extra, 2)
	assert.JSONEq(t, `"O+"`, string(e.Extra["bloodGroup"]))

	data, err := json.Marshal(e)
	require.NoError(t, err)

	var again Employee
	require.NoError(t, json.Unmarshal(data, &again))
	assert.Equal(t, e.Company, again.Company)
	assert.Equal(t, e.PerformanceRating, again.PerformanceRating)
	require.Len(t, again.Extra, 2)
	assert.JSONEq(t, string(e.Extra["hair"]), string(again.Extra["hair"]))

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "O+", raw["bloodGroup"])
	assert.Equal(t, map[string]interface{}{"color": "Brown"}, raw["hair"])
}

func TestEmployee_TypedFieldsWinOverExtra(t *testing.T) {
	e := Employee{
		ID:        1,
		FirstName: "Typed",
		Extra:     map[string]json.RawMessage{"firstName": json.RawMessage(`"Extra"`)},
	}

	data, err := json.Marshal(e)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "Typed", raw["firstName"])
}

func TestEmployee_NoExtra(t *testing.T) {
	var e Employee
	require.NoError(t, json.Unmarshal([]byte(`{"id":3,"firstName":"Solo"}`), &e))
	assert.Nil(t, e.Extra)
	assert.Equal(t, "Solo", e.FullName())
}

func TestErrors(t *testing.T) {
	te := &TransportError{Op: "directory list", StatusCode: 500, Err: errors.New("boom")}
	wrapped := fmt.Errorf("fetch: %w", te)
	assert.True(t, IsTransport(wrapped))
	assert.False(t, IsValidation(wrapped))
	assert.Contains(t, te.Error(), "unexpected status 500")

	ve := &ValidationError{Stage: ValidationStageInput, Fields: map[string]string{"employeeRole": "required", "employeeFeedback": "required"}}
	assert.True(t, IsValidation(ve))
	assert.Equal(t, "invalid suggestion input: employeeFeedback - required; employeeRole - required", ve.Error())
}
