package models_test

import (
	"civicdesk/backend/internal/models"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringList_ValueScan(t *testing.T) {
	list := models.StringList{"Roads", "Bridges, Tunnels"}

	v, err := list.Value()
	require.NoError(t, err)

	var back models.StringList
	require.NoError(t, back.Scan(v))
	assert.Equal(t, list, back)

	var fromBytes models.StringList
	require.NoError(t, fromBytes.Scan([]byte(`{a,b}`)))
	assert.Equal(t, models.StringList{"a", "b"}, fromBytes)
}

func TestStringList_NilEncodesEmpty(t *testing.T) {
	var list models.StringList

	v, err := list.Value()
	require.NoError(t, err)
	assert.Equal(t, "{}", v)

	raw, err := json.Marshal(list)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestGeoPoint_JSON(t *testing.T) {
	p := models.NewGeoPoint(-73.935242, 40.73061)

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"Point","coordinates":[-73.935242,40.73061]}`, string(raw))

	var back models.GeoPoint
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, -73.935242, *back.Longitude)
	assert.Equal(t, 40.73061, *back.Latitude)
}

func TestGeoPoint_ZeroIsNull(t *testing.T) {
	raw, err := json.Marshal(models.GeoPoint{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(raw))

	var p models.GeoPoint
	require.NoError(t, json.Unmarshal([]byte("null"), &p))
	assert.True(t, p.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`{"type":"Point","coordinates":[1]}`), &p))
}
