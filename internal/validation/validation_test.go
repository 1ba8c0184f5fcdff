package validation_test

import (
	"civicdesk/backend/internal/validation"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type location struct {
	Type        string    `json:"type" binding:"omitempty,eq=Point"`
	Coordinates []float64 `json:"coordinates" binding:"required,coordinates"`
}

type complaintRequest struct {
	Description string    `json:"description" binding:"required,min=10,max=1000"`
	Category    string    `json:"category" binding:"required,min=3,max=50"`
	Email       string    `json:"email" binding:"omitempty,email"`
	Status      string    `json:"status" binding:"omitempty,complaint_status"`
	Priority    string    `json:"priority" binding:"omitempty,priority"`
	Location    *location `json:"location" binding:"omitempty"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	validation.Register(v)
	return v
}

func translate(t *testing.T, v *validator.Validate, req complaintRequest) *validation.Error {
	t.Helper()
	err := validation.Translate(v.Struct(req))
	if err == nil {
		return nil
	}
	var verr *validation.Error
	require.True(t, errors.As(err, &verr), "unexpected error type %T", err)
	return verr
}

func fields(e *validation.Error) []string {
	out := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		out = append(out, fe.Field)
	}
	return out
}

func TestTranslate_EnumeratesAllViolations(t *testing.T) {
	v := newValidator()

	verr := translate(t, v, complaintRequest{Description: "short", Category: "x", Email: "not-an-email"})

	require.NotNil(t, verr)
	assert.Equal(t, "Validation failed", verr.Message)
	assert.ElementsMatch(t, []string{"description", "category", "email"}, fields(verr))
}

func TestTranslate_CoordinatesOutOfRange(t *testing.T) {
	v := newValidator()
	req := complaintRequest{
		Description: "Pothole on Main street",
		Category:    "Roads",
		Location:    &location{Type: "Point", Coordinates: []float64{200, 45}},
	}

	verr := translate(t, v, req)

	require.NotNil(t, verr)
	require.Len(t, verr.Errors, 1)
	assert.Equal(t, "location.coordinates", verr.Errors[0].Field)
	assert.Contains(t, verr.Errors[0].Message, "longitude")
}

func TestCoordinates(t *testing.T) {
	v := newValidator()
	tests := []struct {
		name   string
		coords []float64
		valid  bool
	}{
		{"valid", []float64{-73.9, 40.7}, true},
		{"edges", []float64{180, -90}, true},
		{"latitude out of range", []float64{10, 91}, false},
		{"longitude out of range", []float64{-181, 0}, false},
		{"single value", []float64{10}, false},
		{"three values", []float64{1, 2, 3}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := complaintRequest{
				Description: "Valid description text",
				Category:    "Roads",
				Location:    &location{Coordinates: tt.coords},
			}
			verr := translate(t, v, req)
			if tt.valid {
				assert.Nil(t, verr)
			} else {
				assert.NotNil(t, verr)
			}
		})
	}
}

func TestEnumRules(t *testing.T) {
	v := newValidator()
	base := complaintRequest{Description: "Valid description text", Category: "Roads"}

	ok := base
	ok.Status, ok.Priority = "in_progress", "high"
	assert.Nil(t, translate(t, v, ok))

	bad := base
	bad.Status, bad.Priority = "closed", "urgent"
	verr := translate(t, v, bad)
	require.NotNil(t, verr)
	assert.ElementsMatch(t, []string{"status", "priority"}, fields(verr))
}

func TestTranslate_MalformedJSON(t *testing.T) {
	var target complaintRequest
	err := json.Unmarshal([]byte(`{"description":`), &target)

	verr, ok := validation.Translate(err).(*validation.Error)
	require.True(t, ok)
	require.Len(t, verr.Errors, 1)
	assert.Equal(t, "body", verr.Errors[0].Field)

	empty, ok := validation.Translate(io.EOF).(*validation.Error)
	require.True(t, ok)
	assert.Equal(t, "body", empty.Errors[0].Field)
}

func TestTranslate_WrongType(t *testing.T) {
	var target complaintRequest
	err := json.Unmarshal([]byte(`{"description": 42}`), &target)

	verr, ok := validation.Translate(err).(*validation.Error)
	require.True(t, ok)
	assert.Equal(t, "description", verr.Errors[0].Field)
}

func TestTranslate_PassesThroughUnknownErrors(t *testing.T) {
	boom := errors.New("boom")
	assert.Equal(t, boom, validation.Translate(boom))
	assert.NoError(t, validation.Translate(nil))
}

type profileRequest struct {
	Name     validation.Text   `json:"name" binding:"required,min=2,max=50"`
	Address  *validation.Text  `json:"address" binding:"omitempty,max=10"`
	Password string            `json:"password" binding:"required,password"`
	Tags     []validation.Text `json:"tags" binding:"omitempty,dive,min=3"`
}

func TestText_RulesApplyToTrimmedValue(t *testing.T) {
	v := newValidator()

	blank := validation.Text("      ")
	err := validation.Translate(v.Struct(profileRequest{
		Name:     "   J   ",
		Address:  &blank,
		Password: "long enough",
		Tags:     []validation.Text{" ab ", "roads"},
	}))
	var verr *validation.Error
	require.True(t, errors.As(err, &verr))
	assert.ElementsMatch(t, []string{"name", "tags[0]"}, fields(verr))

	long := validation.Text("  0123456789  ")
	assert.NoError(t, v.Struct(profileRequest{Name: "  Jo  ", Address: &long, Password: "long enough"}))
}

func TestText_Helpers(t *testing.T) {
	assert.Equal(t, "Jane Doe", validation.Text("  Jane Doe \n").String())
	assert.Equal(t, []string{"Roads", "Bridges"}, validation.Strings([]validation.Text{" Roads", "Bridges "}))
	assert.Nil(t, validation.Strings(nil))
	assert.Nil(t, validation.TextPtr(nil))

	resolution := validation.Text("  Fixed  ")
	require.NotNil(t, validation.TextPtr(&resolution))
	assert.Equal(t, "Fixed", *validation.TextPtr(&resolution))
}

func TestPasswordRule(t *testing.T) {
	v := newValidator()

	err := validation.Translate(v.Struct(profileRequest{Name: "Jane", Password: "1234567"}))
	var verr *validation.Error
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Errors, 1)
	assert.Equal(t, "password", verr.Errors[0].Field)
	assert.Equal(t, "must be at least 8 characters long", verr.Errors[0].Message)

	assert.NoError(t, v.Struct(profileRequest{Name: "Jane", Password: "12345678"}))
}
