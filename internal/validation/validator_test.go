package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Note  string `json:"note" validate:"max=5"`
}

func TestValidateStruct_Valid(t *testing.T) {
	assert.NoError(t, ValidateStruct(&sample{Name: "a", Email: "a@b.co"}))
}

func TestValidateStruct_CollectsFields(t *testing.T) {
	err := ValidateStruct(&sample{Email: "nope", Note: "too long"})
	require.Error(t, err)

	var ve *RequestValidationError
	require.True(t, errors.As(err, &ve))
	require.Len(t, ve.Fields, 3)
	assert.Equal(t, "name", ve.Fields[0].Field)
	assert.Equal(t, "required", ve.Fields[0].Tag)
	assert.Contains(t, err.Error(), "email must be a valid email address")
	assert.Contains(t, err.Error(), "note must be at most 5")
}

func TestGetValidator_Singleton(t *testing.T) {
	assert.Same(t, GetValidator(), GetValidator())
}

func TestValidateStruct_NonStruct(t *testing.T) {
	err := ValidateStruct(42)
	require.Error(t, err)
	var ve *RequestValidationError
	assert.False(t, errors.As(err, &ve))
}
