package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestCloneKeepsIdentity(t *testing.T) {
	err := Clone(ErrValidation, "subject required")
	assert.Equal(t, "subject required", err.Message)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.False(t, errors.Is(err, ErrConflict))
	assert.Equal(t, "validation failed", ErrValidation.Message)
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	appErr := FromError(fmt.Errorf("boom"))
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Nil(t, FromError(nil))

	wrapped := fmt.Errorf("outer: %w", ErrNotFound)
	assert.Equal(t, ErrNotFound, FromError(wrapped))
}

func TestStorageWrap(t *testing.T) {
	cause := errors.New("disk full")
	err := Storage(cause, "a@x.com_students")
	assert.True(t, errors.Is(err, ErrStorage))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "a@x.com_students")
}

func TestValidationListsFields(t *testing.T) {
	type payload struct {
		Name  string `validate:"required"`
		Score int    `validate:"gte=0,lte=10"`
	}
	err := Validation(validator.New().Struct(payload{Score: 11}), "invalid column payload")
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.Equal(t, []FieldError{{Field: "Name", Rule: "required"}, {Field: "Score", Rule: "lte"}}, err.Fields)

	plain := Validation(errors.New("bad json"), "invalid payload")
	assert.Empty(t, plain.Fields)
}

func TestNotFound(t *testing.T) {
	err := NotFound("class")
	assert.Equal(t, "class not found", err.Message)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "resource not found", ErrNotFound.Message)
}
