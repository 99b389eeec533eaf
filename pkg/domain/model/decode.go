package model

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ghdigest/pkg/domain/types"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// DecodeStrict decodes JSON into v rejecting unknown fields, trailing data and
// values violating `validate` tags. Failures wrap types.ErrInvalidResponse.
func DecodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return goerr.Wrap(types.ErrInvalidResponse, "failed to decode JSON", goerr.V("cause", err.Error()))
	}
	if _, err := dec.Token(); err != io.EOF {
		return goerr.Wrap(types.ErrInvalidResponse, "unexpected data after JSON value")
	}
	if err := validate.Struct(v); err != nil {
		return goerr.Wrap(types.ErrInvalidResponse, "response does not satisfy schema", goerr.V("cause", err.Error()))
	}
	return nil
}

// Validate checks `validate` tags of an input struct
func Validate(v any) error {
	if err := validate.Struct(v); err != nil {
		return goerr.Wrap(types.ErrValidationFailed, "invalid input", goerr.V("cause", err.Error()))
	}
	return nil
}
