package model

import "errors"

// ErrInvalidInput is returned when a value type is constructed from malformed
// data: inverted time ranges, out-of-range days or negative counts.
var ErrInvalidInput = errors.New("invalid input")
