package property

import (
	"errors"
	"fmt"
)

// Property errors
var (
	ErrInvalidKey              = errors.New("invalid property key")
	ErrMissingRequiredProperty = errors.New("missing required property")
	ErrConversion              = errors.New("property conversion failed")
)

// InvalidKeyError reports malformed key syntax. Offset is the byte
// position in Key where parsing stopped.
type InvalidKeyError struct {
	Key    string
	Offset int
	Reason string
}

func (e *InvalidKeyError) Error() string {
	return fmt.Sprintf("invalid key %q at offset %d: %s", e.Key, e.Offset, e.Reason)
}

func (e *InvalidKeyError) Is(target error) bool {
	return target == ErrInvalidKey
}

// MissingRequiredPropertyError is returned by the Require* lookups when the
// key is absent.
type MissingRequiredPropertyError struct {
	Key string
}

func (e *MissingRequiredPropertyError) Error() string {
	return fmt.Sprintf("missing required property %q", e.Key)
}

func (e *MissingRequiredPropertyError) Is(target error) bool {
	return target == ErrMissingRequiredProperty
}

// ConversionError reports a value that could not be read as the requested type.
type ConversionError struct {
	Key    string
	Target string
	Value  Value
	Err    error
}

func (e *ConversionError) Error() string {
	msg := fmt.Sprintf("property %q: cannot convert %s %q to %s", e.Key, e.Value.Kind(), e.Value.String(), e.Target)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConversionError) Is(target error) bool {
	return target == ErrConversion
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

func invalidKey(key string, offset int, reason string) *InvalidKeyError {
	return &InvalidKeyError{Key: key, Offset: offset, Reason: reason}
}
