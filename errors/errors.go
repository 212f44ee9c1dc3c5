/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrNotFound is returned when no record exists for a given id
	ErrNotFound = errors.New("record not found")

	// ErrValidation is returned when a value violates the schema at write time
	ErrValidation = errors.New("validation failed")

	// ErrConfiguration is returned for malformed filters, unknown fields and
	// other caller mistakes detected before any store access
	ErrConfiguration = errors.New("invalid configuration")

	// ErrDecode is returned when a stored value cannot be decoded as the
	// field's declared kind
	ErrDecode = errors.New("decode failed")
)

// NotFoundError reports a get or update against an id with no stored keys.
type NotFoundError struct {
	Model string
	ID    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id %q not found", e.Model, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ValidationError reports a value that violates the schema at create or
// update time: missing required field, choice-set violation, type mismatch.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ConfigurationError reports a malformed filter keyword, an unknown field or
// operator, or an operand incompatible with the field's kind. It is always
// raised before any store access.
type ConfigurationError struct {
	Subject string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Subject != "" {
		return fmt.Sprintf("configuration error for %q: %s", e.Subject, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// DecodeError reports a stored value that cannot be decoded as the field's
// declared kind.
type DecodeError struct {
	Field string
	Kind  string
	Raw   string
	Cause error
}

func (e *DecodeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cannot decode %q as %s for field %q: %v", e.Raw, e.Kind, e.Field, e.Cause)
	}
	return fmt.Sprintf("cannot decode %q as %s for field %q", e.Raw, e.Kind, e.Field)
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// Helper functions for creating errors

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(model, id string) error {
	return &NotFoundError{Model: model, ID: id}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewConfigurationError creates a new ConfigurationError
func NewConfigurationError(subject, message string) error {
	return &ConfigurationError{Subject: subject, Message: message}
}

// NewDecodeError creates a new DecodeError
func NewDecodeError(field, kind, raw string, cause error) error {
	return &DecodeError{Field: field, Kind: kind, Raw: raw, Cause: cause}
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsConfiguration checks if an error is a configuration error
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsDecode checks if an error is a decode error
func IsDecode(err error) bool {
	return errors.Is(err, ErrDecode)
}
