// TacOps Realtime - Tactical Operations Coordination Server
// Copyright 2026 abusallam
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abusallam/tacops-realtime

// Package validation provides struct validation using go-playground/validator
// v10 through a thread-safe singleton instance.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError describes a single failed validation.
type FieldError struct {
	Field string
	Tag   string
	Param string
}

// Error returns a human-readable message for the failed field.
func (e FieldError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("field %s failed %s=%s", e.Field, e.Tag, e.Param)
	}
	return fmt.Sprintf("field %s failed %s", e.Field, e.Tag)
}

// ValidationError aggregates all field errors from one validation pass.
type ValidationError struct {
	Fields []FieldError
}

// Error joins all field errors into one message.
func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Error()
	}
	return strings.Join(msgs, "; ")
}

// getValidator returns the singleton validator instance.
func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ValidateStruct validates a struct using its `validate` tags. Returns nil
// on success or a *ValidationError describing every failed field.
func ValidateStruct(s any) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		// InvalidValidationError: caller passed a non-struct.
		return err
	}

	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field: fe.Namespace(),
			Tag:   fe.Tag(),
			Param: fe.Param(),
		})
	}
	return out
}

// Var validates a single value against a tag expression.
func Var(value any, tag string) error {
	return getValidator().Var(value, tag)
}
