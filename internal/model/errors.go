// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors returned by the services. Handlers map them to responses
// with errors.Is.
var (
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrCommentsDisabled = errors.New("comments are disabled for this post")
	ErrValidation       = errors.New("validation failed")
)

// ForbiddenError is returned when the authorization gate rejects an action.
type ForbiddenError struct {
	Action string
}

// Error implements the error interface.
func (e *ForbiddenError) Error() string {
	if e.Action == "" {
		return ErrForbidden.Error()
	}
	return fmt.Sprintf("forbidden: %s", e.Action)
}

// Is makes errors.Is(err, ErrForbidden) match.
func (e *ForbiddenError) Is(target error) bool {
	return target == ErrForbidden
}

// NewForbidden creates a ForbiddenError for the named action.
func NewForbidden(action string) *ForbiddenError {
	return &ForbiddenError{Action: action}
}

// ValidationError holds field-level messages for malformed or missing input.
type ValidationError struct {
	Fields map[string]string
}

// Error implements the error interface. Fields are listed in name order.
func (e *ValidationError) Error() string {
	return ErrValidation.Error() + ": " + strings.Join(e.Messages(), "; ")
}

// Is makes errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Messages returns "field: message" pairs sorted by field name.
func (e *ValidationError) Messages() []string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, k+": "+e.Fields[k])
	}
	return msgs
}

// Validator collects field errors.
type Validator struct {
	fields map[string]string
}

// NewValidator creates an empty Validator.
func NewValidator() *Validator {
	return &Validator{fields: make(map[string]string)}
}

// Check records msg for field when ok is false. The first message per field wins.
func (v *Validator) Check(ok bool, field, msg string) {
	if ok {
		return
	}
	if _, exists := v.fields[field]; !exists {
		v.fields[field] = msg
	}
}

// Err returns a *ValidationError if any check failed, nil otherwise.
func (v *Validator) Err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: v.fields}
}
