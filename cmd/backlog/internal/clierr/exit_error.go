// SPDX-License-Identifier: AGPL-3.0-or-later

// Package clierr carries process exit codes through cobra's error returns.
package clierr

import (
	"errors"
	"fmt"
)

// Exit codes of the backlog CLI.
const (
	CodeOK      = 0
	CodeFailure = 1
	CodeConfig  = 2
)

type ExitCoder interface {
	error
	ExitCode() int
}

// ExitError is an error that carries an explicit process exit code.
// It supports wrapping via Unwrap so errors.Is/As work as expected.
type ExitError struct {
	code  int
	msg   string
	cause error
}

func (e *ExitError) Error() string {
	if e.cause == nil {
		return e.msg
	}
	return fmt.Sprintf("%s: %v", e.msg, e.cause)
}

func (e *ExitError) ExitCode() int { return e.code }

func (e *ExitError) Unwrap() error { return e.cause }

// New creates an ExitError with a message.
func New(code int, msg string) error {
	return &ExitError{code: normalize(code), msg: msg}
}

// Wrap creates an ExitError that wraps an underlying cause.
func Wrap(code int, msg string, cause error) error {
	if cause == nil {
		return New(code, msg)
	}
	return &ExitError{code: normalize(code), msg: msg, cause: cause}
}

// Config marks cause as a configuration problem (exit 2).
func Config(msg string, cause error) error {
	return Wrap(CodeConfig, msg, cause)
}

// Failure marks cause as a runtime failure (exit 1).
func Failure(msg string, cause error) error {
	return Wrap(CodeFailure, msg, cause)
}

// ExitCodeOf extracts an exit code from any error, defaulting to 1.
func ExitCodeOf(err error) int {
	if err == nil {
		return CodeOK
	}
	var ec ExitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	return CodeFailure
}

func normalize(code int) int {
	// Errors never exit 0.
	if code <= 0 {
		return CodeFailure
	}
	return code
}
