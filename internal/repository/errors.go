package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lensfolio/api-gateway/internal/timeout"
)

// ErrNotFound is returned when a required singleton row does not exist.
var ErrNotFound = errors.New("not found")

// Codes the repository reacts to.
const (
	codeUniqueViolation = "23505"
)

// StoreError is any failure reported by the remote store: constraint
// violations, rejected credentials, unreachable hosts, undecodable replies.
type StoreError struct {
	Op      string
	Code    string
	Message string
	Err     error
}

func (e *StoreError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: store error %s: %s", e.Op, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: store error: %s", e.Op, e.Message)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsTimeout reports whether err came from a call that overran its deadline.
func IsTimeout(err error) bool {
	return errors.Is(err, timeout.ErrTimeout)
}

// asStoreError classifies err. Timeouts, cancellations and errors that are
// already classified pass through untouched.
func asStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) || IsTimeout(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	code, msg := splitCode(err.Error())
	return &StoreError{Op: op, Code: code, Message: msg, Err: err}
}

// splitCode separates the "(CODE) message" form postgrest-go uses for
// PostgREST error bodies.
func splitCode(s string) (string, string) {
	if !strings.HasPrefix(s, "(") {
		return "", s
	}
	end := strings.Index(s, ")")
	if end < 0 {
		return "", s
	}
	return s[1:end], strings.TrimSpace(s[end+1:])
}

func hasCode(err error, code string) bool {
	var se *StoreError
	return errors.As(err, &se) && se.Code == code
}
