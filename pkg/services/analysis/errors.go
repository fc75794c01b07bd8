package analysis

import (
	"errors"
	"fmt"

	"github.com/de-tools/spend-atlas/pkg/store/client"
)

type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindInvalidInput
	KindUpstream
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindUpstream:
		return "upstream_unavailable"
	default:
		return "internal"
	}
}

// Error is the only error type returned by the analysis service.
type Error struct {
	Kind    ErrorKind
	Msg     string
	Details any // upstream payload, when there is one
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func InvalidInput(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidInput, Msg: fmt.Sprintf(format, args...)}
}

// Classify maps any error from the pipeline onto one of the three kinds.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var analysisErr *Error
	if errors.As(err, &analysisErr) {
		return analysisErr
	}

	var upstreamErr *client.UpstreamError
	if errors.As(err, &upstreamErr) {
		return &Error{
			Kind:    KindUpstream,
			Msg:     "USAspending API is unavailable",
			Details: upstreamErr.Details(),
			Err:     err,
		}
	}

	return &Error{
		Kind: KindInternal,
		Msg:  "an unexpected error occurred",
		Err:  err,
	}
}
