package datalake

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aws/smithy-go"
)

// ErrorKind separates credential problems from everything else the
// providers can report.
type ErrorKind string

const (
	KindAuth     ErrorKind = "auth"
	KindProvider ErrorKind = "provider"
)

// StepError wraps a provider failure with the operation that produced it.
type StepError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Op, e.Kind, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

var authErrorCodes = map[string]bool{
	"AccessDenied":                true,
	"AccessDeniedException":       true,
	"UnrecognizedClientException": true,
	"InvalidAccessKeyId":          true,
	"SignatureDoesNotMatch":       true,
	"ExpiredToken":                true,
	"ExpiredTokenException":       true,
	"MissingAuthenticationToken":  true,
}

// classify turns a raw SDK error into a StepError. Missing or rejected
// credentials become KindAuth; anything else is KindProvider.
func classify(op string, err error) *StepError {
	kind := KindProvider

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if authErrorCodes[apiErr.ErrorCode()] {
			kind = KindAuth
		}
	} else if strings.Contains(err.Error(), "retrieve credentials") {
		// The SDK fails before sending the request when no credential
		// source resolves; that error is not a smithy.APIError.
		kind = KindAuth
	}

	return &StepError{Kind: kind, Op: op, Err: err}
}
