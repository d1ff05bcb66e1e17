package atmos

import (
	"errors"
	"fmt"
)

var (
	ErrAuthentication = errors.New("authentication failed")
	ErrSessionState   = errors.New("invalid session state")
	ErrResponseFormat = errors.New("unexpected response format")
	ErrParse          = errors.New("unable to parse workbook")
	ErrTransport      = errors.New("transport failure")
)

// Causes of ErrAuthentication. A missing form id means the login markup
// changed; rejected credentials mean the portal sent us back to the login
// form.
var (
	ErrFormIDNotFound      = errors.New("login form id not found")
	ErrCredentialsRejected = errors.New("credentials rejected")
	ErrMissingCredentials  = errors.New("username and password are required")
)

type HTTPStatusError struct {
	Method     string
	URL        string
	StatusCode int
	Status     string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %s", e.Method, e.URL, e.Status)
}

type Stage string

const (
	StageFetch Stage = "fetch"
	StageParse Stage = "parse"
)

// PeriodError reports which billing period and which stage aborted a
// multi-period retrieval.
type PeriodError struct {
	Offset int
	Period string
	Stage  Stage
	Err    error
}

func (e *PeriodError) Error() string {
	return fmt.Sprintf("billing period %d (%s): %s: %v", e.Offset, e.Period, e.Stage, e.Err)
}

func (e *PeriodError) Unwrap() error {
	return e.Err
}
