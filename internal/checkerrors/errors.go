package checkerrors

import (
	"errors"
	"fmt"
	"time"
)

// Stage is the pipeline stage an error originated in.
type Stage string

const (
	StageConfig  Stage = "config"
	StageFetch   Stage = "fetch"
	StageExtract Stage = "extract"
	StageMatch   Stage = "match"
	StageStorage Stage = "storage"
)

// Code is the machine-readable identifier of an error kind.
type Code string

const (
	CodeConfigFileNotFound Code = "E101"
	CodeConfigYAMLParse    Code = "E102"
	CodeConfigValidation   Code = "E103"

	CodeFetchNetwork                Code = "E201"
	CodeFetchTimeout                Code = "E202"
	CodeFetchHTTP                   Code = "E203"
	CodeFetchPageLoadFailed         Code = "E204"
	CodeFetchEngineNotAvailable     Code = "E205"
	CodeFetchWaitForSelectorTimeout Code = "E206"

	CodeExtractSelectorValueMissing Code = "E301"
	CodeExtractInvalidSelector      Code = "E302"

	CodeMatchInvalidPattern Code = "E401"
	CodeMatchUnknownType    Code = "E402"

	CodeStorageStateRead    Code = "E501"
	CodeStorageStateWrite   Code = "E502"
	CodeStorageStateParse   Code = "E503"
	CodeStorageHistoryWrite Code = "E504"
)

// Error is a pipeline error carrying everything needed to show it to a
// person or annotate it in CI.
type Error struct {
	Code       Code
	Stage      Stage
	Message    string
	Suggestion string
	Context    map[string]any
	Cause      error
	Timestamp  time.Time
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error with the same code, so errors.Is can be used
// against sentinel values built with New.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Terminal reports whether retrying the failed operation is pointless.
func (e *Error) Terminal() bool {
	return e.Code == CodeFetchEngineNotAvailable
}

// WithContext returns a copy of e with key set in its context.
func (e *Error) WithContext(key string, value any) *Error {
	clone := *e
	clone.Context = make(map[string]any, len(e.Context)+1)
	for k, v := range e.Context {
		clone.Context[k] = v
	}
	clone.Context[key] = value
	return &clone
}

// New creates an error with the given fields and stamps it with the current time.
func New(code Code, stage Stage, message, suggestion string, ctx map[string]any, cause error) *Error {
	if ctx == nil {
		ctx = make(map[string]any)
	}
	return &Error{
		Code:       code,
		Stage:      stage,
		Message:    message,
		Suggestion: suggestion,
		Context:    ctx,
		Cause:      cause,
		Timestamp:  time.Now().UTC(),
	}
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var ce *Error
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// HasCode reports whether err's chain contains an *Error with the given code.
func HasCode(err error, code Code) bool {
	ce, ok := As(err)
	return ok && ce.Code == code
}

// IsTerminal reports whether err must not be retried.
func IsTerminal(err error) bool {
	ce, ok := As(err)
	return ok && ce.Terminal()
}

func attemptSuffix(attempt, maxAttempts int) string {
	if attempt <= 0 || maxAttempts <= 0 {
		return ""
	}
	return fmt.Sprintf(" (attempt %d/%d)", attempt, maxAttempts)
}

// WithAttempts annotates err with the attempt counters of a retry loop.
// Network and timeout messages embed the counters and are rebuilt.
func WithAttempts(err error, attempt, maxAttempts int) error {
	ce, ok := As(err)
	if !ok {
		return err
	}

	url, _ := ce.Context["url"].(string)
	var out *Error
	switch ce.Code {
	case CodeFetchNetwork:
		out = NewFetchNetwork(url, ce.Cause, attempt, maxAttempts)
	case CodeFetchTimeout:
		timeout, _ := ce.Context["timeout"].(int)
		out = NewFetchTimeout(url, timeout, attempt, maxAttempts)
	default:
		return ce.WithContext("attempt", attempt).WithContext("maxAttempts", maxAttempts)
	}

	for k, v := range ce.Context {
		if _, set := out.Context[k]; !set {
			out.Context[k] = v
		}
	}
	return out
}
