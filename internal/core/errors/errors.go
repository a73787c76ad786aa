package errors

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	// Fatal codes: the program model cannot be trusted, the run aborts.
	CodeParseError          ErrorCode = "PARSE_ERROR"
	CodeIOError             ErrorCode = "IO_ERROR"
	CodeCircularInheritance ErrorCode = "CIRCULAR_INHERITANCE"
	CodeInternal            ErrorCode = "INTERNAL_ERROR"

	// Recoverable codes: recorded and surfaced, the run continues.
	CodeImportNotFound        ErrorCode = "IMPORT_NOT_FOUND"
	CodeInvalidPath           ErrorCode = "INVALID_PATH"
	CodeMissingContract       ErrorCode = "MISSING_CONTRACT"
	CodeInconsistentHierarchy ErrorCode = "INCONSISTENT_HIERARCHY"

	CodeValidationError ErrorCode = "VALIDATION_ERROR"
)

type DomainError struct {
	Code    ErrorCode
	Message string
	Err     error
	Context map[string]interface{}
}

const (
	CtxPath     = "path"
	CtxImport   = "import"
	CtxContract = "contract"
	CtxRule     = "rule"
)

func (e *DomainError) WithContext(key string, value interface{}) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

func (e *DomainError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if len(e.Context) > 0 {
		msg += fmt.Sprintf(" %v", e.Context)
	}
	return msg
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func New(code ErrorCode, msg string) error {
	return &DomainError{Code: code, Message: msg}
}

func Newf(code ErrorCode, format string, args ...interface{}) error {
	return &DomainError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func Wrap(err error, code ErrorCode, msg string) error {
	return &DomainError{Code: code, Message: msg, Err: err}
}

func AddContext(err error, key string, value interface{}) error {
	var de *DomainError
	if errors.As(err, &de) {
		de.WithContext(key, value)
		return de
	}
	return &DomainError{
		Code:    CodeInternal,
		Message: "wrapped error",
		Err:     err,
		Context: map[string]interface{}{key: value},
	}
}

// IsCode checks if an error carries a specific error code.
func IsCode(err error, code ErrorCode) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// IsFatal reports whether an error must abort the whole run. Unreadable or
// unparsable files and inheritance cycles all mean the program model is
// wrong, so no finding may be reported against it.
func IsFatal(err error) bool {
	var de *DomainError
	if !errors.As(err, &de) {
		return true
	}
	switch de.Code {
	case CodeParseError, CodeIOError, CodeCircularInheritance, CodeInternal:
		return true
	}
	return false
}
