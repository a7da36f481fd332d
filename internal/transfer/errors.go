package transfer

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Code identifies a classified failure kind.
type Code string

const (
	// CodeConnection covers transient transport failures (refused, reset,
	// unreachable host). Retryable.
	CodeConnection Code = "CONNECTION"
	// CodeAuth covers rejected credentials. Not retryable.
	CodeAuth Code = "AUTH"
	// CodeFileNotFound covers missing remote resources. Not retryable.
	CodeFileNotFound Code = "FILE_NOT_FOUND"
	// CodePermission covers access-denied failures. Not retryable.
	CodePermission Code = "PERMISSION"
	// CodeTimeout covers operations that exceeded a deadline. Retryable.
	CodeTimeout Code = "TIMEOUT"
	// CodeUnknown covers everything else. Not retryable.
	CodeUnknown Code = "UNKNOWN"
)

// ClassifiedError is the typed representation of a raw transport failure.
// The Retryable flag is fixed by the code at construction.
type ClassifiedError struct {
	Code      Code
	Message   string
	Retryable bool
	Path      string
	At        time.Time
	Cause     error
}

func (e *ClassifiedError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ClassifiedError) Unwrap() error {
	return e.Cause
}

// ErrorContext carries optional context forwarded to Classify.
type ErrorContext struct {
	// Path is the file or directory the failing operation was touching.
	Path string
}

// Substring markers checked against the lower-cased failure message, in
// precedence order. First match wins. The FTP reply codes (530, 550, 553)
// and the errno-style names cover the strings the underlying transport
// libraries are known to produce.
var connectionMarkers = []string{
	"econnrefused",
	"connection refused",
	"enotfound",
	"no such host",
	"host not found",
	"etimedout",
	"econnreset",
	"connection reset",
	"broken pipe",
	"network is unreachable",
}

var authMarkers = []string{
	"530",
	"login",
	"authentication",
}

var notFoundMarkers = []string{
	"no such file",
	"550",
	"not found",
}

var permissionMarkers = []string{
	"permission",
	"553",
	"access denied",
}

var timeoutMarkers = []string{
	"timeout",
	"timed out",
}

// Classify maps a raw failure to a ClassifiedError. It never returns nil
// and never panics: a nil error yields CodeUnknown with a placeholder
// message. An already-classified error is returned unchanged.
func Classify(err error, ectx *ErrorContext) *ClassifiedError {
	var cerr *ClassifiedError
	if errors.As(err, &cerr) {
		return cerr
	}

	path := ""
	if ectx != nil {
		path = ectx.Path
	}

	if err == nil {
		return &ClassifiedError{
			Code:    CodeUnknown,
			Message: "unknown error",
			At:      time.Now(),
		}
	}

	msg := strings.ToLower(err.Error())

	switch {
	case containsAny(msg, connectionMarkers):
		return newClassified(CodeConnection, "connection failed", true, "", err)
	case containsAny(msg, authMarkers):
		return newClassified(CodeAuth, "authentication failed", false, "", err)
	case containsAny(msg, notFoundMarkers):
		return newClassified(CodeFileNotFound, "file not found", false, path, err)
	case containsAny(msg, permissionMarkers):
		return newClassified(CodePermission, "permission denied", false, path, err)
	case containsAny(msg, timeoutMarkers):
		return newClassified(CodeTimeout, "operation timed out", true, "", err)
	default:
		return newClassified(CodeUnknown, err.Error(), false, path, err)
	}
}

func newClassified(code Code, message string, retryable bool, path string, cause error) *ClassifiedError {
	return &ClassifiedError{
		Code:      code,
		Message:   message,
		Retryable: retryable,
		Path:      path,
		At:        time.Now(),
		Cause:     cause,
	}
}

func containsAny(msg string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
