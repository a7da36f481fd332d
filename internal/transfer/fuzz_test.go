package transfer

import (
	"errors"
	"strings"
	"testing"
)

// FuzzClassify checks the classifier's output guarantees against random
// failure messages: never nil, never panics, code always in the taxonomy,
// retryable flag always consistent with the code.
func FuzzClassify(f *testing.F) {
	seeds := []string{
		"",
		"connection refused",
		"ECONNREFUSED",
		"530 Login incorrect.",
		"550 No such file or directory",
		"553 Could not create file.",
		"i/o timeout",
		"host not found",
		"something else entirely",
		"ŧimed øut",
		strings.Repeat("550", 10000),
		"530\x00login",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	valid := map[Code]bool{
		CodeConnection:   true,
		CodeAuth:         true,
		CodeFileNotFound: true,
		CodePermission:   true,
		CodeTimeout:      true,
		CodeUnknown:      true,
	}

	f.Fuzz(func(t *testing.T, message string) {
		cerr := Classify(errors.New(message), &ErrorContext{Path: "some/path"})

		if cerr == nil {
			t.Fatal("Classify returned nil")
		}
		if !valid[cerr.Code] {
			t.Errorf("Classify(%q) produced unknown code %q", message, cerr.Code)
		}

		retryable := cerr.Code == CodeConnection || cerr.Code == CodeTimeout
		if cerr.Retryable != retryable {
			t.Errorf("Classify(%q) code %s retryable = %v", message, cerr.Code, cerr.Retryable)
		}
	})
}

// FuzzEntryKind checks that arbitrary type codes never panic and always
// normalize to a known kind.
func FuzzEntryKind(f *testing.F) {
	for _, seed := range []string{"", "-", "d", "l", "0", "1", "2", "dir", "file", "zzz", "\x00"} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, code string) {
		kind := Entry{Name: "x", Code: code}.Kind()
		switch kind {
		case KindFile, KindDir, KindLink, KindUnknown:
		default:
			t.Errorf("Kind(%q) = %d, outside known kinds", code, kind)
		}
	})
}
