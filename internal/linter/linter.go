// Package linter validates the theme settings text format
// (config/settings.txt). The format is line oriented: a non-indented line
// opens an element block of a known type, and indented "key = value" lines
// declare its properties. Repeated indented "options" lines enumerate the
// choices of a select element.
package linter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

// Severity of a reported issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one problem found in a settings file.
type Issue struct {
	Line     int
	Severity Severity
	Message  string
}

func (i Issue) String() string {
	return fmt.Sprintf("line %d: %s: %s", i.Line, i.Severity, i.Message)
}

// Result holds all issues found in one file.
type Result struct {
	Issues []Issue
}

// HasErrors reports whether any issue is an error.
func (r Result) HasErrors() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// elementTypes maps each known element type to its required properties.
var elementTypes = map[string][]string{
	"section":     {"name"},
	"title":       {"name"},
	"description": {"name"},
	"checkbox":    {"name", "var"},
	"color":       {"name", "var"},
	"font":        {"name", "var"},
	"select":      {"name", "var"},
	"image":       {"name", "var"},
	"text":        {"name", "var"},
}

var hexColorPattern = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

type element struct {
	typ     string
	line    int
	props   map[string]string
	options int
}

// ValidateFile lints the settings file at path.
func ValidateFile(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return Validate(f)
}

// Validate lints settings content from r.
func Validate(r io.Reader) (Result, error) {
	var result Result
	var current *element

	flush := func() {
		if current != nil {
			result.Issues = append(result.Issues, checkElement(current)...)
			current = nil
		}
	}

	seenVars := make(map[string]int) // var name -> first line

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()
		line := strings.TrimRight(raw, " \t")
		trimmed := strings.TrimSpace(line)

		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		indented := line != trimmed

		if !indented {
			flush()
			if _, ok := elementTypes[trimmed]; !ok {
				result.Issues = append(result.Issues, Issue{
					Line:     lineNo,
					Severity: SeverityError,
					Message:  fmt.Sprintf("unknown element type %q", trimmed),
				})
				continue
			}
			current = &element{typ: trimmed, line: lineNo, props: make(map[string]string)}
			continue
		}

		if current == nil {
			result.Issues = append(result.Issues, Issue{
				Line:     lineNo,
				Severity: SeverityError,
				Message:  "property line outside of an element block",
			})
			continue
		}

		key, value, ok := strings.Cut(trimmed, "=")
		if !ok {
			result.Issues = append(result.Issues, Issue{
				Line:     lineNo,
				Severity: SeverityError,
				Message:  fmt.Sprintf("malformed property line %q, expected \"key = value\"", trimmed),
			})
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		if key == "options" {
			current.options++
			continue
		}

		if key == "var" {
			if first, dup := seenVars[value]; dup {
				result.Issues = append(result.Issues, Issue{
					Line:     lineNo,
					Severity: SeverityError,
					Message:  fmt.Sprintf("duplicate variable %q, first declared on line %d", value, first),
				})
			} else {
				seenVars[value] = lineNo
			}
		}

		if current.typ == "color" && key == "value" && value != "" && !hexColorPattern.MatchString(value) {
			result.Issues = append(result.Issues, Issue{
				Line:     lineNo,
				Severity: SeverityError,
				Message:  fmt.Sprintf("invalid color value %q, expected #rgb or #rrggbb", value),
			})
		}

		if _, dup := current.props[key]; dup {
			result.Issues = append(result.Issues, Issue{
				Line:     lineNo,
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("property %q repeated within the same element", key),
			})
		}
		current.props[key] = value
	}
	if err := scanner.Err(); err != nil {
		return Result{}, fmt.Errorf("reading settings: %w", err)
	}
	flush()

	return result, nil
}

func checkElement(el *element) []Issue {
	var issues []Issue
	for _, required := range elementTypes[el.typ] {
		if _, ok := el.props[required]; !ok {
			issues = append(issues, Issue{
				Line:     el.line,
				Severity: SeverityError,
				Message:  fmt.Sprintf("%s element is missing required property %q", el.typ, required),
			})
		}
	}
	if el.typ == "select" && el.options == 0 {
		issues = append(issues, Issue{
			Line:     el.line,
			Severity: SeverityError,
			Message:  "select element has no options",
		})
	}
	return issues
}
