package linter

import (
	"strings"
	"testing"
)

func validate(t *testing.T, content string) Result {
	t.Helper()
	result, err := Validate(strings.NewReader(content))
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	return result
}

func TestValidate_CleanFile(t *testing.T) {
	content := `
# Theme color settings
section
    name = Colors

color
    name = Primary color
    var = primary_color
    value = #c0ffee

select
    name = Layout
    var = layout
    options = One column
    options = Two columns

checkbox
    name = Show banner
    var = show_banner
`
	result := validate(t, content)
	if len(result.Issues) != 0 {
		t.Errorf("expected no issues, got %v", result.Issues)
	}
	if result.HasErrors() {
		t.Error("expected no errors")
	}
}

func TestValidate_Issues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		substr  string
		line    int
	}{
		{
			name:    "unknown element type",
			content: "slider\n    name = X\n",
			substr:  "unknown element type",
			line:    1,
		},
		{
			name:    "property before any element",
			content: "    name = Orphan\n",
			substr:  "outside of an element block",
			line:    1,
		},
		{
			name:    "missing required name",
			content: "section\n",
			substr:  `missing required property "name"`,
			line:    1,
		},
		{
			name:    "missing required var",
			content: "color\n    name = Primary\n",
			substr:  `missing required property "var"`,
			line:    1,
		},
		{
			name:    "malformed property line",
			content: "section\n    just some words\n",
			substr:  "malformed property line",
			line:    2,
		},
		{
			name:    "select without options",
			content: "select\n    name = Layout\n    var = layout\n",
			substr:  "no options",
			line:    1,
		},
		{
			name:    "invalid color value",
			content: "color\n    name = Primary\n    var = c\n    value = red\n",
			substr:  "invalid color value",
			line:    4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validate(t, tt.content)
			if !result.HasErrors() {
				t.Fatalf("expected errors, got %v", result.Issues)
			}
			found := false
			for _, issue := range result.Issues {
				if strings.Contains(issue.Message, tt.substr) {
					found = true
					if issue.Line != tt.line {
						t.Errorf("issue line = %d, want %d", issue.Line, tt.line)
					}
				}
			}
			if !found {
				t.Errorf("no issue containing %q in %v", tt.substr, result.Issues)
			}
		})
	}
}

func TestValidate_DuplicateVar(t *testing.T) {
	content := `checkbox
    name = A
    var = flag

checkbox
    name = B
    var = flag
`
	result := validate(t, content)
	if !result.HasErrors() {
		t.Fatal("expected duplicate var to be an error")
	}
	issue := result.Issues[0]
	if !strings.Contains(issue.Message, `duplicate variable "flag"`) {
		t.Errorf("unexpected message %q", issue.Message)
	}
	if !strings.Contains(issue.Message, "line 3") {
		t.Errorf("expected reference to first declaration, got %q", issue.Message)
	}
}

func TestValidate_RepeatedPropertyWarns(t *testing.T) {
	content := "section\n    name = A\n    name = B\n"
	result := validate(t, content)

	if result.HasErrors() {
		t.Errorf("repeated property should only warn, got %v", result.Issues)
	}
	if len(result.Issues) != 1 || result.Issues[0].Severity != SeverityWarning {
		t.Errorf("expected a single warning, got %v", result.Issues)
	}
}

func TestValidate_CommentsAndBlanksIgnored(t *testing.T) {
	content := "# comment\n\nsection\n    # indented comment\n    name = A\n\n"
	result := validate(t, content)
	if len(result.Issues) != 0 {
		t.Errorf("expected no issues, got %v", result.Issues)
	}
}

func TestIssueString(t *testing.T) {
	issue := Issue{Line: 7, Severity: SeverityError, Message: "boom"}
	if got := issue.String(); got != "line 7: error: boom" {
		t.Errorf("String() = %q", got)
	}
}
