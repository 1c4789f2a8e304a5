package completion

import (
	"strings"
	"testing"
)

var pythonStyle = Style{IndentStyle: "spaces", IndentSize: 4, CommentStyle: "#"}

func TestApplyStyleReindentsMultiLine(t *testing.T) {
	s := Suggestion{
		Text:       "if n < 2:\n\treturn n\n\t\treturn fib(n-1)",
		Confidence: 0.9,
	}
	ApplyStyle(&s, pythonStyle)

	lines := strings.Split(s.Text, "\n")
	if lines[0] != "if n < 2:" {
		t.Errorf("first line must stay untouched, got %q", lines[0])
	}
	if lines[1] != "    return n" {
		t.Errorf("line 1 = %q, want 4-space indent", lines[1])
	}
	if lines[2] != "        return fib(n-1)" {
		t.Errorf("line 2 = %q, want 8-space indent", lines[2])
	}
	if !s.FormattingApplied {
		t.Error("FormattingApplied should be set when the text changed")
	}
	if s.Kind != KindMultiLine {
		t.Errorf("kind = %q, want multi-line", s.Kind)
	}
}

func TestApplyStyleTabs(t *testing.T) {
	s := Suggestion{
		Text:       "for i := range xs {\n    sum += xs[i]\n}",
		Confidence: 0.8,
	}
	ApplyStyle(&s, Style{IndentStyle: "tabs", IndentSize: 1, CommentStyle: "//"})

	lines := strings.Split(s.Text, "\n")
	if !strings.HasPrefix(lines[1], "\t") || strings.Contains(lines[1], "    ") {
		t.Errorf("line 1 = %q, want tab indent", lines[1])
	}
}

func TestApplyStyleIdempotent(t *testing.T) {
	s := Suggestion{
		Text:       "if n < 2:\n    return n\n        return fib(n-1)",
		Confidence: 0.9,
	}
	ApplyStyle(&s, pythonStyle)
	once := s

	ApplyStyle(&s, pythonStyle)
	if s.Text != once.Text {
		t.Errorf("second format changed text:\n%q\n%q", once.Text, s.Text)
	}
	if s.Description != once.Description {
		t.Errorf("second format changed description:\n%q\n%q", once.Description, s.Description)
	}
}

func TestApplyStyleSingleLine(t *testing.T) {
	s := Suggestion{Text: "return fib(n-1) + fib(n-2)", Confidence: 0.92}
	ApplyStyle(&s, pythonStyle)

	if s.Kind != KindSingleLine {
		t.Errorf("kind = %q, want single-line", s.Kind)
	}
	if s.FormattingApplied {
		t.Error("single-line text needs no re-indentation")
	}
	if s.Text != "return fib(n-1) + fib(n-2)" {
		t.Errorf("text mutated: %q", s.Text)
	}
}

func TestApplyStyleDescription(t *testing.T) {
	s := Suggestion{Text: "x = 1", Confidence: 0.87, Description: "assignment"}
	ApplyStyle(&s, pythonStyle)

	for _, want := range []string{"assignment", "87%", "spaces(4)", "#"} {
		if !strings.Contains(s.Description, want) {
			t.Errorf("description %q missing %q", s.Description, want)
		}
	}
}

func TestApplyStyleKeepsExplicitKind(t *testing.T) {
	s := Suggestion{Text: "class Foo:\n    pass", Confidence: 0.7, Kind: KindBlock}
	ApplyStyle(&s, pythonStyle)
	if s.Kind != KindBlock {
		t.Errorf("kind = %q, service-provided kind must win", s.Kind)
	}
}
