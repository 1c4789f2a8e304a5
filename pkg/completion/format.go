package completion

import (
	"fmt"
	"strings"
)

// Style carries the indentation and comment conventions resolved for
// the active language.
type Style struct {
	IndentStyle  string // "spaces" or "tabs"
	IndentSize   int
	CommentStyle string
}

// ApplyStyle normalizes a suggestion in place: multi-line bodies get
// every line after the first re-indented to the resolved style, the
// kind is filled in when the service left it empty, and the
// description surfaces confidence and style metadata. Idempotent;
// formatting already-formatted text changes nothing.
func ApplyStyle(s *Suggestion, style Style) {
	if s.Kind == "" {
		if strings.Contains(s.Text, "\n") {
			s.Kind = KindMultiLine
		} else {
			s.Kind = KindSingleLine
		}
	}

	if strings.Contains(s.Text, "\n") {
		reindented := reindent(s.Text, style)
		if reindented != s.Text {
			s.Text = reindented
			s.FormattingApplied = true
		}
	}

	s.Description = describe(s.Confidence, style, s.Description)
}

// reindent rewrites the leading whitespace of every line after the
// first. The first line keeps the editor's existing indentation
// context untouched.
func reindent(text string, style Style) string {
	lines := strings.Split(text, "\n")
	for i := 1; i < len(lines); i++ {
		lines[i] = reindentLine(lines[i], style)
	}
	return strings.Join(lines, "\n")
}

func reindentLine(line string, style Style) string {
	body := strings.TrimLeft(line, " \t")
	if body == "" {
		return ""
	}
	depth := indentDepth(line[:len(line)-len(body)], style.IndentSize)
	if style.IndentStyle == "tabs" {
		return strings.Repeat("\t", depth) + body
	}
	return strings.Repeat(" ", depth*style.IndentSize) + body
}

// indentDepth counts indentation levels in a whitespace prefix. A tab
// is one level; size consecutive spaces are one level, with a partial
// group rounded up so shallow indents are never flattened to zero.
func indentDepth(prefix string, size int) int {
	if size < 1 {
		size = 1
	}
	depth := 0
	spaces := 0
	for _, r := range prefix {
		if r == '\t' {
			depth += 1 + spaces/size
			spaces = 0
			continue
		}
		spaces++
	}
	depth += (spaces + size - 1) / size
	return depth
}

func describe(confidence float64, style Style, existing string) string {
	meta := fmt.Sprintf("%.0f%% confidence, %s(%d)", confidence*100, style.IndentStyle, style.IndentSize)
	if style.CommentStyle != "" {
		meta += ", comments " + style.CommentStyle
	}
	// Strip a previously appended bracket block so reformatting does
	// not stack metadata.
	base := strings.TrimSpace(existing)
	if idx := strings.LastIndex(base, "["); idx >= 0 && strings.HasSuffix(base, "]") {
		base = strings.TrimSpace(base[:idx])
	}
	if base == "" {
		return "[" + meta + "]"
	}
	return base + " [" + meta + "]"
}
