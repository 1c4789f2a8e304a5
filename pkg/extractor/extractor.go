package extractor

import (
	"strings"

	"github.com/charmbracelet/log"

	"github.com/bims2021/AI-Autocode-Completion/internal/logger"
)

// Scan windows. The scope and previous-line windows follow the
// caller's line budget; variable scans walk backwards from the cursor
// and the import scan reads the buffer prefix.
const (
	defaultContextLines = 50
	importScanLines     = 100
	variableScanLines   = 20
)

// Extractor builds CodeContext snapshots from raw editor buffers.
type Extractor struct {
	parsers map[string]languageParser
	log     *log.Logger
}

// New returns an Extractor with the builtin language registry.
func New() *Extractor {
	return &Extractor{
		parsers: defaultParsers(),
		log:     logger.New("extract"),
	}
}

// Supported reports whether a pattern family exists for the language.
func (e *Extractor) Supported(language string) bool {
	_, ok := e.parsers[language]
	return ok
}

// Extract derives the structural snapshot around the cursor. The
// contextLines budget bounds both the previous-line window and the
// enclosing-scope scan; non-positive values fall back to
// defaultContextLines. The buffer is never mutated; a cursor past the
// end of the buffer clamps to it.
func (e *Extractor) Extract(buffer string, pos Position, language string, contextLines int) CodeContext {
	if contextLines <= 0 {
		contextLines = defaultContextLines
	}
	lines := strings.Split(buffer, "\n")
	if pos.Line < 0 {
		pos.Line = 0
	}
	if pos.Line >= len(lines) {
		pos.Line = len(lines) - 1
	}

	current := lines[pos.Line]
	if pos.Column < 0 {
		pos.Column = 0
	}
	if pos.Column > len(current) {
		pos.Column = len(current)
	}

	ctx := CodeContext{
		CurrentLine:   current,
		PreviousLines: previousWindow(lines, pos.Line, contextLines),
		Position:      pos,
		Language:      language,
	}

	parser, ok := e.parsers[language]
	if !ok {
		e.log.Debugf("no parser for language %q, returning positional context only", language)
		return ctx
	}

	scope := windowBefore(lines, pos.Line, contextLines)
	ctx.Function = parser.Function(scope)
	ctx.Class = parser.Class(scope)
	ctx.Imports = e.scanImports(lines, parser)
	ctx.Variables = e.scanVariables(lines, pos.Line, parser)
	return ctx
}

// previousWindow returns up to n lines before the cursor line, oldest
// first.
func previousWindow(lines []string, cursorLine, n int) []string {
	start := cursorLine - n
	if start < 0 {
		start = 0
	}
	if start >= cursorLine {
		return nil
	}
	window := make([]string, cursorLine-start)
	copy(window, lines[start:cursorLine])
	return window
}

// windowBefore returns up to n lines ending at and including cursorLine.
func windowBefore(lines []string, cursorLine, n int) []string {
	end := cursorLine + 1
	if end > len(lines) {
		end = len(lines)
	}
	start := end - n
	if start < 0 {
		start = 0
	}
	return lines[start:end]
}

func (e *Extractor) scanImports(lines []string, parser languageParser) []string {
	limit := importScanLines
	if limit > len(lines) {
		limit = len(lines)
	}
	var imports []string
	for _, line := range lines[:limit] {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if parser.IsImport(trimmed) {
			imports = append(imports, trimmed)
		}
	}
	return imports
}

func (e *Extractor) scanVariables(lines []string, cursorLine int, parser languageParser) []Variable {
	window := windowBefore(lines, cursorLine, variableScanLines)
	seen := make(map[string]int)
	var vars []Variable
	for _, line := range window {
		name, value, ok := parser.Assignment(strings.TrimSpace(line))
		if !ok {
			continue
		}
		v := Variable{Name: name, Type: inferLiteralType(value), Scope: "local"}
		// Later assignments shadow earlier ones under the same name.
		if idx, dup := seen[name]; dup {
			vars[idx] = v
			continue
		}
		seen[name] = len(vars)
		vars = append(vars, v)
	}
	return vars
}

// inferLiteralType classifies the RHS of an assignment by its literal
// shape only. Anything non-literal is unknown.
func inferLiteralType(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	switch {
	case strings.HasPrefix(value, `"`), strings.HasPrefix(value, "'"), strings.HasPrefix(value, "`"):
		return "string"
	case strings.HasPrefix(value, "["):
		return "array"
	case strings.HasPrefix(value, "{"):
		return "object"
	}
	switch value {
	case "true", "false", "True", "False":
		return "boolean"
	}
	if isNumeric(value) {
		return "number"
	}
	return "unknown"
}

func isNumeric(s string) bool {
	dot := false
	for i, r := range s {
		if r == '-' && i == 0 {
			continue
		}
		if r == '.' {
			if dot {
				return false
			}
			dot = true
			continue
		}
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0 && s != "-" && s != "."
}
