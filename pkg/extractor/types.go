// Package extractor derives a structural snapshot of the code around the
// cursor: enclosing function/class, visible imports, nearby variable
// bindings and a bounded window of preceding lines.
package extractor

// Position is a zero-based cursor position in the buffer.
type Position struct {
	Line   int
	Column int
}

// FunctionInfo describes the nearest enclosing function header.
type FunctionInfo struct {
	Name       string
	Parameters []string
	ReturnType string
}

// ClassInfo describes the nearest enclosing class-like construct.
type ClassInfo struct {
	Name       string
	Methods    []string
	Properties []string
}

// Variable is a locally visible binding with a lightweight inferred type.
type Variable struct {
	Name  string
	Type  string
	Scope string
}

// CodeContext is the immutable snapshot handed to one pipeline
// invocation. Optional fields stay nil/empty when nothing matched.
type CodeContext struct {
	CurrentLine   string
	PreviousLines []string
	Position      Position
	Language      string
	Function      *FunctionInfo
	Class         *ClassInfo
	Imports       []string
	Variables     []Variable

	// Resolved from configuration by the pipeline after extraction.
	FileExtension string
	IndentStyle   string
	IndentSize    int
	ContextWindow int
}
