// Package errors provides structured error types for the Lox language.
//
// This package defines LoxError, a unified error type that represents
// scanner, parser, and runtime errors with enough metadata to reproduce
// the canonical diagnostic formats and to map errors to exit codes.
package errors

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// ErrorClass categorizes errors for rendering and exit-code mapping.
type ErrorClass string

const (
	ClassLexical ErrorClass = "lexical" // Scanner errors
	ClassSyntax  ErrorClass = "syntax"  // Parser errors
	ClassRuntime ErrorClass = "runtime" // Evaluation errors
)

// Exit codes reported by the CLI. Lexical and syntax errors share a code;
// runtime errors get their own.
const (
	ExitOK           = 0
	ExitSyntaxError  = 65
	ExitRuntimeError = 70
)

// LoxError represents any error from scanning, parsing, or evaluation.
type LoxError struct {
	Class   ErrorClass `json:"class"`            // Error category
	Message string     `json:"message"`          // Human-readable message
	Line    int        `json:"line"`             // 1-based line (0 if unknown)
	Lexeme  string     `json:"lexeme,omitempty"` // Offending token text (syntax errors)
	AtEnd   bool       `json:"atEnd,omitempty"`  // Error reported at end of input
	File    string     `json:"file,omitempty"`   // File path (if known)
	Hints   []string   `json:"hints,omitempty"`  // Suggestions for fixing
}

// Error implements the error interface.
func (e *LoxError) Error() string {
	return e.String()
}

// String renders the error in its canonical diagnostic form:
//
//	lexical:  [line N] Error: message
//	syntax:   [line N] Error at 'lexeme': message
//	          [line N] Error at end: message
//	runtime:  message
//	          [line N]
func (e *LoxError) String() string {
	switch e.Class {
	case ClassLexical:
		return fmt.Sprintf("[line %d] Error: %s", e.Line, e.Message)
	case ClassSyntax:
		if e.AtEnd {
			return fmt.Sprintf("[line %d] Error at end: %s", e.Line, e.Message)
		}
		return fmt.Sprintf("[line %d] Error at '%s': %s", e.Line, e.Lexeme, e.Message)
	default:
		return fmt.Sprintf("%s\n[line %d]", e.Message, e.Line)
	}
}

// PrettyString returns the canonical form plus any hint lines. The REPL
// uses this; the CLI sticks to String so diagnostics stay machine-checkable.
func (e *LoxError) PrettyString() string {
	var sb strings.Builder
	sb.WriteString(e.String())
	for _, hint := range e.Hints {
		sb.WriteString("\n  ")
		sb.WriteString(hint)
	}
	return sb.String()
}

// ToJSON returns the error as JSON bytes.
func (e *LoxError) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// WithFile returns a copy of the error with the file path set.
func (e *LoxError) WithFile(file string) *LoxError {
	copy := *e
	copy.File = file
	return &copy
}

// IsSyntaxError reports whether this error belongs to the scan/parse phase.
func (e *LoxError) IsSyntaxError() bool {
	return e.Class == ClassLexical || e.Class == ClassSyntax
}

// IsRuntimeError reports whether this error arose during evaluation.
func (e *LoxError) IsRuntimeError() bool {
	return e.Class == ClassRuntime
}

// NewLexical creates a scanner error at the given line.
func NewLexical(line int, format string, a ...any) *LoxError {
	return &LoxError{
		Class:   ClassLexical,
		Line:    line,
		Message: fmt.Sprintf(format, a...),
	}
}

// NewSyntax creates a parser error at the given token.
func NewSyntax(line int, lexeme string, format string, a ...any) *LoxError {
	return &LoxError{
		Class:   ClassSyntax,
		Line:    line,
		Lexeme:  lexeme,
		Message: fmt.Sprintf(format, a...),
	}
}

// NewSyntaxAtEnd creates a parser error reported at the end of input.
func NewSyntaxAtEnd(line int, format string, a ...any) *LoxError {
	return &LoxError{
		Class:   ClassSyntax,
		Line:    line,
		AtEnd:   true,
		Message: fmt.Sprintf(format, a...),
	}
}

// NewRuntime creates an evaluation error at the given line.
func NewRuntime(line int, format string, a ...any) *LoxError {
	return &LoxError{
		Class:   ClassRuntime,
		Line:    line,
		Message: fmt.Sprintf(format, a...),
	}
}

// ExitCode maps a list of errors to the CLI exit code. Runtime errors win
// over syntax errors; no errors means success.
func ExitCode(errs []*LoxError) int {
	code := ExitOK
	for _, err := range errs {
		if err.IsRuntimeError() {
			return ExitRuntimeError
		}
		code = ExitSyntaxError
	}
	return code
}

// MarshalJSONList renders a slice of errors as a JSON array. Used by the
// check command's machine-readable output.
func MarshalJSONList(errs []*LoxError) ([]byte, error) {
	if errs == nil {
		errs = []*LoxError{}
	}
	return json.MarshalIndent(errs, "", "  ")
}

// ============================================================================
// Fuzzy Matching - "Did you mean?" suggestions
// ============================================================================

// levenshteinDistance computes the edit distance between two strings.
func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	matrix := make([][]int, len(a)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(b)+1)
		matrix[i][0] = i
	}
	for j := range matrix[0] {
		matrix[0][j] = j
	}

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			matrix[i][j] = min(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}

	return matrix[len(a)][len(b)]
}

// FindClosestMatch finds the closest match to the given string from
// candidates. Returns the best match if the distance is within the
// threshold, otherwise empty string. The threshold scales with the
// length of the input.
func FindClosestMatch(input string, candidates []string) string {
	if len(input) == 0 || len(candidates) == 0 {
		return ""
	}

	inputLower := strings.ToLower(input)

	var bestMatch string
	bestDistance := -1

	for _, candidate := range candidates {
		dist := levenshteinDistance(inputLower, strings.ToLower(candidate))
		if bestDistance == -1 || dist < bestDistance {
			bestDistance = dist
			bestMatch = candidate
		}
	}

	// Short words (1-3): max 1 edit
	// Medium words (4-6): max 2 edits
	// Longer words (7+): max 3 edits
	threshold := 1
	if len(input) >= 4 && len(input) <= 6 {
		threshold = 2
	} else if len(input) >= 7 {
		threshold = 3
	}

	if bestDistance <= 0 || bestDistance > threshold {
		return ""
	}

	return bestMatch
}

// WithSuggestion appends a "Did you mean?" hint when a close candidate
// exists. Returns the error for chaining.
func (e *LoxError) WithSuggestion(name string, candidates []string) *LoxError {
	if suggestion := FindClosestMatch(name, candidates); suggestion != "" {
		e.Hints = append(e.Hints, "Did you mean '"+suggestion+"'?")
	}
	return e
}

// SortByLine orders errors by source line, preserving relative order for
// errors on the same line. Scanner and parser errors interleave in line
// order when reported together.
func SortByLine(errs []*LoxError) {
	sort.SliceStable(errs, func(i, j int) bool {
		return errs[i].Line < errs[j].Line
	})
}

// LoxKeywords lists the language's reserved words, used for typo
// suggestions against undefined identifiers.
var LoxKeywords = []string{
	"and", "class", "else", "false", "fun", "for", "if", "nil",
	"or", "print", "return", "super", "this", "true", "var", "while",
}
