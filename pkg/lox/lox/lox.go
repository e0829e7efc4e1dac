// Package lox is the embedding API: one Interpreter wraps the scan,
// parse, and evaluate pipeline behind a handful of methods, so the CLI,
// the REPL, and host programs all drive the language the same way.
package lox

import (
	"github.com/sambeau/golox/pkg/lox/ast"
	lerrors "github.com/sambeau/golox/pkg/lox/errors"
	"github.com/sambeau/golox/pkg/lox/evaluator"
	"github.com/sambeau/golox/pkg/lox/lexer"
	"github.com/sambeau/golox/pkg/lox/parser"
)

// Interpreter holds one global scope. Successive Run and Evaluate calls
// share it, which is what gives the REPL its session state.
type Interpreter struct {
	env *evaluator.Environment
}

// New creates an interpreter with a fresh global scope
func New() *Interpreter {
	return &Interpreter{env: evaluator.NewEnvironment()}
}

// SetLogger directs print output
func (in *Interpreter) SetLogger(logger Logger) {
	in.env.Logger = logger
}

// SetFilename sets the name reported in diagnostics
func (in *Interpreter) SetFilename(name string) {
	in.env.Filename = name
}

// SetMaxCallDepth bounds function-call nesting. Values below one are
// ignored.
func (in *Interpreter) SetMaxCallDepth(n int) {
	if n > 0 {
		in.env.MaxCallDepth = n
	}
}

// Env exposes the global scope (REPL completion and inspection)
func (in *Interpreter) Env() *evaluator.Environment {
	return in.env
}

// Tokenize scans the whole source, returning every token plus any
// lexical errors. Scanning always reaches EOF; errors never stop it.
func (in *Interpreter) Tokenize(source string) ([]lexer.Token, []*lerrors.LoxError) {
	l := lexer.NewWithFilename(source, in.env.Filename)
	tokens := l.ScanTokens()
	return tokens, l.Errors()
}

// ParseExpression parses the source as a single expression. The error
// list carries lexical and syntax errors together, in line order.
func (in *Interpreter) ParseExpression(source string) (ast.Expression, []*lerrors.LoxError) {
	lexErrs := in.scanForErrors(source)

	p := parser.New(lexer.NewWithFilename(source, in.env.Filename))
	expr := p.ParseExpression()

	errs := mergeErrors(lexErrs, p.StructuredErrors())
	if len(errs) != 0 {
		return nil, errs
	}
	return expr, nil
}

// ParseProgram parses the source as a full program. Even with errors
// the partial tree comes back; callers decide whether to use it.
func (in *Interpreter) ParseProgram(source string) (*ast.Program, []*lerrors.LoxError) {
	lexErrs := in.scanForErrors(source)

	p := parser.New(lexer.NewWithFilename(source, in.env.Filename))
	program := p.ParseProgram()

	return program, mergeErrors(lexErrs, p.StructuredErrors())
}

// Check reports the source's lexical and syntax errors without running
// anything
func (in *Interpreter) Check(source string) []*lerrors.LoxError {
	_, errs := in.ParseProgram(source)
	return errs
}

// Evaluate parses the source as one expression and evaluates it in the
// interpreter's scope.
func (in *Interpreter) Evaluate(source string) (evaluator.Object, []*lerrors.LoxError) {
	expr, errs := in.ParseExpression(source)
	if len(errs) != 0 {
		return nil, errs
	}

	result := evaluator.Eval(expr, in.env)
	if errObj, ok := result.(*evaluator.Error); ok {
		return nil, []*lerrors.LoxError{errObj.Err.WithFile(in.env.Filename)}
	}
	return result, nil
}

// Run executes the source as a program. Any lexical or syntax error
// stops the run before a single statement executes; a runtime error
// stops it mid-way, leaving earlier side effects in place. The returned
// object is the program's final value.
func (in *Interpreter) Run(source string) (evaluator.Object, []*lerrors.LoxError) {
	program, errs := in.ParseProgram(source)
	if len(errs) != 0 {
		return nil, errs
	}

	result := evaluator.Eval(program, in.env)
	if errObj, ok := result.(*evaluator.Error); ok {
		return nil, []*lerrors.LoxError{errObj.Err.WithFile(in.env.Filename)}
	}
	return result, nil
}

// scanForErrors runs a throwaway scan of the whole source so every
// lexical error is known even when parsing stops early.
func (in *Interpreter) scanForErrors(source string) []*lerrors.LoxError {
	l := lexer.NewWithFilename(source, in.env.Filename)
	l.ScanTokens()
	return l.Errors()
}

func mergeErrors(lexErrs, parseErrs []*lerrors.LoxError) []*lerrors.LoxError {
	if len(lexErrs) == 0 && len(parseErrs) == 0 {
		return nil
	}
	errs := make([]*lerrors.LoxError, 0, len(lexErrs)+len(parseErrs))
	errs = append(errs, lexErrs...)
	errs = append(errs, parseErrs...)
	lerrors.SortByLine(errs)
	return errs
}
