package lexer

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	lerrors "github.com/sambeau/golox/pkg/lox/errors"
)

// TokenType represents different types of tokens
type TokenType int

const (
	// Single-character tokens
	LEFT_PAREN TokenType = iota
	RIGHT_PAREN
	LEFT_BRACE
	RIGHT_BRACE
	COMMA
	DOT
	MINUS
	PLUS
	SEMICOLON
	SLASH
	STAR

	// One or two character tokens
	BANG
	BANG_EQUAL
	EQUAL
	EQUAL_EQUAL
	GREATER
	GREATER_EQUAL
	LESS
	LESS_EQUAL

	// Literals
	IDENTIFIER
	STRING
	NUMBER

	// Keywords
	AND
	CLASS
	ELSE
	FALSE
	FUN
	FOR
	IF
	NIL
	OR
	PRINT
	RETURN
	SUPER
	THIS
	TRUE
	VAR
	WHILE

	EOF
)

// Token represents a single token. Literal holds the decoded value for
// STRING (string) and NUMBER (float64) tokens and is nil for everything
// else.
type Token struct {
	Type    TokenType
	Lexeme  string
	Literal any
	Line    int
	Column  int
}

// String returns a string representation of the token
func (t Token) String() string {
	return fmt.Sprintf("{Type: %s, Lexeme: %s, Line: %d, Column: %d}",
		t.Type.String(), t.Lexeme, t.Line, t.Column)
}

// String returns a string representation of the token type
func (tt TokenType) String() string {
	switch tt {
	case LEFT_PAREN:
		return "LEFT_PAREN"
	case RIGHT_PAREN:
		return "RIGHT_PAREN"
	case LEFT_BRACE:
		return "LEFT_BRACE"
	case RIGHT_BRACE:
		return "RIGHT_BRACE"
	case COMMA:
		return "COMMA"
	case DOT:
		return "DOT"
	case MINUS:
		return "MINUS"
	case PLUS:
		return "PLUS"
	case SEMICOLON:
		return "SEMICOLON"
	case SLASH:
		return "SLASH"
	case STAR:
		return "STAR"
	case BANG:
		return "BANG"
	case BANG_EQUAL:
		return "BANG_EQUAL"
	case EQUAL:
		return "EQUAL"
	case EQUAL_EQUAL:
		return "EQUAL_EQUAL"
	case GREATER:
		return "GREATER"
	case GREATER_EQUAL:
		return "GREATER_EQUAL"
	case LESS:
		return "LESS"
	case LESS_EQUAL:
		return "LESS_EQUAL"
	case IDENTIFIER:
		return "IDENTIFIER"
	case STRING:
		return "STRING"
	case NUMBER:
		return "NUMBER"
	case AND:
		return "AND"
	case CLASS:
		return "CLASS"
	case ELSE:
		return "ELSE"
	case FALSE:
		return "FALSE"
	case FUN:
		return "FUN"
	case FOR:
		return "FOR"
	case IF:
		return "IF"
	case NIL:
		return "NIL"
	case OR:
		return "OR"
	case PRINT:
		return "PRINT"
	case RETURN:
		return "RETURN"
	case SUPER:
		return "SUPER"
	case THIS:
		return "THIS"
	case TRUE:
		return "TRUE"
	case VAR:
		return "VAR"
	case WHILE:
		return "WHILE"
	case EOF:
		return "EOF"
	default:
		return "UNKNOWN"
	}
}

// Keywords map for identifying language keywords
var keywords = map[string]TokenType{
	"and":    AND,
	"class":  CLASS,
	"else":   ELSE,
	"false":  FALSE,
	"fun":    FUN,
	"for":    FOR,
	"if":     IF,
	"nil":    NIL,
	"or":     OR,
	"print":  PRINT,
	"return": RETURN,
	"super":  SUPER,
	"this":   THIS,
	"true":   TRUE,
	"var":    VAR,
	"while":  WHILE,
}

// LookupIdent checks if an identifier is a keyword
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENTIFIER
}

// Lexer represents the lexical analyzer. Invalid input never aborts a
// scan: each problem is recorded on the error list and scanning resumes
// at the next character.
type Lexer struct {
	filename     string
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination (first byte)
	chRune       rune // current character as a rune (for error reporting)
	chSize       int  // byte size of current character (1 for ASCII, 1-4 for UTF-8)
	line         int  // current line number
	column       int  // current column number
	errors       []*lerrors.LoxError
}

// New creates a new lexer instance
func New(input string) *Lexer {
	l := &Lexer{
		filename: "<input>",
		input:    input,
		line:     1,
		column:   0,
	}
	l.readChar()
	return l
}

// NewWithFilename creates a new lexer instance with a specific filename
func NewWithFilename(input string, filename string) *Lexer {
	l := &Lexer{
		filename: filename,
		input:    input,
		line:     1,
		column:   0,
	}
	l.readChar()
	return l
}

// Errors returns the lexical errors collected so far, in source order.
func (l *Lexer) Errors() []*lerrors.LoxError {
	return l.errors
}

// addError records a lexical error at the given line.
func (l *Lexer) addError(line int, format string, a ...any) {
	err := lerrors.NewLexical(line, format, a...)
	err.File = l.filename
	l.errors = append(l.errors, err)
}

// readChar reads the next character and advances position.
// Uses a hybrid approach: ASCII fast-path for single-byte characters,
// UTF-8 decoding for multi-byte characters (so stray Unicode input is
// reported as one character, not one error per byte).
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0 // ASCII NUL character represents EOF
		l.chRune = 0
		l.chSize = 0
		l.position = l.readPosition
		return
	}

	b := l.input[l.readPosition]

	// ASCII fast-path: single-byte characters (most common case)
	if b < utf8.RuneSelf {
		l.ch = b
		l.chRune = rune(b)
		l.chSize = 1
		l.position = l.readPosition
		l.readPosition++

		if l.ch == '\n' {
			l.line++
			l.column = 0
		} else {
			l.column++
		}
		return
	}

	// Non-ASCII: decode the full UTF-8 rune
	r, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = b
	l.chRune = r
	l.chSize = size
	l.position = l.readPosition
	l.readPosition += size

	l.column++
}

// peekChar returns the next character without advancing position
func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// ScanTokens scans the entire input eagerly and returns the complete
// token list, ending with the EOF token. Lexical errors accumulate on
// the lexer and are available through Errors.
func (l *Lexer) ScanTokens() []Token {
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			break
		}
	}
	return tokens
}

// NextToken scans the input and returns the next token
func (l *Lexer) NextToken() Token {
	var tok Token

	l.skipWhitespace()

	switch l.ch {
	case '(':
		tok = newToken(LEFT_PAREN, l.ch, l.line, l.column)
	case ')':
		tok = newToken(RIGHT_PAREN, l.ch, l.line, l.column)
	case '{':
		tok = newToken(LEFT_BRACE, l.ch, l.line, l.column)
	case '}':
		tok = newToken(RIGHT_BRACE, l.ch, l.line, l.column)
	case ',':
		tok = newToken(COMMA, l.ch, l.line, l.column)
	case '.':
		tok = newToken(DOT, l.ch, l.line, l.column)
	case '-':
		tok = newToken(MINUS, l.ch, l.line, l.column)
	case '+':
		tok = newToken(PLUS, l.ch, l.line, l.column)
	case ';':
		tok = newToken(SEMICOLON, l.ch, l.line, l.column)
	case '*':
		tok = newToken(STAR, l.ch, l.line, l.column)
	case '/':
		if l.peekChar() == '/' {
			l.skipLineComment()
			return l.NextToken()
		}
		tok = newToken(SLASH, l.ch, l.line, l.column)
	case '!':
		if l.peekChar() == '=' {
			ch := l.ch
			line := l.line
			col := l.column
			l.readChar()
			tok = Token{Type: BANG_EQUAL, Lexeme: string(ch) + string(l.ch), Line: line, Column: col}
		} else {
			tok = newToken(BANG, l.ch, l.line, l.column)
		}
	case '=':
		if l.peekChar() == '=' {
			ch := l.ch
			line := l.line
			col := l.column
			l.readChar()
			tok = Token{Type: EQUAL_EQUAL, Lexeme: string(ch) + string(l.ch), Line: line, Column: col}
		} else {
			tok = newToken(EQUAL, l.ch, l.line, l.column)
		}
	case '<':
		if l.peekChar() == '=' {
			ch := l.ch
			line := l.line
			col := l.column
			l.readChar()
			tok = Token{Type: LESS_EQUAL, Lexeme: string(ch) + string(l.ch), Line: line, Column: col}
		} else {
			tok = newToken(LESS, l.ch, l.line, l.column)
		}
	case '>':
		if l.peekChar() == '=' {
			ch := l.ch
			line := l.line
			col := l.column
			l.readChar()
			tok = Token{Type: GREATER_EQUAL, Lexeme: string(ch) + string(l.ch), Line: line, Column: col}
		} else {
			tok = newToken(GREATER, l.ch, l.line, l.column)
		}
	case '"':
		line := l.line
		column := l.column
		lexeme, value, terminated := l.readString()
		if !terminated {
			l.addError(l.line, "Unterminated string.")
			return l.NextToken()
		}
		tok = Token{Type: STRING, Lexeme: lexeme, Literal: value, Line: line, Column: column}
	case 0:
		tok.Lexeme = ""
		tok.Type = EOF
		tok.Line = l.line
		tok.Column = l.column
	default:
		if isLetter(l.ch) {
			line := l.line
			column := l.column
			tok.Lexeme = l.readIdentifier()
			tok.Type = LookupIdent(tok.Lexeme)
			tok.Line = line
			tok.Column = column
			return tok // early return to avoid readChar()
		} else if isDigit(l.ch) {
			line := l.line
			column := l.column
			tok.Lexeme = l.readNumber()
			tok.Type = NUMBER
			tok.Literal, _ = strconv.ParseFloat(tok.Lexeme, 64)
			tok.Line = line
			tok.Column = column
			return tok // early return to avoid readChar()
		}
		l.addError(l.line, "Unexpected character: %c", l.chRune)
		l.readChar()
		return l.NextToken()
	}

	l.readChar()
	return tok
}

// newToken creates a new token with the given parameters
func newToken(tokenType TokenType, ch byte, line, column int) Token {
	return Token{Type: tokenType, Lexeme: string(ch), Line: line, Column: column}
}

// skipWhitespace advances past spaces, tabs, and newlines. Line counting
// happens in readChar.
func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

// skipLineComment consumes a // comment up to (not including) the newline
func (l *Lexer) skipLineComment() {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
}

// readIdentifier reads an identifier or keyword
func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readNumber reads a number literal. A trailing '.' with no digit after
// it is left for the next token (it lexes as DOT).
func (l *Lexer) readNumber() string {
	position := l.position
	for isDigit(l.ch) {
		l.readChar()
	}

	// Check for decimal point
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar() // consume the '.'
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	return l.input[position:l.position]
}

// readString reads a string literal. Strings are raw (no escape
// sequences) and may span multiple lines. Returns the full lexeme
// including quotes, the string value, and whether the closing quote
// was found.
func (l *Lexer) readString() (string, string, bool) {
	start := l.position
	l.readChar() // skip opening quote

	for l.ch != '"' && l.ch != 0 {
		l.readChar()
	}

	if l.ch != '"' {
		return l.input[start:l.position], "", false
	}

	lexeme := l.input[start : l.position+1]
	value := l.input[start+1 : l.position]
	return lexeme, value, true
}

// isLetter checks if a character can start or continue an identifier
func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

// isDigit checks if a character is an ASCII digit
func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
