package ast

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/sambeau/golox/pkg/lox/lexer"
)

// Node represents any node in the AST
type Node interface {
	TokenLiteral() string
	String() string
}

// Statement represents statement nodes
type Statement interface {
	Node
	statementNode()
}

// Expression represents expression nodes
type Expression interface {
	Node
	expressionNode()
}

// Program represents the root node of every AST
type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) String() string {
	var out bytes.Buffer

	for _, s := range p.Statements {
		out.WriteString(s.String())
	}

	return out.String()
}

// VarStatement represents declarations like 'var x = 5;'. Value is nil
// for 'var x;', which initializes the variable to nil.
type VarStatement struct {
	Token lexer.Token // the lexer.VAR token
	Name  *Identifier
	Value Expression
}

func (vs *VarStatement) statementNode()       {}
func (vs *VarStatement) TokenLiteral() string { return vs.Token.Lexeme }
func (vs *VarStatement) String() string {
	var out bytes.Buffer

	out.WriteString(vs.TokenLiteral() + " ")
	out.WriteString(vs.Name.String())

	if vs.Value != nil {
		out.WriteString(" = ")
		out.WriteString(vs.Value.String())
	}

	out.WriteString(";")
	return out.String()
}

// PrintStatement represents 'print EXPR;'
type PrintStatement struct {
	Token lexer.Token // the 'print' token
	Value Expression
}

func (ps *PrintStatement) statementNode()       {}
func (ps *PrintStatement) TokenLiteral() string { return ps.Token.Lexeme }
func (ps *PrintStatement) String() string {
	return "print " + ps.Value.String() + ";"
}

// ReturnStatement represents return statements like 'return 5;'.
// ReturnValue is nil for a bare 'return;'.
type ReturnStatement struct {
	Token       lexer.Token // the 'return' token
	ReturnValue Expression
}

func (rs *ReturnStatement) statementNode()       {}
func (rs *ReturnStatement) TokenLiteral() string { return rs.Token.Lexeme }
func (rs *ReturnStatement) String() string {
	var out bytes.Buffer

	out.WriteString(rs.TokenLiteral())

	if rs.ReturnValue != nil {
		out.WriteString(" ")
		out.WriteString(rs.ReturnValue.String())
	}

	out.WriteString(";")
	return out.String()
}

// ExpressionStatement represents expression statements
type ExpressionStatement struct {
	Token      lexer.Token // the first token of the expression
	Expression Expression
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Lexeme }
func (es *ExpressionStatement) String() string {
	if es.Expression != nil {
		return es.Expression.String() + ";"
	}
	return ""
}

// BlockStatement represents block statements like '{...}'
type BlockStatement struct {
	Token      lexer.Token // the '{' token
	Statements []Statement
}

func (bs *BlockStatement) statementNode()       {}
func (bs *BlockStatement) TokenLiteral() string { return bs.Token.Lexeme }
func (bs *BlockStatement) String() string {
	var out bytes.Buffer

	out.WriteString("{ ")
	for _, s := range bs.Statements {
		out.WriteString(s.String())
	}
	out.WriteString(" }")

	return out.String()
}

// IfStatement represents 'if (COND) THEN else ELSE'. The branches are
// arbitrary statements, not necessarily blocks. Else is nil when absent.
type IfStatement struct {
	Token     lexer.Token // the 'if' token
	Condition Expression
	Then      Statement
	Else      Statement
}

func (is *IfStatement) statementNode()       {}
func (is *IfStatement) TokenLiteral() string { return is.Token.Lexeme }
func (is *IfStatement) String() string {
	var out bytes.Buffer

	out.WriteString("if (")
	out.WriteString(is.Condition.String())
	out.WriteString(") ")
	out.WriteString(is.Then.String())

	if is.Else != nil {
		out.WriteString(" else ")
		out.WriteString(is.Else.String())
	}

	return out.String()
}

// WhileStatement represents 'while (COND) BODY'. For-loops desugar to
// this in the parser, so the evaluator never sees a for node.
type WhileStatement struct {
	Token     lexer.Token // the 'while' token
	Condition Expression
	Body      Statement
}

func (ws *WhileStatement) statementNode()       {}
func (ws *WhileStatement) TokenLiteral() string { return ws.Token.Lexeme }
func (ws *WhileStatement) String() string {
	var out bytes.Buffer

	out.WriteString("while (")
	out.WriteString(ws.Condition.String())
	out.WriteString(") ")
	out.WriteString(ws.Body.String())

	return out.String()
}

// FunctionStatement represents 'fun name(params) { body }'
type FunctionStatement struct {
	Token      lexer.Token // the 'fun' token
	Name       *Identifier
	Parameters []*Identifier
	Body       *BlockStatement
}

func (fs *FunctionStatement) statementNode()       {}
func (fs *FunctionStatement) TokenLiteral() string { return fs.Token.Lexeme }
func (fs *FunctionStatement) String() string {
	var out bytes.Buffer

	params := []string{}
	for _, p := range fs.Parameters {
		params = append(params, p.String())
	}

	out.WriteString(fs.TokenLiteral() + " ")
	out.WriteString(fs.Name.String())
	out.WriteString("(")
	out.WriteString(strings.Join(params, ", "))
	out.WriteString(") ")
	out.WriteString(fs.Body.String())

	return out.String()
}

// Identifier represents identifier expressions
type Identifier struct {
	Token lexer.Token // the lexer.IDENTIFIER token
	Value string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Lexeme }
func (i *Identifier) String() string       { return i.Value }

// NumberLiteral represents number literals. All numbers are float64.
type NumberLiteral struct {
	Token lexer.Token
	Value float64
}

func (nl *NumberLiteral) expressionNode()      {}
func (nl *NumberLiteral) TokenLiteral() string { return nl.Token.Lexeme }
func (nl *NumberLiteral) String() string {
	return strconv.FormatFloat(nl.Value, 'f', -1, 64)
}

// StringLiteral represents string literals
type StringLiteral struct {
	Token lexer.Token
	Value string
}

func (sl *StringLiteral) expressionNode()      {}
func (sl *StringLiteral) TokenLiteral() string { return sl.Token.Lexeme }
func (sl *StringLiteral) String() string       { return sl.Value }

// BooleanLiteral represents 'true' and 'false'
type BooleanLiteral struct {
	Token lexer.Token
	Value bool
}

func (bl *BooleanLiteral) expressionNode()      {}
func (bl *BooleanLiteral) TokenLiteral() string { return bl.Token.Lexeme }
func (bl *BooleanLiteral) String() string       { return bl.Token.Lexeme }

// NilLiteral represents 'nil'
type NilLiteral struct {
	Token lexer.Token
}

func (nl *NilLiteral) expressionNode()      {}
func (nl *NilLiteral) TokenLiteral() string { return nl.Token.Lexeme }
func (nl *NilLiteral) String() string       { return "nil" }

// GroupingExpression represents a parenthesized expression. It is kept
// as its own node so the canonical printer can show the grouping.
type GroupingExpression struct {
	Token      lexer.Token // the '(' token
	Expression Expression
}

func (ge *GroupingExpression) expressionNode()      {}
func (ge *GroupingExpression) TokenLiteral() string { return ge.Token.Lexeme }
func (ge *GroupingExpression) String() string {
	return "(" + ge.Expression.String() + ")"
}

// PrefixExpression represents unary operations like '-x' and '!ok'
type PrefixExpression struct {
	Token    lexer.Token // the operator token
	Operator string
	Right    Expression
}

func (pe *PrefixExpression) expressionNode()      {}
func (pe *PrefixExpression) TokenLiteral() string { return pe.Token.Lexeme }
func (pe *PrefixExpression) String() string {
	var out bytes.Buffer

	out.WriteString("(")
	out.WriteString(pe.Operator)
	out.WriteString(pe.Right.String())
	out.WriteString(")")

	return out.String()
}

// InfixExpression represents binary operations like 'a + b'. The logical
// operators are not infix expressions; they get their own node because
// they short-circuit.
type InfixExpression struct {
	Token    lexer.Token // the operator token
	Left     Expression
	Operator string
	Right    Expression
}

func (ie *InfixExpression) expressionNode()      {}
func (ie *InfixExpression) TokenLiteral() string { return ie.Token.Lexeme }
func (ie *InfixExpression) String() string {
	var out bytes.Buffer

	out.WriteString("(")
	out.WriteString(ie.Left.String())
	out.WriteString(" " + ie.Operator + " ")
	out.WriteString(ie.Right.String())
	out.WriteString(")")

	return out.String()
}

// LogicalExpression represents 'a and b' / 'a or b'. The right operand
// is only evaluated when the left doesn't decide the result.
type LogicalExpression struct {
	Token    lexer.Token // the 'and' or 'or' token
	Left     Expression
	Operator string
	Right    Expression
}

func (le *LogicalExpression) expressionNode()      {}
func (le *LogicalExpression) TokenLiteral() string { return le.Token.Lexeme }
func (le *LogicalExpression) String() string {
	var out bytes.Buffer

	out.WriteString("(")
	out.WriteString(le.Left.String())
	out.WriteString(" " + le.Operator + " ")
	out.WriteString(le.Right.String())
	out.WriteString(")")

	return out.String()
}

// AssignExpression represents 'name = value'. Assignment is an
// expression; it evaluates to the assigned value.
type AssignExpression struct {
	Token lexer.Token // the '=' token
	Name  *Identifier
	Value Expression
}

func (ae *AssignExpression) expressionNode()      {}
func (ae *AssignExpression) TokenLiteral() string { return ae.Token.Lexeme }
func (ae *AssignExpression) String() string {
	return ae.Name.String() + " = " + ae.Value.String()
}

// CallExpression represents 'callee(args)'
type CallExpression struct {
	Token     lexer.Token // the '(' token
	Callee    Expression
	Arguments []Expression
}

func (ce *CallExpression) expressionNode()      {}
func (ce *CallExpression) TokenLiteral() string { return ce.Token.Lexeme }
func (ce *CallExpression) String() string {
	var out bytes.Buffer

	args := []string{}
	for _, a := range ce.Arguments {
		args = append(args, a.String())
	}

	out.WriteString(ce.Callee.String())
	out.WriteString("(")
	out.WriteString(strings.Join(args, ", "))
	out.WriteString(")")

	return out.String()
}
