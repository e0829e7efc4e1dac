package parser

import (
	"strconv"

	"github.com/sambeau/golox/pkg/lox/ast"
	lerrors "github.com/sambeau/golox/pkg/lox/errors"
	"github.com/sambeau/golox/pkg/lox/lexer"
)

// Precedence levels for operators
const (
	_ int = iota
	LOWEST
	ASSIGNMENT  // =
	LOGIC_OR    // or
	LOGIC_AND   // and
	EQUALS      // == or !=
	LESSGREATER // > or <
	SUM         // +
	PRODUCT     // *
	PREFIX      // -X or !X
	CALL        // myFunction(X)
)

// precedences maps tokens to their precedence
var precedences = map[lexer.TokenType]int{
	lexer.EQUAL:         ASSIGNMENT,
	lexer.OR:            LOGIC_OR,
	lexer.AND:           LOGIC_AND,
	lexer.EQUAL_EQUAL:   EQUALS,
	lexer.BANG_EQUAL:    EQUALS,
	lexer.LESS:          LESSGREATER,
	lexer.LESS_EQUAL:    LESSGREATER,
	lexer.GREATER:       LESSGREATER,
	lexer.GREATER_EQUAL: LESSGREATER,
	lexer.PLUS:          SUM,
	lexer.MINUS:         SUM,
	lexer.SLASH:         PRODUCT,
	lexer.STAR:          PRODUCT,
	lexer.LEFT_PAREN:    CALL,
}

// Parser represents the parser. Errors never abort a parse: each one is
// recorded and the parser synchronizes to the next statement boundary,
// so a single pass reports every syntax error in the input.
type Parser struct {
	l *lexer.Lexer

	structuredErrors []*lerrors.LoxError

	prevToken lexer.Token
	curToken  lexer.Token
	peekToken lexer.Token

	prefixParseFns map[lexer.TokenType]prefixParseFn
	infixParseFns  map[lexer.TokenType]infixParseFn
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// New creates a new parser instance
func New(l *lexer.Lexer) *Parser {
	p := &Parser{
		l: l,
	}

	// Initialize prefix parse functions
	p.prefixParseFns = make(map[lexer.TokenType]prefixParseFn)
	p.registerPrefix(lexer.IDENTIFIER, p.parseIdentifier)
	p.registerPrefix(lexer.NUMBER, p.parseNumberLiteral)
	p.registerPrefix(lexer.STRING, p.parseStringLiteral)
	p.registerPrefix(lexer.TRUE, p.parseBoolean)
	p.registerPrefix(lexer.FALSE, p.parseBoolean)
	p.registerPrefix(lexer.NIL, p.parseNil)
	p.registerPrefix(lexer.BANG, p.parsePrefixExpression)
	p.registerPrefix(lexer.MINUS, p.parsePrefixExpression)
	p.registerPrefix(lexer.LEFT_PAREN, p.parseGroupedExpression)

	// Initialize infix parse functions
	p.infixParseFns = make(map[lexer.TokenType]infixParseFn)
	p.registerInfix(lexer.PLUS, p.parseInfixExpression)
	p.registerInfix(lexer.MINUS, p.parseInfixExpression)
	p.registerInfix(lexer.SLASH, p.parseInfixExpression)
	p.registerInfix(lexer.STAR, p.parseInfixExpression)
	p.registerInfix(lexer.EQUAL_EQUAL, p.parseInfixExpression)
	p.registerInfix(lexer.BANG_EQUAL, p.parseInfixExpression)
	p.registerInfix(lexer.LESS, p.parseInfixExpression)
	p.registerInfix(lexer.LESS_EQUAL, p.parseInfixExpression)
	p.registerInfix(lexer.GREATER, p.parseInfixExpression)
	p.registerInfix(lexer.GREATER_EQUAL, p.parseInfixExpression)
	p.registerInfix(lexer.AND, p.parseLogicalExpression)
	p.registerInfix(lexer.OR, p.parseLogicalExpression)
	p.registerInfix(lexer.EQUAL, p.parseAssignExpression)
	p.registerInfix(lexer.LEFT_PAREN, p.parseCallExpression)

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

// Errors returns parser errors as rendered strings (convenience method
// for tests). Prefer StructuredErrors() for production code.
func (p *Parser) Errors() []string {
	result := make([]string, len(p.structuredErrors))
	for i, err := range p.structuredErrors {
		result[i] = err.String()
	}
	return result
}

// StructuredErrors returns parser errors as structured LoxError objects.
func (p *Parser) StructuredErrors() []*lerrors.LoxError {
	return p.structuredErrors
}

// errorAt records a syntax error at the given token. Errors at the EOF
// token render as "at end".
func (p *Parser) errorAt(tok lexer.Token, message string) {
	var err *lerrors.LoxError
	if tok.Type == lexer.EOF {
		err = lerrors.NewSyntaxAtEnd(tok.Line, "%s", message)
	} else {
		err = lerrors.NewSyntax(tok.Line, tok.Lexeme, "%s", message)
	}
	p.structuredErrors = append(p.structuredErrors, err)
}

// registerPrefix registers a prefix parse function
func (p *Parser) registerPrefix(tokenType lexer.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

// registerInfix registers an infix parse function
func (p *Parser) registerInfix(tokenType lexer.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

// nextToken advances prevToken, curToken, and peekToken
func (p *Parser) nextToken() {
	p.prevToken = p.curToken
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

// ParseProgram parses the program and returns the AST. When the error
// list is empty afterwards, the returned tree is complete.
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}
	program.Statements = []ast.Statement{}

	for !p.curTokenIs(lexer.EOF) {
		stmt := p.parseDeclaration()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		p.nextToken()
	}

	return program
}

// ParseExpression parses the input as a single expression, the grammar
// used by the evaluate command and the REPL. Trailing tokens after the
// expression are an error.
func (p *Parser) ParseExpression() ast.Expression {
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}
	if !p.peekTokenIs(lexer.EOF) {
		p.errorAt(p.peekToken, "Expect end of expression.")
	}
	return expr
}

// parseDeclaration parses one declaration or statement and synchronizes
// on failure so parsing can continue at the next statement boundary.
// Declarations are only legal here, not as bare loop or branch bodies:
// 'if (c) var x = 1;' is a syntax error.
func (p *Parser) parseDeclaration() ast.Statement {
	var stmt ast.Statement
	switch p.curToken.Type {
	case lexer.VAR:
		stmt = p.parseVarStatement()
	case lexer.FUN:
		stmt = p.parseFunctionStatement()
	default:
		stmt = p.parseStatement()
	}
	if stmt == nil {
		p.synchronize()
	}
	return stmt
}

// synchronize discards tokens until a likely statement boundary: just
// past a semicolon, or just before a keyword that begins a statement.
func (p *Parser) synchronize() {
	for !p.curTokenIs(lexer.EOF) {
		if p.curTokenIs(lexer.SEMICOLON) {
			return
		}
		switch p.peekToken.Type {
		case lexer.CLASS, lexer.FUN, lexer.VAR, lexer.FOR,
			lexer.IF, lexer.WHILE, lexer.PRINT, lexer.RETURN:
			return
		}
		p.nextToken()
	}
}

// parseStatement parses statements
func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case lexer.PRINT:
		return p.parsePrintStatement()
	case lexer.RETURN:
		return p.parseReturnStatement()
	case lexer.IF:
		return p.parseIfStatement()
	case lexer.WHILE:
		return p.parseWhileStatement()
	case lexer.FOR:
		return p.parseForStatement()
	case lexer.LEFT_BRACE:
		return p.parseBlockStatement()
	default:
		return p.parseExpressionStatement()
	}
}

// parseVarStatement parses 'var name;' and 'var name = initializer;'
func (p *Parser) parseVarStatement() ast.Statement {
	stmt := &ast.VarStatement{Token: p.curToken}

	if !p.expectPeek(lexer.IDENTIFIER, "Expect variable name.") {
		return nil
	}

	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}

	if p.peekTokenIs(lexer.EQUAL) {
		p.nextToken() // consume '='
		p.nextToken()
		stmt.Value = p.parseExpression(LOWEST)
		if stmt.Value == nil {
			return nil
		}
	}

	if !p.expectPeek(lexer.SEMICOLON, "Expect ';' after variable declaration.") {
		return nil
	}

	return stmt
}

// parseFunctionStatement parses 'fun name(params) { body }'
func (p *Parser) parseFunctionStatement() ast.Statement {
	stmt := &ast.FunctionStatement{Token: p.curToken}

	if !p.expectPeek(lexer.IDENTIFIER, "Expect function name.") {
		return nil
	}

	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}

	if !p.expectPeek(lexer.LEFT_PAREN, "Expect '(' after function name.") {
		return nil
	}

	stmt.Parameters = p.parseFunctionParameters()
	if stmt.Parameters == nil {
		return nil
	}

	if !p.expectPeek(lexer.LEFT_BRACE, "Expect '{' before function body.") {
		return nil
	}

	body, ok := p.parseBlockStatement().(*ast.BlockStatement)
	if !ok {
		return nil
	}
	stmt.Body = body

	return stmt
}

// parseFunctionParameters parses the parameter list of a declaration,
// consuming through the closing ')'. Returns nil on error; an empty
// parameter list comes back as a non-nil empty slice.
func (p *Parser) parseFunctionParameters() []*ast.Identifier {
	identifiers := []*ast.Identifier{}

	if p.peekTokenIs(lexer.RIGHT_PAREN) {
		p.nextToken()
		return identifiers
	}

	if !p.expectPeek(lexer.IDENTIFIER, "Expect parameter name.") {
		return nil
	}
	identifiers = append(identifiers, &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme})

	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken() // consume ','
		if len(identifiers) >= 255 {
			p.errorAt(p.peekToken, "Can't have more than 255 parameters.")
		}
		if !p.expectPeek(lexer.IDENTIFIER, "Expect parameter name.") {
			return nil
		}
		identifiers = append(identifiers, &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme})
	}

	if !p.expectPeek(lexer.RIGHT_PAREN, "Expect ')' after parameters.") {
		return nil
	}

	return identifiers
}

// parsePrintStatement parses 'print EXPR;'
func (p *Parser) parsePrintStatement() ast.Statement {
	stmt := &ast.PrintStatement{Token: p.curToken}

	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}

	if !p.expectPeek(lexer.SEMICOLON, "Expect ';' after value.") {
		return nil
	}

	return stmt
}

// parseReturnStatement parses 'return;' and 'return EXPR;'
func (p *Parser) parseReturnStatement() ast.Statement {
	stmt := &ast.ReturnStatement{Token: p.curToken}

	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
		return stmt
	}

	p.nextToken()
	stmt.ReturnValue = p.parseExpression(LOWEST)
	if stmt.ReturnValue == nil {
		return nil
	}

	if !p.expectPeek(lexer.SEMICOLON, "Expect ';' after return value.") {
		return nil
	}

	return stmt
}

// parseIfStatement parses 'if (COND) THEN' with an optional else branch.
// The else binds to the nearest if.
func (p *Parser) parseIfStatement() ast.Statement {
	stmt := &ast.IfStatement{Token: p.curToken}

	if !p.expectPeek(lexer.LEFT_PAREN, "Expect '(' after 'if'.") {
		return nil
	}

	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if stmt.Condition == nil {
		return nil
	}

	if !p.expectPeek(lexer.RIGHT_PAREN, "Expect ')' after 'if'.") {
		return nil
	}

	p.nextToken()
	stmt.Then = p.parseStatement()
	if stmt.Then == nil {
		return nil
	}

	if p.peekTokenIs(lexer.ELSE) {
		p.nextToken() // consume 'else'
		p.nextToken()
		stmt.Else = p.parseStatement()
		if stmt.Else == nil {
			return nil
		}
	}

	return stmt
}

// parseWhileStatement parses 'while (COND) BODY'
func (p *Parser) parseWhileStatement() ast.Statement {
	stmt := &ast.WhileStatement{Token: p.curToken}

	if !p.expectPeek(lexer.LEFT_PAREN, "Expect '(' after 'if'.") {
		return nil
	}

	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if stmt.Condition == nil {
		return nil
	}

	if !p.expectPeek(lexer.RIGHT_PAREN, "Expect ')' after 'if'.") {
		return nil
	}

	p.nextToken()
	stmt.Body = p.parseStatement()
	if stmt.Body == nil {
		return nil
	}

	return stmt
}

// parseForStatement parses 'for (INIT; COND; INCR) BODY' and desugars it
// into while form: { INIT; while (COND) { BODY; INCR; } }. The evaluator
// never sees a for node.
func (p *Parser) parseForStatement() ast.Statement {
	forToken := p.curToken

	if !p.expectPeek(lexer.LEFT_PAREN, "Expect '(' after 'for'.") {
		return nil
	}

	// Initializer: empty, a var declaration, or an expression statement.
	var init ast.Statement
	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken() // consume ';'
	} else if p.peekTokenIs(lexer.VAR) {
		p.nextToken()
		init = p.parseVarStatement()
		if init == nil {
			return nil
		}
	} else {
		p.nextToken()
		init = p.parseExpressionStatement()
		if init == nil {
			return nil
		}
	}

	// Condition: empty means the loop runs forever.
	var cond ast.Expression
	if !p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
		cond = p.parseExpression(LOWEST)
		if cond == nil {
			return nil
		}
	}
	if !p.expectPeek(lexer.SEMICOLON, "Expect ';' after loop condition.") {
		return nil
	}

	// Increment: runs after the body on every iteration.
	var incr ast.Expression
	if !p.peekTokenIs(lexer.RIGHT_PAREN) {
		p.nextToken()
		incr = p.parseExpression(LOWEST)
		if incr == nil {
			return nil
		}
	}
	if !p.expectPeek(lexer.RIGHT_PAREN, "Expect ')' after the clauses.") {
		return nil
	}

	p.nextToken()
	body := p.parseStatement()
	if body == nil {
		return nil
	}

	if incr != nil {
		body = &ast.BlockStatement{
			Token: forToken,
			Statements: []ast.Statement{
				body,
				&ast.ExpressionStatement{Token: forToken, Expression: incr},
			},
		}
	}

	if cond == nil {
		cond = &ast.BooleanLiteral{
			Token: lexer.Token{Type: lexer.TRUE, Lexeme: "true", Line: forToken.Line},
			Value: true,
		}
	}

	var loop ast.Statement = &ast.WhileStatement{Token: forToken, Condition: cond, Body: body}

	if init != nil {
		loop = &ast.BlockStatement{
			Token:      forToken,
			Statements: []ast.Statement{init, loop},
		}
	}

	return loop
}

// parseBlockStatement parses '{ ... }'. Each failed statement inside the
// block synchronizes locally, so one bad line doesn't hide the rest of
// the block's errors.
func (p *Parser) parseBlockStatement() ast.Statement {
	block := &ast.BlockStatement{Token: p.curToken}
	block.Statements = []ast.Statement{}

	p.nextToken()

	for !p.curTokenIs(lexer.RIGHT_BRACE) && !p.curTokenIs(lexer.EOF) {
		stmt := p.parseDeclaration()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		p.nextToken()
	}

	if !p.curTokenIs(lexer.RIGHT_BRACE) {
		p.errorAt(p.curToken, "Expect '}' after block.")
		return nil
	}

	return block
}

// parseExpressionStatement parses an expression followed by ';'
func (p *Parser) parseExpressionStatement() ast.Statement {
	stmt := &ast.ExpressionStatement{Token: p.curToken}

	stmt.Expression = p.parseExpression(LOWEST)
	if stmt.Expression == nil {
		return nil
	}

	if !p.expectPeek(lexer.SEMICOLON, "Expect ';' after expression.") {
		return nil
	}

	return stmt
}

// parseExpression parses expressions using Pratt parsing
func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.errorAt(p.curToken, "Expect expression.")
		return nil
	}

	leftExp := prefix()
	if leftExp == nil {
		return nil
	}

	for !p.peekTokenIs(lexer.SEMICOLON) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}

		p.nextToken()

		leftExp = infix(leftExp)
		if leftExp == nil {
			return nil
		}
	}

	return leftExp
}

func (p *Parser) parseIdentifier() ast.Expression {
	return &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
}

func (p *Parser) parseNumberLiteral() ast.Expression {
	lit := &ast.NumberLiteral{Token: p.curToken}

	if value, ok := p.curToken.Literal.(float64); ok {
		lit.Value = value
		return lit
	}

	value, err := strconv.ParseFloat(p.curToken.Lexeme, 64)
	if err != nil {
		p.errorAt(p.curToken, "Invalid number literal.")
		return nil
	}

	lit.Value = value
	return lit
}

func (p *Parser) parseStringLiteral() ast.Expression {
	value, _ := p.curToken.Literal.(string)
	return &ast.StringLiteral{Token: p.curToken, Value: value}
}

func (p *Parser) parseBoolean() ast.Expression {
	return &ast.BooleanLiteral{Token: p.curToken, Value: p.curTokenIs(lexer.TRUE)}
}

func (p *Parser) parseNil() ast.Expression {
	return &ast.NilLiteral{Token: p.curToken}
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	expression := &ast.PrefixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Lexeme,
	}

	p.nextToken()

	expression.Right = p.parseExpression(PREFIX)
	if expression.Right == nil {
		return nil
	}

	return expression
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expression := &ast.InfixExpression{
		Token:    p.curToken,
		Left:     left,
		Operator: p.curToken.Lexeme,
	}

	precedence := p.curPrecedence()
	p.nextToken()
	expression.Right = p.parseExpression(precedence)
	if expression.Right == nil {
		return nil
	}

	return expression
}

// parseLogicalExpression parses 'and'/'or'. These get their own node
// so evaluation can short-circuit the right operand.
func (p *Parser) parseLogicalExpression(left ast.Expression) ast.Expression {
	expression := &ast.LogicalExpression{
		Token:    p.curToken,
		Left:     left,
		Operator: p.curToken.Lexeme,
	}

	precedence := p.curPrecedence()
	p.nextToken()
	expression.Right = p.parseExpression(precedence)
	if expression.Right == nil {
		return nil
	}

	return expression
}

// parseAssignExpression parses 'target = value'. Assignment is
// right-associative and the target must be a plain variable.
func (p *Parser) parseAssignExpression(left ast.Expression) ast.Expression {
	equals := p.curToken

	p.nextToken()
	value := p.parseExpression(ASSIGNMENT - 1)
	if value == nil {
		return nil
	}

	name, ok := left.(*ast.Identifier)
	if !ok {
		p.errorAt(equals, "Invalid assignment target.")
		return nil
	}

	return &ast.AssignExpression{Token: equals, Name: name, Value: value}
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	openParen := p.curToken

	p.nextToken()
	exp := p.parseExpression(LOWEST)
	if exp == nil {
		return nil
	}

	if !p.expectPeek(lexer.RIGHT_PAREN, "Expect ')' after expression.") {
		return nil
	}

	return &ast.GroupingExpression{Token: openParen, Expression: exp}
}

// parseCallExpression parses 'callee(args)'. Whether the callee is
// actually callable is a runtime question, not a parse one.
func (p *Parser) parseCallExpression(fn ast.Expression) ast.Expression {
	exp := &ast.CallExpression{Token: p.curToken, Callee: fn}
	exp.Arguments = p.parseCallArguments()
	if exp.Arguments == nil {
		return nil
	}
	return exp
}

// parseCallArguments parses the argument list, consuming through the
// closing ')'. Returns nil on error; no arguments comes back as a
// non-nil empty slice.
func (p *Parser) parseCallArguments() []ast.Expression {
	args := []ast.Expression{}

	if p.peekTokenIs(lexer.RIGHT_PAREN) {
		p.nextToken()
		return args
	}

	p.nextToken()
	arg := p.parseExpression(LOWEST)
	if arg == nil {
		return nil
	}
	args = append(args, arg)

	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken() // consume ','
		if len(args) >= 255 {
			p.errorAt(p.peekToken, "Can't have more than 255 arguments.")
		}
		p.nextToken()
		arg := p.parseExpression(LOWEST)
		if arg == nil {
			return nil
		}
		args = append(args, arg)
	}

	if !p.expectPeek(lexer.RIGHT_PAREN, "Expect ')' after arguments.") {
		return nil
	}

	return args
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t lexer.TokenType) bool {
	return p.peekToken.Type == t
}

// expectPeek advances when the next token matches, otherwise records a
// syntax error at the offending token.
func (p *Parser) expectPeek(t lexer.TokenType, message string) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.errorAt(p.peekToken, message)
	return false
}

// peekPrecedence returns the precedence of the next token
func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

// curPrecedence returns the precedence of the current token
func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return LOWEST
}
