package pox

import (
	"fmt"
)

// Keywords that begin a declaration or statement. The parser resumes at
// one of these after an error.
var synchronizeKinds = map[string]bool{
	TOKEN_CLASS:  true,
	TOKEN_FUN:    true,
	TOKEN_VAR:    true,
	TOKEN_FOR:    true,
	TOKEN_IF:     true,
	TOKEN_WHILE:  true,
	TOKEN_PRINT:  true,
	TOKEN_RETURN: true,
}

type Parser struct {
	ctx      *Context
	tokens   []Token
	position int
}

func NewParser(ctx *Context, tokens []Token) Parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Kind != TOKEN_EOF {
		location := &SourceLocation{"", 1}
		if len(tokens) != 0 {
			location = tokens[len(tokens)-1].Location
		}
		tokens = append(tokens, Token{Kind: TOKEN_EOF, Location: location})
	}
	return Parser{
		ctx:      ctx,
		tokens:   tokens,
		position: 0,
	}
}

// Parse consumes every token. On an error the parser skips to the next
// statement boundary and keeps going, so all recoverable statements and
// all errors from one pass are returned together.
func Parse(ctx *Context, tokens []Token) ([]AstStatement, []error) {
	parser := NewParser(ctx, tokens)
	return parser.ParseProgram()
}

func (self *Parser) currentToken() Token {
	return self.tokens[self.position]
}

func (self *Parser) previousToken() Token {
	return self.tokens[self.position-1]
}

func (self *Parser) isEof() bool {
	return self.currentToken().Kind == TOKEN_EOF
}

func (self *Parser) advanceToken() Token {
	current := self.currentToken()
	if !self.isEof() {
		self.position += 1
	}
	return current
}

func (self *Parser) checkCurrent(kind string) bool {
	return self.currentToken().Kind == kind
}

func (self *Parser) matchCurrent(kinds ...string) bool {
	for _, kind := range kinds {
		if self.checkCurrent(kind) {
			self.advanceToken()
			return true
		}
	}
	return false
}

func (self *Parser) error(token Token, why string) SyntaxError {
	return SyntaxError{
		Stage:    STAGE_PARSE,
		Location: token.Location,
		why:      why,
	}
}

func (self *Parser) expectCurrent(kind string, context string) (Token, error) {
	current := self.currentToken()
	if current.Kind != kind {
		return Token{}, self.error(
			current,
			fmt.Sprintf("expected %s %s, found %s", quote(kind), context, quote(current.String())),
		)
	}
	return self.advanceToken(), nil
}

func (self *Parser) synchronize() {
	self.advanceToken()
	for !self.isEof() {
		if self.previousToken().Kind == TOKEN_SEMICOLON {
			return
		}
		if synchronizeKinds[self.currentToken().Kind] {
			return
		}
		self.advanceToken()
	}
}

func (self *Parser) ParseProgram() ([]AstStatement, []error) {
	statements := []AstStatement{}
	errs := []error{}
	for !self.isEof() {
		statement, err := self.ParseDeclaration()
		if err != nil {
			errs = append(errs, err)
			self.synchronize()
			continue
		}
		statements = append(statements, statement)
	}
	return statements, errs
}

func (self *Parser) ParseDeclaration() (AstStatement, error) {
	if self.matchCurrent(TOKEN_CLASS) {
		return self.parseClassDeclaration()
	}
	if self.matchCurrent(TOKEN_FUN) {
		return self.parseFunction("function")
	}
	if self.matchCurrent(TOKEN_VAR) {
		return self.parseVariableDeclaration()
	}
	return self.ParseStatement()
}

func (self *Parser) parseClassDeclaration() (AstStatement, error) {
	name, err := self.expectCurrent(TOKEN_IDENTIFIER, "for class name")
	if err != nil {
		return nil, err
	}

	var superclass *AstExpressionVariable
	if self.matchCurrent(TOKEN_LESS) {
		superName, err := self.expectCurrent(TOKEN_IDENTIFIER, "for superclass name")
		if err != nil {
			return nil, err
		}
		superclass = &AstExpressionVariable{superName}
	}

	if _, err := self.expectCurrent(TOKEN_LEFT_BRACE, "before class body"); err != nil {
		return nil, err
	}
	methods := []*AstStatementFunction{}
	for !self.checkCurrent(TOKEN_RIGHT_BRACE) && !self.isEof() {
		method, err := self.parseFunction("method")
		if err != nil {
			return nil, err
		}
		methods = append(methods, method)
	}
	if _, err := self.expectCurrent(TOKEN_RIGHT_BRACE, "after class body"); err != nil {
		return nil, err
	}

	return &AstStatementClass{name, superclass, methods}, nil
}

func (self *Parser) parseFunction(kind string) (*AstStatementFunction, error) {
	name, err := self.expectCurrent(TOKEN_IDENTIFIER, "for "+kind+" name")
	if err != nil {
		return nil, err
	}
	if _, err := self.expectCurrent(TOKEN_LEFT_PAREN, "after "+kind+" name"); err != nil {
		return nil, err
	}

	parameters := []Token{}
	if !self.checkCurrent(TOKEN_RIGHT_PAREN) {
		for {
			parameter, err := self.expectCurrent(TOKEN_IDENTIFIER, "for parameter name")
			if err != nil {
				return nil, err
			}
			parameters = append(parameters, parameter)
			if !self.matchCurrent(TOKEN_COMMA) {
				break
			}
		}
	}
	if _, err := self.expectCurrent(TOKEN_RIGHT_PAREN, "after parameters"); err != nil {
		return nil, err
	}

	if _, err := self.expectCurrent(TOKEN_LEFT_BRACE, "before "+kind+" body"); err != nil {
		return nil, err
	}
	body, err := self.parseBlockStatements()
	if err != nil {
		return nil, err
	}

	return &AstStatementFunction{name, parameters, body}, nil
}

func (self *Parser) parseVariableDeclaration() (AstStatement, error) {
	name, err := self.expectCurrent(TOKEN_IDENTIFIER, "for variable name")
	if err != nil {
		return nil, err
	}

	var initializer AstExpression
	if self.matchCurrent(TOKEN_EQUAL) {
		initializer, err = self.ParseExpression()
		if err != nil {
			return nil, err
		}
	}

	if _, err := self.expectCurrent(TOKEN_SEMICOLON, "after variable declaration"); err != nil {
		return nil, err
	}
	return &AstStatementVariable{name, initializer}, nil
}

func (self *Parser) ParseStatement() (AstStatement, error) {
	current := self.currentToken()
	switch current.Kind {
	case TOKEN_FOR:
		self.advanceToken()
		return self.parseForStatement(current)
	case TOKEN_IF:
		self.advanceToken()
		return self.parseIfStatement(current)
	case TOKEN_PRINT:
		self.advanceToken()
		return self.parsePrintStatement(current)
	case TOKEN_RETURN:
		self.advanceToken()
		return self.parseReturnStatement(current)
	case TOKEN_WHILE:
		self.advanceToken()
		return self.parseWhileStatement(current)
	case TOKEN_LEFT_BRACE:
		self.advanceToken()
		statements, err := self.parseBlockStatements()
		if err != nil {
			return nil, err
		}
		return &AstStatementBlock{current.Location, statements}, nil
	}
	return self.parseExpressionStatement()
}

// Expects the opening brace to have been consumed already.
func (self *Parser) parseBlockStatements() ([]AstStatement, error) {
	statements := []AstStatement{}
	for !self.checkCurrent(TOKEN_RIGHT_BRACE) && !self.isEof() {
		statement, err := self.ParseDeclaration()
		if err != nil {
			return nil, err
		}
		statements = append(statements, statement)
	}
	if _, err := self.expectCurrent(TOKEN_RIGHT_BRACE, "after block"); err != nil {
		return nil, err
	}
	return statements, nil
}

// A for loop is desugared into
//
//	{ initializer; while (condition) { body; increment; } }
func (self *Parser) parseForStatement(keyword Token) (AstStatement, error) {
	if _, err := self.expectCurrent(TOKEN_LEFT_PAREN, "after for"); err != nil {
		return nil, err
	}

	var initializer AstStatement
	var err error
	if self.matchCurrent(TOKEN_SEMICOLON) {
		initializer = nil
	} else if self.matchCurrent(TOKEN_VAR) {
		initializer, err = self.parseVariableDeclaration()
	} else {
		initializer, err = self.parseExpressionStatement()
	}
	if err != nil {
		return nil, err
	}

	var condition AstExpression = &AstExpressionLiteral{keyword.Location, self.ctx.NewBoolean(true)}
	if !self.checkCurrent(TOKEN_SEMICOLON) {
		condition, err = self.ParseExpression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := self.expectCurrent(TOKEN_SEMICOLON, "after loop condition"); err != nil {
		return nil, err
	}

	var increment AstExpression
	if !self.checkCurrent(TOKEN_RIGHT_PAREN) {
		increment, err = self.ParseExpression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := self.expectCurrent(TOKEN_RIGHT_PAREN, "after for clauses"); err != nil {
		return nil, err
	}

	body, err := self.ParseStatement()
	if err != nil {
		return nil, err
	}

	loopBody := []AstStatement{body}
	if increment != nil {
		loopBody = append(loopBody, &AstStatementExpression{increment.ExpressionLocation(), increment})
	}
	loop := &AstStatementWhile{
		Keyword:   keyword,
		Condition: condition,
		Body:      &AstStatementBlock{keyword.Location, loopBody},
	}

	outer := []AstStatement{}
	if initializer != nil {
		outer = append(outer, initializer)
	}
	outer = append(outer, loop)
	return &AstStatementBlock{keyword.Location, outer}, nil
}

func (self *Parser) parseIfStatement(keyword Token) (AstStatement, error) {
	if _, err := self.expectCurrent(TOKEN_LEFT_PAREN, "after if"); err != nil {
		return nil, err
	}
	condition, err := self.ParseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := self.expectCurrent(TOKEN_RIGHT_PAREN, "after if condition"); err != nil {
		return nil, err
	}

	then, err := self.ParseStatement()
	if err != nil {
		return nil, err
	}
	var otherwise AstStatement
	if self.matchCurrent(TOKEN_ELSE) {
		otherwise, err = self.ParseStatement()
		if err != nil {
			return nil, err
		}
	}

	return &AstStatementIf{keyword, condition, then, otherwise}, nil
}

func (self *Parser) parsePrintStatement(keyword Token) (AstStatement, error) {
	expression, err := self.ParseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := self.expectCurrent(TOKEN_SEMICOLON, "after value"); err != nil {
		return nil, err
	}
	return &AstStatementPrint{keyword, expression}, nil
}

func (self *Parser) parseReturnStatement(keyword Token) (AstStatement, error) {
	var value AstExpression
	if !self.checkCurrent(TOKEN_SEMICOLON) {
		var err error
		value, err = self.ParseExpression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := self.expectCurrent(TOKEN_SEMICOLON, "after return value"); err != nil {
		return nil, err
	}
	return &AstStatementReturn{keyword, value}, nil
}

func (self *Parser) parseWhileStatement(keyword Token) (AstStatement, error) {
	if _, err := self.expectCurrent(TOKEN_LEFT_PAREN, "after while"); err != nil {
		return nil, err
	}
	condition, err := self.ParseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := self.expectCurrent(TOKEN_RIGHT_PAREN, "after while condition"); err != nil {
		return nil, err
	}
	body, err := self.ParseStatement()
	if err != nil {
		return nil, err
	}
	return &AstStatementWhile{keyword, condition, body}, nil
}

func (self *Parser) parseExpressionStatement() (AstStatement, error) {
	location := self.currentToken().Location
	expression, err := self.ParseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := self.expectCurrent(TOKEN_SEMICOLON, "after expression"); err != nil {
		return nil, err
	}
	return &AstStatementExpression{location, expression}, nil
}

func (self *Parser) ParseExpression() (AstExpression, error) {
	return self.parseAssignment()
}

// Assignment is right-associative.
func (self *Parser) parseAssignment() (AstExpression, error) {
	expression, err := self.parseOr()
	if err != nil {
		return nil, err
	}

	if !self.checkCurrent(TOKEN_EQUAL) {
		return expression, nil
	}
	equals := self.advanceToken()
	value, err := self.parseAssignment()
	if err != nil {
		return nil, err
	}

	switch target := expression.(type) {
	case *AstExpressionVariable:
		return &AstExpressionAssign{target.Name, value}, nil
	case *AstExpressionGet:
		return &AstExpressionSet{target.Object, target.Name, value}, nil
	}
	return nil, self.error(equals, "invalid assignment target")
}

func (self *Parser) parseOr() (AstExpression, error) {
	expression, err := self.parseAnd()
	if err != nil {
		return nil, err
	}
	for self.checkCurrent(TOKEN_OR) {
		operator := self.advanceToken()
		right, err := self.parseAnd()
		if err != nil {
			return nil, err
		}
		expression = &AstExpressionLogical{expression, operator, right}
	}
	return expression, nil
}

func (self *Parser) parseAnd() (AstExpression, error) {
	expression, err := self.parseEquality()
	if err != nil {
		return nil, err
	}
	for self.checkCurrent(TOKEN_AND) {
		operator := self.advanceToken()
		right, err := self.parseEquality()
		if err != nil {
			return nil, err
		}
		expression = &AstExpressionLogical{expression, operator, right}
	}
	return expression, nil
}

// Parses a left-associative chain of binary operators of one precedence.
func (self *Parser) parseBinary(next func() (AstExpression, error), kinds ...string) (AstExpression, error) {
	expression, err := next()
	if err != nil {
		return nil, err
	}
	for {
		matched := false
		for _, kind := range kinds {
			if self.checkCurrent(kind) {
				matched = true
				break
			}
		}
		if !matched {
			return expression, nil
		}
		operator := self.advanceToken()
		right, err := next()
		if err != nil {
			return nil, err
		}
		expression = &AstExpressionBinary{expression, operator, right}
	}
}

func (self *Parser) parseEquality() (AstExpression, error) {
	return self.parseBinary(self.parseComparison, TOKEN_BANG_EQUAL, TOKEN_EQUAL_EQUAL)
}

func (self *Parser) parseComparison() (AstExpression, error) {
	return self.parseBinary(self.parseTerm, TOKEN_GREATER, TOKEN_GREATER_EQUAL, TOKEN_LESS, TOKEN_LESS_EQUAL)
}

func (self *Parser) parseTerm() (AstExpression, error) {
	return self.parseBinary(self.parseFactor, TOKEN_MINUS, TOKEN_PLUS)
}

func (self *Parser) parseFactor() (AstExpression, error) {
	return self.parseBinary(self.parseUnary, TOKEN_SLASH, TOKEN_STAR)
}

func (self *Parser) parseUnary() (AstExpression, error) {
	if self.checkCurrent(TOKEN_BANG) || self.checkCurrent(TOKEN_MINUS) {
		operator := self.advanceToken()
		right, err := self.parseUnary()
		if err != nil {
			return nil, err
		}
		return &AstExpressionUnary{operator, right}, nil
	}
	return self.parseCall()
}

func (self *Parser) parseCall() (AstExpression, error) {
	expression, err := self.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		if self.matchCurrent(TOKEN_LEFT_PAREN) {
			expression, err = self.finishCall(expression)
			if err != nil {
				return nil, err
			}
			continue
		}
		if self.matchCurrent(TOKEN_DOT) {
			name, err := self.expectCurrent(TOKEN_IDENTIFIER, "for property name after "+quote(TOKEN_DOT))
			if err != nil {
				return nil, err
			}
			expression = &AstExpressionGet{expression, name}
			continue
		}
		return expression, nil
	}
}

func (self *Parser) finishCall(callee AstExpression) (AstExpression, error) {
	arguments := []AstExpression{}
	if !self.checkCurrent(TOKEN_RIGHT_PAREN) {
		for {
			argument, err := self.ParseExpression()
			if err != nil {
				return nil, err
			}
			arguments = append(arguments, argument)
			if !self.matchCurrent(TOKEN_COMMA) {
				break
			}
		}
	}
	paren, err := self.expectCurrent(TOKEN_RIGHT_PAREN, "after arguments")
	if err != nil {
		return nil, err
	}
	return &AstExpressionCall{callee, paren, arguments}, nil
}

func (self *Parser) parsePrimary() (AstExpression, error) {
	current := self.currentToken()
	switch current.Kind {
	case TOKEN_NIL:
		self.advanceToken()
		return &AstExpressionLiteral{current.Location, self.ctx.NewNull()}, nil
	case TOKEN_TRUE:
		self.advanceToken()
		return &AstExpressionLiteral{current.Location, self.ctx.NewBoolean(true)}, nil
	case TOKEN_FALSE:
		self.advanceToken()
		return &AstExpressionLiteral{current.Location, self.ctx.NewBoolean(false)}, nil
	case TOKEN_NUMBER, TOKEN_STRING:
		self.advanceToken()
		return &AstExpressionLiteral{current.Location, current.Literal}, nil
	case TOKEN_IDENTIFIER:
		self.advanceToken()
		return &AstExpressionVariable{current}, nil
	case TOKEN_THIS:
		self.advanceToken()
		return &AstExpressionThis{current}, nil
	case TOKEN_SUPER:
		self.advanceToken()
		if _, err := self.expectCurrent(TOKEN_DOT, "after "+quote(TOKEN_SUPER)); err != nil {
			return nil, err
		}
		method, err := self.expectCurrent(TOKEN_IDENTIFIER, "for superclass method name")
		if err != nil {
			return nil, err
		}
		return &AstExpressionSuper{current, method}, nil
	case TOKEN_LEFT_PAREN:
		self.advanceToken()
		expression, err := self.ParseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := self.expectCurrent(TOKEN_RIGHT_PAREN, "after expression"); err != nil {
			return nil, err
		}
		return &AstExpressionGrouping{current.Location, expression}, nil
	}

	return nil, self.error(current, fmt.Sprintf("expected expression, found %s", quote(current.String())))
}
