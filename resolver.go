package pox

import (
	"fmt"
)

const (
	FUNCTION_NONE        = "none"
	FUNCTION_FUNCTION    = "function"
	FUNCTION_METHOD      = "method"
	FUNCTION_INITIALIZER = "initializer"
)

const (
	CLASS_NONE     = "none"
	CLASS_CLASS    = "class"
	CLASS_SUBCLASS = "subclass"
)

// Resolver computes, for every local variable reference, how many scopes
// separate the reference from its declaration. Globals are left unresolved
// and are looked up by name at runtime. Each scope maps a declared name to
// whether its initializer has finished.
type Resolver struct {
	interp *Interpreter
	scopes []map[string]bool

	currentFunction string
	currentClass    string

	errors []error
}

func NewResolver(interp *Interpreter) Resolver {
	return Resolver{
		interp:          interp,
		scopes:          []map[string]bool{},
		currentFunction: FUNCTION_NONE,
		currentClass:    CLASS_NONE,
		errors:          []error{},
	}
}

// Resolve walks every statement and reports every error found. The
// program must not be interpreted if any error is returned.
func (self *Resolver) Resolve(statements []AstStatement) []error {
	for _, statement := range statements {
		self.resolveStatement(statement)
	}
	return self.errors
}

func (self *Resolver) error(token Token, format string, args ...any) {
	self.errors = append(self.errors, SyntaxError{
		Stage:    STAGE_RESOLVE,
		Location: token.Location,
		why:      fmt.Sprintf(format, args...),
	})
}

func (self *Resolver) beginScope() {
	self.scopes = append(self.scopes, map[string]bool{})
}

func (self *Resolver) endScope() {
	self.scopes = self.scopes[:len(self.scopes)-1]
}

func (self *Resolver) declare(name Token) {
	if len(self.scopes) == 0 {
		return
	}
	scope := self.scopes[len(self.scopes)-1]
	if _, ok := scope[name.Lexeme]; ok {
		self.error(name, "variable %s is already declared in this scope", quote(name.Lexeme))
	}
	scope[name.Lexeme] = false
}

func (self *Resolver) define(name Token) {
	if len(self.scopes) == 0 {
		return
	}
	self.scopes[len(self.scopes)-1][name.Lexeme] = true
}

func (self *Resolver) resolveLocal(expression AstExpression, name string) {
	for i := len(self.scopes) - 1; i >= 0; i -= 1 {
		if _, ok := self.scopes[i][name]; ok {
			self.interp.resolve(expression, len(self.scopes)-1-i)
			return
		}
	}
}

func (self *Resolver) resolveFunction(function *AstStatementFunction, kind string) {
	enclosing := self.currentFunction
	self.currentFunction = kind

	self.beginScope()
	for _, parameter := range function.Parameters {
		self.declare(parameter)
		self.define(parameter)
	}
	for _, statement := range function.Body {
		self.resolveStatement(statement)
	}
	self.endScope()

	self.currentFunction = enclosing
}

func (self *Resolver) resolveStatement(statement AstStatement) {
	switch statement := statement.(type) {
	case *AstStatementExpression:
		self.resolveExpression(statement.Expression)

	case *AstStatementPrint:
		self.resolveExpression(statement.Expression)

	case *AstStatementVariable:
		self.declare(statement.Name)
		if statement.Initializer != nil {
			self.resolveExpression(statement.Initializer)
		}
		self.define(statement.Name)

	case *AstStatementBlock:
		self.beginScope()
		for _, statement := range statement.Statements {
			self.resolveStatement(statement)
		}
		self.endScope()

	case *AstStatementIf:
		self.resolveExpression(statement.Condition)
		self.resolveStatement(statement.Then)
		if statement.Else != nil {
			self.resolveStatement(statement.Else)
		}

	case *AstStatementWhile:
		self.resolveExpression(statement.Condition)
		self.resolveStatement(statement.Body)

	case *AstStatementFunction:
		// Defined before the body so the function can recurse.
		self.declare(statement.Name)
		self.define(statement.Name)
		self.resolveFunction(statement, FUNCTION_FUNCTION)

	case *AstStatementReturn:
		if self.currentFunction == FUNCTION_NONE {
			self.error(statement.Keyword, "can't return from top-level code")
		}
		if statement.Value != nil {
			if self.currentFunction == FUNCTION_INITIALIZER {
				self.error(statement.Keyword, "can't return a value from an initializer")
			}
			self.resolveExpression(statement.Value)
		}

	case *AstStatementClass:
		self.resolveClass(statement)

	default:
		panic(fmt.Sprintf("unhandled statement %T", statement))
	}
}

func (self *Resolver) resolveClass(statement *AstStatementClass) {
	enclosing := self.currentClass
	self.currentClass = CLASS_CLASS

	self.declare(statement.Name)
	self.define(statement.Name)

	if statement.Superclass != nil {
		if statement.Superclass.Name.Lexeme == statement.Name.Lexeme {
			self.error(statement.Superclass.Name, "a class can't inherit from itself")
		}
		self.currentClass = CLASS_SUBCLASS
		self.resolveExpression(statement.Superclass)

		self.beginScope()
		self.scopes[len(self.scopes)-1][TOKEN_SUPER] = true
	}

	self.beginScope()
	self.scopes[len(self.scopes)-1][TOKEN_THIS] = true
	for _, method := range statement.Methods {
		kind := FUNCTION_METHOD
		if method.Name.Lexeme == "init" {
			kind = FUNCTION_INITIALIZER
		}
		self.resolveFunction(method, kind)
	}
	self.endScope()

	if statement.Superclass != nil {
		self.endScope()
	}

	self.currentClass = enclosing
}

func (self *Resolver) resolveExpression(expression AstExpression) {
	switch expression := expression.(type) {
	case *AstExpressionLiteral:
		// nothing to resolve

	case *AstExpressionGrouping:
		self.resolveExpression(expression.Expression)

	case *AstExpressionUnary:
		self.resolveExpression(expression.Right)

	case *AstExpressionBinary:
		self.resolveExpression(expression.Left)
		self.resolveExpression(expression.Right)

	case *AstExpressionLogical:
		self.resolveExpression(expression.Left)
		self.resolveExpression(expression.Right)

	case *AstExpressionVariable:
		if len(self.scopes) != 0 {
			ready, ok := self.scopes[len(self.scopes)-1][expression.Name.Lexeme]
			if ok && !ready {
				self.error(expression.Name, "can't read local variable %s in its own initializer", quote(expression.Name.Lexeme))
			}
		}
		self.resolveLocal(expression, expression.Name.Lexeme)

	case *AstExpressionAssign:
		self.resolveExpression(expression.Value)
		self.resolveLocal(expression, expression.Name.Lexeme)

	case *AstExpressionCall:
		self.resolveExpression(expression.Callee)
		for _, argument := range expression.Arguments {
			self.resolveExpression(argument)
		}

	case *AstExpressionGet:
		self.resolveExpression(expression.Object)

	case *AstExpressionSet:
		self.resolveExpression(expression.Object)
		self.resolveExpression(expression.Value)

	case *AstExpressionThis:
		if self.currentClass == CLASS_NONE {
			self.error(expression.Keyword, "can't use %s outside of a class", quote(TOKEN_THIS))
			return
		}
		self.resolveLocal(expression, TOKEN_THIS)

	case *AstExpressionSuper:
		if self.currentClass == CLASS_NONE {
			self.error(expression.Keyword, "can't use %s outside of a class", quote(TOKEN_SUPER))
			return
		}
		if self.currentClass != CLASS_SUBCLASS {
			self.error(expression.Keyword, "can't use %s in a class with no superclass", quote(TOKEN_SUPER))
			return
		}
		self.resolveLocal(expression, TOKEN_SUPER)

	default:
		panic(fmt.Sprintf("unhandled expression %T", expression))
	}
}
