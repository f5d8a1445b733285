package pox

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
)

// ControlFlow is the non-error outcome of executing a statement. A nil
// ControlFlow means execution continues with the next statement.
type ControlFlow interface {
	ControlFlowLocation() *SourceLocation
}

type Return struct {
	Location *SourceLocation // Optional
	Value    Value
}

func (self Return) ControlFlowLocation() *SourceLocation {
	return self.Location
}

type Interpreter struct {
	ctx     *Context
	globals *Environment
	// Scope distances computed by the resolver. References absent from
	// the table are globals and are looked up by name.
	locals map[AstExpression]int

	stdout io.Writer
	stdin  *bufio.Reader
}

// NewInterpreter creates an interpreter with the builtins registered in its
// global scope. Nil writers and readers default to the process streams.
func NewInterpreter(stdout io.Writer, stdin io.Reader) *Interpreter {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stdin == nil {
		stdin = os.Stdin
	}
	ctx := NewContext()
	self := &Interpreter{
		ctx:     &ctx,
		globals: NewEnvironment(nil),
		locals:  map[AstExpression]int{},
		stdout:  stdout,
		stdin:   bufio.NewReader(stdin),
	}
	registerBuiltins(self)
	return self
}

func (self *Interpreter) Context() *Context {
	return self.ctx
}

func (self *Interpreter) Globals() *Environment {
	return self.globals
}

func (self *Interpreter) resolve(expression AstExpression, distance int) {
	self.locals[expression] = distance
}

// Interpret executes statements in order in the global scope. The first
// runtime error stops execution and is returned.
func (self *Interpreter) Interpret(statements []AstStatement) error {
	for _, statement := range statements {
		if _, err := self.execute(statement, self.globals); err != nil {
			return err
		}
	}
	return nil
}

// Executes statements directly in env, which the caller has already
// created for the block or call.
func (self *Interpreter) executeBlock(statements []AstStatement, env *Environment) (ControlFlow, error) {
	for _, statement := range statements {
		cflow, err := self.execute(statement, env)
		if err != nil {
			return nil, err
		}
		if cflow != nil {
			return cflow, nil
		}
	}
	return nil, nil
}

func (self *Interpreter) execute(statement AstStatement, env *Environment) (ControlFlow, error) {
	switch statement := statement.(type) {
	case *AstStatementExpression:
		_, err := self.evaluate(statement.Expression, env)
		return nil, err

	case *AstStatementPrint:
		value, err := self.evaluate(statement.Expression, env)
		if err != nil {
			return nil, err
		}
		fmt.Fprintln(self.stdout, value.String())
		return nil, nil

	case *AstStatementVariable:
		var value Value = self.ctx.Null
		if statement.Initializer != nil {
			var err error
			value, err = self.evaluate(statement.Initializer, env)
			if err != nil {
				return nil, err
			}
		}
		env.Define(statement.Name.Lexeme, value)
		return nil, nil

	case *AstStatementBlock:
		return self.executeBlock(statement.Statements, NewEnvironment(env))

	case *AstStatementIf:
		condition, err := self.evaluate(statement.Condition, env)
		if err != nil {
			return nil, err
		}
		if isTruthy(condition) {
			return self.execute(statement.Then, env)
		}
		if statement.Else != nil {
			return self.execute(statement.Else, env)
		}
		return nil, nil

	case *AstStatementWhile:
		for {
			condition, err := self.evaluate(statement.Condition, env)
			if err != nil {
				return nil, err
			}
			if !isTruthy(condition) {
				return nil, nil
			}
			cflow, err := self.execute(statement.Body, env)
			if err != nil || cflow != nil {
				return cflow, err
			}
		}

	case *AstStatementFunction:
		env.Define(statement.Name.Lexeme, NewFunction(statement, env, false))
		return nil, nil

	case *AstStatementReturn:
		var value Value = self.ctx.Null
		if statement.Value != nil {
			var err error
			value, err = self.evaluate(statement.Value, env)
			if err != nil {
				return nil, err
			}
		}
		return Return{statement.Keyword.Location, value}, nil

	case *AstStatementClass:
		return nil, self.executeClass(statement, env)
	}

	panic(fmt.Sprintf("unhandled statement %T", statement))
}

func (self *Interpreter) executeClass(statement *AstStatementClass, env *Environment) error {
	var superclass *Class
	if statement.Superclass != nil {
		value, err := self.evaluate(statement.Superclass, env)
		if err != nil {
			return err
		}
		class, ok := value.(*Class)
		if !ok {
			return NewError(ERROR_TYPE, statement.Superclass.Name, "superclass must be a class")
		}
		superclass = class
	}

	// Defined first so that methods may refer to the class by name.
	env.Define(statement.Name.Lexeme, self.ctx.Null)

	closure := env
	if superclass != nil {
		closure = NewEnvironment(env)
		closure.Define(TOKEN_SUPER, superclass)
	}

	methods := map[string]*Function{}
	for _, method := range statement.Methods {
		name := method.Name.Lexeme
		methods[name] = NewFunction(method, closure, name == "init")
	}

	env.Define(statement.Name.Lexeme, NewClass(statement.Name.Lexeme, superclass, methods))
	return nil
}

func (self *Interpreter) lookUpVariable(name Token, expression AstExpression, env *Environment) (Value, error) {
	var value Value
	var err error
	if distance, ok := self.locals[expression]; ok {
		value, err = env.GetAt(distance, name.Lexeme)
	} else {
		value, err = self.globals.Get(name.Lexeme)
	}
	if errors.Is(err, ErrUndefinedVariable) {
		return nil, self.undefinedVariable(name, env)
	}
	return value, err
}

func (self *Interpreter) undefinedVariable(name Token, env *Environment) *Error {
	why := fmt.Sprintf("undefined variable %s", quote(name.Lexeme))
	return NewError(ERROR_UNDEFINED_VARIABLE, name, "%s", didYouMean(why, name.Lexeme, env.Names()))
}

func (self *Interpreter) evaluate(expression AstExpression, env *Environment) (Value, error) {
	switch expression := expression.(type) {
	case *AstExpressionLiteral:
		return expression.Value, nil

	case *AstExpressionGrouping:
		return self.evaluate(expression.Expression, env)

	case *AstExpressionUnary:
		return self.evaluateUnary(expression, env)

	case *AstExpressionBinary:
		return self.evaluateBinary(expression, env)

	case *AstExpressionLogical:
		left, err := self.evaluate(expression.Left, env)
		if err != nil {
			return nil, err
		}
		if expression.Operator.Kind == TOKEN_OR {
			if isTruthy(left) {
				return left, nil
			}
		} else if !isTruthy(left) {
			return left, nil
		}
		return self.evaluate(expression.Right, env)

	case *AstExpressionVariable:
		return self.lookUpVariable(expression.Name, expression, env)

	case *AstExpressionAssign:
		value, err := self.evaluate(expression.Value, env)
		if err != nil {
			return nil, err
		}
		// Distance zero is a resolved local, not a global.
		if distance, ok := self.locals[expression]; ok {
			env.AssignAt(distance, expression.Name.Lexeme, value)
			return value, nil
		}
		if err := self.globals.Assign(expression.Name.Lexeme, value); err != nil {
			return nil, self.undefinedVariable(expression.Name, env)
		}
		return value, nil

	case *AstExpressionCall:
		return self.evaluateCall(expression, env)

	case *AstExpressionGet:
		value, err := self.evaluate(expression.Object, env)
		if err != nil {
			return nil, err
		}
		object, ok := value.(Object)
		if !ok {
			return nil, NewError(ERROR_TYPE, expression.Name, "only instances have properties, found %s", value.Typename())
		}
		return object.Get(self.ctx, expression.Name)

	case *AstExpressionSet:
		value, err := self.evaluate(expression.Object, env)
		if err != nil {
			return nil, err
		}
		object, ok := value.(Object)
		if !ok {
			return nil, NewError(ERROR_TYPE, expression.Name, "only instances have fields, found %s", value.Typename())
		}
		field, err := self.evaluate(expression.Value, env)
		if err != nil {
			return nil, err
		}
		if err := object.Set(expression.Name, field); err != nil {
			return nil, err
		}
		return field, nil

	case *AstExpressionThis:
		return self.lookUpVariable(expression.Keyword, expression, env)

	case *AstExpressionSuper:
		distance := self.locals[expression]
		value, err := env.GetAt(distance, TOKEN_SUPER)
		if err != nil {
			return nil, err
		}
		superclass := value.(*Class)
		// The scope binding `this` sits just inside the one binding `super`.
		receiver, err := env.GetAt(distance-1, TOKEN_THIS)
		if err != nil {
			return nil, err
		}
		method := superclass.FindMethod(expression.Method.Lexeme)
		if method == nil {
			why := fmt.Sprintf("undefined property %s", quote(expression.Method.Lexeme))
			return nil, NewError(ERROR_UNDEFINED_PROPERTY, expression.Method, "%s",
				didYouMean(why, expression.Method.Lexeme, superclass.methodNames()))
		}
		return method.Bind(receiver), nil
	}

	panic(fmt.Sprintf("unhandled expression %T", expression))
}

func (self *Interpreter) evaluateUnary(expression *AstExpressionUnary, env *Environment) (Value, error) {
	right, err := self.evaluate(expression.Right, env)
	if err != nil {
		return nil, err
	}

	switch expression.Operator.Kind {
	case TOKEN_BANG:
		return self.ctx.NewBoolean(!isTruthy(right)), nil
	case TOKEN_MINUS:
		number, ok := right.(*Number)
		if !ok {
			return nil, NewError(ERROR_TYPE, expression.Operator, "operand must be a number")
		}
		return self.ctx.NewNumber(-number.data), nil
	}

	panic(fmt.Sprintf("unhandled unary operator %s", expression.Operator.Kind))
}

func (self *Interpreter) evaluateBinary(expression *AstExpressionBinary, env *Environment) (Value, error) {
	left, err := self.evaluate(expression.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := self.evaluate(expression.Right, env)
	if err != nil {
		return nil, err
	}

	operator := expression.Operator
	switch operator.Kind {
	case TOKEN_EQUAL_EQUAL:
		return self.ctx.NewBoolean(left.Equal(right)), nil
	case TOKEN_BANG_EQUAL:
		return self.ctx.NewBoolean(!left.Equal(right)), nil
	case TOKEN_PLUS:
		lnum, lok := left.(*Number)
		rnum, rok := right.(*Number)
		if lok && rok {
			return self.ctx.NewNumber(lnum.data + rnum.data), nil
		}
		_, lstr := left.(*String)
		_, rstr := right.(*String)
		if lstr || rstr {
			return self.ctx.NewString(left.String() + right.String()), nil
		}
		return nil, NewError(ERROR_TYPE, operator, "operands must be numbers or strings")
	}

	lnum, lok := left.(*Number)
	rnum, rok := right.(*Number)
	if !lok || !rok {
		return nil, NewError(ERROR_TYPE, operator, "operands must be numbers")
	}
	switch operator.Kind {
	case TOKEN_MINUS:
		return self.ctx.NewNumber(lnum.data - rnum.data), nil
	case TOKEN_STAR:
		return self.ctx.NewNumber(lnum.data * rnum.data), nil
	case TOKEN_SLASH:
		if rnum.data == 0 {
			return nil, NewError(ERROR_DIVISION_BY_ZERO, operator, "division by zero")
		}
		return self.ctx.NewNumber(lnum.data / rnum.data), nil
	case TOKEN_GREATER:
		return self.ctx.NewBoolean(lnum.data > rnum.data), nil
	case TOKEN_GREATER_EQUAL:
		return self.ctx.NewBoolean(lnum.data >= rnum.data), nil
	case TOKEN_LESS:
		return self.ctx.NewBoolean(lnum.data < rnum.data), nil
	case TOKEN_LESS_EQUAL:
		return self.ctx.NewBoolean(lnum.data <= rnum.data), nil
	}

	panic(fmt.Sprintf("unhandled binary operator %s", operator.Kind))
}

func (self *Interpreter) evaluateCall(expression *AstExpressionCall, env *Environment) (Value, error) {
	callee, err := self.evaluate(expression.Callee, env)
	if err != nil {
		return nil, err
	}

	arguments := make([]Value, 0, len(expression.Arguments))
	for _, argument := range expression.Arguments {
		value, err := self.evaluate(argument, env)
		if err != nil {
			return nil, err
		}
		arguments = append(arguments, value)
	}

	function, ok := callee.(Callable)
	if !ok {
		return nil, NewError(ERROR_TYPE, expression.Paren, "can only call functions and classes")
	}
	if len(arguments) != function.Arity() {
		return nil, NewError(ERROR_ARITY, expression.Paren,
			"expected %d arguments but got %d", function.Arity(), len(arguments))
	}

	result, err := function.Call(self, arguments)
	if err != nil {
		var rerr *Error
		if errors.As(err, &rerr) {
			return nil, err
		}
		var nerr NativeError
		if errors.As(err, &nerr) {
			return nil, NewError(nerr.Kind, expression.Paren, "%s", nerr.why)
		}
		return nil, NewError(ERROR_TYPE, expression.Paren, "%s", err.Error())
	}
	return result, nil
}
