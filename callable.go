package pox

import (
	"fmt"
	"sort"
)

// Callable is implemented by functions, classes, and natives. Call is only
// invoked once the argument count has been checked against Arity.
type Callable interface {
	Value
	Arity() int
	Call(interp *Interpreter, arguments []Value) (Value, error)
}

// Object is a value with properties reachable through Get and Set
// expressions.
type Object interface {
	Value
	Get(ctx *Context, name Token) (Value, error)
	Set(name Token, value Value) error
}

type Function struct {
	declaration   *AstStatementFunction
	closure       *Environment
	isInitializer bool
}

func NewFunction(declaration *AstStatementFunction, closure *Environment, isInitializer bool) *Function {
	return &Function{
		declaration:   declaration,
		closure:       closure,
		isInitializer: isInitializer,
	}
}

func (self *Function) Name() string {
	return self.declaration.Name.Lexeme
}

func (self *Function) Typename() string {
	return "function"
}

func (self *Function) String() string {
	return fmt.Sprintf("<fn %s>", self.Name())
}

func (self *Function) Equal(other Value) bool {
	othr, ok := other.(*Function)
	if !ok {
		return false
	}
	return self == othr
}

func (self *Function) Arity() int {
	return len(self.declaration.Parameters)
}

// Bind returns a copy of the function whose closure is a fresh scope,
// enclosed by the original closure, defining `this`.
func (self *Function) Bind(instance Value) *Function {
	env := NewEnvironment(self.closure)
	env.Define(TOKEN_THIS, instance)
	return NewFunction(self.declaration, env, self.isInitializer)
}

func (self *Function) Call(interp *Interpreter, arguments []Value) (Value, error) {
	env := NewEnvironment(self.closure)
	for i, parameter := range self.declaration.Parameters {
		env.Define(parameter.Lexeme, arguments[i])
	}

	cflow, err := interp.executeBlock(self.declaration.Body, env)
	if err != nil {
		return nil, err
	}

	// An initializer always yields the instance under construction.
	if self.isInitializer {
		return self.closure.GetAt(0, TOKEN_THIS)
	}
	if result, ok := cflow.(Return); ok {
		return result.Value, nil
	}
	return interp.ctx.Null, nil
}

type Class struct {
	name       string
	superclass *Class // Optional
	methods    map[string]*Function
}

func NewClass(name string, superclass *Class, methods map[string]*Function) *Class {
	return &Class{
		name:       name,
		superclass: superclass,
		methods:    methods,
	}
}

func (self *Class) Name() string {
	return self.name
}

func (self *Class) Superclass() *Class {
	return self.superclass
}

func (self *Class) Typename() string {
	return "class"
}

func (self *Class) String() string {
	return self.name
}

func (self *Class) Equal(other Value) bool {
	othr, ok := other.(*Class)
	if !ok {
		return false
	}
	return self == othr
}

// FindMethod searches this class, then each ancestor in turn. Returns nil
// if no class in the chain defines the method.
func (self *Class) FindMethod(name string) *Function {
	for class := self; class != nil; class = class.superclass {
		if method, ok := class.methods[name]; ok {
			return method
		}
	}
	return nil
}

func (self *Class) methodNames() []string {
	names := []string{}
	for class := self; class != nil; class = class.superclass {
		for name := range class.methods {
			names = append(names, name)
		}
	}
	return names
}

func (self *Class) Arity() int {
	if initializer := self.FindMethod("init"); initializer != nil {
		return initializer.Arity()
	}
	return 0
}

func (self *Class) Call(interp *Interpreter, arguments []Value) (Value, error) {
	instance := NewInstance(self)
	if initializer := self.FindMethod("init"); initializer != nil {
		if _, err := initializer.Bind(instance).Call(interp, arguments); err != nil {
			return nil, err
		}
	}
	return instance, nil
}

type Instance struct {
	class  *Class
	fields map[string]Value
}

func NewInstance(class *Class) *Instance {
	return &Instance{
		class:  class,
		fields: map[string]Value{},
	}
}

func (self *Instance) Class() *Class {
	return self.class
}

func (self *Instance) Typename() string {
	return self.class.name
}

func (self *Instance) String() string {
	return fmt.Sprintf("%s instance", self.class.name)
}

func (self *Instance) Equal(other Value) bool {
	othr, ok := other.(*Instance)
	if !ok {
		return false
	}
	return self == othr
}

// Fields shadow methods. Methods are bound to the instance on access.
func (self *Instance) Get(ctx *Context, name Token) (Value, error) {
	if value, ok := self.fields[name.Lexeme]; ok {
		return value, nil
	}
	if method := self.class.FindMethod(name.Lexeme); method != nil {
		return method.Bind(self), nil
	}

	candidates := self.class.methodNames()
	for field := range self.fields {
		candidates = append(candidates, field)
	}
	sort.Strings(candidates)
	why := fmt.Sprintf("undefined property %s", quote(name.Lexeme))
	return nil, NewError(ERROR_UNDEFINED_PROPERTY, name, "%s", didYouMean(why, name.Lexeme, candidates))
}

func (self *Instance) Set(name Token, value Value) error {
	self.fields[name.Lexeme] = value
	return nil
}

type NativeFunction struct {
	name  string
	arity int
	fn    func(interp *Interpreter, arguments []Value) (Value, error)
}

func NewNativeFunction(name string, arity int, fn func(*Interpreter, []Value) (Value, error)) *NativeFunction {
	return &NativeFunction{
		name:  name,
		arity: arity,
		fn:    fn,
	}
}

func (self *NativeFunction) Name() string {
	return self.name
}

func (self *NativeFunction) Typename() string {
	return "native function"
}

func (self *NativeFunction) String() string {
	return fmt.Sprintf("<native fn %s>", self.name)
}

func (self *NativeFunction) Equal(other Value) bool {
	othr, ok := other.(*NativeFunction)
	if !ok {
		return false
	}
	return self == othr
}

func (self *NativeFunction) Arity() int {
	return self.arity
}

func (self *NativeFunction) Call(interp *Interpreter, arguments []Value) (Value, error) {
	return self.fn(interp, arguments)
}
