package pox

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// NativeError is returned by builtins. The interpreter anchors it at the
// call site when converting it into a runtime Error.
type NativeError struct {
	Kind string
	why  string
}

func (self NativeError) Error() string {
	return self.why
}

func newNativeError(kind string, format string, args ...any) NativeError {
	return NativeError{
		Kind: kind,
		why:  fmt.Sprintf(format, args...),
	}
}

type builtin struct {
	name  string
	arity int
	fn    func(interp *Interpreter, arguments []Value) (Value, error)
}

// Every builtin available to programs, registered once per interpreter.
var builtins = []builtin{
	{"clock", 0, builtinClock},
	{"input", 1, builtinInput},
	{"write", 1, builtinWrite},
	{"chr", 1, builtinChr},
	{"ord", 1, builtinOrd},
	{"str", 1, builtinStr},
	{"strn", 2, builtinStrn},
	{"strlen", 1, builtinStrlen},
	{"int", 1, builtinInt},
	{"float", 1, builtinFloat},
	{"list", 0, builtinList},
}

func registerBuiltins(interp *Interpreter) {
	for _, b := range builtins {
		interp.globals.Define(b.name, NewNativeFunction(b.name, b.arity, b.fn))
	}
}

func builtinClock(interp *Interpreter, arguments []Value) (Value, error) {
	seconds := float64(time.Now().UnixNano()) / float64(time.Second)
	return interp.ctx.NewNumber(seconds), nil
}

func builtinInput(interp *Interpreter, arguments []Value) (Value, error) {
	fmt.Fprint(interp.stdout, arguments[0].String())
	line, err := interp.stdin.ReadString('\n')
	if err == io.EOF && line == "" {
		return interp.ctx.Null, nil
	}
	if err != nil && err != io.EOF {
		return nil, err
	}
	return interp.ctx.NewString(strings.TrimRight(line, "\r\n")), nil
}

// Writes the display form of its argument without a trailing newline.
func builtinWrite(interp *Interpreter, arguments []Value) (Value, error) {
	if _, err := fmt.Fprint(interp.stdout, arguments[0].String()); err != nil {
		return nil, err
	}
	return interp.ctx.Null, nil
}

func builtinChr(interp *Interpreter, arguments []Value) (Value, error) {
	number, ok := arguments[0].(*Number)
	if !ok || number.data != math.Trunc(number.data) || !utf8.ValidRune(rune(number.data)) {
		return interp.ctx.Null, nil
	}
	return interp.ctx.NewString(string(rune(number.data))), nil
}

func builtinOrd(interp *Interpreter, arguments []Value) (Value, error) {
	s, ok := arguments[0].(*String)
	if !ok || utf8.RuneCountInString(s.data) != 1 {
		return interp.ctx.Null, nil
	}
	r, _ := utf8.DecodeRuneInString(s.data)
	return interp.ctx.NewNumber(float64(r)), nil
}

func builtinStr(interp *Interpreter, arguments []Value) (Value, error) {
	return interp.ctx.NewString(arguments[0].String()), nil
}

func builtinStrn(interp *Interpreter, arguments []Value) (Value, error) {
	s, ok := arguments[0].(*String)
	index, iok := arguments[1].(*Number)
	if !ok || !iok {
		return interp.ctx.Null, nil
	}
	runes := []rune(s.data)
	i := int(index.data)
	if index.data != math.Trunc(index.data) || i < 0 || i >= len(runes) {
		return interp.ctx.Null, nil
	}
	return interp.ctx.NewString(string(runes[i])), nil
}

func builtinStrlen(interp *Interpreter, arguments []Value) (Value, error) {
	s, ok := arguments[0].(*String)
	if !ok {
		return interp.ctx.Null, nil
	}
	return interp.ctx.NewNumber(float64(utf8.RuneCountInString(s.data))), nil
}

func builtinInt(interp *Interpreter, arguments []Value) (Value, error) {
	switch value := arguments[0].(type) {
	case *Number:
		return interp.ctx.NewNumber(math.Trunc(value.data)), nil
	case *Boolean:
		if value.data {
			return interp.ctx.NewNumber(1), nil
		}
		return interp.ctx.NewNumber(0), nil
	case *String:
		number, err := strconv.ParseInt(strings.TrimSpace(value.data), 10, 64)
		if err != nil {
			return interp.ctx.Null, nil
		}
		return interp.ctx.NewNumber(float64(number)), nil
	}
	return interp.ctx.Null, nil
}

func builtinFloat(interp *Interpreter, arguments []Value) (Value, error) {
	switch value := arguments[0].(type) {
	case *Number:
		return value, nil
	case *String:
		number, err := strconv.ParseFloat(strings.TrimSpace(value.data), 64)
		if err != nil || math.IsNaN(number) || math.IsInf(number, 0) {
			return interp.ctx.Null, nil
		}
		return interp.ctx.NewNumber(number), nil
	}
	return interp.ctx.Null, nil
}

func builtinList(interp *Interpreter, arguments []Value) (Value, error) {
	return interp.ctx.NewList(nil), nil
}

// List is a mutable sequence shared by reference. Its methods are natives
// bound to the receiver when accessed as properties.
type List struct {
	elements []Value
}

func (self *List) Typename() string {
	return "list"
}

func (self *List) String() string {
	if len(self.elements) == 0 {
		return "[]"
	}

	s := make([]string, len(self.elements))
	for i, element := range self.elements {
		if str, ok := element.(*String); ok {
			s[i] = fmt.Sprintf("\"%s\"", escape(str.data))
			continue
		}
		s[i] = element.String()
	}
	return fmt.Sprintf("[%s]", strings.Join(s, ", "))
}

func (self *List) Equal(other Value) bool {
	othr, ok := other.(*List)
	if !ok {
		return false
	}
	if self.Count() != othr.Count() {
		return false
	}
	for i := range self.elements {
		if !self.elements[i].Equal(othr.elements[i]) {
			return false
		}
	}
	return true
}

func (self *List) Count() int {
	return len(self.elements)
}

func (self *List) index(value Value) (int, error) {
	number, ok := value.(*Number)
	if !ok {
		return 0, newNativeError(ERROR_TYPE, "list index must be a number, found %s", value.Typename())
	}
	if number.data != math.Trunc(number.data) {
		return 0, newNativeError(ERROR_TYPE, "list index must be an integer, found %s", number)
	}
	i := int(number.data)
	if i < 0 || i >= len(self.elements) {
		return 0, newNativeError(ERROR_INDEX_OUT_OF_BOUNDS, "list index %s out of bounds for length %d", number, len(self.elements))
	}
	return i, nil
}

func (self *List) Get(ctx *Context, name Token) (Value, error) {
	method := func(arity int, fn func(*Interpreter, []Value) (Value, error)) (Value, error) {
		return NewNativeFunction(name.Lexeme, arity, fn), nil
	}

	switch name.Lexeme {
	case "get":
		return method(1, func(interp *Interpreter, arguments []Value) (Value, error) {
			i, err := self.index(arguments[0])
			if err != nil {
				return nil, err
			}
			return self.elements[i], nil
		})
	case "add":
		return method(1, func(interp *Interpreter, arguments []Value) (Value, error) {
			self.elements = append(self.elements, arguments[0])
			return interp.ctx.Null, nil
		})
	case "pop":
		return method(0, func(interp *Interpreter, arguments []Value) (Value, error) {
			if len(self.elements) == 0 {
				return nil, newNativeError(ERROR_INDEX_OUT_OF_BOUNDS, "pop from empty list")
			}
			last := self.elements[len(self.elements)-1]
			self.elements = self.elements[:len(self.elements)-1]
			return last, nil
		})
	case "set":
		return method(2, func(interp *Interpreter, arguments []Value) (Value, error) {
			i, err := self.index(arguments[0])
			if err != nil {
				return nil, err
			}
			self.elements[i] = arguments[1]
			return interp.ctx.Null, nil
		})
	case "len":
		return method(0, func(interp *Interpreter, arguments []Value) (Value, error) {
			return interp.ctx.NewNumber(float64(len(self.elements))), nil
		})
	}

	why := fmt.Sprintf("undefined property %s", quote(name.Lexeme))
	return nil, NewError(ERROR_UNDEFINED_PROPERTY, name, "%s",
		didYouMean(why, name.Lexeme, []string{"add", "get", "len", "pop", "set"}))
}

func (self *List) Set(name Token, value Value) error {
	return NewError(ERROR_TYPE, name, "cannot set property %s on a list", quote(name.Lexeme))
}
