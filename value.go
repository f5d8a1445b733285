package pox

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

func escape(s string) string {
	result := ""
	for _, r := range s {
		if r == '\t' {
			result += "\\t"
			continue
		}
		if r == '\n' {
			result += "\\n"
			continue
		}
		if r == '"' {
			result += "\\\""
			continue
		}
		if r == '\\' {
			result += "\\\\"
			continue
		}
		result += string(r)
	}
	return result
}

func quote(s string) string {
	if strings.Contains(s, "`") {
		return fmt.Sprintf(`"%s"`, escape(s))
	}
	return fmt.Sprintf("`%s`", s)
}

// Value is the closed set of runtime values: Nil, Boolean, Number, String,
// the Callable kinds, Instance, and the builtin List.
type Value interface {
	Typename() string
	// Display form, as written by print and used by string concatenation.
	String() string
	Equal(Value) bool
}

type Context struct {
	Null  *Null
	True  *Boolean
	False *Boolean
}

func NewContext() Context {
	ctx := Context{}
	ctx.Null = &Null{}
	ctx.True = &Boolean{true}
	ctx.False = &Boolean{false}
	return ctx
}

func (ctx *Context) NewNull() *Null {
	return ctx.Null
}

func (ctx *Context) NewBoolean(data bool) *Boolean {
	if data {
		return ctx.True
	}
	return ctx.False
}

func (ctx *Context) NewNumber(data float64) *Number {
	return &Number{data}
}

func (ctx *Context) NewString(data string) *String {
	return &String{data}
}

func (ctx *Context) NewList(elements []Value) *List {
	return &List{elements: elements}
}

type Null struct{}

func (self *Null) Typename() string {
	return "nil"
}

func (self *Null) String() string {
	return "nil"
}

func (self *Null) Equal(other Value) bool {
	_, ok := other.(*Null)
	return ok
}

type Boolean struct {
	data bool
}

func (self *Boolean) Typename() string {
	return "boolean"
}

func (self *Boolean) String() string {
	if self.data {
		return "true"
	}
	return "false"
}

func (self *Boolean) Equal(other Value) bool {
	othr, ok := other.(*Boolean)
	if !ok {
		return false
	}
	return self.data == othr.data
}

type Number struct {
	data float64
}

func (self *Number) Typename() string {
	return "number"
}

// Whole numbers print without a fractional part; everything else uses the
// shortest representation that round-trips.
func (self *Number) String() string {
	if math.IsNaN(self.data) {
		return "NaN"
	}
	if self.data == math.Inf(+1) {
		return "Inf"
	}
	if self.data == math.Inf(-1) {
		return "-Inf"
	}
	if self.data == math.Trunc(self.data) && math.Abs(self.data) < 1e15 {
		return strconv.FormatFloat(self.data, 'f', -1, 64)
	}
	return strconv.FormatFloat(self.data, 'g', -1, 64)
}

func (self *Number) Equal(other Value) bool {
	othr, ok := other.(*Number)
	if !ok {
		return false
	}
	return self.data == othr.data
}

type String struct {
	data string
}

func (self *String) Typename() string {
	return "string"
}

func (self *String) String() string {
	return self.data
}

func (self *String) Equal(other Value) bool {
	othr, ok := other.(*String)
	if !ok {
		return false
	}
	return self.data == othr.data
}

// Nil and false are falsy, everything else is truthy.
func isTruthy(value Value) bool {
	switch value := value.(type) {
	case *Null:
		return false
	case *Boolean:
		return value.data
	}
	return true
}
