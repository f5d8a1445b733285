package pox

import (
	"errors"
	"fmt"
	"sort"
)

var ErrUndefinedVariable = errors.New("undefined variable")

// Environment is one lexical scope. Scopes are shared by pointer: every
// closure created inside a scope holds the same *Environment, so writes made
// through one are seen by all of them.
type Environment struct {
	outer *Environment // Optional
	store map[string]Value
}

func NewEnvironment(outer *Environment) *Environment {
	return &Environment{
		outer: outer,
		store: map[string]Value{},
	}
}

func (self *Environment) Outer() *Environment {
	return self.outer
}

// Introduces or overwrites a binding in this scope.
func (self *Environment) Define(name string, value Value) {
	self.store[name] = value
}

func (self *Environment) Assign(name string, value Value) error {
	env := self
	for env != nil {
		_, ok := env.store[name]
		if ok {
			env.store[name] = value
			return nil
		}
		env = env.outer
	}
	return fmt.Errorf("%w %s", ErrUndefinedVariable, quote(name))
}

func (self *Environment) Get(name string) (Value, error) {
	env := self
	for env != nil {
		value, ok := env.store[name]
		if ok {
			return value, nil
		}
		env = env.outer
	}
	return nil, fmt.Errorf("%w %s", ErrUndefinedVariable, quote(name))
}

// Returns the scope distance links outward. The resolver guarantees the
// chain is at least that long for every resolved reference.
func (self *Environment) Ancestor(distance int) *Environment {
	env := self
	for i := 0; i < distance; i += 1 {
		env = env.outer
	}
	return env
}

func (self *Environment) GetAt(distance int, name string) (Value, error) {
	value, ok := self.Ancestor(distance).store[name]
	if !ok {
		return nil, fmt.Errorf("%w %s", ErrUndefinedVariable, quote(name))
	}
	return value, nil
}

func (self *Environment) AssignAt(distance int, name string, value Value) {
	self.Ancestor(distance).store[name] = value
}

// Names visible from this scope, sorted, innermost shadowing outermost.
func (self *Environment) Names() []string {
	seen := map[string]bool{}
	names := []string{}
	for env := self; env != nil; env = env.outer {
		for name := range env.store {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}
