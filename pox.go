// Package pox implements a tree-walking interpreter for a small,
// dynamically typed scripting language with block scope, closures, and
// single-inheritance classes.
//
// Source runs through four stages: Scan produces tokens, Parse produces
// statements, Resolve records the scope distance of every local variable
// reference, and Interpret executes the statements. The first three stages
// collect every diagnostic they find; the last stops at the first runtime
// error.
package pox

// Resolve annotates statements with scope distances used by Interpret.
// Statements must not be interpreted if any error is returned.
func (self *Interpreter) Resolve(statements []AstStatement) []error {
	resolver := NewResolver(self)
	return resolver.Resolve(statements)
}

// Run executes source through the whole pipeline. Lexical errors stop
// before parsing, parse and resolve errors stop before execution, and a
// runtime error is returned alone. Globals persist between calls.
func (self *Interpreter) Run(source string, location *SourceLocation) []error {
	tokens, errs := Scan(self.ctx, source, location)
	if len(errs) != 0 {
		return errs
	}

	statements, errs := Parse(self.ctx, tokens)
	if len(errs) != 0 {
		return errs
	}

	if errs := self.Resolve(statements); len(errs) != 0 {
		return errs
	}

	if err := self.Interpret(statements); err != nil {
		return []error{err}
	}
	return nil
}
