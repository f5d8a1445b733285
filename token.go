package pox

import (
	"fmt"
)

type SourceLocation struct {
	File string
	Line int
}

func (self SourceLocation) String() string {
	if self.File == "" {
		return fmt.Sprintf("line %d", self.Line)
	}
	return fmt.Sprintf("%s:%d", self.File, self.Line)
}

// Token Kinds
const (
	// Meta
	TOKEN_EOF = "end-of-file"
	// Identifiers and Literals
	TOKEN_IDENTIFIER = "identifier"
	TOKEN_NUMBER     = "number"
	TOKEN_STRING     = "string"
	// Delimiters
	TOKEN_LEFT_PAREN  = "("
	TOKEN_RIGHT_PAREN = ")"
	TOKEN_LEFT_BRACE  = "{"
	TOKEN_RIGHT_BRACE = "}"
	TOKEN_COMMA       = ","
	TOKEN_DOT         = "."
	TOKEN_SEMICOLON   = ";"
	// Operators
	TOKEN_MINUS         = "-"
	TOKEN_PLUS          = "+"
	TOKEN_SLASH         = "/"
	TOKEN_STAR          = "*"
	TOKEN_BANG          = "!"
	TOKEN_BANG_EQUAL    = "!="
	TOKEN_EQUAL         = "="
	TOKEN_EQUAL_EQUAL   = "=="
	TOKEN_GREATER       = ">"
	TOKEN_GREATER_EQUAL = ">="
	TOKEN_LESS          = "<"
	TOKEN_LESS_EQUAL    = "<="
	// Keywords
	TOKEN_AND    = "and"
	TOKEN_CLASS  = "class"
	TOKEN_ELSE   = "else"
	TOKEN_FALSE  = "false"
	TOKEN_FUN    = "fun"
	TOKEN_FOR    = "for"
	TOKEN_IF     = "if"
	TOKEN_NIL    = "nil"
	TOKEN_OR     = "or"
	TOKEN_PRINT  = "print"
	TOKEN_RETURN = "return"
	TOKEN_SUPER  = "super"
	TOKEN_THIS   = "this"
	TOKEN_TRUE   = "true"
	TOKEN_VAR    = "var"
	TOKEN_WHILE  = "while"
)

var keywords = map[string]string{
	TOKEN_AND:    TOKEN_AND,
	TOKEN_CLASS:  TOKEN_CLASS,
	TOKEN_ELSE:   TOKEN_ELSE,
	TOKEN_FALSE:  TOKEN_FALSE,
	TOKEN_FUN:    TOKEN_FUN,
	TOKEN_FOR:    TOKEN_FOR,
	TOKEN_IF:     TOKEN_IF,
	TOKEN_NIL:    TOKEN_NIL,
	TOKEN_OR:     TOKEN_OR,
	TOKEN_PRINT:  TOKEN_PRINT,
	TOKEN_RETURN: TOKEN_RETURN,
	TOKEN_SUPER:  TOKEN_SUPER,
	TOKEN_THIS:   TOKEN_THIS,
	TOKEN_TRUE:   TOKEN_TRUE,
	TOKEN_VAR:    TOKEN_VAR,
	TOKEN_WHILE:  TOKEN_WHILE,
}

// Token is produced once by the lexer and never mutated afterwards.
type Token struct {
	Kind     string
	Lexeme   string
	Literal  Value           // Optional: set for number and string tokens.
	Location *SourceLocation // Optional
}

func (self Token) String() string {
	if self.Kind == TOKEN_EOF {
		return self.Kind
	}
	return self.Lexeme
}

func (self Token) Line() int {
	if self.Location == nil {
		return 0
	}
	return self.Location.Line
}
