package pox

import (
	"strconv"
	"strings"
	"unicode"
)

type Lexer struct {
	ctx      *Context
	runes    []rune
	location *SourceLocation // optional
	position int
	start    int
}

func NewLexer(ctx *Context, source string, location *SourceLocation) Lexer {
	if location == nil {
		location = &SourceLocation{"", 1}
	}
	return Lexer{
		ctx:      ctx,
		runes:    []rune(source),
		location: &SourceLocation{location.File, location.Line},
		position: 0,
	}
}

// Scan lexes the whole source. Lexical errors are collected and scanning
// resumes at the next character, so one pass reports every error. The
// returned tokens always end with a single end-of-file token.
func Scan(ctx *Context, source string, location *SourceLocation) ([]Token, []error) {
	lexer := NewLexer(ctx, source, location)
	tokens := []Token{}
	errs := []error{}
	for {
		token, err := lexer.NextToken()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		tokens = append(tokens, token)
		if token.Kind == TOKEN_EOF {
			return tokens, errs
		}
	}
}

func (self *Lexer) currentRune() rune {
	if self.position >= len(self.runes) {
		return rune(0)
	}
	return self.runes[self.position]
}

func (self *Lexer) peekRune() rune {
	if self.position+1 >= len(self.runes) {
		return rune(0)
	}
	return self.runes[self.position+1]
}

func (self *Lexer) isEof() bool {
	return self.position >= len(self.runes)
}

func (self *Lexer) advanceRune() {
	if self.isEof() {
		return
	}
	if self.currentRune() == '\n' {
		self.location.Line += 1
	}
	self.position += 1
}

func (self *Lexer) matchRune(expected rune) bool {
	if self.isEof() || self.currentRune() != expected {
		return false
	}
	self.advanceRune()
	return true
}

func (self *Lexer) here() *SourceLocation {
	return &SourceLocation{self.location.File, self.location.Line}
}

func (self *Lexer) error(location *SourceLocation, why string) SyntaxError {
	return SyntaxError{
		Stage:    STAGE_LEXICAL,
		Location: location,
		why:      why,
	}
}

func (self *Lexer) skipWhitespace() {
	for !self.isEof() && unicode.IsSpace(self.currentRune()) {
		self.advanceRune()
	}
}

func (self *Lexer) skipLineComment() {
	for !self.isEof() && self.currentRune() != '\n' {
		self.advanceRune()
	}
}

func (self *Lexer) skipBlockComment() error {
	location := self.here()
	self.advanceRune() // '/'
	self.advanceRune() // '*'
	for !self.isEof() {
		if self.currentRune() == '*' && self.peekRune() == '/' {
			self.advanceRune()
			self.advanceRune()
			return nil
		}
		self.advanceRune()
	}
	return self.error(location, "unterminated multi-line comment")
}

func (self *Lexer) skipWhiteSpaceAndComments() error {
	for !self.isEof() {
		if unicode.IsSpace(self.currentRune()) {
			self.skipWhitespace()
			continue
		}
		if self.currentRune() == '/' && self.peekRune() == '/' {
			self.skipLineComment()
			continue
		}
		if self.currentRune() == '/' && self.peekRune() == '*' {
			if err := self.skipBlockComment(); err != nil {
				return err
			}
			continue
		}
		break
	}
	return nil
}

func (self *Lexer) newToken(kind string, literal Value, location *SourceLocation) Token {
	return Token{
		Kind:     kind,
		Lexeme:   string(self.runes[self.start:self.position]),
		Literal:  literal,
		Location: location,
	}
}

func isIdentifierStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentifierContinue(r rune) bool {
	return isIdentifierStart(r) || isDigit(r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func (self *Lexer) lexKeywordOrIdentifier() Token {
	location := self.here()
	for isIdentifierContinue(self.currentRune()) {
		self.advanceRune()
	}
	literal := string(self.runes[self.start:self.position])
	if keyword, ok := keywords[literal]; ok {
		return self.newToken(keyword, nil, location)
	}
	return self.newToken(TOKEN_IDENTIFIER, nil, location)
}

func (self *Lexer) lexNumber() Token {
	location := self.here()
	for isDigit(self.currentRune()) {
		self.advanceRune()
	}
	if self.currentRune() == '.' && isDigit(self.peekRune()) {
		self.advanceRune()
		for isDigit(self.currentRune()) {
			self.advanceRune()
		}
	}
	text := string(self.runes[self.start:self.position])
	number, _ := strconv.ParseFloat(text, 64) // digits with an optional fraction always parse
	return self.newToken(TOKEN_NUMBER, self.ctx.NewNumber(number), location)
}

func (self *Lexer) lexString() (Token, error) {
	location := self.here()
	terminator := self.currentRune()
	self.advanceRune()
	for !self.isEof() && self.currentRune() != terminator {
		if self.currentRune() == '\\' && self.peekRune() != rune(0) {
			self.advanceRune()
		}
		self.advanceRune()
	}
	if self.isEof() {
		return Token{}, self.error(location, "unterminated string")
	}
	self.advanceRune()
	text := string(self.runes[self.start+1 : self.position-1])
	return self.newToken(TOKEN_STRING, self.ctx.NewString(decodeEscapes(text)), location), nil
}

// Decodes backslash escapes. Unknown escapes are kept verbatim.
func decodeEscapes(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var sb strings.Builder
	runes := []rune(s)
	for i := 0; i < len(runes); i += 1 {
		if runes[i] != '\\' || i+1 >= len(runes) {
			sb.WriteRune(runes[i])
			continue
		}
		i += 1
		switch runes[i] {
		case 'n':
			sb.WriteRune('\n')
		case 't':
			sb.WriteRune('\t')
		case 'r':
			sb.WriteRune('\r')
		case '0':
			sb.WriteRune(0)
		case '\\':
			sb.WriteRune('\\')
		case '\'':
			sb.WriteRune('\'')
		case '"':
			sb.WriteRune('"')
		default:
			sb.WriteRune('\\')
			sb.WriteRune(runes[i])
		}
	}
	return sb.String()
}

func (self *Lexer) NextToken() (Token, error) {
	if err := self.skipWhiteSpaceAndComments(); err != nil {
		return Token{}, err
	}
	self.start = self.position
	if self.isEof() {
		return Token{
			Kind:     TOKEN_EOF,
			Lexeme:   "",
			Location: self.here(),
		}, nil
	}

	// Literals, Identifiers, and Keywords
	if isIdentifierStart(self.currentRune()) {
		return self.lexKeywordOrIdentifier(), nil
	}
	if isDigit(self.currentRune()) {
		return self.lexNumber(), nil
	}
	if self.currentRune() == '"' || self.currentRune() == '\'' {
		return self.lexString()
	}

	// Delimiters and Operators
	location := self.here()
	r := self.currentRune()
	self.advanceRune()
	switch r {
	case '(':
		return self.newToken(TOKEN_LEFT_PAREN, nil, location), nil
	case ')':
		return self.newToken(TOKEN_RIGHT_PAREN, nil, location), nil
	case '{':
		return self.newToken(TOKEN_LEFT_BRACE, nil, location), nil
	case '}':
		return self.newToken(TOKEN_RIGHT_BRACE, nil, location), nil
	case ',':
		return self.newToken(TOKEN_COMMA, nil, location), nil
	case '.':
		return self.newToken(TOKEN_DOT, nil, location), nil
	case ';':
		return self.newToken(TOKEN_SEMICOLON, nil, location), nil
	case '-':
		return self.newToken(TOKEN_MINUS, nil, location), nil
	case '+':
		return self.newToken(TOKEN_PLUS, nil, location), nil
	case '/':
		return self.newToken(TOKEN_SLASH, nil, location), nil
	case '*':
		return self.newToken(TOKEN_STAR, nil, location), nil
	case '!':
		if self.matchRune('=') {
			return self.newToken(TOKEN_BANG_EQUAL, nil, location), nil
		}
		return self.newToken(TOKEN_BANG, nil, location), nil
	case '=':
		if self.matchRune('=') {
			return self.newToken(TOKEN_EQUAL_EQUAL, nil, location), nil
		}
		return self.newToken(TOKEN_EQUAL, nil, location), nil
	case '<':
		if self.matchRune('=') {
			return self.newToken(TOKEN_LESS_EQUAL, nil, location), nil
		}
		return self.newToken(TOKEN_LESS, nil, location), nil
	case '>':
		if self.matchRune('=') {
			return self.newToken(TOKEN_GREATER_EQUAL, nil, location), nil
		}
		return self.newToken(TOKEN_GREATER, nil, location), nil
	}

	return Token{}, self.error(location, "unexpected character "+quote(string([]rune{r})))
}
