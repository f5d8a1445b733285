package pox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanKinds(t *testing.T, source string) []string {
	t.Helper()
	ctx := NewContext()
	tokens, errs := Scan(&ctx, source, nil)
	require.Empty(t, errs)
	kinds := []string{}
	for _, token := range tokens {
		kinds = append(kinds, token.Kind)
	}
	return kinds
}

func TestScanEmptySource(t *testing.T) {
	assert.Equal(t, []string{TOKEN_EOF}, scanKinds(t, ""))
	assert.Equal(t, []string{TOKEN_EOF}, scanKinds(t, "  \n\t // only a comment"))
}

func TestScanOperators(t *testing.T) {
	kinds := scanKinds(t, "(){},.;-+/* ! != = == > >= < <=")
	assert.Equal(t, []string{
		TOKEN_LEFT_PAREN, TOKEN_RIGHT_PAREN, TOKEN_LEFT_BRACE, TOKEN_RIGHT_BRACE,
		TOKEN_COMMA, TOKEN_DOT, TOKEN_SEMICOLON, TOKEN_MINUS, TOKEN_PLUS, TOKEN_SLASH, TOKEN_STAR,
		TOKEN_BANG, TOKEN_BANG_EQUAL, TOKEN_EQUAL, TOKEN_EQUAL_EQUAL,
		TOKEN_GREATER, TOKEN_GREATER_EQUAL, TOKEN_LESS, TOKEN_LESS_EQUAL,
		TOKEN_EOF,
	}, kinds)
}

func TestScanKeywordsAndIdentifiers(t *testing.T) {
	kinds := scanKinds(t, "and class else false fun for if nil or print return super this true var while")
	assert.Equal(t, []string{
		TOKEN_AND, TOKEN_CLASS, TOKEN_ELSE, TOKEN_FALSE, TOKEN_FUN, TOKEN_FOR, TOKEN_IF, TOKEN_NIL,
		TOKEN_OR, TOKEN_PRINT, TOKEN_RETURN, TOKEN_SUPER, TOKEN_THIS, TOKEN_TRUE, TOKEN_VAR, TOKEN_WHILE,
		TOKEN_EOF,
	}, kinds)

	ctx := NewContext()
	tokens, errs := Scan(&ctx, "_private classy var2", nil)
	require.Empty(t, errs)
	require.Len(t, tokens, 4)
	for _, token := range tokens[:3] {
		assert.Equal(t, TOKEN_IDENTIFIER, token.Kind)
	}
	assert.Equal(t, "_private", tokens[0].Lexeme)
	assert.Equal(t, "classy", tokens[1].Lexeme)
	assert.Equal(t, "var2", tokens[2].Lexeme)
}

func TestScanNumbers(t *testing.T) {
	ctx := NewContext()
	tokens, errs := Scan(&ctx, "123 4.5 6.", nil)
	require.Empty(t, errs)
	require.Len(t, tokens, 5)
	assert.Equal(t, TOKEN_NUMBER, tokens[0].Kind)
	assert.Equal(t, float64(123), tokens[0].Literal.(*Number).data)
	assert.Equal(t, 4.5, tokens[1].Literal.(*Number).data)
	// A trailing dot is not part of the number.
	assert.Equal(t, "6", tokens[2].Lexeme)
	assert.Equal(t, TOKEN_DOT, tokens[3].Kind)
}

func TestScanStrings(t *testing.T) {
	ctx := NewContext()
	tokens, errs := Scan(&ctx, `"double" 'single' "tab\there" 'it\'s'`, nil)
	require.Empty(t, errs)
	require.Len(t, tokens, 5)
	assert.Equal(t, "double", tokens[0].Literal.(*String).data)
	assert.Equal(t, `"double"`, tokens[0].Lexeme)
	assert.Equal(t, "single", tokens[1].Literal.(*String).data)
	assert.Equal(t, "tab\there", tokens[2].Literal.(*String).data)
	assert.Equal(t, "it's", tokens[3].Literal.(*String).data)
}

func TestScanMultilineStringCountsLines(t *testing.T) {
	ctx := NewContext()
	tokens, errs := Scan(&ctx, "\"a\nb\" x", nil)
	require.Empty(t, errs)
	assert.Equal(t, 1, tokens[0].Line())
	assert.Equal(t, "a\nb", tokens[0].Literal.(*String).data)
	assert.Equal(t, 2, tokens[1].Line())
}

func TestScanComments(t *testing.T) {
	kinds := scanKinds(t, "a // line comment\n/* block\ncomment */ b")
	assert.Equal(t, []string{TOKEN_IDENTIFIER, TOKEN_IDENTIFIER, TOKEN_EOF}, kinds)

	ctx := NewContext()
	tokens, _ := Scan(&ctx, "/* one\ntwo\n*/ c", nil)
	assert.Equal(t, 3, tokens[0].Line())
}

func TestScanLineTracking(t *testing.T) {
	ctx := NewContext()
	tokens, errs := Scan(&ctx, "a\nb\n\nc", &SourceLocation{"test.pox", 1})
	require.Empty(t, errs)
	assert.Equal(t, 1, tokens[0].Line())
	assert.Equal(t, 2, tokens[1].Line())
	assert.Equal(t, 4, tokens[2].Line())
	assert.Equal(t, "test.pox", tokens[2].Location.File)
}

func TestScanUnexpectedCharactersContinue(t *testing.T) {
	ctx := NewContext()
	tokens, errs := Scan(&ctx, "a @ b\n# c", nil)
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0].Error(), "unexpected character `@`")
	assert.Equal(t, 2, errs[1].(SyntaxError).Location.Line)
	assert.Equal(t, STAGE_LEXICAL, errs[0].(SyntaxError).Stage)

	kinds := []string{}
	for _, token := range tokens {
		kinds = append(kinds, token.Kind)
	}
	assert.Equal(t, []string{TOKEN_IDENTIFIER, TOKEN_IDENTIFIER, TOKEN_IDENTIFIER, TOKEN_EOF}, kinds)
}

func TestScanUnterminatedStringAnchoredAtStart(t *testing.T) {
	ctx := NewContext()
	tokens, errs := Scan(&ctx, "x\n\"abc\ndef", nil)
	require.Len(t, errs, 1)
	serr := errs[0].(SyntaxError)
	assert.Equal(t, 2, serr.Location.Line)
	assert.Equal(t, "unterminated string", serr.Message())
	assert.Equal(t, TOKEN_EOF, tokens[len(tokens)-1].Kind)
}

func TestScanUnterminatedBlockComment(t *testing.T) {
	ctx := NewContext()
	tokens, errs := Scan(&ctx, "a /* never closed", nil)
	require.Len(t, errs, 1)
	assert.Equal(t, "unterminated multi-line comment", errs[0].(SyntaxError).Message())
	assert.Len(t, tokens, 2)
}

func TestScanSingleEofToken(t *testing.T) {
	ctx := NewContext()
	tokens, _ := Scan(&ctx, "var x = 1; @", nil)
	eofs := 0
	for _, token := range tokens {
		if token.Kind == TOKEN_EOF {
			eofs += 1
		}
	}
	assert.Equal(t, 1, eofs)
	assert.Equal(t, TOKEN_EOF, tokens[len(tokens)-1].Kind)
}

func TestRescanLexemesReproducesTokens(t *testing.T) {
	source := `
		// comment
		class A < B { init(x) { this.x = x; } }
		var s = "str\ting" + 'other';
		print 1.5 >= 2 and !(3 != 4) or nil; /* trailing */
	`
	ctx := NewContext()
	tokens, errs := Scan(&ctx, source, nil)
	require.Empty(t, errs)

	lexemes := []string{}
	for _, token := range tokens {
		lexemes = append(lexemes, token.Lexeme)
	}
	rescanned, errs := Scan(&ctx, strings.Join(lexemes, " "), nil)
	require.Empty(t, errs)
	require.Equal(t, len(tokens), len(rescanned))
	for i := range tokens {
		assert.Equal(t, tokens[i].Kind, rescanned[i].Kind)
		assert.Equal(t, tokens[i].Lexeme, rescanned[i].Lexeme)
	}
}

func TestDecodeEscapes(t *testing.T) {
	assert.Equal(t, "plain", decodeEscapes("plain"))
	assert.Equal(t, "a\nb\tc\\d\"e'f", decodeEscapes(`a\nb\tc\\d\"e\'f`))
	assert.Equal(t, `\q`, decodeEscapes(`\q`))
	assert.Equal(t, "\x00", decodeEscapes(`\0`))
}

func TestSyntaxErrorRender(t *testing.T) {
	source := "var a = 1;\nvar b = @;\n"
	ctx := NewContext()
	_, errs := Scan(&ctx, source, nil)
	require.Len(t, errs, 1)
	assert.Equal(t, "  2 | var b = @;\nSyntaxError: unexpected character `@`", RenderError(source, errs[0]))
}
