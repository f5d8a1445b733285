package pox

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Stages of the pipeline that report collected (non-fatal) diagnostics.
const (
	STAGE_LEXICAL = "lexical"
	STAGE_PARSE   = "parse"
	STAGE_RESOLVE = "resolve"
)

// SyntaxError is a diagnostic collected during scanning, parsing, or
// resolution. Collecting continues after one is reported.
type SyntaxError struct {
	Stage    string
	Location *SourceLocation // Optional
	why      string
}

func (self SyntaxError) Error() string {
	if self.Location == nil {
		return fmt.Sprintf("SyntaxError: %s", self.why)
	}
	return fmt.Sprintf("[%v] SyntaxError: %s", self.Location, self.why)
}

func (self SyntaxError) Message() string {
	return self.why
}

// Render formats the error as the two line block shown to users, quoting
// the offending line of source.
func (self SyntaxError) Render(source string) string {
	line := 0
	if self.Location != nil {
		line = self.Location.Line
	}
	return fmt.Sprintf("  %d | %s\nSyntaxError: %s", line, sourceLine(source, line), self.why)
}

func sourceLine(source string, line int) string {
	lines := strings.Split(source, "\n")
	if line < 1 || line > len(lines) {
		return ""
	}
	return strings.TrimRight(lines[line-1], "\r")
}

// Runtime error kinds.
const (
	ERROR_TYPE                = "TypeError"
	ERROR_UNDEFINED_VARIABLE  = "UndefinedVariable"
	ERROR_UNDEFINED_PROPERTY  = "UndefinedProperty"
	ERROR_ARITY               = "ArityError"
	ERROR_DIVISION_BY_ZERO    = "DivisionByZero"
	ERROR_INDEX_OUT_OF_BOUNDS = "IndexOutOfBounds"
)

// Error is a runtime error. The first one raised aborts execution.
type Error struct {
	Kind     string
	Location *SourceLocation // Optional
	why      string
}

func (self Error) Error() string {
	if self.Location == nil {
		return self.why
	}
	return fmt.Sprintf("%s\n[line %d]", self.why, self.Location.Line)
}

func (self Error) Message() string {
	return self.why
}

func NewError(kind string, token Token, format string, args ...any) *Error {
	return &Error{
		Kind:     kind,
		Location: token.Location,
		why:      fmt.Sprintf(format, args...),
	}
}

// Appends a hint naming the closest known name, if any is close enough.
// A candidate must contain the target's letters in order and be within an
// edit distance of a third of the target's length (at least one).
func didYouMean(why string, target string, candidates []string) string {
	cutoff := max(1, len(target)/3)
	var best *fuzzy.Rank
	for _, rank := range fuzzy.RankFindFold(target, candidates) {
		if rank.Distance > cutoff {
			continue
		}
		if best == nil || rank.Distance < best.Distance {
			best = &rank
		}
	}
	if best == nil {
		return why
	}
	return fmt.Sprintf("%s, did you mean %s?", why, quote(best.Target))
}

// RenderError formats any pipeline error the way the driver displays it.
func RenderError(source string, err error) string {
	var serr SyntaxError
	if errors.As(err, &serr) {
		return serr.Render(source)
	}
	return err.Error()
}
