package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"ashn.dev/pox"
	"github.com/peterh/liner"
	"github.com/sanity-io/litter"
)

const (
	EXIT_SUCCESS  = 0
	EXIT_USAGE    = 64
	EXIT_DATAERR  = 65
	EXIT_SOFTWARE = 70
	EXIT_IOERR    = 74
)

const historyFile = ".pox_history"

var dumper = litter.Options{
	HidePrivateFields: false,
	HideZeroValues:    true,
	Separator:         " ",
}

func dumpTokensSource(ctx *pox.Context, source string, location *pox.SourceLocation) []error {
	tokens, errs := pox.Scan(ctx, source, location)
	if len(errs) != 0 {
		return errs
	}
	fmt.Println(dumper.Sdump(tokens))
	return nil
}

func dumpAstSource(ctx *pox.Context, source string, location *pox.SourceLocation) []error {
	tokens, errs := pox.Scan(ctx, source, location)
	if len(errs) != 0 {
		return errs
	}
	statements, errs := pox.Parse(ctx, tokens)
	if len(errs) != 0 {
		return errs
	}
	fmt.Println(dumper.Sdump(statements))
	return nil
}

func usage(w io.Writer) {
	program := os.Args[0]
	fmt.Fprintf(w, `usage:
  %s [FILE]
  %s [-c|--command] COMMAND

Starts an interactive session when neither FILE nor COMMAND is given.

options:
  -c, --command     Execute the provided command.
  --dump-tokens     Dump the lexed tokens to stdout instead of executing.
  --dump-ast        Dump the parsed statements to stdout instead of executing.
  -h, --help        Display this help text and exit.
`, program, program)
}

// Maps the errors of one run onto an exit status, writing each to stderr.
func report(source string, errs []error) int {
	if len(errs) == 0 {
		return EXIT_SUCCESS
	}
	for _, err := range errs {
		fmt.Fprintf(os.Stderr, "%s\n", pox.RenderError(source, err))
	}
	var rerr *pox.Error
	if errors.As(errs[0], &rerr) {
		return EXIT_SOFTWARE
	}
	return EXIT_DATAERR
}

// Counts unclosed braces and parentheses so the REPL can keep reading.
func isIncomplete(ctx *pox.Context, source string) bool {
	tokens, _ := pox.Scan(ctx, source, nil)
	depth := 0
	for _, token := range tokens {
		switch token.Kind {
		case pox.TOKEN_LEFT_BRACE, pox.TOKEN_LEFT_PAREN:
			depth += 1
		case pox.TOKEN_RIGHT_BRACE, pox.TOKEN_RIGHT_PAREN:
			depth -= 1
		}
	}
	return depth > 0
}

func repl() int {
	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		ln.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			ln.WriteHistory(f)
			f.Close()
		}
	}()

	interp := pox.NewInterpreter(os.Stdout, os.Stdin)
	for {
		var sb strings.Builder
		prompt := "> "
		for {
			line, err := ln.Prompt(prompt)
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Println()
				return EXIT_SUCCESS
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				return EXIT_IOERR
			}
			if sb.Len() != 0 {
				sb.WriteString("\n")
			}
			sb.WriteString(line)
			if !isIncomplete(interp.Context(), sb.String()) {
				break
			}
			prompt = ". "
		}

		source := sb.String()
		if strings.TrimSpace(source) == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(source, "\n", " "))
		report(source, interp.Run(source, &pox.SourceLocation{File: "<repl>", Line: 1}))
	}
}

func main() {
	reCommand := regexp.MustCompile(`^-+c(?:ommand)?(?:=(.*))?$`)
	reDumpTokens := regexp.MustCompile(`^-+dump-tokens$`)
	reDumpAst := regexp.MustCompile(`^-+dump-ast$`)
	reHelp := regexp.MustCompile(`^-+h(?:elp)?(?:=(.*))?$`)

	var cmds *string
	var file *string
	dumpTokens := false
	dumpAst := false
	argi := 1
	for argi < len(os.Args) {
		arg := os.Args[argi]

		// -c, -command
		if m := reCommand.FindStringSubmatch(arg); m != nil {
			// -c='print "hello world";'
			if m[1] != "" {
				cmds = &m[1]
				argi += 1
				continue
			}

			// -c 'print "hello world";'
			if argi+1 < len(os.Args) {
				cmds = &os.Args[argi+1]
				argi += 2
				continue
			}

			fmt.Fprintf(os.Stderr, "error: expected command argument\n")
			usage(os.Stderr)
			os.Exit(EXIT_USAGE)
		}

		// -dump-tokens
		if reDumpTokens.MatchString(arg) {
			dumpTokens = true
			argi += 1
			continue
		}

		// -dump-ast
		if reDumpAst.MatchString(arg) {
			dumpAst = true
			argi += 1
			continue
		}

		// -h, -help
		if reHelp.MatchString(arg) {
			usage(os.Stdout)
			os.Exit(EXIT_SUCCESS)
		}

		if strings.HasPrefix(arg, "-") {
			fmt.Fprintf(os.Stderr, "error: unknown flag %s\n", arg)
			usage(os.Stderr)
			os.Exit(EXIT_USAGE)
		}

		if file != nil || cmds != nil {
			fmt.Fprintf(os.Stderr, "error: unexpected argument %s\n", arg)
			usage(os.Stderr)
			os.Exit(EXIT_USAGE)
		}
		file = &arg
		argi += 1
	}

	if cmds == nil && file == nil {
		if dumpTokens || dumpAst {
			fmt.Fprintf(os.Stderr, "error: requested a dump without a command or file path\n")
			os.Exit(EXIT_USAGE)
		}
		os.Exit(repl())
	}

	var source string
	var location *pox.SourceLocation
	if cmds != nil {
		source = *cmds
		location = &pox.SourceLocation{File: "<command>", Line: 1}
	} else {
		bytes, err := os.ReadFile(*file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(EXIT_IOERR)
		}
		source = string(bytes)
		location = &pox.SourceLocation{File: *file, Line: 1}
	}

	ctx := pox.NewContext()
	var errs []error
	switch {
	case dumpTokens:
		errs = dumpTokensSource(&ctx, source, location)
	case dumpAst:
		errs = dumpAstSource(&ctx, source, location)
	default:
		errs = pox.NewInterpreter(os.Stdout, os.Stdin).Run(source, location)
	}
	os.Exit(report(source, errs))
}
