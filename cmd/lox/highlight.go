package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/chroma"
	"github.com/alecthomas/chroma/formatters"
	"github.com/alecthomas/chroma/styles"
	"github.com/muesli/termenv"
)

var loxLexer = chroma.MustNewLazyLexer(
	&chroma.Config{
		Name:      "Lox",
		Aliases:   []string{"lox"},
		Filenames: []string{"*.lox"},
		MimeTypes: []string{"text/x-lox"},
	},
	loxRules,
)

func loxRules() chroma.Rules {
	return chroma.Rules{
		"root": {
			{Pattern: `\s+`, Type: chroma.Text},
			{Pattern: `//[^\n]*`, Type: chroma.CommentSingle},
			{Pattern: `/\*[\s\S]*?(\*/|\z)`, Type: chroma.CommentMultiline},
			{Pattern: `"[^"]*"?`, Type: chroma.LiteralString},
			{Pattern: `[0-9]+(\.[0-9]+)?`, Type: chroma.LiteralNumber},
			{Pattern: chroma.Words(``, `\b`, "class", "fun", "var"), Type: chroma.KeywordDeclaration},
			{Pattern: chroma.Words(``, `\b`, "false", "nil", "true"), Type: chroma.KeywordConstant},
			{Pattern: chroma.Words(``, `\b`, "super", "this"), Type: chroma.NameBuiltinPseudo},
			{Pattern: chroma.Words(``, `\b`, "and", "break", "else", "for", "if", "or", "print", "return", "while"), Type: chroma.Keyword},
			{Pattern: `clock\b`, Type: chroma.NameBuiltin},
			{Pattern: `[A-Za-z_][A-Za-z0-9_]*`, Type: chroma.Name},
			{Pattern: `[-+*/!=<>]=?`, Type: chroma.Operator},
			{Pattern: `[(){},.;]`, Type: chroma.Punctuation},
			{Pattern: `.`, Type: chroma.Error},
		},
	}
}

// highlight writes source to w with ANSI colours for the named chroma style.
// An empty formatter name writes plain text.
func highlight(w io.Writer, source, formatterName, styleName string) error {
	iterator, err := loxLexer.Tokenise(nil, source)
	if err != nil {
		return fmt.Errorf("tokenise: %w", err)
	}
	formatter := formatters.Get(formatterName)
	if formatterName == "" {
		formatter = formatters.NoOp
	}
	style := styles.Get(styleName)
	if err := formatter.Format(w, style, iterator); err != nil {
		return fmt.Errorf("format: %w", err)
	}
	return nil
}

// highlightString is highlight for in-memory use by the REPL.
func highlightString(source, styleName string) string {
	var b strings.Builder
	if err := highlight(&b, source, "terminal256", styleName); err != nil {
		return source
	}
	return b.String()
}

// terminalFormatter picks the richest chroma formatter the terminal behind
// out supports.
func terminalFormatter(out *os.File) string {
	switch termenv.NewOutput(out).Profile {
	case termenv.TrueColor:
		return "terminal16m"
	case termenv.ANSI256:
		return "terminal256"
	case termenv.ANSI:
		return "terminal"
	default:
		return ""
	}
}

func catCommand(args []string) error {
	fs := flag.NewFlagSet("cat", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	configPath := fs.String("config", "", "settings file to load")
	styleName := fs.String("style", "", "chroma style (defaults to the repl.style setting)")
	if err := fs.Parse(args); err != nil {
		return usageErrorf("lox cat: %v", err)
	}
	if fs.NArg() != 1 {
		return usageErrorf("lox cat: script path required")
	}
	_, source, err := readScript(fs.Arg(0))
	if err != nil {
		return err
	}
	settings, err := cliSettings(*configPath)
	if err != nil {
		return err
	}
	style := *styleName
	if style == "" {
		style = settings.REPL.Style
	}
	return highlight(os.Stdout, source, terminalFormatter(os.Stdout), style)
}
