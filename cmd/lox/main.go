package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/MakeNowJust/heredoc"

	"github.com/mgomes/loxscript/lox"
)

const (
	exitUsage   = 64
	exitData    = 65
	exitRuntime = 70
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("lox: ")
	if err := runCLI(os.Args); err != nil {
		var reported *reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(exitCode(err))
	}
}

func runCLI(args []string) error {
	if len(args) < 2 {
		return replCommand(nil)
	}
	switch args[1] {
	case "run":
		return runCommand(args[2:])
	case "repl":
		return replCommand(args[2:])
	case "tokens":
		return tokensCommand(args[2:])
	case "ast":
		return astCommand(args[2:])
	case "fmt":
		return fmtCommand(args[2:])
	case "analyze":
		return analyzeCommand(args[2:])
	case "cat":
		return catCommand(args[2:])
	case "lsp":
		return runLSP()
	case "help", "-h", "--help":
		printUsage()
		return nil
	default:
		printUsage()
		return usageErrorf("unknown command %q", args[1])
	}
}

func runCommand(args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	checkOnly := fs.Bool("check", false, "only scan, parse and resolve the script")
	verbose := fs.Bool("v", false, "log pipeline stage timings")
	configPath := fs.String("config", "", "settings file to load")
	if err := fs.Parse(args); err != nil {
		return usageErrorf("lox run: %v", err)
	}
	remaining := fs.Args()
	if len(remaining) != 1 {
		return usageErrorf("lox run: script path required")
	}

	path, source, err := readScript(remaining[0])
	if err != nil {
		return err
	}
	settings, err := cliSettings(*configPath)
	if err != nil {
		return err
	}
	cfg := settings.engineConfig()
	cfg.Stdout = os.Stdout
	engine, err := lox.NewEngine(cfg)
	if err != nil {
		return fmt.Errorf("lox run: %w", err)
	}

	started := time.Now()
	program, err := engine.Check(source)
	if *verbose {
		log.Printf("check %s: %s", path, time.Since(started))
	}
	if err != nil {
		return reportScriptError(os.Stderr, source, err)
	}
	if *checkOnly {
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	started = time.Now()
	err = engine.NewInterpreter().Interpret(ctx, program.Statements, program.Locals)
	if *verbose {
		log.Printf("interpret %s: %s", path, time.Since(started))
	}
	if err != nil {
		return reportScriptError(os.Stderr, source, err)
	}
	return nil
}

func tokensCommand(args []string) error {
	fs := flag.NewFlagSet("tokens", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	if err := fs.Parse(args); err != nil {
		return usageErrorf("lox tokens: %v", err)
	}
	if fs.NArg() != 1 {
		return usageErrorf("lox tokens: script path required")
	}
	_, source, err := readScript(fs.Arg(0))
	if err != nil {
		return err
	}

	tokens, diags := lox.Scan(source)
	fmt.Println("== Tokens ==")
	for _, tok := range tokens {
		fmt.Printf("%4d %s\n", tok.Line, tok)
	}
	if len(diags) > 0 {
		return reportScriptError(os.Stderr, source, diags)
	}
	return nil
}

func astCommand(args []string) error {
	fs := flag.NewFlagSet("ast", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	if err := fs.Parse(args); err != nil {
		return usageErrorf("lox ast: %v", err)
	}
	if fs.NArg() != 1 {
		return usageErrorf("lox ast: script path required")
	}
	_, source, err := readScript(fs.Arg(0))
	if err != nil {
		return err
	}

	stmts, err := parseSource(source)
	if err != nil {
		return reportScriptError(os.Stderr, source, err)
	}
	fmt.Print(lox.Dump(stmts))
	return nil
}

// parseSource scans and parses source, returning every static diagnostic
// from both stages as one error.
func parseSource(source string) ([]lox.Stmt, error) {
	tokens, diags := lox.Scan(source)
	stmts, parseDiags := lox.Parse(tokens)
	diags = append(diags, parseDiags...)
	if len(diags) > 0 {
		return nil, diags
	}
	return stmts, nil
}

func readScript(path string) (string, string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", "", fmt.Errorf("resolve script path: %w", err)
	}
	input, err := os.ReadFile(abs)
	if err != nil {
		return "", "", fmt.Errorf("read script: %w", err)
	}
	return abs, string(input), nil
}

// cliSettings loads settings for a command. A broken file at the default
// location is logged and ignored; an explicit -config file must load.
func cliSettings(explicit string) (Settings, error) {
	settings, path, err := loadSettings(explicit)
	if err == nil {
		return settings, nil
	}
	if explicit != "" {
		return settings, err
	}
	log.Printf("ignoring settings %s: %v", path, err)
	return settings, nil
}

func printUsage() {
	prog := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, heredoc.Doc(`
		Usage: %[1]s <command> [flags] [args]

		Commands:
		  run [-check] [-v] [-config file] <script>   run a script
		  repl [-config file] [-plain]                 start the interactive prompt
		  tokens <script>                              print the scanned tokens
		  ast <script>                                 print the parsed syntax tree
		  fmt [-w] [-check] [-d] <path>...             format .lox files
		  analyze <script>                             report unreachable statements
		  cat [-style name] <script>                   print a script with highlighting
		  lsp                                          serve diagnostics over stdio
		  help                                         show this message

		With no command, %[1]s starts the interactive prompt.
	`), prog)
}

type flagErrorSink struct{}

func (flagErrorSink) Write(p []byte) (int, error) {
	return len(p), nil
}

type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func usageErrorf(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// exitCode maps a command error to the conventional sysexits status.
func exitCode(err error) int {
	var usage *usageError
	var diags lox.Diagnostics
	var runtimeErr *lox.RuntimeError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &usage):
		return exitUsage
	case errors.As(err, &diags) && diags.Static():
		return exitData
	case errors.As(err, &runtimeErr),
		lox.IsStepQuotaExceeded(err),
		errors.Is(err, context.Canceled):
		return exitRuntime
	default:
		return 1
	}
}
