package lox

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// Config controls where output goes and how far a program may run.
type Config struct {
	// Stdout receives the output of print statements. Defaults to os.Stdout.
	Stdout io.Writer
	// Clock backs the clock() builtin. Defaults to time.Now.
	Clock func() time.Time
	// RecursionLimit caps the depth of nested calls. Exceeding it is the
	// runtime error "Stack overflow".
	RecursionLimit int
	// StepQuota caps the number of executed statements and calls. Zero means
	// unlimited.
	StepQuota int
}

// Engine runs Lox programs with a fixed configuration.
type Engine struct {
	config Config
}

// Program is source that scanned, parsed and resolved without errors.
type Program struct {
	Statements []Stmt
	Locals     Locals
}

const defaultRecursionLimit = 1000

// NewEngine constructs an Engine, filling in defaults for unset fields.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.RecursionLimit < 0 {
		return nil, fmt.Errorf("lox: recursion limit must not be negative (got %d)", cfg.RecursionLimit)
	}
	if cfg.StepQuota < 0 {
		return nil, fmt.Errorf("lox: step quota must not be negative (got %d)", cfg.StepQuota)
	}
	if cfg.RecursionLimit == 0 {
		cfg.RecursionLimit = defaultRecursionLimit
	}
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Engine{config: cfg}, nil
}

// MustNewEngine constructs an Engine or panics if the config is invalid.
func MustNewEngine(cfg Config) *Engine {
	engine, err := NewEngine(cfg)
	if err != nil {
		panic(err)
	}
	return engine
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() Config {
	return e.config
}

// Check scans, parses and resolves source. Diagnostics from every stage that
// ran are returned together; resolution is skipped when the source does not
// parse.
func (e *Engine) Check(source string) (*Program, error) {
	tokens, diags := Scan(source)
	stmts, parseDiags := Parse(tokens)
	diags = append(diags, parseDiags...)
	if len(diags) > 0 {
		return nil, diags
	}
	locals, resolveDiags := Resolve(stmts)
	if len(resolveDiags) > 0 {
		return nil, resolveDiags
	}
	return &Program{Statements: stmts, Locals: locals}, nil
}

// Run checks source and executes it in a fresh interpreter.
func (e *Engine) Run(ctx context.Context, source string) error {
	program, err := e.Check(source)
	if err != nil {
		return err
	}
	return e.NewInterpreter().Interpret(ctx, program.Statements, program.Locals)
}

// NewInterpreter returns an interpreter with fresh globals.
func (e *Engine) NewInterpreter() *Interpreter {
	interp := &Interpreter{
		out:            e.config.Stdout,
		clock:          e.config.Clock,
		recursionLimit: e.config.RecursionLimit,
		quota:          e.config.StepQuota,
		globals:        newEnv(nil),
		locals:         make(Locals),
	}
	interp.defineGlobals()
	return interp
}

// Interpreter evaluates resolved statements. Globals persist across calls to
// Interpret, which is what the REPL relies on.
type Interpreter struct {
	ctx            context.Context
	out            io.Writer
	clock          func() time.Time
	recursionLimit int
	quota          int
	steps          int
	depth          int

	globals *Env
	locals  Locals

	// echo makes top-level expression statements print their value.
	echo bool
}

// Interpret executes stmts using the resolution in locals. It stops at the
// first runtime error, which is returned as a *RuntimeError; cancellation of
// ctx and an exhausted step quota are returned as plain errors.
//
// locals is merged into the resolution kept from earlier calls and never
// pruned: functions declared by an earlier call can still run and need their
// distances. The map grows with the total source given to the interpreter.
func (interp *Interpreter) Interpret(ctx context.Context, stmts []Stmt, locals Locals) error {
	interp.ctx = ctx
	interp.steps = 0
	interp.depth = 0
	for expr, distance := range locals {
		interp.locals[expr] = distance
	}

	for _, stmt := range stmts {
		if err := interp.executeTop(stmt); err != nil {
			closeTrace(err)
			return err
		}
	}
	return nil
}

func (interp *Interpreter) executeTop(stmt Stmt) error {
	if exprStmt, ok := stmt.(*ExprStmt); ok && interp.echo {
		val, err := interp.evaluate(exprStmt.Expr, interp.globals)
		if err != nil {
			return err
		}
		return interp.println(val.String())
	}
	_, err := interp.execute(stmt, interp.globals)
	return err
}

// Globals returns the global scope.
func (interp *Interpreter) Globals() *Env {
	return interp.globals
}

// Now reads the configured clock.
func (interp *Interpreter) Now() time.Time {
	return interp.clock()
}

func (interp *Interpreter) println(text string) error {
	if _, err := fmt.Fprintln(interp.out, text); err != nil {
		return fmt.Errorf("lox: write output: %w", err)
	}
	return nil
}

// AsRuntimeError extracts the runtime error from err, if there is one.
func AsRuntimeError(err error) (*RuntimeError, bool) {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
