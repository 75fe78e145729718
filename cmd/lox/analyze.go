package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/mgomes/loxscript/lox"
)

type lintWarning struct {
	Function string
	Line     int
	Message  string
}

func analyzeCommand(args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	if err := fs.Parse(args); err != nil {
		return usageErrorf("lox analyze: %v", err)
	}
	if fs.NArg() != 1 {
		return usageErrorf("lox analyze: script path required")
	}

	scriptPath, source, err := readScript(fs.Arg(0))
	if err != nil {
		return err
	}
	engine := lox.MustNewEngine(lox.Config{})
	program, err := engine.Check(source)
	if err != nil {
		return reportScriptError(os.Stderr, source, err)
	}

	warnings := analyzeProgram(program.Statements)
	if len(warnings) == 0 {
		fmt.Println("No issues found")
		return nil
	}

	for _, warning := range warnings {
		fmt.Printf("%s:%d: %s (%s)\n", scriptPath, max(warning.Line, 1), warning.Message, warning.Function)
	}

	return fmt.Errorf("analysis found %d issue(s)", len(warnings))
}

func analyzeProgram(stmts []lox.Stmt) []lintWarning {
	warnings := make([]lintWarning, 0)
	lintStatements("<script>", stmts, &warnings)

	sort.SliceStable(warnings, func(i, j int) bool {
		if warnings[i].Line != warnings[j].Line {
			return warnings[i].Line < warnings[j].Line
		}
		return warnings[i].Function < warnings[j].Function
	})

	return warnings
}

// lintStatements reports statements that follow a return or break in the
// same block and reports whether the block always leaves early.
func lintStatements(function string, statements []lox.Stmt, warnings *[]lintWarning) bool {
	terminated := false
	for _, stmt := range statements {
		if terminated {
			*warnings = append(*warnings, lintWarning{
				Function: function,
				Line:     stmt.Line(),
				Message:  "unreachable statement",
			})
			continue
		}
		if statementTerminates(function, stmt, warnings) {
			terminated = true
		}
	}
	return terminated
}

func statementTerminates(function string, stmt lox.Stmt, warnings *[]lintWarning) bool {
	switch typed := stmt.(type) {
	case *lox.ReturnStmt:
		lintExpr(function, typed.Value, warnings)
		return true
	case *lox.BreakStmt:
		return true
	case *lox.ExprStmt:
		lintExpr(function, typed.Expr, warnings)
		return false
	case *lox.PrintStmt:
		lintExpr(function, typed.Expr, warnings)
		return false
	case *lox.VarStmt:
		lintExpr(function, typed.Initializer, warnings)
		return false
	case *lox.BlockStmt:
		return lintStatements(function, typed.Statements, warnings)
	case *lox.IfStmt:
		lintExpr(function, typed.Condition, warnings)
		thenTerminated := statementTerminates(function, typed.Then, warnings)
		if typed.Else == nil {
			return false
		}
		elseTerminated := statementTerminates(function, typed.Else, warnings)
		return thenTerminated && elseTerminated
	case *lox.WhileStmt:
		lintExpr(function, typed.Condition, warnings)
		statementTerminates(function, typed.Body, warnings)
		return false
	case *lox.FunctionStmt:
		lintStatements(typed.Name.Lexeme, typed.Body, warnings)
		return false
	case *lox.ClassStmt:
		for _, method := range typed.Methods {
			lintStatements(typed.Name.Lexeme+"."+method.Name.Lexeme, method.Body, warnings)
		}
		for _, method := range typed.ClassMethods {
			lintStatements(typed.Name.Lexeme+"."+method.Name.Lexeme, method.Body, warnings)
		}
		return false
	default:
		return false
	}
}

// lintExpr finds anonymous functions nested in expr and lints their bodies.
func lintExpr(function string, expr lox.Expr, warnings *[]lintWarning) {
	switch typed := expr.(type) {
	case *lox.LambdaExpr:
		lintStatements(function+".<lambda>", typed.Body, warnings)
	case *lox.GroupingExpr:
		lintExpr(function, typed.Inner, warnings)
	case *lox.UnaryExpr:
		lintExpr(function, typed.Right, warnings)
	case *lox.BinaryExpr:
		lintExpr(function, typed.Left, warnings)
		lintExpr(function, typed.Right, warnings)
	case *lox.LogicalExpr:
		lintExpr(function, typed.Left, warnings)
		lintExpr(function, typed.Right, warnings)
	case *lox.AssignExpr:
		lintExpr(function, typed.Value, warnings)
	case *lox.CallExpr:
		lintExpr(function, typed.Callee, warnings)
		for _, arg := range typed.Args {
			lintExpr(function, arg, warnings)
		}
	case *lox.GetExpr:
		lintExpr(function, typed.Object, warnings)
	case *lox.SetExpr:
		lintExpr(function, typed.Object, warnings)
		lintExpr(function, typed.Value, warnings)
	}
}
