// Command tcc compiles a single tcc source file straight to x86-64
// assembly text on stdout. There is no linker invocation, no output
// file flag, nothing beyond the one pipeline — point it at a file and
// it prints assembly or it prints why it couldn't.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/tinycc/tcc/ast"
	"github.com/tinycc/tcc/codegen"
	"github.com/tinycc/tcc/ir"
	"github.com/tinycc/tcc/lexer"
	"github.com/tinycc/tcc/parsetree"
	"github.com/tinycc/tcc/sema"
	"github.com/tinycc/tcc/tcerr"
)

var (
	redColor    = color.New(color.FgRed, color.Bold)
	cyanColor   = color.New(color.FgCyan)
	yellowColor = color.New(color.FgYellow)
)

func main() {
	if len(os.Args) < 2 {
		fail(tcerr.New(tcerr.Syntax, "usage: tcc <source-file>"))
	}
	path := os.Args[len(os.Args)-1]

	src, err := os.ReadFile(path)
	if err != nil {
		fail(fmt.Errorf("reading %s: %w", path, err))
	}

	asm, err := compile(string(src))
	if err != nil {
		fail(err)
	}
	fmt.Print(asm)
}

func debugEnabled() bool { return os.Getenv("TCC_DEBUG") != "" }

func debugStage(name string) {
	if debugEnabled() {
		cyanColor.Fprintf(os.Stderr, "=== %s ===\n", name)
	}
}

func compile(src string) (string, error) {
	debugStage("lex")
	tokens := lexer.Scan(src)
	if debugEnabled() {
		for _, tok := range tokens {
			fmt.Fprintf(os.Stderr, "%s %q\n", tok.Kind, tok.Lexeme)
		}
	}

	debugStage("parse")
	tree, err := parsetree.New(tokens).Parse()
	if err != nil {
		return "", err
	}

	debugStage("build ast")
	prog, err := ast.Build(tree)
	if err != nil {
		return "", err
	}

	debugStage("analyze")
	if err := sema.Analyze(prog); err != nil {
		return "", err
	}
	if debugEnabled() {
		v := &ast.DebugPrintVisitor{}
		prog.Accept(v)
		yellowColor.Fprint(os.Stderr, v.String())
	}

	debugStage("translate")
	instrs := (&ir.Translator{}).Translate(prog)
	if debugEnabled() {
		for _, in := range instrs {
			fmt.Fprintln(os.Stderr, in.String())
		}
	}

	debugStage("generate")
	return codegen.Generate(instrs), nil
}

// fail prints a single fatal message and exits 1. Every pipeline
// error reaches here, colorized the same way regardless of which
// stage raised it; there is no stderr output path for a compile
// error, only stdout, matching how the rest of this tool's messages
// are shown to a terminal.
func fail(err error) {
	redColor.Fprintf(os.Stdout, "fatal: ")
	fmt.Fprintln(os.Stdout, err)
	os.Exit(1)
}
