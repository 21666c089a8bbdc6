package main

import (
	"fmt"
	"io"

	"golox/ast"
	"golox/config"
	"golox/interpreter"
	"golox/lexer"
	"golox/parser"
)

type runOptions struct {
	dumpTokens bool
	dumpAST    bool
	out        io.Writer
	errOut     io.Writer
}

func optionsFor(cfg *config.Config, out, errOut io.Writer) runOptions {
	return runOptions{
		dumpTokens: cfg.DumpTokens,
		dumpAST:    cfg.DumpAST,
		out:        out,
		errOut:     errOut,
	}
}

// newSession builds an interpreter writing to out/errOut with the configured
// natives installed.
func newSession(cfg *config.Config, out, errOut io.Writer) (*interpreter.Interpreter, error) {
	in := interpreter.New()
	in.SetOutput(out)
	in.SetErrorOutput(errOut)
	if err := in.InstallNatives(cfg.Natives...); err != nil {
		return nil, err
	}
	return in, nil
}

// compileAndRun is used for script execution (fresh interpreter each time).
func compileAndRun(cfg *config.Config, filename, src string, out, errOut io.Writer) error {
	in, err := newSession(cfg, out, errOut)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return err
	}
	return compileAndRunWith(in, filename, src, optionsFor(cfg, out, errOut))
}

// compileAndRunWith runs src on an existing interpreter, which is what keeps
// the REPL stateful across inputs. Every error is reported on opts.errOut
// before it is returned.
func compileAndRunWith(in *interpreter.Interpreter, filename, src string, opts runOptions) error {
	tokens, err := lexer.Scan(src)
	if err != nil {
		fmt.Fprintln(opts.errOut, err)
		return err
	}
	if opts.dumpTokens {
		for _, tok := range tokens {
			fmt.Fprintln(opts.out, tok)
		}
	}

	stmts, err := parser.Parse(tokens)
	if err != nil {
		// nothing runs when any statement failed to parse
		fmt.Fprintln(opts.errOut, err)
		return err
	}
	if opts.dumpAST {
		fmt.Fprint(opts.out, ast.Dump(stmts))
	}

	in.SetSource(filename, src)
	return in.Interpret(stmts)
}
