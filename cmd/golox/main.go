package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golox/config"
)

const appName = "golox"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run returns the process exit status.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to a YAML config file (default ~/"+config.DefaultFileName+")")
	dumpTokens := fs.Bool("tokens", false, "print every token before running")
	dumpAST := fs.Bool("ast", false, "print the parsed program before running")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage:\n  %s [flags] [script]\n\nFlags:\n", appName)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return 2
	}

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	cfg.DumpTokens = cfg.DumpTokens || *dumpTokens
	cfg.DumpAST = cfg.DumpAST || *dumpAST

	if fs.NArg() == 0 {
		if err := runREPL(cfg); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		return 0
	}

	filename := fs.Arg(0)
	src, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(stderr, "Error reading %s: %v\n", filename, err)
		return 1
	}
	if err := compileAndRun(cfg, filepath.Base(filename), string(src), stdout, stderr); err != nil {
		return 1
	}
	return 0
}
