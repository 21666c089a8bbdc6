package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chzyer/readline"

	"golox/config"
	"golox/interpreter"
	"golox/lexer"
	"golox/parser"
)

const (
	banner      = "golox REPL. :help for commands, :quit to exit."
	pastePrompt = "paste> "
)

func runREPL(cfg *config.Config) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            cfg.Prompt,
		HistoryFile:       cfg.HistoryPath(),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	r, err := newREPL(cfg, rl.Stdout(), rl.Stderr())
	if err != nil {
		return err
	}
	fmt.Fprintln(r.out, banner)

	for !r.quit {
		rl.SetPrompt(r.prompt())
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			r.interrupt()
			continue
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(r.out)
			return nil
		}
		if err != nil {
			return err
		}
		r.feed(line)
	}
	return nil
}

// repl holds one interactive session. The interpreter lives as long as the
// session, so globals persist from one input to the next.
type repl struct {
	cfg     *config.Config
	session *interpreter.Interpreter
	out     io.Writer
	errOut  io.Writer

	buf       strings.Builder
	pasteMode bool
	pasteBuf  strings.Builder
	chunk     int
	quit      bool
}

func newREPL(cfg *config.Config, out, errOut io.Writer) (*repl, error) {
	session, err := newSession(cfg, out, errOut)
	if err != nil {
		return nil, err
	}
	return &repl{cfg: cfg, session: session, out: out, errOut: errOut}, nil
}

func (r *repl) prompt() string {
	switch {
	case r.pasteMode:
		return pastePrompt
	case r.buf.Len() > 0:
		return r.cfg.ContinuationPrompt
	default:
		return r.cfg.Prompt
	}
}

// interrupt handles Ctrl+C: drop whatever is buffered.
func (r *repl) interrupt() {
	if r.pasteMode {
		r.pasteMode = false
		r.pasteBuf.Reset()
		fmt.Fprintln(r.out, "^C (paste cancelled)")
		return
	}
	if r.buf.Len() > 0 {
		r.buf.Reset()
		fmt.Fprintln(r.out, "^C (buffer cleared)")
	}
}

// feed consumes one line of input. A chunk runs once it is complete; a blank
// line while buffering runs whatever is there so errors get reported.
func (r *repl) feed(line string) {
	trim := strings.TrimSpace(line)

	if r.pasteMode {
		r.feedPaste(line, trim)
		return
	}

	if r.buf.Len() == 0 {
		if trim == "" {
			return
		}
		if strings.HasPrefix(trim, ":") {
			if err := r.command(trim); err != nil {
				fmt.Fprintln(r.errOut, err)
			}
			return
		}
	}

	r.buf.WriteString(line)
	r.buf.WriteString("\n")
	src := r.buf.String()
	if trim != "" && needsMore(src) {
		return
	}
	r.buf.Reset()
	r.exec(src)
}

func (r *repl) feedPaste(line, trim string) {
	switch trim {
	case ".", ":endpaste":
		src := r.pasteBuf.String()
		r.pasteBuf.Reset()
		r.pasteMode = false
		if strings.TrimSpace(src) == "" {
			fmt.Fprintln(r.out, "(paste buffer empty)")
			return
		}
		r.exec(src)
	case ":cancel":
		r.pasteBuf.Reset()
		r.pasteMode = false
		fmt.Fprintln(r.out, "(paste cancelled)")
	default:
		r.pasteBuf.WriteString(line)
		r.pasteBuf.WriteString("\n")
	}
}

func (r *repl) exec(src string) {
	r.chunk++
	filename := fmt.Sprintf("<repl:%d>", r.chunk)
	// errors are already reported; the session carries on
	_ = compileAndRunWith(r.session, filename, src, optionsFor(r.cfg, r.out, r.errOut))
}

// needsMore reports whether src is the front of a longer input: an open
// brace, an unterminated string, or a parse that only failed at end of input.
func needsMore(src string) bool {
	tokens, err := lexer.Scan(src)
	if err != nil {
		return lexer.IsUnterminated(err)
	}
	if braceDepth(tokens) > 0 {
		return true
	}
	_, err = parser.Parse(tokens)
	return parser.IsIncomplete(err)
}

func braceDepth(tokens []lexer.Token) int {
	depth := 0
	for _, tok := range tokens {
		switch tok.Type {
		case lexer.LBRACE:
			depth++
		case lexer.RBRACE:
			if depth > 0 {
				depth--
			}
		}
	}
	return depth
}

func (r *repl) command(cmd string) error {
	name, arg, _ := strings.Cut(cmd, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case ":q", ":quit", ":exit":
		r.quit = true

	case ":h", ":help":
		fmt.Fprintln(r.out, "Commands:")
		fmt.Fprintln(r.out, "  :help              Show this help")
		fmt.Fprintln(r.out, "  :quit              Exit the REPL")
		fmt.Fprintln(r.out, "  :load <file>       Run a file in this session")
		fmt.Fprintln(r.out, "  :reset             Clear buffered multi-line input")
		fmt.Fprintln(r.out, "  :clear             Clear the screen")
		fmt.Fprintln(r.out, "  :paste             Start paste mode (end with '.' or :endpaste)")
		fmt.Fprintln(r.out, "  :vars              Show global variables")
		fmt.Fprintln(r.out, "  :funcs             Show user-defined functions")
		fmt.Fprintln(r.out)
		fmt.Fprintln(r.out, "Input with an open '{' or a missing ';' continues on the next line.")
		fmt.Fprintln(r.out, "An empty line runs whatever has been typed so far.")

	case ":load":
		if arg == "" {
			return fmt.Errorf("Usage: :load <file>")
		}
		path := arg
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("Failed to read %s: %w", path, err)
		}
		_ = compileAndRunWith(r.session, filepath.Base(path), string(b), optionsFor(r.cfg, r.out, r.errOut))

	case ":reset":
		r.buf.Reset()
		fmt.Fprintln(r.out, "(buffer cleared)")

	case ":clear":
		fmt.Fprint(r.out, "\033[2J\033[H")

	case ":paste":
		r.buf.Reset()
		r.pasteBuf.Reset()
		r.pasteMode = true
		fmt.Fprintln(r.out, "(paste mode: end with '.' or :endpaste, cancel with :cancel)")

	case ":vars":
		globs := r.session.GlobalsSnapshot()
		if len(globs) == 0 {
			fmt.Fprintln(r.out, "(no globals)")
			return nil
		}
		keys := make([]string, 0, len(globs))
		for k := range globs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(r.out, "%s = %v\n", k, globs[k])
		}

	case ":funcs":
		names := r.session.FuncNames()
		if len(names) == 0 {
			fmt.Fprintln(r.out, "(no user functions)")
			return nil
		}
		for _, n := range names {
			fmt.Fprintln(r.out, n)
		}

	case ":config":
		if r.cfg.Path != "" {
			fmt.Fprintf(r.out, "# %s\n", r.cfg.Path)
		}
		return r.cfg.Encode(r.out)

	default:
		fmt.Fprintln(r.out, "Unknown command. Try :help")
	}
	return nil
}
