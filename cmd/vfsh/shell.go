package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/coreblock/vfsimg/fsys"
)

// shell is the REPL loop over an open *fsys.FS. It owns no filesystem state
// of its own beyond the line reader; all namespace state lives in fs.
type shell struct {
	fs     *fsys.FS
	in     *bufio.Scanner
	out    io.Writer
	colour bool
}

func newShell(fs *fsys.FS, in io.Reader, out *os.File) *shell {
	colour := isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd())
	return &shell{fs: fs, in: bufio.NewScanner(in), out: out, colour: colour}
}

// run reads and dispatches commands until EOF (or "exit"), returning the
// process exit code.
func (sh *shell) run() int {
	for {
		sh.printPrompt()
		if !sh.in.Scan() {
			fmt.Fprintln(sh.out)
			return 0
		}

		line := strings.TrimSpace(sh.in.Text())
		if line == "" {
			continue
		}

		args, err := tokenize(line)
		if err != nil {
			fmt.Fprintf(sh.out, "vfsh: %s\n", err)
			continue
		}

		cmd, rest := args[0], args[1:]
		if cmd == "exit" || cmd == "quit" {
			return 0
		}

		handler, ok := commands[cmd]
		if !ok {
			fmt.Fprintf(sh.out, "%s: command not found\n", cmd)
			continue
		}
		if err := handler(sh, rest); err != nil {
			fmt.Fprintf(sh.out, "%s: %s\n", cmd, unwrapMessage(err))
		}
	}
}

// unwrapMessage renders err the way the teacher's CLI tools do: just the
// message, since the command name prefix is already added by the caller.
func unwrapMessage(err error) string {
	return err.Error()
}

func (sh *shell) printPrompt() {
	path, err := sh.fs.Path()
	if err != nil {
		path = "?"
	}
	if sh.colour {
		fmt.Fprintf(sh.out, "\x1b[36m%s\x1b[0m:\x1b[32m%s\x1b[0m$ ", sh.fs.User(), path)
	} else {
		fmt.Fprintf(sh.out, "%s:%s$ ", sh.fs.User(), path)
	}
}

// tokenize splits a command line on whitespace, honoring double-quoted
// substrings so "echo f \"two words\"" preserves the embedded space. An
// unterminated quote is reported as an error rather than silently dropped.
func tokenize(line string) ([]string, error) {
	var tokens []string
	var cur strings.Builder
	inQuotes := false
	started := false

	flush := func() {
		if started {
			tokens = append(tokens, cur.String())
			cur.Reset()
			started = false
		}
	}

	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			started = true
		case r == ' ' || r == '\t':
			if inQuotes {
				cur.WriteRune(r)
			} else {
				flush()
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	flush()

	if inQuotes {
		return nil, errors.New("unterminated quoted string")
	}
	if len(tokens) == 0 {
		return nil, errors.New("empty command")
	}
	return tokens, nil
}
