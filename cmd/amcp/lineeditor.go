package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/ergochat/readline"
	"golang.org/x/term"

	"github.com/casparctl/amcp/amcpprotocol"
)

// historySize is the maximum number of history entries kept.
const historySize = 500

// LineEditor reads console input. On a terminal it uses readline for
// editing, history and tab completion; otherwise it scans stdin line by
// line so piped scripts work.
type LineEditor struct {
	interactive bool

	rl *readline.Instance

	scanner *bufio.Scanner

	// out receives prompts in non-interactive mode.
	out io.Writer
}

// NewLineEditor picks interactive or piped mode from the state of stdin.
// historyPath is only used in interactive mode.
func NewLineEditor(historyPath string) *LineEditor {
	isInteractive := term.IsTerminal(int(os.Stdin.Fd())) &&
		os.Getenv("INSIDE_EMACS") == ""

	if !isInteractive {
		return newScannerEditor(os.Stdin, os.Stdout)
	}

	rl, err := readline.NewFromConfig(&readline.Config{
		Prompt:                 "",
		HistoryFile:            historyPath,
		HistoryLimit:           historySize,
		DisableAutoSaveHistory: true,
		AutoComplete:           newCommandCompleter(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: readline init failed (%v), using basic input\n", err)
		return newScannerEditor(os.Stdin, os.Stdout)
	}

	return &LineEditor{
		interactive: true,
		rl:          rl,
		out:         os.Stdout,
	}
}

func newScannerEditor(in io.Reader, out io.Writer) *LineEditor {
	return &LineEditor{
		scanner: bufio.NewScanner(in),
		out:     out,
	}
}

// GetLine shows prompt and returns the next line without its terminator.
// Ctrl-C, Ctrl-D and end of input all return io.EOF.
func (le *LineEditor) GetLine(prompt string) (string, error) {
	if le.interactive {
		return le.getInteractiveLine(prompt)
	}
	return le.getNonInteractiveLine(prompt)
}

func (le *LineEditor) getInteractiveLine(prompt string) (string, error) {
	le.rl.SetPrompt(prompt)

	line, err := le.rl.Readline()
	if err != nil {
		if err == readline.ErrInterrupt {
			return "", io.EOF
		}
		return "", err
	}

	if trimmed := strings.TrimSpace(line); trimmed != "" {
		le.rl.SaveToHistory(trimmed)
	}
	return line, nil
}

func (le *LineEditor) getNonInteractiveLine(prompt string) (string, error) {
	fmt.Fprint(le.out, prompt)

	if !le.scanner.Scan() {
		if err := le.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return le.scanner.Text(), nil
}

// Close restores the terminal. Safe to call more than once.
func (le *LineEditor) Close() {
	if le.rl != nil {
		le.rl.Close()
		le.rl = nil
	}
}

// IsInteractive reports whether readline is in use.
func (le *LineEditor) IsInteractive() bool {
	return le.interactive
}

// commandCompleter completes AMCP command tokens and console dot-commands
// at the start of the line, case-insensitively.
type commandCompleter struct {
	words []string
}

func newCommandCompleter() *commandCompleter {
	var words []string
	for _, cmd := range amcpprotocol.Commands() {
		if cmd == amcpprotocol.CmdError {
			continue
		}
		words = append(words, cmd.String())
	}
	for _, dc := range dotCommands {
		words = append(words, dc.name)
	}
	sort.Strings(words)
	return &commandCompleter{words: words}
}

// Do returns the remaining text of every word that extends the input up to
// pos, plus the length of the input being completed.
func (c *commandCompleter) Do(line []rune, pos int) ([][]rune, int) {
	if pos > len(line) {
		pos = len(line)
	}
	prefix := string(line[:pos])
	if strings.TrimLeft(prefix, " \t") != prefix {
		return nil, 0
	}

	upper := strings.ToUpper(prefix)
	var out [][]rune
	for _, word := range c.words {
		if len(word) <= len(prefix) || !strings.HasPrefix(strings.ToUpper(word), upper) {
			continue
		}
		out = append(out, []rune(word[len(prefix):]+" "))
	}
	return out, pos
}
