package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/dmitrijs2005/todokeeper/internal/datemask"
	"golang.org/x/term"
)

// ErrInterrupted is returned by ReadLine when the user presses Ctrl+C.
var ErrInterrupted = errors.New("interrupted")

// readPassword and isTerminal are test seams for golang.org/x/term.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

// Prompter reads user input. ReadLine returns io.EOF when input ends.
type Prompter interface {
	ReadLine(prompt string) (string, error)
	ReadPassword(prompt string) (string, error)
	// ReadDate reads a date, masking it as dd/MM/yyyy while typing when the
	// implementation supports it.
	ReadDate(prompt string) (string, error)
	Close() error
}

// NewPrompter returns a readline prompter when in is a terminal and a plain
// line reader otherwise.
func NewPrompter(in *os.File, out io.Writer, historyFile string) (Prompter, error) {
	if !isTerminal(int(in.Fd())) {
		return newLinePrompter(in, out, int(in.Fd())), nil
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize readline: %w", err)
	}
	return &readlinePrompter{rl: rl}, nil
}

type readlinePrompter struct {
	rl *readline.Instance
}

func (p *readlinePrompter) ReadLine(prompt string) (string, error) {
	p.rl.SetPrompt(prompt)
	line, err := p.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		return "", ErrInterrupted
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (p *readlinePrompter) ReadPassword(prompt string) (string, error) {
	pw, err := p.rl.ReadPassword(prompt)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

func (p *readlinePrompter) ReadDate(prompt string) (string, error) {
	p.rl.Config.Listener = &dateListener{}
	defer func() { p.rl.Config.Listener = nil }()
	return p.ReadLine(prompt)
}

func (p *readlinePrompter) Close() error {
	return p.rl.Close()
}

// dateListener rewrites the edit buffer to the masked form after every key.
// The cursor is mapped from its position among the digits to the masked
// offset, and a backspace that only removed a separator removes the digit
// before it as well.
type dateListener struct {
	prev string
}

func (l *dateListener) OnChange(line []rune, pos int, key rune) ([]rune, int, bool) {
	if pos > len(line) {
		pos = len(line)
	}

	digits := datemask.Digits(string(line))
	rawPos := len(datemask.Digits(string(line[:pos])))

	if (key == readline.CharBackspace || key == readline.CharCtrlH) && digits == l.prev && rawPos > 0 {
		digits = digits[:rawPos-1] + digits[rawPos:]
		rawPos--
	}
	l.prev = digits

	masked := []rune(datemask.Format(digits))
	newPos := datemask.ToMasked(rawPos)
	if newPos > len(masked) {
		newPos = len(masked)
	}

	if string(masked) == string(line) && newPos == pos {
		return nil, 0, false
	}
	return masked, newPos, true
}

// linePrompter reads from a plain reader. Passwords are read without echo
// when fd is a terminal.
type linePrompter struct {
	reader *bufio.Reader
	w      io.Writer
	fd     int
}

func newLinePrompter(r io.Reader, w io.Writer, fd int) *linePrompter {
	return &linePrompter{reader: bufio.NewReader(r), w: w, fd: fd}
}

// ReadLine prints prompt and returns the next trimmed line.
func (p *linePrompter) ReadLine(prompt string) (string, error) {
	line, err := p.readRaw(prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// readRaw prints prompt and returns the next line without its line ending.
// A final line without a newline is still returned.
func (p *linePrompter) readRaw(prompt string) (string, error) {
	if _, err := fmt.Fprint(p.w, prompt); err != nil {
		return "", err
	}
	line, err := p.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
		return "", err
	}
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r"), nil
}

// ReadPassword returns the password as typed; surrounding spaces are kept.
func (p *linePrompter) ReadPassword(prompt string) (string, error) {
	if !isTerminal(p.fd) {
		return p.readRaw(prompt)
	}

	if _, err := fmt.Fprint(p.w, prompt); err != nil {
		return "", err
	}
	pw, err := readPassword(p.fd)
	fmt.Fprintln(p.w)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

func (p *linePrompter) ReadDate(prompt string) (string, error) {
	return p.ReadLine(prompt)
}

func (p *linePrompter) Close() error { return nil }
