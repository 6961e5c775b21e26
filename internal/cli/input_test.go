package cli

import (
	"bytes"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/chzyer/readline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubTerminal(t *testing.T, terminal bool) {
	t.Helper()
	orig := isTerminal
	isTerminal = func(int) bool { return terminal }
	t.Cleanup(func() { isTerminal = orig })
}

func TestLinePrompter_ReadLine(t *testing.T) {
	var out bytes.Buffer
	p := newLinePrompter(strings.NewReader("  hello world \nlast"), &out, 0)

	got, err := p.ReadLine("Name: ")
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)
	assert.Equal(t, "Name: ", out.String())

	got, err = p.ReadLine("> ")
	require.NoError(t, err)
	assert.Equal(t, "last", got)

	_, err = p.ReadLine("> ")
	assert.ErrorIs(t, err, io.EOF)
}

func TestLinePrompter_ReadPasswordFromPipe(t *testing.T) {
	stubTerminal(t, false)

	var out bytes.Buffer
	p := newLinePrompter(strings.NewReader("secret1\n"), &out, 0)

	got, err := p.ReadPassword("Password: ")
	require.NoError(t, err)
	assert.Equal(t, "secret1", got)
}

func TestLinePrompter_ReadPasswordKeepsSpaces(t *testing.T) {
	stubTerminal(t, false)

	var out bytes.Buffer
	p := newLinePrompter(strings.NewReader("  pass word \r\n\tlast "), &out, 0)

	got, err := p.ReadPassword("Password: ")
	require.NoError(t, err)
	assert.Equal(t, "  pass word ", got)

	got, err = p.ReadPassword("Password: ")
	require.NoError(t, err)
	assert.Equal(t, "\tlast ", got)
}

func TestLinePrompter_ReadPasswordFromTerminal(t *testing.T) {
	stubTerminal(t, true)

	orig := readPassword
	t.Cleanup(func() { readPassword = orig })

	var gotFD int
	readPassword = func(fd int) ([]byte, error) {
		gotFD = fd
		return []byte("pw"), nil
	}

	var out bytes.Buffer
	p := newLinePrompter(strings.NewReader(""), &out, 7)

	got, err := p.ReadPassword("Password: ")
	require.NoError(t, err)
	assert.Equal(t, "pw", got)
	assert.Equal(t, 7, gotFD)
	assert.Equal(t, "Password: \n", out.String())

	readPassword = func(int) ([]byte, error) { return nil, errors.New("tty gone") }
	_, err = p.ReadPassword("Password: ")
	assert.Error(t, err)
}

func TestNewPrompter_NonTerminalUsesLineReader(t *testing.T) {
	stubTerminal(t, false)

	p, err := NewPrompter(os.Stdin, io.Discard, "")
	require.NoError(t, err)
	_, ok := p.(*linePrompter)
	assert.True(t, ok)
	assert.NoError(t, p.Close())
}

func TestDateListener_MasksWhileTyping(t *testing.T) {
	l := &dateListener{}

	var line []rune
	pos := 0
	for _, r := range "01022024" {
		line = append(line[:pos], append([]rune{r}, line[pos:]...)...)
		pos++
		if nl, np, ok := l.OnChange(line, pos, r); ok {
			line, pos = nl, np
		}
	}

	assert.Equal(t, "01/02/2024", string(line))
	assert.Equal(t, 10, pos)
}

func TestDateListener_SeparatorAfterSecondDigit(t *testing.T) {
	l := &dateListener{}

	line, pos, ok := l.OnChange([]rune("12"), 2, '2')
	require.True(t, ok)
	assert.Equal(t, "12/", string(line))
	assert.Equal(t, 3, pos)
}

func TestDateListener_BackspaceOverSeparatorDropsDigit(t *testing.T) {
	l := &dateListener{}

	line, pos, ok := l.OnChange([]rune("12"), 2, '2')
	require.True(t, ok)
	require.Equal(t, "12/", string(line))

	// Backspace removed the '/', leaving "12" with the cursor at the end.
	line, pos, ok = l.OnChange(line[:pos-1], pos-1, readline.CharBackspace)
	require.True(t, ok)
	assert.Equal(t, "1", string(line))
	assert.Equal(t, 1, pos)
}

func TestDateListener_IgnoresNonDigits(t *testing.T) {
	l := &dateListener{}

	line, pos, ok := l.OnChange([]rune("1a"), 2, 'a')
	require.True(t, ok)
	assert.Equal(t, "1", string(line))
	assert.Equal(t, 1, pos)

	_, _, ok = l.OnChange([]rune("1"), 1, 0)
	assert.False(t, ok)
}
