package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExec struct {
	loggedIn bool
	err      error
	calls    []string
}

func (f *fakeExec) record(call string) error {
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Register(context.Context) error { return f.record("register") }
func (f *fakeExec) Login(context.Context) error {
	f.loggedIn = true
	return f.record("login")
}
func (f *fakeExec) Logout(context.Context) error {
	f.loggedIn = false
	return f.record("logout")
}
func (f *fakeExec) WhoAmI(context.Context) error { return f.record("whoami") }
func (f *fakeExec) Add(context.Context) error { return f.record("add") }
func (f *fakeExec) List(context.Context) error { return f.record("list") }
func (f *fakeExec) Done(_ context.Context, id string) error { return f.record("done " + id) }
func (f *fakeExec) Toggle(_ context.Context, id string) error { return f.record("toggle " + id) }
func (f *fakeExec) Show(_ context.Context, id string) error { return f.record("show " + id) }
func (f *fakeExec) Delete(_ context.Context, id string) error { return f.record("delete " + id) }
func (f *fakeExec) Clear(context.Context) error { return f.record("clear") }
func (f *fakeExec) Wipe(context.Context) error { return f.record("wipe") }
func (f *fakeExec) Export(context.Context) error { return f.record("export") }
func (f *fakeExec) Import(_ context.Context, key string) error { return f.record("import " + key) }

// scriptReader returns queued lines, then errs.
type scriptReader struct {
	lines   []string
	errs    []error
	prompts []string
}

func (r *scriptReader) ReadLine(prompt string) (string, error) {
	r.prompts = append(r.prompts, prompt)
	if len(r.lines) == 0 {
		if len(r.errs) == 0 {
			return "", io.EOF
		}
		err := r.errs[0]
		r.errs = r.errs[1:]
		return "", err
	}
	line := r.lines[0]
	r.lines = r.lines[1:]
	return line, nil
}

func captureOutput(t *testing.T) *[]string {
	t.Helper()
	var out []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		out = append(out, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &out
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	out := captureOutput(t)

	r := &scriptReader{lines: []string{
		"help",
		"list",
		"login",
		"help",
		"add",
		"l",
		"DONE 3",
		"toggle 3",
		"show 3",
		"delete 3",
		"clear",
		"wipe",
		"export",
		"import backups/a.json",
		"whoami",
		"logout",
		"exit",
		"list",
	}}
	exec := &fakeExec{}

	runREPL(context.Background(), exec, r, func() string { return "" })

	assert.Equal(t, []string{
		"login", "add", "list", "done 3", "toggle 3", "show 3", "delete 3",
		"clear", "wipe", "export", "import backups/a.json", "whoami", "logout",
	}, exec.calls)
	assert.Equal(t, helpLoggedOut, (*out)[0])
	assert.Equal(t, "Please log in first.", (*out)[1])
	assert.Equal(t, helpLoggedIn, (*out)[2])
	assert.Equal(t, "Bye!", (*out)[len(*out)-1])
}

func TestRunREPL_UsageUnknownAndErrors(t *testing.T) {
	out := captureOutput(t)

	r := &scriptReader{lines: []string{"", "done", "import", "frobnicate", "list"}}
	exec := &fakeExec{loggedIn: true, err: errInvalidID}

	runREPL(context.Background(), exec, r, func() string { return "(alice)" })

	assert.Equal(t, []string{"list"}, exec.calls)
	require.Len(t, *out, 4)
	assert.Equal(t, "Usage: done <id>", (*out)[0])
	assert.Equal(t, "Usage: import <key>", (*out)[1])
	assert.Equal(t, "Unknown command: frobnicate", (*out)[2])
	assert.Equal(t, "Error: "+errInvalidID.Error(), (*out)[3])
	assert.Equal(t, "todo (alice)> ", r.prompts[0])
}

func TestRunREPL_InterruptContinuesOtherErrorsStop(t *testing.T) {
	out := captureOutput(t)

	r := &scriptReader{errs: []error{ErrInterrupted, errors.New("read failed")}}
	runREPL(context.Background(), &fakeExec{}, r, func() string { return "" })

	require.Len(t, *out, 2)
	assert.Contains(t, (*out)[0], "exit")
	assert.Equal(t, "Error: read failed", (*out)[1])
}

func TestRunREPL_StopsOnCancelledContext(t *testing.T) {
	captureOutput(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &scriptReader{lines: []string{"login"}}
	exec := &fakeExec{}
	runREPL(ctx, exec, r, func() string { return "" })

	assert.Empty(t, exec.calls)
}
