package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for REPL output.
var printlnFn = fmt.Println

const (
	helpLoggedOut = "Available commands: register, login, help, exit"
	helpLoggedIn  = "Available commands: add, (l)ist, done <id>, toggle <id>, show <id>, delete <id>, clear, wipe, export, import <key>, whoami, logout, help, exit"
)

// execIface is the command surface the REPL dispatches to. App implements
// it; tests use a stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Add(ctx context.Context) error
	List(ctx context.Context) error
	Done(ctx context.Context, id string) error
	Toggle(ctx context.Context, id string) error
	Show(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
	Wipe(ctx context.Context) error
	Export(ctx context.Context) error
	Import(ctx context.Context, key string) error
}

type lineReader interface {
	ReadLine(prompt string) (string, error)
}

// runREPL reads commands until "exit", "quit" or end of input. Command
// errors are reported and the loop continues.
func runREPL(ctx context.Context, a execIface, r lineReader, statusFn func() string) {
	for {
		if ctx.Err() != nil {
			return
		}

		line, err := r.ReadLine(prompt(statusFn()))
		if err != nil {
			if errors.Is(err, ErrInterrupted) {
				printlnFn("Use 'exit' or 'quit' to exit the program.")
				continue
			}
			if !errors.Is(err, io.EOF) {
				printlnFn("Error:", err)
			}
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := strings.ToLower(parts[0]), parts[1:]

		if cmd == "exit" || cmd == "quit" {
			printlnFn("Bye!")
			return
		}

		if err := dispatch(ctx, a, cmd, args); err != nil {
			printlnFn("Error:", describeError(err))
		}
	}
}

func prompt(status string) string {
	if status == "" {
		return "todo> "
	}
	return fmt.Sprintf("todo %s> ", status)
}

// dispatch runs one command. Commands that need a session or an argument
// print a hint instead of running.
func dispatch(ctx context.Context, a execIface, cmd string, args []string) error {
	switch cmd {
	case "help":
		if a.isLoggedIn() {
			printlnFn(helpLoggedIn)
		} else {
			printlnFn(helpLoggedOut)
		}
		return nil
	case "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx)
	}

	handler, ok := loggedInCommands[cmd]
	if !ok {
		printlnFn("Unknown command:", cmd)
		return nil
	}
	if !a.isLoggedIn() {
		printlnFn("Please log in first.")
		return nil
	}
	if handler.arg != "" && len(args) == 0 {
		printlnFn(fmt.Sprintf("Usage: %s <%s>", cmd, handler.arg))
		return nil
	}

	arg := ""
	if len(args) > 0 {
		arg = args[0]
	}
	return handler.run(ctx, a, arg)
}

type command struct {
	arg string
	run func(ctx context.Context, a execIface, arg string) error
}

var loggedInCommands = map[string]command{
	"logout": {run: func(ctx context.Context, a execIface, _ string) error { return a.Logout(ctx) }},
	"whoami": {run: func(ctx context.Context, a execIface, _ string) error { return a.WhoAmI(ctx) }},
	"add":    {run: func(ctx context.Context, a execIface, _ string) error { return a.Add(ctx) }},
	"list":   {run: func(ctx context.Context, a execIface, _ string) error { return a.List(ctx) }},
	"l":      {run: func(ctx context.Context, a execIface, _ string) error { return a.List(ctx) }},
	"done":   {arg: "id", run: func(ctx context.Context, a execIface, id string) error { return a.Done(ctx, id) }},
	"toggle": {arg: "id", run: func(ctx context.Context, a execIface, id string) error { return a.Toggle(ctx, id) }},
	"show":   {arg: "id", run: func(ctx context.Context, a execIface, id string) error { return a.Show(ctx, id) }},
	"delete": {arg: "id", run: func(ctx context.Context, a execIface, id string) error { return a.Delete(ctx, id) }},
	"clear":  {run: func(ctx context.Context, a execIface, _ string) error { return a.Clear(ctx) }},
	"wipe":   {run: func(ctx context.Context, a execIface, _ string) error { return a.Wipe(ctx) }},
	"export": {run: func(ctx context.Context, a execIface, _ string) error { return a.Export(ctx) }},
	"import": {arg: "key", run: func(ctx context.Context, a execIface, key string) error { return a.Import(ctx, key) }},
}
