package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/todokeeper/internal/models"
	"github.com/dmitrijs2005/todokeeper/internal/validation"
)

func (a *App) Add(ctx context.Context) error {
	date, err := a.prompter.ReadDate("Date (dd/MM/yyyy): ")
	if err != nil {
		return err
	}
	text, err := a.prompter.ReadLine("Task: ")
	if err != nil {
		return err
	}

	v, err := a.taskService.Add(ctx, a.user.ID, validation.TaskInput{Date: date, Text: text})
	if err != nil {
		return a.fail(ctx, "add", err)
	}

	a.println(fmt.Sprintf("Added task #%d (encrypted).", v.ID))
	return nil
}

func (a *App) List(ctx context.Context) error {
	items, err := a.taskService.List(ctx, a.user.ID)
	if err != nil {
		return a.fail(ctx, "list", err)
	}

	if len(items) == 0 {
		a.println("No tasks.")
		return nil
	}
	for i := range items {
		a.println(formatTask(&items[i]))
	}
	return nil
}

func (a *App) Done(ctx context.Context, arg string) error {
	id, err := parseID(arg)
	if err != nil {
		return err
	}

	v, err := a.taskService.ToggleDone(ctx, a.user.ID, id)
	if err != nil {
		return a.fail(ctx, "done", err)
	}

	state := "not done"
	if v.Done {
		state = "done"
	}
	a.println(fmt.Sprintf("Task #%d marked %s.", v.ID, state))
	return nil
}

// Toggle flips how a task is stored. Decrypting asks for unlock.
func (a *App) Toggle(ctx context.Context, arg string) error {
	id, err := parseID(arg)
	if err != nil {
		return err
	}

	v, err := a.taskService.ToggleEncryption(ctx, a.user.ID, id)
	if err != nil {
		return a.fail(ctx, "toggle", err)
	}

	if v.Encrypted {
		a.println(fmt.Sprintf("Task #%d encrypted.", v.ID))
	} else {
		a.println(fmt.Sprintf("Task #%d stored decrypted.", v.ID))
		a.println(formatTask(v))
	}
	return nil
}

// Show prints a task in plaintext without changing how it is stored.
func (a *App) Show(ctx context.Context, arg string) error {
	id, err := parseID(arg)
	if err != nil {
		return err
	}

	v, err := a.taskService.Reveal(ctx, a.user.ID, id)
	if err != nil {
		return a.fail(ctx, "show", err)
	}

	a.println(formatTask(v))
	return nil
}

func (a *App) Delete(ctx context.Context, arg string) error {
	id, err := parseID(arg)
	if err != nil {
		return err
	}

	if err := a.taskService.Delete(ctx, a.user.ID, id); err != nil {
		return a.fail(ctx, "delete", err)
	}

	a.println(fmt.Sprintf("Task #%d deleted.", id))
	return nil
}

// Clear deletes every task of the current user after confirmation.
func (a *App) Clear(ctx context.Context) error {
	ok, err := a.confirm("Delete all your tasks?")
	if err != nil || !ok {
		return err
	}

	n, err := a.taskService.DeleteAllForUser(ctx, a.user.ID)
	if err != nil {
		return a.fail(ctx, "clear", err)
	}

	a.println(fmt.Sprintf("Deleted %d task(s).", n))
	return nil
}

// Wipe deletes the tasks of every user after confirmation.
func (a *App) Wipe(ctx context.Context) error {
	ok, err := a.confirm("Delete the tasks of ALL users?")
	if err != nil || !ok {
		return err
	}

	n, err := a.taskService.DeleteAll(ctx)
	if err != nil {
		return a.fail(ctx, "wipe", err)
	}

	a.println(fmt.Sprintf("Deleted %d task(s).", n))
	return nil
}

func (a *App) confirm(question string) (bool, error) {
	answer, err := a.prompter.ReadLine(question + " [y/N]: ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	a.println("Cancelled.")
	return false, nil
}

// formatTask renders one line: id, done box, date, text and a lock marker
// for encrypted tasks that were not revealed.
func formatTask(v *models.TaskView) string {
	box := "[ ]"
	if v.Done {
		box = "[x]"
	}

	line := fmt.Sprintf("#%-4d %s %-10s  %s", v.ID, box, v.Date, v.Text)
	switch {
	case v.Revealed:
		line += "  (revealed)"
	case v.Encrypted:
		line += "  (encrypted)"
	}
	return line
}
