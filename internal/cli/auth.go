package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/todokeeper/internal/validation"
)

// Register prompts for the registration form and creates the account. It
// does not log the new user in.
func (a *App) Register(ctx context.Context) error {
	var in validation.RegisterInput
	var err error

	if in.Name, err = a.prompter.ReadLine("Name: "); err != nil {
		return err
	}
	if in.Username, err = a.prompter.ReadLine("Username: "); err != nil {
		return err
	}
	if in.Email, err = a.prompter.ReadLine("Email: "); err != nil {
		return err
	}
	if in.Password, err = a.prompter.ReadPassword("Password: "); err != nil {
		return err
	}
	if in.ConfirmPassword, err = a.prompter.ReadPassword("Confirm password: "); err != nil {
		return err
	}

	u, err := a.authService.Register(ctx, in)
	if err != nil {
		return a.fail(ctx, "register", err)
	}

	a.println(fmt.Sprintf("Account %q created. Use 'login' to sign in.", u.Username))
	return nil
}

// Login prompts for credentials. An empty username reuses the last one.
// On success the session is persisted and any previous unlock is forgotten.
func (a *App) Login(ctx context.Context) error {
	last, err := a.sessionService.LastUsername(ctx)
	if err != nil {
		a.log.Debug(ctx, "last username unavailable", "error", err)
	}

	label := "Username: "
	if last != "" {
		label = fmt.Sprintf("Username [%s]: ", last)
	}

	username, err := a.prompter.ReadLine(label)
	if err != nil {
		return err
	}
	if username == "" {
		username = last
	}

	password, err := a.prompter.ReadPassword("Password: ")
	if err != nil {
		return err
	}

	u, err := a.authService.Login(ctx, validation.LoginInput{Username: username, Password: password})
	if err != nil {
		return a.fail(ctx, "login", err)
	}

	a.setUser(u)
	if err := a.sessionService.Issue(ctx, u); err != nil {
		a.log.Warn(ctx, "session not saved", "error", err)
	}

	a.println(fmt.Sprintf("Hello, %s!", u.Name))
	return nil
}

// Logout forgets the stored session.
func (a *App) Logout(ctx context.Context) error {
	if err := a.sessionService.Clear(ctx); err != nil {
		return a.fail(ctx, "logout", err)
	}
	a.setUser(nil)
	a.println("Logged out.")
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	a.println(fmt.Sprintf("%s (%s) <%s>", a.user.Name, a.user.Username, a.user.Email))
	return nil
}

// fail logs err and returns it. Errors the user cannot act on are logged at
// error level.
func (a *App) fail(ctx context.Context, op string, err error) error {
	if describeError(err) == internalMessage {
		a.log.Error(ctx, "command failed", "command", op, "error", err)
	} else {
		a.log.Debug(ctx, "command rejected", "command", op, "error", err)
	}
	return err
}
