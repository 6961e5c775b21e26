// Package unlock provides the authorization step required before encrypted
// task fields are decrypted.
package unlock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	// ErrDenied is returned when the user fails or cancels authorization.
	ErrDenied = errors.New("unlock denied")
	// ErrWrongPassword is what a VerifyFunc returns for a rejected password.
	// Only this error costs an attempt; any other error ends Authorize as is.
	ErrWrongPassword = errors.New("wrong password")
)

// MaxAttempts is how many password tries PasswordGate allows per Authorize.
const MaxAttempts = 3

// Gate authorizes access to plaintext. reason is shown to the user.
type Gate interface {
	Authorize(ctx context.Context, reason string) error
}

// PasswordReader reads a secret without echo.
type PasswordReader interface {
	ReadPassword(prompt string) (string, error)
}

// VerifyFunc checks a password for the current user.
type VerifyFunc func(ctx context.Context, password string) error

// PasswordGate re-prompts for the account password. After a successful
// unlock further calls pass without prompting until grace elapses; zero
// grace prompts every time.
type PasswordGate struct {
	reader PasswordReader
	verify VerifyFunc
	grace  time.Duration
	now    func() time.Time

	mu       sync.Mutex
	unlocked time.Time
}

func NewPasswordGate(r PasswordReader, verify VerifyFunc, grace time.Duration) *PasswordGate {
	return &PasswordGate{reader: r, verify: verify, grace: grace, now: time.Now}
}

func (g *PasswordGate) Authorize(ctx context.Context, reason string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.grace > 0 && !g.unlocked.IsZero() && g.now().Sub(g.unlocked) < g.grace {
		return nil
	}

	prompt := "Password: "
	if reason != "" {
		prompt = reason + ". Password: "
	}

	var lastErr error
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrDenied, err)
		}

		pw, err := g.reader.ReadPassword(prompt)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrDenied, err)
		}

		if err := g.verify(ctx, pw); err != nil {
			if !errors.Is(err, ErrWrongPassword) {
				return err
			}
			lastErr = err
			continue
		}

		g.unlocked = g.now()
		return nil
	}

	return fmt.Errorf("%w: %v", ErrDenied, lastErr)
}

// Reset forgets a previous unlock, e.g. on logout.
func (g *PasswordGate) Reset() {
	g.mu.Lock()
	g.unlocked = time.Time{}
	g.mu.Unlock()
}

// AllowAll authorizes every request. Use it when unlocking is disabled.
type AllowAll struct{}

func (AllowAll) Authorize(context.Context, string) error { return nil }
