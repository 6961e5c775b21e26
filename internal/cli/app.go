package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/todokeeper/internal/backup"
	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/config"
	"github.com/dmitrijs2005/todokeeper/internal/cryptox"
	"github.com/dmitrijs2005/todokeeper/internal/logging"
	"github.com/dmitrijs2005/todokeeper/internal/models"
	"github.com/dmitrijs2005/todokeeper/internal/services"
	"github.com/dmitrijs2005/todokeeper/internal/storage"
	"github.com/dmitrijs2005/todokeeper/internal/unlock"
	"github.com/google/uuid"
)

type App struct {
	config   *config.Config
	prompter Prompter
	out      io.Writer
	log      logging.Logger

	authService    services.AuthService
	sessionService services.SessionService
	taskService    services.TaskService
	backupService  services.BackupService

	// gate is nil when unlocking is disabled.
	gate *unlock.PasswordGate
	user *models.User
}

// NewApp builds the services on top of st. key is the AES key for task
// fields and passwords. Every log line of the App carries a run_id.
func NewApp(c *config.Config, st *storage.Store, key []byte, bs backup.Store, p Prompter, out io.Writer, log logging.Logger) (*App, error) {
	log = log.With("run_id", uuid.NewString())

	cipher, err := cryptox.NewFieldCipher(key)
	if err != nil {
		return nil, err
	}

	sessions, err := services.NewSessionService(st.DB, st.Repos, key, c.SessionTTL, log)
	if err != nil {
		return nil, err
	}

	a := &App{
		config:         c,
		prompter:       p,
		out:            out,
		log:            log,
		authService:    services.NewAuthService(st.DB, st.Repos, cipher, log),
		sessionService: sessions,
		backupService:  services.NewBackupService(st.DB, st.Repos, bs, cipher, log),
	}

	var gate unlock.Gate = unlock.AllowAll{}
	if c.RequireUnlock {
		a.gate = unlock.NewPasswordGate(p, a.verifyPassword, c.UnlockGrace)
		gate = a.gate
	}
	a.taskService = services.NewTaskService(st.DB, st.Repos, cipher, gate, log)

	return a, nil
}

func (a *App) verifyPassword(ctx context.Context, password string) error {
	if a.user == nil {
		return common.ErrorUnauthorized
	}
	err := a.authService.VerifyPassword(ctx, a.user.ID, password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		return unlock.ErrWrongPassword
	}
	return err
}

func (a *App) isLoggedIn() bool {
	return a.user != nil
}

func (a *App) status() string {
	if a.user == nil {
		return ""
	}
	return fmt.Sprintf("(%s)", a.user.Username)
}

// Run resumes a stored session if there is one and runs the REPL until the
// user exits or input ends.
func (a *App) Run(ctx context.Context) {
	defer a.prompter.Close()

	a.println("Welcome to todokeeper (type 'help' for commands)")

	user, err := a.sessionService.Resume(ctx)
	if err != nil {
		a.log.Warn(ctx, "session resume failed", "error", err)
	}
	if user != nil {
		a.setUser(user)
		a.println(fmt.Sprintf("Welcome back, %s!", user.Name))
	}

	runREPL(ctx, a, a.prompter, a.status)
}

func (a *App) setUser(u *models.User) {
	a.user = u
	if a.gate != nil {
		a.gate.Reset()
	}
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}
