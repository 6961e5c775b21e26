package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/cryptox"
	"github.com/dmitrijs2005/todokeeper/internal/datemask"
	"github.com/dmitrijs2005/todokeeper/internal/dbx"
	"github.com/dmitrijs2005/todokeeper/internal/logging"
	"github.com/dmitrijs2005/todokeeper/internal/models"
	"github.com/dmitrijs2005/todokeeper/internal/storage"
	"github.com/dmitrijs2005/todokeeper/internal/unlock"
	"github.com/dmitrijs2005/todokeeper/internal/validation"
)

// Placeholders shown for encrypted fields that were not revealed.
const (
	MaskedDate = "••/••/••••"
	MaskedText = "••••••••"
)

// TaskService manages the tasks of one user at a time. Every method taking a
// task ID treats a task of another user as missing (common.ErrorNotFound).
type TaskService interface {
	Add(ctx context.Context, userID int64, in validation.TaskInput) (*models.TaskView, error)
	List(ctx context.Context, userID int64) ([]models.TaskView, error)
	ToggleDone(ctx context.Context, userID, id int64) (*models.TaskView, error)
	// ToggleEncryption stores an encrypted task as plaintext after the gate
	// allows it, or encrypts a plaintext task under fresh IVs.
	ToggleEncryption(ctx context.Context, userID, id int64) (*models.TaskView, error)
	// Reveal decrypts a task for display only.
	Reveal(ctx context.Context, userID, id int64) (*models.TaskView, error)
	Delete(ctx context.Context, userID, id int64) error
	DeleteAllForUser(ctx context.Context, userID int64) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type taskService struct {
	db     *sql.DB
	repos  storage.RepositoryManager
	cipher *cryptox.FieldCipher
	gate   unlock.Gate
	log    logging.Logger
}

func NewTaskService(db *sql.DB, m storage.RepositoryManager, c *cryptox.FieldCipher, gate unlock.Gate, log logging.Logger) TaskService {
	return &taskService{db: db, repos: m, cipher: c, gate: gate, log: log}
}

func (s *taskService) Add(ctx context.Context, userID int64, in validation.TaskInput) (*models.TaskView, error) {
	if err := validation.Task(&in); err != nil {
		return nil, err
	}

	date, err := datemask.Normalize(in.Date)
	if err != nil {
		return nil, err
	}

	task := &models.Task{UserID: userID, Date: date, Text: in.Text}
	if err := s.seal(task); err != nil {
		return nil, err
	}

	created, err := s.repos.Tasks(s.db).Create(ctx, task)
	if err != nil {
		if errors.Is(err, common.ErrForeignKey) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error adding task: %w", err)
	}

	s.log.Info(ctx, "task added", "user_id", userID, "task_id", created.ID)
	return maskedView(created), nil
}

func (s *taskService) List(ctx context.Context, userID int64) ([]models.TaskView, error) {
	items, err := s.repos.Tasks(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing tasks: %w", err)
	}

	views := make([]models.TaskView, 0, len(items))
	for _, t := range items {
		views = append(views, *maskedView(t))
	}
	return views, nil
}

func (s *taskService) ToggleDone(ctx context.Context, userID, id int64) (*models.TaskView, error) {
	var view *models.TaskView
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repos.Tasks(tx)
		t, err := ownedTask(ctx, repo.GetByID, userID, id)
		if err != nil {
			return err
		}
		t.Done = !t.Done
		if err := repo.Update(ctx, t); err != nil {
			return err
		}
		view = maskedView(t)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug(ctx, "task done toggled", "task_id", id, "done", view.Done)
	return view, nil
}

func (s *taskService) ToggleEncryption(ctx context.Context, userID, id int64) (*models.TaskView, error) {
	t, err := ownedTask(ctx, s.repos.Tasks(s.db).GetByID, userID, id)
	if err != nil {
		return nil, err
	}

	// The gate may query the users table, so it runs before the transaction.
	authorized := false
	if t.Encrypted {
		if err := s.gate.Authorize(ctx, fmt.Sprintf("Decrypt task %d", id)); err != nil {
			s.log.Warn(ctx, "decryption denied", "task_id", id)
			return nil, err
		}
		authorized = true
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repos.Tasks(tx)
		cur, err := ownedTask(ctx, repo.GetByID, userID, id)
		if err != nil {
			return err
		}
		if cur.Encrypted && !authorized {
			return ErrTaskChanged
		}

		if cur.Encrypted {
			err = s.open(cur)
		} else {
			err = s.seal(cur)
		}
		if err != nil {
			return err
		}
		if err := repo.Update(ctx, cur); err != nil {
			return fmt.Errorf("error updating task: %w", err)
		}
		t = cur
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "task encryption toggled", "task_id", id, "encrypted", t.Encrypted)
	return maskedView(t), nil
}

func (s *taskService) Reveal(ctx context.Context, userID, id int64) (*models.TaskView, error) {
	t, err := ownedTask(ctx, s.repos.Tasks(s.db).GetByID, userID, id)
	if err != nil {
		return nil, err
	}
	if !t.Encrypted {
		return maskedView(t), nil
	}

	if err := s.gate.Authorize(ctx, fmt.Sprintf("Reveal task %d", id)); err != nil {
		s.log.Warn(ctx, "reveal denied", "task_id", id)
		return nil, err
	}

	if err := s.open(t); err != nil {
		return nil, err
	}

	return &models.TaskView{
		ID:        t.ID,
		Date:      t.Date,
		Text:      t.Text,
		Done:      t.Done,
		Encrypted: true,
		Revealed:  true,
	}, nil
}

func (s *taskService) Delete(ctx context.Context, userID, id int64) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repos.Tasks(tx)
		if _, err := ownedTask(ctx, repo.GetByID, userID, id); err != nil {
			return err
		}
		return repo.DeleteByID(ctx, id)
	})
	if err != nil {
		return err
	}

	s.log.Info(ctx, "task deleted", "task_id", id)
	return nil
}

func (s *taskService) DeleteAllForUser(ctx context.Context, userID int64) (int64, error) {
	n, err := s.repos.Tasks(s.db).DeleteByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("error deleting tasks: %w", err)
	}
	s.log.Info(ctx, "tasks cleared", "user_id", userID, "count", n)
	return n, nil
}

func (s *taskService) DeleteAll(ctx context.Context) (int64, error) {
	n, err := s.repos.Tasks(s.db).DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("error deleting tasks: %w", err)
	}
	s.log.Warn(ctx, "all tasks wiped", "count", n)
	return n, nil
}

// seal replaces the plaintext fields of t with ciphertext under fresh IVs.
func (s *taskService) seal(t *models.Task) error {
	date, err := s.cipher.EncryptString(t.Date)
	if err != nil {
		return fmt.Errorf("encrypt date: %w", err)
	}
	text, err := s.cipher.EncryptString(t.Text)
	if err != nil {
		return fmt.Errorf("encrypt task: %w", err)
	}

	t.Date, t.DateIV = date.Ciphertext, date.IV
	t.Text, t.TextIV = text.Ciphertext, text.IV
	t.Encrypted = true
	return nil
}

// open replaces the ciphertext fields of t with plaintext and clears the IVs.
func (s *taskService) open(t *models.Task) error {
	return openTask(s.cipher, t)
}

func openTask(c *cryptox.FieldCipher, t *models.Task) error {
	date, err := c.DecryptString(cryptox.Sealed{Ciphertext: t.Date, IV: t.DateIV})
	if err != nil {
		return fmt.Errorf("decrypt date of task %d: %w", t.ID, err)
	}
	text, err := c.DecryptString(cryptox.Sealed{Ciphertext: t.Text, IV: t.TextIV})
	if err != nil {
		return fmt.Errorf("decrypt task %d: %w", t.ID, err)
	}

	t.Date, t.DateIV = date, ""
	t.Text, t.TextIV = text, ""
	t.Encrypted = false
	return nil
}

func ownedTask(ctx context.Context, get func(context.Context, int64) (*models.Task, error), userID, id int64) (*models.Task, error) {
	t, err := get(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.UserID != userID {
		return nil, common.ErrorNotFound
	}
	return t, nil
}

func maskedView(t *models.Task) *models.TaskView {
	v := &models.TaskView{
		ID:        t.ID,
		Date:      t.Date,
		Text:      t.Text,
		Done:      t.Done,
		Encrypted: t.Encrypted,
	}
	if t.Encrypted {
		v.Date = MaskedDate
		v.Text = MaskedText
	}
	return v
}
