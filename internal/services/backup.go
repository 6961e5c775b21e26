package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/backup"
	"github.com/dmitrijs2005/todokeeper/internal/cryptox"
	"github.com/dmitrijs2005/todokeeper/internal/dbx"
	"github.com/dmitrijs2005/todokeeper/internal/logging"
	"github.com/dmitrijs2005/todokeeper/internal/models"
	"github.com/dmitrijs2005/todokeeper/internal/storage"
)

// nowFn is a seam for tests.
var nowFn = time.Now

// BackupService exports and imports a user's tasks in stored form.
type BackupService interface {
	// Export writes every task of user to the backup store and returns the
	// object key together with the number of exported tasks.
	Export(ctx context.Context, user *models.User) (string, int, error)
	// Import adds the tasks of the backup under key to user. The backup must
	// have been exported by the same username with the same AES key.
	Import(ctx context.Context, user *models.User, key string) (int, error)
	Location() string
}

type backupService struct {
	db     *sql.DB
	repos  storage.RepositoryManager
	store  backup.Store
	cipher *cryptox.FieldCipher
	log    logging.Logger
}

func NewBackupService(db *sql.DB, m storage.RepositoryManager, store backup.Store, c *cryptox.FieldCipher, log logging.Logger) BackupService {
	return &backupService{db: db, repos: m, store: store, cipher: c, log: log}
}

func (s *backupService) Location() string {
	return s.store.Location()
}

func (s *backupService) Export(ctx context.Context, user *models.User) (string, int, error) {
	items, err := s.repos.Tasks(s.db).ListByUser(ctx, user.ID)
	if err != nil {
		return "", 0, fmt.Errorf("error listing tasks: %w", err)
	}

	now := nowFn().UTC()
	doc := models.Backup{
		Version:   models.BackupFormatVersion,
		Username:  user.Username,
		CreatedAt: now,
		Tasks:     make([]models.BackupTask, 0, len(items)),
	}
	for _, t := range items {
		doc.Tasks = append(doc.Tasks, models.NewBackupTask(t))
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", 0, fmt.Errorf("error encoding backup: %w", err)
	}

	key := backup.NewKey(user.Username, now)
	if err := s.store.Put(ctx, key, data); err != nil {
		return "", 0, fmt.Errorf("error writing backup: %w", err)
	}

	s.log.Info(ctx, "backup exported", "user_id", user.ID, "key", key, "count", len(doc.Tasks))
	return key, len(doc.Tasks), nil
}

func (s *backupService) Import(ctx context.Context, user *models.User, key string) (int, error) {
	if err := backup.CheckKey(key); err != nil {
		return 0, err
	}

	data, err := s.store.Get(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("error reading backup: %w", err)
	}

	var doc models.Backup
	if err := json.Unmarshal(data, &doc); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBackupFormat, err)
	}
	if doc.Version != models.BackupFormatVersion {
		return 0, fmt.Errorf("%w: version %d", ErrBackupFormat, doc.Version)
	}
	if doc.Username != user.Username {
		return 0, ErrBackupOwner
	}

	items := make([]*models.Task, 0, len(doc.Tasks))
	for i, bt := range doc.Tasks {
		t := bt.ToTask(user.ID)
		if err := t.Validate(); err != nil {
			return 0, fmt.Errorf("%w: task %d: %v", ErrBackupFormat, i, err)
		}
		if t.Encrypted {
			check := *t
			if err := openTask(s.cipher, &check); err != nil {
				return 0, fmt.Errorf("%w: task %d: %v", ErrBackupKey, i, err)
			}
		}
		items = append(items, t)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repos.Tasks(tx)
		for _, t := range items {
			if _, err := repo.Create(ctx, t); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("error importing tasks: %w", err)
	}

	s.log.Info(ctx, "backup imported", "user_id", user.ID, "key", key, "count", len(items))
	return len(items), nil
}
