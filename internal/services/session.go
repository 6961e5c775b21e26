package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/auth"
	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/cryptox"
	"github.com/dmitrijs2005/todokeeper/internal/dbx"
	"github.com/dmitrijs2005/todokeeper/internal/logging"
	"github.com/dmitrijs2005/todokeeper/internal/models"
	"github.com/dmitrijs2005/todokeeper/internal/storage"
)

const sessionKeyInfo = "todokeeper session v1"

// SessionService keeps the logged-in user across runs as a signed token in
// the metadata table.
type SessionService interface {
	// Issue stores a token for user. It is a no-op when the TTL is zero.
	Issue(ctx context.Context, user *models.User) error
	// Resume returns the user of a valid stored token, or (nil, nil) when
	// there is none. Expired or invalid tokens are removed.
	Resume(ctx context.Context) (*models.User, error)
	Clear(ctx context.Context) error
	// LastUsername returns the username of the most recent login, if any.
	LastUsername(ctx context.Context) (string, error)
}

type sessionService struct {
	db     *sql.DB
	repos  storage.RepositoryManager
	secret []byte
	ttl    time.Duration
	log    logging.Logger
}

// NewSessionService derives the token signing key from key.
func NewSessionService(db *sql.DB, m storage.RepositoryManager, key []byte, ttl time.Duration, log logging.Logger) (SessionService, error) {
	secret, err := cryptox.DeriveSubkey(key, sessionKeyInfo)
	if err != nil {
		return nil, fmt.Errorf("derive session key: %w", err)
	}
	return &sessionService{db: db, repos: m, secret: secret, ttl: ttl, log: log}, nil
}

func (s *sessionService) Issue(ctx context.Context, user *models.User) error {
	if s.ttl <= 0 {
		return nil
	}

	token, err := auth.GenerateToken(user.ID, user.Username, s.secret, s.ttl)
	if err != nil {
		return fmt.Errorf("error generating token: %w", err)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repos.Metadata(tx)
		if err := repo.Set(ctx, common.MetaSessionToken, []byte(token)); err != nil {
			return err
		}
		return repo.Set(ctx, common.MetaLastUsername, []byte(user.Username))
	})
	if err != nil {
		return fmt.Errorf("error saving session: %w", err)
	}

	s.log.Debug(ctx, "session issued", "user_id", user.ID, "ttl", s.ttl.String())
	return nil
}

func (s *sessionService) Resume(ctx context.Context) (*models.User, error) {
	if s.ttl <= 0 {
		return nil, nil
	}

	meta := s.repos.Metadata(s.db)
	raw, err := meta.Get(ctx, common.MetaSessionToken)
	if err != nil {
		return nil, fmt.Errorf("error loading session: %w", err)
	}
	if raw == nil {
		return nil, nil
	}

	claims, err := auth.ParseToken(string(raw), s.secret)
	if err != nil {
		s.log.Info(ctx, "stored session discarded", "reason", err.Error())
		return nil, s.Clear(ctx)
	}

	user, err := s.repos.Users(s.db).GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.log.Info(ctx, "stored session discarded", "reason", "user no longer exists")
			return nil, s.Clear(ctx)
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	if user.Username != claims.Subject {
		s.log.Info(ctx, "stored session discarded", "reason", "subject mismatch")
		return nil, s.Clear(ctx)
	}

	s.log.Debug(ctx, "session resumed", "user_id", user.ID)
	return user, nil
}

func (s *sessionService) Clear(ctx context.Context) error {
	if err := s.repos.Metadata(s.db).Delete(ctx, common.MetaSessionToken); err != nil {
		return fmt.Errorf("error clearing session: %w", err)
	}
	return nil
}

func (s *sessionService) LastUsername(ctx context.Context) (string, error) {
	raw, err := s.repos.Metadata(s.db).Get(ctx, common.MetaLastUsername)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
