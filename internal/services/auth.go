package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/cryptox"
	"github.com/dmitrijs2005/todokeeper/internal/dbx"
	"github.com/dmitrijs2005/todokeeper/internal/logging"
	"github.com/dmitrijs2005/todokeeper/internal/models"
	"github.com/dmitrijs2005/todokeeper/internal/storage"
	"github.com/dmitrijs2005/todokeeper/internal/validation"
)

// AuthService manages local accounts.
//
// Passwords are stored as AES-GCM ciphertext plus IV under the application
// key and compared after decryption.
type AuthService interface {
	Register(ctx context.Context, in validation.RegisterInput) (*models.User, error)
	Login(ctx context.Context, in validation.LoginInput) (*models.User, error)
	// VerifyPassword returns ErrInvalidCredentials unless password matches
	// the stored password of userID.
	VerifyPassword(ctx context.Context, userID int64, password string) error
}

type authService struct {
	db     *sql.DB
	repos  storage.RepositoryManager
	cipher *cryptox.FieldCipher
	log    logging.Logger
}

func NewAuthService(db *sql.DB, m storage.RepositoryManager, c *cryptox.FieldCipher, log logging.Logger) AuthService {
	return &authService{db: db, repos: m, cipher: c, log: log}
}

// Register validates in, rejects a taken username or email and inserts the
// user with the encrypted password in one transaction.
func (s *authService) Register(ctx context.Context, in validation.RegisterInput) (*models.User, error) {
	if err := validation.Register(&in); err != nil {
		return nil, err
	}

	sealed, err := s.cipher.EncryptString(in.Password)
	if err != nil {
		return nil, fmt.Errorf("encrypt password: %w", err)
	}

	var user *models.User
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repos.Users(tx)

		exists, err := repo.Exists(ctx, in.Username, in.Email)
		if err != nil {
			return err
		}
		if exists {
			return ErrUserExists
		}

		user, err = repo.Create(ctx, &models.User{
			Name:       in.Name,
			Username:   in.Username,
			Email:      in.Email,
			Password:   sealed.Ciphertext,
			PasswordIV: sealed.IV,
		})
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, ErrUserExists
		}
		if errors.Is(err, ErrUserExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Login returns the user when the password matches. Unknown usernames and
// wrong passwords are indistinguishable to the caller.
func (s *authService) Login(ctx context.Context, in validation.LoginInput) (*models.User, error) {
	if err := validation.Login(&in); err != nil {
		return nil, err
	}

	user, err := s.repos.Users(s.db).GetByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.log.Info(ctx, "login failed", "username", in.Username, "reason", "unknown user")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	if err := s.checkPassword(ctx, user, in.Password); err != nil {
		return nil, err
	}

	s.log.Info(ctx, "user logged in", "user_id", user.ID)
	return user, nil
}

func (s *authService) VerifyPassword(ctx context.Context, userID int64, password string) error {
	user, err := s.repos.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("error loading user: %w", err)
	}
	return s.checkPassword(ctx, user, password)
}

func (s *authService) checkPassword(ctx context.Context, user *models.User, candidate string) error {
	stored, err := s.cipher.DecryptString(cryptox.Sealed{Ciphertext: user.Password, IV: user.PasswordIV})
	if err != nil {
		// A key mismatch, not a wrong password.
		s.log.Error(ctx, "stored password cannot be decrypted", "user_id", user.ID, "error", err)
		return fmt.Errorf("decrypt stored password: %w", err)
	}

	if !cryptox.Equal([]byte(stored), []byte(candidate)) {
		s.log.Info(ctx, "login failed", "user_id", user.ID, "reason", "wrong password")
		return ErrInvalidCredentials
	}
	return nil
}
