package services

import "errors"

var (
	ErrUserExists         = errors.New("username or email is already registered")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrBackupOwner        = errors.New("backup belongs to another user")
	ErrBackupFormat       = errors.New("unsupported backup format")
	ErrBackupKey          = errors.New("backup was encrypted with a different key")
	ErrTaskChanged        = errors.New("task changed while waiting for unlock, try again")
)
