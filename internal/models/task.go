package models

import "errors"

var (
	ErrMissingFieldIV    = errors.New("encrypted task is missing an IV")
	ErrUnexpectedFieldIV = errors.New("plaintext task must not carry an IV")
)

// Task is a stored to-do item.
//
// When Encrypted is set, Date and Text hold Base64 AES-GCM ciphertext and
// DateIV/TextIV the IVs they were sealed under. Otherwise Date and Text are
// plaintext and both IVs are empty.
type Task struct {
	ID        int64
	UserID    int64
	Date      string
	DateIV    string
	Text      string
	TextIV    string
	Done      bool
	Encrypted bool
}

// Validate checks that the IV columns agree with the Encrypted flag.
func (t *Task) Validate() error {
	if t.Encrypted {
		if t.DateIV == "" || t.TextIV == "" {
			return ErrMissingFieldIV
		}
		return nil
	}
	if t.DateIV != "" || t.TextIV != "" {
		return ErrUnexpectedFieldIV
	}
	return nil
}

// TaskView is what the front end renders. Date and Text are plaintext when
// the task is stored decrypted or was revealed; otherwise they are masked.
type TaskView struct {
	ID        int64
	Date      string
	Text      string
	Done      bool
	Encrypted bool
	Revealed  bool
}
