package models

import "time"

// BackupFormatVersion is bumped whenever the Backup layout changes.
const BackupFormatVersion = 1

// Backup is an exported snapshot of one user's tasks in stored form.
// Encrypted tasks stay encrypted; importing needs the same AES key.
type Backup struct {
	Version   int          `json:"version"`
	Username  string       `json:"username"`
	CreatedAt time.Time    `json:"created_at"`
	Tasks     []BackupTask `json:"tasks"`
}

// BackupTask mirrors Task without the database identifiers.
type BackupTask struct {
	Date      string `json:"date"`
	DateIV    string `json:"date_iv,omitempty"`
	Text      string `json:"task"`
	TextIV    string `json:"task_iv,omitempty"`
	Done      bool   `json:"is_done"`
	Encrypted bool   `json:"is_encrypted"`
}

// NewBackupTask copies the stored fields of t.
func NewBackupTask(t *Task) BackupTask {
	return BackupTask{
		Date:      t.Date,
		DateIV:    t.DateIV,
		Text:      t.Text,
		TextIV:    t.TextIV,
		Done:      t.Done,
		Encrypted: t.Encrypted,
	}
}

// ToTask returns a Task owned by userID.
func (b BackupTask) ToTask(userID int64) *Task {
	return &Task{
		UserID:    userID,
		Date:      b.Date,
		DateIV:    b.DateIV,
		Text:      b.Text,
		TextIV:    b.TextIV,
		Done:      b.Done,
		Encrypted: b.Encrypted,
	}
}
