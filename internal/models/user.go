// Package models defines the data models persisted by todokeeper and the
// projections handed to the terminal front end.
package models

// User is a registered account. Password holds AES-GCM ciphertext of the
// password (Base64) and PasswordIV the IV it was sealed under.
type User struct {
	ID         int64
	Name       string
	Username   string
	Email      string
	Password   string
	PasswordIV string
}
