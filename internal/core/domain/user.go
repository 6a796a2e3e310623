package domain

import "time"

// User mirrors the persisted representation in the users table.
// PasswordHash holds the bcrypt digest of the password chosen at
// registration; the plaintext is never stored.
type User struct {
	ID           int64
	FirstName    string
	LastName     string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// DisplayName returns the name shown on rendered pages.
func (u User) DisplayName() string {
	if u.FirstName == "" {
		return u.Username
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
