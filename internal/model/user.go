package model

import "time"

// User mirrors the `users` table. The password hash never leaves the server,
// hence the "-" json tag.
type User struct {
	ID           uint64    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	RegisteredOn time.Time `json:"registeredOn"`
}
