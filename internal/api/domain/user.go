package domain

import "time"

type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string // argon2id encoded
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
