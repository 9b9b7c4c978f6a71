package domain

import "time"

// Role groups permissions. A group role (IsGroup) is shared between users;
// a non-group role named after a single user id acts as that user's implicit
// owner grant over their own objects.
type Role struct {
	ID          int64
	Name        string
	Description string
	IsGroup     bool
	IsActive    bool
	Permissions []Permission
	CreatedAt   time.Time
}
