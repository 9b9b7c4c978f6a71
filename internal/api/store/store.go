package store

import (
	"context"
	"errors"
	"time"

	"github.com/comepass/comepass/internal/api/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Page bounds list queries. Limit defaults are the repository's concern.
type Page struct {
	Number int
	Limit  int
}

// Offset converts the 1-based page number into a row offset.
func (p Page) Offset() int {
	n := p.Number
	if n < 1 {
		n = 1
	}
	return (n - 1) * p.Limit
}

// Store is the root data access interface. Concrete drivers implement it; the
// sub-repositories keep concerns separated and individually mockable.
type Store interface {
	Users() Users
	Roles() Roles
	Permissions() Permissions
	Sessions() Sessions
	Chat() Chat

	ApplyMigrations() error

	// Tx starts a read/write transaction scoped over the same repositories.
	// The caller MUST Commit or Rollback.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn inside a transaction, committing on nil and rolling
	// back on error or panic. Preferred over Tx for multi-step mutations.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx is a transaction-scoped Store.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id int64) (domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
	ListUsers(ctx context.Context, page Page) ([]domain.User, error)

	// CreateUser inserts a user and returns the assigned id.
	// Username and email collisions map to ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) (int64, error)

	UpdateUser(ctx context.Context, id int64, username, email string, updatedAt time.Time) error
	UpdatePasswordHash(ctx context.Context, id int64, hash string, updatedAt time.Time) error
	SetUserActive(ctx context.Context, id int64, active bool, updatedAt time.Time) error
	DeleteUser(ctx context.Context, id int64) error

	// ListPermissionNames returns the user's effective permission set: the
	// union of permission names over all of the user's active roles.
	ListPermissionNames(ctx context.Context, userID int64) ([]string, error)
}

type Roles interface {
	GetRoleByID(ctx context.Context, id int64) (domain.Role, error)
	GetRoleByName(ctx context.Context, name string) (domain.Role, error)
	ListRoles(ctx context.Context, page Page) ([]domain.Role, error)

	// CreateRole inserts a role and attaches the named permissions.
	CreateRole(ctx context.Context, r domain.Role, permissionNames []string) (int64, error)

	AssignUserRole(ctx context.Context, userID, roleID int64) error
	ListUserRoleNames(ctx context.Context, userID int64) ([]string, error)
}

type Permissions interface {
	// CreatePermission inserts a permission. Name collisions are a reported
	// ErrAlreadyExists, never silently ignored.
	CreatePermission(ctx context.Context, p domain.Permission) (int64, error)

	GetPermissionByName(ctx context.Context, name string) (domain.Permission, error)
	ListPermissions(ctx context.Context) ([]domain.Permission, error)
}

type Sessions interface {
	// CreateSession inserts the login record; a token_value collision maps
	// to ErrAlreadyExists so the caller can retry with a fresh nonce.
	CreateSession(ctx context.Context, s domain.Session) (int64, error)

	GetSessionByID(ctx context.Context, id int64) (domain.Session, error)
	GetSessionByValue(ctx context.Context, tokenValue string) (domain.Session, error)

	// DeactivateSession flips is_active. The row stays for audit.
	DeactivateSession(ctx context.Context, id int64) error
	DeactivateUserSessions(ctx context.Context, userID int64) error

	// DeleteExpiredSessions removes rows whose refresh window closed before
	// the cutoff. Housekeeping only.
	DeleteExpiredSessions(ctx context.Context, cutoff time.Time) error
}

type Chat interface {
	CreateTopic(ctx context.Context, t domain.Topic) (int64, error)
	GetTopicByID(ctx context.Context, id int64) (domain.Topic, error)
	ListTopics(ctx context.Context, page Page) ([]domain.Topic, error)
	ListUserTopics(ctx context.Context, userID int64, page Page) ([]domain.Topic, error)
	UpdateTopic(ctx context.Context, id int64, name, description, notes string, updatedAt time.Time) error

	CreateMessage(ctx context.Context, m domain.Message) (int64, error)
	ListMessages(ctx context.Context, page Page) ([]domain.Message, error)
	ListTopicMessages(ctx context.Context, topicID int64, userID *int64, page Page) ([]domain.Message, error)

	// ListRecentTopicMessages returns the topic's newest n messages,
	// oldest first, for building completion context.
	ListRecentTopicMessages(ctx context.Context, topicID int64, n int) ([]domain.Message, error)
}
