package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/comepass/comepass/internal/api/domain"
	"github.com/comepass/comepass/internal/api/store"
	"github.com/comepass/comepass/pkg/cryptox"
	"github.com/comepass/comepass/pkg/slogx"
)

var (
	ErrAlreadyExists   = errors.New("already_exists")
	ErrPasswordPolicy  = errors.New("password_too_short")
	ErrConfirmMismatch = errors.New("password_confirmation_mismatch")
)

const minPasswordLength = 8

// UserService manages accounts. Password hashes never leave the store layer
// unredacted; handlers must not serialise them.
type UserService struct {
	Store store.Store
	Auth  *AuthService

	Now func() time.Time
}

func (s *UserService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *UserService) Get(ctx context.Context, id int64) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrNotFound
	}
	return u, err
}

func (s *UserService) List(ctx context.Context, page store.Page) ([]domain.User, error) {
	return s.Store.Users().ListUsers(ctx, page)
}

// Create hashes the password and inserts the account. Username and email
// collisions surface as ErrAlreadyExists.
func (s *UserService) Create(ctx context.Context, username, email, password string) (domain.User, error) {
	if len(password) < minPasswordLength {
		return domain.User{}, ErrPasswordPolicy
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, err
	}

	now := s.now()
	u := domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	id, err := s.Store.Users().CreateUser(ctx, u)
	if errors.Is(err, store.ErrAlreadyExists) {
		return domain.User{}, ErrAlreadyExists
	}
	if err != nil {
		return domain.User{}, err
	}
	u.ID = id

	slogx.FromContext(ctx).Info("user created",
		slog.Int64("user_id", id),
		slog.String("username", username),
	)
	return u, nil
}

func (s *UserService) Update(ctx context.Context, id int64, username, email string) (domain.User, error) {
	err := s.Store.Users().UpdateUser(ctx, id, username, email, s.now())
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrNotFound
	}
	if errors.Is(err, store.ErrAlreadyExists) {
		return domain.User{}, ErrAlreadyExists
	}
	if err != nil {
		return domain.User{}, err
	}
	return s.Store.Users().GetUserByID(ctx, id)
}

// Delete removes the account and revokes its sessions so existing tokens stop
// validating immediately.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.Auth.RevokeUserSessions(ctx, id); err != nil {
		return err
	}
	err := s.Store.Users().DeleteUser(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// ChangePassword verifies the old password, checks the confirmation, then
// stores the new hash. Wrong-old and confirmation-mismatch are distinct
// failures so the client can say which field to fix.
func (s *UserService) ChangePassword(ctx context.Context, id int64, oldPassword, newPassword, confirm string) error {
	u, err := s.Store.Users().GetUserByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	if cryptox.VerifyPassword(oldPassword, u.PasswordHash) != nil {
		return ErrWrongPassword
	}
	if newPassword != confirm {
		return ErrConfirmMismatch
	}
	if len(newPassword) < minPasswordLength {
		return ErrPasswordPolicy
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.Store.Users().UpdatePasswordHash(ctx, id, hash, s.now())
}

// PermissionNames returns the user's effective permission set.
func (s *UserService) PermissionNames(ctx context.Context, userID int64) ([]string, error) {
	return s.Store.Users().ListPermissionNames(ctx, userID)
}
