package service

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/comepass/comepass/internal/api/domain"
	"github.com/comepass/comepass/internal/api/store"
)

// RoleService manages roles and their permission attachments.
type RoleService struct {
	Store store.Store

	Now func() time.Time
}

func (s *RoleService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *RoleService) Get(ctx context.Context, id int64) (domain.Role, error) {
	r, err := s.Store.Roles().GetRoleByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Role{}, ErrNotFound
	}
	return r, err
}

func (s *RoleService) List(ctx context.Context, page store.Page) ([]domain.Role, error) {
	return s.Store.Roles().ListRoles(ctx, page)
}

// Create inserts a role with the named permissions attached. A permission
// name with no matching row fails the whole creation.
func (s *RoleService) Create(ctx context.Context, name, description string, isGroup bool, permissionNames []string) (domain.Role, error) {
	r := domain.Role{
		Name:        name,
		Description: description,
		IsGroup:     isGroup,
		IsActive:    true,
		CreatedAt:   s.now(),
	}

	var id int64
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		id, err = tx.Roles().CreateRole(ctx, r, permissionNames)
		return err
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		return domain.Role{}, ErrAlreadyExists
	}
	if errors.Is(err, store.ErrNotFound) {
		return domain.Role{}, ErrNotFound
	}
	if err != nil {
		return domain.Role{}, err
	}
	return s.Get(ctx, id)
}

// Assign attaches a role to a user.
func (s *RoleService) Assign(ctx context.Context, userID, roleID int64) error {
	err := s.Store.Roles().AssignUserRole(ctx, userID, roleID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// UserHasRole reports whether the user holds the named role.
func (s *RoleService) UserHasRole(ctx context.Context, userID int64, roleName string) (bool, error) {
	names, err := s.Store.Roles().ListUserRoleNames(ctx, userID)
	if err != nil {
		return false, err
	}
	return slices.Contains(names, roleName), nil
}
