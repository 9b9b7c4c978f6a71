package service

import (
	"context"
	"errors"
	"time"

	"github.com/comepass/comepass/internal/api/domain"
	"github.com/comepass/comepass/internal/api/store"
	"github.com/comepass/comepass/pkg/permx"
)

// PermissionService manages the permission catalogue.
type PermissionService struct {
	Store store.Store

	Now func() time.Time
}

func (s *PermissionService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *PermissionService) List(ctx context.Context) ([]domain.Permission, error) {
	return s.Store.Permissions().ListPermissions(ctx)
}

// Create inserts one permission. A name collision is reported, never silently
// swallowed.
func (s *PermissionService) Create(ctx context.Context, p domain.Permission) (domain.Permission, error) {
	p.CreatedAt = s.now()
	id, err := s.Store.Permissions().CreatePermission(ctx, p)
	if errors.Is(err, store.ErrAlreadyExists) {
		return domain.Permission{}, ErrAlreadyExists
	}
	if err != nil {
		return domain.Permission{}, err
	}
	p.ID = id
	return p, nil
}

// CreateForResource mints the full action set for a resource:
// all_{resource}, read_{resource}, add_{resource}, edit_{resource},
// destroy_{resource}. Returns the created rows.
func (s *PermissionService) CreateForResource(ctx context.Context, resource, description string) ([]domain.Permission, error) {
	return s.createActionSet(ctx, resource, description, nil)
}

// CreateForObject mints the scoped action set {action}_{resource}_{id}. Each
// scoped permission depends on its unscoped counterpart, so a scoped grant is
// only exercisable by users who also hold the group permission.
func (s *PermissionService) CreateForObject(ctx context.Context, resource, description string, objectID int64) ([]domain.Permission, error) {
	return s.createActionSet(ctx, resource, description, &objectID)
}

func (s *PermissionService) createActionSet(ctx context.Context, resource, description string, objectID *int64) ([]domain.Permission, error) {
	now := s.now()

	var created []domain.Permission
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		for _, action := range permx.Actions {
			p := domain.Permission{
				Resource:    resource,
				Description: description,
				CreatedAt:   now,
			}
			if objectID == nil {
				p.Name = permx.Name(action, resource)
			} else {
				p.ObjectID = objectID
				p.Name = permx.ScopedName(action, resource, *objectID)
				p.DependsOn = permx.Name(action, resource)
			}

			id, err := tx.Permissions().CreatePermission(ctx, p)
			if err != nil {
				return err
			}
			p.ID = id
			created = append(created, p)
		}
		return nil
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		return nil, ErrAlreadyExists
	}
	if err != nil {
		return nil, err
	}
	return created, nil
}

// DependencyLookup adapts the catalogue to the resolver's dependency check.
// It returns the depends_on name of a held scoped permission, when one is set.
func (s *PermissionService) DependencyLookup(ctx context.Context) permx.DependencyFunc {
	return func(name string) (string, bool) {
		p, err := s.Store.Permissions().GetPermissionByName(ctx, name)
		if err != nil || p.DependsOn == "" {
			return "", false
		}
		return p.DependsOn, true
	}
}
