package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/comepass/comepass/internal/api/domain"
	"github.com/comepass/comepass/internal/api/store"
	"github.com/comepass/comepass/pkg/cryptox"
	"github.com/comepass/comepass/pkg/permx"
	"github.com/comepass/comepass/pkg/slogx"
)

// seedResources are the models whose permission sets the seeder mints.
var seedResources = []string{"Users", "Roles", "Permissions", "ChatTopic", "ChatMessage"}

// SeedService populates an empty database: the permission catalogue, the
// default group roles and the admin account. Every step is idempotent, rerun
// on startup without effect once the rows exist.
type SeedService struct {
	Store store.Store

	AdminUsername string
	AdminEmail    string
	AdminPassword string

	Now func() time.Time
}

func (s *SeedService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Run seeds permissions, roles and the admin user in that order.
func (s *SeedService) Run(ctx context.Context) error {
	if err := s.seedPermissions(ctx); err != nil {
		return err
	}
	if err := s.seedRoles(ctx); err != nil {
		return err
	}
	return s.seedAdmin(ctx)
}

func (s *SeedService) seedPermissions(ctx context.Context) error {
	now := s.now()
	for _, resource := range seedResources {
		for _, action := range permx.Actions {
			_, err := s.Store.Permissions().CreatePermission(ctx, domain.Permission{
				Name:      permx.Name(action, resource),
				Resource:  resource,
				CreatedAt: now,
			})
			if err != nil && !errors.Is(err, store.ErrAlreadyExists) {
				return err
			}
		}
	}
	return nil
}

// defaultRoles maps each built-in group role to the actions it grants across
// every seeded resource. Draft holds nothing; it exists as a parking slot for
// accounts awaiting assignment.
var defaultRoles = []struct {
	name    string
	actions []permx.Action
}{
	{"admin", []permx.Action{permx.ActionAll}},
	{"manager", []permx.Action{permx.ActionRead, permx.ActionAdd, permx.ActionEdit}},
	{"staff", []permx.Action{permx.ActionRead}},
	{"draft", nil},
}

func (s *SeedService) seedRoles(ctx context.Context) error {
	now := s.now()
	for _, role := range defaultRoles {
		_, err := s.Store.Roles().GetRoleByName(ctx, role.name)
		if err == nil {
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		var names []string
		for _, resource := range seedResources {
			for _, action := range role.actions {
				names = append(names, permx.Name(action, resource))
			}
		}

		err = s.Store.WithTx(ctx, func(tx store.Tx) error {
			_, err := tx.Roles().CreateRole(ctx, domain.Role{
				Name:      role.name,
				IsGroup:   true,
				IsActive:  true,
				CreatedAt: now,
			}, names)
			return err
		})
		if err != nil && !errors.Is(err, store.ErrAlreadyExists) {
			return err
		}
	}
	return nil
}

func (s *SeedService) seedAdmin(ctx context.Context) error {
	if s.AdminUsername == "" || s.AdminPassword == "" {
		return nil
	}

	l := slogx.FromContext(ctx)
	_, err := s.Store.Users().GetUserByUsername(ctx, s.AdminUsername)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	hash, err := cryptox.HashPassword(s.AdminPassword)
	if err != nil {
		return err
	}

	now := s.now()
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		userID, err := tx.Users().CreateUser(ctx, domain.User{
			Username:     s.AdminUsername,
			Email:        s.AdminEmail,
			PasswordHash: hash,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			return err
		}

		role, err := tx.Roles().GetRoleByName(ctx, "admin")
		if err != nil {
			return err
		}
		if err := tx.Roles().AssignUserRole(ctx, userID, role.ID); err != nil {
			return err
		}

		l.Info("admin account seeded", slog.Int64("user_id", userID))
		return nil
	})
}
