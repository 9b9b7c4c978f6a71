package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/comepass/comepass/internal/api/domain"
	"github.com/comepass/comepass/internal/api/service"
	"github.com/comepass/comepass/pkg/httpx"
	"github.com/comepass/comepass/pkg/permx"
	"github.com/comepass/comepass/pkg/slogx"
)

type userKey struct{}

// UserFromContext returns the authenticated caller placed by the permission
// middleware. The second return is false on bypassed routes.
func UserFromContext(ctx context.Context) (domain.User, bool) {
	u, ok := ctx.Value(userKey{}).(domain.User)
	return u, ok
}

const detailNotAuthenticated = "Not authenticated"

// PermissionGuard authenticates and authorises every request under the API
// prefix. Denials are always 403 with a {"detail": ...} body; the detail names
// the missing permission but never distinguishes unknown users from bad
// passwords or tokens.
type PermissionGuard struct {
	Prefix      string
	Auth        *service.AuthService
	Users       *service.UserService
	Permissions *service.PermissionService
	Resolver    *permx.Resolver
}

// bypass reports whether the path skips authentication entirely: docs, the
// OpenAPI document, the prefix root, the auth initiation subtree, and anything
// mounted outside the API prefix.
func (g *PermissionGuard) bypass(path string) bool {
	if strings.HasPrefix(path, "/docs") || path == "/openapi.json" {
		return true
	}
	if path == g.Prefix || path == g.Prefix+"/" {
		return true
	}
	if strings.HasPrefix(path, g.Prefix+"/auth") {
		return true
	}
	return !strings.HasPrefix(path, g.Prefix)
}

// Middleware wires the guard into an httpx chain.
func (g *PermissionGuard) Middleware() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if g.bypass(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			l := slogx.FromContext(ctx)

			token, ok := bearerToken(r)
			if !ok {
				httpx.WriteDetail(w, http.StatusForbidden, detailNotAuthenticated)
				return
			}

			claims, err := g.Auth.ValidateAccess(ctx, token)
			if err != nil {
				httpx.WriteDetail(w, http.StatusForbidden, accessDetail(err))
				return
			}

			user, err := g.Users.Get(ctx, claims.UserID)
			switch {
			case errors.Is(err, service.ErrNotFound):
				httpx.WriteDetail(w, http.StatusForbidden, detailNotAuthenticated)
				return
			case err != nil:
				l.Error("failed to load user", "user_id", claims.UserID, "error", err)
				httpx.WriteDetail(w, http.StatusInternalServerError, "Internal server error")
				return
			case !user.IsActive:
				httpx.WriteDetail(w, http.StatusForbidden, detailNotAuthenticated)
				return
			}

			match, matched := g.Resolver.Match(strings.TrimPrefix(r.URL.Path, g.Prefix))
			if matched {
				action, err := permx.ActionForMethod(r.Method)
				if err != nil {
					httpx.WriteDetail(w, http.StatusMethodNotAllowed, "Method not allowed")
					return
				}

				names, err := g.Users.PermissionNames(ctx, user.ID)
				if err != nil {
					l.Error("failed to load permissions", "user_id", user.ID, "error", err)
					httpx.WriteDetail(w, http.StatusInternalServerError, "Internal server error")
					return
				}

				decision := permx.Decide(match.Resource, action, match.ObjectID,
					permx.NewSet(names...), g.Permissions.DependencyLookup(ctx))
				if !decision.Allowed {
					httpx.WriteDetail(w, http.StatusForbidden,
						"Permission denied: requires "+decision.Required)
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, userKey{}, user)))
		})
	}
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return "", false
	}
	return token, true
}

// accessDetail maps access validation failures onto the wire detail. Only two
// grades leak out: expired and invalid.
func accessDetail(err error) string {
	if errors.Is(err, service.ErrExpired) {
		return "Access token expired"
	}
	return "Access token invalid"
}
