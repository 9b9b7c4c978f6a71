package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"

	"github.com/comepass/comepass/internal/api/cache"
	"github.com/comepass/comepass/internal/api/domain"
	"github.com/comepass/comepass/internal/api/gpt"
	"github.com/comepass/comepass/internal/api/service"
	"github.com/comepass/comepass/internal/api/store"
	"github.com/comepass/comepass/internal/api/store/drivers/sqlite"
	"github.com/comepass/comepass/pkg/cryptox"
	"github.com/comepass/comepass/pkg/httpx"
	"github.com/comepass/comepass/pkg/jwtx"
	"github.com/comepass/comepass/pkg/permx"
)

type routerFixture struct {
	router *Router
	store  *sqlite.Store
	auth   *service.AuthService
	now    time.Time
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	tokenCache := cache.NewWithClient(client)

	codec, err := jwtx.NewCodec("test-secret", "HS256")
	require.NoError(t, err)

	f := &routerFixture{
		store: st,
		now:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	nowFn := func() time.Time { return f.now }

	f.auth = &service.AuthService{
		Store:      st,
		Cache:      tokenCache,
		Codec:      codec,
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 24 * time.Hour,
		Now:        nowFn,
	}
	users := &service.UserService{Store: st, Auth: f.auth, Now: nowFn}
	roles := &service.RoleService{Store: st, Now: nowFn}
	perms := &service.PermissionService{Store: st, Now: nowFn}
	chat := &service.ChatService{Store: st, Completer: &fakeCompleter{}, Now: nowFn}

	seed := &service.SeedService{Store: st, Now: nowFn}
	require.NoError(t, seed.Run(context.Background()))

	f.router = NewRouter("test", st, tokenCache, newTestLogger())
	f.router.AuthService = f.auth
	f.router.UserService = users
	f.router.RoleService = roles
	f.router.PermissionService = perms
	f.router.ChatService = chat
	f.router.ApplyRoutes()
	return f
}

type fakeCompleter struct{}

func (fakeCompleter) Complete(_ context.Context, _ gpt.Request) (gpt.Message, error) {
	return gpt.Message{Role: gpt.RoleAssistant, Content: "ok"}, nil
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

// userWithRole creates an account and attaches the named role.
func (f *routerFixture) userWithRole(t *testing.T, username, roleName string) domain.User {
	t.Helper()
	ctx := context.Background()

	hash, err := cryptox.HashPassword("correct-horse")
	require.NoError(t, err)
	id, err := f.store.Users().CreateUser(ctx, domain.User{
		Username: username, Email: username + "@example.com",
		PasswordHash: hash, IsActive: true,
		CreatedAt: f.now, UpdatedAt: f.now,
	})
	require.NoError(t, err)

	if roleName != "" {
		role, err := f.store.Roles().GetRoleByName(ctx, roleName)
		require.NoError(t, err)
		require.NoError(t, f.store.Roles().AssignUserRole(ctx, id, role.ID))
	}

	u, err := f.store.Users().GetUserByID(ctx, id)
	require.NoError(t, err)
	return u
}

func (f *routerFixture) token(t *testing.T, username string) string {
	t.Helper()
	res, err := f.auth.Login(context.Background(), username, "correct-horse")
	require.NoError(t, err)
	return res.AccessToken
}

func (f *routerFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func detailOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var d httpx.Detail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	return d.Detail
}

func TestGuardBypassesPublicPaths(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/livez", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, APIPrefix, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Login is reachable without a token.
	rec = f.do(t, http.MethodPost, APIPrefix+"/auth/login", "",
		LoginRequest{Username: "nobody", Password: "x"})
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "Incorrect username or password", detailOf(t, rec))
}

func TestGuardRequiresBearer(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, APIPrefix+"/users", "", nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "Not authenticated", detailOf(t, rec))
}

func TestGuardRejectsBadTokens(t *testing.T) {
	f := newRouterFixture(t)
	f.userWithRole(t, "alice", "staff")

	rec := f.do(t, http.MethodGet, APIPrefix+"/users", "garbage", nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "Access token invalid", detailOf(t, rec))

	token := f.token(t, "alice")
	f.now = f.now.Add(16 * time.Minute)
	rec = f.do(t, http.MethodGet, APIPrefix+"/users", token, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "Access token expired", detailOf(t, rec))
}

func TestGuardRejectsStaleToken(t *testing.T) {
	f := newRouterFixture(t)
	f.userWithRole(t, "alice", "staff")

	ctx := context.Background()
	res, err := f.auth.Login(ctx, "alice", "correct-horse")
	require.NoError(t, err)
	_, err = f.auth.Refresh(ctx, res.RefreshToken)
	require.NoError(t, err)

	rec := f.do(t, http.MethodGet, APIPrefix+"/users", res.AccessToken, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "Access token invalid", detailOf(t, rec))
}

func TestGuardEnforcesActions(t *testing.T) {
	f := newRouterFixture(t)
	target := f.userWithRole(t, "victim", "draft")
	f.userWithRole(t, "reader", "staff")

	token := f.token(t, "reader")

	// Staff can read.
	rec := f.do(t, http.MethodGet, APIPrefix+"/users", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Staff cannot destroy; the denial names the missing permission.
	rec = f.do(t, http.MethodDelete, APIPrefix+"/users/"+itoa(target.ID), token, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "Permission denied: requires destroy_Users", detailOf(t, rec))
}

func TestGuardWildcardAllows(t *testing.T) {
	f := newRouterFixture(t)
	target := f.userWithRole(t, "victim", "draft")
	f.userWithRole(t, "root", "admin")

	token := f.token(t, "root")
	rec := f.do(t, http.MethodDelete, APIPrefix+"/users/"+itoa(target.ID), token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestGuardScopedPermissionDependency(t *testing.T) {
	f := newRouterFixture(t)
	ctx := context.Background()
	scoped := f.userWithRole(t, "scoped", "")

	topicID, err := f.store.Chat().CreateTopic(ctx, domain.Topic{
		Name: "t1", Model: "m", IsActive: true, CreatedAt: f.now, UpdatedAt: f.now,
	})
	require.NoError(t, err)
	scopedName := permx.ScopedName(permx.ActionRead, "ChatTopic", topicID)

	// Grant only the scoped read; its dependency read_ChatTopic is withheld.
	_, err = f.store.Permissions().CreatePermission(ctx, domain.Permission{
		Name:      scopedName,
		Resource:  "ChatTopic",
		ObjectID:  &topicID,
		DependsOn: permx.Name(permx.ActionRead, "ChatTopic"),
		CreatedAt: f.now,
	})
	require.NoError(t, err)
	roleID, err := f.store.Roles().CreateRole(ctx, domain.Role{
		Name: "scoped-only", IsActive: true, CreatedAt: f.now,
	}, []string{scopedName})
	require.NoError(t, err)
	require.NoError(t, f.store.Roles().AssignUserRole(ctx, scoped.ID, roleID))

	token := f.token(t, "scoped")
	path := APIPrefix + "/chat-gpt/messages/topic-" + itoa(topicID)
	rec := f.do(t, http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "Permission denied: requires read_ChatTopic", detailOf(t, rec))

	// With the dependency attached the scoped grant works.
	depRoleID, err := f.store.Roles().CreateRole(ctx, domain.Role{
		Name: "dep", IsActive: true, CreatedAt: f.now,
	}, []string{"read_ChatTopic"})
	require.NoError(t, err)
	require.NoError(t, f.store.Roles().AssignUserRole(ctx, scoped.ID, depRoleID))

	rec = f.do(t, http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestGuardPassThroughPaths(t *testing.T) {
	f := newRouterFixture(t)
	me := f.userWithRole(t, "alice", "draft")
	token := f.token(t, "alice")

	// change-password is not in the rule table; authentication still applies
	// but no permission is required.
	rec := f.do(t, http.MethodPost,
		APIPrefix+"/users/"+itoa(me.ID)+"/change-password", token,
		ChangePasswordRequest{
			OldPassword:     "correct-horse",
			NewPassword:     "fresh-password",
			ConfirmPassword: "fresh-password",
		})
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestGuardInactiveUserDenied(t *testing.T) {
	f := newRouterFixture(t)
	u := f.userWithRole(t, "alice", "admin")
	token := f.token(t, "alice")

	require.NoError(t, f.store.Users().SetUserActive(context.Background(), u.ID, false, f.now))

	rec := f.do(t, http.MethodGet, APIPrefix+"/users", token, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "Not authenticated", detailOf(t, rec))
}

func TestGuardTopicInstanceRoutes(t *testing.T) {
	f := newRouterFixture(t)
	ctx := context.Background()

	topicID, err := f.store.Chat().CreateTopic(ctx, domain.Topic{
		Name: "billing", Model: "m", IsActive: true, CreatedAt: f.now, UpdatedAt: f.now,
	})
	require.NoError(t, err)
	path := APIPrefix + "/chat-gpt/topic/" + itoa(topicID)

	// A user with no permissions can neither read nor rename a topic.
	f.userWithRole(t, "drifter", "draft")
	token := f.token(t, "drifter")

	rec := f.do(t, http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "Permission denied: requires read_ChatTopic", detailOf(t, rec))

	rec = f.do(t, http.MethodPut, path, token,
		UpdateTopicRequest{Name: "hijacked"})
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "Permission denied: requires edit_ChatTopic", detailOf(t, rec))

	// Manager holds read and edit on ChatTopic.
	f.userWithRole(t, "manny", "manager")
	token = f.token(t, "manny")

	rec = f.do(t, http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPut, path, token,
		UpdateTopicRequest{Name: "billing-2", Description: "d", Notes: "n"})
	require.Equal(t, http.StatusOK, rec.Code)
}

// failingUsersStore wraps a working store with a Users repo whose lookups
// fail, standing in for a database outage mid-request.
type failingUsersStore struct {
	store.Store
}

type failingUsersRepo struct {
	store.Users
}

func (failingUsersRepo) GetUserByID(context.Context, int64) (domain.User, error) {
	return domain.User{}, errors.New("database is on fire")
}

func (s failingUsersStore) Users() store.Users {
	return failingUsersRepo{s.Store.Users()}
}

func TestGuardUserLoadFailureIsServerError(t *testing.T) {
	f := newRouterFixture(t)
	f.userWithRole(t, "alice", "staff")
	token := f.token(t, "alice")

	guard := &PermissionGuard{
		Prefix:      APIPrefix,
		Auth:        f.auth,
		Users:       &service.UserService{Store: failingUsersStore{f.store}},
		Permissions: &service.PermissionService{Store: f.store},
		Resolver:    permx.NewResolver(permx.DefaultRules()),
	}
	handler := guard.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, APIPrefix+"/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	// A storage failure is not an authentication verdict.
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "Internal server error", detailOf(t, rec))
}

func TestListEndpointsRateLimited(t *testing.T) {
	f := newRouterFixture(t)
	f.userWithRole(t, "alice", "staff")
	token := f.token(t, "alice")

	// The lenient bucket holds 100; well past that a single client must see
	// a 429 long before the window refills.
	var limited bool
	for i := 0; i < 120; i++ {
		rec := f.do(t, http.MethodGet, APIPrefix+"/users", token, nil)
		if rec.Code == http.StatusTooManyRequests {
			limited = true
			break
		}
		require.Equal(t, http.StatusOK, rec.Code)
	}
	require.True(t, limited)
}
