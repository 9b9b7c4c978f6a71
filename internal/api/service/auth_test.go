package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"

	"github.com/comepass/comepass/internal/api/cache"
	"github.com/comepass/comepass/internal/api/domain"
	"github.com/comepass/comepass/internal/api/store/drivers/sqlite"
	"github.com/comepass/comepass/pkg/cryptox"
	"github.com/comepass/comepass/pkg/jwtx"
)

type authFixture struct {
	auth  *AuthService
	store *sqlite.Store
	now   time.Time
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	codec, err := jwtx.NewCodec("test-secret", "HS256")
	require.NoError(t, err)

	f := &authFixture{
		store: st,
		now:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.auth = &AuthService{
		Store:      st,
		Cache:      cache.NewWithClient(client),
		Codec:      codec,
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 24 * time.Hour,
		Now:        func() time.Time { return f.now },
	}
	return f
}

func (f *authFixture) advance(d time.Duration) { f.now = f.now.Add(d) }

func (f *authFixture) createUser(t *testing.T, username, email, password string, active bool) int64 {
	t.Helper()

	hash, err := cryptox.HashPassword(password)
	require.NoError(t, err)

	id, err := f.store.Users().CreateUser(context.Background(), domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsActive:     active,
		CreatedAt:    f.now,
		UpdatedAt:    f.now,
	})
	require.NoError(t, err)
	return id
}

func TestLoginThenValidate(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	userID := f.createUser(t, "alice", "alice@example.com", "correct-horse", true)

	res, err := f.auth.Login(ctx, "alice", "correct-horse")
	require.NoError(t, err)
	require.Equal(t, userID, res.User.ID)
	require.NotEmpty(t, res.AccessToken)
	require.NotEmpty(t, res.RefreshToken)
	require.NotEqual(t, res.AccessToken, res.RefreshToken)

	claims, err := f.auth.ValidateAccess(ctx, res.AccessToken)
	require.NoError(t, err)
	require.Equal(t, userID, claims.UserID)
}

func TestLoginByEmail(t *testing.T) {
	f := newAuthFixture(t)
	f.createUser(t, "bob", "bob@example.com", "correct-horse", true)

	_, err := f.auth.Login(context.Background(), "bob@example.com", "correct-horse")
	require.NoError(t, err)

	// An '@' identifier is only ever looked up as an email.
	_, err = f.auth.Login(context.Background(), "bob@nowhere.example", "correct-horse")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLoginFailureTaxonomy(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.createUser(t, "carol", "carol@example.com", "correct-horse", true)
	f.createUser(t, "dave", "dave@example.com", "correct-horse", false)

	_, err := f.auth.Login(ctx, "nobody", "whatever")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = f.auth.Login(ctx, "dave", "correct-horse")
	require.ErrorIs(t, err, ErrInactive)

	_, err = f.auth.Login(ctx, "carol", "wrong-password")
	require.ErrorIs(t, err, ErrWrongPassword)
}

func TestRefreshRotatesAccess(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.createUser(t, "erin", "erin@example.com", "correct-horse", true)

	res, err := f.auth.Login(ctx, "erin", "correct-horse")
	require.NoError(t, err)

	f.advance(time.Minute)
	fresh, err := f.auth.Refresh(ctx, res.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, res.AccessToken, fresh)

	// The new token validates; the one it replaced is stale.
	_, err = f.auth.ValidateAccess(ctx, fresh)
	require.NoError(t, err)
	_, err = f.auth.ValidateAccess(ctx, res.AccessToken)
	require.ErrorIs(t, err, ErrStaleToken)
}

func TestRefreshRotatesWithinSameSecond(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.createUser(t, "mia", "mia@example.com", "correct-horse", true)

	res, err := f.auth.Login(ctx, "mia", "correct-horse")
	require.NoError(t, err)

	// The clock does not move, so user id, session id and expiry are all
	// identical between the two issuances. The nonce must still make the
	// replacement a different byte string, or the overwrite revokes nothing.
	fresh, err := f.auth.Refresh(ctx, res.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, res.AccessToken, fresh)

	_, err = f.auth.ValidateAccess(ctx, fresh)
	require.NoError(t, err)
	_, err = f.auth.ValidateAccess(ctx, res.AccessToken)
	require.ErrorIs(t, err, ErrStaleToken)
}

func TestValidateAccessMalformed(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.createUser(t, "frank", "frank@example.com", "correct-horse", true)

	_, err := f.auth.ValidateAccess(ctx, "not-a-jwt")
	require.ErrorIs(t, err, ErrMalformed)

	// A refresh token presented as an access token is malformed, not stale.
	res, err := f.auth.Login(ctx, "frank", "correct-horse")
	require.NoError(t, err)
	_, err = f.auth.ValidateAccess(ctx, res.RefreshToken)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestValidateAccessExpired(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.createUser(t, "grace", "grace@example.com", "correct-horse", true)

	res, err := f.auth.Login(ctx, "grace", "correct-horse")
	require.NoError(t, err)

	f.advance(16 * time.Minute)
	_, err = f.auth.ValidateAccess(ctx, res.AccessToken)
	require.ErrorIs(t, err, ErrExpired)
}

func TestValidateAccessRevokedSession(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.createUser(t, "heidi", "heidi@example.com", "correct-horse", true)

	res, err := f.auth.Login(ctx, "heidi", "correct-horse")
	require.NoError(t, err)

	claims, err := f.auth.ValidateAccess(ctx, res.AccessToken)
	require.NoError(t, err)

	require.NoError(t, f.auth.Revoke(ctx, claims.RefreshID))
	_, err = f.auth.ValidateAccess(ctx, res.AccessToken)
	require.ErrorIs(t, err, ErrSessionInvalid)

	// The refresh token dies with the session. Refresh reports the precise
	// session condition rather than the folded access-path error.
	_, err = f.auth.Refresh(ctx, res.RefreshToken)
	require.ErrorIs(t, err, ErrInactive)
}

func TestRefreshExpiredToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.createUser(t, "ivan", "ivan@example.com", "correct-horse", true)

	res, err := f.auth.Login(ctx, "ivan", "correct-horse")
	require.NoError(t, err)

	f.advance(25 * time.Hour)
	_, err = f.auth.Refresh(ctx, res.RefreshToken)
	require.ErrorIs(t, err, ErrExpired)
}

func TestRefreshMalformed(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.createUser(t, "judy", "judy@example.com", "correct-horse", true)

	_, err := f.auth.Refresh(ctx, "garbage")
	require.ErrorIs(t, err, ErrMalformed)

	// An access token presented for refresh is malformed.
	res, err := f.auth.Login(ctx, "judy", "correct-horse")
	require.NoError(t, err)
	_, err = f.auth.Refresh(ctx, res.AccessToken)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestConcurrentLoginsAreIndependentSessions(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.createUser(t, "kim", "kim@example.com", "correct-horse", true)

	first, err := f.auth.Login(ctx, "kim", "correct-horse")
	require.NoError(t, err)
	f.advance(time.Second)
	second, err := f.auth.Login(ctx, "kim", "correct-horse")
	require.NoError(t, err)

	// Each login opens its own session; neither invalidates the other.
	_, err = f.auth.ValidateAccess(ctx, first.AccessToken)
	require.NoError(t, err)
	_, err = f.auth.ValidateAccess(ctx, second.AccessToken)
	require.NoError(t, err)
}

func TestRevokeUserSessions(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	userID := f.createUser(t, "leo", "leo@example.com", "correct-horse", true)

	res, err := f.auth.Login(ctx, "leo", "correct-horse")
	require.NoError(t, err)

	require.NoError(t, f.auth.RevokeUserSessions(ctx, userID))
	_, err = f.auth.ValidateAccess(ctx, res.AccessToken)
	require.ErrorIs(t, err, ErrSessionInvalid)
}
