package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/comepass/comepass/internal/api/cache"
	"github.com/comepass/comepass/internal/api/domain"
	"github.com/comepass/comepass/internal/api/store"
	"github.com/comepass/comepass/pkg/cryptox"
	"github.com/comepass/comepass/pkg/jwtx"
	"github.com/comepass/comepass/pkg/slogx"
)

var (
	ErrNotFound      = errors.New("not_found")
	ErrInactive      = errors.New("inactive_user")
	ErrWrongPassword = errors.New("wrong_password")
	ErrInternal      = errors.New("internal_error")

	// Access validation failure taxonomy, in evaluation order.
	ErrMalformed      = errors.New("token_malformed")
	ErrExpired        = errors.New("token_expired")
	ErrSessionInvalid = errors.New("session_invalid")
	ErrStaleToken     = errors.New("token_stale")
)

// AuthService owns the token lifecycle: login, refresh, access validation and
// revocation. Times come from Now so the canonical clock is injectable.
type AuthService struct {
	Store      store.Store
	Cache      *cache.AccessTokenCache
	Codec      *jwtx.Codec
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Now supplies wall-clock time in the canonical timezone.
	// Defaults to time.Now.
	Now func() time.Time
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Login authenticates by username or email plus password and opens a new
// session. An identifier containing '@' is treated as an email, anything else
// as a username; exactly one lookup runs. The distinct failure reasons stay
// internal, handlers collapse them to one generic message.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (domain.LoginResult, error) {
	l := slogx.FromContext(ctx)
	now := s.now()

	var (
		user domain.User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = s.Store.Users().GetUserByEmail(ctx, identifier)
	} else {
		user, err = s.Store.Users().GetUserByUsername(ctx, identifier)
	}
	if errors.Is(err, store.ErrNotFound) {
		return domain.LoginResult{}, ErrNotFound
	}
	if err != nil {
		return domain.LoginResult{}, err
	}

	if !user.IsActive {
		return domain.LoginResult{}, ErrInactive
	}
	if cryptox.VerifyPassword(password, user.PasswordHash) != nil {
		return domain.LoginResult{}, ErrWrongPassword
	}

	refreshToken, sessionID, err := s.openSession(ctx, user.ID, now)
	if err != nil {
		return domain.LoginResult{}, err
	}

	accessToken, err := s.issueAccess(ctx, user.ID, sessionID, now)
	if err != nil {
		return domain.LoginResult{}, err
	}

	l.Info("user logged in",
		slog.Int64("user_id", user.ID),
		slog.Int64("session_id", sessionID),
	)
	return domain.LoginResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// openSession signs a refresh token and persists it as a session row. On a
// token_value collision it regenerates the nonce and retries once; a second
// collision is reported as ErrInternal.
func (s *AuthService) openSession(ctx context.Context, userID int64, now time.Time) (string, int64, error) {
	expiresAt := now.Add(s.RefreshTTL)

	for attempt := 0; attempt < 2; attempt++ {
		nonce, err := cryptox.GenerateNonce(cryptox.NonceSize)
		if err != nil {
			return "", 0, err
		}
		token, err := s.Codec.Encode(jwtx.NewRefreshClaims(userID, expiresAt, nonce))
		if err != nil {
			return "", 0, err
		}

		sessionID, err := s.Store.Sessions().CreateSession(ctx, domain.Session{
			UserID:     userID,
			TokenValue: token,
			IsActive:   true,
			ExpiresAt:  expiresAt,
			CreatedAt:  now,
		})
		if errors.Is(err, store.ErrAlreadyExists) {
			continue
		}
		if err != nil {
			return "", 0, err
		}
		return token, sessionID, nil
	}

	slogx.FromContext(ctx).Error("refresh token collided twice", slog.Int64("user_id", userID))
	return "", 0, ErrInternal
}

// issueAccess signs an access token bound to the session and stores it as the
// session's sole trusted token. The cache overwrite revokes whatever access
// token the session held before; the nonce guarantees the new token is a new
// byte string even when it is minted in the same second as its predecessor.
func (s *AuthService) issueAccess(ctx context.Context, userID, sessionID int64, now time.Time) (string, error) {
	nonce, err := cryptox.GenerateNonce(cryptox.NonceSize)
	if err != nil {
		return "", err
	}
	token, err := s.Codec.Encode(jwtx.NewAccessClaims(userID, sessionID, now.Add(s.AccessTTL), nonce))
	if err != nil {
		return "", err
	}
	if err := s.Cache.Set(ctx, sessionID, token, s.AccessTTL); err != nil {
		return "", err
	}
	return token, nil
}

// evaluateSession checks a session in the fixed order NotFound, Inactive,
// Expired and reports the first condition that holds. Refresh propagates
// these verbatim; ValidateAccess folds them into ErrSessionInvalid.
func evaluateSession(sess domain.Session, err error, now time.Time) (domain.Session, error) {
	if errors.Is(err, store.ErrNotFound) {
		return domain.Session{}, ErrNotFound
	}
	if err != nil {
		return domain.Session{}, err
	}
	if !sess.IsActive {
		return domain.Session{}, ErrInactive
	}
	if sess.Expired(now) {
		return domain.Session{}, ErrExpired
	}
	return sess, nil
}

func isSessionFailure(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrInactive) || errors.Is(err, ErrExpired)
}

// Refresh exchanges a valid refresh token for a fresh access token bound to
// the same session. The cache entry is overwritten with a full TTL, which is
// what invalidates the previous access token. Session failures come back
// verbatim: ErrNotFound, ErrInactive or ErrExpired.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	now := s.now()

	claims, err := s.Codec.Decode(refreshToken)
	if err != nil || claims.Type != jwtx.TypeRefresh {
		return "", ErrMalformed
	}
	if !claims.ExpiresAtTime().After(now) {
		return "", ErrExpired
	}

	sess, err := s.Store.Sessions().GetSessionByValue(ctx, refreshToken)
	sess, err = evaluateSession(sess, err, now)
	if err != nil {
		return "", err
	}

	return s.issueAccess(ctx, sess.UserID, sess.ID, now)
}

// ValidateAccess runs the four-step access check and returns the claims only
// when every step passes:
//
//  1. decode, signature and shape (ErrMalformed)
//  2. embedded expiry against now (ErrExpired)
//  3. session evaluation (ErrSessionInvalid)
//  4. byte equality against the cached active token (ErrStaleToken)
func (s *AuthService) ValidateAccess(ctx context.Context, accessToken string) (jwtx.Claims, error) {
	now := s.now()

	claims, err := s.Codec.Decode(accessToken)
	if err != nil || claims.Type != jwtx.TypeAccess {
		return jwtx.Claims{}, ErrMalformed
	}
	if !claims.ExpiresAtTime().After(now) {
		return jwtx.Claims{}, ErrExpired
	}

	sess, err := s.Store.Sessions().GetSessionByID(ctx, claims.RefreshID)
	if _, err = evaluateSession(sess, err, now); err != nil {
		if isSessionFailure(err) {
			return jwtx.Claims{}, ErrSessionInvalid
		}
		return jwtx.Claims{}, err
	}

	active, err := s.Cache.Get(ctx, claims.RefreshID)
	if errors.Is(err, cache.ErrMiss) {
		return jwtx.Claims{}, ErrStaleToken
	}
	if err != nil {
		return jwtx.Claims{}, err
	}
	if subtle.ConstantTimeCompare([]byte(active), []byte(accessToken)) != 1 {
		return jwtx.Claims{}, ErrStaleToken
	}

	return claims, nil
}

// Revoke deactivates a session and drops its cached access token. The row is
// kept for audit.
func (s *AuthService) Revoke(ctx context.Context, sessionID int64) error {
	err := s.Store.Sessions().DeactivateSession(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return s.Cache.Delete(ctx, sessionID)
}

// RevokeUserSessions deactivates every active session the user holds.
func (s *AuthService) RevokeUserSessions(ctx context.Context, userID int64) error {
	return s.Store.Sessions().DeactivateUserSessions(ctx, userID)
}
