package domain

import "time"

// Session is the durable record of one login. The refresh token value is the
// credential; the row survives revocation (is_active flips false) so that the
// login history stays auditable.
type Session struct {
	ID         int64
	UserID     int64
	TokenValue string
	IsActive   bool
	ExpiresAt  time.Time
	CreatedAt  time.Time
}

// Expired reports whether the session's refresh window has passed.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}
