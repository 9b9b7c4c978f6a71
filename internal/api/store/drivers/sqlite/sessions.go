package sqlite

import (
	"context"
	"time"

	"github.com/comepass/comepass/internal/api/domain"
)

type sessionsRepo struct {
	q dbtx
}

const sessionColumns = `id, user_id, token_value, is_active, expires_at, created_at`

func scanSession(row interface{ Scan(...any) error }) (domain.Session, error) {
	var (
		s      domain.Session
		active int
	)
	err := row.Scan(&s.ID, &s.UserID, &s.TokenValue, &active, &s.ExpiresAt, &s.CreatedAt)
	if err != nil {
		return domain.Session{}, mapErr(err)
	}
	s.IsActive = active != 0
	return s, nil
}

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO sessions (user_id, token_value, is_active, expires_at, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		s.UserID, s.TokenValue, boolToInt(s.IsActive), s.ExpiresAt, s.CreatedAt)
	if err != nil {
		return 0, mapErr(err)
	}
	return res.LastInsertId()
}

func (r *sessionsRepo) GetSessionByID(ctx context.Context, id int64) (domain.Session, error) {
	return scanSession(r.q.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id))
}

func (r *sessionsRepo) GetSessionByValue(ctx context.Context, tokenValue string) (domain.Session, error) {
	return scanSession(r.q.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE token_value = ?`, tokenValue))
}

func (r *sessionsRepo) DeactivateSession(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE sessions SET is_active = 0 WHERE id = ?`, id)
	if err != nil {
		return mapErr(err)
	}
	return requireAffected(res)
}

func (r *sessionsRepo) DeactivateUserSessions(ctx context.Context, userID int64) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE sessions SET is_active = 0 WHERE user_id = ? AND is_active = 1`, userID)
	return mapErr(err)
}

func (r *sessionsRepo) DeleteExpiredSessions(ctx context.Context, cutoff time.Time) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at < ?`, cutoff)
	return mapErr(err)
}
