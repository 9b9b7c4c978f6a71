package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/comepass/comepass/internal/api/domain"
	"github.com/comepass/comepass/internal/api/store"
)

type chatRepo struct {
	q dbtx
}

const topicColumns = `id, name, description, model, system_prompt, first_message, notes,
	temperature, max_tokens, is_active, created_at, updated_at`

const messageColumns = `id, topic_id, user_id, role, content, created_at`

func scanTopic(row interface{ Scan(...any) error }) (domain.Topic, error) {
	var (
		t      domain.Topic
		active int
	)
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.Model, &t.SystemPrompt,
		&t.FirstMessage, &t.Notes, &t.Temperature, &t.MaxTokens, &active,
		&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return domain.Topic{}, mapErr(err)
	}
	t.IsActive = active != 0
	return t, nil
}

func scanMessage(row interface{ Scan(...any) error }) (domain.Message, error) {
	var m domain.Message
	err := row.Scan(&m.ID, &m.TopicID, &m.UserID, &m.Role, &m.Content, &m.CreatedAt)
	if err != nil {
		return domain.Message{}, mapErr(err)
	}
	return m, nil
}

func (r *chatRepo) CreateTopic(ctx context.Context, t domain.Topic) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO chat_topics (name, description, model, system_prompt, first_message,
		 notes, temperature, max_tokens, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Name, t.Description, t.Model, t.SystemPrompt, t.FirstMessage,
		t.Notes, t.Temperature, t.MaxTokens, boolToInt(t.IsActive),
		t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return 0, mapErr(err)
	}
	return res.LastInsertId()
}

func (r *chatRepo) GetTopicByID(ctx context.Context, id int64) (domain.Topic, error) {
	return scanTopic(r.q.QueryRowContext(ctx,
		`SELECT `+topicColumns+` FROM chat_topics WHERE id = ?`, id))
}

func (r *chatRepo) ListTopics(ctx context.Context, page store.Page) ([]domain.Topic, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+topicColumns+` FROM chat_topics ORDER BY id LIMIT ? OFFSET ?`,
		fetchLimit(page), page.Offset())
	if err != nil {
		return nil, err
	}
	return collectTopics(rows)
}

func (r *chatRepo) ListUserTopics(ctx context.Context, userID int64, page store.Page) ([]domain.Topic, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT DISTINCT t.id, t.name, t.description, t.model, t.system_prompt,
		     t.first_message, t.notes, t.temperature, t.max_tokens, t.is_active,
		     t.created_at, t.updated_at
		 FROM chat_topics t
		 JOIN chat_messages m ON m.topic_id = t.id
		 WHERE m.user_id = ?
		 ORDER BY t.id LIMIT ? OFFSET ?`,
		userID, fetchLimit(page), page.Offset())
	if err != nil {
		return nil, err
	}
	return collectTopics(rows)
}

func (r *chatRepo) UpdateTopic(ctx context.Context, id int64, name, description, notes string, updatedAt time.Time) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE chat_topics
		 SET name = ?, description = ?, notes = ?, updated_at = ?
		 WHERE id = ?`,
		name, description, notes, updatedAt, id)
	if err != nil {
		return mapErr(err)
	}
	return requireAffected(res)
}

func (r *chatRepo) CreateMessage(ctx context.Context, m domain.Message) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO chat_messages (topic_id, user_id, role, content, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		m.TopicID, m.UserID, m.Role, m.Content, m.CreatedAt)
	if err != nil {
		return 0, mapErr(err)
	}
	return res.LastInsertId()
}

func (r *chatRepo) ListMessages(ctx context.Context, page store.Page) ([]domain.Message, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+messageColumns+` FROM chat_messages ORDER BY id LIMIT ? OFFSET ?`,
		fetchLimit(page), page.Offset())
	if err != nil {
		return nil, err
	}
	return collectMessages(rows)
}

func (r *chatRepo) ListTopicMessages(ctx context.Context, topicID int64, userID *int64, page store.Page) ([]domain.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM chat_messages WHERE topic_id = ?`
	args := []any{topicID}
	if userID != nil {
		query += ` AND user_id = ?`
		args = append(args, *userID)
	}
	query += ` ORDER BY id LIMIT ? OFFSET ?`
	args = append(args, fetchLimit(page), page.Offset())

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectMessages(rows)
}

func (r *chatRepo) ListRecentTopicMessages(ctx context.Context, topicID int64, n int) ([]domain.Message, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+messageColumns+` FROM (
		     SELECT `+messageColumns+` FROM chat_messages
		     WHERE topic_id = ? ORDER BY id DESC LIMIT ?
		 ) ORDER BY id`,
		topicID, n)
	if err != nil {
		return nil, err
	}
	return collectMessages(rows)
}

func collectTopics(rows *sql.Rows) ([]domain.Topic, error) {
	defer rows.Close()
	var topics []domain.Topic
	for rows.Next() {
		t, err := scanTopic(rows)
		if err != nil {
			return nil, err
		}
		topics = append(topics, t)
	}
	return topics, rows.Err()
}

func collectMessages(rows *sql.Rows) ([]domain.Message, error) {
	defer rows.Close()
	var msgs []domain.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
