package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/comepass/comepass/internal/api/domain"
	"github.com/comepass/comepass/internal/api/gpt"
	"github.com/comepass/comepass/internal/api/store"
	"github.com/comepass/comepass/pkg/slogx"
)

// completionWindow is how many recent messages accompany the system prompt
// when building completion context.
const completionWindow = 10

var ErrTopicInactive = errors.New("topic_inactive")

// Completer is the slice of the gpt client the chat service needs.
type Completer interface {
	Complete(ctx context.Context, req gpt.Request) (gpt.Message, error)
}

// ChatService manages topics and runs the completion round trip.
type ChatService struct {
	Store     store.Store
	Completer Completer

	Now func() time.Time
}

func (s *ChatService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// CreateTopic inserts a topic. SystemPrompt and FirstMessage are write-once
// at creation; UpdateTopic cannot change them.
func (s *ChatService) CreateTopic(ctx context.Context, t domain.Topic) (domain.Topic, error) {
	now := s.now()
	t.IsActive = true
	t.CreatedAt = now
	t.UpdatedAt = now

	id, err := s.Store.Chat().CreateTopic(ctx, t)
	if errors.Is(err, store.ErrAlreadyExists) {
		return domain.Topic{}, ErrAlreadyExists
	}
	if err != nil {
		return domain.Topic{}, err
	}
	t.ID = id
	return t, nil
}

func (s *ChatService) GetTopic(ctx context.Context, id int64) (domain.Topic, error) {
	t, err := s.Store.Chat().GetTopicByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Topic{}, ErrNotFound
	}
	return t, err
}

func (s *ChatService) ListTopics(ctx context.Context, page store.Page) ([]domain.Topic, error) {
	return s.Store.Chat().ListTopics(ctx, page)
}

func (s *ChatService) ListUserTopics(ctx context.Context, userID int64, page store.Page) ([]domain.Topic, error) {
	return s.Store.Chat().ListUserTopics(ctx, userID, page)
}

// UpdateTopic edits the mutable topic fields only.
func (s *ChatService) UpdateTopic(ctx context.Context, id int64, name, description, notes string) (domain.Topic, error) {
	err := s.Store.Chat().UpdateTopic(ctx, id, name, description, notes, s.now())
	if errors.Is(err, store.ErrNotFound) {
		return domain.Topic{}, ErrNotFound
	}
	if errors.Is(err, store.ErrAlreadyExists) {
		return domain.Topic{}, ErrAlreadyExists
	}
	if err != nil {
		return domain.Topic{}, err
	}
	return s.GetTopic(ctx, id)
}

func (s *ChatService) ListMessages(ctx context.Context, page store.Page) ([]domain.Message, error) {
	return s.Store.Chat().ListMessages(ctx, page)
}

func (s *ChatService) ListTopicMessages(ctx context.Context, topicID int64, userID *int64, page store.Page) ([]domain.Message, error) {
	return s.Store.Chat().ListTopicMessages(ctx, topicID, userID, page)
}

// SendMessage runs the completion round trip: persist the user's message,
// build context from the topic's system prompt plus the newest messages
// oldest-first, call the model, persist and return the assistant reply.
func (s *ChatService) SendMessage(ctx context.Context, topicID, userID int64, content string) (domain.Message, error) {
	topic, err := s.GetTopic(ctx, topicID)
	if err != nil {
		return domain.Message{}, err
	}
	if !topic.IsActive {
		return domain.Message{}, ErrTopicInactive
	}

	now := s.now()
	userMsg := domain.Message{
		TopicID:   topicID,
		UserID:    userID,
		Role:      gpt.RoleUser,
		Content:   content,
		CreatedAt: now,
	}
	if userMsg.ID, err = s.Store.Chat().CreateMessage(ctx, userMsg); err != nil {
		return domain.Message{}, err
	}

	recent, err := s.Store.Chat().ListRecentTopicMessages(ctx, topicID, completionWindow)
	if err != nil {
		return domain.Message{}, err
	}

	msgs := make([]gpt.Message, 0, len(recent)+1)
	msgs = append(msgs, gpt.Message{Role: gpt.RoleSystem, Content: topic.SystemPrompt})
	for _, m := range recent {
		msgs = append(msgs, gpt.Message{Role: m.Role, Content: m.Content})
	}

	reply, err := s.Completer.Complete(ctx, gpt.Request{
		Model:       topic.Model,
		Messages:    msgs,
		Temperature: topic.Temperature,
		MaxTokens:   topic.MaxTokens,
	})
	if err != nil {
		slogx.FromContext(ctx).Error("completion failed",
			slog.Int64("topic_id", topicID),
			slog.Any("error", err),
		)
		return domain.Message{}, err
	}

	assistantMsg := domain.Message{
		TopicID:   topicID,
		UserID:    userID,
		Role:      gpt.RoleAssistant,
		Content:   reply.Content,
		CreatedAt: s.now(),
	}
	if assistantMsg.ID, err = s.Store.Chat().CreateMessage(ctx, assistantMsg); err != nil {
		return domain.Message{}, err
	}
	return assistantMsg, nil
}
