package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/comepass/comepass/internal/api/domain"
	"github.com/comepass/comepass/internal/api/service"
	"github.com/comepass/comepass/pkg/httpx"
	"github.com/comepass/comepass/pkg/permx"
	"github.com/comepass/comepass/pkg/slogx"
)

type TopicResponse struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Model        string    `json:"model"`
	SystemPrompt string    `json:"system_prompt"`
	FirstMessage string    `json:"first_message"`
	Notes        string    `json:"notes"`
	Temperature  float64   `json:"temperature"`
	MaxTokens    int       `json:"max_tokens"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func newTopicResponse(t domain.Topic) TopicResponse {
	return TopicResponse{
		ID:           t.ID,
		Name:         t.Name,
		Description:  t.Description,
		Model:        t.Model,
		SystemPrompt: t.SystemPrompt,
		FirstMessage: t.FirstMessage,
		Notes:        t.Notes,
		Temperature:  t.Temperature,
		MaxTokens:    t.MaxTokens,
		IsActive:     t.IsActive,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

type MessageResponse struct {
	ID        int64     `json:"id"`
	TopicID   int64     `json:"topic_id"`
	UserID    int64     `json:"user_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func newMessageResponse(m domain.Message) MessageResponse {
	return MessageResponse{
		ID:        m.ID,
		TopicID:   m.TopicID,
		UserID:    m.UserID,
		Role:      m.Role,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}

type ChatHandler struct {
	ChatService *service.ChatService
}

type CreateTopicRequest struct {
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Model        string  `json:"model"`
	SystemPrompt string  `json:"system_prompt"`
	FirstMessage string  `json:"first_message"`
	Notes        string  `json:"notes"`
	Temperature  float64 `json:"temperature"`
	MaxTokens    int     `json:"max_tokens"`
}

type UpdateTopicRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Notes       string `json:"notes"`
}

// ListTopics handles topic listing
//
//	@Summary	List chat topics
//	@Tags		Chat
//	@Produce	json
//	@Param		page	query		int	false	"Page number"	default(1)
//	@Param		limit	query		int	false	"Page size"		default(10)
//	@Success	200		{array}		TopicResponse
//	@Failure	403		{object}	httpx.Detail
//	@Security	BearerAuth
//	@Router		/chat-gpt/topic [get].
func (h *ChatHandler) ListTopics(w http.ResponseWriter, r *http.Request) {
	topics, err := h.ChatService.ListTopics(r.Context(), pageFromQuery(r))
	if err != nil {
		slogx.FromContext(r.Context()).Error("failed to list topics", "error", err)
		httpx.WriteDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	out := make([]TopicResponse, len(topics))
	for i, t := range topics {
		out[i] = newTopicResponse(t)
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// CreateTopic handles topic creation
//
//	@Summary		Create a chat topic
//	@Description	Creates a topic. The system prompt and first message are write-once; later edits cannot change them.
//	@Tags			Chat
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateTopicRequest	true	"Topic definition"
//	@Success		201		{object}	TopicResponse
//	@Failure		409		{object}	httpx.Detail	"Topic name taken"
//	@Security		BearerAuth
//	@Router			/chat-gpt/topic [post].
func (h *ChatHandler) CreateTopic(w http.ResponseWriter, r *http.Request) {
	var req CreateTopicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		httpx.WriteDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	topic, err := h.ChatService.CreateTopic(r.Context(), domain.Topic{
		Name:         req.Name,
		Description:  req.Description,
		Model:        req.Model,
		SystemPrompt: req.SystemPrompt,
		FirstMessage: req.FirstMessage,
		Notes:        req.Notes,
		Temperature:  req.Temperature,
		MaxTokens:    req.MaxTokens,
	})
	switch {
	case errors.Is(err, service.ErrAlreadyExists):
		httpx.WriteDetail(w, http.StatusConflict, "Topic name already in use")
		return
	case err != nil:
		slogx.FromContext(r.Context()).Error("failed to create topic", "error", err)
		httpx.WriteDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, newTopicResponse(topic))
}

// GetTopic handles single topic retrieval
//
//	@Summary	Get a chat topic
//	@Tags		Chat
//	@Produce	json
//	@Param		id	path		int	true	"Topic id"
//	@Success	200	{object}	TopicResponse
//	@Failure	404	{object}	httpx.Detail
//	@Security	BearerAuth
//	@Router		/chat-gpt/topic/{id} [get].
func (h *ChatHandler) GetTopic(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.WriteDetail(w, http.StatusBadRequest, "Invalid topic id")
		return
	}

	topic, err := h.ChatService.GetTopic(r.Context(), id)
	if errors.Is(err, service.ErrNotFound) {
		httpx.WriteDetail(w, http.StatusNotFound, "Topic not found")
		return
	}
	if err != nil {
		httpx.WriteDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newTopicResponse(topic))
}

// UpdateTopic handles topic edits
//
//	@Summary	Update a chat topic
//	@Tags		Chat
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int					true	"Topic id"
//	@Param		request	body		UpdateTopicRequest	true	"Mutable fields"
//	@Success	200		{object}	TopicResponse
//	@Failure	404		{object}	httpx.Detail
//	@Security	BearerAuth
//	@Router		/chat-gpt/topic/{id} [put].
func (h *ChatHandler) UpdateTopic(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.WriteDetail(w, http.StatusBadRequest, "Invalid topic id")
		return
	}

	var req UpdateTopicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	topic, err := h.ChatService.UpdateTopic(r.Context(), id, req.Name, req.Description, req.Notes)
	switch {
	case errors.Is(err, service.ErrNotFound):
		httpx.WriteDetail(w, http.StatusNotFound, "Topic not found")
		return
	case errors.Is(err, service.ErrAlreadyExists):
		httpx.WriteDetail(w, http.StatusConflict, "Topic name already in use")
		return
	case err != nil:
		httpx.WriteDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newTopicResponse(topic))
}

type SendMessageRequest struct {
	TopicID int64  `json:"topic_id"`
	Content string `json:"content"`
}

// ListMessages handles message listing across topics
//
//	@Summary	List chat messages
//	@Tags		Chat
//	@Produce	json
//	@Param		page	query		int	false	"Page number"	default(1)
//	@Param		limit	query		int	false	"Page size"		default(10)
//	@Success	200		{array}		MessageResponse
//	@Failure	403		{object}	httpx.Detail
//	@Security	BearerAuth
//	@Router		/chat-gpt/messages [get].
func (h *ChatHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.ChatService.ListMessages(r.Context(), pageFromQuery(r))
	if err != nil {
		slogx.FromContext(r.Context()).Error("failed to list messages", "error", err)
		httpx.WriteDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	out := make([]MessageResponse, len(msgs))
	for i, m := range msgs {
		out[i] = newMessageResponse(m)
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// SendMessage handles the completion round trip
//
//	@Summary		Send a chat message
//	@Description	Persists the caller's message, sends the topic context to the model and returns the assistant reply.
//	@Tags			Chat
//	@Accept			json
//	@Produce		json
//	@Param			request	body		SendMessageRequest	true	"Message"
//	@Success		201		{object}	MessageResponse		"Assistant reply"
//	@Failure		404		{object}	httpx.Detail		"Unknown topic"
//	@Failure		502		{object}	httpx.Detail		"Upstream completion failure"
//	@Security		BearerAuth
//	@Router			/chat-gpt/messages [post].
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	caller, ok := UserFromContext(r.Context())
	if !ok {
		httpx.WriteDetail(w, http.StatusForbidden, detailNotAuthenticated)
		return
	}

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TopicID <= 0 || req.Content == "" {
		httpx.WriteDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	reply, err := h.ChatService.SendMessage(r.Context(), req.TopicID, caller.ID, req.Content)
	switch {
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrTopicInactive):
		httpx.WriteDetail(w, http.StatusNotFound, "Topic not found")
		return
	case err != nil:
		slogx.FromContext(r.Context()).Error("completion failed", "error", err)
		httpx.WriteDetail(w, http.StatusBadGateway, "Completion failed")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, newMessageResponse(reply))
}

// ListTopicMessages handles per-topic message listing
//
//	@Summary		List a topic's messages
//	@Description	Returns the topic's messages. Non-admin callers only see their own turns.
//	@Tags			Chat
//	@Produce		json
//	@Param			slug	path		string	true	"topic-{id}"
//	@Param			page	query		int		false	"Page number"	default(1)
//	@Param			limit	query		int		false	"Page size"		default(10)
//	@Success		200		{array}		MessageResponse
//	@Failure		404		{object}	httpx.Detail
//	@Security		BearerAuth
//	@Router			/chat-gpt/messages/topic-{id} [get].
func (h *ChatHandler) ListTopicMessages(w http.ResponseWriter, r *http.Request) {
	rest, found := strings.CutPrefix(r.PathValue("slug"), "topic-")
	topicID, err := strconv.ParseInt(rest, 10, 64)
	if !found || err != nil || topicID <= 0 {
		httpx.WriteDetail(w, http.StatusNotFound, "Topic not found")
		return
	}

	if _, err := h.ChatService.GetTopic(r.Context(), topicID); errors.Is(err, service.ErrNotFound) {
		httpx.WriteDetail(w, http.StatusNotFound, "Topic not found")
		return
	} else if err != nil {
		httpx.WriteDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	// Scope to the caller's own messages unless they hold the topic wildcard.
	var userFilter *int64
	if caller, ok := UserFromContext(r.Context()); ok {
		names, err := h.ChatService.Store.Users().ListPermissionNames(r.Context(), caller.ID)
		if err != nil {
			httpx.WriteDetail(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if !permx.NewSet(names...).Has(permx.Name(permx.ActionAll, "ChatMessage")) {
			id := caller.ID
			userFilter = &id
		}
	}

	msgs, err := h.ChatService.ListTopicMessages(r.Context(), topicID, userFilter, pageFromQuery(r))
	if err != nil {
		httpx.WriteDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	out := make([]MessageResponse, len(msgs))
	for i, m := range msgs {
		out[i] = newMessageResponse(m)
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}
