package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/comepass/comepass/internal/api/domain"
	"github.com/comepass/comepass/internal/api/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func seedUser(t *testing.T, s *Store, username, email string) int64 {
	t.Helper()

	id, err := s.Users().CreateUser(context.Background(), domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: "$argon2id$test",
		IsActive:     true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	})
	require.NoError(t, err)
	return id
}

func TestUsersCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id := seedUser(t, s, "alice", "alice@example.com")

	u, err := s.Users().GetUserByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "alice", u.Username)
	require.True(t, u.IsActive)

	byName, err := s.Users().GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, id, byName.ID)

	byEmail, err := s.Users().GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, id, byEmail.ID)

	// The mutation carries the caller's clock; the repo stamps exactly that.
	stamp := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	require.NoError(t, s.Users().UpdateUser(ctx, id, "alice2", "alice2@example.com", stamp))
	u, err = s.Users().GetUserByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "alice2", u.Username)
	require.True(t, u.UpdatedAt.Equal(stamp))

	require.NoError(t, s.Users().DeleteUser(ctx, id))
	_, err = s.Users().GetUserByID(ctx, id)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreateUserDuplicate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedUser(t, s, "bob", "bob@example.com")

	_, err := s.Users().CreateUser(ctx, domain.User{
		Username: "bob", Email: "other@example.com",
		PasswordHash: "h", IsActive: true,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestRolesAndPermissionNames(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	userID := seedUser(t, s, "carol", "carol@example.com")

	for _, name := range []string{"read_Users", "add_Users"} {
		_, err := s.Permissions().CreatePermission(ctx, domain.Permission{
			Name: name, Resource: "Users", CreatedAt: time.Now(),
		})
		require.NoError(t, err)
	}

	roleID, err := s.Roles().CreateRole(ctx, domain.Role{
		Name: "staff", IsActive: true, CreatedAt: time.Now(),
	}, []string{"read_Users", "add_Users"})
	require.NoError(t, err)

	require.NoError(t, s.Roles().AssignUserRole(ctx, userID, roleID))

	names, err := s.Users().ListPermissionNames(ctx, userID)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"read_Users", "add_Users"}, names)

	roleNames, err := s.Roles().ListUserRoleNames(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, []string{"staff"}, roleNames)

	role, err := s.Roles().GetRoleByName(ctx, "staff")
	require.NoError(t, err)
	require.Len(t, role.Permissions, 2)
}

func TestCreateRoleUnknownPermission(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Roles().CreateRole(context.Background(), domain.Role{
		Name: "ghost", IsActive: true, CreatedAt: time.Now(),
	}, []string{"does_not_exist"})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestInactiveRoleGrantsNothing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	userID := seedUser(t, s, "dave", "dave@example.com")

	_, err := s.Permissions().CreatePermission(ctx, domain.Permission{
		Name: "read_Users", Resource: "Users", CreatedAt: time.Now(),
	})
	require.NoError(t, err)

	roleID, err := s.Roles().CreateRole(ctx, domain.Role{
		Name: "disabled", IsActive: false, CreatedAt: time.Now(),
	}, []string{"read_Users"})
	require.NoError(t, err)
	require.NoError(t, s.Roles().AssignUserRole(ctx, userID, roleID))

	names, err := s.Users().ListPermissionNames(ctx, userID)
	require.NoError(t, err)
	require.Empty(t, names)
}

func TestPermissionObjectScope(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	objectID := int64(42)
	_, err := s.Permissions().CreatePermission(ctx, domain.Permission{
		Name:      "read_ChatTopic_42",
		Resource:  "ChatTopic",
		ObjectID:  &objectID,
		DependsOn: "read_ChatTopic",
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)

	p, err := s.Permissions().GetPermissionByName(ctx, "read_ChatTopic_42")
	require.NoError(t, err)
	require.NotNil(t, p.ObjectID)
	require.Equal(t, objectID, *p.ObjectID)
	require.Equal(t, "read_ChatTopic", p.DependsOn)

	_, err = s.Permissions().CreatePermission(ctx, domain.Permission{
		Name: "read_ChatTopic_42", Resource: "ChatTopic", CreatedAt: time.Now(),
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestSessionsLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	userID := seedUser(t, s, "erin", "erin@example.com")
	now := time.Now()

	id, err := s.Sessions().CreateSession(ctx, domain.Session{
		UserID: userID, TokenValue: "tok-1", IsActive: true,
		ExpiresAt: now.Add(time.Hour), CreatedAt: now,
	})
	require.NoError(t, err)

	_, err = s.Sessions().CreateSession(ctx, domain.Session{
		UserID: userID, TokenValue: "tok-1", IsActive: true,
		ExpiresAt: now.Add(time.Hour), CreatedAt: now,
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	sess, err := s.Sessions().GetSessionByID(ctx, id)
	require.NoError(t, err)
	require.True(t, sess.IsActive)

	byValue, err := s.Sessions().GetSessionByValue(ctx, "tok-1")
	require.NoError(t, err)
	require.Equal(t, id, byValue.ID)

	require.NoError(t, s.Sessions().DeactivateSession(ctx, id))
	sess, err = s.Sessions().GetSessionByID(ctx, id)
	require.NoError(t, err)
	require.False(t, sess.IsActive)

	require.NoError(t, s.Sessions().DeleteExpiredSessions(ctx, now.Add(2*time.Hour)))
	_, err = s.Sessions().GetSessionByID(ctx, id)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeactivateUserSessions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	userID := seedUser(t, s, "frank", "frank@example.com")
	now := time.Now()

	for _, tok := range []string{"a", "b"} {
		_, err := s.Sessions().CreateSession(ctx, domain.Session{
			UserID: userID, TokenValue: tok, IsActive: true,
			ExpiresAt: now.Add(time.Hour), CreatedAt: now,
		})
		require.NoError(t, err)
	}

	require.NoError(t, s.Sessions().DeactivateUserSessions(ctx, userID))

	for _, tok := range []string{"a", "b"} {
		sess, err := s.Sessions().GetSessionByValue(ctx, tok)
		require.NoError(t, err)
		require.False(t, sess.IsActive)
	}
}

func TestChatTopicsAndMessages(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	userID := seedUser(t, s, "grace", "grace@example.com")
	now := time.Now()

	topicID, err := s.Chat().CreateTopic(ctx, domain.Topic{
		Name: "support", Model: "gpt-4o-mini", SystemPrompt: "be helpful",
		Temperature: 0.7, MaxTokens: 728, IsActive: true,
		CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)

	for i := 0; i < 12; i++ {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		_, err := s.Chat().CreateMessage(ctx, domain.Message{
			TopicID: topicID, UserID: userID, Role: role,
			Content: "msg", CreatedAt: now,
		})
		require.NoError(t, err)
	}

	recent, err := s.Chat().ListRecentTopicMessages(ctx, topicID, 10)
	require.NoError(t, err)
	require.Len(t, recent, 10)
	// Oldest first within the window.
	require.Less(t, recent[0].ID, recent[9].ID)
	require.Equal(t, recent[0].ID, int64(3))

	mine, err := s.Chat().ListTopicMessages(ctx, topicID, &userID, store.Page{Number: 1, Limit: 5})
	require.NoError(t, err)
	require.Len(t, mine, 5)

	topics, err := s.Chat().ListUserTopics(ctx, userID, store.Page{})
	require.NoError(t, err)
	require.Len(t, topics, 1)

	stamp := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	require.NoError(t, s.Chat().UpdateTopic(ctx, topicID, "support-2", "desc", "notes", stamp))
	topic, err := s.Chat().GetTopicByID(ctx, topicID)
	require.NoError(t, err)
	require.Equal(t, "support-2", topic.Name)
	require.Equal(t, "notes", topic.Notes)
	require.True(t, topic.UpdatedAt.Equal(stamp))
}

func TestWithTxRollsBackOnError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.WithTx(ctx, func(tx store.Tx) error {
		_, err := tx.Users().CreateUser(ctx, domain.User{
			Username: "temp", Email: "temp@example.com",
			PasswordHash: "h", IsActive: true,
			CreatedAt: time.Now(), UpdatedAt: time.Now(),
		})
		require.NoError(t, err)
		return store.ErrNotFound
	})
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Users().GetUserByUsername(ctx, "temp")
	require.ErrorIs(t, err, store.ErrNotFound)
}
