package permx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestActionForMethod(t *testing.T) {
	t.Parallel()

	cases := map[string]Action{
		"GET":    ActionRead,
		"HEAD":   ActionRead,
		"POST":   ActionAdd,
		"PUT":    ActionEdit,
		"PATCH":  ActionEdit,
		"DELETE": ActionDestroy,
	}
	for method, want := range cases {
		got, err := ActionForMethod(method)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	_, err := ActionForMethod("TRACE")
	require.Error(t, err)
}

func TestNames(t *testing.T) {
	t.Parallel()

	require.Equal(t, "read_Users", Name(ActionRead, "Users"))
	require.Equal(t, "edit_Topic_5", ScopedName(ActionEdit, "Topic", 5))
}

func TestResolverMatch(t *testing.T) {
	t.Parallel()
	r := NewResolver(DefaultRules())

	t.Run("exact routes", func(t *testing.T) {
		m, ok := r.Match("/users")
		require.True(t, ok)
		require.Equal(t, "Users", m.Resource)
		require.Nil(t, m.ObjectID)

		m, ok = r.Match("/chat-gpt/topic")
		require.True(t, ok)
		require.Equal(t, "ChatTopic", m.Resource)
	})

	t.Run("id capture", func(t *testing.T) {
		m, ok := r.Match("/users/17")
		require.True(t, ok)
		require.Equal(t, "Users", m.Resource)
		require.NotNil(t, m.ObjectID)
		require.Equal(t, int64(17), *m.ObjectID)

		m, ok = r.Match("/chat-gpt/topic/9")
		require.True(t, ok)
		require.Equal(t, "ChatTopic", m.Resource)
		require.Equal(t, int64(9), *m.ObjectID)

		m, ok = r.Match("/chat-gpt/messages/topic-3")
		require.True(t, ok)
		require.Equal(t, "ChatTopic", m.Resource)
		require.Equal(t, int64(3), *m.ObjectID)
	})

	t.Run("unmatched paths pass through", func(t *testing.T) {
		_, ok := r.Match("/users/17/change-password")
		require.False(t, ok)

		_, ok = r.Match("/users/abc")
		require.False(t, ok)

		_, ok = r.Match("/roles")
		require.False(t, ok)
	})

	t.Run("first match wins for overlapping rules", func(t *testing.T) {
		// /chat-gpt/messages matches the exact ChatMessage rule before the
		// topic id-prefix rule gets a chance.
		m, ok := r.Match("/chat-gpt/messages")
		require.True(t, ok)
		require.Equal(t, "ChatMessage", m.Resource)
	})
}

func TestDecide(t *testing.T) {
	t.Parallel()

	noDeps := func(string) (string, bool) { return "", false }

	t.Run("wildcard allows every action", func(t *testing.T) {
		perms := NewSet("all_Users")
		for _, action := range []Action{ActionRead, ActionAdd, ActionEdit, ActionDestroy} {
			d := Decide("Users", action, nil, perms, noDeps)
			require.True(t, d.Allowed, "action %s", action)
		}
	})

	t.Run("group permission allows its action", func(t *testing.T) {
		perms := NewSet("read_Users")
		require.True(t, Decide("Users", ActionRead, nil, perms, noDeps).Allowed)

		d := Decide("Users", ActionDestroy, nil, perms, noDeps)
		require.False(t, d.Allowed)
		require.Equal(t, "destroy_Users", d.Required)
	})

	t.Run("scoped permission with satisfied dependency", func(t *testing.T) {
		perms := NewSet("edit_Topic_5", "read_Topic_5")
		deps := func(name string) (string, bool) {
			if name == "edit_Topic_5" {
				return "read_Topic_5", true
			}
			return "", false
		}
		id := int64(5)
		require.True(t, Decide("Topic", ActionEdit, &id, perms, deps).Allowed)
	})

	t.Run("scoped permission with missing dependency denies naming it", func(t *testing.T) {
		perms := NewSet("edit_Topic_5")
		deps := func(name string) (string, bool) {
			if name == "edit_Topic_5" {
				return "read_Topic_5", true
			}
			return "", false
		}
		id := int64(5)
		d := Decide("Topic", ActionEdit, &id, perms, deps)
		require.False(t, d.Allowed)
		require.Equal(t, "read_Topic_5", d.Required)
	})

	t.Run("wildcard bypasses dependency gating", func(t *testing.T) {
		perms := NewSet("all_Topic")
		deps := func(string) (string, bool) { return "read_Topic_5", true }
		id := int64(5)
		require.True(t, Decide("Topic", ActionEdit, &id, perms, deps).Allowed)
	})

	t.Run("no matching permission denies with group name", func(t *testing.T) {
		id := int64(9)
		d := Decide("Users", ActionDestroy, &id, NewSet("read_Users"), noDeps)
		require.False(t, d.Allowed)
		require.Equal(t, "destroy_Users", d.Required)
	})
}
