// Package storagetest holds the behaviour every storage.Store backend must share.
package storagetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/social-api/internal/models"
	"github.com/hongminglow/social-api/internal/storage"
)

// Run exercises store against the shared contract. The store may already hold
// data; every fixture uses unique usernames.
func Run(t *testing.T, store storage.Store) {
	t.Helper()

	t.Run("UserLifecycle", func(t *testing.T) { testUserLifecycle(t, store) })
	t.Run("UsernameUnique", func(t *testing.T) { testUsernameUnique(t, store) })
	t.Run("Friends", func(t *testing.T) { testFriends(t, store) })
	t.Run("ThoughtRefs", func(t *testing.T) { testThoughtRefs(t, store) })
	t.Run("ThoughtLifecycle", func(t *testing.T) { testThoughtLifecycle(t, store) })
	t.Run("ThoughtOrdering", func(t *testing.T) { testThoughtOrdering(t, store) })
	t.Run("Reactions", func(t *testing.T) { testReactions(t, store) })
}

func uniqueName(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, uuid.NewString()[:8])
}

func mustCreateUser(t *testing.T, store storage.Store, prefix string) models.User {
	t.Helper()
	user, err := models.NewUser(uniqueName(prefix))
	require.NoError(t, err)
	created, err := store.CreateUser(context.Background(), user)
	require.NoError(t, err)
	return created
}

func mustCreateThought(t *testing.T, store storage.Store, author string, at time.Time) models.Thought {
	t.Helper()
	thought, err := models.NewThought("thinking out loud", author, at)
	require.NoError(t, err)
	created, err := store.CreateThought(context.Background(), thought)
	require.NoError(t, err)
	return created
}

// missingUserID returns an identifier in the backend's format that no longer resolves.
func missingUserID(t *testing.T, store storage.Store) string {
	t.Helper()
	gone := mustCreateUser(t, store, "gone")
	_, err := store.DeleteUser(context.Background(), gone.ID)
	require.NoError(t, err)
	return gone.ID
}

func testUserLifecycle(t *testing.T, store storage.Store) {
	ctx := context.Background()
	created := mustCreateUser(t, store, "ada")
	require.NotEmpty(t, created.ID)
	assert.Empty(t, created.Thoughts)
	assert.Empty(t, created.Friends)
	require.NotNil(t, created.Version)

	got, err := store.GetUser(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Username, got.Username)

	all, err := store.ListUsers(ctx)
	require.NoError(t, err)
	assert.Contains(t, userIDs(all), created.ID)

	renamed := uniqueName("lovelace")
	updated, err := store.UpdateUser(ctx, created.ID, models.UserPatch{Username: &renamed})
	require.NoError(t, err)
	assert.Equal(t, renamed, updated.Username)
	require.NotNil(t, updated.Version)
	assert.Greater(t, *updated.Version, *created.Version)

	unchanged, err := store.UpdateUser(ctx, created.ID, models.UserPatch{})
	require.NoError(t, err)
	assert.Equal(t, renamed, unchanged.Username)

	deleted, err := store.DeleteUser(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, deleted.ID)

	_, err = store.GetUser(ctx, created.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = store.DeleteUser(ctx, created.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = store.UpdateUser(ctx, created.ID, models.UserPatch{Username: &renamed})
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = store.GetUser(ctx, "not-an-id")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testUsernameUnique(t *testing.T, store storage.Store) {
	ctx := context.Background()
	first := mustCreateUser(t, store, "grace")
	_, err := store.CreateUser(ctx, models.User{Username: first.Username, Thoughts: []string{}, Friends: []string{}})
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)

	second := mustCreateUser(t, store, "hopper")
	_, err = store.UpdateUser(ctx, second.ID, models.UserPatch{Username: &first.Username})
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)
}

func testFriends(t *testing.T, store storage.Store) {
	ctx := context.Background()
	user := mustCreateUser(t, store, "alan")
	friend := mustCreateUser(t, store, "joan")

	once, err := store.AddFriend(ctx, user.ID, friend.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{friend.ID}, once.Friends)

	twice, err := store.AddFriend(ctx, user.ID, friend.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{friend.ID}, twice.Friends)

	dangling := missingUserID(t, store)
	withDangling, err := store.AddFriend(ctx, user.ID, dangling)
	require.NoError(t, err)
	assert.Equal(t, []string{friend.ID, dangling}, withDangling.Friends)

	removed, err := store.RemoveFriend(ctx, user.ID, friend.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{dangling}, removed.Friends)

	_, err = store.AddFriend(ctx, user.ID, "not-an-id")
	assert.ErrorIs(t, err, storage.ErrInvalidID)

	missing := missingUserID(t, store)
	_, err = store.AddFriend(ctx, missing, friend.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = store.RemoveFriend(ctx, missing, friend.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testThoughtRefs(t *testing.T, store storage.Store) {
	ctx := context.Background()
	user := mustCreateUser(t, store, "edsger")
	thought := mustCreateThought(t, store, user.Username, time.Now())

	attached, err := store.AddThoughtRef(ctx, user.Username, thought.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{thought.ID}, attached.Thoughts)

	again, err := store.AddThoughtRef(ctx, user.Username, thought.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{thought.ID}, again.Thoughts)

	detached, err := store.RemoveThoughtRef(ctx, user.Username, thought.ID)
	require.NoError(t, err)
	assert.Empty(t, detached.Thoughts)

	_, err = store.AddThoughtRef(ctx, uniqueName("nobody"), thought.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = store.RemoveThoughtRef(ctx, uniqueName("nobody"), thought.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testThoughtLifecycle(t *testing.T, store storage.Store) {
	ctx := context.Background()
	created := mustCreateThought(t, store, uniqueName("author"), time.Now())
	require.NotEmpty(t, created.ID)
	assert.Empty(t, created.Reactions)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := store.GetThought(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Text, got.Text)
	assert.WithinDuration(t, created.CreatedAt, got.CreatedAt, time.Millisecond)

	text := "second draft"
	updated, err := store.UpdateThought(ctx, created.ID, models.ThoughtPatch{Text: &text})
	require.NoError(t, err)
	assert.Equal(t, text, updated.Text)
	assert.Equal(t, created.Author, updated.Author)

	deleted, err := store.DeleteThought(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, text, deleted.Text)

	_, err = store.GetThought(ctx, created.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = store.DeleteThought(ctx, created.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = store.UpdateThought(ctx, created.ID, models.ThoughtPatch{Text: &text})
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = store.GetThought(ctx, "not-an-id")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testThoughtOrdering(t *testing.T, store storage.Store) {
	ctx := context.Background()
	author := uniqueName("orderer")
	base := time.Now().Add(time.Hour)
	older := mustCreateThought(t, store, author, base)
	newer := mustCreateThought(t, store, author, base.Add(time.Second))

	all, err := store.ListThoughts(ctx)
	require.NoError(t, err)
	ids := thoughtIDs(all)
	newerAt, olderAt := indexOf(ids, newer.ID), indexOf(ids, older.ID)
	require.NotEqual(t, -1, newerAt)
	require.NotEqual(t, -1, olderAt)
	assert.Less(t, newerAt, olderAt)
}

func testReactions(t *testing.T, store storage.Store) {
	ctx := context.Background()
	thought := mustCreateThought(t, store, uniqueName("poster"), time.Now())

	reaction, err := models.NewReaction("nice", "fan", time.Now())
	require.NoError(t, err)

	first, err := store.AddReaction(ctx, thought.ID, reaction)
	require.NoError(t, err)
	require.Len(t, first.Reactions, 1)
	assert.NotEmpty(t, first.Reactions[0].ID)
	assert.Equal(t, "nice", first.Reactions[0].ReactionText)

	dup, err := store.AddReaction(ctx, thought.ID, reaction)
	require.NoError(t, err)
	assert.Len(t, dup.Reactions, 1)

	other, err := models.NewReaction("nice", "critic", time.Now())
	require.NoError(t, err)
	second, err := store.AddReaction(ctx, thought.ID, other)
	require.NoError(t, err)
	require.Len(t, second.Reactions, 2)
	assert.Equal(t, "critic", second.Reactions[1].Author)

	unchanged, err := store.RemoveReaction(ctx, thought.ID, missingReactionID(first.Reactions[0].ID))
	require.NoError(t, err)
	assert.Len(t, unchanged.Reactions, 2)

	removed, err := store.RemoveReaction(ctx, thought.ID, first.Reactions[0].ID)
	require.NoError(t, err)
	require.Len(t, removed.Reactions, 1)
	assert.Equal(t, "critic", removed.Reactions[0].Author)

	_, err = store.DeleteThought(ctx, thought.ID)
	require.NoError(t, err)
	_, err = store.AddReaction(ctx, thought.ID, reaction)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = store.RemoveReaction(ctx, thought.ID, first.Reactions[0].ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

// missingReactionID derives an id of the same shape as existing that is not in use.
func missingReactionID(existing string) string {
	if len(existing) == 0 {
		return "0"
	}
	last := existing[len(existing)-1]
	replacement := byte('0')
	if last == '0' {
		replacement = '1'
	}
	return existing[:len(existing)-1] + string(replacement)
}

func userIDs(users []models.User) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.ID)
	}
	return out
}

func thoughtIDs(thoughts []models.Thought) []string {
	out := make([]string, 0, len(thoughts))
	for _, th := range thoughts {
		out = append(out, th.ID)
	}
	return out
}

func indexOf(values []string, want string) int {
	for i, v := range values {
		if v == want {
			return i
		}
	}
	return -1
}
