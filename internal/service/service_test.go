package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/social-api/internal/models"
	"github.com/hongminglow/social-api/internal/storage"
	"github.com/hongminglow/social-api/internal/storage/memory"
)

type fixture struct {
	store    *memory.Store
	users    *UserService
	thoughts *ThoughtService
}

func newFixture() fixture {
	store := memory.NewStore()
	return fixture{
		store:    store,
		users:    NewUserService(store),
		thoughts: NewThoughtService(store, NewReferenceSync(store)),
	}
}

func TestCreateThoughtAttachesToAuthor(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	ada, err := f.users.Create(ctx, "ada")
	require.NoError(t, err)

	owner, err := f.thoughts.Create(ctx, "hi", "ada")
	require.NoError(t, err)
	assert.Equal(t, ada.ID, owner.ID)
	require.Len(t, owner.Thoughts, 1)

	thought, err := f.thoughts.Get(ctx, owner.Thoughts[0])
	require.NoError(t, err)
	assert.Equal(t, "hi", thought.Text)
	assert.Equal(t, "ada", thought.Author)
	assert.Nil(t, thought.Version)
}

func TestCreateThoughtUnknownAuthorKeepsThought(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	_, err := f.thoughts.Create(ctx, "orphan", "nobody")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, EntityUser, nf.Entity)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	all, err := f.thoughts.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	got, err := f.thoughts.Get(ctx, all[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "orphan", got.Text)
}

func TestCreateThoughtValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	_, err := f.thoughts.Create(ctx, "   ", "ada")
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "text", verr.Field)

	all, err := f.thoughts.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestDeleteThoughtDetachesFromAuthor(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	ada, err := f.users.Create(ctx, "ada")
	require.NoError(t, err)
	owner, err := f.thoughts.Create(ctx, "hi", "ada")
	require.NoError(t, err)
	thoughtID := owner.Thoughts[0]

	deleted, err := f.thoughts.Delete(ctx, thoughtID)
	require.NoError(t, err)
	assert.Equal(t, thoughtID, deleted.ID)

	_, err = f.thoughts.Get(ctx, thoughtID)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, EntityThought, nf.Entity)

	user, err := f.users.Get(ctx, ada.ID)
	require.NoError(t, err)
	assert.Empty(t, user.Thoughts)
}

func TestDeleteThoughtWithoutOwnerSucceeds(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	_, err := f.thoughts.Create(ctx, "orphan", "nobody")
	require.Error(t, err)
	all, err := f.thoughts.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	deleted, err := f.thoughts.Delete(ctx, all[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "orphan", deleted.Text)
}

type failingDetachStore struct {
	*memory.Store
}

var errStoreDown = errors.New("store unavailable")

func (failingDetachStore) RemoveThoughtRef(context.Context, string, string) (models.User, error) {
	return models.User{}, errStoreDown
}

func TestDeleteThoughtDetachFailureSurfaces(t *testing.T) {
	ctx := context.Background()
	store := failingDetachStore{Store: memory.NewStore()}
	users := NewUserService(store)
	thoughts := NewThoughtService(store, NewReferenceSync(store))
	_, err := users.Create(ctx, "ada")
	require.NoError(t, err)
	owner, err := thoughts.Create(ctx, "hi", "ada")
	require.NoError(t, err)

	_, err = thoughts.Delete(ctx, owner.Thoughts[0])
	assert.ErrorIs(t, err, errStoreDown)

	// the thought deletion itself is not rolled back
	_, err = thoughts.Get(ctx, owner.Thoughts[0])
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestAddReactionIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	_, err := f.users.Create(ctx, "ada")
	require.NoError(t, err)
	owner, err := f.thoughts.Create(ctx, "hi", "ada")
	require.NoError(t, err)
	id := owner.Thoughts[0]

	_, err = f.thoughts.AddReaction(ctx, id, "wow", "grace")
	require.NoError(t, err)
	thought, err := f.thoughts.AddReaction(ctx, id, "wow", "grace")
	require.NoError(t, err)
	require.Len(t, thought.Reactions, 1)
	assert.Equal(t, "wow", thought.Reactions[0].ReactionText)

	_, err = f.thoughts.AddReaction(ctx, id, "", "grace")
	var verr *models.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestAddReactionUnknownThought(t *testing.T) {
	f := newFixture()
	_, err := f.thoughts.AddReaction(context.Background(), "missing", "wow", "grace")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, EntityThought, nf.Entity)
}

func TestRemoveReaction(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	_, err := f.users.Create(ctx, "ada")
	require.NoError(t, err)
	owner, err := f.thoughts.Create(ctx, "hi", "ada")
	require.NoError(t, err)
	id := owner.Thoughts[0]
	withReaction, err := f.thoughts.AddReaction(ctx, id, "wow", "grace")
	require.NoError(t, err)

	unchanged, err := f.thoughts.RemoveReaction(ctx, id, "no-such-reaction")
	require.NoError(t, err)
	assert.Equal(t, withReaction.Reactions, unchanged.Reactions)
	assert.Nil(t, unchanged.Version)

	removed, err := f.thoughts.RemoveReaction(ctx, id, withReaction.Reactions[0].ID)
	require.NoError(t, err)
	assert.Empty(t, removed.Reactions)

	_, err = f.thoughts.RemoveReaction(ctx, "missing", withReaction.Reactions[0].ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUpdateThought(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	_, err := f.users.Create(ctx, "ada")
	require.NoError(t, err)
	owner, err := f.thoughts.Create(ctx, "hi", "ada")
	require.NoError(t, err)
	id := owner.Thoughts[0]

	text := "  hello again  "
	updated, err := f.thoughts.Update(ctx, id, models.ThoughtPatch{Text: &text})
	require.NoError(t, err)
	assert.Equal(t, "hello again", updated.Text)
	assert.Equal(t, "ada", updated.Author)

	empty := ""
	_, err = f.thoughts.Update(ctx, id, models.ThoughtPatch{Text: &empty})
	var verr *models.ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = f.thoughts.Update(ctx, "missing", models.ThoughtPatch{Text: &text})
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestListThoughtsNewestFirst(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	f.thoughts.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	_, err := f.users.Create(ctx, "ada")
	require.NoError(t, err)
	for _, text := range []string{"first", "second", "third"} {
		_, err := f.thoughts.Create(ctx, text, "ada")
		require.NoError(t, err)
	}

	all, err := f.thoughts.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "third", all[0].Text)
	assert.Equal(t, "first", all[2].Text)
	for _, th := range all {
		assert.Nil(t, th.Version)
	}
}

func TestFriendsAddRemoveAreInverse(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	ada, err := f.users.Create(ctx, "ada")
	require.NoError(t, err)
	grace, err := f.users.Create(ctx, "grace")
	require.NoError(t, err)
	alan, err := f.users.Create(ctx, "alan")
	require.NoError(t, err)

	before, err := f.users.AddFriend(ctx, ada.ID, alan.ID)
	require.NoError(t, err)

	added, err := f.users.AddFriend(ctx, ada.ID, grace.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{alan.ID, grace.ID}, added.Friends)
	assert.Nil(t, added.Version)

	after, err := f.users.RemoveFriend(ctx, ada.ID, grace.ID)
	require.NoError(t, err)
	assert.Equal(t, before.Friends, after.Friends)

	_, err = f.users.AddFriend(ctx, "missing", grace.ID)
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
	_, err = f.users.AddFriend(ctx, ada.ID, "not-an-id")
	assert.ErrorIs(t, err, storage.ErrInvalidID)
}

func TestDeleteUserDoesNotCascade(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	ada, err := f.users.Create(ctx, "ada")
	require.NoError(t, err)
	grace, err := f.users.Create(ctx, "grace")
	require.NoError(t, err)
	_, err = f.users.AddFriend(ctx, ada.ID, grace.ID)
	require.NoError(t, err)

	removed, err := f.users.Delete(ctx, grace.ID)
	require.NoError(t, err)
	assert.Equal(t, "grace", removed.Username)

	got, err := f.users.Get(ctx, ada.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{grace.ID}, got.Friends)

	_, err = f.users.Delete(ctx, grace.ID)
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestUserVersionProjection(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	ada, err := f.users.Create(ctx, "ada")
	require.NoError(t, err)
	require.NotNil(t, ada.Version)

	listed, err := f.users.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.NotNil(t, listed[0].Version)

	got, err := f.users.Get(ctx, ada.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Version)
}

func TestUserCreateAndUpdateValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	_, err := f.users.Create(ctx, " ")
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "username", verr.Field)

	ada, err := f.users.Create(ctx, "ada")
	require.NoError(t, err)
	_, err = f.users.Create(ctx, "ada")
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)

	blank := ""
	_, err = f.users.Update(ctx, ada.ID, models.UserPatch{Username: &blank})
	assert.ErrorAs(t, err, &verr)

	name := "lovelace"
	updated, err := f.users.Update(ctx, ada.ID, models.UserPatch{Username: &name})
	require.NoError(t, err)
	assert.Equal(t, "lovelace", updated.Username)

	_, err = f.users.Update(ctx, "missing", models.UserPatch{Username: &name})
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}
