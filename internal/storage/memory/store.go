// Package memory keeps both collections in process. It backs the test suites and
// STORE_DRIVER=memory for local development.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/hongminglow/social-api/internal/models"
	"github.com/hongminglow/social-api/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store holds users and thoughts behind a single lock so that each operation
// is atomic, like a single-document write in the real backends.
type Store struct {
	mu       sync.RWMutex
	users    map[string]*models.User
	thoughts map[string]*models.Thought
	// insertion order, for stable listings
	userOrder []string
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		users:    make(map[string]*models.User),
		thoughts: make(map[string]*models.Thought),
	}
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() {}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.User, 0, len(s.userOrder))
	for _, id := range s.userOrder {
		out = append(out, cloneUser(s.users[id]))
	}
	return out, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return cloneUser(u), nil
}

func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findByUsername(user.Username) != nil {
		return models.User{}, storage.ErrAlreadyExists
	}
	stored := cloneUser(&user)
	stored.ID = uuid.NewString()
	stored.Version = models.Version(0)
	s.users[stored.ID] = &stored
	s.userOrder = append(s.userOrder, stored.ID)
	return cloneUser(&stored), nil
}

func (s *Store) UpdateUser(ctx context.Context, id string, patch models.UserPatch) (models.User, error) {
	return s.mutateUser(ctx, id, func(u *models.User) error {
		if patch.Username != nil && *patch.Username != u.Username {
			if s.findByUsername(*patch.Username) != nil {
				return storage.ErrAlreadyExists
			}
			u.Username = *patch.Username
		}
		return nil
	})
}

func (s *Store) DeleteUser(ctx context.Context, id string) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	delete(s.users, id)
	for i, candidate := range s.userOrder {
		if candidate == id {
			s.userOrder = append(s.userOrder[:i], s.userOrder[i+1:]...)
			break
		}
	}
	return cloneUser(u), nil
}

func (s *Store) AddFriend(ctx context.Context, userID, friendID string) (models.User, error) {
	if err := uuid.Validate(friendID); err != nil {
		return models.User{}, storage.ErrInvalidID
	}
	return s.mutateUser(ctx, userID, func(u *models.User) error {
		u.Friends = addToSet(u.Friends, friendID)
		return nil
	})
}

func (s *Store) RemoveFriend(ctx context.Context, userID, friendID string) (models.User, error) {
	return s.mutateUser(ctx, userID, func(u *models.User) error {
		u.Friends = pull(u.Friends, friendID)
		return nil
	})
}

func (s *Store) AddThoughtRef(ctx context.Context, username, thoughtID string) (models.User, error) {
	return s.mutateUserByName(ctx, username, func(u *models.User) {
		u.Thoughts = addToSet(u.Thoughts, thoughtID)
	})
}

func (s *Store) RemoveThoughtRef(ctx context.Context, username, thoughtID string) (models.User, error) {
	return s.mutateUserByName(ctx, username, func(u *models.User) {
		u.Thoughts = pull(u.Thoughts, thoughtID)
	})
}

func (s *Store) ListThoughts(ctx context.Context) ([]models.Thought, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]models.Thought, 0, len(s.thoughts))
	for _, t := range s.thoughts {
		out = append(out, cloneThought(t))
	}
	s.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) GetThought(ctx context.Context, id string) (models.Thought, error) {
	if err := ctx.Err(); err != nil {
		return models.Thought{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.thoughts[id]
	if !ok {
		return models.Thought{}, storage.ErrNotFound
	}
	return cloneThought(t), nil
}

func (s *Store) CreateThought(ctx context.Context, thought models.Thought) (models.Thought, error) {
	if err := ctx.Err(); err != nil {
		return models.Thought{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := cloneThought(&thought)
	stored.ID = uuid.NewString()
	stored.Version = models.Version(0)
	for i := range stored.Reactions {
		stored.Reactions[i].ID = uuid.NewString()
	}
	s.thoughts[stored.ID] = &stored
	return cloneThought(&stored), nil
}

func (s *Store) UpdateThought(ctx context.Context, id string, patch models.ThoughtPatch) (models.Thought, error) {
	return s.mutateThought(ctx, id, func(t *models.Thought) {
		if patch.Text != nil {
			t.Text = *patch.Text
		}
		if patch.Author != nil {
			t.Author = *patch.Author
		}
	})
}

func (s *Store) DeleteThought(ctx context.Context, id string) (models.Thought, error) {
	if err := ctx.Err(); err != nil {
		return models.Thought{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.thoughts[id]
	if !ok {
		return models.Thought{}, storage.ErrNotFound
	}
	delete(s.thoughts, id)
	return cloneThought(t), nil
}

func (s *Store) AddReaction(ctx context.Context, thoughtID string, reaction models.Reaction) (models.Thought, error) {
	return s.mutateThought(ctx, thoughtID, func(t *models.Thought) {
		if t.HasReaction(reaction.ReactionText, reaction.Author) {
			return
		}
		reaction.ID = uuid.NewString()
		t.Reactions = append(t.Reactions, reaction)
	})
}

func (s *Store) RemoveReaction(ctx context.Context, thoughtID, reactionID string) (models.Thought, error) {
	return s.mutateThought(ctx, thoughtID, func(t *models.Thought) {
		kept := t.Reactions[:0]
		for _, r := range t.Reactions {
			if r.ID != reactionID {
				kept = append(kept, r)
			}
		}
		t.Reactions = kept
	})
}

func (s *Store) mutateUser(ctx context.Context, id string, fn func(*models.User) error) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	next := cloneUser(u)
	if err := fn(&next); err != nil {
		return models.User{}, err
	}
	bump(&next.Version)
	s.users[id] = &next
	return cloneUser(&next), nil
}

func (s *Store) mutateUserByName(ctx context.Context, username string, fn func(*models.User)) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.findByUsername(username)
	if u == nil {
		return models.User{}, storage.ErrNotFound
	}
	next := cloneUser(u)
	fn(&next)
	bump(&next.Version)
	s.users[next.ID] = &next
	return cloneUser(&next), nil
}

func (s *Store) mutateThought(ctx context.Context, id string, fn func(*models.Thought)) (models.Thought, error) {
	if err := ctx.Err(); err != nil {
		return models.Thought{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.thoughts[id]
	if !ok {
		return models.Thought{}, storage.ErrNotFound
	}
	next := cloneThought(t)
	fn(&next)
	bump(&next.Version)
	s.thoughts[id] = &next
	return cloneThought(&next), nil
}

// findByUsername expects s.mu to be held.
func (s *Store) findByUsername(username string) *models.User {
	for _, u := range s.users {
		if u.Username == username {
			return u
		}
	}
	return nil
}

func bump(v **int64) {
	var n int64
	if *v != nil {
		n = **v
	}
	*v = models.Version(n + 1)
}

func addToSet(set []string, value string) []string {
	for _, existing := range set {
		if existing == value {
			return set
		}
	}
	return append(set, value)
}

func pull(set []string, value string) []string {
	out := make([]string, 0, len(set))
	for _, existing := range set {
		if existing != value {
			out = append(out, existing)
		}
	}
	return out
}

func cloneUser(u *models.User) models.User {
	out := *u
	out.Thoughts = append([]string{}, u.Thoughts...)
	out.Friends = append([]string{}, u.Friends...)
	if u.Version != nil {
		out.Version = models.Version(*u.Version)
	}
	return out
}

func cloneThought(t *models.Thought) models.Thought {
	out := *t
	out.Reactions = append([]models.Reaction{}, t.Reactions...)
	if t.Version != nil {
		out.Version = models.Version(*t.Version)
	}
	return out
}
