package storage

import (
	"context"
	"errors"

	"github.com/hongminglow/social-api/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// ErrInvalidID indicates a reference value that the backend cannot store as an identifier.
var ErrInvalidID = errors.New("malformed identifier")

// UserStore captures persistence operations over the users collection.
// Every mutation touches a single document and returns it as it is after the write.
type UserStore interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, id string) (models.User, error)
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	UpdateUser(ctx context.Context, id string, patch models.UserPatch) (models.User, error)
	DeleteUser(ctx context.Context, id string) (models.User, error)
	AddFriend(ctx context.Context, userID, friendID string) (models.User, error)
	RemoveFriend(ctx context.Context, userID, friendID string) (models.User, error)
	// AddThoughtRef set-inserts thoughtID into the thoughts of the user named username.
	AddThoughtRef(ctx context.Context, username, thoughtID string) (models.User, error)
	// RemoveThoughtRef pulls thoughtID from the thoughts of the user named username.
	RemoveThoughtRef(ctx context.Context, username, thoughtID string) (models.User, error)
}

// ThoughtStore captures persistence operations over the thoughts collection.
type ThoughtStore interface {
	// ListThoughts returns every thought, newest first.
	ListThoughts(ctx context.Context) ([]models.Thought, error)
	GetThought(ctx context.Context, id string) (models.Thought, error)
	CreateThought(ctx context.Context, thought models.Thought) (models.Thought, error)
	UpdateThought(ctx context.Context, id string, patch models.ThoughtPatch) (models.Thought, error)
	DeleteThought(ctx context.Context, id string) (models.Thought, error)
	// AddReaction appends reaction unless one with the same text and author exists.
	AddReaction(ctx context.Context, thoughtID string, reaction models.Reaction) (models.Thought, error)
	RemoveReaction(ctx context.Context, thoughtID, reactionID string) (models.Thought, error)
}

// Store is a complete backend.
type Store interface {
	UserStore
	ThoughtStore
	// Ping checks connectivity for the health endpoint.
	Ping(ctx context.Context) error
	Close()
}
