package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/hongminglow/social-api/internal/models"
	"github.com/hongminglow/social-api/internal/storage"
)

// ReferenceSync keeps a user's thoughts set in line with the thoughts authored
// under that username. Each call is one single-document write; pairing it with
// the thought write is left to the caller and is not atomic.
type ReferenceSync struct {
	users storage.UserStore
}

func NewReferenceSync(users storage.UserStore) *ReferenceSync {
	return &ReferenceSync{users: users}
}

// Attach set-inserts thoughtID into the thoughts of the user named author.
func (r *ReferenceSync) Attach(ctx context.Context, author, thoughtID string) (models.User, error) {
	user, err := r.users.AddThoughtRef(ctx, author, thoughtID)
	if err != nil {
		return models.User{}, notFound(err, EntityUser)
	}
	return user, nil
}

// Detach removes thoughtID from the thoughts of the user named author.
func (r *ReferenceSync) Detach(ctx context.Context, author, thoughtID string) error {
	if _, err := r.users.RemoveThoughtRef(ctx, author, thoughtID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return &NotFoundError{Entity: EntityUser}
		}
		return fmt.Errorf("detach thought %s from %s: %w", thoughtID, author, err)
	}
	return nil
}
