package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hongminglow/social-api/internal/models"
	"github.com/hongminglow/social-api/internal/storage"
)

// DeletedMessage accompanies the snapshot returned by a thought deletion.
const DeletedMessage = "DELETED THOUGHT"

// ThoughtService is the use-case layer over the thoughts collection. Creating and
// deleting a thought also updates the author's reference set through ReferenceSync.
type ThoughtService struct {
	thoughts storage.ThoughtStore
	sync     *ReferenceSync
	now      func() time.Time
}

func NewThoughtService(thoughts storage.ThoughtStore, sync *ReferenceSync) *ThoughtService {
	return &ThoughtService{thoughts: thoughts, sync: sync, now: time.Now}
}

// ListAll returns every thought newest first, without versions.
func (s *ThoughtService) ListAll(ctx context.Context) ([]models.Thought, error) {
	thoughts, err := s.thoughts.ListThoughts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list thoughts: %w", err)
	}
	for i := range thoughts {
		thoughts[i] = thoughts[i].WithoutVersion()
	}
	return thoughts, nil
}

func (s *ThoughtService) Get(ctx context.Context, id string) (models.Thought, error) {
	thought, err := s.thoughts.GetThought(ctx, id)
	if err != nil {
		return models.Thought{}, notFound(err, EntityThought)
	}
	return thought.WithoutVersion(), nil
}

// Create inserts the thought and then attaches it to its author, returning the
// author. When no user carries that username the thought stays persisted and
// the call reports the user as missing.
func (s *ThoughtService) Create(ctx context.Context, text, author string) (models.User, error) {
	thought, err := models.NewThought(text, author, s.now())
	if err != nil {
		return models.User{}, err
	}
	created, err := s.thoughts.CreateThought(ctx, thought)
	if err != nil {
		return models.User{}, fmt.Errorf("create thought: %w", err)
	}
	owner, err := s.sync.Attach(ctx, created.Author, created.ID)
	if err != nil {
		var nf *NotFoundError
		if errors.As(err, &nf) {
			log.Warn().Str("thought_id", created.ID).Str("author", created.Author).
				Msg("thought stored without an owning user")
		}
		return models.User{}, err
	}
	return owner, nil
}

func (s *ThoughtService) Update(ctx context.Context, id string, patch models.ThoughtPatch) (models.Thought, error) {
	patch, err := patch.Validate()
	if err != nil {
		return models.Thought{}, err
	}
	thought, err := s.thoughts.UpdateThought(ctx, id, patch)
	if err != nil {
		return models.Thought{}, notFound(err, EntityThought)
	}
	return thought, nil
}

// Delete removes the thought, then detaches it from its author. A missing author
// does not fail the call since the thought is already gone.
func (s *ThoughtService) Delete(ctx context.Context, id string) (models.Thought, error) {
	deleted, err := s.thoughts.DeleteThought(ctx, id)
	if err != nil {
		return models.Thought{}, notFound(err, EntityThought)
	}
	if err := s.sync.Detach(ctx, deleted.Author, deleted.ID); err != nil {
		var nf *NotFoundError
		if !errors.As(err, &nf) {
			return models.Thought{}, err
		}
		log.Warn().Str("thought_id", deleted.ID).Str("author", deleted.Author).
			Msg("deleted thought had no owning user")
	}
	return deleted, nil
}

// AddReaction set-inserts a reaction keyed by its text and author.
func (s *ThoughtService) AddReaction(ctx context.Context, thoughtID, reactionText, author string) (models.Thought, error) {
	reaction, err := models.NewReaction(reactionText, author, s.now())
	if err != nil {
		return models.Thought{}, err
	}
	thought, err := s.thoughts.AddReaction(ctx, thoughtID, reaction)
	if err != nil {
		return models.Thought{}, notFound(err, EntityThought)
	}
	return thought, nil
}

// RemoveReaction drops reactionID; an unknown reactionID leaves the thought unchanged.
func (s *ThoughtService) RemoveReaction(ctx context.Context, thoughtID, reactionID string) (models.Thought, error) {
	thought, err := s.thoughts.RemoveReaction(ctx, thoughtID, reactionID)
	if err != nil {
		return models.Thought{}, notFound(err, EntityThought)
	}
	return thought.WithoutVersion(), nil
}
