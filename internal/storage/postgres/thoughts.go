package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hongminglow/social-api/internal/models"
	"github.com/hongminglow/social-api/internal/storage"
)

const thoughtColumns = `id, text, author, created_at, reactions, version`

// ListThoughts returns every thought, newest first.
func (s *Store) ListThoughts(ctx context.Context) ([]models.Thought, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+thoughtColumns+` FROM thoughts ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list thoughts: %w", err)
	}
	defer rows.Close()

	thoughts := []models.Thought{}
	for rows.Next() {
		thought, err := scanThought(rows)
		if err != nil {
			return nil, fmt.Errorf("list thoughts: %w", err)
		}
		thoughts = append(thoughts, thought)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list thoughts: %w", err)
	}
	return thoughts, nil
}

// GetThought fetches a thought by id.
func (s *Store) GetThought(ctx context.Context, id string) (models.Thought, error) {
	return scanThought(s.pool.QueryRow(ctx, `SELECT `+thoughtColumns+` FROM thoughts WHERE id = $1`, id))
}

// CreateThought inserts a thought with a generated id.
func (s *Store) CreateThought(ctx context.Context, thought models.Thought) (models.Thought, error) {
	thought.Normalize()
	for i := range thought.Reactions {
		thought.Reactions[i].ID = uuid.NewString()
	}
	const query = `
		INSERT INTO thoughts (id, text, author, created_at, reactions)
		VALUES ($1, $2, $3, $4, $5::jsonb)
		RETURNING ` + thoughtColumns
	row := s.pool.QueryRow(ctx, query, uuid.NewString(), thought.Text, thought.Author, thought.CreatedAt, thought.Reactions)
	return scanThought(row)
}

// UpdateThought applies the non-nil fields of patch.
func (s *Store) UpdateThought(ctx context.Context, id string, patch models.ThoughtPatch) (models.Thought, error) {
	const query = `
		UPDATE thoughts
		SET text = COALESCE($2, text),
			author = COALESCE($3, author),
			version = version + 1
		WHERE id = $1
		RETURNING ` + thoughtColumns
	return scanThought(s.pool.QueryRow(ctx, query, id, patch.Text, patch.Author))
}

// DeleteThought removes a thought and returns the removed row.
func (s *Store) DeleteThought(ctx context.Context, id string) (models.Thought, error) {
	return scanThought(s.pool.QueryRow(ctx, `DELETE FROM thoughts WHERE id = $1 RETURNING `+thoughtColumns, id))
}

// AddReaction appends reaction unless the same text and author already reacted.
func (s *Store) AddReaction(ctx context.Context, thoughtID string, reaction models.Reaction) (models.Thought, error) {
	reaction.ID = uuid.NewString()
	const query = `
		UPDATE thoughts
		SET reactions = CASE
				WHEN EXISTS (
					SELECT 1 FROM jsonb_array_elements(reactions) AS r
					WHERE r->>'reactionText' = $2::text AND r->>'author' = $3::text
				) THEN reactions
				ELSE reactions || jsonb_build_array($4::jsonb)
			END,
			version = version + 1
		WHERE id = $1
		RETURNING ` + thoughtColumns
	row := s.pool.QueryRow(ctx, query, thoughtID, reaction.ReactionText, reaction.Author, reaction)
	return scanThought(row)
}

// RemoveReaction drops the reaction with reactionID, keeping the order of the rest.
func (s *Store) RemoveReaction(ctx context.Context, thoughtID, reactionID string) (models.Thought, error) {
	const query = `
		UPDATE thoughts
		SET reactions = COALESCE((
				SELECT jsonb_agg(e.r ORDER BY e.ord)
				FROM jsonb_array_elements(reactions) WITH ORDINALITY AS e(r, ord)
				WHERE e.r->>'id' <> $2::text
			), '[]'::jsonb),
			version = version + 1
		WHERE id = $1
		RETURNING ` + thoughtColumns
	return scanThought(s.pool.QueryRow(ctx, query, thoughtID, reactionID))
}

func scanThought(row pgx.Row) (models.Thought, error) {
	var thought models.Thought
	var version int64
	if err := row.Scan(&thought.ID, &thought.Text, &thought.Author, &thought.CreatedAt, &thought.Reactions, &version); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Thought{}, storage.ErrNotFound
		}
		return models.Thought{}, err
	}
	thought.CreatedAt = thought.CreatedAt.UTC()
	thought.Version = models.Version(version)
	thought.Normalize()
	return thought, nil
}
