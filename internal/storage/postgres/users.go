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

const userColumns = `id, username, thoughts, friends, version`

// ListUsers returns every user in insertion order.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// GetUser fetches a user by id.
func (s *Store) GetUser(ctx context.Context, id string) (models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// CreateUser inserts a new user row with a generated id.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	user.Normalize()
	const query = `
		INSERT INTO users (id, username, thoughts, friends)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + userColumns
	row := s.pool.QueryRow(ctx, query, uuid.NewString(), user.Username, user.Thoughts, user.Friends)
	created, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, err
	}
	return created, nil
}

// UpdateUser applies the non-nil fields of patch.
func (s *Store) UpdateUser(ctx context.Context, id string, patch models.UserPatch) (models.User, error) {
	const query = `
		UPDATE users
		SET username = COALESCE($2, username),
			version = version + 1
		WHERE id = $1
		RETURNING ` + userColumns
	row := s.pool.QueryRow(ctx, query, id, patch.Username)
	updated, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, err
	}
	return updated, nil
}

// DeleteUser removes a user and returns the removed row.
func (s *Store) DeleteUser(ctx context.Context, id string) (models.User, error) {
	row := s.pool.QueryRow(ctx, `DELETE FROM users WHERE id = $1 RETURNING `+userColumns, id)
	return scanUser(row)
}

// AddFriend set-inserts friendID. The friend is not required to exist.
func (s *Store) AddFriend(ctx context.Context, userID, friendID string) (models.User, error) {
	if err := uuid.Validate(friendID); err != nil {
		return models.User{}, storage.ErrInvalidID
	}
	const query = `
		UPDATE users
		SET friends = CASE WHEN $2::text = ANY(friends) THEN friends ELSE array_append(friends, $2::text) END,
			version = version + 1
		WHERE id = $1
		RETURNING ` + userColumns
	return scanUser(s.pool.QueryRow(ctx, query, userID, friendID))
}

// RemoveFriend pulls friendID from the user's friends.
func (s *Store) RemoveFriend(ctx context.Context, userID, friendID string) (models.User, error) {
	const query = `
		UPDATE users
		SET friends = array_remove(friends, $2::text),
			version = version + 1
		WHERE id = $1
		RETURNING ` + userColumns
	return scanUser(s.pool.QueryRow(ctx, query, userID, friendID))
}

// AddThoughtRef set-inserts thoughtID into the thoughts of the named user.
func (s *Store) AddThoughtRef(ctx context.Context, username, thoughtID string) (models.User, error) {
	const query = `
		UPDATE users
		SET thoughts = CASE WHEN $2::text = ANY(thoughts) THEN thoughts ELSE array_append(thoughts, $2::text) END,
			version = version + 1
		WHERE username = $1
		RETURNING ` + userColumns
	return scanUser(s.pool.QueryRow(ctx, query, username, thoughtID))
}

// RemoveThoughtRef pulls thoughtID from the thoughts of the named user.
func (s *Store) RemoveThoughtRef(ctx context.Context, username, thoughtID string) (models.User, error) {
	const query = `
		UPDATE users
		SET thoughts = array_remove(thoughts, $2::text),
			version = version + 1
		WHERE username = $1
		RETURNING ` + userColumns
	return scanUser(s.pool.QueryRow(ctx, query, username, thoughtID))
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	var version int64
	if err := row.Scan(&user.ID, &user.Username, &user.Thoughts, &user.Friends, &version); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, err
	}
	user.Version = models.Version(version)
	user.Normalize()
	return user, nil
}
