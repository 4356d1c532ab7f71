package service

import (
	"context"
	"fmt"

	"github.com/hongminglow/social-api/internal/models"
	"github.com/hongminglow/social-api/internal/storage"
)

// UserService is the use-case layer over the users collection.
type UserService struct {
	users storage.UserStore
}

func NewUserService(users storage.UserStore) *UserService {
	return &UserService{users: users}
}

// ListAll returns every user as stored, version included.
func (s *UserService) ListAll(ctx context.Context) ([]models.User, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Get returns the user with the version projected away.
func (s *UserService) Get(ctx context.Context, id string) (models.User, error) {
	user, err := s.users.GetUser(ctx, id)
	if err != nil {
		return models.User{}, notFound(err, EntityUser)
	}
	return user.WithoutVersion(), nil
}

func (s *UserService) Create(ctx context.Context, username string) (models.User, error) {
	user, err := models.NewUser(username)
	if err != nil {
		return models.User{}, err
	}
	return s.users.CreateUser(ctx, user)
}

func (s *UserService) Update(ctx context.Context, id string, patch models.UserPatch) (models.User, error) {
	patch, err := patch.Validate()
	if err != nil {
		return models.User{}, err
	}
	user, err := s.users.UpdateUser(ctx, id, patch)
	if err != nil {
		return models.User{}, notFound(err, EntityUser)
	}
	return user, nil
}

// Delete removes the user. Other users' friends lists keep their references.
func (s *UserService) Delete(ctx context.Context, id string) (models.User, error) {
	user, err := s.users.DeleteUser(ctx, id)
	if err != nil {
		return models.User{}, notFound(err, EntityUser)
	}
	return user, nil
}

// AddFriend set-inserts friendID; whether friendID names an existing user is not checked.
func (s *UserService) AddFriend(ctx context.Context, userID, friendID string) (models.User, error) {
	user, err := s.users.AddFriend(ctx, userID, friendID)
	if err != nil {
		return models.User{}, notFound(err, EntityUser)
	}
	return user.WithoutVersion(), nil
}

func (s *UserService) RemoveFriend(ctx context.Context, userID, friendID string) (models.User, error) {
	user, err := s.users.RemoveFriend(ctx, userID, friendID)
	if err != nil {
		return models.User{}, notFound(err, EntityUser)
	}
	return user.WithoutVersion(), nil
}
