package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hongminglow/social-api/internal/models"
	"github.com/hongminglow/social-api/internal/storage"
)

type userDocument struct {
	ID       primitive.ObjectID   `bson:"_id"`
	Username string               `bson:"username"`
	Thoughts []primitive.ObjectID `bson:"thoughts"`
	Friends  []primitive.ObjectID `bson:"friends"`
	Version  int64                `bson:"__v"`
}

func (d userDocument) model() models.User {
	return models.User{
		ID:       d.ID.Hex(),
		Username: d.Username,
		Thoughts: hexIDs(d.Thoughts),
		Friends:  hexIDs(d.Friends),
		Version:  models.Version(d.Version),
	}
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	cur, err := s.users.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	var docs []userDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users := make([]models.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, d.model())
	}
	return users, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.User{}, storage.ErrNotFound
	}
	var doc userDocument
	if err := s.users.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return models.User{}, mapErr(err)
	}
	return doc.model(), nil
}

func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	thoughts, err := objectIDs(user.Thoughts)
	if err != nil {
		return models.User{}, err
	}
	friends, err := objectIDs(user.Friends)
	if err != nil {
		return models.User{}, err
	}
	doc := userDocument{
		ID:       primitive.NewObjectID(),
		Username: user.Username,
		Thoughts: thoughts,
		Friends:  friends,
	}
	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		return models.User{}, mapErr(err)
	}
	return doc.model(), nil
}

func (s *Store) UpdateUser(ctx context.Context, id string, patch models.UserPatch) (models.User, error) {
	update := bson.M{"$inc": bson.M{"__v": 1}}
	if patch.Username != nil {
		update["$set"] = bson.M{"username": *patch.Username}
	}
	return s.updateUserByID(ctx, id, update)
}

func (s *Store) DeleteUser(ctx context.Context, id string) (models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.User{}, storage.ErrNotFound
	}
	var doc userDocument
	if err := s.users.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return models.User{}, mapErr(err)
	}
	return doc.model(), nil
}

func (s *Store) AddFriend(ctx context.Context, userID, friendID string) (models.User, error) {
	friend, err := primitive.ObjectIDFromHex(friendID)
	if err != nil {
		return models.User{}, storage.ErrInvalidID
	}
	return s.updateUserByID(ctx, userID, bson.M{
		"$addToSet": bson.M{"friends": friend},
		"$inc":      bson.M{"__v": 1},
	})
}

func (s *Store) RemoveFriend(ctx context.Context, userID, friendID string) (models.User, error) {
	friend, err := primitive.ObjectIDFromHex(friendID)
	if err != nil {
		// nothing stored can match a malformed id
		return s.GetUser(ctx, userID)
	}
	return s.updateUserByID(ctx, userID, bson.M{
		"$pull": bson.M{"friends": friend},
		"$inc":  bson.M{"__v": 1},
	})
}

func (s *Store) AddThoughtRef(ctx context.Context, username, thoughtID string) (models.User, error) {
	thought, err := primitive.ObjectIDFromHex(thoughtID)
	if err != nil {
		return models.User{}, storage.ErrInvalidID
	}
	return s.updateUser(ctx, bson.M{"username": username}, bson.M{
		"$addToSet": bson.M{"thoughts": thought},
		"$inc":      bson.M{"__v": 1},
	})
}

func (s *Store) RemoveThoughtRef(ctx context.Context, username, thoughtID string) (models.User, error) {
	thought, err := primitive.ObjectIDFromHex(thoughtID)
	if err != nil {
		return models.User{}, storage.ErrInvalidID
	}
	return s.updateUser(ctx, bson.M{"username": username}, bson.M{
		"$pull": bson.M{"thoughts": thought},
		"$inc":  bson.M{"__v": 1},
	})
}

func (s *Store) updateUserByID(ctx context.Context, id string, update bson.M) (models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.User{}, storage.ErrNotFound
	}
	return s.updateUser(ctx, bson.M{"_id": oid}, update)
}

func (s *Store) updateUser(ctx context.Context, filter, update bson.M) (models.User, error) {
	var doc userDocument
	if err := s.users.FindOneAndUpdate(ctx, filter, update, afterUpdate()).Decode(&doc); err != nil {
		return models.User{}, mapErr(err)
	}
	return doc.model(), nil
}
