package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hongminglow/social-api/internal/models"
	"github.com/hongminglow/social-api/internal/storage"
)

type thoughtDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	Text      string             `bson:"text"`
	Author    string             `bson:"author"`
	CreatedAt time.Time          `bson:"createdAt"`
	Reactions []reactionDocument `bson:"reactions"`
	Version   int64              `bson:"__v"`
}

type reactionDocument struct {
	ID           primitive.ObjectID `bson:"_id"`
	ReactionText string             `bson:"reactionText"`
	Author       string             `bson:"author"`
	CreatedAt    time.Time          `bson:"createdAt"`
}

func newReactionDocument(r models.Reaction) reactionDocument {
	return reactionDocument{
		ID:           primitive.NewObjectID(),
		ReactionText: r.ReactionText,
		Author:       r.Author,
		CreatedAt:    r.CreatedAt,
	}
}

func (d thoughtDocument) model() models.Thought {
	reactions := make([]models.Reaction, 0, len(d.Reactions))
	for _, r := range d.Reactions {
		reactions = append(reactions, models.Reaction{
			ID:           r.ID.Hex(),
			ReactionText: r.ReactionText,
			Author:       r.Author,
			CreatedAt:    r.CreatedAt.UTC(),
		})
	}
	return models.Thought{
		ID:        d.ID.Hex(),
		Text:      d.Text,
		Author:    d.Author,
		CreatedAt: d.CreatedAt.UTC(),
		Reactions: reactions,
		Version:   models.Version(d.Version),
	}
}

func (s *Store) ListThoughts(ctx context.Context) ([]models.Thought, error) {
	sort := bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}
	cur, err := s.thoughts.Find(ctx, bson.D{}, options.Find().SetSort(sort))
	if err != nil {
		return nil, fmt.Errorf("list thoughts: %w", err)
	}
	var docs []thoughtDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list thoughts: %w", err)
	}
	thoughts := make([]models.Thought, 0, len(docs))
	for _, d := range docs {
		thoughts = append(thoughts, d.model())
	}
	return thoughts, nil
}

func (s *Store) GetThought(ctx context.Context, id string) (models.Thought, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Thought{}, storage.ErrNotFound
	}
	var doc thoughtDocument
	if err := s.thoughts.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return models.Thought{}, mapErr(err)
	}
	return doc.model(), nil
}

func (s *Store) CreateThought(ctx context.Context, thought models.Thought) (models.Thought, error) {
	doc := thoughtDocument{
		ID:        primitive.NewObjectID(),
		Text:      thought.Text,
		Author:    thought.Author,
		CreatedAt: thought.CreatedAt,
		Reactions: make([]reactionDocument, 0, len(thought.Reactions)),
	}
	for _, r := range thought.Reactions {
		doc.Reactions = append(doc.Reactions, newReactionDocument(r))
	}
	if _, err := s.thoughts.InsertOne(ctx, doc); err != nil {
		return models.Thought{}, mapErr(err)
	}
	return doc.model(), nil
}

func (s *Store) UpdateThought(ctx context.Context, id string, patch models.ThoughtPatch) (models.Thought, error) {
	set := bson.M{}
	if patch.Text != nil {
		set["text"] = *patch.Text
	}
	if patch.Author != nil {
		set["author"] = *patch.Author
	}
	update := bson.M{"$inc": bson.M{"__v": 1}}
	if len(set) > 0 {
		update["$set"] = set
	}
	return s.updateThoughtByID(ctx, id, nil, update)
}

func (s *Store) DeleteThought(ctx context.Context, id string) (models.Thought, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Thought{}, storage.ErrNotFound
	}
	var doc thoughtDocument
	if err := s.thoughts.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return models.Thought{}, mapErr(err)
	}
	return doc.model(), nil
}

// AddReaction pushes the reaction only when no element shares its text and author.
// A miss means either the thought is gone or the pair is already present; the
// follow-up read tells the two apart.
func (s *Store) AddReaction(ctx context.Context, thoughtID string, reaction models.Reaction) (models.Thought, error) {
	notReacted := bson.M{"reactions": bson.M{"$not": bson.M{"$elemMatch": bson.M{
		"reactionText": reaction.ReactionText,
		"author":       reaction.Author,
	}}}}
	thought, err := s.updateThoughtByID(ctx, thoughtID, notReacted, bson.M{
		"$push": bson.M{"reactions": newReactionDocument(reaction)},
		"$inc":  bson.M{"__v": 1},
	})
	if errors.Is(err, storage.ErrNotFound) {
		return s.GetThought(ctx, thoughtID)
	}
	return thought, err
}

func (s *Store) RemoveReaction(ctx context.Context, thoughtID, reactionID string) (models.Thought, error) {
	rid, err := primitive.ObjectIDFromHex(reactionID)
	if err != nil {
		return s.GetThought(ctx, thoughtID)
	}
	return s.updateThoughtByID(ctx, thoughtID, nil, bson.M{
		"$pull": bson.M{"reactions": bson.M{"_id": rid}},
		"$inc":  bson.M{"__v": 1},
	})
}

func (s *Store) updateThoughtByID(ctx context.Context, id string, extra, update bson.M) (models.Thought, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Thought{}, storage.ErrNotFound
	}
	filter := bson.M{"_id": oid}
	for k, v := range extra {
		filter[k] = v
	}
	var doc thoughtDocument
	if err := s.thoughts.FindOneAndUpdate(ctx, filter, update, afterUpdate()).Decode(&doc); err != nil {
		return models.Thought{}, mapErr(err)
	}
	return doc.model(), nil
}
