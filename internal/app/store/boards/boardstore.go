// internal/app/store/boards/boardstore.go
package boardstore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/d0x2f/retro.tools-backend/internal/domain/models"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("boards")}
}

// NewBoard carries the caller-supplied fields for board creation.
// Nil pointers take the board defaults (voting and cards open, one vote).
type NewBoard struct {
	Name       string
	MaxVotes   *int16
	VotingOpen *bool
	CardsOpen  *bool
	Data       map[string]any
}

// UpdateBoard carries a partial update; nil fields are left untouched.
type UpdateBoard struct {
	Name       *string
	MaxVotes   *int16
	VotingOpen *bool
	CardsOpen  *bool
	Data       map[string]any
}

// Create inserts a board with a generated id and returns it.
func (s *Store) Create(ctx context.Context, nb NewBoard) (*models.Board, error) {
	board := models.Board{
		ID:         uuid.NewString(),
		Name:       nb.Name,
		MaxVotes:   1,
		VotingOpen: true,
		CardsOpen:  true,
		Data:       nb.Data,
		CreatedAt:  time.Now().UTC(),
	}
	if nb.MaxVotes != nil {
		board.MaxVotes = *nb.MaxVotes
	}
	if nb.VotingOpen != nil {
		board.VotingOpen = *nb.VotingOpen
	}
	if nb.CardsOpen != nil {
		board.CardsOpen = *nb.CardsOpen
	}
	if _, err := s.c.InsertOne(ctx, board); err != nil {
		return nil, err
	}
	return &board, nil
}

// Get returns the board or (nil, nil) when the id is unknown.
func (s *Store) Get(ctx context.Context, id string) (*models.Board, error) {
	var b models.Board
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&b)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ListByIDs returns the boards with the given ids, newest first.
// Missing ids are skipped silently.
func (s *Store) ListByIDs(ctx context.Context, ids []string) ([]models.Board, error) {
	if len(ids) == 0 {
		return []models.Board{}, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	boards := []models.Board{}
	if err := cur.All(ctx, &boards); err != nil {
		return nil, err
	}
	return boards, nil
}

// Update applies the non-nil fields of ub and returns the updated board,
// or (nil, nil) when the board does not exist.
func (s *Store) Update(ctx context.Context, id string, ub UpdateBoard) (*models.Board, error) {
	set := bson.M{}
	if ub.Name != nil {
		set["name"] = *ub.Name
	}
	if ub.MaxVotes != nil {
		set["max_votes"] = *ub.MaxVotes
	}
	if ub.VotingOpen != nil {
		set["voting_open"] = *ub.VotingOpen
	}
	if ub.CardsOpen != nil {
		set["cards_open"] = *ub.CardsOpen
	}
	if ub.Data != nil {
		set["data"] = ub.Data
	}
	if len(set) == 0 {
		return s.Get(ctx, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var b models.Board
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&b)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Delete removes the board document. Child ranks, cards, votes and
// memberships are removed by their own stores; the boards feature
// handler orchestrates the cascade.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
