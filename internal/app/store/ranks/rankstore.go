// internal/app/store/ranks/rankstore.go
package rankstore

import (
	"context"

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
	return &Store{c: db.Collection("ranks")}
}

// UpdateRank carries a partial update; nil fields are left untouched.
type UpdateRank struct {
	Name *string
	Data map[string]any
}

// Create inserts a rank into the board with a generated id.
func (s *Store) Create(ctx context.Context, boardID, name string, data map[string]any) (*models.Rank, error) {
	rank := models.Rank{
		ID:      uuid.NewString(),
		BoardID: boardID,
		Name:    name,
		Data:    data,
	}
	if _, err := s.c.InsertOne(ctx, rank); err != nil {
		return nil, err
	}
	return &rank, nil
}

// Get returns the rank or (nil, nil) when the id is unknown.
func (s *Store) Get(ctx context.Context, id string) (*models.Rank, error) {
	var r models.Rank
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&r)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListByBoard returns all ranks for the board.
func (s *Store) ListByBoard(ctx context.Context, boardID string) ([]models.Rank, error) {
	cur, err := s.c.Find(ctx, bson.M{"board_id": boardID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	ranks := []models.Rank{}
	if err := cur.All(ctx, &ranks); err != nil {
		return nil, err
	}
	return ranks, nil
}

// IDsByBoard returns the ids of all ranks on the board.
func (s *Store) IDsByBoard(ctx context.Context, boardID string) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cur, err := s.c.Find(ctx, bson.M{"board_id": boardID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	ids := []string{}
	for cur.Next(ctx) {
		var row struct {
			ID string `bson:"_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		ids = append(ids, row.ID)
	}
	return ids, cur.Err()
}

// Update applies the non-nil fields of ur and returns the updated rank,
// or (nil, nil) when the rank does not exist.
func (s *Store) Update(ctx context.Context, id string, ur UpdateRank) (*models.Rank, error) {
	set := bson.M{}
	if ur.Name != nil {
		set["name"] = *ur.Name
	}
	if ur.Data != nil {
		set["data"] = ur.Data
	}
	if len(set) == 0 {
		return s.Get(ctx, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var r models.Rank
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&r)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Delete removes the rank document.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// DeleteByBoard removes all ranks for a board (board deletion).
func (s *Store) DeleteByBoard(ctx context.Context, boardID string) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"board_id": boardID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
