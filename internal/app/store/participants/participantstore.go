// internal/app/store/participants/participantstore.go
package participantstore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/d0x2f/retro.tools-backend/internal/domain/models"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("participants")}
}

// Get returns the participant or (nil, nil) when the id is unknown.
func (s *Store) Get(ctx context.Context, id string) (*models.Participant, error) {
	var p models.Participant
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a new anonymous participant with a generated id.
func (s *Store) Create(ctx context.Context) (*models.Participant, error) {
	p := models.Participant{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return nil, err
	}
	return &p, nil
}
