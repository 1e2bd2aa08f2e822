// internal/app/store/memberships/membershipstore.go
package membershipstore

// The board_memberships collection is the single source of truth for
// board ownership and participation. Exactly one document per
// (participant_id, board_id); the one document per board with owner=true
// identifies the board's owner (both enforced by unique indexes, see
// bootstrap.EnsureSchema).

import (
	"context"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/d0x2f/retro.tools-backend/internal/domain/models"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("board_memberships")}
}

// Get returns the membership for (participantID, boardID) or (nil, nil)
// when the participant has never joined the board.
func (s *Store) Get(ctx context.Context, participantID, boardID string) (*models.BoardMembership, error) {
	var m models.BoardMembership
	err := s.c.FindOne(ctx, bson.M{
		"participant_id": participantID,
		"board_id":       boardID,
	}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Join registers the participant on the board as a non-owner. It is
// idempotent: a duplicate join is absorbed, and an existing membership
// is never modified — in particular owner=true is never flipped back.
func (s *Store) Join(ctx context.Context, participantID, boardID string) error {
	_, err := s.c.InsertOne(ctx, bson.M{
		"participant_id": participantID,
		"board_id":       boardID,
		"owner":          false,
		"created_at":     time.Now().UTC(),
	})
	if err != nil && !wafflemongo.IsDup(err) {
		return err
	}
	return nil
}

// SetOwner grants the participant the board's owner membership,
// upserting so it also upgrades a plain membership that raced in via the
// implicit-join path. The partial unique index on (board_id, owner=true)
// rejects a second owner.
func (s *Store) SetOwner(ctx context.Context, participantID, boardID string) error {
	opts := options.Update().SetUpsert(true)
	_, err := s.c.UpdateOne(ctx, bson.M{
		"participant_id": participantID,
		"board_id":       boardID,
	}, bson.M{
		"$set":         bson.M{"owner": true},
		"$setOnInsert": bson.M{"created_at": time.Now().UTC()},
	}, opts)
	return err
}

// ListByParticipant returns every membership the participant holds,
// most recently joined first.
func (s *Store) ListByParticipant(ctx context.Context, participantID string) ([]models.BoardMembership, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"participant_id": participantID}, opts)
	if err != nil {
		return nil, err
	}

	var out []models.BoardMembership
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// BoardIDs returns the ids of every board the participant has joined,
// most recently joined first.
func (s *Store) BoardIDs(ctx context.Context, participantID string) ([]string, error) {
	ms, err := s.ListByParticipant(ctx, participantID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(ms))
	for _, m := range ms {
		ids = append(ids, m.BoardID)
	}
	return ids, nil
}

// DeleteByBoard removes all memberships for a board (board deletion).
func (s *Store) DeleteByBoard(ctx context.Context, boardID string) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"board_id": boardID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
