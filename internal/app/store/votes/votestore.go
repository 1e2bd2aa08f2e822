// internal/app/store/votes/votestore.go
package votestore

// Vote counts are mutated through single-document pipeline updates so
// that the clamp and floor are applied atomically on the server. A
// read-modify-write split across two round trips would race under
// concurrent casts; none of these methods does that.

import (
	"context"

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
	return &Store{c: db.Collection("votes")}
}

// Get returns the (participant, card) vote row or (nil, nil) when the
// participant has never voted on the card.
func (s *Store) Get(ctx context.Context, participantID, cardID string) (*models.Vote, error) {
	var v models.Vote
	err := s.c.FindOne(ctx, bson.M{
		"participant_id": participantID,
		"card_id":        cardID,
	}).Decode(&v)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Ensure upserts the vote row with count 0 if absent and returns the
// current row. An existing row is returned untouched.
func (s *Store) Ensure(ctx context.Context, participantID, cardID string) (*models.Vote, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var v models.Vote
	err := s.c.FindOneAndUpdate(ctx, bson.M{
		"participant_id": participantID,
		"card_id":        cardID,
	}, bson.M{
		"$setOnInsert": bson.M{"count": int16(0)},
	}, opts).Decode(&v)
	if err != nil {
		// Two first-time casts can race on the unique index; the loser
		// re-reads the row the winner inserted.
		if wafflemongo.IsDup(err) {
			return s.Get(ctx, participantID, cardID)
		}
		return nil, err
	}
	return &v, nil
}

// IncrementClamped adds 1 to the row's count unless it is already at or
// above max. The conditional runs inside a single pipeline update, so
// the result never exceeds max even when casts race. A count above max
// (cap lowered after votes were cast) is left untouched.
func (s *Store) IncrementClamped(ctx context.Context, participantID, cardID string, max int16) (*models.Vote, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var v models.Vote
	err := s.c.FindOneAndUpdate(ctx, bson.M{
		"participant_id": participantID,
		"card_id":        cardID,
	}, bson.A{
		bson.M{"$set": bson.M{
			"count": bson.M{"$cond": bson.A{
				bson.M{"$lt": bson.A{"$count", max}},
				bson.M{"$add": bson.A{"$count", 1}},
				"$count",
			}},
		}},
	}, opts).Decode(&v)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// DecrementFloored subtracts 1 from the row's count, floored at 0.
// Decrementing a row already at 0 is a no-op.
func (s *Store) DecrementFloored(ctx context.Context, participantID, cardID string) (*models.Vote, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var v models.Vote
	err := s.c.FindOneAndUpdate(ctx, bson.M{
		"participant_id": participantID,
		"card_id":        cardID,
	}, bson.A{
		bson.M{"$set": bson.M{
			"count": bson.M{"$max": bson.A{
				0,
				bson.M{"$add": bson.A{"$count", -1}},
			}},
		}},
	}, opts).Decode(&v)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// DeleteByCards removes all vote rows for the given cards (card, rank or
// board deletion — the only time vote rows are ever deleted).
func (s *Store) DeleteByCards(ctx context.Context, cardIDs []string) (int64, error) {
	if len(cardIDs) == 0 {
		return 0, nil
	}
	res, err := s.c.DeleteMany(ctx, bson.M{"card_id": bson.M{"$in": cardIDs}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
