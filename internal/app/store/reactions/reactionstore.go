// internal/app/store/reactions/reactionstore.go
package reactionstore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/d0x2f/retro.tools-backend/internal/domain/models"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("reactions")}
}

// Set records the participant's reaction to the card, replacing any
// previous emoji. The unique (participant_id, card_id) index makes the
// upsert race-safe.
func (s *Store) Set(ctx context.Context, participantID, cardID, emoji string) error {
	opts := options.Update().SetUpsert(true)
	_, err := s.c.UpdateOne(ctx, bson.M{
		"participant_id": participantID,
		"card_id":        cardID,
	}, bson.M{
		"$set":         bson.M{"emoji": emoji},
		"$setOnInsert": bson.M{"created_at": time.Now().UTC()},
	}, opts)
	return err
}

// Clear removes the participant's reaction to the card. Clearing when
// no reaction exists is a no-op.
func (s *Store) Clear(ctx context.Context, participantID, cardID string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{
		"participant_id": participantID,
		"card_id":        cardID,
	})
	return err
}

// Summary returns the card's reaction counts per emoji and the emoji
// the given participant reacted with ("" when they have not).
func (s *Store) Summary(ctx context.Context, cardID, participantID string) (map[string]int64, string, error) {
	cur, err := s.c.Find(ctx, bson.M{"card_id": cardID})
	if err != nil {
		return nil, "", err
	}
	defer cur.Close(ctx)

	counts := map[string]int64{}
	reacted := ""
	for cur.Next(ctx) {
		var row models.Reaction
		if err := cur.Decode(&row); err != nil {
			return nil, "", err
		}
		counts[row.Emoji]++
		if row.ParticipantID == participantID {
			reacted = row.Emoji
		}
	}
	return counts, reacted, cur.Err()
}

// DeleteByCards removes all reactions for the given cards (card, rank
// or board deletion).
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
