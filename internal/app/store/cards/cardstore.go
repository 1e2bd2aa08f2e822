// internal/app/store/cards/cardstore.go
package cardstore

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
	c     *mongo.Collection
	votes *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:     db.Collection("cards"),
		votes: db.Collection("votes"),
	}
}

// UpdateCard carries a partial update; nil fields are left untouched.
type UpdateCard struct {
	Name        *string
	Description *string
}

// cardRow is the aggregation shape for card listings: the card document
// plus its computed vote aggregate.
type cardRow struct {
	models.Card  `bson:",inline"`
	VoteTotal    int64             `bson:"vote_total"`
	HasVoted     bool              `bson:"has_voted"`
	ReactionRows []models.Reaction `bson:"reaction_rows"`
}

// Create inserts a card into the rank, attributed to the author.
func (s *Store) Create(ctx context.Context, rankID, name, description, author string) (*models.Card, error) {
	card := models.Card{
		ID:          uuid.NewString(),
		RankID:      rankID,
		Name:        name,
		Description: description,
		Author:      author,
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, card); err != nil {
		return nil, err
	}
	card.Owner = true
	card.Reactions = map[string]int64{}
	return &card, nil
}

// Get returns the card or (nil, nil) when the id is unknown. The vote
// aggregate fields are not populated; use Tally for those.
func (s *Store) Get(ctx context.Context, id string) (*models.Card, error) {
	var c models.Card
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListByRanks returns the cards of the given ranks, oldest first, each
// carrying its aggregate vote total and the caller's voted flag.
func (s *Store) ListByRanks(ctx context.Context, rankIDs []string, participantID string) ([]models.Card, error) {
	if len(rankIDs) == 0 {
		return []models.Card{}, nil
	}

	cur, err := s.c.Aggregate(ctx, []bson.M{
		{"$match": bson.M{"rank_id": bson.M{"$in": rankIDs}}},
		{"$sort": bson.M{"created_at": 1}},
		{"$lookup": bson.M{
			"from":         "votes",
			"localField":   "_id",
			"foreignField": "card_id",
			"as":           "vote_rows",
		}},
		{"$lookup": bson.M{
			"from":         "reactions",
			"localField":   "_id",
			"foreignField": "card_id",
			"as":           "reaction_rows",
		}},
		{"$addFields": bson.M{
			"vote_total": bson.M{"$sum": "$vote_rows.count"},
			"has_voted": bson.M{"$gt": []any{
				bson.M{"$sum": bson.M{"$map": bson.M{
					"input": bson.M{"$filter": bson.M{
						"input": "$vote_rows",
						"cond":  bson.M{"$eq": []any{"$$this.participant_id", participantID}},
					}},
					"in": "$$this.count",
				}}},
				0,
			}},
		}},
		{"$project": bson.M{"vote_rows": 0}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	cards := []models.Card{}
	for cur.Next(ctx) {
		var row cardRow
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		card := row.Card
		card.Votes = row.VoteTotal
		card.Voted = row.HasVoted
		card.Owner = card.Author == participantID
		card.Reactions = map[string]int64{}
		for _, re := range row.ReactionRows {
			card.Reactions[re.Emoji]++
			if re.ParticipantID == participantID {
				card.Reacted = re.Emoji
			}
		}
		cards = append(cards, card)
	}
	return cards, cur.Err()
}

// ListByRank returns the cards of a single rank with vote aggregates.
func (s *Store) ListByRank(ctx context.Context, rankID, participantID string) ([]models.Card, error) {
	return s.ListByRanks(ctx, []string{rankID}, participantID)
}

// Tally returns the card's aggregate vote total across all participants
// and whether the given participant currently holds a non-zero count.
func (s *Store) Tally(ctx context.Context, cardID, participantID string) (int64, bool, error) {
	cur, err := s.votes.Aggregate(ctx, []bson.M{
		{"$match": bson.M{"card_id": cardID}},
		{"$group": bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$count"},
			"mine": bson.M{"$sum": bson.M{"$cond": []any{
				bson.M{"$eq": []any{"$participant_id", participantID}},
				"$count",
				0,
			}}},
		}},
	})
	if err != nil {
		return 0, false, err
	}
	defer cur.Close(ctx)

	if cur.Next(ctx) {
		var row struct {
			Total int64 `bson:"total"`
			Mine  int64 `bson:"mine"`
		}
		if err := cur.Decode(&row); err != nil {
			return 0, false, err
		}
		return row.Total, row.Mine > 0, nil
	}
	return 0, false, cur.Err()
}

// Update applies the non-nil fields of uc and returns the updated card,
// or (nil, nil) when the card does not exist.
func (s *Store) Update(ctx context.Context, id string, uc UpdateCard) (*models.Card, error) {
	set := bson.M{}
	if uc.Name != nil {
		set["name"] = *uc.Name
	}
	if uc.Description != nil {
		set["description"] = *uc.Description
	}
	if len(set) == 0 {
		return s.Get(ctx, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var c models.Card
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&c)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Delete removes the card document. Its vote rows are removed by the
// vote store.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// IDsByRanks returns the ids of all cards in the given ranks.
func (s *Store) IDsByRanks(ctx context.Context, rankIDs []string) ([]string, error) {
	if len(rankIDs) == 0 {
		return []string{}, nil
	}
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cur, err := s.c.Find(ctx, bson.M{"rank_id": bson.M{"$in": rankIDs}}, opts)
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

// DeleteByRanks removes all cards in the given ranks (rank or board
// deletion).
func (s *Store) DeleteByRanks(ctx context.Context, rankIDs []string) (int64, error) {
	if len(rankIDs) == 0 {
		return 0, nil
	}
	res, err := s.c.DeleteMany(ctx, bson.M{"rank_id": bson.M{"$in": rankIDs}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
