// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// EnsureSchema creates the indexes the service relies on.
//
// Two of these carry semantics, not just performance:
//   - the partial unique index on board_memberships(board_id) where
//     owner=true enforces a single owner per board at the storage layer;
//   - the unique (participant_id, card_id) indexes on votes and
//     reactions back their one-row-per-pair upsert patterns.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase

	memberships := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "participant_id", Value: 1}, {Key: "board_id", Value: 1}},
			Options: options.Index().
				SetName("participant_board_unique").
				SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "board_id", Value: 1}},
			Options: options.Index().
				SetName("board_owner_unique").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"owner": true}),
		},
		{
			Keys:    bson.D{{Key: "participant_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("participant_recency"),
		},
	}
	if _, err := db.Collection("board_memberships").Indexes().CreateMany(ctx, memberships); err != nil {
		return fmt.Errorf("board_memberships indexes: %w", err)
	}

	votes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "participant_id", Value: 1}, {Key: "card_id", Value: 1}},
			Options: options.Index().
				SetName("participant_card_unique").
				SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "card_id", Value: 1}},
			Options: options.Index().SetName("card_lookup"),
		},
	}
	if _, err := db.Collection("votes").Indexes().CreateMany(ctx, votes); err != nil {
		return fmt.Errorf("votes indexes: %w", err)
	}

	if _, err := db.Collection("ranks").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "board_id", Value: 1}},
		Options: options.Index().SetName("board_lookup"),
	}); err != nil {
		return fmt.Errorf("ranks indexes: %w", err)
	}

	if _, err := db.Collection("cards").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "rank_id", Value: 1}},
		Options: options.Index().SetName("rank_lookup"),
	}); err != nil {
		return fmt.Errorf("cards indexes: %w", err)
	}

	reactions := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "participant_id", Value: 1}, {Key: "card_id", Value: 1}},
			Options: options.Index().
				SetName("participant_card_unique").
				SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "card_id", Value: 1}},
			Options: options.Index().SetName("card_lookup"),
		},
	}
	if _, err := db.Collection("reactions").Indexes().CreateMany(ctx, reactions); err != nil {
		return fmt.Errorf("reactions indexes: %w", err)
	}

	logger.Info("schema ensured")
	return nil
}
