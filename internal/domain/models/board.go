// internal/domain/models/board.go
package models

import "time"

// Board is a retrospective session container.
//
// NOTE:
//   - Ownership is no longer embedded on Board. The board_memberships
//     collection is the single source of truth: the one document with
//     owner=true identifies the owning participant.
//   - MaxVotes caps each participant's total votes per card; lowering it
//     after votes were cast never invalidates already-cast votes.
type Board struct {
	ID         string         `bson:"_id" json:"id"`
	Name       string         `bson:"name" json:"name"`
	MaxVotes   int16          `bson:"max_votes" json:"max_votes"`
	VotingOpen bool           `bson:"voting_open" json:"voting_open"`
	CardsOpen  bool           `bson:"cards_open" json:"cards_open"`
	Data       map[string]any `bson:"data,omitempty" json:"data,omitempty"`
	CreatedAt  time.Time      `bson:"created_at" json:"created_at"`
}
