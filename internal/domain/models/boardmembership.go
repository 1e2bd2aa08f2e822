// internal/domain/models/boardmembership.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BoardMembership is the authoritative join between participants and
// boards. Exactly one document per (participant_id, board_id); at most
// one document per board carries owner=true (enforced by a partial
// unique index).
//
// Visiting a board implicitly joins it as a non-owner; memberships are
// never removed by normal operation.
type BoardMembership struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ParticipantID string             `bson:"participant_id" json:"participant_id"`
	BoardID       string             `bson:"board_id" json:"board_id"`
	Owner         bool               `bson:"owner" json:"owner"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
}
