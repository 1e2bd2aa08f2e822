// internal/domain/models/reaction.go
package models

import "time"

// Reaction is a participant's emoji response to a card. A participant
// holds at most one reaction per card; setting a new emoji replaces the
// old one, and unlike votes a cleared reaction has no row at all.
type Reaction struct {
	ParticipantID string    `bson:"participant_id" json:"participant_id"`
	CardID        string    `bson:"card_id" json:"card_id"`
	Emoji         string    `bson:"emoji" json:"emoji"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
}
