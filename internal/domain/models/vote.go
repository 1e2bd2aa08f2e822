// internal/domain/models/vote.go
package models

// Vote is the per-(participant, card) allocation in the vote ledger.
// Exactly one document per (participant_id, card_id); Count stays within
// [0, board.max_votes] at all times. Retracted votes keep their row with
// Count=0 rather than being deleted.
type Vote struct {
	ParticipantID string `bson:"participant_id" json:"participant_id"`
	CardID        string `bson:"card_id" json:"card_id"`
	Count         int16  `bson:"count" json:"count"`
}
