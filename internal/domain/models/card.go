// internal/domain/models/card.go
package models

import "time"

// Card is a single feedback item posted into a rank.
//
// Author is the participant who created the card. Edit rights are the
// union of "caller owns the parent board" OR "caller authored this
// card"; Author is what makes the second half of that union work.
type Card struct {
	ID          string    `bson:"_id" json:"id"`
	RankID      string    `bson:"rank_id" json:"rank_id"`
	Name        string    `bson:"name" json:"name"`
	Description string    `bson:"description" json:"description"`
	Author      string    `bson:"author" json:"-"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`

	// Computed per request, never stored.
	Votes     int64            `bson:"-" json:"votes"`
	Voted     bool             `bson:"-" json:"voted"`
	Owner     bool             `bson:"-" json:"owner"`
	Reactions map[string]int64 `bson:"-" json:"reactions"`
	Reacted   string           `bson:"-" json:"reacted"`
}
