// internal/domain/models/rank.go
package models

// Rank is a named column within a board, grouping cards.
type Rank struct {
	ID      string         `bson:"_id" json:"id"`
	BoardID string         `bson:"board_id" json:"board_id"`
	Name    string         `bson:"name" json:"name"`
	Data    map[string]any `bson:"data,omitempty" json:"data,omitempty"`
}
