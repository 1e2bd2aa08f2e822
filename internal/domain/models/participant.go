// internal/domain/models/participant.go
package models

import "time"

// Participant is an anonymous end user identified only by an opaque ID.
//
// Participants are created lazily on first contact (see the session
// resolver) and never updated. The ID doubles as the session cookie
// value, so it must stay opaque and unguessable (UUIDv4).
type Participant struct {
	ID        string    `bson:"_id" json:"id"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
