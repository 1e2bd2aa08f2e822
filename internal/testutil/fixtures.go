package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/d0x2f/retro.tools-backend/internal/domain/models"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok {
		rctx = chi.NewRouteContext()
		r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}
	rctx.URLParams.Add(key, value)
	return r
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateParticipant creates a test participant.
func (f *Fixtures) CreateParticipant(ctx context.Context) models.Participant {
	f.t.Helper()

	p := models.Participant{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("participants").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test participant: %v", err)
	}
	return p
}

// CreateBoard creates a test board with the given name and vote cap.
// Voting and card submission start open.
func (f *Fixtures) CreateBoard(ctx context.Context, name string, maxVotes int16) models.Board {
	f.t.Helper()

	b := models.Board{
		ID:         uuid.NewString(),
		Name:       name,
		MaxVotes:   maxVotes,
		VotingOpen: true,
		CardsOpen:  true,
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := f.db.Collection("boards").InsertOne(ctx, b); err != nil {
		f.t.Fatalf("failed to create test board: %v", err)
	}
	return b
}

// CreateClosedBoard creates a board with voting and card submission
// toggled per the arguments.
func (f *Fixtures) CreateClosedBoard(ctx context.Context, name string, maxVotes int16, votingOpen, cardsOpen bool) models.Board {
	f.t.Helper()

	b := models.Board{
		ID:         uuid.NewString(),
		Name:       name,
		MaxVotes:   maxVotes,
		VotingOpen: votingOpen,
		CardsOpen:  cardsOpen,
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := f.db.Collection("boards").InsertOne(ctx, b); err != nil {
		f.t.Fatalf("failed to create test board: %v", err)
	}
	return b
}

// CreateMembership records a board membership, optionally as owner.
func (f *Fixtures) CreateMembership(ctx context.Context, participantID, boardID string, owner bool) models.BoardMembership {
	f.t.Helper()

	m := models.BoardMembership{
		ParticipantID: participantID,
		BoardID:       boardID,
		Owner:         owner,
		CreatedAt:     time.Now().UTC(),
	}
	if _, err := f.db.Collection("board_memberships").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test membership: %v", err)
	}
	return m
}

// CreateRank creates a test rank in the given board.
func (f *Fixtures) CreateRank(ctx context.Context, boardID, name string) models.Rank {
	f.t.Helper()

	r := models.Rank{
		ID:      uuid.NewString(),
		BoardID: boardID,
		Name:    name,
	}
	if _, err := f.db.Collection("ranks").InsertOne(ctx, r); err != nil {
		f.t.Fatalf("failed to create test rank: %v", err)
	}
	return r
}

// CreateCard creates a test card in the given rank.
func (f *Fixtures) CreateCard(ctx context.Context, rankID, name, author string) models.Card {
	f.t.Helper()

	c := models.Card{
		ID:        uuid.NewString(),
		RankID:    rankID,
		Name:      name,
		Author:    author,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("cards").InsertOne(ctx, c); err != nil {
		f.t.Fatalf("failed to create test card: %v", err)
	}
	return c
}

// CreateVote records an existing vote count for (participant, card).
func (f *Fixtures) CreateVote(ctx context.Context, participantID, cardID string, count int16) models.Vote {
	f.t.Helper()

	v := models.Vote{
		ParticipantID: participantID,
		CardID:        cardID,
		Count:         count,
	}
	if _, err := f.db.Collection("votes").InsertOne(ctx, v); err != nil {
		f.t.Fatalf("failed to create test vote: %v", err)
	}
	return v
}

// CreateReaction records an existing reaction for (participant, card).
func (f *Fixtures) CreateReaction(ctx context.Context, participantID, cardID, emoji string) models.Reaction {
	f.t.Helper()

	re := models.Reaction{
		ParticipantID: participantID,
		CardID:        cardID,
		Emoji:         emoji,
		CreatedAt:     time.Now().UTC(),
	}
	if _, err := f.db.Collection("reactions").InsertOne(ctx, re); err != nil {
		f.t.Fatalf("failed to create test reaction: %v", err)
	}
	return re
}
