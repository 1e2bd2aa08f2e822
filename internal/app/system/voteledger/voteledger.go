// internal/app/system/voteledger/voteledger.go

// Package voteledger is the counter engine behind card voting.
//
// Each (participant, card) pair has at most one vote row whose count is
// bounded by the owning board's max_votes. Cast and Retract mutate the
// row through single atomic store operations (clamped increment, floored
// decrement) so concurrent requests can never push a count outside
// [0, max_votes]. Rows are never deleted: a retracted vote is a row with
// count 0.
package voteledger

import (
	"context"

	"github.com/d0x2f/retro.tools-backend/internal/app/system/guard"
	"github.com/d0x2f/retro.tools-backend/internal/domain/models"
)

// Boards is the board lookup the ledger needs; (nil, nil) means absent.
type Boards interface {
	Get(ctx context.Context, id string) (*models.Board, error)
}

// Cards reads cards and their vote tallies; Get returns (nil, nil)
// when absent.
type Cards interface {
	Get(ctx context.Context, id string) (*models.Card, error)
	// Tally returns the aggregate vote total for the card and whether
	// the given participant currently has a non-zero count on it.
	Tally(ctx context.Context, cardID, participantID string) (total int64, voted bool, err error)
}

// Votes is the mutation surface of the vote store. Each method is a
// single atomic store operation — the ledger never does read-modify-write
// across round trips.
type Votes interface {
	// Ensure upserts the (participant, card) row with count 0 if absent
	// and returns the current row.
	Ensure(ctx context.Context, participantID, cardID string) (*models.Vote, error)
	// IncrementClamped adds 1 to the row's count unless it is already at
	// or above max; the result never exceeds max even under a race.
	IncrementClamped(ctx context.Context, participantID, cardID string, max int16) (*models.Vote, error)
	// DecrementFloored subtracts 1 from the row's count, floored at 0.
	DecrementFloored(ctx context.Context, participantID, cardID string) (*models.Vote, error)
	// Get returns the row or (nil, nil) when the participant has never
	// voted on the card.
	Get(ctx context.Context, participantID, cardID string) (*models.Vote, error)
}

// Ledger coordinates board state, card existence and vote rows. It
// assumes the ownership chain has already authorized the caller.
type Ledger struct {
	boards Boards
	cards  Cards
	votes  Votes
}

func New(boards Boards, cards Cards, votes Votes) *Ledger {
	return &Ledger{boards: boards, cards: cards, votes: votes}
}

// Cast records one vote from the participant on the card and returns
// the card with its recomputed aggregate.
//
// A participant already at the board's cap is not an error: the cast is
// silently absorbed. A count above the cap can legitimately exist when
// the owner lowered max_votes after votes were cast, and must survive.
func (l *Ledger) Cast(ctx context.Context, boardID, cardID, participantID string) (*models.Card, guard.Result) {
	board, res := l.openBoard(ctx, boardID)
	if res.Code != guard.Allow {
		return nil, res
	}

	card, err := l.cards.Get(ctx, cardID)
	if err != nil {
		return nil, guard.Result{Code: guard.Internal, Err: err}
	}
	if card == nil {
		return nil, guard.Result{Code: guard.NotFound}
	}

	vote, err := l.votes.Ensure(ctx, participantID, cardID)
	if err != nil {
		return nil, guard.Result{Code: guard.Internal, Err: err}
	}
	if vote.Count < board.MaxVotes {
		if _, err := l.votes.IncrementClamped(ctx, participantID, cardID, board.MaxVotes); err != nil {
			return nil, guard.Result{Code: guard.Internal, Err: err}
		}
	}

	return l.cardWithTally(ctx, card, participantID)
}

// Retract withdraws one vote. Retracting a vote that was never cast is
// NotFound; retracting past zero is a no-op returning the unchanged card.
func (l *Ledger) Retract(ctx context.Context, boardID, cardID, participantID string) (*models.Card, guard.Result) {
	_, res := l.openBoard(ctx, boardID)
	if res.Code != guard.Allow {
		return nil, res
	}

	vote, err := l.votes.Get(ctx, participantID, cardID)
	if err != nil {
		return nil, guard.Result{Code: guard.Internal, Err: err}
	}
	if vote == nil {
		return nil, guard.Result{Code: guard.NotFound}
	}

	if _, err := l.votes.DecrementFloored(ctx, participantID, cardID); err != nil {
		return nil, guard.Result{Code: guard.Internal, Err: err}
	}

	card, err := l.cards.Get(ctx, cardID)
	if err != nil {
		return nil, guard.Result{Code: guard.Internal, Err: err}
	}
	if card == nil {
		return nil, guard.Result{Code: guard.NotFound}
	}
	return l.cardWithTally(ctx, card, participantID)
}

func (l *Ledger) openBoard(ctx context.Context, boardID string) (*models.Board, guard.Result) {
	board, err := l.boards.Get(ctx, boardID)
	if err != nil {
		return nil, guard.Result{Code: guard.Internal, Err: err}
	}
	if board == nil {
		return nil, guard.Result{Code: guard.NotFound}
	}
	if !board.VotingOpen {
		return nil, guard.Result{Code: guard.Forbidden}
	}
	return board, guard.Result{Code: guard.Allow}
}

func (l *Ledger) cardWithTally(ctx context.Context, card *models.Card, participantID string) (*models.Card, guard.Result) {
	total, voted, err := l.cards.Tally(ctx, card.ID, participantID)
	if err != nil {
		return nil, guard.Result{Code: guard.Internal, Err: err}
	}
	card.Votes = total
	card.Voted = voted
	card.Owner = card.Author == participantID
	return card, guard.Result{Code: guard.Allow}
}
