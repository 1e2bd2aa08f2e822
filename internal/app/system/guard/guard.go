// internal/app/system/guard/guard.go

// Package guard implements the request authorization chain.
//
// Each route declares an ordered list of checks (board ownership, board
// participation, rank-in-board, card-in-rank). The chain is evaluated by
// the Require middleware before the handler runs, in declaration order,
// short-circuiting on the first denial. Checks are never reordered or
// parallelized: a later check may depend on an earlier check's side
// effect (BoardParticipant implicitly joins the caller to the board).
//
// Checks consult the stores through the narrow reader/writer interfaces
// declared here, so they can be exercised against in-memory fakes in
// tests and against the Mongo stores in production.
package guard

import (
	"context"
	"fmt"

	"github.com/d0x2f/retro.tools-backend/internal/domain/models"
)

// Code classifies a check outcome.
type Code int

const (
	Allow Code = iota
	NotFound
	Unauthorized
	Forbidden
	Internal
)

func (c Code) String() string {
	switch c {
	case Allow:
		return "allow"
	case NotFound:
		return "not found"
	case Unauthorized:
		return "unauthorized"
	case Forbidden:
		return "forbidden"
	default:
		return "internal error"
	}
}

// Result is the typed outcome of a single check. Err is only set for
// Internal results and carries the root cause for server-side logging;
// it is never exposed to the caller.
type Result struct {
	Code Code
	Err  error
}

func allow() Result             { return Result{Code: Allow} }
func notFound() Result          { return Result{Code: NotFound} }
func unauthorized() Result      { return Result{Code: Unauthorized} }
func internal(err error) Result { return Result{Code: Internal, Err: err} }

// Params carries the path parameters a check may consult.
type Params struct {
	BoardID string
	RankID  string
	CardID  string
}

// Check is a single predicate in the ownership chain.
type Check interface {
	Name() string
	Evaluate(ctx context.Context, participantID string, p Params) Result
}

// Store interfaces. Each returns (nil, nil) when the entity is absent so
// "missing" and "storage failure" stay distinct.

type BoardReader interface {
	Get(ctx context.Context, id string) (*models.Board, error)
}

type MembershipLedger interface {
	Get(ctx context.Context, participantID, boardID string) (*models.BoardMembership, error)
	// Join registers (participantID, boardID, owner=false) if no
	// membership exists; it must be idempotent and must never demote an
	// existing owner row.
	Join(ctx context.Context, participantID, boardID string) error
}

type RankReader interface {
	Get(ctx context.Context, id string) (*models.Rank, error)
}

type CardReader interface {
	Get(ctx context.Context, id string) (*models.Card, error)
}

// BoardParticipant succeeds for any caller as long as the board exists,
// registering membership as a side effect: visiting a board joins it.
type BoardParticipant struct {
	Boards      BoardReader
	Memberships MembershipLedger
}

func (c BoardParticipant) Name() string { return "board_participant" }

func (c BoardParticipant) Evaluate(ctx context.Context, participantID string, p Params) Result {
	board, err := c.Boards.Get(ctx, p.BoardID)
	if err != nil {
		return internal(err)
	}
	if board == nil {
		return notFound()
	}
	if err := c.Memberships.Join(ctx, participantID, p.BoardID); err != nil {
		return internal(err)
	}
	return allow()
}

// BoardOwner succeeds iff the caller holds the owner membership for the
// board. A missing board reads as NotFound; an existing board without
// the owner relationship reads as Unauthorized.
type BoardOwner struct {
	Boards      BoardReader
	Memberships MembershipLedger
}

func (c BoardOwner) Name() string { return "board_owner" }

func (c BoardOwner) Evaluate(ctx context.Context, participantID string, p Params) Result {
	m, err := c.Memberships.Get(ctx, participantID, p.BoardID)
	if err != nil {
		return internal(err)
	}
	if m != nil && m.Owner {
		return allow()
	}
	board, err := c.Boards.Get(ctx, p.BoardID)
	if err != nil {
		return internal(err)
	}
	if board == nil {
		return notFound()
	}
	return unauthorized()
}

// RankInBoard succeeds iff the rank exists and belongs to the board in
// the path. A rank that belongs to a different board reads as NotFound,
// not Unauthorized — cross-board topology is hidden from callers.
type RankInBoard struct {
	Ranks RankReader
}

func (c RankInBoard) Name() string { return "rank_in_board" }

func (c RankInBoard) Evaluate(ctx context.Context, participantID string, p Params) Result {
	rank, err := c.Ranks.Get(ctx, p.RankID)
	if err != nil {
		return internal(err)
	}
	if rank == nil || rank.BoardID != p.BoardID {
		return notFound()
	}
	return allow()
}

// CardInRank is RankInBoard one level down: the card must exist and
// belong to the rank in the path.
type CardInRank struct {
	Cards CardReader
}

func (c CardInRank) Name() string { return "card_in_rank" }

func (c CardInRank) Evaluate(ctx context.Context, participantID string, p Params) Result {
	card, err := c.Cards.Get(ctx, p.CardID)
	if err != nil {
		return internal(err)
	}
	if card == nil || card.RankID != p.RankID {
		return notFound()
	}
	return allow()
}

// CardAuthor succeeds iff the caller authored the card in the path.
// Composed with BoardOwner via AnyOf, it gives the moderation policy:
// board owners can touch any card, authors can touch their own.
type CardAuthor struct {
	Cards CardReader
}

func (c CardAuthor) Name() string { return "card_author" }

func (c CardAuthor) Evaluate(ctx context.Context, participantID string, p Params) Result {
	card, err := c.Cards.Get(ctx, p.CardID)
	if err != nil {
		return internal(err)
	}
	if card == nil {
		return notFound()
	}
	if card.Author != participantID {
		return unauthorized()
	}
	return allow()
}

// AnyOf is the union combinator: it allows if any member check allows.
// Members are evaluated in order and evaluation stops at the first
// Allow. On full denial, an Internal result outranks the rest (the
// failure must be surfaced, not masked by a denial); otherwise the first
// denial is reported.
type AnyOf struct {
	Checks []Check
}

func Any(checks ...Check) AnyOf { return AnyOf{Checks: checks} }

func (c AnyOf) Name() string { return "any_of" }

func (c AnyOf) Evaluate(ctx context.Context, participantID string, p Params) Result {
	if len(c.Checks) == 0 {
		return internal(fmt.Errorf("guard: AnyOf with no checks"))
	}
	var first *Result
	for _, check := range c.Checks {
		res := check.Evaluate(ctx, participantID, p)
		switch res.Code {
		case Allow:
			return res
		case Internal:
			return res
		default:
			if first == nil {
				r := res
				first = &r
			}
		}
	}
	return *first
}

// Evaluate runs a chain of checks in order, failing fast: the first
// non-Allow result aborts the chain and is returned verbatim. No check
// runs (and no store read happens) after a denial.
func Evaluate(ctx context.Context, participantID string, p Params, checks ...Check) Result {
	for _, check := range checks {
		if res := check.Evaluate(ctx, participantID, p); res.Code != Allow {
			return res
		}
	}
	return allow()
}
