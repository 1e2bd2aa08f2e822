package voteledger_test

import (
	"context"
	"sync"
	"testing"

	"github.com/d0x2f/retro.tools-backend/internal/app/system/guard"
	"github.com/d0x2f/retro.tools-backend/internal/app/system/voteledger"
	"github.com/d0x2f/retro.tools-backend/internal/domain/models"
)

type fakeBoards struct {
	mu     sync.Mutex
	boards map[string]*models.Board
}

func (f *fakeBoards) Get(ctx context.Context, id string) (*models.Board, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.boards[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

type voteKey struct{ participant, card string }

// fakeVotes mirrors the store's atomicity contract: each method mutates
// under one lock acquisition, like a single Mongo update.
type fakeVotes struct {
	mu   sync.Mutex
	rows map[voteKey]int16
}

func newFakeVotes() *fakeVotes { return &fakeVotes{rows: map[voteKey]int16{}} }

func (f *fakeVotes) Ensure(ctx context.Context, participantID, cardID string) (*models.Vote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := voteKey{participantID, cardID}
	if _, ok := f.rows[key]; !ok {
		f.rows[key] = 0
	}
	return &models.Vote{ParticipantID: participantID, CardID: cardID, Count: f.rows[key]}, nil
}

func (f *fakeVotes) IncrementClamped(ctx context.Context, participantID, cardID string, max int16) (*models.Vote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := voteKey{participantID, cardID}
	if f.rows[key] < max {
		f.rows[key]++
	}
	return &models.Vote{ParticipantID: participantID, CardID: cardID, Count: f.rows[key]}, nil
}

func (f *fakeVotes) DecrementFloored(ctx context.Context, participantID, cardID string) (*models.Vote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := voteKey{participantID, cardID}
	if f.rows[key] > 0 {
		f.rows[key]--
	}
	return &models.Vote{ParticipantID: participantID, CardID: cardID, Count: f.rows[key]}, nil
}

func (f *fakeVotes) Get(ctx context.Context, participantID, cardID string) (*models.Vote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := voteKey{participantID, cardID}
	count, ok := f.rows[key]
	if !ok {
		return nil, nil
	}
	return &models.Vote{ParticipantID: participantID, CardID: cardID, Count: count}, nil
}

func (f *fakeVotes) count(participantID, cardID string) int16 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[voteKey{participantID, cardID}]
}

func (f *fakeVotes) set(participantID, cardID string, count int16) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[voteKey{participantID, cardID}] = count
}

type fakeCards struct {
	cards map[string]*models.Card
	votes *fakeVotes
}

func (f *fakeCards) Get(ctx context.Context, id string) (*models.Card, error) {
	c, ok := f.cards[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCards) Tally(ctx context.Context, cardID, participantID string) (int64, bool, error) {
	f.votes.mu.Lock()
	defer f.votes.mu.Unlock()
	var total int64
	var voted bool
	for key, count := range f.votes.rows {
		if key.card != cardID {
			continue
		}
		total += int64(count)
		if key.participant == participantID && count > 0 {
			voted = true
		}
	}
	return total, voted, nil
}

func newLedger(maxVotes int16, votingOpen bool) (*voteledger.Ledger, *fakeVotes) {
	votes := newFakeVotes()
	boards := &fakeBoards{boards: map[string]*models.Board{
		"b1": {ID: "b1", Name: "retro", MaxVotes: maxVotes, VotingOpen: votingOpen, CardsOpen: true},
	}}
	cards := &fakeCards{
		cards: map[string]*models.Card{
			"c1": {ID: "c1", RankID: "r1", Name: "improve ci", Author: "writer"},
		},
		votes: votes,
	}
	return voteledger.New(boards, cards, votes), votes
}

func TestCast_UnknownBoard(t *testing.T) {
	ledger, _ := newLedger(1, true)
	_, res := ledger.Cast(context.Background(), "missing", "c1", "p1")
	if res.Code != guard.NotFound {
		t.Fatalf("code: got %v, want %v", res.Code, guard.NotFound)
	}
}

func TestCast_UnknownCard(t *testing.T) {
	ledger, _ := newLedger(1, true)
	_, res := ledger.Cast(context.Background(), "b1", "missing", "p1")
	if res.Code != guard.NotFound {
		t.Fatalf("code: got %v, want %v", res.Code, guard.NotFound)
	}
}

func TestCast_VotingClosed(t *testing.T) {
	ledger, _ := newLedger(1, false)
	_, res := ledger.Cast(context.Background(), "b1", "c1", "p1")
	if res.Code != guard.Forbidden {
		t.Fatalf("code: got %v, want %v", res.Code, guard.Forbidden)
	}
}

func TestCast_FirstVote(t *testing.T) {
	ledger, votes := newLedger(3, true)

	card, res := ledger.Cast(context.Background(), "b1", "c1", "p1")
	if res.Code != guard.Allow {
		t.Fatalf("code: got %v, want %v", res.Code, guard.Allow)
	}
	if votes.count("p1", "c1") != 1 {
		t.Fatalf("count: got %d, want 1", votes.count("p1", "c1"))
	}
	if card.Votes != 1 || !card.Voted {
		t.Fatalf("card aggregate: got votes=%d voted=%v, want 1/true", card.Votes, card.Voted)
	}
}

func TestCast_AtCapIsSilentlyAbsorbed(t *testing.T) {
	ledger, votes := newLedger(1, true)

	for i := 0; i < 3; i++ {
		card, res := ledger.Cast(context.Background(), "b1", "c1", "p1")
		if res.Code != guard.Allow {
			t.Fatalf("cast %d: got %v, want %v", i, res.Code, guard.Allow)
		}
		if card.Votes != 1 || !card.Voted {
			t.Fatalf("cast %d: got votes=%d voted=%v, want 1/true", i, card.Votes, card.Voted)
		}
	}
	if votes.count("p1", "c1") != 1 {
		t.Fatalf("count: got %d, want 1", votes.count("p1", "c1"))
	}
}

func TestCast_CountAboveLoweredCapSurvives(t *testing.T) {
	ledger, votes := newLedger(2, true)
	// Votes cast while the cap was higher.
	votes.set("p1", "c1", 5)

	card, res := ledger.Cast(context.Background(), "b1", "c1", "p1")
	if res.Code != guard.Allow {
		t.Fatalf("code: got %v, want %v", res.Code, guard.Allow)
	}
	if got := votes.count("p1", "c1"); got != 5 {
		t.Fatalf("count: got %d, want 5", got)
	}
	if card.Votes != 5 {
		t.Fatalf("card aggregate: got %d, want 5", card.Votes)
	}
}

func TestCast_ConcurrentNeverExceedsCap(t *testing.T) {
	const workers = 32
	const max = 5
	ledger, votes := newLedger(max, true)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, res := ledger.Cast(context.Background(), "b1", "c1", "p1")
			if res.Code != guard.Allow {
				t.Errorf("code: got %v, want %v", res.Code, guard.Allow)
			}
		}()
	}
	wg.Wait()

	if got := votes.count("p1", "c1"); got != max {
		t.Fatalf("count after %d concurrent casts: got %d, want %d", workers, got, max)
	}
}

func TestRetract_NeverCastIsNotFound(t *testing.T) {
	ledger, _ := newLedger(1, true)
	_, res := ledger.Retract(context.Background(), "b1", "c1", "p1")
	if res.Code != guard.NotFound {
		t.Fatalf("code: got %v, want %v", res.Code, guard.NotFound)
	}
}

func TestRetract_FloorsAtZero(t *testing.T) {
	ledger, votes := newLedger(3, true)
	votes.set("p1", "c1", 1)

	card, res := ledger.Retract(context.Background(), "b1", "c1", "p1")
	if res.Code != guard.Allow {
		t.Fatalf("code: got %v, want %v", res.Code, guard.Allow)
	}
	if card.Votes != 0 || card.Voted {
		t.Fatalf("card aggregate: got votes=%d voted=%v, want 0/false", card.Votes, card.Voted)
	}

	// The row persists at zero, so retracting again is a no-op, not
	// NotFound.
	card, res = ledger.Retract(context.Background(), "b1", "c1", "p1")
	if res.Code != guard.Allow {
		t.Fatalf("code: got %v, want %v", res.Code, guard.Allow)
	}
	if got := votes.count("p1", "c1"); got != 0 {
		t.Fatalf("count: got %d, want 0", got)
	}
	if card.Votes != 0 {
		t.Fatalf("card aggregate: got %d, want 0", card.Votes)
	}
}

func TestRetract_VotingClosed(t *testing.T) {
	ledger, votes := newLedger(1, false)
	votes.set("p1", "c1", 1)

	_, res := ledger.Retract(context.Background(), "b1", "c1", "p1")
	if res.Code != guard.Forbidden {
		t.Fatalf("code: got %v, want %v", res.Code, guard.Forbidden)
	}
	if got := votes.count("p1", "c1"); got != 1 {
		t.Fatalf("count: got %d, want 1", got)
	}
}

func TestCast_OwnerFlagFollowsAuthorship(t *testing.T) {
	ledger, _ := newLedger(2, true)

	card, res := ledger.Cast(context.Background(), "b1", "c1", "writer")
	if res.Code != guard.Allow {
		t.Fatalf("code: got %v, want %v", res.Code, guard.Allow)
	}
	if !card.Owner {
		t.Fatal("author must see owner=true on their card")
	}

	card, res = ledger.Cast(context.Background(), "b1", "c1", "p2")
	if res.Code != guard.Allow {
		t.Fatalf("code: got %v, want %v", res.Code, guard.Allow)
	}
	if card.Owner {
		t.Fatal("non-author must see owner=false")
	}
}
