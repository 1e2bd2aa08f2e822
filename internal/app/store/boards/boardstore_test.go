package boardstore_test

import (
	"testing"

	boardstore "github.com/d0x2f/retro.tools-backend/internal/app/store/boards"
	"github.com/d0x2f/retro.tools-backend/internal/testutil"
)

func ptr[T any](v T) *T { return &v }

func TestStore_Create_Defaults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := boardstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	b, err := store.Create(ctx, boardstore.NewBoard{Name: "Sprint 12"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if b.ID == "" {
		t.Error("expected a generated id")
	}
	if b.MaxVotes != 1 {
		t.Errorf("max votes: got %d, want 1", b.MaxVotes)
	}
	if !b.VotingOpen || !b.CardsOpen {
		t.Errorf("open flags: got voting=%v cards=%v, want true/true", b.VotingOpen, b.CardsOpen)
	}
}

func TestStore_Create_ExplicitValues(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := boardstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	b, err := store.Create(ctx, boardstore.NewBoard{
		Name:       "Locked",
		MaxVotes:   ptr(int16(5)),
		VotingOpen: ptr(false),
		CardsOpen:  ptr(false),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := store.Get(ctx, b.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.MaxVotes != 5 || got.VotingOpen || got.CardsOpen {
		t.Errorf("board: got %+v", got)
	}
}

func TestStore_Get_AbsentIsNil(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := boardstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	b, err := store.Get(ctx, "missing")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if b != nil {
		t.Fatalf("expected nil, got %+v", b)
	}
}

func TestStore_Update_Partial(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := boardstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	b, err := store.Create(ctx, boardstore.NewBoard{Name: "Before", MaxVotes: ptr(int16(3))})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	updated, err := store.Update(ctx, b.ID, boardstore.UpdateBoard{VotingOpen: ptr(false)})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.VotingOpen {
		t.Error("voting_open should be false")
	}
	if updated.Name != "Before" || updated.MaxVotes != 3 {
		t.Errorf("untouched fields changed: %+v", updated)
	}
}

func TestStore_Update_AbsentIsNil(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := boardstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	updated, err := store.Update(ctx, "missing", boardstore.UpdateBoard{Name: ptr("Whatever")})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated != nil {
		t.Fatalf("expected nil, got %+v", updated)
	}
}

func TestStore_ListByIDs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := boardstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	b1, _ := store.Create(ctx, boardstore.NewBoard{Name: "One"})
	b2, _ := store.Create(ctx, boardstore.NewBoard{Name: "Two"})
	if _, err := store.Create(ctx, boardstore.NewBoard{Name: "Excluded"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	list, err := store.ListByIDs(ctx, []string{b1.ID, b2.ID})
	if err != nil {
		t.Fatalf("ListByIDs failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 boards, got %d", len(list))
	}

	empty, err := store.ListByIDs(ctx, nil)
	if err != nil {
		t.Fatalf("ListByIDs(nil) failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected no boards, got %d", len(empty))
	}
}

func TestStore_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := boardstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	b, err := store.Create(ctx, boardstore.NewBoard{Name: "Doomed"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := store.Delete(ctx, b.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	got, err := store.Get(ctx, b.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil after delete, got %+v", got)
	}
}
