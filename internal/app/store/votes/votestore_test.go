package votestore_test

import (
	"sync"
	"testing"

	votestore "github.com/d0x2f/retro.tools-backend/internal/app/store/votes"
	"github.com/d0x2f/retro.tools-backend/internal/testutil"
)

func TestStore_Ensure(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.EnsureIndexes(t, db)
	store := votestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	v, err := store.Ensure(ctx, "p1", "c1")
	if err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	if v.Count != 0 {
		t.Errorf("count: got %d, want 0", v.Count)
	}

	// A second Ensure returns the existing row untouched.
	if _, err := store.IncrementClamped(ctx, "p1", "c1", 3); err != nil {
		t.Fatalf("IncrementClamped failed: %v", err)
	}
	v, err = store.Ensure(ctx, "p1", "c1")
	if err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	if v.Count != 1 {
		t.Errorf("count: got %d, want 1", v.Count)
	}
}

func TestStore_IncrementClamped(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.EnsureIndexes(t, db)
	store := votestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Ensure(ctx, "p1", "c1"); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}

	for i := 0; i < 5; i++ {
		if _, err := store.IncrementClamped(ctx, "p1", "c1", 3); err != nil {
			t.Fatalf("IncrementClamped %d failed: %v", i, err)
		}
	}

	v, err := store.Get(ctx, "p1", "c1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if v.Count != 3 {
		t.Errorf("count: got %d, want 3", v.Count)
	}
}

func TestStore_IncrementClamped_AboveCapSurvives(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := votestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// A count left above the cap after the owner lowered max_votes.
	fixtures.CreateVote(ctx, "p1", "c1", 5)

	if _, err := store.IncrementClamped(ctx, "p1", "c1", 2); err != nil {
		t.Fatalf("IncrementClamped failed: %v", err)
	}

	v, err := store.Get(ctx, "p1", "c1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if v.Count != 5 {
		t.Errorf("count: got %d, want 5 (existing count above cap must not change)", v.Count)
	}
}

func TestStore_IncrementClamped_Concurrent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.EnsureIndexes(t, db)
	store := votestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Ensure(ctx, "p1", "c1"); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}

	const workers = 16
	const max = 4
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.IncrementClamped(ctx, "p1", "c1", max); err != nil {
				t.Errorf("IncrementClamped failed: %v", err)
			}
		}()
	}
	wg.Wait()

	v, err := store.Get(ctx, "p1", "c1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if v.Count != max {
		t.Errorf("count after %d concurrent increments: got %d, want %d", workers, v.Count, max)
	}
}

func TestStore_DecrementFloored(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := votestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateVote(ctx, "p1", "c1", 1)

	for i := 0; i < 3; i++ {
		if _, err := store.DecrementFloored(ctx, "p1", "c1"); err != nil {
			t.Fatalf("DecrementFloored %d failed: %v", i, err)
		}
	}

	v, err := store.Get(ctx, "p1", "c1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if v == nil {
		t.Fatal("row must persist at zero, not be deleted")
	}
	if v.Count != 0 {
		t.Errorf("count: got %d, want 0", v.Count)
	}
}

func TestStore_Get_AbsentIsNil(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := votestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	v, err := store.Get(ctx, "nobody", "nothing")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if v != nil {
		t.Fatalf("expected nil, got %+v", v)
	}
}

func TestStore_DeleteByCards(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := votestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateVote(ctx, "p1", "c1", 2)
	fixtures.CreateVote(ctx, "p2", "c1", 1)
	fixtures.CreateVote(ctx, "p1", "c2", 1)

	deleted, err := store.DeleteByCards(ctx, []string{"c1"})
	if err != nil {
		t.Fatalf("DeleteByCards failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted: got %d, want 2", deleted)
	}

	v, err := store.Get(ctx, "p1", "c2")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if v == nil {
		t.Fatal("votes on other cards must survive")
	}
}
