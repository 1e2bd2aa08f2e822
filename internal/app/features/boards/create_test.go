package boards

import (
	"context"
	"errors"
	"testing"

	boardstore "github.com/d0x2f/retro.tools-backend/internal/app/store/boards"
	"github.com/d0x2f/retro.tools-backend/internal/domain/models"
)

type fakeBoardWriter struct {
	createErr error
	deleted   []string
}

func (f *fakeBoardWriter) Create(_ context.Context, nb boardstore.NewBoard) (*models.Board, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &models.Board{ID: "b1", Name: nb.Name}, nil
}

func (f *fakeBoardWriter) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeOwnerWriter struct {
	err error
	set []string
}

func (f *fakeOwnerWriter) SetOwner(_ context.Context, participantID, boardID string) error {
	if f.err != nil {
		return f.err
	}
	f.set = append(f.set, participantID+":"+boardID)
	return nil
}

func TestCreateOwnedBoard(t *testing.T) {
	bw := &fakeBoardWriter{}
	ow := &fakeOwnerWriter{}

	board, err := createOwnedBoard(context.Background(), bw, ow, boardstore.NewBoard{Name: "Retro"}, "p1")
	if err != nil {
		t.Fatalf("createOwnedBoard failed: %v", err)
	}
	if board.ID != "b1" {
		t.Errorf("board: got %+v", board)
	}
	if len(ow.set) != 1 || ow.set[0] != "p1:b1" {
		t.Errorf("owner membership: got %v", ow.set)
	}
	if len(bw.deleted) != 0 {
		t.Errorf("nothing should be deleted on success, got %v", bw.deleted)
	}
}

func TestCreateOwnedBoard_CleansUpOnMembershipFailure(t *testing.T) {
	bw := &fakeBoardWriter{}
	ow := &fakeOwnerWriter{err: errors.New("write conflict")}

	board, err := createOwnedBoard(context.Background(), bw, ow, boardstore.NewBoard{Name: "Retro"}, "p1")
	if err == nil {
		t.Fatal("expected the membership error")
	}
	if board != nil {
		t.Errorf("no board should be returned, got %+v", board)
	}
	if len(bw.deleted) != 1 || bw.deleted[0] != "b1" {
		t.Errorf("the orphaned board must be deleted, got %v", bw.deleted)
	}
}
