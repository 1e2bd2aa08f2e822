// internal/app/features/boards/create.go
package boards

import (
	"context"

	boardstore "github.com/d0x2f/retro.tools-backend/internal/app/store/boards"
	"github.com/d0x2f/retro.tools-backend/internal/domain/models"
)

type boardWriter interface {
	Create(ctx context.Context, nb boardstore.NewBoard) (*models.Board, error)
	Delete(ctx context.Context, id string) error
}

type ownerWriter interface {
	SetOwner(ctx context.Context, participantID, boardID string) error
}

// createOwnedBoard inserts the board and the creator's owner membership.
// The two writes are not transactional; if the membership insert fails
// the board is removed again so no ownerless board is left behind.
func createOwnedBoard(ctx context.Context, boards boardWriter, memberships ownerWriter, nb boardstore.NewBoard, participantID string) (*models.Board, error) {
	board, err := boards.Create(ctx, nb)
	if err != nil {
		return nil, err
	}
	if err := memberships.SetOwner(ctx, participantID, board.ID); err != nil {
		// Best effort; the original error is the one worth surfacing.
		_ = boards.Delete(ctx, board.ID)
		return nil, err
	}
	return board, nil
}
