// internal/app/features/boards/handler.go
package boards

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	boardstore "github.com/d0x2f/retro.tools-backend/internal/app/store/boards"
	cardstore "github.com/d0x2f/retro.tools-backend/internal/app/store/cards"
	membershipstore "github.com/d0x2f/retro.tools-backend/internal/app/store/memberships"
	rankstore "github.com/d0x2f/retro.tools-backend/internal/app/store/ranks"
	reactionstore "github.com/d0x2f/retro.tools-backend/internal/app/store/reactions"
	votestore "github.com/d0x2f/retro.tools-backend/internal/app/store/votes"
	"github.com/d0x2f/retro.tools-backend/internal/app/system/auth"
	"github.com/d0x2f/retro.tools-backend/internal/app/system/httperr"
	"github.com/d0x2f/retro.tools-backend/internal/app/system/inputclean"
	"github.com/d0x2f/retro.tools-backend/internal/app/system/timeouts"
	"github.com/d0x2f/retro.tools-backend/internal/domain/models"
)

// Handler is the shared dependency container for the boards feature.
type Handler struct {
	DB  *mongo.Database
	Log *zap.Logger
}

// NewHandler constructs a boards Handler. It is typically called from
// the bootstrap BuildHandler function, where the application's DB and
// logger are already initialized.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Log: logger}
}

// boardResponse is a board plus the caller-relative owner flag.
type boardResponse struct {
	models.Board
	Owner bool `json:"owner"`
}

// createBoardRequest is the POST /boards body. Omitted fields take the
// defaults: max_votes 1, voting and card submission both open.
type createBoardRequest struct {
	Name       string         `json:"name"`
	MaxVotes   *int16         `json:"max_votes"`
	VotingOpen *bool          `json:"voting_open"`
	CardsOpen  *bool          `json:"cards_open"`
	Data       map[string]any `json:"data"`
}

// updateBoardRequest is the PATCH /boards/{board_id} body; every field
// is optional and absent fields are left untouched.
type updateBoardRequest struct {
	Name       *string        `json:"name"`
	MaxVotes   *int16         `json:"max_votes"`
	VotingOpen *bool          `json:"voting_open"`
	CardsOpen  *bool          `json:"cards_open"`
	Data       map[string]any `json:"data"`
}

// HandleCreateBoard handles POST /boards.
//
// The creating participant becomes the board owner; ownership lives in
// the board_memberships collection, not on the board document.
func (h *Handler) HandleCreateBoard(w http.ResponseWriter, r *http.Request) {
	participantID, ok := auth.CurrentParticipant(r)
	if !ok {
		h.Log.Error("create-board: no participant in context")
		httperr.Internal(w)
		return
	}

	var req createBoardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.BadRequest(w, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	board, err := createOwnedBoard(ctx, boardstore.New(h.DB), membershipstore.New(h.DB), boardstore.NewBoard{
		Name:       inputclean.Text(req.Name),
		MaxVotes:   req.MaxVotes,
		VotingOpen: req.VotingOpen,
		CardsOpen:  req.CardsOpen,
		Data:       req.Data,
	}, participantID)
	if err != nil {
		h.Log.Error("create-board: insert failed", zap.Error(err))
		httperr.Internal(w)
		return
	}

	httperr.JSON(w, http.StatusOK, boardResponse{Board: *board, Owner: true})
}

// HandleListBoards handles GET /boards: every board the caller has
// joined, most recently created first, each flagged with whether the
// caller owns it.
func (h *Handler) HandleListBoards(w http.ResponseWriter, r *http.Request) {
	participantID, ok := auth.CurrentParticipant(r)
	if !ok {
		h.Log.Error("list-boards: no participant in context")
		httperr.Internal(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	ms, err := membershipstore.New(h.DB).ListByParticipant(ctx, participantID)
	if err != nil {
		h.Log.Error("list-boards: membership lookup failed", zap.Error(err))
		httperr.Internal(w)
		return
	}

	ids := make([]string, 0, len(ms))
	owned := make(map[string]bool, len(ms))
	for _, m := range ms {
		ids = append(ids, m.BoardID)
		owned[m.BoardID] = m.Owner
	}

	bs, err := boardstore.New(h.DB).ListByIDs(ctx, ids)
	if err != nil {
		h.Log.Error("list-boards: board lookup failed", zap.Error(err))
		httperr.Internal(w)
		return
	}

	out := make([]boardResponse, 0, len(bs))
	for _, b := range bs {
		out = append(out, boardResponse{Board: b, Owner: owned[b.ID]})
	}
	httperr.JSON(w, http.StatusOK, out)
}

// HandleGetBoard handles GET /boards/{board_id}. The participant guard
// has already joined the caller to the board.
func (h *Handler) HandleGetBoard(w http.ResponseWriter, r *http.Request) {
	participantID, _ := auth.CurrentParticipant(r)
	boardID := chi.URLParam(r, "board_id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	board, err := boardstore.New(h.DB).Get(ctx, boardID)
	if err != nil {
		h.Log.Error("get-board: lookup failed", zap.String("board_id", boardID), zap.Error(err))
		httperr.Internal(w)
		return
	}
	if board == nil {
		httperr.NotFound(w)
		return
	}

	m, err := membershipstore.New(h.DB).Get(ctx, participantID, boardID)
	if err != nil {
		h.Log.Error("get-board: membership lookup failed", zap.String("board_id", boardID), zap.Error(err))
		httperr.Internal(w)
		return
	}

	httperr.JSON(w, http.StatusOK, boardResponse{Board: *board, Owner: m != nil && m.Owner})
}

// HandleUpdateBoard handles PATCH /boards/{board_id} (owner only).
func (h *Handler) HandleUpdateBoard(w http.ResponseWriter, r *http.Request) {
	boardID := chi.URLParam(r, "board_id")

	var req updateBoardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.BadRequest(w, "Invalid request body")
		return
	}
	if req.Name != nil {
		clean := inputclean.Text(*req.Name)
		req.Name = &clean
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	board, err := boardstore.New(h.DB).Update(ctx, boardID, boardstore.UpdateBoard{
		Name:       req.Name,
		MaxVotes:   req.MaxVotes,
		VotingOpen: req.VotingOpen,
		CardsOpen:  req.CardsOpen,
		Data:       req.Data,
	})
	if err != nil {
		h.Log.Error("update-board: update failed", zap.String("board_id", boardID), zap.Error(err))
		httperr.Internal(w)
		return
	}
	if board == nil {
		httperr.NotFound(w)
		return
	}

	httperr.JSON(w, http.StatusOK, boardResponse{Board: *board, Owner: true})
}

// HandleDeleteBoard handles DELETE /boards/{board_id} (owner only).
// Everything hanging off the board goes with it: ranks, cards, votes
// and memberships.
func (h *Handler) HandleDeleteBoard(w http.ResponseWriter, r *http.Request) {
	boardID := chi.URLParam(r, "board_id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	rs := rankstore.New(h.DB)
	cs := cardstore.New(h.DB)

	rankIDs, err := rs.IDsByBoard(ctx, boardID)
	if err != nil {
		h.Log.Error("delete-board: rank lookup failed", zap.String("board_id", boardID), zap.Error(err))
		httperr.Internal(w)
		return
	}
	cardIDs, err := cs.IDsByRanks(ctx, rankIDs)
	if err != nil {
		h.Log.Error("delete-board: card lookup failed", zap.String("board_id", boardID), zap.Error(err))
		httperr.Internal(w)
		return
	}

	if _, err := votestore.New(h.DB).DeleteByCards(ctx, cardIDs); err != nil {
		h.Log.Error("delete-board: vote cleanup failed", zap.String("board_id", boardID), zap.Error(err))
		httperr.Internal(w)
		return
	}
	if _, err := reactionstore.New(h.DB).DeleteByCards(ctx, cardIDs); err != nil {
		h.Log.Error("delete-board: reaction cleanup failed", zap.String("board_id", boardID), zap.Error(err))
		httperr.Internal(w)
		return
	}
	if _, err := cs.DeleteByRanks(ctx, rankIDs); err != nil {
		h.Log.Error("delete-board: card cleanup failed", zap.String("board_id", boardID), zap.Error(err))
		httperr.Internal(w)
		return
	}
	if _, err := rs.DeleteByBoard(ctx, boardID); err != nil {
		h.Log.Error("delete-board: rank cleanup failed", zap.String("board_id", boardID), zap.Error(err))
		httperr.Internal(w)
		return
	}
	if _, err := membershipstore.New(h.DB).DeleteByBoard(ctx, boardID); err != nil {
		h.Log.Error("delete-board: membership cleanup failed", zap.String("board_id", boardID), zap.Error(err))
		httperr.Internal(w)
		return
	}
	if err := boardstore.New(h.DB).Delete(ctx, boardID); err != nil {
		h.Log.Error("delete-board: delete failed", zap.String("board_id", boardID), zap.Error(err))
		httperr.Internal(w)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// HandleExportCSV handles GET /boards/{board_id}/csv: the board's cards
// as a CSV attachment, grouped by rank.
func (h *Handler) HandleExportCSV(w http.ResponseWriter, r *http.Request) {
	participantID, _ := auth.CurrentParticipant(r)
	boardID := chi.URLParam(r, "board_id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	board, err := boardstore.New(h.DB).Get(ctx, boardID)
	if err != nil {
		h.Log.Error("export-csv: board lookup failed", zap.String("board_id", boardID), zap.Error(err))
		httperr.Internal(w)
		return
	}
	if board == nil {
		httperr.NotFound(w)
		return
	}

	rankList, err := rankstore.New(h.DB).ListByBoard(ctx, boardID)
	if err != nil {
		h.Log.Error("export-csv: rank lookup failed", zap.String("board_id", boardID), zap.Error(err))
		httperr.Internal(w)
		return
	}
	rankNames := make(map[string]string, len(rankList))
	rankIDs := make([]string, 0, len(rankList))
	for _, rk := range rankList {
		rankNames[rk.ID] = rk.Name
		rankIDs = append(rankIDs, rk.ID)
	}

	cardList, err := cardstore.New(h.DB).ListByRanks(ctx, rankIDs, participantID)
	if err != nil {
		h.Log.Error("export-csv: card lookup failed", zap.String("board_id", boardID), zap.Error(err))
		httperr.Internal(w)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("%s-%d.csv", board.Name, board.CreatedAt.Unix())))

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"rank", "name", "description", "created_at", "votes"})
	for _, card := range cardList {
		_ = cw.Write([]string{
			rankNames[card.RankID],
			card.Name,
			card.Description,
			strconv.FormatInt(card.CreatedAt.Unix(), 10),
			strconv.FormatInt(card.Votes, 10),
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		h.Log.Error("export-csv: write failed", zap.String("board_id", boardID), zap.Error(err))
	}
}
