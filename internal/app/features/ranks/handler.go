// internal/app/features/ranks/handler.go
package ranks

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	cardstore "github.com/d0x2f/retro.tools-backend/internal/app/store/cards"
	rankstore "github.com/d0x2f/retro.tools-backend/internal/app/store/ranks"
	reactionstore "github.com/d0x2f/retro.tools-backend/internal/app/store/reactions"
	votestore "github.com/d0x2f/retro.tools-backend/internal/app/store/votes"
	"github.com/d0x2f/retro.tools-backend/internal/app/system/httperr"
	"github.com/d0x2f/retro.tools-backend/internal/app/system/inputclean"
	"github.com/d0x2f/retro.tools-backend/internal/app/system/timeouts"
)

// Handler is the shared dependency container for the ranks feature.
type Handler struct {
	DB  *mongo.Database
	Log *zap.Logger
}

// NewHandler constructs a ranks Handler.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Log: logger}
}

type createRankRequest struct {
	Name string         `json:"name"`
	Data map[string]any `json:"data"`
}

type updateRankRequest struct {
	Name *string        `json:"name"`
	Data map[string]any `json:"data"`
}

// HandleCreateRank handles POST /boards/{board_id}/ranks (owner only).
func (h *Handler) HandleCreateRank(w http.ResponseWriter, r *http.Request) {
	boardID := chi.URLParam(r, "board_id")

	var req createRankRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.BadRequest(w, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	rank, err := rankstore.New(h.DB).Create(ctx, boardID, inputclean.Text(req.Name), req.Data)
	if err != nil {
		h.Log.Error("create-rank: insert failed", zap.String("board_id", boardID), zap.Error(err))
		httperr.Internal(w)
		return
	}

	httperr.JSON(w, http.StatusOK, rank)
}

// HandleListRanks handles GET /boards/{board_id}/ranks.
func (h *Handler) HandleListRanks(w http.ResponseWriter, r *http.Request) {
	boardID := chi.URLParam(r, "board_id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := rankstore.New(h.DB).ListByBoard(ctx, boardID)
	if err != nil {
		h.Log.Error("list-ranks: lookup failed", zap.String("board_id", boardID), zap.Error(err))
		httperr.Internal(w)
		return
	}

	httperr.JSON(w, http.StatusOK, list)
}

// HandleGetRank handles GET /boards/{board_id}/ranks/{rank_id}. The
// guard chain has already verified the rank belongs to the board.
func (h *Handler) HandleGetRank(w http.ResponseWriter, r *http.Request) {
	rankID := chi.URLParam(r, "rank_id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	rank, err := rankstore.New(h.DB).Get(ctx, rankID)
	if err != nil {
		h.Log.Error("get-rank: lookup failed", zap.String("rank_id", rankID), zap.Error(err))
		httperr.Internal(w)
		return
	}
	if rank == nil {
		httperr.NotFound(w)
		return
	}

	httperr.JSON(w, http.StatusOK, rank)
}

// HandleUpdateRank handles PATCH .../ranks/{rank_id} (owner only).
func (h *Handler) HandleUpdateRank(w http.ResponseWriter, r *http.Request) {
	rankID := chi.URLParam(r, "rank_id")

	var req updateRankRequest
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

	rank, err := rankstore.New(h.DB).Update(ctx, rankID, rankstore.UpdateRank{
		Name: req.Name,
		Data: req.Data,
	})
	if err != nil {
		h.Log.Error("update-rank: update failed", zap.String("rank_id", rankID), zap.Error(err))
		httperr.Internal(w)
		return
	}
	if rank == nil {
		httperr.NotFound(w)
		return
	}

	httperr.JSON(w, http.StatusOK, rank)
}

// HandleDeleteRank handles DELETE .../ranks/{rank_id} (owner only).
// Cards in the rank and their votes go with it.
func (h *Handler) HandleDeleteRank(w http.ResponseWriter, r *http.Request) {
	rankID := chi.URLParam(r, "rank_id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	cs := cardstore.New(h.DB)
	cardIDs, err := cs.IDsByRanks(ctx, []string{rankID})
	if err != nil {
		h.Log.Error("delete-rank: card lookup failed", zap.String("rank_id", rankID), zap.Error(err))
		httperr.Internal(w)
		return
	}

	if _, err := votestore.New(h.DB).DeleteByCards(ctx, cardIDs); err != nil {
		h.Log.Error("delete-rank: vote cleanup failed", zap.String("rank_id", rankID), zap.Error(err))
		httperr.Internal(w)
		return
	}
	if _, err := reactionstore.New(h.DB).DeleteByCards(ctx, cardIDs); err != nil {
		h.Log.Error("delete-rank: reaction cleanup failed", zap.String("rank_id", rankID), zap.Error(err))
		httperr.Internal(w)
		return
	}
	if _, err := cs.DeleteByRanks(ctx, []string{rankID}); err != nil {
		h.Log.Error("delete-rank: card cleanup failed", zap.String("rank_id", rankID), zap.Error(err))
		httperr.Internal(w)
		return
	}
	if err := rankstore.New(h.DB).Delete(ctx, rankID); err != nil {
		h.Log.Error("delete-rank: delete failed", zap.String("rank_id", rankID), zap.Error(err))
		httperr.Internal(w)
		return
	}

	w.WriteHeader(http.StatusOK)
}
