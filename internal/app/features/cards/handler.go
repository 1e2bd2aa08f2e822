// internal/app/features/cards/handler.go
package cards

import (
	"context"
	"encoding/json"
	"net/http"

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
	"github.com/d0x2f/retro.tools-backend/internal/app/system/guard"
	"github.com/d0x2f/retro.tools-backend/internal/app/system/httperr"
	"github.com/d0x2f/retro.tools-backend/internal/app/system/inputclean"
	"github.com/d0x2f/retro.tools-backend/internal/app/system/timeouts"
	"github.com/d0x2f/retro.tools-backend/internal/app/system/voteledger"
	"github.com/d0x2f/retro.tools-backend/internal/domain/models"
)

// Handler is the shared dependency container for the cards feature.
type Handler struct {
	DB  *mongo.Database
	Log *zap.Logger
}

// NewHandler constructs a cards Handler.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Log: logger}
}

func (h *Handler) ledger() *voteledger.Ledger {
	return voteledger.New(boardstore.New(h.DB), cardstore.New(h.DB), votestore.New(h.DB))
}

// attachAggregates fills the card's per-request fields: vote tally,
// the caller's voted/owner flags and the reaction summary.
func (h *Handler) attachAggregates(ctx context.Context, card *models.Card, participantID string) error {
	total, voted, err := cardstore.New(h.DB).Tally(ctx, card.ID, participantID)
	if err != nil {
		return err
	}
	reactions, reacted, err := reactionstore.New(h.DB).Summary(ctx, card.ID, participantID)
	if err != nil {
		return err
	}
	card.Votes = total
	card.Voted = voted
	card.Owner = card.Author == participantID
	card.Reactions = reactions
	card.Reacted = reacted
	return nil
}

type createCardRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type updateCardRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// HandleCreateCard handles POST .../ranks/{rank_id}/cards.
//
// When the board has card submission closed only the board owner may
// still post. Empty cards are rejected.
func (h *Handler) HandleCreateCard(w http.ResponseWriter, r *http.Request) {
	participantID, ok := auth.CurrentParticipant(r)
	if !ok {
		h.Log.Error("create-card: no participant in context")
		httperr.Internal(w)
		return
	}
	boardID := chi.URLParam(r, "board_id")
	rankID := chi.URLParam(r, "rank_id")

	var req createCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.BadRequest(w, "Invalid request body")
		return
	}
	name := inputclean.Text(req.Name)
	if name == "" {
		httperr.BadRequest(w, "Empty cards are not allowed.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	board, err := boardstore.New(h.DB).Get(ctx, boardID)
	if err != nil {
		h.Log.Error("create-card: board lookup failed", zap.String("board_id", boardID), zap.Error(err))
		httperr.Internal(w)
		return
	}
	if board == nil {
		httperr.NotFound(w)
		return
	}
	if !board.CardsOpen {
		m, err := membershipstore.New(h.DB).Get(ctx, participantID, boardID)
		if err != nil {
			h.Log.Error("create-card: membership lookup failed", zap.String("board_id", boardID), zap.Error(err))
			httperr.Internal(w)
			return
		}
		if m == nil || !m.Owner {
			httperr.Forbidden(w)
			return
		}
	}

	card, err := cardstore.New(h.DB).Create(ctx, rankID, name, inputclean.Text(req.Description), participantID)
	if err != nil {
		h.Log.Error("create-card: insert failed", zap.String("rank_id", rankID), zap.Error(err))
		httperr.Internal(w)
		return
	}

	httperr.JSON(w, http.StatusOK, card)
}

// HandleListCards handles GET .../ranks/{rank_id}/cards. Each card
// carries its aggregate vote total and the caller's voted/owner flags.
func (h *Handler) HandleListCards(w http.ResponseWriter, r *http.Request) {
	participantID, _ := auth.CurrentParticipant(r)
	rankID := chi.URLParam(r, "rank_id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := cardstore.New(h.DB).ListByRank(ctx, rankID, participantID)
	if err != nil {
		h.Log.Error("list-cards: lookup failed", zap.String("rank_id", rankID), zap.Error(err))
		httperr.Internal(w)
		return
	}

	httperr.JSON(w, http.StatusOK, list)
}

// HandleGetCard handles GET .../cards/{card_id}.
func (h *Handler) HandleGetCard(w http.ResponseWriter, r *http.Request) {
	participantID, _ := auth.CurrentParticipant(r)
	cardID := chi.URLParam(r, "card_id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	card, err := cardstore.New(h.DB).Get(ctx, cardID)
	if err != nil {
		h.Log.Error("get-card: lookup failed", zap.String("card_id", cardID), zap.Error(err))
		httperr.Internal(w)
		return
	}
	if card == nil {
		httperr.NotFound(w)
		return
	}

	if err := h.attachAggregates(ctx, card, participantID); err != nil {
		h.Log.Error("get-card: aggregate failed", zap.String("card_id", cardID), zap.Error(err))
		httperr.Internal(w)
		return
	}

	httperr.JSON(w, http.StatusOK, card)
}

// HandleUpdateCard handles PATCH .../cards/{card_id}. The guard chain
// admits board owners and the card's author.
func (h *Handler) HandleUpdateCard(w http.ResponseWriter, r *http.Request) {
	participantID, _ := auth.CurrentParticipant(r)
	cardID := chi.URLParam(r, "card_id")

	var req updateCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.BadRequest(w, "Invalid request body")
		return
	}
	if req.Name != nil {
		clean := inputclean.Text(*req.Name)
		if clean == "" {
			httperr.BadRequest(w, "Empty cards are not allowed.")
			return
		}
		req.Name = &clean
	}
	if req.Description != nil {
		clean := inputclean.Text(*req.Description)
		req.Description = &clean
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	card, err := cardstore.New(h.DB).Update(ctx, cardID, cardstore.UpdateCard{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.Log.Error("update-card: update failed", zap.String("card_id", cardID), zap.Error(err))
		httperr.Internal(w)
		return
	}
	if card == nil {
		httperr.NotFound(w)
		return
	}

	if err := h.attachAggregates(ctx, card, participantID); err != nil {
		h.Log.Error("update-card: aggregate failed", zap.String("card_id", cardID), zap.Error(err))
		httperr.Internal(w)
		return
	}

	httperr.JSON(w, http.StatusOK, card)
}

// HandleDeleteCard handles DELETE .../cards/{card_id}. The card's votes
// and reactions are removed with it.
func (h *Handler) HandleDeleteCard(w http.ResponseWriter, r *http.Request) {
	cardID := chi.URLParam(r, "card_id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if _, err := votestore.New(h.DB).DeleteByCards(ctx, []string{cardID}); err != nil {
		h.Log.Error("delete-card: vote cleanup failed", zap.String("card_id", cardID), zap.Error(err))
		httperr.Internal(w)
		return
	}
	if _, err := reactionstore.New(h.DB).DeleteByCards(ctx, []string{cardID}); err != nil {
		h.Log.Error("delete-card: reaction cleanup failed", zap.String("card_id", cardID), zap.Error(err))
		httperr.Internal(w)
		return
	}
	if err := cardstore.New(h.DB).Delete(ctx, cardID); err != nil {
		h.Log.Error("delete-card: delete failed", zap.String("card_id", cardID), zap.Error(err))
		httperr.Internal(w)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// HandleCastVote handles POST .../cards/{card_id}/vote.
func (h *Handler) HandleCastVote(w http.ResponseWriter, r *http.Request) {
	participantID, ok := auth.CurrentParticipant(r)
	if !ok {
		h.Log.Error("cast-vote: no participant in context")
		httperr.Internal(w)
		return
	}
	boardID := chi.URLParam(r, "board_id")
	cardID := chi.URLParam(r, "card_id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	card, res := h.ledger().Cast(ctx, boardID, cardID, participantID)
	if res.Code != guard.Allow {
		guard.Render(w, h.Log, res)
		return
	}

	reactions, reacted, err := reactionstore.New(h.DB).Summary(ctx, cardID, participantID)
	if err != nil {
		h.Log.Error("cast-vote: reaction summary failed", zap.String("card_id", cardID), zap.Error(err))
		httperr.Internal(w)
		return
	}
	card.Reactions = reactions
	card.Reacted = reacted

	httperr.JSON(w, http.StatusOK, card)
}

// HandleRetractVote handles DELETE .../cards/{card_id}/vote.
func (h *Handler) HandleRetractVote(w http.ResponseWriter, r *http.Request) {
	participantID, ok := auth.CurrentParticipant(r)
	if !ok {
		h.Log.Error("retract-vote: no participant in context")
		httperr.Internal(w)
		return
	}
	boardID := chi.URLParam(r, "board_id")
	cardID := chi.URLParam(r, "card_id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	card, res := h.ledger().Retract(ctx, boardID, cardID, participantID)
	if res.Code != guard.Allow {
		guard.Render(w, h.Log, res)
		return
	}

	reactions, reacted, err := reactionstore.New(h.DB).Summary(ctx, cardID, participantID)
	if err != nil {
		h.Log.Error("retract-vote: reaction summary failed", zap.String("card_id", cardID), zap.Error(err))
		httperr.Internal(w)
		return
	}
	card.Reactions = reactions
	card.Reacted = reacted

	httperr.JSON(w, http.StatusOK, card)
}

// HandleListBoardCards handles GET /boards/{board_id}/cards: every card
// on the board across all ranks, with the same aggregates as the
// per-rank listing.
func (h *Handler) HandleListBoardCards(w http.ResponseWriter, r *http.Request) {
	participantID, _ := auth.CurrentParticipant(r)
	boardID := chi.URLParam(r, "board_id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	rankIDs, err := rankstore.New(h.DB).IDsByBoard(ctx, boardID)
	if err != nil {
		h.Log.Error("list-board-cards: rank lookup failed", zap.String("board_id", boardID), zap.Error(err))
		httperr.Internal(w)
		return
	}

	list, err := cardstore.New(h.DB).ListByRanks(ctx, rankIDs, participantID)
	if err != nil {
		h.Log.Error("list-board-cards: card lookup failed", zap.String("board_id", boardID), zap.Error(err))
		httperr.Internal(w)
		return
	}

	httperr.JSON(w, http.StatusOK, list)
}

type reactRequest struct {
	Emoji string `json:"emoji"`
}

// HandlePutReaction handles PUT .../cards/{card_id}/react. A
// participant holds one reaction per card; a new emoji replaces the old.
func (h *Handler) HandlePutReaction(w http.ResponseWriter, r *http.Request) {
	participantID, ok := auth.CurrentParticipant(r)
	if !ok {
		h.Log.Error("put-reaction: no participant in context")
		httperr.Internal(w)
		return
	}
	cardID := chi.URLParam(r, "card_id")

	var req reactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.BadRequest(w, "Invalid request body")
		return
	}
	emoji := inputclean.Text(req.Emoji)
	if emoji == "" {
		httperr.BadRequest(w, "An emoji is required.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := reactionstore.New(h.DB).Set(ctx, participantID, cardID, emoji); err != nil {
		h.Log.Error("put-reaction: set failed", zap.String("card_id", cardID), zap.Error(err))
		httperr.Internal(w)
		return
	}

	h.respondWithCard(ctx, w, cardID, participantID, "put-reaction")
}

// HandleDeleteReaction handles DELETE .../cards/{card_id}/react.
// Clearing a reaction that was never set is a harmless no-op.
func (h *Handler) HandleDeleteReaction(w http.ResponseWriter, r *http.Request) {
	participantID, ok := auth.CurrentParticipant(r)
	if !ok {
		h.Log.Error("delete-reaction: no participant in context")
		httperr.Internal(w)
		return
	}
	cardID := chi.URLParam(r, "card_id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := reactionstore.New(h.DB).Clear(ctx, participantID, cardID); err != nil {
		h.Log.Error("delete-reaction: clear failed", zap.String("card_id", cardID), zap.Error(err))
		httperr.Internal(w)
		return
	}

	h.respondWithCard(ctx, w, cardID, participantID, "delete-reaction")
}

func (h *Handler) respondWithCard(ctx context.Context, w http.ResponseWriter, cardID, participantID, op string) {
	card, err := cardstore.New(h.DB).Get(ctx, cardID)
	if err != nil {
		h.Log.Error(op+": card lookup failed", zap.String("card_id", cardID), zap.Error(err))
		httperr.Internal(w)
		return
	}
	if card == nil {
		httperr.NotFound(w)
		return
	}
	if err := h.attachAggregates(ctx, card, participantID); err != nil {
		h.Log.Error(op+": aggregate failed", zap.String("card_id", cardID), zap.Error(err))
		httperr.Internal(w)
		return
	}
	httperr.JSON(w, http.StatusOK, card)
}
