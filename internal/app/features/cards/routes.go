// internal/app/features/cards/routes.go
package cards

import (
	"github.com/go-chi/chi/v5"

	boardstore "github.com/d0x2f/retro.tools-backend/internal/app/store/boards"
	cardstore "github.com/d0x2f/retro.tools-backend/internal/app/store/cards"
	membershipstore "github.com/d0x2f/retro.tools-backend/internal/app/store/memberships"
	rankstore "github.com/d0x2f/retro.tools-backend/internal/app/store/ranks"
	"github.com/d0x2f/retro.tools-backend/internal/app/system/guard"
)

// Routes returns the cards subtree, meant to be mounted under
// /boards/{board_id}/ranks/{rank_id}/cards.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	bs := boardstore.New(h.DB)
	ms := membershipstore.New(h.DB)
	cs := cardstore.New(h.DB)
	participant := guard.BoardParticipant{Boards: bs, Memberships: ms}
	owner := guard.BoardOwner{Boards: bs, Memberships: ms}
	inBoard := guard.RankInBoard{Ranks: rankstore.New(h.DB)}
	inRank := guard.CardInRank{Cards: cs}
	author := guard.CardAuthor{Cards: cs}

	r.Group(func(g chi.Router) {
		g.Use(guard.Require(h.Log, participant, inBoard))
		g.Post("/", h.HandleCreateCard)
		g.Get("/", h.HandleListCards)
	})

	r.Route("/{card_id}", func(cr chi.Router) {
		cr.Group(func(g chi.Router) {
			g.Use(guard.Require(h.Log, participant, inBoard, inRank))
			g.Get("/", h.HandleGetCard)
		})

		// Moderation is the union: the board owner may touch any card,
		// the author may touch their own.
		cr.Group(func(g chi.Router) {
			g.Use(guard.Require(h.Log, inBoard, inRank, guard.Any(owner, author)))
			g.Patch("/", h.HandleUpdateCard)
			g.Delete("/", h.HandleDeleteCard)
		})

		cr.Group(func(g chi.Router) {
			g.Use(guard.Require(h.Log, inBoard, inRank))
			g.Post("/vote", h.HandleCastVote)
			g.Delete("/vote", h.HandleRetractVote)
			g.Put("/react", h.HandlePutReaction)
			g.Delete("/react", h.HandleDeleteReaction)
		})
	})

	return r
}

// BoardRoutes returns the board-wide cards subtree, meant to be mounted
// under /boards/{board_id}/cards.
func BoardRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()

	participant := guard.BoardParticipant{
		Boards:      boardstore.New(h.DB),
		Memberships: membershipstore.New(h.DB),
	}

	r.Group(func(g chi.Router) {
		g.Use(guard.Require(h.Log, participant))
		g.Get("/", h.HandleListBoardCards)
	})

	return r
}
