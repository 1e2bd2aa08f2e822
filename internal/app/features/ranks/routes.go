// internal/app/features/ranks/routes.go
package ranks

import (
	"github.com/go-chi/chi/v5"

	boardstore "github.com/d0x2f/retro.tools-backend/internal/app/store/boards"
	membershipstore "github.com/d0x2f/retro.tools-backend/internal/app/store/memberships"
	rankstore "github.com/d0x2f/retro.tools-backend/internal/app/store/ranks"
	"github.com/d0x2f/retro.tools-backend/internal/app/system/guard"
)

// Routes returns the ranks subtree, meant to be mounted under
// /boards/{board_id}/ranks. cardRoutes is mounted under
// /{rank_id}/cards.
func Routes(h *Handler, cardRoutes chi.Router) chi.Router {
	r := chi.NewRouter()

	bs := boardstore.New(h.DB)
	ms := membershipstore.New(h.DB)
	participant := guard.BoardParticipant{Boards: bs, Memberships: ms}
	owner := guard.BoardOwner{Boards: bs, Memberships: ms}
	inBoard := guard.RankInBoard{Ranks: rankstore.New(h.DB)}

	r.Group(func(g chi.Router) {
		g.Use(guard.Require(h.Log, owner))
		g.Post("/", h.HandleCreateRank)
	})

	r.Group(func(g chi.Router) {
		g.Use(guard.Require(h.Log, participant))
		g.Get("/", h.HandleListRanks)
	})

	r.Route("/{rank_id}", func(rr chi.Router) {
		rr.Group(func(g chi.Router) {
			g.Use(guard.Require(h.Log, participant, inBoard))
			g.Get("/", h.HandleGetRank)
		})

		rr.Group(func(g chi.Router) {
			g.Use(guard.Require(h.Log, owner, inBoard))
			g.Patch("/", h.HandleUpdateRank)
			g.Delete("/", h.HandleDeleteRank)
		})

		rr.Mount("/cards", cardRoutes)
	})

	return r
}
