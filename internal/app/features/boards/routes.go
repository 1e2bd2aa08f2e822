// internal/app/features/boards/routes.go
package boards

import (
	"github.com/go-chi/chi/v5"

	boardstore "github.com/d0x2f/retro.tools-backend/internal/app/store/boards"
	membershipstore "github.com/d0x2f/retro.tools-backend/internal/app/store/memberships"
	"github.com/d0x2f/retro.tools-backend/internal/app/system/auth"
	"github.com/d0x2f/retro.tools-backend/internal/app/system/guard"
)

// Routes returns the /boards subtree. rankRoutes is mounted under
// /{board_id}/ranks and boardCardRoutes under /{board_id}/cards so the
// nested handlers see the captured board id.
func Routes(h *Handler, sm *auth.SessionManager, rankRoutes, boardCardRoutes chi.Router) chi.Router {
	r := chi.NewRouter()

	bs := boardstore.New(h.DB)
	ms := membershipstore.New(h.DB)
	participant := guard.BoardParticipant{Boards: bs, Memberships: ms}
	owner := guard.BoardOwner{Boards: bs, Memberships: ms}

	// Everything under /boards resolves the caller to a participant,
	// creating one on first contact.
	r.Group(func(pr chi.Router) {
		pr.Use(sm.Resolve)

		pr.Post("/", h.HandleCreateBoard)
		pr.Get("/", h.HandleListBoards)

		// The board id must be captured by the parent router before the
		// guard middleware runs, hence the nested Route.
		pr.Route("/{board_id}", func(br chi.Router) {
			br.Group(func(g chi.Router) {
				g.Use(guard.Require(h.Log, participant))
				g.Get("/", h.HandleGetBoard)
				g.Get("/csv", h.HandleExportCSV)
			})

			br.Group(func(g chi.Router) {
				g.Use(guard.Require(h.Log, owner))
				g.Patch("/", h.HandleUpdateBoard)
				g.Delete("/", h.HandleDeleteBoard)
			})

			br.Mount("/ranks", rankRoutes)
			br.Mount("/cards", boardCardRoutes)
		})
	})

	return r
}
