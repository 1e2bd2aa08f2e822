// internal/app/system/guard/middleware.go
package guard

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/d0x2f/retro.tools-backend/internal/app/system/auth"
	"github.com/d0x2f/retro.tools-backend/internal/app/system/httperr"
)

// Require wraps a route with an ordered guard chain. The session
// middleware must already have resolved the participant; the chain
// receives the resolved id, never the cookies themselves.
//
// Results map onto status codes 1:1: NotFound→404, Unauthorized→401,
// Forbidden→403, Internal→500 (cause logged, generic body).
func Require(logger *zap.Logger, checks ...Check) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			participantID, ok := auth.CurrentParticipant(r)
			if !ok {
				// The session middleware is missing from the route
				// stack; that is a wiring bug, not a caller error.
				logger.Error("guard chain ran without a resolved participant",
					zap.String("path", r.URL.Path))
				httperr.Internal(w)
				return
			}

			p := Params{
				BoardID: chi.URLParam(r, "board_id"),
				RankID:  chi.URLParam(r, "rank_id"),
				CardID:  chi.URLParam(r, "card_id"),
			}

			res := Evaluate(r.Context(), participantID, p, checks...)
			if res.Code == Allow {
				next.ServeHTTP(w, r)
				return
			}
			Render(w, logger, res)
		})
	}
}

// Render writes the HTTP response for a non-Allow result.
func Render(w http.ResponseWriter, logger *zap.Logger, res Result) {
	switch res.Code {
	case NotFound:
		httperr.NotFound(w)
	case Unauthorized:
		httperr.Unauthorized(w)
	case Forbidden:
		httperr.Forbidden(w)
	default:
		logger.Error("guard check failed", zap.Error(res.Err))
		httperr.Internal(w)
	}
}
