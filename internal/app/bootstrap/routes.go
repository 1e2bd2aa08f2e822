// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	boardsfeature "github.com/d0x2f/retro.tools-backend/internal/app/features/boards"
	cardsfeature "github.com/d0x2f/retro.tools-backend/internal/app/features/cards"
	healthfeature "github.com/d0x2f/retro.tools-backend/internal/app/features/health"
	ranksfeature "github.com/d0x2f/retro.tools-backend/internal/app/features/ranks"
	participantstore "github.com/d0x2f/retro.tools-backend/internal/app/store/participants"
	"github.com/d0x2f/retro.tools-backend/internal/app/system/auth"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed.
//
// The route tree nests boards → ranks → cards so that every handler and
// guard below /boards/{board_id} sees the captured path ids. Session
// resolution happens once at the /boards root; everything below it runs
// with a known participant.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(
		appCfg.SessionKey,
		appCfg.SessionName,
		appCfg.LegacySessionName,
		appCfg.SessionDomain,
		appCfg.SessionMaxAge,
		secure,
		participantstore.New(deps.MongoDatabase),
		logger,
	)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	r := chi.NewRouter()

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	cardsHandler := cardsfeature.NewHandler(deps.MongoDatabase, logger)
	ranksHandler := ranksfeature.NewHandler(deps.MongoDatabase, logger)
	boardsHandler := boardsfeature.NewHandler(deps.MongoDatabase, logger)

	cardRoutes := cardsfeature.Routes(cardsHandler)
	rankRoutes := ranksfeature.Routes(ranksHandler, cardRoutes)
	boardCardRoutes := cardsfeature.BoardRoutes(cardsHandler)
	r.Mount("/boards", boardsfeature.Routes(boardsHandler, sessionMgr, rankRoutes, boardCardRoutes))

	return r, nil
}
