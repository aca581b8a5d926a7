package router

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/justinas/alice"
	"github.com/lintang-b-s/Corridorx/pkg/http/router/controllers"
	router_helper "github.com/lintang-b-s/Corridorx/pkg/http/router/routerhelper"
	http_server "github.com/lintang-b-s/Corridorx/pkg/http/server"
	"github.com/lintang-b-s/Corridorx/pkg/metrics"
	"github.com/rs/cors"
	"go.uber.org/zap"

	httpSwagger "github.com/swaggo/http-swagger"
)

const shutdownTimeout = 10 * time.Second

type API struct {
	log *zap.Logger
	hub *controllers.Hub
}

func NewAPI(log *zap.Logger) *API {
	return &API{log: log}
}

type RateLimitConfig struct {
	Enabled bool
	RPS     float64
	Burst   int
}

//	@title			Corridorx API
//	@version		1.0
//	@description	Service stations along a driven route, on top of osrm routing and nominatim geocoding.

//	@license.name	BSD License
//	@license.url	https://opensource.org/license/bsd-2-clause

// @host		localhost:6060
// @BasePath	/api
func (api *API) Run(
	ctx context.Context,
	config http_server.Config,
	limit RateLimitConfig,
	stationService controllers.StationService,
) error {
	api.log.Info("Run httprouter API")

	handler := api.Handler(ctx, limit, stationService)
	srv := http_server.New(ctx, handler, config)
	api.log.Info(fmt.Sprintf("API run on port %d", config.Port))

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		api.log.Info("HTTP server stopped", zap.Error(err))
		api.hub.RemoveAllUser()
		return err

	case <-ctx.Done():
		api.log.Info("Context canceled, shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		// hijacked websocket connections are not tracked by http.Server
		api.hub.RemoveAllUser()
		return ctx.Err()
	}
}

// Handler. router with the full middleware chain. websocket sessions live until ctx is done.
func (api *API) Handler(ctx context.Context, limit RateLimitConfig,
	stationService controllers.StationService) http.Handler {
	router := httprouter.New()

	corsHandler := cors.New(cors.Options{ //nolint:gocritic // ignore
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, //nolint:mnd // ignore
	})

	router.GET("/doc/*any", swaggerHandler)
	router.Handler(http.MethodGet, "/metrics", metrics.Handler())

	api.hub = controllers.NewHub(stationService, api.log)
	router.GET("/ws", api.handleWebsocket(ctx))

	group := router_helper.NewRouteGroup(router, "/api")

	stationRoutes := controllers.New(stationService, api.log)
	stationRoutes.Routes(group)

	var mwChain []alice.Constructor
	mwChain = append(mwChain, corsHandler.Handler, EnforceJSONHandler, api.recoverPanic,
		RealIP, Heartbeat("healthz"), Logger(api.log), Metrics(router))
	if limit.Enabled {
		mwChain = append(mwChain, Limit(limit.RPS, limit.Burst))
	}

	return alice.New(mwChain...).Then(router)
}

func swaggerHandler(res http.ResponseWriter, req *http.Request, p httprouter.Params) {
	httpSwagger.WrapHandler(res, req)
}
