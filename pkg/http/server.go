package http

import (
	"context"
	"errors"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"

	http_router "github.com/lintang-b-s/Corridorx/pkg/http/router"
	"github.com/lintang-b-s/Corridorx/pkg/http/router/controllers"
	http_server "github.com/lintang-b-s/Corridorx/pkg/http/server"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Server struct {
	Log  *zap.Logger
	g    *errgroup.Group
	done chan struct{}
}

func NewServer(log *zap.Logger) *Server {
	return &Server{
		Log:  log,
		g:    &errgroup.Group{},
		done: make(chan struct{}),
	}
}

// Use. start the api in the background. it stops when ctx is cancelled.
func (s *Server) Use(
	ctx context.Context,
	log *zap.Logger,

	useRateLimit bool,
	stationService controllers.StationService,
) (*Server, error) {
	config := http_server.Config{
		Port:    viper.GetInt("API_PORT"),
		Timeout: viper.GetDuration("API_TIMEOUT"),
	}

	limit := http_router.RateLimitConfig{
		Enabled: useRateLimit,
		RPS:     viper.GetFloat64("RATE_LIMIT_RPS"),
		Burst:   viper.GetInt("RATE_LIMIT_BURST"),
	}

	api := http_router.NewAPI(log)

	s.g.Go(func() error {
		defer close(s.done)
		err := api.Run(ctx, config, limit, stationService)
		if errors.Is(err, context.Canceled) || errors.Is(err, nethttp.ErrServerClosed) {
			return nil
		}
		return err
	})

	return s, nil
}

// Done. closed once the api stopped, after a shutdown or a listen error
func (s *Server) Done() <-chan struct{} {
	return s.done
}

func (s *Server) Wait() error {
	return s.g.Wait()
}

// GracefulShutdown. receives SIGINT or SIGTERM
func GracefulShutdown() chan os.Signal {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	return quit
}
