package main

import (
	"context"
	"flag"

	"github.com/lintang-b-s/Corridorx/pkg/clients/nominatim"
	"github.com/lintang-b-s/Corridorx/pkg/clients/osrm"
	"github.com/lintang-b-s/Corridorx/pkg/corridor"
	"github.com/lintang-b-s/Corridorx/pkg/geo"
	"github.com/lintang-b-s/Corridorx/pkg/http"
	"github.com/lintang-b-s/Corridorx/pkg/http/usecases"
	"github.com/lintang-b-s/Corridorx/pkg/logger"
	"github.com/lintang-b-s/Corridorx/pkg/metrics"
	"github.com/lintang-b-s/Corridorx/pkg/stations"
	"github.com/lintang-b-s/Corridorx/pkg/util"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	nethttp "net/http"
)

var (
	stationsFile = flag.String("stations", "", "service stations geojson (.json or .json.bz2), overrides STATIONS_FILE")
)

func main() {
	flag.Parse()
	logger, err := logger.New()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := util.ReadConfig(); err != nil {
		logger.Fatal("failed to read config", zap.Error(err))
	}
	if *stationsFile != "" {
		viper.Set("STATIONS_FILE", *stationsFile)
	}

	store, err := stations.NewStoreFromFile(viper.GetString("STATIONS_FILE"), logger)
	if err != nil {
		logger.Fatal("failed to load service stations", zap.Error(err))
	}
	metrics.StationsLoaded.Set(float64(store.Len()))

	upstreamClient := &nethttp.Client{Timeout: viper.GetDuration("UPSTREAM_TIMEOUT")}
	userAgent := viper.GetString("USER_AGENT")

	routingClient := osrm.NewClient(viper.GetString("OSRM_BASE_URL"),
		osrm.WithHTTPClient(upstreamClient), osrm.WithUserAgent(userAgent))
	geocodingClient := nominatim.NewClient(viper.GetString("NOMINATIM_BASE_URL"),
		nominatim.WithHTTPClient(upstreamClient), nominatim.WithUserAgent(userAgent),
		nominatim.WithRateLimit(viper.GetFloat64("NOMINATIM_RPS")))

	filterOpts := []corridor.Option{corridor.WithWorkers(viper.GetInt("CORRIDOR_WORKERS"))}
	if viper.GetBool("CORRIDOR_EXACT_PROJECTION") {
		filterOpts = append(filterOpts, corridor.WithProjector(geo.PointToSegmentDistanceExact))
	}

	stationService := usecases.NewStationService(logger, store, routingClient, geocodingClient,
		corridor.NewFilterer(filterOpts...), viper.GetBool("CORRIDOR_PREFILTER"),
		viper.GetFloat64("MAX_DISTANCE_MILES"))

	ctx, cleanup, err := NewContext()
	if err != nil {
		panic(err)
	}

	api := http.NewServer(logger)
	api.Use(ctx, logger, viper.GetBool("USE_RATE_LIMIT"), stationService)

	select {
	case signal := <-http.GracefulShutdown():
		logger.Info("Corridorx Server Stopping", zap.String("signal", signal.String()))
	case <-api.Done():
	}

	cleanup()
	if err := api.Wait(); err != nil {
		logger.Error("Corridorx Server Stopped with error", zap.Error(err))
		return
	}
	logger.Info("Corridorx Server Stopped")
}

func NewContext() (context.Context, func(), error) {
	ctx, cancel := context.WithCancel(context.Background())
	cb := func() {
		cancel()
	}

	return ctx, cb, nil
}
