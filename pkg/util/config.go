package util

import (
	"errors"
	"fmt"
	"time"

	"github.com/lintang-b-s/Corridorx/pkg"
	"github.com/spf13/viper"
)

// ReadConfig. read ./data/config.yaml (if present) on top of the defaults. env vars override both.
func ReadConfig() error {
	SetConfigDefaults()
	viper.SetConfigName("config")
	viper.AddConfigPath("./data/")
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("fatal error config file: %w", err)
	}
	return nil
}

func SetConfigDefaults() {
	viper.SetDefault("API_PORT", 6060)
	viper.SetDefault("API_TIMEOUT", 30*time.Second)
	viper.SetDefault("HTTP_SERVER_READ_TIMEOUT", 10*time.Second)
	viper.SetDefault("HTTP_SERVER_WRITE_TIMEOUT", 10*time.Second)
	viper.SetDefault("HTTP_SERVER_IDLE_TIMEOUT", time.Minute)
	viper.SetDefault("HTTP_SERVER_READ_HEADER_TIMEOUT", 5*time.Second)

	viper.SetDefault("STATIONS_FILE", "./data/service-stations.json")
	viper.SetDefault("OSRM_BASE_URL", "https://router.project-osrm.org")
	viper.SetDefault("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org")
	viper.SetDefault("USER_AGENT", "Service Station Mapper")
	viper.SetDefault("UPSTREAM_TIMEOUT", 15*time.Second)
	// nominatim usage policy: at most one request per second
	viper.SetDefault("NOMINATIM_RPS", 1.0)

	viper.SetDefault("MAX_DISTANCE_MILES", pkg.DEFAULT_MAX_DISTANCE_MILES)
	viper.SetDefault("CORRIDOR_WORKERS", 0)
	viper.SetDefault("CORRIDOR_PREFILTER", true)
	viper.SetDefault("CORRIDOR_EXACT_PROJECTION", false)

	viper.SetDefault("USE_RATE_LIMIT", false)
	viper.SetDefault("RATE_LIMIT_RPS", 20.0)
	viper.SetDefault("RATE_LIMIT_BURST", 40)
}
