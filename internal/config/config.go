package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

type Config struct {
	Port     string `mapstructure:"PORT"`
	DBUrl    string `mapstructure:"DB_URL"`
	RedisUrl string `mapstructure:"REDIS_URL"`

	// VisitFile is the fallback visited-cells file used when no Redis URL
	// is configured.
	VisitFile string `mapstructure:"VISIT_FILE"`

	// GridSize is the per-region raster resolution (GridSize x GridSize).
	GridSize int `mapstructure:"GRID_SIZE"`

	// VisitRadiusM is the default proximity radius for location updates.
	VisitRadiusM float64 `mapstructure:"VISIT_RADIUS_M"`
}

func LoadConfig() (c Config, err error) {
	// Get environment type from ENV variable or use development as default
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Set default values
	viper.SetDefault("PORT", ":8080")
	viper.SetDefault("VISIT_FILE", "visited_cells.json")
	viper.SetDefault("GRID_SIZE", 40)
	viper.SetDefault("VISIT_RADIUS_M", 100.0)

	// Load environment file
	viper.SetConfigName(fmt.Sprintf(".env.%s", env))
	viper.SetConfigType("env")
	viper.AddConfigPath(".") // Look in the project root directory

	// Environment variables take precedence over config file
	viper.AutomaticEnv()

	// Try to read config file
	if err := viper.ReadInConfig(); err != nil {
		// Continue even if file is not found
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return c, err
		}
	}

	// Map the values to the Config struct
	err = viper.Unmarshal(&c)
	return
}
