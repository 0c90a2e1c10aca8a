package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/zBotta/crop-planner/internal/domain"
)

// Config holds application configuration.
type Config struct {
	LogLevel     string
	Solver       string
	ScenarioFile string
	Planning     Planning
}

// Load reads configuration from environment variables. When a scenario file
// is configured, it replaces the built-in planning instance.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		Solver:       getEnv("CROP_SOLVER", "simplex"),
		ScenarioFile: getEnv("CROP_SCENARIO_FILE", ""),
		Planning:     DefaultPlanning(),
	}

	if cfg.ScenarioFile != "" {
		planning, err := LoadPlanningFile(cfg.ScenarioFile)
		if err != nil {
			return nil, fmt.Errorf("loading scenario file %s: %w", cfg.ScenarioFile, err)
		}
		cfg.Planning = planning
	}

	cfg.Planning.TotalAcres = getEnvAsFloat("TOTAL_ACRES", cfg.Planning.TotalAcres)
	cfg.Planning.MinProfit = getEnvAsFloat("MIN_PROFIT", cfg.Planning.MinProfit)

	if err := cfg.Planning.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// DefaultPlanning returns the built-in two-crop, wet/dry planning instance.
func DefaultPlanning() Planning {
	return Planning{
		TotalAcres: 100.0,
		MinProfit:  50000.0,
		FixedCost: map[domain.Crop]float64{
			domain.CropA: 150.0,
			domain.CropB: 100.0,
		},
		Scenarios: []domain.Scenario{
			{
				Name: domain.Wet,
				Crops: map[domain.Crop]domain.CropParams{
					domain.CropA: {PreSoldPrice: 3.90, SpotPrice: 2.50, Penalty: 1.50, VarCost: 50.0, Yield: 800.0},
					domain.CropB: {PreSoldPrice: 3.90, SpotPrice: 5.00, Penalty: 1.45, VarCost: 150.0, Yield: 150.0},
				},
			},
			{
				Name: domain.Dry,
				Crops: map[domain.Crop]domain.CropParams{
					domain.CropA: {PreSoldPrice: 3.90, SpotPrice: 4.50, Penalty: 1.50, VarCost: 200.0, Yield: 300.0},
					domain.CropB: {PreSoldPrice: 3.90, SpotPrice: 3.00, Penalty: 1.45, VarCost: 40.0, Yield: 600.0},
				},
			},
		},
	}
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
