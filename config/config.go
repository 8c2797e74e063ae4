// Package config loads carprice settings from the environment.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Defaults.
const (
	DefaultInputPath     = "data/used_car_dataset.csv"
	DefaultOutputPath    = "data/processed_car_dataset.csv"
	DefaultModelPath     = "models/car_price_model.gob"
	DefaultLogLevel      = "info"
	DefaultBrandMinCount = 10
	DefaultCacheSize     = 4
)

// Config holds settings shared by the carprice commands.
type Config struct {
	InputPath     string
	OutputPath    string
	ModelPath     string
	LogLevel      string
	BrandMinCount int
	CacheSize     int
}

// Load reads .env from the working directory when present, then the
// process environment. Unset or unparseable values fall back to defaults.
func Load() *Config {
	// A missing .env is the normal case.
	_ = godotenv.Load()
	return FromEnv()
}

// LoadFile is like Load but reads the named env files.
func LoadFile(filenames ...string) (*Config, error) {
	if err := godotenv.Load(filenames...); err != nil {
		return nil, err
	}
	return FromEnv(), nil
}

// FromEnv builds a Config from the process environment only.
func FromEnv() *Config {
	return &Config{
		InputPath:     getEnv("CARPRICE_INPUT", DefaultInputPath),
		OutputPath:    getEnv("CARPRICE_OUTPUT", DefaultOutputPath),
		ModelPath:     getEnv("CARPRICE_MODEL_PATH", DefaultModelPath),
		LogLevel:      getEnv("CARPRICE_LOG_LEVEL", DefaultLogLevel),
		BrandMinCount: getEnvInt("CARPRICE_BRAND_MIN_COUNT", DefaultBrandMinCount),
		CacheSize:     getEnvInt("CARPRICE_CACHE_SIZE", DefaultCacheSize),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
