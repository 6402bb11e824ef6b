package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"compensaciones-losa/internal/model"
)

// Config holds the server settings and the per-run defaults applied when
// the upload form leaves a field out.
type Config struct {
	ListenAddr string
	DBPath     string
	OutputDir  string

	// Defaults for fields the upload form may omit.
	DefaultPaymentStatus model.PaymentStatus
	DefaultDropZero      bool
	DefaultVariant       model.Variant
	MaxUploadBytes       int64
}

// New loads configuration from the environment, reading a .env file first
// when one exists.
func New() (*Config, error) {
	// Missing .env is fine; real env vars still apply.
	_ = godotenv.Load()

	cfg := &Config{
		ListenAddr:           getEnv("LISTEN_ADDR", ":8080"),
		DBPath:               getEnv("DB_PATH", "compensaciones.db"),
		OutputDir:            getEnv("OUTPUT_DIR", "outputs"),
		DefaultPaymentStatus: model.Paid,
		DefaultDropZero:      false,
		DefaultVariant:       model.VariantStandard,
		MaxUploadBytes:       32 << 20,
	}

	status, err := model.ParsePaymentStatus(getEnv("DEFAULT_PAYMENT_STATUS", string(model.Paid)))
	if err != nil {
		return nil, fmt.Errorf("DEFAULT_PAYMENT_STATUS: %w", err)
	}
	cfg.DefaultPaymentStatus = status

	variant, err := model.ParseVariant(os.Getenv("DEFAULT_VARIANT"))
	if err != nil {
		return nil, fmt.Errorf("DEFAULT_VARIANT: %w", err)
	}
	cfg.DefaultVariant = variant

	cfg.DefaultDropZero, err = getEnvAsBool("DEFAULT_DROP_ZERO", cfg.DefaultDropZero)
	if err != nil {
		return nil, err
	}

	maxUpload, err := getEnvAsInt("MAX_UPLOAD_MB", 32)
	if err != nil {
		return nil, err
	}
	cfg.MaxUploadBytes = int64(maxUpload) << 20

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, valueStr)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) (bool, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean, got %q", key, valueStr)
	}
	return value, nil
}
