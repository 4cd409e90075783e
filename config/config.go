package config

import (
	"encoding/base64"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"Grinders-Attendance-Backend/pkg/geofence"
)

type AppConfig struct {
	Port          string
	MONGOSTRING   string
	PASETO_SECRET string
	Geofence      geofence.Config
}

// LoadConfig loads configuration from .env file
func LoadConfig() *AppConfig {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Warning: Error loading .env file (might not exist in production): %v", err)
	}

	// Dev fallback only; always set PASETO_SECRET in a real deployment.
	secretBase64 := getEnv("PASETO_SECRET", "ZGVmYXVsdC1kZXYtb25seS1wYXNldG8ta2V5LTMyYnk=")

	secretBytes, err := base64.URLEncoding.DecodeString(secretBase64)
	if err != nil {
		log.Fatalf("PASETO_SECRET in .env is not a valid Base64 URL-encoded string: %v", err)
	}

	if len(secretBytes) != 32 {
		log.Fatalf("PASETO_SECRET (decoded) must be exactly 32 bytes long. Current length: %d", len(secretBytes))
	}

	// One physical site per deployment; defaults are the cafe itself.
	gf := geofence.Config{
		Origin: geofence.Coordinate{
			Lat: getEnvFloat("SITE_LAT", 33.3103442309685),
			Lng: getEnvFloat("SITE_LNG", 44.32422900516875),
		},
		MaxDistanceM: getEnvFloat("MAX_DISTANCE_M", 100),
		MaxAccuracyM: getEnvFloat("MAX_ACCURACY_M", 50),
	}
	if gf.MaxDistanceM <= 0 || gf.MaxAccuracyM <= 0 {
		log.Fatalf("MAX_DISTANCE_M and MAX_ACCURACY_M must be > 0 (got %v / %v)", gf.MaxDistanceM, gf.MaxAccuracyM)
	}

	return &AppConfig{
		Port:          getEnv("PORT", "3000"),
		MONGOSTRING:   getEnv("MONGOSTRING", ""),
		PASETO_SECRET: secretBase64,
		Geofence:      gf,
	}
}

// Helper function to get environment variable or fallback to default
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Fatalf("%s must be a number, got %q", key, value)
	}
	return f
}
