package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the engine's runtime configuration, loaded from a .env file
// (when present) and the environment. Loading the .env first also makes
// MONGO_URI visible to db.ConnectMongo, which reads it directly.
type Config struct {
	MongoDatabase string

	MQTTBroker   string
	MQTTClientID string
	MQTTUsername string
	MQTTPassword string
	MQTTQoS      byte

	SweepInterval time.Duration
	LogLevel      string
	UseMemory     bool
}

// Load reads configuration from .env and the environment, falling back to
// defaults. A missing .env file is not an error.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		MongoDatabase: getEnv("MONGO_DATABASE", "property_maintenance"),

		MQTTBroker:   os.Getenv("MQTT_BROKER"),
		MQTTClientID: getEnv("MQTT_CLIENT_ID", "maintenance-engine"),
		MQTTUsername: os.Getenv("MQTT_USERNAME"),
		MQTTPassword: os.Getenv("MQTT_PASSWORD"),
		MQTTQoS:      byte(getEnvInt("MQTT_QOS", 1)),

		SweepInterval: getEnvDuration("SWEEP_INTERVAL", 15*time.Minute),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		UseMemory:     getEnvBool("USE_MEMORY_STORE", false),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return fallback
}
