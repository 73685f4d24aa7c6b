package config

import (
	"fmt"
	"os"
	"strconv"
)

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// KafkaConfig holds Kafka connection parameters.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// Config holds all process configuration for the risk engine.
// Engine tables (weights, thresholds, policies, compliance profiles)
// live in the YAML document at EnginePolicyFile, not in the environment.
type Config struct {
	GRPCPort int
	HTTPPort int

	DB    DatabaseConfig
	Kafka KafkaConfig

	EnginePolicyFile string
	LogLevel         string
	Environment      string
	ServiceName      string
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	return Config{
		GRPCPort: getEnvInt("GRPC_PORT", 9095),
		HTTPPort: getEnvInt("HTTP_PORT", 8095),
		DB: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "veridian"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "veridian_risk"),
			SSLMode:  getEnv("DB_SSLMODE", "require"),
		},
		Kafka: KafkaConfig{
			Brokers: []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			Topic:   getEnv("KAFKA_TOPIC", "risk.events"),
		},
		EnginePolicyFile: getEnv("ENGINE_POLICY_FILE", "configs/engine.yaml"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		Environment:      getEnv("ENVIRONMENT", "development"),
		ServiceName:      "risk-engine",
	}
}

// Validate checks the settings that must be present before serving.
func (c Config) Validate() error {
	if c.DB.Password == "" {
		return fmt.Errorf("DB_PASSWORD environment variable is required")
	}
	if c.EnginePolicyFile == "" {
		return fmt.Errorf("ENGINE_POLICY_FILE must point to the engine policy document")
	}
	return nil
}

// GRPCAddr returns the gRPC listen address.
func (c Config) GRPCAddr() string {
	return fmt.Sprintf(":%d", c.GRPCPort)
}

// HTTPAddr returns the HTTP listen address.
func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
