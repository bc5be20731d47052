package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the resolved runtime configuration for the assurance service.
// It merges file defaults and environment overrides to support both local and deployed runs.
type Config struct {
	ServiceID string

	HTTPPort int
	GRPCPort int

	DatabaseURL string
	RedisURL    string

	KafkaBrokers      []string
	KafkaDefaultTopic string

	JWTPublicKeyPEM   string
	AllowEphemeralJWT bool

	// PseudonymSalt feeds IP/user-agent pseudonymization. It has no default:
	// a missing salt would silently produce unsalted lookup tables.
	PseudonymSalt string

	ArtifactTypes   []string
	VerifyPageSize  int
	ChainMaxRetries int
	JobLockTTL      time.Duration

	CaseServiceURL    string
	StorageServiceURL string
	ServiceToken      string
	HeldCaseIDs       []string

	RetentionScanInterval time.Duration
	RetentionTenants      []string

	MaxDBConns         int32
	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxClaimTTL     time.Duration
	OutboxMaxRetries   int
}

// configFile mirrors the YAML schema used by configs/default.yaml.
// It is intentionally separate from Config so runtime-only fields stay internal.
type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		HTTPPort int    `yaml:"http_port"`
		GRPCPort int    `yaml:"grpc_port"`
	} `yaml:"service"`
	Dependencies struct {
		PostgresURL       string   `yaml:"postgres_url"`
		RedisURL          string   `yaml:"redis_url"`
		KafkaBrokers      []string `yaml:"kafka_brokers"`
		CaseServiceURL    string   `yaml:"case_service_url"`
		StorageServiceURL string   `yaml:"storage_service_url"`
	} `yaml:"dependencies"`
	Assurance struct {
		ArtifactTypes    []string `yaml:"artifact_types"`
		RetentionTenants []string `yaml:"retention_tenants"`
	} `yaml:"assurance"`
}

// LoadConfig resolves configuration in priority order: defaults -> file -> env.
// This order keeps local bootstrap simple while allowing environment-specific overrides.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:             "Assurance-Service",
		HTTPPort:              8086,
		GRPCPort:              9096,
		KafkaDefaultTopic:     "assurance.events",
		AllowEphemeralJWT:     true,
		VerifyPageSize:        500,
		ChainMaxRetries:       5,
		JobLockTTL:            15 * time.Minute,
		RetentionScanInterval: time.Hour,
		MaxDBConns:            20,
		OutboxPollInterval:    2 * time.Second,
		OutboxBatchSize:       100,
		OutboxClaimTTL:        30 * time.Second,
		OutboxMaxRetries:      5,
	}

	raw, err := os.ReadFile(path)
	if err == nil {
		var f configFile
		if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
			return Config{}, fmt.Errorf("parse config file: %w", unmarshalErr)
		}
		if f.Service.ID != "" {
			cfg.ServiceID = f.Service.ID
		}
		if f.Service.HTTPPort > 0 {
			cfg.HTTPPort = f.Service.HTTPPort
		}
		if f.Service.GRPCPort > 0 {
			cfg.GRPCPort = f.Service.GRPCPort
		}
		if f.Dependencies.PostgresURL != "" {
			cfg.DatabaseURL = f.Dependencies.PostgresURL
		}
		if f.Dependencies.RedisURL != "" {
			cfg.RedisURL = f.Dependencies.RedisURL
		}
		if len(f.Dependencies.KafkaBrokers) > 0 {
			cfg.KafkaBrokers = f.Dependencies.KafkaBrokers
		}
		if f.Dependencies.CaseServiceURL != "" {
			cfg.CaseServiceURL = f.Dependencies.CaseServiceURL
		}
		if f.Dependencies.StorageServiceURL != "" {
			cfg.StorageServiceURL = f.Dependencies.StorageServiceURL
		}
		if len(f.Assurance.ArtifactTypes) > 0 {
			cfg.ArtifactTypes = f.Assurance.ArtifactTypes
		}
		if len(f.Assurance.RetentionTenants) > 0 {
			cfg.RetentionTenants = f.Assurance.RetentionTenants
		}
	}

	cfg.DatabaseURL = envOrDefault("DB_URL", envOrDefault("POSTGRES_URL", cfg.DatabaseURL))
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.KafkaBrokers = envCSV("KAFKA_BROKERS", cfg.KafkaBrokers)
	cfg.KafkaDefaultTopic = envOrDefault("KAFKA_DEFAULT_TOPIC", cfg.KafkaDefaultTopic)
	cfg.JWTPublicKeyPEM = envOrDefault("JWT_PUBLIC_KEY_PEM", cfg.JWTPublicKeyPEM)
	cfg.AllowEphemeralJWT = envBool("JWT_ALLOW_EPHEMERAL", cfg.AllowEphemeralJWT)
	cfg.PseudonymSalt = envOrDefault("PSEUDONYM_SALT", cfg.PseudonymSalt)
	cfg.CaseServiceURL = envOrDefault("CASE_SERVICE_URL", cfg.CaseServiceURL)
	cfg.StorageServiceURL = envOrDefault("STORAGE_SERVICE_URL", cfg.StorageServiceURL)
	cfg.ServiceToken = envOrDefault("PLATFORM_SERVICE_TOKEN", cfg.ServiceToken)
	cfg.HeldCaseIDs = envCSV("HELD_CASE_IDS", cfg.HeldCaseIDs)
	cfg.ArtifactTypes = envCSV("ARTIFACT_TYPES", cfg.ArtifactTypes)
	cfg.RetentionTenants = envCSV("RETENTION_TENANTS", cfg.RetentionTenants)

	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.GRPCPort = envInt("GRPC_PORT", cfg.GRPCPort)
	cfg.VerifyPageSize = envInt("VERIFY_PAGE_SIZE", cfg.VerifyPageSize)
	cfg.ChainMaxRetries = envInt("CHAIN_MAX_RETRIES", cfg.ChainMaxRetries)
	cfg.MaxDBConns = int32(envInt("DB_MAX_CONNS", int(cfg.MaxDBConns)))

	cfg.JobLockTTL = time.Duration(envInt("JOB_LOCK_TTL_MINUTES", int(cfg.JobLockTTL.Minutes()))) * time.Minute
	cfg.RetentionScanInterval = time.Duration(envInt("RETENTION_SCAN_INTERVAL_SECONDS", int(cfg.RetentionScanInterval.Seconds()))) * time.Second
	cfg.OutboxPollInterval = time.Duration(envInt("OUTBOX_POLL_SECONDS", int(cfg.OutboxPollInterval.Seconds()))) * time.Second
	cfg.OutboxBatchSize = envInt("OUTBOX_BATCH_SIZE", cfg.OutboxBatchSize)
	cfg.OutboxClaimTTL = time.Duration(envInt("OUTBOX_CLAIM_TTL_SECONDS", int(cfg.OutboxClaimTTL.Seconds()))) * time.Second
	cfg.OutboxMaxRetries = envInt("OUTBOX_MAX_RETRIES", cfg.OutboxMaxRetries)

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("missing DB_URL/POSTGRES_URL")
	}
	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("missing REDIS_URL")
	}
	if cfg.PseudonymSalt == "" {
		return Config{}, fmt.Errorf("missing PSEUDONYM_SALT")
	}
	if cfg.JWTPublicKeyPEM == "" && !cfg.AllowEphemeralJWT {
		return Config{}, fmt.Errorf("missing JWT_PUBLIC_KEY_PEM")
	}

	return cfg, nil
}

// envOrDefault returns an env var when present, otherwise the provided fallback.
func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

// envInt parses integer env vars with safe fallback on empty/invalid values.
func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// envBool parses common boolean env forms while keeping a deterministic fallback.
func envBool(name string, fallback bool) bool {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return fallback
	}
}

// envCSV parses comma-separated env vars and removes empty segments.
func envCSV(name string, fallback []string) []string {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	parts := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		parts = append(parts, trimmed)
	}
	if len(parts) == 0 {
		return fallback
	}
	return parts
}
