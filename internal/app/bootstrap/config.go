package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the resolved runtime configuration for both the API and worker
// processes. It merges file defaults and environment overrides to support
// local and deployed runs.
type Config struct {
	ServiceID string

	HTTPPort       int
	GRPCPort       int
	WorkerHTTPPort int

	DatabaseURL string
	RedisURL    string

	KafkaBrokers    []string
	KafkaAuditTopic string

	ConsumerName      string
	InventoryGroup    string
	ProjectionGroup   string
	AuditGroup        string
	PollBlock         time.Duration
	ReclaimBatch      int
	ErrorBackoff      time.Duration
	UnroutablePolicy  string
	MaxDBConns        int32
	SeedDemoData      bool
	AllowDegradedMode bool
}

// configFile mirrors the YAML schema used by configs/default.yaml.
// It is intentionally separate from Config so runtime-only fields stay internal.
type configFile struct {
	Service struct {
		ID             string `yaml:"id"`
		HTTPPort       int    `yaml:"http_port"`
		GRPCPort       int    `yaml:"grpc_port"`
		WorkerHTTPPort int    `yaml:"worker_http_port"`
	} `yaml:"service"`
	Dependencies struct {
		PostgresURL     string   `yaml:"postgres_url"`
		RedisURL        string   `yaml:"redis_url"`
		KafkaBrokers    []string `yaml:"kafka_brokers"`
		KafkaAuditTopic string   `yaml:"kafka_audit_topic"`
	} `yaml:"dependencies"`
	Consumer struct {
		Name             string `yaml:"name"`
		InventoryGroup   string `yaml:"inventory_group"`
		ProjectionGroup  string `yaml:"projection_group"`
		AuditGroup       string `yaml:"audit_group"`
		PollBlockMS      int    `yaml:"poll_block_ms"`
		ReclaimBatch     int    `yaml:"reclaim_batch"`
		ErrorBackoffMS   int    `yaml:"error_backoff_ms"`
		UnroutablePolicy string `yaml:"unroutable_policy"`
	} `yaml:"consumer"`
	SeedDemoData bool `yaml:"seed_demo_data"`
}

// LoadConfig resolves configuration in priority order: defaults -> file -> env.
// This order keeps local bootstrap simple while allowing environment-specific overrides.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:         "claims-service",
		HTTPPort:          8080,
		GRPCPort:          9090,
		WorkerHTTPPort:    8081,
		KafkaAuditTopic:   "claimstream.audit",
		InventoryGroup:    "inventory-service",
		ProjectionGroup:   "claim-projections",
		AuditGroup:        "audit-forwarder",
		PollBlock:         time.Second,
		ReclaimBatch:      10,
		ErrorBackoff:      5 * time.Second,
		UnroutablePolicy:  "ack",
		MaxDBConns:        20,
		AllowDegradedMode: true,
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
		if f.Service.WorkerHTTPPort > 0 {
			cfg.WorkerHTTPPort = f.Service.WorkerHTTPPort
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
		if f.Dependencies.KafkaAuditTopic != "" {
			cfg.KafkaAuditTopic = f.Dependencies.KafkaAuditTopic
		}
		if f.Consumer.Name != "" {
			cfg.ConsumerName = f.Consumer.Name
		}
		if f.Consumer.InventoryGroup != "" {
			cfg.InventoryGroup = f.Consumer.InventoryGroup
		}
		if f.Consumer.ProjectionGroup != "" {
			cfg.ProjectionGroup = f.Consumer.ProjectionGroup
		}
		if f.Consumer.AuditGroup != "" {
			cfg.AuditGroup = f.Consumer.AuditGroup
		}
		if f.Consumer.PollBlockMS > 0 {
			cfg.PollBlock = time.Duration(f.Consumer.PollBlockMS) * time.Millisecond
		}
		if f.Consumer.ReclaimBatch > 0 {
			cfg.ReclaimBatch = f.Consumer.ReclaimBatch
		}
		if f.Consumer.ErrorBackoffMS > 0 {
			cfg.ErrorBackoff = time.Duration(f.Consumer.ErrorBackoffMS) * time.Millisecond
		}
		if f.Consumer.UnroutablePolicy != "" {
			cfg.UnroutablePolicy = f.Consumer.UnroutablePolicy
		}
		cfg.SeedDemoData = f.SeedDemoData
	}

	cfg.DatabaseURL = envOrDefault("DB_URL", envOrDefault("POSTGRES_URL", cfg.DatabaseURL))
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.KafkaBrokers = envCSV("KAFKA_BROKERS", cfg.KafkaBrokers)
	cfg.KafkaAuditTopic = envOrDefault("KAFKA_AUDIT_TOPIC", cfg.KafkaAuditTopic)
	cfg.ConsumerName = envOrDefault("CONSUMER_NAME", cfg.ConsumerName)
	cfg.UnroutablePolicy = strings.ToLower(strings.TrimSpace(envOrDefault("UNROUTABLE_POLICY", cfg.UnroutablePolicy)))

	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.GRPCPort = envInt("GRPC_PORT", cfg.GRPCPort)
	cfg.WorkerHTTPPort = envInt("WORKER_HTTP_PORT", cfg.WorkerHTTPPort)
	cfg.MaxDBConns = int32(envInt("DB_MAX_CONNS", int(cfg.MaxDBConns)))
	cfg.ReclaimBatch = envInt("RECLAIM_BATCH", cfg.ReclaimBatch)
	cfg.PollBlock = time.Duration(envInt("POLL_BLOCK_MS", int(cfg.PollBlock.Milliseconds()))) * time.Millisecond
	cfg.ErrorBackoff = time.Duration(envInt("ERROR_BACKOFF_MS", int(cfg.ErrorBackoff.Milliseconds()))) * time.Millisecond
	cfg.SeedDemoData = envBool("SEED_DEMO_DATA", cfg.SeedDemoData)
	cfg.AllowDegradedMode = envBool("ALLOW_DEGRADED_MODE", cfg.AllowDegradedMode)

	if cfg.ConsumerName == "" {
		host, hostErr := os.Hostname()
		if hostErr != nil || host == "" {
			host = "consumer"
		}
		cfg.ConsumerName = host
	}
	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("missing REDIS_URL")
	}
	if cfg.DatabaseURL == "" && !cfg.AllowDegradedMode {
		return Config{}, fmt.Errorf("missing DB_URL/POSTGRES_URL")
	}
	switch cfg.UnroutablePolicy {
	case "ack", "leave_pending":
	default:
		return Config{}, fmt.Errorf("invalid UNROUTABLE_POLICY %q", cfg.UnroutablePolicy)
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
