package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// WatchLocation is one coordinate the scheduled monitor sweeps.
type WatchLocation struct {
	Name string
	Lat  float64
	Lon  float64
}

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Prediction cache.
	CacheTTL time.Duration

	// Scheduled monitor.
	MonitorEnabled   bool
	MonitorInterval  time.Duration
	MonitorLocations []WatchLocation
	PromoteThreshold float64
	RetentionDays    int

	// Notification dispatch worker pool.
	DispatchWorkers   int
	DispatchQueueSize int

	// SMTP email transport. Empty host disables real delivery.
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	AlertEmailTo string
	AlertPhone   string

	// Kafka alert event publishing.
	KafkaEnabled     bool
	KafkaBrokers     []string
	KafkaAlertsTopic string

	// Zone/subscriber store.
	ZoneDBPath string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDurationEnv("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	cacheTTL, err := parseDurationEnv("CACHE_TTL", 15*time.Minute)
	if err != nil {
		return nil, err
	}

	monitorInterval, err := parseDurationEnv("MONITOR_INTERVAL", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	locations, err := parseWatchLocations(envOrDefault("MONITOR_LOCATIONS", ""))
	if err != nil {
		return nil, err
	}

	promoteThreshold, err := parseFloatEnv("PROMOTE_THRESHOLD", 0.7)
	if err != nil {
		return nil, err
	}

	retentionDays, err := parseIntEnv("RETENTION_DAYS", 30)
	if err != nil {
		return nil, err
	}

	dispatchWorkers, err := parseIntEnv("DISPATCH_WORKERS", 4)
	if err != nil {
		return nil, err
	}

	dispatchQueueSize, err := parseIntEnv("DISPATCH_QUEUE_SIZE", 64)
	if err != nil {
		return nil, err
	}

	smtpPort, err := parseIntEnv("SMTP_PORT", 587)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		CacheTTL: cacheTTL,

		MonitorEnabled:   parseBoolEnv("MONITOR_ENABLED", true),
		MonitorInterval:  monitorInterval,
		MonitorLocations: locations,
		PromoteThreshold: promoteThreshold,
		RetentionDays:    retentionDays,

		DispatchWorkers:   dispatchWorkers,
		DispatchQueueSize: dispatchQueueSize,

		SMTPHost:     envOrDefault("SMTP_HOST", ""),
		SMTPPort:     smtpPort,
		SMTPUsername: envOrDefault("SMTP_USERNAME", ""),
		SMTPPassword: envOrDefault("SMTP_PASSWORD", ""),
		SMTPFrom:     envOrDefault("SMTP_FROM", "alerts@hazard-engine.local"),
		AlertEmailTo: envOrDefault("ALERT_EMAIL_TO", ""),
		AlertPhone:   envOrDefault("ALERT_PHONE", ""),

		KafkaEnabled:     parseBoolEnv("KAFKA_ENABLED", false),
		KafkaBrokers:     parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaAlertsTopic: envOrDefault("KAFKA_ALERTS_TOPIC", "hazard-alerts"),

		ZoneDBPath: envOrDefault("ZONE_DB_PATH", "hazard-zones.db"),
	}

	if cfg.PromoteThreshold <= 0 || cfg.PromoteThreshold > 1 {
		return nil, errors.New("PROMOTE_THRESHOLD must be in (0, 1]")
	}
	if cfg.RetentionDays <= 0 {
		return nil, errors.New("RETENTION_DAYS must be positive")
	}
	if cfg.DispatchWorkers <= 0 {
		return nil, errors.New("DISPATCH_WORKERS must be positive")
	}
	if cfg.DispatchQueueSize <= 0 {
		return nil, errors.New("DISPATCH_QUEUE_SIZE must be positive")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.SMTPHost != "" && cfg.SMTPFrom == "" {
		return nil, errors.New("SMTP_HOST is set but SMTP_FROM is empty")
	}

	return cfg, nil
}

// parseWatchLocations parses "lat,lon,name;lat,lon,name" into watch locations.
// An empty value means the monitor sweeps zone centroids only.
func parseWatchLocations(raw string) ([]WatchLocation, error) {
	if raw == "" {
		return nil, nil
	}
	var locations []WatchLocation
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, ",", 3)
		if len(parts) < 2 {
			return nil, fmt.Errorf("invalid MONITOR_LOCATIONS entry %q", entry)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid latitude in MONITOR_LOCATIONS entry %q", entry)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid longitude in MONITOR_LOCATIONS entry %q", entry)
		}
		loc := WatchLocation{Lat: lat, Lon: lon}
		if len(parts) == 3 {
			loc.Name = strings.TrimSpace(parts[2])
		}
		locations = append(locations, loc)
	}
	return locations, nil
}
