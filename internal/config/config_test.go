package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 15*time.Minute, cfg.CacheTTL)
	assert.True(t, cfg.MonitorEnabled)
	assert.Equal(t, 5*time.Minute, cfg.MonitorInterval)
	assert.Empty(t, cfg.MonitorLocations)
	assert.Equal(t, 0.7, cfg.PromoteThreshold)
	assert.Equal(t, 30, cfg.RetentionDays)
	assert.Equal(t, 4, cfg.DispatchWorkers)
	assert.Equal(t, 64, cfg.DispatchQueueSize)
	assert.Empty(t, cfg.SMTPHost)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Equal(t, "alerts@hazard-engine.local", cfg.SMTPFrom)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "hazard-alerts", cfg.KafkaAlertsTopic)
	assert.Equal(t, "hazard-zones.db", cfg.ZoneDBPath)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("CACHE_TTL", "5m")
	t.Setenv("MONITOR_ENABLED", "false")
	t.Setenv("MONITOR_INTERVAL", "1m")
	t.Setenv("MONITOR_LOCATIONS", "19.0760,72.8777,Mumbai; 28.7041,77.1025,Delhi")
	t.Setenv("PROMOTE_THRESHOLD", "0.5")
	t.Setenv("RETENTION_DAYS", "7")
	t.Setenv("DISPATCH_WORKERS", "8")
	t.Setenv("DISPATCH_QUEUE_SIZE", "128")
	t.Setenv("SMTP_HOST", "smtp.example.org")
	t.Setenv("SMTP_PORT", "465")
	t.Setenv("SMTP_FROM", "noc@example.org")
	t.Setenv("ALERT_EMAIL_TO", "on-call@example.org")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_ALERTS_TOPIC", "custom-alerts")
	t.Setenv("ZONE_DB_PATH", "/var/lib/hazard/zones.db")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.False(t, cfg.MonitorEnabled)
	assert.Equal(t, 1*time.Minute, cfg.MonitorInterval)
	require.Len(t, cfg.MonitorLocations, 2)
	assert.Equal(t, WatchLocation{Name: "Mumbai", Lat: 19.0760, Lon: 72.8777}, cfg.MonitorLocations[0])
	assert.Equal(t, "Delhi", cfg.MonitorLocations[1].Name)
	assert.Equal(t, 0.5, cfg.PromoteThreshold)
	assert.Equal(t, 7, cfg.RetentionDays)
	assert.Equal(t, 8, cfg.DispatchWorkers)
	assert.Equal(t, 128, cfg.DispatchQueueSize)
	assert.Equal(t, "smtp.example.org", cfg.SMTPHost)
	assert.Equal(t, 465, cfg.SMTPPort)
	assert.Equal(t, "noc@example.org", cfg.SMTPFrom)
	assert.Equal(t, "on-call@example.org", cfg.AlertEmailTo)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-alerts", cfg.KafkaAlertsTopic)
	assert.Equal(t, "/var/lib/hazard/zones.db", cfg.ZoneDBPath)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_NegativeCacheTTL(t *testing.T) {
	t.Setenv("CACHE_TTL", "-1m")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CACHE_TTL")
}

func TestLoad_PromoteThresholdOutOfRange(t *testing.T) {
	for _, bad := range []string{"0", "1.5", "-0.2"} {
		t.Setenv("PROMOTE_THRESHOLD", bad)
		_, err := Load()
		require.Error(t, err, "threshold %s", bad)
		assert.Contains(t, err.Error(), "PROMOTE_THRESHOLD")
	}
}

func TestLoad_InvalidWatchLocations(t *testing.T) {
	tests := []struct{ name, value string }{
		{"missing longitude", "19.0760"},
		{"garbage latitude", "abc,72.8"},
		{"garbage longitude", "19.0,xyz"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("MONITOR_LOCATIONS", tc.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "MONITOR_LOCATIONS")
		})
	}
}

func TestLoad_ZeroDispatchWorkers(t *testing.T) {
	t.Setenv("DISPATCH_WORKERS", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DISPATCH_WORKERS")
}

func TestLoad_KafkaEnabledWithoutBrokers(t *testing.T) {
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", " , ")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_BROKERS")
}

func TestLoad_NamelessWatchLocation(t *testing.T) {
	t.Setenv("MONITOR_LOCATIONS", "12.97,77.59")
	cfg, err := Load()
	require.NoError(t, err)
	require.Len(t, cfg.MonitorLocations, 1)
	assert.Empty(t, cfg.MonitorLocations[0].Name)
	assert.Equal(t, 12.97, cfg.MonitorLocations[0].Lat)
}
