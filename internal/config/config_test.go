package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
server:
  host: "game.example.com"
  port: 9000
  transport: ws
  ws_path: /play
  dial_timeout: 3

heartbeat:
  enabled: false
  port: 9100
  interval_ms: 250

player:
  nickname: alice
  auth: secret-token

log:
  dir: /tmp/cardarena
  debug: true

metrics:
  addr: ":9091"

telemetry:
  redis_addr: "redis:6379"
  password: "pw"
  db: 2
  channel: "arena:stats"
  interval: 10

sound:
  enabled: true
  dir: /opt/sounds
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "game.example.com", cfg.Server.Host)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, TransportWebSocket, cfg.Server.Transport)
	assert.Equal(t, "/play", cfg.Server.WSPath)
	assert.Equal(t, 3*time.Second, cfg.Server.DialTimeoutDuration())

	assert.False(t, cfg.Heartbeat.IsEnabled())
	assert.Equal(t, 9100, cfg.Heartbeat.ResolvePort(cfg.Server.Port))
	assert.Equal(t, 250*time.Millisecond, cfg.Heartbeat.IntervalDuration())

	assert.Equal(t, "alice", cfg.Player.Nickname)
	assert.Equal(t, "secret-token", cfg.Player.Auth)
	assert.Equal(t, "/tmp/cardarena", cfg.Log.Dir)
	assert.True(t, cfg.Log.Debug)
	assert.Equal(t, ":9091", cfg.Metrics.Addr)

	assert.Equal(t, "redis:6379", cfg.Telemetry.RedisAddr)
	assert.Equal(t, "pw", cfg.Telemetry.Password)
	assert.Equal(t, 2, cfg.Telemetry.DB)
	assert.Equal(t, "arena:stats", cfg.Telemetry.Channel)
	assert.Equal(t, 10*time.Second, cfg.Telemetry.IntervalDuration())

	assert.True(t, cfg.Sound.Enabled)
	assert.Equal(t, "/opt/sounds", cfg.Sound.Dir)
}

func TestLoad_FileNotFound(t *testing.T) {
	t.Parallel()

	cfg, err := Load("/nonexistent/path/config.yaml")
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_InvalidYAML(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, "invalid: yaml: :::"))
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{"port out of range", "server:\n  port: 70000\n"},
		{"unknown transport", "server:\n  transport: quic\n"},
		{"heartbeat port overflow", "server:\n  port: 65535\n"},
		{"negative interval", "heartbeat:\n  interval_ms: -5\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func TestLoad_AppliesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, `{}`))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NotNil(t, cfg)

	assert.Equal(t, defaultHost, cfg.Server.Host)
	assert.Equal(t, defaultPort, cfg.Server.Port)
	assert.Equal(t, TransportTCP, cfg.Server.Transport)
	assert.Equal(t, 10*time.Second, cfg.Server.DialTimeoutDuration())
	assert.True(t, cfg.Heartbeat.IsEnabled())
	assert.Equal(t, defaultPort+1, cfg.Heartbeat.ResolvePort(cfg.Server.Port))
	assert.Equal(t, time.Second, cfg.Heartbeat.IntervalDuration())
	assert.Equal(t, defaultNickname, cfg.Player.Nickname)
	assert.Empty(t, cfg.Metrics.Addr)
	assert.Empty(t, cfg.Telemetry.RedisAddr)
	assert.Equal(t, 5*time.Second, cfg.Telemetry.IntervalDuration())
	assert.NoError(t, cfg.Validate())
}

func TestLoadOrDefault(t *testing.T) {
	t.Parallel()

	cfg, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = LoadOrDefault(writeConfig(t, "server:\n  port: 7000\n"))
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)

	_, err = LoadOrDefault(writeConfig(t, "invalid: yaml: :::"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		"CARDARENA_HOST":                  "env-host",
		"CARDARENA_PORT":                  "9999",
		"CARDARENA_TRANSPORT":             "ws",
		"CARDARENA_NICKNAME":              "bob",
		"CARDARENA_HEARTBEAT":             "false",
		"CARDARENA_HEARTBEAT_INTERVAL_MS": "500",
		"CARDARENA_REDIS_ADDR":            "env-redis:6380",
		"CARDARENA_REDIS_DB":              "3",
		"CARDARENA_DEBUG":                 "true",
		"CARDARENA_METRICS_ADDR":          "",
	}
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}

	cfg := Default()
	cfg.Metrics.Addr = ":9090"
	require.NoError(t, cfg.applyEnv(lookup))

	assert.Equal(t, "env-host", cfg.Server.Host)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, TransportWebSocket, cfg.Server.Transport)
	assert.Equal(t, "bob", cfg.Player.Nickname)
	assert.False(t, cfg.Heartbeat.IsEnabled())
	assert.Equal(t, 500*time.Millisecond, cfg.Heartbeat.IntervalDuration())
	assert.Equal(t, "env-redis:6380", cfg.Telemetry.RedisAddr)
	assert.Equal(t, 3, cfg.Telemetry.DB)
	assert.True(t, cfg.Log.Debug)
	assert.Equal(t, ":9090", cfg.Metrics.Addr, "empty values do not override")
}

func TestApplyEnv_InvalidValues(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"CARDARENA_PORT":      "not-a-port",
		"CARDARENA_DEBUG":     "maybe",
		"CARDARENA_HEARTBEAT": "sometimes",
		"CARDARENA_TRANSPORT": "carrier-pigeon",
	}

	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			err := cfg.applyEnv(func(k string) (string, bool) {
				if k == key {
					return value, true
				}
				return "", false
			})
			assert.Error(t, err)
		})
	}
}

func TestApplyEnv_ProcessEnvironment(t *testing.T) {
	// 修改进程环境变量，不能并行
	t.Setenv("CARDARENA_HOST", "from-env")
	t.Setenv("CARDARENA_HEARTBEAT_PORT", "12345")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv())
	assert.Equal(t, "from-env", cfg.Server.Host)
	assert.Equal(t, 12345, cfg.Heartbeat.ResolvePort(cfg.Server.Port))
}

func TestLoadDotEnv(t *testing.T) {
	// 修改进程环境变量，不能并行
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("CARDARENA_NICKNAME=dotenv-player\nCARDARENA_SOUND=true\n"), 0o600))

	// 已存在的变量不被 .env 覆盖
	t.Setenv("CARDARENA_SOUND", "false")
	t.Setenv("CARDARENA_NICKNAME", "")
	require.NoError(t, os.Unsetenv("CARDARENA_NICKNAME"))

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "missing.env")))
	t.Cleanup(func() { _ = os.Unsetenv("CARDARENA_NICKNAME") })

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv())
	assert.Equal(t, "dotenv-player", cfg.Player.Nickname)
	assert.False(t, cfg.Sound.Enabled)

	assert.NoError(t, LoadDotEnv(filepath.Join(dir, "nothing-here.env")))
}
