package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// 传输方式
const (
	TransportTCP       = "tcp"
	TransportWebSocket = "ws"
)

// EnvPrefix 环境变量前缀
const EnvPrefix = "CARDARENA_"

// 默认值
const (
	defaultHost              = "127.0.0.1"
	defaultPort              = 8888
	defaultWSPath            = "/ws"
	defaultDialTimeout       = 10
	defaultHeartbeatOffset   = 1
	defaultHeartbeatInterval = 1000
	defaultNickname          = "Player"
	defaultTelemetryChannel  = "cardarena:netstats"
	defaultTelemetryInterval = 5
)

// Config 客户端配置
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Heartbeat HeartbeatConfig `yaml:"heartbeat"`
	Player    PlayerConfig    `yaml:"player"`
	Log       LogConfig       `yaml:"log"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Sound     SoundConfig     `yaml:"sound"`
}

// ServerConfig 游戏服务器地址
type ServerConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	Transport   string `yaml:"transport"`    // tcp | ws
	WSPath      string `yaml:"ws_path"`      // transport 为 ws 时的路径
	DialTimeout int    `yaml:"dial_timeout"` // 秒
}

// HeartbeatConfig UDP 心跳
type HeartbeatConfig struct {
	Enabled    *bool `yaml:"enabled"`
	Port       int   `yaml:"port"`        // 显式端口，0 表示使用 server.port + port_offset
	PortOffset int   `yaml:"port_offset"` // 默认 1
	IntervalMS int   `yaml:"interval_ms"`
}

// PlayerConfig 玩家信息
type PlayerConfig struct {
	Nickname string `yaml:"nickname"`
	Auth     string `yaml:"auth"`
}

// LogConfig 日志
type LogConfig struct {
	Dir   string `yaml:"dir"`
	Debug bool   `yaml:"debug"`
}

// MetricsConfig Prometheus 指标，addr 为空时不启动
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// TelemetryConfig 链路质量上报到 Redis，redis_addr 为空时不启动
type TelemetryConfig struct {
	RedisAddr string `yaml:"redis_addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	Channel   string `yaml:"channel"`
	Interval  int    `yaml:"interval"` // 秒
}

// SoundConfig 音效
type SoundConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

// DialTimeoutDuration 拨号超时
func (c *ServerConfig) DialTimeoutDuration() time.Duration {
	return time.Duration(c.DialTimeout) * time.Second
}

// IsEnabled 心跳是否开启（未配置时默认开启）
func (c *HeartbeatConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// IntervalDuration 探测间隔
func (c *HeartbeatConfig) IntervalDuration() time.Duration {
	return time.Duration(c.IntervalMS) * time.Millisecond
}

// ResolvePort 心跳端口：显式端口优先，否则为服务端口加偏移
func (c *HeartbeatConfig) ResolvePort(serverPort int) int {
	if c.Port > 0 {
		return c.Port
	}
	return serverPort + c.PortOffset
}

// IntervalDuration 上报间隔
func (c *TelemetryConfig) IntervalDuration() time.Duration {
	return time.Duration(c.Interval) * time.Second
}

// Load 加载配置文件
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault path 为空或文件不存在时使用默认配置
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Default 返回默认配置
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

// 设置默认值
func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = defaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaultPort
	}
	if c.Server.Transport == "" {
		c.Server.Transport = TransportTCP
	}
	if c.Server.WSPath == "" {
		c.Server.WSPath = defaultWSPath
	}
	if c.Server.DialTimeout == 0 {
		c.Server.DialTimeout = defaultDialTimeout
	}
	if c.Heartbeat.PortOffset == 0 {
		c.Heartbeat.PortOffset = defaultHeartbeatOffset
	}
	if c.Heartbeat.IntervalMS == 0 {
		c.Heartbeat.IntervalMS = defaultHeartbeatInterval
	}
	if c.Player.Nickname == "" {
		c.Player.Nickname = defaultNickname
	}
	if c.Telemetry.Channel == "" {
		c.Telemetry.Channel = defaultTelemetryChannel
	}
	if c.Telemetry.Interval == 0 {
		c.Telemetry.Interval = defaultTelemetryInterval
	}
}

// Validate 检查取值范围
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}
	switch c.Server.Transport {
	case TransportTCP, TransportWebSocket:
	default:
		return fmt.Errorf("invalid server.transport %q (want tcp or ws)", c.Server.Transport)
	}
	if hb := c.Heartbeat.ResolvePort(c.Server.Port); hb <= 0 || hb > 65535 {
		return fmt.Errorf("invalid heartbeat port %d", hb)
	}
	if c.Heartbeat.IntervalMS < 0 {
		return fmt.Errorf("invalid heartbeat.interval_ms %d", c.Heartbeat.IntervalMS)
	}
	return nil
}

// LoadDotEnv 读取 .env 到进程环境（已存在的变量不覆盖）。文件不存在不算错误。
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// ApplyEnv 用 CARDARENA_* 环境变量覆盖配置
func (c *Config) ApplyEnv() error {
	return c.applyEnv(os.LookupEnv)
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(EnvPrefix + key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s%s: %w", EnvPrefix, key, err)
		}
		*dst = n
		return nil
	}
	flag := func(key string, dst *bool) error {
		v, ok := lookup(EnvPrefix + key)
		if !ok || v == "" {
			return nil
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s%s: %w", EnvPrefix, key, err)
		}
		*dst = b
		return nil
	}

	str("HOST", &c.Server.Host)
	str("TRANSPORT", &c.Server.Transport)
	str("WS_PATH", &c.Server.WSPath)
	str("NICKNAME", &c.Player.Nickname)
	str("AUTH", &c.Player.Auth)
	str("LOG_DIR", &c.Log.Dir)
	str("METRICS_ADDR", &c.Metrics.Addr)
	str("REDIS_ADDR", &c.Telemetry.RedisAddr)
	str("REDIS_PASSWORD", &c.Telemetry.Password)
	str("SOUND_DIR", &c.Sound.Dir)

	if err := num("PORT", &c.Server.Port); err != nil {
		return err
	}
	if err := num("HEARTBEAT_PORT", &c.Heartbeat.Port); err != nil {
		return err
	}
	if err := num("HEARTBEAT_INTERVAL_MS", &c.Heartbeat.IntervalMS); err != nil {
		return err
	}
	if err := num("REDIS_DB", &c.Telemetry.DB); err != nil {
		return err
	}

	var hb bool
	if v, ok := lookup(EnvPrefix + "HEARTBEAT"); ok && v != "" {
		if err := flag("HEARTBEAT", &hb); err != nil {
			return err
		}
		c.Heartbeat.Enabled = &hb
	}
	if err := flag("DEBUG", &c.Log.Debug); err != nil {
		return err
	}
	if err := flag("SOUND", &c.Sound.Enabled); err != nil {
		return err
	}

	return c.Validate()
}
