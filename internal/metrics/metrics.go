package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/palemoky/cardarena/internal/client"
	"github.com/palemoky/cardarena/internal/heartbeat"
)

// LinkSource 心跳统计来源
type LinkSource interface {
	Snapshot() heartbeat.Snapshot
}

// ConnState 消息通道连接状态
type ConnState interface {
	IsConnected() bool
}

// Config 指标配置
type Config struct {
	// Namespace 指标前缀（默认 "cardarena"）
	Namespace string

	// ConstLabels 所有指标共有的标签，例如 client_id
	ConstLabels prometheus.Labels

	// Registry 注册位置（默认 prometheus.DefaultRegisterer）
	Registry prometheus.Registerer
}

// Option 配置项
type Option func(*Config)

// WithNamespace 设置指标前缀
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithConstLabels 设置公共标签
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithRegistry 设置注册位置
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "cardarena",
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics 客户端指标。链路质量和连接状态在采集时直接读取原子量，
// 会话事件通过 Observe 计数。
type Metrics struct {
	notices    *prometheus.CounterVec
	moves      *prometheus.CounterVec
	sendErrors prometheus.Counter
}

// New 注册全部指标。link、conn 为 nil 时跳过对应指标。
func New(link LinkSource, conn ConnState, opts ...Option) *Metrics {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	if link != nil {
		factory.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Name:        "heartbeat_rtt_seconds",
			Help:        "Last measured heartbeat round-trip time",
			ConstLabels: config.ConstLabels,
		}, func() float64 { return link.Snapshot().LastRTT.Seconds() })

		factory.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Name:        "heartbeat_smoothed_rtt_seconds",
			Help:        "Exponentially smoothed heartbeat round-trip time",
			ConstLabels: config.ConstLabels,
		}, func() float64 { return link.Snapshot().SmoothedRTT.Seconds() })

		factory.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Name:        "heartbeat_loss_ratio",
			Help:        "Heartbeat loss rate (1 - received/sent)",
			ConstLabels: config.ConstLabels,
		}, func() float64 { return link.Snapshot().LossRate })

		factory.NewCounterFunc(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "heartbeat_probes_sent_total",
			Help:        "Total heartbeat probes emitted",
			ConstLabels: config.ConstLabels,
		}, func() float64 { return float64(link.Snapshot().Sent) })

		factory.NewCounterFunc(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "heartbeat_probes_received_total",
			Help:        "Total heartbeat echoes received",
			ConstLabels: config.ConstLabels,
		}, func() float64 { return float64(link.Snapshot().Received) })
	}

	if conn != nil {
		factory.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Name:        "connected",
			Help:        "1 while the message channel is connected",
			ConstLabels: config.ConstLabels,
		}, func() float64 {
			if conn.IsConnected() {
				return 1
			}
			return 0
		})
	}

	return &Metrics{
		notices: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "session_events_total",
			Help:        "Session notices by kind",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		moves: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "moves_total",
			Help:        "Move submissions by result",
			ConstLabels: config.ConstLabels,
		}, []string{"result"}),

		sendErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "move_send_errors_total",
			Help:        "Accepted moves that failed to reach the server",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// Observe 会话通知计数，可直接作为 client.Observer 使用
func (m *Metrics) Observe(n client.Notice) {
	m.notices.WithLabelValues(string(n.Kind)).Inc()
	if n.Kind != client.NoticeMove {
		return
	}
	m.moves.WithLabelValues(n.Move.String()).Inc()
	if n.Err != nil {
		m.sendErrors.Inc()
	}
}
