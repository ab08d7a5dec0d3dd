package heartbeat

import (
	"fmt"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/palemoky/cardarena/internal/apperrors"
	"github.com/palemoky/cardarena/internal/logger"
	"github.com/palemoky/cardarena/internal/protocol"
)

const (
	defaultInterval = time.Second
	// 接收出错（例如 ICMP 端口不可达）后的退避
	recvErrorBackoff = 100 * time.Millisecond
	maxDatagramSize  = 1024
)

// Monitor UDP 心跳探测：独立于消息通道估计 RTT 和丢包率
type Monitor struct {
	interval time.Duration
	now      func() time.Time

	stats Stats

	mu       sync.Mutex // 保护 conn / done 的建立与拆除
	conn     *net.UDPConn
	done     chan struct{}
	wg       sync.WaitGroup
	started  bool
	stopOnce sync.Once
	running  atomic.Bool
}

// Option 配置 Monitor
type Option func(*Monitor)

// WithInterval 设置探测间隔
func WithInterval(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithClock 替换时钟（测试用）
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) {
		m.now = now
	}
}

// NewMonitor 创建心跳监测
func NewMonitor(opts ...Option) *Monitor {
	m := &Monitor{
		interval: defaultInterval,
		now:      time.Now,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start 建立到 host:port 的 UDP 关联并启动发送、接收两个协程
func (m *Monitor) Start(host string, port int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return apperrors.ErrAlreadyStarted
	}

	addr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return fmt.Errorf("resolve heartbeat address: %w", err)
	}
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return fmt.Errorf("open heartbeat socket: %w", err)
	}

	m.conn = conn
	m.started = true
	m.running.Store(true)

	m.wg.Add(2)
	go m.sendLoop(conn)
	go m.recvLoop(conn)

	logger.LogInfo("heartbeat started: %s every %v", addr, m.interval)
	return nil
}

// Stop 停止两个协程并释放 socket，可重复调用
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() {
		m.mu.Lock()
		conn := m.conn
		// 停止后不能再次 Start
		m.started = true
		m.running.Store(false)
		close(m.done)
		m.mu.Unlock()

		if conn != nil {
			// 关闭 socket 让阻塞中的 Read 返回
			_ = conn.Close()
		}
		m.wg.Wait()
		logger.LogInfo("heartbeat stopped")
	})
}

// Running 是否在运行
func (m *Monitor) Running() bool {
	return m.running.Load()
}

// Stats 统计数据（只读使用）
func (m *Monitor) Stats() *Stats {
	return &m.stats
}

// LastRTT 最近一次 RTT
func (m *Monitor) LastRTT() time.Duration {
	return m.stats.LastRTT()
}

// LossRate 丢包率
func (m *Monitor) LossRate() float64 {
	return m.stats.LossRate()
}

// Snapshot 全部统计值
func (m *Monitor) Snapshot() Snapshot {
	return m.stats.Snapshot()
}

func (m *Monitor) sendLoop(conn *net.UDPConn) {
	defer m.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
		}
	}()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		m.probe(conn)

		select {
		case <-ticker.C:
		case <-m.done:
			return
		}
	}
}

// probe 发出一个探测。发送失败不上报，体现在丢包率里。
func (m *Monitor) probe(conn *net.UDPConn) {
	seq := m.stats.nextSeq()
	ping := protocol.NewHeartbeatPing(seq, m.now().UnixMilli())
	if _, err := conn.Write(ping); err != nil {
		logger.LogDebug("heartbeat send seq=%d: %v", seq, err)
	}
	m.stats.updateLoss(seq)
}

func (m *Monitor) recvLoop(conn *net.UDPConn) {
	defer m.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
		}
	}()

	buf := make([]byte, maxDatagramSize)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			if !m.running.Load() {
				return
			}
			select {
			case <-m.done:
				return
			case <-time.After(recvErrorBackoff):
			}
			continue
		}
		m.handleEcho(buf[:n])
	}
}

// handleEcho 解析回显并记录 RTT；无法解析的数据报直接丢弃
func (m *Monitor) handleEcho(datagram []byte) {
	echo, ok := protocol.DecodeHeartbeatEcho(datagram)
	if !ok {
		logger.LogDebug("heartbeat: discarded malformed datagram (%d bytes)", len(datagram))
		return
	}
	rtt := m.now().UnixMilli() - echo.ClientMillis
	if rtt < 0 {
		rtt = 0
	}
	m.stats.recordRTT(rtt)
}
