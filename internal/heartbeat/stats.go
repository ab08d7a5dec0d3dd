package heartbeat

import (
	"math"
	"sync/atomic"
	"time"
)

// 平滑 RTT 的权重：新值占 0.3
const smoothingFactor = 0.3

// Stats 链路质量统计。
// 每个字段独立原子读写，发送协程、接收协程和渲染方可以同时访问而互不阻塞。
type Stats struct {
	sent     atomic.Uint64 // 已发出的探测序号，从 0 开始
	received atomic.Uint64

	lastRTT     atomic.Int64  // 最近一次 RTT（毫秒），不做平滑
	smoothedRTT atomic.Uint64 // float64 bits，毫秒
	lossRate    atomic.Uint64 // float64 bits
}

// Snapshot 某一时刻的统计值（逐字段原子读取）
type Snapshot struct {
	Sent        uint64
	Received    uint64
	LastRTT     time.Duration
	SmoothedRTT time.Duration
	LossRate    float64
}

// LossRate 丢包率 1 - received/sent；sent 为 0 时不计算。
// 重复回显可能让 received 超过 sent，结果不低于 0。
func LossRate(sent, received uint64) (float64, bool) {
	if sent == 0 {
		return 0, false
	}
	if received >= sent {
		return 0, true
	}
	return 1 - float64(received)/float64(sent), true
}

// nextSeq 递增并返回新的探测序号
func (s *Stats) nextSeq() uint64 {
	return s.sent.Add(1)
}

// updateLoss 按发出时的序号重新计算丢包率。
// 分母包含刚发出、尚不可能收到回复的探测。
func (s *Stats) updateLoss(seq uint64) {
	if rate, ok := LossRate(seq, s.received.Load()); ok {
		s.lossRate.Store(math.Float64bits(rate))
	}
}

// recordRTT 记录一次回显
func (s *Stats) recordRTT(rttMillis int64) {
	s.lastRTT.Store(rttMillis)
	s.received.Add(1)

	sample := float64(rttMillis)
	for {
		old := s.smoothedRTT.Load()
		next := sample
		if old != 0 {
			prev := math.Float64frombits(old)
			next = (1-smoothingFactor)*prev + smoothingFactor*sample
		}
		if next == 0 {
			// 0 作为"未初始化"标记，保持非零
			next = math.SmallestNonzeroFloat64
		}
		if s.smoothedRTT.CompareAndSwap(old, math.Float64bits(next)) {
			return
		}
	}
}

// Sent 已发出的探测数
func (s *Stats) Sent() uint64 { return s.sent.Load() }

// Received 已收到的回显数
func (s *Stats) Received() uint64 { return s.received.Load() }

// LastRTT 最近一次 RTT
func (s *Stats) LastRTT() time.Duration {
	return time.Duration(s.lastRTT.Load()) * time.Millisecond
}

// SmoothedRTT 指数平滑后的 RTT
func (s *Stats) SmoothedRTT() time.Duration {
	bits := s.smoothedRTT.Load()
	if bits == 0 {
		return 0
	}
	return time.Duration(math.Float64frombits(bits) * float64(time.Millisecond))
}

// LossRate 最近一次计算的丢包率
func (s *Stats) LossRate() float64 {
	return math.Float64frombits(s.lossRate.Load())
}

// Snapshot 读取全部统计值
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Sent:        s.Sent(),
		Received:    s.Received(),
		LastRTT:     s.LastRTT(),
		SmoothedRTT: s.SmoothedRTT(),
		LossRate:    s.LossRate(),
	}
}
