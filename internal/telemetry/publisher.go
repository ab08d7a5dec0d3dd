package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/palemoky/cardarena/internal/heartbeat"
	"github.com/palemoky/cardarena/internal/logger"
)

const (
	// Redis key 前缀，后接 client_id
	sampleKeyPrefix = "cardarena:netstats:"

	// 最近一次样本的保留时间
	sampleExpiration = 30 * time.Second
)

// ErrNoSample 该客户端没有未过期的样本
var ErrNoSample = errors.New("telemetry: no sample")

// LinkSource 心跳统计来源
type LinkSource interface {
	Snapshot() heartbeat.Snapshot
}

// ConnState 消息通道连接状态
type ConnState interface {
	IsConnected() bool
}

// Sample 一次链路质量样本（JSON 序列化后发布）
type Sample struct {
	ClientID  string  `json:"client_id"`
	RTTMillis int64   `json:"rtt_ms"`
	AvgMillis float64 `json:"avg_rtt_ms"`
	LossRate  float64 `json:"loss_rate"`
	Sent      uint64  `json:"sent"`
	Received  uint64  `json:"received"`
	Connected bool    `json:"connected"`
	Timestamp int64   `json:"ts"`
}

// Publisher 周期性地把链路质量发布到 Redis 频道，并以 client_id 为 key 保存最近一次样本
type Publisher struct {
	client   *redis.Client
	clientID string
	channel  string
	link     LinkSource
	conn     ConnState
	now      func() time.Time
}

// NewPublisher 创建发布器，conn 可以为 nil
func NewPublisher(client *redis.Client, clientID, channel string, link LinkSource, conn ConnState) *Publisher {
	return &Publisher{
		client:   client,
		clientID: clientID,
		channel:  channel,
		link:     link,
		conn:     conn,
		now:      time.Now,
	}
}

// SampleKey 保存最近样本的 key
func SampleKey(clientID string) string {
	return sampleKeyPrefix + clientID
}

// Sample 采集当前样本
func (p *Publisher) Sample() Sample {
	snap := p.link.Snapshot()
	return Sample{
		ClientID:  p.clientID,
		RTTMillis: snap.LastRTT.Milliseconds(),
		AvgMillis: float64(snap.SmoothedRTT) / float64(time.Millisecond),
		LossRate:  snap.LossRate,
		Sent:      snap.Sent,
		Received:  snap.Received,
		Connected: p.conn != nil && p.conn.IsConnected(),
		Timestamp: p.now().UnixMilli(),
	}
}

// Publish 发布一次样本
func (p *Publisher) Publish(ctx context.Context) error {
	data, err := json.Marshal(p.Sample())
	if err != nil {
		return fmt.Errorf("序列化样本失败: %w", err)
	}

	_, err = p.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Publish(ctx, p.channel, data)
		pipe.Set(ctx, SampleKey(p.clientID), data, sampleExpiration)
		return nil
	})
	if err != nil {
		return fmt.Errorf("发布样本失败: %w", err)
	}
	return nil
}

// Run 每隔 interval 发布一次，直到 ctx 结束。发布失败只记录日志。
func (p *Publisher) Run(ctx context.Context, interval time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.Publish(ctx); err != nil && ctx.Err() == nil {
				logger.LogError("telemetry: %v", err)
			}
		}
	}
}

// LoadSample 读取某客户端最近一次样本
func LoadSample(ctx context.Context, client *redis.Client, clientID string) (*Sample, error) {
	data, err := client.Get(ctx, SampleKey(clientID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSample
	}
	if err != nil {
		return nil, err
	}

	var s Sample
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("反序列化样本失败: %w", err)
	}
	return &s, nil
}
