package heartbeat

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLossRate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		sent     uint64
		received uint64
		want     float64
		ok       bool
	}{
		{"nothing sent", 0, 0, 0, false},
		{"all answered", 4, 4, 0, true},
		{"none answered", 5, 0, 1, true},
		{"quarter lost", 4, 3, 0.25, true},
		{"in flight", 10, 9, 1 - 9.0/10.0, true},
		{"duplicated echoes", 2, 4, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := LossRate(tt.sent, tt.received)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStats_DuplicateEchoesKeepLossNonNegative(t *testing.T) {
	t.Parallel()

	var s Stats
	s.updateLoss(s.nextSeq())
	s.updateLoss(s.nextSeq())
	for i := 0; i < 4; i++ {
		s.recordRTT(5)
	}
	s.updateLoss(s.Sent())

	assert.Equal(t, uint64(4), s.Received())
	assert.Equal(t, 0.0, s.LossRate())
}

func TestStats_ZeroValue(t *testing.T) {
	t.Parallel()

	var s Stats
	assert.Equal(t, Snapshot{}, s.Snapshot())
}

func TestStats_LossFollowsEmittedSequence(t *testing.T) {
	t.Parallel()

	var s Stats
	for i := 0; i < 4; i++ {
		s.updateLoss(s.nextSeq())
	}
	assert.Equal(t, uint64(4), s.Sent())
	assert.Equal(t, 1.0, s.LossRate())

	s.recordRTT(10)
	s.recordRTT(12)
	s.recordRTT(14)
	// 丢包率只在发送时重新计算
	assert.Equal(t, 1.0, s.LossRate())

	s.updateLoss(s.nextSeq())
	assert.Equal(t, 1-3.0/5.0, s.LossRate())
	assert.Equal(t, uint64(3), s.Received())
}

func TestStats_LastRTTIsNotSmoothed(t *testing.T) {
	t.Parallel()

	var s Stats
	s.recordRTT(100)
	assert.Equal(t, 100*time.Millisecond, s.LastRTT())
	assert.Equal(t, 100*time.Millisecond, s.SmoothedRTT())

	s.recordRTT(200)
	assert.Equal(t, 200*time.Millisecond, s.LastRTT())
	// 0.7*100 + 0.3*200
	assert.InDelta(t, float64(130*time.Millisecond), float64(s.SmoothedRTT()), float64(time.Microsecond))
}

func TestStats_ZeroRTTKeepsSmoothingInitialized(t *testing.T) {
	t.Parallel()

	var s Stats
	s.recordRTT(0)
	s.recordRTT(100)
	assert.InDelta(t, float64(30*time.Millisecond), float64(s.SmoothedRTT()), float64(time.Microsecond))
}

func TestStats_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	var s Stats
	const n = 500

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			s.updateLoss(s.nextSeq())
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			s.recordRTT(int64(i % 50))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			snap := s.Snapshot()
			assert.LessOrEqual(t, snap.LossRate, 1.0)
			assert.GreaterOrEqual(t, snap.LastRTT, time.Duration(0))
		}
	}()
	wg.Wait()

	require.Equal(t, uint64(n), s.Sent())
	require.Equal(t, uint64(n), s.Received())
}
