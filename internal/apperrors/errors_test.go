package apperrors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServerError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		code     string
		message  string
		expected string
	}{
		{"code and message", CodeRoomFull, "full!", "ROOM_FULL: full!"},
		{"code only uses table", CodeRoomFull, "", "ROOM_FULL: 房间已满"},
		{"unknown code only", "WHAT", "", "WHAT"},
		{"message only", "", "oops", "oops"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, FromServer(tt.code, tt.message).Error())
		})
	}
}

func TestSentinelWrapping(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("%w 127.0.0.1:1: %w", ErrConnectFailed, fmt.Errorf("refused"))
	assert.ErrorIs(t, err, ErrConnectFailed)
	assert.NotErrorIs(t, err, ErrNotConnected)
}

func TestDescribeReject(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "手牌中没有这张牌", DescribeReject(ReasonNotInHand))
	assert.Equal(t, "出牌被拒绝", DescribeReject(""))
	assert.Equal(t, "SOMETHING", DescribeReject("SOMETHING"))
}
