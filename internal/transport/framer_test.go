package transport

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"appends newline", `{"type":"PLAY"}`, "{\"type\":\"PLAY\"}\n"},
		{"keeps single newline", "abc\n", "abc\n"},
		{"empty message", "", "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, string(Encode(tt.input)))
		})
	}
}

func TestFramer_Feed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		chunks  []string
		want    []string
		pending int
	}{
		{"single message", []string{"a\n"}, []string{"a"}, 0},
		{"many in one chunk", []string{"a\nb\nc\n"}, []string{"a", "b", "c"}, 0},
		{"partial kept", []string{"ab", "c\nd"}, []string{"abc"}, 1},
		{"empty messages dropped", []string{"\n\na\n\n"}, []string{"a"}, 0},
		{"no delimiter yet", []string{"abc"}, nil, 3},
		{"delimiter split across chunks", []string{"abc", "\n", "def\n"}, []string{"abc", "def"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var f Framer
			var got []string
			for _, c := range tt.chunks {
				got = append(got, f.Feed([]byte(c))...)
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.pending, f.Pending())
		})
	}
}

func TestFramer_Reset(t *testing.T) {
	t.Parallel()

	var f Framer
	f.Feed([]byte("partial"))
	f.Reset()
	assert.Zero(t, f.Pending())
	assert.Equal(t, []string{"next"}, f.Feed([]byte("next\n")))
}

func TestFramer_RoundTripAnyChunking(t *testing.T) {
	t.Parallel()

	messages := []string{
		`{"type":"WELCOME","player_id":"P1"}`,
		`{"type":"DEAL","hand":["AS","10H","KC"],"total_tricks":13}`,
		"x",
		strings.Repeat("long", 3000),
		`{"type":"GAME_OVER","winner":"HUMAN"}`,
	}
	var stream []byte
	for _, m := range messages {
		stream = append(stream, Encode(m)...)
	}

	// 每个偏移处切一刀
	for cut := 0; cut <= len(stream); cut += 97 {
		var f Framer
		got := f.Feed(stream[:cut])
		got = append(got, f.Feed(stream[cut:])...)
		require.Equal(t, messages, got, "cut at %d", cut)
	}

	// 随机分片
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 50; round++ {
		var f Framer
		var got []string
		for rest := stream; len(rest) > 0; {
			n := 1 + rng.Intn(64)
			if n > len(rest) {
				n = len(rest)
			}
			got = append(got, f.Feed(rest[:n])...)
			rest = rest[n:]
		}
		require.Equal(t, messages, got, "round %d", round)
		assert.Zero(t, f.Pending())
	}
}

func TestFramer_ByteByByte(t *testing.T) {
	t.Parallel()

	var f Framer
	var got []string
	for _, b := range []byte("one\ntwo\n") {
		got = append(got, f.Feed([]byte{b})...)
	}
	assert.Equal(t, []string{"one", "two"}, got)
}
