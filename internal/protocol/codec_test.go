package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_Type(t *testing.T) {
	t.Parallel()

	msg, err := Decode(`{"type":"WELCOME","player_id":"P1","nickname":"Alice","room":"R001"}`)
	require.NoError(t, err)
	assert.Equal(t, MsgWelcome, msg.Type)

	w := msg.Welcome()
	assert.Equal(t, "P1", w.PlayerID)
	assert.Equal(t, "Alice", w.Nickname)
	assert.Equal(t, "R001", w.Room)
}

func TestDecode_Invalid(t *testing.T) {
	t.Parallel()

	tests := []string{
		"",
		"not json",
		`{"type":"DEAL"`,
		`["DEAL"]`,
	}
	for _, line := range tests {
		_, err := Decode(line)
		assert.Error(t, err, "line %q", line)
	}
}

func TestFields_QuotedAndUnquotedScalars(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		line      string
		wantInt   int64
		wantValue string
	}{
		{"unquoted number", `{"trick":3}`, 3, "3"},
		{"quoted number", `{"trick":"3"}`, 3, "3"},
		{"quoted with spaces", `{"trick":" 7 "}`, 7, " 7 "},
		{"fractional", `{"trick":2.5}`, 2, "2.5"},
		{"garbage string", `{"trick":"abc"}`, 0, "abc"},
		{"bool", `{"trick":true}`, 0, "true"},
		{"null", `{"trick":null}`, 0, ""},
		{"missing", `{}`, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			msg, err := Decode(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.wantInt, msg.Fields.Int("trick"))
			assert.Equal(t, tt.wantValue, msg.Fields.String("trick"))
		})
	}
}

func TestFields_Strings(t *testing.T) {
	t.Parallel()

	msg, err := Decode(`{"type":"DEAL","hand":["AS","10H",7,""],"total_tricks":"13"}`)
	require.NoError(t, err)

	deal := msg.Deal()
	assert.Equal(t, []string{"AS", "10H", "7"}, deal.Hand)
	assert.Equal(t, 13, deal.TotalTricks)

	assert.Nil(t, msg.Fields.Strings("missing"))
	assert.Nil(t, msg.Fields.Strings("total_tricks"), "scalar is not a list")
}

func TestFields_ZeroValue(t *testing.T) {
	t.Parallel()

	var f Fields
	assert.False(t, f.Has("x"))
	assert.Empty(t, f.String("x"))
	assert.Zero(t, f.Int("x"))
	assert.Nil(t, f.Strings("x"))
	assert.Zero(t, f.Len("x"))
	assert.False(t, f.Object("x").Has("y"))
}

func TestTrickResult_Scores(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		line      string
		wantHuman int
		wantAI    int
	}{
		{"flat", `{"type":"TRICK_RESULT","winner":"P2","human_score":2,"ai_score":"1"}`, 2, 1},
		{"nested", `{"type":"TRICK_RESULT","winner":"P2","score":{"HUMAN":4,"AI":5}}`, 4, 5},
		{"flat wins over nested", `{"human_score":1,"score":{"HUMAN":9,"AI":9}}`, 1, 0},
		{"missing", `{"type":"TRICK_RESULT"}`, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			msg, err := Decode(tt.line)
			require.NoError(t, err)
			res := msg.TrickResult()
			assert.Equal(t, tt.wantHuman, res.HumanScore)
			assert.Equal(t, tt.wantAI, res.AIScore)
		})
	}
}

func TestGameOver_FinalScore(t *testing.T) {
	t.Parallel()

	msg, err := Decode(`{"type":"GAME_OVER","winner":"HUMAN","final_score":{"HUMAN":7,"AI":6}}`)
	require.NoError(t, err)
	over := msg.GameOver()
	assert.Equal(t, "HUMAN", over.Winner)
	assert.Equal(t, 7, over.HumanScore)
	assert.Equal(t, 6, over.AIScore)
}

func TestRoomWait(t *testing.T) {
	t.Parallel()

	msg, err := Decode(`{"type":"ROOM_WAIT","room":"R1","players":[{"id":"P1"},{"id":"P2"}],"need":4}`)
	require.NoError(t, err)
	wait := msg.RoomWait()
	assert.Equal(t, "R1", wait.Room)
	assert.Equal(t, 2, wait.Players)
	assert.Equal(t, 4, wait.Need)
}

func TestNewHello(t *testing.T) {
	t.Parallel()

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(NewHello("Alice", "")), &got))
	assert.Equal(t, "HELLO", got["type"])
	assert.Equal(t, "HUMAN", got["role"])
	assert.Equal(t, "Alice", got["nickname"])
	assert.EqualValues(t, 1, got["proto"])
	assert.NotContains(t, got, "auth")

	require.NoError(t, json.Unmarshal([]byte(NewHello("Bob", "tok")), &got))
	assert.Equal(t, "tok", got["auth"])
}

func TestNewPlay(t *testing.T) {
	t.Parallel()
	assert.JSONEq(t, `{"type":"PLAY","card":"10H"}`, NewPlay("10H"))
}

func TestHeartbeatEcho(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		data   string
		ok     bool
		wantMS int64
	}{
		{"pong", `{"type":"HB_PONG","seq":3,"t_client_ms":1700000000123,"t_server_ms":1700000000130}`, true, 1700000000123},
		{"verbatim ping echo", string(NewHeartbeatPing(1, 1700000000999)), true, 1700000000999},
		{"quoted timestamp", `{"seq":1,"t_client_ms":"1700000000500"}` + "\n", true, 1700000000500},
		{"missing timestamp", `{"type":"HB_PONG","seq":3}`, false, 0},
		{"garbage", `\x00\x01`, false, 0},
		{"negative", `{"t_client_ms":-5}`, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			echo, ok := DecodeHeartbeatEcho([]byte(tt.data))
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.wantMS, echo.ClientMillis)
		})
	}
}
