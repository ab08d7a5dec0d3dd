package protocol

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// Decode 解析一行入站消息（不含换行符）
func Decode(line string) (*Message, error) {
	var s structpb.Struct
	if err := protojson.Unmarshal([]byte(line), &s); err != nil {
		return nil, fmt.Errorf("decode message: %w", err)
	}
	f := Fields{s: &s}
	return &Message{
		Type:   MessageType(f.String("type")),
		Fields: f,
		Raw:    line,
	}, nil
}

// --- 出站消息 ---

// HelloPayload 握手
type HelloPayload struct {
	Type     MessageType `json:"type"`
	Role     string      `json:"role"`
	Nickname string      `json:"nickname"`
	Proto    int         `json:"proto"`
	Auth     string      `json:"auth,omitempty"`
}

// PlayPayload 出牌
type PlayPayload struct {
	Type MessageType `json:"type"`
	Card string      `json:"card"`
}

// HeartbeatPingPayload UDP 心跳探测
type HeartbeatPingPayload struct {
	Type         MessageType `json:"type"`
	Seq          uint64      `json:"seq"`
	ClientMillis int64       `json:"t_client_ms"`
}

// NewHello 构造 HELLO 消息
func NewHello(nickname, auth string) string {
	return string(mustEncode(HelloPayload{
		Type:     MsgHello,
		Role:     RoleHuman,
		Nickname: nickname,
		Proto:    ProtoVersion,
		Auth:     auth,
	}))
}

// NewPlay 构造 PLAY 消息
func NewPlay(card string) string {
	return string(mustEncode(PlayPayload{Type: MsgPlay, Card: card}))
}

// NewHeartbeatPing 构造心跳探测数据报
func NewHeartbeatPing(seq uint64, clientMillis int64) []byte {
	return mustEncode(HeartbeatPingPayload{
		Type:         MsgHeartbeatPing,
		Seq:          seq,
		ClientMillis: clientMillis,
	})
}

// mustEncode 出站结构体只含字符串和整数，序列化不会失败
func mustEncode(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("encode %T: %v", v, err))
	}
	return data
}
