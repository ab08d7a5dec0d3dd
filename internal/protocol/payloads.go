package protocol

// 入站消息的类型化视图，全部从 Fields 构造，缺失字段取零值

// WelcomePayload 握手成功
type WelcomePayload struct {
	PlayerID string
	Nickname string
	Room     string
}

// DealPayload 发牌
type DealPayload struct {
	Hand        []string
	TotalTricks int
}

// YourTurnPayload 轮到你出牌
type YourTurnPayload struct {
	Trick     int
	Legal     []string
	TimeoutMS int64
}

// PlayBroadcastPayload 出牌广播
type PlayBroadcastPayload struct {
	PlayerID string
	Card     string
	Trick    int
}

// PlayRejectPayload 出牌被拒
type PlayRejectPayload struct {
	Card   string
	Reason string
}

// TrickResultPayload 本墩结果
type TrickResultPayload struct {
	Trick      int
	Winner     string
	HumanScore int
	AIScore    int
}

// GameOverPayload 游戏结束
type GameOverPayload struct {
	Winner     string
	HumanScore int
	AIScore    int
}

// ErrorPayload 服务端错误
type ErrorPayload struct {
	Code    string
	Message string
}

// RoomWaitPayload 等待玩家
type RoomWaitPayload struct {
	Room    string
	Players int
	Need    int
}

// RoomStartPayload 房间开局
type RoomStartPayload struct {
	Room    string
	Players int
}

// HeartbeatEcho 心跳回显，ClientMillis 为发送端原始时间戳
type HeartbeatEcho struct {
	Seq          uint64
	ClientMillis int64
	ServerMillis int64
}

func (m *Message) Welcome() WelcomePayload {
	return WelcomePayload{
		PlayerID: m.Fields.String("player_id"),
		Nickname: m.Fields.String("nickname"),
		Room:     m.Fields.String("room"),
	}
}

func (m *Message) Deal() DealPayload {
	return DealPayload{
		Hand:        m.Fields.Strings("hand"),
		TotalTricks: int(m.Fields.Int("total_tricks")),
	}
}

func (m *Message) YourTurn() YourTurnPayload {
	return YourTurnPayload{
		Trick:     int(m.Fields.Int("trick")),
		Legal:     m.Fields.Strings("legal"),
		TimeoutMS: m.Fields.Int("timeout_ms"),
	}
}

func (m *Message) PlayBroadcast() PlayBroadcastPayload {
	return PlayBroadcastPayload{
		PlayerID: m.Fields.String("player_id"),
		Card:     m.Fields.String("card"),
		Trick:    int(m.Fields.Int("trick")),
	}
}

func (m *Message) PlayReject() PlayRejectPayload {
	return PlayRejectPayload{
		Card:   m.Fields.String("card"),
		Reason: m.Fields.String("reason"),
	}
}

// TrickResult 优先读取扁平的 human_score/ai_score，缺失时回落到嵌套的 score{HUMAN,AI}
func (m *Message) TrickResult() TrickResultPayload {
	human, ai := scores(m.Fields, "score")
	return TrickResultPayload{
		Trick:      int(m.Fields.Int("trick")),
		Winner:     m.Fields.String("winner"),
		HumanScore: human,
		AIScore:    ai,
	}
}

func (m *Message) GameOver() GameOverPayload {
	human, ai := scores(m.Fields, "final_score")
	return GameOverPayload{
		Winner:     m.Fields.String("winner"),
		HumanScore: human,
		AIScore:    ai,
	}
}

func (m *Message) ServerError() ErrorPayload {
	return ErrorPayload{
		Code:    m.Fields.String("code"),
		Message: m.Fields.String("message"),
	}
}

func (m *Message) RoomWait() RoomWaitPayload {
	return RoomWaitPayload{
		Room:    m.Fields.String("room"),
		Players: m.Fields.Len("players"),
		Need:    int(m.Fields.Int("need")),
	}
}

func (m *Message) RoomStart() RoomStartPayload {
	return RoomStartPayload{
		Room:    m.Fields.String("room"),
		Players: m.Fields.Len("players"),
	}
}

func scores(f Fields, nestedKey string) (human, ai int) {
	if f.Has("human_score") || f.Has("ai_score") {
		return int(f.Int("human_score")), int(f.Int("ai_score"))
	}
	nested := f.Object(nestedKey)
	return int(nested.Int("HUMAN")), int(nested.Int("AI"))
}

// DecodeHeartbeatEcho 解析心跳回显数据报。
// 只要求存在非零的 t_client_ms，不校验 type，纯回显服务器原样返回 HB_PING 也能计算 RTT。
func DecodeHeartbeatEcho(datagram []byte) (HeartbeatEcho, bool) {
	msg, err := Decode(string(datagram))
	if err != nil {
		return HeartbeatEcho{}, false
	}
	sent := msg.Fields.Int("t_client_ms")
	if sent <= 0 {
		return HeartbeatEcho{}, false
	}
	seq := msg.Fields.Int("seq")
	if seq < 0 {
		seq = 0
	}
	return HeartbeatEcho{
		Seq:          uint64(seq),
		ClientMillis: sent,
		ServerMillis: msg.Fields.Int("t_server_ms"),
	}, true
}
