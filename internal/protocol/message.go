package protocol

// MessageType 消息类型（对应 JSON 中的 "type" 字段）
type MessageType string

// 客户端 → 服务端 消息类型
const (
	MsgHello         MessageType = "HELLO"   // 连接握手
	MsgPlay          MessageType = "PLAY"    // 出牌
	MsgPing          MessageType = "PING"    // 连通性测试
	MsgHeartbeatPing MessageType = "HB_PING" // UDP 心跳探测
)

// 服务端 → 客户端 消息类型
const (
	// 连接相关
	MsgWelcome       MessageType = "WELCOME" // 握手成功
	MsgPong          MessageType = "PONG"
	MsgHeartbeatPong MessageType = "HB_PONG" // UDP 心跳回显

	// 房间相关
	MsgRoomWait  MessageType = "ROOM_WAIT"  // 等待其他玩家
	MsgRoomStart MessageType = "ROOM_START" // 房间开局

	// 游戏流程
	MsgDeal          MessageType = "DEAL"           // 发牌
	MsgYourTurn      MessageType = "YOUR_TURN"      // 轮到你出牌
	MsgPlayBroadcast MessageType = "PLAY_BROADCAST" // 有人出牌
	MsgPlayReject    MessageType = "PLAY_REJECT"    // 出牌被拒绝
	MsgTrickResult   MessageType = "TRICK_RESULT"   // 本墩结果
	MsgGameOver      MessageType = "GAME_OVER"      // 游戏结束

	// 错误
	MsgError MessageType = "ERROR"
)

// 握手参数
const (
	ProtoVersion = 1
	RoleHuman    = "HUMAN"
	RoleAI       = "AI"
)

// Message 解码后的入站消息
type Message struct {
	Type   MessageType
	Fields Fields
	Raw    string
}
