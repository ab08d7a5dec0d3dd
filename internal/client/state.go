package client

// Phase 会话所处阶段
type Phase int

const (
	PhaseAwaitingWelcome Phase = iota // 已发 HELLO，等待 WELCOME
	PhaseIdle                         // 两局之间
	PhaseTrickInProgress              // 已发牌，逐墩进行中
)

func (p Phase) String() string {
	switch p {
	case PhaseAwaitingWelcome:
		return "awaiting_welcome"
	case PhaseIdle:
		return "idle"
	case PhaseTrickInProgress:
		return "trick_in_progress"
	default:
		return "unknown"
	}
}

// Score 双方得分
type Score struct {
	Human int
	AI    int
}

// TablePlay 桌面上的一次出牌
type TablePlay struct {
	PlayerID string
	Card     Card
}

// GameState 客户端视角的牌局状态，只由 Session 在锁内修改
type GameState struct {
	PlayerID string
	Nickname string
	Room     string

	Hand       []Card
	Table      []TablePlay
	LegalMoves []Card // 仅在 MyTurn 时非空

	Score        Score
	CurrentTrick int
	TotalTricks  int
	MyTurn       bool

	Phase  Phase
	Winner string // 最近一局的胜者

	Remaining map[string]int // 记牌器快照，只在 Snapshot 结果中填充
}

// clone 深拷贝，调用方持锁
func (gs *GameState) clone() GameState {
	out := *gs
	out.Hand = append([]Card(nil), gs.Hand...)
	out.Table = append([]TablePlay(nil), gs.Table...)
	out.LegalMoves = append([]Card(nil), gs.LegalMoves...)
	return out
}

// removeFromHand 移除第一张匹配的牌
func (gs *GameState) removeFromHand(c Card) bool {
	i := indexOf(gs.Hand, c)
	if i < 0 {
		return false
	}
	gs.Hand = append(gs.Hand[:i], gs.Hand[i+1:]...)
	return true
}

// endTurn 结束本方回合，合法出牌随之失效
func (gs *GameState) endTurn() {
	gs.MyTurn = false
	gs.LegalMoves = nil
}
