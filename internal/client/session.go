package client

import (
	"fmt"
	"sync"

	"github.com/palemoky/cardarena/internal/apperrors"
	"github.com/palemoky/cardarena/internal/heartbeat"
	"github.com/palemoky/cardarena/internal/logger"
	"github.com/palemoky/cardarena/internal/protocol"
)

// Sender 出站消息通道（transport.Channel）
type Sender interface {
	Send(msg string) error
}

// StatsReader 链路质量统计来源（heartbeat.Monitor），只读
type StatsReader interface {
	Snapshot() heartbeat.Snapshot
}

// Session 会话状态机：消费服务端事件，维护 GameState，校验并提交出牌。
//
// mu 保护 state，持有时间尽量短，且从不跨越 I/O。
// dispatchMu 串行化事件处理与出牌提交：出牌的判定在 mu 内完成，
// 发送在释放 mu 之后、释放 dispatchMu 之前进行，中间不会插入其他事件。
type Session struct {
	sender    Sender
	stats     StatsReader
	observers []Observer

	dispatchMu sync.Mutex
	mu         sync.Mutex
	state      GameState
	counter    *CardCounter
}

// SessionOption 配置 Session
type SessionOption func(*Session)

// WithStats 关联心跳统计，仅用于展示
func WithStats(r StatsReader) SessionOption {
	return func(s *Session) {
		s.stats = r
	}
}

// WithObserver 注册通知观察者，可注册多个
func WithObserver(o Observer) SessionOption {
	return func(s *Session) {
		if o != nil {
			s.observers = append(s.observers, o)
		}
	}
}

// NewSession 创建会话
func NewSession(sender Sender, opts ...SessionOption) *Session {
	s := &Session{
		sender:  sender,
		counter: NewCardCounter(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Join 发送 HELLO，进入等待 WELCOME 阶段
func (s *Session) Join(nickname, auth string) error {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	s.mu.Lock()
	s.state.Nickname = nickname
	s.state.Phase = PhaseAwaitingWelcome
	s.mu.Unlock()

	if err := s.sender.Send(protocol.NewHello(nickname, auth)); err != nil {
		return fmt.Errorf("send hello: %w", err)
	}
	return nil
}

// HandleMessage 处理一条入站消息（消息通道的 OnMessage 回调）。
// 无法解析的消息只记录日志，不影响状态。
func (s *Session) HandleMessage(raw string) {
	msg, err := protocol.Decode(raw)
	if err != nil {
		logger.LogError("discard malformed message: %v", err)
		s.notify(Notice{Kind: NoticeUnknown, Text: raw})
		return
	}

	s.dispatchMu.Lock()
	s.mu.Lock()
	n := s.applyLocked(msg)
	s.mu.Unlock()
	s.dispatchMu.Unlock()

	s.notify(n)
}

// applyLocked 根据事件修改状态并生成通知，调用方持有 mu
func (s *Session) applyLocked(msg *protocol.Message) Notice {
	st := &s.state

	switch msg.Type {
	case protocol.MsgWelcome:
		p := msg.Welcome()
		st.PlayerID = p.PlayerID
		if p.Nickname != "" {
			st.Nickname = p.Nickname
		}
		st.Room = p.Room
		st.Phase = PhaseIdle
		logger.LogInfo("welcome: player=%s room=%s", p.PlayerID, p.Room)
		return Notice{Kind: NoticeWelcome, PlayerID: p.PlayerID, Text: welcomeText(st.Nickname, p.Room)}

	case protocol.MsgRoomWait:
		p := msg.RoomWait()
		return Notice{Kind: NoticeRoomWait, Text: fmt.Sprintf("房间 %s 等待玩家 %d/%d", p.Room, p.Players, p.Need)}

	case protocol.MsgRoomStart:
		p := msg.RoomStart()
		if p.Room != "" {
			st.Room = p.Room
		}
		return Notice{Kind: NoticeRoomStart, Text: fmt.Sprintf("房间 %s 开局", st.Room)}

	case protocol.MsgDeal:
		p := msg.Deal()
		st.Hand = toCards(p.Hand)
		st.Table = nil
		st.Score = Score{}
		st.CurrentTrick = 1
		st.TotalTricks = p.TotalTricks
		st.endTurn()
		st.Winner = ""
		st.Phase = PhaseTrickInProgress
		s.counter.Reset()
		s.counter.Deduct(st.Hand...)
		logger.LogInfo("deal: %d cards, %d tricks", len(st.Hand), st.TotalTricks)
		return Notice{Kind: NoticeDeal, Text: fmt.Sprintf("发牌 %d 张，共 %d 墩", len(st.Hand), st.TotalTricks)}

	case protocol.MsgYourTurn:
		p := msg.YourTurn()
		st.MyTurn = true
		// 墩数只增不减
		if p.Trick > st.CurrentTrick {
			st.CurrentTrick = p.Trick
		}
		st.LegalMoves = toCards(p.Legal)
		return Notice{Kind: NoticeYourTurn, Text: fmt.Sprintf("第 %d 墩，轮到您出牌", st.CurrentTrick)}

	case protocol.MsgPlayBroadcast:
		p := msg.PlayBroadcast()
		c := NormalizeCard(p.Card)
		st.Table = append(st.Table, TablePlay{PlayerID: p.PlayerID, Card: c})
		if p.PlayerID != "" && p.PlayerID == st.PlayerID {
			st.endTurn()
			st.removeFromHand(c)
		} else {
			s.counter.Deduct(c)
		}
		return Notice{Kind: NoticePlay, PlayerID: p.PlayerID, Card: c, Text: fmt.Sprintf("%s 出 %s", p.PlayerID, c)}

	case protocol.MsgPlayReject:
		p := msg.PlayReject()
		return Notice{Kind: NoticeReject, Card: NormalizeCard(p.Card), Text: rejectText(p.Card, p.Reason)}

	case protocol.MsgTrickResult:
		p := msg.TrickResult()
		st.Score = Score{Human: p.HumanScore, AI: p.AIScore}
		st.Table = nil
		score := st.Score
		return Notice{Kind: NoticeTrickResult, Winner: p.Winner, Score: score,
			Text: fmt.Sprintf("本墩胜者 %s，比分 %s", p.Winner, scoreText(score))}

	case protocol.MsgGameOver:
		p := msg.GameOver()
		st.Winner = p.Winner
		st.Phase = PhaseIdle
		score := st.Score
		if p.HumanScore != 0 || p.AIScore != 0 {
			score = Score{Human: p.HumanScore, AI: p.AIScore}
		}
		logger.LogInfo("game over: winner=%s", p.Winner)
		return Notice{Kind: NoticeGameOver, Winner: p.Winner, Score: score,
			Text: fmt.Sprintf("游戏结束，胜者 %s（%s）", p.Winner, scoreText(score))}

	case protocol.MsgError:
		p := msg.ServerError()
		err := apperrors.FromServer(p.Code, p.Message)
		logger.LogError("server error: %v", err)
		return Notice{Kind: NoticeError, Err: err, Text: err.Error()}

	default:
		logger.LogDebug("ignore message type %q", msg.Type)
		return Notice{Kind: NoticeUnknown, Text: msg.Raw}
	}
}

// SubmitMove 提交出牌。input 为牌面代码（不区分大小写），或 "auto" / "A" 自动选牌。
// 只有结果为 MoveSent 时才会发送 PLAY；error 非空表示发送失败。
// 手牌不在本地移除，等待服务端的 PLAY_BROADCAST。
func (s *Session) SubmitMove(input string) (MoveResult, Card, error) {
	s.dispatchMu.Lock()

	s.mu.Lock()
	result, c := decide(&s.state, input)
	s.mu.Unlock()

	var err error
	if result == MoveSent {
		if sendErr := s.sender.Send(protocol.NewPlay(string(c))); sendErr != nil {
			err = fmt.Errorf("send play %s: %w", c, sendErr)
			logger.LogError("%v", err)
		}
	}
	s.dispatchMu.Unlock()

	n := Notice{Kind: NoticeMove, Move: result, Card: c, Err: err, Text: result.Message()}
	if err != nil {
		n.Text = err.Error()
	}
	s.notify(n)
	return result, c, err
}

func (s *Session) notify(n Notice) {
	for _, o := range s.observers {
		o(n)
	}
}

// --- 访问器：均在状态锁内读取并返回副本 ---

// Snapshot 完整状态副本，附带记牌器
func (s *Session) Snapshot() GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.state.clone()
	out.Remaining = s.counter.Clone()
	return out
}

// PlayerID 本方玩家 ID
func (s *Session) PlayerID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.PlayerID
}

// Hand 手牌
func (s *Session) Hand() []Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Card(nil), s.state.Hand...)
}

// Table 桌面上的牌
func (s *Session) Table() []TablePlay {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]TablePlay(nil), s.state.Table...)
}

// LegalMoves 本轮可出的牌
func (s *Session) LegalMoves() []Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Card(nil), s.state.LegalMoves...)
}

// Score 比分
func (s *Session) Score() Score {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Score
}

// Tricks 当前墩数与总墩数
func (s *Session) Tricks() (current, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.CurrentTrick, s.state.TotalTricks
}

// MyTurn 是否轮到本方
func (s *Session) MyTurn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.MyTurn
}

// Phase 当前阶段
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Phase
}

// NetStats 心跳统计。不取状态锁；未关联心跳时返回零值。
func (s *Session) NetStats() heartbeat.Snapshot {
	if s.stats == nil {
		return heartbeat.Snapshot{}
	}
	return s.stats.Snapshot()
}
