package client

import (
	"fmt"

	"github.com/palemoky/cardarena/internal/apperrors"
)

// NoticeKind 通知类型
type NoticeKind string

const (
	NoticeWelcome     NoticeKind = "welcome"
	NoticeRoomWait    NoticeKind = "room_wait"
	NoticeRoomStart   NoticeKind = "room_start"
	NoticeDeal        NoticeKind = "deal"
	NoticeYourTurn    NoticeKind = "your_turn"
	NoticePlay        NoticeKind = "play"
	NoticeReject      NoticeKind = "reject"
	NoticeTrickResult NoticeKind = "trick_result"
	NoticeGameOver    NoticeKind = "game_over"
	NoticeError       NoticeKind = "error"
	NoticeMove        NoticeKind = "move"
	NoticeUnknown     NoticeKind = "unknown" // 无法解析或未知类型的消息
)

// Notice 会话事件通知，在状态锁释放后交给观察者
type Notice struct {
	Kind     NoticeKind
	Text     string
	PlayerID string
	Card     Card
	Winner   string
	Score    Score
	Move     MoveResult
	Err      error
}

// Observer 接收会话通知。运行在调用 HandleMessage / SubmitMove 的协程中，不应长时间阻塞。
type Observer func(Notice)

func welcomeText(nickname, room string) string {
	if room == "" {
		return fmt.Sprintf("欢迎 %s", nickname)
	}
	return fmt.Sprintf("欢迎 %s，房间 %s", nickname, room)
}

func rejectText(card, reason string) string {
	desc := apperrors.DescribeReject(reason)
	if card == "" {
		return desc
	}
	return fmt.Sprintf("%s：%s", card, desc)
}

func scoreText(s Score) string {
	return fmt.Sprintf("HUMAN %d : %d AI", s.Human, s.AI)
}
