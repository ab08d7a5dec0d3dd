package sound

import "github.com/palemoky/cardarena/internal/client"

// DefaultDir 默认音效目录
const DefaultDir = "assets/sounds"

// 音效名，对应音效目录下的文件名
const (
	YourTurn = "your_turn"
	Reject   = "reject"
	Win      = "win"
	Lose     = "lose"
)

// ForNotice 会话通知对应的音效；不需要提示音时返回 false
func ForNotice(n client.Notice) (string, bool) {
	switch n.Kind {
	case client.NoticeYourTurn:
		return YourTurn, true
	case client.NoticeReject:
		return Reject, true
	case client.NoticeMove:
		if n.Move != client.MoveSent {
			return Reject, true
		}
	case client.NoticeGameOver:
		if n.Score.Human > n.Score.AI {
			return Win, true
		}
		return Lose, true
	}
	return "", false
}
