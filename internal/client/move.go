package client

import "strings"

// MoveResult 出牌请求的处理结果
type MoveResult int

const (
	MoveSent        MoveResult = iota // 已交给消息通道发送
	MoveNotInHand                     // 手牌中没有这张牌
	MoveIllegal                       // 在手牌中但本轮不允许出
	MoveNotYourTurn                   // 未轮到本方，忽略
	MoveNoCandidate                   // 输入为空，或自动出牌没有可选的牌
)

func (r MoveResult) String() string {
	switch r {
	case MoveSent:
		return "sent"
	case MoveNotInHand:
		return "not_in_hand"
	case MoveIllegal:
		return "illegal"
	case MoveNotYourTurn:
		return "not_your_turn"
	case MoveNoCandidate:
		return "no_candidate"
	default:
		return "unknown"
	}
}

// Message 面向玩家的描述
func (r MoveResult) Message() string {
	switch r {
	case MoveSent:
		return "已出牌"
	case MoveNotInHand:
		return "手牌中没有这张牌"
	case MoveIllegal:
		return "这张牌现在不能出"
	case MoveNotYourTurn:
		return "还没轮到您"
	case MoveNoCandidate:
		return "没有可出的牌"
	default:
		return ""
	}
}

// IsAuto 输入是否为自动出牌（"auto" 或 "A"，不区分大小写）
func IsAuto(input string) bool {
	in := strings.TrimSpace(input)
	return strings.EqualFold(in, "auto") || strings.EqualFold(in, "a")
}

// AutoPick 在 legal 中选点数最大的牌，同点数取最靠前的。
// 只考虑同时在 hand 中的牌；没有候选时返回 false。
func AutoPick(hand, legal []Card) (Card, bool) {
	var (
		best     Card
		bestRank = -1
	)
	for _, c := range legal {
		if indexOf(hand, c) < 0 {
			continue
		}
		if r := CardRank(c); r > bestRank {
			best, bestRank = c, r
		}
	}
	return best, bestRank >= 0
}

// decide 判定一次出牌请求，调用方持有状态锁
func decide(gs *GameState, input string) (MoveResult, Card) {
	if !gs.MyTurn {
		return MoveNotYourTurn, ""
	}
	if IsAuto(input) {
		c, ok := AutoPick(gs.Hand, gs.LegalMoves)
		if !ok {
			return MoveNoCandidate, ""
		}
		return MoveSent, c
	}

	c := NormalizeCard(input)
	switch {
	case c == "":
		return MoveNoCandidate, ""
	case indexOf(gs.Hand, c) < 0:
		return MoveNotInHand, c
	case indexOf(gs.LegalMoves, c) < 0:
		return MoveIllegal, c
	default:
		return MoveSent, c
	}
}
