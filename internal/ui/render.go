package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/palemoky/cardarena/internal/client"
	"github.com/palemoky/cardarena/internal/heartbeat"
)

// 花色符号
var suitSymbols = map[string]string{
	"S": "♠",
	"H": "♥",
	"D": "♦",
	"C": "♣",
}

// 记牌器从大到小显示
var counterOrder = []string{"A", "K", "Q", "J", "10", "9", "8", "7", "6", "5", "4", "3", "2"}

// CardLabel 牌面文字，例如 "10H" → "10♥"
func CardLabel(c client.Card) string {
	if sym, ok := suitSymbols[c.Suit()]; ok {
		return c.Rank() + sym
	}
	return string(c)
}

// renderCard 红桃方块红色，其余黑色
func renderCard(c client.Card) string {
	label := " " + CardLabel(c) + " "
	switch c.Suit() {
	case "H", "D":
		return redStyle.Render(label)
	case "S", "C":
		return blackStyle.Render(label)
	default:
		return grayStyle.Render(label)
	}
}

func renderCards(cards []client.Card) string {
	if len(cards) == 0 {
		return dimStyle.Render("(无)")
	}
	parts := make([]string, 0, len(cards))
	for _, c := range cards {
		parts = append(parts, renderCard(c))
	}
	return strings.Join(parts, " ")
}

// renderHand 手牌带序号，可直接输入序号出牌
func renderHand(hand []client.Card) string {
	if len(hand) == 0 {
		return dimStyle.Render("(无)")
	}
	parts := make([]string, 0, len(hand))
	for i, c := range hand {
		parts = append(parts, dimStyle.Render(fmt.Sprintf("%d", i))+renderCard(c))
	}
	return strings.Join(parts, " ")
}

func renderTable(table []client.TablePlay, me string) string {
	if len(table) == 0 {
		return dimStyle.Render("(空)")
	}
	parts := make([]string, 0, len(table))
	for _, p := range table {
		who := p.PlayerID
		if who == me && me != "" {
			who = "你"
		}
		parts = append(parts, fmt.Sprintf("%s %s", who, renderCard(p.Card)))
	}
	return strings.Join(parts, "  ")
}

// RenderNet 链路状态行
func RenderNet(snap heartbeat.Snapshot, connected bool) string {
	status := goodStyle.Render(OnlineIcon + " 已连接")
	if !connected {
		status = errorStyle.Render(OfflineIcon + " 已断开")
	}
	if snap.Sent == 0 {
		return status + dimStyle.Render("  心跳: -")
	}

	loss := fmt.Sprintf("丢包 %.1f%%", snap.LossRate*100)
	switch {
	case snap.LossRate >= 0.2:
		loss = errorStyle.Render(loss)
	case snap.LossRate >= 0.05:
		loss = warnStyle.Render(loss)
	}
	return fmt.Sprintf("%s  RTT %s (平均 %s)  %s",
		status, formatRTT(snap.LastRTT), formatRTT(snap.SmoothedRTT), loss)
}

func formatRTT(d time.Duration) string {
	return fmt.Sprintf("%dms", d.Milliseconds())
}

func renderCounter(remaining map[string]int) string {
	if len(remaining) == 0 {
		return ""
	}
	parts := make([]string, 0, len(counterOrder))
	for _, rank := range counterOrder {
		n := remaining[rank]
		cell := fmt.Sprintf("%s:%d", rank, n)
		switch {
		case n == 0:
			cell = errorStyle.Render(cell)
		case n <= 2:
			cell = warnStyle.Render(cell)
		}
		parts = append(parts, cell)
	}
	return strings.Join(parts, " ")
}

func phaseLine(gs client.GameState) string {
	switch gs.Phase {
	case client.PhaseAwaitingWelcome:
		return WaitIcon + " 等待服务器响应..."
	case client.PhaseIdle:
		if gs.Winner != "" {
			return fmt.Sprintf("本局结束，胜者 %s。等待下一局...", gs.Winner)
		}
		return WaitIcon + " 等待发牌..."
	default:
		return ""
	}
}

// RenderState 渲染会话状态
func RenderState(gs client.GameState, net heartbeat.Snapshot, connected bool) string {
	var sb strings.Builder

	header := "🃏 CardArena"
	if gs.Nickname != "" {
		header += fmt.Sprintf("  %s", gs.Nickname)
	}
	if gs.Room != "" {
		header += fmt.Sprintf("  房间 %s", gs.Room)
	}
	sb.WriteString(titleStyle(header))
	sb.WriteString("\n")
	sb.WriteString(RenderNet(net, connected))
	sb.WriteString("\n\n")

	if line := phaseLine(gs); line != "" {
		sb.WriteString(line)
		sb.WriteString("\n")
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("第 %d/%d 墩   比分 HUMAN %d : %d AI\n",
		gs.CurrentTrick, gs.TotalTricks, gs.Score.Human, gs.Score.AI))

	var body strings.Builder
	body.WriteString("桌面: " + renderTable(gs.Table, gs.PlayerID) + "\n")
	body.WriteString("手牌: " + renderHand(gs.Hand) + "\n")
	if gs.MyTurn {
		body.WriteString(TurnIcon + " 可出: " + renderCards(gs.LegalMoves))
	} else {
		body.WriteString(dimStyle.Render("等待其他玩家出牌..."))
	}
	if counter := renderCounter(gs.Remaining); counter != "" {
		body.WriteString("\n记牌器: " + counter)
	}
	sb.WriteString(boxStyle.Render(body.String()))
	sb.WriteString("\n")
	return sb.String()
}

// placeCenter 按窗口宽度居中
func placeCenter(width int, s string) string {
	if width <= 0 {
		return s
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, s)
}
