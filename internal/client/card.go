package client

import (
	"strconv"
	"strings"
)

// Card 牌面代码：点数 + 花色，例如 "AS"、"10H"。按代码精确比较。
type Card string

// NormalizeCard 去掉首尾空白并转大写
func NormalizeCard(code string) Card {
	return Card(strings.ToUpper(strings.TrimSpace(code)))
}

// Rank 点数部分（去掉最后一位花色）
func (c Card) Rank() string {
	if len(c) < 2 {
		return ""
	}
	return string(c[:len(c)-1])
}

// Suit 花色
func (c Card) Suit() string {
	if len(c) < 2 {
		return ""
	}
	return string(c[len(c)-1:])
}

// 花牌点数
var faceRanks = map[string]int{
	"A": 14,
	"K": 13,
	"Q": 12,
	"J": 11,
}

// CardRank 比较用的点数值：A=14, K=13, Q=12, J=11，数字牌按面值，无法识别为 0
func CardRank(c Card) int {
	rank := strings.ToUpper(c.Rank())
	if v, ok := faceRanks[rank]; ok {
		return v
	}
	n, err := strconv.Atoi(rank)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// RankLabels 一副牌的点数，从小到大
var RankLabels = []string{"2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A"}

func toCards(codes []string) []Card {
	if len(codes) == 0 {
		return nil
	}
	cards := make([]Card, 0, len(codes))
	for _, code := range codes {
		cards = append(cards, NormalizeCard(code))
	}
	return cards
}

func indexOf(cards []Card, c Card) int {
	for i, x := range cards {
		if x == c {
			return i
		}
	}
	return -1
}
