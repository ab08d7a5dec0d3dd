package client

// CardCounter 记牌器：记录本局尚未出现在桌面上的各点数张数
type CardCounter struct {
	remaining map[string]int
}

// 标准牌每个点数 4 张
const suitsPerRank = 4

// NewCardCounter 创建并初始化记牌器
func NewCardCounter() *CardCounter {
	cc := &CardCounter{
		remaining: make(map[string]int, len(RankLabels)),
	}
	cc.Reset()
	return cc
}

// Reset 恢复为整副牌
func (cc *CardCounter) Reset() {
	for _, rank := range RankLabels {
		cc.remaining[rank] = suitsPerRank
	}
}

// Deduct 扣除出现过的牌，未知点数忽略
func (cc *CardCounter) Deduct(cards ...Card) {
	for _, c := range cards {
		rank := c.Rank()
		if cc.remaining[rank] > 0 {
			cc.remaining[rank]--
		}
	}
}

// Remaining 某点数剩余张数
func (cc *CardCounter) Remaining(rank string) int {
	return cc.remaining[rank]
}

// Clone 复制当前计数
func (cc *CardCounter) Clone() map[string]int {
	out := make(map[string]int, len(cc.remaining))
	for rank, n := range cc.remaining {
		out[rank] = n
	}
	return out
}
