package transport

import "bytes"

// Delimiter 消息分隔符（NDJSON）
const Delimiter = '\n'

// Encode 为消息追加唯一的结尾换行符，已存在时不重复追加
func Encode(msg string) []byte {
	if n := len(msg); n > 0 && msg[n-1] == Delimiter {
		return []byte(msg)
	}
	out := make([]byte, 0, len(msg)+1)
	out = append(out, msg...)
	return append(out, Delimiter)
}

// Framer 把字节流切分为完整的消息。
// 不完整的尾部会保留到下一次 Feed，连续分隔符产生的空消息被丢弃。
// 不限制单条消息长度。
type Framer struct {
	buf []byte
}

// Feed 追加字节并返回本次能切出的所有完整消息（不含分隔符）
func (f *Framer) Feed(p []byte) []string {
	f.buf = append(f.buf, p...)

	var msgs []string
	for {
		i := bytes.IndexByte(f.buf, Delimiter)
		if i < 0 {
			break
		}
		if i > 0 {
			msgs = append(msgs, string(f.buf[:i]))
		}
		f.buf = f.buf[i+1:]
	}

	// 全部消费完时释放底层数组
	if len(f.buf) == 0 {
		f.buf = nil
	}
	return msgs
}

// Pending 尚未成帧的字节数
func (f *Framer) Pending() int {
	return len(f.buf)
}

// Reset 丢弃未完成的部分
func (f *Framer) Reset() {
	f.buf = nil
}
