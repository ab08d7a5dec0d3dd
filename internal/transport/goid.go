package transport

import (
	"bytes"
	"runtime"
	"strconv"
)

// goid 当前协程编号，解析自 runtime.Stack 的首行 "goroutine 123 [running]:"。
// 只用于识别回调内对 Disconnect 的重入调用，不在热路径上。
func goid() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	line := bytes.TrimPrefix(buf[:n], []byte("goroutine "))
	if i := bytes.IndexByte(line, ' '); i > 0 {
		line = line[:i]
	}
	id, err := strconv.ParseUint(string(line), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
