//go:build !production

package testutil

import (
	"encoding/json"
	"net"
	"sync/atomic"
	"testing"
	"time"
)

// EchoServer 进程内的 UDP 心跳回显服务器
type EchoServer struct {
	conn *net.UDPConn

	// Silent 为 true 时只计数不回复，用于模拟丢包
	Silent atomic.Bool

	reply    func(ping []byte) []byte
	received atomic.Uint64
}

// NewEchoServer 监听 127.0.0.1 的随机 UDP 端口。
// reply 把收到的数据报转换成回复，返回 nil 不回复；reply 为 nil 时原样回显。
func NewEchoServer(t *testing.T, reply func(ping []byte) []byte) *EchoServer {
	t.Helper()

	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("listen udp: %v", err)
	}

	s := &EchoServer{conn: conn, reply: reply}
	go s.serve()
	t.Cleanup(func() { _ = conn.Close() })
	return s
}

func (s *EchoServer) serve() {
	buf := make([]byte, 1024)
	for {
		n, addr, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			return
		}
		s.received.Add(1)
		if s.Silent.Load() {
			continue
		}

		data := append([]byte(nil), buf[:n]...)
		if s.reply != nil {
			data = s.reply(data)
		}
		if data != nil {
			_, _ = s.conn.WriteToUDP(data, addr)
		}
	}
}

// Host 监听地址
func (s *EchoServer) Host() string {
	return "127.0.0.1"
}

// Port 监听端口
func (s *EchoServer) Port() int {
	return s.conn.LocalAddr().(*net.UDPAddr).Port
}

// Received 收到的数据报数量
func (s *EchoServer) Received() uint64 {
	return s.received.Load()
}

// PongReply 按服务端格式回复 HB_PONG，保留 seq 和 t_client_ms
func PongReply(ping []byte) []byte {
	var in struct {
		Seq          uint64 `json:"seq"`
		ClientMillis int64  `json:"t_client_ms"`
	}
	if err := json.Unmarshal(ping, &in); err != nil {
		return nil
	}
	out, _ := json.Marshal(map[string]any{
		"type":        "HB_PONG",
		"seq":         in.Seq,
		"t_client_ms": in.ClientMillis,
		"t_server_ms": time.Now().UnixMilli(),
	})
	return out
}
