//go:build !production

package testutil

import (
	"bufio"
	"net"
	"testing"
	"time"
)

// Timeout 测试中等待网络事件的上限
const Timeout = 2 * time.Second

// LineServer 进程内的 NDJSON TCP 服务器，模拟游戏服务端
type LineServer struct {
	ln    net.Listener
	conns chan *ServerConn
}

// NewLineServer 监听 127.0.0.1 的随机端口，测试结束时自动关闭
func NewLineServer(t *testing.T) *LineServer {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	s := &LineServer{
		ln:    ln,
		conns: make(chan *ServerConn, 4),
	}
	go s.acceptLoop()
	t.Cleanup(s.Close)
	return s
}

func (s *LineServer) acceptLoop() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		sc := &ServerConn{conn: conn, lines: make(chan string, 64)}
		go sc.readLoop()
		s.conns <- sc
	}
}

// Host 监听地址
func (s *LineServer) Host() string {
	return "127.0.0.1"
}

// Port 监听端口
func (s *LineServer) Port() int {
	return s.ln.Addr().(*net.TCPAddr).Port
}

// Accept 等待客户端连入
func (s *LineServer) Accept(t *testing.T) *ServerConn {
	t.Helper()
	select {
	case sc := <-s.conns:
		t.Cleanup(sc.Close)
		return sc
	case <-time.After(Timeout):
		t.Fatalf("no client connected within %v", Timeout)
		return nil
	}
}

// Close 停止监听
func (s *LineServer) Close() {
	_ = s.ln.Close()
}

// ServerConn 服务端视角的一条连接
type ServerConn struct {
	conn  net.Conn
	lines chan string
}

func (c *ServerConn) readLoop() {
	defer close(c.lines)
	scanner := bufio.NewScanner(c.conn)
	for scanner.Scan() {
		c.lines <- scanner.Text()
	}
}

// Write 原样写入字节，用于构造任意分片
func (c *ServerConn) Write(t *testing.T, data string) {
	t.Helper()
	if _, err := c.conn.Write([]byte(data)); err != nil {
		t.Fatalf("server write: %v", err)
	}
}

// Send 写入一行消息
func (c *ServerConn) Send(t *testing.T, line string) {
	t.Helper()
	c.Write(t, line+"\n")
}

// ReadLine 读取客户端发来的下一行
func (c *ServerConn) ReadLine(t *testing.T) string {
	t.Helper()
	select {
	case line, ok := <-c.lines:
		if !ok {
			t.Fatalf("client closed before sending a line")
		}
		return line
	case <-time.After(Timeout):
		t.Fatalf("no line from client within %v", Timeout)
		return ""
	}
}

// WaitClosed 等待客户端关闭连接
func (c *ServerConn) WaitClosed(t *testing.T) {
	t.Helper()
	deadline := time.After(Timeout)
	for {
		select {
		case _, ok := <-c.lines:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatalf("client did not close within %v", Timeout)
		}
	}
}

// Close 服务端主动关闭
func (c *ServerConn) Close() {
	_ = c.conn.Close()
}
