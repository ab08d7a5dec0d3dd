package transport

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait        = 10 * time.Second
	handshakeTimeout = 10 * time.Second
)

// DialWebSocket 返回通过 WebSocket 网关连接的 Dialer。
// 每个文本帧承载一条消息，读取时在帧尾补换行符，交给同一个 Framer 切分。
func DialWebSocket(path string) Dialer {
	return func(ctx context.Context, host string, port int) (Stream, error) {
		u := url.URL{
			Scheme: "ws",
			Host:   net.JoinHostPort(host, strconv.Itoa(port)),
			Path:   path,
		}

		dialer := websocket.Dialer{
			HandshakeTimeout: handshakeTimeout,
		}
		conn, resp, err := dialer.DialContext(ctx, u.String(), nil)
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
		if err != nil {
			return nil, err
		}
		return &wsStream{conn: conn}, nil
	}
}

// wsStream 把消息式的 WebSocket 连接适配成字节流
type wsStream struct {
	conn     *websocket.Conn
	frame    io.Reader
	frameEnd bool
}

func (s *wsStream) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	for {
		if s.frameEnd {
			s.frameEnd = false
			p[0] = Delimiter
			return 1, nil
		}
		if s.frame == nil {
			_, r, err := s.conn.NextReader()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					return 0, io.EOF
				}
				return 0, err
			}
			s.frame = r
		}

		n, err := s.frame.Read(p)
		if errors.Is(err, io.EOF) {
			s.frame = nil
			s.frameEnd = true
			if n > 0 {
				return n, nil
			}
			continue
		}
		if err != nil {
			return n, err
		}
		if n > 0 {
			return n, nil
		}
	}
}

// Write 发送一个文本帧，去掉结尾换行符
func (s *wsStream) Write(p []byte) (int, error) {
	payload := bytes.TrimSuffix(p, []byte{Delimiter})
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Close 尽力发送关闭帧后关闭底层连接，阻塞中的 NextReader 随之返回
func (s *wsStream) Close() error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	return s.conn.Close()
}
