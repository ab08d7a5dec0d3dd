package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/palemoky/cardarena/internal/apperrors"
	"github.com/palemoky/cardarena/internal/logger"
)

const (
	defaultDialTimeout = 10 * time.Second
	readBufferSize     = 4096
)

// Stream 一条双工字节流连接
type Stream interface {
	io.ReadWriteCloser
}

// halfCloser 支持分别关闭读写方向的连接（*net.TCPConn）
type halfCloser interface {
	CloseRead() error
	CloseWrite() error
}

// Dialer 建立到 host:port 的连接
type Dialer func(ctx context.Context, host string, port int) (Stream, error)

// DialTCP 默认的 TCP 拨号
func DialTCP(ctx context.Context, host string, port int) (Stream, error) {
	var d net.Dialer
	return d.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
}

// link 一次连接的生命周期：连接本身 + 读协程退出信号
type link struct {
	conn   Stream
	done   chan struct{}
	reader uint64 // 读协程编号，只由读协程自己读写
}

// Channel 消息通道：独占一条连接，后台读协程按到达顺序把消息交给 OnMessage
type Channel struct {
	// OnMessage 每条完整消息调用一次，运行在读协程中。
	// 回调内调用 Disconnect 只拆除连接，回调返回后读协程随即退出。
	OnMessage func(msg string)
	// OnClose 对端关闭或读错误时调用一次；主动 Disconnect 不触发。
	// 同样运行在读协程中，可以调用 Disconnect。
	OnClose func(err error)

	dial        Dialer
	dialTimeout time.Duration

	mu        sync.Mutex // 串行化 Connect / Disconnect
	writeMu   sync.Mutex // 保证单帧写入不被交错
	link      atomic.Pointer[link]
	connected atomic.Bool

	// 正在执行回调的读协程编号，0 表示没有回调在执行
	callbackOn atomic.Uint64
}

// Option 配置 Channel
type Option func(*Channel)

// WithDialer 替换拨号方式（例如 WebSocket）
func WithDialer(d Dialer) Option {
	return func(c *Channel) {
		c.dial = d
	}
}

// WithDialTimeout 设置拨号超时
func WithDialTimeout(d time.Duration) Option {
	return func(c *Channel) {
		if d > 0 {
			c.dialTimeout = d
		}
	}
}

// NewChannel 创建消息通道
func NewChannel(opts ...Option) *Channel {
	c := &Channel{
		dial:        DialTCP,
		dialTimeout: defaultDialTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect 连接服务器并启动读协程。
// 失败时不启动任何协程；已连接时返回 ErrAlreadyConnected。
func (c *Channel) Connect(host string, port int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected.Load() {
		return apperrors.ErrAlreadyConnected
	}
	// 回收对端关闭后遗留的连接
	c.teardownLocked()

	ctx, cancel := context.WithTimeout(context.Background(), c.dialTimeout)
	defer cancel()

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	conn, err := c.dial(ctx, host, port)
	if err != nil {
		return fmt.Errorf("%w %s: %w", apperrors.ErrConnectFailed, addr, err)
	}

	l := &link{conn: conn, done: make(chan struct{})}
	c.link.Store(l)
	c.connected.Store(true)

	go c.readPump(l)

	logger.LogInfo("connected to %s", addr)
	return nil
}

// Send 编码并写入一条消息，可与读协程并发调用
func (c *Channel) Send(msg string) error {
	l := c.link.Load()
	if l == nil || !c.connected.Load() {
		return apperrors.ErrNotConnected
	}

	frame := Encode(msg)

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if _, err := l.conn.Write(frame); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	return nil
}

// Disconnect 关闭连接并等待读协程退出。可重复调用，对端已关闭时同样安全。
// 在 OnMessage / OnClose 回调内调用时不等待读协程（它正在执行回调），
// 读协程在回调返回后不再投递任何消息。
func (c *Channel) Disconnect() {
	if c.inCallback() {
		c.detach()
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.teardownLocked()
}

// inCallback 当前协程是否是正在执行回调的读协程
func (c *Channel) inCallback() bool {
	id := c.callbackOn.Load()
	return id != 0 && id == goid()
}

// detach 拆除当前连接但不等待读协程。
// 不取 mu：另一个协程可能正持有 mu 等待本读协程退出。
func (c *Channel) detach() {
	l := c.link.Swap(nil)
	c.connected.Store(false)
	if l == nil {
		return
	}
	shutdown(l.conn)
	logger.LogInfo("disconnected")
}

// callback 在读协程中执行用户回调，并标记回调期间的协程编号
func (c *Channel) callback(l *link, fn func()) {
	c.callbackOn.Store(l.reader)
	// 旧读协程收尾时不能覆盖新读协程的标记
	defer c.callbackOn.CompareAndSwap(l.reader, 0)
	fn()
}

// IsConnected 是否已连接
func (c *Channel) IsConnected() bool {
	return c.connected.Load()
}

func (c *Channel) teardownLocked() {
	l := c.link.Swap(nil)
	c.connected.Store(false)
	if l == nil {
		return
	}

	shutdown(l.conn)
	// Connect 可能在 OnClose 中被调用，此时不能等待自己
	if !c.inCallback() {
		<-l.done
	}
	logger.LogInfo("disconnected")
}

// shutdown 先半关闭两个方向，让阻塞中的 Read 立即返回，再释放连接
func shutdown(conn Stream) {
	if hc, ok := conn.(halfCloser); ok {
		_ = hc.CloseRead()
		_ = hc.CloseWrite()
	}
	_ = conn.Close()
}

// readPump 从连接读取字节流，切分后逐条交给 OnMessage
func (c *Channel) readPump(l *link) {
	l.reader = goid()
	defer close(l.done)
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
			c.markClosed(l, fmt.Errorf("read pump panic: %v", r))
		}
	}()

	var framer Framer
	buf := make([]byte, readBufferSize)

	for {
		n, err := l.conn.Read(buf)
		if n > 0 {
			for _, msg := range framer.Feed(buf[:n]) {
				// 本地已拆除连接，不再投递
				if c.link.Load() != l {
					return
				}
				if c.OnMessage != nil {
					c.callback(l, func() { c.OnMessage(msg) })
				}
			}
		}
		if err != nil {
			c.markClosed(l, err)
			return
		}
	}
}

// markClosed 对端关闭或读错误：仅在该连接仍是当前连接时标记断开并通知
func (c *Channel) markClosed(l *link, err error) {
	if c.link.Load() != l {
		return
	}
	c.connected.Store(false)

	if errors.Is(err, io.EOF) {
		logger.LogInfo("server closed connection")
	} else {
		logger.LogError("read failed: %v", err)
	}
	if c.OnClose != nil {
		c.callback(l, func() { c.OnClose(err) })
	}
}
