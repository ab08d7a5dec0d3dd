package ui

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/cardarena/internal/client"
	"github.com/palemoky/cardarena/internal/heartbeat"
)

const (
	refreshInterval = 500 * time.Millisecond
	maxNoticeLines  = 6
)

// Session 界面所需的会话操作
type Session interface {
	SubmitMove(input string) (client.MoveResult, client.Card, error)
	Snapshot() client.GameState
	NetStats() heartbeat.Snapshot
}

// ConnState 消息通道连接状态
type ConnState interface {
	IsConnected() bool
}

// NoticeMsg 会话通知（由 NoticeSink 投递）
type NoticeMsg struct {
	Notice client.Notice
}

// MoveResultMsg 出牌请求完成
type MoveResultMsg struct {
	Result client.MoveResult
	Card   client.Card
	Err    error
}

// refreshMsg 定时刷新链路状态
type refreshMsg struct{}

// Model 终端界面：渲染会话状态并收集出牌输入
type Model struct {
	session Session
	conn    ConnState

	input   textinput.Model
	state   client.GameState
	net     heartbeat.Snapshot
	online  bool
	notices []string
	error   string

	width    int
	quitting bool
}

// NewModel 创建界面
func NewModel(session Session, conn ConnState) *Model {
	ti := textinput.New()
	ti.Placeholder = "输入牌面 (如 10H)、序号，或 auto"
	ti.CharLimit = 16
	ti.Width = 36
	ti.Focus()

	m := &Model{
		session: session,
		conn:    conn,
		input:   ti,
	}
	m.refresh()
	return m
}

// NoticeSink 把会话通知转发给 Bubble Tea 程序，可作为 client.Observer 使用
func NoticeSink(p *tea.Program) client.Observer {
	return func(n client.Notice) {
		p.Send(NoticeMsg{Notice: n})
	}
}

// ResolveInput 把纯数字输入解释为手牌序号，其他输入原样返回
func ResolveInput(input string, hand []client.Card) string {
	in := strings.TrimSpace(input)
	idx, err := strconv.Atoi(in)
	if err != nil || idx < 0 || idx >= len(hand) {
		return in
	}
	return string(hand[idx])
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tickRefresh())
}

func tickRefresh() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg {
		return refreshMsg{}
	})
}

func (m *Model) refresh() {
	m.state = m.session.Snapshot()
	m.net = m.session.NetStats()
	m.online = m.conn == nil || m.conn.IsConnected()
}

// submit 在独立协程中提交，避免阻塞事件循环。
// 序号按提交时的最新手牌解释，界面上的快照可能已经过期。
func (m *Model) submit(input string) tea.Cmd {
	return func() tea.Msg {
		input = ResolveInput(input, m.session.Snapshot().Hand)
		result, c, err := m.session.SubmitMove(input)
		return MoveResultMsg{Result: result, Card: c, Err: err}
	}
}

func (m *Model) addNotice(text string) {
	if text == "" {
		return
	}
	m.notices = append(m.notices, text)
	if len(m.notices) > maxNoticeLines {
		m.notices = m.notices[len(m.notices)-maxNoticeLines:]
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			return m, m.handleEnter()
		}

	case NoticeMsg:
		if msg.Notice.Kind != client.NoticeMove {
			m.addNotice(msg.Notice.Text)
		}
		m.refresh()
		return m, nil

	case MoveResultMsg:
		m.handleMoveResult(msg)
		m.refresh()
		return m, nil

	case refreshMsg:
		m.refresh()
		return m, tickRefresh()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleEnter() tea.Cmd {
	raw := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")
	m.error = ""

	switch strings.ToLower(raw) {
	case "":
		return nil
	case "quit", "exit", "q":
		m.quitting = true
		return tea.Quit
	}
	return m.submit(raw)
}

func (m *Model) handleMoveResult(msg MoveResultMsg) {
	switch {
	case msg.Err != nil:
		m.error = msg.Err.Error()
	case msg.Result == client.MoveSent:
		m.addNotice("已出 " + CardLabel(msg.Card))
	default:
		text := msg.Result.Message()
		if msg.Card != "" {
			text = CardLabel(msg.Card) + "：" + text
		}
		m.error = text
	}
}

func (m *Model) View() string {
	if m.quitting {
		return "再见！\n"
	}

	var sb strings.Builder
	sb.WriteString(RenderState(m.state, m.net, m.online))

	if len(m.notices) > 0 {
		sb.WriteString("\n")
		sb.WriteString(dimStyle.Render(strings.Join(m.notices, "\n")))
		sb.WriteString("\n")
	}

	sb.WriteString(promptStyle.Render(m.input.View()))
	if m.error != "" {
		sb.WriteString("\n" + errorStyle.Render(m.error))
	}
	sb.WriteString("\n" + dimStyle.Render("quit 退出 · auto 自动出牌"))

	return docStyle.Render(placeCenter(m.width, sb.String()))
}
