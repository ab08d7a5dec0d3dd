package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/palemoky/cardarena/internal/client"
	"github.com/palemoky/cardarena/internal/config"
	"github.com/palemoky/cardarena/internal/heartbeat"
	"github.com/palemoky/cardarena/internal/logger"
	"github.com/palemoky/cardarena/internal/metrics"
	"github.com/palemoky/cardarena/internal/sound"
	"github.com/palemoky/cardarena/internal/telemetry"
	"github.com/palemoky/cardarena/internal/transport"
	"github.com/palemoky/cardarena/internal/ui"
)

func playCmd() *cobra.Command {
	var opts connOptions

	cmd := &cobra.Command{
		Use:   "play",
		Short: "连接服务器开始游戏",
		Long: `连接服务器并打开终端界面。

Examples:
  cardarena play
  cardarena play --host=game.example.com --port=8888 --nickname=alice
  cardarena play --ws --metrics-addr=:9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			return runPlay(cmd.Context(), cfg)
		},
	}
	opts.bind(cmd.Flags())
	return cmd
}

func newChannel(cfg *config.Config) *transport.Channel {
	opts := []transport.Option{transport.WithDialTimeout(cfg.Server.DialTimeoutDuration())}
	if cfg.Server.Transport == config.TransportWebSocket {
		opts = append(opts, transport.WithDialer(transport.DialWebSocket(cfg.Server.WSPath)))
	}
	return transport.NewChannel(opts...)
}

func runPlay(parent context.Context, cfg *config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parent, syscall.SIGTERM)
	defer cancel()

	// 界面占用终端，日志写文件
	if err := logger.Init(cfg.Log.Dir); err != nil {
		return err
	}
	defer logger.Close()
	logger.SetDebug(cfg.Log.Debug)

	clientID := uuid.NewString()
	logger.LogInfo("client %s starting, server %s:%d (%s)", clientID, cfg.Server.Host, cfg.Server.Port, cfg.Server.Transport)

	ch := newChannel(cfg)
	monitor := heartbeat.NewMonitor(heartbeat.WithInterval(cfg.Heartbeat.IntervalDuration()))

	// 通知先经过 sink，程序创建后再指向 Bubble Tea
	var sink client.Observer
	sessionOpts := []client.SessionOption{
		client.WithStats(monitor),
		client.WithObserver(func(n client.Notice) { sink(n) }),
	}

	if cfg.Metrics.Addr != "" {
		registry := prometheus.NewRegistry()
		m := metrics.New(monitor, ch,
			metrics.WithRegistry(registry),
			metrics.WithConstLabels(prometheus.Labels{"client_id": clientID}),
		)
		sessionOpts = append(sessionOpts, client.WithObserver(m.Observe))
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Addr, metrics.NewRouter(registry, ch)); err != nil {
				logger.LogError("metrics server: %v", err)
			}
		}()
	}

	if cfg.Sound.Enabled {
		sm := sound.NewSoundManager(cfg.Sound.Dir)
		if err := sm.Init(); err != nil {
			logger.LogError("sound disabled: %v", err)
		} else {
			defer sm.Close()
			sessionOpts = append(sessionOpts, client.WithObserver(sm.Notify))
		}
	}

	if cfg.Telemetry.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Telemetry.RedisAddr,
			Password: cfg.Telemetry.Password,
			DB:       cfg.Telemetry.DB,
		})
		defer func() { _ = rdb.Close() }()
		pub := telemetry.NewPublisher(rdb, clientID, cfg.Telemetry.Channel, monitor, ch)
		go pub.Run(ctx, cfg.Telemetry.IntervalDuration())
	}

	session := client.NewSession(ch, sessionOpts...)
	program := tea.NewProgram(ui.NewModel(session, ch), tea.WithAltScreen(), tea.WithContext(ctx))
	sink = ui.NoticeSink(program)

	ch.OnMessage = session.HandleMessage
	ch.OnClose = func(err error) {
		logger.LogError("connection closed: %v", err)
		program.Send(ui.NoticeMsg{Notice: client.Notice{Kind: client.NoticeError, Err: err, Text: "与服务器的连接已断开"}})
	}

	if err := ch.Connect(cfg.Server.Host, cfg.Server.Port); err != nil {
		return err
	}
	defer ch.Disconnect()

	if cfg.Heartbeat.IsEnabled() {
		port := cfg.Heartbeat.ResolvePort(cfg.Server.Port)
		if err := monitor.Start(cfg.Server.Host, port); err != nil {
			// 心跳只影响链路展示，失败不中断游戏
			logger.LogError("heartbeat disabled: %v", err)
		}
	}
	defer monitor.Stop()

	if err := session.Join(cfg.Player.Nickname, cfg.Player.Auth); err != nil {
		return err
	}

	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("terminal ui: %w", err)
	}
	return nil
}
