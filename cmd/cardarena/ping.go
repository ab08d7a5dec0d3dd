package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/palemoky/cardarena/internal/config"
	"github.com/palemoky/cardarena/internal/heartbeat"
)

func pingCmd() *cobra.Command {
	var (
		opts  connOptions
		count int
	)

	cmd := &cobra.Command{
		Use:   "ping",
		Short: "只运行 UDP 心跳，打印链路质量",
		Long: `向服务器的心跳端口发送探测，每个间隔打印一次往返时延与丢包率。

Examples:
  cardarena ping
  cardarena ping --host=game.example.com --count=10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return runPing(ctx, cmd.OutOrStdout(), cfg, count)
		},
	}
	opts.bind(cmd.Flags())
	cmd.Flags().IntVar(&count, "count", 0, "打印次数后退出，0 表示直到中断")
	return cmd
}

// runPing 每个探测间隔输出一行统计，count 为 0 时直到 ctx 结束
func runPing(ctx context.Context, out io.Writer, cfg *config.Config, count int) error {
	interval := cfg.Heartbeat.IntervalDuration()
	monitor := heartbeat.NewMonitor(heartbeat.WithInterval(interval))

	port := cfg.Heartbeat.ResolvePort(cfg.Server.Port)
	if err := monitor.Start(cfg.Server.Host, port); err != nil {
		return err
	}
	defer monitor.Stop()

	fmt.Fprintf(out, "PING %s:%d every %s\n", cfg.Server.Host, port, interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for printed := 0; count <= 0 || printed < count; printed++ {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			fmt.Fprintln(out, formatSnapshot(monitor.Snapshot()))
		}
	}
	return nil
}

func formatSnapshot(s heartbeat.Snapshot) string {
	return fmt.Sprintf("sent=%d received=%d rtt=%dms avg=%dms loss=%.1f%%",
		s.Sent, s.Received, s.LastRTT.Milliseconds(), s.SmoothedRTT.Milliseconds(), s.LossRate*100)
}
