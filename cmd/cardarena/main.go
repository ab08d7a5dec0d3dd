package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// 构建时注入
var (
	version = "dev"
	commit  = "none"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	play := playCmd()

	rootCmd := &cobra.Command{
		Use:   "cardarena",
		Short: "终端版回合制纸牌对战客户端",
		Long: `CardArena 连接游戏服务器进行人机对战。

TCP（或 WebSocket）通道承载游戏消息，UDP 心跳测量往返时延和丢包率。
不带子命令时等同于 play。`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          play.RunE,
	}
	// 根命令直接运行 play，共享同一组参数
	rootCmd.Flags().AddFlagSet(play.Flags())

	rootCmd.AddCommand(
		play,
		pingCmd(),
		versionCmd(),
	)
	return rootCmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "打印版本信息",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cardarena %s (%s)\n", version, commit)
		},
	}
}
