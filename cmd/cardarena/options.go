package main

import (
	"github.com/spf13/pflag"

	"github.com/palemoky/cardarena/internal/config"
)

const defaultConfigPath = "configs/config.yaml"

// connOptions 命令行参数，非零值覆盖配置文件与环境变量
type connOptions struct {
	configPath  string
	host        string
	port        int
	nickname    string
	ws          bool
	metricsAddr string
}

func (o *connOptions) bind(fs *pflag.FlagSet) {
	fs.StringVarP(&o.configPath, "config", "c", defaultConfigPath, "配置文件路径（不存在时使用默认配置）")
	fs.StringVarP(&o.host, "host", "H", "", "服务器地址")
	fs.IntVarP(&o.port, "port", "p", 0, "服务器端口")
	fs.StringVarP(&o.nickname, "nickname", "n", "", "昵称")
	fs.BoolVar(&o.ws, "ws", false, "通过 WebSocket 网关连接")
	fs.StringVar(&o.metricsAddr, "metrics-addr", "", "Prometheus 指标监听地址，例如 :9090")
}

// load 依次应用配置文件、.env、CARDARENA_* 环境变量和命令行参数
func (o *connOptions) load() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(o.configPath)
	if err != nil {
		return nil, err
	}
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if o.host != "" {
		cfg.Server.Host = o.host
	}
	if o.port > 0 {
		cfg.Server.Port = o.port
	}
	if o.nickname != "" {
		cfg.Player.Nickname = o.nickname
	}
	if o.ws {
		cfg.Server.Transport = config.TransportWebSocket
	}
	if o.metricsAddr != "" {
		cfg.Metrics.Addr = o.metricsAddr
	}
	return cfg, cfg.Validate()
}
