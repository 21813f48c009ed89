// Package main 提供 pingnode 命令行入口
//
// 用法：
//
//	pingnode [-config node.json] [-identity node.key] [/ip4/1.2.3.4/tcp/4001]
//
// 可选的位置参数是启动时拨号的地址。
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	ma "github.com/multiformats/go-multiaddr"

	pingnode "github.com/dep2p/go-pingnode"
	"github.com/dep2p/go-pingnode/config"
	"github.com/dep2p/go-pingnode/internal/util/logger"
	"github.com/dep2p/go-pingnode/pkg/types"
)

var log = logger.Logger("cmd")

// 构建时通过 -ldflags "-X main.version=..." 注入
var version = "dev"

var (
	configFile   = flag.String("config", "", "JSON 配置文件路径")
	identityFile = flag.String("identity", "", "身份密钥文件路径（PEM，不存在时生成）")
	showVersion  = flag.Bool("version", false, "显示版本信息")
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] [multiaddr]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Printf("pingnode %s\n", version)
		return nil
	}
	if flag.NArg() > 1 {
		return fmt.Errorf("expected at most one address argument, got %d", flag.NArg())
	}

	// 启动前解析拨号地址，格式错误直接退出
	var remote ma.Multiaddr
	if flag.NArg() == 1 {
		addr, err := types.ParseAddress(flag.Arg(0))
		if err != nil {
			return err
		}
		remote = addr
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	node, err := pingnode.New(pingnode.WithConfig(cfg))
	if err != nil {
		return err
	}
	defer func() {
		if err := node.Close(); err != nil {
			log.Warn("close node", "err", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := node.Start(ctx); err != nil {
		return err
	}
	log.Info("local peer", "peer", node.ID().String())

	if remote != nil {
		if err := node.DialAddr(remote); err != nil {
			return err
		}
		fmt.Printf("Dialed %s\n", remote)
	}

	err = pingnode.NewEventLoop(node, os.Stdout).Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// loadConfig 配置优先级：命令行参数 > 环境变量 > 配置文件 > 默认值
func loadConfig() (*config.Config, error) {
	cfg := config.NewConfig()
	if *configFile != "" {
		var err error
		if cfg, err = config.Load(*configFile); err != nil {
			return nil, err
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if *identityFile != "" {
		cfg.Identity.KeyFile = *identityFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
