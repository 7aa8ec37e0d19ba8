// Package main 提供 mquic 命令行入口
//
// 子命令：
//
//	mquic send [flags] FILE...   把每个文件作为一条流发送
//	mquic recv [flags]           接收并重组，输出统计
//	mquic gen  [flags]           生成随机测试文件
//	mquic version                显示版本
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dep2p/go-mquic"
	ulogger "github.com/dep2p/go-mquic/internal/util/logger"
	"github.com/dep2p/go-mquic/pkg/lib/log"
)

var logger = log.Logger("mquic/cmd")

// command 一个子命令
type command struct {
	name  string
	usage string
	run   func(ctx context.Context, args []string) error
}

var commands = []command{
	{name: "send", usage: "发送文件", run: runSend},
	{name: "recv", usage: "接收并输出统计", run: runRecv},
	{name: "gen", usage: "生成随机测试文件", run: runGen},
	{name: "version", usage: "显示版本", run: runVersion},
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		printHelp()
		return flag.ErrHelp
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for _, c := range commands {
		if c.name == args[0] {
			return c.run(ctx, args[1:])
		}
	}

	printHelp()
	return fmt.Errorf("未知子命令 %q", args[0])
}

// setupLogging 安装日志 Handler，verbose 时默认级别为 debug
func setupLogging(verbose bool) {
	cfg := ulogger.ConfigFromEnv()
	if verbose {
		cfg.DefaultLevel = log.LevelDebug
	}
	ulogger.Install(cfg, os.Stderr)
}

func runVersion(context.Context, []string) error {
	fmt.Printf("mquic %s (protocol %d)\n", mquic.Version, mquic.ProtocolVersion)
	return nil
}

func printHelp() {
	fmt.Fprintln(os.Stderr, "用法: mquic <子命令> [参数]")
	fmt.Fprintln(os.Stderr)
	for _, c := range commands {
		fmt.Fprintf(os.Stderr, "  %-8s %s\n", c.name, c.usage)
	}
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "环境变量:")
	fmt.Fprintf(os.Stderr, "  %s  日志级别，如 demuxer=debug,info\n", ulogger.EnvLevel)
	fmt.Fprintf(os.Stderr, "  %s  日志格式 text|json\n", ulogger.EnvFormat)
	logger.Debug("显示帮助")
}
