package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/dep2p/go-mquic/pkg/lib/log"
)

// Setup 按环境变量安装默认 Handler，输出到 stderr
//
// 之后所有 log.Logger 获取的组件日志器都按子系统级别过滤。
//
// 示例:
//
//	# 所有组件 info，解复用器 debug
//	MQUIC_LOG_LEVEL=demuxer=debug,info
func Setup() *slog.Logger {
	return Install(ConfigFromEnv(), os.Stderr)
}

// Install 使用给定配置安装默认 Handler
func Install(cfg *Config, w io.Writer) *slog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	SetOutput(w)
	l := slog.New(newHandler(cfg, &dynamicWriter{}))
	log.SetDefault(l)
	return l
}

// New 创建不修改全局状态的 Logger
func New(cfg *Config, w io.Writer) *slog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return slog.New(newHandler(cfg, w))
}

// SetOutput 设置全局日志输出目标
//
// 已通过 Install 安装的 Handler 会立即输出到新的 writer。
func SetOutput(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	globalOutputMu.Lock()
	globalOutput = w
	globalOutputMu.Unlock()
}

// Discard 返回一个丢弃所有日志的 Logger
//
// 主要用于测试，避免日志输出干扰测试结果。
func Discard() *slog.Logger {
	return slog.New(DiscardHandler())
}
