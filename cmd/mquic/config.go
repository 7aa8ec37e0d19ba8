package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/dep2p/go-mquic/config"
)

// commonFlags send 和 recv 共用的参数
//
// 命令行参数覆盖配置文件中的同名项；未显式指定的参数不覆盖。
type commonFlags struct {
	configFile  string
	maxDatagram int
	frameMin    int
	frameMax    int
	pacing      config.Duration
	seed        uint64
	timeout     time.Duration
	verbose     bool
}

func (f *commonFlags) register(fs *flag.FlagSet) {
	def := config.NewConfig()
	fs.StringVar(&f.configFile, "config", "", "JSON 配置文件路径")
	fs.IntVar(&f.maxDatagram, "max-datagram", def.Transport.MaxDatagramSize, "最大数据报字节数")
	fs.IntVar(&f.frameMin, "frame-min", def.Stream.FrameSizeMin, "Frame 大小下限")
	fs.IntVar(&f.frameMax, "frame-max", def.Stream.FrameSizeMax, "Frame 大小上限")
	f.pacing = def.Stream.Pacing
	fs.Var(&f.pacing, "pacing", "同一流相邻数据包间隔（0 = 不限速）")
	fs.Uint64Var(&f.seed, "seed", 0, "Frame 大小随机种子（0 = 随机）")
	fs.DurationVar(&f.timeout, "timeout", 0, "整体超时（0 = 不限）")
	fs.BoolVar(&f.verbose, "v", false, "输出 debug 日志")
}

// load 读取配置文件并应用显式指定的参数
func (f *commonFlags) load(fs *flag.FlagSet) (*config.Config, error) {
	cfg := config.NewConfig()
	if f.configFile != "" {
		loaded, err := config.LoadFile(f.configFile)
		if err != nil {
			return nil, fmt.Errorf("加载配置文件: %w", err)
		}
		cfg = loaded
	}

	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "max-datagram":
			cfg.Transport.MaxDatagramSize = f.maxDatagram
		case "frame-min":
			cfg.Stream.FrameSizeMin = f.frameMin
		case "frame-max":
			cfg.Stream.FrameSizeMax = f.frameMax
		case "pacing":
			cfg.Stream.Pacing = f.pacing
		case "seed":
			cfg.Stream.Seed = f.seed
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("配置无效: %w", err)
	}
	return cfg, nil
}
