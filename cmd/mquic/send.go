package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dep2p/go-mquic"
	"github.com/dep2p/go-mquic/internal/core/bandwidth"
)

func runSend(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("send", flag.ContinueOnError)
	var common commonFlags
	common.register(fs)
	addr := fs.String("addr", "", "接收方地址（默认使用配置中的 listen_addr）")
	local := fs.String("local", "", "本地绑定地址（默认随机端口）")
	copies := fs.Int("copies", 1, "每个文件重复发送的份数")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "用法: mquic send [参数] FILE...")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	setupLogging(common.verbose)

	if fs.NArg() == 0 {
		fs.Usage()
		return fmt.Errorf("至少需要一个文件")
	}
	if *copies < 1 {
		return fmt.Errorf("--copies 必须 >= 1，得到 %d", *copies)
	}

	cfg, err := common.load(fs)
	if err != nil {
		return err
	}
	if *local != "" {
		cfg.Transport.DialLocalAddr = *local
	}
	remote := *addr
	if remote == "" {
		remote = cfg.Transport.ListenAddr
	}

	payloads, err := readPayloads(fs.Args(), *copies)
	if err != nil {
		return err
	}

	if common.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, common.timeout)
		defer cancel()
	}

	conn, err := mquic.Dial(ctx, remote, mquic.WithConfig(cfg))
	if err != nil {
		return fmt.Errorf("连接 %s: %w", remote, err)
	}

	sendErr := conn.Send(ctx, payloads)
	bw := conn.Bandwidth()
	closeErr := conn.Close()
	if sendErr != nil {
		return fmt.Errorf("发送: %w", sendErr)
	}
	if closeErr != nil {
		return fmt.Errorf("关闭: %w", closeErr)
	}

	total := 0
	for _, p := range payloads {
		total += len(p)
	}
	rate := "-"
	if r, ok := bw.RateOut(); ok {
		rate = bandwidth.FormatRate(r)
	}
	fmt.Printf("已发送 %d 条流，共 %s，%d 个数据报，%s\n",
		len(payloads), bandwidth.FormatBytes(int64(total)), bw.PacketsOut, rate)
	return nil
}

// readPayloads 读取文件，每个文件重复 copies 次
func readPayloads(paths []string, copies int) ([][]byte, error) {
	payloads := make([][]byte, 0, len(paths)*copies)
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("读取 %s: %w", path, err)
		}
		for i := 0; i < copies; i++ {
			payloads = append(payloads, data)
		}
	}
	return payloads, nil
}
