package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/dep2p/go-mquic/internal/core/bandwidth"
)

// genAlphabet 生成文本使用的字符
const genAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func runGen(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("gen", flag.ContinueOnError)
	size := fs.Int64("size", 1<<20, "文件字节数")
	out := fs.String("out", "data.bin", "输出文件")
	seed := fs.Uint64("seed", 0, "随机种子（0 = 随机）")
	text := fs.Bool("text", true, "只生成字母数字")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *size < 0 {
		return fmt.Errorf("--size 不能为负数")
	}

	data := generate(*size, *seed, *text)
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		return fmt.Errorf("写入 %s: %w", *out, err)
	}
	fmt.Printf("已生成 %s (%s)\n", *out, bandwidth.FormatBytes(*size))
	return nil
}

// generate 生成 size 字节的随机数据
func generate(size int64, seed uint64, text bool) []byte {
	if seed == 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed+1))
	b := make([]byte, size)
	for i := range b {
		if text {
			b[i] = genAlphabet[rng.IntN(len(genAlphabet))]
		} else {
			b[i] = byte(rng.UintN(256))
		}
	}
	return b
}
