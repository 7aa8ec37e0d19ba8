// Package testutil 提供测试辅助工具
package testutil

import (
	"bytes"
	"math/rand/v2"
)

// 测试数据固件
//
// 提供测试中常用的负载，确保各包测试使用一致的数据。

const (
	// DefaultSeed 默认随机种子
	DefaultSeed uint64 = 42
)

// ThreeStreams 返回 A×5000、B×3000、C×1 三条负载
//
// 覆盖多包流、中等长度流和单字节流。
func ThreeStreams() [][]byte {
	return [][]byte{
		bytes.Repeat([]byte("A"), 5000),
		bytes.Repeat([]byte("B"), 3000),
		[]byte("C"),
	}
}

// RandomPayload 返回长度为 n 的确定性随机负载
func RandomPayload(n int, seed uint64) []byte {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(rng.UintN(256))
	}
	return b
}
