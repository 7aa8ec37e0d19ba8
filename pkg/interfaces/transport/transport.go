// Package transport 定义数据报传输接口
//
// 传输层只负责收发完整的数据报：
// - 一次 WriteTo 对应线路上的一个数据报
// - 一次 ReadFrom 返回一个完整的数据报
// - 不保证可靠、不保证有序
package transport

import (
	"context"
	"net"
)

// ============================================================================
//                              Transport 接口
// ============================================================================

// Transport 数据报传输接口
//
// 会话层通过 Transport 获取 net.PacketConn，握手、数据、确认和拆除都走同一个 socket。
type Transport interface {
	// Listen 在本地地址上绑定数据报 socket
	Listen(ctx context.Context, addr string) (net.PacketConn, error)

	// Dial 绑定一个本地 socket 并解析远端地址
	//
	// 返回的 socket 未 connect，可以用 WriteTo 发往远端，
	// 也能收到远端从任意端口发回的数据报。
	Dial(ctx context.Context, addr string) (net.PacketConn, net.Addr, error)

	// Network 返回网络名（如 "udp"、"mem"）
	Network() string
}
