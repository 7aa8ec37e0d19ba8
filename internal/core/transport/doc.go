// Package transport 实现传输层
//
// 传输层只负责提供 net.PacketConn：会话层在其上完成握手、收发数据包。
//
// # 子包
//
//   - udp: 基于 UDP socket 的默认传输，支持设置 socket 缓冲区
//   - mem: 进程内的内存数据报网络，用于确定性测试
//
// # 使用示例
//
//	tr := udp.New(udp.DefaultConfig())
//	mgr := transport.NewManager(tr)
//	defer mgr.Close()
//
//	// 接收端
//	pc, err := mgr.Listen(ctx, "127.0.0.1:4422")
//
//	// 发送端
//	pc, raddr, err := mgr.Dial(ctx, "127.0.0.1:4422")
//
// # 并发安全
//
// Manager 使用 sync.Mutex 保护已打开的连接集合。
//
// # Fx 模块集成
//
//	app := fx.New(
//	    config.Module(),
//	    transport.Module(),
//	)
package transport
