// Package bandwidth 提供 socket 级流量统计
//
// 与 metrics 包按流统计数据包不同，bandwidth 统计会话所用的
// net.PacketConn 上收发的全部数据报：握手、数据、ACK 和 FIN 都计入。
//
// # 快速开始
//
//	counter := bandwidth.NewCounter(clock.New())
//	pc = bandwidth.NewMeteredConn(pc, counter)
//
//	// ... 会话在 pc 上收发 ...
//
//	stats := counter.Stats()
//	fmt.Println(bandwidth.FormatBytes(int64(stats.BytesIn)))
//
// # 速率计算
//
// 速率 = 字节数 / (最后一次活动 - 第一次活动)。
// 只有一次活动或没有活动时速率无定义，Rate 返回 ok=false。
//
// # 并发安全
//
// Meter 使用互斥锁保护，MeteredConn 可被多个发送协程共享。
package bandwidth
