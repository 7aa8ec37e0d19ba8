// Package mquic 在单个数据报 socket 上多路复用多条字节流
//
// 一端 Listen 等待握手，另一端 Dial 发起握手。握手完成后发送方调用
// Send 把若干负载切分为 Frame 并行发送，接收方调用 Receive 按偏移重组，
// 并得到每条流和会话整体的统计。
//
// 快速开始：
//
//	// 接收方
//	conn, err := mquic.Listen(ctx, "127.0.0.1:4422")
//	if err != nil {
//	    return err
//	}
//	defer conn.Close()
//	res, err := conn.Receive(ctx)
//
//	// 发送方
//	conn, err := mquic.Dial(ctx, "127.0.0.1:4422",
//	    mquic.WithFrameSizeRange(1000, 2000),
//	    mquic.WithPacing(time.Millisecond),
//	)
//	if err != nil {
//	    return err
//	}
//	defer conn.Close() // 发送 FIN
//	err = conn.Send(ctx, [][]byte{a, b, c})
//
// 协议没有重传和拥塞控制，丢失的数据报不会恢复。
package mquic
