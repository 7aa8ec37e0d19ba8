// Package session 实现会话状态机
//
// 会话建立在单个 net.PacketConn 上，只服务一个对端。
//
// # 状态转换
//
//	监听方：Closed → AwaitingSYN → Established
//	连接方：Closed → SynSent     → Established
//	关闭：  Established → Closing → Closed
//
// 握手只有一次往返：连接方发送 SYN，监听方回复 SYN_ACK。
// 握手期间收到的畸形数据报被丢弃，继续等待；第一个合法包决定握手结果。
// 没有重传，超时只来自 context 或 Options.HandshakeTimeout。
//
// # 包 ID
//
// 每个会话维护自己的发送包计数器，第一个包 ID 为 1，单调递增。
//
// # 并发安全
//
// 发送路径由写锁串行化，多条流的发送协程可以共享同一个 Session。
// 读取路径只允许一个读者（解复用器或握手流程）。
package session
