// Package mocks 提供统一的测试 Mock 实现
//
// # 核心 Mock
//
//   - MockPacketSender: 模拟多路复用器的发送端，记录发送的包
//   - MockPacketConn: 模拟 net.PacketConn，支持按函数覆盖读写行为
//
// 所有 Mock 都可以通过 XxxFunc 字段覆盖默认行为。
package mocks
