// Package wire 实现数据报线路格式的编解码
//
// 线路上只有两种结构：Packet（数据报）和 Frame（流片段）。
// 所有多字节字段使用网络字节序（大端）、固定宽度。
//
// # Packet 头部（13 字节）
//
//	+------+-----------+----------------+-----------------+
//	| flag | packet_id | payload_length |     payload     |
//	+------+-----------+----------------+-----------------+
//	|  1   |     4     |       8        | payload_length  |
//	+------+-----------+----------------+-----------------+
//
// # Frame 头部（20 字节）
//
//	+-----------+--------+-------------+-------------+
//	| stream_id | offset | data_length |    data     |
//	+-----------+--------+-------------+-------------+
//	|     4     |   8    |      8      | data_length |
//	+-----------+--------+-------------+-------------+
//
// Packet 的 payload 是零个或多个连续序列化的 Frame。
//
// # 安全性
//
// 所有网络输入都先经过 Decode。Decode 对每个长度字段做边界检查，
// 任何越界都返回 ErrMalformedPacket，绝不越界读取。
//
// # 使用示例
//
//	payload := wire.EncodeFrames([]wire.Frame{{StreamID: 1, Offset: 0, Data: data}})
//	buf := wire.Encode(&wire.Packet{Flag: wire.FlagData, ID: 7, Payload: payload})
//
//	pkt, frames, err := wire.Decode(buf)
//	if errors.Is(err, wire.ErrMalformedPacket) {
//	    // 丢弃该数据报
//	}
package wire
