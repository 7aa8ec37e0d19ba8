// Package muxer 实现发送端的流多路复用
//
// Multiplexer 把一组负载作为 N 条独立的流发送到同一个会话上：
//
//  1. 按提交顺序分配流 ID 1..N
//  2. 为每条流选择 Frame 大小并计算切分参数；任何一条流的参数无效时，
//     在发送第一个数据报之前返回错误
//  3. 每条流一个发送协程（errgroup），共享会话的发送路径；
//     每发送一个包后等待该流的节奏限速器
//  4. 所有流发送完毕后发送一个 END_OF_SESSION_DATA
//
// 空负载的流不发送任何包。任一发送失败会取消其余流并返回该错误。
package muxer
