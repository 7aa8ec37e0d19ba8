// Package demuxer 实现接收端的流解复用
//
// Demultiplexer 逐个读取会话上的数据包：
//   - 数据包（DATA / FIRST_OF_STREAM_GROUP / LAST_OF_STREAM_GROUP）：
//     每个 Frame 按偏移写入对应流的缓冲区，向发送方回复一个 ACK，
//     并交给 metrics.Collector 统计
//   - END_OF_SESSION_DATA：结束本轮，返回按流 ID 排序的结果
//   - FIN：关闭会话，返回 ErrSessionFinished
//   - 其他控制包：忽略
//
// Receive 可以多次调用，每次返回一轮数据；FIN 之后的调用都返回 ErrSessionFinished。
//
// 流 ID 为 0 的 Frame 被丢弃。配置了去重窗口时，最近出现过的包 ID 会被丢弃。
package demuxer
