// Package metrics 提供接收端的流统计
//
// Collector 在接收循环中观察每一个数据包，按流和会话汇总：
//   - 数据包数、帧数、字节数（字节数按整个数据报的线路长度计）
//   - 第一个数据包到最后一个数据包的耗时
//   - 由以上两者得出的速率
//
// # 计时规则
//
// 流在收到它的第一个数据包时开始计时，收到 LAST_OF_STREAM_GROUP 时停止。
// 会话汇总（流 ID 0）在第一个数据包时开始，在 END_OF_SESSION_DATA 时停止，
// 此时所有仍未结束的流一并结束。END_OF_SESSION_DATA 本身不计入统计。
//
// 一个数据包包含多条流的帧时，每条流各计一次，汇总只计一次。
//
// # 快速开始
//
//	c := metrics.NewCollector(clock.New())
//	c.Observe(pkt, frames, wireLen)
//	c.End()
//
//	report := c.Snapshot()
//	metrics.LogReport(report)
//
// # Prometheus
//
// PrometheusCollector 把 Collector 的累计计数导出为 Prometheus 指标，
// 每轮的流统计以 gauge 形式导出。
//
// # 并发安全
//
// 所有方法都是并发安全的，Snapshot 可以与接收循环并发调用。
package metrics
