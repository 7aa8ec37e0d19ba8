package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector 将 Collector 导出为 Prometheus 指标
//
// 累计计数使用 counter，本轮的流统计使用带 stream 标签的 gauge。
type PrometheusCollector struct {
	source *Collector

	packets *prometheus.Desc
	frames  *prometheus.Desc
	bytes   *prometheus.Desc
	dropped *prometheus.Desc
	rounds  *prometheus.Desc

	streamPackets *prometheus.Desc
	streamBytes   *prometheus.Desc
	streamElapsed *prometheus.Desc
}

var _ prometheus.Collector = (*PrometheusCollector)(nil)

// NewPrometheusCollector 创建 Prometheus 导出器
func NewPrometheusCollector(namespace string, source *Collector) *PrometheusCollector {
	desc := func(name, help string, labels ...string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, labels, nil)
	}
	return &PrometheusCollector{
		source:        source,
		packets:       desc("received_packets_total", "Data packets received."),
		frames:        desc("received_frames_total", "Frames received."),
		bytes:         desc("received_bytes_total", "Wire bytes of received data packets."),
		dropped:       desc("dropped_datagrams_total", "Datagrams dropped by the receiver."),
		rounds:        desc("rounds_total", "Completed receive rounds."),
		streamPackets: desc("stream_packets", "Packets observed for a stream in the current round.", "stream"),
		streamBytes:   desc("stream_bytes", "Wire bytes observed for a stream in the current round.", "stream"),
		streamElapsed: desc("stream_elapsed_seconds", "Time from first to last packet of a stream in the current round.", "stream"),
	}
}

// Describe 实现 prometheus.Collector
func (p *PrometheusCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- p.packets
	ch <- p.frames
	ch <- p.bytes
	ch <- p.dropped
	ch <- p.rounds
	ch <- p.streamPackets
	ch <- p.streamBytes
	ch <- p.streamElapsed
}

// Collect 实现 prometheus.Collector
func (p *PrometheusCollector) Collect(ch chan<- prometheus.Metric) {
	totals := p.source.Totals()
	ch <- prometheus.MustNewConstMetric(p.packets, prometheus.CounterValue, float64(totals.Packets))
	ch <- prometheus.MustNewConstMetric(p.frames, prometheus.CounterValue, float64(totals.Frames))
	ch <- prometheus.MustNewConstMetric(p.bytes, prometheus.CounterValue, float64(totals.Bytes))
	ch <- prometheus.MustNewConstMetric(p.dropped, prometheus.CounterValue, float64(totals.Dropped))
	ch <- prometheus.MustNewConstMetric(p.rounds, prometheus.CounterValue, float64(totals.Rounds))

	report := p.source.Snapshot()
	for _, s := range append(report.Streams, report.Overall) {
		label := strconv.FormatUint(uint64(s.StreamID), 10)
		ch <- prometheus.MustNewConstMetric(p.streamPackets, prometheus.GaugeValue, float64(s.Packets), label)
		ch <- prometheus.MustNewConstMetric(p.streamBytes, prometheus.GaugeValue, float64(s.Bytes), label)
		ch <- prometheus.MustNewConstMetric(p.streamElapsed, prometheus.GaugeValue, s.Elapsed().Seconds(), label)
	}
}
