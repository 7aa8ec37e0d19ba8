package bandwidth

import (
	"time"

	"github.com/benbjohnson/clock"
)

// ============================================================================
//                              带宽计数器
// ============================================================================

// Counter 双向带宽计数器
type Counter struct {
	in  *Meter
	out *Meter
}

// NewCounter 创建带宽计数器
func NewCounter(clk clock.Clock) *Counter {
	return &Counter{
		in:  NewMeter(clk),
		out: NewMeter(clk),
	}
}

// LogSent 记录发送的数据报
func (c *Counter) LogSent(size int) {
	c.out.Mark(size)
}

// LogRecv 记录接收的数据报
func (c *Counter) LogRecv(size int) {
	c.in.Mark(size)
}

// Stats 返回当前统计
func (c *Counter) Stats() Stats {
	in := c.in.Snapshot()
	out := c.out.Snapshot()
	return Stats{
		BytesIn:    in.Bytes,
		BytesOut:   out.Bytes,
		PacketsIn:  in.Packets,
		PacketsOut: out.Packets,
		In:         in,
		Out:        out,
	}
}

// Reset 重置统计
func (c *Counter) Reset() {
	c.in.Reset()
	c.out.Reset()
}

// Stats 带宽统计快照
type Stats struct {
	BytesIn    uint64
	BytesOut   uint64
	PacketsIn  uint64
	PacketsOut uint64

	In  MeterSnapshot
	Out MeterSnapshot
}

// RateIn 入站速率（字节/秒）
func (s Stats) RateIn() (float64, bool) { return s.In.Rate() }

// RateOut 出站速率（字节/秒）
func (s Stats) RateOut() (float64, bool) { return s.Out.Rate() }

// Active 返回是否有过任何流量
func (s Stats) Active() bool { return s.PacketsIn+s.PacketsOut > 0 }

// Elapsed 返回任一方向最早到最晚活动的时间跨度
func (s Stats) Elapsed() time.Duration {
	var first, last time.Time
	for _, m := range []MeterSnapshot{s.In, s.Out} {
		if m.Packets == 0 {
			continue
		}
		if first.IsZero() || m.First.Before(first) {
			first = m.First
		}
		if m.Last.After(last) {
			last = m.Last
		}
	}
	if first.IsZero() {
		return 0
	}
	return last.Sub(first)
}
