package metrics

import (
	"sort"
	"sync"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-mquic/internal/core/wire"
	"github.com/dep2p/go-mquic/pkg/lib/log"
)

var logger = log.Logger("core/metrics")

// Collector 接收端统计收集器
type Collector struct {
	clock clock.Clock

	mu      sync.Mutex
	overall Stats
	streams map[uint32]*Stats
	dropped uint64

	// 跨轮累计，Reset 不清零
	totals Totals
}

// Totals 跨轮累计计数
type Totals struct {
	Packets uint64
	Frames  uint64
	Bytes   uint64
	Dropped uint64
	Rounds  uint64
	Streams uint64
}

// NewCollector 创建统计收集器，clk 为 nil 时使用系统时钟
func NewCollector(clk clock.Clock) *Collector {
	if clk == nil {
		clk = clock.New()
	}
	return &Collector{
		clock:   clk,
		overall: Stats{StreamID: wire.StreamIDOverall},
		streams: make(map[uint32]*Stats),
	}
}

// Observe 记录一个入站数据包
//
// frames 是该包中有效的帧，wireLen 是整个数据报的字节数。
// 包中出现的每条流各计一个包，会话汇总只计一个包。
func (c *Collector) Observe(p *wire.Packet, frames []wire.Frame, wireLen int) {
	if p == nil || !p.Flag.IsData() {
		return
	}
	now := c.clock.Now()

	perStream := make(map[uint32]int, 1)
	order := make([]uint32, 0, 1)
	valid := 0
	for _, f := range frames {
		if f.StreamID == wire.StreamIDOverall {
			continue
		}
		if _, ok := perStream[f.StreamID]; !ok {
			order = append(order, f.StreamID)
		}
		perStream[f.StreamID]++
		valid++
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.overall.observe(now, valid, wireLen)
	c.totals.Packets++
	c.totals.Frames += uint64(valid)
	c.totals.Bytes += uint64(wireLen)

	for _, id := range order {
		s, ok := c.streams[id]
		if !ok {
			s = &Stats{StreamID: id}
			c.streams[id] = s
			c.totals.Streams++
		}
		s.observe(now, perStream[id], wireLen)
		if p.Flag == wire.FlagLastOfStream {
			s.finalize(now)
		}
	}
}

// Drop 记录一个被丢弃的数据报
func (c *Collector) Drop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dropped++
	c.totals.Dropped++
}

// End 结束本轮：停止会话汇总和所有未结束流的计时
func (c *Collector) End() {
	now := c.clock.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.overall.finalize(now)
	for _, s := range c.streams {
		s.finalize(now)
	}
	c.totals.Rounds++
	logger.Debug("本轮统计结束", "streams", len(c.streams), "packets", c.overall.Packets)
}

// Reset 清空本轮统计，开始新一轮
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.overall = Stats{StreamID: wire.StreamIDOverall}
	c.streams = make(map[uint32]*Stats)
	c.dropped = 0
}

// Snapshot 返回本轮统计报告
func (c *Collector) Snapshot() Report {
	c.mu.Lock()
	defer c.mu.Unlock()

	r := Report{
		Overall: c.overall,
		Streams: make([]Stats, 0, len(c.streams)),
		Dropped: c.dropped,
	}
	for _, s := range c.streams {
		r.Streams = append(r.Streams, *s)
	}
	sort.Slice(r.Streams, func(i, j int) bool {
		return r.Streams[i].StreamID < r.Streams[j].StreamID
	})
	return r
}

// Totals 返回跨轮累计计数
func (c *Collector) Totals() Totals {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totals
}
