package metrics

import (
	"time"

	"github.com/dep2p/go-mquic/internal/core/wire"
)

// Stats 单条流（或会话汇总）的统计快照
type Stats struct {
	// StreamID 流 ID，0 表示会话汇总
	StreamID uint32

	// Packets 数据包数
	Packets uint64

	// Frames 帧数
	Frames uint64

	// Bytes 数据报线路字节数（含包头）
	Bytes uint64

	// First 第一个数据包的时间
	First time.Time

	// Last 最后一次观察或结束的时间
	Last time.Time

	// Finalized 是否已停止计时
	Finalized bool
}

// Overall 是否为会话汇总
func (s Stats) Overall() bool { return s.StreamID == wire.StreamIDOverall }

// Elapsed 返回第一个数据包到最后一个数据包的时间跨度
func (s Stats) Elapsed() time.Duration {
	if s.Packets == 0 {
		return 0
	}
	return s.Last.Sub(s.First)
}

// BytesPerSecond 字节速率，耗时为 0 时 ok=false
func (s Stats) BytesPerSecond() (float64, bool) {
	return s.perSecond(s.Bytes)
}

// PacketsPerSecond 包速率，耗时为 0 时 ok=false
func (s Stats) PacketsPerSecond() (float64, bool) {
	return s.perSecond(s.Packets)
}

func (s Stats) perSecond(n uint64) (float64, bool) {
	elapsed := s.Elapsed()
	if elapsed <= 0 {
		return 0, false
	}
	return float64(n) / elapsed.Seconds(), true
}

// observe 记录一个数据包
func (s *Stats) observe(now time.Time, frames, wireLen int) {
	if s.Packets == 0 {
		s.First = now
	}
	s.Last = now
	s.Packets++
	s.Frames += uint64(frames)
	s.Bytes += uint64(wireLen)
}

// finalize 停止计时，重复调用无效
func (s *Stats) finalize(now time.Time) {
	if s.Finalized {
		return
	}
	s.Finalized = true
	if s.Packets > 0 {
		s.Last = now
	}
}

// Report 一轮接收的统计报告
type Report struct {
	// Overall 会话汇总
	Overall Stats

	// Streams 按流 ID 升序排列
	Streams []Stats

	// Dropped 本轮丢弃的数据报（畸形、重复或无效流 ID）
	Dropped uint64
}

// Stream 按 ID 查找流统计
func (r Report) Stream(id uint32) (Stats, bool) {
	for _, s := range r.Streams {
		if s.StreamID == id {
			return s, true
		}
	}
	return Stats{}, false
}
