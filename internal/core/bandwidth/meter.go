package bandwidth

import (
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// ============================================================================
//                              流量计量器
// ============================================================================

// Meter 单方向流量计量器
type Meter struct {
	clock clock.Clock

	mu      sync.Mutex
	bytes   uint64
	packets uint64
	first   time.Time
	last    time.Time
}

// NewMeter 创建计量器
func NewMeter(clk clock.Clock) *Meter {
	if clk == nil {
		clk = clock.New()
	}
	return &Meter{clock: clk}
}

// Mark 记录一个 n 字节的数据报
func (m *Meter) Mark(n int) {
	if n < 0 {
		return
	}
	now := m.clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.packets == 0 {
		m.first = now
	}
	m.last = now
	m.bytes += uint64(n)
	m.packets++
}

// Snapshot 获取统计快照
func (m *Meter) Snapshot() MeterSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return MeterSnapshot{
		Bytes:   m.bytes,
		Packets: m.packets,
		First:   m.first,
		Last:    m.last,
	}
}

// Reset 重置计量器
func (m *Meter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bytes, m.packets = 0, 0
	m.first, m.last = time.Time{}, time.Time{}
}

// MeterSnapshot 计量器快照
type MeterSnapshot struct {
	// Bytes 累计字节数
	Bytes uint64

	// Packets 累计数据报数
	Packets uint64

	// First 第一次活动时间
	First time.Time

	// Last 最后一次活动时间
	Last time.Time
}

// Elapsed 返回第一次到最后一次活动的时间跨度
func (s MeterSnapshot) Elapsed() time.Duration {
	if s.Packets == 0 {
		return 0
	}
	return s.Last.Sub(s.First)
}

// Rate 返回字节速率（字节/秒），时间跨度为 0 时 ok=false
func (s MeterSnapshot) Rate() (float64, bool) {
	elapsed := s.Elapsed()
	if elapsed <= 0 {
		return 0, false
	}
	return float64(s.Bytes) / elapsed.Seconds(), true
}

// ============================================================================
//                              辅助函数
// ============================================================================

// FormatBytes 格式化字节数为人类可读格式
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// FormatRate 格式化速率为人类可读格式
func FormatRate(bytesPerSec float64) string {
	const unit = 1024
	if bytesPerSec < unit {
		return fmt.Sprintf("%.2f B/s", bytesPerSec)
	}
	div, exp := float64(unit), 0
	for n := bytesPerSec / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %ciB/s", bytesPerSec/div, "KMGTPE"[exp])
}
