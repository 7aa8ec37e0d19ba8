package bandwidth

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-mquic/pkg/lib/log"
)

var logger = log.Logger("core/bandwidth")

// ============================================================================
//                              报告器实现
// ============================================================================

// Reporter 周期性输出带宽统计日志
type Reporter struct {
	counter *Counter
	clock   clock.Clock

	mu     sync.Mutex
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewReporter 创建报告器
func NewReporter(counter *Counter, clk clock.Clock) *Reporter {
	if clk == nil {
		clk = clock.New()
	}
	return &Reporter{counter: counter, clock: clk}
}

// Start 启动定期报告，重复调用无效
func (r *Reporter) Start(interval time.Duration) {
	if interval <= 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopCh != nil {
		return
	}
	r.stopCh = make(chan struct{})
	r.doneCh = make(chan struct{})

	ticker := r.clock.Ticker(interval)
	go func(stopCh, doneCh chan struct{}) {
		defer close(doneCh)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.Log()
			case <-stopCh:
				return
			}
		}
	}(r.stopCh, r.doneCh)
}

// Stop 停止报告并等待后台协程退出
func (r *Reporter) Stop() {
	r.mu.Lock()
	stopCh, doneCh := r.stopCh, r.doneCh
	r.stopCh, r.doneCh = nil, nil
	r.mu.Unlock()

	if stopCh == nil {
		return
	}
	close(stopCh)
	<-doneCh
}

// Log 输出一次当前统计
func (r *Reporter) Log() {
	s := r.counter.Stats()
	args := []any{
		"bytesIn", FormatBytes(int64(s.BytesIn)),
		"bytesOut", FormatBytes(int64(s.BytesOut)),
		"packetsIn", s.PacketsIn,
		"packetsOut", s.PacketsOut,
	}
	if rate, ok := s.RateIn(); ok {
		args = append(args, "rateIn", FormatRate(rate))
	}
	if rate, ok := s.RateOut(); ok {
		args = append(args, "rateOut", FormatRate(rate))
	}
	logger.Info("带宽统计报告", args...)
}
