package metrics

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dep2p/go-mquic/internal/core/bandwidth"
)

// LogReport 逐条输出报告：每条流一行，最后是会话汇总
func LogReport(r Report) {
	for _, s := range r.Streams {
		logger.Info("流统计", statsArgs(s)...)
	}
	args := append(statsArgs(r.Overall), "streams", len(r.Streams), "dropped", r.Dropped)
	logger.Info("会话统计", args...)
}

func statsArgs(s Stats) []any {
	args := []any{
		"stream", s.StreamID,
		"packets", s.Packets,
		"frames", s.Frames,
		"bytes", s.Bytes,
		"elapsed", s.Elapsed(),
	}
	if rate, ok := s.BytesPerSecond(); ok {
		args = append(args, "rate", bandwidth.FormatRate(rate))
	}
	if pps, ok := s.PacketsPerSecond(); ok {
		args = append(args, "pps", fmt.Sprintf("%.1f", pps))
	}
	return args
}

// WriteReport 以表格形式写出报告，供命令行输出
func WriteReport(w io.Writer, r Report) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%-8s %10s %10s %14s %12s %14s %12s\n",
		"STREAM", "PACKETS", "FRAMES", "BYTES", "ELAPSED", "RATE", "PKT/S")
	for _, s := range r.Streams {
		writeRow(&b, fmt.Sprintf("%d", s.StreamID), s)
	}
	writeRow(&b, "overall", r.Overall)
	if r.Dropped > 0 {
		fmt.Fprintf(&b, "dropped datagrams: %d\n", r.Dropped)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeRow(b *strings.Builder, name string, s Stats) {
	rate, pps := "-", "-"
	if v, ok := s.BytesPerSecond(); ok {
		rate = bandwidth.FormatRate(v)
	}
	if v, ok := s.PacketsPerSecond(); ok {
		pps = fmt.Sprintf("%.1f", v)
	}
	fmt.Fprintf(b, "%-8s %10d %10d %14d %12s %14s %12s\n",
		name, s.Packets, s.Frames, s.Bytes, s.Elapsed().Round(time.Microsecond), rate, pps)
}
