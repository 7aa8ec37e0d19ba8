package demuxer

import (
	"context"
	"errors"
	"net"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dep2p/go-mquic/config"
	"github.com/dep2p/go-mquic/internal/core/metrics"
	"github.com/dep2p/go-mquic/internal/core/session"
	"github.com/dep2p/go-mquic/internal/core/wire"
	"github.com/dep2p/go-mquic/pkg/lib/log"
)

var logger = log.Logger("core/demuxer")

const (
	// DefaultMaxStreamSize 单条流允许的最大偏移
	DefaultMaxStreamSize = 1 << 30

	// DefaultMaxRoundBytes 一轮内所有流重组缓冲区的总长上限
	DefaultMaxRoundBytes = 2 << 30

	// DefaultMaxStreams 一轮内允许的最大流数量
	DefaultMaxStreams = 1 << 16
)

// Session 解复用器需要的会话能力
type Session interface {
	ReadPacket(ctx context.Context) (*session.Inbound, error)
	SendPacketTo(ctx context.Context, p *wire.Packet, addr net.Addr) error
	Close() error
}

// Options 解复用器选项
type Options struct {
	// DuplicateWindow 去重窗口大小，0 表示不去重
	DuplicateWindow int

	// MaxStreamSize 单条流允许的最大长度，超出的 Frame 被丢弃
	MaxStreamSize uint64

	// MaxRoundBytes 一轮内重组缓冲区总长上限，超出的 Frame 被丢弃
	MaxRoundBytes uint64

	// MaxStreams 一轮内的流数量上限，新流超出时其 Frame 被丢弃
	MaxStreams int
}

// DefaultOptions 返回默认选项
func DefaultOptions() Options {
	return Options{
		DuplicateWindow: config.DefaultSessionConfig().DuplicateWindow,
		MaxStreamSize:   DefaultMaxStreamSize,
		MaxRoundBytes:   DefaultMaxRoundBytes,
		MaxStreams:      DefaultMaxStreams,
	}
}

// OptionsFromConfig 从统一配置创建选项
func OptionsFromConfig(cfg *config.Config) Options {
	opts := DefaultOptions()
	if cfg != nil {
		opts.DuplicateWindow = cfg.Session.DuplicateWindow
	}
	return opts
}

// Result 一轮接收的结果
type Result struct {
	// Streams 按流 ID 升序排列
	Streams []StreamPayload

	// Report 本轮统计
	Report metrics.Report
}

// Stream 按 ID 查找流
func (r *Result) Stream(id uint32) (StreamPayload, bool) {
	for _, s := range r.Streams {
		if s.ID == id {
			return s, true
		}
	}
	return StreamPayload{}, false
}

// Demultiplexer 流解复用器
//
// 只允许一个协程调用 Receive。
type Demultiplexer struct {
	sess      Session
	collector *metrics.Collector
	opts      Options
	seen      *lru.Cache[uint32, struct{}]

	round    *reassembler
	roundEnd bool
	finished bool
	acks     uint64
}

// New 创建解复用器，collector 为 nil 时创建一个使用系统时钟的收集器
func New(sess Session, collector *metrics.Collector, opts Options) (*Demultiplexer, error) {
	if sess == nil {
		return nil, ErrNilSession
	}
	if collector == nil {
		collector = metrics.NewCollector(nil)
	}
	if opts.MaxStreamSize == 0 {
		opts.MaxStreamSize = DefaultMaxStreamSize
	}
	if opts.MaxRoundBytes == 0 {
		opts.MaxRoundBytes = DefaultMaxRoundBytes
	}
	if opts.MaxStreams <= 0 {
		opts.MaxStreams = DefaultMaxStreams
	}

	d := &Demultiplexer{
		sess:      sess,
		collector: collector,
		opts:      opts,
		round:     newReassembler(opts),
	}
	if opts.DuplicateWindow > 0 {
		seen, err := lru.New[uint32, struct{}](opts.DuplicateWindow)
		if err != nil {
			return nil, err
		}
		d.seen = seen
	}
	return d, nil
}

// Collector 返回统计收集器
func (d *Demultiplexer) Collector() *metrics.Collector { return d.collector }

// AcksSent 返回已回复的 ACK 数
func (d *Demultiplexer) AcksSent() uint64 { return d.acks }

// Receive 接收一轮数据，直到 END_OF_SESSION_DATA 或 FIN
func (d *Demultiplexer) Receive(ctx context.Context) (*Result, error) {
	if d.finished {
		return nil, ErrSessionFinished
	}
	if d.roundEnd {
		d.collector.Reset()
		d.round = newReassembler(d.opts)
		d.roundEnd = false
	}

	for {
		in, err := d.sess.ReadPacket(ctx)
		if err != nil {
			return nil, err
		}

		flag := in.Packet.Flag
		switch {
		case flag.IsData():
			d.handleData(ctx, in)

		case flag == wire.FlagEndOfSessionData:
			d.collector.End()
			d.roundEnd = true
			result := &Result{
				Streams: d.round.payloads(),
				Report:  d.collector.Snapshot(),
			}
			logger.Info("本轮接收完成", "streams", len(result.Streams), "packets", result.Report.Overall.Packets)
			return result, nil

		case flag == wire.FlagFIN:
			d.finished = true
			if err := d.sess.Close(); err != nil {
				logger.Debug("关闭会话失败", "error", err)
			}
			logger.Info("对端结束会话")
			return nil, ErrSessionFinished

		default:
			logger.Debug("忽略控制包", "flag", flag, "id", in.Packet.ID)
		}
	}
}

// handleData 处理一个数据包
func (d *Demultiplexer) handleData(ctx context.Context, in *session.Inbound) {
	if d.seen != nil {
		if ok, _ := d.seen.ContainsOrAdd(in.Packet.ID, struct{}{}); ok {
			logger.Debug("丢弃重复包", "id", in.Packet.ID)
			d.collector.Drop()
			return
		}
	}

	valid := in.Frames[:0:0]
	for _, f := range in.Frames {
		if f.StreamID == wire.StreamIDOverall {
			logger.Warn("丢弃流 ID 为 0 的帧", "packet", in.Packet.ID, "offset", f.Offset)
			continue
		}
		if f.End() > d.opts.MaxStreamSize || f.End() < f.Offset {
			logger.Warn("丢弃越界帧", "stream", f.StreamID, "offset", f.Offset, "len", len(f.Data))
			continue
		}
		if err := d.round.place(f); err != nil {
			logger.Warn("丢弃帧", "stream", f.StreamID, "offset", f.Offset, "len", len(f.Data), "error", err)
			continue
		}
		valid = append(valid, f)
	}

	if len(valid) == 0 && len(in.Frames) > 0 {
		d.collector.Drop()
	} else {
		if in.Packet.Flag == wire.FlagLastOfStream {
			for _, f := range valid {
				d.round.markComplete(f.StreamID)
			}
		}
		d.collector.Observe(in.Packet, valid, in.WireLen)
	}

	d.ack(ctx, in.From)
}

// ack 向发送方回复 ACK，失败只记录日志
func (d *Demultiplexer) ack(ctx context.Context, to net.Addr) {
	if err := d.sess.SendPacketTo(ctx, wire.NewControl(wire.FlagACK), to); err != nil {
		if !errors.Is(err, context.Canceled) {
			logger.Debug("发送 ACK 失败", "to", to, "error", err)
		}
		return
	}
	d.acks++
}
