package muxer

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/dep2p/go-mquic/config"
	"github.com/dep2p/go-mquic/internal/core/packetizer"
	"github.com/dep2p/go-mquic/internal/core/wire"
	"github.com/dep2p/go-mquic/pkg/lib/log"
)

var logger = log.Logger("core/muxer")

// PacketSender 发送一个数据包（一个数据报）
//
// 实现必须是并发安全的，并负责分配包 ID。
type PacketSender interface {
	SendPacket(ctx context.Context, p *wire.Packet) error
}

// Options 多路复用器选项
type Options struct {
	// MaxDatagramSize 最大数据报长度
	MaxDatagramSize int

	// Sizer 为每条流选择 Frame 大小
	Sizer packetizer.FrameSizer

	// Pacing 同一条流相邻两个包的最小间隔，0 表示不限速
	Pacing time.Duration
}

// DefaultOptions 返回默认选项
func DefaultOptions() Options {
	sizer, _ := packetizer.NewRandomSizer(1000, 2000, 0)
	return Options{
		MaxDatagramSize: wire.DefaultMaxDatagramSize,
		Sizer:           sizer,
		Pacing:          time.Millisecond,
	}
}

// OptionsFromConfig 从统一配置创建选项
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	if cfg == nil {
		return DefaultOptions(), nil
	}
	sizer, err := packetizer.NewRandomSizer(cfg.Stream.FrameSizeMin, cfg.Stream.FrameSizeMax, cfg.Stream.Seed)
	if err != nil {
		return Options{}, err
	}
	return Options{
		MaxDatagramSize: cfg.Transport.MaxDatagramSize,
		Sizer:           sizer,
		Pacing:          cfg.Stream.Pacing.Duration(),
	}, nil
}

// StreamPlan 一条流的发送计划
type StreamPlan struct {
	ID      uint32
	Size    int
	Layout  packetizer.Layout
	Packets int

	payload []byte
}

// Multiplexer 流多路复用器
//
// 每次 Send 的流 ID 都从 1 开始，并发调用 Send 会依次执行。
type Multiplexer struct {
	sender PacketSender
	opts   Options

	// sendMu 保证一轮发送（全部流加 END_OF_SESSION_DATA）不与另一轮交错
	sendMu sync.Mutex
}

// New 创建多路复用器
func New(sender PacketSender, opts Options) *Multiplexer {
	if opts.MaxDatagramSize <= 0 {
		opts.MaxDatagramSize = wire.DefaultMaxDatagramSize
	}
	if opts.Sizer == nil {
		opts.Sizer = DefaultOptions().Sizer
	}
	return &Multiplexer{sender: sender, opts: opts}
}

// Plan 为每条负载分配流 ID 并计算切分参数
//
// 不发送任何数据。任何一条流的 Frame 大小无效都会返回错误。
func (m *Multiplexer) Plan(payloads [][]byte) ([]StreamPlan, error) {
	if uint64(len(payloads)) > math.MaxUint32 {
		return nil, ErrTooManyStreams
	}

	plans := make([]StreamPlan, 0, len(payloads))
	for i, payload := range payloads {
		id := uint32(i + 1)
		frameSize := m.opts.Sizer.FrameSize(id)
		layout, err := packetizer.NewLayout(frameSize, m.opts.MaxDatagramSize)
		if err != nil {
			return nil, fmt.Errorf("stream %d: %w", id, err)
		}
		plans = append(plans, StreamPlan{
			ID:      id,
			Size:    len(payload),
			Layout:  layout,
			Packets: layout.PacketCount(len(payload)),
			payload: payload,
		})
	}
	return plans, nil
}

// Send 将 payloads 作为多条流发送，结束后发送 END_OF_SESSION_DATA
func (m *Multiplexer) Send(ctx context.Context, payloads [][]byte) error {
	if m.sender == nil {
		return ErrNoSender
	}

	plans, err := m.Plan(payloads)
	if err != nil {
		return err
	}

	m.sendMu.Lock()
	defer m.sendMu.Unlock()

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	total := 0
	for _, plan := range plans {
		if plan.Packets == 0 {
			continue
		}
		total += plan.Packets
		plan := plan
		g.Go(func() error {
			return m.sendStream(gctx, plan)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := m.sender.SendPacket(ctx, wire.NewControl(wire.FlagEndOfSessionData)); err != nil {
		return fmt.Errorf("send END_OF_SESSION_DATA: %w", err)
	}

	logger.Info("所有流发送完成", "streams", len(plans), "packets", total, "elapsed", time.Since(start))
	return nil
}

// sendStream 顺序发送一条流的所有包
func (m *Multiplexer) sendStream(ctx context.Context, plan StreamPlan) error {
	var limiter *rate.Limiter
	if m.opts.Pacing > 0 {
		limiter = rate.NewLimiter(rate.Every(m.opts.Pacing), 1)
	}

	pz := packetizer.New(plan.ID, plan.payload, plan.Layout)
	sent := 0
	for p := pz.Next(); p != nil; p = pz.Next() {
		if err := m.sender.SendPacket(ctx, p); err != nil {
			return fmt.Errorf("stream %d packet %d/%d: %w", plan.ID, sent+1, plan.Packets, err)
		}
		sent++
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return err
			}
		}
	}

	logger.Debug("流发送完成", "stream", plan.ID, "bytes", plan.Size, "packets", sent, "frameSize", plan.Layout.FrameSize)
	return nil
}
