package mquic

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"go.uber.org/fx"
	"go.uber.org/multierr"

	"github.com/dep2p/go-mquic/internal/core/bandwidth"
	"github.com/dep2p/go-mquic/internal/core/demuxer"
	"github.com/dep2p/go-mquic/internal/core/metrics"
	"github.com/dep2p/go-mquic/internal/core/muxer"
	"github.com/dep2p/go-mquic/internal/core/session"
	"github.com/dep2p/go-mquic/pkg/lib/log"
)

var logger = log.Logger("mquic")

// DefaultCloseTimeout Close 发送 FIN 和停止组件的超时
const DefaultCloseTimeout = 5 * time.Second

// Result 一轮接收的结果
type Result = demuxer.Result

// StreamPayload 一条重组后的流
type StreamPayload = demuxer.StreamPayload

// State 会话状态
type State = session.State

// role 连接角色
type role int

const (
	roleListener role = iota
	roleDialer
)

func (r role) String() string {
	if r == roleListener {
		return "listener"
	}
	return "dialer"
}

// ============================================================================
//                              Conn
// ============================================================================

// Conn 一个已完成握手的 mquic 连接
//
// Send 可以从多个协程调用，每次调用是独立的一轮，按调用顺序依次发送；
// Receive 只允许一个协程调用。
type Conn struct {
	role role
	app  *fx.App
	comp *components

	sess  *session.Session
	mux   *muxer.Multiplexer
	demux *demuxer.Demultiplexer

	closeOnce sync.Once
	closeErr  error
}

// Listen 在 addr 上等待对端握手
//
// addr 为空时使用配置中的 ListenAddr。握手完成后返回。
func Listen(ctx context.Context, addr string, opts ...Option) (*Conn, error) {
	return open(ctx, roleListener, addr, opts)
}

// Dial 向 addr 发起握手
func Dial(ctx context.Context, addr string, opts ...Option) (*Conn, error) {
	return open(ctx, roleDialer, addr, opts)
}

// open 组装组件、打开 socket 并完成握手
func open(ctx context.Context, r role, addr string, opts []Option) (*Conn, error) {
	o, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}

	app, comp := buildFxApp(o)
	if err := app.Err(); err != nil {
		return nil, fmt.Errorf("build fx app: %w", err)
	}
	if err := app.Start(ctx); err != nil {
		return nil, fmt.Errorf("start fx app: %w", err)
	}
	c := &Conn{role: r, app: app, comp: comp}

	pc, remote, err := c.openSocket(ctx, o, addr)
	if err != nil {
		return nil, multierr.Append(err, c.stopApp())
	}
	pc = bandwidth.NewMeteredConn(pc, comp.counter)

	sessOpts := session.Options{
		MaxDatagramSize:  o.config.Transport.MaxDatagramSize,
		HandshakeTimeout: o.config.Session.HandshakeTimeout.Duration(),
		OnMalformed: func(net.Addr, error) {
			comp.collector.Drop()
		},
	}

	var sess *session.Session
	if r == roleListener {
		sess, err = session.Listen(ctx, pc, sessOpts)
	} else {
		sess, err = session.Connect(ctx, pc, remote, sessOpts)
	}
	if err != nil {
		pc.Close()
		return nil, multierr.Append(err, c.stopApp())
	}
	c.sess = sess

	muxOpts, err := muxer.OptionsFromConfig(o.config)
	if err != nil {
		return nil, multierr.Append(err, c.shutdown(false))
	}
	c.mux = muxer.New(sess, muxOpts)

	c.demux, err = demuxer.New(sess, comp.collector, demuxer.OptionsFromConfig(o.config))
	if err != nil {
		return nil, multierr.Append(err, c.shutdown(false))
	}

	logger.Info("连接已建立",
		"role", r,
		"session", log.TruncateID(sess.ID(), 8),
		"local", sess.LocalAddr(),
		"remote", sess.RemoteAddr())
	return c, nil
}

// openSocket 返回本地 socket，拨号时同时返回对端地址
func (c *Conn) openSocket(ctx context.Context, o *options, addr string) (net.PacketConn, net.Addr, error) {
	if o.packetConn != nil {
		if c.role == roleListener {
			return o.packetConn, nil, nil
		}
		remote, err := resolveRemote(o.packetConn, addr)
		if err != nil {
			return nil, nil, err
		}
		return o.packetConn, remote, nil
	}

	if c.role == roleListener {
		if addr == "" {
			addr = o.config.Transport.ListenAddr
		}
		pc, err := c.comp.manager.Listen(ctx, addr)
		return pc, nil, err
	}
	return c.comp.manager.Dial(ctx, addr)
}

// ============================================================================
//                              数据收发
// ============================================================================

// Send 把每个负载作为一条流发送，全部发完后发送 END_OF_SESSION_DATA
//
// 流 ID 按 payloads 顺序从 1 开始分配。任何一条流的 Frame 大小无效时
// 不发送任何数据报。并发调用会排队，前一轮的 END_OF_SESSION_DATA 发出后
// 下一轮才开始。
func (c *Conn) Send(ctx context.Context, payloads [][]byte) error {
	if c.sess.Closed() {
		return ErrConnClosed
	}
	return c.mux.Send(ctx, payloads)
}

// Receive 接收一轮数据，直到 END_OF_SESSION_DATA
//
// 对端发送 FIN 时返回 ErrSessionFinished，之后的调用也返回该错误。
func (c *Conn) Receive(ctx context.Context) (*Result, error) {
	res, err := c.demux.Receive(ctx)
	if err != nil {
		return nil, err
	}
	metrics.LogReport(res.Report)
	return res, nil
}

// ============================================================================
//                              状态查询
// ============================================================================

// Stats 返回当前一轮的接收统计
func (c *Conn) Stats() metrics.Report {
	return c.comp.collector.Snapshot()
}

// Totals 返回跨轮累计的接收计数
func (c *Conn) Totals() metrics.Totals {
	return c.comp.collector.Totals()
}

// Bandwidth 返回 socket 级流量统计，未启用时返回零值
func (c *Conn) Bandwidth() bandwidth.Stats {
	if c.comp.counter == nil {
		return bandwidth.Stats{}
	}
	return c.comp.counter.Stats()
}

// SessionID 返回会话 ID（仅用于日志关联）
func (c *Conn) SessionID() string { return c.sess.ID() }

// LocalAddr 返回本地地址
func (c *Conn) LocalAddr() net.Addr { return c.sess.LocalAddr() }

// RemoteAddr 返回对端地址
func (c *Conn) RemoteAddr() net.Addr { return c.sess.RemoteAddr() }

// State 返回会话状态
func (c *Conn) State() State { return c.sess.State() }

// PacketsSent 返回已发送的数据包数（包括握手和 ACK）
func (c *Conn) PacketsSent() uint32 { return c.sess.PacketsSent() }

// ============================================================================
//                              关闭
// ============================================================================

// Close 关闭连接
//
// 拨号方在会话仍处于已建立状态时先向对端发送 FIN。重复调用返回第一次的结果。
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.shutdown(c.role == roleDialer)
	})
	return c.closeErr
}

func (c *Conn) shutdown(sendFIN bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultCloseTimeout)
	defer cancel()

	var err error
	if sendFIN {
		err = c.sess.Finish(ctx)
	} else {
		err = c.sess.Close()
	}
	// 带宽报告器在 fx 停止钩子中输出最终统计
	err = multierr.Append(err, c.stopApp())
	logger.Info("连接已关闭", "role", c.role, "session", log.TruncateID(c.sess.ID(), 8), "error", err)
	return err
}

func (c *Conn) stopApp() error {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultCloseTimeout)
	defer cancel()
	if err := c.app.Stop(ctx); err != nil {
		return fmt.Errorf("stop fx app: %w", err)
	}
	return nil
}

// ============================================================================
//                              地址解析
// ============================================================================

// peerAddr 非 UDP socket 的对端地址
type peerAddr struct {
	network string
	addr    string
}

func (a peerAddr) Network() string { return a.network }
func (a peerAddr) String() string  { return a.addr }

// resolveRemote 按本地 socket 的网络类型解析对端地址
func resolveRemote(pc net.PacketConn, addr string) (net.Addr, error) {
	if addr == "" {
		return nil, fmt.Errorf("%w: empty remote address", ErrInvalidOption)
	}
	network := pc.LocalAddr().Network()
	if strings.HasPrefix(network, "udp") {
		raddr, err := net.ResolveUDPAddr(network, addr)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", addr, err)
		}
		return raddr, nil
	}
	return peerAddr{network: network, addr: addr}, nil
}
