package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"go.uber.org/fx"
	"go.uber.org/multierr"

	"github.com/dep2p/go-mquic/config"
	"github.com/dep2p/go-mquic/internal/core/transport/udp"
	transportif "github.com/dep2p/go-mquic/pkg/interfaces/transport"
	"github.com/dep2p/go-mquic/pkg/lib/log"
)

var logger = log.Logger("core/transport")

// UDPConfigFromUnified 从统一配置创建 UDP 传输配置
func UDPConfigFromUnified(cfg *config.Config) udp.Config {
	if cfg == nil {
		return udp.DefaultConfig()
	}
	return udp.Config{
		ReadBufferSize:  cfg.Transport.ReadBufferSize,
		WriteBufferSize: cfg.Transport.WriteBufferSize,
		ReuseAddr:       cfg.Transport.ReuseAddr,
		DialLocalAddr:   cfg.Transport.DialLocalAddr,
	}
}

// ============================================================================
//                              Manager
// ============================================================================

// Manager 传输管理器
//
// 记录通过它打开的所有 net.PacketConn，Close 时统一关闭。
type Manager struct {
	transport transportif.Transport

	mu     sync.Mutex
	conns  map[net.PacketConn]struct{}
	closed bool
}

// NewManager 创建传输管理器
func NewManager(t transportif.Transport) *Manager {
	logger.Debug("创建传输管理器", "network", t.Network())
	return &Manager{
		transport: t,
		conns:     make(map[net.PacketConn]struct{}),
	}
}

// Transport 返回底层传输
func (m *Manager) Transport() transportif.Transport {
	return m.transport
}

// Listen 绑定本地地址
func (m *Manager) Listen(ctx context.Context, addr string) (net.PacketConn, error) {
	if addr == "" {
		return nil, fmt.Errorf("%w: empty listen address", ErrInvalidAddress)
	}
	pc, err := m.transport.Listen(ctx, addr)
	if err != nil {
		return nil, err
	}
	if err := m.track(pc); err != nil {
		return nil, err
	}
	logger.Info("开始监听", "network", m.transport.Network(), "addr", pc.LocalAddr().String())
	return pc, nil
}

// Dial 打开本地 socket 并解析远端地址
func (m *Manager) Dial(ctx context.Context, addr string) (net.PacketConn, net.Addr, error) {
	if addr == "" {
		return nil, nil, fmt.Errorf("%w: empty remote address", ErrInvalidAddress)
	}
	pc, raddr, err := m.transport.Dial(ctx, addr)
	if err != nil {
		return nil, nil, err
	}
	if err := m.track(pc); err != nil {
		return nil, nil, err
	}
	logger.Debug("拨号完成", "local", pc.LocalAddr().String(), "remote", raddr.String())
	return pc, raddr, nil
}

func (m *Manager) track(pc net.PacketConn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		pc.Close()
		return ErrManagerClosed
	}
	m.conns[pc] = struct{}{}
	return nil
}

// ConnCount 返回当前跟踪的连接数
func (m *Manager) ConnCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.conns)
}

// Close 关闭所有连接
//
// 已被上层关闭的连接再次关闭时返回的 net.ErrClosed 会被忽略。
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	conns := m.conns
	m.conns = nil
	m.mu.Unlock()

	var err error
	for pc := range conns {
		if cerr := pc.Close(); cerr != nil && !errors.Is(cerr, net.ErrClosed) {
			err = multierr.Append(err, cerr)
		}
	}
	logger.Debug("传输管理器已关闭", "conns", len(conns))
	return err
}

// ============================================================================
//                              Fx 模块
// ============================================================================

// ModuleInput Fx 输入
type ModuleInput struct {
	fx.In

	Config    *config.Config        `optional:"true"`
	Transport transportif.Transport `optional:"true"`
}

// ModuleOutput Fx 输出
type ModuleOutput struct {
	fx.Out

	Manager *Manager
}

// Module 返回 Fx 模块
//
// 未注入 Transport 时使用 UDP 传输。
func Module() fx.Option {
	return fx.Module("transport",
		fx.Provide(ProvideManager),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideManager 提供传输管理器
func ProvideManager(in ModuleInput) ModuleOutput {
	t := in.Transport
	if t == nil {
		t = udp.New(UDPConfigFromUnified(in.Config))
	}
	return ModuleOutput{Manager: NewManager(t)}
}

// registerLifecycle 注册生命周期钩子
func registerLifecycle(lc fx.Lifecycle, m *Manager) {
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return m.Close()
		},
	})
}
