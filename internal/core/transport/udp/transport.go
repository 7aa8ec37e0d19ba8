// Package udp 实现 UDP 数据报传输
//
// 监听和拨号都使用未 connect 的 UDP socket：
// 会话层通过 WriteTo 指定目标地址，接收端按 ReadFrom 返回的来源地址回复 ACK。
package udp

import (
	"context"
	"fmt"
	"net"

	"github.com/dep2p/go-mquic/pkg/lib/log"
	transportif "github.com/dep2p/go-mquic/pkg/interfaces/transport"
)

var logger = log.Logger("core/transport/udp")

// 确保实现了接口
var _ transportif.Transport = (*Transport)(nil)

// Config UDP socket 配置
type Config struct {
	// ReadBufferSize SO_RCVBUF，0 表示使用系统默认
	ReadBufferSize int

	// WriteBufferSize SO_SNDBUF，0 表示使用系统默认
	WriteBufferSize int

	// ReuseAddr 是否设置 SO_REUSEADDR
	ReuseAddr bool

	// DialLocalAddr 拨号时绑定的本地地址，空表示随机端口
	DialLocalAddr string
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		ReadBufferSize:  4 * 1024 * 1024, // 4MB：突发发送时减少丢包
		WriteBufferSize: 4 * 1024 * 1024,
		ReuseAddr:       false,
	}
}

// Transport UDP 传输
type Transport struct {
	config Config
}

// New 创建 UDP 传输
func New(cfg Config) *Transport {
	return &Transport{config: cfg}
}

// Network 返回网络名
func (t *Transport) Network() string { return "udp" }

// Listen 在本地地址上绑定 UDP socket
func (t *Transport) Listen(ctx context.Context, addr string) (net.PacketConn, error) {
	lc := net.ListenConfig{Control: t.control}
	pc, err := lc.ListenPacket(ctx, "udp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen udp %s: %w", addr, err)
	}
	if uc, ok := pc.(*net.UDPConn); ok {
		if raw, err := uc.SyscallConn(); err == nil {
			if size, err := readBufferSize(raw); err == nil {
				logger.Debug("UDP socket 已绑定", "addr", pc.LocalAddr().String(), "rcvbuf", size)
				return pc, nil
			}
		}
	}
	logger.Debug("UDP socket 已绑定", "addr", pc.LocalAddr().String())
	return pc, nil
}

// Dial 解析远端地址并绑定本地 socket
func (t *Transport) Dial(ctx context.Context, addr string) (net.PacketConn, net.Addr, error) {
	raddr, err := resolve(ctx, addr)
	if err != nil {
		return nil, nil, err
	}

	local := t.config.DialLocalAddr
	if local == "" {
		local = ":0"
	}
	pc, err := t.Listen(ctx, local)
	if err != nil {
		return nil, nil, err
	}
	return pc, raddr, nil
}

// resolve 解析 host:port
func resolve(ctx context.Context, addr string) (*net.UDPAddr, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid udp address %q: %w", addr, err)
	}
	port, err := net.DefaultResolver.LookupPort(ctx, "udp", portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid udp port %q: %w", portStr, err)
	}
	if host == "" {
		return &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: port}, nil
	}
	if ip := net.ParseIP(host); ip != nil {
		return &net.UDPAddr{IP: ip, Port: port}, nil
	}
	ips, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", host, err)
	}
	if len(ips) == 0 {
		return nil, fmt.Errorf("resolve %q: no addresses", host)
	}
	return &net.UDPAddr{IP: ips[0].IP, Port: port, Zone: ips[0].Zone}, nil
}
