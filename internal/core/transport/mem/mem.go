// Package mem 实现进程内的数据报传输
//
// 每个 Conn 有一个有界接收队列，WriteTo 按地址投递完整的数据报；
// 队列满时丢弃，与 UDP 的语义一致。主要用于测试。
package mem

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	transportif "github.com/dep2p/go-mquic/pkg/interfaces/transport"
)

// DefaultQueueSize 默认接收队列长度（数据报个数）
const DefaultQueueSize = 8192

var (
	// ErrAddrInUse 地址已被占用
	ErrAddrInUse = errors.New("mem: address in use")

	// ErrClosed 连接已关闭
	ErrClosed = net.ErrClosed
)

// 确保实现接口
var (
	_ transportif.Transport = (*Network)(nil)
	_ net.PacketConn        = (*Conn)(nil)
)

// Addr 进程内地址
type Addr string

// Network 实现 net.Addr
func (a Addr) Network() string { return "mem" }

// String 实现 net.Addr
func (a Addr) String() string { return string(a) }

type datagram struct {
	from Addr
	data []byte
}

// ============================================================================
//                              Network
// ============================================================================

// Network 进程内网络，按地址名路由数据报
type Network struct {
	mu        sync.Mutex
	conns     map[Addr]*Conn
	queueSize int
	nextPort  int
}

// NewNetwork 创建进程内网络
func NewNetwork() *Network {
	return &Network{
		conns:     make(map[Addr]*Conn),
		queueSize: DefaultQueueSize,
	}
}

// SetQueueSize 设置之后创建的连接的接收队列长度
func (n *Network) SetQueueSize(size int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.queueSize = size
}

// Network 实现 transportif.Transport
func (n *Network) Network() string { return "mem" }

// Listen 绑定地址，addr 为空时自动分配
func (n *Network) Listen(_ context.Context, addr string) (net.PacketConn, error) {
	return n.NewConn(addr)
}

// Dial 绑定一个自动分配的本地地址
func (n *Network) Dial(_ context.Context, addr string) (net.PacketConn, net.Addr, error) {
	c, err := n.NewConn("")
	if err != nil {
		return nil, nil, err
	}
	return c, Addr(addr), nil
}

// NewConn 创建并绑定一个连接
func (n *Network) NewConn(addr string) (*Conn, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if addr == "" {
		n.nextPort++
		addr = fmt.Sprintf("mem-%d", n.nextPort)
	}
	a := Addr(addr)
	if _, ok := n.conns[a]; ok {
		return nil, fmt.Errorf("%w: %s", ErrAddrInUse, addr)
	}

	c := &Conn{
		network: n,
		addr:    a,
		inbox:   make(chan datagram, n.queueSize),
		closed:  make(chan struct{}),
	}
	c.readDeadline.init()
	n.conns[a] = c
	return c, nil
}

// Pair 创建一对互相知道地址的连接
func (n *Network) Pair() (*Conn, *Conn, error) {
	a, err := n.NewConn("")
	if err != nil {
		return nil, nil, err
	}
	b, err := n.NewConn("")
	if err != nil {
		_ = a.Close()
		return nil, nil, err
	}
	return a, b, nil
}

func (n *Network) lookup(a Addr) *Conn {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.conns[a]
}

func (n *Network) remove(a Addr) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.conns, a)
}

// ============================================================================
//                              Conn
// ============================================================================

// Conn 进程内数据报连接
type Conn struct {
	network *Network
	addr    Addr
	inbox   chan datagram

	closeOnce sync.Once
	closed    chan struct{}

	readDeadline deadline

	dropped atomic.Uint64
}

// Dropped 返回因对端队列已满而丢弃的数据报数
func (c *Conn) Dropped() uint64 {
	return c.dropped.Load()
}

// ReadFrom 读取一个完整的数据报
//
// p 不足以容纳数据报时截断，与 UDP 一致。
func (c *Conn) ReadFrom(p []byte) (int, net.Addr, error) {
	select {
	case <-c.closed:
		return 0, nil, ErrClosed
	default:
	}

	select {
	case d := <-c.inbox:
		return copy(p, d.data), d.from, nil
	case <-c.closed:
		return 0, nil, ErrClosed
	case <-c.readDeadline.wait():
		return 0, nil, os.ErrDeadlineExceeded
	}
}

// WriteTo 向目标地址投递一个数据报
//
// 目标不存在或队列已满时静默丢弃，返回写入长度。
func (c *Conn) WriteTo(p []byte, addr net.Addr) (int, error) {
	select {
	case <-c.closed:
		return 0, ErrClosed
	default:
	}

	dst := c.network.lookup(Addr(addr.String()))
	if dst == nil {
		c.dropped.Add(1)
		return len(p), nil
	}

	d := datagram{from: c.addr, data: append([]byte(nil), p...)}
	select {
	case dst.inbox <- d:
	case <-dst.closed:
		c.dropped.Add(1)
	default:
		c.dropped.Add(1)
	}
	return len(p), nil
}

// Close 关闭连接，重复调用返回 nil
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.network.remove(c.addr)
	})
	return nil
}

// LocalAddr 返回本地地址
func (c *Conn) LocalAddr() net.Addr { return c.addr }

// SetDeadline 设置读截止时间（写永不阻塞）
func (c *Conn) SetDeadline(t time.Time) error {
	return c.SetReadDeadline(t)
}

// SetReadDeadline 设置读截止时间
func (c *Conn) SetReadDeadline(t time.Time) error {
	c.readDeadline.set(t)
	return nil
}

// SetWriteDeadline 写永不阻塞，忽略
func (c *Conn) SetWriteDeadline(time.Time) error { return nil }

// ============================================================================
//                              deadline
// ============================================================================

// deadline 可重置的截止时间，到期时关闭 cancel 通道
type deadline struct {
	mu     sync.Mutex
	timer  *time.Timer
	cancel chan struct{}
}

func (d *deadline) init() {
	d.cancel = make(chan struct{})
}

// set 设置截止时间，零值表示取消
func (d *deadline) set(t time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil && !d.timer.Stop() {
		<-d.cancel // 等待 timer 回调完成关闭
	}
	d.timer = nil

	closed := isClosedChan(d.cancel)
	if t.IsZero() {
		if closed {
			d.cancel = make(chan struct{})
		}
		return
	}

	if dur := time.Until(t); dur > 0 {
		if closed {
			d.cancel = make(chan struct{})
		}
		cancel := d.cancel
		d.timer = time.AfterFunc(dur, func() { close(cancel) })
		return
	}

	if !closed {
		close(d.cancel)
	}
}

func (d *deadline) wait() chan struct{} {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cancel
}

func isClosedChan(c <-chan struct{}) bool {
	select {
	case <-c:
		return true
	default:
		return false
	}
}
