package bandwidth

import (
	"net"
)

// MeteredConn 统计收发字节的 net.PacketConn
type MeteredConn struct {
	net.PacketConn
	counter *Counter
}

var _ net.PacketConn = (*MeteredConn)(nil)

// NewMeteredConn 包装 pc，counter 为 nil 时原样返回
func NewMeteredConn(pc net.PacketConn, counter *Counter) net.PacketConn {
	if counter == nil {
		return pc
	}
	return &MeteredConn{PacketConn: pc, counter: counter}
}

// ReadFrom 读取一个数据报并计入入站流量
func (c *MeteredConn) ReadFrom(p []byte) (int, net.Addr, error) {
	n, addr, err := c.PacketConn.ReadFrom(p)
	if err == nil {
		c.counter.LogRecv(n)
	}
	return n, addr, err
}

// WriteTo 写出一个数据报并计入出站流量
func (c *MeteredConn) WriteTo(p []byte, addr net.Addr) (int, error) {
	n, err := c.PacketConn.WriteTo(p, addr)
	if err == nil {
		c.counter.LogSent(n)
	}
	return n, err
}

// Counter 返回计数器
func (c *MeteredConn) Counter() *Counter { return c.counter }
