package mocks

import (
	"net"
	"sync"
	"time"
)

// MockAddr 模拟 net.Addr
type MockAddr string

// Network 实现 net.Addr
func (a MockAddr) Network() string { return "mock" }

// String 实现 net.Addr
func (a MockAddr) String() string { return string(a) }

// MockPacketConn 模拟 net.PacketConn
//
// 默认行为：ReadFrom 按顺序返回 Inbound 中的数据报，耗尽后返回 net.ErrClosed；
// WriteTo 记录写出的数据报。
type MockPacketConn struct {
	mu      sync.Mutex
	Local   net.Addr
	Inbound [][]byte
	From    net.Addr
	Written [][]byte
	Closed  bool

	// 可覆盖的方法
	ReadFromFunc func(p []byte) (int, net.Addr, error)
	WriteToFunc  func(p []byte, addr net.Addr) (int, error)
	CloseFunc    func() error

	// 调用记录
	CloseCalls    int
	DeadlineCalls int
}

var _ net.PacketConn = (*MockPacketConn)(nil)

// NewMockPacketConn 创建 MockPacketConn
func NewMockPacketConn(local string) *MockPacketConn {
	return &MockPacketConn{
		Local: MockAddr(local),
		From:  MockAddr("peer"),
	}
}

// ReadFrom 实现 net.PacketConn
func (m *MockPacketConn) ReadFrom(p []byte) (int, net.Addr, error) {
	if m.ReadFromFunc != nil {
		return m.ReadFromFunc(p)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Closed || len(m.Inbound) == 0 {
		return 0, nil, net.ErrClosed
	}
	d := m.Inbound[0]
	m.Inbound = m.Inbound[1:]
	return copy(p, d), m.From, nil
}

// WriteTo 实现 net.PacketConn
func (m *MockPacketConn) WriteTo(p []byte, addr net.Addr) (int, error) {
	if m.WriteToFunc != nil {
		return m.WriteToFunc(p, addr)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Closed {
		return 0, net.ErrClosed
	}
	m.Written = append(m.Written, append([]byte(nil), p...))
	return len(p), nil
}

// Close 实现 net.PacketConn
func (m *MockPacketConn) Close() error {
	m.mu.Lock()
	m.CloseCalls++
	m.Closed = true
	m.mu.Unlock()
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// LocalAddr 实现 net.PacketConn
func (m *MockPacketConn) LocalAddr() net.Addr { return m.Local }

// SetDeadline 实现 net.PacketConn
func (m *MockPacketConn) SetDeadline(time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeadlineCalls++
	return nil
}

// SetReadDeadline 实现 net.PacketConn
func (m *MockPacketConn) SetReadDeadline(t time.Time) error { return m.SetDeadline(t) }

// SetWriteDeadline 实现 net.PacketConn
func (m *MockPacketConn) SetWriteDeadline(t time.Time) error { return m.SetDeadline(t) }

// WrittenCount 返回写出的数据报数
func (m *MockPacketConn) WrittenCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Written)
}
