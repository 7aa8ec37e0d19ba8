package mocks

import (
	"context"
	"sync"

	"github.com/dep2p/go-mquic/internal/core/wire"
)

// MockPacketSender 模拟 PacketSender
//
// 默认行为：分配递增包 ID 并记录包的副本。
type MockPacketSender struct {
	mu      sync.Mutex
	nextID  uint32
	Packets []*wire.Packet

	// 可覆盖的方法
	SendPacketFunc func(ctx context.Context, p *wire.Packet) error
}

// NewMockPacketSender 创建 MockPacketSender
func NewMockPacketSender() *MockPacketSender {
	return &MockPacketSender{}
}

// SendPacket 记录发送的包
func (m *MockPacketSender) SendPacket(ctx context.Context, p *wire.Packet) error {
	if m.SendPacketFunc != nil {
		if err := m.SendPacketFunc(ctx, p); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	cp := &wire.Packet{
		Flag:    p.Flag,
		ID:      m.nextID,
		Payload: append([]byte(nil), p.Payload...),
	}
	p.ID = cp.ID
	m.Packets = append(m.Packets, cp)
	return nil
}

// Sent 返回已记录包的快照
func (m *MockPacketSender) Sent() []*wire.Packet {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*wire.Packet, len(m.Packets))
	copy(out, m.Packets)
	return out
}

// Count 返回已记录的包数
func (m *MockPacketSender) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Packets)
}
