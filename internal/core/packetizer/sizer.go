package packetizer

import (
	"fmt"
	"math/rand/v2"
	"sync"
)

// FrameSizer 为每个流选择目标 Frame 大小
type FrameSizer interface {
	FrameSize(streamID uint32) int
}

// FixedSizer 所有流使用同一 Frame 大小
type FixedSizer int

// FrameSize 实现 FrameSizer
func (s FixedSizer) FrameSize(uint32) int { return int(s) }

// RandomSizer 在 [Min, Max] 内为每个流随机选择 Frame 大小
//
// 用于覆盖不同的切分边界，不影响正确性。
type RandomSizer struct {
	min, max int

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomSizer 创建随机 Frame 大小策略
//
// seed 为 0 时使用随机种子。
func NewRandomSizer(minSize, maxSize int, seed uint64) (*RandomSizer, error) {
	if minSize <= 0 || maxSize < minSize {
		return nil, fmt.Errorf("%w: [%d, %d]", ErrInvalidFrameSizeRange, minSize, maxSize)
	}
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &RandomSizer{
		min: minSize,
		max: maxSize,
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}, nil
}

// FrameSize 实现 FrameSizer
func (s *RandomSizer) FrameSize(uint32) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.min + s.rng.IntN(s.max-s.min+1)
}
