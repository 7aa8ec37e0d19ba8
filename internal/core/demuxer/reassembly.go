package demuxer

import (
	"sort"

	"github.com/dep2p/go-mquic/internal/core/wire"
)

// StreamPayload 一条重组完成（或部分完成）的流
type StreamPayload struct {
	ID   uint32
	Data []byte

	// Complete 是否收到了该流的 LAST_OF_STREAM_GROUP
	Complete bool
}

// streamBuffer 按偏移放置数据的重组缓冲区
type streamBuffer struct {
	id       uint32
	data     []byte
	complete bool
}

// place 将 Frame 数据写到其偏移处，扩容时容量不超过 limit
func (b *streamBuffer) place(f wire.Frame, limit uint64) {
	end := f.End()
	if uint64(len(b.data)) < end {
		if uint64(cap(b.data)) >= end {
			b.data = b.data[:end]
		} else {
			grown := make([]byte, end, growCap(cap(b.data), end, limit))
			copy(grown, b.data)
			b.data = grown
		}
	}
	copy(b.data[f.Offset:end], f.Data)
}

func growCap(old int, need, limit uint64) uint64 {
	c := uint64(old) * 2
	if c > limit {
		c = limit
	}
	if c < need {
		c = need
	}
	return c
}

// reassembler 一轮接收的所有流缓冲区
//
// size 是所有缓冲区长度之和，一轮内不超过 maxBytes；流数量不超过 maxStreams。
type reassembler struct {
	streams    map[uint32]*streamBuffer
	size       uint64
	maxBytes   uint64
	maxStreams int
	maxStream  uint64
}

func newReassembler(opts Options) *reassembler {
	return &reassembler{
		streams:    make(map[uint32]*streamBuffer),
		maxBytes:   opts.MaxRoundBytes,
		maxStreams: opts.MaxStreams,
		maxStream:  opts.MaxStreamSize,
	}
}

// place 放置一个已通过边界检查的 Frame
//
// 新流超出数量上限或缓冲区总长超出预算时不做任何修改并返回错误。
func (r *reassembler) place(f wire.Frame) error {
	b, ok := r.streams[f.StreamID]
	if !ok && len(r.streams) >= r.maxStreams {
		return ErrTooManyStreams
	}

	var cur uint64
	if ok {
		cur = uint64(len(b.data))
	}
	var growth uint64
	if end := f.End(); end > cur {
		growth = end - cur
	}
	if r.size+growth > r.maxBytes {
		return ErrRoundBudgetExceeded
	}

	if !ok {
		b = &streamBuffer{id: f.StreamID}
		r.streams[f.StreamID] = b
	}
	b.place(f, r.maxStream)
	r.size += growth
	return nil
}

// markComplete 标记流已收到最后一个包
func (r *reassembler) markComplete(id uint32) {
	if b, ok := r.streams[id]; ok {
		b.complete = true
	}
}

// payloads 返回按流 ID 排序的结果
func (r *reassembler) payloads() []StreamPayload {
	out := make([]StreamPayload, 0, len(r.streams))
	for _, b := range r.streams {
		out = append(out, StreamPayload{ID: b.id, Data: b.data, Complete: b.complete})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
