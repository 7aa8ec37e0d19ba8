package wire

import "encoding/binary"

// Encode 序列化 Packet
//
// 输出长度恒为 PacketHeaderSize + len(p.Payload)。
func Encode(p *Packet) []byte {
	buf := make([]byte, PacketHeaderSize, p.WireLen())
	buf[0] = byte(p.Flag)
	binary.BigEndian.PutUint32(buf[1:5], p.ID)
	binary.BigEndian.PutUint64(buf[5:13], uint64(len(p.Payload)))
	return append(buf, p.Payload...)
}

// AppendFrame 将 Frame 序列化后追加到 dst
func AppendFrame(dst []byte, f Frame) []byte {
	var hdr [FrameHeaderSize]byte
	binary.BigEndian.PutUint32(hdr[0:4], f.StreamID)
	binary.BigEndian.PutUint64(hdr[4:12], f.Offset)
	binary.BigEndian.PutUint64(hdr[12:20], uint64(len(f.Data)))
	dst = append(dst, hdr[:]...)
	return append(dst, f.Data...)
}

// EncodeFrames 将一组 Frame 序列化为 Packet 负载
func EncodeFrames(frames []Frame) []byte {
	size := 0
	for _, f := range frames {
		size += f.WireLen()
	}
	buf := make([]byte, 0, size)
	for _, f := range frames {
		buf = AppendFrame(buf, f)
	}
	return buf
}

// Decode 解析一个数据报
//
// 先解析头部，再从左到右扫描负载，逐个读取 Frame 头部和数据，直到负载耗尽。
// 返回的 Packet 和 Frame 不引用 b，调用方可以复用读缓冲。
func Decode(b []byte) (*Packet, []Frame, error) {
	if len(b) < PacketHeaderSize {
		return nil, nil, malformed("need %d header bytes, got %d", PacketHeaderSize, len(b))
	}

	flag := Flag(b[0])
	if !flag.Valid() {
		return nil, nil, malformed("unknown flag %d", b[0])
	}

	id := binary.BigEndian.Uint32(b[1:5])
	payloadLen := binary.BigEndian.Uint64(b[5:13])
	remaining := uint64(len(b) - PacketHeaderSize)
	if payloadLen != remaining {
		return nil, nil, malformed("payload_length %d, remaining %d", payloadLen, remaining)
	}

	payload := make([]byte, remaining)
	copy(payload, b[PacketHeaderSize:])

	frames, err := decodeFrames(payload)
	if err != nil {
		return nil, nil, err
	}

	return &Packet{Flag: flag, ID: id, Payload: payload}, frames, nil
}

// decodeFrames 扫描负载中的全部 Frame
//
// 返回的 Frame.Data 是 payload 的子切片。
func decodeFrames(payload []byte) ([]Frame, error) {
	var frames []Frame
	pos := 0
	for pos < len(payload) {
		if len(payload)-pos < FrameHeaderSize {
			return nil, malformed("truncated frame header at %d", pos)
		}
		hdr := payload[pos : pos+FrameHeaderSize]
		streamID := binary.BigEndian.Uint32(hdr[0:4])
		offset := binary.BigEndian.Uint64(hdr[4:12])
		dataLen := binary.BigEndian.Uint64(hdr[12:20])
		pos += FrameHeaderSize

		if dataLen > uint64(len(payload)-pos) {
			return nil, malformed("frame at %d claims %d bytes, %d remain", pos-FrameHeaderSize, dataLen, len(payload)-pos)
		}
		end := pos + int(dataLen)
		frames = append(frames, Frame{
			StreamID: streamID,
			Offset:   offset,
			Data:     payload[pos:end:end],
		})
		pos = end
	}
	return frames, nil
}

// DecodeFrames 解析 Packet 负载中的 Frame
func DecodeFrames(payload []byte) ([]Frame, error) {
	return decodeFrames(payload)
}
