package wire

import "fmt"

// Flag 数据报类型标记
//
// 每个 Packet 只携带一个 Flag，取值在线路上固定。
type Flag uint8

const (
	// FlagSYN 建连请求
	FlagSYN Flag = 1
	// FlagSYNACK 建连应答
	FlagSYNACK Flag = 2
	// FlagACK 数据确认（仅作遥测，不触发重传）
	FlagACK Flag = 3
	// FlagData 流的中间数据包
	FlagData Flag = 4
	// FlagEndOfSessionData 本轮所有流发送完毕
	FlagEndOfSessionData Flag = 5
	// FlagFIN 关闭会话
	FlagFIN Flag = 6
	// FlagFirstOfStream 流的第一个数据包
	FlagFirstOfStream Flag = 7
	// FlagLastOfStream 流的最后一个数据包
	FlagLastOfStream Flag = 8
)

// Valid 检查 Flag 是否为已定义的取值
func (f Flag) Valid() bool {
	return f >= FlagSYN && f <= FlagLastOfStream
}

// IsControl 握手/拆除/确认类控制包
func (f Flag) IsControl() bool {
	switch f {
	case FlagSYN, FlagSYNACK, FlagACK, FlagFIN:
		return true
	default:
		return false
	}
}

// IsData 携带流数据的包
func (f Flag) IsData() bool {
	switch f {
	case FlagData, FlagFirstOfStream, FlagLastOfStream:
		return true
	default:
		return false
	}
}

// String 返回 Flag 的可读名称
func (f Flag) String() string {
	switch f {
	case FlagSYN:
		return "SYN"
	case FlagSYNACK:
		return "SYN_ACK"
	case FlagACK:
		return "ACK"
	case FlagData:
		return "DATA"
	case FlagEndOfSessionData:
		return "END_OF_SESSION_DATA"
	case FlagFIN:
		return "FIN"
	case FlagFirstOfStream:
		return "FIRST_OF_STREAM_GROUP"
	case FlagLastOfStream:
		return "LAST_OF_STREAM_GROUP"
	default:
		return fmt.Sprintf("Flag(%d)", uint8(f))
	}
}
