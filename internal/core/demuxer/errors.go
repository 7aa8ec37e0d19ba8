package demuxer

import "errors"

var (
	// ErrSessionFinished 对端发送了 FIN
	ErrSessionFinished = errors.New("session finished by peer")

	// ErrNilSession 未提供会话
	ErrNilSession = errors.New("demuxer: nil session")
)

var (
	// ErrTooManyStreams 一轮内的流数量超出上限
	ErrTooManyStreams = errors.New("demuxer: too many streams in round")

	// ErrRoundBudgetExceeded 一轮内重组缓冲区总长超出预算
	ErrRoundBudgetExceeded = errors.New("demuxer: round reassembly budget exceeded")
)
