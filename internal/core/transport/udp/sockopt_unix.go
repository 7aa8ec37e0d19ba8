//go:build unix

package udp

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// control 在 bind 之前设置 socket 选项
func (t *Transport) control(_, _ string, c syscall.RawConn) error {
	var sockErr error
	err := c.Control(func(fd uintptr) {
		if t.config.ReuseAddr {
			if sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); sockErr != nil {
				return
			}
		}
		if t.config.ReadBufferSize > 0 {
			if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_RCVBUF, t.config.ReadBufferSize); err != nil {
				// 缓冲区超过系统上限时内核会拒绝，不影响正确性
				logger.Debug("设置 SO_RCVBUF 失败", "size", t.config.ReadBufferSize, "error", err)
			}
		}
		if t.config.WriteBufferSize > 0 {
			if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_SNDBUF, t.config.WriteBufferSize); err != nil {
				logger.Debug("设置 SO_SNDBUF 失败", "size", t.config.WriteBufferSize, "error", err)
			}
		}
	})
	if err != nil {
		return err
	}
	return sockErr
}

// readBufferSize 返回 socket 实际的接收缓冲区大小
func readBufferSize(c syscall.RawConn) (int, error) {
	var size int
	var sockErr error
	err := c.Control(func(fd uintptr) {
		size, sockErr = unix.GetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_RCVBUF)
	})
	if err != nil {
		return 0, err
	}
	return size, sockErr
}
