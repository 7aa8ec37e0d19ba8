//go:build !unix

package udp

import (
	"errors"
	"syscall"
)

// control 非 unix 平台不设置 socket 选项
func (t *Transport) control(_, _ string, _ syscall.RawConn) error {
	return nil
}

func readBufferSize(syscall.RawConn) (int, error) {
	return 0, errors.New("not supported")
}
