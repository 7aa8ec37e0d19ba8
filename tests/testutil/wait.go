package testutil

import (
	"testing"
	"time"
)

// PollInterval 条件轮询间隔
const PollInterval = 10 * time.Millisecond

// WaitFor 轮询 cond 直到返回 true 或超时，返回最后一次结果
func WaitFor(timeout time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for {
		if cond() {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(PollInterval)
	}
}

// Eventually 在 timeout 内等待 cond 成立，否则终止测试
//
//	testutil.Eventually(t, time.Second, func() bool {
//	    return conn.WrittenCount() > 0
//	}, "应该写出数据报")
func Eventually(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	if !WaitFor(timeout, cond) {
		t.Fatalf("等待 %s 超时: %s", timeout, msg)
	}
}
