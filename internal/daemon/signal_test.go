package daemon

import (
	"os"
	"syscall"
	"testing"
	"time"
)

func TestSignalHandler_信号触发取消(t *testing.T) {
	h := NewSignalHandler()
	h.Start()

	if err := syscall.Kill(os.Getpid(), syscall.SIGTERM); err != nil {
		t.Fatalf("发送信号失败: %v", err)
	}

	select {
	case <-h.Context().Done():
	case <-time.After(2 * time.Second):
		t.Fatal("收到信号后 context 未被取消")
	}
}
