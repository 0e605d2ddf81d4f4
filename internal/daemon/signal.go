package daemon

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
)

// SignalHandler 信号处理器
type SignalHandler struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// NewSignalHandler 创建信号处理器
func NewSignalHandler() *SignalHandler {
	ctx, cancel := context.WithCancel(context.Background())
	return &SignalHandler{
		ctx:    ctx,
		cancel: cancel,
	}
}

// Context 返回可取消的 context
func (h *SignalHandler) Context() context.Context {
	return h.ctx
}

// Start 开始监听信号
//
// 第一个信号触发优雅关闭（取消 context，等待传播检测、ACME 轮询等
// 阻塞操作退出）；第二个信号强制退出，不再等待。
func (h *SignalHandler) Start() {
	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Printf("收到信号 %v，正在优雅关闭...", sig)
		h.cancel()

		sig = <-sigChan
		log.Printf("再次收到信号 %v，强制退出", sig)
		os.Exit(1)
	}()
}
