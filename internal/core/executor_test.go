package core

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestRunPostCommand(t *testing.T) {
	e := NewExecutor()
	outFile := filepath.Join(t.TempDir(), "out.txt")

	vars := e.BuildVars("example.com", "/certs/example.com",
		"/certs/example.com/cert.pem", "/certs/example.com/key.pem",
		"/certs/example.com/fullchain.pem")

	err := e.RunPostCommand(context.Background(), "echo ${DOMAIN} ${CERT_FILE} > "+outFile, vars)
	if err != nil {
		t.Fatalf("RunPostCommand 失败: %v", err)
	}

	data, err := os.ReadFile(outFile)
	if err != nil {
		t.Fatalf("读取输出失败: %v", err)
	}
	got := strings.TrimSpace(string(data))
	want := "example.com /certs/example.com/cert.pem"
	if got != want {
		t.Errorf("变量替换结果 = %q，期望 %q", got, want)
	}
}

func TestRunPostCommand_空命令(t *testing.T) {
	e := NewExecutor()
	if err := e.RunPostCommand(context.Background(), "", nil); err != nil {
		t.Errorf("空命令应直接返回 nil: %v", err)
	}
}

func TestRunPostCommand_命令失败(t *testing.T) {
	e := NewExecutor()
	if err := e.RunPostCommand(context.Background(), "exit 1", nil); err == nil {
		t.Error("失败的命令应返回错误")
	}
}

func TestRunPostCommand_上下文取消(t *testing.T) {
	e := NewExecutor()
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	// 挂起的后置命令必须随 context 终止，不能拖住退出流程
	start := time.Now()
	err := e.RunPostCommand(ctx, "sleep 30", nil)
	if err == nil {
		t.Fatal("被取消的命令应返回错误")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("命令在取消后仍运行了 %s", elapsed)
	}
}
