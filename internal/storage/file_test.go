package storage

import (
	"os"
	"path/filepath"
	"testing"

	"gratisdns-manager/internal/provider"
)

func TestSaveCertificate(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStorage(dir)

	cert := &provider.Certificate{
		Certificate: "CERT-PEM",
		PrivateKey:  "KEY-PEM",
		Chain:       "CHAIN-PEM",
	}

	if err := s.SaveCertificate("example.com", cert); err != nil {
		t.Fatalf("SaveCertificate 失败: %v", err)
	}

	checkFile := func(path, want string) {
		t.Helper()
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("读取 %s 失败: %v", path, err)
		}
		if string(data) != want {
			t.Errorf("%s 内容 = %q，期望 %q", path, data, want)
		}
	}

	checkFile(s.GetCertPath("example.com"), "CERT-PEM")
	checkFile(s.GetKeyPath("example.com"), "KEY-PEM")
	checkFile(s.GetFullchainPath("example.com"), "CHAIN-PEM")

	// 私钥文件权限必须收紧
	info, err := os.Stat(s.GetKeyPath("example.com"))
	if err != nil {
		t.Fatalf("读取私钥信息失败: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("私钥权限 = %o，期望 600", perm)
	}
}

func TestSaveCertificate_链缺失时回退(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStorage(dir)

	cert := &provider.Certificate{
		Certificate: "CERT-PEM",
		PrivateKey:  "KEY-PEM",
	}

	if err := s.SaveCertificate("example.com", cert); err != nil {
		t.Fatalf("SaveCertificate 失败: %v", err)
	}

	data, err := os.ReadFile(s.GetFullchainPath("example.com"))
	if err != nil {
		t.Fatalf("读取证书链失败: %v", err)
	}
	if string(data) != "CERT-PEM" {
		t.Errorf("证书链应回退为证书本身，实际 = %q", data)
	}
}

func TestGetAccountKeyPath(t *testing.T) {
	s := NewFileStorage("/tmp/certs")
	want := filepath.Join("/tmp/certs", "account.key")
	if got := s.GetAccountKeyPath(); got != want {
		t.Errorf("GetAccountKeyPath() = %q，期望 %q", got, want)
	}
}
