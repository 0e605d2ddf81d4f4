package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeConfig 写入临时配置文件
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("写入配置文件失败: %v", err)
	}
	return path
}

const validConfig = `
gratisdns:
  username: "user@example.com"
  password: "hunter2"
  otp_secret: "BASE32SECRET"

acme:
  email: "user@example.com"

domains:
  - domain: "example.com"
    renew_days: 7
`

func TestLoad(t *testing.T) {
	path := writeConfig(t, validConfig)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load 失败: %v", err)
	}

	// 默认值
	if cfg.OutputDir != "./certs" {
		t.Errorf("OutputDir = %q，期望 ./certs", cfg.OutputDir)
	}
	if cfg.CheckInterval != 24 {
		t.Errorf("CheckInterval = %d，期望 24", cfg.CheckInterval)
	}
	if cfg.PropagationSeconds != 660 {
		t.Errorf("PropagationSeconds = %d，期望 660", cfg.PropagationSeconds)
	}
	if !strings.Contains(cfg.ACME.DirectoryURL, "letsencrypt.org") {
		t.Errorf("DirectoryURL = %q，期望默认为 Let's Encrypt", cfg.ACME.DirectoryURL)
	}

	// 默认DNS提供商
	if got := cfg.Domains[0].GetDNSProvider(); got != "gratisdns" {
		t.Errorf("GetDNSProvider() = %q，期望 gratisdns", got)
	}
}

func TestLoad_未配置域名(t *testing.T) {
	path := writeConfig(t, `
gratisdns:
  username: "u"
  password: "p"
  otp_secret: "s"
acme:
  email: "user@example.com"
`)

	if _, err := Load(path); err == nil {
		t.Fatal("期望出错，实际成功")
	}
}

func TestLoad_未配置ACME邮箱(t *testing.T) {
	path := writeConfig(t, `
gratisdns:
  username: "u"
  password: "p"
  otp_secret: "s"
domains:
  - domain: "example.com"
    renew_days: 7
`)

	if _, err := Load(path); err == nil {
		t.Fatal("期望出错，实际成功")
	}
}

func TestLoad_凭证不完整(t *testing.T) {
	path := writeConfig(t, `
gratisdns:
  username: "u"
  password: "p"
acme:
  email: "user@example.com"
domains:
  - domain: "example.com"
    renew_days: 7
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("期望出错，实际成功")
	}
	if !strings.Contains(err.Error(), "gratisdns") {
		t.Errorf("错误信息应指出 gratisdns 凭证问题: %v", err)
	}
}

func TestLoad_不支持的提供商(t *testing.T) {
	path := writeConfig(t, `
acme:
  email: "user@example.com"
domains:
  - domain: "example.com"
    dns_provider: "route53"
    renew_days: 7
`)

	if _, err := Load(path); err == nil {
		t.Fatal("期望出错，实际成功")
	}
}

func TestLoad_RenewDays无效(t *testing.T) {
	path := writeConfig(t, `
gratisdns:
  username: "u"
  password: "p"
  otp_secret: "s"
acme:
  email: "user@example.com"
domains:
  - domain: "example.com"
`)

	if _, err := Load(path); err == nil {
		t.Fatal("期望出错，实际成功")
	}
}

func TestLoad_备选提供商(t *testing.T) {
	path := writeConfig(t, `
providers:
  aliyun:
    access_key_id: "ak"
    access_key_secret: "sk"
acme:
  email: "user@example.com"
domains:
  - domain: "example.com"
    dns_provider: "aliyun"
    renew_days: 7
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load 失败: %v", err)
	}
	if got := cfg.Domains[0].GetDNSProvider(); got != "aliyun" {
		t.Errorf("GetDNSProvider() = %q，期望 aliyun", got)
	}
}

func TestLoad_SANs(t *testing.T) {
	path := writeConfig(t, `
gratisdns:
  username: "u"
  password: "p"
  otp_secret: "s"
acme:
  email: "user@example.com"
domains:
  - domain: "example.com"
    sans: ["www.example.com", "*.api.example.com"]
    renew_days: 7
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load 失败: %v", err)
	}

	want := []string{"example.com", "www.example.com", "*.api.example.com"}
	got := cfg.Domains[0].AllDomains()
	if len(got) != len(want) {
		t.Fatalf("AllDomains() = %v，期望 %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("AllDomains()[%d] = %q，期望 %q", i, got[i], want[i])
		}
	}
}

func TestLoad_SAN不在主域名下(t *testing.T) {
	path := writeConfig(t, `
gratisdns:
  username: "u"
  password: "p"
  otp_secret: "s"
acme:
  email: "user@example.com"
domains:
  - domain: "example.com"
    sans: ["other.org"]
    renew_days: 7
`)

	if _, err := Load(path); err == nil {
		t.Fatal("SAN 不在主域名之下时应报错")
	}
}
