package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load 加载配置文件
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	// 配置文件包含密码和TOTP密钥，权限过宽时给出警告
	if info, err := os.Stat(path); err == nil {
		if info.Mode().Perm()&0o077 != 0 {
			log.Printf("警告: 配置文件 %s 权限过宽 (%o)，建议 chmod 600", path, info.Mode().Perm())
		}
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 设置默认值
	if config.OutputDir == "" {
		config.OutputDir = "./certs"
	}
	if config.CheckInterval == 0 {
		config.CheckInterval = 24
	}
	if config.PropagationSeconds == 0 {
		config.PropagationSeconds = 660
	}
	if config.ACME.DirectoryURL == "" {
		config.ACME.DirectoryURL = "https://acme-v02.api.letsencrypt.org/directory"
	}

	// 验证配置
	if err := validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// validate 验证配置
func validate(config *Config) error {
	if len(config.Domains) == 0 {
		return fmt.Errorf("未配置任何域名")
	}

	if config.ACME.Email == "" {
		return fmt.Errorf("未配置 acme.email")
	}

	// 检查每个域名配置的提供商凭证是否存在
	for _, domain := range config.Domains {
		if err := validateProviderConfig(config, domain.GetDNSProvider()); err != nil {
			return fmt.Errorf("域名 %s: %w", domain.Domain, err)
		}

		if domain.RenewDays <= 0 {
			return fmt.Errorf("域名 %s: renew_days 必须大于 0", domain.Domain)
		}

		// SAN 的验证记录也要写进主域名的解析区
		for _, san := range domain.SANs {
			name := strings.TrimPrefix(san, "*.")
			if name != domain.Domain && !strings.HasSuffix(name, "."+domain.Domain) {
				return fmt.Errorf("域名 %s: SAN %s 不在主域名之下", domain.Domain, san)
			}
		}
	}

	return nil
}

// validateProviderConfig 验证提供商配置是否存在
func validateProviderConfig(config *Config, providerName string) error {
	switch providerName {
	case "gratisdns":
		if config.GratisDNS == nil {
			return fmt.Errorf("DNS提供商 gratisdns 未配置凭证")
		}
		if config.GratisDNS.Username == "" || config.GratisDNS.Password == "" || config.GratisDNS.OTPSecret == "" {
			return fmt.Errorf("gratisdns 凭证不完整 (需要 username/password/otp_secret)")
		}
	case "aliyun":
		if config.Providers.Aliyun == nil {
			return fmt.Errorf("DNS提供商 aliyun 未配置凭证")
		}
		if config.Providers.Aliyun.AccessKeyID == "" || config.Providers.Aliyun.AccessKeySecret == "" {
			return fmt.Errorf("aliyun 凭证不完整")
		}
	case "tencent":
		if config.Providers.Tencent == nil {
			return fmt.Errorf("DNS提供商 tencent 未配置凭证")
		}
		if config.Providers.Tencent.SecretID == "" || config.Providers.Tencent.SecretKey == "" {
			return fmt.Errorf("tencent 凭证不完整")
		}
	case "huawei":
		if config.Providers.Huawei == nil {
			return fmt.Errorf("DNS提供商 huawei 未配置凭证")
		}
		if config.Providers.Huawei.AccessKey == "" || config.Providers.Huawei.SecretKey == "" {
			return fmt.Errorf("huawei 凭证不完整")
		}
	default:
		return fmt.Errorf("不支持的DNS提供商: %s", providerName)
	}
	return nil
}
