package core

import (
	"fmt"
	"time"

	"gratisdns-manager/internal/config"
	"gratisdns-manager/internal/provider"
	"gratisdns-manager/internal/provider/aliyun"
	"gratisdns-manager/internal/provider/gratisdns"
	"gratisdns-manager/internal/provider/huawei"
	"gratisdns-manager/internal/provider/tencent"
)

// Factory 提供商工厂
type Factory struct {
	config *config.Config

	// 缓存已创建的提供商实例
	dnsProviders map[string]provider.DNSProvider
}

// NewFactory 创建工厂
func NewFactory(cfg *config.Config) *Factory {
	return &Factory{
		config:       cfg,
		dnsProviders: make(map[string]provider.DNSProvider),
	}
}

// GetDNSProvider 获取DNS提供商
func (f *Factory) GetDNSProvider(name string) (provider.DNSProvider, error) {
	// 检查缓存
	if p, ok := f.dnsProviders[name]; ok {
		return p, nil
	}

	// 创建新实例
	var p provider.DNSProvider
	var err error

	switch name {
	case "gratisdns":
		if f.config.GratisDNS == nil {
			return nil, fmt.Errorf("GratisDNS提供商未配置")
		}
		p = gratisdns.New(gratisdns.Config{
			Username:  f.config.GratisDNS.Username,
			Password:  f.config.GratisDNS.Password,
			OTPSecret: f.config.GratisDNS.OTPSecret,
			BaseURL:   f.config.GratisDNS.BaseURL,
			TTL:       f.config.GratisDNS.TTL,
			Timeout:   time.Duration(f.config.GratisDNS.Timeout) * time.Second,
		})

	case "aliyun":
		if f.config.Providers.Aliyun == nil {
			return nil, fmt.Errorf("阿里云DNS提供商未配置")
		}
		p, err = aliyun.NewDNSProvider(f.config.Providers.Aliyun)

	case "tencent":
		if f.config.Providers.Tencent == nil {
			return nil, fmt.Errorf("腾讯云DNS提供商未配置")
		}
		p, err = tencent.NewDNSProvider(f.config.Providers.Tencent)

	case "huawei":
		if f.config.Providers.Huawei == nil {
			return nil, fmt.Errorf("华为云DNS提供商未配置")
		}
		p, err = huawei.NewDNSProvider(f.config.Providers.Huawei)

	default:
		return nil, fmt.Errorf("不支持的DNS提供商: %s", name)
	}

	if err != nil {
		return nil, err
	}

	// 缓存实例
	f.dnsProviders[name] = p
	return p, nil
}
