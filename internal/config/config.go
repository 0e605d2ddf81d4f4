package config

// Config 配置结构
type Config struct {
	// GratisDNS 凭证配置（默认DNS提供商）
	GratisDNS *GratisDNSConfig `yaml:"gratisdns,omitempty"`

	// 云平台凭证配置（备选DNS提供商）
	Providers ProvidersConfig `yaml:"providers"`

	// ACME 账户配置
	ACME ACMEConfig `yaml:"acme"`

	// 域名配置
	Domains []DomainConfig `yaml:"domains"`

	// 全局配置
	OutputDir          string `yaml:"output_dir"`
	CheckInterval      int    `yaml:"check_interval"`      // 检查间隔（小时）
	PropagationSeconds int    `yaml:"propagation_seconds"` // DNS记录传播等待窗口（秒）
	PostCommand        string `yaml:"post_command"`        // 全局后置命令

	// Webhook 通知配置
	Webhook *WebhookConfig `yaml:"webhook,omitempty"`
}

// GratisDNSConfig GratisDNS凭证配置
//
// 三个凭证都是不透明字符串，只向提供商提交，绝不回写。
type GratisDNSConfig struct {
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	OTPSecret string `yaml:"otp_secret"` // TOTP 共享密钥 (base32)

	BaseURL string `yaml:"base_url,omitempty"` // 管理后台地址，默认官方地址
	TTL     int    `yaml:"ttl,omitempty"`      // TXT记录TTL，默认60
	Timeout int    `yaml:"timeout,omitempty"`  // 单次请求超时（秒），默认30
}

// ProvidersConfig 云平台凭证配置
type ProvidersConfig struct {
	Aliyun  *AliyunConfig  `yaml:"aliyun,omitempty"`
	Tencent *TencentConfig `yaml:"tencent,omitempty"`
	Huawei  *HuaweiConfig  `yaml:"huawei,omitempty"`
}

// AliyunConfig 阿里云配置
type AliyunConfig struct {
	AccessKeyID     string `yaml:"access_key_id"`
	AccessKeySecret string `yaml:"access_key_secret"`
	Region          string `yaml:"region"`
}

// TencentConfig 腾讯云配置
type TencentConfig struct {
	SecretID  string `yaml:"secret_id"`
	SecretKey string `yaml:"secret_key"`
	Region    string `yaml:"region"`
}

// HuaweiConfig 华为云配置
type HuaweiConfig struct {
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Region    string `yaml:"region"`
	ProjectID string `yaml:"project_id"`
}

// ACMEConfig ACME账户配置
type ACMEConfig struct {
	Email        string `yaml:"email"`                   // 账户联系邮箱
	DirectoryURL string `yaml:"directory_url,omitempty"` // CA目录地址，默认Let's Encrypt
}

// DomainConfig 域名配置
type DomainConfig struct {
	Domain string `yaml:"domain"`

	// SANs 与主域名签进同一张证书的附加域名，
	// 必须在主域名之下（验证记录都写进主域名的解析区）
	SANs []string `yaml:"sans,omitempty"`

	// DNS提供商: gratisdns (默认), aliyun, tencent, huawei
	DNSProvider string `yaml:"dns_provider,omitempty"`

	RenewDays   int    `yaml:"renew_days"`
	PostCommand string `yaml:"post_command,omitempty"`
}

// AllDomains 返回证书覆盖的全部域名（主域名在首位）
func (d *DomainConfig) AllDomains() []string {
	return append([]string{d.Domain}, d.SANs...)
}

// GetDNSProvider 获取DNS提供商名称
func (d *DomainConfig) GetDNSProvider() string {
	if d.DNSProvider != "" {
		return d.DNSProvider
	}
	return "gratisdns" // 默认使用GratisDNS
}

// WebhookConfig Webhook 通知配置
type WebhookConfig struct {
	Enabled      bool              `yaml:"enabled"`                 // 是否启用
	URL          string            `yaml:"url"`                     // Webhook URL
	Headers      map[string]string `yaml:"headers,omitempty"`       // 自定义请求头
	Events       []string          `yaml:"events,omitempty"`        // 订阅的事件类型
	Timeout      int               `yaml:"timeout,omitempty"`       // 请求超时时间（秒），默认30
	Retries      int               `yaml:"retries,omitempty"`       // 重试次数，默认3
	BodyTemplate string            `yaml:"body_template,omitempty"` // 请求体模板（JSON格式）
}
