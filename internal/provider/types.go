package provider

// Certificate 证书内容
type Certificate struct {
	Certificate string // 证书内容 (PEM格式)
	PrivateKey  string // 私钥 (PEM格式)
	Chain       string // 完整证书链 (PEM格式)
}

// TXTChallenge dns-01 验证所需的 TXT 记录
type TXTChallenge struct {
	Domain         string // 主域名
	ValidationName string // 完整验证域名 (_acme-challenge.<域名>)
	Value          string // 记录值（令牌摘要）
}
