package provider

import "context"

// DNSProvider DNS提供商接口
//
// 只覆盖 dns-01 验证所需的 TXT 记录操作，不是通用的 DNS 管理客户端。
// 两个方法都是同步调用，出错即中止，内部不做重试。
type DNSProvider interface {
	// Name 返回提供商名称
	Name() string

	// AddTXTRecord 添加一条 TXT 验证记录
	// domain: 主域名 (如 example.com)
	// validationDomainName: 完整验证域名 (如 _acme-challenge.example.com)，
	// 必须是 domain 的严格子域名，否则返回 ErrPrecondition
	// value: 记录值（验证令牌）
	AddTXTRecord(ctx context.Context, domain, validationDomainName, value string) error

	// DelTXTRecord 删除之前添加的 TXT 验证记录
	// 按记录值查找；记录已不存在时视为成功（幂等删除）
	DelTXTRecord(ctx context.Context, domain, validationDomainName, value string) error
}
