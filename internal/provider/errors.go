package provider

import "errors"

// 提供商操作的错误类别。所有错误都直接上抛给调用方，
// 用 errors.Is 区分，便于宿主记录可操作的诊断信息
// （如区分"凭证错误"和"提供商页面结构变化"）。
var (
	// ErrAuthentication 登录失败（响应中缺少用户名标记）
	ErrAuthentication = errors.New("登录失败")

	// ErrDomainNotFound 账户的域名列表中找不到目标主域名
	ErrDomainNotFound = errors.New("域名不在账户中")

	// ErrParse 记录值存在但无法从页面中解析出删除链接的记录ID，
	// 说明提供商的页面结构发生了变化
	ErrParse = errors.New("页面解析失败")

	// ErrDeletionFailed 删除请求已发出但响应中缺少成功标记
	ErrDeletionFailed = errors.New("记录删除失败")

	// ErrPrecondition 验证域名不是主域名的严格子域名，
	// 属于调用方的契约违反，不是网络错误
	ErrPrecondition = errors.New("验证域名前置条件不满足")
)
