package domain

import (
	"fmt"
	"strings"
)

// SplitValidationDomain 从完整验证域名中提取子域名部分（用于DNS记录的名称）
// 例如: validationName="_acme-challenge.example.com", mainDomain="example.com"
// -> "_acme-challenge"
//
// validationName 必须以 "."+mainDomain 结尾，否则返回错误。
// 该检查在任何网络请求之前执行，违反属于调用方的契约错误。
func SplitValidationDomain(validationName, mainDomain string) (string, error) {
	suffix := "." + mainDomain
	if !strings.HasSuffix(validationName, suffix) {
		return "", fmt.Errorf("验证域名 %s 不是主域名 %s 的子域名", validationName, mainDomain)
	}
	return strings.TrimSuffix(validationName, suffix), nil
}

// ExtractMainDomain 从完整域名提取主域名
// 例如: www.example.com -> example.com, sub.test.example.com -> example.com
func ExtractMainDomain(domain string) string {
	parts := strings.Split(domain, ".")
	if len(parts) >= 2 {
		return parts[len(parts)-2] + "." + parts[len(parts)-1]
	}
	return domain
}

// MatchDomain 检查证书域名是否匹配目标域名（支持通配符）
func MatchDomain(certDomain, targetDomain string) bool {
	// 完全匹配
	if certDomain == targetDomain {
		return true
	}

	// 通配符匹配
	if strings.HasPrefix(certDomain, "*.") {
		mainDomain := strings.TrimPrefix(certDomain, "*.")
		targetMain := ExtractMainDomain(targetDomain)
		return mainDomain == targetMain
	}

	return false
}
