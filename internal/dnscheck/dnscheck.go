package dnscheck

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/miekg/dns"
)

// Checker TXT记录传播检测器
//
// 在固定的传播等待窗口内轮询公共解析器，记录在所有解析器上
// 可见时提前结束等待。窗口耗尽不是错误——固定窗口本身就是
// 验证前的宽限期，检测只用于缩短它。
type Checker struct {
	Resolvers []string      // 解析器地址 (host:port)
	Interval  time.Duration // 轮询间隔
	Timeout   time.Duration // 单次查询超时
}

// NewChecker 创建检测器
func NewChecker() *Checker {
	return &Checker{
		Resolvers: []string{"8.8.8.8:53", "1.1.1.1:53"},
		Interval:  15 * time.Second,
		Timeout:   5 * time.Second,
	}
}

// WaitForTXT 在 window 时间内等待 name 的 TXT 记录出现指定值
func (c *Checker) WaitForTXT(ctx context.Context, name, value string, window time.Duration) error {
	deadline := time.Now().Add(window)
	log.Printf("[传播检测] 等待 %s 的TXT记录传播 (窗口: %s)...", name, window)

	ticker := time.NewTicker(c.Interval)
	defer ticker.Stop()

	for {
		if c.visibleEverywhere(ctx, name, value) {
			log.Printf("[传播检测] 记录已在所有解析器上可见")
			return nil
		}

		if time.Now().After(deadline) {
			log.Printf("[传播检测] 等待窗口已耗尽，记录未确认，继续验证流程")
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// visibleEverywhere 检查记录值是否在所有解析器上可见
func (c *Checker) visibleEverywhere(ctx context.Context, name, value string) bool {
	for _, resolver := range c.Resolvers {
		values, err := c.queryTXT(ctx, resolver, name)
		if err != nil {
			log.Printf("[传播检测] 查询 %s 失败: %v", resolver, err)
			return false
		}
		if !contains(values, value) {
			return false
		}
	}
	return true
}

// queryTXT 向指定解析器查询TXT记录
func (c *Checker) queryTXT(ctx context.Context, resolver, name string) ([]string, error) {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(name), dns.TypeTXT)

	client := &dns.Client{Timeout: c.Timeout}
	in, _, err := client.ExchangeContext(ctx, m, resolver)
	if err != nil {
		return nil, err
	}

	var values []string
	for _, answer := range in.Answer {
		if txt, ok := answer.(*dns.TXT); ok {
			values = append(values, strings.Join(txt.Txt, ""))
		}
	}
	return values, nil
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
