package gratisdns

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pquerna/otp/totp"

	domainpkg "gratisdns-manager/internal/domain"
	"gratisdns-manager/internal/provider"
)

const (
	// DefaultBaseURL GratisDNS 管理后台地址
	DefaultBaseURL = "https://admin.gratisdns.com"

	// DefaultTTL TXT 验证记录的 TTL（秒）
	DefaultTTL = 60

	// DefaultTimeout 单次 HTTP 请求超时
	DefaultTimeout = 30 * time.Second

	// deletedMarker 删除成功时响应中出现的标记，逐字匹配
	deletedMarker = "Record was deleted"
)

// Config GratisDNS提供商配置
type Config struct {
	Username  string        // 登录用户名
	Password  string        // 登录密码
	OTPSecret string        // TOTP 共享密钥 (base32)
	BaseURL   string        // 管理后台地址，默认 DefaultBaseURL
	TTL       int           // TXT 记录 TTL，默认 60
	Timeout   time.Duration // 单次请求超时，默认 30s
}

// Provider GratisDNS 提供商
//
// GratisDNS 没有公开 API，这里直接驱动其网页管理后台：
// TOTP 登录后，所有操作都是对同一地址带 action 参数的 GET/POST，
// 删除记录所需的记录ID只能从"修改DNS设置"页面的 HTML 中抓取。
// action 名和参数名是逆向出来的事实接口，必须逐字保留。
type Provider struct {
	cfg Config
}

// New 创建GratisDNS提供商
func New(cfg Config) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Provider{cfg: cfg}
}

// Name 返回提供商名称
func (p *Provider) Name() string {
	return "gratisdns"
}

// AddTXTRecord 添加TXT验证记录
//
// 流程: 前置检查 -> 登录 -> 确认域名在账户中 -> 提交添加请求。
// 添加请求的响应不做校验：返回 nil 只表示"请求已被接受"，
// 记录是否生效由调用方的传播等待兜底。
func (p *Provider) AddTXTRecord(ctx context.Context, domain, validationDomainName, value string) error {
	subDomain, err := domainpkg.SplitValidationDomain(validationDomainName, domain)
	if err != nil {
		return fmt.Errorf("%w: %v", provider.ErrPrecondition, err)
	}

	s, err := p.newSession()
	if err != nil {
		return err
	}

	if err := s.login(ctx); err != nil {
		return err
	}
	if err := s.checkDomain(ctx, domain); err != nil {
		return err
	}

	log.Printf("[GratisDNS] 添加记录: %s.%s -> %s (TTL: %d)", subDomain, domain, value, p.cfg.TTL)

	params := url.Values{
		"action":      {"dns_primary_record_add_txt"},
		"user_domain": {domain},
	}
	data := url.Values{
		"action":      {"dns_primary_record_added_txt"},
		"name":        {subDomain},
		"ttl":         {strconv.Itoa(p.cfg.TTL)},
		"txtdata":     {value},
		"user_domain": {domain},
	}
	if _, err := s.postForm(ctx, params, data); err != nil {
		return fmt.Errorf("添加TXT记录失败: %w", err)
	}

	log.Printf("[GratisDNS] 记录已提交")
	return nil
}

// DelTXTRecord 删除TXT验证记录
//
// 按记录值在页面中查找记录ID再删除。记录已不存在时直接返回成功
// （幂等删除，目标状态已达成），不发出删除请求。
func (p *Provider) DelTXTRecord(ctx context.Context, domain, validationDomainName, value string) error {
	// 子域名本身不参与删除（按记录值查找），但契约照样校验
	if _, err := domainpkg.SplitValidationDomain(validationDomainName, domain); err != nil {
		return fmt.Errorf("%w: %v", provider.ErrPrecondition, err)
	}

	s, err := p.newSession()
	if err != nil {
		return err
	}

	if err := s.login(ctx); err != nil {
		return err
	}
	if err := s.checkDomain(ctx, domain); err != nil {
		return err
	}

	id, found, err := s.findTXTRecordID(ctx, domain, value)
	if err != nil {
		return err
	}
	if !found {
		log.Printf("[GratisDNS] 记录已不存在，无需删除")
		return nil
	}

	log.Printf("[GratisDNS] 删除记录: ID=%d", id)

	params := url.Values{
		"action":      {"dns_primary_delete_txt"},
		"id":          {strconv.Itoa(id)},
		"user_domain": {domain},
	}
	body, err := s.get(ctx, params)
	if err != nil {
		return fmt.Errorf("删除TXT记录失败: %w", err)
	}
	if !strings.Contains(body, deletedMarker) {
		return fmt.Errorf("响应中缺少 %q 标记: %w", deletedMarker, provider.ErrDeletionFailed)
	}

	log.Printf("[GratisDNS] 记录已删除")
	return nil
}

// CheckAccess 登录并确认域名在账户中（凭证自检，不改动任何记录）
func (p *Provider) CheckAccess(ctx context.Context, domain string) error {
	s, err := p.newSession()
	if err != nil {
		return err
	}
	if err := s.login(ctx); err != nil {
		return err
	}
	return s.checkDomain(ctx, domain)
}

// session 一次操作内的已认证HTTP会话
//
// 每次公开操作都新建会话（全新 cookie jar），操作结束即废弃，
// 不跨操作复用登录态。并发处理多个域名时各自持有独立会话。
type session struct {
	cfg    Config
	client *http.Client
}

// newSession 创建带cookie的HTTP会话
func (p *Provider) newSession() (*session, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("创建cookie jar失败: %w", err)
	}
	return &session{
		cfg: p.cfg,
		client: &http.Client{
			Jar:     jar,
			Timeout: p.cfg.Timeout,
		},
	}, nil
}

// login 登录GratisDNS
//
// 提交用户名/密码和当前TOTP动态码，再请求用户资料页确认：
// 响应中出现用户名即视为登录成功（后台没有结构化的成功信号）。
// 单次尝试，失败不重试。
func (s *session) login(ctx context.Context) error {
	code, err := totp.GenerateCode(s.cfg.OTPSecret, time.Now())
	if err != nil {
		return fmt.Errorf("生成TOTP动态码失败: %w", err)
	}

	data := url.Values{
		"login":    {s.cfg.Username},
		"password": {s.cfg.Password},
		"action":   {"logmein"},
		"oauth":    {code},
	}
	if _, err := s.postForm(ctx, nil, data); err != nil {
		return fmt.Errorf("提交登录请求失败: %w", err)
	}

	body, err := s.get(ctx, url.Values{"action": {"usersetup_user"}})
	if err != nil {
		return fmt.Errorf("确认登录状态失败: %w", err)
	}
	if !strings.Contains(body, s.cfg.Username) {
		return fmt.Errorf("用户 %s: %w", s.cfg.Username, provider.ErrAuthentication)
	}

	return nil
}

// checkDomain 确认域名在账户中
//
// 对域名列表页做子串匹配。这是一个弱存在性检查，
// 但它就是提供商的事实契约，保持原样。
func (s *session) checkDomain(ctx context.Context, domain string) error {
	body, err := s.get(ctx, url.Values{"action": {"dns_primarydns"}})
	if err != nil {
		return fmt.Errorf("获取域名列表失败: %w", err)
	}
	if !strings.Contains(body, domain) {
		return fmt.Errorf("账户 %s 中找不到域名 %s: %w", s.cfg.Username, domain, provider.ErrDomainNotFound)
	}
	return nil
}

// findTXTRecordID 从"修改DNS设置"页面中抓取记录ID
//
// 返回 (id, true, nil) 表示找到；(0, false, nil) 表示记录值根本不在
// 页面中，这是正常结果而非错误。记录值在页面中但其后找不到
// 删除链接时返回 ErrParse——说明页面结构变了，抓取契约已失效。
func (s *session) findTXTRecordID(ctx context.Context, domain, value string) (int, bool, error) {
	body, err := s.get(ctx, url.Values{
		"action":      {"dns_primary_changeDNSsetup"},
		"user_domain": {domain},
	})
	if err != nil {
		return 0, false, fmt.Errorf("获取记录列表页失败: %w", err)
	}

	if !strings.Contains(body, value) {
		return 0, false, nil
	}

	// 记录值后（允许跨行穿过中间标记）应跟着携带数字ID的删除链接
	re := regexp.MustCompile(`(?s)>` + regexp.QuoteMeta(value) + `.*?action=dns_primary_delete_txt(?:&|&amp;)id=([0-9]+)`)
	m := re.FindStringSubmatch(body)
	if m == nil {
		return 0, false, fmt.Errorf("记录值 %q 存在但找不到删除链接: %w", value, provider.ErrParse)
	}

	id, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false, fmt.Errorf("记录ID %q 无效: %w", m[1], provider.ErrParse)
	}
	return id, true, nil
}

// get 发送GET请求并返回响应体
func (s *session) get(ctx context.Context, params url.Values) (string, error) {
	return s.do(ctx, http.MethodGet, params, nil)
}

// postForm 发送表单POST请求并返回响应体
// params 拼在URL上，data 作为表单体（后台区分两者）
func (s *session) postForm(ctx context.Context, params, data url.Values) (string, error) {
	return s.do(ctx, http.MethodPost, params, data)
}

func (s *session) do(ctx context.Context, method string, params, data url.Values) (string, error) {
	u := s.cfg.BaseURL
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var reqBody io.Reader
	if data != nil {
		reqBody = strings.NewReader(data.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return "", fmt.Errorf("创建请求失败: %w", err)
	}
	if data != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("请求失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("读取响应失败: %w", err)
	}
	return string(body), nil
}
