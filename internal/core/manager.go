package core

import (
	"context"
	"fmt"
	"log"
	"time"

	acmepkg "gratisdns-manager/internal/acme"
	"gratisdns-manager/internal/config"
	"gratisdns-manager/internal/dnscheck"
	"gratisdns-manager/internal/notification"
	"gratisdns-manager/internal/provider"
	"gratisdns-manager/internal/storage"
)

// Manager 证书管理器
type Manager struct {
	config    *config.Config
	factory   *Factory
	storage   *storage.FileStorage
	validator *Validator
	executor  *Executor
	checker   *dnscheck.Checker
	notifier  *notification.WebhookNotifier
	issuer    *acmepkg.Issuer
}

// NewManager 创建管理器
func NewManager(cfg *config.Config) (*Manager, error) {
	store := storage.NewFileStorage(cfg.OutputDir)

	accountKey, err := acmepkg.LoadOrCreateAccountKey(store.GetAccountKeyPath())
	if err != nil {
		return nil, fmt.Errorf("准备ACME账户私钥失败: %w", err)
	}

	return &Manager{
		config:    cfg,
		factory:   NewFactory(cfg),
		storage:   store,
		validator: NewValidator(),
		executor:  NewExecutor(),
		checker:   dnscheck.NewChecker(),
		notifier:  notification.NewWebhookNotifier(cfg.Webhook),
		issuer:    acmepkg.NewIssuer(cfg.ACME, accountKey),
	}, nil
}

// Run 运行证书管理
func (m *Manager) Run(ctx context.Context) error {
	log.Println("========== 开始检查证书 ==========")

	if err := m.issuer.Register(ctx); err != nil {
		return err
	}

	for _, domainCfg := range m.config.Domains {
		if err := m.ProcessDomain(ctx, domainCfg); err != nil {
			log.Printf("处理域名 %s 失败: %v", domainCfg.Domain, err)
			m.notifier.NotifyCertFailed(ctx, domainCfg.Domain, err.Error())
		}
	}

	log.Println("========== 检查完成 ==========")
	return nil
}

// ProcessDomain 处理单个域名
func (m *Manager) ProcessDomain(ctx context.Context, domainCfg config.DomainConfig) error {
	domain := domainCfg.Domain
	names := domainCfg.AllDomains()
	renewDays := domainCfg.RenewDays
	dnsProviderName := domainCfg.GetDNSProvider()

	log.Printf("\n========== 处理域名: %s ==========", domain)
	log.Printf("  DNS提供商: %s", dnsProviderName)
	if len(names) > 1 {
		log.Printf("  证书域名: %v", names)
	}

	// 1. 检查线上证书是否需要续期
	needRenew, expiry, err := m.validator.NeedRenew(names, renewDays)
	if err != nil {
		log.Printf("检查线上证书失败: %v", err)
	}

	if !needRenew {
		log.Printf("线上证书有效，无需续期")
		return nil
	}

	if !expiry.IsZero() {
		daysRemaining := int(time.Until(expiry).Hours() / 24)
		log.Printf("线上证书将在 %s 过期，需要续期", expiry.Format("2006-01-02"))
		m.notifier.NotifyCertExpiring(ctx, domain, daysRemaining)
	}

	// 2. 申请新证书
	dnsProvider, err := m.factory.GetDNSProvider(dnsProviderName)
	if err != nil {
		return fmt.Errorf("获取DNS提供商失败: %w", err)
	}

	cert, err := m.obtainCertificate(ctx, dnsProvider, names)
	if err != nil {
		return err
	}

	if err := m.storage.SaveCertificate(domain, cert); err != nil {
		return fmt.Errorf("保存证书失败: %w", err)
	}

	m.notifier.NotifyCertRenewed(ctx, domain, dnsProviderName)

	// 3. 执行后置命令
	postCommand := domainCfg.PostCommand
	if postCommand == "" {
		postCommand = m.config.PostCommand
	}

	if postCommand != "" {
		vars := m.executor.BuildVars(
			domain,
			m.storage.GetCertDir(domain),
			m.storage.GetCertPath(domain),
			m.storage.GetKeyPath(domain),
			m.storage.GetFullchainPath(domain),
		)
		if err := m.executor.RunPostCommand(ctx, postCommand, vars); err != nil {
			log.Printf("执行后置命令失败: %v", err)
		}
	}

	log.Printf("域名 %s 的证书处理完成！", domain)
	return nil
}

// obtainCertificate 通过ACME dns-01验证申请证书
//
// names 的首个元素是主域名，其余为 SAN，每个域名对应一项独立验证。
// 验证记录在函数返回前清理，无论申请成功与否；
// 清理失败只记录并通知，不影响已取得的证书。
func (m *Manager) obtainCertificate(ctx context.Context, dnsProvider provider.DNSProvider, names []string) (*provider.Certificate, error) {
	domain := names[0]
	order, err := m.issuer.CreateOrder(ctx, names)
	if err != nil {
		return nil, err
	}

	if len(order.Challenges) == 0 {
		log.Printf("所有授权已通过，直接签发")
	} else {
		added := make([]acmepkg.Challenge, 0, len(order.Challenges))
		defer func() {
			m.cleanupChallenges(dnsProvider, added)
		}()

		// 添加验证记录
		for _, ch := range order.Challenges {
			if err := dnsProvider.AddTXTRecord(ctx, ch.Domain, ch.ValidationName, ch.Value); err != nil {
				return nil, fmt.Errorf("添加DNS验证记录失败: %w", err)
			}
			added = append(added, ch)
		}

		// 等待记录传播
		window := time.Duration(m.config.PropagationSeconds) * time.Second
		for _, ch := range added {
			if err := m.checker.WaitForTXT(ctx, ch.ValidationName, ch.Value, window); err != nil {
				return nil, fmt.Errorf("等待DNS记录传播失败: %w", err)
			}
		}

		// 通知CA验证
		if err := m.issuer.CompleteChallenges(ctx, order); err != nil {
			for _, ch := range added {
				m.notifier.NotifyDNSTimeout(ctx, domain, ch.ValidationName)
			}
			return nil, fmt.Errorf("域名验证失败: %w", err)
		}
	}

	cert, err := m.issuer.Issue(ctx, order, names)
	if err != nil {
		return nil, fmt.Errorf("签发证书失败: %w", err)
	}

	return cert, nil
}

// cleanupChallenges 清理已添加的验证记录
//
// 使用独立的超时 context：即使主流程被取消，也尽量不残留记录。
func (m *Manager) cleanupChallenges(dnsProvider provider.DNSProvider, challenges []acmepkg.Challenge) {
	if len(challenges) == 0 {
		return
	}

	cleanupCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	for _, ch := range challenges {
		if err := dnsProvider.DelTXTRecord(cleanupCtx, ch.Domain, ch.ValidationName, ch.Value); err != nil {
			log.Printf("清理验证记录 %s 失败: %v", ch.ValidationName, err)
			m.notifier.NotifyCleanupFailed(cleanupCtx, ch.Domain, ch.ValidationName, err.Error())
		}
	}
}

// GetConfig 获取配置
func (m *Manager) GetConfig() *config.Config {
	return m.config
}
