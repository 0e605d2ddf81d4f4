package aliyun

import (
	"context"
	"fmt"
	"log"

	alidns "github.com/alibabacloud-go/alidns-20150109/v4/client"
	openapi "github.com/alibabacloud-go/darabonba-openapi/v2/client"
	"github.com/alibabacloud-go/tea/tea"

	"gratisdns-manager/internal/config"
	domainpkg "gratisdns-manager/internal/domain"
	"gratisdns-manager/internal/provider"
)

// DNSProvider 阿里云DNS提供商（备选后端）
type DNSProvider struct {
	client *alidns.Client
}

// NewDNSProvider 创建阿里云DNS提供商
func NewDNSProvider(cfg *config.AliyunConfig) (*DNSProvider, error) {
	endpoint := "alidns.cn-hangzhou.aliyuncs.com"
	if cfg.Region != "" {
		endpoint = fmt.Sprintf("alidns.%s.aliyuncs.com", cfg.Region)
	}

	clientConfig := &openapi.Config{
		AccessKeyId:     tea.String(cfg.AccessKeyID),
		AccessKeySecret: tea.String(cfg.AccessKeySecret),
		Endpoint:        tea.String(endpoint),
	}

	client, err := alidns.NewClient(clientConfig)
	if err != nil {
		return nil, fmt.Errorf("创建阿里云DNS客户端失败: %w", err)
	}

	return &DNSProvider{client: client}, nil
}

// Name 返回提供商名称
func (p *DNSProvider) Name() string {
	return "aliyun"
}

// AddTXTRecord 添加TXT验证记录
func (p *DNSProvider) AddTXTRecord(ctx context.Context, domain, validationDomainName, value string) error {
	subDomain, err := domainpkg.SplitValidationDomain(validationDomainName, domain)
	if err != nil {
		return fmt.Errorf("%w: %v", provider.ErrPrecondition, err)
	}

	log.Printf("[阿里云DNS] 添加记录: %s.%s -> %s", subDomain, domain, value)

	// 同名记录已存在时更新，避免验证记录重复
	recordID, _, err := p.findTXTRecord(ctx, domain, subDomain, value)
	if err != nil {
		log.Printf("[阿里云DNS] 检查现有记录失败: %v", err)
	}

	if recordID != "" {
		request := &alidns.UpdateDomainRecordRequest{
			RecordId: tea.String(recordID),
			RR:       tea.String(subDomain),
			Type:     tea.String("TXT"),
			Value:    tea.String(value),
		}
		if _, err := p.client.UpdateDomainRecord(request); err != nil {
			return fmt.Errorf("更新TXT记录失败: %w", err)
		}
		log.Printf("[阿里云DNS] 记录已更新")
		return nil
	}

	request := &alidns.AddDomainRecordRequest{
		DomainName: tea.String(domain),
		RR:         tea.String(subDomain),
		Type:       tea.String("TXT"),
		Value:      tea.String(value),
	}
	if _, err := p.client.AddDomainRecord(request); err != nil {
		return fmt.Errorf("添加TXT记录失败: %w", err)
	}

	log.Printf("[阿里云DNS] 记录已添加")
	return nil
}

// DelTXTRecord 删除TXT验证记录（按记录值查找，已不存在视为成功）
func (p *DNSProvider) DelTXTRecord(ctx context.Context, domain, validationDomainName, value string) error {
	subDomain, err := domainpkg.SplitValidationDomain(validationDomainName, domain)
	if err != nil {
		return fmt.Errorf("%w: %v", provider.ErrPrecondition, err)
	}

	_, recordID, err := p.findByValue(ctx, domain, subDomain, value)
	if err != nil {
		return err
	}
	if recordID == "" {
		log.Printf("[阿里云DNS] 记录已不存在，无需删除")
		return nil
	}

	log.Printf("[阿里云DNS] 删除记录: ID=%s", recordID)

	request := &alidns.DeleteDomainRecordRequest{
		RecordId: tea.String(recordID),
	}
	if _, err := p.client.DeleteDomainRecord(request); err != nil {
		return fmt.Errorf("删除TXT记录失败: %w", err)
	}

	log.Printf("[阿里云DNS] 记录已删除")
	return nil
}

// findTXTRecord 查找同名TXT记录，返回 (记录ID, 记录值)
func (p *DNSProvider) findTXTRecord(ctx context.Context, domain, subDomain, value string) (string, string, error) {
	request := &alidns.DescribeDomainRecordsRequest{
		DomainName: tea.String(domain),
		RRKeyWord:  tea.String(subDomain),
		Type:       tea.String("TXT"),
	}

	response, err := p.client.DescribeDomainRecords(request)
	if err != nil {
		return "", "", fmt.Errorf("查询DNS记录失败: %w", err)
	}

	if response.Body != nil && response.Body.DomainRecords != nil {
		for _, record := range response.Body.DomainRecords.Record {
			if tea.StringValue(record.RR) == subDomain {
				return tea.StringValue(record.RecordId), tea.StringValue(record.Value), nil
			}
		}
	}

	return "", "", nil
}

// findByValue 按记录值查找TXT记录，返回 (记录名, 记录ID)
func (p *DNSProvider) findByValue(ctx context.Context, domain, subDomain, value string) (string, string, error) {
	request := &alidns.DescribeDomainRecordsRequest{
		DomainName: tea.String(domain),
		RRKeyWord:  tea.String(subDomain),
		Type:       tea.String("TXT"),
	}

	response, err := p.client.DescribeDomainRecords(request)
	if err != nil {
		return "", "", fmt.Errorf("查询DNS记录失败: %w", err)
	}

	if response.Body != nil && response.Body.DomainRecords != nil {
		for _, record := range response.Body.DomainRecords.Record {
			if tea.StringValue(record.Value) == value {
				return tea.StringValue(record.RR), tea.StringValue(record.RecordId), nil
			}
		}
	}

	return "", "", nil
}
