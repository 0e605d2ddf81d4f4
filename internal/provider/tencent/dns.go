package tencent

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common"
	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common/profile"
	dnspod "github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/dnspod/v20210323"

	"gratisdns-manager/internal/config"
	domainpkg "gratisdns-manager/internal/domain"
	"gratisdns-manager/internal/provider"
)

// recordAPI DNSPod客户端中用到的记录操作
type recordAPI interface {
	CreateRecord(request *dnspod.CreateRecordRequest) (*dnspod.CreateRecordResponse, error)
	ModifyRecord(request *dnspod.ModifyRecordRequest) (*dnspod.ModifyRecordResponse, error)
	DescribeRecordList(request *dnspod.DescribeRecordListRequest) (*dnspod.DescribeRecordListResponse, error)
	DeleteRecord(request *dnspod.DeleteRecordRequest) (*dnspod.DeleteRecordResponse, error)
}

// DNSProvider 腾讯云DNS提供商 (DNSPod，备选后端)
type DNSProvider struct {
	client recordAPI
}

// NewDNSProvider 创建腾讯云DNS提供商
func NewDNSProvider(cfg *config.TencentConfig) (*DNSProvider, error) {
	credential := common.NewCredential(cfg.SecretID, cfg.SecretKey)
	cpf := profile.NewClientProfile()
	cpf.HttpProfile.Endpoint = "dnspod.tencentcloudapi.com"

	client, err := dnspod.NewClient(credential, "", cpf)
	if err != nil {
		return nil, fmt.Errorf("创建腾讯云DNSPod客户端失败: %w", err)
	}

	return &DNSProvider{client: client}, nil
}

// Name 返回提供商名称
func (p *DNSProvider) Name() string {
	return "tencent"
}

// AddTXTRecord 添加TXT验证记录
func (p *DNSProvider) AddTXTRecord(ctx context.Context, domain, validationDomainName, value string) error {
	subDomain, err := domainpkg.SplitValidationDomain(validationDomainName, domain)
	if err != nil {
		return fmt.Errorf("%w: %v", provider.ErrPrecondition, err)
	}

	log.Printf("[腾讯云DNS] 添加记录: %s.%s -> %s", subDomain, domain, value)

	// 同名记录已存在时更新，避免验证记录重复
	recordID, found, err := p.findTXTRecordBySubdomain(ctx, domain, subDomain)
	if err != nil {
		log.Printf("[腾讯云DNS] 检查现有记录失败: %v", err)
	}

	if found {
		request := dnspod.NewModifyRecordRequest()
		request.Domain = common.StringPtr(domain)
		request.SubDomain = common.StringPtr(subDomain)
		request.RecordType = common.StringPtr("TXT")
		request.RecordLine = common.StringPtr("默认")
		request.Value = common.StringPtr(value)
		request.RecordId = common.Uint64Ptr(recordID)

		if _, err := p.client.ModifyRecord(request); err != nil {
			return fmt.Errorf("更新TXT记录失败: %w", err)
		}
		log.Printf("[腾讯云DNS] 记录已更新")
		return nil
	}

	request := dnspod.NewCreateRecordRequest()
	request.Domain = common.StringPtr(domain)
	request.SubDomain = common.StringPtr(subDomain)
	request.RecordType = common.StringPtr("TXT")
	request.RecordLine = common.StringPtr("默认")
	request.Value = common.StringPtr(value)

	if _, err := p.client.CreateRecord(request); err != nil {
		return fmt.Errorf("添加TXT记录失败: %w", err)
	}

	log.Printf("[腾讯云DNS] 记录已添加")
	return nil
}

// DelTXTRecord 删除TXT验证记录（按记录值查找，已不存在视为成功）
func (p *DNSProvider) DelTXTRecord(ctx context.Context, domain, validationDomainName, value string) error {
	subDomain, err := domainpkg.SplitValidationDomain(validationDomainName, domain)
	if err != nil {
		return fmt.Errorf("%w: %v", provider.ErrPrecondition, err)
	}

	recordID, found, err := p.findTXTRecordID(ctx, domain, subDomain, value)
	if err != nil {
		return err
	}
	if !found {
		log.Printf("[腾讯云DNS] 记录已不存在，无需删除")
		return nil
	}

	log.Printf("[腾讯云DNS] 删除记录: ID=%d", recordID)

	request := dnspod.NewDeleteRecordRequest()
	request.Domain = common.StringPtr(domain)
	request.RecordId = common.Uint64Ptr(recordID)

	if _, err := p.client.DeleteRecord(request); err != nil {
		return fmt.Errorf("删除TXT记录失败: %w", err)
	}

	log.Printf("[腾讯云DNS] 记录已删除")
	return nil
}

// findTXTRecordID 按记录值查找TXT记录ID
func (p *DNSProvider) findTXTRecordID(ctx context.Context, domain, subDomain, value string) (uint64, bool, error) {
	records, err := p.listTXTRecords(domain, subDomain)
	if err != nil {
		return 0, false, err
	}

	for _, record := range records {
		if record.Value != nil && *record.Value == value && record.RecordId != nil {
			return *record.RecordId, true, nil
		}
	}

	return 0, false, nil
}

// findTXTRecordBySubdomain 查找同名TXT记录ID（不比较记录值）
func (p *DNSProvider) findTXTRecordBySubdomain(ctx context.Context, domain, subDomain string) (uint64, bool, error) {
	records, err := p.listTXTRecords(domain, subDomain)
	if err != nil {
		return 0, false, err
	}

	for _, record := range records {
		if record.Name != nil && *record.Name == subDomain && record.RecordId != nil {
			return *record.RecordId, true, nil
		}
	}

	return 0, false, nil
}

// listTXTRecords 列出子域名下的TXT记录
func (p *DNSProvider) listTXTRecords(domain, subDomain string) ([]*dnspod.RecordListItem, error) {
	request := dnspod.NewDescribeRecordListRequest()
	request.Domain = common.StringPtr(domain)
	request.Subdomain = common.StringPtr(subDomain)
	request.RecordType = common.StringPtr("TXT")

	response, err := p.client.DescribeRecordList(request)
	if err != nil {
		// 没有任何记录时腾讯云返回错误而不是空列表
		if strings.Contains(err.Error(), "NoRecord") || strings.Contains(err.Error(), "记录列表为空") {
			return nil, nil
		}
		return nil, fmt.Errorf("查询DNS记录失败: %w", err)
	}

	if response.Response == nil {
		return nil, nil
	}
	return response.Response.RecordList, nil
}
