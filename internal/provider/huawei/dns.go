package huawei

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/huaweicloud/huaweicloud-sdk-go-v3/core/auth/basic"
	dns "github.com/huaweicloud/huaweicloud-sdk-go-v3/services/dns/v2"
	dnsModel "github.com/huaweicloud/huaweicloud-sdk-go-v3/services/dns/v2/model"
	dnsRegion "github.com/huaweicloud/huaweicloud-sdk-go-v3/services/dns/v2/region"

	"gratisdns-manager/internal/config"
	domainpkg "gratisdns-manager/internal/domain"
	"gratisdns-manager/internal/provider"
)

// DNSProvider 华为云DNS提供商（备选后端）
type DNSProvider struct {
	client *dns.DnsClient
}

// NewDNSProvider 创建华为云DNS提供商
func NewDNSProvider(cfg *config.HuaweiConfig) (*DNSProvider, error) {
	auth := basic.NewCredentialsBuilder().
		WithAk(cfg.AccessKey).
		WithSk(cfg.SecretKey).
		Build()

	region := cfg.Region
	if region == "" {
		region = "cn-north-4"
	}

	regionObj, err := dnsRegion.SafeValueOf(region)
	if err != nil {
		return nil, fmt.Errorf("无效的区域: %s", region)
	}

	client := dns.NewDnsClient(
		dns.DnsClientBuilder().
			WithRegion(regionObj).
			WithCredential(auth).
			Build())

	return &DNSProvider{client: client}, nil
}

// Name 返回提供商名称
func (p *DNSProvider) Name() string {
	return "huawei"
}

// getZoneID 获取域名的Zone ID
func (p *DNSProvider) getZoneID(domain string) (string, error) {
	request := &dnsModel.ListPublicZonesRequest{}

	response, err := p.client.ListPublicZones(request)
	if err != nil {
		return "", fmt.Errorf("获取Zone列表失败: %w", err)
	}

	if response.Zones != nil {
		for _, zone := range *response.Zones {
			if zone.Name != nil {
				zoneName := strings.TrimSuffix(*zone.Name, ".")
				if zoneName == domain {
					return *zone.Id, nil
				}
			}
		}
	}

	return "", fmt.Errorf("未找到域名 %s 的Zone", domain)
}

// AddTXTRecord 添加TXT验证记录
func (p *DNSProvider) AddTXTRecord(ctx context.Context, domain, validationDomainName, value string) error {
	subDomain, err := domainpkg.SplitValidationDomain(validationDomainName, domain)
	if err != nil {
		return fmt.Errorf("%w: %v", provider.ErrPrecondition, err)
	}

	log.Printf("[华为云DNS] 添加记录: %s.%s -> %s", subDomain, domain, value)

	zoneID, err := p.getZoneID(domain)
	if err != nil {
		return err
	}

	// TXT 记录值需要带引号
	recordName := validationDomainName + "."
	request := &dnsModel.CreateRecordSetRequest{
		ZoneId: zoneID,
		Body: &dnsModel.CreateRecordSetRequestBody{
			Name:    recordName,
			Type:    "TXT",
			Records: []string{fmt.Sprintf("%q", value)},
		},
	}

	if _, err := p.client.CreateRecordSet(request); err != nil {
		return fmt.Errorf("添加TXT记录失败: %w", err)
	}

	log.Printf("[华为云DNS] 记录已添加")
	return nil
}

// DelTXTRecord 删除TXT验证记录（按记录值查找，已不存在视为成功）
func (p *DNSProvider) DelTXTRecord(ctx context.Context, domain, validationDomainName, value string) error {
	if _, err := domainpkg.SplitValidationDomain(validationDomainName, domain); err != nil {
		return fmt.Errorf("%w: %v", provider.ErrPrecondition, err)
	}

	zoneID, err := p.getZoneID(domain)
	if err != nil {
		return err
	}

	recordSetID, found, err := p.findTXTRecordSet(ctx, zoneID, validationDomainName, value)
	if err != nil {
		return err
	}
	if !found {
		log.Printf("[华为云DNS] 记录已不存在，无需删除")
		return nil
	}

	log.Printf("[华为云DNS] 删除记录: ID=%s", recordSetID)

	request := &dnsModel.DeleteRecordSetRequest{
		ZoneId:      zoneID,
		RecordsetId: recordSetID,
	}

	if _, err := p.client.DeleteRecordSet(request); err != nil {
		return fmt.Errorf("删除TXT记录失败: %w", err)
	}

	log.Printf("[华为云DNS] 记录已删除")
	return nil
}

// findTXTRecordSet 按记录值查找TXT记录集ID
func (p *DNSProvider) findTXTRecordSet(ctx context.Context, zoneID, validationDomainName, value string) (string, bool, error) {
	recordName := validationDomainName + "."
	recordType := "TXT"

	request := &dnsModel.ListRecordSetsByZoneRequest{
		ZoneId: zoneID,
		Name:   &recordName,
		Type:   &recordType,
	}

	response, err := p.client.ListRecordSetsByZone(request)
	if err != nil {
		return "", false, fmt.Errorf("查询DNS记录失败: %w", err)
	}

	quoted := fmt.Sprintf("%q", value)
	if response.Recordsets != nil {
		for _, recordSet := range *response.Recordsets {
			if recordSet.Name == nil || *recordSet.Name != recordName || recordSet.Records == nil {
				continue
			}
			for _, record := range *recordSet.Records {
				if record == quoted || record == value {
					return *recordSet.Id, true, nil
				}
			}
		}
	}

	return "", false, nil
}
