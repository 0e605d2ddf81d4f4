package tencent

import (
	"context"
	"errors"
	"testing"

	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common"
	dnspod "github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/dnspod/v20210323"
)

// fakeDNSPod 模拟DNSPod客户端，记录收到的写操作
type fakeDNSPod struct {
	records []*dnspod.RecordListItem // DescribeRecordList 的返回
	listErr error

	created  []*dnspod.CreateRecordRequest
	modified []*dnspod.ModifyRecordRequest
	deleted  []*dnspod.DeleteRecordRequest
}

func (f *fakeDNSPod) CreateRecord(request *dnspod.CreateRecordRequest) (*dnspod.CreateRecordResponse, error) {
	f.created = append(f.created, request)
	return dnspod.NewCreateRecordResponse(), nil
}

func (f *fakeDNSPod) ModifyRecord(request *dnspod.ModifyRecordRequest) (*dnspod.ModifyRecordResponse, error) {
	f.modified = append(f.modified, request)
	return dnspod.NewModifyRecordResponse(), nil
}

func (f *fakeDNSPod) DescribeRecordList(request *dnspod.DescribeRecordListRequest) (*dnspod.DescribeRecordListResponse, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	response := dnspod.NewDescribeRecordListResponse()
	response.Response = &dnspod.DescribeRecordListResponseParams{
		RecordList: f.records,
	}
	return response, nil
}

func (f *fakeDNSPod) DeleteRecord(request *dnspod.DeleteRecordRequest) (*dnspod.DeleteRecordResponse, error) {
	f.deleted = append(f.deleted, request)
	return dnspod.NewDeleteRecordResponse(), nil
}

func txtRecord(id uint64, name, value string) *dnspod.RecordListItem {
	return &dnspod.RecordListItem{
		RecordId: common.Uint64Ptr(id),
		Name:     common.StringPtr(name),
		Value:    common.StringPtr(value),
		Type:     common.StringPtr("TXT"),
	}
}

func TestAddTXTRecord_无同名记录时创建(t *testing.T) {
	f := &fakeDNSPod{}
	p := &DNSProvider{client: f}

	err := p.AddTXTRecord(context.Background(), "example.com", "_acme-challenge.example.com", "token1")
	if err != nil {
		t.Fatalf("AddTXTRecord 失败: %v", err)
	}

	if len(f.created) != 1 || len(f.modified) != 0 {
		t.Fatalf("created=%d modified=%d，期望只创建一次", len(f.created), len(f.modified))
	}
	req := f.created[0]
	if got := *req.SubDomain; got != "_acme-challenge" {
		t.Errorf("SubDomain = %q，期望 _acme-challenge", got)
	}
	if got := *req.Value; got != "token1" {
		t.Errorf("Value = %q，期望 token1", got)
	}
}

func TestAddTXTRecord_同名记录已存在时更新(t *testing.T) {
	f := &fakeDNSPod{
		records: []*dnspod.RecordListItem{
			txtRecord(42, "_acme-challenge", "oldtoken"),
		},
	}
	p := &DNSProvider{client: f}

	// 重复添加不得累积重复记录
	err := p.AddTXTRecord(context.Background(), "example.com", "_acme-challenge.example.com", "newtoken")
	if err != nil {
		t.Fatalf("AddTXTRecord 失败: %v", err)
	}

	if len(f.created) != 0 || len(f.modified) != 1 {
		t.Fatalf("created=%d modified=%d，期望只更新一次", len(f.created), len(f.modified))
	}
	req := f.modified[0]
	if got := *req.RecordId; got != 42 {
		t.Errorf("RecordId = %d，期望 42", got)
	}
	if got := *req.Value; got != "newtoken" {
		t.Errorf("Value = %q，期望 newtoken", got)
	}
}

func TestDelTXTRecord_按值删除(t *testing.T) {
	f := &fakeDNSPod{
		records: []*dnspod.RecordListItem{
			txtRecord(7, "_acme-challenge", "token1"),
		},
	}
	p := &DNSProvider{client: f}

	err := p.DelTXTRecord(context.Background(), "example.com", "_acme-challenge.example.com", "token1")
	if err != nil {
		t.Fatalf("DelTXTRecord 失败: %v", err)
	}

	if len(f.deleted) != 1 {
		t.Fatalf("deleted=%d，期望 1", len(f.deleted))
	}
	if got := *f.deleted[0].RecordId; got != 7 {
		t.Errorf("RecordId = %d，期望 7", got)
	}
}

func TestDelTXTRecord_记录已不存在(t *testing.T) {
	f := &fakeDNSPod{
		listErr: errors.New("InvalidParameter.NoRecord: 记录列表为空"),
	}
	p := &DNSProvider{client: f}

	// 幂等删除：没有任何记录时直接成功
	err := p.DelTXTRecord(context.Background(), "example.com", "_acme-challenge.example.com", "token1")
	if err != nil {
		t.Fatalf("期望成功，实际: %v", err)
	}
	if len(f.deleted) != 0 {
		t.Error("记录不存在时不应发出删除请求")
	}
}
