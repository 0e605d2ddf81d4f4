package acme

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"log"

	"golang.org/x/crypto/acme"

	"gratisdns-manager/internal/config"
	"gratisdns-manager/internal/provider"
)

// Issuer ACME证书签发器
//
// 通过 ACME 协议（默认 Let's Encrypt）申请证书，
// dns-01 验证记录的添加/清理由 DNS 提供商完成。
type Issuer struct {
	cfg    config.ACMEConfig
	client *acme.Client
}

// NewIssuer 创建签发器
func NewIssuer(cfg config.ACMEConfig, accountKey *ecdsa.PrivateKey) *Issuer {
	return &Issuer{
		cfg: cfg,
		client: &acme.Client{
			Key:          accountKey,
			DirectoryURL: cfg.DirectoryURL,
		},
	}
}

// Register 注册ACME账户（已注册时直接返回）
func (i *Issuer) Register(ctx context.Context) error {
	account := &acme.Account{
		Contact: []string{"mailto:" + i.cfg.Email},
	}
	_, err := i.client.Register(ctx, account, acme.AcceptTOS)
	if errors.Is(err, acme.ErrAccountAlreadyExists) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("注册ACME账户失败: %w", err)
	}
	log.Printf("[ACME] 账户注册成功: %s", i.cfg.Email)
	return nil
}

// Order 一次证书申请订单及其待完成的dns-01验证
type Order struct {
	URI        string
	Challenges []Challenge
}

// Challenge 订单中的一项dns-01验证
type Challenge struct {
	provider.TXTChallenge

	authzURI string
	chal     *acme.Challenge
}

// CreateOrder 创建覆盖全部域名的订单并提取尚未通过的dns-01验证
//
// domains 的首个元素是主域名，其余为 SAN；每个标识符对应一项独立的
// dns-01 验证。所有验证记录都写进主域名的解析区。
func (i *Issuer) CreateOrder(ctx context.Context, domains []string) (*Order, error) {
	order, err := i.client.AuthorizeOrder(ctx, acme.DomainIDs(domains...))
	if err != nil {
		return nil, fmt.Errorf("创建ACME订单失败: %w", err)
	}

	result := &Order{URI: order.URI}

	for _, authzURL := range order.AuthzURLs {
		authz, err := i.client.GetAuthorization(ctx, authzURL)
		if err != nil {
			return nil, fmt.Errorf("获取授权信息失败: %w", err)
		}
		if authz.Status == acme.StatusValid {
			continue
		}

		var chal *acme.Challenge
		for _, c := range authz.Challenges {
			if c.Type == "dns-01" {
				chal = c
				break
			}
		}
		if chal == nil {
			return nil, fmt.Errorf("域名 %s 的授权不支持 dns-01 验证", authz.Identifier.Value)
		}

		value, err := i.client.DNS01ChallengeRecord(chal.Token)
		if err != nil {
			return nil, fmt.Errorf("计算dns-01记录值失败: %w", err)
		}

		result.Challenges = append(result.Challenges, Challenge{
			TXTChallenge: provider.TXTChallenge{
				Domain:         domains[0],
				ValidationName: "_acme-challenge." + authz.Identifier.Value,
				Value:          value,
			},
			authzURI: authz.URI,
			chal:     chal,
		})
	}

	return result, nil
}

// CompleteChallenges 通知CA开始验证并等待所有授权通过
//
// 必须在 TXT 记录添加并传播后调用。
func (i *Issuer) CompleteChallenges(ctx context.Context, order *Order) error {
	for _, ch := range order.Challenges {
		if _, err := i.client.Accept(ctx, ch.chal); err != nil {
			return fmt.Errorf("接受验证失败: %w", err)
		}
	}

	for _, ch := range order.Challenges {
		authz, err := i.client.WaitAuthorization(ctx, ch.authzURI)
		if err != nil {
			return fmt.Errorf("等待授权通过失败: %w", err)
		}
		log.Printf("[ACME] 授权通过: %s", authz.Identifier.Value)
	}

	return nil
}

// Issue 生成密钥对、提交CSR并下载证书链
//
// CSR 覆盖 domains 的全部域名，CN 取主域名。
func (i *Issuer) Issue(ctx context.Context, order *Order, domains []string) (*provider.Certificate, error) {
	certKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("生成证书私钥失败: %w", err)
	}

	csr, err := x509.CreateCertificateRequest(rand.Reader, &x509.CertificateRequest{
		Subject:  pkix.Name{CommonName: domains[0]},
		DNSNames: domains,
	}, certKey)
	if err != nil {
		return nil, fmt.Errorf("生成CSR失败: %w", err)
	}

	finalized, err := i.client.WaitOrder(ctx, order.URI)
	if err != nil {
		return nil, fmt.Errorf("等待订单就绪失败: %w", err)
	}

	der, _, err := i.client.CreateOrderCert(ctx, finalized.FinalizeURL, csr, true)
	if err != nil {
		return nil, fmt.Errorf("下载证书失败: %w", err)
	}
	if len(der) == 0 {
		return nil, fmt.Errorf("CA返回了空证书链")
	}

	keyPEM, err := encodeECKey(certKey)
	if err != nil {
		return nil, err
	}

	leaf := encodeCertPEM(der[0])
	chain := ""
	for _, d := range der {
		chain += encodeCertPEM(d)
	}

	log.Printf("[ACME] 证书已签发: %s (域名数: %d, 链长度: %d)", domains[0], len(domains), len(der))

	return &provider.Certificate{
		Certificate: leaf,
		PrivateKey:  keyPEM,
		Chain:       chain,
	}, nil
}

// encodeCertPEM DER证书转PEM
func encodeCertPEM(der []byte) string {
	return string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}))
}

// encodeECKey EC私钥转PEM
func encodeECKey(key *ecdsa.PrivateKey) (string, error) {
	der, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return "", fmt.Errorf("编码私钥失败: %w", err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der})), nil
}
