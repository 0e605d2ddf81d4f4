package dnscheck

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/miekg/dns"
)

// startTestResolver 启动一个只回答TXT查询的本地DNS服务
func startTestResolver(t *testing.T, records map[string][]string) string {
	t.Helper()

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("监听失败: %v", err)
	}

	srv := &dns.Server{
		PacketConn: pc,
		Handler: dns.HandlerFunc(func(w dns.ResponseWriter, r *dns.Msg) {
			m := new(dns.Msg)
			m.SetReply(r)
			for _, q := range r.Question {
				if q.Qtype != dns.TypeTXT {
					continue
				}
				for _, value := range records[q.Name] {
					m.Answer = append(m.Answer, &dns.TXT{
						Hdr: dns.RR_Header{
							Name:   q.Name,
							Rrtype: dns.TypeTXT,
							Class:  dns.ClassINET,
							Ttl:    60,
						},
						Txt: []string{value},
					})
				}
			}
			w.WriteMsg(m)
		}),
	}

	go srv.ActivateAndServe()
	t.Cleanup(func() { srv.Shutdown() })

	return pc.LocalAddr().String()
}

func newTestChecker(addr string) *Checker {
	return &Checker{
		Resolvers: []string{addr},
		Interval:  50 * time.Millisecond,
		Timeout:   time.Second,
	}
}

func TestWaitForTXT_记录可见时立即返回(t *testing.T) {
	addr := startTestResolver(t, map[string][]string{
		"_acme-challenge.example.com.": {"tokenvalue"},
	})
	c := newTestChecker(addr)

	start := time.Now()
	err := c.WaitForTXT(context.Background(), "_acme-challenge.example.com", "tokenvalue", time.Minute)
	if err != nil {
		t.Fatalf("WaitForTXT 失败: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("记录已可见但等待了 %s", elapsed)
	}
}

func TestWaitForTXT_窗口耗尽不是错误(t *testing.T) {
	addr := startTestResolver(t, nil)
	c := newTestChecker(addr)

	// 固定窗口本身是验证前的宽限期，耗尽后继续流程
	err := c.WaitForTXT(context.Background(), "_acme-challenge.example.com", "tokenvalue", 100*time.Millisecond)
	if err != nil {
		t.Fatalf("窗口耗尽应返回 nil，实际: %v", err)
	}
}

func TestWaitForTXT_值不匹配时继续等待(t *testing.T) {
	addr := startTestResolver(t, map[string][]string{
		"_acme-challenge.example.com.": {"oldvalue"},
	})
	c := newTestChecker(addr)

	err := c.WaitForTXT(context.Background(), "_acme-challenge.example.com", "newvalue", 100*time.Millisecond)
	if err != nil {
		t.Fatalf("WaitForTXT 失败: %v", err)
	}
}

func TestWaitForTXT_取消(t *testing.T) {
	addr := startTestResolver(t, nil)
	c := newTestChecker(addr)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	err := c.WaitForTXT(ctx, "_acme-challenge.example.com", "tokenvalue", time.Hour)
	if err == nil {
		t.Fatal("取消后应返回错误")
	}
}
