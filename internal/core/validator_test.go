package core

import "testing"

func TestCoversAll(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name        string
		certDomains []string
		targets     []string
		want        bool
	}{
		{
			"单域名完全匹配",
			[]string{"example.com"},
			[]string{"example.com"},
			true,
		},
		{
			"证书覆盖主域名和SAN",
			[]string{"example.com", "www.example.com"},
			[]string{"example.com", "www.example.com"},
			true,
		},
		{
			"证书漏掉SAN",
			[]string{"example.com"},
			[]string{"example.com", "www.example.com"},
			false,
		},
		{
			"通配符覆盖SAN",
			[]string{"example.com", "*.example.com"},
			[]string{"example.com", "www.example.com"},
			true,
		},
		{
			"域名完全不匹配",
			[]string{"other.org"},
			[]string{"example.com"},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := v.coversAll(tt.certDomains, tt.targets); got != tt.want {
				t.Errorf("coversAll(%v, %v) = %v，期望 %v",
					tt.certDomains, tt.targets, got, tt.want)
			}
		})
	}
}
