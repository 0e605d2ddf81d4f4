package domain

import "testing"

func TestSplitValidationDomain(t *testing.T) {
	tests := []struct {
		name           string
		validationName string
		mainDomain     string
		want           string
		wantErr        bool
	}{
		{"标准验证域名", "_acme-challenge.example.com", "example.com", "_acme-challenge", false},
		{"多级子域名", "_acme-challenge.www.example.com", "example.com", "_acme-challenge.www", false},
		{"不是子域名", "_acme-challenge.other.org", "example.com", "", true},
		{"与主域名相同", "example.com", "example.com", "", true},
		{"后缀相似但缺少点", "badexample.com", "example.com", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SplitValidationDomain(tt.validationName, tt.mainDomain)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SplitValidationDomain(%q, %q) 错误 = %v，期望出错 = %v",
					tt.validationName, tt.mainDomain, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("SplitValidationDomain(%q, %q) = %q，期望 %q",
					tt.validationName, tt.mainDomain, got, tt.want)
			}
		})
	}
}

func TestExtractMainDomain(t *testing.T) {
	tests := []struct {
		domain string
		want   string
	}{
		{"www.example.com", "example.com"},
		{"sub.test.example.com", "example.com"},
		{"example.com", "example.com"},
		{"localhost", "localhost"},
	}

	for _, tt := range tests {
		if got := ExtractMainDomain(tt.domain); got != tt.want {
			t.Errorf("ExtractMainDomain(%q) = %q，期望 %q", tt.domain, got, tt.want)
		}
	}
}

func TestMatchDomain(t *testing.T) {
	tests := []struct {
		certDomain   string
		targetDomain string
		want         bool
	}{
		{"example.com", "example.com", true},
		{"*.example.com", "www.example.com", true},
		{"*.example.com", "example.com", true},
		{"example.com", "www.example.com", false},
		{"*.other.org", "www.example.com", false},
	}

	for _, tt := range tests {
		if got := MatchDomain(tt.certDomain, tt.targetDomain); got != tt.want {
			t.Errorf("MatchDomain(%q, %q) = %v，期望 %v", tt.certDomain, tt.targetDomain, got, tt.want)
		}
	}
}
