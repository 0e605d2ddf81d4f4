package main

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name       string
		argv       []string
		wantConfig string
		wantCmd    string
		wantRest   []string
	}{
		{"无参数", nil, "config.yaml", "", nil},
		{"只有配置文件", []string{"my.yaml"}, "my.yaml", "", nil},
		{"配置文件加命令", []string{"my.yaml", "start"}, "my.yaml", "start", nil},
		{"省略配置文件的命令", []string{"start"}, "config.yaml", "start", nil},
		{"省略配置文件的check", []string{"check", "example.com"}, "config.yaml", "check", []string{"example.com"}},
		{"完整的add", []string{"my.yaml", "add", "example.com", "_acme-challenge.example.com", "abc"},
			"my.yaml", "add", []string{"example.com", "_acme-challenge.example.com", "abc"}},
		{"省略配置文件的del带提供商", []string{"del", "example.com", "_acme-challenge.example.com", "abc", "aliyun"},
			"config.yaml", "del", []string{"example.com", "_acme-challenge.example.com", "abc", "aliyun"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath, command, rest := parseArgs(tt.argv)
			if configPath != tt.wantConfig {
				t.Errorf("configPath = %q，期望 %q", configPath, tt.wantConfig)
			}
			if command != tt.wantCmd {
				t.Errorf("command = %q，期望 %q", command, tt.wantCmd)
			}
			if diff := cmp.Diff(tt.wantRest, rest); diff != "" {
				t.Errorf("rest 不符 (-want +got):\n%s", diff)
			}
		})
	}
}
