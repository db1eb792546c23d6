package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	t.Setenv("STUDYHUB_PORT", "9090")
	t.Setenv("STUDYHUB_JWT_SECRET", "env-secret")
	t.Setenv("STUDYHUB_MAX_UPLOAD_BYTES", "1048576")
	t.Setenv("STUDYHUB_TRUSTED_PROXY_CIDRS", "10.0.0.0/8, 192.168.0.0/16")

	path := writeConfig(t, `
port: "8080"
logLevel: "info"
redisAddr: "localhost:6379"
sessionTTL: "12h"
signupRateLimitPerMinute: 5
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Port != "9090" {
		t.Fatalf("port = %q, want env override 9090", cfg.Port)
	}
	if cfg.JWTSecret != "env-secret" {
		t.Fatalf("jwtSecret = %q", cfg.JWTSecret)
	}
	if cfg.MaxUploadBytes != 1048576 {
		t.Fatalf("maxUploadBytes = %d", cfg.MaxUploadBytes)
	}
	if len(cfg.TrustedProxyCIDRs) != 2 || cfg.TrustedProxyCIDRs[1] != "192.168.0.0/16" {
		t.Fatalf("trustedProxyCidrs = %v", cfg.TrustedProxyCIDRs)
	}
	if cfg.SignupRateLimitPerMinute != 5 {
		t.Fatalf("signupRateLimitPerMinute = %d", cfg.SignupRateLimitPerMinute)
	}
}

func TestLoadRejectsMissingPort(t *testing.T) {
	path := writeConfig(t, `logLevel: "info"`)
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "port") {
		t.Fatalf("err = %v, want port error", err)
	}
}

func TestLoadRejectsRateLimitWithoutRedis(t *testing.T) {
	path := writeConfig(t, `
port: "8080"
loginRateLimitPerMinute: 10
`)
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "redisAddr") {
		t.Fatalf("err = %v, want redisAddr error", err)
	}
}

func TestLoadRejectsMinioWithoutBucket(t *testing.T) {
	path := writeConfig(t, `
port: "8080"
minioEndpoint: "localhost:9000"
`)
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "minioBucket") {
		t.Fatalf("err = %v, want minioBucket error", err)
	}
}

func TestParseTTL(t *testing.T) {
	dur, err := ParseTTL("", time.Hour)
	if err != nil || dur != time.Hour {
		t.Fatalf("empty: dur=%v err=%v, want fallback", dur, err)
	}
	dur, err = ParseTTL("90m", time.Hour)
	if err != nil || dur != 90*time.Minute {
		t.Fatalf("90m: dur=%v err=%v", dur, err)
	}
	if _, err := ParseTTL("soon", time.Hour); err == nil {
		t.Fatalf("expected error for unparseable duration")
	}
}
