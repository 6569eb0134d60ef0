package security

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestAPIKeyManager(t *testing.T) {
	m := NewAPIKeyManager()

	key, err := m.GenerateKey("测试密钥", []string{"schedule:read"}, nil)
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}
	if !strings.HasPrefix(key.Key, "zk_") {
		t.Errorf("Key prefix = %q", key.Key)
	}

	got, err := m.Validate(key.Key)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if !got.HasScope("schedule:read") || got.HasScope("schedule:write") {
		t.Error("Scope check failed")
	}

	m.Revoke(key.Key)
	if _, err := m.Validate(key.Key); err != ErrExpiredAPIKey {
		t.Errorf("Revoked key error = %v", err)
	}

	if _, err := m.Validate("zk_unknown"); err != ErrInvalidAPIKey {
		t.Errorf("Unknown key error = %v", err)
	}
}

func TestAPIKeyManager_Expiry(t *testing.T) {
	m := NewAPIKeyManager()

	expiresIn := -time.Minute // 已过期
	key, err := m.GenerateKey("过期密钥", []string{"*"}, &expiresIn)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.Validate(key.Key); err != ErrExpiredAPIKey {
		t.Errorf("Expired key error = %v", err)
	}
}

func TestAPIKeyManager_StaticKey(t *testing.T) {
	m := NewAPIKeyManager()
	m.AddStaticKey("fixed-key", "环境变量密钥")

	key, err := m.Validate("fixed-key")
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if !key.HasScope("anything") {
		t.Error("Static key should carry the wildcard scope")
	}
}

func TestKeyRateLimiter(t *testing.T) {
	rl := NewKeyRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !rl.Allow("k1") {
			t.Fatalf("Request %d should be allowed", i+1)
		}
	}
	if rl.Allow("k1") {
		t.Error("4th request should be blocked")
	}
	// 其他密钥不受影响
	if !rl.Allow("k2") {
		t.Error("Different key should be allowed")
	}
}

func TestExtractAPIKey(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/v1/schedule/latest", nil)
	r.Header.Set("Authorization", "Bearer token-a")
	if got := ExtractAPIKey(r); got != "token-a" {
		t.Errorf("Bearer extraction = %q", got)
	}

	r = httptest.NewRequest("GET", "/api/v1/schedule/latest", nil)
	r.Header.Set("X-API-Key", "token-b")
	if got := ExtractAPIKey(r); got != "token-b" {
		t.Errorf("Header extraction = %q", got)
	}

	r = httptest.NewRequest("GET", "/api/v1/schedule/latest?api_key=token-c", nil)
	if got := ExtractAPIKey(r); got != "token-c" {
		t.Errorf("Query extraction = %q", got)
	}

	r = httptest.NewRequest("GET", "/api/v1/schedule/latest", nil)
	if got := ExtractAPIKey(r); got != "" {
		t.Errorf("Missing key = %q", got)
	}
}
