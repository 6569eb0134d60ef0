// Package security 提供API密钥管理与请求频率限制
package security

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"
)

var (
	ErrInvalidAPIKey = errors.New("无效的API密钥")
	ErrExpiredAPIKey = errors.New("API密钥已过期")
)

// APIKey API密钥
type APIKey struct {
	Key       string     `json:"key"`
	Name      string     `json:"name"`
	Scopes    []string   `json:"scopes"` // 权限范围，*为全部
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Enabled   bool       `json:"enabled"`
}

// IsValid 检查密钥当前是否可用
func (k *APIKey) IsValid() bool {
	if !k.Enabled {
		return false
	}
	if k.ExpiresAt != nil && k.ExpiresAt.Before(time.Now()) {
		return false
	}
	return true
}

// HasScope 检查密钥是否具备某权限范围
func (k *APIKey) HasScope(scope string) bool {
	for _, s := range k.Scopes {
		if s == scope || s == "*" {
			return true
		}
	}
	return false
}

// APIKeyManager API密钥管理器（内存存储）
type APIKeyManager struct {
	keys map[string]*APIKey
	mu   sync.RWMutex
}

// NewAPIKeyManager 创建密钥管理器
func NewAPIKeyManager() *APIKeyManager {
	return &APIKeyManager{keys: make(map[string]*APIKey)}
}

// AddStaticKey 注册配置文件/环境变量提供的固定密钥
func (m *APIKeyManager) AddStaticKey(key, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[key] = &APIKey{
		Key:       key,
		Name:      name,
		Scopes:    []string{"*"},
		CreatedAt: time.Now(),
		Enabled:   true,
	}
}

// GenerateKey 生成新密钥
func (m *APIKeyManager) GenerateKey(name string, scopes []string, expiresIn *time.Duration) (*APIKey, error) {
	raw, err := randomString(32)
	if err != nil {
		return nil, err
	}

	apiKey := &APIKey{
		Key:       "zk_" + raw,
		Name:      name,
		Scopes:    scopes,
		CreatedAt: time.Now(),
		Enabled:   true,
	}
	if expiresIn != nil {
		expiresAt := time.Now().Add(*expiresIn)
		apiKey.ExpiresAt = &expiresAt
	}

	m.mu.Lock()
	m.keys[apiKey.Key] = apiKey
	m.mu.Unlock()
	return apiKey, nil
}

// Validate 验证密钥
func (m *APIKeyManager) Validate(key string) (*APIKey, error) {
	m.mu.RLock()
	apiKey, exists := m.keys[key]
	m.mu.RUnlock()

	if !exists {
		return nil, ErrInvalidAPIKey
	}
	if !apiKey.IsValid() {
		return nil, ErrExpiredAPIKey
	}
	return apiKey, nil
}

// Revoke 停用密钥
func (m *APIKeyManager) Revoke(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if apiKey, exists := m.keys[key]; exists {
		apiKey.Enabled = false
	}
}

// Count 当前密钥数
func (m *APIKeyManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.keys)
}

// KeyRateLimiter 按密钥的滑动窗口限流器
type KeyRateLimiter struct {
	requests map[string][]time.Time
	limit    int
	window   time.Duration
	mu       sync.Mutex
}

// NewKeyRateLimiter 创建按密钥限流器
func NewKeyRateLimiter(limit int, window time.Duration) *KeyRateLimiter {
	return &KeyRateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
	}
}

// Allow 检查该密钥在窗口内是否允许再次请求
func (rl *KeyRateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	windowStart := now.Add(-rl.window)

	valid := rl.requests[key][:0]
	for _, t := range rl.requests[key] {
		if t.After(windowStart) {
			valid = append(valid, t)
		}
	}
	if len(valid) >= rl.limit {
		rl.requests[key] = valid
		return false
	}
	rl.requests[key] = append(valid, now)
	return true
}

// ExtractAPIKey 从请求中提取API密钥
func ExtractAPIKey(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	if key := r.Header.Get("X-API-Key"); key != "" {
		return key
	}
	return r.URL.Query().Get("api_key")
}

func randomString(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(bytes)[:length], nil
}
