// Package middleware 提供可选的HTTP认证与防护中间件
package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/zhiban/zhiban/internal/security"
	"github.com/zhiban/zhiban/pkg/logger"
)

// AuthConfig 认证配置
type AuthConfig struct {
	KeyManager *security.APIKeyManager
	// SkipPaths 跳过认证的路径前缀（健康检查、监控等）
	SkipPaths []string
	// KeyRateLimit 单密钥每分钟请求上限，0为不限
	KeyRateLimit int
}

// APIKeyAuth API密钥认证中间件
// 密钥管理器为空时直接放行（未配置密钥的开发部署）
func APIKeyAuth(cfg *AuthConfig) func(http.Handler) http.Handler {
	var limiter *security.KeyRateLimiter
	if cfg.KeyRateLimit > 0 {
		limiter = security.NewKeyRateLimiter(cfg.KeyRateLimit, time.Minute)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.KeyManager == nil || cfg.KeyManager.Count() == 0 {
				next.ServeHTTP(w, r)
				return
			}
			for _, path := range cfg.SkipPaths {
				if strings.HasPrefix(r.URL.Path, path) {
					next.ServeHTTP(w, r)
					return
				}
			}

			apiKey := security.ExtractAPIKey(r)
			if apiKey == "" {
				writeAuthError(w, http.StatusUnauthorized, "missing_api_key", "API密钥未提供")
				return
			}

			key, err := cfg.KeyManager.Validate(apiKey)
			if err != nil {
				logger.Warn().Str("path", r.URL.Path).Err(err).Msg("API密钥验证失败")
				writeAuthError(w, http.StatusUnauthorized, "invalid_api_key", "无效的API密钥")
				return
			}

			if limiter != nil && !limiter.Allow(key.Key) {
				writeAuthError(w, http.StatusTooManyRequests, "rate_limit", "该密钥请求频率超限")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// SecurityHeaders 安全响应头中间件
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// Recovery panic恢复中间件
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error().Interface("panic", err).Str("path", r.URL.Path).Msg("请求处理panic")
				writeAuthError(w, http.StatusInternalServerError, "internal_error", "服务器内部错误")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func writeAuthError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":true,"code":"` + code + `","message":"` + message + `"}`))
}
