// ZhiBan 值班排班引擎服务
// 主程序入口

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/zhiban/zhiban/internal/config"
	"github.com/zhiban/zhiban/internal/constraints"
	"github.com/zhiban/zhiban/internal/database"
	"github.com/zhiban/zhiban/internal/handler"
	"github.com/zhiban/zhiban/internal/metrics"
	"github.com/zhiban/zhiban/internal/middleware"
	"github.com/zhiban/zhiban/internal/repository"
	"github.com/zhiban/zhiban/internal/security"
	"github.com/zhiban/zhiban/pkg/logger"
	"github.com/zhiban/zhiban/pkg/model"
)

// 构建信息（通过 ldflags 注入）
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	logger.Init(logger.Config{
		Level:  cfg.App.LogLevel,
		Format: "console",
	})

	// 打印版本信息
	fmt.Printf("ZhiBan 值班排班引擎 v%s\n", Version)
	fmt.Printf("Build: %s (%s)\n", BuildTime, GitCommit)
	fmt.Println()

	// 可选的数据库连接：未启用时存档相关端点返回错误，生成与分析不受影响
	var (
		scheduleRepo *repository.ScheduleRepository
		taskRepo     *repository.TaskRepository
		staffRepo    *repository.StaffRepository
	)
	if cfg.Database.Enabled {
		db, err := database.New(&cfg.Database)
		if err != nil {
			logger.Error().Err(err).Msg("数据库连接失败")
			os.Exit(1)
		}
		defer db.Close()
		scheduleRepo = repository.NewScheduleRepository(db)
		taskRepo = repository.NewTaskRepository(db)
		staffRepo = repository.NewStaffRepository(db)
	}

	// 创建处理器
	scheduleHandler := handler.NewScheduleHandler(cfg.Scheduler.RandomSeed, scheduleRepo, cfg.Scheduler.HistoryLimit)
	taskHandler := handler.NewTaskHandler(cfg.Scheduler.RandomSeed, taskRepo)
	statsHandler := handler.NewStatsHandler()
	exportHandler := handler.NewExportHandler()
	staffHandler := handler.NewStaffHandler(staffRepo)
	validateHandler := handler.NewValidateHandler()
	swapHandler := handler.NewSwapHandler()

	// 创建 HTTP 服务器
	mux := http.NewServeMux()

	// ========================================
	// 系统端点
	// ========================================

	// 健康检查端点
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"zhiban"}`))
	})

	// 版本信息端点
	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"version":"%s","build_time":"%s","git_commit":"%s"}`, Version, BuildTime, GitCommit)
	})

	// ========================================
	// API v1 端点
	// ========================================

	// API 根路由
	mux.HandleFunc("/api/v1/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{
			"message": "ZhiBan 值班排班引擎 API v1",
			"endpoints": {
				"schedule": {
					"generate": "POST /api/v1/schedule/generate",
					"latest": "GET /api/v1/schedule/latest?month=YYYY-MM",
					"history": "GET /api/v1/schedule/history?month=YYYY-MM",
					"export": "POST /api/v1/schedule/export",
					"validate": "POST /api/v1/schedule/validate",
					"swap_evaluate": "POST /api/v1/schedule/swaps/evaluate",
					"swap_recommend": "POST /api/v1/schedule/swaps/recommend"
				},
				"tasks": {
					"distribute": "POST /api/v1/tasks/distribute",
					"get": "GET /api/v1/tasks?month=YYYY-MM"
				},
				"stats": {
					"analyze": "POST /api/v1/stats/analyze"
				},
				"staff": "GET/POST/PUT/DELETE /api/v1/staff",
				"constraints": {
					"defaults": "GET /api/v1/constraints/defaults",
					"presets": "GET /api/v1/constraints/presets?name=standard"
				}
			}
		}`))
	})

	// 值班表 API
	mux.HandleFunc("/api/v1/schedule/generate", scheduleHandler.Generate)
	mux.HandleFunc("/api/v1/schedule/latest", scheduleHandler.Latest)
	mux.HandleFunc("/api/v1/schedule/history", scheduleHandler.History)
	mux.HandleFunc("/api/v1/schedule/export", exportHandler.Export)
	mux.HandleFunc("/api/v1/schedule/validate", validateHandler.Validate)
	mux.HandleFunc("/api/v1/schedule/swaps/evaluate", swapHandler.Evaluate)
	mux.HandleFunc("/api/v1/schedule/swaps/recommend", swapHandler.Recommend)

	// 任务分配 API
	mux.HandleFunc("/api/v1/tasks/distribute", taskHandler.Distribute)
	mux.HandleFunc("/api/v1/tasks", taskHandler.GetByMonth)

	// 统计分析 API
	mux.HandleFunc("/api/v1/stats/analyze", statsHandler.Analyze)

	// 人员管理 API
	mux.HandleFunc("/api/v1/staff", staffHandler.Handle)

	// 默认约束与预设 API - 前端初始化表单用
	mux.HandleFunc("/api/v1/constraints/defaults", handleConstraintDefaults)
	mux.HandleFunc("/api/v1/constraints/presets", handleConstraintPresets)

	// ========================================
	// 监控端点
	// ========================================

	// Prometheus 指标端点
	if cfg.Metrics.Enabled {
		mux.Handle(cfg.Metrics.Path, metrics.Handler())
	}

	// ========================================
	// 中间件
	// ========================================

	// API密钥认证：未配置密钥时直接放行
	keyManager := security.NewAPIKeyManager()
	for i, key := range cfg.API.Keys {
		keyManager.AddStaticKey(key, fmt.Sprintf("config-key-%d", i+1))
	}
	auth := middleware.APIKeyAuth(&middleware.AuthConfig{
		KeyManager:   keyManager,
		SkipPaths:    []string{"/health", "/version", cfg.Metrics.Path},
		KeyRateLimit: cfg.API.KeyRateLimit,
	})

	// 中间件执行顺序：recovery -> requestID -> rateLimit -> cors -> auth -> logging -> handler
	root := middleware.Recovery(
		requestIDMiddleware(rateLimitMiddleware(corsMiddleware(auth(loggingMiddleware(middleware.SecurityHeaders(mux)))))),
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      root,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 启动服务器（非阻塞）
	go func() {
		logger.Info().
			Int("port", cfg.App.Port).
			Str("version", Version).
			Bool("database", cfg.Database.Enabled).
			Str("url", fmt.Sprintf("http://localhost:%d", cfg.App.Port)).
			Msg("服务器启动")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("服务器启动失败")
			os.Exit(1)
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("服务器关闭失败")
		os.Exit(1)
	}

	logger.Info().Msg("服务器已关闭")
}

// handleConstraintDefaults 返回默认约束配置
func handleConstraintDefaults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(model.DefaultConstraints())
}

// handleConstraintPresets 返回命名约束预设，?name=过滤单个
func handleConstraintPresets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")

	if name := r.URL.Query().Get("name"); name != "" {
		preset := constraints.FindPreset(name)
		if preset == nil {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error":   true,
				"code":    "NOT_FOUND",
				"message": "预设不存在: " + name,
			})
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(preset)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"presets": constraints.GetPresets(),
	})
}

// requestIDMiddleware 请求ID追踪中间件
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 尝试从请求头获取 Request ID，没有则生成新的
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		// 设置响应头
		w.Header().Set("X-Request-ID", requestID)

		// 将 Request ID 存储到 context 中
		ctx := context.WithValue(r.Context(), "request_id", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// loggingMiddleware 日志中间件
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// 获取 Request ID
		requestID, _ := r.Context().Value("request_id").(string)

		// 包装ResponseWriter以捕获状态码
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start)

		logger.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rw.statusCode).
			Dur("duration", duration).
			Msg("请求处理")

		// 记录Prometheus指标
		metrics.RecordRequestMetrics(r.Method, r.URL.Path, rw.statusCode, duration)
	})
}

// responseWriter 包装ResponseWriter以捕获状态码
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// RateLimiter 简单的令牌桶限流器
type RateLimiter struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // 每秒添加的令牌数
	lastRefill time.Time
	mu         sync.Mutex
}

// NewRateLimiter 创建限流器
func NewRateLimiter(requestsPerSecond float64) *RateLimiter {
	return &RateLimiter{
		tokens:     requestsPerSecond,
		maxTokens:  requestsPerSecond * 2, // 允许突发流量
		refillRate: requestsPerSecond,
		lastRefill: time.Now(),
	}
}

// Allow 检查是否允许请求
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(rl.lastRefill).Seconds()
	rl.tokens += elapsed * rl.refillRate
	if rl.tokens > rl.maxTokens {
		rl.tokens = rl.maxTokens
	}
	rl.lastRefill = now

	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}
	return false
}

var globalRateLimiter = NewRateLimiter(100) // 默认 100 QPS

// rateLimitMiddleware 限流中间件
func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !globalRateLimiter.Allow() {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error":   true,
				"code":    "RATE_LIMITED",
				"message": "请求过于频繁，请稍后重试",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// corsMiddleware CORS中间件
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
