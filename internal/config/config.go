// Package config 提供配置管理
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 应用配置
type Config struct {
	App       AppConfig       `yaml:"app"`
	Database  DatabaseConfig  `yaml:"database"`
	API       APIConfig       `yaml:"api"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name     string `yaml:"name"`
	Env      string `yaml:"env"`
	Port     int    `yaml:"port"`
	LogLevel string `yaml:"log_level"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Name            string        `yaml:"name"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"ssl_mode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// DSN 返回数据库连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// APIConfig API配置
type APIConfig struct {
	Timeout time.Duration `yaml:"timeout"`
	CORS    CORSConfig    `yaml:"cors"`

	// Keys 非空时开启API密钥认证
	Keys []string `yaml:"keys"`
	// KeyRateLimit 单密钥每分钟请求上限，0为不限
	KeyRateLimit int `yaml:"key_rate_limit"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	Enabled bool     `yaml:"enabled"`
	Origins []string `yaml:"origins"`
}

// SchedulerConfig 值班生成配置
type SchedulerConfig struct {
	// RandomSeed 为0时使用时间种子，固定值用于复现同一张值班表
	RandomSeed   int64         `yaml:"random_seed"`
	Timeout      time.Duration `yaml:"timeout"`
	HistoryLimit int           `yaml:"history_limit"` // 保留的历史版本数
}

// MetricsConfig 监控配置
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Load 从环境变量加载配置，ZHIBAN_CONFIG 指向的YAML文件覆盖环境默认值
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:     getEnv("APP_NAME", "zhiban"),
			Env:      getEnv("APP_ENV", "development"),
			Port:     getEnvInt("APP_PORT", 7012),
			LogLevel: getEnv("APP_LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			Enabled:         getEnvBool("DB_ENABLED", false),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			Name:            getEnv("DB_NAME", "zhiban"),
			User:            getEnv("DB_USER", "zhiban"),
			Password:        getEnv("DB_PASSWORD", "zhiban123"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		API: APIConfig{
			Timeout: getEnvDuration("API_TIMEOUT", 30*time.Second),
			CORS: CORSConfig{
				Enabled: getEnvBool("API_CORS_ENABLED", true),
				Origins: []string{"*"},
			},
			Keys:         getEnvList("API_KEYS"),
			KeyRateLimit: getEnvInt("API_KEY_RATE_LIMIT", 120),
		},
		Scheduler: SchedulerConfig{
			RandomSeed:   int64(getEnvInt("SCHEDULER_RANDOM_SEED", 0)),
			Timeout:      getEnvDuration("SCHEDULER_TIMEOUT", 30*time.Second),
			HistoryLimit: getEnvInt("SCHEDULER_HISTORY_LIMIT", 20),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
			Path:    getEnv("METRICS_PATH", "/metrics"),
		},
	}

	if path := os.Getenv("ZHIBAN_CONFIG"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// mergeFile 用YAML文件中出现的字段覆盖当前配置
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("读取配置文件失败: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("解析配置文件失败: %w", err)
	}
	return nil
}

// IsDevelopment 检查是否为开发环境
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// IsProduction 检查是否为生产环境
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// IsTest 检查是否为测试环境
func (c *Config) IsTest() bool {
	return c.App.Env == "test"
}

// 辅助函数
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
