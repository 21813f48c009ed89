package logger

import (
	"log/slog"
	"os"
	"strings"
	"sync"
)

// 环境变量名
const (
	EnvLevel     = "PINGNODE_LOG_LEVEL"
	EnvFormat    = "PINGNODE_LOG_FORMAT"
	EnvAddSource = "PINGNODE_LOG_ADD_SOURCE"
)

// Format 日志输出格式
type Format int

const (
	// FormatText 文本格式（默认）
	FormatText Format = iota
	// FormatJSON JSON 格式
	FormatJSON
)

// Config 日志配置
type Config struct {
	// DefaultLevel 未单独配置的子系统使用的级别
	DefaultLevel slog.Level

	// Subsystems 按子系统覆盖的级别
	Subsystems map[string]slog.Level

	// Format 输出格式
	Format Format

	// AddSource 是否输出源码位置
	AddSource bool
}

// LevelFor 返回子系统的生效级别
func (c *Config) LevelFor(subsystem string) slog.Level {
	if lvl, ok := c.Subsystems[subsystem]; ok {
		return lvl
	}
	return c.DefaultLevel
}

var (
	envConfig     *Config
	envConfigOnce sync.Once
)

// ConfigFromEnv 解析并缓存环境变量中的日志配置
//
//	PINGNODE_LOG_LEVEL=swarm=debug,ping=warn,info
//	PINGNODE_LOG_FORMAT=json
//	PINGNODE_LOG_ADD_SOURCE=true
func ConfigFromEnv() *Config {
	envConfigOnce.Do(func() {
		envConfig = ParseConfig(os.Getenv(EnvLevel), os.Getenv(EnvFormat), os.Getenv(EnvAddSource))
	})
	return envConfig
}

// ParseConfig 从三个原始字符串构建配置，空串表示使用默认值
func ParseConfig(levelSpec, format, addSource string) *Config {
	cfg := &Config{
		DefaultLevel: slog.LevelInfo,
		Subsystems:   make(map[string]slog.Level),
		Format:       FormatText,
	}

	for _, part := range strings.Split(levelSpec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, lvlName, found := strings.Cut(part, "=")
		if !found {
			if lvl, ok := ParseLevel(part); ok {
				cfg.DefaultLevel = lvl
			}
			continue
		}
		if lvl, ok := ParseLevel(strings.TrimSpace(lvlName)); ok {
			cfg.Subsystems[strings.TrimSpace(name)] = lvl
		}
	}

	if strings.EqualFold(strings.TrimSpace(format), "json") {
		cfg.Format = FormatJSON
	}

	switch strings.ToLower(strings.TrimSpace(addSource)) {
	case "1", "true", "yes":
		cfg.AddSource = true
	}

	return cfg
}

// ParseLevel 解析级别名称，大小写不敏感
func ParseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(name) {
	case "trace", "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// ResetConfig 丢弃缓存的环境配置（仅用于测试）
func ResetConfig() {
	envConfigOnce = sync.Once{}
	envConfig = nil
}
