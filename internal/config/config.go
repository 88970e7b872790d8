package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/allanpk716/docx_hf_replacer/internal/domain"
)

// Server HTTP 服务配置
type Server struct {
	Addr            string `json:"addr" yaml:"addr"`
	MaxUploadMB     int64  `json:"max_upload_mb" yaml:"max_upload_mb"`
	ReadTimeoutSec  int    `json:"read_timeout_sec" yaml:"read_timeout_sec"`
	WriteTimeoutSec int    `json:"write_timeout_sec" yaml:"write_timeout_sec"`
}

// Storage 暂存目录配置
type Storage struct {
	UploadDir    string `json:"upload_dir" yaml:"upload_dir"`
	ProcessedDir string `json:"processed_dir" yaml:"processed_dir"`
}

// Defaults 表单样式字段缺失时使用的默认样式
type Defaults struct {
	FontName string `json:"font_name" yaml:"font_name"`
	FontSize int    `json:"font_size" yaml:"font_size"`
}

// Config 表示完整的配置文件结构
type Config struct {
	ProjectName string   `json:"project_name" yaml:"project_name"`
	Server      Server   `json:"server" yaml:"server"`
	Storage     Storage  `json:"storage" yaml:"storage"`
	Defaults    Defaults `json:"defaults" yaml:"defaults"`
	LogLevel    string   `json:"log_level" yaml:"log_level"`
}

// Font 把默认样式转换为领域模型
func (d Defaults) Font() domain.Font {
	return domain.Font{Name: d.FontName, SizePt: d.FontSize}
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		ProjectName: "docx-replacer",
		Server: Server{
			Addr:            ":5000",
			MaxUploadMB:     64,
			ReadTimeoutSec:  60,
			WriteTimeoutSec: 300,
		},
		Storage: Storage{
			UploadDir:    "uploads",
			ProcessedDir: "processed",
		},
		Defaults: Defaults{
			FontName: domain.DefaultFontName,
			FontSize: domain.DefaultFontSize,
		},
		LogLevel: "info",
	}
}

// ConfigManager 配置管理接口
type ConfigManager interface {
	LoadConfig(filePath string) (*Config, error)
	ValidateConfig(config *Config) error
	EnsureDirs(config *Config) error
}

// configManager 配置管理器实现
type configManager struct{}

// NewConfigManager 创建新的配置管理器
func NewConfigManager() ConfigManager {
	return &configManager{}
}

// LoadConfig 从文件加载配置，文件中未出现的字段保留默认值
func (cm *configManager) LoadConfig(filePath string) (*Config, error) {
	if filePath == "" {
		return nil, fmt.Errorf("配置文件路径不能为空")
	}

	// 检查文件是否存在
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("配置文件不存在: %s", filePath)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	config := Default()
	if err := unmarshalByExt(filePath, data, config); err != nil {
		return nil, err
	}

	if err := cm.ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("配置验证失败: %w", err)
	}

	return config, nil
}

// ValidateConfig 验证配置的有效性
func (cm *configManager) ValidateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("配置不能为空")
	}

	if config.Server.Addr == "" {
		return fmt.Errorf("监听地址不能为空")
	}
	if config.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("上传大小限制必须大于 0")
	}

	if config.Storage.UploadDir == "" {
		return fmt.Errorf("上传目录不能为空")
	}
	if config.Storage.ProcessedDir == "" {
		return fmt.Errorf("处理结果目录不能为空")
	}
	if filepath.Clean(config.Storage.UploadDir) == filepath.Clean(config.Storage.ProcessedDir) {
		return fmt.Errorf("上传目录和处理结果目录不能相同: %s", config.Storage.UploadDir)
	}

	if config.Defaults.FontName == "" {
		return fmt.Errorf("默认字体不能为空")
	}
	if config.Defaults.FontSize <= 0 {
		return fmt.Errorf("默认字号必须大于 0，当前: %d", config.Defaults.FontSize)
	}

	switch strings.ToLower(config.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("未知的日志级别: %s", config.LogLevel)
	}

	return nil
}

// EnsureDirs 创建上传目录和处理结果目录
func (cm *configManager) EnsureDirs(config *Config) error {
	for _, dir := range []string{config.Storage.UploadDir, config.Storage.ProcessedDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("创建目录 %s 失败: %w", dir, err)
		}
	}
	return nil
}

// unmarshalByExt 根据扩展名选择 JSON 或 YAML 解析
func unmarshalByExt(filePath string, data []byte, v interface{}) error {
	switch ext := strings.ToLower(filepath.Ext(filePath)); ext {
	case ".json":
		if err := json.Unmarshal(data, v); err != nil {
			return fmt.Errorf("解析配置文件失败: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("解析配置文件失败: %w", err)
		}
	default:
		return fmt.Errorf("配置文件必须是 JSON 或 YAML 格式，当前文件: %s", ext)
	}
	return nil
}
