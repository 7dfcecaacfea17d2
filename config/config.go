// Package config 负责加载命令行工具的 YAML 配置。
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config 汇总运行所需的路径与日志设置。
type Config struct {
	// DataDir 存放学习数据、手写档案与生成历史。
	DataDir string `yaml:"data_dir"`
	// FontDirs 是查找字体文件的目录列表。
	FontDirs []string `yaml:"font_dirs"`
	// OutputDir 是手写图片与 PDF 的默认输出目录。
	OutputDir string `yaml:"output_dir"`
	// LogMode 取 dev 或 prod，控制日志格式与级别。
	LogMode string `yaml:"log_mode"`
}

// DefaultConfig 返回默认配置。
func DefaultConfig() *Config {
	return &Config{
		DataDir:   "data",
		FontDirs:  []string{"fonts", "/usr/share/fonts/truetype"},
		OutputDir: "output",
		LogMode:   "prod",
	}
}

// Load 从 YAML 文件加载配置，文件不存在时返回默认值。
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "output"
	}
	if cfg.LogMode == "" {
		cfg.LogMode = "prod"
	}
	return cfg, nil
}
