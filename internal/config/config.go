// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFmpegGUI - FFmpeg 视频批量处理工具

package config

import (
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/fridayhub/ffmpeg-gui/internal/filename"
)

// Config 应用配置
type Config struct {
	FFmpeg  FFmpegConfig  `yaml:"ffmpeg"`
	Output  OutputConfig  `yaml:"output"`
	Preview PreviewConfig `yaml:"preview"`
	Log     LogConfig     `yaml:"log"`
}

// FFmpegConfig FFmpeg 配置
type FFmpegConfig struct {
	Path        string `yaml:"path"`
	ProbePath   string `yaml:"probe_path"`
	MaxLogLines int    `yaml:"max_log_lines"`
}

// OutputConfig 输出配置
type OutputConfig struct {
	Dir      string `yaml:"dir"`
	Template string `yaml:"template"`
}

// PreviewConfig 预览配置
type PreviewConfig struct {
	DebounceMs int    `yaml:"debounce_ms"`
	TempDir    string `yaml:"temp_dir"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		FFmpeg: FFmpegConfig{
			Path:        "ffmpeg",
			ProbePath:   "ffprobe",
			MaxLogLines: 100,
		},
		Output: OutputConfig{
			Template: filename.DefaultTemplate,
		},
		Preview: PreviewConfig{
			DebounceMs: 500,
			TempDir:    os.TempDir(),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load 从 YAML 文件加载配置
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	// 填充空值
	if cfg.FFmpeg.Path == "" {
		cfg.FFmpeg.Path = "ffmpeg"
	}
	if cfg.FFmpeg.ProbePath == "" {
		cfg.FFmpeg.ProbePath = "ffprobe"
	}
	if cfg.FFmpeg.MaxLogLines <= 0 {
		cfg.FFmpeg.MaxLogLines = 100
	}
	if cfg.Output.Template == "" {
		cfg.Output.Template = filename.DefaultTemplate
	}
	if cfg.Preview.DebounceMs <= 0 {
		cfg.Preview.DebounceMs = 500
	}
	if cfg.Preview.TempDir == "" {
		cfg.Preview.TempDir = os.TempDir()
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	return cfg, nil
}

// ApplyEnv 用环境变量覆盖配置，工作目录下的 .env 文件会先被加载
func (c *Config) ApplyEnv() {
	_ = godotenv.Load()

	if v := os.Getenv("FFMPEG_PATH"); v != "" {
		c.FFmpeg.Path = v
	}
	if v := os.Getenv("FFPROBE_PATH"); v != "" {
		c.FFmpeg.ProbePath = v
	}
	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		c.Output.Dir = v
	}
}
