// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFmpegGUI - FFmpeg 视频批量处理工具
//
// Package prefs 读写用户偏好文件 (~/.config/ffmpeg-gui.config)。

package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/fridayhub/ffmpeg-gui/internal/logger"
)

// Prefs 持久化的用户偏好
type Prefs struct {
	OutputDir string `json:"output_dir"`
}

// Store reads and writes the preference file
type Store struct {
	path   string
	logger logger.Logger
}

// DefaultPath returns ~/.config/ffmpeg-gui.config
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "ffmpeg-gui.config"), nil
}

// New creates a store for path
func New(path string, log logger.Logger) *Store {
	if log == nil {
		log = logger.Nop()
	}
	return &Store{path: path, logger: log}
}

// Load reads the preference file. A missing or malformed file yields
// zero prefs, never an error.
func (s *Store) Load() Prefs {
	var p Prefs

	data, err := os.ReadFile(s.path)
	if err != nil {
		return p
	}
	if err := json.Unmarshal(data, &p); err != nil {
		s.logger.Warn("偏好文件格式不正确: %v", err)
		return Prefs{}
	}
	return p
}

// Save writes the preference file, creating the parent directory
func (s *Store) Save(p Prefs) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}
