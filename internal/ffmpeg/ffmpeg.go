// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFmpegGUI - FFmpeg 视频批量处理工具
//
// Package ffmpeg resolves the FFmpeg binary and creates processes and
// stderr parsers bound to it.

package ffmpeg

import (
	"fmt"
	"os/exec"

	"github.com/fridayhub/ffmpeg-gui/internal/ffmpeg/parse"
	"github.com/fridayhub/ffmpeg-gui/internal/logger"
	"github.com/fridayhub/ffmpeg-gui/internal/process"
)

// FFmpeg creates processes and parsers for a resolved binary
type FFmpeg interface {
	New(config ProcessConfig) (process.Process, error)
	NewParser(onProgress func(fraction float64)) parse.Parser
	Binary() string
}

// ProcessConfig for creating a process
type ProcessConfig struct {
	Command       []string
	Parser        process.Parser
	Logger        logger.Logger
	OnStart       func()
	OnExit        func()
	OnStateChange func(from, to string)
}

// Config for FFmpeg
type Config struct {
	Binary      string
	MaxLogLines int
}

type ffmpeg struct {
	binary   string
	logLines int
}

// New resolves the binary and creates FFmpeg
func New(config Config) (FFmpeg, error) {
	binary, err := exec.LookPath(config.Binary)
	if err != nil {
		return nil, fmt.Errorf("invalid ffmpeg binary: %w", err)
	}

	f := &ffmpeg{
		binary:   binary,
		logLines: config.MaxLogLines,
	}
	if f.logLines <= 0 {
		f.logLines = 100
	}
	return f, nil
}

func (f *ffmpeg) New(config ProcessConfig) (process.Process, error) {
	return process.New(process.Config{
		Binary:        f.binary,
		Args:          config.Command,
		Parser:        config.Parser,
		Logger:        config.Logger,
		OnStart:       config.OnStart,
		OnExit:        config.OnExit,
		OnStateChange: config.OnStateChange,
	})
}

func (f *ffmpeg) NewParser(onProgress func(float64)) parse.Parser {
	return parse.New(parse.Config{LogLines: f.logLines, OnProgress: onProgress})
}

func (f *ffmpeg) Binary() string { return f.binary }
