// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFmpegGUI - FFmpeg 视频批量处理工具

package logger

import (
	"log"
	"strings"
)

// Level is a log level threshold
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel parses a level name, falling back to info
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger provides a simple logging interface
type Logger interface {
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
	Debug(format string, args ...interface{})
}

type defaultLogger struct {
	prefix string
	level  Level
}

func New(prefix string) Logger {
	return &defaultLogger{prefix: prefix, level: LevelInfo}
}

// NewWithLevel creates a logger that drops entries below level
func NewWithLevel(prefix string, level Level) Logger {
	return &defaultLogger{prefix: prefix, level: level}
}

// Nop returns a logger that discards everything
func Nop() Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (nopLogger) Info(format string, args ...interface{})  {}
func (nopLogger) Warn(format string, args ...interface{})  {}
func (nopLogger) Error(format string, args ...interface{}) {}
func (nopLogger) Debug(format string, args ...interface{}) {}

func (l *defaultLogger) Info(format string, args ...interface{}) {
	if l.level <= LevelInfo {
		log.Printf("[INFO] "+l.prefix+format, args...)
	}
}

func (l *defaultLogger) Warn(format string, args ...interface{}) {
	if l.level <= LevelWarn {
		log.Printf("[WARN] "+l.prefix+format, args...)
	}
}

func (l *defaultLogger) Error(format string, args ...interface{}) {
	if l.level <= LevelError {
		log.Printf("[ERROR] "+l.prefix+format, args...)
	}
}

func (l *defaultLogger) Debug(format string, args ...interface{}) {
	if l.level <= LevelDebug {
		log.Printf("[DEBUG] "+l.prefix+format, args...)
	}
}
