// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFmpegGUI - FFmpeg 视频批量处理工具
//
// Package parse 解析 FFmpeg stderr 中的 time= 进度行。

package parse

import (
	"container/ring"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fridayhub/ffmpeg-gui/internal/process"
)

// progressScale 是进度归一化的固定基准秒数。
// TODO: 用 ffprobe 探测到的实际时长代替固定基准来归一化进度。
const progressScale = 100.0

// Progress holds the last parsed progress values
type Progress struct {
	Seconds  float64 `json:"time_seconds"` // 最近一次 time= 的累计秒数
	Fraction float64 `json:"fraction"`     // Seconds / progressScale
}

// Parser implements process.Parser for FFmpeg stderr
type Parser interface {
	process.Parser
	Progress() Progress
}

// Config for the parser
type Config struct {
	LogLines   int
	OnProgress func(fraction float64)
}

type parser struct {
	onProgress func(float64)

	log      *ring.Ring
	logLines int

	progress Progress
	lock     sync.RWMutex
}

// New creates a Parser
func New(config Config) Parser {
	p := &parser{
		onProgress: config.OnProgress,
		logLines:   config.LogLines,
	}
	if p.logLines <= 0 {
		p.logLines = 100
	}
	p.log = ring.New(p.logLines)
	return p
}

// Seconds extracts the time= token from one stderr line and converts it
// to total seconds. The token is split on ":" and read as HH:MM:SS[.ms]
// (3 parts) or MM:SS[.ms] (2 parts). Lines without the marker or with
// malformed numbers report ok=false.
func Seconds(line string) (float64, bool) {
	_, rest, found := strings.Cut(line, "time=")
	if !found {
		return 0, false
	}
	token := rest
	if i := strings.IndexByte(token, ' '); i >= 0 {
		token = token[:i]
	}

	parts := strings.Split(token, ":")
	switch len(parts) {
	case 3:
		h, err1 := strconv.ParseFloat(parts[0], 64)
		m, err2 := strconv.ParseFloat(parts[1], 64)
		s, err3 := strconv.ParseFloat(parts[2], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			return 0, false
		}
		return h*3600 + m*60 + s, true
	case 2:
		m, err1 := strconv.ParseFloat(parts[0], 64)
		s, err2 := strconv.ParseFloat(parts[1], 64)
		if err1 != nil || err2 != nil {
			return 0, false
		}
		return m*60 + s, true
	default:
		return 0, false
	}
}

func (p *parser) Parse(line string) uint64 {
	now := time.Now()

	secs, ok := Seconds(line)

	p.lock.Lock()
	p.log.Value = process.Line{Timestamp: now, Data: line}
	p.log = p.log.Next()

	var fraction float64
	if ok {
		p.progress.Seconds = secs
		p.progress.Fraction = secs / progressScale
		fraction = p.progress.Fraction
	}
	p.lock.Unlock()

	if !ok {
		return 0
	}
	if p.onProgress != nil {
		p.onProgress(fraction)
	}
	return 1
}

func (p *parser) ResetStats() {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.progress = Progress{}
}

func (p *parser) ResetLog() {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.log = ring.New(p.logLines)
}

func (p *parser) Log() []process.Line {
	var out []process.Line
	p.lock.RLock()
	p.log.Do(func(v interface{}) {
		if v != nil {
			out = append(out, v.(process.Line))
		}
	})
	p.lock.RUnlock()
	return out
}

func (p *parser) Progress() Progress {
	p.lock.RLock()
	defer p.lock.RUnlock()
	return p.progress
}
