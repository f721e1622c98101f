// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFmpegGUI - FFmpeg 视频批量处理工具
//
// Package probe 调用 ffprobe 获取视频基本信息。

package probe

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/singleflight"

	"github.com/fridayhub/ffmpeg-gui/internal/logger"
)

// VideoInfo 视频基本信息快照，探测失败时三个字段均为空
type VideoInfo struct {
	Duration string `json:"duration"` // HH:MM:SS
	Size     string `json:"size"`     // 可读字节数
	Codec    string `json:"codec"`
}

// Prober runs ffprobe queries. Concurrent probes of the same path share
// one subprocess.
type Prober struct {
	binary string
	logger logger.Logger
	group  singleflight.Group
}

// New resolves the ffprobe binary
func New(binary string, log logger.Logger) (*Prober, error) {
	bin, err := exec.LookPath(binary)
	if err != nil {
		return nil, fmt.Errorf("invalid ffprobe binary: %w", err)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Prober{binary: bin, logger: log}, nil
}

// Probe queries one file. A missing file or any probe failure yields an
// empty VideoInfo, never an error.
func (p *Prober) Probe(path string) VideoInfo {
	if _, err := os.Stat(path); err != nil {
		p.logger.Debug("文件不存在: %s", path)
		return VideoInfo{}
	}

	v, _, _ := p.group.Do(path, func() (interface{}, error) {
		return p.probe(path), nil
	})
	return v.(VideoInfo)
}

func (p *Prober) probe(path string) VideoInfo {
	cmd := exec.Command(p.binary,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=duration,codec_name",
		"-show_entries", "format=size",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)

	out, err := cmd.Output()
	if err != nil {
		p.logger.Error("ffprobe 执行失败: %v", err)
		return VideoInfo{}
	}
	return parseInfo(out)
}

// parseInfo 按行解析 ffprobe 输出: 编码、时长秒数、文件字节数
func parseInfo(data []byte) VideoInfo {
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) < 3 {
		return VideoInfo{}
	}

	codec := strings.TrimSpace(lines[0])
	durationSec, _ := strconv.ParseFloat(strings.TrimSpace(lines[1]), 64)
	size, _ := strconv.ParseUint(strings.TrimSpace(lines[2]), 10, 64)

	return VideoInfo{
		Duration: formatDuration(durationSec),
		Size:     humanize.IBytes(size),
		Codec:    codec,
	}
}

func formatDuration(seconds float64) string {
	total := uint64(seconds)
	hours := total / 3600
	minutes := total % 3600 / 60
	secs := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
}
