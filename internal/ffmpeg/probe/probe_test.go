// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFmpegGUI - FFmpeg 视频批量处理工具

package probe

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/dustin/go-humanize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func TestProbe(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "in.mp4")
	require.NoError(t, os.WriteFile(video, []byte("x"), 0o644))

	bin := writeScript(t, dir, "ffprobe",
		"echo h264\n"+
			"echo 90.5\n"+
			"echo 744488960\n")

	p, err := New(bin, nil)
	require.NoError(t, err)

	info := p.Probe(video)
	assert.Equal(t, "00:01:30", info.Duration)
	assert.Equal(t, humanize.IBytes(744488960), info.Size)
	assert.Equal(t, "h264", info.Codec)
}

func TestProbeMissingFile(t *testing.T) {
	dir := t.TempDir()
	bin := writeScript(t, dir, "ffprobe", "echo should-not-run\nexit 0\n")

	p, err := New(bin, nil)
	require.NoError(t, err)

	assert.Equal(t, VideoInfo{}, p.Probe(filepath.Join(dir, "nope.mp4")))
}

func TestProbeFailure(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "bad.mp4")
	require.NoError(t, os.WriteFile(video, []byte("x"), 0o644))

	bin := writeScript(t, dir, "ffprobe", "echo 'bad.mp4: Invalid data' >&2\nexit 1\n")

	p, err := New(bin, nil)
	require.NoError(t, err)

	assert.Equal(t, VideoInfo{}, p.Probe(video))
}

func TestProbeShortOutput(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "odd.mp4")
	require.NoError(t, os.WriteFile(video, []byte("x"), 0o644))

	bin := writeScript(t, dir, "ffprobe", "echo h264\n")

	p, err := New(bin, nil)
	require.NoError(t, err)

	assert.Equal(t, VideoInfo{}, p.Probe(video))
}

func TestProbeSingleFlight(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "in.mp4")
	require.NoError(t, os.WriteFile(video, []byte("x"), 0o644))

	// 每次执行追加一行调用记录，并通过 sleep 保证并发探测重叠
	marker := filepath.Join(dir, "calls")
	bin := writeScript(t, dir, "ffprobe",
		fmt.Sprintf("echo run >> %s\n", marker)+
			"sleep 0.3\n"+
			"echo h264\necho 10\necho 1024\n")

	p, err := New(bin, nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			info := p.Probe(video)
			assert.Equal(t, "h264", info.Codec)
		}()
	}
	wg.Wait()

	data, err := os.ReadFile(marker)
	require.NoError(t, err)
	assert.Equal(t, "run\n", string(data))
}

func TestNewInvalidBinary(t *testing.T) {
	_, err := New("/no/such/ffprobe", nil)
	assert.Error(t, err)
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "00:00:00"},
		{59.9, "00:00:59"},
		{90.5, "00:01:30"},
		{3600, "01:00:00"},
		{3725, "01:02:05"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDuration(tt.in))
	}
}
