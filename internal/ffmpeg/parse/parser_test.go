// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFmpegGUI - FFmpeg 视频批量处理工具

package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeconds(t *testing.T) {
	tests := []struct {
		name string
		line string
		want float64
		ok   bool
	}{
		{
			"three part",
			"frame=  10 fps=0.0 q=-1.0 size=  256kB time=00:01:30.50 bitrate= 23.2kbits/s speed= 181x",
			90.5, true,
		},
		{"two part", "time=01:30.50", 90.5, true},
		{"hours counted", "time=01:00:00.00 bitrate=N/A", 3600, true},
		{"no marker", "frame=  10 fps=0.0 q=-1.0", 0, false},
		{"malformed fields", "time=aa:bb:cc", 0, false},
		{"single field", "time=90", 0, false},
		{"four fields", "time=1:2:3:4", 0, false},
		{"empty token", "time= 00:00:01", 0, false},
		{"marker only", "time=", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Seconds(tt.line)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestParserProgress(t *testing.T) {
	var published []float64
	p := New(Config{
		LogLines:   10,
		OnProgress: func(f float64) { published = append(published, f) },
	})

	assert.Equal(t, uint64(0), p.Parse("ffmpeg version 6.0"))
	assert.Equal(t, uint64(1), p.Parse("frame=10 time=00:01:30.50 bitrate=1k"))

	prog := p.Progress()
	assert.InDelta(t, 90.5, prog.Seconds, 1e-9)
	assert.InDelta(t, 0.905, prog.Fraction, 1e-9)

	require.Len(t, published, 1)
	assert.InDelta(t, 0.905, published[0], 1e-9)

	// 无 time= 的行保留上一次的进度
	p.Parse("some diagnostic noise")
	assert.InDelta(t, 0.905, p.Progress().Fraction, 1e-9)
}

func TestParserLog(t *testing.T) {
	p := New(Config{LogLines: 3})
	p.Parse("one")
	p.Parse("two")
	p.Parse("three")
	p.Parse("four")

	lines := p.Log()
	require.Len(t, lines, 3)
	assert.Equal(t, "two", lines[0].Data)
	assert.Equal(t, "four", lines[2].Data)

	p.ResetLog()
	assert.Empty(t, p.Log())
}

func TestParserResetStats(t *testing.T) {
	p := New(Config{})
	p.Parse("time=00:00:50.00 speed=1x")
	assert.InDelta(t, 0.5, p.Progress().Fraction, 1e-9)

	p.ResetStats()
	assert.Zero(t, p.Progress().Seconds)
	assert.Zero(t, p.Progress().Fraction)
}
