// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFmpegGUI - FFmpeg 视频批量处理工具

package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFile(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "nope.config"), nil)

	p := store.Load()
	assert.Equal(t, Prefs{}, p)
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.config")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	store := New(path, nil)
	p := store.Load()
	assert.Equal(t, Prefs{}, p)
}

func TestSaveThenLoad(t *testing.T) {
	// 父目录不存在，Save 需要自行创建
	path := filepath.Join(t.TempDir(), "nested", "dir", "ffmpeg-gui.config")
	store := New(path, nil)

	require.NoError(t, store.Save(Prefs{OutputDir: "/videos/out"}))

	p := store.Load()
	assert.Equal(t, "/videos/out", p.OutputDir)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\"output_dir\"")
}

func TestSaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ffmpeg-gui.config")
	store := New(path, nil)

	require.NoError(t, store.Save(Prefs{OutputDir: "first"}))
	require.NoError(t, store.Save(Prefs{OutputDir: "second"}))

	assert.Equal(t, "second", store.Load().OutputDir)
}
