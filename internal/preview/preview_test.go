// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFmpegGUI - FFmpeg 视频批量处理工具

package preview

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleInput = "/videos/input.mp4"

type fakeExtractor struct {
	mu    sync.Mutex
	calls []string
	data  []byte
	fail  bool
	block chan struct{}
}

func (f *fakeExtractor) Extract(input, timestamp string, rotation int, output string) error {
	f.mu.Lock()
	f.calls = append(f.calls, timestamp)
	data := f.data
	fail := f.fail
	block := f.block
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	if fail {
		return errors.New("no frame")
	}
	return os.WriteFile(output, data, 0o644)
}

func (f *fakeExtractor) timestamps() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeExtractor) setData(data []byte) {
	f.mu.Lock()
	f.data = data
	f.mu.Unlock()
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Unix(1000, 0)}
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newService(t *testing.T, ext Extractor, clock *fakeClock) (*Service, string) {
	t.Helper()
	dir := t.TempDir()
	s := New(Config{
		Extractor: ext,
		TempDir:   dir,
		Now:       clock.now,
	})
	t.Cleanup(s.Close)
	return s, dir
}

func takeEventually(t *testing.T, s *Service, edge Edge) *Frame {
	t.Helper()
	var f *Frame
	require.Eventually(t, func() bool {
		f = s.Take(edge)
		return f != nil
	}, 2*time.Second, time.Millisecond)
	return f
}

func TestRequestAndTake(t *testing.T) {
	ext := &fakeExtractor{data: []byte("frame-bytes")}
	s, dir := newService(t, ext, newFakeClock())

	require.True(t, s.Request(EdgeStart, sampleInput, "0:00:05", 90))
	assert.True(t, s.Loading(EdgeStart))

	f := takeEventually(t, s, EdgeStart)
	assert.Equal(t, []byte("frame-bytes"), f.Data)
	assert.False(t, s.Loading(EdgeStart))

	// 结果只交付一次
	assert.Nil(t, s.Take(EdgeStart))
	assert.Equal(t, []string{"0:00:05"}, ext.timestamps())

	// 临时帧文件已清理
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDebounce(t *testing.T) {
	ext := &fakeExtractor{data: []byte("x")}
	clock := newFakeClock()
	s, _ := newService(t, ext, clock)

	require.True(t, s.Request(EdgeStart, sampleInput, "0:00:01", 0))
	takeEventually(t, s, EdgeStart)

	// 防抖窗口内的请求被丢弃
	clock.advance(499 * time.Millisecond)
	assert.False(t, s.Request(EdgeStart, sampleInput, "0:00:02", 0))

	// 窗口期满后恢复接受
	clock.advance(time.Millisecond)
	require.True(t, s.Request(EdgeStart, sampleInput, "0:00:03", 0))
	takeEventually(t, s, EdgeStart)

	assert.Equal(t, []string{"0:00:01", "0:00:03"}, ext.timestamps())
}

func TestRejectWhileLoading(t *testing.T) {
	block := make(chan struct{})
	ext := &fakeExtractor{data: []byte("x"), block: block}
	clock := newFakeClock()
	s, _ := newService(t, ext, clock)

	require.True(t, s.Request(EdgeStart, sampleInput, "0:00:01", 0))

	// 防抖已过，但上一个请求还在途
	clock.advance(time.Second)
	assert.False(t, s.Request(EdgeStart, sampleInput, "0:00:02", 0))

	close(block)
	takeEventually(t, s, EdgeStart)
	assert.Equal(t, []string{"0:00:01"}, ext.timestamps())
}

func TestEmptyInputRejected(t *testing.T) {
	ext := &fakeExtractor{data: []byte("x")}
	s, _ := newService(t, ext, newFakeClock())

	assert.False(t, s.Request(EdgeStart, "", "0:00:01", 0))
	assert.False(t, s.Loading(EdgeStart))
	assert.Empty(t, ext.timestamps())
}

func TestMissingFrameClearsLoading(t *testing.T) {
	ext := &fakeExtractor{fail: true}
	s, _ := newService(t, ext, newFakeClock())

	require.True(t, s.Request(EdgeEnd, sampleInput, "0:00:09", 0))

	// 提帧失败也交付一个空结果，loading 随取走解除
	f := takeEventually(t, s, EdgeEnd)
	assert.Empty(t, f.Data)
	assert.False(t, s.Loading(EdgeEnd))
}

func TestResetDiscardsStaleResult(t *testing.T) {
	block := make(chan struct{})
	ext := &fakeExtractor{data: []byte("old"), block: block}
	clock := newFakeClock()
	s, _ := newService(t, ext, clock)

	require.True(t, s.Request(EdgeStart, sampleInput, "0:00:01", 0))
	require.Eventually(t, func() bool {
		return len(ext.timestamps()) == 1
	}, 2*time.Second, time.Millisecond)

	s.Reset()
	assert.False(t, s.Loading(EdgeStart))

	// Reset 清掉防抖历史，新请求立即被接受
	ext.setData([]byte("new"))
	require.True(t, s.Request(EdgeStart, sampleInput, "0:00:02", 0))

	close(block)

	// 旧一代的结果被丢弃，只有新请求的帧可取
	f := takeEventually(t, s, EdgeStart)
	assert.Equal(t, []byte("new"), f.Data)
	assert.Nil(t, s.Take(EdgeStart))
	assert.Equal(t, []string{"0:00:01", "0:00:02"}, ext.timestamps())
}

func TestTargetsIndependent(t *testing.T) {
	block := make(chan struct{})
	ext := &fakeExtractor{data: []byte("f"), block: block}
	s, _ := newService(t, ext, newFakeClock())

	// 两个目标互不影响，可同时各有一个在途请求
	require.True(t, s.Request(EdgeStart, sampleInput, "0:00:01", 0))
	require.True(t, s.Request(EdgeEnd, sampleInput, "0:00:59", 0))

	close(block)

	fs := takeEventually(t, s, EdgeStart)
	fe := takeEventually(t, s, EdgeEnd)
	assert.Equal(t, []byte("f"), fs.Data)
	assert.Equal(t, []byte("f"), fe.Data)
	assert.ElementsMatch(t, []string{"0:00:01", "0:00:59"}, ext.timestamps())
}

func TestCloseRejects(t *testing.T) {
	ext := &fakeExtractor{data: []byte("x")}
	s, _ := newService(t, ext, newFakeClock())

	s.Close()
	assert.False(t, s.Request(EdgeStart, sampleInput, "0:00:01", 0))
}

func TestExecExtractor(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "ffmpeg")
	body := "#!/bin/sh\nfor a; do out=$a; done\nprintf 'FRAME' > \"$out\"\n"
	require.NoError(t, os.WriteFile(script, []byte(body), 0o755))

	ext, err := NewExtractor(script)
	require.NoError(t, err)

	out := filepath.Join(dir, "preview.jpg")
	require.NoError(t, ext.Extract(sampleInput, "0:00:03", 90, out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "FRAME", string(data))
}

func TestNewExtractorInvalidBinary(t *testing.T) {
	_, err := NewExtractor(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
