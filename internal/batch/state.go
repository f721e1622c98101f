// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFmpegGUI - FFmpeg 视频批量处理工具
//
// Package batch 按顺序执行一组转换任务，进度与状态通过共享的 State
// 发布给界面层轮询。

package batch

import (
	"sync"
)

// State 批处理与界面层共享的进度记录
type State struct {
	mu       sync.Mutex
	progress float64
	message  string
}

// Snapshot 某一时刻的进度与状态消息
type Snapshot struct {
	Progress float64 `json:"progress"`
	Message  string  `json:"message"`
}

// NewState 创建空状态 {0, ""}
func NewState() *State {
	return &State{}
}

// SetProgress 写入进度，越界值钳制到 [0,1]
func (s *State) SetProgress(f float64) {
	if f < 0 {
		f = 0
	} else if f > 1 {
		f = 1
	}

	s.mu.Lock()
	s.progress = f
	s.mu.Unlock()
}

// SetMessage 写入状态消息
func (s *State) SetMessage(m string) {
	s.mu.Lock()
	s.message = m
	s.mu.Unlock()
}

// Snapshot 阻塞读取当前状态
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{Progress: s.progress, Message: s.message}
}

// TrySnapshot 非阻塞读取。锁被工作协程占用时返回 false，
// 界面层跳过本帧即可，不会停顿。
func (s *State) TrySnapshot() (Snapshot, bool) {
	if !s.mu.TryLock() {
		return Snapshot{}, false
	}
	defer s.mu.Unlock()
	return Snapshot{Progress: s.progress, Message: s.message}, true
}
