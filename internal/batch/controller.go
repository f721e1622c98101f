// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFmpegGUI - FFmpeg 视频批量处理工具

package batch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fridayhub/ffmpeg-gui/internal/ffmpeg"
	"github.com/fridayhub/ffmpeg-gui/internal/logger"
	"github.com/fridayhub/ffmpeg-gui/internal/process"
	"github.com/fridayhub/ffmpeg-gui/internal/task"
)

// ErrBusy 已有一轮批处理在运行
var ErrBusy = errors.New("批处理正在运行中")

// Phase 控制器所处的阶段
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseRunning Phase = "running"
	PhaseAborted Phase = "aborted"
)

// Controller 在一个后台协程里按顺序执行任务队列。
// 任务严格串行，出错即停，剩余任务不再执行。
type Controller struct {
	ffmpeg ffmpeg.FFmpeg
	state  *State
	logger logger.Logger

	mu         sync.Mutex
	phase      Phase
	processing bool // Stop 置 false，循环顶部检查
	current    process.Process
	done       chan struct{}
}

// New 创建控制器
func New(f ffmpeg.FFmpeg, log logger.Logger) *Controller {
	if log == nil {
		log = logger.Nop()
	}
	return &Controller{
		ffmpeg: f,
		state:  NewState(),
		logger: log,
		phase:  PhaseIdle,
	}
}

// State 返回共享状态，供界面层轮询
func (c *Controller) State() *State {
	return c.state
}

// Phase 返回当前阶段
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Processing 返回是否有一轮批处理在运行
func (c *Controller) Processing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase == PhaseRunning
}

// Start 快照任务队列并启动工作协程。已在运行时返回 ErrBusy。
func (c *Controller) Start(tasks []task.BatchTask) error {
	c.mu.Lock()
	if c.phase == PhaseRunning {
		c.mu.Unlock()
		return ErrBusy
	}

	queue := make([]task.BatchTask, len(tasks))
	copy(queue, tasks)

	c.phase = PhaseRunning
	c.processing = true
	c.done = make(chan struct{})
	done := c.done
	c.mu.Unlock()

	go c.worker(queue, done)

	return nil
}

// Stop 请求批处理停下。只在任务之间生效，
// 正在运行的子进程不受影响。
func (c *Controller) Stop() {
	c.mu.Lock()
	c.processing = false
	c.mu.Unlock()
}

// Kill 停止批处理并终止正在运行的子进程
func (c *Controller) Kill() error {
	c.mu.Lock()
	c.processing = false
	proc := c.current
	c.mu.Unlock()

	if proc == nil {
		return nil
	}
	return proc.Kill(false)
}

// Wait 阻塞到当前一轮批处理结束
func (c *Controller) Wait() {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()

	if done != nil {
		<-done
	}
}

func (c *Controller) keepGoing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.processing
}

func (c *Controller) setCurrent(proc process.Process) {
	c.mu.Lock()
	c.current = proc
	c.mu.Unlock()
}

func (c *Controller) worker(queue []task.BatchTask, done chan struct{}) {
	defer close(done)

	c.state.SetProgress(0)

	for _, t := range queue {
		if !c.keepGoing() {
			c.finish(PhaseIdle, "已停止")
			return
		}

		c.state.SetMessage("处理中: " + t.InputPath)

		if err := c.runTask(t); err != nil {
			if errors.Is(err, process.ErrKilled) {
				c.logger.Info("批处理被终止: %s", t.InputPath)
				c.finish(PhaseAborted, "已终止")
			} else {
				c.logger.Error("任务失败 %s: %v", t.InputPath, err)
				// 错误消息保留在状态里，直到下一轮开始
				c.finish(PhaseIdle, "错误: "+err.Error())
			}
			return
		}
	}

	c.finish(PhaseIdle, "处理完成")
}

func (c *Controller) finish(phase Phase, message string) {
	c.state.SetMessage(message)
	c.state.SetProgress(0)

	c.mu.Lock()
	c.phase = phase
	c.processing = false
	c.current = nil
	c.mu.Unlock()
}

func (c *Controller) runTask(t task.BatchTask) error {
	if err := os.MkdirAll(filepath.Dir(t.OutputPath), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}

	args, err := ffmpeg.ClipArgs(t.InputPath, t.OutputPath, t.StartTime, t.EndTime, t.Rotation)
	if err != nil {
		return err
	}

	parser := c.ffmpeg.NewParser(c.state.SetProgress)

	proc, err := c.ffmpeg.New(ffmpeg.ProcessConfig{
		Command: args,
		Parser:  parser,
		Logger:  c.logger,
	})
	if err != nil {
		return err
	}

	c.setCurrent(proc)

	c.logger.Info("开始处理 [%s]: %s -> %s", t.ID, t.InputPath, t.OutputPath)
	return proc.Run()
}
