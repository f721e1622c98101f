// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFmpegGUI - FFmpeg 视频批量处理工具
//
// Package preview 为起止两个时间点生成防抖的单帧预览。
// 每个目标一个常驻工作协程和一个单槽请求队列，同一目标
// 任一时刻最多一个在途提帧，新请求挤掉未消费的旧请求。

package preview

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/fridayhub/ffmpeg-gui/internal/ffmpeg"
	"github.com/fridayhub/ffmpeg-gui/internal/logger"
)

// Edge 预览目标：片段起点或终点
type Edge int

const (
	EdgeStart Edge = iota
	EdgeEnd
)

func (e Edge) String() string {
	if e == EdgeEnd {
		return "end"
	}
	return "start"
}

// Frame 一次完成的提帧结果。Data 为空表示这次没取到帧。
type Frame struct {
	Data []byte
}

// Extractor 把 input 在 timestamp 处的一帧写入 output 文件
type Extractor interface {
	Extract(input, timestamp string, rotation int, output string) error
}

// Config 预览服务配置
type Config struct {
	Extractor Extractor
	TempDir   string           // 临时帧文件目录，为空时 os.TempDir()
	Debounce  time.Duration    // 防抖窗口，为空时 500ms
	Logger    logger.Logger    //
	Now       func() time.Time // 防抖时钟，可注入假时钟
	OnFrame   func(edge Edge)  // 帧就绪回调，界面层借此触发重绘
}

type request struct {
	gen       uint64
	input     string
	timestamp string
	rotation  int
}

type target struct {
	mu           sync.Mutex
	loading      bool
	lastAccepted time.Time
	hasAccepted  bool
	pending      *Frame
	gen          uint64
	closed       bool
	requests     chan request
	temp         string
}

// Service 预览服务
type Service struct {
	extractor Extractor
	debounce  time.Duration
	logger    logger.Logger
	now       func() time.Time
	onFrame   func(Edge)
	targets   [2]*target
	wg        sync.WaitGroup
}

// New 创建服务并启动两个目标的工作协程
func New(config Config) *Service {
	s := &Service{
		extractor: config.Extractor,
		debounce:  config.Debounce,
		logger:    config.Logger,
		now:       config.Now,
		onFrame:   config.OnFrame,
	}

	if s.debounce <= 0 {
		s.debounce = 500 * time.Millisecond
	}
	if s.logger == nil {
		s.logger = logger.Nop()
	}
	if s.now == nil {
		s.now = time.Now
	}

	tempDir := config.TempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}

	for i := range s.targets {
		edge := Edge(i)
		tg := &target{
			requests: make(chan request, 1),
			temp:     filepath.Join(tempDir, fmt.Sprintf("ffmpeg_gui_preview_%s.jpg", edge)),
		}
		s.targets[i] = tg

		s.wg.Add(1)
		go s.worker(edge, tg)
	}

	return s
}

func (s *Service) target(edge Edge) *target {
	if edge == EdgeEnd {
		return s.targets[1]
	}
	return s.targets[0]
}

// Request 请求为 edge 在 timestamp 处提一帧。任一守卫不通过
// 则丢弃请求并返回 false：输入为空、该目标已有在途请求、
// 距上次被接受的请求还不满防抖窗口。
func (s *Service) Request(edge Edge, input, timestamp string, rotation int) bool {
	tg := s.target(edge)

	tg.mu.Lock()
	defer tg.mu.Unlock()

	if tg.closed || input == "" || tg.loading {
		return false
	}

	now := s.now()
	if tg.hasAccepted && now.Sub(tg.lastAccepted) < s.debounce {
		return false
	}

	tg.loading = true
	tg.lastAccepted = now
	tg.hasAccepted = true

	req := request{gen: tg.gen, input: input, timestamp: timestamp, rotation: rotation}
	for {
		select {
		case tg.requests <- req:
			return true
		default:
		}
		// 槽里还留着没被消费的旧请求，挤掉它
		select {
		case <-tg.requests:
		default:
		}
	}
}

// Take 取走 edge 的完成帧，每个结果只交付一次。没有完成帧
// 或锁被工作协程占用时返回 nil，界面层下一帧再来取。
// 只要有完成结果，即使没取到帧数据也会解除 loading。
func (s *Service) Take(edge Edge) *Frame {
	tg := s.target(edge)

	if !tg.mu.TryLock() {
		return nil
	}
	defer tg.mu.Unlock()

	if tg.pending == nil {
		return nil
	}

	f := tg.pending
	tg.pending = nil
	tg.loading = false
	return f
}

// Loading 返回 edge 是否有在途请求
func (s *Service) Loading(edge Edge) bool {
	tg := s.target(edge)
	tg.mu.Lock()
	defer tg.mu.Unlock()
	return tg.loading
}

// Reset 清空两个目标：丢掉待取帧，递增代数使在途结果作废，
// 防抖历史一并清除
func (s *Service) Reset() {
	for _, tg := range s.targets {
		tg.mu.Lock()
		tg.gen++
		tg.pending = nil
		tg.loading = false
		tg.hasAccepted = false
		tg.mu.Unlock()
	}
}

// Close 关闭请求队列并等待工作协程退出
func (s *Service) Close() {
	for _, tg := range s.targets {
		tg.mu.Lock()
		if !tg.closed {
			tg.closed = true
			close(tg.requests)
		}
		tg.mu.Unlock()
	}
	s.wg.Wait()
}

func (s *Service) worker(edge Edge, tg *target) {
	defer s.wg.Done()

	for req := range tg.requests {
		data := s.extract(tg, req)

		tg.mu.Lock()
		fresh := req.gen == tg.gen
		if fresh {
			tg.pending = &Frame{Data: data}
		}
		tg.mu.Unlock()

		if fresh && s.onFrame != nil {
			s.onFrame(edge)
		}
	}
}

// extract 提帧到目标的临时文件并读回字节。取不到帧返回 nil，
// 临时文件无论成败都删掉。
func (s *Service) extract(tg *target, req request) []byte {
	defer os.Remove(tg.temp)

	if err := s.extractor.Extract(req.input, req.timestamp, req.rotation, tg.temp); err != nil {
		s.logger.Debug("预览帧提取失败 %s: %v", req.input, err)
	}

	data, err := os.ReadFile(tg.temp)
	if err != nil {
		return nil
	}
	return data
}

type execExtractor struct {
	binary string
}

// NewExtractor 返回调用 FFmpeg 子进程的提帧器
func NewExtractor(binary string) (Extractor, error) {
	resolved, err := exec.LookPath(binary)
	if err != nil {
		return nil, fmt.Errorf("invalid ffmpeg binary: %w", err)
	}
	return &execExtractor{binary: resolved}, nil
}

func (e *execExtractor) Extract(input, timestamp string, rotation int, output string) error {
	args := ffmpeg.PreviewArgs(input, timestamp, rotation, output)

	if out, err := exec.Command(e.binary, args...).CombinedOutput(); err != nil {
		return fmt.Errorf("提取预览帧失败: %w: %s", err, out)
	}
	return nil
}
