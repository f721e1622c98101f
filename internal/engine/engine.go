// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFmpegGUI - FFmpeg 视频批量处理工具
//
// Package engine 是界面层唯一需要打交道的门面：维护源文件列表和
// 处理参数，驱动批处理、预览和探测，保存用户偏好。

package engine

import (
	"errors"
	"sync"
	"time"

	"github.com/fridayhub/ffmpeg-gui/internal/batch"
	"github.com/fridayhub/ffmpeg-gui/internal/ffmpeg"
	"github.com/fridayhub/ffmpeg-gui/internal/ffmpeg/probe"
	"github.com/fridayhub/ffmpeg-gui/internal/filename"
	"github.com/fridayhub/ffmpeg-gui/internal/logger"
	"github.com/fridayhub/ffmpeg-gui/internal/prefs"
	"github.com/fridayhub/ffmpeg-gui/internal/preview"
	"github.com/fridayhub/ffmpeg-gui/internal/task"
)

// ErrBadRotation 旋转角度只支持四个方向
var ErrBadRotation = errors.New("旋转角度必须是 0、90、180 或 270")

// Config 引擎配置
type Config struct {
	FFmpegBinary string // 为空时 "ffmpeg"
	ProbeBinary  string // 为空时 "ffprobe"
	MaxLogLines  int
	OutputDir    string // 为空时 "output"
	Template     string
	DebounceMs   int
	PreviewTemp  string
	PrefsPath    string // 为空时 ~/.config/ffmpeg-gui.config
	Logger       logger.Logger
	OnFrame      func(edge preview.Edge)
}

// Engine 引擎门面
type Engine struct {
	ffmpeg     ffmpeg.FFmpeg
	prober     *probe.Prober
	prefs      *prefs.Store
	controller *batch.Controller
	previews   *preview.Service
	builder    *task.Builder
	logger     logger.Logger

	mu            sync.Mutex
	sources       []string
	outputDir     string
	template      string
	startTime     string
	endTime       string
	rotation      int
	previewTimes  [2]string
	previewEdited [2]bool
	info          probe.VideoInfo
}

// New 创建引擎。FFmpeg/ffprobe 不可用时返回错误。
func New(config Config) (*Engine, error) {
	log := config.Logger
	if log == nil {
		log = logger.Nop()
	}
	if config.FFmpegBinary == "" {
		config.FFmpegBinary = "ffmpeg"
	}
	if config.ProbeBinary == "" {
		config.ProbeBinary = "ffprobe"
	}
	if config.Template == "" {
		config.Template = filename.DefaultTemplate
	}

	f, err := ffmpeg.New(ffmpeg.Config{
		Binary:      config.FFmpegBinary,
		MaxLogLines: config.MaxLogLines,
	})
	if err != nil {
		return nil, err
	}

	prober, err := probe.New(config.ProbeBinary, log)
	if err != nil {
		return nil, err
	}

	extractor, err := preview.NewExtractor(config.FFmpegBinary)
	if err != nil {
		return nil, err
	}

	prefsPath := config.PrefsPath
	if prefsPath == "" {
		prefsPath, err = prefs.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	store := prefs.New(prefsPath, log)

	// 输出目录：配置给初值，上次在界面里选过的目录优先
	outputDir := config.OutputDir
	if outputDir == "" {
		outputDir = "output"
	}
	if saved := store.Load().OutputDir; saved != "" {
		outputDir = saved
	}

	e := &Engine{
		ffmpeg:     f,
		prober:     prober,
		prefs:      store,
		controller: batch.New(f, log),
		previews: preview.New(preview.Config{
			Extractor: extractor,
			TempDir:   config.PreviewTemp,
			Debounce:  time.Duration(config.DebounceMs) * time.Millisecond,
			Logger:    log,
			OnFrame:   config.OnFrame,
		}),
		builder:   &task.Builder{Logger: log},
		logger:    log,
		outputDir: outputDir,
		template:  config.Template,
		startTime: "0:00:00",
		endTime:   "0:00:00",
	}
	e.previewTimes[preview.EdgeStart] = "0:00:00"
	e.previewTimes[preview.EdgeEnd] = "0:00:00"

	return e, nil
}

// Close 关闭预览服务并等当前批处理结束
func (e *Engine) Close() {
	e.previews.Close()
	e.controller.Wait()
}

// AddSource 把文件加入源列表并探测基本信息。
// 已在列表里时不重复添加，返回 false。
func (e *Engine) AddSource(path string) bool {
	e.mu.Lock()
	for _, p := range e.sources {
		if p == path {
			e.mu.Unlock()
			return false
		}
	}
	e.sources = append(e.sources, path)
	e.mu.Unlock()

	info := e.prober.Probe(path)

	e.mu.Lock()
	e.info = info
	e.mu.Unlock()
	return true
}

// RemoveSource 从源列表移除一个文件
func (e *Engine) RemoveSource(path string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	kept := e.sources[:0]
	for _, p := range e.sources {
		if p != path {
			kept = append(kept, p)
		}
	}
	e.sources = kept
}

// ClearSources 清空源列表并重置两个预览目标
func (e *Engine) ClearSources() {
	e.mu.Lock()
	e.sources = nil
	e.previewTimes[preview.EdgeStart] = e.startTime
	e.previewTimes[preview.EdgeEnd] = e.endTime
	e.previewEdited[preview.EdgeStart] = false
	e.previewEdited[preview.EdgeEnd] = false
	e.mu.Unlock()

	e.previews.Reset()
}

// Sources 返回源列表的副本
func (e *Engine) Sources() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.sources...)
}

// Info 返回最近一次添加文件时探测到的视频信息
func (e *Engine) Info() probe.VideoInfo {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.info
}

// SetOutputDir 设置输出目录并写入偏好文件
func (e *Engine) SetOutputDir(dir string) {
	e.mu.Lock()
	e.outputDir = dir
	e.mu.Unlock()

	if err := e.prefs.Save(prefs.Prefs{OutputDir: dir}); err != nil {
		e.logger.Warn("保存偏好失败: %v", err)
	}
}

// OutputDir 返回当前输出目录
func (e *Engine) OutputDir() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.outputDir
}

// SetTemplate 设置输出文件名模板，空串恢复默认模板
func (e *Engine) SetTemplate(template string) {
	if template == "" {
		template = filename.DefaultTemplate
	}
	e.mu.Lock()
	e.template = template
	e.mu.Unlock()
}

// Template 返回当前输出文件名模板
func (e *Engine) Template() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.template
}

// SetTimeRange 设置剪辑起止时间。没被手动改过的预览时间点
// 跟随对应的剪辑时间。
func (e *Engine) SetTimeRange(start, end string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.startTime = start
	e.endTime = end

	if !e.previewEdited[preview.EdgeStart] {
		e.previewTimes[preview.EdgeStart] = start
	}
	if !e.previewEdited[preview.EdgeEnd] {
		e.previewTimes[preview.EdgeEnd] = end
	}
}

// TimeRange 返回当前起止时间
func (e *Engine) TimeRange() (start, end string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.startTime, e.endTime
}

// SetRotation 设置旋转角度，只接受 0/90/180/270
func (e *Engine) SetRotation(rotation int) error {
	switch rotation {
	case 0, 90, 180, 270:
	default:
		return ErrBadRotation
	}

	e.mu.Lock()
	e.rotation = rotation
	e.mu.Unlock()
	return nil
}

// Rotation 返回当前旋转角度
func (e *Engine) Rotation() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rotation
}

// SetPreviewTime 手动设置某个预览目标的时间点，
// 之后该目标不再跟随剪辑时间
func (e *Engine) SetPreviewTime(edge preview.Edge, timestamp string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.previewTimes[edge] = timestamp
	e.previewEdited[edge] = true
}

// PreviewTime 返回某个预览目标当前的时间点
func (e *Engine) PreviewTime(edge preview.Edge) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.previewTimes[edge]
}

// RequestPreview 为 edge 请求一帧预览，输入取列表第一个文件。
// 防抖等守卫不通过时返回 false。
func (e *Engine) RequestPreview(edge preview.Edge) bool {
	e.mu.Lock()
	var input string
	if len(e.sources) > 0 {
		input = e.sources[0]
	}
	timestamp := e.previewTimes[edge]
	rotation := e.rotation
	e.mu.Unlock()

	return e.previews.Request(edge, input, timestamp, rotation)
}

// TakePreview 取走 edge 的完成帧，没有时返回 nil
func (e *Engine) TakePreview(edge preview.Edge) *preview.Frame {
	return e.previews.Take(edge)
}

// PreviewLoading 返回 edge 是否有在途预览
func (e *Engine) PreviewLoading(edge preview.Edge) bool {
	return e.previews.Loading(edge)
}

// StartProcessing 从当前源列表和参数构建任务并启动批处理。
// 列表为空返回 ErrNoSources，已在运行返回 ErrBusy。
func (e *Engine) StartProcessing() error {
	if e.controller.Processing() {
		return batch.ErrBusy
	}

	e.mu.Lock()
	if len(e.sources) == 0 {
		e.mu.Unlock()
		return task.ErrNoSources
	}
	sources := append([]string(nil), e.sources...)
	params := task.Params{
		OutputDir: e.outputDir,
		Template:  e.template,
		StartTime: e.startTime,
		EndTime:   e.endTime,
		Rotation:  e.rotation,
	}
	e.mu.Unlock()

	plans := task.PlanSources(sources)
	tasks := e.builder.Build(plans, params)

	// 构建时源文件可能被重命名，把新路径同步回列表
	renamed := make(map[string]string)
	for i, plan := range plans {
		if tasks[i].InputPath != plan.SourcePath {
			renamed[plan.SourcePath] = tasks[i].InputPath
		}
	}
	if len(renamed) > 0 {
		e.mu.Lock()
		for i, src := range e.sources {
			if moved, ok := renamed[src]; ok {
				e.sources[i] = moved
			}
		}
		e.mu.Unlock()
	}

	return e.controller.Start(tasks)
}

// StopProcessing 请求批处理在当前任务后停下
func (e *Engine) StopProcessing() {
	e.controller.Stop()
}

// KillProcessing 终止批处理和正在运行的子进程
func (e *Engine) KillProcessing() error {
	return e.controller.Kill()
}

// Processing 返回是否有批处理在运行
func (e *Engine) Processing() bool {
	return e.controller.Processing()
}

// Wait 阻塞到当前批处理结束
func (e *Engine) Wait() {
	e.controller.Wait()
}

// Status 阻塞读取批处理进度和状态消息
func (e *Engine) Status() batch.Snapshot {
	return e.controller.State().Snapshot()
}

// TryStatus 非阻塞读取批处理状态，锁被占用时返回 false
func (e *Engine) TryStatus() (batch.Snapshot, bool) {
	return e.controller.State().TrySnapshot()
}
