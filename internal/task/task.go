// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFmpegGUI - FFmpeg 视频批量处理工具
//
// Package task 把源文件列表和用户参数变成一批不可变的处理任务。

package task

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lithammer/shortuuid/v4"

	"github.com/fridayhub/ffmpeg-gui/internal/filename"
	"github.com/fridayhub/ffmpeg-gui/internal/logger"
)

// BatchTask 一个源文件的裁剪/旋转任务，构建后不再修改
type BatchTask struct {
	ID         string
	InputPath  string
	OutputPath string
	StartTime  string
	EndTime    string
	Rotation   int
}

// Params are the user parameters a batch is built from
type Params struct {
	OutputDir string
	Template  string
	StartTime string
	EndTime   string
	Rotation  int
}

// Plan is the planning result for one source file. Planning is pure;
// the rename itself happens in Build.
type Plan struct {
	SourcePath  string
	RenamedPath string // 清洗后的目标路径，与源文件同目录
	NeedsRename bool
}

// PlanSources computes the sanitized rename target for each source
// without touching the filesystem.
func PlanSources(sources []string) []Plan {
	plans := make([]Plan, 0, len(sources))
	for _, src := range sources {
		sanitized := filename.Sanitize(filepath.Base(src))
		renamed := src
		if sanitized != "" {
			renamed = filepath.Join(filepath.Dir(src), sanitized)
		}
		plans = append(plans, Plan{
			SourcePath:  src,
			RenamedPath: renamed,
			NeedsRename: renamed != src,
		})
	}
	return plans
}

// Renamer performs the physical rename
type Renamer func(oldpath, newpath string) error

// Builder turns plans into batch tasks
type Builder struct {
	Rename Renamer          // 为空时使用 os.Rename
	Logger logger.Logger    //
	Now    func() time.Time // 为空时使用 time.Now
}

// Build executes the plans and bundles the current parameters into
// tasks. A failed rename is logged and the original path is kept, the
// task still runs. Build is synchronous and finishes before any
// process starts.
func (b *Builder) Build(plans []Plan, p Params) []BatchTask {
	rename := b.Rename
	if rename == nil {
		rename = os.Rename
	}
	log := b.Logger
	if log == nil {
		log = logger.Nop()
	}
	now := b.Now
	if now == nil {
		now = time.Now
	}

	tasks := make([]BatchTask, 0, len(plans))
	for _, plan := range plans {
		input := plan.SourcePath
		if plan.NeedsRename {
			if err := rename(plan.SourcePath, plan.RenamedPath); err != nil {
				log.Warn("重命名失败 %s: %v", plan.SourcePath, err)
			} else {
				log.Info("重命名成功: %s", plan.RenamedPath)
				input = plan.RenamedPath
			}
		}

		base := filepath.Base(input)
		ext := strings.TrimPrefix(filepath.Ext(base), ".")
		stem := strings.TrimSuffix(base, filepath.Ext(base))

		rendered := filename.Render(p.Template, filename.Values{
			InputName: stem,
			Ext:       ext,
			Rotation:  p.Rotation,
			Now:       now(),
		})

		tasks = append(tasks, BatchTask{
			ID:         shortuuid.New(),
			InputPath:  input,
			OutputPath: filename.Clean(filepath.Join(p.OutputDir, rendered)),
			StartTime:  p.StartTime,
			EndTime:    p.EndTime,
			Rotation:   p.Rotation,
		})
	}
	return tasks
}
