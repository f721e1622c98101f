// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFmpegGUI - FFmpeg 视频批量处理工具

package task

import "errors"

var (
	ErrNoSources = errors.New("没有已选择的文件")
)
