// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFmpegGUI - FFmpeg 视频批量处理工具

package process

import (
	"errors"
	"fmt"
)

var (
	ErrKilled         = errors.New("FFmpeg进程已被终止")
	ErrAlreadyStarted = errors.New("process already started")
)

// ExitError reports a non-zero exit of the child process
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("FFmpeg处理失败，退出码: %d", e.Code)
}
