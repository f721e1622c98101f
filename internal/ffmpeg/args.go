// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFmpegGUI - FFmpeg 视频批量处理工具

package ffmpeg

import "fmt"

// ClipArgs builds the FFmpeg args for one trim/rotate task. The clip
// window (-ss/-to) is added only when start is strictly earlier than
// end; an equal or reversed range copies the whole file. Streams are
// copied, never re-encoded. Malformed time strings yield ErrBadClock.
func ClipArgs(input, output, start, end string, rotation int) ([]string, error) {
	args := []string{"-i", input}

	s, err := ParseClock(start)
	if err != nil {
		return nil, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return nil, err
	}
	if s < e {
		args = append(args, "-ss", start, "-to", end)
	}

	args = append(args, "-c:v", "copy", "-c:a", "copy")

	// 旋转通过元数据标记，播放器负责实际旋转
	if rotation != 0 {
		args = append(args, "-metadata:s:v", fmt.Sprintf("rotate=%d", rotation))
	}

	args = append(args, output)
	return args, nil
}

// PreviewArgs builds the FFmpeg args for extracting a single preview
// frame at timestamp into output.
func PreviewArgs(input, timestamp string, rotation int, output string) []string {
	args := []string{"-ss", timestamp, "-i", input}

	// 仅当旋转角度非 0 时添加旋转滤镜
	if rotation != 0 {
		args = append(args, "-vf", fmt.Sprintf("rotate=-%d*PI/180", rotation))
	}

	args = append(args, "-vframes", "1", "-q:v", "2", "-y", output)
	return args
}
