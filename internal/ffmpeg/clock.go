// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFmpegGUI - FFmpeg 视频批量处理工具

package ffmpeg

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrBadClock marks a user-entered time string that cannot be parsed
var ErrBadClock = errors.New("时间格式不正确，应为 HH:MM:SS")

var clockRe = regexp.MustCompile(`^([0-9]{1,2}):([0-9]{1,2}):([0-9]{1,2})(\.[0-9]+)?$`)

// ParseClock parses an HH:MM:SS[.frac] string. Hours run 0-23,
// minutes and seconds 0-59. Malformed input yields ErrBadClock.
func ParseClock(s string) (time.Duration, error) {
	m := clockRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrBadClock, s)
	}

	h, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	sec, _ := strconv.Atoi(m[3])
	if h > 23 || mm > 59 || sec > 59 {
		return 0, fmt.Errorf("%w: %q", ErrBadClock, s)
	}

	d := time.Duration(h)*time.Hour + time.Duration(mm)*time.Minute + time.Duration(sec)*time.Second
	if m[4] != "" {
		frac, _ := strconv.ParseFloat(m[4], 64)
		d += time.Duration(frac * float64(time.Second))
	}
	return d, nil
}
