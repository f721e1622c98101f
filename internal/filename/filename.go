// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFmpegGUI - FFmpeg 视频批量处理工具
//
// Package filename 负责文件名清洗和输出文件名模板渲染。

package filename

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultTemplate 默认输出文件名模板
const DefaultTemplate = "{input_name}_processed_{rotation}_{timestamp}"

// 允许字母、数字、下划线、斜杠、点和中文，其余字符全部去掉
var disallowed = regexp.MustCompile(`[^A-Za-z0-9_./\x{4e00}-\x{9fff}]+`)

// Clean removes every character outside the allowed set. Slashes and
// dots survive, so it is safe to apply to a whole path.
func Clean(s string) string {
	return disallowed.ReplaceAllString(s, "")
}

// Sanitize cleans a filename and collapses extra dots: the name is split
// at the last dot into stem and extension, and any dots left in the stem
// are removed. Idempotent.
func Sanitize(name string) string {
	cleaned := Clean(name)

	idx := strings.LastIndex(cleaned, ".")
	if idx < 0 {
		return cleaned
	}

	stem := strings.ReplaceAll(cleaned[:idx], ".", "")
	ext := cleaned[idx+1:]
	if ext == "" {
		return stem
	}
	return stem + "." + ext
}

// Values are the bindings available to Render
type Values struct {
	InputName string    // 输入文件主干名，不含扩展名
	Ext       string    // 输入文件扩展名，不含点，可为空
	Rotation  int       // 旋转角度
	Now       time.Time // 渲染时刻，时间类变量从这里取值
}

// Render substitutes the five template tokens literally. Unknown tokens
// are left verbatim. When the rendered name contains no dot and the
// input had an extension, that extension is appended.
//
// 可用变量: {input_name} {rotation} {timestamp} {date} {time}
func Render(template string, v Values) string {
	name := template
	name = strings.ReplaceAll(name, "{input_name}", v.InputName)
	name = strings.ReplaceAll(name, "{rotation}", strconv.Itoa(v.Rotation))
	name = strings.ReplaceAll(name, "{timestamp}", v.Now.Format("20060102150405"))
	name = strings.ReplaceAll(name, "{date}", v.Now.Format("2006-01-02"))
	name = strings.ReplaceAll(name, "{time}", v.Now.Format("15-04-05"))

	if v.Ext != "" && !strings.Contains(name, ".") {
		name = name + "." + v.Ext
	}
	return name
}
