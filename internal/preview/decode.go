// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFmpegGUI - FFmpeg 视频批量处理工具

package preview

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// ErrNoFrame 取走的结果里没有帧数据
var ErrNoFrame = errors.New("没有可用的预览帧")

// Decode 把取走的帧字节解码为图像，供界面层显示
func Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, ErrNoFrame
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("解码预览帧失败: %w", err)
	}
	return img, nil
}
