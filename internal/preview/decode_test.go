// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFmpegGUI - FFmpeg 视频批量处理工具

package preview

import (
	"bytes"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	t.Run("roundtrip", func(t *testing.T) {
		img := imaging.New(2, 3, color.NRGBA{R: 255, A: 255})
		var buf bytes.Buffer
		require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))

		decoded, err := Decode(buf.Bytes())
		require.NoError(t, err)
		assert.Equal(t, 2, decoded.Bounds().Dx())
		assert.Equal(t, 3, decoded.Bounds().Dy())
	})

	t.Run("empty", func(t *testing.T) {
		_, err := Decode(nil)
		assert.ErrorIs(t, err, ErrNoFrame)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := Decode([]byte("not an image"))
		assert.Error(t, err)
	})
}
