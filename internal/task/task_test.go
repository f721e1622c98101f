// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFmpegGUI - FFmpeg 视频批量处理工具

package task

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanSources(t *testing.T) {
	plans := PlanSources([]string{
		"/videos/my movie.mp4",
		"/videos/clean.mp4",
		"/videos/...",
	})
	require.Len(t, plans, 3)

	assert.True(t, plans[0].NeedsRename)
	assert.Equal(t, "/videos/mymovie.mp4", plans[0].RenamedPath)

	assert.False(t, plans[1].NeedsRename)
	assert.Equal(t, "/videos/clean.mp4", plans[1].RenamedPath)

	// 清洗结果为空时不重命名
	assert.False(t, plans[2].NeedsRename)
	assert.Equal(t, "/videos/...", plans[2].RenamedPath)
}

func TestBuild(t *testing.T) {
	now := time.Date(2026, 3, 14, 15, 9, 26, 0, time.Local)
	params := Params{
		OutputDir: "out",
		Template:  "{input_name}_{rotation}",
		StartTime: "0:00:05",
		EndTime:   "0:00:10",
		Rotation:  90,
	}

	t.Run("rename applied", func(t *testing.T) {
		var renames [][2]string
		b := &Builder{
			Rename: func(o, n string) error {
				renames = append(renames, [2]string{o, n})
				return nil
			},
			Now: func() time.Time { return now },
		}

		tasks := b.Build(PlanSources([]string{"/v/my movie.mp4"}), params)
		require.Len(t, tasks, 1)
		require.Len(t, renames, 1)
		assert.Equal(t, [2]string{"/v/my movie.mp4", "/v/mymovie.mp4"}, renames[0])

		tk := tasks[0]
		assert.NotEmpty(t, tk.ID)
		assert.Equal(t, "/v/mymovie.mp4", tk.InputPath)
		assert.Equal(t, "out/mymovie_90.mp4", tk.OutputPath)
		assert.Equal(t, "0:00:05", tk.StartTime)
		assert.Equal(t, "0:00:10", tk.EndTime)
		assert.Equal(t, 90, tk.Rotation)
	})

	t.Run("rename failure keeps original path", func(t *testing.T) {
		b := &Builder{
			Rename: func(o, n string) error { return errors.New("permission denied") },
			Now:    func() time.Time { return now },
		}

		tasks := b.Build(PlanSources([]string{"/v/my movie.mp4"}), params)
		require.Len(t, tasks, 1)
		assert.Equal(t, "/v/my movie.mp4", tasks[0].InputPath)
		// 输出名从未重命名的原路径计算
		assert.Equal(t, "out/mymovie_90.mp4", tasks[0].OutputPath)
	})

	t.Run("no rename needed", func(t *testing.T) {
		b := &Builder{
			Rename: func(o, n string) error {
				t.Fatal("rename should not be called")
				return nil
			},
			Now: func() time.Time { return now },
		}

		tasks := b.Build(PlanSources([]string{"/v/clean.mp4"}), params)
		require.Len(t, tasks, 1)
		assert.Equal(t, "/v/clean.mp4", tasks[0].InputPath)
	})

	t.Run("timestamp template deterministic", func(t *testing.T) {
		b := &Builder{
			Rename: func(o, n string) error { return nil },
			Now:    func() time.Time { return now },
		}
		p := params
		p.Template = "{input_name}_{timestamp}"

		tasks := b.Build(PlanSources([]string{"/v/clip.mp4"}), p)
		require.Len(t, tasks, 1)
		assert.Equal(t, "out/clip_20260314150926.mp4", tasks[0].OutputPath)
	})

	t.Run("ids unique", func(t *testing.T) {
		b := &Builder{Now: func() time.Time { return now }}
		tasks := b.Build(PlanSources([]string{"/v/a.mp4", "/v/b.mp4"}), params)
		require.Len(t, tasks, 2)
		assert.NotEqual(t, tasks[0].ID, tasks[1].ID)
	})
}
