// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFmpegGUI - FFmpeg 视频批量处理工具

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/disintegration/imaging"
	"github.com/fridayhub/ffmpeg-gui/internal/config"
	"github.com/fridayhub/ffmpeg-gui/internal/engine"
	"github.com/fridayhub/ffmpeg-gui/internal/ffmpeg"
	"github.com/fridayhub/ffmpeg-gui/internal/logger"
	"github.com/fridayhub/ffmpeg-gui/internal/preview"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	ffmpegBin := flag.String("ffmpeg", "", "FFmpeg binary path (overrides config)")
	probeBin := flag.String("ffprobe", "", "ffprobe binary path (overrides config)")
	outDir := flag.String("out", "", "Output directory (overrides config)")
	template := flag.String("template", "", "Output filename template (overrides config)")
	start := flag.String("ss", "0:00:00", "Clip start time (HH:MM:SS)")
	end := flag.String("to", "0:00:00", "Clip end time (HH:MM:SS)")
	rotate := flag.Int("rotate", 0, "Rotation angle: 0/90/180/270")
	showInfo := flag.Bool("info", false, "Probe the input files and exit")
	previewAt := flag.String("preview", "", "Extract one frame at this time instead of processing")
	previewOut := flag.String("preview-out", "preview.jpg", "Where to write the preview frame")
	flag.Parse()

	if flag.NArg() == 0 {
		log.Fatalf("用法: ffmpeggui [选项] 输入文件...")
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("Load config: %v", err)
		}
	}
	cfg.ApplyEnv()

	if *ffmpegBin != "" {
		cfg.FFmpeg.Path = *ffmpegBin
	}
	if *probeBin != "" {
		cfg.FFmpeg.ProbePath = *probeBin
	}
	if *template != "" {
		cfg.Output.Template = *template
	}

	// 起止时间先行校验，格式错误没必要等到任务失败才知道
	if _, err := ffmpeg.ParseClock(*start); err != nil {
		log.Fatalf("开始时间 %q: %v", *start, err)
	}
	if _, err := ffmpeg.ParseClock(*end); err != nil {
		log.Fatalf("结束时间 %q: %v", *end, err)
	}

	logg := logger.NewWithLevel("ffmpeggui: ", logger.ParseLevel(cfg.Log.Level))

	eng, err := engine.New(engine.Config{
		FFmpegBinary: cfg.FFmpeg.Path,
		ProbeBinary:  cfg.FFmpeg.ProbePath,
		MaxLogLines:  cfg.FFmpeg.MaxLogLines,
		OutputDir:    cfg.Output.Dir,
		Template:     cfg.Output.Template,
		DebounceMs:   cfg.Preview.DebounceMs,
		PreviewTemp:  cfg.Preview.TempDir,
		Logger:       logg,
	})
	if err != nil {
		log.Fatalf("Engine init: %v", err)
	}

	if err := eng.SetRotation(*rotate); err != nil {
		log.Fatalf("旋转角度 %d: %v", *rotate, err)
	}
	eng.SetTimeRange(*start, *end)
	if *outDir != "" {
		eng.SetOutputDir(*outDir)
	}

	ok := true
	switch {
	case *showInfo:
		probeInputs(eng, flag.Args())
	case *previewAt != "":
		for _, path := range flag.Args() {
			eng.AddSource(path)
		}
		eng.SetPreviewTime(preview.EdgeStart, *previewAt)
		ok = savePreview(eng, *previewOut)
	default:
		for _, path := range flag.Args() {
			eng.AddSource(path)
		}
		ok = runBatch(eng)
	}

	eng.Close()
	if !ok {
		os.Exit(1)
	}
}

// probeInputs 逐个探测并打印视频信息
func probeInputs(eng *engine.Engine, inputs []string) {
	for _, path := range inputs {
		eng.AddSource(path)
		info := eng.Info()

		fmt.Println(path)
		if info.Duration == "" && info.Codec == "" {
			fmt.Println("  探测失败")
			continue
		}
		fmt.Printf("  时长: %s\n", info.Duration)
		fmt.Printf("  大小: %s\n", info.Size)
		fmt.Printf("  编码: %s\n", info.Codec)
	}
}

// savePreview 提取一帧并解码保存
func savePreview(eng *engine.Engine, out string) bool {
	if !eng.RequestPreview(preview.EdgeStart) {
		log.Printf("预览请求被拒绝")
		return false
	}

	var frame *preview.Frame
	for frame == nil {
		time.Sleep(50 * time.Millisecond)
		frame = eng.TakePreview(preview.EdgeStart)
	}

	img, err := preview.Decode(frame.Data)
	if err != nil {
		log.Printf("预览失败: %v", err)
		return false
	}
	if err := imaging.Save(img, out); err != nil {
		log.Printf("保存预览帧失败: %v", err)
		return false
	}

	log.Printf("预览帧已保存到 %s", out)
	return true
}

// runBatch 跑完整个任务队列，控制台渲染进度。
// 第一次 Ctrl-C 请求停止，第二次立即终止。
func runBatch(eng *engine.Engine) bool {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	defer signal.Stop(sigs)

	go func() {
		<-sigs
		log.Printf("收到中断，当前任务完成后停止（再按一次立即终止）")
		eng.StopProcessing()
		<-sigs
		log.Printf("强制终止")
		eng.KillProcessing()
	}()

	if err := eng.StartProcessing(); err != nil {
		log.Printf("启动批处理失败: %v", err)
		return false
	}

	for eng.Processing() {
		if snap, hit := eng.TryStatus(); hit {
			fmt.Printf("\r进度: %5.1f%%  %-50s", snap.Progress*100, snap.Message)
		}
		time.Sleep(200 * time.Millisecond)
	}
	eng.Wait()

	snap := eng.Status()
	fmt.Printf("\r%-70s\n", snap.Message)

	return snap.Message == "处理完成" || snap.Message == "已停止"
}
