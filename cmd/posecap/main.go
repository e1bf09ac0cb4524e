package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"posecap/internal/batch"
	"posecap/internal/capture"
	"posecap/internal/config"
	"posecap/internal/editor"
	"posecap/internal/logx"
	"posecap/internal/pose"
	"posecap/internal/rig"
	"posecap/internal/scene"
	"posecap/internal/sink"
	"posecap/internal/texture"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config file (.json, .toml, .yaml)")
	outputDir := flag.String("output", "", "Output directory (default: <base>/captures)")
	rigFile := flag.String("rig", "", "Rig definition YAML (default: built-in body)")
	skin := flag.String("skin", "", "Skin texture name, looked up in texture_dir")
	format := flag.String("format", "", "Image format: png, webp or tga (default: png)")
	width := flag.Int("width", 0, "Viewport width (default: 800)")
	height := flag.Int("height", 0, "Viewport height (default: 600)")
	bodies := flag.Int("bodies", 0, "Minimum bodies per scene (default: 1)")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	poses := flag.String("poses", "", "Comma-separated pose files (default: one rest pose)")
	saveRest := flag.String("save-rest", "", "Write the rest pose of the scene to this file and exit")
	move := flag.Bool("move", false, "Start the editor in move mode")
	verbose := flag.Bool("v", false, "Log capture steps to stderr")

	flag.Parse()

	if *verbose {
		logx.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	var poseFiles []string
	if *poses != "" {
		for _, p := range strings.Split(*poses, ",") {
			if p = strings.TrimSpace(p); p != "" {
				poseFiles = append(poseFiles, p)
			}
		}
	}
	if err := cfg.Resolve(config.Flags{
		OutputDir:   *outputDir,
		RigFile:     *rigFile,
		SkinTexture: *skin,
		Format:      *format,
		Width:       *width,
		Height:      *height,
		Bodies:      *bodies,
		MoveMode:    *move,
		Workers:     *workers,
		Poses:       poseFiles,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	imgFormat, err := sink.ParseFormat(cfg.ImageFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	clearColor, err := scene.ParseHexColor(cfg.ClearColor)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: clear_color: %v\n", err)
		os.Exit(1)
	}

	// Rig
	def := rig.DefaultDefinition()
	if cfg.RigFile != "" {
		def, err = rig.LoadDefinition(cfg.RigFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading rig: %v\n", err)
			os.Exit(1)
		}
	}

	// Build texture index
	texIndex := texture.BuildIndex(cfg.TextureDir)
	texCache := texture.NewCache(texIndex)
	fmt.Printf("Textures: %d indexed\n", texIndex.Len())

	skinTex := texCache.Resolve(cfg.SkinTexture)
	if cfg.SkinTexture != "" && skinTex == nil {
		fmt.Fprintf(os.Stderr, "Warning: skin texture %q not found, using depth skin\n", cfg.SkinTexture)
	}

	template, err := rig.Build(def, skinTex)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building rig: %v\n", err)
		os.Exit(1)
	}

	if *saveRest != "" {
		sc := scene.New()
		sc.Add(template)
		if err := pose.Save(*saveRest, pose.Capture("rest", sc)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Pose: %s\n", *saveRest)
		return
	}

	// Load poses
	var jobs []pose.Pose
	for _, path := range cfg.Poses {
		p, err := pose.Load(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading pose: %v\n", err)
			os.Exit(1)
		}
		jobs = append(jobs, p)
	}
	if len(jobs) == 0 {
		jobs = []pose.Pose{{Name: "rest"}}
	}

	// Print summary
	fmt.Printf("Pose capture → %s\n", strings.ToUpper(string(imgFormat)))
	fmt.Printf("Poses: %d, Bodies: %d, Workers: %d\n", len(jobs), cfg.Bodies, cfg.Workers)
	fmt.Printf("Viewport: %dx%d (AA %d, ratio %.2g)\n", cfg.Width, cfg.Height, cfg.Antialias, cfg.PixelRatio)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	// a textured skin only survives depth and normal captures with exact restore
	exact := cfg.ExactMaterialRestore || skinTex != nil

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()

	// Run batch
	batchCfg := batch.Config{
		OutputDir: cfg.OutputDir,
		Format:    imgFormat,
		Template:  template,
		Options: editor.Options{
			Width:      cfg.Width,
			Height:     cfg.Height,
			PixelRatio: cfg.PixelRatio,
			Antialias:  cfg.Antialias,
			ClearColor: clearColor,
			FOV:        cfg.FOV,
			Near:       cfg.Near,
			Far:        cfg.Far,
			MoveMode:   cfg.MoveMode,
			Capture: capture.Options{
				ExactMaterialRestore: exact,
			},
		},
		Bodies:  cfg.Bodies,
		Workers: cfg.Workers,
	}

	results := batch.Run(ctx, batchCfg, jobs)

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	// Count results
	success, images := 0, 0
	var failed []batch.Result
	for _, r := range results {
		images += len(r.Images)
		if r.Success {
			success++
		} else {
			failed = append(failed, r)
		}
	}

	fmt.Printf("Exported: %d/%d poses, %d images\n", success, len(jobs), images)

	if len(failed) > 0 {
		fmt.Printf("\nFailed (%d):\n", len(failed))
		limit := min(20, len(failed))
		for _, r := range failed[:limit] {
			fmt.Printf("  %s: %s\n", r.Name, r.Error)
		}
	}

	// Write manifest
	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	if err := batch.WriteManifest(manifestPath, results); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if len(failed) > 0 {
		os.Exit(1)
	}
}
