package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds all configurable paths and render settings.
type Config struct {
	// Paths
	BaseDir     string   `json:"base_dir" toml:"base_dir" yaml:"base_dir"`
	OutputDir   string   `json:"output_dir" toml:"output_dir" yaml:"output_dir"`
	RigFile     string   `json:"rig_file" toml:"rig_file" yaml:"rig_file"`
	TextureDir  string   `json:"texture_dir" toml:"texture_dir" yaml:"texture_dir"`
	SkinTexture string   `json:"skin_texture" toml:"skin_texture" yaml:"skin_texture"`
	Poses       []string `json:"poses" toml:"poses" yaml:"poses"`

	// Render settings
	Width       int     `json:"width" toml:"width" yaml:"width"`
	Height      int     `json:"height" toml:"height" yaml:"height"`
	PixelRatio  float64 `json:"pixel_ratio" toml:"pixel_ratio" yaml:"pixel_ratio"`
	Antialias   int     `json:"antialias" toml:"antialias" yaml:"antialias"`
	ClearColor  string  `json:"clear_color" toml:"clear_color" yaml:"clear_color"`
	ImageFormat string  `json:"image_format" toml:"image_format" yaml:"image_format"`

	// Camera
	FOV  float64 `json:"fov" toml:"fov" yaml:"fov"`
	Near float64 `json:"near" toml:"near" yaml:"near"`
	Far  float64 `json:"far" toml:"far" yaml:"far"`

	// Editor
	MoveMode             bool `json:"move_mode" toml:"move_mode" yaml:"move_mode"`
	Bodies               int  `json:"bodies" toml:"bodies" yaml:"bodies"`
	ExactMaterialRestore bool `json:"exact_material_restore" toml:"exact_material_restore" yaml:"exact_material_restore"`

	// Batch
	Workers int `json:"workers" toml:"workers" yaml:"workers"`
}

// Load reads a config file and returns Config. The format follows the
// extension: .json, .toml, .yaml or .yml. Fields not set in the file keep
// their zero values. A relative base_dir is taken from the file's directory.
func Load(path string) (Config, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: expand %s: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &cfg)
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		return Config{}, fmt.Errorf("config: unsupported format %q", ext)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if cfg.BaseDir == "" {
		cfg.BaseDir = filepath.Dir(path)
	} else if !filepath.IsAbs(cfg.BaseDir) && !strings.HasPrefix(cfg.BaseDir, "~") {
		cfg.BaseDir = filepath.Join(filepath.Dir(path), cfg.BaseDir)
	}
	return cfg, nil
}

// Default returns a Config with every default applied and no paths set
// except the output directory.
func Default() Config {
	var c Config
	_ = c.Resolve(Flags{})
	return c
}

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) error {
	// CLI flags override config file
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.RigFile != "" {
		c.RigFile = flags.RigFile
	}
	if flags.SkinTexture != "" {
		c.SkinTexture = flags.SkinTexture
	}
	if flags.Format != "" {
		c.ImageFormat = flags.Format
	}
	if flags.Width > 0 {
		c.Width = flags.Width
	}
	if flags.Height > 0 {
		c.Height = flags.Height
	}
	if flags.Bodies > 0 {
		c.Bodies = flags.Bodies
	}
	if flags.MoveMode {
		c.MoveMode = true
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if len(flags.Poses) > 0 {
		c.Poses = append([]string(nil), flags.Poses...)
	}

	if c.BaseDir != "" {
		dir, err := homedir.Expand(c.BaseDir)
		if err != nil {
			return fmt.Errorf("config: base_dir: %w", err)
		}
		c.BaseDir = dir
	}

	// Expand ~ and resolve relative paths against base dir
	for _, p := range []struct {
		name string
		val  *string
	}{
		{"output_dir", &c.OutputDir},
		{"rig_file", &c.RigFile},
		{"texture_dir", &c.TextureDir},
	} {
		if *p.val == "" {
			continue
		}
		v, err := homedir.Expand(*p.val)
		if err != nil {
			return fmt.Errorf("config: %s: %w", p.name, err)
		}
		if !filepath.IsAbs(v) && c.BaseDir != "" {
			v = filepath.Join(c.BaseDir, v)
		}
		*p.val = v
	}
	if c.OutputDir == "" {
		c.OutputDir = filepath.Join(c.BaseDir, "captures")
	}
	for i, p := range c.Poses {
		v, err := homedir.Expand(p)
		if err != nil {
			return fmt.Errorf("config: poses[%d]: %w", i, err)
		}
		if !filepath.IsAbs(v) && c.BaseDir != "" {
			v = filepath.Join(c.BaseDir, v)
		}
		c.Poses[i] = v
	}

	// Defaults for render settings
	if c.Width <= 0 {
		c.Width = 800
	}
	if c.Height <= 0 {
		c.Height = 600
	}
	if c.PixelRatio <= 0 {
		c.PixelRatio = 1
	}
	if c.Antialias <= 0 {
		c.Antialias = 2
	}
	if c.ClearColor == "" {
		c.ClearColor = "#303030"
	}
	if c.ImageFormat == "" {
		c.ImageFormat = "png"
	}
	if c.FOV <= 0 {
		c.FOV = 60
	}
	if c.Near <= 0 {
		c.Near = 130
	}
	if c.Far <= c.Near {
		c.Far = 600
		if c.Far <= c.Near {
			c.Far = c.Near * 4
		}
	}
	if c.Bodies <= 0 {
		c.Bodies = 1
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	return nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	OutputDir   string
	RigFile     string
	SkinTexture string
	Format      string
	Width       int
	Height      int
	Bodies      int
	MoveMode    bool
	Workers     int
	Poses       []string
}
