/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"gocaptionframe/internal/domain"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are read-only overrides applied at load time.
//
// config_version: bump when the structure changes in a backward-incompatible way.
// Keys missing from the file keep their defaults.
type AppConfig struct {
	ConfigVersion int                    `yaml:"config_version"`
	Frame         FrameConfig            `yaml:"frame"`
	Fonts         FontsConfig            `yaml:"fonts"`
	Layout        domain.LayoutConstants `yaml:"layout"`
	Store         StoreConfig            `yaml:"store"`
	Logging       LoggingConfig          `yaml:"logging"`
}

// FrameConfig holds the default root inputs and the frame colors.
type FrameConfig struct {
	InnerThickness      int     `yaml:"inner_thickness"`
	BorderWidthPercent  float64 `yaml:"border_width_percent"`
	BorderHeightPercent float64 `yaml:"border_height_percent"`
	PlacementPercent    float64 `yaml:"placement_percent"`
	FrameColor          string  `yaml:"frame_color"`
	InsetColor          string  `yaml:"inset_color"`
	LineColor           string  `yaml:"line_color"`
	LineWidth           int     `yaml:"line_width"`
	TitleColor          string  `yaml:"title_color"`
	CaptionColor        string  `yaml:"caption_color"`
}

// FontsConfig selects faces and where extra font files come from.
// Faces are opaque names resolved by the rasterizer; unknown names fall back silently.
type FontsConfig struct {
	Title             string   `yaml:"title"`
	Caption           string   `yaml:"caption"`
	TitleSizeFactor   float64  `yaml:"title_size_factor"`
	CaptionSizeFactor float64  `yaml:"caption_size_factor"`
	Files             []string `yaml:"files"`
	Dirs              []string `yaml:"dirs"`
}

// StoreConfig selects the metadata store backend.
// Driver is "sqlite" (default) or "pgx"; an empty sqlite DSN uses DefaultStorePath.
type StoreConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Frame: FrameConfig{
			InnerThickness:      10,
			BorderWidthPercent:  3,
			BorderHeightPercent: 25,
			PlacementPercent:    50,
			FrameColor:          "#000000",
			InsetColor:          "#000000",
			LineColor:           "#ffffff",
			LineWidth:           2,
			TitleColor:          "#ffffff",
			CaptionColor:        "#ffffff",
		},
		Fonts: FontsConfig{
			Title:             "Go Bold",
			Caption:           "Go",
			TitleSizeFactor:   0.25,
			CaptionSizeFactor: 0.36,
		},
		Layout:  domain.DefaultLayout(),
		Store:   StoreConfig{Driver: "sqlite"},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// Env var names used as overrides.
const (
	EnvInnerThickness  = "GCF_INNER_THICKNESS"
	EnvBorderWidthPct  = "GCF_BORDER_WIDTH_PERCENT"
	EnvBorderHeightPct = "GCF_BORDER_HEIGHT_PERCENT"
	EnvPlacementPct    = "GCF_PLACEMENT_PERCENT"
	EnvTitleFont       = "GCF_TITLE_FONT"
	EnvCaptionFont     = "GCF_CAPTION_FONT"
	EnvFontDir         = "GCF_FONT_DIR"
	EnvStoreDriver     = "GCF_STORE_DRIVER"
	EnvStoreDSN        = "GCF_STORE_DSN"
	EnvLogLevel        = "GCF_LOG_LEVEL"
	EnvLogFormat       = "GCF_LOG_FORMAT"
	EnvLogSource       = "GCF_LOG_SOURCE"
	EnvLogFile         = "GCF_LOG_FILE"
)

// envKeys maps dotted config keys to their override variables.
var envKeys = map[string]string{
	"frame.inner_thickness":       EnvInnerThickness,
	"frame.border_width_percent":  EnvBorderWidthPct,
	"frame.border_height_percent": EnvBorderHeightPct,
	"frame.placement_percent":     EnvPlacementPct,
	"fonts.title":                 EnvTitleFont,
	"fonts.caption":               EnvCaptionFont,
	"fonts.dirs":                  EnvFontDir,
	"store.driver":                EnvStoreDriver,
	"store.dsn":                   EnvStoreDSN,
	"logging.level":               EnvLogLevel,
	"logging.format":              EnvLogFormat,
	"logging.source":              EnvLogSource,
	"logging.file":                EnvLogFile,
}

// ConfigDir returns the per-user configuration directory.
func ConfigDir() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "GoCaptionFrame")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "GoCaptionFrame")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = filepath.Join(xdg, "gocaptionframe")
		} else {
			base = filepath.Join(os.Getenv("HOME"), ".config", "gocaptionframe")
		}
	}
	if base == "" || base == "gocaptionframe" {
		return "", errors.New("cannot resolve config directory")
	}
	return base, nil
}

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// DefaultStorePath is where the sqlite metadata store lives when no DSN is configured.
func DefaultStorePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "metadata.sqlite"), nil
}

// FontDir is the per-user directory whose fonts are always registered and
// where installed font packs are extracted.
func FontDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "fonts"), nil
}

// Load reads the config file at path (the per-user path when empty), applies
// defaults for missing keys and merges environment overrides. A missing file
// is not an error; a malformed one is.
func Load(path string) (AppConfig, error) {
	cfg := Defaults()
	if strings.TrimSpace(path) == "" {
		p, err := ConfigPath()
		if err != nil {
			applyEnvOverrides(&cfg)
			return cfg, nil
		}
		path = p
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Defaults(), fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	normalize(&cfg)
	applyEnvOverrides(&cfg)
	return cfg, cfg.Validate()
}

// Save writes cfg as YAML to path (the per-user path when empty).
func Save(cfg AppConfig, path string) error {
	if strings.TrimSpace(path) == "" {
		p, err := ConfigPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate rejects values the frame engine could never accept.
func (c AppConfig) Validate() error {
	var errs []error
	if c.Frame.InnerThickness < 0 {
		errs = append(errs, fmt.Errorf("frame.inner_thickness must be >= 0, got %d", c.Frame.InnerThickness))
	}
	if c.Frame.BorderWidthPercent < 0 || c.Frame.BorderHeightPercent < 0 {
		errs = append(errs, errors.New("frame border percentages must be >= 0"))
	}
	if c.Frame.PlacementPercent < 0 || c.Frame.PlacementPercent > 100 {
		errs = append(errs, fmt.Errorf("frame.placement_percent must be within [0,100], got %v", c.Frame.PlacementPercent))
	}
	if c.Fonts.TitleSizeFactor <= 0 || c.Fonts.CaptionSizeFactor <= 0 {
		errs = append(errs, errors.New("font size factors must be positive"))
	}
	if c.Layout.MeasurePad <= 0 {
		errs = append(errs, fmt.Errorf("layout.measure_pad must be positive, got %d", c.Layout.MeasurePad))
	}
	if cols := len(domain.Blocks); math.IsNaN(c.Layout.GutterRatio) || c.Layout.GutterRatio < 0 || c.Layout.GutterRatio >= 1/float64(cols) {
		errs = append(errs, fmt.Errorf("layout.gutter_ratio must be within [0,1/%d), got %v", cols, c.Layout.GutterRatio))
	}
	if math.IsNaN(c.Layout.VerticalBias) || c.Layout.VerticalBias < 0 || c.Layout.VerticalBias >= 1 {
		errs = append(errs, fmt.Errorf("layout.vertical_bias must be within [0,1), got %v", c.Layout.VerticalBias))
	}
	if !(c.Layout.LineSpacing > 0) {
		errs = append(errs, fmt.Errorf("layout.line_spacing must be positive, got %v", c.Layout.LineSpacing))
	}
	switch c.Store.Driver {
	case "sqlite", "pgx":
	default:
		errs = append(errs, fmt.Errorf("store.driver must be sqlite or pgx, got %q", c.Store.Driver))
	}
	for _, col := range []string{c.Frame.FrameColor, c.Frame.InsetColor, c.Frame.LineColor, c.Frame.TitleColor, c.Frame.CaptionColor} {
		if _, err := domain.ParseHexColor(col); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Settings converts the frame and font defaults into persistable settings
// with empty captions.
func (c AppConfig) Settings() domain.Settings {
	return domain.Settings{
		InnerThickness:      c.Frame.InnerThickness,
		BorderWidthPercent:  c.Frame.BorderWidthPercent,
		BorderHeightPercent: c.Frame.BorderHeightPercent,
		PlacementPercent:    c.Frame.PlacementPercent,
		TitleFont:           domain.FontSpec{Face: c.Fonts.Title, SizeFactor: c.Fonts.TitleSizeFactor},
		CaptionFont:         domain.FontSpec{Face: c.Fonts.Caption, SizeFactor: c.Fonts.CaptionSizeFactor},
	}
}

func normalize(cfg *AppConfig) {
	cfg.Store.Driver = strings.ToLower(strings.TrimSpace(cfg.Store.Driver))
	if cfg.Store.Driver == "" || cfg.Store.Driver == "sqlite3" {
		cfg.Store.Driver = "sqlite"
	}
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	cfg.Logging.Format = strings.ToLower(strings.TrimSpace(cfg.Logging.Format))
	cfg.Logging.File = strings.TrimSpace(cfg.Logging.File)
}

func applyEnvOverrides(cfg *AppConfig) {
	if v, ok := lookup(EnvInnerThickness); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Frame.InnerThickness = n
		}
	}
	setFloat := func(env string, dst *float64) {
		if v, ok := lookup(env); ok {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				*dst = f
			}
		}
	}
	setFloat(EnvBorderWidthPct, &cfg.Frame.BorderWidthPercent)
	setFloat(EnvBorderHeightPct, &cfg.Frame.BorderHeightPercent)
	setFloat(EnvPlacementPct, &cfg.Frame.PlacementPercent)
	if v, ok := lookup(EnvTitleFont); ok {
		cfg.Fonts.Title = v
	}
	if v, ok := lookup(EnvCaptionFont); ok {
		cfg.Fonts.Caption = v
	}
	if v, ok := lookup(EnvFontDir); ok {
		cfg.Fonts.Dirs = append(cfg.Fonts.Dirs, filepath.SplitList(v)...)
	}
	if v, ok := lookup(EnvStoreDriver); ok {
		cfg.Store.Driver = strings.ToLower(v)
	}
	if v, ok := lookup(EnvStoreDSN); ok {
		cfg.Store.DSN = v
	}
	if v, ok := lookup(EnvLogLevel); ok {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v, ok := lookup(EnvLogFormat); ok {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v, ok := lookup(EnvLogSource); ok {
		lv := strings.ToLower(v)
		cfg.Logging.Source = lv == "1" || lv == "true" || lv == "on" || lv == "yes"
	}
	if v, ok := lookup(EnvLogFile); ok {
		cfg.Logging.File = v
	}
}

func lookup(env string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(env))
	return v, v != ""
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	env, ok := envKeys[key]
	if !ok || os.Getenv(env) == "" {
		return "", false
	}
	return env, true
}
