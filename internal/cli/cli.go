/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package cli implements the gocaptionframe command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"gocaptionframe/internal/compose"
	"gocaptionframe/internal/config"
	"gocaptionframe/internal/frame"
	applog "gocaptionframe/internal/log"
	"gocaptionframe/internal/storage"
	"gocaptionframe/internal/textlayout"
	"gocaptionframe/internal/version"
)

const appName = "gocaptionframe"

// App holds state shared by all commands. It is filled in by the root
// command's pre-run hook.
type App struct {
	cfgPath string
	verbose bool

	cfg config.AppConfig
	lib *textlayout.FontLibrary
	log *slog.Logger

	// newEngineFn replaces newEngine when set.
	newEngineFn func() (*frame.Engine, func())
}

// New returns an App with default configuration; the root command loads
// the real configuration before any subcommand runs.
func New() *App {
	return &App{cfg: config.Defaults(), lib: textlayout.NewFontLibrary(), log: applog.WithComponent("cli")}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (a *App) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "Frame pictures with a title bar and a three-column caption bar",
		Long:          `gocaptionframe pads a picture with an inner inset and an outer frame, sizes title and caption fonts from the frame geometry, checks that every string fits its column and renders the result.`,
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = applog.Close()
		},
	}
	root.SetVersionTemplate(appName + " {{.Version}}\n")
	root.PersistentFlags().StringVar(&a.cfgPath, "config", "", "config file (default: per-user config.yaml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(a.geometryCommand())
	root.AddCommand(a.checkCommand())
	root.AddCommand(a.renderCommand())
	root.AddCommand(a.batchCommand())
	root.AddCommand(a.fontsCommand())
	root.AddCommand(a.storeCommand())
	root.AddCommand(a.versionCommand())
	return root
}

func (a *App) setup(stderr io.Writer) error {
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg
	applog.Init(applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
		Console:   stderr,
	})
	if a.verbose {
		applog.SetLevel("debug")
	}
	a.log = applog.WithComponent("cli")
	return a.loadFonts()
}

// loadFonts registers configured font files ("Name=path" or a bare path
// named after the file), font directories and the per-user font dir.
func (a *App) loadFonts() error {
	for _, entry := range a.cfg.Fonts.Files {
		name, path, ok := strings.Cut(entry, "=")
		if !ok {
			path = entry
			name = strings.TrimSuffix(filepath.Base(entry), filepath.Ext(entry))
		}
		if err := a.lib.LoadTTF(strings.TrimSpace(name), strings.TrimSpace(path)); err != nil {
			return err
		}
	}
	dirs := a.cfg.Fonts.Dirs
	if user, err := config.FontDir(); err == nil {
		if _, err := os.Stat(user); err == nil {
			dirs = append(append([]string(nil), dirs...), user)
		}
	}
	for _, dir := range dirs {
		n, err := a.lib.LoadDir(dir)
		if err != nil {
			a.log.Warn("font dir skipped", slog.String("dir", dir), slog.Any("err", err))
			continue
		}
		a.log.Debug("font dir loaded", slog.String("dir", dir), slog.Int("fonts", n))
	}
	return nil
}

// newEngine returns an engine with its own rasterizer over the shared font
// library, and the func that releases both.
func (a *App) newEngine() (*frame.Engine, func()) {
	r := textlayout.NewFaceRasterizer(a.lib)
	e := frame.NewEngine(frame.Options{Layout: a.cfg.Layout, Rasterizer: r, Logger: applog.WithComponent("frame")})
	return e, func() {
		e.Close()
		r.Close()
	}
}

func (a *App) engine() (*frame.Engine, func()) {
	if a.newEngineFn != nil {
		return a.newEngineFn()
	}
	return a.newEngine()
}

func (a *App) style() (compose.Style, error) {
	f := a.cfg.Frame
	return compose.ParseStyle(f.FrameColor, f.InsetColor, f.LineColor, f.TitleColor, f.CaptionColor, f.LineWidth)
}

// openStore opens the configured metadata store. An empty sqlite DSN means
// the per-user default database.
func (a *App) openStore(ctx context.Context) (*storage.Store, error) {
	sc := a.cfg.Store
	if sc.Driver == storage.DriverPgx {
		dsn, err := a.pgxDSN(sc.DSN)
		if err != nil {
			return nil, err
		}
		return storage.Open(ctx, storage.DriverPgx, dsn)
	}
	path := sc.DSN
	if path == "" {
		p, err := config.DefaultStorePath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return storage.OpenSQLite(ctx, path)
}

// pgxDSN fills in the keyring password when the DSN itself carries none.
func (a *App) pgxDSN(dsn string) (string, error) {
	login, err := storage.ParsePgxLogin(dsn)
	if err != nil {
		return "", err
	}
	if login.HasPassword {
		return dsn, nil
	}
	pw, err := config.StorePassword(login.User, login.Host)
	switch {
	case errors.Is(err, config.ErrNoSecret):
		return dsn, nil
	case err != nil:
		a.log.Warn("keyring unavailable", slog.Any("err", err))
		return dsn, nil
	}
	a.log.Debug("store password from keyring", slog.String("user", login.User), slog.String("host", login.Host))
	return storage.PgxDSNWithPassword(dsn, pw)
}

// imageKey identifies an image in the metadata store.
func imageKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
