/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"gocaptionframe/internal/compose"
	"gocaptionframe/internal/domain"
	"gocaptionframe/internal/export"
	"gocaptionframe/internal/frame"
	"gocaptionframe/internal/job"
	"gocaptionframe/internal/storage"
)

// errMisfit is returned in strict mode when any string exceeds its budget.
var errMisfit = errors.New("text does not fit")

type renderRequest struct {
	Input    string
	Output   string
	Settings domain.Settings
	MaxEdge  int
}

type renderResult struct {
	Output     string
	Width      int
	Height     int
	Placements []frame.Placement
}

// renderOne decodes, frames and writes one picture with engine e.
func renderOne(e *frame.Engine, st compose.Style, req renderRequest) (renderResult, error) {
	src, _, err := export.Decode(req.Input)
	if err != nil {
		return renderResult{}, err
	}
	src = compose.Thumbnail(src, req.MaxEdge)
	b := src.Bounds()
	if err := e.Apply(req.Settings, b.Dx(), b.Dy()); err != nil {
		return renderResult{}, fmt.Errorf("%s: %w", req.Input, err)
	}
	out, ps, err := compose.Frame(src, e, st)
	if err != nil {
		return renderResult{}, fmt.Errorf("%s: %w", req.Input, err)
	}
	if err := export.Write(out, req.Output, export.Options{Title: req.Settings.Captions.Title}); err != nil {
		return renderResult{}, err
	}
	ob := out.Bounds()
	return renderResult{Output: req.Output, Width: ob.Dx(), Height: ob.Dy(), Placements: ps}, nil
}

// defaultOutput derives "<dir>/<name>-framed.<ext>" from the input path.
func defaultOutput(input, dir, ext string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	if dir == "" {
		dir = filepath.Dir(input)
	}
	return filepath.Join(dir, base+"-framed."+strings.TrimPrefix(ext, "."))
}

// resolveSettings layers stored settings, a job and command-line flags on
// top of the configured defaults, in that order.
func (a *App) resolveSettings(ctx context.Context, cmd *cobra.Command, ff *frameFlags, md storage.Metadata, jb *job.Job) (domain.Settings, error) {
	s := a.cfg.Settings()
	if md != nil {
		loaded, found, err := storage.LoadSettings(ctx, md, s)
		if err != nil {
			return s, err
		}
		if found {
			a.log.Debug("reusing stored settings")
		}
		s = loaded
	}
	if jb != nil {
		s = jb.Apply(s)
	}
	return ff.apply(cmd.Flags(), s)
}

func loadSingleJob(path string) (*job.Job, error) {
	if path == "" {
		return nil, nil
	}
	jobs, err := job.Load(path)
	if err != nil {
		return nil, err
	}
	if len(jobs) != 1 {
		return nil, fmt.Errorf("%s: expected one job, found %d (use batch)", path, len(jobs))
	}
	return &jobs[0], nil
}

func printPlacements(w io.Writer, ps []frame.Placement) {
	for _, p := range ps {
		state := "ok    "
		if !p.Fits {
			state = "MISFIT"
		}
		fmt.Fprintf(w, "%s %-28s ink %4dx%-4d budget %7.1f at %d,%d\n", state, p.String(), p.Ink.Width, p.Ink.Height, p.Budget, p.At.X, p.At.Y)
	}
}

func (a *App) renderCommand() *cobra.Command {
	var (
		output   string
		jobPath  string
		useStore bool
		reuse    bool
		strict   bool
		maxEdge  int
		ff       frameFlags
	)
	cmd := &cobra.Command{
		Use:   "render IMAGE",
		Short: "Frame a picture and write the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			input := args[0]
			if output == "" {
				output = defaultOutput(input, "", "png")
			}
			jb, err := loadSingleJob(jobPath)
			if err != nil {
				return err
			}
			var (
				store *storage.Store
				md    storage.Metadata
			)
			if useStore || reuse {
				store, err = a.openStore(ctx)
				if err != nil {
					return fmt.Errorf("open store: %w", err)
				}
				defer store.Close()
				if reuse {
					md = store.Scope(imageKey(input))
				}
			}
			s, err := a.resolveSettings(ctx, cmd, &ff, md, jb)
			if err != nil {
				return err
			}
			st, err := a.style()
			if err != nil {
				return err
			}
			e, release := a.engine()
			defer release()

			res, err := renderOne(e, st, renderRequest{Input: input, Output: output, Settings: s, MaxEdge: maxEdge})
			if err != nil {
				return err
			}
			if useStore {
				if err := storage.SaveSettings(ctx, store.Scope(imageKey(input)), s); err != nil {
					return fmt.Errorf("store settings: %w", err)
				}
			}
			a.log.Info("rendered", slog.String("in", input), slog.String("out", res.Output), slog.Int("w", res.Width), slog.Int("h", res.Height))
			printPlacements(cmd.OutOrStdout(), res.Placements)
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%dx%d)\n", res.Output, res.Width, res.Height)
			if strict && !frame.AllFit(res.Placements) {
				return errMisfit
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file; the extension selects the format (default <name>-framed.png)")
	cmd.Flags().StringVar(&jobPath, "job", "", "caption job file (JSON)")
	cmd.Flags().BoolVar(&useStore, "store", false, "persist the settings used for this image")
	cmd.Flags().BoolVar(&reuse, "reuse", false, "start from the settings stored for this image")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail when any string does not fit")
	cmd.Flags().IntVar(&maxEdge, "max-edge", 0, "downscale the picture so its longest edge is at most this many pixels")
	ff.register(cmd.Flags())
	return cmd
}

func (a *App) checkCommand() *cobra.Command {
	var (
		width, height int
		jobPath       string
		reuse         bool
		ff            frameFlags
	)
	cmd := &cobra.Command{
		Use:   "check [IMAGE]",
		Short: "Report whether the title and captions fit without rendering",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if len(args) == 1 {
				w, h, err := export.Size(args[0])
				if err != nil {
					return err
				}
				width, height = w, h
			}
			if width <= 0 || height <= 0 {
				return errors.New("need an IMAGE or --width and --height")
			}
			jb, err := loadSingleJob(jobPath)
			if err != nil {
				return err
			}
			var md storage.Metadata
			if reuse && len(args) == 1 {
				store, err := a.openStore(ctx)
				if err != nil {
					return fmt.Errorf("open store: %w", err)
				}
				defer store.Close()
				md = store.Scope(imageKey(args[0]))
			}
			s, err := a.resolveSettings(ctx, cmd, &ff, md, jb)
			if err != nil {
				return err
			}
			e, release := a.engine()
			defer release()
			if err := e.Apply(s, width, height); err != nil {
				return err
			}
			ps, err := e.Plan()
			if err != nil {
				return err
			}
			printPlacements(cmd.OutOrStdout(), ps)
			if !frame.AllFit(ps) {
				return errMisfit
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&width, "width", 0, "image width when no IMAGE is given")
	cmd.Flags().IntVar(&height, "height", 0, "image height when no IMAGE is given")
	cmd.Flags().StringVar(&jobPath, "job", "", "caption job file (JSON)")
	cmd.Flags().BoolVar(&reuse, "reuse", false, "start from the settings stored for IMAGE")
	ff.register(cmd.Flags())
	return cmd
}
