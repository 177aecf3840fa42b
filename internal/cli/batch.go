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
	"log/slog"
	"runtime"
	"runtime/debug"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"gocaptionframe/internal/compose"
	"gocaptionframe/internal/job"
	"gocaptionframe/internal/storage"
)

var errPanic = errors.New("panic while framing")

type batchItem struct {
	req renderRequest
	res renderResult
	err error
}

// planBatch pairs inputs with settings. Jobs that name an image become
// items of their own; positional images use the single job without an
// image as template, if any.
func (a *App) planBatch(cmd *cobra.Command, ff *frameFlags, jobs []job.Job, images []string, outDir, format string, maxEdge int) ([]*batchItem, error) {
	var template *job.Job
	var items []*batchItem
	add := func(input, output string, jb *job.Job) error {
		s, err := a.resolveSettings(cmd.Context(), cmd, ff, nil, jb)
		if err != nil {
			return err
		}
		if output == "" {
			output = defaultOutput(input, outDir, format)
		}
		items = append(items, &batchItem{req: renderRequest{Input: input, Output: output, Settings: s, MaxEdge: maxEdge}})
		return nil
	}
	for i := range jobs {
		if jobs[i].Image == "" {
			if template != nil {
				return nil, fmt.Errorf("more than one job without an image")
			}
			template = &jobs[i]
			continue
		}
		if err := add(jobs[i].Image, jobs[i].Output, &jobs[i]); err != nil {
			return nil, err
		}
	}
	for _, im := range images {
		if err := add(im, "", template); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (a *App) batchCommand() *cobra.Command {
	var (
		jobPath  string
		outDir   string
		format   string
		workers  int
		useStore bool
		maxEdge  int
		ff       frameFlags
	)
	cmd := &cobra.Command{
		Use:   "batch [IMAGE...]",
		Short: "Frame many pictures concurrently",
		RunE: func(cmd *cobra.Command, args []string) error {
			var jobs []job.Job
			if jobPath != "" {
				var err error
				if jobs, err = job.Load(jobPath); err != nil {
					return err
				}
			}
			items, err := a.planBatch(cmd, &ff, jobs, args, outDir, format, maxEdge)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				return fmt.Errorf("nothing to do: pass images or a job file with images")
			}
			st, err := a.style()
			if err != nil {
				return err
			}
			var store *storage.Store
			if useStore {
				if store, err = a.openStore(cmd.Context()); err != nil {
					return fmt.Errorf("open store: %w", err)
				}
				defer store.Close()
			}

			runID := uuid.New().String()
			l := a.log.With(slog.String("run", runID))
			l.Info("batch started", slog.Int("images", len(items)), slog.Int("workers", workers))
			if err := a.runBatch(cmd.Context(), items, st, store, workers); err != nil {
				return err
			}

			failed := 0
			out := cmd.OutOrStdout()
			for _, it := range items {
				if it.err != nil {
					failed++
					fmt.Fprintf(out, "FAIL   %s: %v\n", it.req.Input, it.err)
					continue
				}
				misfits := 0
				for _, p := range it.res.Placements {
					if !p.Fits {
						misfits++
					}
				}
				fmt.Fprintf(out, "ok     %s -> %s (%dx%d, %d misfit)\n", it.req.Input, it.res.Output, it.res.Width, it.res.Height, misfits)
			}
			l.Info("batch finished", slog.Int("images", len(items)), slog.Int("failed", failed))
			if failed > 0 {
				return fmt.Errorf("%d of %d images failed", failed, len(items))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&jobPath, "job", "", "job file: one template job or {\"jobs\": [...]} with images")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "output directory (default: next to each input)")
	cmd.Flags().StringVar(&format, "format", "png", "output format for derived names: png, jpg, bmp, tiff, gif or pdf")
	cmd.Flags().IntVarP(&workers, "workers", "j", runtime.NumCPU(), "number of pictures framed at once")
	cmd.Flags().BoolVar(&useStore, "store", false, "persist the settings used for each image")
	cmd.Flags().IntVar(&maxEdge, "max-edge", 0, "downscale pictures so their longest edge is at most this many pixels")
	ff.register(cmd.Flags())
	return cmd
}

// renderItem frames one item. A panic while framing fails only this item.
func (a *App) renderItem(ctx context.Context, it *batchItem, st compose.Style, store *storage.Store) {
	defer func() {
		if r := recover(); r != nil {
			it.err = fmt.Errorf("%w: %v", errPanic, r)
			a.log.Error("image panicked", slog.String("image", it.req.Input), slog.Any("panic", r), slog.String("stack", string(debug.Stack())))
		}
	}()
	e, release := a.engine()
	defer release()
	it.res, it.err = renderOne(e, st, it.req)
	if it.err == nil && store != nil {
		it.err = storage.SaveSettings(ctx, store.Scope(imageKey(it.req.Input)), it.req.Settings)
	}
}

// runBatch frames every item with at most workers in flight. Each item gets
// its own engine. Item failures are recorded on the item; only
// cancellation stops the batch.
func (a *App) runBatch(ctx context.Context, items []*batchItem, st compose.Style, store *storage.Store, workers int) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, workers))
	for _, it := range items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			a.renderItem(ctx, it, st, store)
			if it.err != nil {
				a.log.Warn("image failed", slog.String("image", it.req.Input), slog.Any("err", it.err))
			}
			return nil
		})
	}
	return g.Wait()
}
