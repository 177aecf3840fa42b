/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"gocaptionframe/internal/domain"
)

type geometryReport struct {
	Geometry    domain.Geometry `json:"geometry"`
	TitleFont   domain.FontSpec `json:"titleFont"`
	CaptionFont domain.FontSpec `json:"captionFont"`
	TitlePx     int             `json:"titlePx"`
	CaptionPx   int             `json:"captionPx"`
}

func (a *App) geometryCommand() *cobra.Command {
	var (
		width, height int
		asJSON        bool
		ff            frameFlags
	)
	cmd := &cobra.Command{
		Use:   "geometry",
		Short: "Print frame geometry and font sizes for an image size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := ff.apply(cmd.Flags(), a.cfg.Settings())
			if err != nil {
				return err
			}
			e, release := a.engine()
			defer release()
			if err := e.Apply(s, width, height); err != nil {
				return err
			}
			title, caption := e.Fonts()
			rep := geometryReport{Geometry: e.Geometry(), TitleFont: title, CaptionFont: caption, TitlePx: title.PixelSize(), CaptionPx: caption.PixelSize()}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rep)
			}
			printGeometry(cmd.OutOrStdout(), rep)
			return nil
		},
	}
	cmd.Flags().IntVar(&width, "width", 0, "image width in pixels")
	cmd.Flags().IntVar(&height, "height", 0, "image height in pixels")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	_ = cmd.MarkFlagRequired("width")
	_ = cmd.MarkFlagRequired("height")
	ff.register(cmd.Flags())
	return cmd
}

func printGeometry(w io.Writer, r geometryReport) {
	g := r.Geometry
	fmt.Fprintf(w, "image         %dx%d\n", g.ImageWidth, g.ImageHeight)
	fmt.Fprintf(w, "framed        %dx%d\n", g.FramedImageWidth, g.FramedImageHeight)
	fmt.Fprintf(w, "outer         %sx%s\n", formatPx(g.OuterFrameWidth), formatPx(g.OuterFrameHeight))
	fmt.Fprintf(w, "canvas        %dx%d\n", g.CanvasWidth(), g.CanvasHeight())
	fmt.Fprintf(w, "placement     %g\n", g.PlacementFactor)
	fmt.Fprintf(w, "title bar     %d\n", g.TitleBarHeight)
	fmt.Fprintf(w, "bottom bar    %d\n", g.BottomBarHeight)
	fmt.Fprintf(w, "title font    %s %dpx (%g)\n", r.TitleFont.Face, r.TitlePx, r.TitleFont.Size)
	fmt.Fprintf(w, "caption font  %s %dpx (%g)\n", r.CaptionFont.Face, r.CaptionPx, r.CaptionFont.Size)
}

func formatPx(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
