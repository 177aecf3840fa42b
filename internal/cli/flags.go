/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"gocaptionframe/internal/domain"
	"gocaptionframe/internal/textlayout"
)

// frameFlags override the configured settings for one invocation.
type frameFlags struct {
	thickness     int
	borderWidth   float64
	borderHeight  float64
	placement     float64
	titlePreset   string
	captionPreset string
	titleFont     string
	captionFont   string
	title         string
	lines         []string
}

func (f *frameFlags) register(fs *pflag.FlagSet) {
	fs.IntVar(&f.thickness, "thickness", 0, "inner frame thickness in pixels")
	fs.Float64Var(&f.borderWidth, "border-width", 0, "outer border width in percent of the framed width")
	fs.Float64Var(&f.borderHeight, "border-height", 0, "outer border height in percent of the framed height")
	fs.Float64Var(&f.placement, "placement", 0, "vertical image placement in percent (0 bottom, 50 centre, 100 top)")
	fs.StringVar(&f.titlePreset, "title-preset", "", "title font preset (see `fonts`)")
	fs.StringVar(&f.captionPreset, "caption-preset", "", "caption font preset (see `fonts`)")
	fs.StringVar(&f.titleFont, "title-font", "", "title face")
	fs.StringVar(&f.captionFont, "caption-font", "", "caption face")
	fs.StringVar(&f.title, "title", "", "title text")
	fs.StringArrayVar(&f.lines, "line", nil, "caption line as BLOCK:LINE=TEXT, e.g. left:1=Canon R6 (enables the block)")
}

// apply layers every flag the user actually set on top of s.
func (f *frameFlags) apply(fs *pflag.FlagSet, s domain.Settings) (domain.Settings, error) {
	if fs.Changed("thickness") {
		s.InnerThickness = f.thickness
	}
	if fs.Changed("border-width") {
		s.BorderWidthPercent = f.borderWidth
	}
	if fs.Changed("border-height") {
		s.BorderHeightPercent = f.borderHeight
	}
	if fs.Changed("placement") {
		s.PlacementPercent = f.placement
	}
	if fs.Changed("title-preset") {
		p, ok := textlayout.GetPreset(f.titlePreset)
		if !ok {
			return s, fmt.Errorf("unknown title preset %q", f.titlePreset)
		}
		s.TitleFont.Face, s.TitleFont.SizeFactor = p.Font.Face, p.Font.SizeFactor
	}
	if fs.Changed("caption-preset") {
		p, ok := textlayout.GetPreset(f.captionPreset)
		if !ok {
			return s, fmt.Errorf("unknown caption preset %q", f.captionPreset)
		}
		s.CaptionFont.Face, s.CaptionFont.SizeFactor = p.Font.Face, p.Font.SizeFactor
	}
	if fs.Changed("title-font") {
		s.TitleFont.Face = f.titleFont
	}
	if fs.Changed("caption-font") {
		s.CaptionFont.Face = f.captionFont
	}
	if fs.Changed("title") {
		s.Captions.Title = f.title
	}
	for _, raw := range f.lines {
		b, l, text, err := parseLineFlag(raw)
		if err != nil {
			return s, err
		}
		if err := s.Captions.SetLine(b, l, text); err != nil {
			return s, err
		}
		s.Captions.Enabled[b] = true
	}
	return s, nil
}

// parseLineFlag splits "left:2=text" into block, line and text.
func parseLineFlag(raw string) (domain.Block, int, string, error) {
	slot, text, ok := strings.Cut(raw, "=")
	if !ok {
		return 0, 0, "", fmt.Errorf("caption %q: want BLOCK:LINE=TEXT", raw)
	}
	name, num, ok := strings.Cut(slot, ":")
	if !ok {
		return 0, 0, "", fmt.Errorf("caption %q: want BLOCK:LINE=TEXT", raw)
	}
	b, err := domain.ParseBlock(name)
	if err != nil {
		return 0, 0, "", fmt.Errorf("caption %q: %w", raw, err)
	}
	l, err := strconv.Atoi(strings.TrimSpace(num))
	if err != nil || l < 1 || l > domain.LinesPerBlock {
		return 0, 0, "", fmt.Errorf("caption %q: line must be 1..%d", raw, domain.LinesPerBlock)
	}
	return b, l, text, nil
}
