/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"image"
	"image/color"
	"log/slog"
	"unicode/utf8"

	"gocaptionframe/internal/domain"
	applog "gocaptionframe/internal/log"
)

// InkMeasurer finds the tight ink extent of a rendered string by drawing it
// into a scratch raster and scanning for non-blank pixels.
//
// The scratch raster is reused across calls and cleared after each
// measurement. It only grows; Release discards it, which callers must do
// when the target image changes so no stale capacity assumptions survive.
type InkMeasurer struct {
	r       Rasterizer
	scratch *image.Gray
	log     *slog.Logger
}

// NewInkMeasurer returns a measurer rendering through r.
func NewInkMeasurer(r Rasterizer) *InkMeasurer {
	return &InkMeasurer{r: r, log: applog.WithComponent("textlayout")}
}

// Capacity returns the current scratch raster size (zero when released).
func (m *InkMeasurer) Capacity() image.Point {
	if m.scratch == nil {
		return image.Point{}
	}
	return m.scratch.Rect.Size()
}

// Ensure grows the scratch raster so it is at least w x h. It reports whether
// a new raster was allocated.
func (m *InkMeasurer) Ensure(w, h int) bool {
	cur := m.Capacity()
	if w <= cur.X && h <= cur.Y {
		return false
	}
	nw, nh := max(w, cur.X, 1), max(h, cur.Y, 1)
	m.scratch = image.NewGray(image.Rect(0, 0, nw, nh))
	m.log.Debug("scratch raster resized", slog.Int("w", nw), slog.Int("h", nh))
	return true
}

// Measure renders text at the raster origin in white on black and returns
// the extent of the lit pixels: Width is one past the right-most ink column
// and Height one past the lowest ink row. An empty string yields zero bounds.
//
// Ink beyond the raster edge is not seen, so the caller must Ensure enough
// room first. Without a prior Ensure a raster sized generously from the
// string length is allocated.
func (m *InkMeasurer) Measure(text, face string, size int) domain.InkBounds {
	if text == "" || size <= 0 {
		return domain.InkBounds{}
	}
	if m.scratch == nil {
		n := utf8.RuneCountInString(text) + 1
		m.Ensure(n*size+domain.DefaultLayout().MeasurePad, 2*size)
	}
	m.r.Render(m.scratch, text, face, size, color.White, image.Point{})
	b := scanInk(m.scratch)
	clear(m.scratch.Pix)
	return b
}

// Release discards the scratch raster.
func (m *InkMeasurer) Release() {
	m.scratch = nil
}

// scanInk walks each row from the right and stops at the first lit pixel,
// which is both the row's right-most ink and proof the row has ink.
func scanInk(g *image.Gray) domain.InkBounds {
	w, h := g.Rect.Dx(), g.Rect.Dy()
	maxX, maxY := -1, -1
	for y := 0; y < h; y++ {
		row := g.Pix[y*g.Stride : y*g.Stride+w]
		for x := w - 1; x >= 0; x-- {
			if row[x] != 0 {
				if x > maxX {
					maxX = x
				}
				maxY = y
				break
			}
		}
	}
	if maxX < 0 {
		return domain.InkBounds{}
	}
	return domain.InkBounds{Width: maxX + 1, Height: maxY + 1}
}
