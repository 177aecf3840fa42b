/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log/slog"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"gocaptionframe/internal/domain"
	applog "gocaptionframe/internal/log"
)

// Rasterizer draws a single line of text. The top-left of the line box
// (ascent line, pen start) is placed at at. Unknown faces are substituted
// silently; rendering never fails.
type Rasterizer interface {
	Render(dst draw.Image, text, face string, size int, c color.Color, at image.Point)
}

// FaceRasterizer renders with OpenType faces from a FontLibrary and keeps the
// built faces in an expiring cache keyed by face and pixel size.
// It is not safe for concurrent use; give each worker its own rasterizer.
type FaceRasterizer struct {
	lib   *FontLibrary
	faces *cache.Cache
	log   *slog.Logger
}

// NewFaceRasterizer returns a rasterizer backed by lib (a fresh library with
// the Go fonts when nil).
func NewFaceRasterizer(lib *FontLibrary) *FaceRasterizer {
	if lib == nil {
		lib = NewFontLibrary()
	}
	faces := cache.New(10*time.Minute, 20*time.Minute)
	faces.OnEvicted(func(_ string, v interface{}) {
		if f, ok := v.(font.Face); ok {
			_ = f.Close()
		}
	})
	return &FaceRasterizer{lib: lib, faces: faces, log: applog.WithComponent("textlayout")}
}

// Library exposes the font library backing this rasterizer.
func (r *FaceRasterizer) Library() *FontLibrary { return r.lib }

// Face returns the face for name at a pixel size (72 dpi, so points equal pixels).
func (r *FaceRasterizer) Face(name string, size int) font.Face {
	if size > domain.MaxFontSize {
		size = domain.MaxFontSize
	}
	key := fmt.Sprintf("%s@%d", strings.ToLower(strings.TrimSpace(name)), size)
	if v, ok := r.faces.Get(key); ok {
		return v.(font.Face)
	}
	var face font.Face = basicfont.Face7x13
	f, ok := r.lib.resolve(name)
	if !ok {
		r.log.Debug("face unavailable, substituting", slog.String("face", name), slog.String("fallback", DefaultFace))
	}
	if f != nil && size > 0 {
		of, err := opentype.NewFace(f, &opentype.FaceOptions{Size: float64(size), DPI: 72, Hinting: font.HintingFull})
		if err != nil {
			r.log.Warn("build face failed, using fixed face", slog.String("face", name), slog.Int("size", size), slog.Any("err", err))
		} else {
			face = of
		}
	}
	r.faces.Set(key, face, cache.DefaultExpiration)
	return face
}

// Render implements Rasterizer.
func (r *FaceRasterizer) Render(dst draw.Image, text, face string, size int, c color.Color, at image.Point) {
	if text == "" || size <= 0 {
		return
	}
	f := r.Face(face, size)
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: f,
		Dot:  fixed.P(at.X, at.Y+f.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)
}

// Advance returns the metric advance width of text in pixels. It is only a
// hint; fit decisions use measured ink instead.
func (r *FaceRasterizer) Advance(text, face string, size int) int {
	if text == "" || size <= 0 {
		return 0
	}
	return font.MeasureString(r.Face(face, size), text).Ceil()
}

// Close drops all cached faces.
func (r *FaceRasterizer) Close() {
	r.faces.Flush()
}
