/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package compose paints the framed picture: inner inset, border line,
// outer frame with title and bottom bars, and the planned text.
package compose

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"

	"golang.org/x/image/draw"

	"gocaptionframe/internal/domain"
	"gocaptionframe/internal/frame"
	applog "gocaptionframe/internal/log"
	"gocaptionframe/internal/textlayout"
)

// ErrSizeMismatch is returned when the source image does not match the
// size the engine geometry was computed for.
var ErrSizeMismatch = errors.New("image size does not match geometry")

// Style holds the colors of the composed frame.
type Style struct {
	Frame     domain.Color
	Inset     domain.Color
	Line      domain.Color
	LineWidth int
	Title     domain.Color
	Caption   domain.Color
}

// DefaultStyle is a black frame with a white hairline and white text.
func DefaultStyle() Style {
	black := domain.Color{A: 255}
	white := domain.Color{R: 255, G: 255, B: 255, A: 255}
	return Style{Frame: black, Inset: black, Line: white, LineWidth: 2, Title: white, Caption: white}
}

// ParseStyle builds a Style from hex colors as found in the config file.
func ParseStyle(frameHex, insetHex, lineHex, titleHex, captionHex string, lineWidth int) (Style, error) {
	var st Style
	var errs []error
	parse := func(dst *domain.Color, name, s string) {
		c, err := domain.ParseHexColor(s)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s color: %w", name, err))
			return
		}
		*dst = c
	}
	parse(&st.Frame, "frame", frameHex)
	parse(&st.Inset, "inset", insetHex)
	parse(&st.Line, "line", lineHex)
	parse(&st.Title, "title", titleHex)
	parse(&st.Caption, "caption", captionHex)
	if lineWidth < 0 {
		errs = append(errs, fmt.Errorf("line width %d is negative", lineWidth))
	}
	st.LineWidth = lineWidth
	return st, errors.Join(errs...)
}

func toRGBA(c domain.Color) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// Pad returns a w x h canvas filled with fill and src drawn with its
// top-left corner at at. Parts of src outside the canvas are cropped.
func Pad(src image.Image, w, h int, at image.Point, fill domain.Color) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(toRGBA(fill)), image.Point{}, draw.Src)
	sb := src.Bounds()
	draw.Draw(dst, image.Rectangle{Min: at, Max: at.Add(sb.Size())}, src, sb.Min, draw.Over)
	return dst
}

// CropOrPad resizes the canvas around src to w x h without scaling.
// centerX and centerY in [0,1] pick where src sits along each axis: 0 aligns
// it to the top/left edge, 0.5 centres it and 1 aligns it to the
// bottom/right edge. Shrinking crops along the same rule.
func CropOrPad(src image.Image, centerX, centerY float64, w, h int, fill domain.Color) *image.RGBA {
	sb := src.Bounds()
	at := image.Pt(
		int(math.Round(float64(w-sb.Dx())*clamp01(centerX))),
		int(math.Round(float64(h-sb.Dy())*clamp01(centerY))),
	)
	return Pad(src, w, h, at, fill)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0.5
	}
	return math.Min(1, math.Max(0, v))
}

// StrokeRect draws a band of the given width just inside r.
func StrokeRect(img *image.RGBA, r image.Rectangle, width int, c domain.Color) {
	if width <= 0 || r.Empty() {
		return
	}
	width = min(width, (r.Dx()+1)/2, (r.Dy()+1)/2)
	u := image.NewUniform(toRGBA(c))
	bands := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+width),
		image.Rect(r.Min.X, r.Max.Y-width, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+width, r.Max.Y),
		image.Rect(r.Max.X-width, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, b := range bands {
		draw.Draw(img, b, u, image.Point{}, draw.Src)
	}
}

// PaintText renders a placement onto dst in color c.
func PaintText(dst draw.Image, r textlayout.Rasterizer, p frame.Placement, c domain.Color) {
	r.Render(dst, p.Text, p.Font.Face, p.Font.PixelSize(), toRGBA(c), p.At)
}

// Thumbnail scales src down so its longest edge is at most maxEdge. Images
// already small enough, and maxEdge <= 0, are returned unchanged.
func Thumbnail(src image.Image, maxEdge int) image.Image {
	sb := src.Bounds()
	longest := max(sb.Dx(), sb.Dy())
	if maxEdge <= 0 || longest <= maxEdge {
		return src
	}
	scale := float64(maxEdge) / float64(longest)
	w := max(1, int(math.Round(float64(sb.Dx())*scale)))
	h := max(1, int(math.Round(float64(sb.Dy())*scale)))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, sb, draw.Src, nil)
	return dst
}

// Frame composes src with the engine's current geometry, captions and
// fonts. Strings that do not fit are still painted; the returned
// placements carry the fit result of every string.
func Frame(src image.Image, e *frame.Engine, st Style) (*image.RGBA, []frame.Placement, error) {
	l := applog.WithOperation(applog.WithComponent("compose"), "frame")
	g := e.Geometry()
	if g.IsZero() {
		return nil, nil, frame.ErrNoGeometry
	}
	sb := src.Bounds()
	if sb.Dx() != g.ImageWidth || sb.Dy() != g.ImageHeight {
		return nil, nil, fmt.Errorf("%w: image %dx%d, geometry %dx%d", ErrSizeMismatch, sb.Dx(), sb.Dy(), g.ImageWidth, g.ImageHeight)
	}
	if g.CanvasWidth() < g.FramedImageWidth || g.CanvasHeight() < g.FramedImageHeight {
		return nil, nil, fmt.Errorf("%w: canvas %dx%d", frame.ErrInvalidGeometry, g.CanvasWidth(), g.CanvasHeight())
	}
	t := g.InnerFrameThickness
	framed := Pad(src, g.FramedImageWidth, g.FramedImageHeight, image.Pt(t, t), st.Inset)
	if t > 0 && st.LineWidth > 0 {
		lw := min(st.LineWidth, t)
		line := image.Rect(t-lw, t-lw, t+sb.Dx()+lw, t+sb.Dy()+lw)
		StrokeRect(framed, line, lw, st.Line)
	}
	at := image.Pt((g.CanvasWidth()-g.FramedImageWidth)/2, g.TitleBarHeight)
	canvas := Pad(framed, g.CanvasWidth(), g.CanvasHeight(), at, st.Frame)

	ps, err := e.Plan()
	if err != nil {
		return nil, nil, err
	}
	for _, p := range ps {
		c := st.Caption
		if p.Region == domain.RegionTitle {
			c = st.Title
		}
		PaintText(canvas, e.Rasterizer(), p, c)
		if !p.Fits {
			l.Warn("text exceeds its budget", slog.String("slot", p.String()), slog.Int("ink_w", p.Ink.Width), slog.Float64("budget", p.Budget))
		}
	}
	l.Debug("composed", slog.Int("w", g.CanvasWidth()), slog.Int("h", g.CanvasHeight()), slog.Int("strings", len(ps)))
	return canvas, ps, nil
}
