/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package frame

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"gocaptionframe/internal/domain"
	applog "gocaptionframe/internal/log"
	"gocaptionframe/internal/textlayout"
)

// ErrNoGeometry is returned by operations that need geometry before
// RecomputeAll has succeeded once.
var ErrNoGeometry = errors.New("frame geometry not computed")

// Options configures an Engine. Zero values fall back to the stock presets,
// the default layout constants and a FaceRasterizer over the Go fonts.
type Options struct {
	TitleFont   domain.FontSpec
	CaptionFont domain.FontSpec
	Layout      domain.LayoutConstants
	Rasterizer  textlayout.Rasterizer
	Logger      *slog.Logger
}

// Engine holds the state of one framing session: root inputs, derived
// geometry and fonts, captions and the scratch raster for ink measurement.
//
// An Engine is single-threaded. Geometry and fonts are replaced wholesale by
// RecomputeAll; a failed recompute leaves the previous state untouched.
type Engine struct {
	layout      domain.LayoutConstants
	titleBase   domain.FontSpec
	captionBase domain.FontSpec

	inputs   domain.RootInputs
	geom     domain.Geometry
	title    domain.FontSpec
	caption  domain.FontSpec
	captions domain.Captions

	raster     textlayout.Rasterizer
	ownsRaster bool
	meter      *textlayout.InkMeasurer
	log        *slog.Logger
}

// NewEngine returns an engine without geometry; call RecomputeAll before
// measuring or planning.
func NewEngine(opts Options) *Engine {
	e := &Engine{
		layout:      opts.Layout,
		titleBase:   withPreset(opts.TitleFont, "Title"),
		captionBase: withPreset(opts.CaptionFont, "Caption"),
		raster:      opts.Rasterizer,
		log:         opts.Logger,
	}
	if e.layout == (domain.LayoutConstants{}) {
		e.layout = domain.DefaultLayout()
	}
	if e.raster == nil {
		e.raster = textlayout.NewFaceRasterizer(nil)
		e.ownsRaster = true
	}
	if e.log == nil {
		e.log = applog.WithComponent("frame")
	}
	e.meter = textlayout.NewInkMeasurer(e.raster)
	e.title, e.caption = e.titleBase, e.captionBase
	return e
}

func withPreset(f domain.FontSpec, preset string) domain.FontSpec {
	p, _ := textlayout.GetPreset(preset)
	if f.Face == "" {
		f.Face = p.Font.Face
	}
	if f.SizeFactor <= 0 {
		f.SizeFactor = p.Font.SizeFactor
	}
	return f
}

// RecomputeAll derives geometry and fonts from in and makes them current.
// Selecting a different image size discards the scratch raster.
func (e *Engine) RecomputeAll(in domain.RootInputs) (domain.Geometry, domain.FontSpec, domain.FontSpec, error) {
	l := applog.WithOperation(e.log, "recompute")
	g, err := ComputeGeometry(in)
	if err != nil {
		l.Warn("rejected root inputs", slog.Any("err", err))
		return domain.Geometry{}, domain.FontSpec{}, domain.FontSpec{}, err
	}
	title, caption := ComputeFonts(g, e.titleBase, e.captionBase)
	if in.ImageWidth != e.inputs.ImageWidth || in.ImageHeight != e.inputs.ImageHeight {
		e.meter.Release()
	}
	e.inputs, e.geom, e.title, e.caption = in, g, title, caption
	l.Debug("geometry ready",
		slog.Int("framed_w", g.FramedImageWidth), slog.Int("framed_h", g.FramedImageHeight),
		slog.Float64("outer_w", g.OuterFrameWidth), slog.Float64("outer_h", g.OuterFrameHeight),
		slog.Int("title_bar", g.TitleBarHeight), slog.Int("bottom_bar", g.BottomBarHeight),
		slog.Float64("title_size", title.Size), slog.Float64("caption_size", caption.Size))
	return g, title, caption, nil
}

// Apply installs fonts and captions from s and recomputes for an image of
// the given size. Empty faces and non-positive size factors keep the
// current choice.
func (e *Engine) Apply(s domain.Settings, width, height int) error {
	prevTitle, prevCaption, prevCaptions := e.titleBase, e.captionBase, e.captions
	e.titleBase = mergeFont(e.titleBase, s.TitleFont)
	e.captionBase = mergeFont(e.captionBase, s.CaptionFont)
	e.captions = s.Captions
	if _, _, _, err := e.RecomputeAll(s.Inputs(width, height)); err != nil {
		e.titleBase, e.captionBase, e.captions = prevTitle, prevCaption, prevCaptions
		return err
	}
	return nil
}

func mergeFont(cur, next domain.FontSpec) domain.FontSpec {
	if next.Face != "" {
		cur.Face = next.Face
	}
	if next.SizeFactor > 0 {
		cur.SizeFactor = next.SizeFactor
	}
	return cur
}

// SetFonts replaces the face choices and re-derives sizes from the current geometry.
func (e *Engine) SetFonts(title, caption domain.FontSpec) {
	e.titleBase = mergeFont(e.titleBase, title)
	e.captionBase = mergeFont(e.captionBase, caption)
	if e.geom.IsZero() {
		e.title, e.caption = e.titleBase, e.captionBase
		return
	}
	e.title, e.caption = ComputeFonts(e.geom, e.titleBase, e.captionBase)
}

// SetCaptions replaces the captions. Fit results computed before are stale.
func (e *Engine) SetCaptions(c domain.Captions) { e.captions = c }

func (e *Engine) Captions() domain.Captions         { return e.captions }
func (e *Engine) Inputs() domain.RootInputs         { return e.inputs }
func (e *Engine) Geometry() domain.Geometry         { return e.geom }
func (e *Engine) Layout() domain.LayoutConstants    { return e.layout }
func (e *Engine) Rasterizer() textlayout.Rasterizer { return e.raster }

// Fonts returns the current title and caption font specs.
func (e *Engine) Fonts() (title, caption domain.FontSpec) { return e.title, e.caption }

// ScratchCapacity reports the current scratch raster size.
func (e *Engine) ScratchCapacity() image.Point { return e.meter.Capacity() }

// MeasureInk measures text at face and size. The scratch raster is grown to
// the framed width plus the measuring pad, and to the taller of the title
// bar and one caption line, before rendering.
func (e *Engine) MeasureInk(text, face string, size int) (domain.InkBounds, error) {
	if e.geom.IsZero() {
		return domain.InkBounds{}, ErrNoGeometry
	}
	size = min(size, domain.MaxFontSize)
	w := e.geom.FramedImageWidth + e.layout.MeasurePad
	h := max(e.geom.TitleBarHeight, e.geom.BottomBarHeight/domain.LinesPerBlock, 2*size)
	e.meter.Ensure(w, h)
	return e.meter.Measure(text, face, size), nil
}

// TitleFits reports whether text set in the title font is narrower than the framed image.
func (e *Engine) TitleFits(text string) (bool, error) {
	ink, err := e.MeasureInk(text, e.title.Face, e.title.PixelSize())
	if err != nil {
		return false, err
	}
	return Fits(ink, TitleBudget(e.geom)), nil
}

// TextFits reports whether a caption fits one column at the current number
// of enabled blocks.
func (e *Engine) TextFits(text string) (bool, error) {
	ink, err := e.MeasureInk(text, e.caption.Face, e.caption.PixelSize())
	if err != nil {
		return false, err
	}
	return Fits(ink, e.captionBudget()), nil
}

// CheckFits dispatches to TitleFits or TextFits.
func (e *Engine) CheckFits(text string, region domain.Region) (bool, error) {
	if region == domain.RegionTitle {
		return e.TitleFits(text)
	}
	return e.TextFits(text)
}

func (e *Engine) captionBudget() float64 {
	return CaptionBudget(e.geom, e.captions.ActiveColumns(), e.layout.GutterRatio)
}

// Placement is a measured, positioned string ready for painting.
type Placement struct {
	Region domain.Region
	Block  domain.Block // captions only
	Line   int          // captions only, 1-based
	Text   string
	Font   domain.FontSpec
	Ink    domain.InkBounds
	Budget float64
	Fits   bool
	At     image.Point
}

func (p Placement) String() string {
	if p.Region == domain.RegionTitle {
		return fmt.Sprintf("title %q", p.Text)
	}
	return fmt.Sprintf("%s/%d %q", p.Block, p.Line, p.Text)
}

// PlanTitle measures and positions the title.
func (e *Engine) PlanTitle(text string) (Placement, error) {
	ink, err := e.MeasureInk(text, e.title.Face, e.title.PixelSize())
	if err != nil {
		return Placement{}, err
	}
	budget := TitleBudget(e.geom)
	return Placement{
		Region: domain.RegionTitle,
		Text:   text,
		Font:   e.title,
		Ink:    ink,
		Budget: budget,
		Fits:   Fits(ink, budget),
		At:     PlanTitlePosition(ink, e.geom),
	}, nil
}

// PlanCaption measures and positions a caption in block b, line l.
func (e *Engine) PlanCaption(text string, b domain.Block, l int) (Placement, error) {
	if !b.Valid() || l < 1 || l > domain.LinesPerBlock {
		return Placement{}, fmt.Errorf("%w: %v line %d", ErrInvalidSlot, b, l)
	}
	ink, err := e.MeasureInk(text, e.caption.Face, e.caption.PixelSize())
	if err != nil {
		return Placement{}, err
	}
	at, err := PlanCaptionPosition(ink, b, l, e.geom, e.caption, e.layout)
	if err != nil {
		return Placement{}, err
	}
	budget := e.captionBudget()
	return Placement{
		Region: domain.RegionCaption,
		Block:  b,
		Line:   l,
		Text:   text,
		Font:   e.caption,
		Ink:    ink,
		Budget: budget,
		Fits:   Fits(ink, budget),
		At:     at,
	}, nil
}

// Plan measures and positions the title and every non-empty line of the
// enabled blocks, in that order. Results reflect the captions at call time.
func (e *Engine) Plan() ([]Placement, error) {
	if e.geom.IsZero() {
		return nil, ErrNoGeometry
	}
	var out []Placement
	if e.captions.Title != "" {
		p, err := e.PlanTitle(e.captions.Title)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	for _, b := range domain.Blocks {
		if !e.captions.Enabled[b] {
			continue
		}
		for l := 1; l <= domain.LinesPerBlock; l++ {
			text := e.captions.Line(b, l)
			if text == "" {
				continue
			}
			p, err := e.PlanCaption(text, b, l)
			if err != nil {
				return nil, err
			}
			out = append(out, p)
		}
	}
	misfits := 0
	for _, p := range out {
		if !p.Fits {
			misfits++
		}
	}
	e.log.Debug("plan ready", slog.Int("strings", len(out)), slog.Int("misfits", misfits), slog.Int("columns", e.captions.ActiveColumns()))
	return out, nil
}

// AllFit reports whether every placement fits its budget.
func AllFit(ps []Placement) bool {
	for _, p := range ps {
		if !p.Fits {
			return false
		}
	}
	return true
}

// Close releases the scratch raster and any faces the engine created.
// The engine must not be used afterwards.
func (e *Engine) Close() {
	e.meter.Release()
	if c, ok := e.raster.(interface{ Close() }); ok && e.ownsRaster {
		c.Close()
	}
}
