/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the data model shared by the frame engine, the composer,
// the metadata store and the CLI. Everything here is plain data; behaviour
// lives in internal/frame and internal/textlayout.

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MaxFontSize is the largest pixel size the glyph rasterizer accepts.
// Larger requested sizes are saturated to this value.
const MaxFontSize = 255

// RootInputs are the values every derived dimension is computed from.
// Geometry is always recomputed from these in full, never patched.
type RootInputs struct {
	ImageWidth          int     `json:"imageWidth" yaml:"-"`
	ImageHeight         int     `json:"imageHeight" yaml:"-"`
	InnerThickness      int     `json:"innerThickness" yaml:"inner_thickness"`
	BorderWidthPercent  float64 `json:"borderWidthPercent" yaml:"border_width_percent"`
	BorderHeightPercent float64 `json:"borderHeightPercent" yaml:"border_height_percent"`
	PlacementPercent    float64 `json:"placementPercent" yaml:"placement_percent"`
}

// Geometry is the derived frame layout for one image.
//
// Framed sizes include the inner inset on both sides; outer sizes add the
// border percentages. Bar heights are truncated, so
// TitleBarHeight+BottomBarHeight+FramedImageHeight may fall short of
// OuterFrameHeight by up to two pixels.
type Geometry struct {
	ImageWidth          int     `json:"imageWidth"`
	ImageHeight         int     `json:"imageHeight"`
	InnerFrameThickness int     `json:"innerFrameThickness"`
	FramedImageWidth    int     `json:"framedImageWidth"`
	FramedImageHeight   int     `json:"framedImageHeight"`
	OuterFrameWidth     float64 `json:"outerFrameWidth"`
	OuterFrameHeight    float64 `json:"outerFrameHeight"`
	PlacementFactor     float64 `json:"placementFactor"`
	TitleBarHeight      int     `json:"titleBarHeight"`
	BottomBarHeight     int     `json:"bottomBarHeight"`
}

// CanvasWidth is the pixel width of the composed output image.
func (g Geometry) CanvasWidth() int { return int(g.OuterFrameWidth) }

// CanvasHeight is the pixel height of the composed output image.
func (g Geometry) CanvasHeight() int { return int(g.OuterFrameHeight) }

// IsZero reports whether no geometry has been computed yet.
func (g Geometry) IsZero() bool { return g.FramedImageWidth == 0 && g.FramedImageHeight == 0 }

// FontSpec is a face choice with its bar-relative size factor and the size
// derived from the current geometry.
type FontSpec struct {
	Face       string  `json:"face"`
	SizeFactor float64 `json:"sizeFactor"`
	Size       float64 `json:"size"`
}

// PixelSize is the integer size handed to the rasterizer.
func (f FontSpec) PixelSize() int { return ClampFontSize(f.Size) }

// ClampFontSize rounds a real font size and saturates it to [0, MaxFontSize].
// NaN maps to 0.
func ClampFontSize(size float64) int {
	if math.IsNaN(size) || size <= 0 {
		return 0
	}
	if size >= MaxFontSize {
		return MaxFontSize
	}
	return int(math.Round(size))
}

// InkBounds is the tight extent of rendered ink, anchored at the raster origin.
type InkBounds struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Empty reports whether no ink was found.
func (b InkBounds) Empty() bool { return b.Width == 0 && b.Height == 0 }

// Block is one of the three horizontal caption zones.
type Block int

const (
	BlockLeft Block = iota
	BlockCenter
	BlockRight
)

// Blocks lists the caption blocks in left-to-right order.
var Blocks = [...]Block{BlockLeft, BlockCenter, BlockRight}

// LinesPerBlock is the fixed number of caption lines in every block.
const LinesPerBlock = 3

func (b Block) String() string {
	switch b {
	case BlockLeft:
		return "left"
	case BlockCenter:
		return "center"
	case BlockRight:
		return "right"
	default:
		return fmt.Sprintf("block(%d)", int(b))
	}
}

// Valid reports whether b is one of the three known blocks.
func (b Block) Valid() bool { return b >= BlockLeft && b <= BlockRight }

// ParseBlock accepts "left", "center"/"centre" and "right" in any case.
func ParseBlock(s string) (Block, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left":
		return BlockLeft, nil
	case "center", "centre":
		return BlockCenter, nil
	case "right":
		return BlockRight, nil
	}
	return 0, fmt.Errorf("unknown caption block %q", s)
}

// Region selects which width budget a fit check uses.
type Region int

const (
	RegionTitle Region = iota
	RegionCaption
)

func (r Region) String() string {
	if r == RegionTitle {
		return "title"
	}
	return "caption"
}

// Captions holds the title and the 3x3 caption grid.
// Lines are indexed [block][line-1].
type Captions struct {
	Title   string                   `json:"title"`
	Lines   [3][LinesPerBlock]string `json:"lines"`
	Enabled [3]bool                  `json:"enabled"`
}

// ActiveColumns is the number of enabled blocks. It is always derived from
// the flags and cannot be set on its own.
func (c Captions) ActiveColumns() int {
	n := 0
	for _, on := range c.Enabled {
		if on {
			n++
		}
	}
	return n
}

// Line returns the caption at block b, line l (1-based).
func (c Captions) Line(b Block, l int) string {
	if !b.Valid() || l < 1 || l > LinesPerBlock {
		return ""
	}
	return c.Lines[b][l-1]
}

// SetLine stores a caption at block b, line l (1-based).
func (c *Captions) SetLine(b Block, l int, text string) error {
	if !b.Valid() {
		return fmt.Errorf("invalid block %v", b)
	}
	if l < 1 || l > LinesPerBlock {
		return fmt.Errorf("line %d out of range 1..%d", l, LinesPerBlock)
	}
	c.Lines[b][l-1] = text
	return nil
}

// LayoutConstants are the fixed ratios used when placing text.
type LayoutConstants struct {
	// VerticalBias is the fraction of the bottom bar left empty above line 1.
	VerticalBias float64 `json:"verticalBias" yaml:"vertical_bias"`
	// LineSpacing scales the caption line pitch relative to a third of the bottom bar.
	LineSpacing float64 `json:"lineSpacing" yaml:"line_spacing"`
	// GutterRatio is the share of the framed width reserved between columns.
	GutterRatio float64 `json:"gutterRatio" yaml:"gutter_ratio"`
	// MeasurePad is the extra scratch width so overlong strings are measured in full.
	MeasurePad int `json:"measurePad" yaml:"measure_pad"`
}

// DefaultLayout returns the stock layout constants.
func DefaultLayout() LayoutConstants {
	return LayoutConstants{VerticalBias: 0.1, LineSpacing: 0.85, GutterRatio: 0.02, MeasurePad: 100}
}

// Settings is everything an orchestrator persists per image: the root inputs
// minus the image size, the font choices and the captions.
type Settings struct {
	InnerThickness      int      `json:"innerThickness"`
	BorderWidthPercent  float64  `json:"borderWidthPercent"`
	BorderHeightPercent float64  `json:"borderHeightPercent"`
	PlacementPercent    float64  `json:"placementPercent"`
	TitleFont           FontSpec `json:"titleFont"`
	CaptionFont         FontSpec `json:"captionFont"`
	Captions            Captions `json:"captions"`
}

// Inputs binds the settings to a concrete image size.
func (s Settings) Inputs(width, height int) RootInputs {
	return RootInputs{
		ImageWidth:          width,
		ImageHeight:         height,
		InnerThickness:      s.InnerThickness,
		BorderWidthPercent:  s.BorderWidthPercent,
		BorderHeightPercent: s.BorderHeightPercent,
		PlacementPercent:    s.PlacementPercent,
	}
}

// Color is an 8-bit RGBA color.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// ParseHexColor parses "#rrggbb" or "#rrggbbaa".
func ParseHexColor(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 && len(hex) != 8 {
		return Color{}, fmt.Errorf("invalid color %q: expected #rrggbb or #rrggbbaa", s)
	}
	var v [4]uint8
	v[3] = 255
	for i := 0; i < len(hex)/2; i++ {
		n, err := strconv.ParseUint(hex[2*i:2*i+2], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
		}
		v[i] = uint8(n)
	}
	return Color{R: v[0], G: v[1], B: v[2], A: v[3]}, nil
}

// Hex formats the color as "#rrggbb", or "#rrggbbaa" when not opaque.
func (c Color) Hex() string {
	if c.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}
