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

	"gocaptionframe/internal/domain"
)

// ErrInvalidSlot is returned for a caption block or line outside the 3x3 grid.
var ErrInvalidSlot = errors.New("invalid caption slot")

// PlanTitlePosition places the title ink box centred horizontally on the
// canvas and vertically inside the title bar.
func PlanTitlePosition(ink domain.InkBounds, g domain.Geometry) image.Point {
	x := float64(g.CanvasWidth())/2 - float64(ink.Width)/2
	y := float64(g.TitleBarHeight-ink.Height) / 2
	return image.Pt(int(x), int(y))
}

// PlanCaptionPosition places a caption ink box for block b, line l (1-based).
//
// Blocks align left, centre and right against the framed image edges. Line 1
// starts VerticalBias of the bottom bar below the framed image; further lines
// step by a third of the bottom bar scaled by LineSpacing.
func PlanCaptionPosition(ink domain.InkBounds, b domain.Block, l int, g domain.Geometry, caption domain.FontSpec, lc domain.LayoutConstants) (image.Point, error) {
	if !b.Valid() {
		return image.Point{}, fmt.Errorf("%w: block %v", ErrInvalidSlot, b)
	}
	if l < 1 || l > domain.LinesPerBlock {
		return image.Point{}, fmt.Errorf("%w: line %d", ErrInvalidSlot, l)
	}
	framedW := float64(g.FramedImageWidth)
	var offset float64
	switch b {
	case domain.BlockCenter:
		offset = framedW/2 - float64(ink.Width)/2
	case domain.BlockRight:
		offset = framedW - float64(ink.Width)
	}
	x := (float64(g.CanvasWidth())-framedW)/2 + offset

	bottom := float64(g.BottomBarHeight)
	y := float64(g.CanvasHeight()) - bottom + bottom*lc.VerticalBias
	if caption.SizeFactor > 0 {
		y += float64(l-1) * caption.Size * lc.LineSpacing / caption.SizeFactor
	}
	return image.Pt(int(x), int(y)), nil
}
