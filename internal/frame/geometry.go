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
	"math"

	"gocaptionframe/internal/domain"
)

// ErrInvalidGeometry is returned for inputs that cannot produce a frame.
var ErrInvalidGeometry = errors.New("invalid geometry")

// ComputeGeometry derives the full frame geometry from the root inputs.
//
// Bar heights are truncated rather than rounded, so together with the framed
// image they never exceed the outer height.
func ComputeGeometry(in domain.RootInputs) (domain.Geometry, error) {
	if err := validateInputs(in); err != nil {
		return domain.Geometry{}, err
	}
	framedW := in.ImageWidth + 2*in.InnerThickness
	framedH := in.ImageHeight + 2*in.InnerThickness
	outerW := outerSize(framedW, in.BorderWidthPercent)
	outerH := outerSize(framedH, in.BorderHeightPercent)
	if outerW > maxCanvas || outerH > maxCanvas {
		return domain.Geometry{}, fmt.Errorf("%w: outer frame %vx%v exceeds %d pixels", ErrInvalidGeometry, outerW, outerH, maxCanvas)
	}

	v := PlacementFactor(in.PlacementPercent, outerH, float64(framedH))
	spare := outerH/2 - float64(framedH)/2
	title := truncBar(spare - (v-0.5)*float64(framedH))
	bottom := truncBar(spare - (0.5-v)*float64(framedH))

	return domain.Geometry{
		ImageWidth:          in.ImageWidth,
		ImageHeight:         in.ImageHeight,
		InnerFrameThickness: in.InnerThickness,
		FramedImageWidth:    framedW,
		FramedImageHeight:   framedH,
		OuterFrameWidth:     outerW,
		OuterFrameHeight:    outerH,
		PlacementFactor:     v,
		TitleBarHeight:      title,
		BottomBarHeight:     bottom,
	}, nil
}

// maxCanvas bounds every derived pixel size so that canvas dimensions stay
// representable as image rectangles.
const maxCanvas = math.MaxInt32

// outerSize scales a framed size by 1+percent/100. Multiplying before the
// division keeps whole results exact (25 at 16% is 29, not 28.999...).
func outerSize(framed int, percent float64) float64 {
	return float64(framed) * (100 + percent) / 100
}

// truncBar floors a bar height. A value a hair below zero from float error
// is held at zero.
func truncBar(h float64) int {
	n := int(math.Floor(h))
	if n < 0 {
		return 0
	}
	return n
}

func validateInputs(in domain.RootInputs) error {
	switch {
	case in.ImageWidth <= 0 || in.ImageHeight <= 0:
		return fmt.Errorf("%w: image size %dx%d must be positive", ErrInvalidGeometry, in.ImageWidth, in.ImageHeight)
	case in.InnerThickness < 0:
		return fmt.Errorf("%w: inner thickness %d is negative", ErrInvalidGeometry, in.InnerThickness)
	case in.ImageWidth > maxCanvas || in.ImageHeight > maxCanvas || in.InnerThickness > maxCanvas/4 ||
		in.ImageWidth+2*in.InnerThickness > maxCanvas || in.ImageHeight+2*in.InnerThickness > maxCanvas:
		return fmt.Errorf("%w: framed image exceeds %d pixels", ErrInvalidGeometry, maxCanvas)
	case !finiteNonNeg(in.BorderWidthPercent):
		return fmt.Errorf("%w: border width percent %v", ErrInvalidGeometry, in.BorderWidthPercent)
	case !finiteNonNeg(in.BorderHeightPercent):
		return fmt.Errorf("%w: border height percent %v", ErrInvalidGeometry, in.BorderHeightPercent)
	case math.IsNaN(in.PlacementPercent) || in.PlacementPercent < 0 || in.PlacementPercent > 100:
		return fmt.Errorf("%w: vertical placement %v outside [0,100]", ErrInvalidGeometry, in.PlacementPercent)
	}
	return nil
}

func finiteNonNeg(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0) && f >= 0
}

// PlacementFactor converts a vertical placement percentage (0 puts the
// framed image at the bottom of the outer frame, 100 at the top) into the
// split factor v used for the bar heights; 0.5 is centred.
//
// The result depends on both heights, so it must be recomputed whenever
// either changes.
func PlacementFactor(percent, outerH, framedH float64) float64 {
	if outerH <= 0 {
		return 0.5
	}
	maxMove := (outerH - framedH) / outerH
	return 0.5 - maxMove/2 + maxMove*(percent/100)
}
