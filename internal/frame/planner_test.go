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
	"image"
	"testing"

	"gocaptionframe/internal/domain"
)

func exampleGeometry(t *testing.T) (domain.Geometry, domain.FontSpec) {
	t.Helper()
	g, err := ComputeGeometry(exampleInputs())
	if err != nil {
		t.Fatalf("ComputeGeometry: %v", err)
	}
	_, caption := ComputeFonts(g, domain.FontSpec{SizeFactor: 0.25}, domain.FontSpec{SizeFactor: 0.36})
	return g, caption
}

func TestPlanTitlePosition(t *testing.T) {
	g, _ := exampleGeometry(t)
	got := PlanTitlePosition(domain.InkBounds{Width: 200, Height: 30}, g)
	if want := image.Pt(425, 36); got != want {
		t.Fatalf("PlanTitlePosition = %v, want %v", got, want)
	}
}

func TestPlanCaptionPosition(t *testing.T) {
	g, caption := exampleGeometry(t)
	lc := domain.DefaultLayout()
	ink := domain.InkBounds{Width: 100, Height: 12}
	cases := []struct {
		block domain.Block
		line  int
		want  image.Point
	}{
		{domain.BlockLeft, 1, image.Pt(15, 933)},
		{domain.BlockCenter, 1, image.Pt(475, 933)},
		{domain.BlockRight, 1, image.Pt(935, 933)},
		{domain.BlockLeft, 2, image.Pt(15, 962)},
		{domain.BlockRight, 3, image.Pt(935, 991)},
	}
	for _, tc := range cases {
		got, err := PlanCaptionPosition(ink, tc.block, tc.line, g, caption, lc)
		if err != nil {
			t.Fatalf("%v/%d: %v", tc.block, tc.line, err)
		}
		if got != tc.want {
			t.Fatalf("%v/%d = %v, want %v", tc.block, tc.line, got, tc.want)
		}
	}
}

func TestPlanCaptionPositionLinesStayInBottomBar(t *testing.T) {
	g, caption := exampleGeometry(t)
	top := g.CanvasHeight() - g.BottomBarHeight
	for l := 1; l <= domain.LinesPerBlock; l++ {
		p, err := PlanCaptionPosition(domain.InkBounds{Width: 10, Height: caption.PixelSize()}, domain.BlockLeft, l, g, caption, domain.DefaultLayout())
		if err != nil {
			t.Fatalf("line %d: %v", l, err)
		}
		if p.Y < top || p.Y+caption.PixelSize() > g.CanvasHeight() {
			t.Fatalf("line %d at y=%d leaves the bottom bar [%d,%d)", l, p.Y, top, g.CanvasHeight())
		}
	}
}

func TestPlanCaptionPositionRejectsBadSlot(t *testing.T) {
	g, caption := exampleGeometry(t)
	if _, err := PlanCaptionPosition(domain.InkBounds{}, domain.Block(5), 1, g, caption, domain.DefaultLayout()); !errors.Is(err, ErrInvalidSlot) {
		t.Fatalf("bad block: err = %v", err)
	}
	if _, err := PlanCaptionPosition(domain.InkBounds{}, domain.BlockLeft, 0, g, caption, domain.DefaultLayout()); !errors.Is(err, ErrInvalidSlot) {
		t.Fatalf("line 0: err = %v", err)
	}
	if _, err := PlanCaptionPosition(domain.InkBounds{}, domain.BlockLeft, 4, g, caption, domain.DefaultLayout()); !errors.Is(err, ErrInvalidSlot) {
		t.Fatalf("line 4: err = %v", err)
	}
}
