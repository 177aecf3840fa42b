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
	"math"
	"strings"
	"testing"

	"gocaptionframe/internal/domain"
	applog "gocaptionframe/internal/log"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e := NewEngine(Options{Logger: applog.Discard()})
	t.Cleanup(e.Close)
	return e
}

func TestEngineRequiresGeometry(t *testing.T) {
	e := newTestEngine(t)
	if _, err := e.TitleFits("x"); !errors.Is(err, ErrNoGeometry) {
		t.Fatalf("TitleFits err = %v, want ErrNoGeometry", err)
	}
	if _, err := e.Plan(); !errors.Is(err, ErrNoGeometry) {
		t.Fatalf("Plan err = %v, want ErrNoGeometry", err)
	}
}

func TestEngineRecomputeAll(t *testing.T) {
	e := newTestEngine(t)
	g, title, caption, err := e.RecomputeAll(exampleInputs())
	if err != nil {
		t.Fatalf("RecomputeAll: %v", err)
	}
	if g.TitleBarHeight != 102 || title.PixelSize() != 26 || caption.PixelSize() != 12 {
		t.Fatalf("unexpected result: bar=%d title=%d caption=%d", g.TitleBarHeight, title.PixelSize(), caption.PixelSize())
	}
	if e.Geometry() != g || e.Inputs() != exampleInputs() {
		t.Fatalf("engine state not updated")
	}
	gotTitle, gotCaption := e.Fonts()
	if gotTitle != title || gotCaption != caption {
		t.Fatalf("Fonts() = %+v %+v", gotTitle, gotCaption)
	}
}

func TestEngineRecomputeFailureKeepsState(t *testing.T) {
	e := newTestEngine(t)
	if _, _, _, err := e.RecomputeAll(exampleInputs()); err != nil {
		t.Fatalf("RecomputeAll: %v", err)
	}
	before := e.Geometry()
	bad := exampleInputs()
	bad.PlacementPercent = 140
	if _, _, _, err := e.RecomputeAll(bad); !errors.Is(err, ErrInvalidGeometry) {
		t.Fatalf("err = %v, want ErrInvalidGeometry", err)
	}
	if e.Geometry() != before || e.Inputs() != exampleInputs() {
		t.Fatalf("failed recompute changed state")
	}
}

func TestEngineScratchFollowsImage(t *testing.T) {
	e := newTestEngine(t)
	if _, _, _, err := e.RecomputeAll(exampleInputs()); err != nil {
		t.Fatalf("RecomputeAll: %v", err)
	}
	if _, err := e.TitleFits("Harbour at dusk"); err != nil {
		t.Fatalf("TitleFits: %v", err)
	}
	capa := e.ScratchCapacity()
	if capa.X < 1020+domain.DefaultLayout().MeasurePad || capa.Y < 102 {
		t.Fatalf("scratch %v smaller than framed width plus pad", capa)
	}

	same := exampleInputs()
	same.PlacementPercent = 20
	if _, _, _, err := e.RecomputeAll(same); err != nil {
		t.Fatalf("RecomputeAll: %v", err)
	}
	if e.ScratchCapacity() != capa {
		t.Fatalf("scratch dropped although the image did not change")
	}

	other := exampleInputs()
	other.ImageWidth = 640
	if _, _, _, err := e.RecomputeAll(other); err != nil {
		t.Fatalf("RecomputeAll: %v", err)
	}
	if got := e.ScratchCapacity(); got.X != 0 || got.Y != 0 {
		t.Fatalf("scratch not released on image change: %v", got)
	}
}

// growCaption returns the shortest repetition of word whose ink is at least
// threshold pixels wide.
func growCaption(t *testing.T, e *Engine, word string, threshold float64) string {
	t.Helper()
	_, caption := e.Fonts()
	var sb strings.Builder
	for i := 0; i < 200; i++ {
		sb.WriteString(word)
		ink, err := e.MeasureInk(sb.String(), caption.Face, caption.PixelSize())
		if err != nil {
			t.Fatalf("MeasureInk: %v", err)
		}
		if float64(ink.Width) >= threshold {
			return sb.String()
		}
	}
	t.Fatalf("caption never reached %v px", threshold)
	return ""
}

func TestEngineTextFitsDependsOnColumns(t *testing.T) {
	e := newTestEngine(t)
	if _, _, _, err := e.RecomputeAll(exampleInputs()); err != nil {
		t.Fatalf("RecomputeAll: %v", err)
	}
	text := growCaption(t, e, "wide ", 319.6)

	e.SetCaptions(domain.Captions{Enabled: [3]bool{true, true, true}})
	fits, err := e.TextFits(text)
	if err != nil {
		t.Fatalf("TextFits: %v", err)
	}
	if fits {
		t.Fatalf("caption should not fit three columns")
	}

	e.SetCaptions(domain.Captions{Enabled: [3]bool{true, false, false}})
	fits, err = e.TextFits(text)
	if err != nil {
		t.Fatalf("TextFits: %v", err)
	}
	if !fits {
		t.Fatalf("caption should fit a single column")
	}

	e.SetCaptions(domain.Captions{})
	if fits, _ := e.CheckFits("a", domain.RegionCaption); fits {
		t.Fatalf("nothing fits without enabled blocks")
	}
}

func TestEngineTitleFits(t *testing.T) {
	e := newTestEngine(t)
	if _, _, _, err := e.RecomputeAll(exampleInputs()); err != nil {
		t.Fatalf("RecomputeAll: %v", err)
	}
	if fits, err := e.CheckFits("Summer 2025", domain.RegionTitle); err != nil || !fits {
		t.Fatalf("short title: fits=%v err=%v", fits, err)
	}
	long := strings.Repeat("Panorama ", 20)
	if fits, err := e.TitleFits(long); err != nil || fits {
		t.Fatalf("long title: fits=%v err=%v", fits, err)
	}
	if fits, _ := e.TitleFits(""); !fits {
		t.Fatalf("empty title should fit")
	}
}

func TestEnginePlan(t *testing.T) {
	e := newTestEngine(t)
	var c domain.Captions
	c.Title = "Lighthouse"
	c.Enabled = [3]bool{true, false, true}
	_ = c.SetLine(domain.BlockLeft, 1, "Canon R6")
	_ = c.SetLine(domain.BlockLeft, 3, "f/8")
	_ = c.SetLine(domain.BlockCenter, 1, "hidden")
	_ = c.SetLine(domain.BlockRight, 2, "2025-06-01")
	s := domain.Settings{InnerThickness: 10, BorderWidthPercent: 3, BorderHeightPercent: 25, PlacementPercent: 50, Captions: c}
	if err := e.Apply(s, 1000, 800); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	ps, err := e.Plan()
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	want := []string{"title \"Lighthouse\"", "left/1 \"Canon R6\"", "left/3 \"f/8\"", "right/2 \"2025-06-01\""}
	if len(ps) != len(want) {
		t.Fatalf("got %d placements, want %d: %v", len(ps), len(want), ps)
	}
	for i, p := range ps {
		if p.String() != want[i] {
			t.Fatalf("placement %d = %s, want %s", i, p, want[i])
		}
	}
	if !AllFit(ps) {
		t.Fatalf("short strings should all fit: %v", ps)
	}
	g := e.Geometry()
	for _, p := range ps[1:] {
		if p.At.Y < g.CanvasHeight()-g.BottomBarHeight {
			t.Fatalf("%s placed above the bottom bar at %v", p, p.At)
		}
	}
	if ps[0].At.Y < 0 || ps[0].At.Y+ps[0].Ink.Height > g.TitleBarHeight {
		t.Fatalf("title outside the title bar: %v ink %+v", ps[0].At, ps[0].Ink)
	}
}

func TestEngineApplyRollsBack(t *testing.T) {
	e := newTestEngine(t)
	good := domain.Settings{BorderHeightPercent: 25, PlacementPercent: 50, Captions: domain.Captions{Title: "kept"}}
	if err := e.Apply(good, 800, 600); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	bad := good
	bad.Captions.Title = "dropped"
	bad.TitleFont = domain.FontSpec{Face: "Go Mono"}
	bad.InnerThickness = -3
	if err := e.Apply(bad, 800, 600); !errors.Is(err, ErrInvalidGeometry) {
		t.Fatalf("err = %v, want ErrInvalidGeometry", err)
	}
	if e.Captions().Title != "kept" {
		t.Fatalf("captions not rolled back: %q", e.Captions().Title)
	}
	if title, _ := e.Fonts(); title.Face == "Go Mono" {
		t.Fatalf("title font not rolled back")
	}
}

func TestEngineDeterministic(t *testing.T) {
	a, b := newTestEngine(t), newTestEngine(t)
	c := domain.Captions{Title: "Same", Enabled: [3]bool{false, true, false}}
	c.Lines[domain.BlockCenter][0] = "twice"
	s := domain.Settings{InnerThickness: 4, BorderWidthPercent: 5, BorderHeightPercent: 30, PlacementPercent: 35, Captions: c}
	if err := a.Apply(s, 1200, 900); err != nil {
		t.Fatalf("Apply a: %v", err)
	}
	if err := b.Apply(s, 1200, 900); err != nil {
		t.Fatalf("Apply b: %v", err)
	}
	pa, _ := a.Plan()
	pb, _ := b.Plan()
	if len(pa) != len(pb) {
		t.Fatalf("plan lengths differ")
	}
	for i := range pa {
		if pa[i] != pb[i] {
			t.Fatalf("placement %d differs: %+v vs %+v", i, pa[i], pb[i])
		}
	}
}

func TestEngineSetFontsResizes(t *testing.T) {
	e := newTestEngine(t)
	if _, _, _, err := e.RecomputeAll(exampleInputs()); err != nil {
		t.Fatalf("RecomputeAll: %v", err)
	}
	e.SetFonts(domain.FontSpec{SizeFactor: 0.2}, domain.FontSpec{Face: "Go Mono"})
	title, caption := e.Fonts()
	if math.Abs(title.Size-20.4) > 1e-9 || caption.Face != "Go Mono" || caption.PixelSize() != 12 {
		t.Fatalf("SetFonts: %+v %+v", title, caption)
	}
}
