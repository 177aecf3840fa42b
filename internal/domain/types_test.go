/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"math"
	"testing"
)

func TestActiveColumnsFollowsFlags(t *testing.T) {
	cases := []struct {
		flags [3]bool
		want  int
	}{
		{[3]bool{false, false, false}, 0},
		{[3]bool{true, false, false}, 1},
		{[3]bool{true, false, true}, 2},
		{[3]bool{true, true, true}, 3},
	}
	for _, tc := range cases {
		c := Captions{Enabled: tc.flags}
		if got := c.ActiveColumns(); got != tc.want {
			t.Fatalf("ActiveColumns(%v) = %d, want %d", tc.flags, got, tc.want)
		}
	}
}

func TestClampFontSize(t *testing.T) {
	cases := []struct {
		in   float64
		want int
	}{
		{-3, 0},
		{0, 0},
		{math.NaN(), 0},
		{12.4, 12},
		{12.5, 13},
		{254.6, 255},
		{900, MaxFontSize},
		{math.Inf(1), MaxFontSize},
	}
	for _, tc := range cases {
		if got := ClampFontSize(tc.in); got != tc.want {
			t.Fatalf("ClampFontSize(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestCaptionsLineAccess(t *testing.T) {
	var c Captions
	if err := c.SetLine(BlockRight, 3, "bottom right"); err != nil {
		t.Fatalf("SetLine: %v", err)
	}
	if got := c.Line(BlockRight, 3); got != "bottom right" {
		t.Fatalf("Line = %q", got)
	}
	if err := c.SetLine(BlockLeft, 4, "x"); err == nil {
		t.Fatalf("expected error for line 4")
	}
	if err := c.SetLine(Block(7), 1, "x"); err == nil {
		t.Fatalf("expected error for invalid block")
	}
	if got := c.Line(Block(7), 1); got != "" {
		t.Fatalf("Line on invalid block = %q, want empty", got)
	}
}

func TestParseBlock(t *testing.T) {
	for in, want := range map[string]Block{"LEFT": BlockLeft, " centre": BlockCenter, "right": BlockRight} {
		got, err := ParseBlock(in)
		if err != nil || got != want {
			t.Fatalf("ParseBlock(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseBlock("middle"); err == nil {
		t.Fatalf("expected error for unknown block")
	}
}

func TestParseHexColor(t *testing.T) {
	c, err := ParseHexColor("#ff8000")
	if err != nil {
		t.Fatalf("ParseHexColor: %v", err)
	}
	if c != (Color{R: 255, G: 128, B: 0, A: 255}) {
		t.Fatalf("unexpected color %+v", c)
	}
	if got := c.Hex(); got != "#ff8000" {
		t.Fatalf("Hex() = %q", got)
	}
	c, err = ParseHexColor("00000080")
	if err != nil || c.A != 0x80 {
		t.Fatalf("alpha parse failed: %+v %v", c, err)
	}
	if _, err := ParseHexColor("#zz0000"); err == nil {
		t.Fatalf("expected error for bad hex")
	}
}

func TestSettingsInputs(t *testing.T) {
	s := Settings{InnerThickness: 10, BorderWidthPercent: 3, BorderHeightPercent: 25, PlacementPercent: 50}
	in := s.Inputs(1000, 800)
	want := RootInputs{ImageWidth: 1000, ImageHeight: 800, InnerThickness: 10, BorderWidthPercent: 3, BorderHeightPercent: 25, PlacementPercent: 50}
	if in != want {
		t.Fatalf("Inputs = %+v, want %+v", in, want)
	}
}
