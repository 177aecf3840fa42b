/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"errors"
	"testing"

	"gocaptionframe/internal/domain"
	"gocaptionframe/internal/frame"
)

func sampleSettings() domain.Settings {
	s := domain.Settings{
		InnerThickness:      12,
		BorderWidthPercent:  3.3,
		BorderHeightPercent: 27.1,
		PlacementPercent:    0.1 + 0.2,
		TitleFont:           domain.FontSpec{Face: "Go Bold", SizeFactor: 0.25},
		CaptionFont:         domain.FontSpec{Face: "Go Mono", SizeFactor: 0.31},
	}
	s.Captions.Title = "Evening, Lake Constance"
	s.Captions.Enabled = [3]bool{true, false, true}
	_ = s.Captions.SetLine(domain.BlockLeft, 1, "Canon R6")
	_ = s.Captions.SetLine(domain.BlockCenter, 2, "kept while disabled")
	_ = s.Captions.SetLine(domain.BlockRight, 3, "ISO 100")
	return s
}

func TestSettingsRoundTripSQLite(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()
	want := sampleSettings()
	if err := SaveSettings(ctx, s.Scope("a.jpg"), want); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	got, found, err := LoadSettings(ctx, s.Scope("a.jpg"), domain.Settings{})
	if err != nil || !found {
		t.Fatalf("LoadSettings: found=%v err=%v", found, err)
	}
	if got != want {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestReloadedSettingsReproduceGeometry(t *testing.T) {
	m := NewMemoryMetadata()
	ctx := context.Background()
	want := sampleSettings()
	if err := SaveSettings(ctx, m, want); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	got, _, err := LoadSettings(ctx, m, domain.Settings{})
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	g1, err1 := frame.ComputeGeometry(want.Inputs(1234, 777))
	g2, err2 := frame.ComputeGeometry(got.Inputs(1234, 777))
	if err1 != nil || err2 != nil {
		t.Fatalf("ComputeGeometry: %v %v", err1, err2)
	}
	if g1 != g2 {
		t.Fatalf("geometry differs after reload: %+v vs %+v", g1, g2)
	}
	t1, c1 := frame.ComputeFonts(g1, want.TitleFont, want.CaptionFont)
	t2, c2 := frame.ComputeFonts(g2, got.TitleFont, got.CaptionFont)
	if t1 != t2 || c1 != c2 {
		t.Fatalf("fonts differ after reload")
	}
}

func TestLoadSettingsKeepsBaseForMissingKeys(t *testing.T) {
	m := NewMemoryMetadata()
	ctx := context.Background()
	base := sampleSettings()
	got, found, err := LoadSettings(ctx, m, base)
	if err != nil || found || got != base {
		t.Fatalf("empty metadata: found=%v err=%v changed=%v", found, err, got != base)
	}
	_ = m.Set(ctx, KeyPlacementPercent, "75")
	got, found, err = LoadSettings(ctx, m, base)
	if err != nil || !found {
		t.Fatalf("LoadSettings: found=%v err=%v", found, err)
	}
	if got.PlacementPercent != 75 || got.InnerThickness != base.InnerThickness {
		t.Fatalf("partial load = %+v", got)
	}
}

func TestLoadSettingsRejectsMalformedValues(t *testing.T) {
	m := NewMemoryMetadata()
	ctx := context.Background()
	_ = m.Set(ctx, KeyBorderWidthPercent, "three")
	base := sampleSettings()
	got, _, err := LoadSettings(ctx, m, base)
	if err == nil {
		t.Fatalf("expected parse error")
	}
	if got != base {
		t.Fatalf("failed load must return base unchanged")
	}
}

type failingMeta struct{}

var errBoom = errors.New("boom")

func (failingMeta) Get(context.Context, string) (string, error) { return "", errBoom }
func (failingMeta) Set(context.Context, string, string) error   { return errBoom }

func TestSettingsPropagateBackendErrors(t *testing.T) {
	ctx := context.Background()
	if err := SaveSettings(ctx, failingMeta{}, sampleSettings()); !errors.Is(err, errBoom) {
		t.Fatalf("SaveSettings err = %v", err)
	}
	if _, _, err := LoadSettings(ctx, failingMeta{}, domain.Settings{}); !errors.Is(err, errBoom) {
		t.Fatalf("LoadSettings err = %v", err)
	}
}

func TestMemoryMetadataKeys(t *testing.T) {
	m := NewMemoryMetadata()
	if err := SaveSettings(context.Background(), m, sampleSettings()); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	keys := m.Keys()
	if len(keys) != 9+3+9 {
		t.Fatalf("stored %d keys, want 21", len(keys))
	}
	if CaptionKey(domain.BlockRight, 2) != "caption-right-2" || EnabledKey(domain.BlockCenter) != "caption-center-enabled" {
		t.Fatalf("unexpected key names")
	}
}
