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
	"fmt"
	"strconv"

	"gocaptionframe/internal/domain"
)

// Metadata keys for frame settings.
const (
	KeyInnerThickness      = "frame-inner-thickness"
	KeyBorderWidthPercent  = "frame-border-width-percent"
	KeyBorderHeightPercent = "frame-border-height-percent"
	KeyPlacementPercent    = "frame-placement-percent"
	KeyTitleFace           = "font-title-face"
	KeyTitleSizeFactor     = "font-title-size-factor"
	KeyCaptionFace         = "font-caption-face"
	KeyCaptionSizeFactor   = "font-caption-size-factor"
	KeyTitle               = "caption-title"
)

// CaptionKey is the key of caption line l (1-based) of block b, e.g. "caption-left-2".
func CaptionKey(b domain.Block, l int) string { return fmt.Sprintf("caption-%s-%d", b, l) }

// EnabledKey is the key of the enabled flag of block b, e.g. "caption-center-enabled".
func EnabledKey(b domain.Block) string { return fmt.Sprintf("caption-%s-enabled", b) }

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

// SaveSettings writes every field of s to m. Floats are written in their
// shortest exact form so a reload reproduces identical geometry.
func SaveSettings(ctx context.Context, m Metadata, s domain.Settings) error {
	kv := [][2]string{
		{KeyInnerThickness, strconv.Itoa(s.InnerThickness)},
		{KeyBorderWidthPercent, formatFloat(s.BorderWidthPercent)},
		{KeyBorderHeightPercent, formatFloat(s.BorderHeightPercent)},
		{KeyPlacementPercent, formatFloat(s.PlacementPercent)},
		{KeyTitleFace, s.TitleFont.Face},
		{KeyTitleSizeFactor, formatFloat(s.TitleFont.SizeFactor)},
		{KeyCaptionFace, s.CaptionFont.Face},
		{KeyCaptionSizeFactor, formatFloat(s.CaptionFont.SizeFactor)},
		{KeyTitle, s.Captions.Title},
	}
	for _, b := range domain.Blocks {
		kv = append(kv, [2]string{EnabledKey(b), strconv.FormatBool(s.Captions.Enabled[b])})
		for l := 1; l <= domain.LinesPerBlock; l++ {
			kv = append(kv, [2]string{CaptionKey(b, l), s.Captions.Line(b, l)})
		}
	}
	for _, p := range kv {
		if err := m.Set(ctx, p[0], p[1]); err != nil {
			return err
		}
	}
	return nil
}

// LoadSettings reads settings from m on top of base. Keys that were never
// stored keep the value from base. found reports whether any key existed.
func LoadSettings(ctx context.Context, m Metadata, base domain.Settings) (s domain.Settings, found bool, err error) {
	s = base
	get := func(key string, apply func(string) error) {
		if err != nil {
			return
		}
		v, gerr := m.Get(ctx, key)
		if errors.Is(gerr, ErrNotFound) {
			return
		}
		if gerr != nil {
			err = gerr
			return
		}
		found = true
		if perr := apply(v); perr != nil {
			err = fmt.Errorf("key %s: %w", key, perr)
		}
	}
	intInto := func(dst *int) func(string) error {
		return func(v string) error {
			n, perr := strconv.Atoi(v)
			*dst = n
			return perr
		}
	}
	floatInto := func(dst *float64) func(string) error {
		return func(v string) error {
			f, perr := strconv.ParseFloat(v, 64)
			*dst = f
			return perr
		}
	}
	strInto := func(dst *string) func(string) error {
		return func(v string) error {
			*dst = v
			return nil
		}
	}

	get(KeyInnerThickness, intInto(&s.InnerThickness))
	get(KeyBorderWidthPercent, floatInto(&s.BorderWidthPercent))
	get(KeyBorderHeightPercent, floatInto(&s.BorderHeightPercent))
	get(KeyPlacementPercent, floatInto(&s.PlacementPercent))
	get(KeyTitleFace, strInto(&s.TitleFont.Face))
	get(KeyTitleSizeFactor, floatInto(&s.TitleFont.SizeFactor))
	get(KeyCaptionFace, strInto(&s.CaptionFont.Face))
	get(KeyCaptionSizeFactor, floatInto(&s.CaptionFont.SizeFactor))
	get(KeyTitle, strInto(&s.Captions.Title))
	for _, b := range domain.Blocks {
		get(EnabledKey(b), func(v string) error {
			on, perr := strconv.ParseBool(v)
			s.Captions.Enabled[b] = on
			return perr
		})
		for l := 1; l <= domain.LinesPerBlock; l++ {
			get(CaptionKey(b, l), strInto(&s.Captions.Lines[b][l-1]))
		}
	}
	if err != nil {
		return base, false, err
	}
	return s, found, nil
}
