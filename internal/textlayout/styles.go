/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import "gocaptionframe/internal/domain"

// Preset is a named face/size-factor pairing for one of the two bars.
type Preset struct {
	Name string
	Font domain.FontSpec
}

var builtinPresets = map[string]Preset{
	"Title": {
		Name: "Title",
		Font: domain.FontSpec{Face: "Go Bold", SizeFactor: 0.25},
	},
	"Caption": {
		Name: "Caption",
		Font: domain.FontSpec{Face: "Go", SizeFactor: 0.36},
	},
	// Narrow bars read better with a slightly smaller title.
	"Title Compact": {
		Name: "Title Compact",
		Font: domain.FontSpec{Face: "Go Medium", SizeFactor: 0.2},
	},
	"Caption Mono": {
		Name: "Caption Mono",
		Font: domain.FontSpec{Face: "Go Mono", SizeFactor: 0.3},
	},
}

// GetPreset returns a builtin preset by name. The second return value is false if
// the preset is not found.
func GetPreset(name string) (Preset, bool) {
	p, ok := builtinPresets[name]
	return p, ok
}

// ListPresets lists the names of the builtin presets in stable order.
func ListPresets() []string {
	return []string{"Title", "Title Compact", "Caption", "Caption Mono"}
}
