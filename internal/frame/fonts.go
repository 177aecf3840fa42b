/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package frame

import "gocaptionframe/internal/domain"

// ComputeFonts derives the title and caption sizes from the bar heights.
// Faces and size factors are taken from the arguments; Size is overwritten.
//
// The bottom bar always holds three caption lines, populated or not, so the
// caption size is based on a third of it. Sizes stay real-valued here;
// FontSpec.PixelSize applies rounding and the rasterizer ceiling.
func ComputeFonts(g domain.Geometry, title, caption domain.FontSpec) (domain.FontSpec, domain.FontSpec) {
	title.Size = float64(g.TitleBarHeight) * title.SizeFactor
	caption.Size = float64(g.BottomBarHeight) / domain.LinesPerBlock * caption.SizeFactor
	return title, caption
}
