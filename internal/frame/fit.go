/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package frame

import "gocaptionframe/internal/domain"

// TitleBudget is the widest the title ink may be.
func TitleBudget(g domain.Geometry) float64 {
	return float64(g.FramedImageWidth)
}

// CaptionBudget is the widest a caption may be when columns blocks share the
// framed width, less the inter-column gutter. With no active columns nothing fits.
func CaptionBudget(g domain.Geometry, columns int, gutterRatio float64) float64 {
	if columns <= 0 {
		return 0
	}
	w := float64(g.FramedImageWidth)
	return w/float64(columns) - gutterRatio*w
}

// Fits reports whether a measured ink width is strictly inside budget.
func Fits(ink domain.InkBounds, budget float64) bool {
	return float64(ink.Width) < budget
}
