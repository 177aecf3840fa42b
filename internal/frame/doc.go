/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package frame derives the frame geometry, font sizes, fit decisions and
// text positions for a captioned image frame.
//
// Everything is recomputed from the root inputs (image size, inner inset,
// border percentages, vertical placement); nothing is patched incrementally.
// The free functions are pure. Engine threads the current state through them
// and owns the scratch raster used for ink measurement.
package frame
