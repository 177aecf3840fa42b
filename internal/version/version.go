/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package version carries build identification for the binary and logs.
package version

// Version is replaced at link time:
//
//	go build -ldflags "-X gocaptionframe/internal/version.Version=v1.2.0 -X gocaptionframe/internal/version.Commit=abc123"
var Version = "0.3.0-dev"

// Commit is the VCS revision the binary was built from, if known.
var Commit = ""

// String returns the version with the commit appended when it is set.
func String() string {
	if Commit == "" {
		return Version
	}
	return Version + " (" + Commit + ")"
}
