/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/gofont/gosmallcaps"
	"golang.org/x/image/font/opentype"

	applog "gocaptionframe/internal/log"
)

// DefaultFace is substituted whenever a requested face is not in the library.
const DefaultFace = "Go"

var builtinFaces = []struct {
	name string
	ttf  []byte
}{
	{"Go", goregular.TTF},
	{"Go Bold", gobold.TTF},
	{"Go Italic", goitalic.TTF},
	{"Go Bold Italic", gobolditalic.TTF},
	{"Go Medium", gomedium.TTF},
	{"Go Mono", gomono.TTF},
	{"Go Mono Bold", gomonobold.TTF},
	{"Go Smallcaps", gosmallcaps.TTF},
}

// FontLibrary stores parsed OpenType fonts by face name. Names match
// case-insensitively. Parsed fonts are immutable, so one library can back
// several rasterizers; faces built from it are not shared.
type FontLibrary struct {
	mu    sync.RWMutex
	fonts map[string]*opentype.Font
	names map[string]string // lower-cased key -> display name
}

// NewFontLibrary returns a library preloaded with the Go font family.
func NewFontLibrary() *FontLibrary {
	fl := &FontLibrary{fonts: make(map[string]*opentype.Font), names: make(map[string]string)}
	for _, b := range builtinFaces {
		if err := fl.Register(b.name, b.ttf); err != nil {
			applog.WithComponent("textlayout").Warn("builtin font rejected", "face", b.name, "err", err)
		}
	}
	return fl
}

// Register parses font data and stores it under name, replacing any face of
// the same name.
func (fl *FontLibrary) Register(name string, data []byte) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("font name is required")
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("parse font %s: %w", name, err)
	}
	key := strings.ToLower(name)
	fl.mu.Lock()
	fl.fonts[key] = f
	fl.names[key] = name
	fl.mu.Unlock()
	return nil
}

// LoadTTF loads a font file into the library under the given face name.
func (fl *FontLibrary) LoadTTF(name, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read font %s: %w", path, err)
	}
	return fl.Register(name, data)
}

// LoadDir registers every .ttf/.otf file directly inside dir, named after
// the file without extension. Unparseable files are skipped and logged.
func (fl *FontLibrary) LoadDir(dir string) (int, error) {
	l := applog.WithOperation(applog.WithComponent("textlayout"), "load_dir")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read font dir %s: %w", dir, err)
	}
	n := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".ttf" && ext != ".otf" {
			continue
		}
		name := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if err := fl.LoadTTF(name, filepath.Join(dir, e.Name())); err != nil {
			l.Warn("skip font", "file", e.Name(), "err", err)
			continue
		}
		n++
	}
	l.Debug("fonts loaded", "dir", dir, "count", n)
	return n, nil
}

// Has reports whether name resolves without substitution.
func (fl *FontLibrary) Has(name string) bool {
	_, ok := fl.find(name)
	return ok
}

// Names lists registered face names in sorted order.
func (fl *FontLibrary) Names() []string {
	fl.mu.RLock()
	out := make([]string, 0, len(fl.names))
	for _, n := range fl.names {
		out = append(out, n)
	}
	fl.mu.RUnlock()
	sort.Strings(out)
	return out
}

func (fl *FontLibrary) find(name string) (*opentype.Font, bool) {
	if fl == nil {
		return nil, false
	}
	fl.mu.RLock()
	defer fl.mu.RUnlock()
	f, ok := fl.fonts[strings.ToLower(strings.TrimSpace(name))]
	return f, ok
}

// resolve returns the font for name, or the default face with ok=false.
// The returned font is nil only if the default face is missing too.
func (fl *FontLibrary) resolve(name string) (f *opentype.Font, ok bool) {
	if f, ok := fl.find(name); ok {
		return f, true
	}
	f, _ = fl.find(DefaultFace)
	return f, false
}
