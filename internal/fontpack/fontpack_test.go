/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package fontpack

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font/gofont/goregular"
)

func TestExportAndInstall(t *testing.T) {
	src := t.TempDir()
	if err := os.WriteFile(filepath.Join(src, "Body.ttf"), goregular.TTF, 0o644); err != nil {
		t.Fatalf("write font: %v", err)
	}
	if err := os.WriteFile(filepath.Join(src, "readme.txt"), []byte("not a font"), 0o644); err != nil {
		t.Fatalf("write readme: %v", err)
	}
	zipPath := filepath.Join(t.TempDir(), "packs", "fonts.zip")
	n, err := Export(src, zipPath)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if n != 1 {
		t.Fatalf("exported %d fonts, want 1", n)
	}
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	names := map[string]bool{}
	for _, f := range r.File {
		names[f.Name] = true
	}
	_ = r.Close()
	if !names[ManifestName] || !names["Body.ttf"] || names["readme.txt"] {
		t.Fatalf("unexpected entries: %v", names)
	}

	dst := filepath.Join(t.TempDir(), "fonts")
	installed, err := Install(zipPath, dst)
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if installed != 1 {
		t.Fatalf("installed %d, want 1", installed)
	}
	data, err := os.ReadFile(filepath.Join(dst, "Body.ttf"))
	if err != nil || !bytes.Equal(data, goregular.TTF) {
		t.Fatalf("installed font differs: %v", err)
	}

	again, err := Install(zipPath, dst)
	if err != nil {
		t.Fatalf("second Install: %v", err)
	}
	if again != 0 {
		t.Fatalf("existing fonts must be skipped, installed %d", again)
	}
}

func TestInstallFlattensPaths(t *testing.T) {
	zipPath := filepath.Join(t.TempDir(), "evil.zip")
	f, err := os.Create(zipPath)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	zw := zip.NewWriter(f)
	w, _ := zw.Create("../../escape.ttf")
	_, _ = w.Write(goregular.TTF)
	_ = zw.Close()
	_ = f.Close()

	root := t.TempDir()
	dst := filepath.Join(root, "fonts")
	if _, err := Install(zipPath, dst); err != nil {
		t.Fatalf("Install: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dst, "escape.ttf")); err != nil {
		t.Fatalf("font not placed inside the font dir: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "escape.ttf")); !os.IsNotExist(err) {
		t.Fatalf("archive path escaped the font dir")
	}
}

func TestExportRequiresArguments(t *testing.T) {
	if _, err := Export("", "x.zip"); err == nil {
		t.Fatalf("expected error for empty dir")
	}
	if _, err := Export(t.TempDir(), " "); err == nil {
		t.Fatalf("expected error for empty destination")
	}
	if _, err := Install(filepath.Join(t.TempDir(), "missing.zip"), t.TempDir()); err == nil {
		t.Fatalf("expected error for missing pack")
	}
}
