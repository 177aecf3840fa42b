/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package fontpack moves font collections between machines as zip archives.
// A pack holds .ttf/.otf files plus a small human-readable manifest.
package fontpack

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	applog "gocaptionframe/internal/log"
	"gocaptionframe/internal/version"
)

// ManifestName is the manifest entry at the root of every pack.
const ManifestName = "fontpack.manifest.txt"

func isFontFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".ttf" || ext == ".otf"
}

// Export zips every font file directly inside fontDir into destZipPath.
// It returns the number of fonts added; an empty directory still yields a
// pack containing only the manifest.
func Export(fontDir, destZipPath string) (int, error) {
	l := applog.WithOperation(applog.WithComponent("fontpack"), "export").With(slog.String("dir", fontDir))
	if strings.TrimSpace(fontDir) == "" {
		return 0, errors.New("font dir is required")
	}
	if strings.TrimSpace(destZipPath) == "" {
		return 0, errors.New("destination zip is required")
	}
	entries, err := os.ReadDir(fontDir)
	if err != nil {
		return 0, fmt.Errorf("read font dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(destZipPath), 0o755); err != nil {
		return 0, fmt.Errorf("ensure zip dir: %w", err)
	}
	_ = os.Remove(destZipPath)

	zf, err := os.Create(destZipPath)
	if err != nil {
		return 0, fmt.Errorf("create zip: %w", err)
	}
	defer func() { _ = zf.Close() }()
	zw := zip.NewWriter(zf)

	manifest := fmt.Sprintf("gocaptionframe font pack\nCreated: %s\nBy: %s\nSource: %s\n",
		time.Now().Format(time.RFC3339), version.String(), fontDir)
	w, err := zw.Create(ManifestName)
	if err != nil {
		return 0, fmt.Errorf("add manifest: %w", err)
	}
	if _, err := w.Write([]byte(manifest)); err != nil {
		return 0, fmt.Errorf("write manifest: %w", err)
	}

	added := 0
	for _, e := range entries {
		if e.IsDir() || !isFontFile(e.Name()) {
			continue
		}
		if err := addFile(zw, filepath.Join(fontDir, e.Name()), e.Name()); err != nil {
			l.Error("zip build failed", slog.Any("err", err))
			return added, fmt.Errorf("build zip: %w", err)
		}
		added++
	}
	if err := zw.Close(); err != nil {
		return added, fmt.Errorf("finish zip: %w", err)
	}
	l.Info("font pack exported", slog.Int("fonts", added), slog.String("zip", destZipPath))
	return added, nil
}

func addFile(zw *zip.Writer, path, name string) error {
	fw, err := zw.Create(name)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	_, err = io.Copy(fw, f)
	return err
}

// Install extracts the font files of a pack into fontDir. Only the base
// name of each entry is used, so archive paths cannot escape fontDir.
// Existing files are kept and not counted.
func Install(packZipPath, fontDir string) (int, error) {
	l := applog.WithOperation(applog.WithComponent("fontpack"), "install").With(slog.String("dir", fontDir))
	if strings.TrimSpace(fontDir) == "" {
		return 0, errors.New("font dir is required")
	}
	if err := os.MkdirAll(fontDir, 0o755); err != nil {
		return 0, fmt.Errorf("ensure font dir: %w", err)
	}
	r, err := zip.OpenReader(packZipPath)
	if err != nil {
		return 0, fmt.Errorf("open pack: %w", err)
	}
	defer func() { _ = r.Close() }()

	installed := 0
	for _, f := range r.File {
		if f.FileInfo().IsDir() || !isFontFile(f.Name) {
			continue
		}
		target := filepath.Join(fontDir, filepath.Base(filepath.FromSlash(f.Name)))
		if _, err := os.Stat(target); err == nil {
			l.Warn("skip existing font", slog.String("path", target))
			continue
		}
		if err := extract(f, target); err != nil {
			return installed, fmt.Errorf("extract %s: %w", f.Name, err)
		}
		installed++
	}
	l.Info("font pack installed", slog.Int("fonts", installed))
	return installed, nil
}

func extract(f *zip.File, target string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		_ = out.Close()
		_ = os.Remove(target)
		return err
	}
	return out.Close()
}
