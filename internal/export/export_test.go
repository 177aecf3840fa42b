/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

func sampleImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 64, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 64; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 6), B: 128, A: 255})
		}
	}
	return img
}

func TestFormatFor(t *testing.T) {
	cases := map[string]Format{
		"a.png": PNG, "b.JPG": JPEG, "c.jpeg": JPEG, "d.gif": GIF,
		"e.bmp": BMP, "f.tif": TIFF, "g.TIFF": TIFF, "h.pdf": PDF,
	}
	for path, want := range cases {
		got, err := FormatFor(path)
		if err != nil || got != want {
			t.Fatalf("FormatFor(%q) = %q, %v; want %q", path, got, err, want)
		}
	}
	if _, err := FormatFor("x.webp"); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("webp output should be unknown, got %v", err)
	}
	if _, err := FormatFor("noext"); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("missing extension should be unknown, got %v", err)
	}
}

func TestWriteAndDecodeRasterFormats(t *testing.T) {
	dir := t.TempDir()
	src := sampleImage()
	for _, name := range []string{"out.png", "out.jpg", "out.gif", "out.bmp", "out.tiff"} {
		path := filepath.Join(dir, "nested", name)
		if err := Write(src, path, Options{}); err != nil {
			t.Fatalf("Write(%s): %v", name, err)
		}
		img, format, err := Decode(path)
		if err != nil {
			t.Fatalf("Decode(%s): %v", name, err)
		}
		if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 40 {
			t.Fatalf("%s: decoded size %v", name, img.Bounds())
		}
		if w, h, err := Size(path); err != nil || w != 64 || h != 40 {
			t.Fatalf("%s: Size = %dx%d, %v", name, w, h, err)
		}
		if format == "" {
			t.Fatalf("%s: empty format name", name)
		}
	}
	entries, err := os.ReadDir(filepath.Join(dir, "nested"))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 5 {
		t.Fatalf("expected 5 files and no temp leftovers, got %d", len(entries))
	}
}

func TestPNGIsLossless(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exact.png")
	src := sampleImage()
	if err := Write(src, path, Options{}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	img, _, err := Decode(path)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	for _, p := range []image.Point{{0, 0}, {63, 39}, {17, 23}} {
		r1, g1, b1, a1 := src.At(p.X, p.Y).RGBA()
		r2, g2, b2, a2 := img.At(p.X, p.Y).RGBA()
		if r1 != r2 || g1 != g2 || b1 != b2 || a1 != a2 {
			t.Fatalf("pixel %v differs after round trip", p)
		}
	}
}

func TestWritePDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "framed.pdf")
	if err := Write(sampleImage(), path, Options{Title: "Framed"}); err != nil {
		t.Fatalf("Write pdf: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("not a PDF: %q", data[:min(8, len(data))])
	}
	if !bytes.Contains(data, []byte("/MediaBox [0 0 64.00 40.00]")) {
		t.Fatalf("page size does not match the 64x40 image")
	}
}

func TestEncodePDFRejectsEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodePDF(&buf, image.NewRGBA(image.Rect(0, 0, 0, 0)), Options{}); err == nil {
		t.Fatalf("expected error for empty image")
	}
}

func TestWriteUnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xyz")
	if err := Write(sampleImage(), path, Options{}); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("err = %v, want ErrUnknownFormat", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("file should not exist")
	}
}

func TestDecodeErrors(t *testing.T) {
	if _, _, err := Decode(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	bad := filepath.Join(t.TempDir(), "bad.png")
	if err := os.WriteFile(bad, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := Decode(bad); err == nil {
		t.Fatalf("expected decode error")
	}
}
