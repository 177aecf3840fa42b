/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export reads source pictures and writes framed results as PNG,
// JPEG, GIF, BMP, TIFF or single-page PDF.
package export

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	// Registers the WebP decoder with image.Decode.
	_ "golang.org/x/image/webp"

	applog "gocaptionframe/internal/log"
)

// Format is an output file format.
type Format string

const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
	GIF  Format = "gif"
	BMP  Format = "bmp"
	TIFF Format = "tiff"
	PDF  Format = "pdf"
)

// ErrUnknownFormat is returned for output paths with an unsupported extension.
var ErrUnknownFormat = errors.New("unknown output format")

// Options tunes the encoders.
type Options struct {
	// JPEGQuality in 1..100; zero means 92.
	JPEGQuality int
	// Title is written to the PDF document info.
	Title string
}

// FormatFor picks the output format from the file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return PNG, nil
	case ".jpg", ".jpeg":
		return JPEG, nil
	case ".gif":
		return GIF, nil
	case ".bmp":
		return BMP, nil
	case ".tif", ".tiff":
		return TIFF, nil
	case ".pdf":
		return PDF, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
	}
}

// Decode reads a picture in any registered format (png, jpeg, gif, bmp,
// tiff, webp) and reports the format name.
func Decode(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open image: %w", err)
	}
	defer f.Close()
	img, format, err := image.Decode(bufio.NewReader(f))
	if err != nil {
		return nil, "", fmt.Errorf("decode %s: %w", path, err)
	}
	return img, format, nil
}

// Size reads only the header of the picture at path and returns its dimensions.
func Size(path string) (width, height int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(bufio.NewReader(f))
	if err != nil {
		return 0, 0, fmt.Errorf("decode %s: %w", path, err)
	}
	return cfg.Width, cfg.Height, nil
}

// Encode writes img to w in format f.
func Encode(w io.Writer, img image.Image, f Format, opt Options) error {
	switch f {
	case PNG:
		return png.Encode(w, img)
	case JPEG:
		q := opt.JPEGQuality
		if q <= 0 || q > 100 {
			q = 92
		}
		return jpeg.Encode(w, img, &jpeg.Options{Quality: q})
	case GIF:
		return gif.Encode(w, img, nil)
	case BMP:
		return bmp.Encode(w, img)
	case TIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	case PDF:
		return EncodePDF(w, img, opt)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
}

// Write encodes img into path, choosing the format by extension. The file
// is written to a temporary sibling first and renamed into place.
func Write(img image.Image, path string, opt Options) error {
	l := applog.WithOperation(applog.WithComponent("export"), "write").With(slog.String("path", path))
	f, err := FormatFor(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	bw := bufio.NewWriter(tmp)
	if err := Encode(bw, img, f, opt); err != nil {
		_ = tmp.Close()
		l.Error("encode failed", slog.Any("err", err))
		return fmt.Errorf("encode %s: %w", f, err)
	}
	if err := bw.Flush(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("flush: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	b := img.Bounds()
	l.Info("image written", slog.String("format", string(f)), slog.Int("w", b.Dx()), slog.Int("h", b.Dy()))
	return nil
}
