/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package job reads caption jobs: JSON documents naming the title, the
// caption grid and optional frame and font overrides for one or more images.
package job

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	gojsonschema "github.com/xeipuuv/gojsonschema"

	"gocaptionframe/internal/domain"
)

//go:embed job.schema.json
var schemaJSON []byte

// ErrInvalidJob wraps every schema or decoding failure.
var ErrInvalidJob = errors.New("invalid job")

var compiledSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
})

// Schema returns the embedded JSON schema.
func Schema() []byte { return schemaJSON }

// Block is one caption column.
type Block struct {
	Enabled *bool    `json:"enabled,omitempty"`
	Lines   []string `json:"lines,omitempty"`
}

// Frame holds optional overrides of the root inputs.
type Frame struct {
	InnerThickness      *int     `json:"innerThickness,omitempty"`
	BorderWidthPercent  *float64 `json:"borderWidthPercent,omitempty"`
	BorderHeightPercent *float64 `json:"borderHeightPercent,omitempty"`
	PlacementPercent    *float64 `json:"placementPercent,omitempty"`
}

// Font overrides a face and/or its size factor.
type Font struct {
	Face       string  `json:"face,omitempty"`
	SizeFactor float64 `json:"sizeFactor,omitempty"`
}

// Job describes the text of one framed picture.
type Job struct {
	Version int              `json:"version,omitempty"`
	Image   string           `json:"image,omitempty"`
	Output  string           `json:"output,omitempty"`
	Title   string           `json:"title,omitempty"`
	Blocks  map[string]Block `json:"blocks,omitempty"`
	Frame   Frame            `json:"frame,omitempty"`
	Fonts   struct {
		Title   Font `json:"title,omitempty"`
		Caption Font `json:"caption,omitempty"`
	} `json:"fonts,omitempty"`
}

type batch struct {
	Jobs []Job `json:"jobs"`
}

// Parse validates data against the job schema and decodes it. A document
// may hold a single job or {"jobs": [...]}; either way a slice is returned.
func Parse(data []byte) ([]Job, error) {
	schema, err := compiledSchema()
	if err != nil {
		return nil, fmt.Errorf("compile job schema: %w", err)
	}
	res, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJob, err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidJob, strings.Join(msgs, "; "))
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJob, err)
	}
	if _, ok := probe["jobs"]; ok {
		var b batch
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidJob, err)
		}
		return b.Jobs, nil
	}
	var j Job
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJob, err)
	}
	return []Job{j}, nil
}

// Load reads and parses a job file.
func Load(path string) ([]Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read job: %w", err)
	}
	jobs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return jobs, nil
}

// Captions converts the job text to the caption grid. A block is enabled
// when its flag says so, or, without a flag, when it has any line.
func (j Job) Captions() domain.Captions {
	var c domain.Captions
	c.Title = j.Title
	for name, blk := range j.Blocks {
		b, err := domain.ParseBlock(name)
		if err != nil {
			continue
		}
		for i, line := range blk.Lines {
			if i >= domain.LinesPerBlock {
				break
			}
			c.Lines[b][i] = line
		}
		if blk.Enabled != nil {
			c.Enabled[b] = *blk.Enabled
		} else {
			c.Enabled[b] = len(blk.Lines) > 0
		}
	}
	return c
}

// Apply layers the job's overrides and captions on top of base.
func (j Job) Apply(base domain.Settings) domain.Settings {
	s := base
	if j.Frame.InnerThickness != nil {
		s.InnerThickness = *j.Frame.InnerThickness
	}
	if j.Frame.BorderWidthPercent != nil {
		s.BorderWidthPercent = *j.Frame.BorderWidthPercent
	}
	if j.Frame.BorderHeightPercent != nil {
		s.BorderHeightPercent = *j.Frame.BorderHeightPercent
	}
	if j.Frame.PlacementPercent != nil {
		s.PlacementPercent = *j.Frame.PlacementPercent
	}
	if j.Fonts.Title.Face != "" {
		s.TitleFont.Face = j.Fonts.Title.Face
	}
	if j.Fonts.Title.SizeFactor > 0 {
		s.TitleFont.SizeFactor = j.Fonts.Title.SizeFactor
	}
	if j.Fonts.Caption.Face != "" {
		s.CaptionFont.Face = j.Fonts.Caption.Face
	}
	if j.Fonts.Caption.SizeFactor > 0 {
		s.CaptionFont.SizeFactor = j.Fonts.Caption.SizeFactor
	}
	s.Captions = j.Captions()
	return s
}

// FromCaptions builds a job from a caption grid, e.g. to write a template.
func FromCaptions(c domain.Captions) Job {
	j := Job{Version: 1, Title: c.Title, Blocks: map[string]Block{}}
	for _, b := range domain.Blocks {
		on := c.Enabled[b]
		lines := make([]string, domain.LinesPerBlock)
		for l := 1; l <= domain.LinesPerBlock; l++ {
			lines[l-1] = c.Line(b, l)
		}
		j.Blocks[b.String()] = Block{Enabled: &on, Lines: lines}
	}
	return j
}
