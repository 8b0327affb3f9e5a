// Package pipeline provides the render pipeline for timeline documents.
//
// This package implements the complete parse → layout → render pipeline that
// is shared by the CLI commands and the HTTP server, so every entry point
// validates, caches and logs the same way.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: decode and validate the timeline JSON document
//  2. Layout: compute page size, label column and row geometry
//  3. Render: draw the layout as PDF, SVG, PNG or JSON
//
// Layouts and artifacts are cached by content: the key of a layout is the
// hash of the input document plus the layout configuration, and the key of
// an artifact is the hash of its layout plus the output format.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Input:   data,
//	    Source:  "trace.json",
//	    Formats: []string{"pdf"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	pdf := result.Artifacts["pdf"]
package pipeline

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/timeline/pkg/cache"
	"github.com/matzehuels/timeline/pkg/errors"
	"github.com/matzehuels/timeline/pkg/layout"
	"github.com/matzehuels/timeline/pkg/render"
	"github.com/matzehuels/timeline/pkg/timeline"
)

// Format constants, re-exported from the render package.
const (
	FormatPDF  = render.FormatPDF
	FormatSVG  = render.FormatSVG
	FormatPNG  = render.FormatPNG
	FormatJSON = render.FormatJSON
)

// DefaultFormat is the format rendered when none is requested.
const DefaultFormat = render.DefaultFormat

// ValidFormats is the set of supported output formats.
var ValidFormats = render.ValidFormats

// InlineSource names documents that did not come from a file.
const InlineSource = "-"

// Options contains all configuration for one pipeline run.
type Options struct {
	// Input is the raw timeline document.
	Input []byte `json:"-"`

	// Source names the document in logs and hooks (usually its path).
	Source string `json:"source,omitempty"`

	// Config holds layout metrics and colors. The zero value selects
	// layout.Default().
	Config layout.Config `json:"config"`

	Formats  []string `json:"formats,omitempty"`
	PNGScale float64  `json:"png_scale,omitempty"`

	// Refresh skips cache reads; fresh results are still written.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Timeline is the parsed document.
	Timeline *timeline.Timeline

	// DocHash is the content hash of the input document.
	DocHash string

	// Layout is the computed geometry.
	Layout layout.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	JobCount   int
	Overflow   int // jobs ending after the timeline duration
	Inverted   int // jobs ending before they start
	ParseTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: %s)", format, formatList())
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

func formatList() string {
	return strings.Join([]string{FormatPDF, FormatSVG, FormatPNG, FormatJSON}, ", ")
}

// ValidateAndSetDefaults checks the options and fills in defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if len(o.Input) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "empty document")
	}
	if o.Source == "" {
		o.Source = InlineSource
	}
	if o.Config == (layout.Config{}) {
		o.Config = layout.Default()
	}
	if err := o.Config.Validate(); err != nil {
		return err
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.PNGScale == 0 {
		o.PNGScale = render.DefaultPNGScale
	}
	if o.PNGScale < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "png scale must be positive, got %v", o.PNGScale)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{Config: o.Config.String()}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{Format: format}
	if format == FormatPNG {
		opts.PNGScale = o.PNGScale
	}
	return opts
}

func (o *Options) renderOptions() []render.Option {
	return []render.Option{render.WithPNGScale(o.PNGScale)}
}

// String summarizes the options for debug logs.
func (o *Options) String() string {
	return fmt.Sprintf("source=%s formats=%s %s", o.Source, strings.Join(o.Formats, ","), o.Config)
}
