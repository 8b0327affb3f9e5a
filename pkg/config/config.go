// Package config loads optional settings files for the timeline renderer.
//
// A settings file overrides individual layout metrics, the label policy and
// theme colors; anything it leaves out keeps its default value. Both TOML and
// YAML are accepted, selected by file extension:
//
//	# timeline.toml
//	label_policy = "fixed"
//	row_height = 24
//
//	[theme]
//	highlight = "#dde8f5"
//
//	[render]
//	format = "svg"
//
// Unknown keys are rejected so that typos do not silently fall back to the
// defaults.
package config

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/timeline/pkg/errors"
	"github.com/matzehuels/timeline/pkg/layout"
)

// File is the contents of a settings file. Nil fields are not set.
type File struct {
	Scale            *float64 `toml:"scale" yaml:"scale"`
	RowHeight        *float64 `toml:"row_height" yaml:"row_height"`
	RowSpacing       *float64 `toml:"row_spacing" yaml:"row_spacing"`
	LabelMargin      *float64 `toml:"label_margin" yaml:"label_margin"`
	HighlightPadding *float64 `toml:"highlight_padding" yaml:"highlight_padding"`
	FixedLabelWidth  *float64 `toml:"fixed_label_width" yaml:"fixed_label_width"`
	LabelPolicy      *string  `toml:"label_policy" yaml:"label_policy"`
	FontSize         *float64 `toml:"font_size" yaml:"font_size"`
	LineWidth        *float64 `toml:"line_width" yaml:"line_width"`

	Theme  Theme  `toml:"theme" yaml:"theme"`
	Render Render `toml:"render" yaml:"render"`
	Cache  Cache  `toml:"cache" yaml:"cache"`
}

// Theme overrides colors. Values are "#rrggbb" or "#rgb".
type Theme struct {
	Text      string `toml:"text" yaml:"text"`
	Highlight string `toml:"highlight" yaml:"highlight"`
	JobStroke string `toml:"job_stroke" yaml:"job_stroke"`
	JobFill   string `toml:"job_fill" yaml:"job_fill"`
}

// Render holds output defaults.
type Render struct {
	Format   string   `toml:"format" yaml:"format"`
	PNGScale *float64 `toml:"png_scale" yaml:"png_scale"`
}

// Cache selects the artifact cache (see cache.Open).
type Cache struct {
	URL string `toml:"url" yaml:"url"`
}

// Load reads a settings file. The format is chosen by extension:
// .toml, or .yaml/.yml.
func Load(path string) (*File, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}

	var (
		f   File
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = loadTOML(path, &f)
	case ".yaml", ".yml":
		err = loadYAML(path, &f)
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig,
			"%s: unsupported config format %q (use .toml, .yaml or .yml)", path, ext)
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func loadTOML(path string, f *File) error {
	md, err := toml.DecodeFile(path, f)
	if err != nil {
		return readError(path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

func loadYAML(path string, f *File) error {
	r, err := os.Open(path)
	if err != nil {
		return readError(path, err)
	}
	defer r.Close()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(f); err != nil && !stderrors.Is(err, io.EOF) {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", path)
	}
	return nil
}

func readError(path string, err error) error {
	switch {
	case stderrors.Is(err, os.ErrNotExist):
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "config file not found: %s", path)
	case stderrors.Is(err, os.ErrPermission):
		return errors.Wrap(errors.ErrCodeIO, err, "%s", path)
	}
	return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", path)
}

// Apply returns base with the file's overrides applied. The result is
// validated.
func (f *File) Apply(base layout.Config) (layout.Config, error) {
	cfg := base
	if f == nil {
		return cfg, cfg.Validate()
	}

	for _, o := range []struct {
		src *float64
		dst *float64
	}{
		{f.Scale, &cfg.Scale},
		{f.RowHeight, &cfg.RowHeight},
		{f.RowSpacing, &cfg.RowSpacing},
		{f.LabelMargin, &cfg.LabelMargin},
		{f.HighlightPadding, &cfg.HighlightPadding},
		{f.FixedLabelWidth, &cfg.FixedLabelWidth},
		{f.FontSize, &cfg.FontSize},
		{f.LineWidth, &cfg.LineWidth},
	} {
		if o.src != nil {
			*o.dst = *o.src
		}
	}

	if f.LabelPolicy != nil {
		p, err := layout.ParseLabelPolicy(*f.LabelPolicy)
		if err != nil {
			return base, err
		}
		cfg.LabelPolicy = p
	}

	for _, c := range []struct {
		name string
		src  string
		dst  *layout.Color
	}{
		{"theme.text", f.Theme.Text, &cfg.Theme.Text},
		{"theme.highlight", f.Theme.Highlight, &cfg.Theme.Highlight},
		{"theme.job_stroke", f.Theme.JobStroke, &cfg.Theme.JobStroke},
		{"theme.job_fill", f.Theme.JobFill, &cfg.Theme.JobFill},
	} {
		if c.src == "" {
			continue
		}
		col, err := layout.ParseColor(c.src)
		if err != nil {
			return base, fmt.Errorf("%s: %w", c.name, err)
		}
		*c.dst = col
	}

	if err := cfg.Validate(); err != nil {
		return base, err
	}
	return cfg, nil
}

// LoadConfig reads path and applies it to the default layout configuration.
// An empty path returns the defaults.
func LoadConfig(path string) (layout.Config, *File, error) {
	if path == "" {
		return layout.Default(), &File{}, nil
	}
	f, err := Load(path)
	if err != nil {
		return layout.Config{}, nil, err
	}
	cfg, err := f.Apply(layout.Default())
	if err != nil {
		return layout.Config{}, nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, f, nil
}
