package pipeline

import (
	"testing"

	"github.com/matzehuels/timeline/pkg/errors"
	"github.com/matzehuels/timeline/pkg/layout"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"pdf", false},
		{"svg", false},
		{"png", false},
		{"json", false},
		{"invalid", true},
		{"PDF", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s", tt.format, errors.GetCode(err))
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"pdf", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"pdf", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{Input: []byte(`{"duration": 1, "nodes": []}`)}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Valid options should pass: %v", err)
	}

	if opts.Config != layout.Default() {
		t.Errorf("Config should default to layout.Default(), got %+v", opts.Config)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatPDF {
		t.Errorf("Formats should be [pdf], got %v", opts.Formats)
	}
	if opts.Source != InlineSource {
		t.Errorf("Source should be %q, got %q", InlineSource, opts.Source)
	}
	if opts.PNGScale != 2 {
		t.Errorf("PNGScale should be 2, got %v", opts.PNGScale)
	}
	if opts.Logger == nil {
		t.Error("Logger should be set")
	}
}

func TestOptionsValidation(t *testing.T) {
	doc := []byte(`{"duration": 1, "nodes": []}`)
	badConfig := layout.Default()
	badConfig.RowHeight = -1

	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"empty input", Options{}, errors.ErrCodeInvalidInput},
		{"bad format", Options{Input: doc, Formats: []string{"gif"}}, errors.ErrCodeInvalidFormat},
		{"bad config", Options{Input: doc, Config: badConfig}, errors.ErrCodeInvalidConfig},
		{"negative png scale", Options{Input: doc, PNGScale: -1}, errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("code = %s, want %s", errors.GetCode(err), tt.code)
			}
		})
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Input: []byte(`{}`), Formats: []string{"svg"}}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}
	cfg, formats := opts.Config, opts.Formats

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}
	if opts.Config != cfg {
		t.Error("Config changed on second call")
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != formats[0] {
		t.Error("Formats changed on second call")
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	opts := Options{PNGScale: 3}

	if got := opts.ArtifactKeyOpts(FormatPNG); got.PNGScale != 3 {
		t.Errorf("png key should carry the scale, got %+v", got)
	}
	if got := opts.ArtifactKeyOpts(FormatPDF); got.PNGScale != 0 {
		t.Errorf("pdf key should not depend on the png scale, got %+v", got)
	}
}

func TestLayoutKeyOptsTracksConfig(t *testing.T) {
	a := Options{Config: layout.Default()}
	b := Options{Config: layout.Default()}
	b.Config.LabelPolicy = layout.PolicyFixed

	if a.LayoutKeyOpts() == b.LayoutKeyOpts() {
		t.Error("different configs should produce different layout key options")
	}
}
