package cli

import (
	"context"
	"io"
	"math"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/timeline/pkg/errors"
	"github.com/matzehuels/timeline/pkg/pipeline"
)

func renderSample(t *testing.T, format string) *pipeline.Result {
	t.Helper()
	runner := pipeline.NewRunner(nil, nil, log.New(io.Discard))
	result, err := runner.Execute(context.Background(), pipeline.Options{
		Input:   []byte(sampleDoc),
		Formats: []string{format},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	return result
}

func TestReadPDFInfo(t *testing.T) {
	result := renderSample(t, pipeline.FormatPDF)

	info, err := readPDFInfo(result.Artifacts[pipeline.FormatPDF])
	if err != nil {
		t.Fatalf("readPDFInfo: %v", err)
	}
	if len(info.Pages) != 1 {
		t.Fatalf("pages = %d, want 1", len(info.Pages))
	}

	p := info.Pages[0]
	if p.Number != 1 {
		t.Errorf("Number = %d, want 1", p.Number)
	}
	if math.Abs(p.Width-result.Layout.Width) > 0.01 {
		t.Errorf("Width = %v, want %v", p.Width, result.Layout.Width)
	}
	if math.Abs(p.Height-result.Layout.Height) > 0.01 {
		t.Errorf("Height = %v, want %v", p.Height, result.Layout.Height)
	}
	if len(p.Fonts) == 0 {
		t.Error("no fonts reported for a page with text")
	}
}

func TestReadPDFInfoRejectsNonPDF(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"json", []byte(sampleDoc)},
		{"truncated", []byte("%PDF-1.3\n1 0 obj\n<<")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := readPDFInfo(tt.data)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("error = %v, want code %s", err, errors.ErrCodeInvalidInput)
			}
		})
	}
}

func TestInspectCommandMissingFile(t *testing.T) {
	err := runCLI(t, "inspect", "does-not-exist.pdf")
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("error = %v, want code %s", err, errors.ErrCodeFileNotFound)
	}
}
