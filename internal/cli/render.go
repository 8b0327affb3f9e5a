package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/timeline/pkg/errors"
	"github.com/matzehuels/timeline/pkg/observability"
	"github.com/matzehuels/timeline/pkg/pipeline"
	"github.com/matzehuels/timeline/pkg/timeline"
)

// stdoutPath selects standard output as the render destination.
const stdoutPath = "-"

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags  renderFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "render <input.json>",
		Short: "Render a timeline to PDF, SVG, PNG or layout JSON",
		Long: `Render a timeline document.

Without --output the result is written next to the input, with the input's
extension replaced by the format (trace.json -> trace.pdf). Several formats can
be rendered at once (--format pdf,svg); --output is then used as the base path.
Use --output - to write a single format to standard output.

Layouts and rendered files are cached; --refresh forces a fresh render and
--no-cache disables the cache entirely.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRenderTo(cmd.Context(), args[0], output, flags)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple); - for stdout")
	flags.register(cmd.Flags())
	registerRenderCompletions(cmd)

	return cmd
}

// runRenderTo renders input and writes the artifacts for output.
func (c *CLI) runRenderTo(ctx context.Context, input, output string, flags renderFlags) error {
	if err := errors.ValidatePath(input); err != nil {
		return err
	}
	opts, file, err := flags.options()
	if err != nil {
		return err
	}
	formats, err := flags.formats(output, file)
	if err != nil {
		return err
	}
	if output == stdoutPath && len(formats) > 1 {
		return errors.New(errors.ErrCodeInvalidInput, "cannot write %d formats to stdout", len(formats))
	}

	data, err := timeline.ReadFile(input)
	if err != nil {
		return err
	}
	opts.Input = data
	opts.Source = input
	opts.Formats = formats
	opts.Logger = c.Logger

	runner, err := c.newRunner(ctx, flags, file)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	var sp *spinner
	if output != stdoutPath {
		sp = startSpinner(ctx, os.Stderr, fmt.Sprintf("Rendering %s...", filepath.Base(input)))
		prev := observability.SetPipelineHooks(spinnerHooks{s: sp})
		defer observability.SetPipelineHooks(prev)
	}

	result, err := runner.Execute(ctx, opts)
	if sp != nil {
		if err != nil && ctx.Err() == nil {
			sp.fail("Render failed")
		} else {
			sp.stop()
		}
	}
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	prog.done("rendered", "nodes", result.Stats.NodeCount, "jobs", result.Stats.JobCount, "formats", formats)

	return writeArtifacts(artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   formats,
		input:     input,
		output:    output,
		cacheHit:  result.CacheInfo.RenderHit,
		stats:     result.Stats,
	})
}

// artifactWriteParams holds what writeArtifacts needs to place files.
type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string
	output    string
	cacheHit  bool
	stats     pipeline.Stats
}

// writeArtifacts writes each rendered format to its output path and prints
// a summary.
func writeArtifacts(p artifactWriteParams) error {
	if p.output == stdoutPath {
		out, err := openOutput("")
		if err != nil {
			return err
		}
		defer out.Close()
		_, err = out.Write(p.artifacts[p.formats[0]])
		return err
	}

	paths := outputPaths(p.input, p.output, p.formats)
	for _, format := range p.formats {
		path := paths[format]
		if err := writeFile(path, p.artifacts[format]); err != nil {
			return err
		}
	}

	printSuccess("Rendered %s", filepath.Base(p.input))
	for _, format := range p.formats {
		printFile(paths[format])
	}
	printStats(p.stats, p.cacheHit)
	if pdf, ok := paths[pipeline.FormatPDF]; ok {
		printNewline()
		printNextStep("Inspect", appName+" inspect "+pdf)
	}
	return nil
}

// outputPaths maps each format to its destination. A single format is
// written to output as given; several formats share output as base path.
func outputPaths(input, output string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input)
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.pdf, .svg, etc.), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.ToLower(strings.TrimPrefix(ext, "."))] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

func writeFile(path string, data []byte) error {
	if err := errors.ValidatePath(path); err != nil {
		return err
	}
	out, err := openOutput(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "create %s", path)
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return errors.Wrap(errors.ErrCodeIO, err, "write %s", path)
	}
	if err := out.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "close %s", path)
	}
	return nil
}

// nopCloser wraps an io.Writer with a no-op Close method.
// It is used to make os.Stdout compatible with io.WriteCloser.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty, it returns os.Stdout wrapped in nopCloser.
// Otherwise, it creates the file at path, overwriting if it exists.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
