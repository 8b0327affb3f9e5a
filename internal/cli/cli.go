// Package cli implements the timeline command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/timeline/pkg/buildinfo"
	"github.com/matzehuels/timeline/pkg/cache"
	"github.com/matzehuels/timeline/pkg/config"
	"github.com/matzehuels/timeline/pkg/errors"
	"github.com/matzehuels/timeline/pkg/layout"
	"github.com/matzehuels/timeline/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "timeline"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
//
// The root command itself renders: "timeline <input.json> <output.pdf>".
func (c *CLI) RootCommand() *cobra.Command {
	// The two-argument form writes the output file and nothing else.
	flags := renderFlags{urlCacheOnly: true}

	root := &cobra.Command{
		Use:   "timeline <input.json> <output.pdf>",
		Short: "Timeline renders scheduling timelines as Gantt charts",
		Long: `Timeline reads a JSON description of a scheduling timeline (nodes, each
owning a list of time-stamped jobs) and renders it as a single-page Gantt chart:
one row per node, one box per job on a shared time axis.

The output format follows the extension of the output file (.pdf, .svg, .png
or .json) unless --format is given. This form writes only the output file: it
caches nothing unless --cache-url or the settings file selects a cache. Use
"timeline render" for cached renders.`,
		Version:       buildinfo.Get().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          usageArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRenderTo(cmd.Context(), args[0], args[1], flags)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	flags.register(root.Flags())
	registerRenderCompletions(root)

	// Register all subcommands
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// usageArgs accepts exactly an input and an output path.
func usageArgs(cmd *cobra.Command, args []string) error {
	if len(args) != 2 {
		return errors.New(errors.ErrCodeInvalidInput,
			"usage: %s <input.json> <output.pdf> (got %d arguments)", appName, len(args))
	}
	return nil
}

// =============================================================================
// Render Flags
// =============================================================================

// renderFlags are the flags shared by every command that renders.
type renderFlags struct {
	format      string  // output format(s), comma-separated
	labelPolicy string  // "auto" or "fixed"
	configPath  string  // optional TOML/YAML settings file
	pngScale    float64 // PNG resolution multiplier
	noCache     bool
	refresh     bool
	cacheURL    string

	// urlCacheOnly disables the default file cache; a cache is used only
	// when --cache-url or the settings file names one.
	urlCacheOnly bool
}

func (f *renderFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.format, "format", "f", "", "output format(s): pdf, svg, png, json (default: from output extension, else pdf)")
	fs.StringVar(&f.labelPolicy, "label-policy", "", "label column width: auto (fit widest label, default) or fixed")
	fs.StringVarP(&f.configPath, "config", "c", "", "settings file (.toml, .yaml)")
	fs.Float64Var(&f.pngScale, "png-scale", 0, "PNG scale factor (default 2)")
	fs.BoolVar(&f.noCache, "no-cache", false, "disable caching")
	fs.BoolVar(&f.refresh, "refresh", false, "ignore cached results and render again")
	fs.StringVar(&f.cacheURL, "cache-url", "", "cache location: directory, file://dir or redis://host:port/db (default: user cache dir)")
}

// options resolves the flags and the optional settings file into pipeline
// options. Flags override the settings file.
func (f renderFlags) options() (pipeline.Options, *config.File, error) {
	cfg, file, err := config.LoadConfig(f.configPath)
	if err != nil {
		return pipeline.Options{}, nil, err
	}
	if f.labelPolicy != "" {
		p, err := layout.ParseLabelPolicy(f.labelPolicy)
		if err != nil {
			return pipeline.Options{}, nil, err
		}
		cfg.LabelPolicy = p
	}

	opts := pipeline.Options{
		Config:   cfg,
		PNGScale: f.pngScale,
		Refresh:  f.refresh,
	}
	if opts.PNGScale == 0 && file.Render.PNGScale != nil {
		opts.PNGScale = *file.Render.PNGScale
	}
	return opts, file, nil
}

// formats returns the requested formats: the --format flag, else the
// extension of output, else the settings file default, else pdf.
func (f renderFlags) formats(output string, file *config.File) ([]string, error) {
	var formats []string
	switch {
	case f.format != "":
		formats = parseFormats(f.format)
	case output != "" && output != stdoutPath && errors.FormatFromPath(output, pipeline.ValidFormats) != "":
		formats = []string{errors.FormatFromPath(output, pipeline.ValidFormats)}
	case file != nil && file.Render.Format != "":
		formats = []string{file.Render.Format}
	default:
		formats = []string{pipeline.DefaultFormat}
	}
	if err := pipeline.ValidateFormats(formats); err != nil {
		return nil, err
	}
	return formats, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, f renderFlags, file *config.File) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, f, file)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cc, nil, c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context, f renderFlags, file *config.File) (cache.Cache, error) {
	if f.noCache {
		return cache.NewNullCache(), nil
	}
	url := f.cacheURL
	if url == "" && file != nil {
		url = file.Cache.URL
	}
	if url != "" {
		return cache.Open(ctx, url)
	}
	if f.urlCacheOnly {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		c.Logger.Debug("cache disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Debug("cache disabled", "dir", dir, "err", err)
		return cache.NewNullCache(), nil
	}
	return fc, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/timeline/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.DefaultFormat}
	}
	parts := strings.Split(s, ",")
	formats := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			formats = append(formats, p)
		}
	}
	return formats
}
