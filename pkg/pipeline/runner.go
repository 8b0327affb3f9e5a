package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/timeline/pkg/cache"
	"github.com/matzehuels/timeline/pkg/errors"
	"github.com/matzehuels/timeline/pkg/fonts"
	"github.com/matzehuels/timeline/pkg/layout"
	"github.com/matzehuels/timeline/pkg/observability"
	"github.com/matzehuels/timeline/pkg/render"
	"github.com/matzehuels/timeline/pkg/timeline"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and HTTP server use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete parse → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	logger.Debug("pipeline options", "opts", opts.String())

	result := &Result{
		DocHash: cache.Hash(opts.Input),
	}

	// Stage 1: Parse
	parseStart := time.Now()
	tl, err := r.Parse(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Timeline = tl
	result.Stats.ParseTime = time.Since(parseStart)

	st := tl.Stats()
	result.Stats.NodeCount = st.Nodes
	result.Stats.JobCount = st.Jobs
	result.Stats.Overflow = st.Overflow
	result.Stats.Inverted = st.Inverted

	logger.Info("parsed timeline",
		"nodes", st.Nodes,
		"jobs", st.Jobs,
		"duration", result.Stats.ParseTime)
	warn(logger, tl, st)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 2: Layout
	layoutStart := time.Now()
	l, layoutHit, err := r.LayoutWithCacheInfo(ctx, tl, result.DocHash, opts)
	if err != nil {
		return nil, err
	}
	result.Layout = l
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	logger.Info("computed layout",
		"width", l.Width,
		"height", l.Height,
		"label_width", l.LabelWidth,
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, l, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Parse decodes and validates the input document.
func (r *Runner) Parse(ctx context.Context, opts Options) (*timeline.Timeline, error) {
	hooks := observability.Pipeline()
	hooks.OnParseStart(ctx, opts.Source)
	start := time.Now()

	tl, err := timeline.Parse(opts.Input)
	nodes := 0
	if tl != nil {
		nodes = len(tl.Nodes)
	}
	hooks.OnParseComplete(ctx, opts.Source, nodes, time.Since(start), err)
	if err != nil {
		if opts.Source != InlineSource {
			return nil, fmt.Errorf("%s: %w", opts.Source, err)
		}
		return nil, err
	}
	return tl, nil
}

// LayoutWithCacheInfo computes the layout of tl with caching and reports
// whether it came from the cache.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, tl *timeline.Timeline, docHash string, opts Options) (layout.Layout, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return layout.Layout{}, false, err
	}
	cacheKey := r.Keyer.LayoutKey(docHash, opts.LayoutKeyOpts())

	if !opts.Refresh {
		if data, ok := r.cacheGet(ctx, cacheKey, cache.KeyTypeLayout); ok {
			if cached, err := layout.UnmarshalLayout(data); err == nil {
				return cached, true, nil
			}
			// Unreadable entries fall through and are overwritten.
		}
	}

	hooks := observability.Pipeline()
	policy := string(opts.Config.LabelPolicy)
	hooks.OnLayoutStart(ctx, policy, len(tl.Nodes))
	start := time.Now()

	m, err := fonts.NewMeasurer(opts.Config.FontSize)
	if err != nil {
		err = errors.Wrap(errors.ErrCodeInternal, err, "load font")
		hooks.OnLayoutComplete(ctx, policy, time.Since(start), err)
		return layout.Layout{}, false, err
	}
	l := layout.Compute(tl, opts.Config, m)
	hooks.OnLayoutComplete(ctx, policy, time.Since(start), nil)

	if data, err := layout.MarshalLayout(l); err == nil {
		r.cacheSet(ctx, cacheKey, cache.KeyTypeLayout, data, cache.TTLLayout)
	}
	return l, false, nil
}

// RenderWithCacheInfo draws l in every requested format with caching and
// reports whether all artifacts came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l layout.Layout, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	layoutData, err := layout.MarshalLayout(l)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "serialize layout for cache key")
	}
	layoutHash := cache.Hash(layoutData)

	artifacts := make(map[string][]byte, len(opts.Formats))
	allCached := true

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	for _, format := range opts.Formats {
		if _, done := artifacts[format]; done {
			continue
		}
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if !opts.Refresh {
			if data, ok := r.cacheGet(ctx, cacheKey, cache.KeyTypeArtifact); ok {
				artifacts[format] = data
				continue
			}
		}
		allCached = false

		if format == FormatJSON {
			artifacts[format] = layoutData
		} else {
			data, err := render.Render(l, format, opts.renderOptions()...)
			if err != nil {
				hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
				return nil, false, err
			}
			artifacts[format] = data
		}
		r.cacheSet(ctx, cacheKey, cache.KeyTypeArtifact, artifacts[format], cache.TTLArtifact)
	}

	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), nil)
	return artifacts, allCached, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) cacheGet(ctx context.Context, key, keyType string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "type", keyType, "err", err)
		return nil, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	r.Logger.Debug("cache hit", "type", keyType)
	return data, true
}

func (r *Runner) cacheSet(ctx context.Context, key, keyType string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// warn logs documents that break the timeline invariants. They still render:
// overflowing jobs run past the right page edge and inverted jobs are drawn
// with a negative width.
func warn(logger *log.Logger, tl *timeline.Timeline, st timeline.Stats) {
	if st.Overflow > 0 {
		logger.Warn("jobs end after the timeline duration",
			"count", st.Overflow,
			"max_to", st.MaxTo,
			"duration", tl.Duration)
	}
	if st.Inverted > 0 {
		logger.Warn("jobs end before they start", "count", st.Inverted)
	}
}
