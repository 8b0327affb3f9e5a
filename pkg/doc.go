// Package pkg provides the libraries behind the timeline renderer.
//
// # Overview
//
// Timeline turns a JSON description of a schedule (nodes, each owning a list
// of time-stamped jobs) into a single-page Gantt chart. The pkg directory is
// organized by stage:
//
//  1. [timeline] - Document model, JSON loading and validation
//  2. [layout] - Deterministic geometry and the ordered drawing commands
//  3. [render] - PDF, SVG and PNG backends that replay the commands
//  4. [pipeline] - Orchestration (parse → layout → render) with caching
//  5. [cache], [config], [fonts], [errors], [observability] - Support
//
// # Architecture
//
//	timeline JSON
//	     ↓
//	[timeline] package (parse + validate)
//	     ↓
//	[layout] package (page size, rows, job boxes, placed text)
//	     ↓
//	[render] package (PDF/SVG/PNG surface, or layout JSON)
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/timeline/pkg/fonts"
//	    "github.com/matzehuels/timeline/pkg/layout"
//	    "github.com/matzehuels/timeline/pkg/render"
//	    "github.com/matzehuels/timeline/pkg/timeline"
//	)
//
//	tl, _ := timeline.ImportJSON("trace.json")
//	cfg := layout.Default()
//	m, _ := fonts.NewMeasurer(cfg.FontSize)
//	l := layout.Compute(tl, cfg, m)
//	pdf, _ := render.Render(l, render.FormatPDF)
//
// The same flow with caching and hooks is available through
// [pipeline.Runner], which the CLI and the HTTP server share.
package pkg
