// Package render draws a QR module grid onto an SVG surface.
//
// A render clears the surface, fills the background and draws every dark
// module with the configured dot shape. When an image is configured the
// engine first fetches it, works out how many central modules it may cover
// from the error correction budget, draws the modules around that area and
// places the image in the middle. Only the image path suspends: it runs on
// its own goroutine and settles the returned Handle.
//
// An Engine serves one render at a time.
package render

import (
	"context"
	"image/color"

	"github.com/cristianadrielbraun/qrstyle/internal/config"
	"github.com/cristianadrielbraun/qrstyle/internal/dots"
	"github.com/cristianadrielbraun/qrstyle/internal/errors"
	"github.com/cristianadrielbraun/qrstyle/internal/grid"
	"github.com/cristianadrielbraun/qrstyle/internal/imagefit"
	"github.com/cristianadrielbraun/qrstyle/internal/imagesource"
	"github.com/cristianadrielbraun/qrstyle/internal/layout"
	"github.com/cristianadrielbraun/qrstyle/internal/logging"
	"github.com/cristianadrielbraun/qrstyle/internal/surface"
	"github.com/cristianadrielbraun/qrstyle/internal/svgdoc"
)

// Engine renders grids with a fixed set of options.
type Engine struct {
	opts       config.Options
	source     imagesource.Source
	surface    *surface.Surface
	drawer     dots.Drawer
	background color.NRGBA
	dotColor   color.NRGBA

	grid grid.Grid
	last *Handle
}

// New creates an engine. src fetches the configured image and may be nil
// when no image is used.
func New(opts config.Options, src imagesource.Source) (*Engine, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	drawer, err := dots.New(opts.Dots.Type)
	if err != nil {
		return nil, err
	}
	bg, err := config.ParseColor(opts.Background.Color)
	if err != nil {
		return nil, err
	}
	fg, err := config.ParseColor(opts.Dots.Color)
	if err != nil {
		return nil, err
	}
	return &Engine{
		opts:       opts,
		source:     src,
		surface:    surface.New(opts.Width, opts.Height),
		drawer:     drawer,
		background: bg,
		dotColor:   fg,
	}, nil
}

// Options returns the options the engine renders with.
func (e *Engine) Options() config.Options { return e.opts }

// Grid returns the grid of the last render, or nil.
func (e *Engine) Grid() grid.Grid { return e.grid }

// Render draws g, with the image overlay when one is configured.
func (e *Engine) Render(ctx context.Context, g grid.Grid) *Handle {
	return e.render(ctx, g, e.opts.Image != "")
}

// RenderImage draws g with the image overlay. It fails with MISSING_IMAGE
// when no image is configured.
func (e *Engine) RenderImage(ctx context.Context, g grid.Grid) *Handle {
	return e.render(ctx, g, true)
}

func (e *Engine) render(ctx context.Context, g grid.Grid, withImage bool) *Handle {
	if e.last != nil && e.last.pending() {
		return settled(errors.New(errors.ErrCodeInternal, "a render is already in progress"))
	}

	h := e.start(ctx, g, withImage)
	e.last = h
	return h
}

func (e *Engine) start(ctx context.Context, g grid.Grid, withImage bool) *Handle {
	logger := logging.FromContext(ctx)
	n := g.Size()

	geom, err := layout.Compute(n, e.opts.Width, e.opts.Height)
	if err != nil {
		return settled(err)
	}
	if withImage {
		if e.opts.Image == "" {
			return settled(errors.New(errors.ErrCodeMissingImage, "image overlay requested without an image"))
		}
		if e.source == nil {
			return settled(errors.New(errors.ErrCodeMissingImage, "no image source configured for %q", e.opts.Image))
		}
	}
	logger.Debug("layout", "modules", n, "dot", geom.DotSize, "x", geom.OriginX, "y", geom.OriginY)

	e.surface.Clear()
	e.drawBackground()
	e.grid = g

	if !withImage {
		e.drawDots(g, geom, nil)
		return settled(nil)
	}

	h := newHandle()
	// the fetch is not cancelled with ctx: callers stop waiting on the
	// Handle instead and a fresh engine is used for the next render
	fetchCtx := context.WithoutCancel(ctx)
	go func() {
		h.settle(e.drawImageAndDots(fetchCtx, g, geom))
	}()
	return h
}

func (e *Engine) drawBackground() {
	e.surface.SetFill(e.background)
	e.surface.FillRect(0, 0, float64(e.opts.Width), float64(e.opts.Height))
}

// drawDots draws the dark modules that pass filter, row by row.
func (e *Engine) drawDots(g grid.Grid, geom layout.Geometry, filter grid.Filter) {
	n := g.Size()
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			if !filter.Allows(row, col) || !g.IsDark(row, col) {
				continue
			}
			x, y := geom.Cell(row, col)
			e.surface.SetFill(e.dotColor)
			e.drawer.Draw(e.surface, x, y, geom.DotSize, Neighbors(g, filter, row, col))
		}
	}
}

// Neighbors returns the neighbor function for the module at (row, col): the
// module at offset (dx, dy) counts only if it is inside the grid, passes
// filter and is dark.
func Neighbors(g grid.Grid, filter grid.Filter, row, col int) dots.NeighborFunc {
	n := g.Size()
	return func(dx, dy int) bool {
		r, c := row+dy, col+dx
		if r < 0 || c < 0 || r >= n || c >= n {
			return false
		}
		if !filter.Allows(r, c) {
			return false
		}
		return g.IsDark(r, c)
	}
}

func (e *Engine) drawImageAndDots(ctx context.Context, g grid.Grid, geom layout.Geometry) error {
	logger := logging.FromContext(ctx)
	n := g.Size()

	progress := logging.NewProgress(logger)
	data, err := e.source.Fetch(ctx, e.opts.Image)
	if err != nil {
		return errors.Wrap(errors.ErrCodeImageUnavailable, err, "fetch image %q", e.opts.Image)
	}
	doc, err := svgdoc.Parse(ctx, data)
	if err != nil {
		return errors.Wrap(errors.ErrCodeImageUnavailable, err, "parse image %q", e.opts.Image)
	}
	progress.Done("image loaded", "ref", e.opts.Image, "width", doc.Width(), "height", doc.Height())

	fit := imagefit.Fit(imagefit.Request{
		OriginalWidth:     doc.Width(),
		OriginalHeight:    doc.Height(),
		MaxHiddenDots:     imagefit.MaxHiddenDots(e.opts.ImageStyle.ImageSize, e.opts.QR.ErrorCorrectionLevel, n),
		MaxHiddenAxisDots: imagefit.MaxHiddenAxisDots(n),
		DotSize:           geom.DotSize,
	})
	mask := imagefit.Mask{N: n, HideX: fit.HideXDots, HideY: fit.HideYDots}
	logger.Debug("image mask", "hideX", fit.HideXDots, "hideY", fit.HideYDots, "width", fit.Width, "height", fit.Height)

	e.drawDots(g, geom, mask.Filter(e.opts.HideBackgroundDots()))

	if fit.Width <= 0 || fit.Height <= 0 {
		logger.Warn("image does not fit the error correction budget", "ref", e.opts.Image, "modules", n)
		return nil
	}
	if e.opts.ImageStyle.Color != "" {
		tint, err := config.ParseColor(e.opts.ImageStyle.Color)
		if err != nil {
			return err
		}
		doc.Tint(surface.Hex(tint))
	}

	extent := geom.Extent(n)
	x := float64(geom.OriginX) + float64(extent-fit.Width)/2
	y := float64(geom.OriginY) + float64(extent-fit.Height)/2
	e.surface.DrawImage(doc.Embed(x, y, float64(fit.Width), float64(fit.Height)))
	return nil
}

// Serialize returns the SVG document of the last render. It fails while a
// render is in progress and when the last render failed, so that a partly
// drawn surface is never returned as a finished one. Before the first
// render it returns an empty document.
func (e *Engine) Serialize() (string, error) {
	if e.last != nil {
		if e.last.pending() {
			return "", errors.New(errors.ErrCodeInternal, "render still in progress")
		}
		if err := e.last.Err(); err != nil {
			return "", err
		}
	}
	return e.surface.Serialize(), nil
}
