// Package styling ties the encoder and the render engine together: it keeps
// the current options, re-encodes the data on every update and hands the
// module grid to a fresh engine.
package styling

import (
	"context"

	"github.com/cristianadrielbraun/qrstyle/internal/config"
	"github.com/cristianadrielbraun/qrstyle/internal/encode"
	"github.com/cristianadrielbraun/qrstyle/internal/errors"
	"github.com/cristianadrielbraun/qrstyle/internal/grid"
	"github.com/cristianadrielbraun/qrstyle/internal/imagesource"
	"github.com/cristianadrielbraun/qrstyle/internal/logging"
	"github.com/cristianadrielbraun/qrstyle/internal/render"
)

// QRCode is a styled QR code.
type QRCode struct {
	opts   config.Options
	source imagesource.Source

	matrix *grid.Matrix
	engine *render.Engine
	handle *render.Handle
}

// New creates a QR code from the defaults with opts applied in order and
// starts rendering it when data is set. src may be nil if no image is used.
func New(ctx context.Context, src imagesource.Source, opts ...config.Options) (*QRCode, error) {
	q := &QRCode{opts: config.Default(), source: src}
	for _, o := range opts {
		q.opts = config.Merge(q.opts, o)
	}
	if err := q.Update(ctx, config.Options{}); err != nil {
		return nil, err
	}
	return q, nil
}

// Options returns the current options.
func (q *QRCode) Options() config.Options { return q.opts }

// Matrix returns the encoded module grid, or nil before any data was set.
func (q *QRCode) Matrix() *grid.Matrix { return q.matrix }

// Update applies partial over the current options, re-encodes and starts a
// new render. Without data nothing is rendered.
func (q *QRCode) Update(ctx context.Context, partial config.Options) error {
	opts := config.Merge(q.opts, partial)
	if err := opts.Validate(); err != nil {
		return err
	}
	q.opts = opts
	if opts.Data == "" {
		return nil
	}

	m, err := encode.Encode(opts.Data, opts.QR)
	if err != nil {
		return err
	}
	engine, err := render.New(opts, q.source)
	if err != nil {
		return err
	}
	logging.FromContext(ctx).Debug("encoded", "modules", m.Size(), "ecl", opts.QR.ErrorCorrectionLevel)

	q.matrix = m
	q.engine = engine
	q.handle = engine.Render(ctx, m)
	return nil
}

// SVG waits for the current render and returns the document.
func (q *QRCode) SVG(ctx context.Context) (string, error) {
	if q.handle == nil {
		return "", errors.New(errors.ErrCodeInvalidInput, "no data to render")
	}
	if err := q.handle.Wait(ctx); err != nil {
		return "", err
	}
	return q.engine.Serialize()
}
