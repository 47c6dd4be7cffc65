// Package encode turns text into a module grid with yeqown/go-qrcode.
package encode

import (
	"strings"

	"github.com/yeqown/go-qrcode/v2"

	"github.com/cristianadrielbraun/qrstyle/internal/config"
	"github.com/cristianadrielbraun/qrstyle/internal/errors"
	"github.com/cristianadrielbraun/qrstyle/internal/grid"
)

const alphanumericChars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ $%*+-./:"

// DetectMode returns the most compact encoding mode able to hold data.
func DetectMode(data string) string {
	switch {
	case data == "":
		return config.ModeByte
	case strings.Trim(data, "0123456789") == "":
		return config.ModeNumeric
	case strings.Trim(data, alphanumericChars) == "":
		return config.ModeAlphanumeric
	default:
		return config.ModeByte
	}
}

// Encode builds the QR module grid for data.
func Encode(data string, opts config.QROptions) (*grid.Matrix, error) {
	if data == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no data to encode")
	}

	level, err := errorCorrection(opts.ErrorCorrectionLevel)
	if err != nil {
		return nil, err
	}
	mode := opts.Mode
	if mode == "" {
		mode = DetectMode(data)
	}
	encMode, err := encodingMode(mode)
	if err != nil {
		return nil, err
	}

	encOpts := []qrcode.EncodeOption{level, encMode}
	if opts.TypeNumber > 0 {
		encOpts = append(encOpts, qrcode.WithVersion(opts.TypeNumber))
	}

	qrc, err := qrcode.NewWith(data, encOpts...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "encode %d bytes", len(data))
	}

	w := &matrixWriter{}
	if err := qrc.Save(w); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read QR matrix")
	}
	return w.m, nil
}

func errorCorrection(level string) (qrcode.EncodeOption, error) {
	switch strings.ToUpper(level) {
	case "L":
		return qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionLow), nil
	case "M":
		return qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionMedium), nil
	case "Q", "":
		return qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionQuart), nil
	case "H":
		return qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionHighest), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unknown error correction level %q", level)
}

func encodingMode(mode string) (qrcode.EncodeOption, error) {
	switch mode {
	case config.ModeNumeric:
		return qrcode.WithEncodingMode(qrcode.EncModeNumeric), nil
	case config.ModeAlphanumeric:
		return qrcode.WithEncodingMode(qrcode.EncModeAlphanumeric), nil
	case config.ModeByte:
		return qrcode.WithEncodingMode(qrcode.EncModeByte), nil
	case config.ModeKanji:
		return qrcode.WithEncodingMode(qrcode.EncModeJP), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unknown mode %q", mode)
}

// matrixWriter implements qrcode.Writer by copying the symbol, without its
// quiet zone, into a grid.Matrix.
type matrixWriter struct {
	m *grid.Matrix
}

func (w *matrixWriter) Write(mat qrcode.Matrix) error {
	m := grid.NewMatrix(mat.Width())
	mat.Iterate(qrcode.IterDirection_ROW, func(x, y int, v qrcode.QRValue) {
		m.Set(y, x, v.IsSet())
	})
	w.m = m
	return nil
}

func (w *matrixWriter) Close() error { return nil }
