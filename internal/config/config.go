// Package config defines the style options of a QR render, their defaults,
// and how partial options are merged and loaded from TOML files.
package config

import (
	"math"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/cristianadrielbraun/qrstyle/internal/dots"
	"github.com/cristianadrielbraun/qrstyle/internal/errors"
)

// Options is a complete style snapshot for one render.
type Options struct {
	Width      int               `toml:"width"`
	Height     int               `toml:"height"`
	Data       string            `toml:"data"`
	Image      string            `toml:"image"`
	QR         QROptions         `toml:"qr"`
	ImageStyle ImageOptions      `toml:"image_options"`
	Dots       DotsOptions       `toml:"dots"`
	Background BackgroundOptions `toml:"background"`
}

// QROptions are passed to the encoder. ErrorCorrectionLevel also sets the
// share of modules an embedded image may cover.
type QROptions struct {
	// TypeNumber forces a QR version (1-40); 0 picks the smallest that fits.
	TypeNumber           int    `toml:"type_number"`
	Mode                 string `toml:"mode"`
	ErrorCorrectionLevel string `toml:"error_correction_level"`
}

// ImageOptions style the embedded image.
type ImageOptions struct {
	// HideBackgroundDots removes the modules under the image. Defaults to true.
	HideBackgroundDots *bool `toml:"hide_background_dots"`
	// ImageSize is the share of the error correction budget the image may use, in (0, 1].
	ImageSize float64 `toml:"image_size"`
	// Color re-tints the foreground path of the image when set.
	Color string `toml:"color"`
}

// DotsOptions style the modules.
type DotsOptions struct {
	Type  string `toml:"type"`
	Color string `toml:"color"`
}

// BackgroundOptions style the canvas background.
type BackgroundOptions struct {
	Color string `toml:"color"`
}

// Encoding modes accepted in QROptions.Mode.
const (
	ModeNumeric      = "Numeric"
	ModeAlphanumeric = "Alphanumeric"
	ModeByte         = "Byte"
	ModeKanji        = "Kanji"
)

// Default returns the default options.
func Default() Options {
	hide := true
	return Options{
		Width:  300,
		Height: 300,
		QR: QROptions{
			TypeNumber:           0,
			ErrorCorrectionLevel: "Q",
		},
		ImageStyle: ImageOptions{
			HideBackgroundDots: &hide,
			ImageSize:          0.4,
		},
		Dots: DotsOptions{
			Type:  dots.TypeSquare,
			Color: "#000",
		},
		Background: BackgroundOptions{
			Color: "#fff",
		},
	}
}

// HideBackgroundDots reports whether modules under the image are removed.
func (o Options) HideBackgroundDots() bool {
	return o.ImageStyle.HideBackgroundDots == nil || *o.ImageStyle.HideBackgroundDots
}

// Merge returns base with every non-zero field of overlay applied on top.
func Merge(base, overlay Options) Options {
	out := base
	if overlay.Width != 0 {
		out.Width = overlay.Width
	}
	if overlay.Height != 0 {
		out.Height = overlay.Height
	}
	if overlay.Data != "" {
		out.Data = overlay.Data
	}
	if overlay.Image != "" {
		out.Image = overlay.Image
	}
	if overlay.QR.TypeNumber != 0 {
		out.QR.TypeNumber = overlay.QR.TypeNumber
	}
	if overlay.QR.Mode != "" {
		out.QR.Mode = overlay.QR.Mode
	}
	if overlay.QR.ErrorCorrectionLevel != "" {
		out.QR.ErrorCorrectionLevel = overlay.QR.ErrorCorrectionLevel
	}
	if overlay.ImageStyle.HideBackgroundDots != nil {
		hide := *overlay.ImageStyle.HideBackgroundDots
		out.ImageStyle.HideBackgroundDots = &hide
	}
	if overlay.ImageStyle.ImageSize != 0 {
		out.ImageStyle.ImageSize = overlay.ImageStyle.ImageSize
	}
	if overlay.ImageStyle.Color != "" {
		out.ImageStyle.Color = overlay.ImageStyle.Color
	}
	if overlay.Dots.Type != "" {
		out.Dots.Type = overlay.Dots.Type
	}
	if overlay.Dots.Color != "" {
		out.Dots.Color = overlay.Dots.Color
	}
	if overlay.Background.Color != "" {
		out.Background.Color = overlay.Background.Color
	}
	return out
}

// Validate checks the options a render depends on.
func (o Options) Validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "canvas size must be positive, got %dx%d", o.Width, o.Height)
	}
	if o.QR.TypeNumber < 0 || o.QR.TypeNumber > 40 {
		return errors.New(errors.ErrCodeInvalidInput, "type number must be within 0-40, got %d", o.QR.TypeNumber)
	}
	switch strings.ToUpper(o.QR.ErrorCorrectionLevel) {
	case "L", "M", "Q", "H":
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown error correction level %q", o.QR.ErrorCorrectionLevel)
	}
	switch o.QR.Mode {
	case "", ModeNumeric, ModeAlphanumeric, ModeByte, ModeKanji:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown mode %q", o.QR.Mode)
	}
	if math.IsNaN(o.ImageStyle.ImageSize) || o.ImageStyle.ImageSize <= 0 || o.ImageStyle.ImageSize > 1 {
		return errors.New(errors.ErrCodeInvalidInput, "image size must be within (0, 1], got %v", o.ImageStyle.ImageSize)
	}
	if _, err := dots.New(o.Dots.Type); err != nil {
		return err
	}
	for name, c := range map[string]string{
		"dots color":       o.Dots.Color,
		"background color": o.Background.Color,
	} {
		if _, err := ParseColor(c); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidColor, err, "%s", name)
		}
	}
	if o.ImageStyle.Color != "" {
		if _, err := ParseColor(o.ImageStyle.Color); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidColor, err, "image color")
		}
	}
	return nil
}

// Load reads options from a TOML file and merges them over Default().
func Load(path string) (Options, error) {
	var loaded Options
	md, err := toml.DecodeFile(path, &loaded)
	if err != nil {
		return Options{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Options{}, errors.New(errors.ErrCodeInvalidInput, "unknown config key %q in %s", undecoded[0].String(), path)
	}
	return Merge(Default(), loaded), nil
}
