package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/qrstyle/internal/config"
	"github.com/cristianadrielbraun/qrstyle/internal/errors"
	"github.com/cristianadrielbraun/qrstyle/internal/logging"
	"github.com/cristianadrielbraun/qrstyle/internal/styling"
)

// maxCanvas bounds the width and height accepted from a query.
const maxCanvas = 4096

// contentSecurityPolicy keeps a served SVG opened as a document from running
// script or loading anything but inline images.
const contentSecurityPolicy = "default-src 'none'; style-src 'unsafe-inline'; img-src data:"

// normalizeHTTPURL validates and normalizes a URL string for QR generation.
// It ensures an http/https scheme, a non-empty hostname, and returns a cleaned absolute URL.
func normalizeHTTPURL(s string) (string, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return "", errors.New(errors.ErrCodeInvalidInput, "URL parameter is required")
	}
	// If missing scheme, default to https
	if !strings.Contains(v, "://") {
		v = "https://" + v
	}
	if len(v) > 4096 {
		return "", errors.New(errors.ErrCodeInvalidInput, "URL is too long")
	}
	u, err := url.ParseRequestURI(v)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", errors.New(errors.ErrCodeInvalidInput, "only http and https URLs are supported")
	}
	if u.Host == "" {
		return "", errors.New(errors.ErrCodeInvalidInput, "URL must include a valid host")
	}
	return u.String(), nil
}

// QRCodeHandler renders a styled QR code as SVG.
func (h *Handler) QRCodeHandler(c *gin.Context) {
	ctx := c.Request.Context()

	opts, err := optionsFromQuery(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	q, err := styling.New(ctx, h.source, opts)
	if err != nil {
		h.fail(c, err)
		return
	}
	svg, err := q.SVG(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}

	logging.FromContext(ctx).Debug("rendered", "modules", q.Matrix().Size(), "bytes", len(svg))
	c.Header("Cache-Control", "public, max-age=3600")
	c.Header("Content-Security-Policy", contentSecurityPolicy)
	c.Header("X-Content-Type-Options", "nosniff")
	c.Data(http.StatusOK, "image/svg+xml", []byte(svg))
}

// optionsFromQuery reads the style options of a request. Parameters left
// out keep their defaults.
func optionsFromQuery(c *gin.Context) (config.Options, error) {
	var o config.Options
	var err error

	if raw := strings.TrimSpace(c.Query("url")); raw != "" {
		if o.Data, err = normalizeHTTPURL(raw); err != nil {
			return o, err
		}
	} else {
		o.Data = c.Query("data")
	}
	if o.Data == "" {
		return o, errors.New(errors.ErrCodeInvalidInput, "data or url parameter is required")
	}

	if o.Width, err = intParam(c, "width", 1, maxCanvas); err != nil {
		return o, err
	}
	if o.Height, err = intParam(c, "height", 1, maxCanvas); err != nil {
		return o, err
	}
	if o.QR.TypeNumber, err = intParam(c, "typeNumber", 0, 40); err != nil {
		return o, err
	}
	o.QR.ErrorCorrectionLevel = strings.ToUpper(c.Query("ecl"))

	o.Background.Color = c.Query("bg")
	o.Dots.Color = c.Query("fg")
	o.Dots.Type = c.Query("dotType")

	if image := strings.TrimSpace(c.Query("image")); image != "" {
		if !remoteImage(image) {
			return o, errors.New(errors.ErrCodeInvalidInput, "image must be an http(s) or data URL")
		}
		o.Image = image
	}
	if raw := c.Query("imageSize"); raw != "" {
		if o.ImageStyle.ImageSize, err = strconv.ParseFloat(raw, 64); err != nil {
			return o, errors.Wrap(errors.ErrCodeInvalidInput, err, "imageSize must be a number")
		}
	}
	o.ImageStyle.Color = c.Query("imageColor")
	if raw := c.Query("hideBackgroundDots"); raw != "" {
		hide, err := strconv.ParseBool(raw)
		if err != nil {
			return o, errors.Wrap(errors.ErrCodeInvalidInput, err, "hideBackgroundDots must be true or false")
		}
		o.ImageStyle.HideBackgroundDots = &hide
	}
	return o, nil
}

// intParam parses an optional integer parameter within [lo, hi]. A missing
// parameter yields 0.
func intParam(c *gin.Context, name string, lo, hi int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "%s must be an integer", name)
	}
	if v < lo || v > hi {
		return 0, errors.New(errors.ErrCodeInvalidInput, "%s must be within %d-%d, got %d", name, lo, hi, v)
	}
	return v, nil
}

func remoteImage(ref string) bool {
	return strings.HasPrefix(ref, "https://") || strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "data:")
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	logger := logging.FromContext(c.Request.Context())
	if status >= http.StatusInternalServerError {
		logger.Error("qr request failed", "err", err)
		c.JSON(status, gin.H{"error": errors.Message(err)})
		return
	}
	logger.Debug("qr request rejected", "err", err)
	c.JSON(status, gin.H{"error": errors.UserMessage(err)})
}

// statusFor maps an error code to an HTTP status.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidStyle, errors.ErrCodeInvalidColor,
		errors.ErrCodeGridTooLarge, errors.ErrCodeMissingImage:
		return http.StatusBadRequest
	case errors.ErrCodeImageUnavailable, errors.ErrCodeNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
