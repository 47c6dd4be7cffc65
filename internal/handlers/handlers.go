package handlers

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cristianadrielbraun/qrstyle/internal/cache"
	"github.com/cristianadrielbraun/qrstyle/internal/imagesource"
	"github.com/cristianadrielbraun/qrstyle/internal/logging"
)

// Handler holds the dependencies of the HTTP handlers.
type Handler struct {
	source imagesource.Source
	logger *log.Logger
}

// New returns a Handler fetching images through src.
func New(src imagesource.Source, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{source: src, logger: logger}
}

// NewImageSource returns the image source for API requests: data URIs and
// http(s) URLs on public addresses. Local files are never read.
func NewImageSource(c cache.Cache) imagesource.Source {
	return &imagesource.Resolver{HTTP: imagesource.NewHTTPSource(c)}
}

// Router builds the gin engine serving the API.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(h.RequestID())
	r.Use(h.AccessLog())

	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	{
		api.GET("/qr", h.QRCodeHandler)
	}
	return r
}

// Healthz reports that the server is up.
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

const requestIDHeader = "X-Request-ID"

// RequestID tags every request with an id, taken from the X-Request-ID
// header when present, and attaches a logger carrying it to the request
// context.
func (h *Handler) RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)

		ctx := logging.WithLogger(c.Request.Context(), h.logger.With("request", id))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// AccessLog logs one line per request.
func (h *Handler) AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger := logging.FromContext(c.Request.Context())
		keyvals := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed", time.Since(start).Round(time.Microsecond),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Error("request", keyvals...)
			return
		}
		logger.Info("request", keyvals...)
	}
}
