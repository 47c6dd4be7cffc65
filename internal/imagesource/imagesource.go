// Package imagesource fetches the image documents referenced by style options.
//
// A reference is resolved by its form:
//   - data:image/svg+xml;base64,... and data:image/svg+xml,... are decoded inline
//   - http:// and https:// URLs are downloaded (and cached)
//   - anything else is a file path, relative to the resolver's base directory
package imagesource

import (
	"context"
	"encoding/base64"
	"io"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/cristianadrielbraun/qrstyle/internal/cache"
	"github.com/cristianadrielbraun/qrstyle/internal/errors"
	"github.com/cristianadrielbraun/qrstyle/internal/logging"
)

// MaxDocumentSize bounds the size of a fetched document.
const MaxDocumentSize = 4 << 20

// Source returns the raw bytes of an image document.
type Source interface {
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, ref string) ([]byte, error)

// Fetch calls f.
func (f SourceFunc) Fetch(ctx context.Context, ref string) ([]byte, error) { return f(ctx, ref) }

// Resolver dispatches a reference to the matching source.
type Resolver struct {
	BaseDir string
	HTTP    *HTTPSource
	// AllowFiles enables filesystem references. The HTTP API disables it.
	AllowFiles bool
}

// NewResolver returns a resolver for local use: it reads files below baseDir
// and fetches URLs, private addresses included, through an HTTPSource backed
// by c.
func NewResolver(baseDir string, c cache.Cache) *Resolver {
	src := NewHTTPSource(c)
	src.AllowPrivate = true
	return &Resolver{
		BaseDir:    baseDir,
		HTTP:       src,
		AllowFiles: true,
	}
}

// Fetch implements Source.
func (r *Resolver) Fetch(ctx context.Context, ref string) ([]byte, error) {
	ref = strings.TrimSpace(ref)
	switch {
	case ref == "":
		return nil, errors.New(errors.ErrCodeInvalidInput, "empty image reference")
	case strings.HasPrefix(ref, "data:"):
		return decodeDataURI(ref)
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		if r.HTTP == nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "remote images are disabled")
		}
		return r.HTTP.Fetch(ctx, ref)
	default:
		if !r.AllowFiles {
			return nil, errors.New(errors.ErrCodeInvalidInput, "file images are disabled")
		}
		return r.readFile(ref)
	}
}

func (r *Resolver) readFile(ref string) ([]byte, error) {
	path := strings.TrimPrefix(ref, "file://")
	if !filepath.IsAbs(path) && r.BaseDir != "" {
		path = filepath.Join(r.BaseDir, path)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > MaxDocumentSize {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s exceeds %d bytes", path, MaxDocumentSize)
	}
	return os.ReadFile(path)
}

// decodeDataURI decodes data:[<mediatype>][;base64],<data>.
func decodeDataURI(ref string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(ref, "data:"), ",")
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput, "malformed data URI")
	}
	if strings.HasSuffix(meta, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode data URI")
		}
		return data, nil
	}
	data, err := url.PathUnescape(payload)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode data URI")
	}
	return []byte(data), nil
}

// HTTPSource downloads documents, caching successful responses.
type HTTPSource struct {
	// AllowPrivate permits connections to loopback, private, link-local and
	// unspecified addresses. It is off by default.
	AllowPrivate bool

	client *http.Client
	cache  cache.Cache
	ttl    time.Duration
}

// NewHTTPSource creates an HTTPSource with a 10 second timeout and a one
// day cache TTL. A nil cache disables caching.
func NewHTTPSource(c cache.Cache) *HTTPSource {
	if c == nil {
		c = cache.NewNullCache()
	}
	s := &HTTPSource{cache: c, ttl: 24 * time.Hour}

	// Control sees the resolved address of every connection, redirects included.
	dialer := &net.Dialer{Timeout: 5 * time.Second, Control: s.checkAddress}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = dialer.DialContext
	s.client = &http.Client{Timeout: 10 * time.Second, Transport: transport}
	return s
}

var sharedAddressSpace = netip.MustParsePrefix("100.64.0.0/10")

func (s *HTTPSource) checkAddress(network, address string, _ syscall.RawConn) error {
	if s.AllowPrivate {
		return nil
	}
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	ip, err := netip.ParseAddr(host)
	if err != nil {
		return err
	}
	if !publicAddr(ip) {
		return errors.New(errors.ErrCodeInvalidInput, "address %s is not allowed", ip)
	}
	return nil
}

// publicAddr reports whether ip is a globally routable unicast address.
func publicAddr(ip netip.Addr) bool {
	ip = ip.Unmap()
	switch {
	case ip.IsLoopback(), ip.IsPrivate(), ip.IsUnspecified(),
		ip.IsLinkLocalUnicast(), ip.IsLinkLocalMulticast(),
		ip.IsInterfaceLocalMulticast(), ip.IsMulticast(),
		sharedAddressSpace.Contains(ip):
		return false
	}
	return true
}

// Fetch downloads the document at rawURL.
func (s *HTTPSource) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	logger := logging.FromContext(ctx)
	key := "image:" + cache.Hash([]byte(rawURL))

	if data, hit, err := s.cache.Get(ctx, key); err == nil && hit {
		logger.Debug("image cache hit", "url", rawURL)
		return data, nil
	} else if err != nil {
		logger.Warn("image cache read failed", "url", rawURL, "err", err)
	}

	progress := logging.NewProgress(logger)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "build request")
	}
	req.Header.Set("Accept", "image/svg+xml, */*;q=0.5")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "GET %s", rawURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New(errors.ErrCodeNetwork, "GET %s: status %d", rawURL, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxDocumentSize+1))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "read %s", rawURL)
	}
	if len(data) > MaxDocumentSize {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s exceeds %d bytes", rawURL, MaxDocumentSize)
	}
	progress.Done("fetched image", "url", rawURL, "bytes", len(data))

	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		logger.Warn("image cache write failed", "url", rawURL, "err", err)
	}
	return data, nil
}
