package imagesource

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/cristianadrielbraun/qrstyle/internal/cache"
	"github.com/cristianadrielbraun/qrstyle/internal/errors"
)

const doc = `<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10"/>`

func TestDataURI(t *testing.T) {
	tests := []struct {
		name string
		ref  string
	}{
		{"base64", "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(doc))},
		{"percent encoded", "data:image/svg+xml,%3Csvg%20xmlns%3D%22http%3A%2F%2Fwww.w3.org%2F2000%2Fsvg%22%20width%3D%2210%22%20height%3D%2210%22%2F%3E"},
	}
	r := &Resolver{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := r.Fetch(context.Background(), tt.ref)
			if err != nil {
				t.Fatalf("Fetch() error: %v", err)
			}
			if string(data) != doc {
				t.Errorf("Fetch() = %q, want %q", data, doc)
			}
		})
	}

	if _, err := r.Fetch(context.Background(), "data:image/svg+xml;base64"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("malformed data URI error = %v, want INVALID_INPUT", err)
	}
}

func TestFileReference(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "logo.svg"), []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewResolver(dir, nil)
	data, err := r.Fetch(context.Background(), "logo.svg")
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if string(data) != doc {
		t.Errorf("Fetch() = %q", data)
	}

	if _, err := r.Fetch(context.Background(), "missing.svg"); err == nil {
		t.Error("missing file should fail")
	}

	r.AllowFiles = false
	if _, err := r.Fetch(context.Background(), "logo.svg"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("disabled files error = %v, want INVALID_INPUT", err)
	}
	if _, err := r.Fetch(context.Background(), "  "); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("empty reference error = %v, want INVALID_INPUT", err)
	}
}

func TestHTTPSourceCaches(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write([]byte(doc))
	}))
	defer srv.Close()

	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewResolver("", c)

	for i := 0; i < 3; i++ {
		data, err := r.Fetch(context.Background(), srv.URL+"/logo.svg")
		if err != nil {
			t.Fatalf("Fetch() error: %v", err)
		}
		if string(data) != doc {
			t.Errorf("Fetch() = %q", data)
		}
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("server hit %d times, want 1", got)
	}
}

func TestHTTPSourceStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	r := NewResolver("", cache.NewNullCache())
	_, err := r.Fetch(context.Background(), srv.URL+"/missing.svg")
	if !errors.Is(err, errors.ErrCodeNetwork) {
		t.Errorf("Fetch() error = %v, want NETWORK_ERROR", err)
	}

	r.HTTP = nil
	if _, err := r.Fetch(context.Background(), srv.URL); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("disabled http error = %v, want INVALID_INPUT", err)
	}
}

func TestHTTPSourceBlocksPrivateAddresses(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(doc))
	}))
	defer srv.Close()

	s := NewHTTPSource(nil)
	if _, err := s.Fetch(context.Background(), srv.URL+"/logo.svg"); !errors.Is(err, errors.ErrCodeNetwork) {
		t.Errorf("Fetch() error = %v, want NETWORK_ERROR", err)
	}
	if got := hits.Load(); got != 0 {
		t.Errorf("loopback server hit %d times, want 0", got)
	}

	s.AllowPrivate = true
	if _, err := s.Fetch(context.Background(), srv.URL+"/logo.svg"); err != nil {
		t.Errorf("Fetch() with private addresses allowed: %v", err)
	}
}

func TestPublicAddr(t *testing.T) {
	tests := []struct {
		addr string
		want bool
	}{
		{"8.8.8.8", true},
		{"2606:4700::1111", true},
		{"127.0.0.1", false},
		{"::1", false},
		{"10.1.2.3", false},
		{"172.16.0.1", false},
		{"192.168.1.1", false},
		{"169.254.169.254", false},
		{"100.64.0.1", false},
		{"0.0.0.0", false},
		{"::", false},
		{"fe80::1", false},
		{"fd00::1", false},
		{"::ffff:127.0.0.1", false},
	}
	for _, tt := range tests {
		if got := publicAddr(netip.MustParseAddr(tt.addr)); got != tt.want {
			t.Errorf("publicAddr(%s) = %v, want %v", tt.addr, got, tt.want)
		}
	}
}
