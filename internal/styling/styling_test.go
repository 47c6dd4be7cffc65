package styling

import (
	"context"
	"strings"
	"testing"

	"github.com/cristianadrielbraun/qrstyle/internal/config"
	"github.com/cristianadrielbraun/qrstyle/internal/errors"
	"github.com/cristianadrielbraun/qrstyle/internal/imagesource"
)

const logo = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10"><path d="M0 0h10v10H0z"/></svg>`

func TestSVG(t *testing.T) {
	q, err := New(context.Background(), nil, config.Options{Data: "https://example.com"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	svg, err := q.SVG(context.Background())
	if err != nil {
		t.Fatalf("SVG: %v", err)
	}
	if !strings.HasPrefix(svg, "<svg") || !strings.HasSuffix(svg, "</svg>") {
		t.Errorf("not an svg document: %.80s", svg)
	}
	if !strings.Contains(svg, `width="300" height="300"`) {
		t.Error("default canvas size should be 300x300")
	}
	if got, want := strings.Count(svg, `fill="#000000"`), q.Matrix().DarkCount(); got != want {
		t.Errorf("drew %d modules, want %d", got, want)
	}
}

func TestNoData(t *testing.T) {
	q, err := New(context.Background(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if q.Matrix() != nil {
		t.Error("nothing should be encoded without data")
	}
	if _, err := q.SVG(context.Background()); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	q, err := New(ctx, nil, config.Options{Data: "42"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := q.Update(ctx, config.Options{Dots: config.DotsOptions{Type: "dots", Color: "navy"}}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if q.Options().Data != "42" {
		t.Error("Update should keep earlier options")
	}
	svg, err := q.SVG(ctx)
	if err != nil {
		t.Fatalf("SVG: %v", err)
	}
	if strings.Contains(svg, `fill="#000000"`) {
		t.Error("old dot color still present")
	}
	if !strings.Contains(svg, `<circle`) || !strings.Contains(svg, `fill="#000080"`) {
		t.Error("dots should be navy circles")
	}
}

func TestUpdateRejectsInvalidOptions(t *testing.T) {
	ctx := context.Background()
	q, err := New(ctx, nil, config.Options{Data: "42"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	before := q.Options()
	err = q.Update(ctx, config.Options{Dots: config.DotsOptions{Type: "hearts"}})
	if !errors.Is(err, errors.ErrCodeInvalidStyle) {
		t.Fatalf("err = %v, want INVALID_STYLE", err)
	}
	if q.Options().Dots.Type != before.Dots.Type {
		t.Error("failed Update must not change the options")
	}
}

func TestGridTooLarge(t *testing.T) {
	q, err := New(context.Background(), nil, config.Options{Data: "hello", Width: 10, Height: 10})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := q.SVG(context.Background()); !errors.Is(err, errors.ErrCodeGridTooLarge) {
		t.Errorf("err = %v, want GRID_TOO_LARGE", err)
	}
}

func TestImage(t *testing.T) {
	src := imagesource.SourceFunc(func(ctx context.Context, ref string) ([]byte, error) {
		return []byte(logo), nil
	})
	q, err := New(context.Background(), src, config.Options{
		Data:       "https://example.com",
		Image:      "logo.svg",
		QR:         config.QROptions{ErrorCorrectionLevel: "H"},
		ImageStyle: config.ImageOptions{Color: "#e11d48"},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	svg, err := q.SVG(context.Background())
	if err != nil {
		t.Fatalf("SVG: %v", err)
	}
	if !strings.Contains(svg, `fill="#e11d48"`) {
		t.Error("image should be tinted")
	}
	if got := strings.Count(svg, `fill="#000000"`); got >= q.Matrix().DarkCount() {
		t.Errorf("drew %d modules, want fewer than %d", got, q.Matrix().DarkCount())
	}
}
