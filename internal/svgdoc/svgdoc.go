// Package svgdoc parses the vector image embedded in the center of a QR code
// and rewrites it for embedding.
package svgdoc

import (
	"bytes"
	"context"
	"encoding/xml"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/srwiley/oksvg"

	"github.com/cristianadrielbraun/qrstyle/internal/errors"
	"github.com/cristianadrielbraun/qrstyle/internal/logging"
	"github.com/cristianadrielbraun/qrstyle/internal/surface"
)

// DefaultSize is the intrinsic width and height assumed when the document
// does not declare one.
const DefaultSize = 64

// Attr is an element attribute. Prefixed names keep their prefix ("xlink:href").
type Attr struct {
	Name  string
	Value string
}

// Element is a node of the document tree. A node with an empty Name is a
// text node holding character data in Text; element children and text nodes
// keep their document order.
type Element struct {
	Name     string
	Attrs    []Attr
	Text     string
	Children []*Element
}

// IsText reports whether e is a text node.
func (e *Element) IsText() bool { return e.Name == "" }

// Attr returns the value of the named attribute.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr sets or adds the named attribute.
func (e *Element) SetAttr(name, value string) {
	for i := range e.Attrs {
		if e.Attrs[i].Name == name {
			e.Attrs[i].Value = value
			return
		}
	}
	e.Attrs = append(e.Attrs, Attr{Name: name, Value: value})
}

// localName strips a namespace prefix.
func (e *Element) localName() string {
	if i := strings.IndexByte(e.Name, ':'); i >= 0 {
		return e.Name[i+1:]
	}
	return e.Name
}

// Document is a parsed SVG image.
type Document struct {
	Root *Element
}

// Parse reads an SVG document. The first <svg> element becomes the root;
// data that is not well-formed markup, or has no svg element, is rejected.
//
// Scriptable content is removed while parsing: script, foreignObject and
// embedding elements, event handler attributes, and links other than
// fragment or data:image/ references.
func Parse(ctx context.Context, data []byte) (*Document, error) {
	tree, err := parseTree(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse svg")
	}
	root := find(tree, func(e *Element) bool { return e.localName() == "svg" })
	if root == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no svg element found")
	}
	doc := &Document{Root: root}
	if err := doc.check(); err != nil {
		logging.FromContext(ctx).Warn("logo may not rasterize", "err", err)
	}
	return doc, nil
}

// check runs the document through oksvg, which reads a narrower dialect
// than browsers do. The root size is left out since values such as "100%"
// or "auto" are legal here and only the leading number is used.
func (d *Document) check() error {
	root := &Element{Name: d.Root.Name, Children: d.Root.Children}
	for _, a := range d.Root.Attrs {
		if a.Name != "width" && a.Name != "height" {
			root.Attrs = append(root.Attrs, a)
		}
	}
	var b strings.Builder
	write(&b, root)
	_, err := oksvg.ReadIconStream(strings.NewReader(b.String()), oksvg.IgnoreErrorMode)
	return err
}

// unsafeElements are dropped together with their subtree.
var unsafeElements = map[string]bool{
	"script":        true,
	"foreignobject": true,
	"iframe":        true,
	"embed":         true,
	"object":        true,
}

func parseTree(data []byte) ([]*Element, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = false
	dec.Entity = xml.HTMLEntity

	var (
		top   []*Element
		stack []*Element
		// depth inside a dropped element, 0 when not skipping
		skip int
	)
	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if skip > 0 || unsafeElements[strings.ToLower(t.Name.Local)] {
				skip++
				continue
			}
			e := &Element{Name: qualified(t.Name)}
			for _, a := range t.Attr {
				if safeAttr(a) {
					e.Attrs = append(e.Attrs, Attr{Name: qualified(a.Name), Value: a.Value})
				}
			}
			if len(stack) == 0 {
				top = append(top, e)
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, e)
			}
			stack = append(stack, e)
		case xml.EndElement:
			if skip > 0 {
				skip--
				continue
			}
			if len(stack) == 0 || stack[len(stack)-1].Name != qualified(t.Name) {
				return nil, errors.New(errors.ErrCodeInvalidInput, "unexpected end element %s", qualified(t.Name))
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if skip > 0 || len(stack) == 0 {
				continue
			}
			parent := stack[len(stack)-1]
			if n := len(parent.Children); n > 0 && parent.Children[n-1].IsText() {
				parent.Children[n-1].Text += string(t)
			} else {
				parent.Children = append(parent.Children, &Element{Text: string(t)})
			}
		}
	}
	if skip > 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "unclosed element")
	}
	if len(stack) != 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "unclosed element %s", stack[len(stack)-1].Name)
	}
	return top, nil
}

// safeAttr reports whether a is kept: event handlers are dropped, links must
// stay inside the document or point at inline images.
func safeAttr(a xml.Attr) bool {
	name := strings.ToLower(a.Name.Local)
	if strings.HasPrefix(name, "on") {
		return false
	}
	value := strings.ToLower(strings.Join(strings.Fields(a.Value), ""))
	if strings.Contains(value, "javascript:") {
		return false
	}
	if name == "href" {
		return strings.HasPrefix(value, "#") || strings.HasPrefix(value, "data:image/")
	}
	return true
}

func qualified(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

// find returns the first element in document order matching fn.
func find(elems []*Element, fn func(*Element) bool) *Element {
	for _, e := range elems {
		if fn(e) {
			return e
		}
		if found := find(e.Children, fn); found != nil {
			return found
		}
	}
	return nil
}

func walk(e *Element, fn func(*Element)) {
	fn(e)
	for _, c := range e.Children {
		walk(c, fn)
	}
}

// Width returns the declared width, or DefaultSize.
func (d *Document) Width() float64 {
	return d.dimension("width")
}

// Height returns the declared height, or DefaultSize.
func (d *Document) Height() float64 {
	return d.dimension("height")
}

var leadingNumber = regexp.MustCompile(`^\s*[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?`)

func (d *Document) dimension(name string) float64 {
	v, ok := d.Root.Attr(name)
	if !ok || v == "" {
		return DefaultSize
	}
	m := leadingNumber.FindString(v)
	if m == "" {
		return DefaultSize
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(m), 64)
	if err != nil {
		return DefaultSize
	}
	return f
}

// Paths returns every <path> element in document order.
func (d *Document) Paths() []*Element {
	var paths []*Element
	walk(d.Root, func(e *Element) {
		if e.localName() == "path" {
			paths = append(paths, e)
		}
	})
	return paths
}

// Tint sets the fill of the last path, which is the foreground shape of
// single-color logos. Documents without paths are left unchanged.
func (d *Document) Tint(fill string) {
	paths := d.Paths()
	if len(paths) == 0 {
		return
	}
	paths[len(paths)-1].SetAttr("fill", fill)
}

// Embed returns the document as a nested <svg> element scaled into the
// box at (x, y) of size w×h.
func (d *Document) Embed(x, y, w, h float64) string {
	root := &Element{Name: d.Root.Name, Children: d.Root.Children}
	root.SetAttr("x", surface.Num(x))
	root.SetAttr("y", surface.Num(y))
	root.SetAttr("width", surface.Num(w))
	root.SetAttr("height", surface.Num(h))
	if _, ok := d.Root.Attr("viewBox"); !ok {
		root.SetAttr("viewBox", "0 0 "+surface.Num(d.Width())+" "+surface.Num(d.Height()))
	}
	for _, a := range d.Root.Attrs {
		switch a.Name {
		case "x", "y", "width", "height":
		default:
			root.SetAttr(a.Name, a.Value)
		}
	}

	var b strings.Builder
	write(&b, root)
	return b.String()
}

// String serializes the document.
func (d *Document) String() string {
	var b strings.Builder
	write(&b, d.Root)
	return b.String()
}

var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func write(b *strings.Builder, e *Element) {
	if e.IsText() {
		textEscaper.WriteString(b, e.Text)
		return
	}
	b.WriteByte('<')
	b.WriteString(e.Name)
	for _, a := range e.Attrs {
		b.WriteByte(' ')
		b.WriteString(a.Name)
		b.WriteString(`="`)
		xml.EscapeText(b, []byte(a.Value))
		b.WriteByte('"')
	}
	if len(e.Children) == 0 {
		b.WriteString("/>")
		return
	}
	b.WriteByte('>')
	for _, c := range e.Children {
		write(b, c)
	}
	b.WriteString("</")
	b.WriteString(e.Name)
	b.WriteByte('>')
}
