package state

import (
	"image"

	"AnimBoard/internal/geom"
)

// Geometry is the shared base of every active object. Width and Height keep
// their sign while a box is dragged out in any direction. Rotation is in degrees.
type Geometry struct {
	X        float64
	Y        float64
	Width    float64
	Height   float64
	Rotation float64
}

// Rect returns the geometry's bounding box, sign preserved.
func (g Geometry) Rect() geom.Rect {
	return geom.Rect{X: g.X, Y: g.Y, Width: g.Width, Height: g.Height}
}

// Center returns the box midpoint.
func (g Geometry) Center() geom.Point {
	return g.Rect().Center()
}

// Content is what an active object draws. It is sealed: ShapeContent,
// TextContent and ImageContent are the only implementations.
type Content interface {
	isContent()
}

// ShapeContent draws the brush's current shape kind.
type ShapeContent struct{}

// TextContent draws a single line of text.
type TextContent struct {
	Text string
}

// ImageContent draws a decoded bitmap stretched over the geometry.
type ImageContent struct {
	Src      string // encoded form, handed back verbatim on cancel
	Image    image.Image
	Modified bool
}

func (ShapeContent) isContent()  {}
func (TextContent) isContent()   {}
func (*ImageContent) isContent() {}

// Object is the single transient object under manipulation.
type Object struct {
	Geometry
	Content Content
}

// NewShape seeds a zero-size shape anchored at p.
func NewShape(p geom.Point) *Object {
	return &Object{Geometry: Geometry{X: p.X, Y: p.Y}, Content: ShapeContent{}}
}

// NewText seeds a zero-size, empty text object anchored at p.
func NewText(p geom.Point) *Object {
	return &Object{Geometry: Geometry{X: p.X, Y: p.Y}, Content: TextContent{}}
}

// NewImage wraps a decoded bitmap placed over g.
func NewImage(g Geometry, src string, img image.Image) *Object {
	return &Object{Geometry: g, Content: &ImageContent{Src: src, Image: img}}
}

// Image returns the image payload, if any.
func (o *Object) Image() (*ImageContent, bool) {
	c, ok := o.Content.(*ImageContent)
	return c, ok
}

// Text returns the text payload, if any.
func (o *Object) Text() (TextContent, bool) {
	c, ok := o.Content.(TextContent)
	return c, ok
}
