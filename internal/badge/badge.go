// Package badge renders label/value pairs into SVG badge markup.
package badge

import (
	"fmt"

	"github.com/narqo/go-badge"
)

// valueColor keeps the original badge style: gray label (the library's
// fixed left side), green value.
const valueColor = badge.Color("#97ca00")

// Renderer maps a display label and value to image markup. Implementations
// must be pure: identical input yields byte-identical markup.
type Renderer interface {
	Render(label, value string) (string, error)
}

// SVGRenderer renders flat-style SVG badges.
type SVGRenderer struct{}

func NewSVGRenderer() *SVGRenderer {
	return &SVGRenderer{}
}

func (r *SVGRenderer) Render(label, value string) (string, error) {
	const op = "badge.SVGRenderer.Render"

	b, err := badge.RenderBytes(label, value, valueColor)
	if err != nil {
		return "", fmt.Errorf("%s: failed to render badge: %w", op, err)
	}

	return string(b), nil
}
