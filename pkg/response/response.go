// Package response writes image responses.
package response

import (
	"fmt"
	"io"
	"net/http"
)

const ContentTypeSVG = "image/svg+xml"

// SVG writes the markup as an svg image response.
func SVG(w http.ResponseWriter, statusCode int, markup string) error {
	const op = "response.SVG"

	w.Header().Set("Content-Type", ContentTypeSVG)
	w.WriteHeader(statusCode)

	if _, err := io.WriteString(w, markup); err != nil {
		return fmt.Errorf("%s: failed to write markup: %w", op, err)
	}

	return nil
}

// SVGNoCache writes the markup as an svg image response with headers
// instructing clients and intermediaries not to cache it, plus the content
// fingerprint as an ETag. Used for badges whose value changes on every
// request.
func SVGNoCache(w http.ResponseWriter, markup, etag string) error {
	const op = "response.SVGNoCache"

	h := w.Header()
	h.Set("Content-Type", ContentTypeSVG)
	h.Set("Cache-Control", "no-cache, no-store, must-revalidate")
	h.Set("Pragma", "no-cache")
	h.Set("Expires", "0")
	h.Set("ETag", etag)
	w.WriteHeader(http.StatusOK)

	if _, err := io.WriteString(w, markup); err != nil {
		return fmt.Errorf("%s: failed to write markup: %w", op, err)
	}

	return nil
}
