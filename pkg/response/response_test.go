package response

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSVG(t *testing.T) {
	rec := httptest.NewRecorder()

	err := SVG(rec, http.StatusOK, "<svg></svg>")

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ContentTypeSVG, rec.Header().Get("Content-Type"))
	assert.Equal(t, "<svg></svg>", rec.Body.String())
}

func TestSVGNoCache(t *testing.T) {
	rec := httptest.NewRecorder()

	err := SVGNoCache(rec, "<svg></svg>", "abc123")

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ContentTypeSVG, rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache, no-store, must-revalidate", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "no-cache", rec.Header().Get("Pragma"))
	assert.Equal(t, "0", rec.Header().Get("Expires"))
	assert.Equal(t, "abc123", rec.Header().Get("ETag"))
	assert.Equal(t, "<svg></svg>", rec.Body.String())
}
