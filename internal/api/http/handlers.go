package http

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/wesky93/views/internal/audit"
	"github.com/wesky93/views/internal/badge"
	"github.com/wesky93/views/internal/models"
	"github.com/wesky93/views/pkg/response"
)

const (
	extensionRequiredMsg = "you must have .svg extension"
	serverErrorMsg       = "internal server error"
)

// handlePing handles health check requests to ensure the server is running.
func handlePing(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "pong")
}

// handleIndex serves a demo badge with an arbitrary value, so the root URL
// shows what an embedded badge looks like. Nothing is counted.
func handleIndex(renderer badge.Renderer, label string) http.HandlerFunc {
	const op = "api.http.handleIndex"

	return func(w http.ResponseWriter, r *http.Request) {
		value := strconv.Itoa(rand.IntN(100) + 1)

		markup, err := renderer.Render(label, value)
		if err != nil {
			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.PlainText(w, r, serverErrorMsg)
			return
		}

		if err := response.SVG(w, http.StatusOK, markup); err != nil {
			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})
		}
	}
}

// handleCountView handles the generic counting endpoint
// GET /views/{namespace}/{identifier}.
//
// The identifier segment must carry the .svg extension; without it the
// request is rejected before any record is touched.
func handleCountView(svc ViewService, renderer badge.Renderer, emitter audit.Emitter, label string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		namespace := chi.URLParam(r, "namespace")

		identifier, ok := trimSVGExt(chi.URLParam(r, "identifier"))
		if !ok {
			render.Status(r, http.StatusNotFound)
			render.PlainText(w, r, extensionRequiredMsg)
			return
		}

		countAndServe(w, r, svc, renderer, emitter, label, namespace, identifier, nil)
	}
}

// handleCountRepoView handles the composite form
// GET /views/{namespace}/{user}/{repo}, e.g. /views/github/{user}/{repo}.svg.
// The identifier is "user/repo" and both parts are kept as attrs on the
// record.
func handleCountRepoView(svc ViewService, renderer badge.Renderer, emitter audit.Emitter, label string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		namespace := chi.URLParam(r, "namespace")
		user := chi.URLParam(r, "user")

		repo, ok := trimSVGExt(chi.URLParam(r, "repo"))
		if !ok {
			render.Status(r, http.StatusNotFound)
			render.PlainText(w, r, extensionRequiredMsg)
			return
		}

		attrs := map[string]string{"user": user, "repo": repo}

		countAndServe(w, r, svc, renderer, emitter, label, namespace, user+"/"+repo, attrs)
	}
}

// countAndServe runs the counted-request pipeline: increment, render,
// respond, then audit. The audit event goes out strictly after the response
// body, so a failing sink can never alter what the caller sees.
func countAndServe(
	w http.ResponseWriter,
	r *http.Request,
	svc ViewService,
	renderer badge.Renderer,
	emitter audit.Emitter,
	label, namespace, identifier string,
	attrs map[string]string,
) {
	const op = "api.http.countAndServe"

	counter, err := svc.CountView(r.Context(), namespace, identifier, attrs)
	if err != nil {
		httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

		render.Status(r, http.StatusInternalServerError)
		render.PlainText(w, r, serverErrorMsg)
		return
	}

	markup, err := renderer.Render(label, strconv.FormatInt(counter.Total, 10))
	if err != nil {
		httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

		render.Status(r, http.StatusInternalServerError)
		render.PlainText(w, r, serverErrorMsg)
		return
	}

	if err := response.SVGNoCache(w, markup, makeETag(markup)); err != nil {
		httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})
	}

	emitAudit(r, emitter, counter)
}

// emitAudit emits the per-view audit event, best-effort. Failures are logged
// and dropped.
func emitAudit(r *http.Request, emitter audit.Emitter, counter *models.Counter) {
	const op = "api.http.emitAudit"

	event := audit.NewEvent(counter.Namespace, counter.Identifier, counter.Attrs, counter.Total, &audit.RequestContext{
		Method:     r.Method,
		Path:       r.URL.Path,
		RemoteAddr: r.RemoteAddr,
		UserAgent:  r.UserAgent(),
		RequestID:  middleware.GetReqID(r.Context()),
	})

	if err := emitter.Emit(r.Context(), event); err != nil {
		httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "audit_err": err})
	}
}

// trimSVGExt strips the required .svg extension from the trailing path
// segment, reporting whether it was present with a non-empty name.
func trimSVGExt(name string) (string, bool) {
	base, ok := strings.CutSuffix(name, ".svg")
	if !ok || base == "" {
		return "", false
	}

	return base, true
}

// makeETag fingerprints the rendered markup for the cache-validation header.
func makeETag(content string) string {
	sum := md5.Sum([]byte(content))
	return hex.EncodeToString(sum[:])
}
