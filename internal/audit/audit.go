// Package audit emits one structured event per successfully counted view.
//
// Emission is best-effort by contract: callers log and discard emitter
// errors, and a failed emission never affects the response or the committed
// counter value.
package audit

import (
	"context"
	"log/slog"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// RequestContext carries the HTTP request details attached to an event.
type RequestContext struct {
	Method     string `json:"method"`
	Path       string `json:"path"`
	RemoteAddr string `json:"remote_addr"`
	UserAgent  string `json:"user_agent,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
}

// Event is the record written to the audit sink for one counted view. Total
// is the post-increment value that was actually persisted.
type Event struct {
	ID         string            `json:"event_id"`
	Namespace  string            `json:"namespace"`
	Identifier string            `json:"identifier"`
	Attrs      map[string]string `json:"attrs,omitempty"`
	Total      int64             `json:"total_views"`
	ViewedAt   time.Time         `json:"view_at"`
	Request    *RequestContext   `json:"request,omitempty"`
}

// NewEvent stamps a fresh event with a unique ID and the current time.
func NewEvent(namespace, identifier string, attrs map[string]string, total int64, reqCtx *RequestContext) Event {
	return Event{
		ID:         gonanoid.Must(),
		Namespace:  namespace,
		Identifier: identifier,
		Attrs:      attrs,
		Total:      total,
		ViewedAt:   time.Now().UTC(),
		Request:    reqCtx,
	}
}

// Emitter delivers events to the configured sink.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}

// LogEmitter writes events to the structured log. It is the development
// default sink.
type LogEmitter struct {
	logger *slog.Logger
}

func NewLogEmitter(logger *slog.Logger) *LogEmitter {
	return &LogEmitter{
		logger: logger,
	}
}

func (e *LogEmitter) Emit(ctx context.Context, event Event) error {
	e.logger.InfoContext(ctx, "view counted",
		slog.String("event_id", event.ID),
		slog.String("namespace", event.Namespace),
		slog.String("identifier", event.Identifier),
		slog.Int64("total_views", event.Total),
		slog.Time("view_at", event.ViewedAt),
	)

	return nil
}
