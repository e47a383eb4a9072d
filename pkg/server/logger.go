package server

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
)

// JobLogHandler is a slog.Handler that captures records into the job
// record, so run logs are queryable through the API while the run executes.
type JobLogHandler struct {
	Service *Service
	JobID   uuid.UUID
}

func NewJobLogHandler(s *Service, jobID uuid.UUID) *JobLogHandler {
	return &JobLogHandler{
		Service: s,
		JobID:   jobID,
	}
}

func (h *JobLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return true // Log everything
}

func (h *JobLogHandler) Handle(ctx context.Context, r slog.Record) error {
	attrs := make(map[string]interface{})
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	metaJSON, err := json.Marshal(attrs)
	if err != nil {
		metaJSON = []byte("{}")
	}

	h.Service.appendLog(h.JobID, LogEntry{
		Timestamp: r.Time,
		Level:     r.Level.String(),
		Message:   r.Message,
		Metadata:  metaJSON,
	})
	return nil
}

func (h *JobLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	// Attribute chaining is not needed for the flat per-run log; the base
	// handler already captures call-site attrs.
	return h
}

func (h *JobLogHandler) WithGroup(name string) slog.Handler {
	return h
}
