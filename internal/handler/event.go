package handler

import (
	"context"
	"log/slog"
	"net/http"

	"shadowcal/internal/model"
	"shadowcal/internal/pipeline"
	"shadowcal/internal/presenter"
	"shadowcal/internal/trigger"
)

// EventHandler exposes the read side: rendered event views and reminder
// lookups.
type EventHandler struct {
	reader     *pipeline.Reader
	presenters *presenter.Registry
	logger     *slog.Logger
}

func NewEventHandler(reader *pipeline.Reader, presenters *presenter.Registry, logger *slog.Logger) *EventHandler {
	return &EventHandler{reader: reader, presenters: presenters, logger: logger}
}

func (h *EventHandler) control() trigger.Control {
	return trigger.Control{
		Store:      h.reader,
		Presenters: h.presenters,
		Logger:     h.logger,
	}
}

// HTML handles GET /api/events/{id}/html.
func (h *EventHandler) HTML(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, trigger.EventHTML, "text/html; charset=utf-8")
}

// Text handles GET /api/events/{id}/text.
func (h *EventHandler) Text(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, trigger.EventText, "text/calendar; charset=utf-8")
}

type renderFunc func(ctx context.Context, ctl trigger.Control, ev *model.Event) (string, error)

func (h *EventHandler) render(w http.ResponseWriter, r *http.Request, fn renderFunc, contentType string) {
	id := model.Ref(r.PathValue("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing event id")
		return
	}

	ev, err := h.reader.Event(r.Context(), id)
	if err != nil {
		h.logger.Error("load event", "event", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load event")
		return
	}
	if ev == nil {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}

	out, err := fn(r.Context(), h.control(), ev)
	if err != nil {
		h.logger.Error("render event", "event", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to render event")
		return
	}
	if out == "" {
		writeError(w, http.StatusNotFound, "no presenter for event")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(out))
}

// Reminders handles GET /api/documents/{id}/reminders.
func (h *EventHandler) Reminders(w http.ResponseWriter, r *http.Request) {
	id := model.Ref(r.PathValue("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing document id")
		return
	}

	events, err := trigger.Reminders(r.Context(), h.control(), id)
	if err != nil {
		h.logger.Error("list reminders", "document", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list reminders")
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}
