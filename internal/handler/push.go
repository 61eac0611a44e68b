package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"shadowcal/internal/model"
	"shadowcal/internal/notify"
	"shadowcal/internal/store"
)

type PushHandler struct {
	subs    *store.PushStore
	service *notify.Service
	logger  *slog.Logger
}

func NewPushHandler(subs *store.PushStore, svc *notify.Service, logger *slog.Logger) *PushHandler {
	return &PushHandler{subs: subs, service: svc, logger: logger}
}

type subscribeRequest struct {
	AccountID string `json:"account_id"`
	Endpoint  string `json:"endpoint"`
	P256dh    string `json:"p256dh"`
	Auth      string `json:"auth"`
}

// Subscribe handles POST /api/push/subscribe
func (h *PushHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if req.AccountID == "" || req.Endpoint == "" || req.P256dh == "" || req.Auth == "" {
		writeError(w, http.StatusBadRequest, "account_id, endpoint, p256dh, and auth are required")
		return
	}

	sub, err := h.subs.Create(r.Context(), model.Ref(req.AccountID), req.Endpoint, req.P256dh, req.Auth)
	if err != nil {
		h.logger.Error("create push subscription", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save subscription")
		return
	}

	writeJSON(w, http.StatusCreated, sub)
}

// Unsubscribe handles DELETE /api/push/subscriptions/{id}
func (h *PushHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.subs.Delete(r.Context(), id); err != nil {
		h.logger.Error("delete push subscription", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete subscription")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// VAPIDKey handles GET /api/push/vapid-key
func (h *PushHandler) VAPIDKey(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"public_key": h.service.VAPIDPublicKey()})
}
