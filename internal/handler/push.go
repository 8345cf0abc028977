package handler

import (
	"log/slog"
	"net/http"

	"github.com/okantomi/chorewheel/internal/store"
)

// PushHandler manages web push subscriptions.
type PushHandler struct {
	subs   *store.PushStore
	logger *slog.Logger

	vapidPublicKey string
}

func NewPushHandler(subs *store.PushStore, vapidPublicKey string, logger *slog.Logger) *PushHandler {
	return &PushHandler{subs: subs, vapidPublicKey: vapidPublicKey, logger: logger}
}

// PublicKey handles GET /api/push/public-key so browsers can subscribe.
func (h *PushHandler) PublicKey(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"public_key": h.vapidPublicKey})
}

type subscribeRequest struct {
	TenantID int64  `json:"tenant_id"`
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

// Subscribe handles POST /api/push/subscribe. Re-subscribing an existing
// endpoint updates its keys in place.
func (h *PushHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.TenantID == 0 || req.Endpoint == "" || req.Keys.P256dh == "" || req.Keys.Auth == "" {
		writeBadRequest(w, "tenant_id, endpoint and keys are required")
		return
	}

	sub, err := h.subs.Upsert(req.TenantID, req.Endpoint, req.Keys.P256dh, req.Keys.Auth)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

type unsubscribeRequest struct {
	Endpoint string `json:"endpoint"`
}

// Unsubscribe handles POST /api/push/unsubscribe.
func (h *PushHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	var req unsubscribeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.Endpoint == "" {
		writeBadRequest(w, "endpoint is required")
		return
	}

	if err := h.subs.DeleteByEndpoint(req.Endpoint); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
