package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hashicorp-forge/dropinblog/internal/server"
)

// maxDeliveryBytes bounds an inbound webhook body.
const maxDeliveryBytes = 10 << 20

type webhookResponse struct {
	Message string `json:"message"`
}

// WebhookHandler accepts a delivery for a configured trigger and hands the
// body, unmodified, to the trigger's manager.
func WebhookHandler(srv *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		nodeID := chi.URLParam(r, "nodeID")

		m, ok := srv.Triggers[nodeID]
		if !ok {
			respondError(w, http.StatusNotFound, "unknown trigger")
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDeliveryBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				respondError(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}
			respondError(w, http.StatusBadRequest, "error reading request body")
			return
		}

		if _, err := m.HandleDelivery(r.Context(), body); err != nil {
			srv.Logger.Error("error handling delivery", "node", nodeID, "error", err)
			respondError(w, http.StatusInternalServerError, "error handling delivery")
			return
		}

		respondJSON(w, http.StatusOK, webhookResponse{Message: "Workflow was started"})
	}
}
