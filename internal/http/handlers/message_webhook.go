// Package handlers holds the HTTP handlers for the public API surface.
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/agendazap/agendazap/internal/chat"
	"github.com/agendazap/agendazap/pkg/logging"
)

// MessageWebhookHandler receives inbound messages from the gateway and routes
// them through the conversation machine. The synchronous reply, when present,
// rides back on the webhook response; all other outbound traffic goes through
// the gateway sender.
type MessageWebhookHandler struct {
	machine *chat.Machine
	logger  *logging.Logger
}

// NewMessageWebhookHandler creates the inbound webhook handler.
func NewMessageWebhookHandler(machine *chat.Machine, logger *logging.Logger) *MessageWebhookHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &MessageWebhookHandler{machine: machine, logger: logger}
}

type inboundMessage struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

type webhookReply struct {
	Reply string `json:"reply"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handle processes one inbound message event.
func (h *MessageWebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var msg inboundMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid payload"})
		return
	}
	if strings.TrimSpace(msg.Sender) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "sender is required"})
		return
	}

	reply, err := h.machine.HandleIncoming(r.Context(), msg.Sender, msg.Text)
	if err != nil {
		h.logger.Error("webhook: message handling failed", "sender", msg.Sender, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	if reply == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, webhookReply{Reply: reply})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}
