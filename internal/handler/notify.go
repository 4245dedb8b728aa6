package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/forgezone/forge-zone/internal/apperror"
	"github.com/forgezone/forge-zone/internal/notify"
)

// NotifyHandler exposes the two notification operations directly.
//
// Normally the welcome email and mailing-list contact are fired together as
// a best-effort side effect of first login. These endpoints let an operator
// (or the frontend) trigger each one on its own — e.g. re-sending a bounced
// welcome email. Unlike the signup path, provider failures ARE reported
// here: the caller asked for exactly this delivery and needs to know.
type NotifyHandler struct {
	sink   notify.Sink
	logger *slog.Logger
}

// NewNotifyHandler creates a NotifyHandler. The sink must be non-nil —
// the server only registers these routes when Resend is configured.
func NewNotifyHandler(sink notify.Sink, logger *slog.Logger) *NotifyHandler {
	return &NotifyHandler{sink: sink, logger: logger}
}

type sendEmailRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type upsertContactRequest struct {
	Email        string `json:"email"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Unsubscribed bool   `json:"unsubscribed"`
}

// HandleSendEmail sends the welcome email to one address.
//
// HTTP: POST /api/send
// REQUEST BODY: {"email": "ada@example.com", "name": "Ada"}
func (h *NotifyHandler) HandleSendEmail(w http.ResponseWriter, r *http.Request) {
	var req sendEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid send JSON", slog.String("error", err.Error()))
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	if req.Email == "" {
		writeError(w, apperror.ValidationFailed("email", "email is required"))
		return
	}

	if err := h.sink.SendWelcomeEmail(r.Context(), req.Email, req.Name); err != nil {
		h.logger.Error("welcome email failed",
			slog.String("email", req.Email),
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusBadGateway, ErrorResponse{
			Error:   "provider_error",
			Message: "email provider rejected the request",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "welcome email sent"})
}

// HandleUpsertContact creates or updates a mailing-list contact.
//
// HTTP: PUT /api/send
// REQUEST BODY: {"email": "ada@example.com", "firstName": "Ada", "lastName": "Lovelace"}
//
// PUT because the operation is idempotent: re-sending the same contact
// leaves the audience in the same state.
func (h *NotifyHandler) HandleUpsertContact(w http.ResponseWriter, r *http.Request) {
	var req upsertContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid contact JSON", slog.String("error", err.Error()))
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	if req.Email == "" {
		writeError(w, apperror.ValidationFailed("email", "email is required"))
		return
	}

	if err := h.sink.UpsertContact(r.Context(), req.Email, req.FirstName, req.LastName, req.Unsubscribed); err != nil {
		h.logger.Error("contact upsert failed",
			slog.String("email", req.Email),
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusBadGateway, ErrorResponse{
			Error:   "provider_error",
			Message: "email provider rejected the request",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "contact saved"})
}
