package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgezone/forge-zone/internal/handler"
)

// recordingSink captures dispatched notifications and can be told to fail.
type recordingSink struct {
	emails    []string
	contacts  []string
	sinkErr   error
	lastUnsub bool
	lastFirst string
}

func (s *recordingSink) SendWelcomeEmail(ctx context.Context, email, displayName string) error {
	if s.sinkErr != nil {
		return s.sinkErr
	}
	s.emails = append(s.emails, email)
	return nil
}

func (s *recordingSink) UpsertContact(ctx context.Context, email, firstName, lastName string, unsubscribed bool) error {
	if s.sinkErr != nil {
		return s.sinkErr
	}
	s.contacts = append(s.contacts, email)
	s.lastFirst = firstName
	s.lastUnsub = unsubscribed
	return nil
}

func newNotifyHandler(sink *recordingSink) *handler.NotifyHandler {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return handler.NewNotifyHandler(sink, logger)
}

func postJSON(t *testing.T, h http.HandlerFunc, method, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, "/api/send", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func TestNotifyHandler_SendEmail(t *testing.T) {
	sink := &recordingSink{}
	h := newNotifyHandler(sink)

	rr := postJSON(t, h.HandleSendEmail, http.MethodPost, `{"email": "ada@example.com", "name": "Ada"}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{"ada@example.com"}, sink.emails)
	assert.Empty(t, sink.contacts)
}

func TestNotifyHandler_SendEmail_MissingEmail(t *testing.T) {
	sink := &recordingSink{}
	h := newNotifyHandler(sink)

	rr := postJSON(t, h.HandleSendEmail, http.MethodPost, `{"name": "Ada"}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var errRes handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&errRes))
	assert.Equal(t, "validation_error", errRes.Error)
	assert.Empty(t, sink.emails)
}

func TestNotifyHandler_SendEmail_ProviderFailure(t *testing.T) {
	sink := &recordingSink{sinkErr: errors.New("resend: 500")}
	h := newNotifyHandler(sink)

	rr := postJSON(t, h.HandleSendEmail, http.MethodPost, `{"email": "ada@example.com"}`)

	// Unlike the signup side effect, a direct send reports the failure.
	assert.Equal(t, http.StatusBadGateway, rr.Code)

	var errRes handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&errRes))
	assert.Equal(t, "provider_error", errRes.Error)
}

func TestNotifyHandler_SendEmail_InvalidJSON(t *testing.T) {
	h := newNotifyHandler(&recordingSink{})

	rr := postJSON(t, h.HandleSendEmail, http.MethodPost, `{`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestNotifyHandler_UpsertContact(t *testing.T) {
	sink := &recordingSink{}
	h := newNotifyHandler(sink)

	rr := postJSON(t, h.HandleUpsertContact, http.MethodPut,
		`{"email": "ada@example.com", "firstName": "Ada", "lastName": "Lovelace", "unsubscribed": true}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{"ada@example.com"}, sink.contacts)
	assert.Equal(t, "Ada", sink.lastFirst)
	assert.True(t, sink.lastUnsub)
	assert.Empty(t, sink.emails)
}

func TestNotifyHandler_UpsertContact_MissingEmail(t *testing.T) {
	sink := &recordingSink{}
	h := newNotifyHandler(sink)

	rr := postJSON(t, h.HandleUpsertContact, http.MethodPut, `{"firstName": "Ada"}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, sink.contacts)
}
