package whatsapp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/poultryops/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *APIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.WhatsAppConfig{
		AccessToken:   "token",
		PhoneNumberID: "12345",
		BaseURL:       srv.URL + "/",
		APIVersion:    "v20.0",
	})
}

func TestSendTextMessage(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v20.0/12345/messages", r.URL.Path)
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.1"}]}`))
	})

	resp, err := c.SendTextMessage(context.Background(), SendTextMessageRequest{To: "+91 90000 00002", Body: "hello"})
	require.NoError(t, err)
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, "wamid.1", resp.Messages[0].ID)
	assert.Equal(t, "919000000002", got["to"])
	assert.Equal(t, "hello", got["text"].(map[string]any)["body"])
}

func TestSendTextMessageAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid OAuth access token","code":190}}`))
	})

	_, err := c.SendTextMessage(context.Background(), SendTextMessageRequest{To: "919000000002", Body: "hi"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, 190, apiErr.Code)
}

func TestSendTextMessageInvalidRecipient(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := c.SendTextMessage(context.Background(), SendTextMessageRequest{To: "manager", Body: "hi"})
	assert.ErrorIs(t, err, ErrInvalidRecipient)
}

func TestNormalizeRecipient(t *testing.T) {
	assert.Equal(t, "919000000003", NormalizeRecipient("+91 9000000003"))
	assert.Equal(t, "", NormalizeRecipient(""))
}
