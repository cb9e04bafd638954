package kiosk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/qr-display/A/pair", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["accessCode"] != "XJ9K2P" {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"message":"Erişim kodu hatalı"}`))
			return
		}
		w.Write([]byte(`{"data":{"screenId":"A","deviceId":"` + body["deviceId"] + `"}}`))
	})
	mux.HandleFunc("/api/v1/qr-display/A/status", func(w http.ResponseWriter, r *http.Request) {
		paired := r.URL.Query().Get("deviceId") == "D1"
		json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"screenId": "A", "active": true, "paired": paired}})
	})
	mux.HandleFunc("/api/v1/qr-display/A/token", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"code":"abc","expiresAt":"2025-03-10T06:05:00Z"}}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx := context.Background()
	client := NewClient(srv.URL)

	err := client.Pair(ctx, "A", "BAD", "D1")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "Erişim kodu hatalı", apiErr.Message)

	require.NoError(t, client.Pair(ctx, "A", "XJ9K2P", "D1"))

	status, err := client.Status(ctx, "A", "D1")
	require.NoError(t, err)
	assert.True(t, status.Paired)

	status, err = client.Status(ctx, "A", "D2")
	require.NoError(t, err)
	assert.False(t, status.Paired)

	token, err := client.Token(ctx, "A", "D1")
	require.NoError(t, err)
	assert.Equal(t, "abc", token.Code)

	_, err = client.Status(ctx, "missing", "D1")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}
