package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientSend(t *testing.T) {
	t.Run("PostsAuthorizedRequest", func(t *testing.T) {
		var got sendRequest
		var auth string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/emails", r.URL.Path)
			auth = r.Header.Get("Authorization")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			_ = json.NewEncoder(w).Encode(SendResult{ID: "msg-1"})
		}))
		defer server.Close()

		client := NewClient(server.URL, "secret-key", "noreply@example.com")
		err := client.Send(context.Background(), "dest@example.com", "Hello", "body text")
		require.NoError(t, err)

		assert.Equal(t, "Bearer secret-key", auth)
		assert.Equal(t, "noreply@example.com", got.From)
		assert.Equal(t, "dest@example.com", got.To)
		assert.Equal(t, "Hello", got.Subject)
		assert.Equal(t, "body text", got.Text)
	})

	t.Run("SurfacesProviderError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, `{"message":"invalid recipient"}`, http.StatusUnprocessableEntity)
		}))
		defer server.Close()

		client := NewClient(server.URL, "secret-key", "noreply@example.com")
		err := client.Send(context.Background(), "dest@example.com", "Hello", "body text")
		require.Error(t, err)

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
		assert.Contains(t, apiErr.Body, "invalid recipient")
	})

	t.Run("ConnectionFailure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		server.Close()

		client := NewClient(server.URL, "secret-key", "noreply@example.com")
		err := client.Send(context.Background(), "dest@example.com", "Hello", "body text")
		assert.Error(t, err)
	})
}
