package mail

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRelaySender_Send(t *testing.T) {
	logger, _ := zap.NewDevelopment()

	t.Run("posts template payload to relay", func(t *testing.T) {
		var got relayRequest
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		sender := NewRelaySender(Config{
			Endpoint:   srv.URL,
			ServiceID:  "service_abc",
			TemplateID: "template_xyz",
			PublicKey:  "pk_123",
		}, logger)

		err := sender.Send(context.Background(), "ana@citi.org", "Auxílio Aprovado - CITI", "corpo")
		require.NoError(t, err)

		assert.Equal(t, "service_abc", got.ServiceID)
		assert.Equal(t, "template_xyz", got.TemplateID)
		assert.Equal(t, "pk_123", got.UserID)
		assert.Equal(t, "ana@citi.org", got.TemplateParams["to_email"])
		assert.Equal(t, "Auxílio Aprovado - CITI", got.TemplateParams["subject"])
		assert.Equal(t, "corpo", got.TemplateParams["message"])
	})

	t.Run("non-2xx response is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "invalid public key", http.StatusForbidden)
		}))
		defer srv.Close()

		sender := NewRelaySender(Config{Endpoint: srv.URL}, logger)

		err := sender.Send(context.Background(), "ana@citi.org", "s", "b")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 403")
	})

	t.Run("unreachable relay is an error", func(t *testing.T) {
		sender := NewRelaySender(Config{Endpoint: "http://127.0.0.1:1/send"}, logger)

		err := sender.Send(context.Background(), "ana@citi.org", "s", "b")
		assert.Error(t, err)
	})
}

func TestLogSender_Send(t *testing.T) {
	sender := NewLogSender(zap.NewNop())
	assert.NoError(t, sender.Send(context.Background(), "ana@citi.org", "s", "b"))
}
