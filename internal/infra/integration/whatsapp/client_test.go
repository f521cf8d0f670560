package whatsapp

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendText_Success(t *testing.T) {
	var got sendTextRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pnid/messages", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &got))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.1"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	err := c.SendText(context.Background(), "tok", "pnid", "5511999990000", "Novo lead: Jane")
	require.NoError(t, err)

	assert.Equal(t, "whatsapp", got.MessagingProduct)
	assert.Equal(t, "text", got.Type)
	assert.Equal(t, "5511999990000", got.To)
	assert.Equal(t, "Novo lead: Jane", got.Text.Body)
}

func TestSendText_APIErrorCarriesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid OAuth access token","code":190}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	err := c.SendText(context.Background(), "bad", "pnid", "5511", "x")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 401, apiErr.HTTPStatus())
	assert.Equal(t, 190, apiErr.Code)
	assert.Contains(t, err.Error(), "Invalid OAuth access token")
}

func TestSendText_MissingCredentials(t *testing.T) {
	c := NewClient("http://unused", time.Second)
	assert.Error(t, c.SendText(context.Background(), "", "pnid", "5511", "x"))
}

func TestSendText_BreakerOpensOnServerErrors(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	for i := 0; i < 5; i++ {
		_ = c.SendText(context.Background(), "tok", "pnid", "5511", "x")
	}

	err := c.SendText(context.Background(), "tok", "pnid", "5511", "x")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 5, calls)
}
