package httptransport_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinywideclouds/go-firebase-push/internal/platform/httptransport"
)

func TestTransport_Post(t *testing.T) {
	// 1. Setup Mock Gateway
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "key=abc", r.Header.Get("Authorization"))

		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"to":"T1"}`, string(body))

		switch r.URL.Path {
		case "/ok":
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"results":[{}]}`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`Unauthorized`))
		}
	}))
	defer mockServer.Close()

	transport := httptransport.New(time.Second)
	headers := map[string]string{"Content-Type": "application/json", "Authorization": "key=abc"}
	ctx := context.Background()

	t.Run("Returns status and body", func(t *testing.T) {
		resp, err := transport.Post(ctx, mockServer.URL+"/ok", headers, []byte(`{"to":"T1"}`))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"results":[{}]}`, string(resp.Body))
	})

	t.Run("Non-200 is a response, not an error", func(t *testing.T) {
		resp, err := transport.Post(ctx, mockServer.URL+"/denied", headers, []byte(`{"to":"T1"}`))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestTransport_Failures(t *testing.T) {
	t.Run("Timeout", func(t *testing.T) {
		release := make(chan struct{})
		slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-release
		}))
		defer slow.Close()
		defer close(release)

		transport := httptransport.New(50 * time.Millisecond)
		_, err := transport.Post(context.Background(), slow.URL, nil, nil)
		assert.Error(t, err)
	})

	t.Run("Cancelled context", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := httptransport.New(time.Second).Post(ctx, server.URL, nil, nil)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("Connection refused", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()

		_, err := httptransport.New(time.Second).Post(context.Background(), url, nil, nil)
		assert.Error(t, err)
	})
}
