package collector

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/wayfarerhq/logpipe/pkg/log"
)

func TestSendPostsEnvelope(t *testing.T) {
	var got Envelope
	var contentType, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		contentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(ClientOptions{BaseURL: srv.URL, SessionID: "sess-1", HasNetwork: true})
	batch := []log.Entry{
		log.NewEntry(log.WarnLevel, "w", nil, "api", "fetch"),
		log.NewEntry(log.ErrorLevel, "e", nil, "", ""),
	}
	require.NoError(t, c.Send(context.Background(), batch))

	require.Equal(t, IngestPath, path)
	require.Equal(t, "application/json", contentType)
	require.Equal(t, "sess-1", got.SessionID)
	require.NotEmpty(t, got.Timestamp)
	require.Len(t, got.Logs, 2)
	require.Equal(t, "w", got.Logs[0].Message)
	require.Equal(t, log.ErrorLevel, got.Logs[1].Level)
}

func TestSendTreatsAny2xxAsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := NewClient(ClientOptions{BaseURL: srv.URL, HasNetwork: true})
	require.NoError(t, c.Send(context.Background(), []log.Entry{log.NewEntry(log.WarnLevel, "w", nil, "", "")}))
}

func TestSendNonOKStatusIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(ClientOptions{BaseURL: srv.URL, HasNetwork: true})
	err := c.Send(context.Background(), []log.Entry{log.NewEntry(log.WarnLevel, "w", nil, "", "")})
	require.Error(t, err)
}

func TestSendTransportErrorIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // connection refused from here on

	c := NewClient(ClientOptions{BaseURL: srv.URL, HasNetwork: true})
	err := c.Send(context.Background(), []log.Entry{log.NewEntry(log.WarnLevel, "w", nil, "", "")})
	require.Error(t, err)
}

func TestSendWithoutNetworkCapability(t *testing.T) {
	c := NewClient(ClientOptions{HasNetwork: false})
	err := c.Send(context.Background(), []log.Entry{log.NewEntry(log.WarnLevel, "w", nil, "", "")})
	require.ErrorIs(t, err, ErrNetworkUnavailable)
}
