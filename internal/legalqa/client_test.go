package legalqa

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewClientRejectsEmptyURL(t *testing.T) {
	_, err := NewClient("")
	require.Error(t, err)

	_, err = NewClient("   ")
	require.Error(t, err)
}

func TestNewClientTrimsTrailingSlash(t *testing.T) {
	c, err := NewClient("http://example.test/")
	require.NoError(t, err)
	require.Equal(t, "http://example.test", c.baseURL)
}

func TestAskSendsRequestAndDecodesResponse(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody AskRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		json.NewEncoder(w).Encode(AskResponse{
			Answer:     "You generally need written consent.",
			Confidence: 0.87,
			Sources:    []string{"15 U.S.C. 1692"},
			SessionID:  "sess-1",
		})
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, WithAPIKey("secret-key"))
	require.NoError(t, err)

	resp, err := c.Ask(context.Background(), AskRequest{
		Question:     "can a debt collector call my workplace",
		SessionID:    "sess-1",
		Jurisdiction: "US",
		Context: []ContextMessage{
			{Role: "user", Content: "earlier question"},
			{Role: "assistant", Content: "earlier answer"},
		},
	})
	require.NoError(t, err)

	require.Equal(t, "/api/legal-qa/ask", gotPath)
	require.Equal(t, "Bearer secret-key", gotAuth)
	require.Equal(t, "can a debt collector call my workplace", gotBody.Question)
	require.Len(t, gotBody.Context, 2)

	require.Equal(t, "You generally need written consent.", resp.Answer)
	require.InDelta(t, 0.87, resp.Confidence, 1e-9)
	require.Equal(t, []string{"15 U.S.C. 1692"}, resp.Sources)
}

func TestAskRejectsEmptyQuestion(t *testing.T) {
	c, err := NewClient("http://example.test")
	require.NoError(t, err)

	_, err = c.Ask(context.Background(), AskRequest{Question: "  "})
	require.Error(t, err)
}

func TestAskSurfacesHTTPStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("upstream research service down"))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, err = c.Ask(context.Background(), AskRequest{Question: "anything"})
	require.Error(t, err)

	var statusErr *HTTPStatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	require.Contains(t, statusErr.Body, "upstream research service down")
	require.Equal(t, http.StatusServiceUnavailable, statusErr.HTTPStatusCode())
}

func TestAskRejectsEmptyAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(AskResponse{Answer: "   "})
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, err = c.Ask(context.Background(), AskRequest{Question: "anything"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "empty answer")
}

func TestAskHonorsContextCancellation(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = c.Ask(ctx, AskRequest{Question: "anything"})
	require.ErrorIs(t, err, context.Canceled)
}
