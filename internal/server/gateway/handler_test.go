package gateway

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func originRequest(origin string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	if origin != "" {
		r.Header.Set("Origin", origin)
	}
	return r
}

func TestCheckOriginAllowList(t *testing.T) {
	h := NewWSHandler(nil, "", "", []string{"https://app.example.com"})

	require.True(t, h.checkOrigin(originRequest("https://app.example.com")))
	require.False(t, h.checkOrigin(originRequest("https://evil.example.com")))

	// Non-browser clients send no Origin header.
	require.True(t, h.checkOrigin(originRequest("")))
}

func TestCheckOriginOpenWithoutAllowList(t *testing.T) {
	h := NewWSHandler(nil, "", "", nil)
	require.True(t, h.checkOrigin(originRequest("https://anywhere.example.com")))
}

func TestEachHandlerCarriesItsOwnOriginPolicy(t *testing.T) {
	strict := NewWSHandler(nil, "", "", []string{"https://app.example.com"})
	open := NewWSHandler(nil, "", "", nil)

	req := originRequest("https://evil.example.com")
	require.False(t, strict.upgrader.CheckOrigin(req))
	require.True(t, open.upgrader.CheckOrigin(req))

	// The strict handler's policy must be unaffected by the open one.
	require.False(t, strict.upgrader.CheckOrigin(req))
}

func TestServeHTTPRejectsDisallowedOrigin(t *testing.T) {
	h := NewWSHandler(nil, "", "", []string{"https://app.example.com"})
	srv := httptest.NewServer(h)
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://evil.example.com")
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	req.Header.Set("Sec-WebSocket-Version", "13")
	req.Header.Set("Sec-WebSocket-Key", "x3JJHMbDL1EzLkh9GBhXDw==")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}
