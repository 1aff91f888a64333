package utils

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingTransportPreservesBodies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_, _ = w.Write([]byte("echo:" + string(body)))
	}))
	defer server.Close()

	client := NewHTTPClient(5 * time.Second)
	req, err := http.NewRequest(http.MethodPost, server.URL, strings.NewReader("ping"))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer secret")

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "echo:ping", string(body))
	assert.Equal(t, "Bearer secret", req.Header.Get("Authorization"), "redaction must not touch the live request")
}

func TestRedactHeaders(t *testing.T) {
	h := http.Header{}
	h.Set("Authorization", "Bearer secret")
	h.Set("Content-Type", "application/json")

	out := redactHeaders(h)
	assert.Equal(t, "[redacted]", out.Get("Authorization"))
	assert.Equal(t, "application/json", out.Get("Content-Type"))
	assert.Equal(t, "Bearer secret", h.Get("Authorization"))
}

func TestTruncateBody(t *testing.T) {
	long := strings.Repeat("a", maxLoggedBody+10)
	assert.True(t, strings.HasSuffix(truncateBody([]byte(long)), "...(truncated)"))
	assert.Equal(t, "short", truncateBody([]byte("short")))
}
