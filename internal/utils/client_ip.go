package utils

import (
	"net"
	"net/http"
	"strings"
)

// ClientID identifies the caller for rate limiting: the first X-Forwarded-For
// entry when present, otherwise the host part of the socket address.
func ClientID(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
