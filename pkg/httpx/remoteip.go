package httpx

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// RemoteIPString extracts the client IP address from the request. It
// honours X-Forwarded-For and X-Real-IP for proxied requests, falling
// back to the socket address.
func RemoteIPString(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// RemoteIP parses the client address. The zero netip.Addr is returned
// when the request carries nothing parseable; callers enforcing IP
// allow-lists treat that as not allowed.
func RemoteIP(r *http.Request) netip.Addr {
	addr, err := netip.ParseAddr(RemoteIPString(r))
	if err != nil {
		return netip.Addr{}
	}
	return addr
}

// BearerToken pulls the bearer credential out of the Authorization
// header. ok is false when the header is missing or not a Bearer scheme.
func BearerToken(r *http.Request) (token string, ok bool) {
	authz := r.Header.Get("Authorization")
	if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer")), true
}
