package handlers

import (
	"net"
	"net/http"
	"strings"
)

// RateLimiter is the minimal interface required to guard toggle endpoints.
type RateLimiter interface {
	Allow(key string) bool
}

func allowRequest(limiter RateLimiter, r *http.Request, scope string) bool {
	if limiter == nil {
		return true
	}
	return limiter.Allow(rateLimitKey(r, scope))
}

// rateLimitKey buckets signed-in callers by user id so that users behind one
// NAT do not share a budget. Anonymous callers fall back to the client address.
func rateLimitKey(r *http.Request, scope string) string {
	subject := "ip:" + clientIP(r)
	if viewer := viewerID(r); viewer != "" {
		subject = "user:" + viewer
	}
	if scope == "" {
		return subject
	}
	return scope + ":" + subject
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}

	addr := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil && host != "" {
		return host
	}
	return addr
}
