package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/vidtube/backend/internal/logging"
)

func TestRequestLoggerAnnotatesContextAndRecovers(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	var requestID string
	handler := RequestLogger(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID = logging.RequestIDFromContext(r.Context())
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/videos", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", rec.Code)
	}
	if requestID == "" {
		t.Fatal("expected request id on context")
	}
	logs := buf.String()
	if !strings.Contains(logs, "panic recovered") || !strings.Contains(logs, requestID) {
		t.Fatalf("expected panic log with request id, got %s", logs)
	}
}

type observerStub struct {
	method string
	status int
}

func (o *observerStub) ObserveResponse(method string, status int) {
	o.method = method
	o.status = status
}

func TestCountResponses(t *testing.T) {
	observer := &observerStub{}
	handler := CountResponses(observer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPatch, "/", nil))
	if observer.method != http.MethodPatch || observer.status != http.StatusTeapot {
		t.Fatalf("unexpected observation %+v", observer)
	}

	implicit := CountResponses(observer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	implicit.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if observer.status != http.StatusOK {
		t.Fatalf("expected implicit 200 got %d", observer.status)
	}
}

func TestInstrumentCountsRecoveredPanics(t *testing.T) {
	observer := &observerStub{}
	base := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
	handler := Instrument(base, observer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/likes/toggle/v/x", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", rec.Code)
	}
	if observer.method != http.MethodPost || observer.status != http.StatusInternalServerError {
		t.Fatalf("expected recovered panic to be counted as 500 got %+v", observer)
	}
}

func TestRequestLoggerReusesUpstreamRequestID(t *testing.T) {
	base := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
	upstream := "0b7e3f6a-9c2d-4e1f-8a5b-3c4d5e6f7a82"

	var seen string
	handler := RequestLogger(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logging.RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, upstream)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if seen != upstream || rec.Header().Get(RequestIDHeader) != upstream {
		t.Fatalf("expected upstream id to be kept, got ctx=%q header=%q", seen, rec.Header().Get(RequestIDHeader))
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "not-an-id")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if seen == "not-an-id" || seen == "" {
		t.Fatalf("expected malformed id to be replaced, got %q", seen)
	}
}

func TestKeyedRateLimiter(t *testing.T) {
	limiter := NewKeyedRateLimiter(1, time.Minute, 2, time.Minute).(*keyedRateLimiter)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.withClock(func() time.Time { return now })

	if !limiter.Allow("likes:a") || !limiter.Allow("likes:a") {
		t.Fatal("expected burst to be allowed")
	}
	if limiter.Allow("likes:a") {
		t.Fatal("expected third request to be limited")
	}
	if !limiter.Allow("likes:b") {
		t.Fatal("expected other key to be allowed")
	}

	now = now.Add(time.Minute)
	if !limiter.Allow("likes:a") {
		t.Fatal("expected a token to be refilled after the window")
	}

	now = now.Add(3 * time.Minute)
	limiter.Allow("likes:c")
	if got := limiter.size(); got != 1 {
		t.Fatalf("expected idle buckets to be swept, got %d", got)
	}
}
