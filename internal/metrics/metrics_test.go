package metrics

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alecgard/fiveplanner/internal/session"
)

func TestSummarize(t *testing.T) {
	m := New()
	m.RegisterPoolCollector(func() (int32, int32, int32) { return 4, 3, 1 })
	m.RegisterStateCollector(func() State {
		return State{Players: 12, Pitches: 5, ActiveSessions: 2, History: 7}
	})

	m.ObserveHTTPRequest("GET", "/api/v1/players", 200, 10*time.Millisecond, 512)
	m.ObserveHTTPRequest("POST", "/api/v1/sessions", 422, 20*time.Millisecond, 128)
	m.SessionCreated(session.Session{})
	m.SessionCreated(session.Session{})
	m.SessionResolved(session.Session{Status: session.StatusCompleted})
	m.SessionResolved(session.Session{Status: session.StatusCancelled})
	m.ResponseRecorded(session.Session{}, session.ResponseComing)
	m.ResponseRecorded(session.Session{}, session.ResponseComing)
	m.ResponseRecorded(session.Session{}, session.ResponseOptional)
	m.ObserveStorageOp("save", "five-planner-players", time.Millisecond, nil)
	m.ObserveStorageOp("save", "five-planner-players", time.Millisecond, errors.New("disk full"))
	m.IncAuthFailure()
	m.IncAuthSuccess()
	m.IncRateLimited()

	s, err := m.Summarize()
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}

	if s.HTTP.TotalRequests != 2 || s.HTTP.ErrorRate != 0.5 {
		t.Errorf("unexpected http summary %+v", s.HTTP)
	}
	if s.HTTP.P50Latency <= 0 {
		t.Errorf("expected positive p50 latency, got %v", s.HTTP.P50Latency)
	}
	if s.Sessions.Created != 2 || s.Sessions.Completed != 1 || s.Sessions.Cancelled != 1 {
		t.Errorf("unexpected session summary %+v", s.Sessions)
	}
	if s.Sessions.Responses["coming"] != 2 || s.Sessions.Responses["optional"] != 1 {
		t.Errorf("unexpected responses %v", s.Sessions.Responses)
	}
	if s.Storage.Operations != 2 || s.Storage.Errors != 1 {
		t.Errorf("unexpected storage summary %+v", s.Storage)
	}
	if s.Auth.Failures != 1 || s.Auth.Successes != 1 {
		t.Errorf("unexpected auth summary %+v", s.Auth)
	}
	if s.RateLimited != 1 {
		t.Errorf("expected one rate-limited request, got %v", s.RateLimited)
	}
	if s.Pool.TotalConns != 4 || s.Pool.IdleConns != 3 || s.Pool.AcquiredConns != 1 {
		t.Errorf("unexpected pool summary %+v", s.Pool)
	}
	if s.Items["players"] != 12 || s.Items["history"] != 7 {
		t.Errorf("unexpected items %v", s.Items)
	}
	if s.Server.StartTime == 0 {
		t.Error("expected start time to be set")
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.SessionCreated(session.Session{})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %s", ct)
	}
	var s Summary
	if err := json.NewDecoder(rec.Body).Decode(&s); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if s.Sessions.Created != 1 {
		t.Errorf("created = %v, want 1", s.Sessions.Created)
	}
}

func TestHistogramPercentileEmpty(t *testing.T) {
	if got := histogramPercentile(nil, 0.5); got != 0 {
		t.Errorf("expected 0, got %v", got)
	}
}
