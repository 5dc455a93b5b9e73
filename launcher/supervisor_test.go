package launcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSupervisorStartStop(t *testing.T) {
	s := NewSupervisor(ServiceSpec{Name: "sleeper", Command: "sleep", Args: []string{"30"}}, nil)
	s.StopGrace = time.Second

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := s.Start(context.Background()); err == nil {
		t.Fatalf("double start should fail")
	}

	if err := s.Stop(); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	// process was signalled, Wait reports the termination
	if err := s.Wait(); err == nil {
		t.Fatalf("expected non-nil exit error after SIGTERM")
	}
}

func TestSupervisorWaitsForHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewSupervisor(ServiceSpec{
		Name:                   "svc",
		Command:                "sleep",
		Args:                   []string{"30"},
		HealthURL:              srv.URL,
		StartupTimeoutAttempts: 3,
		PollInterval:           10 * time.Millisecond,
	}, nil)
	s.StopGrace = time.Second
	defer s.Stop()

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start should succeed once healthy: %v", err)
	}
}

func TestSupervisorTerminatesOnReadinessFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "never ready", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := NewSupervisor(ServiceSpec{
		Name:                   "svc",
		Command:                "sleep",
		Args:                   []string{"30"},
		HealthURL:              srv.URL,
		StartupTimeoutAttempts: 2,
		PollInterval:           10 * time.Millisecond,
	}, nil)
	s.StopGrace = time.Second

	err := s.Start(context.Background())
	if err == nil {
		t.Fatalf("expected readiness failure")
	}

	// child must be gone after the failed start
	if err := s.Wait(); err == nil {
		t.Fatalf("expected terminated child to report an exit error")
	}
}

func TestSupervisorStopWithoutStart(t *testing.T) {
	s := NewSupervisor(ServiceSpec{Name: "svc", Command: "sleep"}, nil)
	if err := s.Stop(); err != nil {
		t.Fatalf("stop without start should be a no-op: %v", err)
	}
	if err := s.Wait(); err == nil {
		t.Fatalf("wait without start should error")
	}
}
