package launcher

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/taa217/lucidai/health"
	"github.com/taa217/lucidai/logging"
)

// defaultStopGrace is how long Stop waits after SIGTERM before SIGKILL.
const defaultStopGrace = 5 * time.Second

// Supervisor owns one spawned service process: start, readiness wait,
// graceful stop, and exit observation.
type Supervisor struct {
	spec   ServiceSpec
	logger logging.Logger

	mu      sync.Mutex
	cmd     *exec.Cmd
	done    chan struct{} // closed after the process exits
	exitErr error         // exit error, valid once done is closed

	// StopGrace is the SIGTERM-to-SIGKILL window. Defaults to 5s.
	StopGrace time.Duration
}

// NewSupervisor creates a supervisor for the given spec. A nil logger
// defaults to NoOpLogger.
func NewSupervisor(spec ServiceSpec, logger logging.Logger) *Supervisor {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Supervisor{spec: spec, logger: logger, StopGrace: defaultStopGrace}
}

// Start spawns the service process and, when a health URL is configured,
// blocks until the service reports ready. Poll exhaustion terminates the
// child and returns the readiness error.
func (s *Supervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.cmd != nil {
		s.mu.Unlock()
		return fmt.Errorf("service %s already started", s.spec.Name)
	}

	cmd := exec.Command(s.spec.Command, s.spec.Args...)
	cmd.Dir = s.spec.Dir
	cmd.Env = append(os.Environ(), s.spec.Env...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("start service %s: %w", s.spec.Name, err)
	}

	done := make(chan struct{})
	s.cmd = cmd
	s.done = done
	s.mu.Unlock()

	go func() {
		err := cmd.Wait()
		s.mu.Lock()
		s.exitErr = err
		s.mu.Unlock()
		close(done)
	}()

	s.logger.Info("service started", "service", s.spec.Name, "pid", cmd.Process.Pid)

	if s.spec.HealthURL == "" {
		return nil
	}

	poller := &health.Poller{
		URL:        s.spec.HealthURL,
		Interval:   s.spec.PollInterval,
		MaxRetries: s.spec.StartupTimeoutAttempts,
		Logger:     s.logger,
	}

	if err := poller.Wait(ctx); err != nil {
		s.logger.Error("service failed readiness check, terminating", "service", s.spec.Name, "error", err)
		_ = s.Stop()
		return fmt.Errorf("service %s readiness: %w", s.spec.Name, err)
	}

	s.logger.Info("service ready", "service", s.spec.Name, "url", s.spec.HealthURL)
	return nil
}

// Stop terminates the process: SIGTERM first, SIGKILL after the grace
// window. Stopping an unstarted or already-exited service is a no-op.
func (s *Supervisor) Stop() error {
	s.mu.Lock()
	cmd := s.cmd
	done := s.done
	s.mu.Unlock()

	if cmd == nil || cmd.Process == nil {
		return nil
	}

	select {
	case <-done:
		return nil // already exited
	default:
	}

	if err := cmd.Process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("signal service %s: %w", s.spec.Name, err)
	}

	grace := s.StopGrace
	if grace <= 0 {
		grace = defaultStopGrace
	}

	select {
	case <-done:
		s.logger.Info("service stopped", "service", s.spec.Name)
		return nil
	case <-time.After(grace):
		s.logger.Warn("service ignored SIGTERM, killing", "service", s.spec.Name)
		if err := cmd.Process.Kill(); err != nil {
			return fmt.Errorf("kill service %s: %w", s.spec.Name, err)
		}
		<-done
		return nil
	}
}

// Wait blocks until the process exits and returns its exit error. Returns
// immediately when the service was never started.
func (s *Supervisor) Wait() error {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()

	if done == nil {
		return fmt.Errorf("service %s not started", s.spec.Name)
	}
	<-done

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exitErr
}

// Name returns the supervised service's name.
func (s *Supervisor) Name() string { return s.spec.Name }
