// Command lucidai launches and supervises the application's microservices.
// It loads environment configuration from a .env file, parses the services
// YAML, starts each service in order while waiting for its health endpoint,
// and stops everything in reverse order on SIGINT/SIGTERM or when any
// service exits.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/taa217/lucidai/launcher"
	"github.com/taa217/lucidai/logging"
)

func main() {
	configPath := flag.String("config", "services.yaml", "path to the services YAML file")
	envPath := flag.String("env", ".env", "path to the .env file (missing file is ignored)")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	if err := run(*configPath, *envPath, *logLevel); err != nil {
		fmt.Fprintf(os.Stderr, "lucidai: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, envPath, logLevel string) error {
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load env file: %w", err)
	}

	logger := logging.NewSlogLogger(logging.ParseLogLevel(logLevel), "text", false)

	cfg, err := launcher.LoadConfig(configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var started []*launcher.Supervisor
	shutdown := func() {
		// reverse order: dependents stop before their dependencies
		for i := len(started) - 1; i >= 0; i-- {
			if err := started[i].Stop(); err != nil {
				logger.Warn("failed to stop service", "service", started[i].Name(), "error", err)
			}
		}
	}

	for _, spec := range cfg.Services {
		sup := launcher.NewSupervisor(spec, logger)
		if err := sup.Start(ctx); err != nil {
			shutdown()
			return err
		}
		started = append(started, sup)
	}

	logger.Info("all services ready", "count", len(started))

	// block until a signal arrives or any service exits on its own
	exited := make(chan string, len(started))
	for _, sup := range started {
		go func(s *launcher.Supervisor) {
			_ = s.Wait()
			exited <- s.Name()
		}(sup)
	}

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case name := <-exited:
		logger.Error("service exited unexpectedly", "service", name)
	}

	shutdown()
	return nil
}
