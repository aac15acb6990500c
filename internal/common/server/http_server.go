package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ParkSmart/ParkSmart/internal/common/config"
	"github.com/ParkSmart/ParkSmart/internal/common/discovery"
	"github.com/ParkSmart/ParkSmart/internal/common/logger"
	"github.com/google/uuid"
)

type RunHTTPOptions struct {
	ShutdownTimeout   time.Duration
	ReadHeaderTimeout time.Duration
}

func defaultRunHTTPOptions() RunHTTPOptions {
	return RunHTTPOptions{
		ShutdownTimeout:   5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// RunHTTPServer is the shared service entry template:
// - builds the http.Server around the provided handler
// - registers with Consul when enabled (HTTP health check)
// - blocks until SIGINT/SIGTERM, then shuts down gracefully
func RunHTTPServer(cfg *config.Config, log logger.Logger, handler http.Handler, opts ...func(*RunHTTPOptions)) error {
	if cfg == nil {
		return fmt.Errorf("cfg is nil")
	}
	if log == nil {
		return fmt.Errorf("log is nil")
	}
	if handler == nil {
		return fmt.Errorf("handler is nil")
	}

	o := defaultRunHTTPOptions()
	for _, apply := range opts {
		if apply != nil {
			apply(&o)
		}
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: o.ReadHeaderTimeout,
	}

	// Consul registration is best effort; the service still starts without it.
	if cfg.Consul.Enabled {
		consulClient, err := discovery.NewConsulClient(cfg.Consul.Host, cfg.Consul.Port)
		if err != nil {
			log.Warnf("failed to connect to Consul: %v", err)
		} else {
			serviceID := fmt.Sprintf("%s-%s", cfg.Server.Name, uuid.New().String())
			registry := discovery.NewServiceRegistry(
				consulClient,
				serviceID,
				cfg.Server.Name,
				cfg.Server.Host,
				cfg.Server.Port,
				[]string{"http"},
			)
			if err := registry.Register(); err != nil {
				log.Warnf("failed to register service to Consul: %v", err)
			} else {
				log.Infof("Service registered to Consul: %s", serviceID)
				defer func() {
					if err := registry.Deregister(); err != nil {
						log.Warnf("failed to deregister service from Consul: %v", err)
					}
				}()
			}
		}
	}

	log.Infof("%s starting on %s", cfg.Server.Name, srv.Addr)

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
			return
		}
		serveErr <- nil
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Infof("received signal %v, shutting down...", sig)
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http serve failed: %w", err)
		}
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), o.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Warnf("http shutdown timeout, forcing close: %v", err)
		_ = srv.Close()
	} else {
		log.Info("http server stopped gracefully")
	}

	return nil
}

// WithShutdownTimeout overrides the graceful-shutdown wait.
func WithShutdownTimeout(d time.Duration) func(*RunHTTPOptions) {
	return func(o *RunHTTPOptions) {
		if d > 0 {
			o.ShutdownTimeout = d
		}
	}
}
