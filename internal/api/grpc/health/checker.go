// Package health reports store reachability through the standard gRPC
// health service.
package health

import (
	"context"
	"time"

	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/dtroode/parley-server/internal/logger"
	"github.com/dtroode/parley-server/internal/model"
)

// Service is the health service name clients query for this server.
const Service = "parley.Messaging"

// Checker pings its dependencies on an interval and flips the serving
// status of both the overall server ("") and Service.
type Checker struct {
	server   *grpchealth.Server
	pingers  map[string]model.Pinger
	interval time.Duration
	timeout  time.Duration
	logger   *logger.Logger
}

func NewChecker(server *grpchealth.Server, pingers map[string]model.Pinger, interval time.Duration, logger *logger.Logger) *Checker {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Checker{
		server:   server,
		pingers:  pingers,
		interval: interval,
		timeout:  interval / 2,
		logger:   logger,
	}
}

// Check pings every dependency once and updates the serving status.
func (c *Checker) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	for name, p := range c.pingers {
		pingCtx, cancel := context.WithTimeout(ctx, c.timeout)
		err := p.Ping(pingCtx)
		cancel()
		if err != nil {
			c.logger.Warn("Health checker: dependency unreachable",
				"dependency", name,
				"error", err.Error())
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}

	c.server.SetServingStatus("", status)
	c.server.SetServingStatus(Service, status)
	return status
}

// Run checks immediately and then every interval until ctx is done.
func (c *Checker) Run(ctx context.Context) {
	c.Check(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.server.Shutdown()
			return
		case <-ticker.C:
			c.Check(ctx)
		}
	}
}
