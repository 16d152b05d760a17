// Package health reports whether the content store is reachable, over HTTP
// via Probe and over gRPC via the standard health service.
package health

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// StoreService is the service name whose status tracks the store.
const StoreService = "lensfolio.store"

// Pinger is anything that can check its backend in one round-trip.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Reporter keeps the gRPC health status in line with the latest probe.
type Reporter struct {
	pinger Pinger
	server *grpchealth.Server
	log    *logrus.Logger

	mu      sync.RWMutex
	lastErr error
	checked time.Time
}

// NewReporter returns a Reporter that starts out NOT_SERVING until the
// first probe succeeds.
func NewReporter(p Pinger, log *logrus.Logger) *Reporter {
	if log == nil {
		log = logrus.StandardLogger()
	}
	r := &Reporter{pinger: p, server: grpchealth.NewServer(), log: log}
	r.set(healthpb.HealthCheckResponse_NOT_SERVING)
	return r
}

// Server is the gRPC health service backed by the Reporter.
func (r *Reporter) Server() *grpchealth.Server {
	return r.server
}

// Probe pings the store once and records the outcome.
func (r *Reporter) Probe(ctx context.Context) error {
	err := r.pinger.Ping(ctx)

	r.mu.Lock()
	changed := (err == nil) != (r.lastErr == nil) || r.checked.IsZero()
	r.lastErr = err
	r.checked = time.Now()
	r.mu.Unlock()

	if err != nil {
		r.set(healthpb.HealthCheckResponse_NOT_SERVING)
		if changed {
			r.log.WithError(err).Warn("Store unreachable")
		}
		return err
	}
	r.set(healthpb.HealthCheckResponse_SERVING)
	if changed {
		r.log.Info("Store reachable")
	}
	return nil
}

// Last returns the outcome of the most recent probe and when it ran.
func (r *Reporter) Last() (time.Time, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.checked, r.lastErr
}

// Run probes every interval until ctx is done.
func (r *Reporter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		pctx, cancel := context.WithTimeout(ctx, interval)
		_ = r.Probe(pctx)
		cancel()
		select {
		case <-ctx.Done():
			r.server.Shutdown()
			return
		case <-ticker.C:
		}
	}
}

func (r *Reporter) set(status healthpb.HealthCheckResponse_ServingStatus) {
	r.server.SetServingStatus("", status)
	r.server.SetServingStatus(StoreService, status)
}

// Serve exposes the health service on addr until ctx is done.
func Serve(ctx context.Context, addr string, r *Reporter) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, r.Server())

	go func() {
		<-ctx.Done()
		srv.GracefulStop()
	}()

	r.log.WithField("addr", lis.Addr().String()).Info("gRPC health service listening")
	if err := srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}
