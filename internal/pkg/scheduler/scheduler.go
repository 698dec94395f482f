// Package scheduler fans reconcilers out onto their own goroutines and joins them.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"wireguard-subnets/internal/pkg/logging"
	"wireguard-subnets/internal/port"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Scheduler owns one handle per reconciler and waits for all of them.
type Scheduler struct {
	reconcilers []port.GatewayReconciler
	logger      *logrus.Entry
}

// New creates an empty scheduler.
func New() *Scheduler {
	return &Scheduler{logger: logging.WithComponent("scheduler")}
}

// Add registers a reconciler. It must be called before Run.
func (s *Scheduler) Add(r port.GatewayReconciler) {
	s.reconcilers = append(s.reconcilers, r)
}

// Len returns the number of registered reconcilers.
func (s *Scheduler) Len() int {
	return len(s.reconcilers)
}

// Run starts every reconciler concurrently and blocks until all of them have
// returned. A reconciler that fails or panics is reported without affecting
// the others; their errors are joined into the returned error.
func (s *Scheduler) Run(ctx context.Context) error {
	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)

	s.logger.WithField("reconciler_count", len(s.reconcilers)).Info("Starting reconcilers")

	for _, r := range s.reconcilers {
		r := r
		g.Go(func() error {
			if err := s.runOne(ctx, r); err != nil {
				s.logger.WithField("gateway", r.GetGatewayAddress().String()).WithError(err).Error("Reconciler failed")
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				return err
			}
			return nil
		})
	}

	// Wait reports only the first failure; the rest are kept in errs.
	err := g.Wait()
	s.logger.Info("All reconcilers stopped")
	if err == nil {
		return nil
	}
	return errors.Join(errs...)
}

func (s *Scheduler) runOne(ctx context.Context, r port.GatewayReconciler) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("reconciler for gateway %s panicked: %v", r.GetGatewayAddress(), p)
		}
	}()
	return r.Run(ctx)
}
