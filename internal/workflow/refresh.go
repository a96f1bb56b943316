package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// AutoRefresh reloads a controller on a cron schedule so reservations the
// backend cancelled drop out of the view without user action. Failures are
// logged, never shown.
type AutoRefresh struct {
	cron    *cron.Cron
	ctrl    *Controller
	timeout time.Duration
}

// NewAutoRefresh schedules ctrl.Reload according to spec, a standard cron
// expression or a descriptor such as "@every 1m".
func NewAutoRefresh(ctrl *Controller, spec string) (*AutoRefresh, error) {
	a := &AutoRefresh{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		ctrl:    ctrl,
		timeout: 30 * time.Second,
	}
	if _, err := a.cron.AddFunc(spec, a.run); err != nil {
		return nil, fmt.Errorf("scheduling refresh %q: %w", spec, err)
	}
	return a, nil
}

// Start begins the schedule in its own goroutine.
func (a *AutoRefresh) Start() {
	a.cron.Start()
}

// Stop halts the schedule and waits for a running refresh to finish.
func (a *AutoRefresh) Stop() {
	<-a.cron.Stop().Done()
}

func (a *AutoRefresh) run() {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	err := a.ctrl.quietReload(ctx)
	switch {
	case err == nil, errors.Is(err, ErrNotLoggedIn):
	default:
		slog.Warn("background refresh failed", "error", err)
	}
}
