package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/HatiCode/retrofit/cmd/planner/metrics"
	"github.com/HatiCode/retrofit/pkg/city"
	"github.com/HatiCode/retrofit/pkg/optimizer"
	"github.com/HatiCode/retrofit/pkg/scenario"
	"github.com/HatiCode/retrofit/pkg/simulation"
	"github.com/HatiCode/retrofit/pkg/storage"
)

// Planner runs simulations, records their metrics and stores the reports.
type Planner struct {
	store    storage.Store
	metrics  *metrics.Metrics
	logger   *slog.Logger
	parallel bool
}

// NewPlanner creates a Planner. parallel forces concurrent strategy runs
// regardless of the scenario's own setting.
func NewPlanner(store storage.Store, m *metrics.Metrics, parallel bool, logger *slog.Logger) *Planner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Planner{
		store:    store,
		metrics:  m,
		logger:   logger,
		parallel: parallel,
	}
}

// Simulate validates and runs s, then stores the report under s.Name.
func (p *Planner) Simulate(ctx context.Context, s city.Scenario) (simulation.Report, error) {
	if p.parallel {
		s.Parallel = true
	}

	driver, err := simulation.New(s, p.logger)
	if err != nil {
		p.recordError("simulation", "invalid_configuration")
		return simulation.Report{}, err
	}

	report, err := driver.Run(ctx)
	if err != nil {
		switch {
		case errors.Is(err, optimizer.ErrSearchBudgetOverflow):
			p.recordError("optimizer", "search_overflow")
		case errors.Is(err, city.ErrBudgetOverflow):
			p.recordError("simulation", "budget_overflow")
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			p.recordError("simulation", "canceled")
		default:
			p.recordError("simulation", "run_failed")
		}
		return simulation.Report{}, fmt.Errorf("simulate %s: %w", s.Name, err)
	}

	if p.metrics != nil {
		p.metrics.RecordReport(report)
	}

	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := p.store.Put(storeCtx, report); err != nil {
		p.recordError("store", "put_failed")
		return simulation.Report{}, fmt.Errorf("store report: %w", err)
	}

	p.logger.Debug("report stored", "scenario", report.Scenario, "run_id", report.RunID)
	return report, nil
}

// Bootstrap loads the startup scenario from src and runs it once.
func (p *Planner) Bootstrap(ctx context.Context, src scenario.Source) (simulation.Report, error) {
	s, err := src.Load(ctx)
	if err != nil {
		p.recordError("source", "load_failed")
		return simulation.Report{}, fmt.Errorf("load scenario from %s source: %w", src.Name(), err)
	}

	p.logger.Info("startup scenario loaded",
		"source", src.Name(),
		"scenario", s.Name,
		"categories", len(s.Categories),
		"measures", len(s.Measures),
		"horizon", s.Horizon,
	)

	return p.Simulate(ctx, s)
}

func (p *Planner) recordError(component, reason string) {
	if p.metrics != nil {
		p.metrics.RecordError(component, reason)
	}
}
