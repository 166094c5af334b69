package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pharmaflow/internal/domain"
	"pharmaflow/internal/lp"
	"pharmaflow/internal/planner"
)

// PlanningService runs one optimization per call: build the LP from the
// table, solve it, then either extract the plan or diagnose why none
// exists. Each call owns its formulation end to end, so a single service
// value is safe for concurrent requests.
type PlanningService struct {
	solver  lp.Solver
	cfg     planner.Config
	timeout time.Duration
	logger  *zap.Logger
}

// NewPlanningService wires the default simplex backend.
func NewPlanningService(cfg planner.Config, timeout time.Duration, logger *zap.Logger) *PlanningService {
	return NewPlanningServiceWithSolver(lp.NewSimplexSolver(0), cfg, timeout, logger)
}

// NewPlanningServiceWithSolver injects a specific solver backend.
func NewPlanningServiceWithSolver(solver lp.Solver, cfg planner.Config, timeout time.Duration, logger *zap.Logger) *PlanningService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlanningService{solver: solver, cfg: cfg, timeout: timeout, logger: logger}
}

// Plan computes a distribution plan for the table. Infeasibility is a
// valid outcome carrying a diagnosis, not an error; errors mean the input
// was rejected or the solve itself broke.
func (s *PlanningService) Plan(ctx context.Context, table domain.Table) (*domain.PlanOutcome, error) {
	runID := uuid.NewString()
	log := s.logger.With(zap.String("run_id", runID))

	model, err := planner.Build(table, s.cfg)
	if err != nil {
		log.Warn("table rejected", zap.Error(err))
		return nil, fmt.Errorf("building model: %w", err)
	}

	f := model.Formulation()
	log.Info("model built",
		zap.Int("rows", len(table)),
		zap.Int("variables", f.NumVars()),
		zap.Int("constraints", f.NumConstraints()))

	solveCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		solveCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	started := time.Now()
	outcome, err := s.solver.Solve(solveCtx, f)
	elapsed := time.Since(started)
	if err != nil {
		log.Error("solve failed", zap.Error(err), zap.Duration("elapsed", elapsed))
		return nil, fmt.Errorf("solving model: %w", err)
	}

	out := &domain.PlanOutcome{
		RunID:       runID,
		SolveMillis: elapsed.Milliseconds(),
		DatasetInfo: table.Summarize(),
	}

	switch outcome.Status {
	case lp.StatusOptimal:
		result, err := model.Extract(outcome)
		if err != nil {
			log.Error("extraction failed", zap.Error(err))
			return nil, fmt.Errorf("extracting result: %w", err)
		}
		out.Status = domain.StatusOptimal
		out.Result = result
		log.Info("plan found",
			zap.Float64("total_cost", result.TotalCost),
			zap.Int("shipments", len(result.Shipments)),
			zap.Duration("elapsed", elapsed))

	case lp.StatusInfeasible:
		diagnosis, err := planner.Diagnose(table, s.cfg)
		if err != nil {
			return nil, fmt.Errorf("diagnosing infeasibility: %w", err)
		}
		out.Status = domain.StatusInfeasible
		out.Diagnosis = diagnosis
		log.Info("no feasible plan",
			zap.Int("findings", len(diagnosis.Findings)),
			zap.Duration("elapsed", elapsed))

	case lp.StatusUnbounded:
		log.Error("model unbounded", zap.Duration("elapsed", elapsed))
		return nil, domain.ErrUnboundedModel

	default:
		return nil, fmt.Errorf("solving model: unexpected status %s", outcome.Status)
	}

	return out, nil
}
