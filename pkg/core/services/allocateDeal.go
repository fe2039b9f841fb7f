package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kestrelfp/deal-allocator/internal/config"
	"github.com/kestrelfp/deal-allocator/pkg/core/model"
	"github.com/kestrelfp/deal-allocator/pkg/core/quota"
	"github.com/kestrelfp/deal-allocator/pkg/core/scheduler"
	"github.com/kestrelfp/deal-allocator/pkg/core/selection"
	"github.com/kestrelfp/deal-allocator/pkg/db"
)

// AllocateDealResult is the outcome of one allocation pass.
type AllocateDealResult struct {
	Allocation *db.Allocation
	Outcome    *selection.Outcome
	DryRun     bool
}

// AllocateDeal picks the adviser who can absorb the deal earliest and
// records the decision. It loads the roster, meetings, pipeline, quota
// overrides, leave and closures, runs the selection engine across every
// eligible adviser, and persists an audit record unless dryRun is set.
func AllocateDeal(
	ctx context.Context,
	crm CRMSource,
	leave LeaveSource,
	overrides quota.OverrideRepository,
	allocations db.AllocationStore,
	cfg *config.Config,
	logger *zap.Logger,
	deal model.Deal,
	dryRun bool,
) (*AllocateDealResult, error) {
	if deal.ID == "" {
		return nil, fmt.Errorf("deal id is required")
	}
	if deal.ServicePackage == "" {
		return nil, fmt.Errorf("deal service package is required")
	}

	logger.Debug("Allocating deal",
		zap.String("deal_id", deal.ID),
		zap.String("service_package", deal.ServicePackage),
		zap.String("household_type", deal.HouseholdType),
		zap.Bool("dry_run", dryRun))

	inputs, err := loadInputs(ctx, crm, leave, overrides, cfg, logger)
	if err != nil {
		return nil, err
	}

	engine := selection.NewEngine(ruleTable(cfg.ServicePackages), cfg.MaxConcurrentAdvisers)

	outcome, err := engine.SelectAdviser(ctx, deal, inputs.advisers,
		func(ctx context.Context, adviser model.AdviserProfile) (*scheduler.Result, error) {
			return inputs.computeFor(adviser, deal)
		})
	if err != nil {
		return nil, fmt.Errorf("failed to select adviser for deal %s: %w", deal.ID, err)
	}

	for _, failure := range outcome.Failures {
		logger.Warn("Adviser excluded from ranking after computation failure",
			zap.String("adviser", failure.AdviserEmail),
			zap.Error(failure.Err))
	}

	chosen := outcome.Chosen
	logger.Info("Adviser selected",
		zap.String("deal_id", deal.ID),
		zap.String("adviser", chosen.AdviserEmail),
		zap.String("open_week", chosen.EarliestOpenWeek.Label()),
		zap.Int("candidates", len(outcome.Ranked)))

	allocation := &db.Allocation{
		ID:               uuid.New().String(),
		DealID:           deal.ID,
		AdviserEmail:     chosen.AdviserEmail,
		OpenWeek:         chosen.EarliestOpenWeek.Label(),
		RankedCandidates: rankedEmails(outcome),
		CreatedAt:        time.Now().UTC(),
	}

	if dryRun {
		logger.Info("Dry run, allocation not persisted", zap.String("deal_id", deal.ID))
		return &AllocateDealResult{Allocation: allocation, Outcome: outcome, DryRun: true}, nil
	}

	if err := allocations.InsertAllocation(ctx, allocation); err != nil {
		return nil, fmt.Errorf("failed to persist allocation for deal %s: %w", deal.ID, err)
	}

	logger.Debug("Allocation persisted", zap.String("allocation_id", allocation.ID))

	return &AllocateDealResult{Allocation: allocation, Outcome: outcome}, nil
}

// rankedEmails renders the ranked candidate list for the audit record,
// best candidate first.
func rankedEmails(outcome *selection.Outcome) string {
	emails := make([]string, len(outcome.Ranked))
	for i, candidate := range outcome.Ranked {
		emails[i] = candidate.AdviserEmail
	}
	return strings.Join(emails, ",")
}
