package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kestrelfp/deal-allocator/internal/config"
	"github.com/kestrelfp/deal-allocator/pkg/core/calendar"
	"github.com/kestrelfp/deal-allocator/pkg/core/capacity"
	"github.com/kestrelfp/deal-allocator/pkg/core/model"
	"github.com/kestrelfp/deal-allocator/pkg/core/quota"
)

// CapacityView is one adviser's capacity picture: the full weekly profile
// and the earliest week a new deal could land, assuming no agreement
// constraints.
type CapacityView struct {
	Adviser          model.AdviserProfile
	Profile          *capacity.Profile
	EarliestOpenWeek calendar.WeekKey
}

// ViewCapacity builds the capacity profile for a single adviser so it can
// be inspected without allocating anything.
func ViewCapacity(
	ctx context.Context,
	crm CRMSource,
	leave LeaveSource,
	overrides quota.OverrideRepository,
	cfg *config.Config,
	logger *zap.Logger,
	adviserEmail string,
) (*CapacityView, error) {
	adviserEmail = strings.ToLower(adviserEmail)
	if adviserEmail == "" {
		return nil, fmt.Errorf("adviser email is required")
	}

	logger.Debug("Viewing adviser capacity", zap.String("adviser", adviserEmail))

	inputs, err := loadInputs(ctx, crm, leave, overrides, cfg, logger)
	if err != nil {
		return nil, err
	}

	var adviser *model.AdviserProfile
	for i := range inputs.advisers {
		if inputs.advisers[i].Email == adviserEmail {
			adviser = &inputs.advisers[i]
			break
		}
	}
	if adviser == nil {
		return nil, fmt.Errorf("adviser %s not found in roster", adviserEmail)
	}

	// An empty deal applies no agreement bound and stays out of the
	// backlog filter.
	result, err := inputs.computeFor(*adviser, model.Deal{})
	if err != nil {
		return nil, fmt.Errorf("failed to compute capacity for %s: %w", adviserEmail, err)
	}

	logger.Info("Capacity computed",
		zap.String("adviser", adviserEmail),
		zap.String("earliest_open_week", result.EarliestOpenWeek.Label()),
		zap.Int("profiled_weeks", result.Profile.Len()))

	return &CapacityView{
		Adviser:          *adviser,
		Profile:          result.Profile,
		EarliestOpenWeek: result.EarliestOpenWeek,
	}, nil
}
