package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kestrelfp/deal-allocator/internal/config"
	"github.com/kestrelfp/deal-allocator/pkg/core/attendance"
	"github.com/kestrelfp/deal-allocator/pkg/core/calendar"
	"github.com/kestrelfp/deal-allocator/pkg/core/capacity"
	"github.com/kestrelfp/deal-allocator/pkg/core/model"
	"github.com/kestrelfp/deal-allocator/pkg/core/quota"
	"github.com/kestrelfp/deal-allocator/pkg/core/scheduler"
	"github.com/kestrelfp/deal-allocator/pkg/core/selection"
)

// historyLookbackWeeks is how far before the current week profiles reach
// back so the scheduler can seed its backlog and running totals.
const historyLookbackWeeks = 4

// CRMSource supplies the adviser roster, capacity-consuming meetings and
// the open deal pipeline. Implemented by crmclient.Client.
type CRMSource interface {
	ListAdvisers(ctx context.Context) ([]model.AdviserProfile, error)
	ListMeetings(ctx context.Context, from time.Time) ([]model.Meeting, error)
	ListOpenDeals(ctx context.Context) ([]model.Deal, error)
}

// LeaveSource supplies per-adviser out-of-office intervals from the shared
// leave calendar. Implemented by calendarclient.Client.
type LeaveSource interface {
	ListLeaveIntervals(calendarID, keyword string, from, until time.Time) (map[string][]attendance.Interval, error)
}

// allocationInputs is everything the per-adviser capacity computation
// needs, loaded once per service call.
type allocationInputs struct {
	now      time.Time
	nowWeek  calendar.WeekKey
	advisers []model.AdviserProfile

	meetings  []model.Meeting
	openDeals []model.Deal
	overrides []quota.OverrideEntry

	// leaveByEmail holds raw OOO intervals keyed by adviser email.
	leaveByEmail map[string][]attendance.Interval

	// closureWeeks is the office-wide closure classification, applied to
	// every adviser on top of personal leave.
	closureWeeks map[calendar.WeekKey]attendance.Classification

	cfg *config.Config
}

// loadInputs gathers the roster, meetings, pipeline, overrides, leave and
// closures for one scheduling pass. The observation window runs from the
// history lookback to a little past the scheduling horizon.
func loadInputs(
	ctx context.Context,
	crm CRMSource,
	leave LeaveSource,
	overrides quota.OverrideRepository,
	cfg *config.Config,
	logger *zap.Logger,
) (*allocationInputs, error) {
	now := time.Now().UTC()
	nowWeek := calendar.KeyFor(now)

	windowStart := nowWeek.Add(-historyLookbackWeeks).Time()
	windowEnd := nowWeek.Add(cfg.HorizonWeeks + 2).Time()

	logger.Debug("Loading allocation inputs",
		zap.String("window_start", windowStart.Format("2006-01-02")),
		zap.String("window_end", windowEnd.Format("2006-01-02")))

	advisers, err := crm.ListAdvisers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch adviser roster: %w", err)
	}
	logger.Debug("Fetched adviser roster", zap.Int("count", len(advisers)))

	meetings, err := crm.ListMeetings(ctx, windowStart)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch meetings: %w", err)
	}
	logger.Debug("Fetched meetings", zap.Int("count", len(meetings)))

	openDeals, err := crm.ListOpenDeals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch open deals: %w", err)
	}
	logger.Debug("Fetched open deals", zap.Int("count", len(openDeals)))

	overrideEntries, err := overrides.LoadOverrides(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load quota overrides: %w", err)
	}
	logger.Debug("Loaded quota overrides", zap.Int("count", len(overrideEntries)))

	leaveByEmail, err := leave.ListLeaveIntervals(cfg.LeaveCalendarID, cfg.OOOKeyword, windowStart, windowEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch leave calendar: %w", err)
	}
	logger.Debug("Fetched leave intervals", zap.Int("advisers_with_leave", len(leaveByEmail)))

	closureIntervals, err := attendance.ExpandClosureRules(cfg.OfficeClosureRules, windowStart, windowEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to expand office closure rules: %w", err)
	}
	closureWeeks := attendance.ClassifyIntervals(closureIntervals)

	return &allocationInputs{
		now:          now,
		nowWeek:      nowWeek,
		advisers:     advisers,
		meetings:     meetings,
		openDeals:    openDeals,
		overrides:    overrideEntries,
		leaveByEmail: leaveByEmail,
		closureWeeks: closureWeeks,
		cfg:          cfg,
	}, nil
}

// computeFor builds one adviser's capacity profile from the loaded inputs
// and walks it for the earliest open week. The deal being allocated is
// kept out of its own backlog.
func (in *allocationInputs) computeFor(adviser model.AdviserProfile, deal model.Deal) (*scheduler.Result, error) {
	resolver := quota.NewResolver(adviser, quota.FilterByAdviser(in.overrides, adviser.Email), in.now)

	var adviserMeetings []model.Meeting
	for _, m := range in.meetings {
		if m.OwnerID == adviser.OwnerID {
			adviserMeetings = append(adviserMeetings, m)
		}
	}

	var adviserDeals []model.Deal
	for _, d := range in.openDeals {
		if d.AdviserEmail == adviser.Email && d.ID != deal.ID {
			adviserDeals = append(adviserDeals, d)
		}
	}

	oooWeeks := attendance.CombineWeeks(
		attendance.ClassifyIntervals(in.leaveByEmail[adviser.Email]),
		in.closureWeeks,
	)

	merged := capacity.MergeSchedule(
		capacity.CountMeetingsByWeek(adviserMeetings),
		oooWeeks,
		capacity.BacklogByWeek(adviserDeals),
	)

	minWeek := in.nowWeek.Add(-historyLookbackWeeks)
	for week := range merged {
		if week < minWeek {
			minWeek = week
		}
	}

	profile := capacity.BuildProfile(merged, minWeek, in.cfg.HorizonWeeks, resolver)

	params := scheduler.Params{
		NowWeek: in.nowWeek,
		Targets: resolver,
	}
	params.AvailabilityStartWeek, params.HasAvailabilityStart = adviser.AvailabilityStartWeek(in.now)
	params.AgreementWeek, params.HasAgreementWeek = deal.AgreementWeek()

	return &scheduler.Result{
		AdviserEmail:     adviser.Email,
		EarliestOpenWeek: scheduler.FindEarliestOpenWeek(profile, params),
		Profile:          profile,
	}, nil
}

// ruleTable converts the configured service package rules into the
// selection engine's form.
func ruleTable(rules []config.ServicePackageRule) selection.RuleTable {
	converted := make([]selection.ServicePackageRule, len(rules))
	for i, r := range rules {
		converted[i] = selection.ServicePackageRule{
			Name:             r.Name,
			FilterHouseholds: r.FilterHouseholds,
		}
	}
	return selection.NewRuleTable(converted)
}
