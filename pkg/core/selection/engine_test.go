package selection

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelfp/deal-allocator/pkg/core/calendar"
	"github.com/kestrelfp/deal-allocator/pkg/core/capacity"
	"github.com/kestrelfp/deal-allocator/pkg/core/model"
	"github.com/kestrelfp/deal-allocator/pkg/core/scheduler"
)

type fixedTarget int

func (f fixedTarget) WeeklyTarget(calendar.WeekKey) int { return int(f) }

var nowWeek = calendar.KeyFor(time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC))

func testRules() RuleTable {
	return NewRuleTable([]ServicePackageRule{
		{Name: "Wealth Builder", FilterHouseholds: true},
		{Name: "Retirement Ready", FilterHouseholds: false},
	})
}

func testAdviser(email string) model.AdviserProfile {
	return model.AdviserProfile{
		Email:            email,
		ServicePackages:  []string{"Wealth Builder", "Retirement Ready"},
		AcceptingClients: true,
	}
}

// resultWith builds a scheduling result with the given open week and a
// profile carrying the given clarify load in its first week.
func resultWith(week calendar.WeekKey, clarifyLoad int) *scheduler.Result {
	merged := map[calendar.WeekKey]*capacity.WeekRecord{
		nowWeek: {ClarifyCount: clarifyLoad},
	}
	profile := capacity.BuildProfile(merged, nowWeek, 8, fixedTarget(3))
	return &scheduler.Result{EarliestOpenWeek: week, Profile: profile}
}

func computeFixed(weeks map[string]*scheduler.Result) ComputeFunc {
	return func(_ context.Context, adviser model.AdviserProfile) (*scheduler.Result, error) {
		res, ok := weeks[adviser.Email]
		if !ok {
			return nil, errors.New("unexpected adviser")
		}
		return res, nil
	}
}

func TestIsEligible_PackageMustMatch(t *testing.T) {
	rules := testRules()
	adviser := testAdviser("a@kestrelfp.com")

	assert.True(t, rules.IsEligible(adviser, model.Deal{ServicePackage: "Retirement Ready"}))
	assert.False(t, rules.IsEligible(adviser, model.Deal{ServicePackage: "Estate Planning"}))
}

func TestIsEligible_NotAcceptingClients(t *testing.T) {
	adviser := testAdviser("a@kestrelfp.com")
	adviser.AcceptingClients = false

	assert.False(t, testRules().IsEligible(adviser, model.Deal{ServicePackage: "Retirement Ready"}))
}

func TestIsEligible_HouseholdFilterOnlyWhereRuleRequires(t *testing.T) {
	rules := testRules()
	adviser := testAdviser("a@kestrelfp.com")
	adviser.HouseholdTypes = []string{"Family"}

	// Wealth Builder filters households
	assert.True(t, rules.IsEligible(adviser, model.Deal{ServicePackage: "Wealth Builder", HouseholdType: "Family"}))
	assert.False(t, rules.IsEligible(adviser, model.Deal{ServicePackage: "Wealth Builder", HouseholdType: "Single"}))

	// Retirement Ready ignores household type entirely
	assert.True(t, rules.IsEligible(adviser, model.Deal{ServicePackage: "Retirement Ready", HouseholdType: "Single"}))
}

func TestIsEligible_EmptyHouseholdPreferenceAcceptsAll(t *testing.T) {
	adviser := testAdviser("a@kestrelfp.com")
	assert.True(t, testRules().IsEligible(adviser, model.Deal{ServicePackage: "Wealth Builder", HouseholdType: "Single"}))
}

func TestSelectAdviser_NoEligibleAdviserIsFatal(t *testing.T) {
	engine := NewEngine(testRules(), 2)

	_, err := engine.SelectAdviser(
		context.Background(),
		model.Deal{ServicePackage: "Estate Planning"},
		[]model.AdviserProfile{testAdviser("a@kestrelfp.com")},
		computeFixed(nil),
	)

	assert.ErrorIs(t, err, ErrNoEligibleAdviser)
}

func TestSelectAdviser_EarliestWeekWins(t *testing.T) {
	engine := NewEngine(testRules(), 2)
	deal := model.Deal{ServicePackage: "Retirement Ready"}

	results := map[string]*scheduler.Result{
		"a@kestrelfp.com": resultWith(nowWeek.Add(4), 0),
		"b@kestrelfp.com": resultWith(nowWeek.Add(2), 0),
	}

	outcome, err := engine.SelectAdviser(
		context.Background(),
		deal,
		[]model.AdviserProfile{testAdviser("a@kestrelfp.com"), testAdviser("b@kestrelfp.com")},
		computeFixed(results),
	)

	require.NoError(t, err)
	assert.Equal(t, "b@kestrelfp.com", outcome.Chosen.AdviserEmail)
	require.Len(t, outcome.Ranked, 2)
	assert.Equal(t, "a@kestrelfp.com", outcome.Ranked[1].AdviserEmail)
}

func TestSelectAdviser_TieBrokenByWorkloadRatio(t *testing.T) {
	// Same open week; adviser X carries less clarify load relative to
	// target, so X must win deterministically.
	engine := NewEngine(testRules(), 2)
	week := nowWeek.Add(2)

	results := map[string]*scheduler.Result{
		"x@kestrelfp.com": resultWith(week, 2), // lighter load
		"y@kestrelfp.com": resultWith(week, 5), // heavier load
	}

	outcome, err := engine.SelectAdviser(
		context.Background(),
		model.Deal{ServicePackage: "Retirement Ready"},
		[]model.AdviserProfile{testAdviser("y@kestrelfp.com"), testAdviser("x@kestrelfp.com")},
		computeFixed(results),
	)

	require.NoError(t, err)
	assert.Equal(t, "x@kestrelfp.com", outcome.Chosen.AdviserEmail)
}

func TestSelectAdviser_FinalTieBrokenByEmail(t *testing.T) {
	engine := NewEngine(testRules(), 2)
	week := nowWeek.Add(2)

	results := map[string]*scheduler.Result{
		"carol@kestrelfp.com": resultWith(week, 1),
		"alice@kestrelfp.com": resultWith(week, 1),
	}

	outcome, err := engine.SelectAdviser(
		context.Background(),
		model.Deal{ServicePackage: "Retirement Ready"},
		[]model.AdviserProfile{testAdviser("carol@kestrelfp.com"), testAdviser("alice@kestrelfp.com")},
		computeFixed(results),
	)

	require.NoError(t, err)
	assert.Equal(t, "alice@kestrelfp.com", outcome.Chosen.AdviserEmail)
}

func TestSelectAdviser_FailedAdviserIsExcludedNotFatal(t *testing.T) {
	engine := NewEngine(testRules(), 2)
	week := nowWeek.Add(2)

	compute := func(_ context.Context, adviser model.AdviserProfile) (*scheduler.Result, error) {
		if adviser.Email == "broken@kestrelfp.com" {
			return nil, errors.New("malformed profile")
		}
		return resultWith(week, 0), nil
	}

	outcome, err := engine.SelectAdviser(
		context.Background(),
		model.Deal{ServicePackage: "Retirement Ready"},
		[]model.AdviserProfile{testAdviser("broken@kestrelfp.com"), testAdviser("ok@kestrelfp.com")},
		compute,
	)

	require.NoError(t, err)
	assert.Equal(t, "ok@kestrelfp.com", outcome.Chosen.AdviserEmail)
	require.Len(t, outcome.Failures, 1)
	assert.Equal(t, "broken@kestrelfp.com", outcome.Failures[0].AdviserEmail)
}

func TestSelectAdviser_AgreementConstraintDropsEarlyCandidates(t *testing.T) {
	engine := NewEngine(testRules(), 2)

	// Agreement starts such that the constraint week is nowWeek+3
	deal := model.Deal{
		ServicePackage: "Retirement Ready",
		AgreementStart: nowWeek.Add(2).Time(),
	}

	results := map[string]*scheduler.Result{
		"early@kestrelfp.com": resultWith(nowWeek.Add(2), 0), // before the constraint
		"later@kestrelfp.com": resultWith(nowWeek.Add(3), 0),
	}

	outcome, err := engine.SelectAdviser(
		context.Background(),
		deal,
		[]model.AdviserProfile{testAdviser("early@kestrelfp.com"), testAdviser("later@kestrelfp.com")},
		computeFixed(results),
	)

	require.NoError(t, err)
	assert.Equal(t, "later@kestrelfp.com", outcome.Chosen.AdviserEmail)
	assert.Len(t, outcome.Ranked, 1)
}

func TestSelectAdviser_AllCandidatesBeforeConstraintIsFatal(t *testing.T) {
	engine := NewEngine(testRules(), 2)
	deal := model.Deal{
		ServicePackage: "Retirement Ready",
		AgreementStart: nowWeek.Add(6).Time(),
	}

	results := map[string]*scheduler.Result{
		"a@kestrelfp.com": resultWith(nowWeek.Add(2), 0),
	}

	_, err := engine.SelectAdviser(
		context.Background(),
		deal,
		[]model.AdviserProfile{testAdviser("a@kestrelfp.com")},
		computeFixed(results),
	)

	assert.ErrorIs(t, err, ErrNoEligibleAdviser)
}
