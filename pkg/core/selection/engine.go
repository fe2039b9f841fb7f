package selection

import (
	"context"
	"errors"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/kestrelfp/deal-allocator/pkg/core/calendar"
	"github.com/kestrelfp/deal-allocator/pkg/core/model"
	"github.com/kestrelfp/deal-allocator/pkg/core/scheduler"
)

// ErrNoEligibleAdviser is returned when the adviser population yields no
// candidate for a deal. This is fatal for the allocation; nothing is
// silently defaulted.
var ErrNoEligibleAdviser = errors.New("no eligible adviser for deal")

// DefaultMaxConcurrent bounds the per-adviser fan-out when the engine is
// built without an explicit limit.
const DefaultMaxConcurrent = 8

// ComputeFunc produces one adviser's scheduling result. Each invocation
// is independent and side-effect free, so the engine runs them
// concurrently.
type ComputeFunc func(ctx context.Context, adviser model.AdviserProfile) (*scheduler.Result, error)

// CandidateFailure records an adviser whose computation failed. Failures
// exclude the adviser from ranking but never abort the selection pass.
type CandidateFailure struct {
	AdviserEmail string
	Err          error
}

// Outcome is the full result of a selection pass: the chosen adviser's
// scheduling result, every ranked candidate for audit, and any
// per-adviser failures.
type Outcome struct {
	Chosen   *scheduler.Result
	Ranked   []*scheduler.Result
	Failures []CandidateFailure
}

// Engine filters, schedules, and ranks advisers for incoming deals.
type Engine struct {
	rules         RuleTable
	maxConcurrent int
}

// NewEngine builds a selection engine. maxConcurrent bounds the
// per-adviser fan-out; values below one fall back to the default.
func NewEngine(rules RuleTable, maxConcurrent int) *Engine {
	if maxConcurrent < 1 {
		maxConcurrent = DefaultMaxConcurrent
	}
	return &Engine{rules: rules, maxConcurrent: maxConcurrent}
}

// SelectAdviser picks the single adviser who can absorb the deal
// earliest. Eligible advisers are scheduled concurrently, then ranked by
// earliest open week, workload ratio, and finally adviser email so the
// outcome is deterministic.
func (e *Engine) SelectAdviser(
	ctx context.Context,
	deal model.Deal,
	advisers []model.AdviserProfile,
	compute ComputeFunc,
) (*Outcome, error) {
	var eligible []model.AdviserProfile
	for _, adviser := range advisers {
		if e.rules.IsEligible(adviser, deal) {
			eligible = append(eligible, adviser)
		}
	}
	if len(eligible) == 0 {
		return nil, ErrNoEligibleAdviser
	}

	results := make([]*scheduler.Result, len(eligible))
	failures := make([]error, len(eligible))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.maxConcurrent)
	for i, adviser := range eligible {
		i, adviser := i, adviser
		g.Go(func() error {
			res, err := compute(gctx, adviser)
			if err != nil {
				// Isolate the failure to this adviser; the pass continues.
				failures[i] = err
				return nil
			}
			res.AdviserEmail = adviser.Email
			results[i] = res
			return nil
		})
	}
	// Workers never return errors, but Wait also observes ctx cancellation.
	if err := g.Wait(); err != nil {
		return nil, err
	}

	outcome := &Outcome{}
	var candidates []*scheduler.Result
	for i, res := range results {
		if failures[i] != nil {
			outcome.Failures = append(outcome.Failures, CandidateFailure{
				AdviserEmail: eligible[i].Email,
				Err:          failures[i],
			})
			continue
		}
		candidates = append(candidates, res)
	}

	// Candidates that cannot honor the agreement-start constraint are out.
	if agreementWeek, ok := deal.AgreementWeek(); ok {
		kept := candidates[:0]
		for _, c := range candidates {
			if c.EarliestOpenWeek >= agreementWeek {
				kept = append(kept, c)
			}
		}
		candidates = kept
	}

	if len(candidates) == 0 {
		return nil, ErrNoEligibleAdviser
	}

	rankCandidates(candidates)
	outcome.Ranked = candidates
	outcome.Chosen = candidates[0]
	return outcome, nil
}

// rankCandidates orders candidates best-first: earliest open week, then
// lowest workload ratio up to the winning week (most relative headroom),
// then adviser email for a stable final order.
func rankCandidates(candidates []*scheduler.Result) {
	winningWeek := candidates[0].EarliestOpenWeek
	for _, c := range candidates[1:] {
		if c.EarliestOpenWeek < winningWeek {
			winningWeek = c.EarliestOpenWeek
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.EarliestOpenWeek != b.EarliestOpenWeek {
			return a.EarliestOpenWeek < b.EarliestOpenWeek
		}
		ra, rb := workloadRatio(a, winningWeek), workloadRatio(b, winningWeek)
		if ra != rb {
			return ra < rb
		}
		return a.AdviserEmail < b.AdviserEmail
	})
}

// workloadRatio measures how loaded an adviser already is relative to
// quota over every profiled week up to and including the winning week.
// Lower means more headroom.
func workloadRatio(res *scheduler.Result, upTo calendar.WeekKey) float64 {
	var totalClarify, totalTarget float64
	for _, week := range res.Profile.Weeks() {
		if week > upTo {
			break
		}
		row := res.Profile.Record(week)
		totalClarify += float64(row.ClarifyCount)
		totalTarget += row.TargetCapacity / 2
	}
	if totalTarget < 1 {
		totalTarget = 1
	}
	return totalClarify / totalTarget
}
