// Package saga runs cross-store cascades as ordered steps that each know how
// to undo themselves.
package saga

import (
	"context"

	"github.com/erazemk/dresi/internal/apperr"
)

// Step is one forward action and its compensating action. Compensate may be
// nil for steps that cannot be undone.
type Step struct {
	Name       string
	Forward    func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// Mode selects how Run reacts to a failed step.
type Mode int

const (
	// BestEffort runs every step and collects failures. Applied steps stay applied.
	BestEffort Mode = iota
	// Compensate stops at the first failure and undoes applied steps in reverse order.
	Compensate
)

// Result describes what a run changed.
type Result struct {
	Applied            []string
	Failed             []apperr.StepFailure
	Compensated        []string
	CompensationFailed []apperr.StepFailure

	applied []Step
}

// OK reports whether every step was applied.
func (r *Result) OK() bool {
	return len(r.Failed) == 0
}

// Err returns a *apperr.PartialError describing failed steps, or nil.
func (r *Result) Err(op string) error {
	if r.OK() {
		return nil
	}
	return &apperr.PartialError{Op: op, Failed: r.Failed}
}

// Rollback compensates every applied step in reverse order. It is used when
// a step after the saga, such as persisting the primary record, fails.
func (r *Result) Rollback(ctx context.Context) {
	for i := len(r.applied) - 1; i >= 0; i-- {
		s := r.applied[i]
		if s.Compensate == nil {
			continue
		}
		if err := s.Compensate(ctx); err != nil {
			r.CompensationFailed = append(r.CompensationFailed, apperr.StepFailure{Step: s.Name, Err: err})
			continue
		}
		r.Compensated = append(r.Compensated, s.Name)
	}
	r.applied = nil
	r.Applied = nil
}

// Run executes steps in order according to mode.
func Run(ctx context.Context, mode Mode, steps ...Step) *Result {
	res := &Result{}
	for _, s := range steps {
		if err := s.Forward(ctx); err != nil {
			res.Failed = append(res.Failed, apperr.StepFailure{Step: s.Name, Err: err})
			if mode == Compensate {
				res.Rollback(ctx)
				return res
			}
			continue
		}
		res.applied = append(res.applied, s)
		res.Applied = append(res.Applied, s.Name)
	}
	return res
}
