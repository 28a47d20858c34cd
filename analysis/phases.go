package analysis

import (
	"context"
	"errors"

	"github.com/poiesic/warroom/core"
)

// errPhaseSkipped signals that a phase was not applicable to this run,
// e.g. trend comparison with no prior briefing in the series. The phase
// stays pending and the pipeline moves on without emitting anything.
var errPhaseSkipped = errors.New("phase skipped")

// phaseSpec is one row of the pipeline's phase table. The runner walks
// the table in order; Fatal phases abort the run on failure, everything
// else is logged, marked failed, and skipped past.
type phaseSpec struct {
	Name  core.PhaseName
	Fatal bool

	// FatalPrefix prefixes the terminal error event for fatal phases.
	FatalPrefix string

	// FailureMessage, when non-empty, is emitted as a phase event after
	// a non-fatal failure so stream consumers see the pipeline moving on.
	FailureMessage string

	Run func(ctx context.Context, st *runState) error
}

func (r *Runner) phases() []phaseSpec {
	return []phaseSpec{
		{
			Name:        core.PhaseMateriality,
			Fatal:       true,
			FatalPrefix: "Materiality analysis failed",
			Run:         r.runMateriality,
		},
		{
			Name:           core.PhaseQuestions,
			FailureMessage: "Analyst questions unavailable, continuing...",
			Run:            r.runQuestions,
		},
		{
			Name: core.PhaseTrends,
			Run:  r.runTrends,
		},
		{
			Name: core.PhaseIndexing,
			Run:  r.runIndexing,
		},
	}
}
