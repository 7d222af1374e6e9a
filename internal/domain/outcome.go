package domain

import "errors"

// Stage names a step of the site analysis.
type Stage string

const (
	StageCollect      Stage = "collect"
	StageCoverage     Stage = "coverage"
	StageDescriptive  Stage = "descriptive_stats"
	StageExtremeDays  Stage = "extreme_days"
	StageReturnLevels Stage = "return_levels"
	StageDirections   Stage = "direction_bins"
)

// Status is the result of one stage for one source and variable.
type Status string

const (
	StatusOK      Status = "ok"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Outcome records what a stage did with one source (and variable, when the
// stage is per variable). Reason is empty for StatusOK.
type Outcome struct {
	Stage    Stage
	Source   string
	Variable Variable
	Status   Status
	Reason   string
}

func ok(stage Stage, source string, v Variable) Outcome {
	return Outcome{Stage: stage, Source: source, Variable: v, Status: StatusOK}
}

func skipped(stage Stage, source string, v Variable, reason string) Outcome {
	return Outcome{Stage: stage, Source: source, Variable: v, Status: StatusSkipped, Reason: reason}
}

func failed(stage Stage, source string, v Variable, err error) Outcome {
	return Outcome{Stage: stage, Source: source, Variable: v, Status: StatusFailed, Reason: err.Error()}
}

var (
	// ErrInsufficientData means a series is too short for the requested statistic.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrDegenerateSample means a sample has fewer than two values or no spread.
	ErrDegenerateSample = errors.New("degenerate sample")
	// ErrFitDiverged means the likelihood equations did not converge.
	ErrFitDiverged = errors.New("gumbel fit did not converge")
	// ErrInvalidReturnPeriod means a return period is not a finite value above one year.
	ErrInvalidReturnPeriod = errors.New("return period must be greater than 1 year")
)
