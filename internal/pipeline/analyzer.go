package pipeline

import (
	"log/slog"

	"github.com/Ciel-et-Terre-International/Wind-Data-v1/internal/domain"
	"github.com/Ciel-et-Terre-International/Wind-Data-v1/internal/observability"
)

// Analyzer runs every statistics stage over one site's source collection.
// Stages are independent: a source skipped by one stage is still offered to
// the next.
type Analyzer struct {
	estimator *domain.ReturnLevelEstimator
	binWidth  int
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewAnalyzer creates an Analyzer. minYears gates the Gumbel fit; binWidth is
// the wind-rose sector width in degrees.
func NewAnalyzer(minYears, binWidth int, logger *slog.Logger, metrics *observability.Metrics) *Analyzer {
	return &Analyzer{
		estimator: domain.NewReturnLevelEstimator(minYears, logger),
		binWidth:  binWidth,
		logger:    logger,
		metrics:   metrics,
	}
}

// Analyze sequences coverage, descriptive statistics, extreme days (mean then
// gust), return levels (mean then gust) and direction bins. It never fails;
// everything a stage could not compute is described in the report outcomes.
func (a *Analyzer) Analyze(site domain.Site, c domain.SourceCollection) domain.SiteReport {
	r := domain.SiteReport{Site: site, Sources: c.Names(), Empty: c.Empty()}
	if r.Empty {
		return r
	}
	th := site.Thresholds

	a.stage(domain.StageCoverage, &r, func() []domain.Outcome {
		var out []domain.Outcome
		r.Coverage, out = domain.AnalyzeCoverage(c)
		return out
	})

	a.stage(domain.StageDescriptive, &r, func() []domain.Outcome {
		var out []domain.Outcome
		r.Descriptive, out = domain.AnalyzeDescriptive(c)
		return out
	})

	a.stage(domain.StageExtremeDays, &r, func() []domain.Outcome {
		var out []domain.Outcome
		for _, v := range domain.WindVariables {
			res := domain.AnalyzeExtremeDays(c, v, th.Threshold(v))
			r.ExtremeDays = append(r.ExtremeDays, res)
			out = append(out, res.Outcomes...)
		}
		return out
	})

	a.stage(domain.StageReturnLevels, &r, func() []domain.Outcome {
		var out []domain.Outcome
		for _, v := range domain.WindVariables {
			results, outcomes := a.estimator.EstimateAll(c, v, th.Threshold(v), th.ReturnPeriods)
			r.ReturnLevels = append(r.ReturnLevels, results...)
			out = append(out, outcomes...)
			for _, res := range results {
				if res.Outcome.Status == domain.StatusFailed && res.Fit == nil {
					a.metrics.GumbelFitFailures.Inc()
				}
			}
		}
		return out
	})

	a.stage(domain.StageDirections, &r, func() []domain.Outcome {
		var out []domain.Outcome
		r.Directions, out = domain.AnalyzeDirections(c, a.binWidth)
		for _, d := range r.Directions {
			a.logger.Debug("direction bins computed", "bins", d.String())
		}
		return out
	})

	return r
}

// stage times fn, records its outcomes on the report and in metrics, and logs
// every source the stage could not serve. Return-level warnings are logged by
// the estimator itself.
func (a *Analyzer) stage(stage domain.Stage, r *domain.SiteReport, fn func() []domain.Outcome) {
	start := clock.Now()
	outcomes := fn()
	a.metrics.StageDuration.WithLabelValues(string(stage)).Observe(clock.Since(start).Seconds())

	for _, o := range outcomes {
		a.metrics.StageOutcomes.WithLabelValues(string(o.Stage), string(o.Status)).Inc()
		if o.Status == domain.StatusOK || stage == domain.StageReturnLevels {
			continue
		}
		a.logger.Warn("stage skipped source",
			"site", r.Site.Name,
			"stage", o.Stage,
			"source", o.Source,
			"variable", o.Variable,
			"status", o.Status,
			"reason", o.Reason,
		)
	}
	r.Outcomes = append(r.Outcomes, outcomes...)
}
