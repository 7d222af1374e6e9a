package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/Ciel-et-Terre-International/Wind-Data-v1/internal/domain"
	"github.com/Ciel-et-Terre-International/Wind-Data-v1/internal/observability"
	"github.com/Ciel-et-Terre-International/Wind-Data-v1/internal/report"
)

// SourceLoader reads the raw per-source tables of a site.
type SourceLoader interface {
	LoadSources(ctx context.Context, site domain.Site) (map[string]domain.RawTable, error)
}

// ArtifactWriter persists the result tables of a site.
type ArtifactWriter interface {
	WriteTables(ctx context.Context, site domain.Site, tables []report.Table) error
}

// SeriesWriter exports the harmonized source collection of a site.
type SeriesWriter interface {
	WriteSeries(ctx context.Context, site domain.Site, c domain.SourceCollection) error
}

// BatchExtractor reads up to batchSize raw analysis requests.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawRequest, error)
}

// RequestDecoder turns a raw message into an analysis request.
type RequestDecoder interface {
	Decode(ctx context.Context, raw domain.RawRequest) (domain.AnalysisRequest, error)
}

// ResultLoader publishes the tables produced for one request.
type ResultLoader interface {
	LoadResults(ctx context.Context, result report.Result) error
}

// Stages wires the collaborators of a Pipeline. Sources is always required;
// Requests, Decoder and Results are only needed by Run.
type Stages struct {
	Sources   SourceLoader
	Artifacts []ArtifactWriter
	Series    SeriesWriter
	Requests  BatchExtractor
	Decoder   RequestDecoder
	Results   ResultLoader
}

// Pipeline loads, analyzes and writes sites, either one at a time (RunSite) or
// as a worker consuming analysis requests (Run).
type Pipeline struct {
	stages    Stages
	analyzer  *Analyzer
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
	lastRun   atomic.Pointer[domain.RunSummary]
	batchSize int
}

// New creates a Pipeline with the given stages and observability.
func New(stages Stages, analyzer *Analyzer, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	return &Pipeline{
		stages:    stages,
		analyzer:  analyzer,
		logger:    logger,
		metrics:   metrics,
		batchSize: batchSize,
	}
}

// CheckReadiness returns nil if the worker has completed at least one request,
// or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not completed any analysis request yet")
	}
	return nil
}

// LastRun returns the summary of the most recently completed request.
func (p *Pipeline) LastRun() (domain.RunSummary, bool) {
	last := p.lastRun.Load()
	if last == nil {
		return domain.RunSummary{}, false
	}
	return *last, true
}

// RunSite analyzes one site and hands the result tables to every artifact
// writer. A site without usable sources is a no-op: the returned report has
// Empty set and nothing is written. Only I/O failures are returned as errors.
func (p *Pipeline) RunSite(ctx context.Context, site domain.Site) (domain.SiteReport, []report.Table, error) {
	log := p.logger.With("site", site.Name)

	raw, err := p.stages.Sources.LoadSources(ctx, site)
	if err != nil {
		p.metrics.SiteRuns.WithLabelValues("error").Inc()
		return domain.SiteReport{}, nil, fmt.Errorf("load sources for %s: %w", site.Name, err)
	}

	collection, collected := domain.NewSourceCollection(raw, log)
	for _, o := range collected {
		p.metrics.StageOutcomes.WithLabelValues(string(o.Stage), string(o.Status)).Inc()
	}
	p.metrics.SourcesLoaded.Set(float64(collection.Len()))

	if collection.Empty() {
		log.Warn("no usable sources, nothing to analyze", "tables", len(raw))
		p.metrics.SiteRuns.WithLabelValues("empty").Inc()
		return domain.SiteReport{Site: site, Empty: true, Outcomes: collected}, nil, nil
	}

	log.Info("analyzing site", "sources", collection.Names())
	rep := p.analyzer.Analyze(site, collection)
	rep.Outcomes = append(append([]domain.Outcome(nil), collected...), rep.Outcomes...)

	tables := report.Build(rep)
	for _, w := range p.stages.Artifacts {
		if err := w.WriteTables(ctx, site, tables); err != nil {
			p.metrics.SiteRuns.WithLabelValues("error").Inc()
			return rep, tables, fmt.Errorf("write artifacts for %s: %w", site.Name, err)
		}
		p.metrics.ArtifactsWritten.Add(float64(len(tables)))
	}
	if p.stages.Series != nil {
		if err := p.stages.Series.WriteSeries(ctx, site, collection); err != nil {
			p.metrics.SiteRuns.WithLabelValues("error").Inc()
			return rep, tables, fmt.Errorf("write series for %s: %w", site.Name, err)
		}
	}

	p.metrics.SiteRuns.WithLabelValues("analyzed").Inc()
	log.Info("site analyzed", "tables", len(tables), "outcomes", len(rep.Outcomes))
	return rep, tables, nil
}

// Run executes the request loop until the context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	if p.stages.Requests == nil || p.stages.Decoder == nil || p.stages.Results == nil {
		return errors.New("pipeline has no request transport configured")
	}

	p.logger.Info("pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		default:
		}

		if !p.processBatch(ctx, &backoff, maxBackoff) {
			return nil
		}
	}
}

// processBatch runs one extract-analyze-publish cycle. Returns false if the pipeline should stop.
func (p *Pipeline) processBatch(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	batch, err := p.stages.Requests.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("extract batch failed", "error", err)
		return p.backoffOrStop(ctx, backoff, maxBackoff)
	}

	if len(batch) == 0 {
		return ctx.Err() == nil
	}

	p.metrics.JobsConsumed.Add(float64(len(batch)))
	p.metrics.BatchSize.Observe(float64(len(batch)))
	*backoff = 200 * time.Millisecond

	for _, raw := range batch {
		if !p.handleRequest(ctx, raw, backoff, maxBackoff) {
			return false
		}
	}
	return true
}

// handleRequest decodes, analyzes and publishes one request, committing its
// offset once it is fully handled. Requests that cannot be decoded or whose
// site cannot be read are committed and dropped. Publishing is retried until
// it succeeds, so later offsets are never committed past an unpublished
// request. Returns false if the pipeline should stop.
func (p *Pipeline) handleRequest(ctx context.Context, raw domain.RawRequest, backoff *time.Duration, maxBackoff time.Duration) bool {
	req, err := p.stages.Decoder.Decode(ctx, raw)
	if err != nil {
		p.logger.Warn("decode failed, skipping request",
			"error", err,
			"topic", raw.Topic,
			"partition", raw.Partition,
			"offset", raw.Offset,
		)
		p.commitOffset(ctx, raw)
		return true
	}

	rep, tables, err := p.RunSite(ctx, req.Site)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("analysis failed, skipping request", "error", err, "request_id", req.ID, "site", req.Site.Name)
		p.commitOffset(ctx, raw)
		return true
	}

	if !rep.Empty {
		result := report.Result{
			RequestID:   req.ID,
			Site:        req.Site.Name,
			Tables:      tables,
			ProcessedAt: clock.Now().UTC(),
		}
		if !p.publish(ctx, result, backoff, maxBackoff) {
			return false
		}
	}

	p.commitOffset(ctx, raw)
	p.lastRun.Store(&domain.RunSummary{
		RequestID:   req.ID,
		Site:        req.Site.Name,
		CompletedAt: clock.Now().UTC(),
		Empty:       rep.Empty,
		Tables:      len(tables),
		Outcomes:    domain.CountOutcomes(rep.Outcomes),
	})
	p.ready.Store(true)
	return true
}

// publish loads the result tables, backing off between failed attempts.
// Returns false if the context ended before the result was published.
func (p *Pipeline) publish(ctx context.Context, result report.Result, backoff *time.Duration, maxBackoff time.Duration) bool {
	for {
		err := p.stages.Results.LoadResults(ctx, result)
		if err == nil {
			p.metrics.ResultsProduced.Add(float64(len(result.Tables)))
			*backoff = 200 * time.Millisecond
			return true
		}
		p.logger.Error("publish results failed, retrying", "error", err,
			"request_id", result.RequestID, "tables", len(result.Tables), "backoff", *backoff)
		if !p.backoffOrStop(ctx, backoff, maxBackoff) {
			return false
		}
	}
}

// backoffOrStop checks for context cancellation, sleeps with the current backoff,
// and advances the backoff. Returns false if the pipeline should stop.
func (p *Pipeline) backoffOrStop(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if !sleepWithContext(ctx, *backoff) {
		return false
	}
	*backoff = nextBackoff(*backoff, maxBackoff)
	return true
}

// commitOffset commits the message offset if a commit function is available.
func (p *Pipeline) commitOffset(ctx context.Context, raw domain.RawRequest) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
