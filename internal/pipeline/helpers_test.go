package pipeline_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Ciel-et-Terre-International/Wind-Data-v1/internal/domain"
	"github.com/Ciel-et-Terre-International/Wind-Data-v1/internal/observability"
	"github.com/Ciel-et-Terre-International/Wind-Data-v1/internal/pipeline"
	"github.com/Ciel-et-Terre-International/Wind-Data-v1/internal/report"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestMetrics() *observability.Metrics {
	// Use unregistered collectors to avoid "already registered" panics in tests.
	return observability.NewMetricsForTesting()
}

func newAnalyzer() *pipeline.Analyzer {
	return pipeline.NewAnalyzer(domain.DefaultMinYears, domain.DefaultDirectionBinWidth, discardLogger(), newTestMetrics())
}

// syntheticTable builds a daily table starting on January 1st of firstYear.
// Each year has one storm day on July 19th whose strength varies by year; the
// rest of the year stays calm.
func syntheticTable(timeColumn string, firstYear, years int, withGust, withDirection bool) domain.RawTable {
	cols := []string{timeColumn, "windspeed_mean"}
	if withGust {
		cols = append(cols, "windspeed_gust")
	}
	if withDirection {
		cols = append(cols, "wind_direction")
	}
	t := domain.RawTable{Columns: cols}

	start := time.Date(firstYear, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(firstYear+years, 1, 1, 0, 0, 0, 0, time.UTC)
	i := 0
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		mean := 5 + float64(i%7)
		if d.Month() == time.July && d.Day() == 19 {
			mean = 18 + float64((d.Year()*7)%11)
		}
		row := []string{d.Format(time.DateOnly), strconv.FormatFloat(mean, 'f', -1, 64)}
		if i%97 == 0 {
			row[1] = ""
		}
		if withGust {
			row = append(row, strconv.FormatFloat(mean*1.4, 'f', 2, 64))
		}
		if withDirection {
			row = append(row, strconv.Itoa((i*37)%360))
		}
		t.Rows = append(t.Rows, row)
		i++
	}
	return t
}

// --- mocks ---

type memLoader struct {
	tables map[string]domain.RawTable
	err    error
}

func (m *memLoader) LoadSources(_ context.Context, _ domain.Site) (map[string]domain.RawTable, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.tables, nil
}

type recordingWriter struct {
	mu    sync.Mutex
	calls [][]report.Table
	err   error
}

func (w *recordingWriter) WriteTables(_ context.Context, _ domain.Site, tables []report.Table) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.calls = append(w.calls, tables)
	return nil
}

type recordingSeries struct {
	sources []string
}

func (s *recordingSeries) WriteSeries(_ context.Context, _ domain.Site, c domain.SourceCollection) error {
	s.sources = c.Names()
	return nil
}

type mockExtractor struct {
	requests []domain.RawRequest
	index    atomic.Int64
}

func (m *mockExtractor) ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawRequest, error) {
	start := int(m.index.Load())
	if start >= len(m.requests) {
		// block until context cancelled to simulate waiting for messages
		<-ctx.Done()
		return nil, ctx.Err()
	}
	end := min(start+batchSize, len(m.requests))
	m.index.Store(int64(end))
	return m.requests[start:end], nil
}

type mockResults struct {
	mu       sync.Mutex
	results  []report.Result
	err      error
	failures int // number of calls that fail before succeeding
	calls    int
}

func (m *mockResults) LoadResults(_ context.Context, result report.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return m.err
	}
	if m.failures > 0 {
		m.failures--
		return errors.New("broker unavailable")
	}
	m.results = append(m.results, result)
	return nil
}
