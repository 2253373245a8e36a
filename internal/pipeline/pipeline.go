// Package pipeline orchestrates one ingestion run: fetch each company's
// references, accumulate its filings, plan the change-set, and apply it.
package pipeline

import (
	"context"
	"log"
	"slices"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"cbso/internal/countries"
	"cbso/internal/filing"
	"cbso/internal/ingest"
	"cbso/internal/pipeline/metrics"
	"cbso/internal/plan"
	"cbso/internal/store"
	id "cbso/pkg/domain"
	"cbso/pkg/requestcontext"
)

// Loader supplies raw registry payloads; fetch.Loader is the production
// implementation.
type Loader interface {
	References(ctx context.Context, enterpriseID string) ([]byte, error)
	Filing(ctx context.Context, filingID string) ([]byte, error)
}

// Summary is the outcome of one run.
type Summary struct {
	Companies  int
	Failed     int
	ItemErrors int
}

// Pipeline fans companies out over a bounded worker pool. Companies share
// nothing but the store, so the only coordination is the pool limit; within
// one company filings are processed strictly oldest-first.
type Pipeline struct {
	loader  Loader
	store   store.Store
	log     *log.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
	workers int
	now     func() time.Time
}

// Option tunes a Pipeline.
type Option func(*Pipeline)

// WithWorkers bounds the company worker pool.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithClock injects the run timestamp source for tests.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// New wires a pipeline. Metrics may be nil when no registry is running, e.g.
// in tests.
func New(loader Loader, st store.Store, logger *log.Logger, m *metrics.Metrics, opts ...Option) *Pipeline {
	p := &Pipeline{
		loader:  loader,
		store:   st,
		log:     logger,
		metrics: m,
		tracer:  otel.Tracer("cbso/pipeline"),
		workers: 4,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run reconciles every listed company. A failed company never aborts the
// others; the returned error is reserved for run-level failures such as the
// country lookup being unavailable.
func (p *Pipeline) Run(ctx context.Context, enterpriseIDs []string) (Summary, error) {
	// One run identifier for log correlation and one batch timestamp, so
	// every statement row of the run carries the same last_update.
	runID := id.NewRunID()
	ctx = requestcontext.WithRunID(ctx, runID)
	ctx = requestcontext.WithTime(ctx, p.now())
	p.log.Printf("run %s: %d companies", runID, len(enterpriseIDs))

	lookup, err := p.store.CountryCodes(ctx)
	if err != nil {
		return Summary{}, err
	}

	var processed, failed, itemErrors atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for _, enterpriseID := range enterpriseIDs {
		g.Go(func() error {
			skipped, err := p.runCompany(ctx, enterpriseID, lookup)
			itemErrors.Add(int64(skipped))
			if err != nil {
				failed.Add(1)
				p.log.Printf("run %s: company %s failed: %v", requestcontext.RunID(ctx), enterpriseID, err)
				if p.metrics != nil {
					p.metrics.CompaniesFailed.Inc()
				}
				return nil
			}
			processed.Add(1)
			if p.metrics != nil {
				p.metrics.CompaniesProcessed.Inc()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	return Summary{
		Companies:  int(processed.Load()),
		Failed:     int(failed.Load()),
		ItemErrors: int(itemErrors.Load()),
	}, nil
}

func (p *Pipeline) runCompany(ctx context.Context, enterpriseID string, lookup countries.Lookup) (int, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.company",
		trace.WithAttributes(attribute.String("enterprise_id", enterpriseID)))
	defer span.End()

	skipped, err := p.reconcile(ctx, enterpriseID, lookup)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "company aborted")
	}
	return skipped, err
}

func (p *Pipeline) reconcile(ctx context.Context, enterpriseID string, lookup countries.Lookup) (int, error) {
	payload, err := p.loader.References(ctx, enterpriseID)
	if err != nil {
		return 0, err
	}
	refs, err := filing.ParseReferences(payload, requestcontext.Now(ctx))
	if err != nil {
		return 0, err
	}

	acc := ingest.New(refs, lookup, nil)
	for _, s := range filingOrder(refs) {
		payload, err := p.loader.Filing(ctx, s.FilingID)
		if err != nil {
			acc.SkipFiling(s, err)
			continue
		}
		f, err := filing.ParseFiling(payload)
		if err != nil {
			acc.SkipFiling(s, err)
			continue
		}
		acc.AddFiling(f, s)
	}

	rows, report := acc.Finish()
	for _, itemErr := range report.Errors {
		p.log.Printf("skipped: %v", itemErr)
	}
	if p.metrics != nil {
		p.metrics.ItemErrors.Add(float64(len(report.Errors)))
	}

	cs, err := plan.Plan(refs.EnterpriseID, rows)
	if err != nil {
		return len(report.Errors), err
	}
	if p.metrics != nil {
		for _, u := range cs.Units {
			p.metrics.RowsPlanned.Add(float64(u.Count))
		}
	}

	start := time.Now()
	if err := p.store.Apply(ctx, cs); err != nil {
		return len(report.Errors), err
	}
	if p.metrics != nil {
		p.metrics.ObserveApply(start)
	}
	return len(report.Errors), nil
}

// filingOrder is initial deposits before corrections, each oldest period
// first, so identity resolution and attribute merges see history in order.
func filingOrder(refs *filing.References) []filing.Summary {
	byPeriod := func(a, b filing.Summary) int {
		return a.EndDate.Compare(b.EndDate)
	}
	initial := slices.Clone(refs.Initial)
	slices.SortStableFunc(initial, byPeriod)
	corrections := slices.Clone(refs.Corrections)
	slices.SortStableFunc(corrections, byPeriod)
	return append(initial, corrections...)
}
