package backfill

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/labinv/internal/model"
	"github.com/sells-group/labinv/internal/reference"
	"github.com/sells-group/labinv/internal/resilience"
	"github.com/sells-group/labinv/internal/store"
)

// Store is the persistence the runner needs.
type Store interface {
	ListChemicals(ctx context.Context, filter store.ChemicalFilter) ([]model.StoredChemical, error)
	ApplyBackfill(ctx context.Context, id int64, updates []model.FieldUpdate) error
	Coverage(ctx context.Context) (*model.Coverage, error)
}

// Options configures a backfill run.
type Options struct {
	Concurrency int
	DryRun      bool
	// Retry governs ApplyBackfill calls that fail transiently. The zero
	// value uses resilience defaults.
	Retry resilience.RetryConfig
}

// Report summarises a backfill run.
type Report struct {
	Scanned      int                     `json:"scanned"`
	Matched      int                     `json:"matched"`
	Updated      int                     `json:"updated"`
	FieldsFilled int                     `json:"fields_filled"`
	ByPass       map[model.MatchPass]int `json:"by_pass"`
	Unmatched    []string                `json:"unmatched,omitempty"`
	Results      []model.BackfillResult  `json:"results,omitempty"`
	Coverage     *model.Coverage         `json:"coverage,omitempty"`
	DryRun       bool                    `json:"dry_run"`
}

// Runner backfills every stored chemical from a matcher.
type Runner struct {
	store   Store
	matcher *reference.Matcher
	opts    Options
}

// NewRunner creates a Runner. Concurrency below 1 is treated as 1.
func NewRunner(s Store, m *reference.Matcher, opts Options) *Runner {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.Retry.OnRetry == nil {
		opts.Retry.OnRetry = resilience.RetryLogger("apply_backfill")
	}
	return &Runner{store: s, matcher: m, opts: opts}
}

// Run looks up and fills each stored chemical. Records are independent, so
// lookups and writes fan out up to the configured concurrency; the report
// lists results in storage order. Any store error aborts the run.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	chems, err := r.store.ListChemicals(ctx, store.ChemicalFilter{})
	if err != nil {
		return nil, eris.Wrap(err, "backfill: list chemicals")
	}

	results := make([]model.BackfillResult, len(chems))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Concurrency)
	for i, chem := range chems {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return eris.Wrap(err, "backfill: cancelled")
			}

			var match *model.Match
			if m, ok := r.matcher.Lookup(chem.Name); ok {
				match = &m
			}
			res := Compute(chem, match)
			results[i] = res

			if res.Empty() || r.opts.DryRun {
				return nil
			}
			err := resilience.Do(gCtx, r.opts.Retry, func(ctx context.Context) error {
				return r.store.ApplyBackfill(ctx, chem.ID, res.Updates)
			})
			if err != nil {
				return eris.Wrapf(err, "backfill: apply updates to chemical %d", chem.ID)
			}
			zap.L().Info("backfill: updated chemical",
				zap.Int64("id", chem.ID),
				zap.String("name", chem.Name),
				zap.String("matched", res.MatchedKey),
				zap.Int("fields", len(res.Updates)),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{
		Scanned: len(chems),
		ByPass:  make(map[model.MatchPass]int),
		DryRun:  r.opts.DryRun,
	}
	for _, res := range results {
		if !res.Matched() {
			report.Unmatched = append(report.Unmatched, res.Name)
			continue
		}
		report.Matched++
		report.ByPass[res.Pass]++
		if res.Empty() {
			continue
		}
		report.Updated++
		report.FieldsFilled += len(res.Updates)
		report.Results = append(report.Results, res)
	}

	cov, err := r.store.Coverage(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "backfill: coverage")
	}
	report.Coverage = cov

	zap.L().Info("backfill: complete",
		zap.Int("scanned", report.Scanned),
		zap.Int("matched", report.Matched),
		zap.Int("updated", report.Updated),
		zap.Int("unmatched", len(report.Unmatched)),
		zap.Bool("dry_run", report.DryRun),
	)
	return report, nil
}
