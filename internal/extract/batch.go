package extract

import (
	"context"
	"time"

	"github.com/dtnitsch/linkmeta/models"
	"github.com/dtnitsch/linkmeta/pkg/extractor"
	"golang.org/x/sync/errgroup"
)

const DefaultWorkers = 4

// Extractor is the part of the registry a batch needs.
type Extractor interface {
	Extract(ctx context.Context, opts extractor.Options) (*models.ExtractorResult, error)
	ExtractWithCache(ctx context.Context, opts extractor.Options) (*models.ExtractorResult, error)
}

// Job configures a batch run.
type Job struct {
	URLs     []string
	Workers  int
	UseCache bool
	Timeout  time.Duration
}

// Result holds the outcome of one URL.
type Result struct {
	URL    string
	Result *models.ExtractorResult
	Err    error
}

// Run extracts every URL with at most job.Workers in flight. Results keep
// the input order; a failed URL never stops the others.
func Run(ctx context.Context, ex Extractor, job Job) []Result {
	workers := job.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	results := make([]Result, len(job.URLs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, rawURL := range job.URLs {
		g.Go(func() error {
			opts := extractor.Options{URL: rawURL, Timeout: job.Timeout}
			var res *models.ExtractorResult
			var err error
			if job.UseCache {
				res, err = ex.ExtractWithCache(ctx, opts)
			} else {
				res, err = ex.Extract(ctx, opts)
			}
			results[i] = Result{URL: rawURL, Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait() // workers report through results
	return results
}
