package extractor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dtnitsch/linkmeta/models"
)

// Strategy is one way of producing a result, such as an API call or a scrape.
type Strategy struct {
	Name string
	Run  func(ctx context.Context) (*models.ExtractorResult, error)
}

// FirstSuccess runs strategies in order, one at a time, and returns the
// first result. When all fail the joined errors are returned.
func FirstSuccess(ctx context.Context, log *slog.Logger, strategies ...Strategy) (*models.ExtractorResult, error) {
	if log == nil {
		log = slog.Default()
	}

	var errs []error
	for _, s := range strategies {
		if s.Run == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		res, err := s.Run(ctx)
		if err == nil && res != nil {
			return res, nil
		}
		if err == nil {
			err = fmt.Errorf("empty result")
		}
		log.Debug("strategy failed", "strategy", s.Name, "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
	}

	if len(errs) == 0 {
		return nil, ErrNoStrategy
	}
	return nil, errors.Join(errs...)
}
