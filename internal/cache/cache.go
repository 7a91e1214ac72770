package cache

import (
	"context"
	"time"
)

// ReportCache stores rendered report results under a generation. Invalidate
// starts a new generation, so entries of older generations are never read
// again. Callers read the generation once and use it for both Get and Set,
// which keeps a report built across an invalidation out of the new
// generation.
type ReportCache interface {
	Generation(ctx context.Context) (int64, error)
	Get(ctx context.Context, gen int64, key string, dest any) (bool, error)
	Set(ctx context.Context, gen int64, key string, value any, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

type NoopReportCache struct{}

func (NoopReportCache) Generation(_ context.Context) (int64, error) {
	return 0, nil
}

func (NoopReportCache) Get(_ context.Context, _ int64, _ string, _ any) (bool, error) {
	return false, nil
}

func (NoopReportCache) Set(_ context.Context, _ int64, _ string, _ any, _ time.Duration) error {
	return nil
}

func (NoopReportCache) Invalidate(_ context.Context) error {
	return nil
}
