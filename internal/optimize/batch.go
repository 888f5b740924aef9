package optimize

import "context"

// BatchOption configures RunBatch.
type BatchOption func(*batchConfig)

type batchConfig struct {
	progress func(index, total int, r Result)
	stop     func() bool
}

// WithProgress registers a callback invoked after each post, with its
// zero-based index.
func WithProgress(fn func(index, total int, r Result)) BatchOption {
	return func(c *batchConfig) {
		c.progress = fn
	}
}

// WithStop registers a check run before each post. Once it reports true
// no further posts are sent to the generator.
func WithStop(fn func() bool) BatchOption {
	return func(c *batchConfig) {
		c.stop = fn
	}
}

// RunBatch optimizes reqs one at a time, in order.
// The result has one entry per request at the same index. A failed post
// does not stop the batch. When stopped (WithStop or ctx done) the
// remaining posts fail with ErrBatchInterrupted.
func (o *Optimizer) RunBatch(ctx context.Context, reqs []Request, opts ...BatchOption) []Result {
	var cfg batchConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	results := make([]Result, len(reqs))
	stopped := false
	for i, req := range reqs {
		if !stopped && (ctx.Err() != nil || (cfg.stop != nil && cfg.stop())) {
			stopped = true
			o.logger.Warn().Int("processed", i).Int("total", len(reqs)).Msg("batch interrupted")
		}

		if stopped {
			results[i] = failure(req, ErrBatchInterrupted)
		} else {
			results[i] = o.Optimize(ctx, req)
		}

		if cfg.progress != nil {
			cfg.progress(i, len(reqs), results[i])
		}
	}
	return results
}
