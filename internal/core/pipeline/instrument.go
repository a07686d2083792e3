package pipeline

import (
	"context"
	"log/slog"
	"time"
)

// instrument runs one stage of a document and logs <stage>.start, then <stage>.ok or
// <stage>.error with the elapsed time. log already carries the document identity.
func instrument[T any](ctx context.Context, log *slog.Logger, stage string, fn func(context.Context) (T, error)) (T, error) {
	start := time.Now()
	log.Info(stage + ".start")

	v, err := fn(ctx)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		log.Error(stage+".error", "error", err, "elapsed_ms", elapsed)
		return v, err
	}
	log.Info(stage+".ok", "elapsed_ms", elapsed)
	return v, nil
}
