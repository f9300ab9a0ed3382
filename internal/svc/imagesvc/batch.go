package imagesvc

import (
	"context"

	"github.com/alitto/pond/v2"
	"github.com/mkrupp/imagepipe/internal/domain"
	context_ "github.com/mkrupp/imagepipe/internal/infra/context"
	"github.com/mkrupp/imagepipe/internal/infra/logging"
)

// BatchNormalize implements ImageService.BatchNormalize. Every item runs under its own
// trace ID. Cancelling ctx keeps items that have not started from running; started
// items run to completion.
func (svc *PipelineImageService) BatchNormalize(ctx context.Context, files []domain.SourceFile) []BatchResult {
	log := svc.log.With(logging.Group("batch", "files", len(files)))
	log.DebugContext(ctx, "batch started")

	tasks := make([]pond.Result[BatchResult], len(files))

	for i, file := range files {
		tasks[i] = svc.pool.Submit(func() BatchResult {
			return svc.normalizeItem(ctx, file)
		})
	}

	results := make([]BatchResult, len(files))
	failed := 0

	for i, task := range tasks {
		result, err := task.Wait()
		if err != nil {
			result = BatchResult{File: files[i], Err: err}
		}

		if result.Err != nil {
			failed++
		}

		results[i] = result
	}

	log.DebugContext(ctx, "batch done", "failed", failed)

	return results
}

func (svc *PipelineImageService) normalizeItem(ctx context.Context, file domain.SourceFile) BatchResult {
	if err := ctx.Err(); err != nil {
		return BatchResult{File: file, Err: err}
	}

	itemCtx, err := context_.WithNewTraceID(ctx)
	if err != nil {
		return BatchResult{File: file, Err: err}
	}

	traceID, _ := context_.TraceIDFromContext(itemCtx)
	image, err := svc.NormalizeForUpload(itemCtx, file)

	return BatchResult{
		File:    file,
		Image:   image,
		TraceID: traceID,
		Err:     err,
	}
}
