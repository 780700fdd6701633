package httpapi

import (
	"context"

	"govsignal-engine/internal/pipeline"
)

// Runner is the pipeline surface the API needs: kick off a cycle and
// inspect the last one.
type Runner interface {
	Run(ctx context.Context, trigger string, force bool) (*pipeline.Summary, error)
	Status() pipeline.RunStatus
}
