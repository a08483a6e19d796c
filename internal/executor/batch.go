package executor

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/harrison/paver/internal/models"
)

// VerifyDocuments verifies docs with up to concurrency documents in flight.
// Commands within one document still run sequentially. The returned slice is
// indexed like docs regardless of completion order. Documents not started
// before ctx is done come back skipped and are not reported to OnDocument.
func (r *Runner) VerifyDocuments(ctx context.Context, docs []*models.Document, concurrency int) []models.DocumentVerification {
	out := make([]models.DocumentVerification, len(docs))
	if concurrency < 1 {
		concurrency = 1
	}

	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, doc := range docs {
		g.Go(func() error {
			out[i] = r.VerifyDocument(ctx, doc)
			if r.progress != nil && !out[i].Skipped {
				r.progress(out[i])
			}
			return nil
		})
	}
	_ = g.Wait()
	return out
}
