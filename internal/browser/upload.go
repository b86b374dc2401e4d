package browser

import (
	"context"
	"io"

	"github.com/dracory/slidebase/internal/dbapi"
)

// UploadFile is one file picked in the upload form.
type UploadFile struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// Uploader sends a single file to the backend.
type Uploader interface {
	Upload(ctx context.Context, filename string, content io.Reader) (*dbapi.UploadResult, error)
}

// UploadOutcome is the result of one task.
type UploadOutcome struct {
	Name   string
	Result *dbapi.UploadResult
	Err    error
}

// UploadSummary aggregates a batch.
type UploadSummary struct {
	Succeeded int
	Failed    int
	Errors    []string
	Outcomes  []UploadOutcome
}

// UploadQueue runs one upload task per file, strictly in order. A task is
// finished before the next one starts.
type UploadQueue struct {
	files []UploadFile
}

// NewUploadQueue enqueues files in the given order.
func NewUploadQueue(files ...UploadFile) *UploadQueue {
	return &UploadQueue{files: files}
}

// Len returns the number of queued tasks.
func (q *UploadQueue) Len() int { return len(q.files) }

// Run processes every task. Failures are counted and never stop the batch.
func (q *UploadQueue) Run(ctx context.Context, up Uploader) UploadSummary {
	summary := UploadSummary{Errors: []string{}}
	for _, f := range q.files {
		res, err := uploadOne(ctx, up, f)
		summary.Outcomes = append(summary.Outcomes, UploadOutcome{Name: f.Name, Result: res, Err: err})
		if err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, f.Name+": "+dbapi.Message(err))
			continue
		}
		summary.Succeeded++
	}
	return summary
}

func uploadOne(ctx context.Context, up Uploader, f UploadFile) (*dbapi.UploadResult, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return up.Upload(ctx, f.Name, rc)
}
