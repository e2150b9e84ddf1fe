package ports

import (
	"context"
	"time"

	"snowviz/internal/domain/frames"
)

// RunRecord is a loaded problem/plan pair. Frames are not stored: they are
// re-synthesized from ProblemText and PlanText on demand.
type RunRecord struct {
	ID          string
	Name        string
	Domain      string
	Numeric     bool
	GridSize    int
	Substeps    int
	ActionCount int
	FrameCount  int
	ErrorCount  int
	Summary     frames.Summary
	ProblemText string
	PlanText    string
	CreatedAt   time.Time
}

type RunRepository interface {
	Save(ctx context.Context, run RunRecord) error
	Get(ctx context.Context, id string) (RunRecord, error)
	// List returns runs newest first. limit <= 0 means no limit.
	List(ctx context.Context, limit int) ([]RunRecord, error)
}

type ActionErrorRepository interface {
	Append(ctx context.Context, runID string, errs []frames.ActionError) error
	ListByRunID(ctx context.Context, runID string) ([]frames.ActionError, error)
}
