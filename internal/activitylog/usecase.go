package activitylog

import (
	"context"

	"github.com/fekuna/omnipos-commerce/internal/activitylog/dto"
	"github.com/fekuna/omnipos-commerce/internal/model"
)

// Recorder is what other slices depend on to leave an audit trail.
// Implementations must never fail the caller.
type Recorder interface {
	Record(ctx context.Context, entry *dto.RecordInput)
}

type UseCase interface {
	Recorder
	ListLogs(ctx context.Context, filters *dto.LogFilters) ([]model.ActivityLog, int, error)
}

// NopRecorder discards entries.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, *dto.RecordInput) {}
