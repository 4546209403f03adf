// Package manifest records which snapshot objects exist in each pipeline
// tier and how each stage run ended. Stages select their latest input
// through the manifest when one is configured; without it they fall back to
// listing the tier and parsing tokens out of object names.
package manifest

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tigerroll/standlake/internal/domain/model"
	"github.com/tigerroll/standlake/pkg/util/exception"
	"github.com/tigerroll/standlake/pkg/util/logger"
)

// Repository persists snapshots and stage runs.
type Repository interface {
	// RecordSnapshot registers a snapshot written to a tier.
	RecordSnapshot(ctx context.Context, snapshot *model.Snapshot) error
	// LatestSnapshot returns the snapshot with the greatest timestamp token
	// for the given stage, or (nil, nil) when the stage has no snapshots.
	LatestSnapshot(ctx context.Context, stage string) (*model.Snapshot, error)
	// RecordRun registers the outcome of one stage run.
	RecordRun(ctx context.Context, run *model.StageRun) error
}

// GormRepository is the GORM-backed Repository implementation.
type GormRepository struct {
	db *gorm.DB
}

// Verify that GormRepository implements the Repository interface.
var _ Repository = (*GormRepository)(nil)

// NewGormRepository creates a Repository over the given GORM handle.
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// RecordSnapshot registers a snapshot written to a tier.
func (r *GormRepository) RecordSnapshot(ctx context.Context, snapshot *model.Snapshot) error {
	if err := r.db.WithContext(ctx).Create(snapshot).Error; err != nil {
		return exception.NewStageError("manifest", "failed to record snapshot", err, true)
	}
	logger.Debugf("Recorded snapshot '%s' for stage '%s' (token %s).", snapshot.ObjectKey, snapshot.Stage, snapshot.Token)
	return nil
}

// LatestSnapshot returns the snapshot with the greatest timestamp token for
// the given stage. Tokens share a fixed-width digit layout, so ordering by
// the token column is chronological.
func (r *GormRepository) LatestSnapshot(ctx context.Context, stage string) (*model.Snapshot, error) {
	var snapshot model.Snapshot
	err := r.db.WithContext(ctx).
		Where("stage = ?", stage).
		Order("timestamp_token DESC").
		First(&snapshot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, exception.NewStageError("manifest", "failed to query latest snapshot", err, true)
	}
	return &snapshot, nil
}

// RecordRun registers the outcome of one stage run.
func (r *GormRepository) RecordRun(ctx context.Context, run *model.StageRun) error {
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		return exception.NewStageError("manifest", "failed to record stage run", err, true)
	}
	logger.Debugf("Recorded run %s for stage '%s' with status %s.", run.ID, run.Stage, run.Status)
	return nil
}

// NoopRepository is the Repository used when no manifest database is
// configured. Snapshots and runs are not persisted; stages fall back to
// listing their input tier.
type NoopRepository struct{}

// Verify that NoopRepository implements the Repository interface.
var _ Repository = (*NoopRepository)(nil)

// NewNoopRepository creates a NoopRepository.
func NewNoopRepository() *NoopRepository {
	return &NoopRepository{}
}

// RecordSnapshot logs the snapshot and drops it.
func (r *NoopRepository) RecordSnapshot(ctx context.Context, snapshot *model.Snapshot) error {
	logger.Debugf("Manifest disabled; snapshot '%s' not recorded.", snapshot.ObjectKey)
	return nil
}

// LatestSnapshot always reports no snapshot, forcing the listing fallback.
func (r *NoopRepository) LatestSnapshot(ctx context.Context, stage string) (*model.Snapshot, error) {
	return nil, nil
}

// RecordRun logs the run and drops it.
func (r *NoopRepository) RecordRun(ctx context.Context, run *model.StageRun) error {
	logger.Debugf("Manifest disabled; run %s for stage '%s' not recorded.", run.ID, run.Stage)
	return nil
}
