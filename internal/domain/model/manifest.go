package model

import "time"

// Snapshot is one manifest entry recording an object written to a pipeline
// tier. The token orders snapshots of the same stage; selecting the latest
// input never depends on parsing object names.
type Snapshot struct {
	ID          string    `gorm:"column:id;primaryKey;type:varchar(36)"`
	Stage       string    `gorm:"column:stage;not null;index:idx_snapshots_stage_token,priority:1"`
	ObjectKey   string    `gorm:"column:object_key;not null"`
	Token       string    `gorm:"column:timestamp_token;not null;index:idx_snapshots_stage_token,priority:2"`
	RecordCount int       `gorm:"column:record_count;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;not null"`
}

// TableName gives the fixed manifest table name for snapshots.
func (Snapshot) TableName() string {
	return "snapshots"
}

// StageRun records one execution of a pipeline stage and its outcome, giving
// an external scheduler enough to decide whether a retry is warranted.
type StageRun struct {
	ID          string    `gorm:"column:id;primaryKey;type:varchar(36)"`
	Stage       string    `gorm:"column:stage;not null;index:idx_stage_runs_stage"`
	Status      string    `gorm:"column:status;not null"`
	ObjectKey   string    `gorm:"column:object_key"`
	Token       string    `gorm:"column:timestamp_token"`
	RecordCount int       `gorm:"column:record_count"`
	Message     string    `gorm:"column:message"`
	StartedAt   time.Time `gorm:"column:started_at;not null"`
	FinishedAt  time.Time `gorm:"column:finished_at;not null"`
}

// TableName gives the fixed manifest table name for stage runs.
func (StageRun) TableName() string {
	return "stage_runs"
}
