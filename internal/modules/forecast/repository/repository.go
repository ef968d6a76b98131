package repository

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/mesembria/Magtag-Weather-Odin/internal/modules/forecast/types"
)

//go:embed sql/insert-snapshot.sql
var insertSnapshotSQL string

//go:embed sql/insert-snapshot-hour.sql
var insertSnapshotHourSQL string

//go:embed sql/get-latest-snapshot.sql
var getLatestSnapshotSQL string

//go:embed sql/get-snapshot-hours.sql
var getSnapshotHoursSQL string

//go:embed sql/insert-frame.sql
var insertFrameSQL string

//go:embed sql/get-latest-frame.sql
var getLatestFrameSQL string

//go:embed sql/prune-snapshots.sql
var pruneSnapshotsSQL string

//go:embed sql/prune-frames.sql
var pruneFramesSQL string

type ForecastRepository interface {
	InsertSnapshot(s types.Snapshot) (int64, error)
	LatestSnapshot() (*types.Snapshot, error)
	InsertFrame(displayID string, renderedAt time.Time, png []byte) error
	LatestFrame(displayID string) (*types.Frame, error)
	Prune(olderThan time.Time) error
}

type repositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) ForecastRepository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) InsertSnapshot(s types.Snapshot) (int64, error) {
	if len(s.Hours) == 0 {
		return 0, fmt.Errorf("snapshot has no hours")
	}

	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			slog.Error("rollback snapshot tx", "error", err)
		}
	}()

	fetchedAt := s.FetchedAt.UTC().Format(time.RFC3339Nano)
	res, err := tx.Exec(insertSnapshotSQL, fetchedAt, s.TZOffsetSec)
	if err != nil {
		return 0, fmt.Errorf("insert snapshot: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("snapshot id: %w", err)
	}

	for _, h := range s.Hours {
		if _, err := tx.Exec(insertSnapshotHourSQL, id, h.Time, h.Hour, h.Temp, h.Icon, h.Pop); err != nil {
			return 0, fmt.Errorf("insert snapshot hour %d: %w", h.Time, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit snapshot tx: %w", err)
	}
	return id, nil
}

// LatestSnapshot returns the most recently fetched snapshot with its hours,
// or nil when nothing has been stored yet.
func (r *repositoryImpl) LatestSnapshot() (*types.Snapshot, error) {
	var (
		s  types.Snapshot
		ts string
	)
	err := r.db.QueryRow(getLatestSnapshotSQL).Scan(&s.ID, &ts, &s.TZOffsetSec)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	t, err := parseTimestamp(ts)
	if err != nil {
		return nil, err
	}
	s.FetchedAt = t

	rows, err := r.db.Query(getSnapshotHoursSQL, s.ID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close snapshot hours rows", "error", err)
		}
	}()
	for rows.Next() {
		var h types.Hour
		if err := rows.Scan(&h.Time, &h.Hour, &h.Temp, &h.Icon, &h.Pop); err != nil {
			return nil, err
		}
		s.Hours = append(s.Hours, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repositoryImpl) InsertFrame(displayID string, renderedAt time.Time, png []byte) error {
	if displayID == "" {
		return fmt.Errorf("display id is required")
	}
	if len(png) == 0 {
		return fmt.Errorf("frame is empty")
	}
	tsStr := renderedAt.UTC().Format(time.RFC3339Nano)
	if _, err := r.db.Exec(insertFrameSQL, displayID, tsStr, png); err != nil {
		return fmt.Errorf("insert frame: %w", err)
	}
	return nil
}

// LatestFrame returns the most recent frame for a display, or nil when no
// frame has been rendered yet.
func (r *repositoryImpl) LatestFrame(displayID string) (*types.Frame, error) {
	var (
		f  types.Frame
		ts string
	)
	err := r.db.QueryRow(getLatestFrameSQL, displayID).Scan(&f.DisplayID, &ts, &f.PNG)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t, err := parseTimestamp(ts)
	if err != nil {
		return nil, err
	}
	f.RenderedAt = t
	return &f, nil
}

// Prune deletes snapshots and frames older than the cutoff. Snapshot hours go
// with their snapshot via the FK cascade.
func (r *repositoryImpl) Prune(olderThan time.Time) error {
	cutoff := olderThan.UTC().Format(time.RFC3339Nano)
	if _, err := r.db.Exec(pruneSnapshotsSQL, cutoff); err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}
	if _, err := r.db.Exec(pruneFramesSQL, cutoff); err != nil {
		return fmt.Errorf("prune frames: %w", err)
	}
	return nil
}

func parseTimestamp(ts string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		var err2 error
		t, err2 = time.Parse(time.RFC3339, ts)
		if err2 != nil {
			return time.Time{}, fmt.Errorf("parse timestamp %q: RFC3339Nano: %w; RFC3339: %w", ts, err, err2)
		}
	}
	return t, nil
}
