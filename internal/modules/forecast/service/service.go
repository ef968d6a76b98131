package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mesembria/Magtag-Weather-Odin/internal/modules/forecast/openweather"
	"github.com/mesembria/Magtag-Weather-Odin/internal/modules/forecast/repository"
	"github.com/mesembria/Magtag-Weather-Odin/internal/modules/forecast/types"
	"github.com/mesembria/Magtag-Weather-Odin/internal/render"
)

// Fetcher is the OneCall client surface the service needs.
type Fetcher interface {
	Fetch(ctx context.Context, lat, long float64) (*openweather.OneCallResponse, error)
}

// FramePublisher pushes rendered output to the displays.
type FramePublisher interface {
	PublishFrame(displayID string, png []byte) error
	PublishConditions(displayID string, summary any) error
}

// ConditionsSummary is the JSON payload published next to each frame.
type ConditionsSummary struct {
	FetchedAt   time.Time    `json:"fetched_at"`
	TZOffsetSec int          `json:"tz_offset_sec"`
	Columns     []types.Hour `json:"columns"`
}

type Service struct {
	repo      repository.ForecastRepository
	fetcher   Fetcher
	publisher FramePublisher
	logger    *slog.Logger

	lat, long float64
	displayID string
	columns   int
	step      int
	retention time.Duration

	mu          sync.RWMutex
	tzOffsetSec int
}

func NewService(repo repository.ForecastRepository, fetcher Fetcher, publisher FramePublisher, logger *slog.Logger, lat, long float64, displayID string, columns, step int, retention time.Duration) *Service {
	s := &Service{
		repo:      repo,
		fetcher:   fetcher,
		publisher: publisher,
		logger:    logger,
		lat:       lat,
		long:      long,
		displayID: displayID,
		columns:   columns,
		step:      step,
		retention: retention,
	}

	// Seed the locale offset from storage so the wake calendar runs in local
	// time even before the first successful refresh.
	latest, err := repo.LatestSnapshot()
	switch {
	case err != nil:
		logger.Warn("seed tz offset failed", "error", err)
	case latest != nil:
		s.tzOffsetSec = latest.TZOffsetSec
	}

	return s
}

// ShapeHours projects the OneCall hourly forecast into display rows, shifting
// each timestamp by the location's UTC offset to get its local hour of day.
func ShapeHours(oc *openweather.OneCallResponse) []types.Hour {
	out := make([]types.Hour, 0, len(oc.Hourly))
	for _, h := range oc.Hourly {
		var icon string
		if len(h.Weather) > 0 {
			icon = h.Weather[0].Icon
		}
		local := time.Unix(h.Dt+int64(oc.TimezoneOffset), 0).UTC()
		out = append(out, types.Hour{
			Time: h.Dt,
			Hour: local.Hour(),
			Temp: h.Temp,
			Icon: icon,
			Pop:  h.Pop,
		})
	}
	return out
}

// Refresh runs one wake cycle: fetch, persist, render, publish. When the fetch
// fails the latest stored snapshot is rendered instead, so displays keep
// showing the last good forecast rather than going blank.
func (s *Service) Refresh(ctx context.Context) error {
	snap, cached, err := s.currentSnapshot(ctx)
	if err != nil {
		return err
	}

	cols := types.SampleColumns(snap.Hours, s.columns, s.step)
	img, err := render.Frame(cols)
	if err != nil {
		return fmt.Errorf("render frame: %w", err)
	}
	png, err := render.EncodePNG(img)
	if err != nil {
		return err
	}

	renderedAt := time.Now().UTC()
	if err := s.repo.InsertFrame(s.displayID, renderedAt, png); err != nil {
		return err
	}
	s.setTZOffset(snap.TZOffsetSec)

	if s.publisher != nil {
		if err := s.publisher.PublishFrame(s.displayID, png); err != nil {
			s.logger.Warn("publish frame failed", "display_id", s.displayID, "error", err)
		}
		summary := ConditionsSummary{
			FetchedAt:   snap.FetchedAt,
			TZOffsetSec: snap.TZOffsetSec,
			Columns:     cols,
		}
		if err := s.publisher.PublishConditions(s.displayID, summary); err != nil {
			s.logger.Warn("publish conditions failed", "display_id", s.displayID, "error", err)
		}
	}

	s.logger.Info("refresh complete",
		"display_id", s.displayID,
		"columns", len(cols),
		"from_cache", cached,
		"fetched_at", snap.FetchedAt,
	)
	return nil
}

// currentSnapshot fetches a fresh forecast, falling back to the latest stored
// snapshot when the API is unreachable. The bool reports the fallback.
func (s *Service) currentSnapshot(ctx context.Context) (*types.Snapshot, bool, error) {
	oc, fetchErr := s.fetcher.Fetch(ctx, s.lat, s.long)
	if fetchErr != nil {
		s.logger.Warn("forecast fetch failed, trying stored snapshot", "error", fetchErr)
		latest, err := s.repo.LatestSnapshot()
		if err != nil {
			return nil, false, fmt.Errorf("fetch forecast: %w (stored snapshot: %v)", fetchErr, err)
		}
		if latest == nil {
			return nil, false, fmt.Errorf("fetch forecast: %w (no stored snapshot)", fetchErr)
		}
		return latest, true, nil
	}

	snap := types.Snapshot{
		FetchedAt:   time.Unix(oc.Current.Dt, 0).UTC(),
		TZOffsetSec: oc.TimezoneOffset,
		Hours:       ShapeHours(oc),
	}
	id, err := s.repo.InsertSnapshot(snap)
	if err != nil {
		return nil, false, fmt.Errorf("store snapshot: %w", err)
	}
	snap.ID = id

	if s.retention > 0 {
		if err := s.repo.Prune(time.Now().UTC().Add(-s.retention)); err != nil {
			s.logger.Warn("prune failed", "error", err)
		}
	}
	return &snap, false, nil
}

// Latest returns the most recent stored snapshot, nil when none exists.
func (s *Service) Latest() (*types.Snapshot, error) {
	return s.repo.LatestSnapshot()
}

// LatestFrame returns the most recent frame for the configured display.
func (s *Service) LatestFrame() (*types.Frame, error) {
	return s.repo.LatestFrame(s.displayID)
}

// LocalNow is the wall-clock time at the configured location, using the UTC
// offset of the last refresh or, before one, of the last stored snapshot.
func (s *Service) LocalNow() time.Time {
	s.mu.RLock()
	off := s.tzOffsetSec
	s.mu.RUnlock()
	return time.Now().UTC().Add(time.Duration(off) * time.Second)
}

func (s *Service) setTZOffset(sec int) {
	s.mu.Lock()
	s.tzOffsetSec = sec
	s.mu.Unlock()
}
