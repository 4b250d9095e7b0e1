// Package sqlite archives planned segments and their statistics in a
// SQLite database. The schema is managed by embedded golang-migrate
// migrations applied on Open.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/survey.planner/internal/monitoring"
	"github.com/banshee-data/survey.planner/internal/survey/l4route"
	"github.com/banshee-data/survey.planner/internal/survey/l6stats"
	"github.com/banshee-data/survey.planner/internal/timeutil"
)

// ErrNotFound is returned when a plan id is not in the archive.
var ErrNotFound = errors.New("plan not found")

// Store is a plan archive backed by one SQLite file.
type Store struct {
	db    *sql.DB
	clock timeutil.Clock
}

// PlanRecord is one archived plan.
type PlanRecord struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	CreatedAt   time.Time              `json:"created_at"`
	Segment     *l4route.PathSegment   `json:"segment"`
	Stats       l6stats.MissionStats   `json:"stats"`
	Diagnostics monitoring.Diagnostics `json:"diagnostics"`
}

// PlanSummary is the list view of a plan, read without decoding JSON.
type PlanSummary struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	SegmentType    string    `json:"segment_type"`
	Strategy       string    `json:"strategy"`
	CreatedAt      time.Time `json:"created_at"`
	WaypointCount  int       `json:"waypoint_count"`
	Photos         int       `json:"photos"`
	DistanceM      float64   `json:"distance_m"`
	TotalSeconds   float64   `json:"total_seconds"`
	BatteryPercent float64   `json:"battery_percent"`
}

// WaypointRow is one row of plan_waypoints.
type WaypointRow struct {
	PathOrder int     `json:"path_order"`
	Kind      string  `json:"kind"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Z         float64 `json:"z"`
	Altitude  float64 `json:"altitude"`
	Heading   float64 `json:"heading"`
	Capture   bool    `json:"capture"`
}

// Open opens (or creates) the archive at path and applies pending
// migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open plan archive: %w", err)
	}
	// foreign_keys is per connection, so keep a single one.
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	s := &Store{db: db, clock: timeutil.RealClock{}}
	if err := s.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// SetClock replaces the clock that stamps CreatedAt on new plans.
func (s *Store) SetClock(c timeutil.Clock) { s.clock = c }

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SavePlan writes rec and its waypoints in one transaction. An empty ID is
// replaced by a new UUID and a zero CreatedAt by the store clock; the
// stored id is returned.
func (s *Store) SavePlan(ctx context.Context, rec *PlanRecord) (string, error) {
	if rec == nil || rec.Segment == nil {
		return "", fmt.Errorf("cannot save plan without a segment")
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.clock.Now().UTC()
	}

	segJSON, err := json.Marshal(rec.Segment)
	if err != nil {
		return "", fmt.Errorf("failed to encode segment: %w", err)
	}
	statsJSON, err := json.Marshal(rec.Stats)
	if err != nil {
		return "", fmt.Errorf("failed to encode stats: %w", err)
	}
	diagJSON, err := json.Marshal(rec.Diagnostics)
	if err != nil {
		return "", fmt.Errorf("failed to encode diagnostics: %w", err)
	}
	strategy := ""
	if rec.Segment.Metadata != nil {
		strategy = rec.Segment.Metadata.Strategy
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO plans (
			plan_id, name, segment_id, segment_type, strategy, created_unix_ns,
			waypoint_count, photos, distance_m, total_seconds, battery_percent,
			segment_json, stats_json, diagnostics_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Name, rec.Segment.ID, string(rec.Segment.Type), strategy, rec.CreatedAt.UnixNano(),
		len(rec.Segment.Waypoints), rec.Stats.Photos, rec.Stats.DistanceM, rec.Stats.TotalSeconds, rec.Stats.BatteryPercent,
		string(segJSON), string(statsJSON), string(diagJSON),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert plan: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO plan_waypoints (plan_id, path_order, kind, x, y, z, altitude, heading, capture)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()
	for _, w := range rec.Segment.Waypoints {
		if _, err := stmt.ExecContext(ctx, rec.ID, w.PathOrder, string(w.Kind),
			w.Local.X, w.Local.Y, w.Local.Z, w.Altitude, w.Camera.HeadingDeg, w.HasCapture()); err != nil {
			return "", fmt.Errorf("failed to insert waypoint %d: %w", w.PathOrder, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	monitoring.Logf("archived plan %s (%d waypoints)", rec.ID, len(rec.Segment.Waypoints))
	return rec.ID, nil
}

// GetPlan loads a plan by id.
func (s *Store) GetPlan(ctx context.Context, id string) (*PlanRecord, error) {
	var (
		rec                          PlanRecord
		createdNs                    int64
		segJSON, statsJSON, diagJSON string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT plan_id, name, created_unix_ns, segment_json, stats_json, diagnostics_json
		FROM plans WHERE plan_id = ?`, id,
	).Scan(&rec.ID, &rec.Name, &createdNs, &segJSON, &statsJSON, &diagJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	rec.CreatedAt = time.Unix(0, createdNs).UTC()

	rec.Segment = &l4route.PathSegment{}
	if err := json.Unmarshal([]byte(segJSON), rec.Segment); err != nil {
		return nil, fmt.Errorf("failed to decode segment of plan %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(statsJSON), &rec.Stats); err != nil {
		return nil, fmt.Errorf("failed to decode stats of plan %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(diagJSON), &rec.Diagnostics); err != nil {
		return nil, fmt.Errorf("failed to decode diagnostics of plan %s: %w", id, err)
	}
	return &rec, nil
}

// ListPlans returns up to limit plans, newest first. limit <= 0 lists all.
func (s *Store) ListPlans(ctx context.Context, limit int) ([]PlanSummary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT plan_id, name, segment_type, strategy, created_unix_ns, waypoint_count,
		       photos, distance_m, total_seconds, battery_percent
		FROM plans ORDER BY created_unix_ns DESC, plan_id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PlanSummary
	for rows.Next() {
		var p PlanSummary
		var createdNs int64
		if err := rows.Scan(&p.ID, &p.Name, &p.SegmentType, &p.Strategy, &createdNs, &p.WaypointCount,
			&p.Photos, &p.DistanceM, &p.TotalSeconds, &p.BatteryPercent); err != nil {
			return nil, err
		}
		p.CreatedAt = time.Unix(0, createdNs).UTC()
		out = append(out, p)
	}
	return out, rows.Err()
}

// Waypoints returns the flattened waypoint rows of a plan in path order.
func (s *Store) Waypoints(ctx context.Context, id string) ([]WaypointRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT path_order, kind, x, y, z, altitude, heading, capture
		FROM plan_waypoints WHERE plan_id = ? ORDER BY path_order`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []WaypointRow
	for rows.Next() {
		var w WaypointRow
		if err := rows.Scan(&w.PathOrder, &w.Kind, &w.X, &w.Y, &w.Z, &w.Altitude, &w.Heading, &w.Capture); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// DeletePlan removes a plan and its waypoints.
func (s *Store) DeletePlan(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM plans WHERE plan_id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
