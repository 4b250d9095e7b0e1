package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/survey.planner/internal/monitoring"
	"github.com/banshee-data/survey.planner/internal/survey/l1geom"
	"github.com/banshee-data/survey.planner/internal/survey/l4route"
	"github.com/banshee-data/survey.planner/internal/survey/l6stats"
	"github.com/banshee-data/survey.planner/internal/timeutil"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "plans.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testRecord(name string, created time.Time) *PlanRecord {
	wps := []l4route.Waypoint{
		{Local: l1geom.LocalCoord{}, Kind: l4route.KindTakeoff},
		{Local: l1geom.LocalCoord{Z: 45}, Altitude: 45, Kind: l4route.KindClimb},
		{
			Local:    l1geom.LocalCoord{X: 10, Y: 20, Z: 40},
			Altitude: 40,
			Kind:     l4route.KindCoverage,
			Actions:  []l4route.Action{{Type: l4route.ActionCapturePhoto}},
			Camera:   l4route.CameraPose{HeadingDeg: 90, PitchDeg: l4route.NadirPitchDeg},
		},
		{Local: l1geom.LocalCoord{}, Kind: l4route.KindLand},
	}
	l4route.Reindex(wps)

	var diag monitoring.Diagnostics
	diag.Warnf("test", monitoring.CodeOBBFallback, "degenerate target")

	return &PlanRecord{
		Name:      name,
		CreatedAt: created,
		Segment: &l4route.PathSegment{
			ID:        "seg-" + name,
			Type:      l4route.SegmentSurvey,
			Waypoints: wps,
			Speed:     8,
			Metadata:  &l4route.SegmentMetadata{Strategy: "raster"},
		},
		Stats:       l6stats.MissionStats{Waypoints: 4, Photos: 1, DistanceM: 112.4, TotalSeconds: 16, BatteryPercent: 1.2},
		Diagnostics: diag,
	}
}

func TestOpen_MigratesToLatest(t *testing.T) {
	s := openTestStore(t)
	version, dirty, err := s.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
	assert.False(t, dirty)

	// Re-running is a no-op.
	require.NoError(t, s.MigrateUp())
}

func TestMigrateDown(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.MigrateDown())
	version, _, err := s.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	_, err = s.Waypoints(context.Background(), "x")
	assert.Error(t, err, "plan_waypoints is gone after rolling back")
	require.NoError(t, s.MigrateUp())
}

func TestSaveAndGetPlan(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	rec := testRecord("north", time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC))
	id, err := s.SavePlan(ctx, rec)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, rec.ID)

	got, err := s.GetPlan(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "north", got.Name)
	assert.True(t, rec.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, rec.Segment, got.Segment)
	assert.Equal(t, rec.Stats, got.Stats)
	assert.True(t, got.Diagnostics.Has(monitoring.CodeOBBFallback))

	rows, err := s.Waypoints(ctx, id)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "coverage", rows[2].Kind)
	assert.True(t, rows[2].Capture)
	assert.False(t, rows[1].Capture)
	assert.Equal(t, 90.0, rows[2].Heading)
	for i, r := range rows {
		assert.Equal(t, i, r.PathOrder)
	}
}

func TestListAndDeletePlans(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	var ids []string
	for i, name := range []string{"a", "b", "c"} {
		id, err := s.SavePlan(ctx, testRecord(name, base.Add(time.Duration(i)*time.Hour)))
		require.NoError(t, err)
		ids = append(ids, id)
	}

	all, err := s.ListPlans(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].Name, "newest first")
	assert.Equal(t, "raster", all[0].Strategy)
	assert.Equal(t, 4, all[0].WaypointCount)

	two, err := s.ListPlans(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, two, 2)

	require.NoError(t, s.DeletePlan(ctx, ids[0]))
	_, err = s.GetPlan(ctx, ids[0])
	assert.ErrorIs(t, err, ErrNotFound)
	rows, err := s.Waypoints(ctx, ids[0])
	require.NoError(t, err)
	assert.Empty(t, rows, "waypoints cascade with their plan")

	assert.ErrorIs(t, s.DeletePlan(ctx, ids[0]), ErrNotFound)
}

func TestSavePlan_Errors(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.SavePlan(ctx, nil)
	assert.Error(t, err)
	_, err = s.SavePlan(ctx, &PlanRecord{Name: "empty"})
	assert.Error(t, err)

	rec := testRecord("dup", time.Now())
	_, err = s.SavePlan(ctx, rec)
	require.NoError(t, err)
	_, err = s.SavePlan(ctx, rec)
	assert.Error(t, err, "plan ids are unique")
}

func TestSavePlan_StampsCreatedAtFromClock(t *testing.T) {
	s := openTestStore(t)
	stamp := time.Date(2026, 5, 4, 10, 30, 0, 0, time.UTC)
	clock := timeutil.NewMockClock(stamp)
	s.SetClock(clock)

	first, err := s.SavePlan(context.Background(), testRecord("first", time.Time{}))
	require.NoError(t, err)
	clock.Advance(time.Hour)
	second, err := s.SavePlan(context.Background(), testRecord("second", time.Time{}))
	require.NoError(t, err)

	got, err := s.GetPlan(context.Background(), first)
	require.NoError(t, err)
	assert.True(t, stamp.Equal(got.CreatedAt))

	list, err := s.ListPlans(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second, list[0].ID, "newest first")
	assert.True(t, stamp.Add(time.Hour).Equal(list[0].CreatedAt))
}
