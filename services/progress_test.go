package services

import (
	"testing"
	"time"

	"github.com/sivoham-sks/sks_api/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completedLevel(days int, lastDate time.Time) *model.CourseLevel {
	lvl := &model.CourseLevel{}
	for d := 1; d <= days; d++ {
		rec := lvl.RecordDay(d, 3600, 3600, true, lastDate.AddDate(0, 0, d-days))
		lvl.UpsertDailyProgress(d, rec, rec.Date)
	}
	lvl.Recompute(3)
	return lvl
}

func TestBuildCourseProgressEmpty(t *testing.T) {
	summary := BuildCourseProgress(&model.Courses{}, model.DefaultLevelConfigs())

	assert.Equal(t, "Not Started", summary.CurrentLevel)
	assert.Zero(t, summary.CompletedLevels)
	assert.False(t, summary.Level4Completed)
	assert.Nil(t, summary.LastCompletedAt)
	assert.Empty(t, summary.LevelDetails)
	assert.Nil(t, summary.MeditationTest)
}

func TestBuildCourseProgressHighestLevelWins(t *testing.T) {
	last := time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)
	courses := &model.Courses{
		Level1: completedLevel(3, last.AddDate(0, 0, -10)),
		Level2: completedLevel(3, last),
		Level3: &model.CourseLevel{},
	}
	courses.Level3.RecordDay(1, 3600, 3600, true, last.AddDate(0, 0, 1))
	courses.Level3.Recompute(3)

	summary := BuildCourseProgress(courses, model.DefaultLevelConfigs())

	assert.Equal(t, "Level 2 Completed", summary.CurrentLevel)
	assert.Equal(t, 2, summary.CompletedLevels)
	require.NotNil(t, summary.LastCompletedAt)
	assert.Equal(t, last, *summary.LastCompletedAt)
	assert.False(t, summary.Level4Completed)

	// Watch time sums across every touched level, completed or not.
	assert.Equal(t, 7*60, summary.TotalWatchTime)
	assert.Len(t, summary.LevelDetails, 3)
	// TotalDays reflects the recorded history, not the completion target.
	assert.Equal(t, 3, summary.LevelDetails["level1"].TotalDays)
	assert.Equal(t, 1, summary.LevelDetails["level3"].TotalDays)
}

func TestBuildCourseProgressTestOverride(t *testing.T) {
	last := time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)
	testDate := last.AddDate(0, 0, 3)
	courses := &model.Courses{
		Level1: completedLevel(3, last.AddDate(0, 0, -5)),
		Level2: completedLevel(3, last),
		Test: &model.MeditationTest{
			Completed:      true,
			CompletedCount: 2,
			Passed:         true,
			History: []model.TestAttempt{
				{Date: testDate.AddDate(0, 0, -1), Passed: false},
				{Date: testDate, Passed: true},
				{Date: testDate, Passed: true},
			},
		},
	}

	summary := BuildCourseProgress(courses, model.DefaultLevelConfigs())

	assert.Equal(t, "Test Completed", summary.CurrentLevel)
	// Completed-level count is untouched by the override.
	assert.Equal(t, 2, summary.CompletedLevels)
	require.NotNil(t, summary.LastCompletedAt)
	assert.Equal(t, testDate, *summary.LastCompletedAt)

	require.NotNil(t, summary.MeditationTest)
	assert.True(t, summary.MeditationTest.Passed)
	// Attempts mirrors the stored completed count, not the history length.
	assert.Equal(t, 2, summary.MeditationTest.Attempts)
	require.NotNil(t, summary.MeditationTest.LastAttempt)
}

func TestBuildCourseProgressIncompleteTestKeepsLabel(t *testing.T) {
	last := time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)
	courses := &model.Courses{
		Level1: completedLevel(3, last),
		Test: &model.MeditationTest{
			History: []model.TestAttempt{{Date: last, Passed: false}},
		},
	}

	summary := BuildCourseProgress(courses, model.DefaultLevelConfigs())

	assert.Equal(t, "Level 1 Completed", summary.CurrentLevel)
	require.NotNil(t, summary.MeditationTest)
	assert.False(t, summary.MeditationTest.Completed)
}

func TestBuildCourseProgressLevel4Flag(t *testing.T) {
	last := time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)
	courses := &model.Courses{
		Level1: completedLevel(3, last),
		Level2: completedLevel(3, last),
		Level3: completedLevel(3, last),
		Level4: completedLevel(3, last),
	}

	summary := BuildCourseProgress(courses, model.DefaultLevelConfigs())

	assert.Equal(t, "Level 4 Completed", summary.CurrentLevel)
	assert.Equal(t, 4, summary.CompletedLevels)
	assert.True(t, summary.Level4Completed)
}
