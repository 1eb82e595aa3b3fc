// model/course.go
package model

import (
	"fmt"
	"math"
	"time"
)

// DayRecord is one day's self-reported watch session for a level. Day N lives
// at history index N-1; days skipped by out-of-order submissions are padded
// with placeholder records.
type DayRecord struct {
	Date           time.Time `json:"date"`
	WatchTime      int       `json:"watchTime"` // minutes, rounded from watchedSeconds
	Completed      bool      `json:"completed"`
	WatchedSeconds int       `json:"watchedSeconds"`
	VideoDuration  int       `json:"videoDuration"` // seconds
	DayGapMs       int64     `json:"dayGapMs"`      // elapsed since previous day's stored date
}

// DayFeedback is an optional per-day comment, padded alongside history.
type DayFeedback struct {
	Date    time.Time `json:"date"`
	Comment string    `json:"comment"`
}

// DayProgress is the derived per-day view cached under dailyProgress["dayN"].
type DayProgress struct {
	WatchTime      int       `json:"watchTime"`
	WatchedSeconds int       `json:"watchedSeconds"`
	Percentage     int       `json:"percentage"`
	Date           time.Time `json:"date"`
	CompletedAt    time.Time `json:"completedAt"`
	Completed      bool      `json:"completed"`
	DayGapMs       int64     `json:"dayGapMs"`
	DayGapHours    float64   `json:"dayGapHours"`
}

// CourseLevel holds one level's raw history plus the derived completion state
// and daily-progress cache. Derived fields are recomputed through Recompute
// after every mutation; history is the source of truth.
type CourseLevel struct {
	Completed      bool                   `json:"completed"`
	CompletedCount int                    `json:"completedCount"`
	History        []DayRecord            `json:"history"`
	Feedback       []*DayFeedback         `json:"feedback"`
	DailyProgress  map[string]DayProgress `json:"dailyProgress"`
}

// TestMetrics is the metric snapshot captured with each meditation test attempt.
type TestMetrics struct {
	MinMinutes        int     `json:"meditationTestMinMinutes,omitempty"`
	MinClosedPct      float64 `json:"meditationTestMinClosedPct,omitempty"`
	MaxHeadMoveFactor float64 `json:"meditationTestMaxHeadMoveFactor,omitempty"`
	MaxHandMoveFactor float64 `json:"meditationTestMaxHandMoveFactor,omitempty"`
	MinHandStability  float64 `json:"meditationTestMinHandStability,omitempty"`
}

// TestAttempt is one meditation test run.
type TestAttempt struct {
	Date    time.Time   `json:"date"`
	Passed  bool        `json:"passed"`
	Metrics TestMetrics `json:"metrics"`
}

// MeditationTest sits between level 2 and level 3 in the curriculum.
type MeditationTest struct {
	Completed      bool          `json:"completed"`
	CompletedCount int           `json:"completedCount"`
	Passed         bool          `json:"passed"`
	History        []TestAttempt `json:"history"`
}

// Courses is the per-user course aggregate, persisted as a single JSON
// document on the user row.
type Courses struct {
	Level1 *CourseLevel    `json:"level1,omitempty"`
	Level2 *CourseLevel    `json:"level2,omitempty"`
	Test   *MeditationTest `json:"test,omitempty"`
	Level3 *CourseLevel    `json:"level3,omitempty"`
	Level4 *CourseLevel    `json:"level4,omitempty"`
	Level5 *CourseLevel    `json:"level5,omitempty"`
}

const (
	MinLevel = 1
	MaxLevel = 5
)

// LevelConfig is the fixed external configuration for one level.
type LevelConfig struct {
	RequiredDays         int
	ExpectedDailyMinutes int
}

// DefaultLevelConfigs mirrors the curriculum: every level completes after 3
// watched days, with expected daily watch time growing 60..180 minutes.
func DefaultLevelConfigs() map[int]LevelConfig {
	return map[int]LevelConfig{
		1: {RequiredDays: 3, ExpectedDailyMinutes: 60},
		2: {RequiredDays: 3, ExpectedDailyMinutes: 90},
		3: {RequiredDays: 3, ExpectedDailyMinutes: 120},
		4: {RequiredDays: 3, ExpectedDailyMinutes: 150},
		5: {RequiredDays: 3, ExpectedDailyMinutes: 180},
	}
}

func LevelKey(level int) string {
	return fmt.Sprintf("level%d", level)
}

func DayKey(day int) string {
	return fmt.Sprintf("day%d", day)
}

// Level returns the level state, nil if never touched.
func (c *Courses) Level(level int) *CourseLevel {
	switch level {
	case 1:
		return c.Level1
	case 2:
		return c.Level2
	case 3:
		return c.Level3
	case 4:
		return c.Level4
	case 5:
		return c.Level5
	}
	return nil
}

// EnsureLevel lazily creates the level state on first progress report.
func (c *Courses) EnsureLevel(level int) *CourseLevel {
	if lvl := c.Level(level); lvl != nil {
		return lvl
	}
	lvl := &CourseLevel{
		History:       []DayRecord{},
		Feedback:      []*DayFeedback{},
		DailyProgress: map[string]DayProgress{},
	}
	switch level {
	case 1:
		c.Level1 = lvl
	case 2:
		c.Level2 = lvl
	case 3:
		c.Level3 = lvl
	case 4:
		c.Level4 = lvl
	case 5:
		c.Level5 = lvl
	}
	return lvl
}

// RecordDay writes the day's record at history[day-1], padding any skipped
// days with placeholders first. The slot is fully replaced, never merged.
// The gap is always measured against the immediately preceding slot's stored
// date, so retroactive backfills can produce negative gaps; that formula is
// kept as-is.
func (l *CourseLevel) RecordDay(day, watchedSeconds, videoDuration int, completed bool, completedAt time.Time) DayRecord {
	if day < 1 {
		day = 1
	}

	now := time.Now()
	for len(l.History) < day {
		l.History = append(l.History, DayRecord{Date: now})
	}

	var gap int64
	if day > 1 {
		gap = completedAt.Sub(l.History[day-2].Date).Milliseconds()
	}

	rec := DayRecord{
		Date:           completedAt,
		WatchTime:      minutesFromSeconds(watchedSeconds),
		Completed:      completed,
		WatchedSeconds: watchedSeconds,
		VideoDuration:  videoDuration,
		DayGapMs:       gap,
	}
	l.History[day-1] = rec
	return rec
}

// UpsertDailyProgress refreshes the cached dayN view from the record just
// written. Percentage here is duration-based; the expected-minutes formula is
// reserved for reconstructing pre-cache records.
func (l *CourseLevel) UpsertDailyProgress(day int, rec DayRecord, completedAt time.Time) {
	if l.DailyProgress == nil {
		l.DailyProgress = map[string]DayProgress{}
	}
	l.DailyProgress[DayKey(day)] = DayProgress{
		WatchTime:      rec.WatchTime,
		WatchedSeconds: rec.WatchedSeconds,
		Percentage:     DurationPercentage(rec.WatchedSeconds, rec.VideoDuration),
		Date:           rec.Date,
		CompletedAt:    completedAt,
		Completed:      rec.Completed,
		DayGapMs:       rec.DayGapMs,
		DayGapHours:    gapHours(rec.DayGapMs),
	}
}

// RecordFeedback stores the day's comment, padding skipped days with nils so
// feedback indexing matches history indexing.
func (l *CourseLevel) RecordFeedback(day int, comment string, now time.Time) {
	if day < 1 {
		return
	}
	for len(l.Feedback) < day {
		l.Feedback = append(l.Feedback, nil)
	}
	l.Feedback[day-1] = &DayFeedback{Date: now, Comment: comment}
}

// FeedbackFor returns the stored comment for a day, empty when absent.
func (l *CourseLevel) FeedbackFor(day int) string {
	if day < 1 || day > len(l.Feedback) {
		return ""
	}
	if fb := l.Feedback[day-1]; fb != nil {
		return fb.Comment
	}
	return ""
}

// EvaluateLevel derives completion from raw history: the level is complete
// once requiredDays entries are marked completed.
func EvaluateLevel(history []DayRecord, requiredDays int) (completed bool, completedCount int) {
	for _, h := range history {
		if h.Completed {
			completedCount++
		}
	}
	return completedCount >= requiredDays, completedCount
}

// Recompute is the single entrypoint refreshing derived completion state;
// chained after every history mutation so the cache cannot drift.
func (l *CourseLevel) Recompute(requiredDays int) {
	l.Completed, l.CompletedCount = EvaluateLevel(l.History, requiredDays)
}

// WatchTimeMinutes sums recorded minutes across the level's history.
func (l *CourseLevel) WatchTimeMinutes() int {
	total := 0
	for _, h := range l.History {
		total += h.WatchTime
	}
	return total
}

// LastWatched is the date of the last history slot, nil when empty.
func (l *CourseLevel) LastWatched() *time.Time {
	if len(l.History) == 0 {
		return nil
	}
	d := l.History[len(l.History)-1].Date
	return &d
}

// DailyProgressView returns the cached view, reconstructing it from history
// for records created before the cache existed. Reconstruction rates each day
// against the level's expected daily minutes, not the video duration; the two
// formulas are not interchangeable.
func (l *CourseLevel) DailyProgressView(expectedDailyMinutes int) map[string]DayProgress {
	if len(l.DailyProgress) > 0 {
		return l.DailyProgress
	}

	view := map[string]DayProgress{}
	for i, h := range l.History {
		view[DayKey(i+1)] = DayProgress{
			WatchTime:      h.WatchTime,
			WatchedSeconds: h.WatchedSeconds,
			Percentage:     ExpectedPercentage(h.WatchTime, expectedDailyMinutes),
			Date:           h.Date,
			CompletedAt:    h.Date,
			Completed:      h.Completed,
			DayGapMs:       h.DayGapMs,
			DayGapHours:    gapHours(h.DayGapMs),
		}
	}
	return view
}

// LastAttempt returns the most recent test run, nil when none recorded.
func (t *MeditationTest) LastAttempt() *TestAttempt {
	if t == nil || len(t.History) == 0 {
		return nil
	}
	return &t.History[len(t.History)-1]
}

// DurationPercentage rates watched seconds against the video's duration,
// capped at 100. Zero duration yields 0.
func DurationPercentage(watchedSeconds, videoDuration int) int {
	if videoDuration <= 0 {
		return 0
	}
	pct := int(math.Round(float64(watchedSeconds) / float64(videoDuration) * 100))
	if pct > 100 {
		return 100
	}
	return pct
}

// ExpectedPercentage rates recorded minutes against the level's expected
// daily minutes, capped at 100. Used only on the reconstruction path.
func ExpectedPercentage(watchTimeMinutes, expectedDailyMinutes int) int {
	if expectedDailyMinutes <= 0 {
		return 0
	}
	pct := int(math.Round(float64(watchTimeMinutes) / float64(expectedDailyMinutes) * 100))
	if pct > 100 {
		return 100
	}
	return pct
}

func minutesFromSeconds(seconds int) int {
	return int(math.Round(float64(seconds) / 60))
}

func gapHours(gapMs int64) float64 {
	return math.Round(float64(gapMs)/float64(time.Hour/time.Millisecond)*100) / 100
}
