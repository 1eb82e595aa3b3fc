package dto

import (
	"time"

	"github.com/sivoham-sks/sks_api/model"
)

// Progress DTOs
type ReportProgressRequest struct {
	Level          int        `json:"level" validate:"required,min=1,max=5"`
	Day            int        `json:"day" validate:"required,min=1"`
	Completed      bool       `json:"completed"`
	CompletedAt    *time.Time `json:"completedAt"`
	WatchedSeconds int        `json:"watchedSeconds" validate:"min=0"`
	VideoDuration  int        `json:"videoDuration" validate:"min=0"`
	Feedback       string     `json:"feedback"`
}

type LevelSummary struct {
	Completed      bool                         `json:"completed"`
	WatchTime      int                          `json:"watchTime"`
	CompletedCount int                          `json:"completedCount"`
	LastWatched    *time.Time                   `json:"lastWatched"`
	DailyProgress  map[string]model.DayProgress `json:"dailyProgress"`
	TotalDays      int                          `json:"totalDays"`
}

type TestAttemptView struct {
	Date    time.Time         `json:"date"`
	Passed  bool              `json:"passed"`
	Metrics model.TestMetrics `json:"metrics"`
}

type MeditationTestSummary struct {
	Completed   bool             `json:"completed"`
	Passed      bool             `json:"passed"`
	Attempts    int              `json:"attempts"`
	LastAttempt *TestAttemptView `json:"lastAttempt"`
}

type CourseProgressResponse struct {
	CurrentLevel    string                  `json:"currentLevel"`
	CompletedLevels int                     `json:"completedLevels"`
	Level4Completed bool                    `json:"level4Completed"`
	LastCompletedAt *time.Time              `json:"lastCompletedAt"`
	TotalWatchTime  int                     `json:"totalWatchTime"`
	LevelDetails    map[string]LevelSummary `json:"levelDetails"`
	MeditationTest  *MeditationTestSummary  `json:"meditationTest"`
}

type ReportProgressResponse struct {
	Success        bool                   `json:"success"`
	Message        string                 `json:"message"`
	LevelCompleted bool                   `json:"levelCompleted"`
	CompletedDays  int                    `json:"completedDays"`
	TotalDays      int                    `json:"totalDays"`
	CourseProgress CourseProgressResponse `json:"courseProgress"`
}

// ProgressEntry is one flattened history slot in the GET view.
type ProgressEntry struct {
	Level          int       `json:"level"`
	Day            int       `json:"day"`
	Completed      bool      `json:"completed"`
	CompletedAt    time.Time `json:"completedAt"`
	WatchedSeconds int       `json:"watchedSeconds"`
	VideoDuration  int       `json:"videoDuration"`
	WatchTime      int       `json:"watchTime"`
	Feedback       string    `json:"feedback"`
}

type GetProgressResponse struct {
	Progress []ProgressEntry `json:"progress"`
	Courses  *model.Courses  `json:"courses"`
}
