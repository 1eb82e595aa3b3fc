package services

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sivoham-sks/sks_api/dto"
	"github.com/sivoham-sks/sks_api/model"
	"github.com/sivoham-sks/sks_api/shared"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
)

// ProgressService owns the course-progress engine: daily watch reports,
// level completion, and the cross-level summary.
type ProgressService struct {
	context.DefaultService

	postgres   *PostgresService
	monitoring *MonitoringService

	levelConfigs map[int]model.LevelConfig
}

const PROGRESS_SVC = "progress_svc"

func (svc ProgressService) Id() string {
	return PROGRESS_SVC
}

func (svc *ProgressService) Configure(ctx *context.Context) error {
	svc.levelConfigs = model.DefaultLevelConfigs()

	if v := os.Getenv("COURSE_REQUIRED_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil || days < 1 {
			return fmt.Errorf("invalid COURSE_REQUIRED_DAYS: %q", v)
		}
		for lvl, cfg := range svc.levelConfigs {
			cfg.RequiredDays = days
			svc.levelConfigs[lvl] = cfg
		}
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *ProgressService) Start() error {
	svc.postgres = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.monitoring = svc.Service(MONITORING_SVC).(*MonitoringService)
	return nil
}

// ReportProgress records one day's watch session for a level and returns the
// refreshed cross-level summary. The whole read-modify-write runs under a row
// lock so concurrent reports for the same user serialize.
func (svc *ProgressService) ReportProgress(userID string, req *dto.ReportProgressRequest) (*dto.ReportProgressResponse, error) {
	if err := dto.GetValidator().Struct(req); err != nil {
		return nil, shared.NewValidationError(err, "Invalid progress payload")
	}

	completedAt := time.Now()
	if req.CompletedAt != nil {
		completedAt = *req.CompletedAt
	}

	cfg := svc.levelConfigs[req.Level]

	var resp *dto.ReportProgressResponse
	err := svc.postgres.WithUser(userID, func(user *model.User) error {
		courses := user.EnsureCourses()
		lvl := courses.EnsureLevel(req.Level)

		rec := lvl.RecordDay(req.Day, req.WatchedSeconds, req.VideoDuration, req.Completed, completedAt)
		lvl.UpsertDailyProgress(req.Day, rec, completedAt)
		if req.Feedback != "" {
			lvl.RecordFeedback(req.Day, req.Feedback, completedAt)
		}
		lvl.Recompute(cfg.RequiredDays)

		resp = &dto.ReportProgressResponse{
			Success:        true,
			Message:        fmt.Sprintf("Day %d progress recorded for level %d", req.Day, req.Level),
			LevelCompleted: lvl.Completed,
			CompletedDays:  lvl.CompletedCount,
			TotalDays:      cfg.RequiredDays,
			CourseProgress: BuildCourseProgress(courses, svc.levelConfigs),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	svc.monitoring.RecordProgressReport(req.Level)
	log.WithFields(log.Fields{
		"user_id": userID,
		"level":   req.Level,
		"day":     req.Day,
	}).Info("Progress recorded")

	return resp, nil
}

// GetProgress returns the flattened per-day history across all levels plus
// the raw course document.
func (svc *ProgressService) GetProgress(userID string) (*dto.GetProgressResponse, error) {
	user, err := svc.postgres.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	resp := &dto.GetProgressResponse{
		Progress: []dto.ProgressEntry{},
		Courses:  user.Courses,
	}
	if user.Courses == nil {
		return resp, nil
	}

	for level := model.MinLevel; level <= model.MaxLevel; level++ {
		lvl := user.Courses.Level(level)
		if lvl == nil {
			continue
		}
		for i, h := range lvl.History {
			resp.Progress = append(resp.Progress, dto.ProgressEntry{
				Level:          level,
				Day:            i + 1,
				Completed:      h.Completed,
				CompletedAt:    h.Date,
				WatchedSeconds: h.WatchedSeconds,
				VideoDuration:  h.VideoDuration,
				WatchTime:      h.WatchTime,
				Feedback:       lvl.FeedbackFor(i + 1),
			})
		}
	}
	return resp, nil
}

// CourseProgress returns the cross-level summary for a user.
func (svc *ProgressService) CourseProgress(userID string) (*dto.CourseProgressResponse, error) {
	user, err := svc.postgres.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	courses := user.Courses
	if courses == nil {
		courses = &model.Courses{}
	}
	summary := BuildCourseProgress(courses, svc.levelConfigs)
	return &summary, nil
}

// BuildCourseProgress composes all levels plus the meditation test into one
// summary. Levels are walked 1 through 5 so the highest completed level's
// label wins; a completed test overrides the label afterwards.
func BuildCourseProgress(courses *model.Courses, configs map[int]model.LevelConfig) dto.CourseProgressResponse {
	resp := dto.CourseProgressResponse{
		CurrentLevel: "Not Started",
		LevelDetails: map[string]dto.LevelSummary{},
	}

	for level := model.MinLevel; level <= model.MaxLevel; level++ {
		lvl := courses.Level(level)
		if lvl == nil {
			continue
		}
		cfg := configs[level]

		watchTime := lvl.WatchTimeMinutes()
		resp.TotalWatchTime += watchTime
		resp.LevelDetails[model.LevelKey(level)] = dto.LevelSummary{
			Completed:      lvl.Completed,
			WatchTime:      watchTime,
			CompletedCount: lvl.CompletedCount,
			LastWatched:    lvl.LastWatched(),
			DailyProgress:  lvl.DailyProgressView(cfg.ExpectedDailyMinutes),
			TotalDays:      len(lvl.History),
		}

		if lvl.Completed {
			resp.CurrentLevel = fmt.Sprintf("Level %d Completed", level)
			resp.CompletedLevels = level
			resp.LastCompletedAt = lvl.LastWatched()
		}
	}

	if test := courses.Test; test != nil {
		summary := &dto.MeditationTestSummary{
			Completed: test.Completed,
			Passed:    test.Passed,
			Attempts:  test.CompletedCount,
		}
		if last := test.LastAttempt(); last != nil {
			summary.LastAttempt = &dto.TestAttemptView{
				Date:    last.Date,
				Passed:  last.Passed,
				Metrics: last.Metrics,
			}
		}
		resp.MeditationTest = summary

		if test.Completed {
			resp.CurrentLevel = "Test Completed"
			if last := test.LastAttempt(); last != nil {
				d := last.Date
				resp.LastCompletedAt = &d
			}
		}
	}

	resp.Level4Completed = resp.CompletedLevels >= 4
	return resp
}
