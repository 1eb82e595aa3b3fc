package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sivoham-sks/sks_api/dto"
	"github.com/sivoham-sks/sks_api/shared"
)

type ProgressHandler struct {
	progressSvc ProgressServiceInterface
}

func NewProgressHandler(progressSvc ProgressServiceInterface) *ProgressHandler {
	return &ProgressHandler{progressSvc: progressSvc}
}

// @Summary Report daily progress
// @Description Record one day's watch session for a course level
// @Tags progress
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param progressRequest body dto.ReportProgressRequest true "Daily progress"
// @Success 200 {object} shared.Response{data=dto.ReportProgressResponse}
// @Router /api/v1/progress [post]
func (h *ProgressHandler) ReportProgress(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	var req dto.ReportProgressRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}

	resp, err := h.progressSvc.ReportProgress(userID, &req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", resp)
}

// @Summary Get progress history
// @Description Get the flattened per-day history and the raw course document
// @Tags progress
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Success 200 {object} shared.Response{data=dto.GetProgressResponse}
// @Router /api/v1/progress [get]
func (h *ProgressHandler) GetProgress(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	resp, err := h.progressSvc.GetProgress(userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", resp)
}

// @Summary Get course summary
// @Description Get the cross-level course progress summary
// @Tags progress
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Success 200 {object} shared.Response{data=dto.CourseProgressResponse}
// @Router /api/v1/progress/summary [get]
func (h *ProgressHandler) GetCourseProgress(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	resp, err := h.progressSvc.CourseProgress(userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", resp)
}
