package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sivoham-sks/sks_api/dto"
	"github.com/sivoham-sks/sks_api/shared"
)

type EventHandler struct {
	eventSvc EventServiceInterface
}

func NewEventHandler(eventSvc EventServiceInterface) *EventHandler {
	return &EventHandler{eventSvc: eventSvc}
}

// @Summary List events
// @Description List events, newest date last, with optional paging
// @Tags events
// @Accept json
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} shared.Response{data=dto.EventListResponse}
// @Router /api/v1/events [get]
func (h *EventHandler) ListEvents(c *fiber.Ctx) error {
	page := c.QueryInt("page", 0)
	limit := c.QueryInt("limit", 0)

	resp, err := h.eventSvc.ListEvents(page, limit)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", resp)
}

// @Summary Get event
// @Description Get one event by id
// @Tags events
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} shared.Response{data=model.Event}
// @Router /api/v1/events/{id} [get]
func (h *EventHandler) GetEvent(c *fiber.Ctx) error {
	event, err := h.eventSvc.GetEvent(c.Params("id"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", event)
}

// @Summary Create event
// @Description Create a new event
// @Tags events
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "Admin Bearer Token" default(Bearer <admin_token>)
// @Param eventRequest body dto.CreateEventRequest true "Event"
// @Success 201 {object} shared.Response{data=model.Event}
// @Router /api/v1/events [post]
func (h *EventHandler) CreateEvent(c *fiber.Ctx) error {
	var req dto.CreateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}

	event, err := h.eventSvc.CreateEvent(&req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusCreated, "Created", event)
}

// @Summary Update event
// @Description Update an event; blank fields are left untouched
// @Tags events
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "Admin Bearer Token" default(Bearer <admin_token>)
// @Param id path string true "Event ID"
// @Param eventRequest body dto.UpdateEventRequest true "Event"
// @Success 200 {object} shared.Response{data=model.Event}
// @Router /api/v1/events/{id} [put]
func (h *EventHandler) UpdateEvent(c *fiber.Ctx) error {
	var req dto.UpdateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}

	event, err := h.eventSvc.UpdateEvent(c.Params("id"), &req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", event)
}

// @Summary Delete event
// @Description Delete an event
// @Tags events
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "Admin Bearer Token" default(Bearer <admin_token>)
// @Param id path string true "Event ID"
// @Success 200 {object} shared.Response
// @Router /api/v1/events/{id} [delete]
func (h *EventHandler) DeleteEvent(c *fiber.Ctx) error {
	if err := h.eventSvc.DeleteEvent(c.Params("id")); err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", nil)
}

// @Summary Upcoming banner events
// @Description List upcoming events flagged for the scroll banner
// @Tags events
// @Accept json
// @Produce json
// @Success 200 {object} shared.Response{data=[]model.Event}
// @Router /api/v1/events/upcoming-banner [get]
func (h *EventHandler) UpcomingBannerEvents(c *fiber.Ctx) error {
	events, err := h.eventSvc.BannerEvents()
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", events)
}

// @Summary Toggle scroll banner
// @Description Flip the scroll-banner flag for one event
// @Tags events
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "Admin Bearer Token" default(Bearer <admin_token>)
// @Param id path string true "Event ID"
// @Param bannerRequest body dto.ToggleBannerRequest true "Banner flag"
// @Success 200 {object} shared.Response{data=model.Event}
// @Router /api/v1/events/{id}/banner [patch]
func (h *EventHandler) ToggleBanner(c *fiber.Ctx) error {
	var req dto.ToggleBannerRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}

	event, err := h.eventSvc.ToggleBanner(c.Params("id"), req.ShowScrollBanner)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", event)
}
