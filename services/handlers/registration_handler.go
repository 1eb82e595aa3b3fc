package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sivoham-sks/sks_api/dto"
	"github.com/sivoham-sks/sks_api/shared"
)

type RegistrationHandler struct {
	registrationSvc RegistrationServiceInterface
	exportSvc       ExportServiceInterface
}

func NewRegistrationHandler(registrationSvc RegistrationServiceInterface, exportSvc ExportServiceInterface) *RegistrationHandler {
	return &RegistrationHandler{
		registrationSvc: registrationSvc,
		exportSvc:       exportSvc,
	}
}

// @Summary Register for event
// @Description Create a registration; unlimited events auto-approve, limited events start pending
// @Tags registrations
// @Accept json
// @Produce json
// @Param registerRequest body dto.RegisterEventRequest true "Applicant details"
// @Success 201 {object} shared.Response{data=dto.RegisterEventResponse}
// @Router /api/v1/event-registrations [post]
func (h *RegistrationHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterEventRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}

	resp, err := h.registrationSvc.Register(&req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusCreated, "Created", resp)
}

// @Summary List limited-event registrations
// @Description Flattened registrations for approval-gated events
// @Tags registrations
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "Admin Bearer Token" default(Bearer <admin_token>)
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} shared.Response{data=dto.ListRegistrationsResponse}
// @Router /api/v1/event-registrations [get]
func (h *RegistrationHandler) ListLimited(c *fiber.Ctx) error {
	return h.list(c, true)
}

// @Summary List all registrations
// @Description Flattened registrations across every event
// @Tags registrations
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "Admin Bearer Token" default(Bearer <admin_token>)
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} shared.Response{data=dto.ListRegistrationsResponse}
// @Router /api/v1/event-registrations/all [get]
func (h *RegistrationHandler) ListAll(c *fiber.Ctx) error {
	return h.list(c, false)
}

func (h *RegistrationHandler) list(c *fiber.Ctx, limitedOnly bool) error {
	var filters dto.RegistrationFilters
	if err := c.QueryParser(&filters); err != nil {
		return shared.NewBadRequestError(err, "Invalid filters")
	}

	page := c.QueryInt("page", 0)
	limit := c.QueryInt("limit", 0)

	resp, err := h.registrationSvc.List(&filters, limitedOnly, page, limit)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", resp)
}

// @Summary Registrations by mobile
// @Description One user's registrations, newest first
// @Tags registrations
// @Accept json
// @Produce json
// @Param mobile path string true "Mobile number"
// @Success 200 {object} shared.Response{data=[]dto.RegistrationView}
// @Router /api/v1/event-registrations/user/{mobile} [get]
func (h *RegistrationHandler) ByMobile(c *fiber.Ctx) error {
	views, err := h.registrationSvc.ByMobile(c.Params("mobile"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", views)
}

// @Summary Approve registration
// @Description Move a registration to approved; repeat calls are no-ops
// @Tags registrations
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "Admin Bearer Token" default(Bearer <admin_token>)
// @Param id path string true "Registration ID"
// @Success 200 {object} shared.Response{data=dto.TransitionResponse}
// @Router /api/v1/event-registrations/{id}/approve [put]
func (h *RegistrationHandler) Approve(c *fiber.Ctx) error {
	resp, err := h.registrationSvc.Approve(c.Params("id"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", resp)
}

// @Summary Reject registration
// @Description Move a registration to rejected; repeat calls are no-ops
// @Tags registrations
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "Admin Bearer Token" default(Bearer <admin_token>)
// @Param id path string true "Registration ID"
// @Success 200 {object} shared.Response{data=dto.TransitionResponse}
// @Router /api/v1/event-registrations/{id}/reject [put]
func (h *RegistrationHandler) Reject(c *fiber.Ctx) error {
	resp, err := h.registrationSvc.Reject(c.Params("id"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", resp)
}

// @Summary Bulk approve
// @Description Approve a batch of registrations; reports how many changed
// @Tags registrations
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "Admin Bearer Token" default(Bearer <admin_token>)
// @Param bulkRequest body dto.BulkRegistrationRequest true "Registration IDs"
// @Success 200 {object} shared.Response{data=dto.BulkRegistrationResponse}
// @Router /api/v1/event-registrations/bulk-approve [post]
func (h *RegistrationHandler) BulkApprove(c *fiber.Ctx) error {
	return h.bulk(c, shared.StatusApproved)
}

// @Summary Bulk reject
// @Description Reject a batch of registrations; reports how many changed
// @Tags registrations
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "Admin Bearer Token" default(Bearer <admin_token>)
// @Param bulkRequest body dto.BulkRegistrationRequest true "Registration IDs"
// @Success 200 {object} shared.Response{data=dto.BulkRegistrationResponse}
// @Router /api/v1/event-registrations/bulk-reject [post]
func (h *RegistrationHandler) BulkReject(c *fiber.Ctx) error {
	return h.bulk(c, shared.StatusRejected)
}

func (h *RegistrationHandler) bulk(c *fiber.Ctx, status string) error {
	var req dto.BulkRegistrationRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}
	if err := dto.GetValidator().Struct(&req); err != nil {
		return shared.NewValidationError(err, "Invalid request")
	}

	resp, err := h.registrationSvc.BulkTransition(req.RegistrationIDs, status)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", resp)
}

// @Summary Mark attendance
// @Description Check a registration in; only approved registrations pass and repeat scans fail
// @Tags registrations
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "Scanner Bearer Token" default(Bearer <scanner_token>)
// @Param id path string true "Registration ID"
// @Success 200 {object} shared.Response{data=dto.AttendanceResponse}
// @Router /api/v1/event-registrations/{id}/attend [put]
func (h *RegistrationHandler) MarkAttendance(c *fiber.Ctx) error {
	resp, err := h.registrationSvc.MarkAttendance(c.Params("id"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", resp)
}

// @Summary Toggle WhatsApp flag
// @Description Flip the notified flag on a registration
// @Tags registrations
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "Admin Bearer Token" default(Bearer <admin_token>)
// @Param id path string true "Registration ID"
// @Success 200 {object} shared.Response{data=dto.ToggleWhatsappResponse}
// @Router /api/v1/event-registrations/{id}/toggle-whatsapp [put]
func (h *RegistrationHandler) ToggleWhatsapp(c *fiber.Ctx) error {
	resp, err := h.registrationSvc.ToggleWhatsapp(c.Params("id"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", resp)
}

// @Summary Export registrations
// @Description Render the filtered ledger to CSV in object storage and return a download link
// @Tags registrations
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "Admin Bearer Token" default(Bearer <admin_token>)
// @Success 200 {object} shared.Response{data=dto.ExportResponse}
// @Router /api/v1/event-registrations/export [get]
func (h *RegistrationHandler) Export(c *fiber.Ctx) error {
	var filters dto.RegistrationFilters
	if err := c.QueryParser(&filters); err != nil {
		return shared.NewBadRequestError(err, "Invalid filters")
	}

	resp, err := h.exportSvc.ExportRegistrations(&filters)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", resp)
}
