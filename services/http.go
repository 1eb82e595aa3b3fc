package services

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/sivoham-sks/sks_api/dto"
	"github.com/sivoham-sks/sks_api/services/handlers"
	"github.com/sivoham-sks/sks_api/shared"

	"github.com/alphabatem/common/context"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	log "github.com/sirupsen/logrus"
)

type HttpService struct {
	context.DefaultService

	authSvc       *AuthMiddleware
	rateLimitSvc  *RateLimitService
	monitoringSvc *MonitoringService

	progressHandler     *handlers.ProgressHandler
	eventHandler        *handlers.EventHandler
	registrationHandler *handlers.RegistrationHandler

	port   int
	server *fiber.App
}

const HTTP_SVC = "http_svc"

func (svc HttpService) Id() string {
	return HTTP_SVC
}

func (svc *HttpService) Configure(ctx *context.Context) error {
	if port := os.Getenv("HTTP_PORT"); port != "" {
		var err error
		if svc.port, err = strconv.Atoi(port); err != nil {
			return err
		}
	} else {
		svc.port = 8000
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *HttpService) Start() error {
	svc.authSvc = svc.Service(AUTH_SVC).(*AuthMiddleware)
	svc.rateLimitSvc = svc.Service(RATE_LIMIT_SVC).(*RateLimitService)
	svc.monitoringSvc = svc.Service(MONITORING_SVC).(*MonitoringService)

	svc.progressHandler = handlers.NewProgressHandler(svc.Service(PROGRESS_SVC).(*ProgressService))
	svc.eventHandler = handlers.NewEventHandler(svc.Service(EVENT_SVC).(*EventService))
	svc.registrationHandler = handlers.NewRegistrationHandler(
		svc.Service(REGISTRATION_SVC).(*RegistrationService),
		svc.Service(EXPORT_SVC).(*ExportService),
	)

	app := fiber.New(fiber.Config{
		JSONEncoder:  shared.JSONMarshal,
		JSONDecoder:  shared.JSONUnmarshal,
		ErrorHandler: svc.errorHandler,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(MonitoringMiddleware(svc.monitoringSvc))
	app.Use(svc.rateLimitSvc.Limit("api_general"))

	app.Get("/ping", svc.ping)

	svc.registerRoutes(app)

	app.Use(func(c *fiber.Ctx) error {
		return shared.ResponseNotFound(c)
	})

	svc.server = app

	log.Printf("HTTP server starting on port %d", svc.port)
	return app.Listen(fmt.Sprintf(":%v", svc.port))
}

func (svc *HttpService) Shutdown() {
	if svc.server != nil {
		_ = svc.server.Shutdown()
	}
}

func (svc *HttpService) registerRoutes(app *fiber.App) {
	v1 := app.Group("/api/v1")

	v1.Get("/ping", svc.ping)

	// Course progress
	progress := v1.Group("/progress")
	progress.Post("/",
		svc.authSvc.RequiredAuth(),
		svc.rateLimitSvc.Limit("progress_report"),
		svc.progressHandler.ReportProgress)
	progress.Get("/", svc.authSvc.RequiredAuth(), svc.progressHandler.GetProgress)
	progress.Get("/summary", svc.authSvc.RequiredAuth(), svc.progressHandler.GetCourseProgress)

	// Event catalog
	events := v1.Group("/events")
	events.Get("/", svc.eventHandler.ListEvents)
	events.Get("/upcoming-banner", svc.eventHandler.UpcomingBannerEvents)
	events.Get("/:id", svc.eventHandler.GetEvent)
	events.Post("/", svc.authSvc.RequireCapability(shared.CapEventsManagement), svc.eventHandler.CreateEvent)
	events.Put("/:id", svc.authSvc.RequireCapability(shared.CapEventsManagement), svc.eventHandler.UpdateEvent)
	events.Delete("/:id", svc.authSvc.RequireCapability(shared.CapEventsManagement), svc.eventHandler.DeleteEvent)
	events.Patch("/:id/banner", svc.authSvc.RequireCapability(shared.CapEventsManagement), svc.eventHandler.ToggleBanner)

	// Registrations
	regs := v1.Group("/event-registrations")
	regs.Post("/", svc.rateLimitSvc.Limit("event_register"), svc.registrationHandler.Register)
	regs.Get("/", svc.authSvc.RequireCapability(shared.CapEventRegistrations), svc.registrationHandler.ListLimited)
	regs.Get("/all", svc.authSvc.RequireCapability(shared.CapEventUsers), svc.registrationHandler.ListAll)
	regs.Get("/export", svc.authSvc.RequireCapability(shared.CapEventUsers), svc.registrationHandler.Export)
	regs.Get("/user/:mobile", svc.registrationHandler.ByMobile)
	regs.Put("/:id/approve", svc.authSvc.RequireCapability(shared.CapEventRegistrations), svc.registrationHandler.Approve)
	regs.Put("/:id/reject", svc.authSvc.RequireCapability(shared.CapEventRegistrations), svc.registrationHandler.Reject)
	regs.Put("/:id/attend",
		svc.authSvc.RequireCapability(shared.CapBarcodeScanner),
		svc.rateLimitSvc.Limit("attendance_scan"),
		svc.registrationHandler.MarkAttendance)
	regs.Put("/:id/toggle-whatsapp", svc.authSvc.RequireCapability(shared.CapEventRegistrations), svc.registrationHandler.ToggleWhatsapp)
	regs.Post("/bulk-approve", svc.authSvc.RequireCapability(shared.CapEventRegistrations), svc.registrationHandler.BulkApprove)
	regs.Post("/bulk-reject", svc.authSvc.RequireCapability(shared.CapEventRegistrations), svc.registrationHandler.BulkReject)
}

// @Summary Ping
// @Description This endpoint checks the health of the service
// @Tags health
// @Accept  json
// @Produce json
// @Success 200 {object} shared.Response{data=string}
// @Router /ping [get]
func (svc *HttpService) ping(c *fiber.Ctx) error {
	c.Set("Cache-Control", "max-age=10")
	return shared.ResponseJSON(c, fiber.StatusOK, "Success", "pong")
}

func (svc *HttpService) errorHandler(c *fiber.Ctx, err error) error {
	if appErr, ok := shared.GetAppError(err); ok {
		var validationErrs validator.ValidationErrors
		if errors.As(appErr.Err, &validationErrs) {
			return shared.ResponseJSON(c, appErr.StatusCode, appErr.Message, dto.FormatValidationErrors(validationErrs))
		}
		return shared.ResponseJSON(c, appErr.StatusCode, appErr.Message, appErr.Data)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return shared.ResponseJSON(c, fiberErr.Code, fiberErr.Message, nil)
	}

	log.WithError(err).Error("Unhandled request error")
	return shared.ResponseInternalError(c, err)
}
