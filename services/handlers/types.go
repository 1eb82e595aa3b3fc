package handlers

import (
	"github.com/sivoham-sks/sks_api/dto"
	"github.com/sivoham-sks/sks_api/model"
)

type ProgressServiceInterface interface {
	ReportProgress(userID string, req *dto.ReportProgressRequest) (*dto.ReportProgressResponse, error)
	GetProgress(userID string) (*dto.GetProgressResponse, error)
	CourseProgress(userID string) (*dto.CourseProgressResponse, error)
}

type EventServiceInterface interface {
	CreateEvent(req *dto.CreateEventRequest) (*model.Event, error)
	UpdateEvent(eventID string, req *dto.UpdateEventRequest) (*model.Event, error)
	DeleteEvent(eventID string) error
	GetEvent(eventID string) (*model.Event, error)
	ListEvents(page, limit int) (*dto.EventListResponse, error)
	BannerEvents() ([]model.Event, error)
	ToggleBanner(eventID string, show bool) (*model.Event, error)
}

type RegistrationServiceInterface interface {
	Register(req *dto.RegisterEventRequest) (*dto.RegisterEventResponse, error)
	Approve(registrationID string) (*dto.TransitionResponse, error)
	Reject(registrationID string) (*dto.TransitionResponse, error)
	BulkTransition(registrationIDs []string, status string) (*dto.BulkRegistrationResponse, error)
	MarkAttendance(registrationID string) (*dto.AttendanceResponse, error)
	ToggleWhatsapp(registrationID string) (*dto.ToggleWhatsappResponse, error)
	List(filters *dto.RegistrationFilters, limitedOnly bool, page, limit int) (*dto.ListRegistrationsResponse, error)
	ByMobile(mobile string) ([]dto.RegistrationView, error)
}

type ExportServiceInterface interface {
	ExportRegistrations(filters *dto.RegistrationFilters) (*dto.ExportResponse, error)
}
