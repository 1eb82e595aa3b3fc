package dto

import (
	"time"

	"github.com/sivoham-sks/sks_api/model"
)

// Event DTOs
type CreateEventRequest struct {
	Name                 string     `json:"name" validate:"required"`
	Date                 time.Time  `json:"date" validate:"required"`
	StartTime            string     `json:"startTime"`
	EndTime              string     `json:"endTime"`
	Description          string     `json:"description" validate:"required"`
	Venue                string     `json:"venue" validate:"required"`
	Location             string     `json:"location" validate:"required"`
	ImageURL             string     `json:"imageUrl"`
	EventType            string     `json:"eventType" validate:"omitempty,oneof=limited unlimited"`
	MessageTemplate      string     `json:"messageTemplate"`
	RegistrationDeadline *time.Time `json:"registrationDeadline"`
}

type UpdateEventRequest struct {
	Name                 string     `json:"name"`
	Date                 *time.Time `json:"date"`
	StartTime            string     `json:"startTime"`
	EndTime              string     `json:"endTime"`
	Description          string     `json:"description"`
	Venue                string     `json:"venue"`
	Location             string     `json:"location"`
	ImageURL             string     `json:"imageUrl"`
	EventType            string     `json:"eventType" validate:"omitempty,oneof=limited unlimited"`
	MessageTemplate      string     `json:"messageTemplate"`
	RegistrationDeadline *time.Time `json:"registrationDeadline"`
}

type EventListResponse struct {
	Events []model.Event `json:"events"`
	Total  int64         `json:"total"`
}

type ToggleBannerRequest struct {
	ShowScrollBanner bool `json:"showScrollBanner"`
}

// Registration DTOs
type RegisterEventRequest struct {
	EventID      string `json:"eventId" validate:"required"`
	FullName     string `json:"fullName" validate:"required"`
	Mobile       string `json:"mobile" validate:"required"`
	Gender       string `json:"gender" validate:"required"`
	Age          string `json:"age" validate:"required"`
	Profession   string `json:"profession"`
	Address      string `json:"address" validate:"required"`
	SksLevel     string `json:"sksLevel" validate:"required"`
	SksMiracle   string `json:"sksMiracle" validate:"required"`
	OtherDetails string `json:"otherDetails"`
	ForWhom      string `json:"forWhom" validate:"required"`
}

type RegisterEventResponse struct {
	Success        bool                `json:"success"`
	RegistrationID string              `json:"registrationId"`
	Status         string              `json:"status"`
	Registration   *model.Registration `json:"registration"`
}

// RegistrationOwner identifies the owning user on flattened admin views.
type RegistrationOwner struct {
	ID       string `json:"_id"`
	FullName string `json:"fullName"`
	Mobile   string `json:"mobile"`
}

// RegistrationView is one flattened, normalized ledger entry: blank snapshot
// fields come back as "-" so admin tables never render empty cells.
type RegistrationView struct {
	EventID        string             `json:"eventId"`
	EventType      string             `json:"eventType"`
	EventName      string             `json:"eventName"`
	EventDate      time.Time          `json:"eventDate"`
	DateRegistered time.Time          `json:"dateRegistered"`
	RegistrationID string             `json:"registrationId"`
	RegisteredID   string             `json:"registeredId"`
	Status         string             `json:"status"`
	FullName       string             `json:"fullName"`
	Mobile         string             `json:"mobile"`
	Gender         string             `json:"gender"`
	Age            string             `json:"age"`
	Profession     string             `json:"profession"`
	Address        string             `json:"address"`
	SksLevel       string             `json:"sksLevel"`
	SksMiracle     string             `json:"sksMiracle"`
	OtherDetails   string             `json:"otherDetails"`
	ForWhom        string             `json:"forWhom"`
	Attended       bool               `json:"attended"`
	AttendedAt     *time.Time         `json:"attendedAt,omitempty"`
	WhatsappSent   bool               `json:"whatsappSent"`
	User           *RegistrationOwner `json:"user,omitempty"`
}

// RegistrationFilters are applied in memory over the flattened set. The
// attendance-window bounds are RFC3339 timestamps.
type RegistrationFilters struct {
	Event          string `query:"event"`
	Name           string `query:"name"`
	Mobile         string `query:"mobile"`
	Status         string `query:"status"`
	Attended       string `query:"attended"` // "yes" / "no", empty = no filter
	WhatsappSent   string `query:"whatsappSent"`
	AttendedBefore string `query:"attendedBefore"`
	AttendedAfter  string `query:"attendedAfter"`
}

type ListRegistrationsResponse struct {
	Registrations []RegistrationView `json:"registrations"`
	Total         int                `json:"total"`
}

type TransitionResponse struct {
	Success bool `json:"success"`
}

type BulkRegistrationRequest struct {
	RegistrationIDs []string `json:"registrationIds" validate:"required,min=1"`
}

type BulkRegistrationResponse struct {
	Message       string `json:"message"`
	ModifiedCount int    `json:"modifiedCount"`
}

type AttendanceResponse struct {
	Success    bool      `json:"success"`
	Message    string    `json:"message"`
	AttendedAt time.Time `json:"attendedAt"`
}

type ToggleWhatsappResponse struct {
	Success      bool `json:"success"`
	WhatsappSent bool `json:"whatsappSent"`
}

type ExportResponse struct {
	Bucket string `json:"bucket"`
	Object string `json:"object"`
	Count  int    `json:"count"`
	URL    string `json:"url,omitempty"`
}
