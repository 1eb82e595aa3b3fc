package services

import (
	"time"

	"github.com/sivoham-sks/sks_api/dto"
	"github.com/sivoham-sks/sks_api/model"
	"github.com/sivoham-sks/sks_api/shared"

	"github.com/alphabatem/common/context"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// EventService manages the event catalog and the scroll banner.
type EventService struct {
	context.DefaultService

	postgres *PostgresService
}

const EVENT_SVC = "event_svc"

const bannerEventLimit = 10

func (svc EventService) Id() string {
	return EVENT_SVC
}

func (svc *EventService) Start() error {
	svc.postgres = svc.Service(POSTGRES_SVC).(*PostgresService)
	return nil
}

func (svc *EventService) CreateEvent(req *dto.CreateEventRequest) (*model.Event, error) {
	if err := dto.GetValidator().Struct(req); err != nil {
		return nil, shared.NewValidationError(err, "Invalid event payload")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to generate event id")
	}

	eventType := req.EventType
	if eventType == "" {
		eventType = shared.EventTypeUnlimited
	}

	event := &model.Event{
		ID:                   id.String(),
		Name:                 req.Name,
		Date:                 req.Date,
		StartTime:            req.StartTime,
		EndTime:              req.EndTime,
		Description:          req.Description,
		Venue:                req.Venue,
		Location:             req.Location,
		ImageURL:             req.ImageURL,
		EventType:            eventType,
		MessageTemplate:      req.MessageTemplate,
		RegistrationDeadline: req.RegistrationDeadline,
	}

	if err := svc.postgres.CreateEvent(event); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"event_id":   event.ID,
		"event_type": event.EventType,
	}).Info("Event created")

	return event, nil
}

func (svc *EventService) UpdateEvent(eventID string, req *dto.UpdateEventRequest) (*model.Event, error) {
	if err := dto.GetValidator().Struct(req); err != nil {
		return nil, shared.NewValidationError(err, "Invalid event payload")
	}

	event, err := svc.postgres.GetEvent(eventID)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		event.Name = req.Name
	}
	if req.Date != nil {
		event.Date = *req.Date
	}
	if req.StartTime != "" {
		event.StartTime = req.StartTime
	}
	if req.EndTime != "" {
		event.EndTime = req.EndTime
	}
	if req.Description != "" {
		event.Description = req.Description
	}
	if req.Venue != "" {
		event.Venue = req.Venue
	}
	if req.Location != "" {
		event.Location = req.Location
	}
	if req.ImageURL != "" {
		event.ImageURL = req.ImageURL
	}
	if req.EventType != "" {
		event.EventType = req.EventType
	}
	if req.MessageTemplate != "" {
		event.MessageTemplate = req.MessageTemplate
	}
	if req.RegistrationDeadline != nil {
		event.RegistrationDeadline = req.RegistrationDeadline
	}

	if err := svc.postgres.SaveEvent(event); err != nil {
		return nil, err
	}
	return event, nil
}

func (svc *EventService) DeleteEvent(eventID string) error {
	return svc.postgres.DeleteEvent(eventID)
}

func (svc *EventService) GetEvent(eventID string) (*model.Event, error) {
	return svc.postgres.GetEvent(eventID)
}

func (svc *EventService) ListEvents(page, limit int) (*dto.EventListResponse, error) {
	events, total, err := svc.postgres.ListEvents(page, limit)
	if err != nil {
		return nil, err
	}
	return &dto.EventListResponse{Events: events, Total: total}, nil
}

// BannerEvents lists upcoming events flagged for the scroll banner.
func (svc *EventService) BannerEvents() ([]model.Event, error) {
	return svc.postgres.UpcomingBannerEvents(time.Now(), bannerEventLimit)
}

// ToggleBanner flips the banner flag for one event.
func (svc *EventService) ToggleBanner(eventID string, show bool) (*model.Event, error) {
	event, err := svc.postgres.GetEvent(eventID)
	if err != nil {
		return nil, err
	}
	event.ShowScrollBanner = show
	if err := svc.postgres.SaveEvent(event); err != nil {
		return nil, err
	}
	return event, nil
}
