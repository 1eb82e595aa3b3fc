package seeders

import (
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/sivoham-sks/sks_api/model"
	"github.com/sivoham-sks/sks_api/shared"
	"gorm.io/gorm"
)

// EventSeeder creates sample events covering both capacity modes.
type EventSeeder struct {
	db *gorm.DB
}

func NewEventSeeder(db *gorm.DB) *EventSeeder {
	return &EventSeeder{db: db}
}

// SeedSampleEvents creates one unlimited and one deadline-bound limited
// event. Skipped when any events exist.
func (s *EventSeeder) SeedSampleEvents() error {
	var count int64
	if err := s.db.Model(&model.Event{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("Events already exist, skipping")
		return nil
	}

	now := time.Now()
	deadline := now.AddDate(0, 0, 25)

	events := []model.Event{
		{
			ID:               mustID(),
			Name:             "Monthly Introductory Session",
			Date:             now.AddDate(0, 0, 14),
			StartTime:        "10:00",
			EndTime:          "13:00",
			Description:      "Open introductory session, no approval needed.",
			Venue:            "Community Hall",
			Location:         "Hyderabad",
			EventType:        shared.EventTypeUnlimited,
			ShowScrollBanner: true,
			CreatedAt:        now,
			UpdatedAt:        now,
		},
		{
			ID:                   mustID(),
			Name:                 "Advanced Practitioners Retreat",
			Date:                 now.AddDate(0, 1, 0),
			StartTime:            "08:00",
			EndTime:              "18:00",
			Description:          "Limited seats, registrations reviewed by admins.",
			Venue:                "Retreat Center",
			Location:             "Vijayawada",
			EventType:            shared.EventTypeLimited,
			MessageTemplate:      "Your registration {registrationId} is confirmed.",
			RegistrationDeadline: &deadline,
			CreatedAt:            now,
			UpdatedAt:            now,
		},
	}

	for _, event := range events {
		if err := s.db.Create(&event).Error; err != nil {
			log.Printf("Error creating event %s: %v", event.Name, err)
			return err
		}
		log.Printf("Created event: %s (%s)", event.Name, event.EventType)
	}
	return nil
}

func mustID() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic(err)
	}
	return id.String()
}
