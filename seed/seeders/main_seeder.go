package seeders

import (
	"gorm.io/gorm"
)

// MainSeeder coordinates the individual seeders.
type MainSeeder struct {
	admin  *AdminSeeder
	events *EventSeeder
}

func NewMainSeeder(db *gorm.DB) *MainSeeder {
	return &MainSeeder{
		admin:  NewAdminSeeder(db),
		events: NewEventSeeder(db),
	}
}

func (s *MainSeeder) SeedAll() error {
	if err := s.SeedAdmin(); err != nil {
		return err
	}
	return s.SeedEvents()
}

func (s *MainSeeder) SeedAdmin() error {
	return s.admin.SeedSuperAdmin()
}

func (s *MainSeeder) SeedEvents() error {
	return s.events.SeedSampleEvents()
}
