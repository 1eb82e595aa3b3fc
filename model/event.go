// model/event.go
package model

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/sivoham-sks/sks_api/shared"
)

// Event is a scheduled activity users register for. Limited events gate
// registrations behind admin approval; unlimited events auto-approve.
type Event struct {
	ID                   string     `json:"id" gorm:"primaryKey"`
	Name                 string     `json:"name" gorm:"not null"`
	Date                 time.Time  `json:"date" gorm:"not null"`
	StartTime            string     `json:"start_time"`
	EndTime              string     `json:"end_time"`
	Description          string     `json:"description" gorm:"type:text"`
	Venue                string     `json:"venue"`
	Location             string     `json:"location"`
	ImageURL             string     `json:"image_url"`
	EventType            string     `json:"event_type" gorm:"default:unlimited"` // limited, unlimited
	MessageTemplate      string     `json:"message_template" gorm:"type:text"`
	RegistrationDeadline *time.Time `json:"registration_deadline"`
	ShowScrollBanner     bool       `json:"show_scroll_banner" gorm:"default:false"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// DeadlinePassed reports whether registrations are closed at the given time.
// Events without a deadline never close.
func (e *Event) DeadlinePassed(now time.Time) bool {
	return e.RegistrationDeadline != nil && now.After(*e.RegistrationDeadline)
}

// InitialStatus is the status a fresh registration starts in, decided by the
// event's capacity mode.
func (e *Event) InitialStatus() string {
	if e.EventType == shared.EventTypeUnlimited {
		return shared.StatusApproved
	}
	return shared.StatusPending
}

// Registration is one user's application to attend an event. Applicant fields
// are snapshotted at registration time; later profile edits do not touch them.
type Registration struct {
	EventID        string     `json:"eventId"`
	RegistrationID string     `json:"registrationId"`
	RegisteredID   string     `json:"registeredId"` // legacy alias, always equal to RegistrationID
	EventName      string     `json:"eventName"`
	EventDate      time.Time  `json:"eventDate"`
	DateRegistered time.Time  `json:"dateRegistered"`
	Status         string     `json:"status"`
	FullName       string     `json:"fullName"`
	Mobile         string     `json:"mobile"`
	Gender         string     `json:"gender"`
	Age            string     `json:"age"`
	Profession     string     `json:"profession,omitempty"`
	Address        string     `json:"address"`
	SksLevel       string     `json:"sksLevel"`
	SksMiracle     string     `json:"sksMiracle"`
	OtherDetails   string     `json:"otherDetails,omitempty"`
	ForWhom        string     `json:"forWhom"`
	Selected       bool       `json:"selected"`
	Attended       bool       `json:"attended"`
	AttendedAt     *time.Time `json:"attendedAt,omitempty"`
	WhatsappSent   bool       `json:"whatsappSent"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// Approve moves the registration to approved. Idempotent; reports whether the
// status actually changed.
func (r *Registration) Approve(now time.Time) bool {
	if r.Status == shared.StatusApproved {
		return false
	}
	r.Status = shared.StatusApproved
	r.UpdatedAt = now
	return true
}

// Reject moves the registration to rejected. Idempotent.
func (r *Registration) Reject(now time.Time) bool {
	if r.Status == shared.StatusRejected {
		return false
	}
	r.Status = shared.StatusRejected
	r.UpdatedAt = now
	return true
}

// MarkAttended flips the attendance flag exactly once. Only approved
// registrations can be attended, and attendance is permanent once set.
func (r *Registration) MarkAttended(now time.Time) error {
	if r.Status != shared.StatusApproved {
		return shared.NewNotApprovedError()
	}
	if r.Attended {
		return shared.NewAlreadyAttendedError()
	}
	r.Attended = true
	r.AttendedAt = &now
	r.UpdatedAt = now
	return nil
}

// AttendanceRecord is proof of check-in; at most one per event per user.
type AttendanceRecord struct {
	EventID      string    `json:"eventId"`
	RegisteredID string    `json:"registeredId"`
	EventName    string    `json:"eventName"`
	EventDate    time.Time `json:"eventDate"`
	DateAttended time.Time `json:"dateAttended"`
}

// UserEvents is the per-user event ledger, persisted as a single JSON
// document on the user row.
type UserEvents struct {
	EventsRegistered []Registration     `json:"eventsRegistered"`
	EventsAttended   []AttendanceRecord `json:"eventsAttended"`
}

// FindRegistration looks a registration up by its id within this ledger.
func (ev *UserEvents) FindRegistration(registrationID string) *Registration {
	for i := range ev.EventsRegistered {
		if ev.EventsRegistered[i].RegistrationID == registrationID {
			return &ev.EventsRegistered[i]
		}
	}
	return nil
}

// HasAttended reports whether an attendance record already exists for the event.
func (ev *UserEvents) HasAttended(eventID string) bool {
	for _, a := range ev.EventsAttended {
		if a.EventID == eventID {
			return true
		}
	}
	return false
}

// AddAttendance appends the record unless one already exists for the same
// event; the ledger behaves as a set keyed by eventId.
func (ev *UserEvents) AddAttendance(rec AttendanceRecord) bool {
	if ev.HasAttended(rec.EventID) {
		return false
	}
	ev.EventsAttended = append(ev.EventsAttended, rec)
	return true
}

// RegistrationIndex is the storage-boundary uniqueness constraint for
// registration ids: one row per registration, unique on the id, pointing back
// at the owning user document. Insert failures drive the mint-retry loop.
type RegistrationIndex struct {
	RegistrationID string    `json:"registration_id" gorm:"primaryKey"`
	UserID         string    `json:"user_id" gorm:"index;not null"`
	EventID        string    `json:"event_id" gorm:"index;not null"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewRegistrationID mints a date-salted human-readable id of the form
// SKS-<DD><MM><YY>-<6 digits>. Uniqueness is probabilistic; callers must
// detect collisions at the storage boundary and retry.
func NewRegistrationID(now time.Time) string {
	unique := 100000 + rand.IntN(900000)
	return fmt.Sprintf("SKS-%02d%02d%02d-%d", now.Day(), int(now.Month()), now.Year()%100, unique)
}
