// model/user.go
package model

import (
	"time"
)

const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"
)

// User is the aggregate record: profile fields plus the course and event
// documents. Progress reporting and event registration touch disjoint
// subdocuments of the same row.
type User struct {
	ID             string      `json:"id" gorm:"primaryKey"`
	Mobile         string      `json:"mobile" gorm:"uniqueIndex;not null"`
	FirstName      string      `json:"first_name" gorm:"not null"`
	LastName       string      `json:"last_name" gorm:"not null"`
	Comment        string      `json:"comment"`
	IsSelected     bool        `json:"is_selected" gorm:"default:false"`
	Role           string      `json:"role" gorm:"default:user"`
	PasswordHash   string      `json:"-"`
	Capabilities   []string    `json:"capabilities" gorm:"serializer:json"`
	Place          string      `json:"place"`
	Gender         string      `json:"gender"`
	Age            int         `json:"age"`
	PreferredLang  string      `json:"preferred_lang"` // Telugu, English
	RefSource      string      `json:"ref_source"`
	ReferrerInfo   string      `json:"referrer_info"`
	Country        string      `json:"country"`
	Profession     string      `json:"profession"`
	Address        string      `json:"address"`
	Email          string      `json:"email"`
	LevelCompleted string      `json:"level_completed"`
	WhatsappSent   bool        `json:"whatsapp_sent" gorm:"default:false"`
	Courses        *Courses    `json:"courses" gorm:"serializer:json;type:text"`
	Events         *UserEvents `json:"events" gorm:"serializer:json;type:text"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

func (u *User) IsSuperAdmin() bool {
	return u.Role == RoleSuperAdmin
}

// HasCapability is the single permission predicate the interface layer calls
// before state-changing event operations. Superadmins hold every capability.
func (u *User) HasCapability(capability string) bool {
	if u.IsSuperAdmin() {
		return true
	}
	for _, c := range u.Capabilities {
		if c == capability {
			return true
		}
	}
	return false
}

// EnsureCourses lazily creates the course document.
func (u *User) EnsureCourses() *Courses {
	if u.Courses == nil {
		u.Courses = &Courses{}
	}
	return u.Courses
}

// EnsureEvents lazily creates the event ledger.
func (u *User) EnsureEvents() *UserEvents {
	if u.Events == nil {
		u.Events = &UserEvents{
			EventsRegistered: []Registration{},
			EventsAttended:   []AttendanceRecord{},
		}
	}
	return u.Events
}
