package seeders

import (
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sivoham-sks/sks_api/model"
	"github.com/sivoham-sks/sks_api/shared"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AdminSeeder creates the superadmin account.
type AdminSeeder struct {
	db *gorm.DB
}

func NewAdminSeeder(db *gorm.DB) *AdminSeeder {
	return &AdminSeeder{db: db}
}

// SeedSuperAdmin creates a superadmin with the full capability set. Skipped
// when one already exists.
func (s *AdminSeeder) SeedSuperAdmin() error {
	var existing model.User
	if err := s.db.Where("role = ?", model.RoleSuperAdmin).First(&existing).Error; err == nil {
		log.Println("Superadmin already exists, skipping")
		return nil
	}

	mobile := os.Getenv("SEED_ADMIN_MOBILE")
	if mobile == "" {
		mobile = "9999999999"
	}
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return err
	}

	now := time.Now()
	admin := model.User{
		ID:           id.String(),
		Mobile:       mobile,
		FirstName:    "Super",
		LastName:     "Admin",
		Role:         model.RoleSuperAdmin,
		PasswordHash: string(hashed),
		Capabilities: []string{
			shared.CapEventsManagement,
			shared.CapEventRegistrations,
			shared.CapEventUsers,
			shared.CapBarcodeScanner,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.db.Create(&admin).Error; err != nil {
		log.Printf("Error creating superadmin: %v", err)
		return err
	}

	log.Printf("Created superadmin: %s", admin.Mobile)
	return nil
}
