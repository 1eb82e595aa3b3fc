package services

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sivoham-sks/sks_api/model"
	"github.com/sivoham-sks/sks_api/shared"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type PostgresService struct {
	context.DefaultService
	db *gorm.DB

	database string
}

const POSTGRES_SVC = "postgres_svc"

func (ds PostgresService) Id() string {
	return POSTGRES_SVC
}

// Db Access to raw PostgresService db
func (ds PostgresService) Db() *gorm.DB {
	return ds.db
}

func (ds *PostgresService) Configure(ctx *context.Context) error {
	ds.database = os.Getenv("DATABASE_URL")
	if ds.database == "" {
		host := os.Getenv("DB_HOST")
		if host == "" {
			host = "localhost"
		}
		port := os.Getenv("DB_PORT")
		if port == "" {
			port = "5432"
		}
		user := os.Getenv("DB_USER")
		if user == "" {
			user = "postgres"
		}
		password := os.Getenv("DB_PASSWORD")
		if password == "" {
			password = "postgres"
		}
		dbname := os.Getenv("DB_NAME")
		if dbname == "" {
			dbname = "sks_api"
		}
		sslmode := os.Getenv("DB_SSLMODE")
		if sslmode == "" {
			sslmode = "disable"
		}

		ds.database = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
			host, user, password, dbname, port, sslmode)
	}

	return ds.DefaultService.Configure(ctx)
}

// Start opens the connection, retrying while the database comes up, then
// migrates the schema.
func (ds *PostgresService) Start() (err error) {
	maxRetries := 10
	retryDelay := time.Second

	for attempt := 1; attempt <= maxRetries; attempt++ {
		ds.db, err = gorm.Open(postgres.Open(ds.database), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Error),
		})
		if err == nil {
			break
		}

		log.WithError(err).Warnf("Database connection failed (attempt %d/%d)", attempt, maxRetries)
		time.Sleep(retryDelay)
		retryDelay *= 2
	}
	if err != nil {
		return err
	}

	models := []interface{}{
		&model.User{},
		&model.Event{},
		&model.RegistrationIndex{},
	}

	if err = ds.db.AutoMigrate(models...); err != nil {
		log.WithError(err).Error("Failed to migrate database")
		return err
	}

	log.Println("Database connected and migrated successfully")
	return nil
}

func (ds *PostgresService) Shutdown() {
}

// Transaction runs fn inside one database transaction.
func (ds *PostgresService) Transaction(fn func(tx *gorm.DB) error) error {
	return ds.db.Transaction(fn)
}

// ==================== USER ACCESS ====================

func (ds *PostgresService) GetUserByID(userID string) (*model.User, error) {
	var user model.User
	if err := ds.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError(err, "User not found")
		}
		return nil, ds.HandleError(err)
	}
	return &user, nil
}

func (ds *PostgresService) GetUserByMobile(mobile string) (*model.User, error) {
	var user model.User
	if err := ds.db.First(&user, "mobile = ?", mobile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError(err, "User not found for this mobile")
		}
		return nil, ds.HandleError(err)
	}
	return &user, nil
}

// LockUserByID loads the user row under FOR UPDATE within tx. Every
// read-modify-write against the aggregate goes through one of the Lock
// helpers so concurrent mutations of the same document serialize.
func (ds *PostgresService) LockUserByID(tx *gorm.DB, userID string) (*model.User, error) {
	var user model.User
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, "id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError(err, "User not found")
		}
		return nil, ds.HandleError(err)
	}
	return &user, nil
}

func (ds *PostgresService) LockUserByMobile(tx *gorm.DB, mobile string) (*model.User, error) {
	var user model.User
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, "mobile = ?", mobile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError(err, "User not found for this mobile")
		}
		return nil, ds.HandleError(err)
	}
	return &user, nil
}

// LockUserByRegistrationID resolves the owning user through the registration
// index, then locks the user row.
func (ds *PostgresService) LockUserByRegistrationID(tx *gorm.DB, registrationID string) (*model.User, error) {
	var idx model.RegistrationIndex
	err := tx.First(&idx, "registration_id = ?", registrationID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError(err, "Registration not found")
		}
		return nil, ds.HandleError(err)
	}
	return ds.LockUserByID(tx, idx.UserID)
}

// WithUser is the per-document read-modify-write entrypoint: lock, mutate,
// save, all in one transaction. Any error from fn aborts without partial
// field mutation.
func (ds *PostgresService) WithUser(userID string, fn func(user *model.User) error) error {
	return ds.Transaction(func(tx *gorm.DB) error {
		user, err := ds.LockUserByID(tx, userID)
		if err != nil {
			return err
		}
		if err := fn(user); err != nil {
			return err
		}
		return tx.Save(user).Error
	})
}

// UsersWithRegistrations loads every user owning at least one registration;
// filtering over the flattened set happens in memory per the list contract.
func (ds *PostgresService) UsersWithRegistrations() ([]model.User, error) {
	var users []model.User
	err := ds.db.Where("events IS NOT NULL").Find(&users).Error
	if err != nil {
		return nil, ds.HandleError(err)
	}

	out := users[:0]
	for _, u := range users {
		if u.Events != nil && len(u.Events.EventsRegistered) > 0 {
			out = append(out, u)
		}
	}
	return out, nil
}

// ==================== EVENT ACCESS ====================

func (ds *PostgresService) GetEvent(eventID string) (*model.Event, error) {
	var event model.Event
	if err := ds.db.First(&event, "id = ?", eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError(err, "Event not found")
		}
		return nil, ds.HandleError(err)
	}
	return &event, nil
}

func (ds *PostgresService) ListEvents(page, limit int) ([]model.Event, int64, error) {
	var events []model.Event
	query := ds.db.Model(&model.Event{}).Order("date ASC")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, ds.HandleError(err)
	}

	if page > 0 && limit > 0 {
		query = query.Offset((page - 1) * limit).Limit(limit)
	}
	if err := query.Find(&events).Error; err != nil {
		return nil, 0, ds.HandleError(err)
	}
	return events, total, nil
}

func (ds *PostgresService) EventsByIDs(ids []string) (map[string]model.Event, error) {
	var events []model.Event
	if err := ds.db.Find(&events, "id IN ?", ids).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	byID := make(map[string]model.Event, len(events))
	for _, e := range events {
		byID[e.ID] = e
	}
	return byID, nil
}

func (ds *PostgresService) CreateEvent(event *model.Event) error {
	return ds.HandleError(ds.db.Create(event).Error)
}

func (ds *PostgresService) SaveEvent(event *model.Event) error {
	return ds.HandleError(ds.db.Save(event).Error)
}

func (ds *PostgresService) DeleteEvent(eventID string) error {
	res := ds.db.Delete(&model.Event{}, "id = ?", eventID)
	if res.Error != nil {
		return ds.HandleError(res.Error)
	}
	if res.RowsAffected == 0 {
		return shared.NewNotFoundError(gorm.ErrRecordNotFound, "Event not found")
	}
	return nil
}

func (ds *PostgresService) UpcomingBannerEvents(now time.Time, limit int) ([]model.Event, error) {
	var events []model.Event
	err := ds.db.Where("date >= ? AND show_scroll_banner = ?", now, true).
		Order("date ASC").Limit(limit).Find(&events).Error
	if err != nil {
		return nil, ds.HandleError(err)
	}
	return events, nil
}

// ==================== REGISTRATION INDEX ====================

// InsertRegistrationIndex reserves a registration id. A duplicate-key failure
// signals a collision; callers regenerate and retry. The insert runs in a
// nested transaction (a savepoint when tx is already open) so a unique
// violation does not abort the caller's transaction and the retry can proceed.
func (ds *PostgresService) InsertRegistrationIndex(tx *gorm.DB, idx *model.RegistrationIndex) error {
	return tx.Transaction(func(stx *gorm.DB) error {
		return stx.Create(idx).Error
	})
}

// IsDuplicateKeyError recognizes uniqueness violations from the driver.
func (ds *PostgresService) IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "duplicate key value violates unique constraint")
}

func (ds *PostgresService) HandleError(err error) error {
	if err == nil {
		return nil
	}

	var statusCode int
	var errorType string

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		statusCode = http.StatusNotFound
		errorType = "NOT_FOUND"
	case ds.IsDuplicateKeyError(err):
		statusCode = http.StatusConflict
		errorType = "CONFLICT"
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		statusCode = http.StatusBadRequest
		errorType = "FOREIGN_KEY_VIOLATION"
	case errors.Is(err, gorm.ErrInvalidTransaction):
		statusCode = http.StatusInternalServerError
		errorType = "TRANSACTION_ERROR"
	default:
		statusCode = http.StatusInternalServerError
		errorType = "INTERNAL_ERROR"
	}

	logEntry := log.WithFields(log.Fields{
		"status_code": statusCode,
		"error_type":  errorType,
		"error":       err.Error(),
	})

	if statusCode >= 500 {
		logEntry.Error("Database error occurred")
	} else {
		logEntry.Warn("Database operation failed")
	}

	return fmt.Errorf("%s: %w", errorType, err)
}
