package services

import (
	"sort"
	"strings"
	"time"

	"github.com/sivoham-sks/sks_api/dto"
	"github.com/sivoham-sks/sks_api/model"
	"github.com/sivoham-sks/sks_api/shared"

	"github.com/alphabatem/common/context"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// RegistrationService owns the registration lifecycle: creation with minted
// ids, approval transitions, attendance check-in, and the flattened admin
// ledger views.
type RegistrationService struct {
	context.DefaultService

	postgres   *PostgresService
	monitoring *MonitoringService
}

const REGISTRATION_SVC = "registration_svc"

// mintRetries bounds the registration-id collision loop. Six random digits
// per calendar day make collisions rare; hitting the bound is a hard failure.
const mintRetries = 5

const defaultListLimit = 5

func (svc RegistrationService) Id() string {
	return REGISTRATION_SVC
}

func (svc *RegistrationService) Start() error {
	svc.postgres = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.monitoring = svc.Service(MONITORING_SVC).(*MonitoringService)
	return nil
}

// Register creates a registration for the applicant's mobile. The applicant
// snapshot is frozen into the ledger entry; the initial status follows the
// event's capacity mode. The user row is created on first contact.
func (svc *RegistrationService) Register(req *dto.RegisterEventRequest) (*dto.RegisterEventResponse, error) {
	if err := dto.GetValidator().Struct(req); err != nil {
		return nil, shared.NewValidationError(err, "Invalid registration payload")
	}

	event, err := svc.postgres.GetEvent(req.EventID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if event.DeadlinePassed(now) {
		return nil, shared.NewDeadlineExpiredError()
	}

	var resp *dto.RegisterEventResponse
	err = svc.postgres.Transaction(func(tx *gorm.DB) error {
		user, err := svc.lockOrCreateUser(tx, req, now)
		if err != nil {
			return err
		}

		events := user.EnsureEvents()
		for i := range events.EventsRegistered {
			if events.EventsRegistered[i].EventID == event.ID {
				return shared.NewConflictError(nil, "Already registered for this event")
			}
		}

		registrationID, err := svc.mintRegistrationID(tx, user.ID, event.ID, now)
		if err != nil {
			return err
		}

		reg := model.Registration{
			EventID:        event.ID,
			RegistrationID: registrationID,
			RegisteredID:   registrationID,
			EventName:      event.Name,
			EventDate:      event.Date,
			DateRegistered: now,
			Status:         event.InitialStatus(),
			FullName:       req.FullName,
			Mobile:         req.Mobile,
			Gender:         req.Gender,
			Age:            req.Age,
			Profession:     req.Profession,
			Address:        req.Address,
			SksLevel:       req.SksLevel,
			SksMiracle:     req.SksMiracle,
			OtherDetails:   req.OtherDetails,
			ForWhom:        req.ForWhom,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		events.EventsRegistered = append(events.EventsRegistered, reg)

		if err := tx.Save(user).Error; err != nil {
			return svc.postgres.HandleError(err)
		}

		resp = &dto.RegisterEventResponse{
			Success:        true,
			RegistrationID: registrationID,
			Status:         reg.Status,
			Registration:   &reg,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	svc.monitoring.RecordRegistration(resp.Status)
	log.WithFields(log.Fields{
		"registration_id": resp.RegistrationID,
		"event_id":        event.ID,
		"status":          resp.Status,
	}).Info("Event registration created")

	return resp, nil
}

// lockOrCreateUser locks the applicant's row by mobile, creating a minimal
// profile on first contact so registrations never dangle without an owner.
func (svc *RegistrationService) lockOrCreateUser(tx *gorm.DB, req *dto.RegisterEventRequest, now time.Time) (*model.User, error) {
	user, err := svc.postgres.LockUserByMobile(tx, req.Mobile)
	if err == nil {
		return user, nil
	}
	if appErr, ok := shared.GetAppError(err); !ok || appErr.StatusCode != 404 {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to generate user id")
	}

	first, last := splitName(req.FullName)
	user = &model.User{
		ID:         id.String(),
		Mobile:     req.Mobile,
		FirstName:  first,
		LastName:   last,
		Gender:     req.Gender,
		Profession: req.Profession,
		Address:    req.Address,
		Role:       model.RoleUser,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := tx.Create(user).Error; err != nil {
		return nil, svc.postgres.HandleError(err)
	}
	return user, nil
}

// mintRegistrationID reserves a fresh id against the registration index,
// regenerating on collision up to the retry bound.
func (svc *RegistrationService) mintRegistrationID(tx *gorm.DB, userID, eventID string, now time.Time) (string, error) {
	id, err := mintWithRetries(now, userID, eventID, func(idx *model.RegistrationIndex) error {
		return svc.postgres.InsertRegistrationIndex(tx, idx)
	}, svc.postgres.IsDuplicateKeyError)
	if err != nil {
		if _, ok := shared.GetAppError(err); ok {
			return "", err
		}
		return "", svc.postgres.HandleError(err)
	}
	return id, nil
}

// mintWithRetries drives the collision loop: mint, try to reserve, regenerate
// on a uniqueness violation. Any other insert failure aborts immediately.
func mintWithRetries(now time.Time, userID, eventID string, insert func(*model.RegistrationIndex) error, isDup func(error) bool) (string, error) {
	for attempt := 0; attempt < mintRetries; attempt++ {
		id := model.NewRegistrationID(now)
		err := insert(&model.RegistrationIndex{
			RegistrationID: id,
			UserID:         userID,
			EventID:        eventID,
			CreatedAt:      now,
		})
		if err == nil {
			return id, nil
		}
		if !isDup(err) {
			return "", err
		}
		log.WithField("registration_id", id).Warn("Registration id collision, regenerating")
	}
	return "", shared.NewInternalError(nil, "Could not allocate a registration id")
}

// Approve transitions a registration to approved. Idempotent.
func (svc *RegistrationService) Approve(registrationID string) (*dto.TransitionResponse, error) {
	return svc.transition(registrationID, func(reg *model.Registration, now time.Time) bool {
		return reg.Approve(now)
	})
}

// Reject transitions a registration to rejected. Idempotent.
func (svc *RegistrationService) Reject(registrationID string) (*dto.TransitionResponse, error) {
	return svc.transition(registrationID, func(reg *model.Registration, now time.Time) bool {
		return reg.Reject(now)
	})
}

func (svc *RegistrationService) transition(registrationID string, apply func(*model.Registration, time.Time) bool) (*dto.TransitionResponse, error) {
	now := time.Now()
	err := svc.postgres.Transaction(func(tx *gorm.DB) error {
		user, err := svc.postgres.LockUserByRegistrationID(tx, registrationID)
		if err != nil {
			return err
		}

		reg := user.EnsureEvents().FindRegistration(registrationID)
		if reg == nil {
			return shared.NewNotFoundError(nil, "Registration not found")
		}

		if !apply(reg, now) {
			return nil
		}
		return tx.Save(user).Error
	})
	if err != nil {
		return nil, err
	}
	return &dto.TransitionResponse{Success: true}, nil
}

// BulkTransition applies a status transition to each id in its own
// transaction and counts every registration it found, whether or not the
// status actually moved. A missing id is skipped, not an error.
func (svc *RegistrationService) BulkTransition(registrationIDs []string, status string) (*dto.BulkRegistrationResponse, error) {
	if status != shared.StatusApproved && status != shared.StatusRejected {
		return nil, shared.NewBadRequestError(nil, "Unsupported bulk status")
	}

	now := time.Now()
	modified, err := bulkTransition(registrationIDs, func(id string) error {
		return svc.postgres.Transaction(func(tx *gorm.DB) error {
			user, err := svc.postgres.LockUserByRegistrationID(tx, id)
			if err != nil {
				return err
			}
			reg := user.EnsureEvents().FindRegistration(id)
			if reg == nil {
				return shared.NewNotFoundError(nil, "Registration not found")
			}

			if status == shared.StatusApproved {
				reg.Approve(now)
			} else {
				reg.Reject(now)
			}
			return tx.Save(user).Error
		})
	})
	if err != nil {
		return nil, err
	}

	return &dto.BulkRegistrationResponse{
		Message:       "Bulk update complete",
		ModifiedCount: modified,
	}, nil
}

// bulkTransition runs step once per id and counts every id that went
// through, re-applied transitions included. Unknown ids are skipped; any
// other failure aborts the batch.
func bulkTransition(registrationIDs []string, step func(id string) error) (int, error) {
	modified := 0
	for _, id := range registrationIDs {
		if err := step(id); err != nil {
			if appErr, ok := shared.GetAppError(err); ok && appErr.StatusCode == 404 {
				continue
			}
			return 0, err
		}
		modified++
	}
	return modified, nil
}

// MarkAttendance checks a registration in. Only approved registrations pass;
// repeat scans fail with already-attended while the attendance ledger stays
// deduplicated, so the scanner endpoint is safe to retry.
func (svc *RegistrationService) MarkAttendance(registrationID string) (*dto.AttendanceResponse, error) {
	now := time.Now()
	err := svc.postgres.Transaction(func(tx *gorm.DB) error {
		user, err := svc.postgres.LockUserByRegistrationID(tx, registrationID)
		if err != nil {
			return err
		}

		events := user.EnsureEvents()
		reg := events.FindRegistration(registrationID)
		if reg == nil {
			return shared.NewNotFoundError(nil, "Registration not found")
		}

		if err := reg.MarkAttended(now); err != nil {
			return err
		}
		events.AddAttendance(model.AttendanceRecord{
			EventID:      reg.EventID,
			RegisteredID: reg.RegistrationID,
			EventName:    reg.EventName,
			EventDate:    reg.EventDate,
			DateAttended: now,
		})
		return tx.Save(user).Error
	})
	if err != nil {
		return nil, err
	}

	svc.monitoring.RecordAttendance()
	log.WithField("registration_id", registrationID).Info("Attendance marked")

	return &dto.AttendanceResponse{
		Success:    true,
		Message:    "Attendance recorded",
		AttendedAt: now,
	}, nil
}

// ToggleWhatsapp flips the notified flag on one registration.
func (svc *RegistrationService) ToggleWhatsapp(registrationID string) (*dto.ToggleWhatsappResponse, error) {
	var sent bool
	err := svc.postgres.Transaction(func(tx *gorm.DB) error {
		user, err := svc.postgres.LockUserByRegistrationID(tx, registrationID)
		if err != nil {
			return err
		}
		reg := user.EnsureEvents().FindRegistration(registrationID)
		if reg == nil {
			return shared.NewNotFoundError(nil, "Registration not found")
		}
		reg.WhatsappSent = !reg.WhatsappSent
		reg.UpdatedAt = time.Now()
		sent = reg.WhatsappSent
		return tx.Save(user).Error
	})
	if err != nil {
		return nil, err
	}
	return &dto.ToggleWhatsappResponse{Success: true, WhatsappSent: sent}, nil
}

// List flattens every user's ledger into one registration table, applies the
// in-memory filters, and pages the result. limitedOnly restricts the view to
// approval-gated events, which is what the approvals screen shows.
func (svc *RegistrationService) List(filters *dto.RegistrationFilters, limitedOnly bool, page, limit int) (*dto.ListRegistrationsResponse, error) {
	views, err := svc.flatten(limitedOnly)
	if err != nil {
		return nil, err
	}
	views = applyFilters(views, filters)

	sort.SliceStable(views, func(i, j int) bool {
		return views[i].DateRegistered.After(views[j].DateRegistered)
	})

	total := len(views)
	if limit <= 0 {
		limit = defaultListLimit
	}
	if page <= 0 {
		page = 1
	}
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return &dto.ListRegistrationsResponse{
		Registrations: views[start:end],
		Total:         total,
	}, nil
}

// ByMobile returns one user's registrations, newest first.
func (svc *RegistrationService) ByMobile(mobile string) ([]dto.RegistrationView, error) {
	user, err := svc.postgres.GetUserByMobile(mobile)
	if err != nil {
		return nil, err
	}
	if user.Events == nil {
		return []dto.RegistrationView{}, nil
	}

	eventTypes, err := svc.eventTypes(user.Events.EventsRegistered)
	if err != nil {
		return nil, err
	}

	views := make([]dto.RegistrationView, 0, len(user.Events.EventsRegistered))
	for i := range user.Events.EventsRegistered {
		views = append(views, buildView(&user.Events.EventsRegistered[i], user, eventTypes))
	}
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].DateRegistered.After(views[j].DateRegistered)
	})
	return views, nil
}

func (svc *RegistrationService) flatten(limitedOnly bool) ([]dto.RegistrationView, error) {
	users, err := svc.postgres.UsersWithRegistrations()
	if err != nil {
		return nil, err
	}

	var regs []model.Registration
	for i := range users {
		regs = append(regs, users[i].Events.EventsRegistered...)
	}
	eventTypes, err := svc.eventTypes(regs)
	if err != nil {
		return nil, err
	}

	var views []dto.RegistrationView
	for i := range users {
		user := &users[i]
		for j := range user.Events.EventsRegistered {
			reg := &user.Events.EventsRegistered[j]
			if limitedOnly && eventTypes[reg.EventID] != shared.EventTypeLimited {
				continue
			}
			views = append(views, buildView(reg, user, eventTypes))
		}
	}
	return views, nil
}

func (svc *RegistrationService) eventTypes(regs []model.Registration) (map[string]string, error) {
	seen := map[string]bool{}
	var ids []string
	for _, r := range regs {
		if !seen[r.EventID] {
			seen[r.EventID] = true
			ids = append(ids, r.EventID)
		}
	}
	if len(ids) == 0 {
		return map[string]string{}, nil
	}

	events, err := svc.postgres.EventsByIDs(ids)
	if err != nil {
		return nil, err
	}
	types := make(map[string]string, len(events))
	for id, e := range events {
		types[id] = e.EventType
	}
	return types, nil
}

// buildView flattens one ledger entry, substituting "-" for blank snapshot
// fields so admin tables never render empty cells.
func buildView(reg *model.Registration, owner *model.User, eventTypes map[string]string) dto.RegistrationView {
	return dto.RegistrationView{
		EventID:        reg.EventID,
		EventType:      eventTypes[reg.EventID],
		EventName:      dash(reg.EventName),
		EventDate:      reg.EventDate,
		DateRegistered: reg.DateRegistered,
		RegistrationID: reg.RegistrationID,
		RegisteredID:   reg.RegisteredID,
		Status:         reg.Status,
		FullName:       dash(reg.FullName),
		Mobile:         dash(reg.Mobile),
		Gender:         dash(reg.Gender),
		Age:            dash(reg.Age),
		Profession:     dash(reg.Profession),
		Address:        dash(reg.Address),
		SksLevel:       dash(reg.SksLevel),
		SksMiracle:     dash(reg.SksMiracle),
		OtherDetails:   dash(reg.OtherDetails),
		ForWhom:        dash(reg.ForWhom),
		Attended:       reg.Attended,
		AttendedAt:     reg.AttendedAt,
		WhatsappSent:   reg.WhatsappSent,
		User: &dto.RegistrationOwner{
			ID:       owner.ID,
			FullName: owner.FullName(),
			Mobile:   owner.Mobile,
		},
	}
}

func applyFilters(views []dto.RegistrationView, f *dto.RegistrationFilters) []dto.RegistrationView {
	if f == nil {
		return views
	}

	attendedAfter := parseRFC3339(f.AttendedAfter)
	attendedBefore := parseRFC3339(f.AttendedBefore)

	out := views[:0]
	for _, v := range views {
		if f.Event != "" && v.EventID != f.Event {
			continue
		}
		if f.Name != "" && !containsFold(v.FullName, f.Name) {
			continue
		}
		if f.Mobile != "" && !strings.Contains(v.Mobile, f.Mobile) {
			continue
		}
		if f.Status != "" && v.Status != f.Status {
			continue
		}
		if f.Attended == "yes" && !v.Attended {
			continue
		}
		if f.Attended == "no" && v.Attended {
			continue
		}
		if f.WhatsappSent == "yes" && !v.WhatsappSent {
			continue
		}
		if f.WhatsappSent == "no" && v.WhatsappSent {
			continue
		}
		if attendedAfter != nil && (v.AttendedAt == nil || v.AttendedAt.Before(*attendedAfter)) {
			continue
		}
		if attendedBefore != nil && (v.AttendedAt == nil || v.AttendedAt.After(*attendedBefore)) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// parseRFC3339 is lenient: a blank or malformed bound means no filtering.
func parseRFC3339(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func splitName(fullName string) (first, last string) {
	parts := strings.Fields(fullName)
	if len(parts) == 0 {
		return fullName, ""
	}
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
