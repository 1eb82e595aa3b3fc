package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/sivoham-sks/sks_api/dto"
	"github.com/sivoham-sks/sks_api/shared"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
)

// ExportService renders the filtered registration ledger to CSV and uploads
// it to object storage.
type ExportService struct {
	context.DefaultService

	registrations *RegistrationService
	storage       *MinIOService
}

const EXPORT_SVC = "export_svc"

const exportURLExpiry = 24 * time.Hour

func (svc ExportService) Id() string {
	return EXPORT_SVC
}

func (svc *ExportService) Start() error {
	svc.registrations = svc.Service(REGISTRATION_SVC).(*RegistrationService)
	svc.storage = svc.Service(MINIO_SVC).(*MinIOService)
	return nil
}

// ExportRegistrations writes every registration matching the filters to a
// timestamped CSV object and returns a presigned download link.
func (svc *ExportService) ExportRegistrations(filters *dto.RegistrationFilters) (*dto.ExportResponse, error) {
	views, err := svc.registrations.flatten(false)
	if err != nil {
		return nil, err
	}
	views = applyFilters(views, filters)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"registrationId", "eventName", "eventDate", "dateRegistered", "status",
		"fullName", "mobile", "gender", "age", "profession", "address",
		"sksLevel", "sksMiracle", "forWhom", "otherDetails",
		"attended", "attendedAt", "whatsappSent",
	}
	if err := w.Write(header); err != nil {
		return nil, shared.NewInternalError(err, "Failed to render export")
	}

	for _, v := range views {
		attendedAt := ""
		if v.AttendedAt != nil {
			attendedAt = v.AttendedAt.Format(time.RFC3339)
		}
		row := []string{
			v.RegistrationID, v.EventName, v.EventDate.Format(time.RFC3339),
			v.DateRegistered.Format(time.RFC3339), v.Status,
			v.FullName, v.Mobile, v.Gender, v.Age, v.Profession, v.Address,
			v.SksLevel, v.SksMiracle, v.ForWhom, v.OtherDetails,
			strconv.FormatBool(v.Attended), attendedAt, strconv.FormatBool(v.WhatsappSent),
		}
		if err := w.Write(row); err != nil {
			return nil, shared.NewInternalError(err, "Failed to render export")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, shared.NewInternalError(err, "Failed to render export")
	}

	objectName := fmt.Sprintf("registrations/%s.csv", time.Now().Format("20060102-150405"))
	if _, err := svc.storage.UploadFile(objectName, &buf, int64(buf.Len()), "text/csv"); err != nil {
		return nil, shared.NewInternalError(err, "Failed to upload export")
	}

	url, err := svc.storage.GetFileURL(objectName, exportURLExpiry)
	if err != nil {
		log.WithError(err).Warn("Export uploaded but presigned URL failed")
		url = ""
	}

	log.WithFields(log.Fields{
		"object": objectName,
		"count":  len(views),
	}).Info("Registration export uploaded")

	return &dto.ExportResponse{
		Bucket: svc.storage.GetBucketName(),
		Object: objectName,
		Count:  len(views),
		URL:    url,
	}, nil
}
