package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRegisterRequest() RegisterEventRequest {
	return RegisterEventRequest{
		EventID:    "evt-1",
		FullName:   "Test User",
		Mobile:     "9876543210",
		Gender:     "female",
		Age:        "34",
		Address:    "12 Main Road",
		SksLevel:   "2",
		SksMiracle: "yes",
		ForWhom:    "self",
	}
}

func TestRegisterEventRequestValidation(t *testing.T) {
	v := GetValidator()

	req := validRegisterRequest()
	require.NoError(t, v.Struct(req))

	tests := []struct {
		name   string
		mutate func(*RegisterEventRequest)
	}{
		{"missing event", func(r *RegisterEventRequest) { r.EventID = "" }},
		{"missing name", func(r *RegisterEventRequest) { r.FullName = "" }},
		{"missing mobile", func(r *RegisterEventRequest) { r.Mobile = "" }},
		{"missing gender", func(r *RegisterEventRequest) { r.Gender = "" }},
		{"missing age", func(r *RegisterEventRequest) { r.Age = "" }},
		{"missing address", func(r *RegisterEventRequest) { r.Address = "" }},
		{"missing sks level", func(r *RegisterEventRequest) { r.SksLevel = "" }},
		{"missing sks miracle", func(r *RegisterEventRequest) { r.SksMiracle = "" }},
		{"missing for whom", func(r *RegisterEventRequest) { r.ForWhom = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRegisterRequest()
			tt.mutate(&req)
			assert.Error(t, v.Struct(req))
		})
	}

	// Optional fields stay optional.
	req = validRegisterRequest()
	req.Profession = ""
	req.OtherDetails = ""
	assert.NoError(t, v.Struct(req))
}

func TestReportProgressRequestValidation(t *testing.T) {
	v := GetValidator()

	req := ReportProgressRequest{Level: 1, Day: 1, WatchedSeconds: 1800, VideoDuration: 3600}
	require.NoError(t, v.Struct(req))

	req.Level = 6
	assert.Error(t, v.Struct(req))

	req.Level = 0
	assert.Error(t, v.Struct(req))

	req = ReportProgressRequest{Level: 3, Day: 0}
	assert.Error(t, v.Struct(req))

	req = ReportProgressRequest{Level: 3, Day: 2, WatchedSeconds: -1}
	assert.Error(t, v.Struct(req))
}

func TestCreateEventRequestValidation(t *testing.T) {
	v := GetValidator()

	req := CreateEventRequest{
		Name:        "Retreat",
		Date:        time.Now().AddDate(0, 1, 0),
		Description: "Limited retreat",
		Venue:       "Hall",
		Location:    "Hyderabad",
		EventType:   "limited",
	}
	require.NoError(t, v.Struct(req))

	req.EventType = "invite-only"
	assert.Error(t, v.Struct(req))

	req.EventType = ""
	assert.NoError(t, v.Struct(req))
}
