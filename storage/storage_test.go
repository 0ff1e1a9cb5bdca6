package storage

import (
	"time"

	"github.com/CreativeUnicorns/recruitprefs"
)

var baseTime = time.Date(2025, 8, 1, 9, 30, 0, 0, time.UTC)

func newTestApplication(id, primary, secondary string, submittedAt time.Time) *recruitprefs.Application {
	return &recruitprefs.Application{
		ID:                  id,
		FirstName:           "Asha",
		LastName:            "Verma",
		Email:               "asha.verma@example.com",
		Phone:               "9876543210",
		RegNumber:           "23BCE1234",
		Year:                "2nd",
		Skills:              "Go, SQL and a bit of Figma",
		Motivation:          "I want to help run the technical events this year.",
		PrimaryDepartment:   primary,
		SecondaryDepartment: secondary,
		Source:              "web",
		SubmittedAt:         submittedAt,
	}
}
