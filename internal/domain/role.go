package domain

import "slices"

// Status represents an employee's role within a company
type Status string

const (
	// StatusAdmin manages companies, tariffs, and platform settings
	StatusAdmin Status = "admin"

	// StatusDirector manages one company: employees, equipment, tariff info
	StatusDirector Status = "director"

	// StatusMetrolog reviews and signs verification records
	StatusMetrolog Status = "metrolog"

	// StatusVerifier performs field verifications and fills in records
	StatusVerifier Status = "verifier"
)

// ValidStatuses contains all valid employee statuses
var ValidStatuses = []Status{StatusAdmin, StatusDirector, StatusMetrolog, StatusVerifier}

// IsValidStatus checks if a given status is valid
func IsValidStatus(status string) bool {
	return slices.Contains(ValidStatuses, Status(status))
}

// StatusAtLeast reports whether status grants the permissions of required.
// Statuses are strictly ordered: verifier < metrolog < director < admin.
func StatusAtLeast(status string, required Status) bool {
	return statusRank(Status(status)) >= statusRank(required)
}

func statusRank(s Status) int {
	switch s {
	case StatusAdmin:
		return 3
	case StatusDirector:
		return 2
	case StatusMetrolog:
		return 1
	case StatusVerifier:
		return 0
	}
	return -1
}
