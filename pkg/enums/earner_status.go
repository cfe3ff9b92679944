package enums

import "fmt"

// EarnerStatus maps to the earner_status enum in Postgres.
type EarnerStatus string

const (
	EarnerStatusActive    EarnerStatus = "active"
	EarnerStatusSuspended EarnerStatus = "suspended"
	EarnerStatusChurned   EarnerStatus = "churned"
)

var validEarnerStatuses = []EarnerStatus{
	EarnerStatusActive,
	EarnerStatusSuspended,
	EarnerStatusChurned,
}

// String implements fmt.Stringer.
func (s EarnerStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is known.
func (s EarnerStatus) IsValid() bool {
	for _, candidate := range validEarnerStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseEarnerStatus converts raw input into an EarnerStatus.
func ParseEarnerStatus(value string) (EarnerStatus, error) {
	for _, candidate := range validEarnerStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid earner status %q", value)
}
