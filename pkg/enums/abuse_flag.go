package enums

import "fmt"

// AbuseFlagSeverity grades how serious a flag against an earner is.
type AbuseFlagSeverity string

const (
	AbuseFlagSeverityLow      AbuseFlagSeverity = "low"
	AbuseFlagSeverityMedium   AbuseFlagSeverity = "medium"
	AbuseFlagSeverityHigh     AbuseFlagSeverity = "high"
	AbuseFlagSeverityCritical AbuseFlagSeverity = "critical"
)

var validAbuseFlagSeverities = []AbuseFlagSeverity{
	AbuseFlagSeverityLow,
	AbuseFlagSeverityMedium,
	AbuseFlagSeverityHigh,
	AbuseFlagSeverityCritical,
}

// IsValid reports whether the value is known.
func (s AbuseFlagSeverity) IsValid() bool {
	for _, candidate := range validAbuseFlagSeverities {
		if candidate == s {
			return true
		}
	}
	return false
}

// Blocking reports whether the severity is high enough to reverse rewards.
func (s AbuseFlagSeverity) Blocking() bool {
	return s == AbuseFlagSeverityHigh || s == AbuseFlagSeverityCritical
}

// ParseAbuseFlagSeverity converts raw input into an AbuseFlagSeverity.
func ParseAbuseFlagSeverity(value string) (AbuseFlagSeverity, error) {
	for _, candidate := range validAbuseFlagSeverities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid abuse flag severity %q", value)
}

// AbuseFlagStatus tracks the handling state of a flag.
type AbuseFlagStatus string

const (
	AbuseFlagStatusActive    AbuseFlagStatus = "active"
	AbuseFlagStatusPending   AbuseFlagStatus = "pending"
	AbuseFlagStatusResolved  AbuseFlagStatus = "resolved"
	AbuseFlagStatusDismissed AbuseFlagStatus = "dismissed"
)

var validAbuseFlagStatuses = []AbuseFlagStatus{
	AbuseFlagStatusActive,
	AbuseFlagStatusPending,
	AbuseFlagStatusResolved,
	AbuseFlagStatusDismissed,
}

// IsValid reports whether the value is known.
func (s AbuseFlagStatus) IsValid() bool {
	for _, candidate := range validAbuseFlagStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// Open reports whether the flag still counts against the earner.
func (s AbuseFlagStatus) Open() bool {
	return s == AbuseFlagStatusActive || s == AbuseFlagStatusPending
}

// ParseAbuseFlagStatus converts raw input into an AbuseFlagStatus.
func ParseAbuseFlagStatus(value string) (AbuseFlagStatus, error) {
	for _, candidate := range validAbuseFlagStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid abuse flag status %q", value)
}
