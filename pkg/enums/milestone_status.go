package enums

import "fmt"

// MilestoneStatus moves forward only: rewarded milestones may be reversed
// exactly once and never return to rewarded.
type MilestoneStatus string

const (
	MilestoneStatusRewarded MilestoneStatus = "rewarded"
	MilestoneStatusReversed MilestoneStatus = "reversed"
)

var validMilestoneStatuses = []MilestoneStatus{
	MilestoneStatusRewarded,
	MilestoneStatusReversed,
}

// IsValid reports whether the value is known.
func (s MilestoneStatus) IsValid() bool {
	for _, candidate := range validMilestoneStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseMilestoneStatus converts raw input into a MilestoneStatus.
func ParseMilestoneStatus(value string) (MilestoneStatus, error) {
	for _, candidate := range validMilestoneStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid milestone status %q", value)
}
