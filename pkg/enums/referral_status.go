package enums

import "fmt"

// ReferralStatus tracks the lifecycle of a referral relationship.
type ReferralStatus string

const (
	ReferralStatusPending ReferralStatus = "pending"
	ReferralStatusActive  ReferralStatus = "active"
	ReferralStatusClosed  ReferralStatus = "closed"
)

var validReferralStatuses = []ReferralStatus{
	ReferralStatusPending,
	ReferralStatusActive,
	ReferralStatusClosed,
}

// IsValid reports whether the value is known.
func (s ReferralStatus) IsValid() bool {
	for _, candidate := range validReferralStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseReferralStatus converts raw input into a ReferralStatus.
func ParseReferralStatus(value string) (ReferralStatus, error) {
	for _, candidate := range validReferralStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid referral status %q", value)
}
