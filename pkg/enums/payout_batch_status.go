package enums

import "fmt"

// PayoutBatchStatus follows the generating -> generated | failed machine.
type PayoutBatchStatus string

const (
	PayoutBatchStatusGenerating PayoutBatchStatus = "generating"
	PayoutBatchStatusGenerated  PayoutBatchStatus = "generated"
	PayoutBatchStatusFailed     PayoutBatchStatus = "failed"
)

var validPayoutBatchStatuses = []PayoutBatchStatus{
	PayoutBatchStatusGenerating,
	PayoutBatchStatusGenerated,
	PayoutBatchStatusFailed,
}

// String implements fmt.Stringer.
func (s PayoutBatchStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is known.
func (s PayoutBatchStatus) IsValid() bool {
	for _, candidate := range validPayoutBatchStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParsePayoutBatchStatus converts raw input into a PayoutBatchStatus.
func ParsePayoutBatchStatus(value string) (PayoutBatchStatus, error) {
	for _, candidate := range validPayoutBatchStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payout batch status %q", value)
}
