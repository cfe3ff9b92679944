package enums

import "fmt"

// PayoutItemType distinguishes earner payout rows from replacement-fee
// deduction rows inside a batch.
type PayoutItemType string

const (
	PayoutItemTypeEarner       PayoutItemType = "EARNER"
	PayoutItemTypeFeeDeduction PayoutItemType = "FEE_DEDUCTION"
)

var validPayoutItemTypes = []PayoutItemType{
	PayoutItemTypeEarner,
	PayoutItemTypeFeeDeduction,
}

// IsValid reports whether the value is known.
func (t PayoutItemType) IsValid() bool {
	for _, candidate := range validPayoutItemTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParsePayoutItemType converts raw input into a PayoutItemType.
func ParsePayoutItemType(value string) (PayoutItemType, error) {
	for _, candidate := range validPayoutItemTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payout item type %q", value)
}

// PayoutItemStatus tracks whether a batch item has been paid out.
type PayoutItemStatus string

const (
	PayoutItemStatusPending PayoutItemStatus = "pending"
	PayoutItemStatusPaid    PayoutItemStatus = "paid"
)

var validPayoutItemStatuses = []PayoutItemStatus{
	PayoutItemStatusPending,
	PayoutItemStatusPaid,
}

// IsValid reports whether the value is known.
func (s PayoutItemStatus) IsValid() bool {
	for _, candidate := range validPayoutItemStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParsePayoutItemStatus converts raw input into a PayoutItemStatus.
func ParsePayoutItemStatus(value string) (PayoutItemStatus, error) {
	for _, candidate := range validPayoutItemStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payout item status %q", value)
}
