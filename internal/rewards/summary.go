package rewards

import "github.com/google/uuid"

// Record is one reward issued or reversed during an evaluation run.
type Record struct {
	ReferralID        uuid.UUID `json:"referral_id"`
	MilestoneID       uuid.UUID `json:"milestone_id"`
	ReferrerID        uuid.UUID `json:"referrer_id"`
	EarnerID          uuid.UUID `json:"earner_id"`
	AmountCents       int64     `json:"amount_cents"`
	BalanceAfterCents int64     `json:"balance_after_cents"`
	Reason            string    `json:"reason,omitempty"`
}

// Summary reports one evaluation run. Errors collects per-candidate failures
// that did not abort the run.
type Summary struct {
	Candidates       int      `json:"candidates"`
	Processed        int      `json:"processed"`
	TotalAmountCents int64    `json:"total_amount_cents"`
	Records          []Record `json:"records"`
	Errors           []string `json:"errors,omitempty"`
}

// Add appends a record and keeps the counters in sync.
func (s *Summary) Add(record Record) {
	s.Processed++
	s.TotalAmountCents += record.AmountCents
	s.Records = append(s.Records, record)
}

// AddError records a non-fatal per-candidate failure.
func (s *Summary) AddError(err error) {
	if err == nil {
		return
	}
	s.Errors = append(s.Errors, err.Error())
}
