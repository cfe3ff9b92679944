package ledger

import (
	"context"
	"fmt"

	"github.com/aldomartell/tipply-backend/pkg/db/models"
	pkgerrors "github.com/aldomartell/tipply-backend/pkg/errors"
	"github.com/aldomartell/tipply-backend/pkg/pagination"
	"github.com/google/uuid"
)

// Statement is one page of a referrer's ledger plus their current balance.
type Statement struct {
	ReferrerID   uuid.UUID            `json:"referrer_id"`
	BalanceCents int64                `json:"balance_cents"`
	Entries      []models.LedgerEntry `json:"entries"`
	NextCursor   string               `json:"next_cursor,omitempty"`
}

// History serves read-only ledger statements for the admin API.
type History struct {
	repo Repository
}

// NewHistory builds a ledger history reader.
func NewHistory(repo Repository) (*History, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &History{repo: repo}, nil
}

// Statement returns the referrer's balance and a page of entries, newest
// first.
func (h *History) Statement(ctx context.Context, referrerID uuid.UUID, params pagination.Params) (*Statement, error) {
	if referrerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "referrer id is required")
	}

	balance, err := h.repo.GetBalance(ctx, referrerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeProcessor, err, "load referrer balance")
	}

	entries, next, err := h.repo.ListByReferrer(ctx, referrerID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeProcessor, err, "list ledger entries")
	}

	statement := &Statement{
		ReferrerID:   referrerID,
		BalanceCents: balance.BalanceCents,
		Entries:      entries,
	}
	if next != nil {
		statement.NextCursor = pagination.EncodeCursor(*next)
	}
	return statement, nil
}
