package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/aldomartell/tipply-backend/pkg/db/models"
	"github.com/aldomartell/tipply-backend/pkg/enums"
	"github.com/aldomartell/tipply-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository manages persistence for ledger entries, referrer balances and
// the milestone rows written alongside them.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateEntry(ctx context.Context, entry *models.LedgerEntry) error
	GetEntry(ctx context.Context, id uuid.UUID) (*models.LedgerEntry, error)
	FindEarnedByMilestone(ctx context.Context, milestoneID uuid.UUID) (*models.LedgerEntry, error)
	FindReversalOf(ctx context.Context, earnedEntryID uuid.UUID) (*models.LedgerEntry, error)
	ListByReferrer(ctx context.Context, referrerID uuid.UUID, params pagination.Params) ([]models.LedgerEntry, *pagination.Cursor, error)

	GetBalance(ctx context.Context, referrerID uuid.UUID) (*models.ReferrerBalance, error)
	SaveBalance(ctx context.Context, balance *models.ReferrerBalance) error

	CreateMilestone(ctx context.Context, milestone *models.ReferralMilestone) error
	TransitionMilestone(ctx context.Context, milestoneID uuid.UUID, from, to enums.MilestoneStatus, reason string, at time.Time) (int64, error)
	StampRelationshipMilestone(ctx context.Context, referralID uuid.UUID, at time.Time) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateEntry(ctx context.Context, entry *models.LedgerEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) GetEntry(ctx context.Context, id uuid.UUID) (*models.LedgerEntry, error) {
	var entry models.LedgerEntry
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repository) FindEarnedByMilestone(ctx context.Context, milestoneID uuid.UUID) (*models.LedgerEntry, error) {
	var entry models.LedgerEntry
	err := r.db.WithContext(ctx).
		Where("milestone_id = ? AND entry_type = ?", milestoneID, enums.LedgerEntryTypeEarned).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *repository) FindReversalOf(ctx context.Context, earnedEntryID uuid.UUID) (*models.LedgerEntry, error) {
	var entry models.LedgerEntry
	err := r.db.WithContext(ctx).
		Where("reverses_entry_id = ?", earnedEntryID).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *repository) ListByReferrer(ctx context.Context, referrerID uuid.UUID, params pagination.Params) ([]models.LedgerEntry, *pagination.Cursor, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).
		Where("referrer_id = ?", referrerID).
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, nil, err
	}
	if cursor != nil {
		query = query.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var entries []models.LedgerEntry
	if err := query.Find(&entries).Error; err != nil {
		return nil, nil, err
	}

	var next *pagination.Cursor
	if len(entries) > limit {
		entries = entries[:limit]
		last := entries[len(entries)-1]
		next = &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	return entries, next, nil
}

func (r *repository) GetBalance(ctx context.Context, referrerID uuid.UUID) (*models.ReferrerBalance, error) {
	var balance models.ReferrerBalance
	err := r.db.WithContext(ctx).
		Where("referrer_id = ?", referrerID).
		First(&balance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.ReferrerBalance{ReferrerID: referrerID}, nil
		}
		return nil, err
	}
	return &balance, nil
}

func (r *repository) SaveBalance(ctx context.Context, balance *models.ReferrerBalance) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "referrer_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"balance_cents", "updated_at"}),
		}).
		Create(balance).Error
}

func (r *repository) CreateMilestone(ctx context.Context, milestone *models.ReferralMilestone) error {
	return r.db.WithContext(ctx).Create(milestone).Error
}

func (r *repository) TransitionMilestone(ctx context.Context, milestoneID uuid.UUID, from, to enums.MilestoneStatus, reason string, at time.Time) (int64, error) {
	updates := map[string]any{
		"status":     to,
		"updated_at": at,
	}
	if to == enums.MilestoneStatusReversed {
		updates["reversed_at"] = at
		updates["reversal_reason"] = reason
	}
	result := r.db.WithContext(ctx).
		Model(&models.ReferralMilestone{}).
		Where("id = ? AND status = ?", milestoneID, from).
		Updates(updates)
	return result.RowsAffected, result.Error
}

func (r *repository) StampRelationshipMilestone(ctx context.Context, referralID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.ReferralRelationship{}).
		Where("id = ? AND milestone_reached_at IS NULL", referralID).
		Updates(map[string]any{"milestone_reached_at": at, "updated_at": at}).Error
}
