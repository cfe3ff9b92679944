package payouts

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/aldomartell/tipply-backend/pkg/config"
	"github.com/aldomartell/tipply-backend/pkg/db"
	"github.com/aldomartell/tipply-backend/pkg/db/models"
	"github.com/aldomartell/tipply-backend/pkg/enums"
	pkgerrors "github.com/aldomartell/tipply-backend/pkg/errors"
	"github.com/aldomartell/tipply-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// GenerateParams controls one batch generation run. Nil period bounds resolve
// to the most recently completed reporting week.
type GenerateParams struct {
	PeriodStart *time.Time
	PeriodEnd   *time.Time
	Force       bool
}

// BatchResult carries the generated batch, its items, and the deterministic
// export rows handed to the money-transfer side.
type BatchResult struct {
	Batch      models.PayoutBatch       `json:"batch"`
	Items      []models.PayoutBatchItem `json:"items"`
	ExportRows [][]string               `json:"export_rows"`
}

// Service generates weekly payout batches and serves batch lookups.
type Service interface {
	Generate(ctx context.Context, params GenerateParams) (*BatchResult, error)
	GetBatch(ctx context.Context, batchID uuid.UUID) (*BatchResult, error)
}

// ServiceParams groups dependencies for the payout batch generator.
type ServiceParams struct {
	Repo    Repository
	Tx      txRunner
	Payouts config.PayoutsConfig
	Logger  *logger.Logger
	Now     func() time.Time
}

type service struct {
	repo Repository
	tx   txRunner
	cfg  config.PayoutsConfig
	logg *logger.Logger
	now  func() time.Time
}

// NewService builds the payout batch generator.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("payout repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo: params.Repo,
		tx:   params.Tx,
		cfg:  params.Payouts,
		logg: params.Logger,
		now:  now,
	}, nil
}

func (s *service) Generate(ctx context.Context, params GenerateParams) (*BatchResult, error) {
	period, err := ResolvePeriod(s.now(), params.PeriodStart, params.PeriodEnd)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindActiveBatchByPeriod(ctx, period.Start, period.End)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeProcessor, err, "check existing batch")
	}
	if existing != nil {
		if !params.Force {
			return nil, pkgerrors.New(pkgerrors.CodeConflict,
				fmt.Sprintf("batch %s already covers this period", existing.BatchNumber))
		}
		if err := s.supersede(ctx, existing); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeProcessor, err, "supersede existing batch")
		}
		if s.logg != nil {
			lctx := s.logg.WithBatchID(ctx, existing.ID.String())
			s.logg.Info(s.logg.WithField(lctx, "batch_number", existing.BatchNumber),
				"existing batch superseded by forced run")
		}
	}

	batch := &models.PayoutBatch{
		ID:          uuid.New(),
		BatchNumber: batchNumber(period.Start),
		PeriodStart: period.Start,
		PeriodEnd:   period.End,
		Status:      enums.PayoutBatchStatusGenerating,
	}
	if err := s.repo.CreateBatch(ctx, batch); err != nil {
		// the partial unique index catches the race the existence check missed
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "batch already exists for this period")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeProcessor, err, "create batch")
	}

	result, err := s.populate(ctx, batch)
	if err != nil {
		s.failBatch(ctx, batch.ID, err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeProcessor, err, "generate batch")
	}

	if s.logg != nil {
		lctx := s.logg.WithBatchID(ctx, batch.ID.String())
		lctx = s.logg.WithFields(lctx, map[string]any{
			"batch_number": batch.BatchNumber,
			"earner_count": batch.EarnerCount,
			"total_net":    batch.TotalNetCents,
		})
		s.logg.Info(lctx, "payout batch generated")
	}
	return result, nil
}

// populate fills the generating batch: eligibility, fee claiming, item
// insertion and totals, with the writes in a single transaction.
func (s *service) populate(ctx context.Context, batch *models.PayoutBatch) (*BatchResult, error) {
	earners, err := s.repo.EligibleEarners(ctx, s.cfg.MinimumEligibilityCents)
	if err != nil {
		return nil, fmt.Errorf("load eligible earners: %w", err)
	}

	earnerIDs := make([]uuid.UUID, 0, len(earners))
	for _, earner := range earners {
		earnerIDs = append(earnerIDs, earner.ID)
	}

	feeItems, err := s.repo.PendingFeeItems(ctx, earnerIDs)
	if err != nil {
		return nil, fmt.Errorf("load pending fee items: %w", err)
	}
	feeTotals := make(map[uuid.UUID]int64, len(feeItems))
	for _, item := range feeItems {
		feeTotals[item.EarnerID] += item.AmountCents
	}

	var (
		earnerItems []*models.PayoutBatchItem
		includedIDs []uuid.UUID
	)
	for _, earner := range earners {
		balance := earner.UnpaidBalanceCents()
		deductions := feeTotals[earner.ID]
		net := balance - s.cfg.TransferFeeCents - deductions
		if net <= 0 {
			// fees ate the balance; both the balance and the unclaimed fee
			// items roll forward to the next period untouched
			continue
		}
		earnerItems = append(earnerItems, &models.PayoutBatchItem{
			ID:          uuid.New(),
			BatchID:     &batch.ID,
			EarnerID:    earner.ID,
			ItemType:    enums.PayoutItemTypeEarner,
			AmountCents: balance,
			FeeCents:    s.cfg.TransferFeeCents,
			NetCents:    net,
			Status:      enums.PayoutItemStatusPending,
		})
		includedIDs = append(includedIDs, earner.ID)
	}

	batch.EarnerCount = len(earnerItems)
	for _, item := range earnerItems {
		batch.TotalAmountCents += item.AmountCents
		batch.TotalFeesCents += item.FeeCents + feeTotals[item.EarnerID]
		batch.TotalNetCents += item.NetCents
	}
	batch.Status = enums.PayoutBatchStatusGenerated

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.ClaimFeeItems(ctx, batch.ID, includedIDs); err != nil {
			return fmt.Errorf("claim fee items: %w", err)
		}
		if err := repo.CreateItems(ctx, earnerItems); err != nil {
			return fmt.Errorf("create earner items: %w", err)
		}
		if err := repo.UpdateBatch(ctx, batch); err != nil {
			return fmt.Errorf("finalize batch: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	items, err := s.repo.ListItemsByBatch(ctx, batch.ID)
	if err != nil {
		return nil, fmt.Errorf("reload batch items: %w", err)
	}
	return &BatchResult{
		Batch:      *batch,
		Items:      items,
		ExportRows: BuildExportRows(items),
	}, nil
}

// supersede retires the batch a forced run replaces: its pending fee
// deductions become claimable again and the row is failed as an audit
// record, which also frees the period under the unique index.
func (s *service) supersede(ctx context.Context, existing *models.PayoutBatch) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.ReleaseFeeItems(ctx, existing.ID); err != nil {
			return fmt.Errorf("release fee items: %w", err)
		}
		if err := repo.MarkBatchFailed(ctx, existing.ID, "superseded by forced regeneration"); err != nil {
			return fmt.Errorf("retire batch: %w", err)
		}
		return nil
	})
}

func (s *service) failBatch(ctx context.Context, batchID uuid.UUID, cause error) {
	// the batch row survives as a failed audit record; the transaction
	// rollback already guarantees no item was claimed or inserted
	if err := s.repo.MarkBatchFailed(ctx, batchID, cause.Error()); err != nil && s.logg != nil {
		s.logg.Error(s.logg.WithBatchID(ctx, batchID.String()), "mark batch failed", err)
	}
}

func (s *service) GetBatch(ctx context.Context, batchID uuid.UUID) (*BatchResult, error) {
	batch, err := s.repo.GetBatch(ctx, batchID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeProcessor, err, "load batch")
	}
	if batch == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payout batch not found")
	}
	items, err := s.repo.ListItemsByBatch(ctx, batchID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeProcessor, err, "load batch items")
	}
	return &BatchResult{
		Batch:      *batch,
		Items:      items,
		ExportRows: BuildExportRows(items),
	}, nil
}

func batchNumber(periodStart time.Time) string {
	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		// rand.Read never fails in practice; fall back to a uuid fragment
		return fmt.Sprintf("PB-%s-%s", periodStart.Format("20060102"),
			strings.ToUpper(uuid.NewString()[:8]))
	}
	return fmt.Sprintf("PB-%s-%s", periodStart.Format("20060102"),
		strings.ToUpper(hex.EncodeToString(suffix)))
}
