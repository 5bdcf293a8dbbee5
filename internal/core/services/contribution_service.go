package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nja-ledger/internal/adapters/persistence/models"
	"nja-ledger/internal/adapters/persistence/repositories"
	"nja-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ContributionService handles the contribution ledger
type ContributionService struct {
	db          *gorm.DB
	contribRepo *repositories.ContributionRepository
	memberRepo  *repositories.MemberRepository
	logRepo     *repositories.TransactionLogRepository
}

// NewContributionService creates a new contribution service
func NewContributionService(
	db *gorm.DB,
	contribRepo *repositories.ContributionRepository,
	memberRepo *repositories.MemberRepository,
	logRepo *repositories.TransactionLogRepository,
) *ContributionService {
	return &ContributionService{
		db:          db,
		contribRepo: contribRepo,
		memberRepo:  memberRepo,
		logRepo:     logRepo,
	}
}

// RecordContributionInput represents record contribution input
type RecordContributionInput struct {
	MemberID    uint
	Amount      decimal.Decimal
	Date        time.Time
	Category    string
	Description string
}

func validCategory(category string) bool {
	for _, c := range models.ContributionCategories {
		if c == category {
			return true
		}
	}
	return false
}

// Record appends a contribution and its audit entry. Contributions
// take effect immediately: there is no approval step, so only an
// administrator actor may record them.
func (s *ContributionService) Record(ctx context.Context, input *RecordContributionInput, actor domain.Actor) (*models.Contribution, error) {
	if !actor.Admin {
		return nil, fmt.Errorf("%w: only administrators can record contributions", domain.ErrPermissionDenied)
	}
	if input.Amount.LessThan(minAmount) {
		return nil, fmt.Errorf("%w: amount must be at least %s", domain.ErrValidation, minAmount)
	}
	category := input.Category
	if category == "" {
		category = models.CategoryRegular
	}
	if !validCategory(category) {
		return nil, fmt.Errorf("%w: unknown category %q", domain.ErrValidation, category)
	}

	member, err := s.memberRepo.GetByID(ctx, input.MemberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: member %d", domain.ErrNotFound, input.MemberID)
		}
		return nil, err
	}

	contribution := &models.Contribution{
		MemberID:    member.ID,
		Amount:      input.Amount,
		Date:        input.Date,
		Category:    category,
		Description: input.Description,
		CreatedByID: &actor.ID,
	}

	description := input.Description
	if description == "" {
		description = "No description"
	}

	// The contribution and its audit entry land together or not at all.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.contribRepo.WithTx(tx).Create(ctx, contribution); err != nil {
			return err
		}
		entry := &models.TransactionLog{
			Reference:      uuid.NewString(),
			Type:           models.TxTypeContribution,
			MemberID:       &member.ID,
			Amount:         contribution.Amount,
			Description:    "Contribution: " + description,
			CreatedByID:    &actor.ID,
			ContributionID: &contribution.ID,
		}
		return s.logRepo.WithTx(tx).Create(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	contribution.Member = member
	return contribution, nil
}

// GetByID gets a contribution by ID
func (s *ContributionService) GetByID(ctx context.Context, id uint) (*models.Contribution, error) {
	contribution, err := s.contribRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: contribution %d", domain.ErrNotFound, id)
		}
		return nil, err
	}
	return contribution, nil
}

// List lists contributions matching the filter
func (s *ContributionService) List(ctx context.Context, filter repositories.ContributionFilter, offset, limit int) ([]*models.Contribution, int64, error) {
	return s.contribRepo.List(ctx, filter, offset, limit)
}

// CategoryTotal is a per-category sum of contributions
type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

// CategoryTotals sums contributions per category for the filter. Every
// category appears in the result, zero-filled when idle.
func (s *ContributionService) CategoryTotals(ctx context.Context, filter repositories.ContributionFilter) ([]CategoryTotal, error) {
	totals := make([]CategoryTotal, 0, len(models.ContributionCategories))
	for _, category := range models.ContributionCategories {
		f := filter
		f.Category = category
		total, err := s.contribRepo.SumByFilter(ctx, f)
		if err != nil {
			return nil, err
		}
		totals = append(totals, CategoryTotal{Category: category, Total: total})
	}
	return totals, nil
}
