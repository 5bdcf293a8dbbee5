package repositories

import (
	"context"
	"time"

	"nja-ledger/internal/adapters/persistence/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WithdrawalFilter narrows withdrawal queries
type WithdrawalFilter struct {
	MemberID *uint
	Status   string
	DateFrom *time.Time
	DateTo   *time.Time
}

// WithdrawalRepository handles withdrawal data access
type WithdrawalRepository struct {
	db *gorm.DB
}

// NewWithdrawalRepository creates a new withdrawal repository
func NewWithdrawalRepository(db *gorm.DB) *WithdrawalRepository {
	return &WithdrawalRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *WithdrawalRepository) WithTx(tx *gorm.DB) *WithdrawalRepository {
	return &WithdrawalRepository{db: tx}
}

// Create creates a new withdrawal request
func (r *WithdrawalRepository) Create(ctx context.Context, withdrawal *models.Withdrawal) error {
	return r.db.WithContext(ctx).Create(withdrawal).Error
}

// GetByID gets a withdrawal by ID
func (r *WithdrawalRepository) GetByID(ctx context.Context, id uint) (*models.Withdrawal, error) {
	var withdrawal models.Withdrawal
	err := r.db.WithContext(ctx).Preload("Member").First(&withdrawal, id).Error
	if err != nil {
		return nil, err
	}
	return &withdrawal, nil
}

// Update updates a withdrawal
func (r *WithdrawalRepository) Update(ctx context.Context, withdrawal *models.Withdrawal) error {
	return r.db.WithContext(ctx).Save(withdrawal).Error
}

// List lists withdrawals with pagination, newest date first
func (r *WithdrawalRepository) List(ctx context.Context, filter WithdrawalFilter, offset, limit int) ([]*models.Withdrawal, int64, error) {
	var withdrawals []*models.Withdrawal
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Withdrawal{})
	if filter.MemberID != nil {
		query = query.Where("member_id = ?", *filter.MemberID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.DateFrom != nil {
		query = query.Where("date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("date <= ?", *filter.DateTo)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Member").
		Order("date DESC, created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&withdrawals).Error

	return withdrawals, total, err
}

// SumApprovedByMember sums approved withdrawal amounts for a member.
// Only approved withdrawals move funds; pending and rejected ones do
// not affect the balance.
func (r *WithdrawalRepository) SumApprovedByMember(ctx context.Context, memberID uint) (decimal.Decimal, error) {
	row := r.db.WithContext(ctx).
		Model(&models.Withdrawal{}).
		Where("member_id = ? AND status = ?", memberID, models.WithdrawalStatusApproved).
		Select("COALESCE(SUM(amount), 0)").
		Row()

	var total decimal.Decimal
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// ListApprovedByYear lists approved withdrawals dated within a year
func (r *WithdrawalRepository) ListApprovedByYear(ctx context.Context, year int) ([]*models.Withdrawal, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)

	var withdrawals []*models.Withdrawal
	err := r.db.WithContext(ctx).
		Where("status = ? AND date >= ? AND date < ?", models.WithdrawalStatusApproved, start, end).
		Find(&withdrawals).Error
	return withdrawals, err
}
