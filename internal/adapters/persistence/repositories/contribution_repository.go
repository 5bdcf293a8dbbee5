package repositories

import (
	"context"
	"time"

	"nja-ledger/internal/adapters/persistence/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ContributionFilter narrows contribution queries
type ContributionFilter struct {
	MemberID *uint
	Category string
	DateFrom *time.Time
	DateTo   *time.Time
}

// ContributionRepository handles contribution data access. The ledger
// is append-only: there is deliberately no Update or Delete method.
type ContributionRepository struct {
	db *gorm.DB
}

// NewContributionRepository creates a new contribution repository
func NewContributionRepository(db *gorm.DB) *ContributionRepository {
	return &ContributionRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *ContributionRepository) WithTx(tx *gorm.DB) *ContributionRepository {
	return &ContributionRepository{db: tx}
}

// Create appends a new contribution
func (r *ContributionRepository) Create(ctx context.Context, contribution *models.Contribution) error {
	return r.db.WithContext(ctx).Create(contribution).Error
}

// GetByID gets a contribution by ID
func (r *ContributionRepository) GetByID(ctx context.Context, id uint) (*models.Contribution, error) {
	var contribution models.Contribution
	err := r.db.WithContext(ctx).Preload("Member").First(&contribution, id).Error
	if err != nil {
		return nil, err
	}
	return &contribution, nil
}

// List lists contributions with pagination, newest date first
func (r *ContributionRepository) List(ctx context.Context, filter ContributionFilter, offset, limit int) ([]*models.Contribution, int64, error) {
	var contributions []*models.Contribution
	var total int64

	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.Contribution{}), filter)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Member").
		Order("date DESC, created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&contributions).Error

	return contributions, total, err
}

// SumByMember sums all contribution amounts for a member
func (r *ContributionRepository) SumByMember(ctx context.Context, memberID uint) (decimal.Decimal, error) {
	row := r.db.WithContext(ctx).
		Model(&models.Contribution{}).
		Where("member_id = ?", memberID).
		Select("COALESCE(SUM(amount), 0)").
		Row()

	var total decimal.Decimal
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// SumByFilter sums contribution amounts matching the filter
func (r *ContributionRepository) SumByFilter(ctx context.Context, filter ContributionFilter) (decimal.Decimal, error) {
	row := r.applyFilter(r.db.WithContext(ctx).Model(&models.Contribution{}), filter).
		Select("COALESCE(SUM(amount), 0)").
		Row()

	var total decimal.Decimal
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// ListByYear lists all contributions dated within a calendar year.
// The half-open date range keeps the query portable across drivers.
func (r *ContributionRepository) ListByYear(ctx context.Context, year int) ([]*models.Contribution, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)

	var contributions []*models.Contribution
	err := r.db.WithContext(ctx).
		Where("date >= ? AND date < ?", start, end).
		Find(&contributions).Error
	return contributions, err
}

func (r *ContributionRepository) applyFilter(query *gorm.DB, filter ContributionFilter) *gorm.DB {
	if filter.MemberID != nil {
		query = query.Where("member_id = ?", *filter.MemberID)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.DateFrom != nil {
		query = query.Where("date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("date <= ?", *filter.DateTo)
	}
	return query
}
