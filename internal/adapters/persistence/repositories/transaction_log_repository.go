package repositories

import (
	"context"
	"time"

	"nja-ledger/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// TransactionLogFilter narrows audit trail queries
type TransactionLogFilter struct {
	MemberID *uint
	Type     string
	DateFrom *time.Time
	DateTo   *time.Time
}

// TransactionLogRepository handles the audit trail. It exposes Create
// and List only: log entries are never updated or deleted, whatever
// happens to the entity they originated from.
type TransactionLogRepository struct {
	db *gorm.DB
}

// NewTransactionLogRepository creates a new transaction log repository
func NewTransactionLogRepository(db *gorm.DB) *TransactionLogRepository {
	return &TransactionLogRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *TransactionLogRepository) WithTx(tx *gorm.DB) *TransactionLogRepository {
	return &TransactionLogRepository{db: tx}
}

// Create appends a new log entry
func (r *TransactionLogRepository) Create(ctx context.Context, entry *models.TransactionLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// List lists log entries with pagination, newest first
func (r *TransactionLogRepository) List(ctx context.Context, filter TransactionLogFilter, offset, limit int) ([]*models.TransactionLog, int64, error) {
	var entries []*models.TransactionLog
	var total int64

	query := r.db.WithContext(ctx).Model(&models.TransactionLog{})
	if filter.MemberID != nil {
		query = query.Where("member_id = ?", *filter.MemberID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.DateFrom != nil {
		query = query.Where("created_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("created_at <= ?", *filter.DateTo)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Member").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&entries).Error

	return entries, total, err
}
