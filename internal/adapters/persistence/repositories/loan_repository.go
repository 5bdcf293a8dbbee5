package repositories

import (
	"context"

	"nja-ledger/internal/adapters/persistence/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LoanFilter narrows loan queries
type LoanFilter struct {
	MemberID *uint
	Status   string
}

// LoanRepository handles loan data access
type LoanRepository struct {
	db *gorm.DB
}

// NewLoanRepository creates a new loan repository
func NewLoanRepository(db *gorm.DB) *LoanRepository {
	return &LoanRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *LoanRepository) WithTx(tx *gorm.DB) *LoanRepository {
	return &LoanRepository{db: tx}
}

// Create creates a new loan request
func (r *LoanRepository) Create(ctx context.Context, loan *models.Loan) error {
	return r.db.WithContext(ctx).Create(loan).Error
}

// GetByID gets a loan by ID
func (r *LoanRepository) GetByID(ctx context.Context, id uint) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).Preload("Member").First(&loan, id).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// Update updates a loan
func (r *LoanRepository) Update(ctx context.Context, loan *models.Loan) error {
	return r.db.WithContext(ctx).Save(loan).Error
}

// List lists loans with pagination, newest requested first
func (r *LoanRepository) List(ctx context.Context, filter LoanFilter, offset, limit int) ([]*models.Loan, int64, error) {
	var loans []*models.Loan
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Loan{})
	if filter.MemberID != nil {
		query = query.Where("member_id = ?", *filter.MemberID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Member").
		Order("requested_date DESC, created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&loans).Error

	return loans, total, err
}

// LoanRepaymentRepository handles repayment data access. Repayments
// are appended, never edited.
type LoanRepaymentRepository struct {
	db *gorm.DB
}

// NewLoanRepaymentRepository creates a new repayment repository
func NewLoanRepaymentRepository(db *gorm.DB) *LoanRepaymentRepository {
	return &LoanRepaymentRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *LoanRepaymentRepository) WithTx(tx *gorm.DB) *LoanRepaymentRepository {
	return &LoanRepaymentRepository{db: tx}
}

// Create appends a new repayment
func (r *LoanRepaymentRepository) Create(ctx context.Context, repayment *models.LoanRepayment) error {
	return r.db.WithContext(ctx).Create(repayment).Error
}

// ListByLoan lists repayments for a loan, newest payment first
func (r *LoanRepaymentRepository) ListByLoan(ctx context.Context, loanID uint) ([]*models.LoanRepayment, error) {
	var repayments []*models.LoanRepayment
	err := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("payment_date DESC, created_at DESC").
		Find(&repayments).Error
	return repayments, err
}

// SumCompletedByLoan sums completed repayment amounts for a loan
func (r *LoanRepaymentRepository) SumCompletedByLoan(ctx context.Context, loanID uint) (decimal.Decimal, error) {
	row := r.db.WithContext(ctx).
		Model(&models.LoanRepayment{}).
		Where("loan_id = ? AND status = ?", loanID, models.RepaymentStatusCompleted).
		Select("COALESCE(SUM(amount), 0)").
		Row()

	var total decimal.Decimal
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}
