package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ============================================================
// Members
// ============================================================

// Member represents the members table. Members are created inactive
// and activated by an administrator; they are never hard-deleted, only
// deactivated, because ledger entries keep referencing them.
type Member struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:200;not null" json:"name"`
	Phone        string    `gorm:"size:17" json:"phone"`
	Email        string    `gorm:"uniqueIndex;size:100;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         string    `gorm:"size:20;not null;default:'member';index" json:"role"`
	IsActive     bool      `gorm:"default:false" json:"is_active"`
	Address      string    `gorm:"type:text" json:"address"`
	Notes        string    `gorm:"type:text" json:"notes"`
	DateJoined   time.Time `gorm:"autoCreateTime" json:"date_joined"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Member) TableName() string {
	return "members"
}

// MemberResponse DTO
type MemberResponse struct {
	ID         uint      `json:"id"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone,omitempty"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	IsActive   bool      `json:"is_active"`
	DateJoined time.Time `json:"date_joined"`
}

func (m *Member) ToResponse() *MemberResponse {
	return &MemberResponse{
		ID:         m.ID,
		Name:       m.Name,
		Phone:      m.Phone,
		Email:      m.Email,
		Role:       m.Role,
		IsActive:   m.IsActive,
		DateJoined: m.DateJoined,
	}
}

// ============================================================
// Contribution ledger
// ============================================================

// Contribution categories
const (
	CategoryRegular     = "regular"
	CategorySocial      = "social"
	CategoryLatenessFee = "lateness_fee"
)

// ContributionCategories lists all categories in display order
var ContributionCategories = []string{
	CategoryRegular,
	CategorySocial,
	CategoryLatenessFee,
}

// Contribution represents the contributions table. Rows are append-only
// facts: the repository exposes no update or delete path.
type Contribution struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	MemberID    uint            `gorm:"not null;index" json:"member_id"`
	Amount      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Date        time.Time       `gorm:"type:date;not null;index" json:"date"`
	Category    string          `gorm:"size:20;not null;default:'regular'" json:"category"`
	Description string          `gorm:"type:text" json:"description"`
	CreatedByID *uint           `json:"created_by_id"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`

	Member *Member `gorm:"foreignKey:MemberID" json:"member,omitempty"`
}

func (Contribution) TableName() string {
	return "contributions"
}

// ============================================================
// Withdrawal workflow
// ============================================================

// Withdrawal statuses. pending is the initial state; approved and
// rejected are terminal.
const (
	WithdrawalStatusPending  = "pending"
	WithdrawalStatusApproved = "approved"
	WithdrawalStatusRejected = "rejected"
)

// Withdrawal represents the withdrawals table
type Withdrawal struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	MemberID     uint            `gorm:"not null;index:idx_withdrawals_member_status" json:"member_id"`
	Amount       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Date         time.Time       `gorm:"type:date;not null;index" json:"date"`
	Reason       string          `gorm:"type:text;not null" json:"reason"`
	Status       string          `gorm:"size:20;not null;default:'pending';index:idx_withdrawals_member_status" json:"status"`
	ApprovedByID *uint           `json:"approved_by_id"`
	ApprovedAt   *time.Time      `json:"approved_at"`
	CreatedByID  *uint           `json:"created_by_id"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	Member *Member `gorm:"foreignKey:MemberID" json:"member,omitempty"`
}

func (Withdrawal) TableName() string {
	return "withdrawals"
}

// ============================================================
// Loan workflow
// ============================================================

// Loan statuses. pending is the initial state; completed, rejected and
// defaulted are terminal. Approval moves pending directly to active in
// one transition; there is no resting "approved" state.
const (
	LoanStatusPending   = "pending"
	LoanStatusActive    = "active"
	LoanStatusCompleted = "completed"
	LoanStatusRejected  = "rejected"
	LoanStatusDefaulted = "defaulted"
)

// Loan represents the loans table
type Loan struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	MemberID      uint            `gorm:"not null;index:idx_loans_member_status" json:"member_id"`
	Amount        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	InterestRate  decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"interest_rate"`
	Purpose       string          `gorm:"type:text;not null" json:"purpose"`
	RequestedDate time.Time       `gorm:"type:date;not null;index" json:"requested_date"`
	ApprovedDate  *time.Time      `gorm:"type:date" json:"approved_date"`
	DueDate       time.Time       `gorm:"type:date;not null" json:"due_date"`
	Status        string          `gorm:"size:20;not null;default:'pending';index:idx_loans_member_status" json:"status"`
	ApprovedByID  *uint           `json:"approved_by_id"`
	CreatedByID   *uint           `json:"created_by_id"`
	Notes         string          `gorm:"type:text" json:"notes"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	Member *Member `gorm:"foreignKey:MemberID" json:"member,omitempty"`
}

func (Loan) TableName() string {
	return "loans"
}

// TotalPayable returns principal plus simple interest:
// amount + amount * rate / 100. Computed at evaluation time, not stored.
func (l *Loan) TotalPayable() decimal.Decimal {
	interest := l.Amount.Mul(l.InterestRate).Div(decimal.NewFromInt(100))
	return l.Amount.Add(interest)
}

// IsOverdue reports whether the loan is active with its due date in
// the past, relative to today.
func (l *Loan) IsOverdue(today time.Time) bool {
	return l.Status == LoanStatusActive && l.DueDate.Before(today)
}

// LoanResponse DTO with the computed total
type LoanResponse struct {
	ID            uint            `json:"id"`
	MemberID      uint            `json:"member_id"`
	MemberName    string          `json:"member_name,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	InterestRate  decimal.Decimal `json:"interest_rate"`
	TotalPayable  decimal.Decimal `json:"total_payable"`
	Purpose       string          `json:"purpose"`
	RequestedDate time.Time       `json:"requested_date"`
	ApprovedDate  *time.Time      `json:"approved_date"`
	DueDate       time.Time       `json:"due_date"`
	Status        string          `json:"status"`
	ApprovedByID  *uint           `json:"approved_by_id"`
	Notes         string          `json:"notes"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (l *Loan) ToResponse() *LoanResponse {
	resp := &LoanResponse{
		ID:            l.ID,
		MemberID:      l.MemberID,
		Amount:        l.Amount,
		InterestRate:  l.InterestRate,
		TotalPayable:  l.TotalPayable(),
		Purpose:       l.Purpose,
		RequestedDate: l.RequestedDate,
		ApprovedDate:  l.ApprovedDate,
		DueDate:       l.DueDate,
		Status:        l.Status,
		ApprovedByID:  l.ApprovedByID,
		Notes:         l.Notes,
		CreatedAt:     l.CreatedAt,
	}
	if l.Member != nil {
		resp.MemberName = l.Member.Name
	}
	return resp
}

// ============================================================
// Repayment ledger
// ============================================================

// Repayment statuses
const (
	RepaymentStatusPending   = "pending"
	RepaymentStatusCompleted = "completed"
	RepaymentStatusCancelled = "cancelled"
)

// LoanRepayment represents the loan_repayments table. Only completed
// repayments count toward a loan's remaining balance.
type LoanRepayment struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	LoanID       uint            `gorm:"not null;index:idx_repayments_loan_status" json:"loan_id"`
	Amount       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	PaymentDate  time.Time       `gorm:"type:date;not null;index" json:"payment_date"`
	Status       string          `gorm:"size:20;not null;default:'pending';index:idx_repayments_loan_status" json:"status"`
	Notes        string          `gorm:"type:text" json:"notes"`
	RecordedByID *uint           `json:"recorded_by_id"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`

	Loan *Loan `gorm:"foreignKey:LoanID" json:"loan,omitempty"`
}

func (LoanRepayment) TableName() string {
	return "loan_repayments"
}

// ============================================================
// Transaction log (audit trail)
// ============================================================

// Transaction log entry types
const (
	TxTypeContribution  = "contribution"
	TxTypeWithdrawal    = "withdrawal"
	TxTypeLoanGranted   = "loan_granted"
	TxTypeLoanRepayment = "loan_repayment"
)

// TransactionLog represents the transaction_logs table: the append-only
// audit trail and the system of record for everything monetary. Entries
// survive member deactivation (nullable member reference) and are never
// mutated or deleted; the repository exposes Create and List only.
type TransactionLog struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Reference      string          `gorm:"size:36;uniqueIndex;not null" json:"reference"`
	Type           string          `gorm:"size:20;not null;index:idx_tx_logs_member_type" json:"type"`
	MemberID       *uint           `gorm:"index:idx_tx_logs_member_type" json:"member_id"`
	Amount         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Description    string          `gorm:"type:text" json:"description"`
	CreatedByID    *uint           `json:"created_by_id"`
	ContributionID *uint           `json:"contribution_id"`
	WithdrawalID   *uint           `json:"withdrawal_id"`
	CreatedAt      time.Time       `gorm:"autoCreateTime;index" json:"created_at"`

	Member *Member `gorm:"foreignKey:MemberID" json:"member,omitempty"`
}

func (TransactionLog) TableName() string {
	return "transaction_logs"
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all ledger tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Member{},
		&Contribution{},
		&Withdrawal{},
		&Loan{},
		&LoanRepayment{},
		&TransactionLog{},
	)
}
