package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nja-ledger/internal/adapters/persistence/models"
	"nja-ledger/internal/adapters/persistence/repositories"
	"nja-ledger/internal/core/domain"
	"nja-ledger/internal/pkg/keyedmutex"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Loan decisions
const (
	LoanDecisionApprove = "approve"
	LoanDecisionReject  = "reject"
)

// LoanService handles the loan workflow and the repayment ledger
type LoanService struct {
	db        *gorm.DB
	loanRepo  *repositories.LoanRepository
	repayRepo *repositories.LoanRepaymentRepository
	memberSvc *MemberService
	logRepo   *repositories.TransactionLogRepository
	notify    Notifier
	locks     *keyedmutex.KeyedMutex
}

// NewLoanService creates a new loan service
func NewLoanService(
	db *gorm.DB,
	loanRepo *repositories.LoanRepository,
	repayRepo *repositories.LoanRepaymentRepository,
	memberSvc *MemberService,
	logRepo *repositories.TransactionLogRepository,
	notify Notifier,
	locks *keyedmutex.KeyedMutex,
) *LoanService {
	return &LoanService{
		db:        db,
		loanRepo:  loanRepo,
		repayRepo: repayRepo,
		memberSvc: memberSvc,
		logRepo:   logRepo,
		notify:    notify,
		locks:     locks,
	}
}

// RequestLoanInput represents a loan request
type RequestLoanInput struct {
	MemberID      uint
	Amount        decimal.Decimal
	InterestRate  decimal.Decimal
	Purpose       string
	RequestedDate time.Time
	DueDate       time.Time
	Notes         string
}

// Request creates a pending loan. The loan_granted log entry marks the
// ask, not a disbursement; the type name is kept for historical
// compatibility with existing audit trails.
func (s *LoanService) Request(ctx context.Context, input *RequestLoanInput, actor domain.Actor) (*models.Loan, error) {
	if input.Amount.LessThan(minAmount) {
		return nil, fmt.Errorf("%w: amount must be at least %s", domain.ErrValidation, minAmount)
	}
	if input.InterestRate.IsNegative() {
		return nil, fmt.Errorf("%w: interest rate cannot be negative", domain.ErrValidation)
	}
	if input.Purpose == "" {
		return nil, fmt.Errorf("%w: purpose is required", domain.ErrValidation)
	}
	if !input.DueDate.After(input.RequestedDate) {
		return nil, fmt.Errorf("%w: due date must be after requested date", domain.ErrValidation)
	}

	member, err := s.memberSvc.GetByID(ctx, input.MemberID)
	if err != nil {
		return nil, err
	}

	loan := &models.Loan{
		MemberID:      member.ID,
		Amount:        input.Amount,
		InterestRate:  input.InterestRate,
		Purpose:       input.Purpose,
		RequestedDate: input.RequestedDate,
		DueDate:       input.DueDate,
		Status:        models.LoanStatusPending,
		Notes:         input.Notes,
		CreatedByID:   &actor.ID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.loanRepo.WithTx(tx).Create(ctx, loan); err != nil {
			return err
		}
		entry := &models.TransactionLog{
			Reference:   uuid.NewString(),
			Type:        models.TxTypeLoanGranted,
			MemberID:    &member.ID,
			Amount:      loan.Amount,
			Description: "Loan request: " + loan.Purpose,
			CreatedByID: &actor.ID,
		}
		return s.logRepo.WithTx(tx).Create(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	loan.Member = member
	return loan, nil
}

// Decide approves or rejects a pending loan. Approval is a single
// atomic pending→active transition with the approval date and actor
// recorded; there is no resting "approved" state. No funds check:
// approving is a pure authorization decision, the pool's loanable
// capacity is not this component's concern.
func (s *LoanService) Decide(ctx context.Context, id uint, decision string, actor domain.Actor, notes string) (*models.Loan, error) {
	if !actor.Admin {
		return nil, fmt.Errorf("%w: only administrators can decide loans", domain.ErrPermissionDenied)
	}
	if decision != LoanDecisionApprove && decision != LoanDecisionReject {
		return nil, fmt.Errorf("%w: decision must be %q or %q", domain.ErrValidation, LoanDecisionApprove, LoanDecisionReject)
	}

	unlock := s.locks.Lock(keyedmutex.LoanKey(id))
	defer unlock()

	loan, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if loan.Status != models.LoanStatusPending {
		return nil, fmt.Errorf("%w: loan is already %s", domain.ErrInvalidState, loan.Status)
	}

	if decision == LoanDecisionApprove {
		now := time.Now()
		loan.Status = models.LoanStatusActive
		loan.ApprovedByID = &actor.ID
		loan.ApprovedDate = &now
	} else {
		loan.Status = models.LoanStatusRejected
		loan.ApprovedByID = &actor.ID
	}
	if notes != "" {
		loan.Notes = notes
	}

	if err := s.loanRepo.Update(ctx, loan); err != nil {
		return nil, err
	}

	if s.notify != nil {
		name := ""
		if loan.Member != nil {
			name = loan.Member.Name
		}
		s.notify.LoanDecided(name, loan.Amount, loan.Status)
	}

	return loan, nil
}

// MarkDefaulted moves an active loan to defaulted. This is a manual
// administrative action; nothing in the ledger defaults a loan
// automatically, overdue or not.
func (s *LoanService) MarkDefaulted(ctx context.Context, id uint, actor domain.Actor, notes string) (*models.Loan, error) {
	if !actor.Admin {
		return nil, fmt.Errorf("%w: only administrators can default loans", domain.ErrPermissionDenied)
	}

	unlock := s.locks.Lock(keyedmutex.LoanKey(id))
	defer unlock()

	loan, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if loan.Status != models.LoanStatusActive {
		return nil, fmt.Errorf("%w: only active loans can be defaulted, loan is %s", domain.ErrInvalidState, loan.Status)
	}

	loan.Status = models.LoanStatusDefaulted
	if notes != "" {
		loan.Notes = notes
	}
	if err := s.loanRepo.Update(ctx, loan); err != nil {
		return nil, err
	}
	return loan, nil
}

// RemainingBalance computes total payable minus completed repayments
func (s *LoanService) RemainingBalance(ctx context.Context, loan *models.Loan) (decimal.Decimal, error) {
	paid, err := s.repayRepo.SumCompletedByLoan(ctx, loan.ID)
	if err != nil {
		return decimal.Zero, err
	}
	return loan.TotalPayable().Sub(paid), nil
}

// LoanDetail is a loan with its derived repayment figures
type LoanDetail struct {
	Loan             *models.LoanResponse `json:"loan"`
	TotalPayable     decimal.Decimal      `json:"total_payable"`
	PaidAmount       decimal.Decimal      `json:"paid_amount"`
	RemainingBalance decimal.Decimal      `json:"remaining_balance"`
	IsOverdue        bool                 `json:"is_overdue"`
}

// GetDetail gets a loan with paid amount, remaining balance and the
// overdue flag, all derived at call time.
func (s *LoanService) GetDetail(ctx context.Context, id uint) (*LoanDetail, error) {
	loan, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}

	paid, err := s.repayRepo.SumCompletedByLoan(ctx, loan.ID)
	if err != nil {
		return nil, err
	}

	total := loan.TotalPayable()
	return &LoanDetail{
		Loan:             loan.ToResponse(),
		TotalPayable:     total,
		PaidAmount:       paid,
		RemainingBalance: total.Sub(paid),
		IsOverdue:        loan.IsOverdue(time.Now()),
	}, nil
}

// GetByID gets a loan by ID
func (s *LoanService) GetByID(ctx context.Context, id uint) (*models.Loan, error) {
	return s.getByID(ctx, id)
}

func (s *LoanService) getByID(ctx context.Context, id uint) (*models.Loan, error) {
	loan, err := s.loanRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: loan %d", domain.ErrNotFound, id)
		}
		return nil, err
	}
	return loan, nil
}

// List lists loans matching the filter
func (s *LoanService) List(ctx context.Context, filter repositories.LoanFilter, offset, limit int) ([]*models.Loan, int64, error) {
	return s.loanRepo.List(ctx, filter, offset, limit)
}

// RecordRepaymentInput represents a repayment
type RecordRepaymentInput struct {
	Amount      decimal.Decimal
	PaymentDate time.Time
	Notes       string
}

// RecordRepayment appends a completed repayment against an active
// loan. The remaining-balance check and the write happen under the
// loan's lock, and a repayment that clears the balance transitions the
// loan to completed in the same transaction.
func (s *LoanService) RecordRepayment(ctx context.Context, loanID uint, input *RecordRepaymentInput, actor domain.Actor) (*models.LoanRepayment, error) {
	if input.Amount.LessThan(minAmount) {
		return nil, fmt.Errorf("%w: amount must be at least %s", domain.ErrValidation, minAmount)
	}

	unlock := s.locks.Lock(keyedmutex.LoanKey(loanID))
	defer unlock()

	loan, err := s.getByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan.Status != models.LoanStatusActive {
		return nil, fmt.Errorf("%w: repayments require an active loan, loan is %s", domain.ErrInvalidState, loan.Status)
	}

	remaining, err := s.RemainingBalance(ctx, loan)
	if err != nil {
		return nil, err
	}
	if input.Amount.GreaterThan(remaining) {
		return nil, fmt.Errorf("%w: repayment %s exceeds remaining balance %s",
			domain.ErrValidation, input.Amount.StringFixed(2), remaining.StringFixed(2))
	}

	repayment := &models.LoanRepayment{
		LoanID:       loan.ID,
		Amount:       input.Amount,
		PaymentDate:  input.PaymentDate,
		Status:       models.RepaymentStatusCompleted,
		Notes:        input.Notes,
		RecordedByID: &actor.ID,
	}

	notes := input.Notes
	if notes == "" {
		notes = "No notes"
	}

	fullyPaid := remaining.Sub(input.Amount).LessThanOrEqual(decimal.Zero)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repayRepo.WithTx(tx).Create(ctx, repayment); err != nil {
			return err
		}
		entry := &models.TransactionLog{
			Reference:   uuid.NewString(),
			Type:        models.TxTypeLoanRepayment,
			MemberID:    &loan.MemberID,
			Amount:      repayment.Amount,
			Description: "Loan repayment: " + notes,
			CreatedByID: &actor.ID,
		}
		if err := s.logRepo.WithTx(tx).Create(ctx, entry); err != nil {
			return err
		}
		if fullyPaid {
			loan.Status = models.LoanStatusCompleted
			return s.loanRepo.WithTx(tx).Update(ctx, loan)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if fullyPaid && s.notify != nil {
		name := ""
		if loan.Member != nil {
			name = loan.Member.Name
		}
		s.notify.LoanCompleted(name, loan.TotalPayable())
	}

	return repayment, nil
}

// ListRepayments lists repayments for a loan, newest first
func (s *LoanService) ListRepayments(ctx context.Context, loanID uint) ([]*models.LoanRepayment, error) {
	if _, err := s.getByID(ctx, loanID); err != nil {
		return nil, err
	}
	return s.repayRepo.ListByLoan(ctx, loanID)
}
