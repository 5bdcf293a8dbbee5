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

// WithdrawalService handles the withdrawal request/decision workflow
type WithdrawalService struct {
	db             *gorm.DB
	withdrawalRepo *repositories.WithdrawalRepository
	memberSvc      *MemberService
	logRepo        *repositories.TransactionLogRepository
	notify         Notifier
	locks          *keyedmutex.KeyedMutex
}

// NewWithdrawalService creates a new withdrawal service
func NewWithdrawalService(
	db *gorm.DB,
	withdrawalRepo *repositories.WithdrawalRepository,
	memberSvc *MemberService,
	logRepo *repositories.TransactionLogRepository,
	notify Notifier,
	locks *keyedmutex.KeyedMutex,
) *WithdrawalService {
	return &WithdrawalService{
		db:             db,
		withdrawalRepo: withdrawalRepo,
		memberSvc:      memberSvc,
		logRepo:        logRepo,
		notify:         notify,
		locks:          locks,
	}
}

// RequestWithdrawalInput represents a withdrawal request
type RequestWithdrawalInput struct {
	MemberID uint
	Amount   decimal.Decimal
	Date     time.Time
	Reason   string
}

// Request creates a pending withdrawal. The balance check here is a
// pre-check against obviously doomed requests; the authoritative check
// happens again at approval time under the member's lock. The log
// entry records the request, not a fund movement.
func (s *WithdrawalService) Request(ctx context.Context, input *RequestWithdrawalInput, actor domain.Actor) (*models.Withdrawal, error) {
	if input.Amount.LessThan(minAmount) {
		return nil, fmt.Errorf("%w: amount must be at least %s", domain.ErrValidation, minAmount)
	}
	if input.Reason == "" {
		return nil, fmt.Errorf("%w: reason is required", domain.ErrValidation)
	}

	member, err := s.memberSvc.GetByID(ctx, input.MemberID)
	if err != nil {
		return nil, err
	}

	balance, err := s.memberSvc.balanceOf(ctx, member.ID)
	if err != nil {
		return nil, err
	}
	if input.Amount.GreaterThan(balance) {
		return nil, fmt.Errorf("%w: withdrawal amount %s exceeds available balance %s",
			domain.ErrValidation, input.Amount.StringFixed(2), balance.StringFixed(2))
	}

	withdrawal := &models.Withdrawal{
		MemberID:    member.ID,
		Amount:      input.Amount,
		Date:        input.Date,
		Reason:      input.Reason,
		Status:      models.WithdrawalStatusPending,
		CreatedByID: &actor.ID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.withdrawalRepo.WithTx(tx).Create(ctx, withdrawal); err != nil {
			return err
		}
		entry := &models.TransactionLog{
			Reference:    uuid.NewString(),
			Type:         models.TxTypeWithdrawal,
			MemberID:     &member.ID,
			Amount:       withdrawal.Amount,
			Description:  "Withdrawal request: " + withdrawal.Reason,
			CreatedByID:  &actor.ID,
			WithdrawalID: &withdrawal.ID,
		}
		return s.logRepo.WithTx(tx).Create(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	withdrawal.Member = member
	return withdrawal, nil
}

// Decide approves or rejects a pending withdrawal. Approval re-checks
// the balance fresh while holding the member's lock, so two concurrent
// approvals can never jointly overdraw the account. Rejection needs no
// funds check. Both outcomes are terminal.
func (s *WithdrawalService) Decide(ctx context.Context, id uint, newStatus string, actor domain.Actor) (*models.Withdrawal, error) {
	if !actor.Admin {
		return nil, fmt.Errorf("%w: only administrators can decide withdrawals", domain.ErrPermissionDenied)
	}
	if newStatus != models.WithdrawalStatusApproved && newStatus != models.WithdrawalStatusRejected {
		return nil, fmt.Errorf("%w: decision must be %q or %q",
			domain.ErrValidation, models.WithdrawalStatusApproved, models.WithdrawalStatusRejected)
	}

	// First read is only to learn which member to lock.
	withdrawal, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(keyedmutex.MemberKey(withdrawal.MemberID))
	defer unlock()

	// Reload under the lock; the first read may be stale.
	withdrawal, err = s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if withdrawal.Status != models.WithdrawalStatusPending {
		return nil, fmt.Errorf("%w: withdrawal is already %s", domain.ErrInvalidState, withdrawal.Status)
	}

	if newStatus == models.WithdrawalStatusApproved {
		// Fresh balance; the pending withdrawal itself is excluded
		// because only approved withdrawals count against it.
		balance, err := s.memberSvc.balanceOf(ctx, withdrawal.MemberID)
		if err != nil {
			return nil, err
		}
		if withdrawal.Amount.GreaterThan(balance) {
			return nil, fmt.Errorf("%w: withdrawal amount %s exceeds balance %s",
				domain.ErrInsufficientFunds, withdrawal.Amount.StringFixed(2), balance.StringFixed(2))
		}

		now := time.Now()
		withdrawal.Status = models.WithdrawalStatusApproved
		withdrawal.ApprovedByID = &actor.ID
		withdrawal.ApprovedAt = &now
	} else {
		withdrawal.Status = models.WithdrawalStatusRejected
		withdrawal.ApprovedByID = &actor.ID
		now := time.Now()
		withdrawal.ApprovedAt = &now
	}

	if err := s.withdrawalRepo.Update(ctx, withdrawal); err != nil {
		return nil, err
	}

	if s.notify != nil {
		name := ""
		if withdrawal.Member != nil {
			name = withdrawal.Member.Name
		}
		s.notify.WithdrawalDecided(name, withdrawal.Amount, withdrawal.Status)
	}

	return withdrawal, nil
}

// GetByID gets a withdrawal by ID
func (s *WithdrawalService) GetByID(ctx context.Context, id uint) (*models.Withdrawal, error) {
	return s.getByID(ctx, id)
}

func (s *WithdrawalService) getByID(ctx context.Context, id uint) (*models.Withdrawal, error) {
	withdrawal, err := s.withdrawalRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: withdrawal %d", domain.ErrNotFound, id)
		}
		return nil, err
	}
	return withdrawal, nil
}

// List lists withdrawals matching the filter
func (s *WithdrawalService) List(ctx context.Context, filter repositories.WithdrawalFilter, offset, limit int) ([]*models.Withdrawal, int64, error) {
	return s.withdrawalRepo.List(ctx, filter, offset, limit)
}
