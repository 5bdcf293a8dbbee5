package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"nja-ledger/internal/adapters/persistence/models"
	"nja-ledger/internal/adapters/persistence/repositories"
	"nja-ledger/internal/core/domain"
	"nja-ledger/internal/pkg/password"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// minAmount is the smallest monetary amount the ledger accepts
var minAmount = decimal.New(1, -2) // 0.01

// MemberService handles member accounts and balance queries
type MemberService struct {
	memberRepo     *repositories.MemberRepository
	contribRepo    *repositories.ContributionRepository
	withdrawalRepo *repositories.WithdrawalRepository
	notify         Notifier
}

// NewMemberService creates a new member service
func NewMemberService(
	memberRepo *repositories.MemberRepository,
	contribRepo *repositories.ContributionRepository,
	withdrawalRepo *repositories.WithdrawalRepository,
	notify Notifier,
) *MemberService {
	return &MemberService{
		memberRepo:     memberRepo,
		contribRepo:    contribRepo,
		withdrawalRepo: withdrawalRepo,
		notify:         notify,
	}
}

// RegisterInput represents member registration input
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
	Address  string `json:"address,omitempty"`
}

// Register creates a new member account. The account starts inactive
// and stays that way until an administrator approves it.
func (s *MemberService) Register(ctx context.Context, input *RegisterInput) (*models.Member, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.Email)

	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", domain.ErrValidation)
	}
	if !password.Validate(input.Password) {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", domain.ErrValidation)
	}

	exists, err := s.memberRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: email already registered", domain.ErrValidation)
	}

	hash, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	member := &models.Member{
		Name:         name,
		Email:        email,
		Phone:        strings.TrimSpace(input.Phone),
		PasswordHash: hash,
		Role:         string(domain.RoleMember),
		IsActive:     false,
		Address:      input.Address,
	}
	if err := s.memberRepo.Create(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

// GetByID gets a member by ID
func (s *MemberService) GetByID(ctx context.Context, id uint) (*models.Member, error) {
	member, err := s.memberRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: member %d", domain.ErrNotFound, id)
		}
		return nil, err
	}
	return member, nil
}

// List lists members with pagination
func (s *MemberService) List(ctx context.Context, activeOnly bool, offset, limit int) ([]*models.Member, int64, error) {
	return s.memberRepo.List(ctx, activeOnly, offset, limit)
}

// GetTotalContributions sums every contribution the member has made,
// regardless of category.
func (s *MemberService) GetTotalContributions(ctx context.Context, memberID uint) (decimal.Decimal, error) {
	if _, err := s.GetByID(ctx, memberID); err != nil {
		return decimal.Zero, err
	}
	return s.contribRepo.SumByMember(ctx, memberID)
}

// GetBalance derives the member's balance: total contributions minus
// approved withdrawals. The value is recomputed on every call, never
// cached; callers must treat it as a point-in-time snapshot.
func (s *MemberService) GetBalance(ctx context.Context, memberID uint) (decimal.Decimal, error) {
	if _, err := s.GetByID(ctx, memberID); err != nil {
		return decimal.Zero, err
	}
	return s.balanceOf(ctx, memberID)
}

// balanceOf computes the balance without the existence check
func (s *MemberService) balanceOf(ctx context.Context, memberID uint) (decimal.Decimal, error) {
	contributions, err := s.contribRepo.SumByMember(ctx, memberID)
	if err != nil {
		return decimal.Zero, err
	}
	withdrawn, err := s.withdrawalRepo.SumApprovedByMember(ctx, memberID)
	if err != nil {
		return decimal.Zero, err
	}
	return contributions.Sub(withdrawn), nil
}

// Approve activates a pending member. Idempotent: approving an already
// active member is a no-op, and the notification fires only when the
// account actually transitioned.
func (s *MemberService) Approve(ctx context.Context, memberID uint, actor domain.Actor) (*models.Member, error) {
	if !actor.Admin {
		return nil, fmt.Errorf("%w: only administrators can approve members", domain.ErrPermissionDenied)
	}

	member, err := s.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}

	changed, err := s.memberRepo.Activate(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if changed {
		member.IsActive = true
		if s.notify != nil {
			s.notify.MemberApproved(member.Name)
		}
	}
	return member, nil
}

// Deactivate disables a member account. Ledger entries referencing the
// member remain untouched; there is no delete path.
func (s *MemberService) Deactivate(ctx context.Context, memberID uint, actor domain.Actor) (*models.Member, error) {
	if !actor.Admin {
		return nil, fmt.Errorf("%w: only administrators can deactivate members", domain.ErrPermissionDenied)
	}

	member, err := s.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}

	if _, err := s.memberRepo.Deactivate(ctx, memberID); err != nil {
		return nil, err
	}
	member.IsActive = false
	return member, nil
}
