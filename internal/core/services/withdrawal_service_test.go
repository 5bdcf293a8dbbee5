package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"nja-ledger/internal/adapters/persistence/models"
	"nja-ledger/internal/core/domain"

	"github.com/stretchr/testify/require"
)

func TestRequestWithdrawalPreChecksBalance(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	member := e.seedMember(t, "Member", "m@example.com", string(domain.RoleMember))
	e.seedContribution(t, member.ID, "100.00", date(2025, time.January, 1), models.CategoryRegular)

	_, err := e.withdrawals.Request(ctx, &RequestWithdrawalInput{
		MemberID: member.ID,
		Amount:   dec(t, "100.01"),
		Date:     date(2025, time.February, 1),
		Reason:   "rent",
	}, memberActor(member))
	require.ErrorIs(t, err, domain.ErrValidation)

	withdrawal, err := e.withdrawals.Request(ctx, &RequestWithdrawalInput{
		MemberID: member.ID,
		Amount:   dec(t, "100.00"),
		Date:     date(2025, time.February, 1),
		Reason:   "rent",
	}, memberActor(member))
	require.NoError(t, err)
	require.Equal(t, models.WithdrawalStatusPending, withdrawal.Status)
}

func TestRequestWithdrawalValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	member := e.seedMember(t, "Member", "m@example.com", string(domain.RoleMember))
	e.seedContribution(t, member.ID, "50.00", date(2025, time.January, 1), models.CategoryRegular)

	_, err := e.withdrawals.Request(ctx, &RequestWithdrawalInput{
		MemberID: member.ID,
		Amount:   dec(t, "10.00"),
		Date:     date(2025, time.February, 1),
	}, memberActor(member))
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = e.withdrawals.Request(ctx, &RequestWithdrawalInput{
		MemberID: member.ID,
		Amount:   dec(t, "0.001"),
		Date:     date(2025, time.February, 1),
		Reason:   "rent",
	}, memberActor(member))
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestDecideWithdrawalRequiresAdministrator(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	member := e.seedMember(t, "Member", "m@example.com", string(domain.RoleMember))
	e.seedContribution(t, member.ID, "100.00", date(2025, time.January, 1), models.CategoryRegular)

	withdrawal, err := e.withdrawals.Request(ctx, &RequestWithdrawalInput{
		MemberID: member.ID,
		Amount:   dec(t, "40.00"),
		Date:     date(2025, time.February, 1),
		Reason:   "rent",
	}, memberActor(member))
	require.NoError(t, err)

	_, err = e.withdrawals.Decide(ctx, withdrawal.ID, models.WithdrawalStatusApproved, memberActor(member))
	require.ErrorIs(t, err, domain.ErrPermissionDenied)
}

func TestDecideWithdrawalTerminalStates(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	leader := e.seedMember(t, "Leader", "leader@example.com", string(domain.RoleLeader))
	member := e.seedMember(t, "Member", "m@example.com", string(domain.RoleMember))
	e.seedContribution(t, member.ID, "100.00", date(2025, time.January, 1), models.CategoryRegular)

	withdrawal, err := e.withdrawals.Request(ctx, &RequestWithdrawalInput{
		MemberID: member.ID,
		Amount:   dec(t, "40.00"),
		Date:     date(2025, time.February, 1),
		Reason:   "rent",
	}, memberActor(member))
	require.NoError(t, err)

	_, err = e.withdrawals.Decide(ctx, withdrawal.ID, "postponed", adminActor(leader))
	require.ErrorIs(t, err, domain.ErrValidation)

	decided, err := e.withdrawals.Decide(ctx, withdrawal.ID, models.WithdrawalStatusApproved, adminActor(leader))
	require.NoError(t, err)
	require.Equal(t, models.WithdrawalStatusApproved, decided.Status)
	require.NotNil(t, decided.ApprovedByID)
	require.Equal(t, leader.ID, *decided.ApprovedByID)
	require.NotNil(t, decided.ApprovedAt)

	// Terminal: a second decision must be refused.
	_, err = e.withdrawals.Decide(ctx, withdrawal.ID, models.WithdrawalStatusRejected, adminActor(leader))
	require.ErrorIs(t, err, domain.ErrInvalidState)
	require.Equal(t, 1, e.notifier.withdrawalCalls)
}

func TestApproveWithdrawalInsufficientFundsLeavesPending(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	leader := e.seedMember(t, "Leader", "leader@example.com", string(domain.RoleLeader))
	member := e.seedMember(t, "Member", "m@example.com", string(domain.RoleMember))
	e.seedContribution(t, member.ID, "100.00", date(2025, time.January, 1), models.CategoryRegular)

	first, err := e.withdrawals.Request(ctx, &RequestWithdrawalInput{
		MemberID: member.ID,
		Amount:   dec(t, "80.00"),
		Date:     date(2025, time.February, 1),
		Reason:   "rent",
	}, memberActor(member))
	require.NoError(t, err)
	second, err := e.withdrawals.Request(ctx, &RequestWithdrawalInput{
		MemberID: member.ID,
		Amount:   dec(t, "80.00"),
		Date:     date(2025, time.February, 2),
		Reason:   "medical",
	}, memberActor(member))
	require.NoError(t, err)

	_, err = e.withdrawals.Decide(ctx, first.ID, models.WithdrawalStatusApproved, adminActor(leader))
	require.NoError(t, err)

	// The balance is now 20.00; the second approval must fail and the
	// request must stay pending.
	_, err = e.withdrawals.Decide(ctx, second.ID, models.WithdrawalStatusApproved, adminActor(leader))
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	reloaded, err := e.withdrawals.GetByID(ctx, second.ID)
	require.NoError(t, err)
	require.Equal(t, models.WithdrawalStatusPending, reloaded.Status)
}

func TestRejectWithdrawalNeedsNoFunds(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	leader := e.seedMember(t, "Leader", "leader@example.com", string(domain.RoleLeader))
	member := e.seedMember(t, "Member", "m@example.com", string(domain.RoleMember))
	e.seedContribution(t, member.ID, "100.00", date(2025, time.January, 1), models.CategoryRegular)

	withdrawal, err := e.withdrawals.Request(ctx, &RequestWithdrawalInput{
		MemberID: member.ID,
		Amount:   dec(t, "100.00"),
		Date:     date(2025, time.February, 1),
		Reason:   "rent",
	}, memberActor(member))
	require.NoError(t, err)

	// Drain the balance after the request was filed.
	now := time.Now()
	require.NoError(t, e.db.Create(&models.Withdrawal{
		MemberID:   member.ID,
		Amount:     dec(t, "100.00"),
		Date:       date(2025, time.February, 2),
		Reason:     "drain",
		Status:     models.WithdrawalStatusApproved,
		ApprovedAt: &now,
	}).Error)

	decided, err := e.withdrawals.Decide(ctx, withdrawal.ID, models.WithdrawalStatusRejected, adminActor(leader))
	require.NoError(t, err)
	require.Equal(t, models.WithdrawalStatusRejected, decided.Status)
}

func TestConcurrentApprovalsCannotOverdraw(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	leader := e.seedMember(t, "Leader", "leader@example.com", string(domain.RoleLeader))
	member := e.seedMember(t, "Member", "m@example.com", string(domain.RoleMember))
	e.seedContribution(t, member.ID, "100.00", date(2025, time.January, 1), models.CategoryRegular)

	var ids [2]uint
	for i := range ids {
		w, err := e.withdrawals.Request(ctx, &RequestWithdrawalInput{
			MemberID: member.ID,
			Amount:   dec(t, "60.00"),
			Date:     date(2025, time.February, 1),
			Reason:   "rent",
		}, memberActor(member))
		require.NoError(t, err)
		ids[i] = w.ID
	}

	// Both fit individually but together exceed the balance. Exactly
	// one approval may win.
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id uint) {
			defer wg.Done()
			_, errs[i] = e.withdrawals.Decide(ctx, id, models.WithdrawalStatusApproved, adminActor(leader))
		}(i, id)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			require.ErrorIs(t, err, domain.ErrInsufficientFunds)
		}
	}
	require.Equal(t, 1, succeeded)

	balance, err := e.members.GetBalance(ctx, member.ID)
	require.NoError(t, err)
	require.True(t, balance.Equal(dec(t, "40.00")), "got %s", balance)
}
