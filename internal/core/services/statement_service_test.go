package services

import (
	"context"
	"testing"
	"time"

	"nja-ledger/internal/adapters/persistence/models"
	"nja-ledger/internal/core/domain"

	"github.com/stretchr/testify/require"
)

func TestYearlyStatementMonthlyBreakdown(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	member := e.seedMember(t, "Member", "m@example.com", string(domain.RoleMember))
	e.seedContribution(t, member.ID, "100.00", date(2025, time.March, 10), models.CategoryRegular)
	e.seedContribution(t, member.ID, "30.00", date(2025, time.March, 20), models.CategorySocial)

	now := time.Now()
	require.NoError(t, e.db.Create(&models.Withdrawal{
		MemberID:   member.ID,
		Amount:     dec(t, "40.00"),
		Date:       date(2025, time.March, 25),
		Reason:     "funeral support",
		Status:     models.WithdrawalStatusApproved,
		ApprovedAt: &now,
	}).Error)
	// Pending and rejected withdrawals are not expenses.
	require.NoError(t, e.db.Create(&models.Withdrawal{
		MemberID: member.ID,
		Amount:   dec(t, "500.00"),
		Date:     date(2025, time.March, 26),
		Reason:   "pending",
		Status:   models.WithdrawalStatusPending,
	}).Error)
	// Activity outside the year is excluded.
	e.seedContribution(t, member.ID, "999.00", date(2024, time.December, 31), models.CategoryRegular)

	statement, err := e.statements.Yearly(ctx, 2025)
	require.NoError(t, err)
	require.Equal(t, 2025, statement.Year)
	require.Len(t, statement.Months, 12)

	march := statement.Months[2]
	require.Equal(t, "March", march.Month)
	require.Equal(t, "130.00", march.Contributions.StringFixed(2))
	require.Equal(t, "40.00", march.Expenses.StringFixed(2))
	require.Equal(t, "90.00", march.Net.StringFixed(2))

	for i, row := range statement.Months {
		if i == 2 {
			continue
		}
		require.True(t, row.Contributions.IsZero(), "month %s", row.Month)
		require.True(t, row.Expenses.IsZero(), "month %s", row.Month)
	}

	require.Equal(t, "130.00", statement.TotalContributions.StringFixed(2))
	require.Equal(t, "40.00", statement.TotalExpenses.StringFixed(2))
	require.Equal(t, "90.00", statement.NetTotal.StringFixed(2))
}

func TestYearlyStatementCategoryBreakdown(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	member := e.seedMember(t, "Member", "m@example.com", string(domain.RoleMember))
	e.seedContribution(t, member.ID, "60.00", date(2025, time.January, 5), models.CategoryRegular)
	e.seedContribution(t, member.ID, "2.50", date(2025, time.August, 5), models.CategoryLatenessFee)

	statement, err := e.statements.Yearly(ctx, 2025)
	require.NoError(t, err)
	require.Len(t, statement.Categories, len(models.ContributionCategories))

	byCategory := map[string]string{}
	for _, ct := range statement.Categories {
		byCategory[ct.Category] = ct.Total.StringFixed(2)
	}
	require.Equal(t, "60.00", byCategory[models.CategoryRegular])
	require.Equal(t, "0.00", byCategory[models.CategorySocial])
	require.Equal(t, "2.50", byCategory[models.CategoryLatenessFee])
}

func TestYearlyStatementEmptyYear(t *testing.T) {
	e := newEnv(t)

	statement, err := e.statements.Yearly(context.Background(), 2020)
	require.NoError(t, err)
	require.Len(t, statement.Months, 12)
	require.True(t, statement.TotalContributions.IsZero())
	require.True(t, statement.TotalExpenses.IsZero())
	require.True(t, statement.NetTotal.IsZero())
}
