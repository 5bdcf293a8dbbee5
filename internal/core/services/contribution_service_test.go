package services

import (
	"context"
	"testing"
	"time"

	"nja-ledger/internal/adapters/persistence/models"
	"nja-ledger/internal/adapters/persistence/repositories"
	"nja-ledger/internal/core/domain"

	"github.com/stretchr/testify/require"
)

func TestRecordContributionRequiresAdministrator(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	member := e.seedMember(t, "Member", "m@example.com", string(domain.RoleMember))

	_, err := e.contributions.Record(ctx, &RecordContributionInput{
		MemberID: member.ID,
		Amount:   dec(t, "10.00"),
		Date:     date(2025, time.May, 1),
	}, memberActor(member))
	require.ErrorIs(t, err, domain.ErrPermissionDenied)
}

func TestRecordContributionValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	treasurer := e.seedMember(t, "Treasurer", "t@example.com", string(domain.RoleTreasurer))
	member := e.seedMember(t, "Member", "m@example.com", string(domain.RoleMember))

	_, err := e.contributions.Record(ctx, &RecordContributionInput{
		MemberID: member.ID,
		Amount:   dec(t, "0"),
		Date:     date(2025, time.May, 1),
	}, adminActor(treasurer))
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = e.contributions.Record(ctx, &RecordContributionInput{
		MemberID: member.ID,
		Amount:   dec(t, "10.00"),
		Date:     date(2025, time.May, 1),
		Category: "gifts",
	}, adminActor(treasurer))
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = e.contributions.Record(ctx, &RecordContributionInput{
		MemberID: 4242,
		Amount:   dec(t, "10.00"),
		Date:     date(2025, time.May, 1),
	}, adminActor(treasurer))
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecordContributionAppendsAuditEntry(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	treasurer := e.seedMember(t, "Treasurer", "t@example.com", string(domain.RoleTreasurer))
	member := e.seedMember(t, "Member", "m@example.com", string(domain.RoleMember))

	contribution, err := e.contributions.Record(ctx, &RecordContributionInput{
		MemberID:    member.ID,
		Amount:      dec(t, "75.25"),
		Date:        date(2025, time.June, 15),
		Description: "June dues",
	}, adminActor(treasurer))
	require.NoError(t, err)
	require.Equal(t, models.CategoryRegular, contribution.Category)

	entries, total, err := e.logRepo.List(ctx, repositories.TransactionLogFilter{MemberID: &member.ID}, 0, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)

	entry := entries[0]
	require.Equal(t, models.TxTypeContribution, entry.Type)
	require.True(t, entry.Amount.Equal(dec(t, "75.25")))
	require.NotEmpty(t, entry.Reference)
	require.NotNil(t, entry.ContributionID)
	require.Equal(t, contribution.ID, *entry.ContributionID)
	require.Contains(t, entry.Description, "June dues")
}

func TestCategoryTotalsZeroFilled(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	member := e.seedMember(t, "Member", "m@example.com", string(domain.RoleMember))
	e.seedContribution(t, member.ID, "100.00", date(2025, time.July, 1), models.CategoryRegular)
	e.seedContribution(t, member.ID, "20.00", date(2025, time.July, 2), models.CategoryRegular)
	e.seedContribution(t, member.ID, "5.00", date(2025, time.July, 3), models.CategoryLatenessFee)

	totals, err := e.contributions.CategoryTotals(ctx, repositories.ContributionFilter{MemberID: &member.ID})
	require.NoError(t, err)
	require.Len(t, totals, len(models.ContributionCategories))

	byCategory := map[string]string{}
	for _, ct := range totals {
		byCategory[ct.Category] = ct.Total.StringFixed(2)
	}
	require.Equal(t, "120.00", byCategory[models.CategoryRegular])
	require.Equal(t, "0.00", byCategory[models.CategorySocial])
	require.Equal(t, "5.00", byCategory[models.CategoryLatenessFee])
}

func TestListContributionsFilters(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	alice := e.seedMember(t, "Alice", "alice@example.com", string(domain.RoleMember))
	bob := e.seedMember(t, "Bob", "bob@example.com", string(domain.RoleMember))
	e.seedContribution(t, alice.ID, "10.00", date(2025, time.January, 5), models.CategoryRegular)
	e.seedContribution(t, alice.ID, "15.00", date(2025, time.March, 5), models.CategorySocial)
	e.seedContribution(t, bob.ID, "20.00", date(2025, time.January, 6), models.CategoryRegular)

	from := date(2025, time.February, 1)
	items, total, err := e.contributions.List(ctx, repositories.ContributionFilter{
		MemberID: &alice.ID,
		DateFrom: &from,
	}, 0, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.True(t, items[0].Amount.Equal(dec(t, "15.00")))
}
