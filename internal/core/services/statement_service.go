package services

import (
	"context"
	"time"

	"nja-ledger/internal/adapters/persistence/models"
	"nja-ledger/internal/adapters/persistence/repositories"

	"github.com/shopspring/decimal"
)

// StatementService produces derived, read-only period statements. It
// folds over contribution and approved-withdrawal rows; it never
// writes and never caches.
type StatementService struct {
	contribRepo    *repositories.ContributionRepository
	withdrawalRepo *repositories.WithdrawalRepository
}

// NewStatementService creates a new statement service
func NewStatementService(
	contribRepo *repositories.ContributionRepository,
	withdrawalRepo *repositories.WithdrawalRepository,
) *StatementService {
	return &StatementService{
		contribRepo:    contribRepo,
		withdrawalRepo: withdrawalRepo,
	}
}

// MonthRow is one month of the yearly breakdown
type MonthRow struct {
	Month         string          `json:"month"`
	Contributions decimal.Decimal `json:"contributions"`
	Expenses      decimal.Decimal `json:"expenses"`
	Net           decimal.Decimal `json:"net"`
}

// YearlyStatement aggregates one calendar year of ledger activity
type YearlyStatement struct {
	Year               int             `json:"year"`
	TotalContributions decimal.Decimal `json:"total_contributions"`
	TotalExpenses      decimal.Decimal `json:"total_expenses"`
	NetTotal           decimal.Decimal `json:"net_total"`
	Categories         []CategoryTotal `json:"categories"`
	Months             []MonthRow      `json:"months"`
}

// Yearly computes the statement for a calendar year. The monthly
// breakdown always holds twelve rows, zero-filled for months with no
// activity, and the category breakdown always lists every category.
func (s *StatementService) Yearly(ctx context.Context, year int) (*YearlyStatement, error) {
	contributions, err := s.contribRepo.ListByYear(ctx, year)
	if err != nil {
		return nil, err
	}
	withdrawals, err := s.withdrawalRepo.ListApprovedByYear(ctx, year)
	if err != nil {
		return nil, err
	}

	var contribMonths, expenseMonths [12]decimal.Decimal
	for i := range contribMonths {
		contribMonths[i] = decimal.Zero
		expenseMonths[i] = decimal.Zero
	}

	categoryTotals := make(map[string]decimal.Decimal, len(models.ContributionCategories))
	for _, category := range models.ContributionCategories {
		categoryTotals[category] = decimal.Zero
	}

	totalContributions := decimal.Zero
	for _, c := range contributions {
		m := int(c.Date.Month()) - 1
		contribMonths[m] = contribMonths[m].Add(c.Amount)
		totalContributions = totalContributions.Add(c.Amount)
		categoryTotals[c.Category] = categoryTotals[c.Category].Add(c.Amount)
	}

	totalExpenses := decimal.Zero
	for _, w := range withdrawals {
		m := int(w.Date.Month()) - 1
		expenseMonths[m] = expenseMonths[m].Add(w.Amount)
		totalExpenses = totalExpenses.Add(w.Amount)
	}

	months := make([]MonthRow, 0, 12)
	for m := 0; m < 12; m++ {
		months = append(months, MonthRow{
			Month:         time.Month(m + 1).String(),
			Contributions: contribMonths[m],
			Expenses:      expenseMonths[m],
			Net:           contribMonths[m].Sub(expenseMonths[m]),
		})
	}

	categories := make([]CategoryTotal, 0, len(models.ContributionCategories))
	for _, category := range models.ContributionCategories {
		categories = append(categories, CategoryTotal{
			Category: category,
			Total:    categoryTotals[category],
		})
	}

	return &YearlyStatement{
		Year:               year,
		TotalContributions: totalContributions,
		TotalExpenses:      totalExpenses,
		NetTotal:           totalContributions.Sub(totalExpenses),
		Categories:         categories,
		Months:             months,
	}, nil
}
