package services

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"nja-ledger/internal/adapters/persistence/models"
	"nja-ledger/internal/adapters/persistence/repositories"
	"nja-ledger/internal/core/domain"
	"nja-ledger/internal/pkg/keyedmutex"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a per-test in-memory database. The cache=shared DSN
// keyed on the test name keeps connections within one test pointing at
// the same database while isolating tests from each other.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, models.AutoMigrate(db))
	return db
}

// fakeNotifier records notification calls for assertions
type fakeNotifier struct {
	mu              sync.Mutex
	memberApproved  []string
	withdrawalCalls int
	loanCalls       int
	loanCompleted   []string
}

func (f *fakeNotifier) MemberApproved(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.memberApproved = append(f.memberApproved, name)
}

func (f *fakeNotifier) WithdrawalDecided(memberName string, amount decimal.Decimal, status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.withdrawalCalls++
}

func (f *fakeNotifier) LoanDecided(memberName string, amount decimal.Decimal, status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loanCalls++
}

func (f *fakeNotifier) LoanCompleted(memberName string, amount decimal.Decimal) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loanCompleted = append(f.loanCompleted, memberName)
}

// env bundles the full service graph over one test database
type env struct {
	db *gorm.DB

	memberRepo     *repositories.MemberRepository
	contribRepo    *repositories.ContributionRepository
	withdrawalRepo *repositories.WithdrawalRepository
	loanRepo       *repositories.LoanRepository
	repayRepo      *repositories.LoanRepaymentRepository
	logRepo        *repositories.TransactionLogRepository

	notifier *fakeNotifier

	members       *MemberService
	contributions *ContributionService
	withdrawals   *WithdrawalService
	loans         *LoanService
	statements    *StatementService
}

func newEnv(t *testing.T) *env {
	t.Helper()

	db := newTestDB(t)
	e := &env{
		db:             db,
		memberRepo:     repositories.NewMemberRepository(db),
		contribRepo:    repositories.NewContributionRepository(db),
		withdrawalRepo: repositories.NewWithdrawalRepository(db),
		loanRepo:       repositories.NewLoanRepository(db),
		repayRepo:      repositories.NewLoanRepaymentRepository(db),
		logRepo:        repositories.NewTransactionLogRepository(db),
		notifier:       &fakeNotifier{},
	}

	locks := keyedmutex.New()
	e.members = NewMemberService(e.memberRepo, e.contribRepo, e.withdrawalRepo, e.notifier)
	e.contributions = NewContributionService(db, e.contribRepo, e.memberRepo, e.logRepo)
	e.withdrawals = NewWithdrawalService(db, e.withdrawalRepo, e.members, e.logRepo, e.notifier, locks)
	e.loans = NewLoanService(db, e.loanRepo, e.repayRepo, e.members, e.logRepo, e.notifier, locks)
	e.statements = NewStatementService(e.contribRepo, e.withdrawalRepo)
	return e
}

// seedMember inserts an active member directly
func (e *env) seedMember(t *testing.T, name, email, role string) *models.Member {
	t.Helper()

	member := &models.Member{
		Name:         name,
		Email:        email,
		PasswordHash: "x",
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, e.db.Create(member).Error)
	return member
}

// seedContribution inserts a contribution directly, bypassing the
// service-level permission check.
func (e *env) seedContribution(t *testing.T, memberID uint, amount string, date time.Time, category string) *models.Contribution {
	t.Helper()

	contribution := &models.Contribution{
		MemberID: memberID,
		Amount:   decimal.RequireFromString(amount),
		Date:     date,
		Category: category,
	}
	require.NoError(t, e.db.Create(contribution).Error)
	return contribution
}

func adminActor(m *models.Member) domain.Actor {
	return domain.NewActor(m.ID, m.Name, domain.Role(m.Role))
}

func memberActor(m *models.Member) domain.Actor {
	return domain.NewActor(m.ID, m.Name, domain.RoleMember)
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	return decimal.RequireFromString(s)
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
