package usecase_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iho/opsledger/internal/adapter/repository/memory"
	"github.com/iho/opsledger/internal/domain"
	"github.com/iho/opsledger/internal/usecase"
	"github.com/iho/opsledger/internal/usecase/mocks"
)

var (
	clerk   = domain.Actor{EmployeeID: "emp-1", Role: domain.RoleOperator}
	manager = domain.Actor{EmployeeID: "emp-2", Role: domain.RoleOperator}
	admin   = domain.Actor{EmployeeID: "admin-1", Role: domain.RoleAdmin}
	auditor = domain.Actor{EmployeeID: "emp-9", Role: domain.RoleViewer}

	fixedNow = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ptr[T any](v T) *T {
	return &v
}

// prefixedIDs issues PREFIX-1, PREFIX-2, ...
func prefixedIDs(prefix string) *mocks.MockIDGenerator {
	var n atomic.Int64
	return &mocks.MockIDGenerator{GenerateFunc: func() string {
		return fmt.Sprintf("%s-%d", prefix, n.Add(1))
	}}
}

type fixture struct {
	store      *memory.Store
	directory  *memory.EmployeeDirectory
	references *memory.ReferenceDirectory
	audit      *memory.AuditRepository
	outbox     *memory.OutboxRepository

	entryRepo     *memory.LedgerEntryRepository
	vendorRepo    *memory.VendorPaymentRepository
	liabilityRepo *memory.LiabilityRepository
	salaryRepo    *memory.SalaryRepository

	approvals      *usecase.ApprovalUseCase
	ledger         *usecase.LedgerUseCase
	vendors        *usecase.VendorPaymentUseCase
	liabilities    *usecase.LiabilityUseCase
	salaries       *usecase.SalaryUseCase
	reconciliation *usecase.ReconciliationUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	directory := memory.NewEmployeeDirectory(
		domain.Employee{ID: "emp-1", Name: "Asha Rao", Role: "Accountant", Level: 1, Active: true},
		domain.Employee{ID: "emp-2", Name: "Ravi Iyer", Role: "Finance Manager", Level: 2, Active: true},
		domain.Employee{ID: "emp-3", Name: "Meera Das", Role: "Finance Manager", Level: 2, Active: false},
		domain.Employee{ID: "emp-4", Name: "Karan Shah", Role: "CFO", Level: 3, Active: true},
	)
	references := memory.NewReferenceDirectory()
	sequences := memory.NewSequenceGenerator()
	idGen := prefixedIDs("id")
	logger := zerolog.Nop()

	f := &fixture{
		store:         store,
		directory:     directory,
		references:    references,
		audit:         memory.NewAuditRepository(store),
		outbox:        memory.NewOutboxRepository(store),
		entryRepo:     memory.NewLedgerEntryRepository(store),
		vendorRepo:    memory.NewVendorPaymentRepository(store),
		liabilityRepo: memory.NewLiabilityRepository(store),
		salaryRepo:    memory.NewSalaryRepository(store),
	}
	approvalRepo := memory.NewApprovalRepository(store)

	f.approvals = usecase.NewApprovalUseCase(store, approvalRepo, f.outbox, f.audit,
		directory, sequences, idGen, nil, 72*time.Hour, nil, logger)
	f.ledger = usecase.NewLedgerUseCase(store, usecase.LedgerRepositories{
		Entries:        f.entryRepo,
		Approvals:      approvalRepo,
		VendorPayments: f.vendorRepo,
		Liabilities:    f.liabilityRepo,
		Salaries:       f.salaryRepo,
		Outbox:         f.outbox,
		Audit:          f.audit,
	}, references, prefixedIDs("TXN"), idGen, nil, dec(usecase.DefaultLargeEntryThreshold), nil, logger)
	f.vendors = usecase.NewVendorPaymentUseCase(store, f.vendorRepo, f.outbox, f.audit,
		sequences, idGen, nil, nil, logger)
	f.liabilities = usecase.NewLiabilityUseCase(store, f.liabilityRepo, approvalRepo, f.outbox, f.audit,
		sequences, idGen, domain.FlatMultiplierPolicy{Factor: domain.DefaultFlatMultiplier}, nil, nil, logger)
	f.salaries = usecase.NewSalaryUseCase(store, f.salaryRepo, f.outbox, f.audit,
		directory, sequences, idGen, nil, nil, logger)
	f.reconciliation = usecase.NewReconciliationUseCase(f.entryRepo, f.vendorRepo, f.liabilityRepo, f.salaryRepo, nil, logger)

	return f
}

// approved creates a request from clerk to manager and accepts it.
func (f *fixture) approved(t *testing.T, category domain.ApprovalCategory) *domain.ApprovalRequest {
	t.Helper()
	return f.approvedUpTo(t, category, "1000000")
}

func (f *fixture) approvedUpTo(t *testing.T, category domain.ApprovalCategory, maxExpense string) *domain.ApprovalRequest {
	t.Helper()
	a := f.pendingUpTo(t, category, maxExpense)
	decided, err := f.approvals.Decide(context.Background(), manager, usecase.DecideInput{
		ApprovalID: a.ID,
		Action:     domain.ApprovalActionAccept,
	})
	require.NoError(t, err)
	return decided
}

func (f *fixture) pending(t *testing.T, category domain.ApprovalCategory) *domain.ApprovalRequest {
	t.Helper()
	return f.pendingUpTo(t, category, "1000000")
}

func (f *fixture) pendingUpTo(t *testing.T, category domain.ApprovalCategory, maxExpense string) *domain.ApprovalRequest {
	t.Helper()
	a, err := f.approvals.CreateApproval(context.Background(), clerk, usecase.CreateApprovalInput{
		Category:      category,
		ApproverID:    "emp-2",
		MinExpense:    dec("0"),
		MaxExpense:    dec(maxExpense),
		Priority:      domain.PriorityMedium,
		TentativeDate: fixedNow.AddDate(0, 1, 0),
		Reason:        "quarterly payout",
	})
	require.NoError(t, err)
	return a
}

// vendorPayment opens a USD 100 at 83.25 payment, INR 8325.
func (f *fixture) vendorPayment(t *testing.T) *domain.VendorPaymentAccount {
	t.Helper()
	v, err := f.vendors.CreateVendorPayment(context.Background(), clerk, usecase.CreateVendorPaymentInput{
		VendorID:               "vendor-acme",
		Currency:               "USD",
		AmountInVendorCurrency: dec("100"),
		ExchangeRateToINR:      dec("83.25"),
		DueDate:                fixedNow.AddDate(0, 1, 0),
	})
	require.NoError(t, err)
	return v
}

func (f *fixture) entry(t *testing.T, amount string, ref domain.Reference, approvalID *string) *domain.LedgerEntry {
	t.Helper()
	e, err := f.ledger.CreateEntry(context.Background(), clerk, entryInput(amount, ref, approvalID))
	require.NoError(t, err)
	return e
}

func entryInput(amount string, ref domain.Reference, approvalID *string) usecase.CreateEntryInput {
	return usecase.CreateEntryInput{
		Category:      domain.EntryCategoryPurchase,
		Amount:        dec(amount),
		DebitAccount:  "2100 Accounts Payable",
		CreditAccount: "1000 Cash",
		Narration:     "settlement",
		Reference:     ref,
		ApprovalID:    approvalID,
	}
}

func (f *fixture) auditActions(t *testing.T, resourceID string) []string {
	t.Helper()
	logs, err := f.audit.List(context.Background(), domain.AuditFilter{ResourceID: resourceID})
	require.NoError(t, err)
	actions := make([]string, 0, len(logs))
	for i := len(logs) - 1; i >= 0; i-- {
		actions = append(actions, logs[i].Action)
	}
	return actions
}
