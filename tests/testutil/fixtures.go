package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	postgresRepo "github.com/iho/opsledger/internal/adapter/repository/postgres"
	"github.com/iho/opsledger/internal/domain"
	"github.com/iho/opsledger/internal/infrastructure/postgres"
	"github.com/iho/opsledger/internal/usecase"
)

// Operator and Manager are the seeded requester and approver.
var (
	Operator = domain.Actor{EmployeeID: "emp-1", Role: domain.RoleOperator}
	Manager  = domain.Actor{EmployeeID: "emp-2", Role: domain.RoleOperator}
)

// TestDB provides isolated test database connections.
type TestDB struct {
	Pool *pgxpool.Pool
	t    *testing.T
}

// NewTestDB migrates and connects to DATABASE_URL. The test is skipped
// when no database is configured.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set")
	}

	// Tests run from tests/integration or the repository root.
	migrationsPath := "../../migrations"
	if _, err := os.Stat(migrationsPath); os.IsNotExist(err) {
		migrationsPath = "migrations"
	}

	if err := postgres.NewMigrator(dbURL, migrationsPath, zerolog.Nop()).Up(); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, dbURL, 20, 2)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	return &TestDB{Pool: pool, t: t}
}

// Cleanup closes the database connection.
func (db *TestDB) Cleanup() {
	db.Pool.Close()
}

// TruncateAll removes all data and seeds the employee directory.
func (db *TestDB) TruncateAll(ctx context.Context) {
	db.t.Helper()

	_, err := db.Pool.Exec(ctx, `
		TRUNCATE TABLE ledger_entries, vendor_payments, liabilities, salaries,
			approval_requests, audit_logs, outbox_events, sequences,
			external_references, employees CASCADE;
	`)
	if err != nil {
		db.t.Fatalf("failed to truncate tables: %v", err)
	}

	_, err = db.Pool.Exec(ctx, `
		INSERT INTO employees (id, name, role, department, level, active) VALUES
			('emp-1', 'Asha Rao', 'Accountant', 'Finance', 1, TRUE),
			('emp-2', 'Ravi Iyer', 'Finance Manager', 'Finance', 2, TRUE),
			('emp-3', 'Karan Shah', 'CFO', 'Finance', 3, TRUE);
	`)
	if err != nil {
		db.t.Fatalf("failed to seed employees: %v", err)
	}
}

// AddExternalReference registers an asset, service or customer payment id.
func (db *TestDB) AddExternalReference(ctx context.Context, kind domain.ReferenceKind, id string) {
	db.t.Helper()

	if err := postgresRepo.NewReferenceDirectory(db.Pool).Register(ctx, kind, id); err != nil {
		db.t.Fatalf("failed to add external reference: %v", err)
	}
}

// Services wires every use case against the Postgres repositories.
type Services struct {
	Outbox         *postgresRepo.OutboxRepository
	Audit          *postgresRepo.AuditRepository
	Approvals      *usecase.ApprovalUseCase
	Ledger         *usecase.LedgerUseCase
	Vendors        *usecase.VendorPaymentUseCase
	Liabilities    *usecase.LiabilityUseCase
	Salaries       *usecase.SalaryUseCase
	Reconciliation *usecase.ReconciliationUseCase
}

// NewServices builds use cases with the default threshold and the flat
// liability interest policy.
func (db *TestDB) NewServices() *Services {
	pool := db.Pool
	logger := zerolog.Nop()

	txManager := postgresRepo.NewTxManager(pool)
	retrier := postgresRepo.NewRetrier(logger)
	idGen := postgresRepo.NewULIDGenerator()
	sequences := postgresRepo.NewSequenceGenerator(pool)
	directory := postgresRepo.NewEmployeeDirectory(pool)

	approvals := postgresRepo.NewApprovalRepository(pool)
	entries := postgresRepo.NewEntryRepository(pool)
	vendors := postgresRepo.NewVendorPaymentRepository(pool)
	liabilities := postgresRepo.NewLiabilityRepository(pool)
	salaries := postgresRepo.NewSalaryRepository(pool)

	s := &Services{
		Outbox: postgresRepo.NewOutboxRepository(pool),
		Audit:  postgresRepo.NewAuditRepository(pool),
	}

	s.Approvals = usecase.NewApprovalUseCase(txManager, approvals, s.Outbox, s.Audit,
		directory, sequences, idGen, retrier, 72*time.Hour, nil, logger)
	s.Ledger = usecase.NewLedgerUseCase(txManager, usecase.LedgerRepositories{
		Entries:        entries,
		Approvals:      approvals,
		VendorPayments: vendors,
		Liabilities:    liabilities,
		Salaries:       salaries,
		Outbox:         s.Outbox,
		Audit:          s.Audit,
	}, postgresRepo.NewReferenceDirectory(pool), postgresRepo.NewEntryIDGenerator(), idGen, retrier,
		decimal.RequireFromString(usecase.DefaultLargeEntryThreshold), nil, logger)
	s.Vendors = usecase.NewVendorPaymentUseCase(txManager, vendors, s.Outbox, s.Audit,
		sequences, idGen, retrier, nil, logger)
	s.Liabilities = usecase.NewLiabilityUseCase(txManager, liabilities, approvals, s.Outbox, s.Audit,
		sequences, idGen, domain.FlatMultiplierPolicy{Factor: domain.DefaultFlatMultiplier}, retrier, nil, logger)
	s.Salaries = usecase.NewSalaryUseCase(txManager, salaries, s.Outbox, s.Audit,
		directory, sequences, idGen, retrier, nil, logger)
	s.Reconciliation = usecase.NewReconciliationUseCase(entries, vendors, liabilities, salaries, nil, logger)

	return s
}

// CreateApproved raises a request from Operator to Manager and accepts it.
func (s *Services) CreateApproved(ctx context.Context, t *testing.T, category domain.ApprovalCategory) *domain.ApprovalRequest {
	t.Helper()

	pending := s.CreatePending(ctx, t, category)
	approved, err := s.Approvals.Decide(ctx, Manager, usecase.DecideInput{
		ApprovalID: pending.ID,
		Action:     domain.ApprovalActionAccept,
	})
	if err != nil {
		t.Fatalf("failed to accept approval: %v", err)
	}
	return approved
}

// CreatePending raises a Pending request from Operator to Manager.
func (s *Services) CreatePending(ctx context.Context, t *testing.T, category domain.ApprovalCategory) *domain.ApprovalRequest {
	t.Helper()

	a, err := s.Approvals.CreateApproval(ctx, Operator, usecase.CreateApprovalInput{
		Category:      category,
		ApproverID:    Manager.EmployeeID,
		MinExpense:    decimal.Zero,
		MaxExpense:    decimal.NewFromInt(1000000),
		Priority:      domain.PriorityMedium,
		TentativeDate: time.Now().UTC().AddDate(0, 1, 0),
		Reason:        "integration test",
	})
	if err != nil {
		t.Fatalf("failed to create approval: %v", err)
	}
	return a
}

// CreateVendorPayment opens a USD payment converted to INR.
func (s *Services) CreateVendorPayment(ctx context.Context, t *testing.T, amount, rate string) *domain.VendorPaymentAccount {
	t.Helper()

	v, err := s.Vendors.CreateVendorPayment(ctx, Operator, usecase.CreateVendorPaymentInput{
		VendorID:               "vendor-" + GenerateID(),
		Currency:               "USD",
		AmountInVendorCurrency: decimal.RequireFromString(amount),
		ExchangeRateToINR:      decimal.RequireFromString(rate),
		DueDate:                time.Now().UTC().AddDate(0, 1, 0),
	})
	if err != nil {
		t.Fatalf("failed to create vendor payment: %v", err)
	}
	return v
}

// CreateDraft records a Draft purchase entry against ref.
func (s *Services) CreateDraft(ctx context.Context, t *testing.T, amount string, ref domain.Reference, approvalID *string) *domain.LedgerEntry {
	t.Helper()

	e, err := s.Ledger.CreateEntry(ctx, Operator, usecase.CreateEntryInput{
		Category:      domain.EntryCategoryPurchase,
		Amount:        decimal.RequireFromString(amount),
		DebitAccount:  "2100 Accounts Payable",
		CreditAccount: "1000 Cash",
		Narration:     "integration test",
		Reference:     ref,
		ApprovalID:    approvalID,
	})
	if err != nil {
		t.Fatalf("failed to create entry: %v", err)
	}
	return e
}

// GenerateID generates a new ULID.
func GenerateID() string {
	return ulid.Make().String()
}
