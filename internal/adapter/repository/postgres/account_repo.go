package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/iho/opsledger/internal/domain"
	"github.com/iho/opsledger/internal/infrastructure/postgres/generated"
	"github.com/iho/opsledger/internal/usecase"
)

const vendorPaymentColumns = `id, vendor_id, currency, amount_in_vendor_currency, exchange_rate_to_inr,
	paid_amount, due_date, version, created_at, updated_at`

// VendorPaymentRepository implements usecase.VendorPaymentRepository.
type VendorPaymentRepository struct {
	pool    Pool
	queries *generated.Queries
}

// NewVendorPaymentRepository creates a new VendorPaymentRepository.
func NewVendorPaymentRepository(pool Pool) *VendorPaymentRepository {
	return &VendorPaymentRepository{
		pool:    pool,
		queries: generated.New(pool),
	}
}

// Create creates a new vendor payment account within a transaction.
func (r *VendorPaymentRepository) Create(ctx context.Context, tx usecase.Transaction, v *domain.VendorPaymentAccount) error {
	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	err = queries.CreateVendorPayment(ctx, generated.CreateVendorPaymentParams{
		ID:                     v.ID,
		VendorID:               v.VendorID,
		Currency:               v.Currency,
		AmountInVendorCurrency: decimalToNumeric(v.AmountInVendorCurrency),
		ExchangeRateToInr:      decimalToNumeric(v.ExchangeRateToINR),
		PaidAmount:             decimalToNumeric(v.PaidAmount),
		DueDate:                timeToPgTimestamptz(v.DueDate),
		Version:                v.Version,
		CreatedAt:              timeToPgTimestamptz(v.CreatedAt),
		UpdatedAt:              timeToPgTimestamptz(v.UpdatedAt),
	})

	return writeError(err)
}

// GetByID retrieves a vendor payment account by ID.
func (r *VendorPaymentRepository) GetByID(ctx context.Context, id string) (*domain.VendorPaymentAccount, error) {
	row, err := r.queries.GetVendorPaymentByID(ctx, id)
	if err != nil {
		return nil, readError(err, domain.ErrVendorPaymentNotFound, id)
	}
	return rowToVendorPayment(row), nil
}

// GetByIDForUpdate retrieves a vendor payment account by ID with a FOR UPDATE lock.
func (r *VendorPaymentRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.VendorPaymentAccount, error) {
	queries, err := txQueries(tx)
	if err != nil {
		return nil, err
	}

	row, err := queries.GetVendorPaymentByIDForUpdate(ctx, id)
	if err != nil {
		return nil, readError(err, domain.ErrVendorPaymentNotFound, id)
	}
	return rowToVendorPayment(row), nil
}

// Update writes conversion inputs and paid amount if the version still matches.
func (r *VendorPaymentRepository) Update(ctx context.Context, tx usecase.Transaction, v *domain.VendorPaymentAccount) error {
	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	tag, err := queries.UpdateVendorPayment(ctx, generated.UpdateVendorPaymentParams{
		ID:                     v.ID,
		Version:                v.Version,
		AmountInVendorCurrency: decimalToNumeric(v.AmountInVendorCurrency),
		ExchangeRateToInr:      decimalToNumeric(v.ExchangeRateToINR),
		PaidAmount:             decimalToNumeric(v.PaidAmount),
		UpdatedAt:              timeToPgTimestamptz(v.UpdatedAt),
	})
	if err := versioned(tag, err, "vendor payment", v.ID); err != nil {
		return err
	}

	v.Version++
	return nil
}

// List lists vendor payment accounts with pagination, newest first.
func (r *VendorPaymentRepository) List(ctx context.Context, limit, offset int) ([]*domain.VendorPaymentAccount, error) {
	var w filter
	query := `SELECT ` + vendorPaymentColumns + ` FROM vendor_payments ORDER BY created_at DESC, id DESC` +
		w.page(limit, offset)

	rows, err := r.pool.Query(ctx, query, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := make([]*domain.VendorPaymentAccount, 0)
	for rows.Next() {
		var i generated.VendorPayment
		err := rows.Scan(
			&i.ID,
			&i.VendorID,
			&i.Currency,
			&i.AmountInVendorCurrency,
			&i.ExchangeRateToInr,
			&i.PaidAmount,
			&i.DueDate,
			&i.Version,
			&i.CreatedAt,
			&i.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, rowToVendorPayment(i))
	}

	return accounts, rows.Err()
}

func rowToVendorPayment(row generated.VendorPayment) *domain.VendorPaymentAccount {
	return &domain.VendorPaymentAccount{
		ID:                     row.ID,
		VendorID:               row.VendorID,
		Currency:               row.Currency,
		AmountInVendorCurrency: numericToDecimal(row.AmountInVendorCurrency),
		ExchangeRateToINR:      numericToDecimal(row.ExchangeRateToInr),
		PaidAmount:             numericToDecimal(row.PaidAmount),
		DueDate:                row.DueDate.Time,
		Version:                row.Version,
		CreatedAt:              row.CreatedAt.Time,
		UpdatedAt:              row.UpdatedAt.Time,
	}
}

const liabilityColumns = `id, name, lender, principal, interest_type, interest_rate, total_payable,
	opening_paid, paid_amount, approval_id, version, created_at, updated_at`

// LiabilityRepository implements usecase.LiabilityRepository.
type LiabilityRepository struct {
	pool    Pool
	queries *generated.Queries
}

// NewLiabilityRepository creates a new LiabilityRepository.
func NewLiabilityRepository(pool Pool) *LiabilityRepository {
	return &LiabilityRepository{
		pool:    pool,
		queries: generated.New(pool),
	}
}

// Create creates a new liability account within a transaction.
func (r *LiabilityRepository) Create(ctx context.Context, tx usecase.Transaction, l *domain.LiabilityAccount) error {
	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	err = queries.CreateLiability(ctx, generated.CreateLiabilityParams{
		ID:           l.ID,
		Name:         l.Name,
		Lender:       l.Lender,
		Principal:    decimalToNumeric(l.Principal),
		InterestType: string(l.InterestType),
		InterestRate: decimalToNumeric(l.InterestRate),
		TotalPayable: decimalToNumeric(l.TotalPayable),
		OpeningPaid:  decimalToNumeric(l.OpeningPaid),
		PaidAmount:   decimalToNumeric(l.PaidAmount),
		ApprovalID:   l.ApprovalID,
		Version:      l.Version,
		CreatedAt:    timeToPgTimestamptz(l.CreatedAt),
		UpdatedAt:    timeToPgTimestamptz(l.UpdatedAt),
	})

	return writeError(err)
}

// GetByID retrieves a liability account by ID.
func (r *LiabilityRepository) GetByID(ctx context.Context, id string) (*domain.LiabilityAccount, error) {
	row, err := r.queries.GetLiabilityByID(ctx, id)
	if err != nil {
		return nil, readError(err, domain.ErrLiabilityNotFound, id)
	}
	return rowToLiability(row), nil
}

// GetByIDForUpdate retrieves a liability account by ID with a FOR UPDATE lock.
func (r *LiabilityRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.LiabilityAccount, error) {
	queries, err := txQueries(tx)
	if err != nil {
		return nil, err
	}

	row, err := queries.GetLiabilityByIDForUpdate(ctx, id)
	if err != nil {
		return nil, readError(err, domain.ErrLiabilityNotFound, id)
	}
	return rowToLiability(row), nil
}

// Update writes the paid amount if the version still matches. The terms of
// a liability never change after it is opened.
func (r *LiabilityRepository) Update(ctx context.Context, tx usecase.Transaction, l *domain.LiabilityAccount) error {
	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	tag, err := queries.UpdateLiabilityPaid(ctx, generated.UpdateLiabilityPaidParams{
		ID:         l.ID,
		Version:    l.Version,
		PaidAmount: decimalToNumeric(l.PaidAmount),
		UpdatedAt:  timeToPgTimestamptz(l.UpdatedAt),
	})
	if err := versioned(tag, err, "liability", l.ID); err != nil {
		return err
	}

	l.Version++
	return nil
}

// List lists liability accounts with pagination, newest first.
func (r *LiabilityRepository) List(ctx context.Context, limit, offset int) ([]*domain.LiabilityAccount, error) {
	var w filter
	query := `SELECT ` + liabilityColumns + ` FROM liabilities ORDER BY created_at DESC, id DESC` +
		w.page(limit, offset)

	rows, err := r.pool.Query(ctx, query, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := make([]*domain.LiabilityAccount, 0)
	for rows.Next() {
		var i generated.Liability
		err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.Lender,
			&i.Principal,
			&i.InterestType,
			&i.InterestRate,
			&i.TotalPayable,
			&i.OpeningPaid,
			&i.PaidAmount,
			&i.ApprovalID,
			&i.Version,
			&i.CreatedAt,
			&i.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, rowToLiability(i))
	}

	return accounts, rows.Err()
}

func rowToLiability(row generated.Liability) *domain.LiabilityAccount {
	return &domain.LiabilityAccount{
		ID:           row.ID,
		Name:         row.Name,
		Lender:       row.Lender,
		Principal:    numericToDecimal(row.Principal),
		InterestType: domain.InterestType(row.InterestType),
		InterestRate: numericToDecimal(row.InterestRate),
		TotalPayable: numericToDecimal(row.TotalPayable),
		OpeningPaid:  numericToDecimal(row.OpeningPaid),
		PaidAmount:   numericToDecimal(row.PaidAmount),
		ApprovalID:   row.ApprovalID,
		Version:      row.Version,
		CreatedAt:    row.CreatedAt.Time,
		UpdatedAt:    row.UpdatedAt.Time,
	}
}

const salaryColumns = `id, employee_id, base_salary, bonus, deduction, payment_status, pay_month,
	transaction_id, version, created_at, updated_at`

// SalaryRepository implements usecase.SalaryRepository.
type SalaryRepository struct {
	pool    Pool
	queries *generated.Queries
}

// NewSalaryRepository creates a new SalaryRepository.
func NewSalaryRepository(pool Pool) *SalaryRepository {
	return &SalaryRepository{
		pool:    pool,
		queries: generated.New(pool),
	}
}

// Create creates a new salary record within a transaction.
func (r *SalaryRepository) Create(ctx context.Context, tx usecase.Transaction, s *domain.SalaryRecord) error {
	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	err = queries.CreateSalary(ctx, generated.CreateSalaryParams{
		ID:            s.ID,
		EmployeeID:    s.EmployeeID,
		BaseSalary:    decimalToNumeric(s.Components.Base),
		Bonus:         decimalToNumeric(s.Components.Bonus),
		Deduction:     decimalToNumeric(s.Components.Deduction),
		PaymentStatus: string(s.PaymentStatus),
		PayMonth:      timeToPgTimestamptz(s.PayMonth),
		TransactionID: optionalText(s.TransactionID),
		Version:       s.Version,
		CreatedAt:     timeToPgTimestamptz(s.CreatedAt),
		UpdatedAt:     timeToPgTimestamptz(s.UpdatedAt),
	})

	return writeError(err)
}

// GetByID retrieves a salary record by ID.
func (r *SalaryRepository) GetByID(ctx context.Context, id string) (*domain.SalaryRecord, error) {
	row, err := r.queries.GetSalaryByID(ctx, id)
	if err != nil {
		return nil, readError(err, domain.ErrSalaryNotFound, id)
	}
	return rowToSalary(row), nil
}

// GetByIDForUpdate retrieves a salary record by ID with a FOR UPDATE lock.
func (r *SalaryRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.SalaryRecord, error) {
	queries, err := txQueries(tx)
	if err != nil {
		return nil, err
	}

	row, err := queries.GetSalaryByIDForUpdate(ctx, id)
	if err != nil {
		return nil, readError(err, domain.ErrSalaryNotFound, id)
	}
	return rowToSalary(row), nil
}

// Update writes components and payout state if the version still matches.
func (r *SalaryRepository) Update(ctx context.Context, tx usecase.Transaction, s *domain.SalaryRecord) error {
	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	tag, err := queries.UpdateSalary(ctx, generated.UpdateSalaryParams{
		ID:            s.ID,
		Version:       s.Version,
		BaseSalary:    decimalToNumeric(s.Components.Base),
		Bonus:         decimalToNumeric(s.Components.Bonus),
		Deduction:     decimalToNumeric(s.Components.Deduction),
		PaymentStatus: string(s.PaymentStatus),
		TransactionID: optionalText(s.TransactionID),
		UpdatedAt:     timeToPgTimestamptz(s.UpdatedAt),
	})
	if err := versioned(tag, err, "salary", s.ID); err != nil {
		return err
	}

	s.Version++
	return nil
}

// List returns salary records matching filter, newest first.
func (r *SalaryRepository) List(ctx context.Context, f domain.SalaryFilter) ([]*domain.SalaryRecord, error) {
	var w filter
	if f.EmployeeID != "" {
		w.eq("employee_id", f.EmployeeID)
	}
	if f.PayMonth != nil {
		w.eq("pay_month", timeToPgTimestamptz(domain.PayMonthOf(*f.PayMonth)))
	}
	if f.Status != "" {
		w.eq("payment_status", string(f.Status))
	}

	query := `SELECT ` + salaryColumns + ` FROM salaries` + w.where() +
		` ORDER BY created_at DESC, id DESC` + w.page(f.Limit, f.Offset)

	rows, err := r.pool.Query(ctx, query, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]*domain.SalaryRecord, 0)
	for rows.Next() {
		row, err := scanSalaryRow(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rowToSalary(row))
	}

	return records, rows.Err()
}

func scanSalaryRow(row pgx.Row) (generated.Salary, error) {
	var i generated.Salary
	err := row.Scan(
		&i.ID,
		&i.EmployeeID,
		&i.BaseSalary,
		&i.Bonus,
		&i.Deduction,
		&i.PaymentStatus,
		&i.PayMonth,
		&i.TransactionID,
		&i.Version,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func rowToSalary(row generated.Salary) *domain.SalaryRecord {
	return &domain.SalaryRecord{
		ID:         row.ID,
		EmployeeID: row.EmployeeID,
		Components: domain.SalaryComponents{
			Base:      numericToDecimal(row.BaseSalary),
			Bonus:     numericToDecimal(row.Bonus),
			Deduction: numericToDecimal(row.Deduction),
		},
		PaymentStatus: domain.SalaryPaymentStatus(row.PaymentStatus),
		PayMonth:      row.PayMonth.Time.UTC(),
		TransactionID: textPtr(row.TransactionID),
		Version:       row.Version,
		CreatedAt:     row.CreatedAt.Time,
		UpdatedAt:     row.UpdatedAt.Time,
	}
}
