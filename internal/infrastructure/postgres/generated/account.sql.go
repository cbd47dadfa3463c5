package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

const createLiability = `-- name: CreateLiability :exec
INSERT INTO liabilities (id, name, lender, principal, interest_type, interest_rate, total_payable, opening_paid, paid_amount, approval_id, version, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
`

type CreateLiabilityParams struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Lender       string             `json:"lender"`
	Principal    pgtype.Numeric     `json:"principal"`
	InterestType string             `json:"interest_type"`
	InterestRate pgtype.Numeric     `json:"interest_rate"`
	TotalPayable pgtype.Numeric     `json:"total_payable"`
	OpeningPaid  pgtype.Numeric     `json:"opening_paid"`
	PaidAmount   pgtype.Numeric     `json:"paid_amount"`
	ApprovalID   string             `json:"approval_id"`
	Version      int64              `json:"version"`
	CreatedAt    pgtype.Timestamptz `json:"created_at"`
	UpdatedAt    pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) CreateLiability(ctx context.Context, arg CreateLiabilityParams) error {
	_, err := q.db.Exec(ctx, createLiability,
		arg.ID,
		arg.Name,
		arg.Lender,
		arg.Principal,
		arg.InterestType,
		arg.InterestRate,
		arg.TotalPayable,
		arg.OpeningPaid,
		arg.PaidAmount,
		arg.ApprovalID,
		arg.Version,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const createSalary = `-- name: CreateSalary :exec
INSERT INTO salaries (id, employee_id, base_salary, bonus, deduction, payment_status, pay_month, transaction_id, version, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`

type CreateSalaryParams struct {
	ID            string             `json:"id"`
	EmployeeID    string             `json:"employee_id"`
	BaseSalary    pgtype.Numeric     `json:"base_salary"`
	Bonus         pgtype.Numeric     `json:"bonus"`
	Deduction     pgtype.Numeric     `json:"deduction"`
	PaymentStatus string             `json:"payment_status"`
	PayMonth      pgtype.Timestamptz `json:"pay_month"`
	TransactionID pgtype.Text        `json:"transaction_id"`
	Version       int64              `json:"version"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
	UpdatedAt     pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) CreateSalary(ctx context.Context, arg CreateSalaryParams) error {
	_, err := q.db.Exec(ctx, createSalary,
		arg.ID,
		arg.EmployeeID,
		arg.BaseSalary,
		arg.Bonus,
		arg.Deduction,
		arg.PaymentStatus,
		arg.PayMonth,
		arg.TransactionID,
		arg.Version,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const createVendorPayment = `-- name: CreateVendorPayment :exec
INSERT INTO vendor_payments (id, vendor_id, currency, amount_in_vendor_currency, exchange_rate_to_inr, paid_amount, due_date, version, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`

type CreateVendorPaymentParams struct {
	ID                     string             `json:"id"`
	VendorID               string             `json:"vendor_id"`
	Currency               string             `json:"currency"`
	AmountInVendorCurrency pgtype.Numeric     `json:"amount_in_vendor_currency"`
	ExchangeRateToInr      pgtype.Numeric     `json:"exchange_rate_to_inr"`
	PaidAmount             pgtype.Numeric     `json:"paid_amount"`
	DueDate                pgtype.Timestamptz `json:"due_date"`
	Version                int64              `json:"version"`
	CreatedAt              pgtype.Timestamptz `json:"created_at"`
	UpdatedAt              pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) CreateVendorPayment(ctx context.Context, arg CreateVendorPaymentParams) error {
	_, err := q.db.Exec(ctx, createVendorPayment,
		arg.ID,
		arg.VendorID,
		arg.Currency,
		arg.AmountInVendorCurrency,
		arg.ExchangeRateToInr,
		arg.PaidAmount,
		arg.DueDate,
		arg.Version,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const getLiabilityByID = `-- name: GetLiabilityByID :one
SELECT id, name, lender, principal, interest_type, interest_rate, total_payable, opening_paid, paid_amount, approval_id, version, created_at, updated_at FROM liabilities WHERE id = $1
`

func (q *Queries) GetLiabilityByID(ctx context.Context, id string) (Liability, error) {
	row := q.db.QueryRow(ctx, getLiabilityByID, id)
	var i Liability
	err := row.Scan(
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
	return i, err
}

const getLiabilityByIDForUpdate = `-- name: GetLiabilityByIDForUpdate :one
SELECT id, name, lender, principal, interest_type, interest_rate, total_payable, opening_paid, paid_amount, approval_id, version, created_at, updated_at FROM liabilities WHERE id = $1 FOR UPDATE
`

func (q *Queries) GetLiabilityByIDForUpdate(ctx context.Context, id string) (Liability, error) {
	row := q.db.QueryRow(ctx, getLiabilityByIDForUpdate, id)
	var i Liability
	err := row.Scan(
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
	return i, err
}

const getSalaryByID = `-- name: GetSalaryByID :one
SELECT id, employee_id, base_salary, bonus, deduction, payment_status, pay_month, transaction_id, version, created_at, updated_at FROM salaries WHERE id = $1
`

func (q *Queries) GetSalaryByID(ctx context.Context, id string) (Salary, error) {
	row := q.db.QueryRow(ctx, getSalaryByID, id)
	var i Salary
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

const getSalaryByIDForUpdate = `-- name: GetSalaryByIDForUpdate :one
SELECT id, employee_id, base_salary, bonus, deduction, payment_status, pay_month, transaction_id, version, created_at, updated_at FROM salaries WHERE id = $1 FOR UPDATE
`

func (q *Queries) GetSalaryByIDForUpdate(ctx context.Context, id string) (Salary, error) {
	row := q.db.QueryRow(ctx, getSalaryByIDForUpdate, id)
	var i Salary
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

const getVendorPaymentByID = `-- name: GetVendorPaymentByID :one
SELECT id, vendor_id, currency, amount_in_vendor_currency, exchange_rate_to_inr, paid_amount, due_date, version, created_at, updated_at FROM vendor_payments WHERE id = $1
`

func (q *Queries) GetVendorPaymentByID(ctx context.Context, id string) (VendorPayment, error) {
	row := q.db.QueryRow(ctx, getVendorPaymentByID, id)
	var i VendorPayment
	err := row.Scan(
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
	return i, err
}

const getVendorPaymentByIDForUpdate = `-- name: GetVendorPaymentByIDForUpdate :one
SELECT id, vendor_id, currency, amount_in_vendor_currency, exchange_rate_to_inr, paid_amount, due_date, version, created_at, updated_at FROM vendor_payments WHERE id = $1 FOR UPDATE
`

func (q *Queries) GetVendorPaymentByIDForUpdate(ctx context.Context, id string) (VendorPayment, error) {
	row := q.db.QueryRow(ctx, getVendorPaymentByIDForUpdate, id)
	var i VendorPayment
	err := row.Scan(
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
	return i, err
}

const updateLiabilityPaid = `-- name: UpdateLiabilityPaid :execresult
UPDATE liabilities
SET paid_amount = $3, updated_at = $4, version = version + 1
WHERE id = $1 AND version = $2
`

type UpdateLiabilityPaidParams struct {
	ID         string             `json:"id"`
	Version    int64              `json:"version"`
	PaidAmount pgtype.Numeric     `json:"paid_amount"`
	UpdatedAt  pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) UpdateLiabilityPaid(ctx context.Context, arg UpdateLiabilityPaidParams) (pgconn.CommandTag, error) {
	return q.db.Exec(ctx, updateLiabilityPaid,
		arg.ID,
		arg.Version,
		arg.PaidAmount,
		arg.UpdatedAt,
	)
}

const updateSalary = `-- name: UpdateSalary :execresult
UPDATE salaries
SET base_salary = $3, bonus = $4, deduction = $5, payment_status = $6, transaction_id = $7, updated_at = $8, version = version + 1
WHERE id = $1 AND version = $2
`

type UpdateSalaryParams struct {
	ID            string             `json:"id"`
	Version       int64              `json:"version"`
	BaseSalary    pgtype.Numeric     `json:"base_salary"`
	Bonus         pgtype.Numeric     `json:"bonus"`
	Deduction     pgtype.Numeric     `json:"deduction"`
	PaymentStatus string             `json:"payment_status"`
	TransactionID pgtype.Text        `json:"transaction_id"`
	UpdatedAt     pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) UpdateSalary(ctx context.Context, arg UpdateSalaryParams) (pgconn.CommandTag, error) {
	return q.db.Exec(ctx, updateSalary,
		arg.ID,
		arg.Version,
		arg.BaseSalary,
		arg.Bonus,
		arg.Deduction,
		arg.PaymentStatus,
		arg.TransactionID,
		arg.UpdatedAt,
	)
}

const updateVendorPayment = `-- name: UpdateVendorPayment :execresult
UPDATE vendor_payments
SET amount_in_vendor_currency = $3, exchange_rate_to_inr = $4, paid_amount = $5, updated_at = $6, version = version + 1
WHERE id = $1 AND version = $2
`

type UpdateVendorPaymentParams struct {
	ID                     string             `json:"id"`
	Version                int64              `json:"version"`
	AmountInVendorCurrency pgtype.Numeric     `json:"amount_in_vendor_currency"`
	ExchangeRateToInr      pgtype.Numeric     `json:"exchange_rate_to_inr"`
	PaidAmount             pgtype.Numeric     `json:"paid_amount"`
	UpdatedAt              pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) UpdateVendorPayment(ctx context.Context, arg UpdateVendorPaymentParams) (pgconn.CommandTag, error) {
	return q.db.Exec(ctx, updateVendorPayment,
		arg.ID,
		arg.Version,
		arg.AmountInVendorCurrency,
		arg.ExchangeRateToInr,
		arg.PaidAmount,
		arg.UpdatedAt,
	)
}
