package postgres

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/iho/opsledger/internal/domain"
)

const (
	pgErrUniqueViolation = "23505"
	pgErrCheckViolation  = "23514"
)

// Type conversion helpers.
func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric

	_ = n.Scan(d.String())

	return n
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}

	return decimal.NewFromBigInt(n.Int, n.Exp)
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func optionalTimestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return timeToPgTimestamptz(*t)
}

func timestamptzPtr(ts pgtype.Timestamptz) *time.Time {
	if !ts.Valid {
		return nil
	}
	t := ts.Time
	return &t
}

func optionalText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}

// readError maps a missing row to notFound.
func readError(err error, notFound error, id string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s", notFound, id)
	}
	return err
}

// writeError maps a unique violation to domain.ErrConflict and the paid
// ceiling checks to domain.ErrOverPayment.
func writeError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch {
	case pgErr.Code == pgErrUniqueViolation:
		return fmt.Errorf("%w: %s", domain.ErrConflict, pgErr.ConstraintName)
	case pgErr.Code == pgErrCheckViolation && paidCeilingConstraints[pgErr.ConstraintName]:
		return fmt.Errorf("%w: %s", domain.ErrOverPayment, pgErr.ConstraintName)
	}
	return err
}

var paidCeilingConstraints = map[string]bool{
	"vendor_payments_paid_within_total": true,
	"liabilities_paid_amount_check":     true,
}

// versioned checks a `WHERE id = $1 AND version = $2` update touched a row.
func versioned(tag pgconn.CommandTag, err error, kind, id string) error {
	if err != nil {
		return writeError(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s %s was modified concurrently", domain.ErrConflict, kind, id)
	}
	return nil
}

// filter accumulates AND-ed conditions with numbered placeholders.
type filter struct {
	conds []string
	args  []any
}

func (f *filter) eq(column string, value any) {
	f.args = append(f.args, value)
	f.conds = append(f.conds, column+" = $"+strconv.Itoa(len(f.args)))
}

func (f *filter) op(column, operator string, value any) {
	f.args = append(f.args, value)
	f.conds = append(f.conds, column+" "+operator+" $"+strconv.Itoa(len(f.args)))
}

// where renders the WHERE clause, or nothing when no condition was added.
func (f *filter) where() string {
	if len(f.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.conds, " AND ")
}

// page renders LIMIT/OFFSET for positive values.
func (f *filter) page(limit, offset int) string {
	var b strings.Builder
	if limit > 0 {
		f.args = append(f.args, limit)
		b.WriteString(" LIMIT $" + strconv.Itoa(len(f.args)))
	}
	if offset > 0 {
		f.args = append(f.args, offset)
		b.WriteString(" OFFSET $" + strconv.Itoa(len(f.args)))
	}
	return b.String()
}
