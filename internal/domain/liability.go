package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// InterestType declares how a liability accrues interest.
type InterestType string

const (
	InterestTypeFixed    InterestType = "Fixed"
	InterestTypeVariable InterestType = "Variable"
	InterestTypeNone     InterestType = "None"
)

// IsValid checks the interest type is known.
func (t InterestType) IsValid() bool {
	return t == InterestTypeFixed || t == InterestTypeVariable || t == InterestTypeNone
}

// InterestPolicy computes the total payable for a liability.
type InterestPolicy interface {
	TotalPayable(principal decimal.Decimal, interestType InterestType, rate decimal.Decimal) decimal.Decimal
}

// FlatMultiplierPolicy multiplies the principal by a fixed factor regardless
// of the declared interest terms.
type FlatMultiplierPolicy struct {
	Factor decimal.Decimal
}

// DefaultFlatMultiplier is the factor historically applied to every liability.
var DefaultFlatMultiplier = decimal.RequireFromString("1.16")

// TotalPayable implements InterestPolicy.
func (p FlatMultiplierPolicy) TotalPayable(principal decimal.Decimal, _ InterestType, _ decimal.Decimal) decimal.Decimal {
	return Round2(principal.Mul(p.Factor))
}

// DeclaredRatePolicy applies the liability's own rate, in percent, as simple
// interest over the term. None means principal only.
type DeclaredRatePolicy struct{}

var hundred = decimal.NewFromInt(100)

// TotalPayable implements InterestPolicy.
func (DeclaredRatePolicy) TotalPayable(principal decimal.Decimal, interestType InterestType, rate decimal.Decimal) decimal.Decimal {
	if interestType == InterestTypeNone {
		return Round2(principal)
	}
	return Round2(principal.Add(principal.Mul(rate).Div(hundred)))
}

// LiabilityAccount tracks a payable obligation. TotalPayable is fixed when the
// account is opened; Remaining is derived from it and PaidAmount. OpeningPaid
// is the amount already repaid before the account was recorded here.
type LiabilityAccount struct {
	ID           string
	Name         string
	Lender       string
	Principal    decimal.Decimal
	InterestType InterestType
	InterestRate decimal.Decimal
	TotalPayable decimal.Decimal
	OpeningPaid  decimal.Decimal
	PaidAmount   decimal.Decimal
	ApprovalID   string
	Version      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewLiabilityInput holds the caller supplied liability terms.
type NewLiabilityInput struct {
	ID           string
	Name         string
	Lender       string
	Principal    decimal.Decimal
	InterestType InterestType
	InterestRate *decimal.Decimal
	PaidAmount   decimal.Decimal
	Approval     *ApprovalRequest
}

// NewLiabilityAccount validates the terms, checks the backing approval and
// computes the total payable with policy.
func NewLiabilityAccount(in NewLiabilityInput, policy InterestPolicy, now time.Time) (*LiabilityAccount, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, NewFieldError("name", "required")
	}
	if err := ValidatePositiveMoney("principal", in.Principal); err != nil {
		return nil, err
	}
	if !in.InterestType.IsValid() {
		return nil, NewFieldError("interest_type", fmt.Sprintf("unknown interest type %q", in.InterestType))
	}

	rate := decimal.Zero
	if in.InterestType != InterestTypeNone {
		if in.InterestRate == nil {
			return nil, NewFieldError("interest_rate", "required unless interest type is None")
		}
		rate = *in.InterestRate
	} else if in.InterestRate != nil {
		rate = *in.InterestRate
	}
	if rate.IsNegative() {
		return nil, NewFieldError("interest_rate", "must not be negative")
	}
	if err := validateScaledRate("interest_rate", rate, InterestRateScale, interestRateLimit); err != nil {
		return nil, err
	}

	if in.Approval == nil {
		return nil, fmt.Errorf("%w: liability needs an approved request", ErrApprovalRequired)
	}
	if !in.Approval.IsApproved() || in.Approval.Category != ApprovalCategoryLiability {
		return nil, fmt.Errorf("%w: approval %s is %s %s, need Approved Liability",
			ErrApprovalRequired, in.Approval.ID, in.Approval.Status, in.Approval.Category)
	}
	if err := in.Approval.CoversAmount(in.Principal); err != nil {
		return nil, err
	}

	total := policy.TotalPayable(in.Principal, in.InterestType, rate)
	if total.GreaterThan(maxMoney) {
		return nil, NewFieldError("interest_rate", "total payable exceeds maximum amount "+MaxMoneyAmount)
	}
	if err := ValidateMoney("paid_amount", in.PaidAmount); err != nil {
		return nil, err
	}
	if in.PaidAmount.GreaterThan(total) {
		return nil, fmt.Errorf("%w: opening paid %s exceeds total payable %s", ErrOverPayment, in.PaidAmount, total)
	}

	return &LiabilityAccount{
		ID:           in.ID,
		Name:         strings.TrimSpace(in.Name),
		Lender:       in.Lender,
		Principal:    in.Principal,
		InterestType: in.InterestType,
		InterestRate: rate,
		TotalPayable: total,
		OpeningPaid:  in.PaidAmount,
		PaidAmount:   in.PaidAmount,
		ApprovalID:   in.Approval.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Remaining is TotalPayable minus PaidAmount.
func (l *LiabilityAccount) Remaining() decimal.Decimal {
	return outstanding(l.TotalPayable, l.PaidAmount)
}

// IsSettled reports whether nothing is left to pay.
func (l *LiabilityAccount) IsSettled() bool {
	return l.Remaining().IsZero()
}

// ApplyPayment adds a posted payment of delta.
func (l *LiabilityAccount) ApplyPayment(delta decimal.Decimal, at time.Time) error {
	if err := validateDelta(delta); err != nil {
		return err
	}
	return l.adjust(delta, at)
}

// ReversePayment undoes a previously applied payment of delta.
func (l *LiabilityAccount) ReversePayment(delta decimal.Decimal, at time.Time) error {
	if err := validateDelta(delta); err != nil {
		return err
	}
	return l.adjust(delta.Neg(), at)
}

func (l *LiabilityAccount) adjust(delta decimal.Decimal, at time.Time) error {
	paid, err := adjustPaid(l.PaidAmount, l.TotalPayable, delta)
	if err != nil {
		return err
	}
	l.PaidAmount = paid
	l.UpdatedAt = at
	return nil
}
