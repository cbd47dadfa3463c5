package domain

import "fmt"

// ReferenceKind names the variant of a Reference.
type ReferenceKind string

const (
	ReferenceKindSalary          ReferenceKind = "Salary"
	ReferenceKindLiability       ReferenceKind = "Liability"
	ReferenceKindVendorPayment   ReferenceKind = "VendorPayment"
	ReferenceKindAsset           ReferenceKind = "Asset"
	ReferenceKindService         ReferenceKind = "Service"
	ReferenceKindCustomerPayment ReferenceKind = "CustomerPayment"
)

// Reference identifies the record a ledger entry settles. The set of
// implementations is closed: only the types in this file satisfy it.
// A nil Reference means the entry settles nothing.
type Reference interface {
	Kind() ReferenceKind
	TargetID() string
	isReference()
}

// SalaryRef points at a SalaryRecord.
type SalaryRef struct{ SalaryID string }

// LiabilityRef points at a LiabilityAccount.
type LiabilityRef struct{ LiabilityID string }

// VendorPaymentRef points at a VendorPaymentAccount.
type VendorPaymentRef struct{ PaymentID string }

// AssetRef points at an asset purchase held outside this core.
type AssetRef struct{ ReferenceID string }

// ServiceRef points at a service purchase held outside this core.
type ServiceRef struct{ ReferenceID string }

// CustomerPaymentRef points at a customer payment held outside this core.
type CustomerPaymentRef struct{ PaymentID string }

func (SalaryRef) Kind() ReferenceKind          { return ReferenceKindSalary }
func (LiabilityRef) Kind() ReferenceKind       { return ReferenceKindLiability }
func (VendorPaymentRef) Kind() ReferenceKind   { return ReferenceKindVendorPayment }
func (AssetRef) Kind() ReferenceKind           { return ReferenceKindAsset }
func (ServiceRef) Kind() ReferenceKind         { return ReferenceKindService }
func (CustomerPaymentRef) Kind() ReferenceKind { return ReferenceKindCustomerPayment }

func (r SalaryRef) TargetID() string          { return r.SalaryID }
func (r LiabilityRef) TargetID() string       { return r.LiabilityID }
func (r VendorPaymentRef) TargetID() string   { return r.PaymentID }
func (r AssetRef) TargetID() string           { return r.ReferenceID }
func (r ServiceRef) TargetID() string         { return r.ReferenceID }
func (r CustomerPaymentRef) TargetID() string { return r.PaymentID }

func (SalaryRef) isReference()          {}
func (LiabilityRef) isReference()       {}
func (VendorPaymentRef) isReference()   {}
func (AssetRef) isReference()           {}
func (ServiceRef) isReference()         {}
func (CustomerPaymentRef) isReference() {}

// NewReference builds the variant for kind. An empty kind yields nil.
func NewReference(kind ReferenceKind, id string) (Reference, error) {
	if kind == "" {
		if id != "" {
			return nil, NewFieldError("reference_type", "required when reference_id is set")
		}
		return nil, nil
	}
	if id == "" {
		return nil, NewFieldError("reference_id", "required when reference_type is set")
	}

	switch kind {
	case ReferenceKindSalary:
		return SalaryRef{SalaryID: id}, nil
	case ReferenceKindLiability:
		return LiabilityRef{LiabilityID: id}, nil
	case ReferenceKindVendorPayment:
		return VendorPaymentRef{PaymentID: id}, nil
	case ReferenceKindAsset:
		return AssetRef{ReferenceID: id}, nil
	case ReferenceKindService:
		return ServiceRef{ReferenceID: id}, nil
	case ReferenceKindCustomerPayment:
		return CustomerPaymentRef{PaymentID: id}, nil
	default:
		return nil, NewFieldError("reference_type", fmt.Sprintf("unknown reference type %q", kind))
	}
}

// ApprovalCategoryFor returns the approval category that gates entries
// settling ref. ok is false when ref implies no particular category.
func ApprovalCategoryFor(ref Reference) (ApprovalCategory, bool) {
	switch ref.(type) {
	case SalaryRef:
		return ApprovalCategorySalary, true
	case LiabilityRef:
		return ApprovalCategoryLiability, true
	case VendorPaymentRef:
		return ApprovalCategoryVendorPayment, true
	case AssetRef:
		return ApprovalCategoryAsset, true
	case ServiceRef:
		return ApprovalCategoryService, true
	case CustomerPaymentRef:
		return ApprovalCategoryCustomerPayment, true
	default:
		return "", false
	}
}

// IsLedgerAccount reports whether ref targets an account whose balance this
// core maintains.
func IsLedgerAccount(ref Reference) bool {
	switch ref.(type) {
	case SalaryRef, LiabilityRef, VendorPaymentRef:
		return true
	default:
		return false
	}
}
