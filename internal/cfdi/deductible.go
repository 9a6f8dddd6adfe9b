package cfdi

import (
	"github.com/shopspring/decimal"

	"cfdibox/internal/domain"
)

// DeductPolicy is the deductibility rule expressed as data. It encodes a
// business policy, not a law: the threshold, the cash payment-form code,
// and the excluded-usage set are all caller-overridable.
type DeductPolicy struct {
	CashPaymentForm string
	CashLimit       decimal.Decimal
	ExcludedUsage   map[string]struct{}
}

// DefaultDeductPolicy flags cash (FormaPago 01) income above 2,000.00 MXN
// and the "sin efectos fiscales" usage codes.
func DefaultDeductPolicy() DeductPolicy {
	return DeductPolicy{
		CashPaymentForm: "01",
		CashLimit:       decimal.NewFromInt(2000),
		ExcludedUsage: map[string]struct{}{
			"S01":  {},
			"CP01": {},
		},
	}
}

// Classify derives the deductibility label for one invoice. Pure function:
// identical inputs always yield the same label.
func (p DeductPolicy) Classify(t domain.InvoiceType, paymentForm, usageCode string, total decimal.Decimal) domain.Deductibility {
	switch t {
	case domain.TypePayment, domain.TypePayroll:
		return domain.Informative
	case domain.TypeIncome:
		if paymentForm == p.CashPaymentForm && total.GreaterThan(p.CashLimit) {
			return domain.NotDeductibleCash
		}
		if _, excluded := p.ExcludedUsage[usageCode]; excluded {
			return domain.NotDeductibleUsage
		}
		return domain.Deductible
	default:
		return domain.Deductible
	}
}
