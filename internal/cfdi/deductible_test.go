package cfdi

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"cfdibox/internal/domain"
)

func TestClassify_PaymentAndPayrollAreInformative(t *testing.T) {
	p := DefaultDeductPolicy()

	// Precedence: type wins over everything, including cash-over-limit.
	assert.Equal(t, domain.Informative,
		p.Classify(domain.TypePayment, "01", "G03", decimal.NewFromInt(99999)))
	assert.Equal(t, domain.Informative,
		p.Classify(domain.TypePayroll, "01", "S01", decimal.NewFromInt(99999)))
}

func TestClassify_IncomeCashLimit(t *testing.T) {
	p := DefaultDeductPolicy()

	assert.Equal(t, domain.NotDeductibleCash,
		p.Classify(domain.TypeIncome, "01", "G03", decimal.RequireFromString("2500.00")))
	assert.Equal(t, domain.Deductible,
		p.Classify(domain.TypeIncome, "01", "G03", decimal.RequireFromString("1500.00")))

	// Exactly at the limit does not exceed it.
	assert.Equal(t, domain.Deductible,
		p.Classify(domain.TypeIncome, "01", "G03", decimal.RequireFromString("2000.00")))

	// Non-cash payment forms are never flagged by the cash rule.
	assert.Equal(t, domain.Deductible,
		p.Classify(domain.TypeIncome, "03", "G03", decimal.RequireFromString("2500.00")))
}

func TestClassify_ExcludedUsage(t *testing.T) {
	p := DefaultDeductPolicy()

	assert.Equal(t, domain.NotDeductibleUsage,
		p.Classify(domain.TypeIncome, "03", "S01", decimal.NewFromInt(100)))
	assert.Equal(t, domain.NotDeductibleUsage,
		p.Classify(domain.TypeIncome, "03", "CP01", decimal.NewFromInt(100)))

	// Cash rule has precedence over the usage rule.
	assert.Equal(t, domain.NotDeductibleCash,
		p.Classify(domain.TypeIncome, "01", "S01", decimal.NewFromInt(5000)))
}

func TestClassify_OtherTypesDefaultDeductible(t *testing.T) {
	p := DefaultDeductPolicy()

	for _, typ := range []domain.InvoiceType{domain.TypeExpense, domain.TypeTransfer, domain.TypeOther} {
		assert.Equal(t, domain.Deductible,
			p.Classify(typ, "01", "S01", decimal.NewFromInt(99999)), "type %s", typ)
	}
}

func TestClassify_PolicyIsData(t *testing.T) {
	p := DeductPolicy{
		CashPaymentForm: "99",
		CashLimit:       decimal.NewFromInt(10),
		ExcludedUsage:   map[string]struct{}{"Z99": {}},
	}

	assert.Equal(t, domain.NotDeductibleCash,
		p.Classify(domain.TypeIncome, "99", "G03", decimal.NewFromInt(11)))
	assert.Equal(t, domain.NotDeductibleUsage,
		p.Classify(domain.TypeIncome, "01", "Z99", decimal.NewFromInt(11)))
	assert.Equal(t, domain.Deductible,
		p.Classify(domain.TypeIncome, "01", "S01", decimal.NewFromInt(5000)),
		"default codes are not baked in")
}

func TestClassify_Pure(t *testing.T) {
	p := DefaultDeductPolicy()
	total := decimal.RequireFromString("2500.00")

	first := p.Classify(domain.TypeIncome, "01", "G03", total)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, p.Classify(domain.TypeIncome, "01", "G03", total))
	}
}
