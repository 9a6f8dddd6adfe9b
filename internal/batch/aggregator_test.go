package batch

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cfdibox/internal/domain"
)

func record(uuid string, typ domain.InvoiceType, total string, label domain.Deductibility) *domain.InvoiceRecord {
	return &domain.InvoiceRecord{
		UUID:          uuid,
		IssueDate:     "2026-01-15",
		Type:          typ,
		Total:         decimal.RequireFromString(total),
		Deductibility: label,
	}
}

func TestFold_FirstSeenWins(t *testing.T) {
	outcomes := []Outcome{
		{Name: "a.xml", Record: record("ABC-123", domain.TypeIncome, "100.00", domain.Deductible)},
		{Name: "b.xml", Record: record("ABC-123", domain.TypeIncome, "999.00", domain.Deductible)},
	}

	result := Fold(outcomes)

	require.Len(t, result.Records, 1)
	assert.Equal(t, 1, result.DuplicateCount)
	assert.True(t, result.Records[0].Total.Equal(decimal.RequireFromString("100.00")),
		"the first copy in input order survives")
	assert.True(t, result.TotalSum.Equal(decimal.RequireFromString("100.00")))
}

func TestFold_FailedExtractionsAreNotDuplicates(t *testing.T) {
	outcomes := []Outcome{
		{Name: "ok.xml", Record: record("11111111-2222-3333-4444-555555555555", domain.TypeIncome, "50.00", domain.Deductible)},
		{Name: "unstamped.xml", Err: domain.ErrMissingFiscalID},
		{Name: "broken.xml", Err: &domain.ParseError{Name: "broken.xml", Err: assert.AnError}},
		{Name: "badamount.xml", Err: domain.ErrMalformedAmount},
	}

	result := Fold(outcomes)

	assert.Len(t, result.Records, 1)
	assert.Equal(t, 0, result.DuplicateCount)
	assert.Equal(t, 1, result.MissingStampCount)
	assert.Equal(t, 2, result.MalformedCount)
	assert.Equal(t, 4, result.InputCount)
}

func TestFold_CountInvariant(t *testing.T) {
	outcomes := []Outcome{
		{Record: record("A", domain.TypeIncome, "1.00", domain.Deductible)},
		{Record: record("B", domain.TypeExpense, "2.00", domain.Deductible)},
		{Record: record("A", domain.TypeIncome, "3.00", domain.Deductible)},
		{Err: domain.ErrMissingFiscalID},
	}

	result := Fold(outcomes)

	parsed := 0
	for _, o := range outcomes {
		if o.Err == nil {
			parsed++
		}
	}
	assert.LessOrEqual(t, len(result.Records)+result.DuplicateCount, parsed)
	assert.LessOrEqual(t, parsed, result.InputCount)
}

func TestFold_Idempotent(t *testing.T) {
	outcomes := []Outcome{
		{Record: record("A", domain.TypeIncome, "100.00", domain.Deductible)},
		{Record: record("B", domain.TypePayment, "200.00", domain.Informative)},
		{Record: record("A", domain.TypeIncome, "300.00", domain.Deductible)},
	}

	first := Fold(outcomes)
	require.Len(t, first.Records, 2)
	require.Equal(t, 1, first.DuplicateCount)

	// Re-aggregating an already deduplicated record set yields no new
	// duplicates and the identical records.
	again := make([]Outcome, len(first.Records))
	for i := range first.Records {
		again[i] = Outcome{Record: &first.Records[i]}
	}
	second := Fold(again)

	assert.Equal(t, 0, second.DuplicateCount)
	assert.Equal(t, first.Records, second.Records)
	assert.True(t, first.TotalSum.Equal(second.TotalSum))
}

func TestFold_GroupedSums(t *testing.T) {
	outcomes := []Outcome{
		{Record: record("A", domain.TypeIncome, "100.00", domain.Deductible)},
		{Record: record("B", domain.TypeIncome, "50.00", domain.NotDeductibleCash)},
		{Record: record("C", domain.TypePayroll, "30.00", domain.Informative)},
	}

	result := Fold(outcomes)

	assert.True(t, result.TotalSum.Equal(decimal.RequireFromString("180.00")))

	income := result.ByType[domain.TypeIncome]
	assert.Equal(t, 2, income.Count)
	assert.True(t, income.Total.Equal(decimal.RequireFromString("150.00")))

	payroll := result.ByType[domain.TypePayroll]
	assert.Equal(t, 1, payroll.Count)

	assert.True(t, result.ByDeductibility[domain.Deductible].Equal(decimal.RequireFromString("100.00")))
	assert.True(t, result.ByDeductibility[domain.NotDeductibleCash].Equal(decimal.RequireFromString("50.00")))
	assert.True(t, result.ByDeductibility[domain.Informative].Equal(decimal.RequireFromString("30.00")))
}

func TestFold_EmptyInputIsValid(t *testing.T) {
	result := Fold(nil)

	assert.Empty(t, result.Records)
	assert.Equal(t, 0, result.Count())
	assert.Equal(t, 0, result.DuplicateCount)
	assert.True(t, result.TotalSum.IsZero())
}
