package cfdi

import (
	"fmt"

	"github.com/shopspring/decimal"

	"cfdibox/internal/domain"
)

// TaxMode selects which tax lines the aggregator sums.
type TaxMode string

const (
	// TaxModeAll sums every transferred/withheld line regardless of code.
	TaxModeAll TaxMode = "all"
	// TaxModeFiltered sums only the configured tax codes (IVA transferred,
	// ISR withheld by default) and ignores the rest.
	TaxModeFiltered TaxMode = "filtered"
)

// TaxPolicy configures tax-line aggregation. Both modes are legitimate in
// practice; the choice is the caller's, not a constant.
type TaxPolicy struct {
	Mode            TaxMode
	TransferredCode string
	WithheldCode    string
}

// DefaultTaxPolicy sums IVA (002) transferred and ISR (001) withheld only.
func DefaultTaxPolicy() TaxPolicy {
	return TaxPolicy{
		Mode:            TaxModeFiltered,
		TransferredCode: "002",
		WithheldCode:    "001",
	}
}

// Aggregate sums the Importe of transferred and withheld tax lines under
// the document's cfdi:Impuestos block according to the policy. A missing
// tax block is a valid untaxed document and yields (0, 0).
func (p TaxPolicy) Aggregate(root *Node) (transferred, withheld decimal.Decimal, err error) {
	transferred = decimal.Zero
	withheld = decimal.Zero

	taxes := root.Find(NSCFDI, "Impuestos")
	if taxes == nil {
		return transferred, withheld, nil
	}

	if traslados := taxes.Find(NSCFDI, "Traslados"); traslados != nil {
		for _, line := range traslados.FindAll(NSCFDI, "Traslado") {
			if p.Mode == TaxModeFiltered && line.Attr("Impuesto") != p.TransferredCode {
				continue
			}
			amount, err := taxLineAmount(line)
			if err != nil {
				return decimal.Zero, decimal.Zero, err
			}
			transferred = transferred.Add(amount)
		}
	}

	if retenciones := taxes.Find(NSCFDI, "Retenciones"); retenciones != nil {
		for _, line := range retenciones.FindAll(NSCFDI, "Retencion") {
			if p.Mode == TaxModeFiltered && line.Attr("Impuesto") != p.WithheldCode {
				continue
			}
			amount, err := taxLineAmount(line)
			if err != nil {
				return decimal.Zero, decimal.Zero, err
			}
			withheld = withheld.Add(amount)
		}
	}

	return transferred, withheld, nil
}

// taxLineAmount reads the Importe of one tax line. Exempt lines carry no
// Importe and contribute zero.
func taxLineAmount(line *Node) (decimal.Decimal, error) {
	raw := line.Attr("Importe")
	if raw == "" {
		return decimal.Zero, nil
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: tax Importe %q", domain.ErrMalformedAmount, raw)
	}
	return amount, nil
}
