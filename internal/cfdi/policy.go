package cfdi

import (
	"github.com/shopspring/decimal"

	"cfdibox/internal/config"
)

// TaxPolicyFromConfig builds a TaxPolicy from configuration, falling back
// to the defaults for unset or unrecognized values.
func TaxPolicyFromConfig(cfg config.TaxConfig) TaxPolicy {
	p := DefaultTaxPolicy()
	if cfg.Aggregation == string(TaxModeAll) {
		p.Mode = TaxModeAll
	}
	if cfg.TransferredCode != "" {
		p.TransferredCode = cfg.TransferredCode
	}
	if cfg.WithheldCode != "" {
		p.WithheldCode = cfg.WithheldCode
	}
	return p
}

// DeductPolicyFromConfig builds a DeductPolicy from configuration.
func DeductPolicyFromConfig(cfg config.DeductConfig) DeductPolicy {
	p := DefaultDeductPolicy()
	if cfg.CashPaymentForm != "" {
		p.CashPaymentForm = cfg.CashPaymentForm
	}
	if cfg.CashLimit > 0 {
		p.CashLimit = decimal.NewFromFloat(cfg.CashLimit)
	}
	if len(cfg.ExcludedUsage) > 0 {
		p.ExcludedUsage = make(map[string]struct{}, len(cfg.ExcludedUsage))
		for _, code := range cfg.ExcludedUsage {
			p.ExcludedUsage[code] = struct{}{}
		}
	}
	return p
}
