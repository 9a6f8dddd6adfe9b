package domain

// InvoiceType classifies a CFDI by its TipoDeComprobante code.
type InvoiceType string

const (
	TypeIncome   InvoiceType = "ingreso"
	TypeExpense  InvoiceType = "egreso"
	TypePayment  InvoiceType = "pago"
	TypePayroll  InvoiceType = "nomina"
	TypeTransfer InvoiceType = "traslado"
	TypeOther    InvoiceType = "otro"
)

// invoiceTypeCodes is the closed TipoDeComprobante lookup. Codes outside
// this table map to TypeOther, never to passthrough text.
var invoiceTypeCodes = map[string]InvoiceType{
	"I": TypeIncome,
	"E": TypeExpense,
	"P": TypePayment,
	"N": TypePayroll,
	"T": TypeTransfer,
}

// InvoiceTypeFromCode maps a TipoDeComprobante code to its InvoiceType.
func InvoiceTypeFromCode(code string) InvoiceType {
	if t, ok := invoiceTypeCodes[code]; ok {
		return t
	}
	return TypeOther
}

// Label returns the Spanish display name used in reports and archive paths.
func (t InvoiceType) Label() string {
	switch t {
	case TypeIncome:
		return "Ingreso"
	case TypeExpense:
		return "Egreso"
	case TypePayment:
		return "Pago"
	case TypePayroll:
		return "Nómina"
	case TypeTransfer:
		return "Traslado"
	default:
		return "Otro"
	}
}

// Deductibility is the categorical fiscal alert derived for each record.
// It is computed once at extraction time; exports filter on it and never
// re-derive it.
type Deductibility string

const (
	Deductible         Deductibility = "deducible"
	NotDeductibleCash  Deductibility = "no_deducible_efectivo"
	NotDeductibleUsage Deductibility = "no_deducible_uso"
	Informative        Deductibility = "informativo"
)

// Label returns the Spanish display name for report columns.
func (d Deductibility) Label() string {
	switch d {
	case Deductible:
		return "Deducible"
	case NotDeductibleCash:
		return "No deducible (efectivo)"
	case NotDeductibleUsage:
		return "No deducible (uso)"
	case Informative:
		return "Informativo"
	default:
		return string(d)
	}
}
