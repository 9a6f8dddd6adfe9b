package cfdi

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"cfdibox/internal/domain"
)

// ValueUnknown is the sentinel for optional text fields whose source
// attribute or sub-structure is absent.
const ValueUnknown = "N/A"

// headerPolicy makes the default-vs-fail choice explicit per root
// attribute: every entry here is optional and falls back to its default;
// amounts are handled separately and fail the record when non-numeric.
var headerPolicy = []struct {
	Attr    string
	Default string
}{
	{"Fecha", domain.UnknownDate},
	{"TipoDeComprobante", "I"},
	{"Serie", ""},
	{"Folio", ""},
	{"MetodoPago", ValueUnknown},
	{"FormaPago", ValueUnknown},
	{"NoCertificado", ValueUnknown},
}

// partyPolicy does the same for Emisor/Receptor attributes. A missing
// party element yields the defaults for all of its fields; partial data is
// preferable to dropping a real invoice.
var partyPolicy = []struct {
	Attr    string
	Default string
}{
	{"Rfc", ValueUnknown},
	{"Nombre", ValueUnknown},
	{"UsoCFDI", ValueUnknown},
}

// Extractor maps a parsed CFDI tree to an InvoiceRecord using the
// configured tax and deductibility policies.
type Extractor struct {
	taxes  TaxPolicy
	deduct DeductPolicy
}

// NewExtractor creates an Extractor with the given policies.
func NewExtractor(taxes TaxPolicy, deduct DeductPolicy) *Extractor {
	return &Extractor{taxes: taxes, deduct: deduct}
}

// Extract builds the record for one document. A document without a valid
// fiscal UUID fails with ErrMissingFiscalID and is meant to be excluded
// silently; a non-numeric amount fails with ErrMalformedAmount.
func (e *Extractor) Extract(root *Node, sourceName string) (*domain.InvoiceRecord, error) {
	fiscalID, err := fiscalIdentifier(root)
	if err != nil {
		return nil, err
	}

	header := readAttrs(root, headerPolicy)

	rec := &domain.InvoiceRecord{
		UUID:          fiscalID,
		IssueDate:     truncateDate(header["Fecha"]),
		Type:          domain.InvoiceTypeFromCode(header["TipoDeComprobante"]),
		Series:        header["Serie"],
		Folio:         header["Folio"],
		PaymentMethod: header["MetodoPago"],
		PaymentForm:   header["FormaPago"],
		CertNumber:    header["NoCertificado"],
		SourceName:    sourceName,
	}

	issuer := readAttrs(root.Find(NSCFDI, "Emisor"), partyPolicy)
	rec.IssuerRFC = issuer["Rfc"]
	rec.IssuerName = issuer["Nombre"]

	receiver := readAttrs(root.Find(NSCFDI, "Receptor"), partyPolicy)
	rec.ReceiverRFC = receiver["Rfc"]
	rec.ReceiverName = receiver["Nombre"]
	rec.UsageCode = receiver["UsoCFDI"]

	if rec.Subtotal, err = parseAmount(root.Attr("SubTotal")); err != nil {
		return nil, err
	}
	if rec.Total, err = parseAmount(root.Attr("Total")); err != nil {
		return nil, err
	}

	// A Payment complement's root Total is a nominal fee; the economic
	// amount lives in pago20:Pago@Monto and overrides it.
	if rec.Type == domain.TypePayment {
		if pago := root.FindDeep(NSPago, "Pago"); pago != nil && pago.HasAttr("Monto") {
			if rec.Total, err = parseAmount(pago.Attr("Monto")); err != nil {
				return nil, err
			}
		}
	}

	if rec.Transferred, rec.Withheld, err = e.taxes.Aggregate(root); err != nil {
		return nil, err
	}

	rec.Deductibility = e.deduct.Classify(rec.Type, rec.PaymentForm, rec.UsageCode, rec.Total)

	return rec, nil
}

// fiscalIdentifier locates the TimbreFiscalDigital and validates its UUID.
func fiscalIdentifier(root *Node) (string, error) {
	stamp := root.FindDeep(NSTFD, "TimbreFiscalDigital")
	if stamp == nil {
		return "", domain.ErrMissingFiscalID
	}
	raw := stamp.Attr("UUID")
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %q", domain.ErrMissingFiscalID, raw)
	}
	// SAT prints fiscal UUIDs in upper case.
	return strings.ToUpper(id.String()), nil
}

// readAttrs applies a field policy table to a node. A nil node yields all
// defaults.
func readAttrs(n *Node, policy []struct{ Attr, Default string }) map[string]string {
	out := make(map[string]string, len(policy))
	for _, f := range policy {
		out[f.Attr] = f.Default
		if n == nil {
			continue
		}
		if v := n.Attr(f.Attr); v != "" {
			out[f.Attr] = v
		}
	}
	return out
}

// parseAmount reads a monetary attribute. Absent means zero; present but
// non-numeric fails the whole record, since partial numeric data is not
// trustworthy enough to report.
func parseAmount(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", domain.ErrMalformedAmount, raw)
	}
	return amount, nil
}

// truncateDate keeps the date portion of a combined date-time string.
func truncateDate(s string) string {
	if s == "" {
		return domain.UnknownDate
	}
	if len(s) > 10 {
		return s[:10]
	}
	return s
}
