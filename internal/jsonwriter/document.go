// =============================================================================
// UBL Invoice Builder - Document Envelope
// =============================================================================
//
// Wire types for the UBL JSON alternative representation. Every schema
// element is an array, even when the Invoice model allows exactly one, and
// every leaf is an object holding its content under a type-specific key.
//
// DOCUMENT STRUCTURE:
//
//   {
//     "_D": "urn:oasis:names:specification:ubl:schema:xsd:Invoice-2",
//     "_A": "urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2",
//     "_B": "urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2",
//     "Invoice": [{
//       "ID":            [{"IdentifierContent": "123"}],
//       "IssueDate":     [{"DateContent": "2011-09-22"}],
//       "InvoicePeriod": [{"StartDate": [...], "EndDate": [...]}],
//       "AccountingSupplierParty": [{"Party": [{"PartyName": [{"Name": [{"TextContent": "..."}]}]}]}],
//       "AccountingCustomerParty": [{"Party": [...]}],
//       "LegalMonetaryTotal": [{"PayableAmount": [{"AmountContent": 100.00, "AmountCurrencyIdentifier": "CAD"}]}],
//       "InvoiceLine": [{"ID": [...], "LineExtensionAmount": [...], "Item": [{"Description": [...]}]}]
//     }]
//   }
//
// Field order in the structs below is the key order on the wire.
//
// =============================================================================

package jsonwriter

import (
	"github.com/ginjaninja78/UBL-invoice-builder/internal/invoice"
	"github.com/ginjaninja78/UBL-invoice-builder/internal/validation"
)

// Namespace identifiers carried by every envelope.
const (
	NamespaceInvoice   = "urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"
	NamespaceAggregate = "urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
	NamespaceBasic     = "urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2"
)

// =============================================================================
// ENVELOPE
// =============================================================================

// Envelope is the top-level UBL JSON document.
type Envelope struct {
	Document  string        `json:"_D"`
	Aggregate string        `json:"_A"`
	Basic     string        `json:"_B"`
	Invoice   []InvoiceJSON `json:"Invoice"`
}

// =============================================================================
// LEAF COMPONENTS
// =============================================================================

// IdentifierJSON is an IdentifierType leaf.
type IdentifierJSON struct {
	IdentifierContent string `json:"IdentifierContent"`
}

// DateJSON is a DateType leaf.
type DateJSON struct {
	DateContent string `json:"DateContent"`
}

// TextJSON is a TextType or NameType leaf.
type TextJSON struct {
	TextContent string `json:"TextContent"`
}

// AmountJSON is an AmountType leaf.
type AmountJSON struct {
	AmountContent            Number `json:"AmountContent"`
	AmountCurrencyIdentifier string `json:"AmountCurrencyIdentifier"`
}

// Number is a decimal rendered as a bare JSON number with its scale intact.
type Number string

// MarshalJSON implements json.Marshaler.
func (n Number) MarshalJSON() ([]byte, error) {
	return []byte(n), nil
}

// =============================================================================
// AGGREGATE COMPONENTS
// =============================================================================

// PeriodJSON is cac:InvoicePeriod.
type PeriodJSON struct {
	StartDate []DateJSON `json:"StartDate"`
	EndDate   []DateJSON `json:"EndDate"`
}

// PartyNameJSON is cac:PartyName.
type PartyNameJSON struct {
	Name []TextJSON `json:"Name"`
}

// PartyJSON is cac:Party.
type PartyJSON struct {
	PartyName []PartyNameJSON `json:"PartyName"`
}

// RolePartyJSON is cac:AccountingSupplierParty or cac:AccountingCustomerParty.
type RolePartyJSON struct {
	Party []PartyJSON `json:"Party"`
}

// MonetaryTotalJSON is cac:LegalMonetaryTotal.
type MonetaryTotalJSON struct {
	PayableAmount []AmountJSON `json:"PayableAmount"`
}

// ItemJSON is cac:Item.
type ItemJSON struct {
	Description []TextJSON `json:"Description"`
}

// InvoiceLineJSON is cac:InvoiceLine.
type InvoiceLineJSON struct {
	ID                  []IdentifierJSON `json:"ID"`
	LineExtensionAmount []AmountJSON     `json:"LineExtensionAmount"`
	Item                []ItemJSON       `json:"Item"`
}

// InvoiceJSON is the Invoice document element.
type InvoiceJSON struct {
	ID                      []IdentifierJSON    `json:"ID"`
	IssueDate               []DateJSON          `json:"IssueDate"`
	InvoicePeriod           []PeriodJSON        `json:"InvoicePeriod"`
	AccountingSupplierParty []RolePartyJSON     `json:"AccountingSupplierParty"`
	AccountingCustomerParty []RolePartyJSON     `json:"AccountingCustomerParty"`
	LegalMonetaryTotal      []MonetaryTotalJSON `json:"LegalMonetaryTotal"`
	InvoiceLine             []InvoiceLineJSON   `json:"InvoiceLine"`
}

// =============================================================================
// WRAPPING
// =============================================================================

// Wrap builds the envelope for a finalized invoice.
//
// RETURNS:
//   - The envelope.
//   - A *SerializationError if the invoice has not been finalized.
func Wrap(inv *invoice.Invoice) (*Envelope, error) {
	if inv == nil || !inv.Finalized() {
		return nil, &SerializationError{Stage: "wrap", Err: invoice.ErrIncompleteInvoice}
	}

	return &Envelope{
		Document:  NamespaceInvoice,
		Aggregate: NamespaceAggregate,
		Basic:     NamespaceBasic,
		Invoice:   []InvoiceJSON{buildInvoice(inv)},
	}, nil
}

func buildInvoice(inv *invoice.Invoice) InvoiceJSON {
	lines := inv.Lines()
	lineElements := make([]InvoiceLineJSON, 0, len(lines))
	for _, line := range lines {
		lineElements = append(lineElements, InvoiceLineJSON{
			ID:                  []IdentifierJSON{identifier(line.ID())},
			LineExtensionAmount: []AmountJSON{amount(line.Amount())},
			Item:                []ItemJSON{{Description: []TextJSON{text(line.Description())}}},
		})
	}

	period := inv.Period()

	return InvoiceJSON{
		ID:        []IdentifierJSON{identifier(inv.ID())},
		IssueDate: []DateJSON{date(inv.IssueDate())},
		InvoicePeriod: []PeriodJSON{{
			StartDate: []DateJSON{date(period.Start())},
			EndDate:   []DateJSON{date(period.End())},
		}},
		AccountingSupplierParty: []RolePartyJSON{roleParty(inv.Supplier())},
		AccountingCustomerParty: []RolePartyJSON{roleParty(inv.Customer())},
		LegalMonetaryTotal: []MonetaryTotalJSON{{
			PayableAmount: []AmountJSON{amount(inv.LegalMonetaryTotal().PayableAmount())},
		}},
		InvoiceLine: lineElements,
	}
}

func roleParty(rp invoice.RoleParty) RolePartyJSON {
	return RolePartyJSON{
		Party: []PartyJSON{{
			PartyName: []PartyNameJSON{{
				Name: []TextJSON{text(rp.Party().Name())},
			}},
		}},
	}
}

func identifier(id validation.Identifier) IdentifierJSON {
	return IdentifierJSON{IdentifierContent: id.String()}
}

func date(d validation.Date) DateJSON {
	return DateJSON{DateContent: d.String()}
}

func text(t validation.Text) TextJSON {
	return TextJSON{TextContent: t.String()}
}

func amount(a validation.Amount) AmountJSON {
	return AmountJSON{
		AmountContent:            Number(a.Format()),
		AmountCurrencyIdentifier: a.CurrencyCode(),
	}
}
