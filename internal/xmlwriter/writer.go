// =============================================================================
// UBL Invoice Builder - XML Writer Module
// =============================================================================
//
// This module renders a finalized invoice in the UBL 2.1 XML syntax. It
// carries exactly the same information as the UBL JSON document, in the
// element order the UBL Invoice schema requires.
//
// XML STRUCTURE:
//
//   <Invoice xmlns="...:Invoice-2" xmlns:cac="..." xmlns:cbc="...">
//     <cbc:ID>123</cbc:ID>
//     <cbc:IssueDate>2011-09-22</cbc:IssueDate>
//     <cac:InvoicePeriod>
//       <cbc:StartDate>2011-08-01</cbc:StartDate>
//       <cbc:EndDate>2011-08-31</cbc:EndDate>
//     </cac:InvoicePeriod>
//     <cac:AccountingSupplierParty>
//       <cac:Party><cac:PartyName><cbc:Name>...</cbc:Name></cac:PartyName></cac:Party>
//     </cac:AccountingSupplierParty>
//     <cac:AccountingCustomerParty>...</cac:AccountingCustomerParty>
//     <cac:LegalMonetaryTotal>
//       <cbc:PayableAmount currencyID="CAD">100.00</cbc:PayableAmount>
//     </cac:LegalMonetaryTotal>
//     <cac:InvoiceLine>                  <!-- one per line, in line order -->
//       <cbc:ID>1</cbc:ID>
//       <cbc:LineExtensionAmount currencyID="CAD">100.00</cbc:LineExtensionAmount>
//       <cac:Item><cbc:Description>...</cbc:Description></cac:Item>
//     </cac:InvoiceLine>
//   </Invoice>
//
// =============================================================================

package xmlwriter

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/ginjaninja78/UBL-invoice-builder/internal/invoice"
	"github.com/ginjaninja78/UBL-invoice-builder/internal/jsonwriter"
	"github.com/ginjaninja78/UBL-invoice-builder/internal/validation"
)

// Namespace prefixes used for the aggregate and basic component libraries.
const (
	PrefixAggregate = "cac"
	PrefixBasic     = "cbc"
)

// =============================================================================
// XML GENERATION OPTIONS
// =============================================================================

// GenerateOptions contains options for XML generation.
type GenerateOptions struct {
	// Indent is the string used for indentation. Empty writes the whole
	// document on one line.
	// Default: "  " (two spaces)
	Indent string

	// IncludeXMLDeclaration determines whether to include the XML declaration.
	// Default: true
	IncludeXMLDeclaration bool
}

// DefaultGenerateOptions returns the default generation options.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		Indent:                "  ",
		IncludeXMLDeclaration: true,
	}
}

// =============================================================================
// XML GENERATION FUNCTIONS
// =============================================================================

// Generate renders a finalized invoice as an indented UBL XML document.
//
// RETURNS:
//   - The XML document as a byte slice.
//   - A *jsonwriter.SerializationError if the invoice is not finalized.
func Generate(inv *invoice.Invoice) ([]byte, error) {
	return GenerateWithOptions(inv, DefaultGenerateOptions())
}

// GenerateWithOptions renders a finalized invoice with custom options.
func GenerateWithOptions(inv *invoice.Invoice, options GenerateOptions) ([]byte, error) {
	if inv == nil || !inv.Finalized() {
		return nil, &jsonwriter.SerializationError{Stage: "wrap", Err: invoice.ErrIncompleteInvoice}
	}

	var buffer bytes.Buffer

	if options.IncludeXMLDeclaration {
		buffer.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	}

	writeElement(&buffer, buildDocument(inv), options.Indent, 0)

	return buffer.Bytes(), nil
}

// =============================================================================
// XML DOCUMENT BUILDING
// =============================================================================

// XMLElement represents a UBL element. Names carry their namespace prefix
// in Local (e.g. "cbc:ID").
type XMLElement struct {
	XMLName    xml.Name
	Attributes []xml.Attr
	Value      string
	Children   []XMLElement
}

// buildDocument constructs the Invoice root element.
func buildDocument(inv *invoice.Invoice) XMLElement {
	period := inv.Period()

	root := XMLElement{
		XMLName: xml.Name{Local: "Invoice"},
		Attributes: []xml.Attr{
			{Name: xml.Name{Local: "xmlns"}, Value: jsonwriter.NamespaceInvoice},
			{Name: xml.Name{Local: "xmlns:" + PrefixAggregate}, Value: jsonwriter.NamespaceAggregate},
			{Name: xml.Name{Local: "xmlns:" + PrefixBasic}, Value: jsonwriter.NamespaceBasic},
		},
		Children: []XMLElement{
			basic("ID", inv.ID().String()),
			basic("IssueDate", inv.IssueDate().String()),
			aggregate("InvoicePeriod",
				basic("StartDate", period.Start().String()),
				basic("EndDate", period.End().String()),
			),
			roleParty("AccountingSupplierParty", inv.Supplier()),
			roleParty("AccountingCustomerParty", inv.Customer()),
			aggregate("LegalMonetaryTotal",
				amount("PayableAmount", inv.LegalMonetaryTotal().PayableAmount()),
			),
		},
	}

	for _, line := range inv.Lines() {
		root.Children = append(root.Children, aggregate("InvoiceLine",
			basic("ID", line.ID().String()),
			amount("LineExtensionAmount", line.Amount()),
			aggregate("Item", basic("Description", line.Description().String())),
		))
	}

	return root
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// basic creates a cbc element with a text value.
func basic(name, value string) XMLElement {
	return XMLElement{
		XMLName: xml.Name{Local: PrefixBasic + ":" + name},
		Value:   value,
	}
}

// aggregate creates a cac element holding children.
func aggregate(name string, children ...XMLElement) XMLElement {
	return XMLElement{
		XMLName:  xml.Name{Local: PrefixAggregate + ":" + name},
		Children: children,
	}
}

// amount creates a cbc amount element with its currencyID attribute.
func amount(name string, a validation.Amount) XMLElement {
	element := basic(name, a.Format())
	element.Attributes = []xml.Attr{{Name: xml.Name{Local: "currencyID"}, Value: a.CurrencyCode()}}
	return element
}

func roleParty(name string, rp invoice.RoleParty) XMLElement {
	return aggregate(name,
		aggregate("Party",
			aggregate("PartyName",
				basic("Name", rp.Party().Name().String()),
			),
		),
	)
}

// writeElement writes an XML element to the buffer with indentation.
func writeElement(buffer *bytes.Buffer, element XMLElement, indent string, level int) {
	newline := ""
	if indent != "" {
		newline = "\n"
	}

	for i := 0; i < level; i++ {
		buffer.WriteString(indent)
	}

	buffer.WriteString("<")
	buffer.WriteString(element.XMLName.Local)

	for _, attr := range element.Attributes {
		fmt.Fprintf(buffer, ` %s="%s"`, attr.Name.Local, escapeXML(attr.Value))
	}

	if len(element.Children) == 0 && element.Value == "" {
		buffer.WriteString("/>" + newline)
		return
	}

	buffer.WriteString(">")

	if len(element.Children) == 0 {
		buffer.WriteString(escapeXML(element.Value))
	} else {
		buffer.WriteString(newline)

		for _, child := range element.Children {
			writeElement(buffer, child, indent, level+1)
		}

		for i := 0; i < level; i++ {
			buffer.WriteString(indent)
		}
	}

	buffer.WriteString("</")
	buffer.WriteString(element.XMLName.Local)
	buffer.WriteString(">" + newline)
}

// escapeXML escapes special characters for XML. CR is written as a
// character reference so it survives end-of-line normalization.
func escapeXML(s string) string {
	var buffer bytes.Buffer

	for _, r := range s {
		switch r {
		case '&':
			buffer.WriteString("&amp;")
		case '<':
			buffer.WriteString("&lt;")
		case '>':
			buffer.WriteString("&gt;")
		case '"':
			buffer.WriteString("&quot;")
		case '\'':
			buffer.WriteString("&apos;")
		case '\r':
			buffer.WriteString("&#xD;")
		default:
			buffer.WriteRune(r)
		}
	}

	return buffer.String()
}
