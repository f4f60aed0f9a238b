package jsonwriter

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/ginjaninja78/UBL-invoice-builder/internal/invoice"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func buildTrivialInvoice(t *testing.T, amounts ...string) *invoice.Invoice {
	t.Helper()

	b := invoice.NewBuilder(nil)

	inv, err := b.NewInvoice("123", day(2011, 9, 22), day(2011, 8, 1), day(2011, 8, 31))
	require.NoError(t, err)

	supplier, err := b.Supplier("CustomCotterPins")
	require.NoError(t, err)
	require.NoError(t, inv.SetSupplier(supplier))

	customer, err := b.Customer("NorthAmericanVeeblefetzer")
	require.NoError(t, err)
	require.NoError(t, inv.SetCustomer(customer))

	lines, err := b.Lines("CAD")
	require.NoError(t, err)
	for _, a := range amounts {
		require.NoError(t, lines.Add("Cotterpin,MIL-SPEC", decimal.RequireFromString(a)))
	}
	require.NoError(t, inv.SetLines(lines))
	require.NoError(t, inv.Finalize())

	return inv
}

const trivialDocument = `{"_D":"urn:oasis:names:specification:ubl:schema:xsd:Invoice-2",` +
	`"_A":"urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2",` +
	`"_B":"urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2",` +
	`"Invoice":[{` +
	`"ID":[{"IdentifierContent":"123"}],` +
	`"IssueDate":[{"DateContent":"2011-09-22"}],` +
	`"InvoicePeriod":[{"StartDate":[{"DateContent":"2011-08-01"}],"EndDate":[{"DateContent":"2011-08-31"}]}],` +
	`"AccountingSupplierParty":[{"Party":[{"PartyName":[{"Name":[{"TextContent":"CustomCotterPins"}]}]}]}],` +
	`"AccountingCustomerParty":[{"Party":[{"PartyName":[{"Name":[{"TextContent":"NorthAmericanVeeblefetzer"}]}]}]}],` +
	`"LegalMonetaryTotal":[{"PayableAmount":[{"AmountContent":100.00,"AmountCurrencyIdentifier":"CAD"}]}],` +
	`"InvoiceLine":[{"ID":[{"IdentifierContent":"1"}],` +
	`"LineExtensionAmount":[{"AmountContent":100.00,"AmountCurrencyIdentifier":"CAD"}],` +
	`"Item":[{"Description":[{"TextContent":"Cotterpin,MIL-SPEC"}]}]}]` +
	`}]}`

func TestGenerate(t *testing.T) {
	t.Run("trivial invoice", func(t *testing.T) {
		out, err := Generate(buildTrivialInvoice(t, "100.00"))
		require.NoError(t, err)
		assert.Equal(t, trivialDocument, string(out))
		assert.True(t, json.Valid(out))
	})

	t.Run("deterministic", func(t *testing.T) {
		first, err := Generate(buildTrivialInvoice(t, "100.00"))
		require.NoError(t, err)
		second, err := Generate(buildTrivialInvoice(t, "100.00"))
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("lines keep insertion order", func(t *testing.T) {
		out, err := Generate(buildTrivialInvoice(t, "0.10", "0.20", "0.30"))
		require.NoError(t, err)

		var doc struct {
			Invoice []struct {
				LegalMonetaryTotal []struct {
					PayableAmount []struct {
						AmountContent json.Number
					}
				}
				InvoiceLine []struct {
					ID []struct {
						IdentifierContent string
					}
				}
			}
		}
		require.NoError(t, json.Unmarshal(out, &doc))
		require.Len(t, doc.Invoice, 1)

		lines := doc.Invoice[0].InvoiceLine
		require.Len(t, lines, 3)
		for i, want := range []string{"1", "2", "3"} {
			assert.Equal(t, want, lines[i].ID[0].IdentifierContent)
		}
		assert.Equal(t, "0.60", doc.Invoice[0].LegalMonetaryTotal[0].PayableAmount[0].AmountContent.String())
	})

	t.Run("html characters stay literal", func(t *testing.T) {
		b := invoice.NewBuilder(nil)
		inv, err := b.NewInvoice("A&B", day(2024, 1, 2), day(2024, 1, 1), day(2024, 1, 31))
		require.NoError(t, err)
		supplier, _ := b.Supplier("<Supplier>")
		customer, _ := b.Customer("Customer")
		require.NoError(t, inv.SetSupplier(supplier))
		require.NoError(t, inv.SetCustomer(customer))
		lines, _ := b.Lines("USD")
		require.NoError(t, lines.Add("x", decimal.NewFromInt(1)))
		require.NoError(t, inv.SetLines(lines))
		require.NoError(t, inv.Finalize())

		out, err := Generate(inv)
		require.NoError(t, err)
		assert.Contains(t, string(out), `"IdentifierContent":"A&B"`)
		assert.Contains(t, string(out), `"TextContent":"<Supplier>"`)
	})
}

func TestGenerateWithOptions(t *testing.T) {
	inv := buildTrivialInvoice(t, "100.00")

	t.Run("indent and newline", func(t *testing.T) {
		out, err := GenerateWithOptions(inv, GenerateOptions{Indent: "  ", TrailingNewline: true})
		require.NoError(t, err)
		assert.Contains(t, string(out), "\n  \"_D\": ")
		assert.Equal(t, byte('\n'), out[len(out)-1])

		var compact, indented any
		require.NoError(t, json.Unmarshal([]byte(trivialDocument), &compact))
		require.NoError(t, json.Unmarshal(out, &indented))
		assert.Equal(t, compact, indented)
	})

	t.Run("default has no trailing newline", func(t *testing.T) {
		out, err := GenerateWithOptions(inv, DefaultGenerateOptions())
		require.NoError(t, err)
		assert.Equal(t, byte('}'), out[len(out)-1])
	})
}

func TestWrap(t *testing.T) {
	t.Run("unfinalized invoice is refused", func(t *testing.T) {
		b := invoice.NewBuilder(nil)
		inv, err := b.NewInvoice("1", day(2011, 9, 22), day(2011, 8, 1), day(2011, 8, 31))
		require.NoError(t, err)

		_, err = Generate(inv)
		var se *SerializationError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, "wrap", se.Stage)
		assert.ErrorIs(t, err, invoice.ErrIncompleteInvoice)
	})

	t.Run("nil invoice is refused", func(t *testing.T) {
		env, err := Wrap(nil)
		assert.Nil(t, env)
		assert.Error(t, err)
	})

	t.Run("envelope carries namespaces", func(t *testing.T) {
		env, err := Wrap(buildTrivialInvoice(t, "100.00"))
		require.NoError(t, err)
		assert.Equal(t, NamespaceInvoice, env.Document)
		assert.Equal(t, NamespaceAggregate, env.Aggregate)
		assert.Equal(t, NamespaceBasic, env.Basic)
		require.Len(t, env.Invoice, 1)
		assert.Len(t, env.Invoice[0].InvoiceLine, 1)
	})
}
