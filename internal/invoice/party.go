// =============================================================================
// UBL Invoice Builder - Party Builder
// =============================================================================
//
// Builds a trading party and tags it with the role it plays on the invoice.
//
// UBL STRUCTURE:
//   AccountingSupplierParty / AccountingCustomerParty
//     Party
//       PartyName
//         Name
//
// The in-memory model keeps one Party with one name. The serializer is the
// only place the UBL array wrapping appears.
//
// =============================================================================

package invoice

import (
	"github.com/ginjaninja78/UBL-invoice-builder/internal/validation"
)

// PartyRole is the role a party plays on the invoice.
type PartyRole string

const (
	// SupplierRole is the seller (cac:AccountingSupplierParty).
	SupplierRole PartyRole = "AccountingSupplierParty"

	// CustomerRole is the buyer (cac:AccountingCustomerParty).
	CustomerRole PartyRole = "AccountingCustomerParty"
)

// Valid reports whether r is one of the two known roles.
func (r PartyRole) Valid() bool {
	return r == SupplierRole || r == CustomerRole
}

// Party is a named trading entity.
type Party struct {
	name validation.Text
}

// Name returns the validated party name.
func (p Party) Name() validation.Text {
	return p.name
}

// RoleParty is a Party tagged with its invoice role.
type RoleParty struct {
	role  PartyRole
	party Party
}

// Role returns the role the party was built for.
func (rp RoleParty) Role() PartyRole {
	return rp.role
}

// Party returns the wrapped party.
func (rp RoleParty) Party() Party {
	return rp.party
}

// IsZero reports whether rp was never built.
func (rp RoleParty) IsZero() bool {
	return rp.role == ""
}

// Party builds a party for the given role.
//
// PARAMETERS:
//   - name: The party's display name.
//   - role: SupplierRole or CustomerRole.
//
// RETURNS:
//   - The party in its role.
//   - A *PartyValidationError naming the offending field on failure.
func (b *Builder) Party(name string, role PartyRole) (RoleParty, error) {
	if !role.Valid() {
		return RoleParty{}, &PartyValidationError{
			Role:  role,
			Field: "role",
			Err: &validation.AggregateValidationError{
				Aggregate: "Party",
				Rule:      "role",
				Message:   "role must be " + string(SupplierRole) + " or " + string(CustomerRole),
			},
		}
	}

	text, err := b.validator.Text(validation.RolePartyName, name)
	if err != nil {
		return RoleParty{}, &PartyValidationError{
			Role:  role,
			Field: string(validation.RolePartyName),
			Err:   err,
		}
	}

	return RoleParty{role: role, party: Party{name: text}}, nil
}

// Supplier builds the selling party.
func (b *Builder) Supplier(name string) (RoleParty, error) {
	return b.Party(name, SupplierRole)
}

// Customer builds the buying party.
func (b *Builder) Customer(name string) (RoleParty, error) {
	return b.Party(name, CustomerRole)
}
