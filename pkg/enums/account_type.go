package enums

import "fmt"

// AccountType is the role stored on an account and carried in the identity token.
type AccountType string

const (
	AccountTypeGuest    AccountType = "Guest"
	AccountTypeClient   AccountType = "Client"
	AccountTypeEmployee AccountType = "Employee"
	AccountTypeAdmin    AccountType = "Admin"
)

var validAccountTypes = []AccountType{
	AccountTypeGuest,
	AccountTypeClient,
	AccountTypeEmployee,
	AccountTypeAdmin,
}

// String implements fmt.Stringer.
func (a AccountType) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AccountType.
func (a AccountType) IsValid() bool {
	for _, candidate := range validAccountTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// IsPersisted reports whether the role can belong to a stored account. Guest is the
// anonymous identity and is never written to the account table.
func (a AccountType) IsPersisted() bool {
	return a.IsValid() && a != AccountTypeGuest
}

// CanManageInventory reports whether the role may use the inventory management routes.
func (a AccountType) CanManageInventory() bool {
	return a == AccountTypeEmployee || a == AccountTypeAdmin
}

// ParseAccountType converts raw input into an AccountType.
func ParseAccountType(value string) (AccountType, error) {
	for _, candidate := range validAccountTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid account type %q", value)
}
