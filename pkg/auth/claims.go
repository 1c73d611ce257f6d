package auth

import (
	"github.com/angelmondragon/csemotors/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
)

// Identity is the request-scoped view of the caller. The zero value is the anonymous guest.
type Identity struct {
	AccountID int               `json:"account_id"`
	FirstName string            `json:"account_firstname"`
	LastName  string            `json:"account_lastname"`
	Email     string            `json:"account_email"`
	Role      enums.AccountType `json:"account_type"`
}

// Anonymous returns the guest identity used when no valid token is present.
func Anonymous() Identity {
	return Identity{Role: enums.AccountTypeGuest}
}

// IsAuthenticated reports whether the identity belongs to a stored account.
func (i Identity) IsAuthenticated() bool {
	return i.AccountID > 0 && i.Role.IsPersisted()
}

// IdentityClaims is the signed payload of the identity token. It never carries the password hash.
type IdentityClaims struct {
	Identity
	jwt.RegisteredClaims
}
