package accounts

import (
	"net/http"

	"github.com/angelmondragon/csemotors/pkg/auth"
	"github.com/angelmondragon/csemotors/pkg/config"
	"github.com/angelmondragon/csemotors/pkg/db/models"
)

// IdentityChange carries a freshly minted identity token. Handlers that log an account in
// or change its profile must Apply it so the client's cookie matches the stored account.
type IdentityChange struct {
	issued *auth.IssuedToken
	cfg    config.JWTConfig
}

// Identity returns the identity the new token carries.
func (c *IdentityChange) Identity() auth.Identity {
	if c == nil || c.issued == nil {
		return auth.Anonymous()
	}
	return c.issued.Identity
}

// TokenID returns the new token's id.
func (c *IdentityChange) TokenID() string {
	if c == nil || c.issued == nil {
		return ""
	}
	return c.issued.ID
}

// Apply writes the identity cookie.
func (c *IdentityChange) Apply(w http.ResponseWriter) {
	if c == nil || c.issued == nil {
		return
	}
	auth.SetIdentityCookie(w, c.cfg, c.issued.Token)
}

func identityOf(account *models.Account) auth.Identity {
	return auth.Identity{
		AccountID: account.ID,
		FirstName: account.FirstName,
		LastName:  account.LastName,
		Email:     account.Email,
		Role:      account.Type,
	}
}
