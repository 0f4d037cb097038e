package application

import (
	"strings"

	"github.com/bnema/adminkit/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// IdentityFromToken reads email, name and role claims from a bearer JWT
// without verifying it; the token was issued and is verified elsewhere.
func IdentityFromToken(token string) (domain.Identity, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(strings.TrimSpace(token), claims); err != nil {
		return domain.Identity{}, false
	}

	identity := domain.Identity{
		Email: stringClaim(claims, "email"),
		Name:  stringClaim(claims, "name"),
		Role:  stringClaim(claims, "role"),
	}
	if identity.Name == "" {
		identity.Name = stringClaim(claims, "preferred_username")
	}

	if identity == (domain.Identity{}) {
		return domain.Identity{}, false
	}

	return identity, true
}

func stringClaim(claims jwt.MapClaims, key string) string {
	value, ok := claims[key].(string)
	if !ok {
		return ""
	}

	return strings.TrimSpace(value)
}
