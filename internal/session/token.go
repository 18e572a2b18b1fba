package session

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/pkg/errors"

	"github.com/libradesk/libradesk/internal/errs"
	"github.com/libradesk/libradesk/internal/model"
)

// Claims is the token payload issued by the remote identity provider.
type Claims struct {
	Profile struct {
		Name string `json:"name"`
		Role string `json:"role"`
	} `json:"profile"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// DecodeIdentity extracts the identity from a bearer token without
// verifying the signature: the token is opaque client-side material and
// the server re-validates it on every request. Expiry is still checked
// locally so a stale persisted token does not restore a dead session.
func DecodeIdentity(token string) (model.Identity, error) {
	claims := new(Claims)
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return model.Identity{}, errors.Wrap(errs.ErrBadToken, err.Error())
	}
	if claims.ExpiresAt == nil || time.Now().After(claims.ExpiresAt.Time) {
		return model.Identity{}, errors.Wrap(errs.ErrBadToken, "token expired")
	}
	if claims.Subject == "" {
		return model.Identity{}, errors.Wrap(errs.ErrBadToken, "subject missing")
	}
	role := model.Role(claims.Profile.Role)
	switch role {
	case model.RoleReader, model.RoleLibrarian, model.RoleAdmin:
	default:
		return model.Identity{}, errors.Wrapf(errs.ErrBadToken, "unknown role %q", claims.Profile.Role)
	}
	return model.Identity{
		ID:    claims.Subject,
		Name:  claims.Profile.Name,
		Email: claims.Email,
		Role:  role,
	}, nil
}
