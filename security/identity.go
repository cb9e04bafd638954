package security

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const Issuer = "personnel"

// Identity is the claim payload issued by the identity provider.
type Identity struct {
	Name        string   `json:"name,omitempty"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions,omitempty"`
	PersonnelID *uint    `json:"personnel_id,omitempty"`
}

type IdentityClaims struct {
	Identity
	jwt.RegisteredClaims
}

func DecodeSecret(base64Secret string) ([]byte, error) {
	secret, err := base64.StdEncoding.DecodeString(base64Secret)
	if err != nil {
		return nil, fmt.Errorf("decode signing secret: %w", err)
	}
	if len(secret) == 0 {
		return nil, errors.New("signing secret is empty")
	}
	return secret, nil
}

// CreateIdentityToken signs a HS256 bearer token for subject.
func CreateIdentityToken(subject string, identity Identity, secret []byte, expiresIn time.Duration) (string, error) {
	now := time.Now()
	claims := IdentityClaims{
		Identity: identity,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// Verifier resolves bearer tokens into principals.
type Verifier struct {
	secret []byte
	// OnUnknownPermission is called for claim strings outside the enumeration.
	OnUnknownPermission func(subject string, unknown []string)
}

func NewVerifier(secret []byte) *Verifier {
	return &Verifier{secret: secret}
}

func (v *Verifier) Verify(tokenStr string) (*Principal, error) {
	claims := &IdentityClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return v.secret, nil
	}, jwt.WithIssuer(Issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token")
	}

	perms, unknown := ParsePermissions(claims.Permissions)
	if len(unknown) > 0 && v.OnUnknownPermission != nil {
		v.OnUnknownPermission(claims.Subject, unknown)
	}

	return &Principal{
		Subject:     claims.Subject,
		Name:        claims.Name,
		Role:        ParseRole(claims.Role),
		Permissions: perms,
		PersonnelID: claims.PersonnelID,
	}, nil
}
