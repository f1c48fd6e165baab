package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ApproverClaims carries the identity fields read from a bearer token.
type ApproverClaims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Identity resolves the name approvals are attributed to. The engine never
// authenticates: a bearer token is read for its claims when the signature
// checks out, the X-Approver header covers clients without tokens, and the
// configured default covers everything else.
type Identity struct {
	secret          []byte
	defaultApprover string
}

// NewIdentity creates an identity resolver.
func NewIdentity(jwtSecret, defaultApprover string) *Identity {
	return &Identity{
		secret:          []byte(jwtSecret),
		defaultApprover: defaultApprover,
	}
}

// ApproverName returns the identity to attribute an approval to.
func (i *Identity) ApproverName(r *http.Request) string {
	if name := i.fromBearer(r.Header.Get("Authorization")); name != "" {
		return name
	}
	if name := strings.TrimSpace(r.Header.Get("X-Approver")); name != "" {
		return name
	}
	return i.defaultApprover
}

// fromBearer extracts a name from a bearer token. Tokens that do not parse
// or verify yield nothing rather than an error; identity falls through to
// the next source.
func (i *Identity) fromBearer(header string) string {
	tokenString, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || len(i.secret) == 0 {
		return ""
	}

	claims := &ApproverClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil || !token.Valid {
		return ""
	}

	if claims.Name != "" {
		return claims.Name
	}
	return claims.Subject
}
