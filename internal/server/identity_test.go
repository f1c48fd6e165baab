package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func mintToken(t *testing.T, secret string, claims *ApproverClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func identityRequest(headers map[string]string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/artifacts/x/approve", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req
}

func TestApproverName_FromBearerNameClaim(t *testing.T) {
	id := NewIdentity(testSecret, "design-lead")
	token := mintToken(t, testSecret, &ApproverClaims{
		Name: "ursula",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u-123",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	got := id.ApproverName(identityRequest(map[string]string{"Authorization": "Bearer " + token}))
	assert.Equal(t, "ursula", got)
}

func TestApproverName_FallsBackToSubject(t *testing.T) {
	id := NewIdentity(testSecret, "design-lead")
	token := mintToken(t, testSecret, &ApproverClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u-123",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	got := id.ApproverName(identityRequest(map[string]string{"Authorization": "Bearer " + token}))
	assert.Equal(t, "u-123", got)
}

func TestApproverName_BadSignatureFallsThrough(t *testing.T) {
	id := NewIdentity(testSecret, "design-lead")
	token := mintToken(t, "some-other-secret", &ApproverClaims{Name: "impostor"})

	got := id.ApproverName(identityRequest(map[string]string{
		"Authorization": "Bearer " + token,
		"X-Approver":    "fallback-human",
	}))
	assert.Equal(t, "fallback-human", got)
}

func TestApproverName_ExpiredTokenFallsThrough(t *testing.T) {
	id := NewIdentity(testSecret, "design-lead")
	token := mintToken(t, testSecret, &ApproverClaims{
		Name: "ursula",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})

	got := id.ApproverName(identityRequest(map[string]string{"Authorization": "Bearer " + token}))
	assert.Equal(t, "design-lead", got)
}

func TestApproverName_HeaderWithoutToken(t *testing.T) {
	id := NewIdentity(testSecret, "design-lead")

	got := id.ApproverName(identityRequest(map[string]string{"X-Approver": "maya"}))
	assert.Equal(t, "maya", got)
}

func TestApproverName_BlankHeaderIgnored(t *testing.T) {
	id := NewIdentity(testSecret, "design-lead")

	got := id.ApproverName(identityRequest(map[string]string{"X-Approver": "   "}))
	assert.Equal(t, "design-lead", got)
}

func TestApproverName_Default(t *testing.T) {
	id := NewIdentity(testSecret, "design-lead")

	got := id.ApproverName(identityRequest(nil))
	assert.Equal(t, "design-lead", got)
}

func TestApproverName_EmptySecretIgnoresBearer(t *testing.T) {
	id := NewIdentity("", "design-lead")
	token := mintToken(t, testSecret, &ApproverClaims{Name: "ursula"})

	got := id.ApproverName(identityRequest(map[string]string{"Authorization": "Bearer " + token}))
	assert.Equal(t, "design-lead", got)
}

func TestApproverName_NonBearerAuthorizationIgnored(t *testing.T) {
	id := NewIdentity(testSecret, "design-lead")

	got := id.ApproverName(identityRequest(map[string]string{"Authorization": "Basic dXNlcjpwYXNz"}))
	assert.Equal(t, "design-lead", got)
}
