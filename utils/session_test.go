package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionIssuerRequiresSecret(t *testing.T) {
	_, err := NewSessionIssuer("", false)
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestSessionIssueAndVerify(t *testing.T) {
	issuer, err := NewSessionIssuer("secret", false)
	require.NoError(t, err)

	token, err := issuer.Issue(42, "admin")
	require.NoError(t, err)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "42", claims.Subject)
	assert.WithinDuration(t, time.Now().Add(SessionTTL), claims.ExpiresAt.Time, time.Minute)
}

func TestSessionVerifyRejectsExpired(t *testing.T) {
	issuer, err := NewSessionIssuer("secret", false)
	require.NoError(t, err)

	issuer.now = func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) }
	token, err := issuer.Issue(1, "user")
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionVerifyRejectsForeignTokens(t *testing.T) {
	issuer, err := NewSessionIssuer("secret", false)
	require.NoError(t, err)
	other, err := NewSessionIssuer("other-secret", false)
	require.NoError(t, err)

	token, err := other.Issue(1, "user")
	require.NoError(t, err)
	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, SessionClaims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	noneToken, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = issuer.Verify(noneToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.Verify("")
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = issuer.Verify("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionCookieAttachAndClear(t *testing.T) {
	gin.SetMode(gin.TestMode)
	issuer, err := NewSessionIssuer("secret", true)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(rec)
	issuer.AttachToRequest(ctx, "abc")

	set := (&http.Response{Header: rec.Header()}).Cookies()
	require.Len(t, set, 1)

	rec = httptest.NewRecorder()
	ctx, _ = gin.CreateTestContext(rec)
	issuer.Clear(ctx)

	cleared := (&http.Response{Header: rec.Header()}).Cookies()
	require.Len(t, cleared, 1)

	assert.Equal(t, SessionCookieName, set[0].Name)
	assert.Equal(t, "abc", set[0].Value)
	assert.Equal(t, int(SessionTTL.Seconds()), set[0].MaxAge)
	assert.True(t, cleared[0].MaxAge < 0)
	assert.Empty(t, cleared[0].Value)

	for _, c := range []*http.Cookie{set[0], cleared[0]} {
		assert.Equal(t, "/", c.Path)
		assert.True(t, c.HttpOnly)
		assert.True(t, c.Secure)
		assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	}
}
