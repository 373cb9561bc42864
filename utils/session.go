package utils

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	SessionCookieName = "token"
	SessionTTL        = 7 * 24 * time.Hour
)

var (
	ErrMissingSecret = errors.New("session signing secret is not configured")
	ErrInvalidToken  = errors.New("invalid session token")
)

type SessionClaims struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// SessionIssuer mints and verifies the signed session credential and moves it
// in and out of the session cookie.
type SessionIssuer struct {
	secret []byte
	secure bool
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionIssuer(secret string, secureCookie bool) (*SessionIssuer, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	return &SessionIssuer{
		secret: []byte(secret),
		secure: secureCookie,
		ttl:    SessionTTL,
		now:    time.Now,
	}, nil
}

func (s *SessionIssuer) Issue(userID uint, role string) (string, error) {
	now := s.now()
	claims := SessionClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *SessionIssuer) Verify(tokenString string) (SessionClaims, error) {
	if tokenString == "" {
		return SessionClaims{}, ErrInvalidToken
	}

	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return SessionClaims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.UserID == 0 {
		return SessionClaims{}, ErrInvalidToken
	}
	return *claims, nil
}

// AttachToRequest sets the session cookie on the response.
func (s *SessionIssuer) AttachToRequest(ctx *gin.Context, token string) {
	s.writeCookie(ctx, token, int(s.ttl.Seconds()))
}

// Clear expires the session cookie. The attributes must match those used by
// AttachToRequest or browsers keep the old cookie.
func (s *SessionIssuer) Clear(ctx *gin.Context) {
	s.writeCookie(ctx, "", -1)
}

func (s *SessionIssuer) writeCookie(ctx *gin.Context, value string, maxAge int) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(SessionCookieName, value, maxAge, "/", "", s.secure, true)
}
