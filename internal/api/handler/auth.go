package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"lovechat/backend/internal/config"
	"lovechat/backend/internal/models"

	"github.com/gin-gonic/gin"
	jwt "github.com/golang-jwt/jwt/v5"
)

// ctxUsername is the gin context key holding the authenticated username.
const ctxUsername = "username"

var ErrInvalidToken = errors.New("invalid token")

// Claims is the JWT payload issued to users.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Auth signs and verifies HS256 tokens.
type Auth struct {
	Secret []byte
	TTL    time.Duration
}

func NewAuth(secret string, ttl time.Duration) *Auth {
	if ttl <= 0 {
		ttl = config.DefaultTokenTTL
	}
	return &Auth{Secret: []byte(secret), TTL: ttl}
}

// GenerateToken issues a token for username.
func (a *Auth) GenerateToken(username string) (string, error) {
	now := time.Now()
	claims := Claims{
		Username: models.NormalizeUsername(username),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    config.TokenIssuer,
			Subject:   models.NormalizeUsername(username),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.Secret)
}

// ParseToken verifies tokenString and returns the username it was issued to.
func (a *Auth) ParseToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return a.Secret, nil
	}, jwt.WithIssuer(config.TokenIssuer))
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Username == "" {
		return "", ErrInvalidToken
	}
	return claims.Username, nil
}

// bearerToken reads the token from the Authorization header, or from the
// access_token query for WebSocket clients that cannot set headers.
func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(h[len("Bearer "):])
	}
	return c.Query("access_token")
}

// RequireAuth rejects requests without a valid token and stores the caller's
// username in the context.
func (h *Handler) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token missing"})
			return
		}

		username, err := h.Auth.ParseToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token or expired"})
			return
		}

		c.Set(ctxUsername, username)
		c.Next()
	}
}

func currentUser(c *gin.Context) string {
	return c.GetString(ctxUsername)
}
