package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/streamcart/streamcart_backend/apperr"
	"github.com/streamcart/streamcart_backend/config"
	"github.com/streamcart/streamcart_backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	UserTypeUser  = "user"
	UserTypeAdmin = "admin"

	// TokenCookie carries the admin session token for browser clients.
	TokenCookie = "token"

	refreshTTL = 90 * 24 * time.Hour
)

var errNotAuthorized = apperr.Unauthorized("Not authorized to access this route")

// JwtCustomClaims for JWT token. UserType tells which collection UserID
// points into; Role is the role stored on that account.
type JwtCustomClaims struct {
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	UserType string `json:"userType"`
	Role     string `json:"role"`
	jwt.StandardClaims
}

func (c JwtCustomClaims) Valid() error {
	now := time.Now().Unix()
	if c.ExpiresAt > 0 && now > c.ExpiresAt {
		return errors.New("token is expired")
	}
	if c.NotBefore > 0 && now < c.NotBefore {
		return errors.New("token used before valid")
	}
	if c.UserID == "" || c.UserType == "" {
		return errors.New("token is missing subject")
	}
	return nil
}

// Creator is the creator reference of the authenticated account.
func (c *JwtCustomClaims) Creator() (models.CreatorRef, error) {
	id, err := primitive.ObjectIDFromHex(c.UserID)
	if err != nil {
		return models.CreatorRef{}, errNotAuthorized
	}
	kind := models.CreatorUser
	if c.UserType == UserTypeAdmin {
		kind = models.CreatorAdmin
	}
	return models.CreatorRef{Kind: kind, ID: id}, nil
}

// JWTManager issues and verifies session tokens.
type JWTManager struct {
	secret    []byte
	expire    time.Duration
	blacklist *TokenBlacklist
}

func NewJWTManager(cfg config.JWTConfig, blacklist *TokenBlacklist) *JWTManager {
	return &JWTManager{secret: []byte(cfg.Secret), expire: cfg.Expire, blacklist: blacklist}
}

// GenerateJWT returns an access token and a longer lived refresh token.
func (m *JWTManager) GenerateJWT(userID, email, userType, role string) (string, string, error) {
	now := time.Now()
	sign := func(ttl time.Duration) (string, error) {
		claims := &JwtCustomClaims{
			UserID:   userID,
			Email:    email,
			UserType: userType,
			Role:     role,
			StandardClaims: jwt.StandardClaims{
				ExpiresAt: now.Add(ttl).Unix(),
				IssuedAt:  now.Unix(),
			},
		}
		return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	}

	token, err := sign(m.expire)
	if err != nil {
		return "", "", err
	}
	refresh, err := sign(refreshTTL)
	if err != nil {
		return "", "", err
	}
	return token, refresh, nil
}

// Parse verifies a raw token outside the echo middleware chain.
func (m *JWTManager) Parse(raw string) (*JwtCustomClaims, error) {
	claims := &JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, errNotAuthorized
	}
	return claims, nil
}

// Verify parses raw and rejects tokens revoked through logout.
func (m *JWTManager) Verify(ctx context.Context, raw string) (*JwtCustomClaims, error) {
	claims, err := m.Parse(raw)
	if err != nil {
		return nil, err
	}
	if m.blacklist.IsRevoked(ctx, raw) {
		return nil, apperr.Unauthorized("Token has been invalidated")
	}
	return claims, nil
}

// TokenTTL is how long an access token stays valid.
func (m *JWTManager) TokenTTL() time.Duration {
	return m.expire
}

func (m *JWTManager) jwtConfig() middleware.JWTConfig {
	return middleware.JWTConfig{
		Claims:      &JwtCustomClaims{},
		SigningKey:  m.secret,
		TokenLookup: "header:Authorization:Bearer ,cookie:" + TokenCookie,
		SuccessHandler: func(c echo.Context) {
			claims := c.Get("user").(*jwt.Token).Claims.(*JwtCustomClaims)
			c.Set("userId", claims.UserID)
			c.Set("userType", claims.UserType)
			c.Set("email", claims.Email)
			c.Set("role", claims.Role)
		},
		ErrorHandler: func(err error) error {
			return errNotAuthorized
		},
	}
}

// JWTMiddleware requires a valid, unrevoked token.
func (m *JWTManager) JWTMiddleware() echo.MiddlewareFunc {
	verify := middleware.JWTWithConfig(m.jwtConfig())
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return verify(m.rejectRevoked(next))
	}
}

// OptionalJWTMiddleware reads a token when one is present and otherwise
// lets the request through anonymously.
func (m *JWTManager) OptionalJWTMiddleware() echo.MiddlewareFunc {
	cfg := m.jwtConfig()
	cfg.ContinueOnIgnoredError = true
	cfg.ErrorHandler = nil
	cfg.ErrorHandlerWithContext = func(err error, c echo.Context) error {
		return nil
	}
	verify := middleware.JWTWithConfig(cfg)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return verify(func(c echo.Context) error {
			if raw := RawToken(c); raw != "" && m.blacklist.IsRevoked(c.Request().Context(), raw) {
				c.Set("user", nil)
				c.Set("userId", "")
				c.Set("userType", "")
			}
			return next(c)
		})
	}
}

func (m *JWTManager) rejectRevoked(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if m.blacklist.IsRevoked(c.Request().Context(), RawToken(c)) {
			return apperr.Unauthorized("Token has been invalidated")
		}
		return next(c)
	}
}

// Revoke blacklists the request's token until it would have expired.
func (m *JWTManager) Revoke(c echo.Context) error {
	claims := GetUserFromToken(c)
	raw := RawToken(c)
	if claims == nil || raw == "" {
		return nil
	}
	return m.blacklist.Revoke(c.Request().Context(), raw, time.Unix(claims.ExpiresAt, 0))
}

// GetUserFromToken extracts the verified claims, nil for anonymous requests.
func GetUserFromToken(c echo.Context) *JwtCustomClaims {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok || token == nil {
		return nil
	}
	claims, ok := token.Claims.(*JwtCustomClaims)
	if !ok {
		return nil
	}
	return claims
}

// RawToken returns the encoded token of a verified request.
func RawToken(c echo.Context) string {
	if token, ok := c.Get("user").(*jwt.Token); ok && token != nil {
		return token.Raw
	}
	return ""
}

func ExtractUserType(c echo.Context) string {
	if userType, ok := c.Get("userType").(string); ok && userType != "" {
		return userType
	}
	if claims := GetUserFromToken(c); claims != nil {
		return claims.UserType
	}
	return ""
}

// CurrentUserID returns the authenticated account id.
func CurrentUserID(c echo.Context) (primitive.ObjectID, error) {
	claims := GetUserFromToken(c)
	if claims == nil {
		return primitive.NilObjectID, errNotAuthorized
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, errNotAuthorized
	}
	return id, nil
}

// CurrentCreator returns the authenticated account as a creator reference.
func CurrentCreator(c echo.Context) (models.CreatorRef, error) {
	claims := GetUserFromToken(c)
	if claims == nil {
		return models.CreatorRef{}, errNotAuthorized
	}
	return claims.Creator()
}

// SetTokenCookie stores the session token for browser clients.
func SetTokenCookie(c echo.Context, token string, ttl time.Duration, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     TokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearTokenCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     TokenCookie,
		Value:    "none",
		Path:     "/",
		Expires:  time.Now().Add(10 * time.Second),
		HttpOnly: true,
	})
}
