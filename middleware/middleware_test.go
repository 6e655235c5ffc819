package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/streamcart/streamcart_backend/apperr"
	"github.com/streamcart/streamcart_backend/config"
	"github.com/streamcart/streamcart_backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/time/rate"
)

type userMap map[primitive.ObjectID]*models.User

func (m userMap) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	if u, ok := m[id]; ok {
		return u, nil
	}
	return nil, apperr.NotFound("User not found")
}

type adminMap map[primitive.ObjectID]*models.Admin

func (m adminMap) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Admin, error) {
	if a, ok := m[id]; ok {
		return a, nil
	}
	return nil, apperr.NotFound("Admin not found")
}

func setupTestServer(users userMap, admins adminMap) (*echo.Echo, *JWTManager) {
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler
	e.Validator = NewValidator()
	jwtManager := NewJWTManager(config.JWTConfig{Secret: "test-secret-key", Expire: time.Hour}, NewTokenBlacklist(nil))
	guard := NewGuard(jwtManager, users, admins)

	ok := func(c echo.Context) error {
		return c.JSON(http.StatusOK, models.OK(GetUserFromToken(c).UserID))
	}
	e.GET("/user", ok, guard.ProtectUser())
	e.GET("/admin", ok, guard.ProtectAdmin(), Authorize(models.AdminRoleSuper))
	e.GET("/any", ok, guard.ProtectAny(), Authorize(models.AdminRoleAdmin, models.AdminRoleSuper))
	e.GET("/optional", func(c echo.Context) error {
		id := ""
		if claims := GetUserFromToken(c); claims != nil {
			id = claims.UserID
		}
		return c.String(http.StatusOK, id)
	}, guard.Optional())
	e.POST("/logout", func(c echo.Context) error {
		if err := jwtManager.Revoke(c); err != nil {
			return err
		}
		return c.JSON(http.StatusOK, models.Message("logged out"))
	}, guard.ProtectAny())
	return e, jwtManager
}

func doRequest(e *echo.Echo, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	var body models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	return body.Error
}

func TestProtectUser_ValidToken(t *testing.T) {
	id := primitive.NewObjectID()
	e, jwtManager := setupTestServer(userMap{id: {ID: id, IsActive: true, Role: models.RoleUser}}, adminMap{})
	token, _, err := jwtManager.GenerateJWT(id.Hex(), "a@example.com", UserTypeUser, models.RoleUser)
	require.NoError(t, err)

	rec := doRequest(e, http.MethodGet, "/user", token)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), id.Hex())
}

func TestProtectUser_CookieToken(t *testing.T) {
	id := primitive.NewObjectID()
	e, jwtManager := setupTestServer(userMap{id: {ID: id, IsActive: true}}, adminMap{})
	token, _, err := jwtManager.GenerateJWT(id.Hex(), "a@example.com", UserTypeUser, models.RoleUser)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/user", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: token})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProtectUser_NoToken(t *testing.T) {
	e, _ := setupTestServer(userMap{}, adminMap{})

	rec := doRequest(e, http.MethodGet, "/user", "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Not authorized to access this route", decodeError(t, rec))
}

func TestProtectUser_InvalidToken(t *testing.T) {
	e, _ := setupTestServer(userMap{}, adminMap{})

	rec := doRequest(e, http.MethodGet, "/user", "not.a.token")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProtectUser_RejectsAdminToken(t *testing.T) {
	id := primitive.NewObjectID()
	e, jwtManager := setupTestServer(userMap{}, adminMap{id: {ID: id, IsActive: true, Role: models.AdminRoleAdmin}})
	token, _, _ := jwtManager.GenerateJWT(id.Hex(), "admin@example.com", UserTypeAdmin, models.AdminRoleAdmin)

	rec := doRequest(e, http.MethodGet, "/user", token)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProtectUser_DeletedAccount(t *testing.T) {
	e, jwtManager := setupTestServer(userMap{}, adminMap{})
	token, _, _ := jwtManager.GenerateJWT(primitive.NewObjectID().Hex(), "gone@example.com", UserTypeUser, models.RoleUser)

	rec := doRequest(e, http.MethodGet, "/user", token)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "The user belonging to this token no longer exists", decodeError(t, rec))
}

func TestProtectAdmin_PasswordChangedAfterToken(t *testing.T) {
	id := primitive.NewObjectID()
	changed := time.Now().Add(time.Minute)
	admins := adminMap{id: {ID: id, IsActive: true, Role: models.AdminRoleSuper, PasswordChangedAt: &changed}}
	e, jwtManager := setupTestServer(userMap{}, admins)
	token, _, _ := jwtManager.GenerateJWT(id.Hex(), "root@example.com", UserTypeAdmin, models.AdminRoleSuper)

	rec := doRequest(e, http.MethodGet, "/admin", token)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Admin recently changed password. Please login again", decodeError(t, rec))
}

func TestAuthorize_RoleChecks(t *testing.T) {
	adminID, userID, promotedID := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	admins := adminMap{adminID: {ID: adminID, IsActive: true, Role: models.AdminRoleModerator}}
	users := userMap{
		userID:     {ID: userID, IsActive: true, Role: models.RoleUser},
		promotedID: {ID: promotedID, IsActive: true, Role: models.RoleAdmin},
	}
	e, jwtManager := setupTestServer(users, admins)

	moderator, _, _ := jwtManager.GenerateJWT(adminID.Hex(), "mod@example.com", UserTypeAdmin, models.AdminRoleModerator)
	rec := doRequest(e, http.MethodGet, "/any", moderator)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Admin role moderator is not authorized to access this route", decodeError(t, rec))

	plain, _, _ := jwtManager.GenerateJWT(userID.Hex(), "u@example.com", UserTypeUser, models.RoleUser)
	rec = doRequest(e, http.MethodGet, "/any", plain)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	promoted, _, _ := jwtManager.GenerateJWT(promotedID.Hex(), "p@example.com", UserTypeUser, models.RoleUser)
	rec = doRequest(e, http.MethodGet, "/any", promoted)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOptionalAuth(t *testing.T) {
	id := primitive.NewObjectID()
	e, jwtManager := setupTestServer(userMap{}, adminMap{})
	token, _, _ := jwtManager.GenerateJWT(id.Hex(), "a@example.com", UserTypeUser, models.RoleUser)

	assert.Equal(t, id.Hex(), doRequest(e, http.MethodGet, "/optional", token).Body.String())

	anon := doRequest(e, http.MethodGet, "/optional", "")
	assert.Equal(t, http.StatusOK, anon.Code)
	assert.Empty(t, anon.Body.String())

	bad := doRequest(e, http.MethodGet, "/optional", "garbage")
	assert.Equal(t, http.StatusOK, bad.Code)
	assert.Empty(t, bad.Body.String())
}

func TestRevokedTokenRejected(t *testing.T) {
	id := primitive.NewObjectID()
	e, jwtManager := setupTestServer(userMap{id: {ID: id, IsActive: true}}, adminMap{})
	token, _, _ := jwtManager.GenerateJWT(id.Hex(), "a@example.com", UserTypeUser, models.RoleUser)

	require.Equal(t, http.StatusOK, doRequest(e, http.MethodPost, "/logout", token).Code)

	rec := doRequest(e, http.MethodGet, "/user", token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Token has been invalidated", decodeError(t, rec))
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"not found", apperr.NotFound("Video not found with id of %s", "x"), http.StatusNotFound, "Video not found with id of x"},
		{"invalid op", apperr.InvalidOperation("You cannot subscribe to yourself"), http.StatusBadRequest, "You cannot subscribe to yourself"},
		{"internal", apperr.Internal(errors.New("socket closed")), http.StatusInternalServerError, "Server Error"},
		{"plain", errors.New("boom"), http.StatusInternalServerError, "Server Error"},
		{"unknown route", echo.ErrNotFound, http.StatusNotFound, "Route not found"},
		{"bad hex", primitive.ErrInvalidHex, http.StatusNotFound, "Resource not found"},
		{"echo bad request", echo.NewHTTPError(http.StatusBadRequest, "bad body"), http.StatusBadRequest, "bad body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			ErrorHandler(tt.err, c)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.msg, decodeError(t, rec))
		})
	}
}

func TestErrorHandler_ValidationErrors(t *testing.T) {
	type payload struct {
		Email    string `validate:"required,email"`
		Username string `validate:"required,username"`
	}
	err := NewValidator().Validate(&payload{Email: "nope", Username: "a b"})
	require.Error(t, err)

	e := echo.New()
	rec := httptest.NewRecorder()
	ErrorHandler(err, e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	msg := decodeError(t, rec)
	assert.Contains(t, msg, "Please provide a valid email")
	assert.Contains(t, msg, "Username may only contain")
}

func TestUnknownRoute(t *testing.T) {
	e, _ := setupTestServer(userMap{}, adminMap{})

	rec := doRequest(e, http.MethodGet, "/nope", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Route not found", decodeError(t, rec))
}

func TestRateLimiter_BlocksAfterBurst(t *testing.T) {
	limiter := NewRateLimiter()
	limiter.Limit("/login", rate.Every(time.Hour), 2)

	e := echo.New()
	e.Use(limiter.RateLimit())
	e.POST("/login", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })
	e.GET("/uploads/a.png", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	codes := []int{}
	for i := 0; i < 3; i++ {
		codes = append(codes, doRequest(e, http.MethodPost, "/login", "").Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)

	// static files are never limited
	assert.Equal(t, http.StatusOK, doRequest(e, http.MethodGet, "/uploads/a.png", "").Code)
}

func TestSecurityHeaders(t *testing.T) {
	e := echo.New()
	e.Use(SecurityHeadersWithConfig(SecurityConfig{HSTS: true}))
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	rec := doRequest(e, http.MethodGet, "/", "")

	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "default-src 'self'")
	assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))
}
