package middleware

import (
	"context"
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/streamcart/streamcart_backend/apperr"
	"github.com/streamcart/streamcart_backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserFinder interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

type AdminFinder interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Admin, error)
}

// Guard checks that the account behind a verified token still exists and
// may act. Route groups combine it with JWTManager.JWTMiddleware.
type Guard struct {
	jwt    *JWTManager
	users  UserFinder
	admins AdminFinder
}

func NewGuard(jwt *JWTManager, users UserFinder, admins AdminFinder) *Guard {
	return &Guard{jwt: jwt, users: users, admins: admins}
}

// ProtectUser admits only live user accounts.
func (g *Guard) ProtectUser() echo.MiddlewareFunc {
	return g.protect(UserTypeUser)
}

// ProtectAdmin admits only live admin accounts whose password has not
// changed since the token was issued.
func (g *Guard) ProtectAdmin() echo.MiddlewareFunc {
	return g.protect(UserTypeAdmin)
}

// ProtectAny admits users and admins.
func (g *Guard) ProtectAny() echo.MiddlewareFunc {
	return g.protect(UserTypeUser, UserTypeAdmin)
}

// Optional attaches the caller's identity when a valid token is present.
func (g *Guard) Optional() echo.MiddlewareFunc {
	return g.jwt.OptionalJWTMiddleware()
}

func (g *Guard) protect(allowed ...string) echo.MiddlewareFunc {
	verify := g.jwt.JWTMiddleware()
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return verify(func(c echo.Context) error {
			claims := GetUserFromToken(c)
			if claims == nil || !contains(allowed, claims.UserType) {
				return errNotAuthorized
			}
			if err := g.checkAccount(c, claims); err != nil {
				return err
			}
			return next(c)
		})
	}
}

func (g *Guard) checkAccount(c echo.Context, claims *JwtCustomClaims) error {
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return errNotAuthorized
	}
	ctx := c.Request().Context()

	if claims.UserType == UserTypeAdmin {
		admin, err := g.admins.FindByID(ctx, id)
		if err != nil {
			if apperr.Is(err, apperr.KindNotFound) {
				return apperr.Unauthorized("The admin belonging to this token no longer exists")
			}
			return err
		}
		if !admin.IsActive {
			return apperr.Unauthorized("Your account has been deactivated")
		}
		if admin.ChangedPasswordAfter(claims.IssuedAt) {
			return apperr.Unauthorized("Admin recently changed password. Please login again")
		}
		c.Set("admin", admin)
		return nil
	}

	user, err := g.users.FindByID(ctx, id)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return apperr.Unauthorized("The user belonging to this token no longer exists")
		}
		return err
	}
	if !user.IsActive {
		return apperr.Unauthorized("Your account has been deactivated")
	}
	c.Set("account", user)
	return nil
}

// Authorize grants access to admins holding one of roles, and to users whose
// role is admin when roles includes it.
func Authorize(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := GetUserFromToken(c)
			if claims == nil {
				return apperr.Forbidden("Not authorized - authentication required")
			}
			role := claims.Role
			if admin, ok := CurrentAdmin(c); ok {
				role = admin.Role
			} else if user, ok := CurrentUser(c); ok {
				role = user.Role
			}
			switch claims.UserType {
			case UserTypeAdmin:
				if contains(roles, role) {
					return next(c)
				}
				return apperr.Forbidden(fmt.Sprintf("Admin role %s is not authorized to access this route", role))
			default:
				if role == models.RoleAdmin && contains(roles, models.RoleAdmin) {
					return next(c)
				}
				return apperr.Forbidden(fmt.Sprintf("User role %s is not authorized to access this route", role))
			}
		}
	}
}

// CurrentAdmin returns the admin loaded by ProtectAdmin or ProtectAny.
func CurrentAdmin(c echo.Context) (*models.Admin, bool) {
	admin, ok := c.Get("admin").(*models.Admin)
	return admin, ok
}

// CurrentUser returns the user loaded by ProtectUser or ProtectAny.
func CurrentUser(c echo.Context) (*models.User, bool) {
	user, ok := c.Get("account").(*models.User)
	return user, ok
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
