package controllers

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/streamcart/streamcart_backend/apperr"
	"github.com/streamcart/streamcart_backend/config"
	"github.com/streamcart/streamcart_backend/logger"
	"github.com/streamcart/streamcart_backend/middleware"
	"github.com/streamcart/streamcart_backend/models"
	"github.com/streamcart/streamcart_backend/repositories"
	"github.com/streamcart/streamcart_backend/services"
	"github.com/streamcart/streamcart_backend/utils"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/crypto/bcrypt"
)

const resetTokenTTL = 10 * time.Minute

type AdminController struct {
	admins        *repositories.AdminRepository
	users         *repositories.UserRepository
	jwt           *middleware.JWTManager
	mailer        *services.Mailer
	site          config.SiteConfig
	secureCookies bool
}

func NewAdminController(admins *repositories.AdminRepository, users *repositories.UserRepository, jwt *middleware.JWTManager, mailer *services.Mailer, cfg *config.AppConfig) *AdminController {
	return &AdminController{
		admins:        admins,
		users:         users,
		jwt:           jwt,
		mailer:        mailer,
		site:          cfg.Site,
		secureCookies: cfg.IsProduction(),
	}
}

// hashResetToken is the form a reset token is stored in.
func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func newResetToken() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// issue signs a session for admin, sets the cookie and returns both tokens.
func (ac *AdminController) issue(c echo.Context, admin *models.Admin) (string, string, error) {
	token, refresh, err := ac.jwt.GenerateJWT(admin.ID.Hex(), admin.Email, middleware.UserTypeAdmin, admin.Role)
	if err != nil {
		return "", "", apperr.Internal(err)
	}
	middleware.SetTokenCookie(c, token, ac.jwt.TokenTTL(), ac.secureCookies)
	return token, refresh, nil
}

func (ac *AdminController) currentAdmin(c echo.Context) (*models.Admin, error) {
	admin, ok := middleware.CurrentAdmin(c)
	if !ok {
		return nil, apperr.Unauthorized("Not authorized to access this route")
	}
	return admin, nil
}

func (ac *AdminController) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	admin, err := ac.admins.FindByEmail(ctx, utils.NormalizeEmail(req.Email))
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return apperr.Unauthorized("Invalid credentials")
		}
		return err
	}
	if !admin.IsActive {
		return apperr.Unauthorized("Your account has been deactivated")
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(req.Password)) != nil {
		return apperr.Unauthorized("Invalid credentials")
	}
	if err := ac.admins.TouchLogin(ctx, admin.ID); err != nil {
		logger.Warn().Err(err).Str("adminId", admin.ID.Hex()).Msg("could not record admin login")
	}

	token, refresh, err := ac.issue(c, admin)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.OK(map[string]interface{}{
		"admin":        admin,
		"token":        token,
		"refreshToken": refresh,
	}))
}

func (ac *AdminController) GetMe(c echo.Context) error {
	admin, err := ac.currentAdmin(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.OK(admin))
}

func (ac *AdminController) UpdateDetails(c echo.Context) error {
	admin, err := ac.currentAdmin(c)
	if err != nil {
		return err
	}
	var req models.UpdateAdminDetailsRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	set := bson.M{}
	if name := strings.TrimSpace(req.Name); name != "" {
		set["name"] = name
	}
	if req.Email != "" {
		set["email"] = utils.NormalizeEmail(req.Email)
	}
	updated, err := ac.admins.Update(c.Request().Context(), admin.ID, set)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.OK(updated))
}

// UpdatePassword checks the current password and returns a fresh session,
// since older tokens stop working once the password changes.
func (ac *AdminController) UpdatePassword(c echo.Context) error {
	admin, err := ac.currentAdmin(c)
	if err != nil {
		return err
	}
	var req models.UpdatePasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(req.CurrentPassword)) != nil {
		return apperr.Unauthorized("Password is incorrect")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Internal(err)
	}
	updated, err := ac.admins.SetPassword(c.Request().Context(), admin.ID, string(hash))
	if err != nil {
		return err
	}
	token, _, err := ac.issue(c, updated)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.OK(map[string]interface{}{"token": token}))
}

// ForgotPassword mails a one-time reset link valid for ten minutes.
func (ac *AdminController) ForgotPassword(c echo.Context) error {
	var req models.ForgotPasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	admin, err := ac.admins.FindByEmail(ctx, utils.NormalizeEmail(req.Email))
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return apperr.NotFound("There is no admin with that email")
		}
		return err
	}

	token, err := newResetToken()
	if err != nil {
		return apperr.Internal(err)
	}
	if err := ac.admins.SetResetToken(ctx, admin.ID, hashResetToken(token), time.Now().Add(resetTokenTTL)); err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s://%s/api/v1/auth/admin/resetpassword/%s", c.Scheme(), c.Request().Host, token)
	html, err := services.RenderLinkMail(services.LinkMail{
		Heading:  "Reset your password",
		Intro:    "You are receiving this email because a password reset was requested for your account. Send a PUT request with your new password to the link below.",
		URL:      resetURL,
		Action:   "Reset password",
		Minutes:  int(resetTokenTTL.Minutes()),
		SiteName: ac.site.Name,
	})
	if err != nil {
		return apperr.Internal(err)
	}
	if err := ac.mailer.Send(ctx, []string{admin.Email}, "Password reset token", html); err != nil {
		if clearErr := ac.admins.ClearResetToken(ctx, admin.ID); clearErr != nil {
			logger.Warn().Err(clearErr).Str("adminId", admin.ID.Hex()).Msg("could not clear reset token")
		}
		return apperr.Wrap(apperr.KindInternal, "Email could not be sent", err)
	}
	return c.JSON(http.StatusOK, models.OK("Email sent"))
}

func (ac *AdminController) ResetPassword(c echo.Context) error {
	var req models.ResetPasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	admin, err := ac.admins.FindByResetToken(ctx, hashResetToken(c.Param("resettoken")))
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return apperr.InvalidInput("Invalid token")
		}
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Internal(err)
	}
	updated, err := ac.admins.SetPassword(ctx, admin.ID, string(hash))
	if err != nil {
		return err
	}
	token, _, err := ac.issue(c, updated)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.OK(map[string]interface{}{"token": token}))
}

// Logout revokes the current token and clears the cookie.
func (ac *AdminController) Logout(c echo.Context) error {
	if err := ac.jwt.Revoke(c); err != nil {
		return apperr.Internal(err)
	}
	middleware.ClearTokenCookie(c)
	return c.JSON(http.StatusOK, models.OK(map[string]interface{}{}))
}

// SendBulkEmail mails every active user, or the given recipients.
func (ac *AdminController) SendBulkEmail(c echo.Context) error {
	var req models.BulkEmailRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	recipients := req.Recipients
	if len(recipients) == 0 {
		emails, err := ac.users.ActiveEmails(ctx)
		if err != nil {
			return err
		}
		recipients = emails
	}
	if len(recipients) == 0 {
		return apperr.NotFound("No active users found")
	}

	html, err := services.RenderBulkMail(services.BulkMail{
		Paragraphs: strings.Split(strings.TrimSpace(req.Message), "\n"),
		SiteName:   ac.site.Name,
	})
	if err != nil {
		return apperr.Internal(err)
	}

	sent, err := ac.mailer.SendBulk(ctx, recipients, req.Subject, html)
	if err != nil {
		logger.Error().Err(err).Int("sent", sent).Int("total", len(recipients)).Msg("bulk email interrupted")
	}
	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Data: map[string]int{
			"totalUsers":   len(recipients),
			"successCount": sent,
			"failCount":    len(recipients) - sent,
		},
		Message: fmt.Sprintf("Email sent to %d out of %d users", sent, len(recipients)),
	})
}

// RegisterAdmin creates another admin account. Superadmin only.
func (ac *AdminController) RegisterAdmin(c echo.Context) error {
	var req models.RegisterAdminRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	email := utils.NormalizeEmail(req.Email)

	if _, err := ac.admins.FindByEmail(ctx, email); err == nil {
		return apperr.InvalidInput("Admin already exists with this email")
	} else if !apperr.Is(err, apperr.KindNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Internal(err)
	}
	role := req.Role
	if role == "" {
		role = models.AdminRoleAdmin
	}
	admin := &models.Admin{
		Name:        strings.TrimSpace(req.Name),
		Email:       email,
		Password:    string(hash),
		Role:        role,
		Permissions: models.DefaultAdminPermissions(),
		IsActive:    true,
	}
	if err := ac.admins.Create(ctx, admin); err != nil {
		return err
	}

	token, _, err := ac.jwt.GenerateJWT(admin.ID.Hex(), admin.Email, middleware.UserTypeAdmin, admin.Role)
	if err != nil {
		return apperr.Internal(err)
	}
	return c.JSON(http.StatusCreated, models.OK(map[string]interface{}{
		"admin": map[string]interface{}{
			"id":    admin.ID,
			"name":  admin.Name,
			"email": admin.Email,
			"role":  admin.Role,
		},
		"token": token,
	}))
}

func (ac *AdminController) GetAdmins(c echo.Context) error {
	admins, err := ac.admins.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.List(admins, len(admins)))
}

func (ac *AdminController) GetAdmin(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	admin, err := ac.admins.FindByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.OK(admin))
}

func (ac *AdminController) UpdateAdmin(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req models.UpdateAdminRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	set := bson.M{}
	if name := strings.TrimSpace(req.Name); name != "" {
		set["name"] = name
	}
	if req.Email != "" {
		set["email"] = utils.NormalizeEmail(req.Email)
	}
	if req.Role != "" {
		set["role"] = req.Role
	}
	if req.Permissions != nil {
		set["permissions"] = *req.Permissions
	}
	admin, err := ac.admins.Update(c.Request().Context(), id, set)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.OK(admin))
}

func (ac *AdminController) DeleteAdmin(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	self, err := ac.currentAdmin(c)
	if err != nil {
		return err
	}
	if self.ID == id {
		return apperr.InvalidOperation("You cannot delete your own account")
	}
	if err := ac.admins.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.OK(map[string]interface{}{}))
}

func (ac *AdminController) ToggleAdminStatus(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	admin, err := ac.admins.ToggleActive(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.OK(admin))
}
