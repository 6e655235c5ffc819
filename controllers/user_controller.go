package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/streamcart/streamcart_backend/apperr"
	"github.com/streamcart/streamcart_backend/config"
	"github.com/streamcart/streamcart_backend/logger"
	"github.com/streamcart/streamcart_backend/middleware"
	"github.com/streamcart/streamcart_backend/models"
	"github.com/streamcart/streamcart_backend/repositories"
	"github.com/streamcart/streamcart_backend/services"
	"github.com/streamcart/streamcart_backend/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const (
	otpPurposeRegister = "register"
	otpPurposeReset    = "reset"
)

type UserController struct {
	users    *repositories.UserRepository
	videos   *repositories.VideoRepository
	graph    *services.GraphMutator
	creators services.CreatorLookup
	otps     *utils.OTPStore
	mailer   *services.Mailer
	jwt      *middleware.JWTManager
	blobs    services.BlobStore
	notifier services.Notifier
	site     config.SiteConfig
}

type UserDeps struct {
	Users    *repositories.UserRepository
	Videos   *repositories.VideoRepository
	Graph    *services.GraphMutator
	Creators services.CreatorLookup
	OTPs     *utils.OTPStore
	Mailer   *services.Mailer
	JWT      *middleware.JWTManager
	Blobs    services.BlobStore
	Notifier services.Notifier
	Site     config.SiteConfig
}

func NewUserController(d UserDeps) *UserController {
	return &UserController{
		users:    d.Users,
		videos:   d.Videos,
		graph:    d.Graph,
		creators: d.Creators,
		otps:     d.OTPs,
		mailer:   d.Mailer,
		jwt:      d.JWT,
		blobs:    d.Blobs,
		notifier: d.Notifier,
		site:     d.Site,
	}
}

// otpError maps OTP store failures onto caller-facing errors.
func otpError(err error) error {
	switch {
	case errors.Is(err, utils.ErrOTPInvalid):
		return apperr.InvalidInput("Invalid or expired OTP")
	case errors.Is(err, utils.ErrOTPTooManyTries):
		return apperr.InvalidOperation("Too many attempts, please request a new OTP later")
	default:
		return apperr.Internal(err)
	}
}

// sendOTP stores a fresh code and mails it. The code is dropped again when
// the mail cannot be delivered so the caller can retry cleanly.
func (uc *UserController) sendOTP(c echo.Context, purpose, email, subject, heading string) error {
	ctx := c.Request().Context()
	code, err := utils.GenerateOTP()
	if err != nil {
		return apperr.Internal(err)
	}
	if err := uc.otps.Save(ctx, purpose, email, code); err != nil {
		return apperr.Internal(err)
	}

	html, err := services.RenderOTPMail(services.OTPMail{
		Heading:  heading,
		Intro:    "Use the following code to continue.",
		Code:     code,
		Minutes:  int(utils.OTPTTL.Minutes()),
		SiteName: uc.site.Name,
	})
	if err != nil {
		return apperr.Internal(err)
	}
	if err := uc.mailer.Send(ctx, []string{email}, subject, html); err != nil {
		logger.Error().Err(err).Str("email", email).Str("purpose", purpose).Msg("otp mail failed")
		uc.otps.Discard(ctx, purpose, email)
		return apperr.Wrap(apperr.KindInternal, "Email could not be sent. Please try again later.", err)
	}
	return nil
}

func (uc *UserController) tokenResponse(c echo.Context, status int, user *models.User) error {
	token, refresh, err := uc.jwt.GenerateJWT(user.ID.Hex(), user.Email, middleware.UserTypeUser, user.Role)
	if err != nil {
		return apperr.Internal(err)
	}
	return c.JSON(status, models.AuthResult{Success: true, Token: token, RefreshToken: refresh, User: user})
}

// SendOTP mails a registration code to an unused address.
func (uc *UserController) SendOTP(c echo.Context) error {
	var req models.SendOTPRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	email := utils.NormalizeEmail(req.Email)

	taken, err := uc.users.Taken(c.Request().Context(), email, "", primitive.NilObjectID)
	if err != nil {
		return err
	}
	if taken {
		return apperr.InvalidInput("User already exists with this email")
	}
	if err := uc.sendOTP(c, otpPurposeRegister, email, "Your verification code", "Verify your email"); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.OK("OTP sent to email"))
}

func (uc *UserController) Register(c echo.Context) error {
	var req models.RegisterUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	email := utils.NormalizeEmail(req.Email)

	if err := uc.otps.Verify(ctx, otpPurposeRegister, email, req.OTP); err != nil {
		return otpError(err)
	}
	taken, err := uc.users.Taken(ctx, email, req.Username, primitive.NilObjectID)
	if err != nil {
		return err
	}
	if taken {
		return apperr.Conflict("Username or email already in use")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Internal(err)
	}
	user := &models.User{
		Username:       req.Username,
		Email:          email,
		Password:       string(hash),
		ProfilePicture: models.DefaultProfilePicture,
		Role:           models.RoleUser,
		IsVerified:     true,
		IsActive:       true,
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return err
	}
	return uc.tokenResponse(c, http.StatusCreated, user)
}

func (uc *UserController) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	user, err := uc.users.FindByEmail(c.Request().Context(), utils.NormalizeEmail(req.Email))
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return apperr.Unauthorized("Invalid credentials")
		}
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return apperr.Unauthorized("Invalid credentials")
	}
	if !user.IsActive {
		return apperr.Unauthorized("Your account has been deactivated")
	}
	return uc.tokenResponse(c, http.StatusOK, user)
}

func (uc *UserController) ForgotPassword(c echo.Context) error {
	var req models.ForgotPasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	email := utils.NormalizeEmail(req.Email)
	if _, err := uc.users.FindByEmail(c.Request().Context(), email); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return apperr.NotFound("There is no user with that email")
		}
		return err
	}
	if err := uc.sendOTP(c, otpPurposeReset, email, "Password Reset OTP", "Reset your password"); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.OK("OTP sent to email"))
}

func (uc *UserController) ResetPasswordWithOTP(c echo.Context) error {
	var req models.ResetPasswordOTPRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	email := utils.NormalizeEmail(req.Email)

	if err := uc.otps.Verify(ctx, otpPurposeReset, email, req.OTP); err != nil {
		return otpError(err)
	}
	user, err := uc.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Internal(err)
	}
	if err := uc.users.SetPassword(ctx, user.ID, string(hash)); err != nil {
		return err
	}
	return uc.tokenResponse(c, http.StatusOK, user)
}

func (uc *UserController) GetMe(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return apperr.Unauthorized("Not authorized to access this route")
	}
	return c.JSON(http.StatusOK, models.OK(user))
}

func (uc *UserController) UpdateDetails(c echo.Context) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return err
	}
	var req models.UpdateUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	req.Email = utils.NormalizeEmail(req.Email)
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)

	taken, err := uc.users.Taken(ctx, req.Email, req.Username, userID)
	if err != nil {
		return err
	}
	if taken {
		return apperr.Conflict("Username or email already in use")
	}
	user, err := uc.users.UpdateDetails(ctx, userID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.OK(user))
}

func (uc *UserController) UploadProfilePicture(c echo.Context) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return err
	}
	url, _, err := uploadImage(c, uc.blobs, "file", "users", utils.AvatarWidth)
	if err != nil {
		return err
	}
	if url == "" {
		return apperr.InvalidInput("Please upload a file")
	}
	user, err := uc.users.SetProfilePicture(c.Request().Context(), userID, url)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.OK(user))
}

func (uc *UserController) AddAddress(c echo.Context) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return err
	}
	var addr models.Address
	if err := bind(c, &addr); err != nil {
		return err
	}
	user, err := uc.users.AddAddress(c.Request().Context(), userID, addr)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.OK(user))
}

type addressUpdate struct {
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zipCode"`
	Country   string `json:"country"`
	IsDefault *bool  `json:"isDefault"`
}

// UpdateAddress changes the provided fields of one address.
func (uc *UserController) UpdateAddress(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return apperr.Unauthorized("Not authorized to access this route")
	}
	addressID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req addressUpdate
	if err := c.Bind(&req); err != nil {
		return apperr.InvalidInput("Invalid request body")
	}

	var current *models.Address
	for i := range user.Addresses {
		if user.Addresses[i].ID == addressID {
			current = &user.Addresses[i]
			break
		}
	}
	if current == nil {
		return apperr.NotFound("Address not found")
	}

	addr := *current
	for _, f := range []struct {
		dst *string
		src string
	}{
		{&addr.Street, req.Street},
		{&addr.City, req.City},
		{&addr.State, req.State},
		{&addr.ZipCode, req.ZipCode},
		{&addr.Country, req.Country},
	} {
		if f.src != "" {
			*f.dst = f.src
		}
	}
	if req.IsDefault != nil {
		addr.IsDefault = *req.IsDefault
	}

	updated, err := uc.users.UpdateAddress(c.Request().Context(), user.ID, addressID, addr)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.OK(updated))
}

func (uc *UserController) DeleteAddress(c echo.Context) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return err
	}
	addressID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	user, err := uc.users.DeleteAddress(c.Request().Context(), userID, addressID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.OK(user))
}

// ToggleSubscribe subscribes the caller to a creator, or unsubscribes when
// already subscribed.
func (uc *UserController) ToggleSubscribe(c echo.Context) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return err
	}
	creatorID, err := paramID(c, "creatorId")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	state, err := uc.graph.ToggleEdge(ctx, userID, creatorID, services.EdgeSubscription)
	if err != nil {
		return err
	}

	if state.Present {
		name := "Someone"
		if user, ok := middleware.CurrentUser(c); ok {
			name = user.Username
		}
		uc.notifier.Notify(ctx, creatorID, services.Notification{
			Type:    services.NotificationNewSubscriber,
			Title:   "New subscriber",
			Message: fmt.Sprintf("%s subscribed to your channel", name),
			Data:    map[string]string{"userId": userID.Hex()},
		})
	}

	return c.JSON(http.StatusOK, models.OK(models.SubscriptionResult{
		IsSubscribed:     state.Present,
		SubscribersCount: state.InCount,
	}))
}

// GetPublicProfile returns a user's public card and approved uploads.
func (uc *UserController) GetPublicProfile(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	user, err := uc.users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	videos, err := uc.videos.ByCreator(ctx, models.CreatorRef{Kind: models.CreatorUser, ID: id})
	if err != nil {
		return err
	}
	if err := services.AttachCreators(ctx, uc.creators, videos); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.OK(map[string]interface{}{
		"user": models.PublicProfile{
			ID:               user.ID,
			Username:         user.Username,
			ProfilePicture:   user.ProfilePicture,
			SubscribersCount: len(user.Subscribers),
		},
		"videos": videos,
	}))
}

// RegisterFCMToken stores the device token used for push notifications.
func (uc *UserController) RegisterFCMToken(c echo.Context) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return err
	}
	var req models.FCMTokenRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := uc.users.SetFCMToken(c.Request().Context(), userID, req.Token); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.Message("FCM token registered"))
}
