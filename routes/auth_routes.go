package routes

import (
	"github.com/labstack/echo/v4"
	"github.com/streamcart/streamcart_backend/middleware"
	"github.com/streamcart/streamcart_backend/models"
)

// RegisterAdminRoutes sets up admin session and account management routes
func RegisterAdminRoutes(api *echo.Group, h *Handlers) {
	ac := h.Admins
	admin := api.Group("/auth/admin")

	// Public
	admin.POST("/login", ac.Login)
	admin.POST("/forgotpassword", ac.ForgotPassword)
	admin.PUT("/resetpassword/:resettoken", ac.ResetPassword)

	// Any signed in admin
	protect := h.Guard.ProtectAdmin()
	admin.GET("/me", ac.GetMe, protect)
	admin.PUT("/updatedetails", ac.UpdateDetails, protect)
	admin.PUT("/updatepassword", ac.UpdatePassword, protect)
	admin.GET("/logout", ac.Logout, protect)
	admin.POST("/send-bulk-email", ac.SendBulkEmail, protect)

	// Superadmin only
	super := middleware.Authorize(models.AdminRoleSuper)
	admin.POST("/register", ac.RegisterAdmin, protect, super)
	admin.GET("/admins", ac.GetAdmins, protect, super)
	admin.GET("/admins/:id", ac.GetAdmin, protect, super)
	admin.PUT("/admins/:id", ac.UpdateAdmin, protect, super)
	admin.DELETE("/admins/:id", ac.DeleteAdmin, protect, super)
	admin.PUT("/admins/:id/toggle-status", ac.ToggleAdminStatus, protect, super)
}

// RegisterUserRoutes sets up viewer signup, login and profile routes
func RegisterUserRoutes(api *echo.Group, h *Handlers) {
	uc := h.Users
	user := api.Group("/auth/user")

	user.POST("/register", uc.Register)
	user.POST("/send-otp", uc.SendOTP)
	user.POST("/login", uc.Login)
	user.POST("/forgotpassword", uc.ForgotPassword)
	user.POST("/resetpassword-otp", uc.ResetPasswordWithOTP)

	protect := h.Guard.ProtectUser()
	user.GET("/me", uc.GetMe, protect)
	user.PUT("/updatedetails", uc.UpdateDetails, protect)
	user.POST("/upload-photo", uc.UploadProfilePicture, protect)
	user.POST("/fcm-token", uc.RegisterFCMToken, protect)

	// Address book
	user.POST("/address", uc.AddAddress, protect)
	user.PUT("/address/:id", uc.UpdateAddress, protect)
	user.DELETE("/address/:id", uc.DeleteAddress, protect)

	user.POST("/subscribe/:creatorId", uc.ToggleSubscribe, protect)
	user.GET("/profile/:id", uc.GetPublicProfile)
}
