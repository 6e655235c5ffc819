package routes

import (
	"github.com/labstack/echo/v4"
)

// RegisterFormRoutes sets up the public submission forms: orders, contact
// messages and job applications. Listing and deleting is for staff.
func RegisterFormRoutes(api *echo.Group, h *Handlers) {
	orders := api.Group("/orders")
	orders.POST("", h.Orders.CreateOrder)
	orders.GET("", h.Orders.GetOrders, h.staff()...)
	orders.DELETE("/:id", h.Orders.DeleteOrder, h.staff()...)

	contact := api.Group("/contact")
	contact.POST("", h.Contacts.SubmitContact)
	contact.GET("", h.Contacts.GetContacts, h.staff()...)
	contact.DELETE("/:id", h.Contacts.DeleteContact, h.staff()...)

	jobs := api.Group("/playboy-job")
	jobs.POST("/register", h.Jobs.Register)
	jobs.POST("/submit-utr", h.Jobs.SubmitUTR)
	jobs.GET("", h.Jobs.GetApplications, h.staff()...)
	jobs.PUT("/:id/status", h.Jobs.UpdateStatus, h.staff()...)
	jobs.DELETE("/:id", h.Jobs.DeleteApplication, h.staff()...)
}
