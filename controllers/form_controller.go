package controllers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/streamcart/streamcart_backend/apperr"
	"github.com/streamcart/streamcart_backend/models"
	"github.com/streamcart/streamcart_backend/repositories"
	"github.com/streamcart/streamcart_backend/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderController struct {
	orders   *repositories.OrderRepository
	products *repositories.ProductRepository
}

func NewOrderController(orders *repositories.OrderRepository, products *repositories.ProductRepository) *OrderController {
	return &OrderController{orders: orders, products: products}
}

// CreateOrder places an order for a single product. Without an explicit
// amount the product's current price is charged.
func (oc *OrderController) CreateOrder(c echo.Context) error {
	var req models.CreateOrderRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	productID, err := primitive.ObjectIDFromHex(req.Product)
	if err != nil {
		return apperr.InvalidInput("Invalid product id")
	}
	ctx := c.Request().Context()
	product, err := oc.products.FindByID(ctx, productID)
	if err != nil {
		return err
	}

	amount := product.Price
	if req.Amount != nil {
		amount = *req.Amount
	}
	method := req.PaymentMethod
	if method == "" {
		method = "online"
	}
	order := &models.Order{
		Product:       product.ID,
		FullName:      strings.TrimSpace(req.FullName),
		Phone:         strings.TrimSpace(req.Phone),
		Address:       req.Address,
		City:          req.City,
		State:         req.State,
		Pincode:       req.Pincode,
		PaymentMethod: method,
		PaymentStatus: models.PaymentPending,
		Amount:        amount,
	}
	if err := oc.orders.Create(ctx, order); err != nil {
		return err
	}
	order.ProductInfo = &models.OrderProduct{ID: product.ID, Name: product.Name, Price: product.Price}
	return c.JSON(http.StatusCreated, models.OK(order))
}

func (oc *OrderController) GetOrders(c echo.Context) error {
	ctx := c.Request().Context()
	orders, err := oc.orders.List(ctx)
	if err != nil {
		return err
	}
	ids := make([]primitive.ObjectID, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.Product)
	}
	summaries, err := oc.products.Summaries(ctx, ids)
	if err != nil {
		return err
	}
	for i := range orders {
		if s, ok := summaries[orders[i].Product]; ok {
			s := s
			orders[i].ProductInfo = &s
		}
	}
	return c.JSON(http.StatusOK, models.List(orders, len(orders)))
}

func (oc *OrderController) DeleteOrder(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := oc.orders.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.Message("Order deleted successfully"))
}

type ContactController struct {
	contacts *repositories.ContactRepository
}

func NewContactController(contacts *repositories.ContactRepository) *ContactController {
	return &ContactController{contacts: contacts}
}

func (cc *ContactController) SubmitContact(c echo.Context) error {
	var req models.ContactRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		subject = models.DefaultContactSubject
	}
	contact := &models.Contact{
		Name:    strings.TrimSpace(req.Name),
		Email:   utils.NormalizeEmail(req.Email),
		Subject: subject,
		Message: req.Message,
	}
	if err := cc.contacts.Create(c.Request().Context(), contact); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, models.Response{
		Success: true,
		Message: "Message sent successfully",
		Data:    contact,
	})
}

func (cc *ContactController) GetContacts(c echo.Context) error {
	contacts, err := cc.contacts.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.List(contacts, len(contacts)))
}

func (cc *ContactController) DeleteContact(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := cc.contacts.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.Message("Contact deleted successfully"))
}

type JobApplicationController struct {
	applications *repositories.JobApplicationRepository
}

func NewJobApplicationController(applications *repositories.JobApplicationRepository) *JobApplicationController {
	return &JobApplicationController{applications: applications}
}

// Register files a job application. Payment is confirmed later through
// SubmitUTR and an admin status update.
func (jc *JobApplicationController) Register(c echo.Context) error {
	var req models.JobApplicationRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	email := utils.NormalizeEmail(req.Email)
	taken, err := jc.applications.EmailRegistered(ctx, email)
	if err != nil {
		return err
	}
	if taken {
		return apperr.Conflict("Email already registered for a job application")
	}
	app := &models.JobApplication{
		FirstName:     strings.TrimSpace(req.FirstName),
		LastName:      strings.TrimSpace(req.LastName),
		Email:         email,
		Phone:         strings.TrimSpace(req.Phone),
		Birthday:      req.Birthday,
		Address:       req.Address,
		PaymentStatus: models.ApplicationPaymentPending,
	}
	if err := jc.applications.Create(ctx, app); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, models.Response{
		Success: true,
		Message: "Registration Successful",
		Data:    app,
	})
}

func (jc *JobApplicationController) SubmitUTR(c echo.Context) error {
	var req models.SubmitUTRRequest
	if err := c.Bind(&req); err != nil || req.Email == "" || req.UTRNumber == "" {
		return apperr.InvalidInput("Please provide email and UTR number")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	app, err := jc.applications.SubmitUTR(c.Request().Context(), utils.NormalizeEmail(req.Email), strings.TrimSpace(req.UTRNumber))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "UTR Submitted Successfully",
		Data:    app,
	})
}

func (jc *JobApplicationController) GetApplications(c echo.Context) error {
	apps, err := jc.applications.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.List(apps, len(apps)))
}

func (jc *JobApplicationController) UpdateStatus(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req models.UpdateApplicationStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	app, err := jc.applications.UpdateStatus(c.Request().Context(), id, req.PaymentStatus)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.OK(app))
}

func (jc *JobApplicationController) DeleteApplication(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := jc.applications.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.Message("Application deleted successfully"))
}
