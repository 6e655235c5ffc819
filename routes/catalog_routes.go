package routes

import (
	"github.com/labstack/echo/v4"
)

// RegisterCatalogRoutes sets up category and product routes
func RegisterCatalogRoutes(api *echo.Group, h *Handlers) {
	cc := h.Categories
	categories := api.Group("/categories")

	categories.GET("/admin/all", cc.GetAdminCategories, h.staff()...)
	categories.GET("", cc.GetCategories)
	// Viewers may propose categories; theirs wait for approval.
	categories.POST("", cc.CreateCategory, h.Guard.ProtectAny())
	categories.GET("/:id", cc.GetCategory)
	categories.PUT("/:id", cc.UpdateCategory, h.staff()...)
	categories.PUT("/:id/status", cc.UpdateCategoryStatus, h.staff()...)
	categories.DELETE("/:id", cc.DeleteCategory, h.staff()...)

	pc := h.Products
	products := api.Group("/products")

	products.GET("", pc.GetProducts)
	products.POST("", pc.CreateProduct, h.staff()...)
	products.GET("/category/:categoryId", pc.GetProductsByCategory)
	products.GET("/:id", pc.GetProduct)
	products.PUT("/:id", pc.UpdateProduct, h.staff()...)
	products.DELETE("/:id", pc.DeleteProduct, h.staff()...)
}
